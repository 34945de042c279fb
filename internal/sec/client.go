package sec

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/keymetrics/keymetrics/internal/logger"
	"golang.org/x/time/rate"
)

// FailureKind classifies a failed fetch.
type FailureKind string

const (
	FailureTimeout    FailureKind = "timeout"
	FailureConnection FailureKind = "connection"
	FailureHTTPStatus FailureKind = "http_status"
	FailureOther      FailureKind = "other"
)

// FetchError is the tagged failure result of a fetch. Callers treat it as
// "no data for this URL" and keep processing the rest of the batch.
type FetchError struct {
	Kind FailureKind
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result is a successful fetch: the decoded-ready body plus its MD5
// fingerprint, computed over the exact raw bytes for change detection.
type Result struct {
	Body     []byte
	Checksum string
}

// Client fetches SEC API payloads. All requests pass through one shared
// token bucket, blocking until a slot is available rather than failing,
// and carry the identifying User-Agent the SEC requires.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	appLogger  *logger.Logger
}

func NewClient(userAgent string, limiter *rate.Limiter, appLogger *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 3 * time.Second},
		limiter:    limiter,
		userAgent:  userAgent,
		appLogger:  appLogger,
	}
}

// Fetch retrieves one URL. Failures are logged at critical severity and
// returned as a *FetchError; they never panic or abort the caller's batch.
func (c *Client) Fetch(ctx context.Context, url string) (*Result, error) {
	const component = "SECClient"

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.fail(component, &FetchError{Kind: FailureOther, URL: url, Err: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, c.fail(component, &FetchError{Kind: FailureOther, URL: url, Err: err})
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(component, &FetchError{Kind: classifyErr(err), URL: url, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.fail(component, &FetchError{
			Kind: FailureHTTPStatus,
			URL:  url,
			Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(component, &FetchError{Kind: classifyErr(err), URL: url, Err: err})
	}

	sum := md5.Sum(body)
	return &Result{Body: body, Checksum: hex.EncodeToString(sum[:])}, nil
}

func (c *Client) fail(component string, fe *FetchError) error {
	c.appLogger.Critical(component, "Fetch failed: url=%s kind=%s error=%v", fe.URL, fe.Kind, fe.Err)
	return fe
}

func classifyErr(err error) FailureKind {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FailureConnection
	}
	return FailureOther
}
