package sec

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/keymetrics/keymetrics/internal/logger"
)

func newTestClient() *Client {
	quiet := &logger.Logger{MinLevel: logger.LevelCritical + 1}
	return NewClient("keymetrics test@example.com", rate.NewLimiter(rate.Inf, 1), quiet)
}

func TestFetch(t *testing.T) {
	body := []byte(`{"cik": 320193}`)
	var gotUserAgent string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write(body)
	}))
	defer srv.Close()

	res, err := newTestClient().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "keymetrics test@example.com", gotUserAgent)
	assert.Equal(t, body, res.Body)

	sum := md5.Sum(body)
	assert.Equal(t, hex.EncodeToString(sum[:]), res.Checksum)
}

func TestFetchChecksumTracksContent(t *testing.T) {
	payload := []byte("first")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	client := newTestClient()
	first, err := client.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	again, err := client.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, first.Checksum, again.Checksum, "identical content yields identical fingerprints")

	payload = []byte("second")
	changed, err := client.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.NotEqual(t, first.Checksum, changed.Checksum, "changed content yields a new fingerprint")
}

func TestFetchHTTPStatusFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient().Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FailureHTTPStatus, fe.Kind)
	assert.Equal(t, srv.URL, fe.URL)
}

func TestFetchConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient().Fetch(context.Background(), url)
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FailureConnection, fe.Kind)
}

func TestFetchCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient().Fetch(ctx, "https://example.invalid/")
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
}

func TestURLBuilders(t *testing.T) {
	assert.Equal(t, "0000320193", ZeroPadCIK(320193))
	assert.Equal(t, "https://data.sec.gov/submissions/CIK0000320193.json", SubmissionsURL(320193))
	assert.Equal(t, "https://data.sec.gov/api/xbrl/companyfacts/CIK0000320193.json", FactsURL(320193))
	assert.Equal(t, "https://data.sec.gov/submissions/CIK0000320193-submissions-001.json",
		SubmissionsFileURL("CIK0000320193-submissions-001.json"))
}
