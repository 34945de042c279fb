package main

import (
	"net/http"

	"github.com/keymetrics/keymetrics/internal/response"
	"github.com/keymetrics/keymetrics/internal/store"
)

const filingsPageSize = 10

type FilingPage struct {
	Filings []store.FilingWithFactCount `json:"filings"`
	Page    int                         `json:"page"`
}

type ListFilingsResponse = response.APIResponse[FilingPage]

func (app *application) handleListFilings(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)

	ctx := r.Context()
	filings, err := app.store.Filings.ListWithFactCounts(ctx, filingsPageSize, (page-1)*filingsPageSize)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list filings: "+err.Error())
		return
	}

	resp := &ListFilingsResponse{
		Success: true,
		Data:    FilingPage{Filings: filings, Page: page},
		Message: "Successfully listed filings",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
