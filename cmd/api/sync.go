package main

import (
	"net/http"
	"strconv"

	"github.com/keymetrics/keymetrics/internal/response"
	"github.com/keymetrics/keymetrics/internal/store"
)

type GetSyncHistoryResponse = response.APIResponse[[]store.SyncHistory]

func (app *application) handleGetSyncHistory(w http.ResponseWriter, r *http.Request) {
	limitParam := r.URL.Query().Get("limit")
	limit := 10
	if limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil {
			limit = l
		}
	}

	ctx := r.Context()
	data, err := app.store.SyncHistory.Latest(ctx, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get sync history: "+err.Error())
		return
	}

	resp := &GetSyncHistoryResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved latest sync records",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
