package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/keymetrics/keymetrics/internal/response"
	"github.com/keymetrics/keymetrics/internal/store"
)

type CreateAliasRequest struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

type ListAliasesResponse = response.APIResponse[[]store.ConceptAlias]
type CreateAliasResponse = response.APIResponse[*store.ConceptAlias]

func (app *application) handleListAliases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	aliases, err := app.store.Aliases.List(ctx)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list aliases: "+err.Error())
		return
	}

	resp := &ListAliasesResponse{
		Success: true,
		Data:    aliases,
		Message: "Successfully listed aliases",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// handleCreateAlias creates a canonical alias and optionally attaches it to
// the given concept tags.
func (app *application) handleCreateAlias(w http.ResponseWriter, r *http.Request) {
	var req CreateAliasRequest
	if err := readJSON(w, r, &req); err != nil {
		return
	}
	if req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "alias name is required")
		return
	}

	ctx := r.Context()
	alias := &store.ConceptAlias{Name: req.Name}
	if err := app.store.Aliases.Insert(ctx, alias); err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeJSONError(w, http.StatusConflict, "alias already exists: "+req.Name)
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to create alias: "+err.Error())
		return
	}

	for _, tag := range req.Tags {
		if err := app.store.Concepts.SetAlias(ctx, tag, alias.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSONError(w, http.StatusNotFound, "unknown concept tag: "+tag)
				return
			}
			writeJSONError(w, http.StatusInternalServerError, "failed to attach alias: "+err.Error())
			return
		}
	}

	resp := &CreateAliasResponse{
		Success: true,
		Data:    alias,
		Message: "Successfully created alias",
	}

	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleDeleteAlias(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid alias id")
		return
	}

	ctx := r.Context()
	if err := app.store.Aliases.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, store.ErrAliasInUse):
			writeJSONError(w, http.StatusConflict, "alias is referenced by concepts")
		case errors.Is(err, store.ErrNotFound):
			writeJSONError(w, http.StatusNotFound, "alias not found")
		default:
			writeJSONError(w, http.StatusInternalServerError, "failed to delete alias: "+err.Error())
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
