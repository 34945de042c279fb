package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/keymetrics/keymetrics/internal/response"
	"github.com/keymetrics/keymetrics/internal/store"
)

const companiesPageSize = 8

type CompanyPage struct {
	Companies []store.CompanyResult `json:"companies"`
	Page      int                   `json:"page"`
	Total     int                   `json:"total"`
}

type CompanyFacts struct {
	Ticker string                  `json:"ticker"`
	Name   string                  `json:"name"`
	CIK    int64                   `json:"cik"`
	Facts  []store.AnnualFactDelta `json:"facts"`
}

type ListCompaniesResponse = response.APIResponse[CompanyPage]
type GetCompanyFactsResponse = response.APIResponse[CompanyFacts]

func parsePage(r *http.Request) int {
	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	return page
}

func (app *application) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	page := parsePage(r)

	ctx := r.Context()
	companies, total, err := app.store.Metrics.SearchCompanies(ctx, search, companiesPageSize, (page-1)*companiesPageSize)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list companies: "+err.Error())
		return
	}

	resp := &ListCompaniesResponse{
		Success: true,
		Data:    CompanyPage{Companies: companies, Page: page, Total: total},
		Message: "Successfully listed companies",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleGetCompanyFacts(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "ticker")
	ctx := r.Context()

	ticker, err := app.store.Tickers.GetBySymbol(ctx, symbol)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "unknown ticker: "+symbol)
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to resolve ticker: "+err.Error())
		return
	}

	company, err := app.store.Companies.GetByID(ctx, ticker.CompanyID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to load company: "+err.Error())
		return
	}

	facts, err := app.store.Metrics.AnnualFactsWithDelta(ctx, ticker.CompanyID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to load facts: "+err.Error())
		return
	}

	resp := &GetCompanyFactsResponse{
		Success: true,
		Data:    CompanyFacts{Ticker: symbol, Name: company.Name, CIK: company.CIK, Facts: facts},
		Message: "Successfully loaded annual facts",
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
