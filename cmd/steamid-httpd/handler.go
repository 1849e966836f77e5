package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"steamids/cmd/steamid-httpd/httpserveutil"
	"steamids/idconvert"
	"steamids/idstore"
	"steamids/steamidhttp"
	"steamids/steamidutil"
	"time"

	"github.com/gorilla/mux"
)

const maxBatchBodyBytes = 1 << 20

type Handler struct {
	// store is optional; without it conversions are not recorded and
	// lookups always miss.
	store    idstore.Store
	workers  int
	maxBatch int
	now      func() time.Time
}

func (h *Handler) Routes(logger *slog.Logger) []httpserveutil.Route {
	return []httpserveutil.Route{
		{Method: http.MethodGet, Path: "/api/v0/convert/{id}", Handler: httpserveutil.Handle(logger, h.serveConvert)},
		{Method: http.MethodPost, Path: "/api/v0/convert", Handler: httpserveutil.Handle(logger, h.serveConvertBatch)},
		{Method: http.MethodGet, Path: "/api/v0/types", Handler: httpserveutil.Handle(logger, h.serveAccountTypes)},
		{Method: http.MethodGet, Path: "/api/v0/lookup/{id}", Handler: httpserveutil.Handle(logger, h.serveLookup)},
		{Method: http.MethodGet, Path: "/profile/{id}", Handler: httpserveutil.Handle(logger, h.serveProfile)},
	}
}

func isInputError(err error) bool {
	return errors.Is(err, steamidutil.ErrMalformedID) ||
		errors.Is(err, steamidutil.ErrUnknownTypeLetter) ||
		errors.Is(err, steamidutil.ErrTypeOutOfRange)
}

func convertError(w http.ResponseWriter, err error) error {
	if isInputError(err) {
		return httpserveutil.BadRequest(w, "convert: %w", err)
	}

	return httpserveutil.InternalError(w, "convert: %w", err)
}

func (h *Handler) record(r *http.Request, conversions []idconvert.Conversion) error {
	if h.store == nil {
		return nil
	}

	records := idstore.Records(conversions, h.now())

	if err := h.store.InsertRecords(r.Context(), records); err != nil {
		return fmt.Errorf("insert records: %w", err)
	}

	return nil
}

func (h *Handler) serveConvert(w http.ResponseWriter, r *http.Request) error {
	c, err := idconvert.Convert(mux.Vars(r)["id"])
	if err != nil {
		return convertError(w, err)
	}

	if err := h.record(r, []idconvert.Conversion{c}); err != nil {
		return httpserveutil.InternalError(w, "record conversion: %w", err)
	}

	return httpserveutil.WriteJSON(w, http.StatusOK, idconvert.ToHTTP(c))
}

func (h *Handler) serveConvertBatch(w http.ResponseWriter, r *http.Request) error {
	var request steamidhttp.ConvertBatchRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&request); err != nil {
		return httpserveutil.BadRequest(w, "decode request: %w", err)
	}

	if len(request.IDs) == 0 {
		return httpserveutil.BadRequest(w, "must specify ids")
	}

	if len(request.IDs) > h.maxBatch {
		return httpserveutil.BadRequest(w, "too many ids: %d > %d", len(request.IDs), h.maxBatch)
	}

	conversions, err := idconvert.ConvertAll(r.Context(), request.IDs, h.workers)
	if err != nil {
		return httpserveutil.InternalError(w, "convert all: %w", err)
	}

	if err := h.record(r, conversions); err != nil {
		return httpserveutil.InternalError(w, "record conversions: %w", err)
	}

	response := steamidhttp.ConvertBatchResponse{
		Results: make([]steamidhttp.ConvertResponse, 0, len(conversions)),
	}

	for _, c := range conversions {
		response.Results = append(response.Results, idconvert.ToHTTP(c))
	}

	return httpserveutil.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) serveAccountTypes(w http.ResponseWriter, r *http.Request) error {
	types := steamidutil.AccountTypes()

	response := steamidhttp.AccountTypesResponse{
		Types: make([]steamidhttp.AccountType, 0, len(types)),
	}

	for _, t := range types {
		response.Types = append(response.Types, idconvert.AccountTypeToHTTP(t))
	}

	return httpserveutil.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) serveLookup(w http.ResponseWriter, r *http.Request) error {
	if h.store == nil {
		return httpserveutil.NotFound(w, "no store configured")
	}

	ctx := r.Context()
	id := mux.Vars(r)["id"]

	steamID64, ok, err := h.store.LookupSteamID(ctx, id)
	if err != nil {
		return httpserveutil.InternalError(w, "lookup steam id: %w", err)
	}

	if !ok {
		c, err := idconvert.Convert(id)
		if err != nil {
			return convertError(w, err)
		}

		steamID64 = c.Full.Pack()
	}

	record, ok, err := h.store.GetRecord(ctx, steamID64)
	if err != nil {
		return httpserveutil.InternalError(w, "get record: %w", err)
	}

	if !ok {
		return httpserveutil.NotFound(w, "no record for %s", id)
	}

	return httpserveutil.WriteJSON(w, http.StatusOK, record.ToHTTP())
}

func (h *Handler) serveProfile(w http.ResponseWriter, r *http.Request) error {
	c, err := idconvert.Convert(mux.Vars(r)["id"])
	if err != nil {
		return convertError(w, err)
	}

	if c.URL == "" {
		return httpserveutil.NotFound(w, "account type %s has no profile url", c.Type.Name)
	}

	http.Redirect(w, r, c.URL, http.StatusTemporaryRedirect)

	return nil
}
