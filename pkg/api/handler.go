package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/hazyhaar/visit-ledger/pkg/kit"
	"github.com/hazyhaar/visit-ledger/pkg/ledger"
	"github.com/hazyhaar/visit-ledger/pkg/store"
	"github.com/hazyhaar/visit-ledger/pkg/visit"
)

// NewRouter returns an http.Handler with all visit-ledger API routes.
func NewRouter(svc *ledger.Service) http.Handler {
	mux := http.NewServeMux()
	h := &handler{
		search:      searchEndpoint(svc),
		count:       countEndpoint(svc),
		stats:       statsEndpoint(svc),
		create:      createEndpoint(svc),
		update:      updateEndpoint(svc),
		delete:      deleteEndpoint(svc),
		batchDelete: batchDeleteEndpoint(svc),
		svc:         svc,
	}

	mux.HandleFunc("GET /v1/visits", h.handleSearch)
	mux.HandleFunc("POST /v1/visits", h.handleCreate)
	mux.HandleFunc("GET /v1/visits/{id}", h.handleGet)
	mux.HandleFunc("PUT /v1/visits/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /v1/visits/{id}", h.handleDelete)
	mux.HandleFunc("GET /v1/visits/batch-delete", methodNotAllowed) // prevent GET on batch
	mux.HandleFunc("POST /v1/visits/batch-delete", h.handleBatchDelete)
	mux.HandleFunc("GET /v1/questions/count", h.handleCount)
	mux.HandleFunc("GET /v1/officers/stats", h.handleStats)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(identity(mux))
}

type handler struct {
	search      kit.Endpoint
	count       kit.Endpoint
	stats       kit.Endpoint
	create      kit.Endpoint
	update      kit.Endpoint
	delete      kit.Endpoint
	batchDelete kit.Endpoint
	svc         *ledger.Service
}

// --- search ---

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := &searchReq{
		Criteria: visit.Criteria{
			Category: q.Get("category"),
			Query:    q.Get("q"),
			Date:     q.Get("date"),
		},
		OrderBy: q.Get("order_by"),
		Order:   q.Get("order"),
	}
	if req.Criteria.Category == "" {
		req.Criteria.Category = visit.CategoryAll
	}
	if v := q.Get("months"); v != "" {
		req.Criteria.Months = strings.Split(v, ",")
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		req.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		req.Limit = n
	}

	resp, err := h.search(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- CRUD ---

func (h *handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var rec visit.Record
	if !decodeBody(w, r, &rec) {
		return
	}
	resp, err := h.create(r.Context(), &createReq{Record: rec})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.PathValue("id"))
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var rec visit.Record
	if !decodeBody(w, r, &rec) {
		return
	}
	rec.ID = r.PathValue("id")
	resp, err := h.update(r.Context(), &updateReq{Record: rec})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	resp, err := h.delete(r.Context(), &deleteReq{ID: r.PathValue("id")})
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleBatchDelete(w http.ResponseWriter, r *http.Request) {
	var req batchDeleteReq
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.batchDelete(r.Context(), &req)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- aggregates ---

func (h *handler) handleCount(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.count(r.Context(), &countReq{
		Month:   q.Get("month"),
		Officer: q.Get("officer"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	resp, err := h.stats(r.Context(), &statsReq{Month: r.URL.Query().Get("month")})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status string `json:"status"`
	Visits int    `json:"visits"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Visits: h.svc.Count(),
	})
}

// --- helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024) // 64 KiB max
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeEndpointError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// identity copies the authenticated identity headers into the context.
// Authentication itself happens upstream; these headers stand in for the
// identity the real deployment injects after login.
func identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if v := r.Header.Get("X-Officer-Name"); v != "" {
			ctx = kit.WithOfficer(ctx, v)
		}
		if v := r.Header.Get("X-Role"); v != "" {
			ctx = kit.WithRole(ctx, v)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Officer-Name, X-Role")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
