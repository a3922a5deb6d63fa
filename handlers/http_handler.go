package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/giygas/medicine-library/catalog"
	"github.com/giygas/medicine-library/entities"
	"github.com/giygas/medicine-library/interfaces"
	"github.com/giygas/medicine-library/logging"
	"github.com/giygas/medicine-library/query"
	"github.com/giygas/medicine-library/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Compile-time check to ensure the session store satisfies SessionStore
var _ interfaces.SessionStore = (*session.Store)(nil)

const catalogUnavailableMessage = "The medicine catalog is not available yet, please retry later"

// HTTPHandler serves the API endpoints using injected dependencies
type HTTPHandler struct {
	store     interfaces.CatalogStore
	sessions  interfaces.SessionStore
	validator interfaces.InputValidator
	health    interfaces.HealthChecker
	startTime time.Time
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(store interfaces.CatalogStore, sessions interfaces.SessionStore, validator interfaces.InputValidator, health interfaces.HealthChecker) *HTTPHandler {
	return &HTTPHandler{
		store:     store,
		sessions:  sessions,
		validator: validator,
		health:    health,
		startTime: time.Now(),
	}
}

// MedicinesResponse is one page of a stateless catalog query
type MedicinesResponse struct {
	Search string `json:"search"`
	query.Page
}

// SimilarResponse lists the medicines sharing a record's generic formula
type SimilarResponse struct {
	Medicine entities.Medicine   `json:"medicine"`
	Similar  []entities.Medicine `json:"similar"`
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Uptime        string         `json:"uptime"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

type searchRequest struct {
	Term string `json:"term"`
}

type pageRequest struct {
	Page int `json:"page"`
}

type selectionRequest struct {
	ID string `json:"id"`
}

// currentCatalog returns the catalog or answers 503 when none was built yet
func (h *HTTPHandler) currentCatalog(w http.ResponseWriter) (*catalog.Catalog, bool) {
	cat := h.store.GetCatalog()
	if cat == nil {
		RespondWithError(w, http.StatusServiceUnavailable, catalogUnavailableMessage)
		return nil, false
	}
	return cat, true
}

// ServeMedicines returns a page of the catalog filtered by the optional search parameter.
// GET /v1/medicines?search=&page=
func (h *HTTPHandler) ServeMedicines(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	if err := h.validator.ValidateSearchTerm(search); err != nil {
		logging.Warn("Unusual user input", "search", search, "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.validator.ParsePage(r.URL.Query().Get("page"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	cat, ok := h.currentCatalog(w)
	if !ok {
		return
	}

	filtered := query.Filter(cat.All(), search)
	RespondWithJSON(w, http.StatusOK, MedicinesResponse{
		Search: search,
		Page:   query.Paginate(filtered, page, query.DefaultPageSize),
	})
}

// findMedicine resolves the {id} path parameter against the current catalog
func (h *HTTPHandler) findMedicine(w http.ResponseWriter, r *http.Request) (*catalog.Catalog, entities.Medicine, bool) {
	id := chi.URLParam(r, "id")
	if err := h.validator.ValidateID(id); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return nil, entities.Medicine{}, false
	}

	cat, ok := h.currentCatalog(w)
	if !ok {
		return nil, entities.Medicine{}, false
	}

	med, found := cat.Get(id)
	if !found {
		RespondWithError(w, http.StatusNotFound, fmt.Sprintf("Medicine %s not found", id))
		return nil, entities.Medicine{}, false
	}
	return cat, med, true
}

// FindMedicine returns one medicine.
// GET /v1/medicines/{id}
func (h *HTTPHandler) FindMedicine(w http.ResponseWriter, r *http.Request) {
	_, med, ok := h.findMedicine(w, r)
	if !ok {
		return
	}
	RespondWithJSON(w, http.StatusOK, med)
}

// FindSimilar returns the other medicines with the same generic formula.
// GET /v1/medicines/{id}/similar
func (h *HTTPHandler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	cat, med, ok := h.findMedicine(w, r)
	if !ok {
		return
	}
	RespondWithJSON(w, http.StatusOK, SimilarResponse{
		Medicine: med,
		Similar:  query.Similar(cat.All(), med),
	})
}

// CreateSession starts a browsing session on the current catalog.
// POST /v1/sessions
func (h *HTTPHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.currentCatalog(w)
	if !ok {
		return
	}

	sess, err := h.sessions.Create(cat)
	if err != nil {
		logging.Error("Failed to create session", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Could not create session")
		return
	}

	w.Header().Set("Location", "/v1/sessions/"+sess.ID)
	RespondWithJSON(w, http.StatusCreated, sess.View())
}

// lookupSession resolves the {sessionID} path parameter
func (h *HTTPHandler) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	if _, err := uuid.Parse(id); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid session id")
		return nil, false
	}

	sess, ok := h.sessions.Get(id)
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Session not found or expired")
		return nil, false
	}
	return sess, true
}

// GetSession returns the session view.
// GET /v1/sessions/{sessionID}
func (h *HTTPHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	RespondWithJSON(w, http.StatusOK, sess.View())
}

// DeleteSession ends a session.
// DELETE /v1/sessions/{sessionID}
func (h *HTTPHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	h.sessions.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// UpdateSearch sets the search term and goes back to the first page.
// PUT /v1/sessions/{sessionID}/search
func (h *HTTPHandler) UpdateSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validator.ValidateSearchTerm(req.Term); err != nil {
		logging.Warn("Unusual user input", "search", req.Term, "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess.SetSearch(req.Term)
	RespondWithJSON(w, http.StatusOK, sess.View())
}

// UpdatePage moves to another page of the current search.
// PUT /v1/sessions/{sessionID}/page
func (h *HTTPHandler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req pageRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := sess.SetPage(req.Page); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	RespondWithJSON(w, http.StatusOK, sess.View())
}

// UpdateSelection selects a medicine of the session's catalog.
// PUT /v1/sessions/{sessionID}/selection
func (h *HTTPHandler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var req selectionRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validator.ValidateID(req.ID); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := sess.Select(req.ID); err != nil {
		if errors.Is(err, session.ErrMedicineNotFound) {
			RespondWithError(w, http.StatusNotFound, fmt.Sprintf("Medicine %s not found", req.ID))
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Could not select medicine")
		return
	}

	RespondWithJSON(w, http.StatusOK, sess.View())
}

// ClearSelection drops the session's selection.
// DELETE /v1/sessions/{sessionID}/selection
func (h *HTTPHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	sess.ClearSelection()
	RespondWithJSON(w, http.StatusOK, sess.View())
}

// HealthCheck returns catalog health with uptime and memory statistics.
// GET /health
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.health.HealthCheck()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := time.Since(h.startTime)

	RespondWithJSON(w, httpStatus, HealthResponse{
		Status:        status,
		UptimeSeconds: uptime.Seconds(),
		Uptime:        formatUptimeHuman(uptime),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	})
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
