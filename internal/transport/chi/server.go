// Package chi exposes the federated search API over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/openfacet/searchfed/internal/domain"
	"github.com/openfacet/searchfed/internal/domain/filter"
	domsearch "github.com/openfacet/searchfed/internal/domain/search"
	healthuc "github.com/openfacet/searchfed/internal/usecase/health"
	searchuc "github.com/openfacet/searchfed/internal/usecase/search"
)

// Error response codes.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeUnknownBackend     = "unknown_backend"
	codeBackendUnavailable = "backend_unavailable"
	codeInternalError      = "internal_error"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests into the search and health use cases. The
// filter configurations and verticals it holds are the host defaults; a
// request may carry its own configurations and they win.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	configs       []filter.Configuration
	verticals     []domsearch.Vertical
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	health *healthuc.Service,
	configs []filter.Configuration,
	verticals []domsearch.Vertical,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		health:    health,
		configs:   configs,
		verticals: verticals,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		fieldValidationHandler,
		sentinelHandler(domain.ErrUnknownBackend, http.StatusNotFound, codeUnknownBackend),
		sentinelHandler(domain.ErrInvalidContext, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrTermNotFound, http.StatusNotFound, codeValidationFailed),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusBadGateway, codeBackendUnavailable),
	}
	return s
}

// Mount registers the API routes on a router.
func (s *Server) Mount(r chi.Router) {
	r.Post("/api/v1/search/{backend}", s.handleSearch)
	r.Get("/api/v1/search/{backend}/sortfields", s.handleValidateSortField)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
}

// searchRequest is the wire shape of one data context.
type searchRequest struct {
	QueryText      string                   `json:"queryText"`
	PageNumber     int                      `json:"pageNumber"`
	ItemsPerPage   int                      `json:"itemsPerPage"`
	Filters        []filter.DataFilter      `json:"filters"`
	Configurations []filter.Configuration   `json:"filterConfigurations"`
	FilterOperator filter.ConditionOperator `json:"filterOperator"`
	SortFields     []domsearch.SortField    `json:"sortFields"`
	Vertical       string                   `json:"vertical"`
	QueryParams    map[string]string        `json:"queryParams"`
}

// searchResponse is the wire shape of one result set. FieldErrors reports
// sort fields the backend rejected; the search still ran without them.
type searchResponse struct {
	Items           []domsearch.Item              `json:"items"`
	Filters         []domsearch.FilterResult      `json:"filters"`
	TotalCount      int                           `json:"totalCount"`
	QueryAlteration string                        `json:"queryAlteration,omitempty"`
	Events          []domsearch.FilterUpdateEvent `json:"events,omitempty"`
	FieldErrors     []ErrorResponse               `json:"fieldErrors,omitempty"`
}

// handleSearch handles POST /api/v1/search/{backend}.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	backend := chi.URLParam(r, "backend")

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	configs := s.configs
	if len(req.Configurations) > 0 {
		configs = req.Configurations
	}

	vertical, err := s.resolveVertical(req.Vertical)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	// An unsortable field degrades to a field-level error; the query still
	// runs sorted by the remaining fields.
	sortFields, fieldErrors := s.checkSortFields(r, backend, req.SortFields)

	dc, err := domsearch.NewContext(
		req.QueryText,
		req.PageNumber,
		req.ItemsPerPage,
		req.Filters,
		configs,
		req.FilterOperator,
		sortFields,
		vertical,
		req.QueryParams,
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	results, events, err := s.search.Search(r.Context(), backend, &dc)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Items:           results.Items,
		Filters:         results.Filters,
		TotalCount:      results.TotalCount,
		QueryAlteration: results.QueryAlteration,
		Events:          events,
		FieldErrors:     fieldErrors,
	})
}

// handleValidateSortField handles GET /api/v1/search/{backend}/sortfields?name=F.
func (s *Server) handleValidateSortField(w http.ResponseWriter, r *http.Request) {
	backend := chi.URLParam(r, "backend")
	field := r.URL.Query().Get("name")
	if field == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query parameter 'name' is required")
		return
	}

	if err := s.search.ValidateSortField(r.Context(), backend, field); err != nil {
		if errors.Is(err, domain.ErrFieldValidation) {
			writeJSON(w, http.StatusOK, map[string]any{
				"field":    field,
				"sortable": false,
				"message":  safeDomainMessage(err),
			})
			return
		}
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"field": field, "sortable": true})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// handleMetrics handles GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// resolveVertical maps a vertical key from the request to the configured
// vertical. An empty key means no vertical scoping.
func (s *Server) resolveVertical(key string) (*domsearch.Vertical, error) {
	if key == "" {
		return nil, nil
	}
	for i := range s.verticals {
		if s.verticals[i].Key == key {
			return &s.verticals[i], nil
		}
	}
	return nil, errors.New("unknown vertical: " + key)
}

// checkSortFields validates the requested sort fields against the backend
// schema, returning the usable fields and one error entry per rejected one.
func (s *Server) checkSortFields(
	r *http.Request, backend string, fields []domsearch.SortField,
) ([]domsearch.SortField, []ErrorResponse) {
	var (
		valid     []domsearch.SortField
		fieldErrs []ErrorResponse
	)
	for _, f := range fields {
		err := s.search.ValidateSortField(r.Context(), backend, f.Field)
		if err == nil {
			valid = append(valid, f)
			continue
		}
		var fve *domain.FieldValidationError
		if errors.As(err, &fve) {
			fieldErrs = append(fieldErrs, ErrorResponse{
				Code:    codeValidationFailed,
				Message: fve.Message,
				Field:   fve.Field,
			})
			continue
		}
		// Schema lookup failed outright; keep the field and let the backend
		// decide during the search itself.
		s.logger.Warn("sort field validation unavailable",
			zap.String("backend", backend),
			zap.String("field", f.Field),
			zap.Error(err))
		valid = append(valid, f)
	}
	return valid, fieldErrs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var fve *domain.FieldValidationError
	if errors.As(err, &fve) {
		return fve.Message
	}
	sentinels := []error{
		domain.ErrUnknownBackend,
		domain.ErrInvalidContext,
		domain.ErrFieldValidation,
		domain.ErrTermNotFound,
		domain.ErrBackendUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// fieldValidationHandler surfaces the offending field alongside the message.
func fieldValidationHandler(w http.ResponseWriter, err error, msg string) bool {
	var fve *domain.FieldValidationError
	if !errors.As(err, &fve) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:    codeValidationFailed,
		Message: msg,
		Field:   fve.Field,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
