/*
handlers.go - HTTP form handlers for the budget ledger

PURPOSE:
  The action surface between the presentation layer and the engine. Each
  handler does the same four things:

    1. Parse raw form input (strings) into typed values
    2. Resolve the current user and the workspace they act in
    3. Call exactly one Engine or budget Manager operation
    4. Report a tagged result: {"success": true, "data": ...} or
       {"success": false, "error": "..."}

ENDPOINTS:
  Workspaces:   POST /api/workspaces, GET /api/workspaces/current
  Accounts:     GET|POST /api/accounts, PUT|DELETE /api/accounts/{id},
                POST /api/accounts/{id}/balance, GET /api/accounts/{id}/reconcile
  Transactions: GET|POST /api/transactions, PUT|DELETE /api/transactions/{id}
  Income:       GET|POST /api/income/{kind}, PUT|DELETE /api/income/{kind}/{id},
                POST /api/income/settle
  Budget:       GET|POST /api/budget/{kind}, PUT|DELETE /api/budget/{kind}/{id}
  Categories:   GET|POST /api/categories, PUT|DELETE /api/categories/{id}

ERROR HANDLING:
  - 400: Validation errors (message is shown to the user as-is)
  - 401: No authenticated user
  - 403: Caller is not a member of the workspace
  - 404: Resource not found
  - 500: Store failure (details are logged, not returned)

SEE ALSO:
  - dto.go: Response shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/budget-ledger/budget"
	"github.com/warp/budget-ledger/ledger"
	"github.com/warp/budget-ledger/logger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *ledger.Engine
	Budget *budget.Manager

	Identity    Identity
	CORSOrigins []string
	StaticDir   string
	Log         zerolog.Logger
	Now         func() time.Time
}

// NewHandler creates a handler with header identity (X-User-ID) and the
// wall clock.
func NewHandler(engine *ledger.Engine, manager *budget.Manager) *Handler {
	return &Handler{
		Engine:      engine,
		Budget:      manager,
		Identity:    HeaderIdentity{Header: "X-User-ID"},
		CORSOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		StaticDir:   "web/dist",
		Log:         zerolog.Nop(),
		Now:         time.Now,
	}
}

func (h *Handler) caller(r *http.Request) ledger.Caller {
	return ledger.Caller{UserID: userFrom(r.Context()), Now: h.Now()}
}

// workspace resolves the workspace the request acts in: an explicit
// workspaceId field, or the caller's default workspace.
func (h *Handler) workspace(r *http.Request, c ledger.Caller) (ledger.WorkspaceID, error) {
	if id := r.FormValue("workspaceId"); id != "" {
		return ledger.WorkspaceID(id), nil
	}
	ws, err := h.Engine.WorkspaceFor(r.Context(), c)
	if err != nil {
		return "", err
	}
	return ws.ID, nil
}

// =============================================================================
// RESULTS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeResult(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Result{Success: true, Data: data})
}

// writeError maps engine errors to a status and a user-facing message.
// fallback is used for failures whose details must not leak.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, fallback string, err error) {
	var ve *ledger.ValidationError
	var nf *ledger.NotFoundError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, Result{Error: ve.Message})
	case errors.As(err, &nf):
		msg := nf.Error()
		if nf.Resource == "workspace" {
			msg = "No workspace found"
		}
		writeJSON(w, http.StatusNotFound, Result{Error: msg})
	case errors.Is(err, ledger.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, Result{Error: err.Error()})
	default:
		cause := err
		var se *ledger.StoreError
		if errors.As(err, &se) {
			cause = se.Err
		}
		log := h.logFor(r)
		log.Error().Err(cause).Str("path", r.URL.Path).Msg(fallback)
		writeJSON(w, http.StatusInternalServerError, Result{Error: fallback})
	}
}

// logFor prefers the request-scoped logger set by requestLogger.
func (h *Handler) logFor(r *http.Request) zerolog.Logger {
	return logger.FromContextOr(r.Context(), h.Log)
}

// =============================================================================
// FORM PARSING
// =============================================================================

// parseForm accepts urlencoded and multipart bodies.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(1 << 20)
	}
	return r.ParseForm()
}

func formAmount(r *http.Request, field string) (decimal.Decimal, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, &ledger.ValidationError{Field: field, Message: "Amount must be a number"}
	}
	return d, nil
}

// formOptionalAmount returns an invalid NullDecimal for an empty field.
func formOptionalAmount(r *http.Request, field string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(r.FormValue(field)) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := formAmount(r, field)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func formDate(r *http.Request, field string) (ledger.Date, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return ledger.Date{}, nil
	}
	d, err := ledger.ParseDate(v)
	if err != nil {
		return ledger.Date{}, &ledger.ValidationError{Field: field, Message: "Date must be in YYYY-MM-DD format"}
	}
	return d, nil
}

func badForm(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, Result{Error: "Invalid form data"})
}
