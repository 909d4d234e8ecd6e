package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/budget-ledger/ledger"
)

// =============================================================================
// INCOME HANDLERS - {kind} is "recurring" (paychecks) or "misc"
// =============================================================================

func incomeKind(r *http.Request) (ledger.IncomeKind, bool) {
	kind := ledger.IncomeKind(chi.URLParam(r, "kind"))
	return kind, kind.Valid()
}

func incomeInput(r *http.Request) (ledger.IncomeInput, error) {
	date, err := formDate(r, "date")
	if err != nil {
		return ledger.IncomeInput{}, err
	}
	amount, err := formAmount(r, "amount")
	if err != nil {
		return ledger.IncomeInput{}, err
	}
	planned, err := formOptionalAmount(r, "plannedAmount")
	if err != nil {
		return ledger.IncomeInput{}, err
	}
	received, err := formOptionalAmount(r, "receivedAmount")
	if err != nil {
		return ledger.IncomeInput{}, err
	}
	return ledger.IncomeInput{
		AccountID:      ledger.AccountID(r.FormValue("accountId")),
		Date:           date,
		Description:    r.FormValue("description"),
		Amount:         amount,
		PlannedAmount:  planned,
		ReceivedAmount: received,
	}, nil
}

func unknownIncomeKind(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, Result{Error: "Unknown income kind"})
}

// ListIncome returns income rows of one kind.
// GET /api/income/{kind}
func (h *Handler) ListIncome(w http.ResponseWriter, r *http.Request) {
	kind, ok := incomeKind(r)
	if !ok {
		unknownIncomeKind(w)
		return
	}
	c := h.caller(r)
	wsID, err := h.workspace(r, c)
	if err != nil {
		h.writeError(w, r, "Failed to load income", err)
		return
	}
	rows, err := h.Engine.ListIncome(r.Context(), c, ledger.IncomeFilter{
		WorkspaceID: wsID,
		Kind:        kind,
		AccountID:   ledger.AccountID(r.FormValue("accountId")),
	})
	if err != nil {
		h.writeError(w, r, "Failed to load income", err)
		return
	}
	writeResult(w, http.StatusOK, mapSlice(rows, toIncomeDTO))
}

// CreateIncome records a paycheck or one-off income.
// POST /api/income/{kind}
func (h *Handler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	kind, ok := incomeKind(r)
	if !ok {
		unknownIncomeKind(w)
		return
	}
	if err := parseForm(r); err != nil {
		badForm(w)
		return
	}
	c := h.caller(r)
	in, err := incomeInput(r)
	if err != nil {
		h.writeError(w, r, "Failed to create income", err)
		return
	}
	if in.WorkspaceID, err = h.workspace(r, c); err != nil {
		h.writeError(w, r, "Failed to create income", err)
		return
	}
	row, err := h.Engine.RecordIncome(r.Context(), c, kind, in)
	if err != nil {
		h.writeError(w, r, "Failed to create income", err)
		return
	}
	writeResult(w, http.StatusCreated, toIncomeDTO(*row))
}

// UpdateIncome edits an income row and re-evaluates its balance effect.
// PUT /api/income/{kind}/{id}
func (h *Handler) UpdateIncome(w http.ResponseWriter, r *http.Request) {
	kind, ok := incomeKind(r)
	if !ok {
		unknownIncomeKind(w)
		return
	}
	if err := parseForm(r); err != nil {
		badForm(w)
		return
	}
	in, err := incomeInput(r)
	if err != nil {
		h.writeError(w, r, "Failed to update income", err)
		return
	}
	id := ledger.IncomeID(chi.URLParam(r, "id"))
	row, err := h.Engine.UpdateIncome(r.Context(), h.caller(r), kind, id, in)
	if err != nil {
		h.writeError(w, r, "Failed to update income", err)
		return
	}
	writeResult(w, http.StatusOK, toIncomeDTO(*row))
}

// DeleteIncome removes an income row and its transaction.
// DELETE /api/income/{kind}/{id}
func (h *Handler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	kind, ok := incomeKind(r)
	if !ok {
		unknownIncomeKind(w)
		return
	}
	id := ledger.IncomeID(chi.URLParam(r, "id"))
	if err := h.Engine.DeleteIncome(r.Context(), h.caller(r), kind, id); err != nil {
		h.writeError(w, r, "Failed to delete income", err)
		return
	}
	writeResult(w, http.StatusOK, nil)
}

// SettleIncome books income rows whose date has arrived.
// POST /api/income/settle
func (h *Handler) SettleIncome(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		badForm(w)
		return
	}
	c := h.caller(r)
	wsID, err := h.workspace(r, c)
	if err != nil {
		h.writeError(w, r, "Failed to settle income", err)
		return
	}
	settled, err := h.Engine.SettleDueIncome(r.Context(), c, wsID)
	if err != nil {
		h.writeError(w, r, "Failed to settle income", err)
		return
	}
	writeResult(w, http.StatusOK, mapSlice(settled, toIncomeDTO))
}
