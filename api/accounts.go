package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/budget-ledger/ledger"
)

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

func accountInput(r *http.Request) (ledger.AccountInput, error) {
	balance, err := formOptionalAmount(r, "balance")
	if err != nil {
		return ledger.AccountInput{}, err
	}
	return ledger.AccountInput{
		Type:        ledger.AccountType(r.FormValue("accountType")),
		Subtype:     r.FormValue("accountSubtype"),
		Institution: r.FormValue("institutionName"),
		Nickname:    r.FormValue("nickname"),
		Balance:     balance,
	}, nil
}

// ListAccounts returns the workspace's accounts.
// GET /api/accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	c := h.caller(r)
	wsID, err := h.workspace(r, c)
	if err != nil {
		h.writeError(w, r, "Failed to load accounts", err)
		return
	}
	accounts, err := h.Engine.ListAccounts(r.Context(), c, wsID)
	if err != nil {
		h.writeError(w, r, "Failed to load accounts", err)
		return
	}
	writeResult(w, http.StatusOK, mapSlice(accounts, toAccountDTO))
}

// CreateAccount creates an account; a non-zero balance is booked as an
// opening adjustment.
// POST /api/accounts
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		badForm(w)
		return
	}
	c := h.caller(r)
	in, err := accountInput(r)
	if err != nil {
		h.writeError(w, r, "Failed to create account", err)
		return
	}
	if in.WorkspaceID, err = h.workspace(r, c); err != nil {
		h.writeError(w, r, "Failed to create account", err)
		return
	}
	acct, err := h.Engine.CreateAccount(r.Context(), c, in)
	if err != nil {
		h.writeError(w, r, "Failed to create account", err)
		return
	}
	writeResult(w, http.StatusCreated, toAccountDTO(*acct))
}

// UpdateAccount edits account details and optionally the balance.
// PUT /api/accounts/{id}
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		badForm(w)
		return
	}
	in, err := accountInput(r)
	if err != nil {
		h.writeError(w, r, "Failed to update account", err)
		return
	}
	id := ledger.AccountID(chi.URLParam(r, "id"))
	acct, err := h.Engine.UpdateAccount(r.Context(), h.caller(r), id, in)
	if err != nil {
		h.writeError(w, r, "Failed to update account", err)
		return
	}
	writeResult(w, http.StatusOK, toAccountDTO(*acct))
}

// DeleteAccount removes an account with no transactions or income.
// DELETE /api/accounts/{id}
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := ledger.AccountID(chi.URLParam(r, "id"))
	if err := h.Engine.DeleteAccount(r.Context(), h.caller(r), id); err != nil {
		h.writeError(w, r, "Failed to delete account", err)
		return
	}
	writeResult(w, http.StatusOK, nil)
}

// AdjustBalance sets an account balance by booking the difference.
// POST /api/accounts/{id}/balance
func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		badForm(w)
		return
	}
	balance, err := formOptionalAmount(r, "balance")
	if err != nil {
		h.writeError(w, r, "Failed to update balance", err)
		return
	}
	if !balance.Valid {
		writeJSON(w, http.StatusBadRequest, Result{Error: "Balance is required"})
		return
	}
	id := ledger.AccountID(chi.URLParam(r, "id"))
	tx, err := h.Engine.AdjustAccountBalance(r.Context(), h.caller(r), id, balance.Decimal)
	if err != nil {
		h.writeError(w, r, "Failed to update balance", err)
		return
	}
	if tx == nil {
		writeResult(w, http.StatusOK, nil)
		return
	}
	writeResult(w, http.StatusOK, toTransactionDTO(*tx))
}

// ReconcileAccount compares the stored balance with its transactions.
// GET /api/accounts/{id}/reconcile
func (h *Handler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	id := ledger.AccountID(chi.URLParam(r, "id"))
	rec, err := h.Engine.Reconcile(r.Context(), h.caller(r), id)
	if err != nil {
		h.writeError(w, r, "Failed to reconcile account", err)
		return
	}
	writeResult(w, http.StatusOK, rec)
}
