package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/budget-ledger/ledger"
)

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

func transactionInput(r *http.Request) (ledger.TransactionInput, error) {
	date, err := formDate(r, "date")
	if err != nil {
		return ledger.TransactionInput{}, err
	}
	amount, err := formAmount(r, "amount")
	if err != nil {
		return ledger.TransactionInput{}, err
	}
	return ledger.TransactionInput{
		Type:        ledger.TransactionType(r.FormValue("transactionType")),
		Date:        date,
		Description: r.FormValue("description"),
		Amount:      amount,
		AccountID:   ledger.AccountID(r.FormValue("accountId")),
		CategoryID:  ledger.CategoryID(r.FormValue("categoryId")),
		ExpenseID:   ledger.BudgetItemID(r.FormValue("expenseId")),
	}, nil
}

// ListTransactions returns transactions, newest first.
// GET /api/transactions?accountId=&type=&from=&to=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	c := h.caller(r)
	wsID, err := h.workspace(r, c)
	if err != nil {
		h.writeError(w, r, "Failed to load transactions", err)
		return
	}
	from, err := formDate(r, "from")
	if err != nil {
		h.writeError(w, r, "Failed to load transactions", err)
		return
	}
	to, err := formDate(r, "to")
	if err != nil {
		h.writeError(w, r, "Failed to load transactions", err)
		return
	}
	filter := ledger.TransactionFilter{
		WorkspaceID: wsID,
		AccountID:   ledger.AccountID(r.FormValue("accountId")),
		Type:        ledger.TransactionType(r.FormValue("type")),
		From:        from,
		To:          to,
	}
	txs, err := h.Engine.ListTransactions(r.Context(), c, filter)
	if err != nil {
		h.writeError(w, r, "Failed to load transactions", err)
		return
	}
	writeResult(w, http.StatusOK, mapSlice(txs, toTransactionDTO))
}

// CreateTransaction records a transaction and moves the account balance.
// POST /api/transactions
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		badForm(w)
		return
	}
	c := h.caller(r)
	in, err := transactionInput(r)
	if err != nil {
		h.writeError(w, r, "Failed to create transaction", err)
		return
	}
	if in.WorkspaceID, err = h.workspace(r, c); err != nil {
		h.writeError(w, r, "Failed to create transaction", err)
		return
	}
	tx, err := h.Engine.RecordTransaction(r.Context(), c, in)
	if err != nil {
		h.writeError(w, r, "Failed to create transaction", err)
		return
	}
	writeResult(w, http.StatusCreated, toTransactionDTO(*tx))
}

// UpdateTransaction replaces a transaction's fields.
// PUT /api/transactions/{id}
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		badForm(w)
		return
	}
	in, err := transactionInput(r)
	if err != nil {
		h.writeError(w, r, "Failed to update transaction", err)
		return
	}
	id := ledger.TransactionID(chi.URLParam(r, "id"))
	tx, err := h.Engine.UpdateTransaction(r.Context(), h.caller(r), id, in)
	if err != nil {
		h.writeError(w, r, "Failed to update transaction", err)
		return
	}
	writeResult(w, http.StatusOK, toTransactionDTO(*tx))
}

// DeleteTransaction removes a transaction and reverses its effect.
// DELETE /api/transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := ledger.TransactionID(chi.URLParam(r, "id"))
	if err := h.Engine.DeleteTransaction(r.Context(), h.caller(r), id); err != nil {
		h.writeError(w, r, "Failed to delete transaction", err)
		return
	}
	writeResult(w, http.StatusOK, nil)
}
