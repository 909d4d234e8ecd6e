package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION INPUT
// =============================================================================

// TransactionInput is the user-editable part of a transaction.
// On update WorkspaceID is ignored; the transaction keeps its workspace.
type TransactionInput struct {
	WorkspaceID WorkspaceID
	Type        TransactionType
	Date        Date
	Description string
	Amount      decimal.Decimal
	AccountID   AccountID
	CategoryID  CategoryID
	ExpenseID   BudgetItemID
}

func (in TransactionInput) validate() error {
	if in.Type == "" || in.Date.IsZero() || in.Description == "" || in.Amount.IsZero() || in.AccountID == "" {
		return invalid("transaction", "Transaction type, date, description, amount, and account are required")
	}
	if !in.Type.Valid() {
		return invalid("transactionType", "Transaction type must be income or expense")
	}
	if !in.Amount.IsPositive() {
		return invalid("amount", "Amount must be greater than zero")
	}
	return nil
}

// =============================================================================
// RECORD / UPDATE / DELETE
// =============================================================================

// RecordTransaction inserts a transaction and applies its effect. An income
// transaction also gets a linked one-off income row.
func (e *Engine) RecordTransaction(ctx context.Context, c Caller, in TransactionInput) (*Transaction, error) {
	var out *Transaction
	err := e.run(ctx, "record transaction", c, func(u *unit) error {
		if err := u.authorize(in.WorkspaceID); err != nil {
			return err
		}
		tx, err := u.recordTransaction(in)
		out = tx
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *unit) recordTransaction(in TransactionInput) (*Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := u.account(in.AccountID, in.WorkspaceID); err != nil {
		return nil, err
	}
	if err := u.references(in, in.WorkspaceID); err != nil {
		return nil, err
	}

	tx := Transaction{
		ID:          TransactionID(u.newID()),
		WorkspaceID: in.WorkspaceID,
		Type:        in.Type,
		Date:        in.Date,
		Description: in.Description,
		Amount:      in.Amount,
		AccountID:   in.AccountID,
		CategoryID:  in.CategoryID,
		ExpenseID:   in.ExpenseID,
		CreatedAt:   u.caller.Now,
	}
	if err := u.store.InsertTransaction(u.ctx, tx); err != nil {
		return nil, err
	}
	if err := u.applyDelta(tx.AccountID, tx.Delta()); err != nil {
		return nil, err
	}
	if tx.Type == TxIncome {
		if err := u.insertLinkedMiscIncome(tx); err != nil {
			return nil, err
		}
	}
	u.emit(Event{Type: EventTransactionRecorded, WorkspaceID: tx.WorkspaceID, AccountID: tx.AccountID, RecordID: string(tx.ID), Delta: tx.Delta()})
	return &tx, nil
}

func (u *unit) insertLinkedMiscIncome(tx Transaction) error {
	return u.store.InsertIncome(u.ctx, Income{
		ID:            IncomeID(u.newID()),
		Kind:          IncomeMisc,
		WorkspaceID:   tx.WorkspaceID,
		AccountID:     tx.AccountID,
		Date:          tx.Date,
		Description:   tx.Description,
		Amount:        tx.Amount,
		TransactionID: tx.ID,
		CreatedAt:     u.caller.Now,
	})
}

// UpdateTransaction replaces the editable fields of a transaction. The old
// effect is reversed on the old account and the new effect applied to the
// new account. A linked income row follows the transaction: it mirrors the
// new values while the type stays income. Otherwise a one-off row is removed
// and a paycheck is unlinked and loses its received amount.
func (e *Engine) UpdateTransaction(ctx context.Context, c Caller, id TransactionID, in TransactionInput) (*Transaction, error) {
	var out *Transaction
	err := e.run(ctx, "update transaction", c, func(u *unit) error {
		old, err := u.store.GetTransaction(u.ctx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return notFound("transaction", id)
		}
		if err := u.owned("transaction", id, old.WorkspaceID); err != nil {
			return err
		}
		in.WorkspaceID = old.WorkspaceID
		if err := in.validate(); err != nil {
			return err
		}
		if _, err := u.account(in.AccountID, old.WorkspaceID); err != nil {
			return err
		}
		if err := u.references(in, old.WorkspaceID); err != nil {
			return err
		}

		linked, err := u.store.IncomeByTransaction(u.ctx, id)
		if err != nil {
			return err
		}

		if err := u.applyDelta(old.AccountID, old.Delta().Neg()); err != nil {
			return err
		}
		updated := *old
		updated.Type = in.Type
		updated.Date = in.Date
		updated.Description = in.Description
		updated.Amount = in.Amount
		updated.AccountID = in.AccountID
		updated.CategoryID = in.CategoryID
		updated.ExpenseID = in.ExpenseID
		if err := u.applyDelta(updated.AccountID, updated.Delta()); err != nil {
			return err
		}
		if err := u.store.UpdateTransaction(u.ctx, updated); err != nil {
			return err
		}

		switch {
		case linked != nil && updated.Type == TxIncome:
			linked.AccountID = updated.AccountID
			linked.Date = updated.Date
			linked.Description = updated.Description
			if linked.Kind == IncomeRecurring {
				linked.ReceivedAmount = decimal.NewNullDecimal(updated.Amount)
			} else {
				linked.Amount = updated.Amount
			}
			if err := u.store.UpdateIncome(u.ctx, *linked); err != nil {
				return err
			}
		case linked != nil && linked.Kind == IncomeRecurring:
			// The paycheck stays as a forecast: nothing has been received.
			linked.TransactionID = ""
			linked.ReceivedAmount = decimal.NullDecimal{}
			if err := u.store.UpdateIncome(u.ctx, *linked); err != nil {
				return err
			}
		case linked != nil:
			if err := u.store.DeleteIncome(u.ctx, linked.Kind, linked.ID); err != nil {
				return err
			}
		case updated.Type == TxIncome:
			if err := u.insertLinkedMiscIncome(updated); err != nil {
				return err
			}
		}

		u.emit(Event{Type: EventTransactionUpdated, WorkspaceID: updated.WorkspaceID, AccountID: updated.AccountID, RecordID: string(id), Delta: updated.Delta().Sub(old.Delta())})
		out = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteTransaction removes a transaction, any income row linked to it, and
// reverses its effect.
func (e *Engine) DeleteTransaction(ctx context.Context, c Caller, id TransactionID) error {
	return e.run(ctx, "delete transaction", c, func(u *unit) error {
		tx, err := u.store.GetTransaction(u.ctx, id)
		if err != nil {
			return err
		}
		if tx == nil {
			return notFound("transaction", id)
		}
		if err := u.owned("transaction", id, tx.WorkspaceID); err != nil {
			return err
		}

		linked, err := u.store.IncomeByTransaction(u.ctx, id)
		if err != nil {
			return err
		}
		if linked != nil {
			if err := u.store.DeleteIncome(u.ctx, linked.Kind, linked.ID); err != nil {
				return err
			}
		}
		if err := u.applyDelta(tx.AccountID, tx.Delta().Neg()); err != nil {
			return err
		}
		if err := u.store.DeleteTransaction(u.ctx, id); err != nil {
			return err
		}
		u.emit(Event{Type: EventTransactionDeleted, WorkspaceID: tx.WorkspaceID, AccountID: tx.AccountID, RecordID: string(id), Delta: tx.Delta().Neg()})
		return nil
	})
}

// =============================================================================
// READS
// =============================================================================

func (e *Engine) ListTransactions(ctx context.Context, c Caller, filter TransactionFilter) ([]Transaction, error) {
	var out []Transaction
	err := e.read(ctx, "list transactions", c, filter.WorkspaceID, func(s Store) error {
		var err error
		out, err = s.ListTransactions(ctx, filter)
		return err
	})
	return out, err
}
