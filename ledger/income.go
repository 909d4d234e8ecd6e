/*
income.go - Paychecks and one-off income

PURPOSE:
  Income rows describe money that arrives (or is expected to arrive) on an
  account. They never touch the balance directly. Once an income row is
  activated it materializes as an income Transaction, and the row keeps the
  id of that transaction.

ACTIVATION:
  misc:      Amount > 0 and Date <= today
  recurring: ReceivedAmount present and > 0 and Date <= today

  A paycheck with only a PlannedAmount is a forecast and has no effect.

EDIT SEMANTICS:
  An edit always starts by undoing the materialized effect (if any) and
  then re-evaluates activation with the new values. Editing a row without
  changing anything therefore leaves the balance where it was, including a
  row linked to a transaction recorded ahead of its date.

  Rows written with a future date are picked up by SettleDueIncome once
  their date arrives. SettleAllDueIncome does the same for every workspace
  and is what the background settlement job calls.
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INCOME INPUT
// =============================================================================

type IncomeInput struct {
	WorkspaceID    WorkspaceID
	AccountID      AccountID
	Date           Date
	Description    string
	Amount         decimal.Decimal
	PlannedAmount  decimal.NullDecimal // recurring only
	ReceivedAmount decimal.NullDecimal // recurring only
}

func (in IncomeInput) validate(kind IncomeKind) error {
	if !kind.Valid() {
		return invalid("kind", "Income kind must be recurring or misc")
	}
	if in.AccountID == "" || in.Amount.IsZero() || in.Date.IsZero() {
		return invalid("income", "Account, amount, and date are required")
	}
	if !in.Amount.IsPositive() {
		return invalid("amount", "Amount must be greater than zero")
	}
	if in.PlannedAmount.Valid && in.PlannedAmount.Decimal.IsNegative() {
		return invalid("plannedAmount", "Planned amount cannot be negative")
	}
	if in.ReceivedAmount.Valid && in.ReceivedAmount.Decimal.IsNegative() {
		return invalid("receivedAmount", "Received amount cannot be negative")
	}
	return nil
}

// apply copies input fields onto row. Paycheck-only fields are dropped for
// one-off income.
func (in IncomeInput) apply(row *Income) {
	row.AccountID = in.AccountID
	row.Date = in.Date
	row.Description = in.Description
	row.Amount = in.Amount
	if row.Kind == IncomeRecurring {
		row.PlannedAmount = in.PlannedAmount
		row.ReceivedAmount = in.ReceivedAmount
	} else {
		row.PlannedAmount = decimal.NullDecimal{}
		row.ReceivedAmount = decimal.NullDecimal{}
	}
}

// =============================================================================
// RECORD / UPDATE / DELETE
// =============================================================================

// RecordIncome inserts an income row and, if it is already activated,
// materializes its transaction.
func (e *Engine) RecordIncome(ctx context.Context, c Caller, kind IncomeKind, in IncomeInput) (*Income, error) {
	var out *Income
	err := e.run(ctx, "record income", c, func(u *unit) error {
		if err := u.authorize(in.WorkspaceID); err != nil {
			return err
		}
		if err := in.validate(kind); err != nil {
			return err
		}
		if _, err := u.account(in.AccountID, in.WorkspaceID); err != nil {
			return err
		}

		row := Income{
			ID:          IncomeID(u.newID()),
			Kind:        kind,
			WorkspaceID: in.WorkspaceID,
			CreatedAt:   u.caller.Now,
		}
		in.apply(&row)
		if err := u.store.InsertIncome(u.ctx, row); err != nil {
			return err
		}
		if _, err := u.materialize(&row); err != nil {
			return err
		}

		u.emit(Event{Type: EventIncomeRecorded, WorkspaceID: row.WorkspaceID, AccountID: row.AccountID, RecordID: string(row.ID), Delta: row.appliedAmount()})
		out = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateIncome reverses any materialized effect, writes the new values and
// materializes again if the new values are activated today. A row that was
// linked before the edit stays linked unless the edit moves its date past
// today.
func (e *Engine) UpdateIncome(ctx context.Context, c Caller, kind IncomeKind, id IncomeID, in IncomeInput) (*Income, error) {
	var out *Income
	err := e.run(ctx, "update income", c, func(u *unit) error {
		row, err := u.income(kind, id)
		if err != nil {
			return err
		}
		if err := u.owned(string(kind)+" income", id, row.WorkspaceID); err != nil {
			return err
		}
		if err := in.validate(kind); err != nil {
			return err
		}
		if _, err := u.account(in.AccountID, row.WorkspaceID); err != nil {
			return err
		}

		before := row.appliedAmount()
		wasLinked := row.Materialized()
		wasDue := row.Date.OnOrBefore(u.today)
		if err := u.dematerialize(row); err != nil {
			return err
		}
		in.apply(row)
		if err := u.store.UpdateIncome(u.ctx, *row); err != nil {
			return err
		}
		// A linked row only loses its effect when the edit moves it from due
		// to not yet due, or drops its activation amount.
		if wasLinked && (!wasDue || row.Date.OnOrBefore(u.today)) {
			_, err = u.link(row)
		} else {
			_, err = u.materialize(row)
		}
		if err != nil {
			return err
		}

		u.emit(Event{Type: EventIncomeUpdated, WorkspaceID: row.WorkspaceID, AccountID: row.AccountID, RecordID: string(row.ID), Delta: row.appliedAmount().Sub(before)})
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteIncome removes an income row together with its linked transaction,
// reversing the effect that transaction carried.
func (e *Engine) DeleteIncome(ctx context.Context, c Caller, kind IncomeKind, id IncomeID) error {
	return e.run(ctx, "delete income", c, func(u *unit) error {
		row, err := u.income(kind, id)
		if err != nil {
			return err
		}
		if err := u.owned(string(kind)+" income", id, row.WorkspaceID); err != nil {
			return err
		}
		applied := row.appliedAmount()
		if err := u.dematerialize(row); err != nil {
			return err
		}
		if err := u.store.DeleteIncome(u.ctx, kind, id); err != nil {
			return err
		}
		u.emit(Event{Type: EventIncomeDeleted, WorkspaceID: row.WorkspaceID, AccountID: row.AccountID, RecordID: string(id), Delta: applied.Neg()})
		return nil
	})
}

// SettleDueIncome materializes every income row in the workspace that is
// activated today but has no transaction yet, typically rows that were
// entered with a future date. It returns the rows it settled.
func (e *Engine) SettleDueIncome(ctx context.Context, c Caller, workspaceID WorkspaceID) ([]Income, error) {
	var settled []Income
	err := e.run(ctx, "settle income", c, func(u *unit) error {
		if err := u.authorize(workspaceID); err != nil {
			return err
		}
		for _, kind := range []IncomeKind{IncomeRecurring, IncomeMisc} {
			rows, err := u.store.ListIncome(u.ctx, IncomeFilter{WorkspaceID: workspaceID, Kind: kind, UnlinkedOnly: true})
			if err != nil {
				return err
			}
			for i := range rows {
				done, err := u.materialize(&rows[i])
				if err != nil {
					return err
				}
				if done {
					settled = append(settled, rows[i])
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// SettleAllDueIncome runs SettleDueIncome for every workspace on behalf of
// its owner. A workspace that fails is logged and skipped; the count of
// settled rows and the first error are returned.
func (e *Engine) SettleAllDueIncome(ctx context.Context, now time.Time) (int, error) {
	workspaces, err := e.Store.ListWorkspaces(ctx)
	if err != nil {
		return 0, wrapStore("settle income", err)
	}
	var total int
	var firstErr error
	for _, ws := range workspaces {
		settled, err := e.SettleDueIncome(ctx, Caller{UserID: ws.OwnerID, Now: now}, ws.ID)
		if err != nil {
			e.Log.Error().Err(err).Str("workspace_id", string(ws.ID)).Msg("settle income failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		total += len(settled)
	}
	return total, firstErr
}

// =============================================================================
// READS
// =============================================================================

func (e *Engine) ListIncome(ctx context.Context, c Caller, filter IncomeFilter) ([]Income, error) {
	if !filter.Kind.Valid() {
		return nil, invalid("kind", "Income kind must be recurring or misc")
	}
	var out []Income
	err := e.read(ctx, "list income", c, filter.WorkspaceID, func(s Store) error {
		var err error
		out, err = s.ListIncome(ctx, filter)
		return err
	})
	return out, err
}

// =============================================================================
// HELPERS
// =============================================================================

func (u *unit) income(kind IncomeKind, id IncomeID) (*Income, error) {
	if !kind.Valid() {
		return nil, invalid("kind", "Income kind must be recurring or misc")
	}
	row, err := u.store.GetIncome(u.ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, notFound(string(kind)+" income", id)
	}
	return row, nil
}

// appliedAmount is the amount currently on the balance because of this row.
func (in Income) appliedAmount() decimal.Decimal {
	if !in.Materialized() {
		return decimal.Zero
	}
	amount, _ := in.ActivationAmount()
	return amount
}
