/*
engine.go - Engine construction and the shared balance primitives

PURPOSE:
  The Engine owns every write that can move a balance. Each public
  operation runs as one unit of work:

    1. Open a store transaction (WithTx)
    2. Check the caller is a member of the owning workspace
    3. Perform the row writes and balance arithmetic
    4. Commit, then publish the collected events

  Any failing step returns an error from the WithTx callback, which rolls
  back every prior step. Events are published only after commit, so a
  listener never observes a change that was later undone.

PRIMITIVES:
  applyDelta:    read balance, add signed delta, write balance
  materialize:   income -> linked transaction + balance effect
  link:          materialize without the date check
  dematerialize: linked transaction -> removed, effect reversed

SEE ALSO:
  - transactions.go: Record/Update/Delete transaction
  - income.go: Record/Update/Delete income, SettleDueIncome
  - accounts.go: Account manager and balance adjustment
*/
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// =============================================================================
// NOTIFIER - Receives events after commit
// =============================================================================

// Notifier receives ledger events once their unit has committed.
// Errors are logged by the engine and never fail the operation.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) error { return nil }

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	Store    TxStore
	Location *time.Location // day boundary for "today"
	Notifier Notifier
	Log      zerolog.Logger
	NewID    func() string
}

func NewEngine(store TxStore) *Engine {
	return &Engine{
		Store:    store,
		Location: time.Local,
		Notifier: NopNotifier{},
		Log:      zerolog.Nop(),
		NewID:    uuid.NewString,
	}
}

// Today is the caller's "now" as a calendar day in the engine's location.
func (e *Engine) Today(c Caller) Date {
	return DateOf(c.Now, e.Location)
}

// run executes fn as one atomic unit and publishes its events on success.
func (e *Engine) run(ctx context.Context, op string, c Caller, fn func(u *unit) error) error {
	if c.UserID == "" {
		return &AuthorizationError{}
	}

	var events []Event
	err := e.Store.WithTx(ctx, func(s Store) error {
		u := &unit{engine: e, ctx: ctx, store: s, caller: c, today: e.Today(c)}
		if err := fn(u); err != nil {
			return err
		}
		events = u.events
		return nil
	})
	if err != nil {
		err = wrapStore(op, err)
		var se *StoreError
		if errors.As(err, &se) {
			e.Log.Error().Err(se.Err).Str("op", op).Str("user_id", string(c.UserID)).Msg("ledger unit rolled back")
		}
		return err
	}

	for _, ev := range events {
		if nerr := e.Notifier.Notify(ctx, ev); nerr != nil {
			e.Log.Warn().Err(nerr).Str("event", string(ev.Type)).Msg("notify failed")
		}
	}
	return nil
}

// read runs fn against the store outside a transaction, after checking
// membership of workspaceID.
func (e *Engine) read(ctx context.Context, op string, c Caller, workspaceID WorkspaceID, fn func(s Store) error) error {
	if c.UserID == "" {
		return &AuthorizationError{}
	}
	u := &unit{engine: e, ctx: ctx, store: e.Store, caller: c, today: e.Today(c)}
	if err := u.authorize(workspaceID); err != nil {
		return wrapStore(op, err)
	}
	return wrapStore(op, fn(e.Store))
}

// =============================================================================
// UNIT - State of one in-flight operation
// =============================================================================

type unit struct {
	engine *Engine
	ctx    context.Context
	store  Store
	caller Caller
	today  Date
	events []Event
}

func (u *unit) newID() string { return u.engine.NewID() }

func (u *unit) emit(ev Event) {
	ev.ActorID = u.caller.UserID
	ev.At = u.caller.Now
	u.events = append(u.events, ev)
}

func (u *unit) authorize(workspaceID WorkspaceID) error {
	if workspaceID == "" {
		return invalid("workspace", "No workspace found")
	}
	ok, err := u.store.IsMember(u.ctx, workspaceID, u.caller.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return &AuthorizationError{UserID: u.caller.UserID, WorkspaceID: workspaceID}
	}
	return nil
}

// owned authorizes access to a record loaded by id. A record in a workspace
// the caller cannot see is reported as missing, so its id reveals nothing.
func (u *unit) owned(resource string, id any, workspaceID WorkspaceID) error {
	err := u.authorize(workspaceID)
	if errors.Is(err, ErrUnauthorized) {
		return notFound(resource, id)
	}
	return err
}

// account loads an account that must belong to workspaceID.
func (u *unit) account(id AccountID, workspaceID WorkspaceID) (*Account, error) {
	if id == "" {
		return nil, invalid("account", "Account is required")
	}
	acct, err := u.store.GetAccount(u.ctx, id)
	if err != nil {
		return nil, err
	}
	if acct == nil || acct.WorkspaceID != workspaceID {
		return nil, notFound("account", id)
	}
	return acct, nil
}

// references checks that the optional category and expense of a
// transaction belong to workspaceID.
func (u *unit) references(in TransactionInput, workspaceID WorkspaceID) error {
	if in.CategoryID != "" {
		owner, err := u.store.CategoryWorkspace(u.ctx, in.CategoryID)
		if err != nil {
			return err
		}
		if owner != workspaceID {
			return notFound("category", in.CategoryID)
		}
	}
	if in.ExpenseID != "" {
		owner, err := u.store.ExpenseWorkspace(u.ctx, in.ExpenseID)
		if err != nil {
			return err
		}
		if owner != workspaceID {
			return notFound("expense", in.ExpenseID)
		}
	}
	return nil
}

// =============================================================================
// BALANCE PRIMITIVES
// =============================================================================

// applyDelta adds delta to the stored balance of an account.
func (u *unit) applyDelta(id AccountID, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	acct, err := u.store.GetAccount(u.ctx, id)
	if err != nil {
		return err
	}
	if acct == nil {
		return notFound("account", id)
	}
	balance := acct.Balance.Add(delta)
	if err := u.store.SetBalance(u.ctx, id, balance); err != nil {
		return err
	}
	u.emit(Event{Type: EventBalanceChanged, WorkspaceID: acct.WorkspaceID, AccountID: id, Delta: delta})
	return nil
}

// materialize creates the income transaction for in if it is activated
// and not yet linked, applies its effect and stores the link on the row.
// It reports whether anything was written.
func (u *unit) materialize(in *Income) (bool, error) {
	if !in.Activated(u.today) {
		return false, nil
	}
	return u.link(in)
}

// link is materialize without the date check. An edited row that already
// carried an effect keeps it through link, so a row whose transaction was
// recorded ahead of its date does not lose that transaction.
func (u *unit) link(in *Income) (bool, error) {
	amount, ok := in.ActivationAmount()
	if in.Materialized() || !ok {
		return false, nil
	}
	tx := Transaction{
		ID:          TransactionID(u.newID()),
		WorkspaceID: in.WorkspaceID,
		Type:        TxIncome,
		Date:        in.Date,
		Description: in.transactionDescription(),
		Amount:      amount,
		AccountID:   in.AccountID,
		CreatedAt:   u.caller.Now,
	}
	if err := u.store.InsertTransaction(u.ctx, tx); err != nil {
		return false, err
	}
	if err := u.applyDelta(tx.AccountID, tx.Delta()); err != nil {
		return false, err
	}
	in.TransactionID = tx.ID
	if err := u.store.UpdateIncome(u.ctx, *in); err != nil {
		return false, err
	}
	return true, nil
}

// dematerialize removes the transaction linked to in and reverses its
// effect. The reversal uses the linked transaction's own account and
// amount, which is exactly what was applied. The caller persists in.
func (u *unit) dematerialize(in *Income) error {
	if !in.Materialized() {
		return nil
	}
	tx, err := u.store.GetTransaction(u.ctx, in.TransactionID)
	if err != nil {
		return err
	}
	in.TransactionID = ""
	if tx == nil {
		// Link points at a transaction that no longer exists; nothing to reverse.
		return nil
	}
	if err := u.store.DeleteTransaction(u.ctx, tx.ID); err != nil {
		return err
	}
	return u.applyDelta(tx.AccountID, tx.Delta().Neg())
}
