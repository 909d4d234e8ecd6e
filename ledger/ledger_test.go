/*
ledger_test.go - Shared fixtures and transaction tests

Every scenario runs against both stores (memory and SQLite) so the two
implementations are held to the same behavior.

The balance of an account must always equal the signed sum of its
transactions; checkBalanced asserts this after each scenario step.
*/
package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-ledger/budget"
	"github.com/warp/budget-ledger/ledger"
	"github.com/warp/budget-ledger/ledger/store"
	"github.com/warp/budget-ledger/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var (
	now      = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	today    = ledger.NewDate(2025, time.June, 15)
	tomorrow = today.AddDays(1)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nullDec(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

// recorder is a Notifier that keeps every event it receives.
type recorder struct {
	mu     sync.Mutex
	events []ledger.Event
	err    error
}

func (r *recorder) Notify(_ context.Context, ev ledger.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) types() []ledger.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ledger.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  ledger.TxStore
	engine *ledger.Engine
	events *recorder
	alice  ledger.Caller
	ws     ledger.WorkspaceID
	acct   ledger.AccountID
}

var backends = map[string]func(t *testing.T) ledger.TxStore{
	"memory": func(t *testing.T) ledger.TxStore { return store.NewTxMemory() },
	"sqlite": func(t *testing.T) ledger.TxStore {
		s, err := sqlite.New(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	},
}

// forEachBackend runs fn once per store with a fresh fixture: one
// workspace owned by alice holding one empty cash account.
func forEachBackend(t *testing.T, fn func(t *testing.T, f *fixture)) {
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, newFixture(t, newStore(t)))
		})
	}
}

func newFixture(t *testing.T, s ledger.TxStore) *fixture {
	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		store:  s,
		events: &recorder{},
		alice:  ledger.Caller{UserID: "alice", Now: now},
	}
	f.engine = ledger.NewEngine(s)
	f.engine.Location = time.UTC
	f.engine.Notifier = f.events

	ws, err := f.engine.CreateWorkspace(f.ctx, f.alice, "Smith Family")
	require.NoError(t, err)
	f.ws = ws.ID
	f.acct = f.newAccount("Wallet")
	f.events.reset()
	return f
}

func (f *fixture) newAccount(nickname string) ledger.AccountID {
	acct, err := f.engine.CreateAccount(f.ctx, f.alice, ledger.AccountInput{
		WorkspaceID: f.ws,
		Type:        ledger.AccountCash,
		Nickname:    nickname,
	})
	require.NoError(f.t, err)
	return acct.ID
}

// category creates a category in workspaceID on whichever store backs f.
func (f *fixture) category(id ledger.CategoryID, workspaceID ledger.WorkspaceID) {
	f.t.Helper()
	switch s := f.store.(type) {
	case *store.TxMemory:
		require.NoError(f.t, s.AddCategory(id, workspaceID))
	case *sqlite.Store:
		require.NoError(f.t, s.InsertCategory(f.ctx, budget.Category{
			ID: id, WorkspaceID: workspaceID, Name: string(id), Color: budget.DefaultColor, CreatedAt: now,
		}))
	default:
		f.t.Fatalf("no categories on %T", f.store)
	}
}

// expense creates an expense budget item in workspaceID.
func (f *fixture) expense(id ledger.BudgetItemID, workspaceID ledger.WorkspaceID) {
	f.t.Helper()
	switch s := f.store.(type) {
	case *store.TxMemory:
		require.NoError(f.t, s.AddExpense(id, workspaceID))
	case *sqlite.Store:
		require.NoError(f.t, s.InsertItem(f.ctx, budget.Item{
			ID: id, Kind: budget.KindExpense, WorkspaceID: workspaceID, Amount: dec("40"), Description: "Groceries",
			Recurrence: budget.Recurrence{Type: budget.Monthly, DayOfMonth: 1}, CreatedAt: now,
		}))
	default:
		f.t.Fatalf("no expenses on %T", f.store)
	}
}

func (f *fixture) balance(id ledger.AccountID) decimal.Decimal {
	acct, err := f.store.GetAccount(f.ctx, id)
	require.NoError(f.t, err)
	require.NotNil(f.t, acct)
	return acct.Balance
}

func (f *fixture) assertBalance(id ledger.AccountID, want string) {
	f.t.Helper()
	got := f.balance(id)
	assert.True(f.t, dec(want).Equal(got), "balance: want %s, got %s", want, got)
	f.checkBalanced(id)
}

// checkBalanced asserts the stored balance equals the sum of transactions.
func (f *fixture) checkBalanced(id ledger.AccountID) {
	f.t.Helper()
	rec, err := f.engine.Reconcile(f.ctx, f.alice, id)
	require.NoError(f.t, err)
	assert.True(f.t, rec.Balanced, "stored %s, computed %s", rec.Stored, rec.Computed)
}

func (f *fixture) transactions(id ledger.AccountID) []ledger.Transaction {
	txs, err := f.engine.ListTransactions(f.ctx, f.alice, ledger.TransactionFilter{WorkspaceID: f.ws, AccountID: id})
	require.NoError(f.t, err)
	return txs
}

func (f *fixture) income(kind ledger.IncomeKind) []ledger.Income {
	rows, err := f.engine.ListIncome(f.ctx, f.alice, ledger.IncomeFilter{WorkspaceID: f.ws, Kind: kind})
	require.NoError(f.t, err)
	return rows
}

func (f *fixture) record(txType ledger.TransactionType, amount string) *ledger.Transaction {
	tx, err := f.engine.RecordTransaction(f.ctx, f.alice, ledger.TransactionInput{
		WorkspaceID: f.ws,
		Type:        txType,
		Date:        today,
		Description: "Groceries",
		Amount:      dec(amount),
		AccountID:   f.acct,
	})
	require.NoError(f.t, err)
	return tx
}

// =============================================================================
// RECORD
// =============================================================================

func TestRecordTransaction_MovesBalance(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		// GIVEN: An empty account
		// WHEN: Recording a 30 expense and a 100 income
		f.record(ledger.TxExpense, "30")
		f.assertBalance(f.acct, "-30")
		f.record(ledger.TxIncome, "100")

		// THEN: Balance is 70 and both transactions are listed
		f.assertBalance(f.acct, "70")
		assert.Len(t, f.transactions(f.acct), 2)
	})
}

func TestRecordTransaction_IncomeGetsLinkedMiscRow(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		// GIVEN: An income transaction
		tx := f.record(ledger.TxIncome, "120.50")

		// THEN: A one-off income row mirrors it and points back at it
		rows := f.income(ledger.IncomeMisc)
		require.Len(t, rows, 1)
		assert.Equal(t, tx.ID, rows[0].TransactionID)
		assert.True(t, dec("120.50").Equal(rows[0].Amount))
		assert.Equal(t, tx.Description, rows[0].Description)

		// AND: The balance moved once, not twice
		f.assertBalance(f.acct, "120.50")
	})
}

func TestRecordTransaction_CategoryAndExpenseOfAnotherWorkspace(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		// GIVEN: A category and expense here, and another pair in Bob's workspace
		bob := ledger.Caller{UserID: "bob", Now: now}
		other, err := f.engine.CreateWorkspace(f.ctx, bob, "Bob")
		require.NoError(t, err)
		f.category("food", f.ws)
		f.expense("groceries", f.ws)
		f.category("secret", other.ID)
		f.expense("bobs-rent", other.ID)

		in := ledger.TransactionInput{
			WorkspaceID: f.ws,
			Type:        ledger.TxExpense,
			Date:        today,
			Description: "Market",
			Amount:      dec("25"),
			AccountID:   f.acct,
			CategoryID:  "food",
			ExpenseID:   "groceries",
		}

		// WHEN: Alice records with her own references
		tx, err := f.engine.RecordTransaction(f.ctx, f.alice, in)
		require.NoError(t, err)
		assert.Equal(t, ledger.CategoryID("food"), tx.CategoryID)
		assert.Equal(t, ledger.BudgetItemID("groceries"), tx.ExpenseID)

		// THEN: Bob's category and expense are unknown to her, on record and edit
		foreignCategory := in
		foreignCategory.CategoryID = "secret"
		_, err = f.engine.RecordTransaction(f.ctx, f.alice, foreignCategory)
		var nf *ledger.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "category", nf.Resource)

		foreignExpense := in
		foreignExpense.ExpenseID = "bobs-rent"
		_, err = f.engine.UpdateTransaction(f.ctx, f.alice, tx.ID, foreignExpense)
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "expense", nf.Resource)

		missing := in
		missing.CategoryID = "no-such-category"
		_, err = f.engine.UpdateTransaction(f.ctx, f.alice, tx.ID, missing)
		assert.True(t, ledger.IsNotFound(err))

		// AND: Only the first transaction landed, unchanged
		f.assertBalance(f.acct, "-25")
		txs := f.transactions(f.acct)
		require.Len(t, txs, 1)
		assert.Equal(t, ledger.CategoryID("food"), txs[0].CategoryID)
		assert.Equal(t, ledger.BudgetItemID("groceries"), txs[0].ExpenseID)
	})
}

func TestRecordTransaction_Validation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		base := ledger.TransactionInput{
			WorkspaceID: f.ws,
			Type:        ledger.TxExpense,
			Date:        today,
			Description: "Coffee",
			Amount:      dec("4"),
			AccountID:   f.acct,
		}
		tests := []struct {
			name   string
			mutate func(in *ledger.TransactionInput)
			want   string
		}{
			{"missing description", func(in *ledger.TransactionInput) { in.Description = "" }, "Transaction type, date, description, amount, and account are required"},
			{"missing date", func(in *ledger.TransactionInput) { in.Date = ledger.Date{} }, "Transaction type, date, description, amount, and account are required"},
			{"missing account", func(in *ledger.TransactionInput) { in.AccountID = "" }, "Transaction type, date, description, amount, and account are required"},
			{"unknown type", func(in *ledger.TransactionInput) { in.Type = "transfer" }, "Transaction type must be income or expense"},
			{"negative amount", func(in *ledger.TransactionInput) { in.Amount = dec("-4") }, "Amount must be greater than zero"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := base
				tt.mutate(&in)
				_, err := f.engine.RecordTransaction(f.ctx, f.alice, in)

				var ve *ledger.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.want, ve.Message)
				assert.True(t, ledger.IsClientError(err))
			})
		}
		f.assertBalance(f.acct, "0")
		assert.Empty(t, f.events.types())
	})
}

// =============================================================================
// UPDATE
// =============================================================================

func TestUpdateTransaction_MovesEffectBetweenAccounts(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		// GIVEN: A 30 expense on the wallet
		tx := f.record(ledger.TxExpense, "30")
		savings := f.newAccount("Savings")

		// WHEN: The expense becomes 50 on savings
		_, err := f.engine.UpdateTransaction(f.ctx, f.alice, tx.ID, ledger.TransactionInput{
			Type:        ledger.TxExpense,
			Date:        today,
			Description: "Groceries",
			Amount:      dec("50"),
			AccountID:   savings,
		})
		require.NoError(t, err)

		// THEN: The wallet is restored and savings carries the new effect
		f.assertBalance(f.acct, "0")
		f.assertBalance(savings, "-50")
	})
}

func TestUpdateTransaction_SameValuesKeepBalance(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		tx := f.record(ledger.TxExpense, "30")
		in := ledger.TransactionInput{
			Type:        tx.Type,
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Amount,
			AccountID:   tx.AccountID,
		}

		for i := 0; i < 3; i++ {
			_, err := f.engine.UpdateTransaction(f.ctx, f.alice, tx.ID, in)
			require.NoError(t, err)
		}

		f.assertBalance(f.acct, "-30")
	})
}

func TestUpdateTransaction_TypeChangeFollowsLinkedIncome(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		// GIVEN: A 100 income transaction with its linked one-off income
		tx := f.record(ledger.TxIncome, "100")
		require.Len(t, f.income(ledger.IncomeMisc), 1)

		in := ledger.TransactionInput{
			Type:        ledger.TxExpense,
			Date:        today,
			Description: "Refund reversed",
			Amount:      dec("100"),
			AccountID:   f.acct,
		}

		// WHEN: It becomes an expense
		_, err := f.engine.UpdateTransaction(f.ctx, f.alice, tx.ID, in)
		require.NoError(t, err)

		// THEN: The linked income row is gone and the balance swung by 200
		assert.Empty(t, f.income(ledger.IncomeMisc))
		f.assertBalance(f.acct, "-100")

		// WHEN: It becomes income again at 80
		in.Type = ledger.TxIncome
		in.Amount = dec("80")
		_, err = f.engine.UpdateTransaction(f.ctx, f.alice, tx.ID, in)
		require.NoError(t, err)

		// THEN: A new linked row exists for the new values
		rows := f.income(ledger.IncomeMisc)
		require.Len(t, rows, 1)
		assert.Equal(t, tx.ID, rows[0].TransactionID)
		assert.True(t, dec("80").Equal(rows[0].Amount))
		f.assertBalance(f.acct, "80")
	})
}

func TestUpdateTransaction_PaycheckLinkMirrorsReceivedAmount(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		// GIVEN: A received paycheck
		pay, err := f.engine.RecordIncome(f.ctx, f.alice, ledger.IncomeRecurring, ledger.IncomeInput{
			WorkspaceID:    f.ws,
			AccountID:      f.acct,
			Date:           today,
			Amount:         dec("1000"),
			ReceivedAmount: nullDec("1000"),
		})
		require.NoError(t, err)

		// WHEN: Its transaction is edited to 950
		_, err = f.engine.UpdateTransaction(f.ctx, f.alice, pay.TransactionID, ledger.TransactionInput{
			Type:        ledger.TxIncome,
			Date:        today,
			Description: "Paycheck",
			Amount:      dec("950"),
			AccountID:   f.acct,
		})
		require.NoError(t, err)

		// THEN: The paycheck's received amount follows
		rows := f.income(ledger.IncomeRecurring)
		require.Len(t, rows, 1)
		assert.True(t, rows[0].ReceivedAmount.Valid)
		assert.True(t, dec("950").Equal(rows[0].ReceivedAmount.Decimal))
		assert.True(t, dec("1000").Equal(rows[0].Amount))
		f.assertBalance(f.acct, "950")
	})
}

func TestUpdateTransaction_PaycheckTurnedExpenseBecomesForecast(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		// GIVEN: A planned paycheck of 1000 that was received
		pay, err := f.engine.RecordIncome(f.ctx, f.alice, ledger.IncomeRecurring, ledger.IncomeInput{
			WorkspaceID:    f.ws,
			AccountID:      f.acct,
			Date:           today,
			Description:    "June paycheck",
			Amount:         dec("1000"),
			PlannedAmount:  nullDec("1000"),
			ReceivedAmount: nullDec("1000"),
		})
		require.NoError(t, err)

		// WHEN: Its transaction is retyped as an expense
		_, err = f.engine.UpdateTransaction(f.ctx, f.alice, pay.TransactionID, ledger.TransactionInput{
			Type:        ledger.TxExpense,
			Date:        today,
			Description: "Payroll clawback",
			Amount:      dec("1000"),
			AccountID:   f.acct,
		})
		require.NoError(t, err)

		// THEN: The paycheck keeps its forecast but is no longer received
		rows := f.income(ledger.IncomeRecurring)
		require.Len(t, rows, 1)
		assert.Equal(t, pay.ID, rows[0].ID)
		assert.False(t, rows[0].Materialized())
		assert.False(t, rows[0].ReceivedAmount.Valid)
		require.True(t, rows[0].PlannedAmount.Valid)
		assert.True(t, dec("1000").Equal(rows[0].PlannedAmount.Decimal))
		assert.Empty(t, f.income(ledger.IncomeMisc))
		f.assertBalance(f.acct, "-1000")

		// AND: Settling does not book it a second time
		settled, err := f.engine.SettleDueIncome(f.ctx, f.alice, f.ws)
		require.NoError(t, err)
		assert.Empty(t, settled)
		f.assertBalance(f.acct, "-1000")
	})
}

func TestUpdateTransaction_NotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		_, err := f.engine.UpdateTransaction(f.ctx, f.alice, "missing", ledger.TransactionInput{})
		assert.True(t, ledger.IsNotFound(err))
	})
}

// =============================================================================
// DELETE
// =============================================================================

func TestDeleteTransaction_ReversesEffectAndLinkedIncome(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		// GIVEN: An expense and an income
		expense := f.record(ledger.TxExpense, "30")
		income := f.record(ledger.TxIncome, "100")

		// WHEN: Both are deleted
		require.NoError(t, f.engine.DeleteTransaction(f.ctx, f.alice, income.ID))
		f.assertBalance(f.acct, "-30")
		require.NoError(t, f.engine.DeleteTransaction(f.ctx, f.alice, expense.ID))

		// THEN: Nothing is left
		f.assertBalance(f.acct, "0")
		assert.Empty(t, f.transactions(f.acct))
		assert.Empty(t, f.income(ledger.IncomeMisc))

		// AND: Deleting again is NotFound
		err := f.engine.DeleteTransaction(f.ctx, f.alice, expense.ID)
		assert.True(t, ledger.IsNotFound(err))
	})
}

// =============================================================================
// LISTING
// =============================================================================

func TestListTransactions_Filters(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		for i, amount := range []string{"10", "20", "30"} {
			_, err := f.engine.RecordTransaction(f.ctx, f.alice, ledger.TransactionInput{
				WorkspaceID: f.ws,
				Type:        ledger.TxExpense,
				Date:        today.AddDays(-i),
				Description: "Lunch",
				Amount:      dec(amount),
				AccountID:   f.acct,
			})
			require.NoError(t, err)
		}
		f.record(ledger.TxIncome, "5")

		all := f.transactions(f.acct)
		require.Len(t, all, 4)
		for i := 1; i < len(all); i++ {
			assert.False(t, all[i].Date.After(all[i-1].Date), "newest first")
		}

		expenses, err := f.engine.ListTransactions(f.ctx, f.alice, ledger.TransactionFilter{WorkspaceID: f.ws, Type: ledger.TxExpense})
		require.NoError(t, err)
		assert.Len(t, expenses, 3)

		ranged, err := f.engine.ListTransactions(f.ctx, f.alice, ledger.TransactionFilter{
			WorkspaceID: f.ws,
			From:        today.AddDays(-1),
			To:          today.AddDays(-1),
		})
		require.NoError(t, err)
		require.Len(t, ranged, 1)
		assert.True(t, dec("20").Equal(ranged[0].Amount))
	})
}

// =============================================================================
// ATOMICITY
// =============================================================================

var errBoom = errors.New("disk on fire")

// failingStore fails one named write.
type failingStore struct {
	ledger.Store
	failOn string
}

func (s failingStore) UpdateIncome(ctx context.Context, in ledger.Income) error {
	if s.failOn == "UpdateIncome" {
		return errBoom
	}
	return s.Store.UpdateIncome(ctx, in)
}

func (s failingStore) SetBalance(ctx context.Context, id ledger.AccountID, balance decimal.Decimal) error {
	if s.failOn == "SetBalance" {
		return errBoom
	}
	return s.Store.SetBalance(ctx, id, balance)
}

func (s failingStore) DeleteTransaction(ctx context.Context, id ledger.TransactionID) error {
	if s.failOn == "DeleteTransaction" {
		return errBoom
	}
	return s.Store.DeleteTransaction(ctx, id)
}

type failingTxStore struct {
	ledger.TxStore
	failOn string
}

func (s failingTxStore) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	return s.TxStore.WithTx(ctx, func(st ledger.Store) error {
		return fn(failingStore{Store: st, failOn: s.failOn})
	})
}

func TestFailedStep_RollsBackWholeUnit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		// GIVEN: A store whose final income write fails
		f.engine.Store = failingTxStore{TxStore: f.store, failOn: "UpdateIncome"}

		// WHEN: Recording a paycheck that is due today
		_, err := f.engine.RecordIncome(f.ctx, f.alice, ledger.IncomeMisc, ledger.IncomeInput{
			WorkspaceID: f.ws,
			AccountID:   f.acct,
			Date:        today,
			Amount:      dec("50"),
		})

		// THEN: The error is a store failure with a generic message
		require.Error(t, err)
		assert.ErrorIs(t, err, ledger.ErrStore)
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, "failed to save", err.Error())

		// AND: Nothing from the unit survived and nothing was published
		f.engine.Store = f.store
		f.assertBalance(f.acct, "0")
		assert.Empty(t, f.transactions(f.acct))
		assert.Empty(t, f.income(ledger.IncomeMisc))
		assert.Empty(t, f.events.types())
	})
}

func TestFailedDelete_KeepsTransaction(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		tx := f.record(ledger.TxIncome, "100")
		f.events.reset()

		f.engine.Store = failingTxStore{TxStore: f.store, failOn: "DeleteTransaction"}
		err := f.engine.DeleteTransaction(f.ctx, f.alice, tx.ID)
		assert.ErrorIs(t, err, ledger.ErrStore)

		f.engine.Store = f.store
		f.assertBalance(f.acct, "100")
		assert.Len(t, f.income(ledger.IncomeMisc), 1)
		assert.Empty(t, f.events.types())
	})
}

// =============================================================================
// EVENTS
// =============================================================================

func TestEvents_PublishedAfterCommit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		f.record(ledger.TxExpense, "30")

		assert.Equal(t, []ledger.EventType{
			ledger.EventBalanceChanged,
			ledger.EventTransactionRecorded,
		}, f.events.types())
		for _, ev := range f.events.events {
			assert.Equal(t, ledger.UserID("alice"), ev.ActorID)
			assert.Equal(t, f.ws, ev.WorkspaceID)
			assert.True(t, dec("-30").Equal(ev.Delta))
		}
	})
}

func TestEvents_NotifierFailureDoesNotFailOperation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		f.events.err = errors.New("broker down")

		f.record(ledger.TxExpense, "30")

		f.assertBalance(f.acct, "-30")
		assert.NotEmpty(t, f.events.types())
	})
}
