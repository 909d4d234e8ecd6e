package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-ledger/budget"
	"github.com/warp/budget-ledger/ledger"
	"github.com/warp/budget-ledger/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var (
	created = time.Date(2025, time.May, 1, 9, 30, 0, 0, time.UTC)
	march1  = ledger.NewDate(2025, time.March, 1)
)

func newStore(t *testing.T) *sqlite.Store {
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.InsertWorkspace(ctx, ledger.Workspace{ID: "ws", Name: "Home", Slug: "home-abc123", OwnerID: "alice", CreatedAt: created}))
	require.NoError(t, s.InsertMember(ctx, ledger.Member{WorkspaceID: "ws", UserID: "alice", Role: ledger.RoleOwner}))
	require.NoError(t, s.InsertAccount(ctx, ledger.Account{ID: "acct", WorkspaceID: "ws", Type: ledger.AccountBanking, Subtype: "checking", Institution: "First Bank", Nickname: "Main", CreatedAt: created}))
	return s
}

func insertTx(t *testing.T, s *sqlite.Store, id string, date ledger.Date, amount string) {
	require.NoError(t, s.InsertTransaction(context.Background(), ledger.Transaction{
		ID: ledger.TransactionID(id), WorkspaceID: "ws", Type: ledger.TxIncome, Date: date,
		Description: "Deposit", Amount: decimal.RequireFromString(amount), AccountID: "acct", CreatedAt: created,
	}))
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.db")

	s, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, s.InsertWorkspace(context.Background(), ledger.Workspace{ID: "ws", Name: "Home", Slug: "home", OwnerID: "alice", CreatedAt: created}))
	require.NoError(t, s.Close())

	// Reopening runs the migrations again without touching existing rows.
	s, err = sqlite.New(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping(context.Background()))

	ws, err := s.GetWorkspace(context.Background(), "ws")
	require.NoError(t, err)
	require.NotNil(t, ws)
	assert.Equal(t, "Home", ws.Name)
	assert.True(t, created.Equal(ws.CreatedAt))
}

func TestWithTx_RollsBack(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx ledger.Store) error {
		require.NoError(t, tx.SetBalance(ctx, "acct", decimal.NewFromInt(99)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	acct, err := s.GetAccount(ctx, "acct")
	require.NoError(t, err)
	assert.True(t, acct.Balance.IsZero())
}

func TestWithTx_Commits(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx ledger.Store) error {
		return tx.SetBalance(ctx, "acct", decimal.RequireFromString("12.34"))
	})
	require.NoError(t, err)

	acct, err := s.GetAccount(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, "12.34", acct.Balance.String())
}

// =============================================================================
// WORKSPACES / ACCOUNTS
// =============================================================================

func TestMembership(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	ok, err := s.IsMember(ctx, "ws", "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsMember(ctx, "ws", "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	// Adding the same member twice is harmless.
	require.NoError(t, s.InsertMember(ctx, ledger.Member{WorkspaceID: "ws", UserID: "alice", Role: ledger.RoleOwner}))

	ws, err := s.WorkspaceForUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, ledger.WorkspaceID("ws"), ws.ID)

	ws, err = s.WorkspaceForUser(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, ws)

	require.NoError(t, s.InsertWorkspace(ctx, ledger.Workspace{ID: "ws2", Name: "Cabin", Slug: "cabin-def456", OwnerID: "bob", CreatedAt: created.Add(time.Hour)}))
	all, err := s.ListWorkspaces(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ledger.WorkspaceID("ws"), all[0].ID)
	assert.Equal(t, ledger.UserID("bob"), all[1].OwnerID)
}

func TestAccountRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	acct, err := s.GetAccount(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountBanking, acct.Type)
	assert.Equal(t, "checking", acct.Subtype)
	assert.Equal(t, "First Bank", acct.Institution)

	missing, err := s.GetAccount(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInsertTransaction_UnknownAccountIsNotFound(t *testing.T) {
	s := newStore(t)
	err := s.InsertTransaction(context.Background(), ledger.Transaction{
		ID: "tx", WorkspaceID: "ws", Type: ledger.TxExpense, Date: march1, Description: "x",
		Amount: decimal.NewFromInt(1), AccountID: "ghost", CreatedAt: created,
	})
	assert.True(t, ledger.IsNotFound(err))
}

func TestCountAccountReferences(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	insertTx(t, s, "tx", march1, "10")
	require.NoError(t, s.InsertIncome(ctx, ledger.Income{
		ID: "pay", Kind: ledger.IncomeRecurring, WorkspaceID: "ws", AccountID: "acct",
		Date: march1, Amount: decimal.NewFromInt(100), CreatedAt: created,
	}))

	n, err := s.CountAccountReferences(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// =============================================================================
// TRANSACTIONS / INCOME
// =============================================================================

func TestListTransactions_FilterAndOrder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	insertTx(t, s, "a", march1, "1")
	insertTx(t, s, "b", march1.AddDays(2), "2")
	insertTx(t, s, "c", march1, "3")

	txs, err := s.ListTransactions(ctx, ledger.TransactionFilter{WorkspaceID: "ws"})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, []ledger.TransactionID{"b", "c", "a"}, []ledger.TransactionID{txs[0].ID, txs[1].ID, txs[2].ID})

	txs, err = s.ListTransactions(ctx, ledger.TransactionFilter{WorkspaceID: "ws", From: march1.AddDays(1)})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "2", txs[0].Amount.String())
	assert.True(t, march1.AddDays(2).Equal(txs[0].Date))

	txs, err = s.ListTransactions(ctx, ledger.TransactionFilter{WorkspaceID: "ws", Type: ledger.TxExpense})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestIncome_LinkAndUnlink(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	insertTx(t, s, "tx", march1, "100")

	pay := ledger.Income{
		ID: "pay", Kind: ledger.IncomeRecurring, WorkspaceID: "ws", AccountID: "acct", Date: march1,
		Amount: decimal.NewFromInt(100), PlannedAmount: decimal.NewNullDecimal(decimal.NewFromInt(100)),
		ReceivedAmount: decimal.NewNullDecimal(decimal.NewFromInt(100)), TransactionID: "tx", CreatedAt: created,
	}
	require.NoError(t, s.InsertIncome(ctx, pay))

	// GIVEN: A paycheck linked to a transaction
	linked, err := s.IncomeByTransaction(ctx, "tx")
	require.NoError(t, err)
	require.NotNil(t, linked)
	assert.Equal(t, ledger.IncomeRecurring, linked.Kind)
	assert.True(t, linked.ReceivedAmount.Valid)

	// WHEN: The transaction row is deleted
	require.NoError(t, s.DeleteTransaction(ctx, "tx"))

	// THEN: The link is cleared by the database
	got, err := s.GetIncome(ctx, ledger.IncomeRecurring, "pay")
	require.NoError(t, err)
	assert.False(t, got.Materialized())

	unlinked, err := s.ListIncome(ctx, ledger.IncomeFilter{WorkspaceID: "ws", Kind: ledger.IncomeRecurring, UnlinkedOnly: true})
	require.NoError(t, err)
	assert.Len(t, unlinked, 1)
}

func TestIncome_MiscHasNoPaycheckFields(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.InsertIncome(ctx, ledger.Income{
		ID: "gift", Kind: ledger.IncomeMisc, WorkspaceID: "ws", AccountID: "acct", Date: march1,
		Description: "Gift", Amount: decimal.NewFromInt(20), CreatedAt: created,
	}))

	got, err := s.GetIncome(ctx, ledger.IncomeMisc, "gift")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Gift", got.Description)
	assert.False(t, got.PlannedAmount.Valid)
	assert.False(t, got.ReceivedAmount.Valid)

	// A misc id is not a recurring id.
	other, err := s.GetIncome(ctx, ledger.IncomeRecurring, "gift")
	require.NoError(t, err)
	assert.Nil(t, other)
}

// =============================================================================
// BUDGET ITEMS / CATEGORIES
// =============================================================================

func TestBudgetItems_RecurrenceRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	items := []budget.Item{
		{ID: "gym", Kind: budget.KindBill, WorkspaceID: "ws", Amount: decimal.NewFromInt(30), Description: "Gym",
			Recurrence: budget.Recurrence{Type: budget.Weekly, WeeklyDays: []time.Weekday{time.Monday, time.Thursday}}},
		{ID: "rent", Kind: budget.KindBill, WorkspaceID: "ws", Amount: decimal.NewFromInt(1200), Description: "Rent",
			Recurrence: budget.Recurrence{Type: budget.Monthly, DayOfMonth: budget.LastDay}},
		{ID: "tax", Kind: budget.KindExpense, WorkspaceID: "ws", Amount: decimal.NewFromInt(400), Description: "Car tax",
			Recurrence: budget.Recurrence{Type: budget.Yearly, YearlyDate: budget.MonthDay{Month: time.February, Day: 29}}},
	}
	for _, item := range items {
		item.CreatedAt = created
		require.NoError(t, s.InsertItem(ctx, item))
	}

	gym, err := s.GetItem(ctx, budget.KindBill, "gym")
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Thursday}, gym.Recurrence.WeeklyDays)

	rent, err := s.GetItem(ctx, budget.KindBill, "rent")
	require.NoError(t, err)
	assert.Equal(t, budget.LastDay, rent.Recurrence.DayOfMonth)

	tax, err := s.GetItem(ctx, budget.KindExpense, "tax")
	require.NoError(t, err)
	assert.Equal(t, "02-29", tax.Recurrence.YearlyDate.String())

	bills, err := s.ListItems(ctx, "ws", budget.KindBill)
	require.NoError(t, err)
	assert.Len(t, bills, 2)

	// Bills and expenses live in separate tables.
	none, err := s.GetItem(ctx, budget.KindExpense, "rent")
	require.NoError(t, err)
	assert.Nil(t, none)

	owner, err := s.ExpenseWorkspace(ctx, "tax")
	require.NoError(t, err)
	assert.Equal(t, ledger.WorkspaceID("ws"), owner)
	owner, err = s.ExpenseWorkspace(ctx, "rent")
	require.NoError(t, err)
	assert.Empty(t, owner, "bills are not expenses")
}

func TestCategories_UniqueNameAndDeleteDetaches(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertCategory(ctx, budget.Category{ID: "food", WorkspaceID: "ws", Name: "food", Color: "#22c55e", CreatedAt: created}))

	err := s.InsertCategory(ctx, budget.Category{ID: "food2", WorkspaceID: "ws", Name: "food", Color: "#000000", CreatedAt: created})
	var ve *ledger.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "A category with this name already exists", ve.Message)

	owner, err := s.CategoryWorkspace(ctx, "food")
	require.NoError(t, err)
	assert.Equal(t, ledger.WorkspaceID("ws"), owner)

	// GIVEN: A transaction and a bill in the category
	require.NoError(t, s.InsertTransaction(ctx, ledger.Transaction{
		ID: "tx", WorkspaceID: "ws", Type: ledger.TxExpense, Date: march1, Description: "Groceries",
		Amount: decimal.NewFromInt(50), AccountID: "acct", CategoryID: "food", CreatedAt: created,
	}))
	require.NoError(t, s.InsertItem(ctx, budget.Item{
		ID: "veg", Kind: budget.KindExpense, WorkspaceID: "ws", Amount: decimal.NewFromInt(20), Description: "Veg box",
		CategoryID: "food", Recurrence: budget.Recurrence{Type: budget.Weekly, WeeklyDays: []time.Weekday{time.Friday}}, CreatedAt: created,
	}))

	// WHEN: The category is deleted
	require.NoError(t, s.DeleteCategory(ctx, "food"))
	owner, err = s.CategoryWorkspace(ctx, "food")
	require.NoError(t, err)
	assert.Empty(t, owner)

	// THEN: Both survive without a category
	tx, err := s.GetTransaction(ctx, "tx")
	require.NoError(t, err)
	assert.Empty(t, tx.CategoryID)
	item, err := s.GetItem(ctx, budget.KindExpense, "veg")
	require.NoError(t, err)
	assert.Empty(t, item.CategoryID)
}
