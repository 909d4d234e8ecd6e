/*
store.go - Persistence interface for accounts, transactions, and income

PURPOSE:
  Defines the interface between the engine and the database. The Store is a
  plain row store: read/insert/update/delete per table. All business rules
  (balance arithmetic, income linkage, activation) live in the engine.

KEY INTERFACES:
  Store:   Per-table reads and writes
  TxStore: Store plus WithTx for atomic multi-statement units

CONVENTIONS:
  - Get* returns (nil, nil) when the row does not exist. The engine turns
    that into a NotFoundError with the right resource name.
  - Ids are assigned by the caller before Insert*. A store never invents ids.
  - Balances are only written via SetBalance, and only by the engine.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - ledger/store: In-memory for tests and dev

SEE ALSO:
  - engine.go: The only caller of WithTx
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STORE - Row-level persistence
// =============================================================================

type Store interface {
	// Workspaces
	GetWorkspace(ctx context.Context, id WorkspaceID) (*Workspace, error)
	InsertWorkspace(ctx context.Context, ws Workspace) error
	InsertMember(ctx context.Context, m Member) error
	IsMember(ctx context.Context, workspaceID WorkspaceID, userID UserID) (bool, error)
	// WorkspaceForUser returns the oldest workspace the user belongs to.
	WorkspaceForUser(ctx context.Context, userID UserID) (*Workspace, error)
	// ListWorkspaces returns every workspace, oldest first.
	ListWorkspaces(ctx context.Context) ([]Workspace, error)

	// Accounts
	GetAccount(ctx context.Context, id AccountID) (*Account, error)
	ListAccounts(ctx context.Context, workspaceID WorkspaceID) ([]Account, error)
	InsertAccount(ctx context.Context, a Account) error
	// UpdateAccount writes descriptive fields only. Balance is untouched.
	UpdateAccount(ctx context.Context, a Account) error
	SetBalance(ctx context.Context, id AccountID, balance decimal.Decimal) error
	DeleteAccount(ctx context.Context, id AccountID) error
	// CountAccountReferences counts transactions and income rows on the account.
	CountAccountReferences(ctx context.Context, id AccountID) (int, error)

	// Transactions
	GetTransaction(ctx context.Context, id TransactionID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
	InsertTransaction(ctx context.Context, tx Transaction) error
	UpdateTransaction(ctx context.Context, tx Transaction) error
	DeleteTransaction(ctx context.Context, id TransactionID) error

	// Income
	GetIncome(ctx context.Context, kind IncomeKind, id IncomeID) (*Income, error)
	ListIncome(ctx context.Context, filter IncomeFilter) ([]Income, error)
	// IncomeByTransaction finds the income row (either kind) linked to a transaction.
	IncomeByTransaction(ctx context.Context, id TransactionID) (*Income, error)
	InsertIncome(ctx context.Context, in Income) error
	UpdateIncome(ctx context.Context, in Income) error
	DeleteIncome(ctx context.Context, kind IncomeKind, id IncomeID) error

	// References. Each returns the owning workspace, or "" when no such
	// row exists.
	CategoryWorkspace(ctx context.Context, id CategoryID) (WorkspaceID, error)
	ExpenseWorkspace(ctx context.Context, id BudgetItemID) (WorkspaceID, error)
}

// =============================================================================
// TRANSACTIONAL STORE - For atomic operations across multiple writes
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// FILTERS
// =============================================================================

// TransactionFilter selects transactions by equality and date range.
// Zero-valued fields are ignored.
type TransactionFilter struct {
	WorkspaceID WorkspaceID
	AccountID   AccountID
	Type        TransactionType
	From        Date // inclusive
	To          Date // inclusive
}

func (f TransactionFilter) Match(tx Transaction) bool {
	if f.WorkspaceID != "" && tx.WorkspaceID != f.WorkspaceID {
		return false
	}
	if f.AccountID != "" && tx.AccountID != f.AccountID {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To) {
		return false
	}
	return true
}

// IncomeFilter selects income rows. Kind is required.
type IncomeFilter struct {
	WorkspaceID  WorkspaceID
	Kind         IncomeKind
	AccountID    AccountID
	UnlinkedOnly bool
}

func (f IncomeFilter) Match(in Income) bool {
	if in.Kind != f.Kind {
		return false
	}
	if f.WorkspaceID != "" && in.WorkspaceID != f.WorkspaceID {
		return false
	}
	if f.AccountID != "" && in.AccountID != f.AccountID {
		return false
	}
	if f.UnlinkedOnly && in.Materialized() {
		return false
	}
	return true
}
