/*
Package ledger provides the balance ledger engine.

PURPOSE:
  This package is the single authority through which anything that moves an
  account balance is created, modified, or removed. Transactions, paychecks,
  one-off income, and manual balance edits all go through the Engine so the
  stored balance never drifts from the transactions that explain it.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: Where money lives (banking or cash), carries a stored balance
  - Transaction: One applied balance effect (+income / -expense)
  - Income: A paycheck (recurring) or one-off (misc) income record
  - Workspace: The tenancy boundary every record belongs to

CENTRAL INVARIANT:
  For every account:
    balance == SUM(+amount for income transactions, -amount for expense transactions)

  Income records do not move the balance by themselves. They materialize a
  Transaction once they are "activated": an activation amount is present and
  the income date is today or earlier.

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every amount, never float64
  2. Linkage by id: an income row stores the id of the transaction it produced
  3. Explicit time: operations receive "now" from the caller
  4. Atomicity: each operation is one store transaction (see store.go)

SEE ALSO:
  - engine.go: Engine construction and the shared apply/reverse primitives
  - transactions.go, income.go, accounts.go: Public operations
  - store.go: Persistence interface
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type WorkspaceID string
type UserID string
type AccountID string
type TransactionID string
type IncomeID string
type CategoryID string
type BudgetItemID string

// =============================================================================
// WORKSPACE - Tenancy boundary
// =============================================================================

type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

type Workspace struct {
	ID        WorkspaceID
	Name      string
	Slug      string
	OwnerID   UserID
	CreatedAt time.Time
}

type Member struct {
	WorkspaceID WorkspaceID
	UserID      UserID
	Role        MemberRole
}

// =============================================================================
// ACCOUNT
// =============================================================================

type AccountType string

const (
	AccountBanking AccountType = "banking"
	AccountCash    AccountType = "cash"
)

func (t AccountType) Valid() bool { return t == AccountBanking || t == AccountCash }

type Account struct {
	ID          AccountID
	WorkspaceID WorkspaceID
	Type        AccountType
	Subtype     string // banking only (checking, savings, ...)
	Institution string // banking only
	Nickname    string
	Balance     decimal.Decimal
	CreatedAt   time.Time
}

// =============================================================================
// TRANSACTION - One applied balance effect
// =============================================================================

type TransactionType string

const (
	TxIncome  TransactionType = "income"
	TxExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool { return t == TxIncome || t == TxExpense }

// Delta returns the signed balance effect of amount for this type.
func (t TransactionType) Delta(amount decimal.Decimal) decimal.Decimal {
	if t == TxExpense {
		return amount.Neg()
	}
	return amount
}

type Transaction struct {
	ID          TransactionID
	WorkspaceID WorkspaceID
	Type        TransactionType
	Date        Date
	Description string
	Amount      decimal.Decimal // always positive; sign comes from Type
	AccountID   AccountID
	CategoryID  CategoryID   // optional
	ExpenseID   BudgetItemID // optional link to a budget item
	CreatedAt   time.Time
}

// Delta is the signed effect this transaction has on its account.
func (tx Transaction) Delta() decimal.Decimal {
	return tx.Type.Delta(tx.Amount)
}

// =============================================================================
// INCOME - Paychecks and one-off income
// =============================================================================

type IncomeKind string

const (
	IncomeRecurring IncomeKind = "recurring"
	IncomeMisc      IncomeKind = "misc"
)

func (k IncomeKind) Valid() bool { return k == IncomeRecurring || k == IncomeMisc }

const defaultPaycheckDescription = "Paycheck"

type Income struct {
	ID          IncomeID
	Kind        IncomeKind
	WorkspaceID WorkspaceID
	AccountID   AccountID
	Date        Date
	Description string
	Amount      decimal.Decimal

	// Recurring only. A paycheck may be recorded before it clears, in which
	// case ReceivedAmount is absent and nothing reaches the balance.
	PlannedAmount  decimal.NullDecimal
	ReceivedAmount decimal.NullDecimal

	// Set iff a balance effect has been materialized.
	TransactionID TransactionID
	CreatedAt     time.Time
}

// ActivationAmount is the amount that reaches the balance once the income is
// due: Amount for misc income, ReceivedAmount for paychecks.
func (in Income) ActivationAmount() (decimal.Decimal, bool) {
	if in.Kind == IncomeMisc {
		return in.Amount, in.Amount.IsPositive()
	}
	if !in.ReceivedAmount.Valid || !in.ReceivedAmount.Decimal.IsPositive() {
		return decimal.Zero, false
	}
	return in.ReceivedAmount.Decimal, true
}

// Activated reports whether the income should have a balance effect today.
func (in Income) Activated(today Date) bool {
	_, ok := in.ActivationAmount()
	return ok && in.Date.OnOrBefore(today)
}

// Materialized reports whether a transaction currently carries this income's effect.
func (in Income) Materialized() bool { return in.TransactionID != "" }

func (in Income) transactionDescription() string {
	if in.Description == "" && in.Kind == IncomeRecurring {
		return defaultPaycheckDescription
	}
	return in.Description
}

// =============================================================================
// CALLER - Who is acting, and when
// =============================================================================

// Caller identifies the acting user and the instant the operation is
// evaluated at. The engine never reads the wall clock itself.
type Caller struct {
	UserID UserID
	Now    time.Time
}

// =============================================================================
// EVENTS - Emitted after a unit commits
// =============================================================================

type EventType string

const (
	EventTransactionRecorded EventType = "transaction.recorded"
	EventTransactionUpdated  EventType = "transaction.updated"
	EventTransactionDeleted  EventType = "transaction.deleted"
	EventIncomeRecorded      EventType = "income.recorded"
	EventIncomeUpdated       EventType = "income.updated"
	EventIncomeDeleted       EventType = "income.deleted"
	EventBalanceChanged      EventType = "account.balance_changed"
	EventAccountDeleted      EventType = "account.deleted"
)

type Event struct {
	Type        EventType       `json:"type"`
	WorkspaceID WorkspaceID     `json:"workspace_id"`
	AccountID   AccountID       `json:"account_id,omitempty"`
	RecordID    string          `json:"record_id,omitempty"`
	Delta       decimal.Decimal `json:"delta"`
	ActorID     UserID          `json:"actor_id"`
	At          time.Time       `json:"at"`
}
