/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Defines the JSON structures returned to the presentation layer. Field
  names follow the database column names the UI already knows
  (account_type, transaction_type, received_amount, ...).

  Requests are form-encoded and parsed in the handlers, so there are no
  request DTOs.

ENVELOPE:
  Every response is a tagged result:
    {"success": true,  "data": ...}
    {"success": false, "error": "..."}

MONEY:
  Amounts are decimal strings ("1250.00" stays exact). Dates are
  "YYYY-MM-DD".

SEE ALSO:
  - handlers.go: writeResult / writeError
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-ledger/budget"
	"github.com/warp/budget-ledger/ledger"
)

// =============================================================================
// ENVELOPE
// =============================================================================

type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type WorkspaceDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type AccountDTO struct {
	ID              string          `json:"id"`
	AccountType     string          `json:"account_type"`
	AccountSubtype  string          `json:"account_subtype,omitempty"`
	InstitutionName string          `json:"institution_name,omitempty"`
	Nickname        string          `json:"nickname"`
	Balance         decimal.Decimal `json:"balance"`
}

type TransactionDTO struct {
	ID              string          `json:"id"`
	TransactionType string          `json:"transaction_type"`
	Date            ledger.Date     `json:"date"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	AccountID       string          `json:"account_id"`
	CategoryID      string          `json:"category_id,omitempty"`
	ExpenseID       string          `json:"expense_id,omitempty"`
}

type IncomeDTO struct {
	ID             string              `json:"id"`
	Kind           string              `json:"kind"`
	AccountID      string              `json:"account_id"`
	Date           ledger.Date         `json:"date"`
	Description    string              `json:"description"`
	Amount         decimal.Decimal     `json:"amount"`
	PlannedAmount  decimal.NullDecimal `json:"planned_amount"`
	ReceivedAmount decimal.NullDecimal `json:"received_amount"`
	TransactionID  string              `json:"transaction_id,omitempty"`
}

type BudgetItemDTO struct {
	ID             string          `json:"id"`
	Kind           string          `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	CategoryID     string          `json:"category_id,omitempty"`
	RecurrenceType string          `json:"recurrence_type"`
	WeeklyDays     []int           `json:"weekly_days,omitempty"`
	DayOfMonth     int             `json:"day_of_month,omitempty"`
	YearlyDate     string          `json:"yearly_date,omitempty"`
}

type CategoryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toWorkspaceDTO(ws *ledger.Workspace) WorkspaceDTO {
	return WorkspaceDTO{
		ID:        string(ws.ID),
		Name:      ws.Name,
		Slug:      ws.Slug,
		OwnerID:   string(ws.OwnerID),
		CreatedAt: ws.CreatedAt,
	}
}

func toAccountDTO(a ledger.Account) AccountDTO {
	return AccountDTO{
		ID:              string(a.ID),
		AccountType:     string(a.Type),
		AccountSubtype:  a.Subtype,
		InstitutionName: a.Institution,
		Nickname:        a.Nickname,
		Balance:         a.Balance,
	}
}

func toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:              string(tx.ID),
		TransactionType: string(tx.Type),
		Date:            tx.Date,
		Description:     tx.Description,
		Amount:          tx.Amount,
		AccountID:       string(tx.AccountID),
		CategoryID:      string(tx.CategoryID),
		ExpenseID:       string(tx.ExpenseID),
	}
}

func toIncomeDTO(in ledger.Income) IncomeDTO {
	return IncomeDTO{
		ID:             string(in.ID),
		Kind:           string(in.Kind),
		AccountID:      string(in.AccountID),
		Date:           in.Date,
		Description:    in.Description,
		Amount:         in.Amount,
		PlannedAmount:  in.PlannedAmount,
		ReceivedAmount: in.ReceivedAmount,
		TransactionID:  string(in.TransactionID),
	}
}

func toBudgetItemDTO(item budget.Item) BudgetItemDTO {
	dto := BudgetItemDTO{
		ID:             string(item.ID),
		Kind:           string(item.Kind),
		Amount:         item.Amount,
		Description:    item.Description,
		CategoryID:     string(item.CategoryID),
		RecurrenceType: string(item.Recurrence.Type),
		DayOfMonth:     item.Recurrence.DayOfMonth,
		YearlyDate:     item.Recurrence.YearlyDate.String(),
	}
	for _, d := range item.Recurrence.WeeklyDays {
		dto.WeeklyDays = append(dto.WeeklyDays, int(d))
	}
	return dto
}

func toCategoryDTO(c budget.Category) CategoryDTO {
	return CategoryDTO{ID: string(c.ID), Name: c.Name, Color: c.Color}
}

func mapSlice[T, D any](in []T, f func(T) D) []D {
	out := make([]D, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
