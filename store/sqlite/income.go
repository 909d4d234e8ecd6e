package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-ledger/ledger"
)

// =============================================================================
// INCOME - recurring_income and misc_income
// =============================================================================

// Both tables are read through the same column list; misc_income has no
// planned/received columns so NULLs are selected in their place.
func incomeSelect(kind ledger.IncomeKind) (string, error) {
	switch kind {
	case ledger.IncomeRecurring:
		return `SELECT id, workspace_id, account_id, date, amount, description,
			planned_amount, received_amount, transaction_id, created_at FROM recurring_income`, nil
	case ledger.IncomeMisc:
		return `SELECT id, workspace_id, account_id, date, amount, description,
			NULL, NULL, transaction_id, created_at FROM misc_income`, nil
	}
	return "", fmt.Errorf("unknown income kind %q", kind)
}

func incomeTable(kind ledger.IncomeKind) (string, error) {
	switch kind {
	case ledger.IncomeRecurring:
		return "recurring_income", nil
	case ledger.IncomeMisc:
		return "misc_income", nil
	}
	return "", fmt.Errorf("unknown income kind %q", kind)
}

func scanIncome(kind ledger.IncomeKind, row scanner) (*ledger.Income, error) {
	in := ledger.Income{Kind: kind}
	var date, createdAt string
	var description, transactionID sql.NullString
	var planned, received decimal.NullDecimal
	err := row.Scan(&in.ID, &in.WorkspaceID, &in.AccountID, &date, &in.Amount, &description,
		&planned, &received, &transactionID, &createdAt)
	if err != nil {
		return nil, err
	}
	if in.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	in.Description = description.String
	in.PlannedAmount = planned
	in.ReceivedAmount = received
	in.TransactionID = ledger.TransactionID(transactionID.String)
	in.CreatedAt = parseTime(createdAt)
	return &in, nil
}

func (s *Store) GetIncome(ctx context.Context, kind ledger.IncomeKind, id ledger.IncomeID) (*ledger.Income, error) {
	query, err := incomeSelect(kind)
	if err != nil {
		return nil, err
	}
	in, err := scanIncome(kind, s.q.QueryRowContext(ctx, query+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s income: %w", kind, err)
	}
	return in, nil
}

func (s *Store) ListIncome(ctx context.Context, filter ledger.IncomeFilter) ([]ledger.Income, error) {
	query, err := incomeSelect(filter.Kind)
	if err != nil {
		return nil, err
	}
	var where []string
	var args []any
	if filter.WorkspaceID != "" {
		where = append(where, "workspace_id = ?")
		args = append(args, filter.WorkspaceID)
	}
	if filter.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.UnlinkedOnly {
		where = append(where, "transaction_id IS NULL")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, rowid DESC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s income: %w", filter.Kind, err)
	}
	defer rows.Close()

	var out []ledger.Income
	for rows.Next() {
		in, err := scanIncome(filter.Kind, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

func (s *Store) IncomeByTransaction(ctx context.Context, id ledger.TransactionID) (*ledger.Income, error) {
	for _, kind := range []ledger.IncomeKind{ledger.IncomeRecurring, ledger.IncomeMisc} {
		query, _ := incomeSelect(kind)
		in, err := scanIncome(kind, s.q.QueryRowContext(ctx, query+` WHERE transaction_id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find income for transaction: %w", err)
		}
		return in, nil
	}
	return nil, nil
}

func (s *Store) InsertIncome(ctx context.Context, in ledger.Income) error {
	var err error
	switch in.Kind {
	case ledger.IncomeRecurring:
		_, err = s.q.ExecContext(ctx, `
			INSERT INTO recurring_income
			(id, workspace_id, account_id, date, amount, description, planned_amount, received_amount, transaction_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, in.ID, in.WorkspaceID, in.AccountID, in.Date.String(), in.Amount, nullString(in.Description),
			in.PlannedAmount, in.ReceivedAmount, nullString(string(in.TransactionID)), formatTime(in.CreatedAt))
	case ledger.IncomeMisc:
		_, err = s.q.ExecContext(ctx, `
			INSERT INTO misc_income
			(id, workspace_id, account_id, date, amount, description, transaction_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, in.ID, in.WorkspaceID, in.AccountID, in.Date.String(), in.Amount, nullString(in.Description),
			nullString(string(in.TransactionID)), formatTime(in.CreatedAt))
	default:
		return fmt.Errorf("unknown income kind %q", in.Kind)
	}
	return writeErr("insert income", "account", err)
}

func (s *Store) UpdateIncome(ctx context.Context, in ledger.Income) error {
	var res sql.Result
	var err error
	switch in.Kind {
	case ledger.IncomeRecurring:
		res, err = s.q.ExecContext(ctx, `
			UPDATE recurring_income
			SET account_id = ?, date = ?, amount = ?, description = ?, planned_amount = ?, received_amount = ?, transaction_id = ?
			WHERE id = ?
		`, in.AccountID, in.Date.String(), in.Amount, nullString(in.Description),
			in.PlannedAmount, in.ReceivedAmount, nullString(string(in.TransactionID)), in.ID)
	case ledger.IncomeMisc:
		res, err = s.q.ExecContext(ctx, `
			UPDATE misc_income
			SET account_id = ?, date = ?, amount = ?, description = ?, transaction_id = ?
			WHERE id = ?
		`, in.AccountID, in.Date.String(), in.Amount, nullString(in.Description),
			nullString(string(in.TransactionID)), in.ID)
	default:
		return fmt.Errorf("unknown income kind %q", in.Kind)
	}
	if err != nil {
		return writeErr("update income", "account", err)
	}
	return affectedOne(res, "update income")
}

func (s *Store) DeleteIncome(ctx context.Context, kind ledger.IncomeKind, id ledger.IncomeID) error {
	table, err := incomeTable(kind)
	if err != nil {
		return err
	}
	if _, err := s.q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete %s income: %w", kind, err)
	}
	return nil
}
