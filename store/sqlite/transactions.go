package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/warp/budget-ledger/ledger"
)

// =============================================================================
// TRANSACTIONS
// =============================================================================

const transactionColumns = `id, workspace_id, transaction_type, date, description, amount, account_id, category_id, expense_id, created_at`

func scanTransaction(row scanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction
	var date, createdAt string
	var categoryID, expenseID sql.NullString
	err := row.Scan(&tx.ID, &tx.WorkspaceID, &tx.Type, &date, &tx.Description, &tx.Amount,
		&tx.AccountID, &categoryID, &expenseID, &createdAt)
	if err != nil {
		return nil, err
	}
	if tx.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	tx.CategoryID = ledger.CategoryID(categoryID.String)
	tx.ExpenseID = ledger.BudgetItemID(expenseID.String)
	tx.CreatedAt = parseTime(createdAt)
	return &tx, nil
}

func (s *Store) GetTransaction(ctx context.Context, id ledger.TransactionID) (*ledger.Transaction, error) {
	tx, err := scanTransaction(s.q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// ListTransactions returns newest first by date, then by insertion.
func (s *Store) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
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
	if filter.Type != "" {
		where = append(where, "transaction_type = ?")
		args = append(args, filter.Type)
	}
	if !filter.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, filter.To.String())
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, rowid DESC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []ledger.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, *tx)
	}
	return out, rows.Err()
}

func (s *Store) InsertTransaction(ctx context.Context, tx ledger.Transaction) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions
		(id, workspace_id, transaction_type, date, description, amount, account_id, category_id, expense_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, tx.ID, tx.WorkspaceID, tx.Type, tx.Date.String(), tx.Description, tx.Amount, tx.AccountID,
		nullString(string(tx.CategoryID)), nullString(string(tx.ExpenseID)), formatTime(tx.CreatedAt))
	return writeErr("insert transaction", "account or category", err)
}

func (s *Store) UpdateTransaction(ctx context.Context, tx ledger.Transaction) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE transactions
		SET transaction_type = ?, date = ?, description = ?, amount = ?, account_id = ?, category_id = ?, expense_id = ?
		WHERE id = ?
	`, tx.Type, tx.Date.String(), tx.Description, tx.Amount, tx.AccountID,
		nullString(string(tx.CategoryID)), nullString(string(tx.ExpenseID)), tx.ID)
	if err != nil {
		return writeErr("update transaction", "account or category", err)
	}
	return affectedOne(res, "update transaction")
}

func (s *Store) DeleteTransaction(ctx context.Context, id ledger.TransactionID) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// =============================================================================
// REFERENCES
// =============================================================================

func (s *Store) CategoryWorkspace(ctx context.Context, id ledger.CategoryID) (ledger.WorkspaceID, error) {
	return s.owner(ctx, "categories", string(id))
}

func (s *Store) ExpenseWorkspace(ctx context.Context, id ledger.BudgetItemID) (ledger.WorkspaceID, error) {
	return s.owner(ctx, "expenses", string(id))
}

// owner reads workspace_id of one row; table is always a constant.
func (s *Store) owner(ctx context.Context, table, id string) (ledger.WorkspaceID, error) {
	var ws ledger.WorkspaceID
	err := s.q.QueryRowContext(ctx, `SELECT workspace_id FROM `+table+` WHERE id = ?`, id).Scan(&ws)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up %s: %w", table, err)
	}
	return ws, nil
}
