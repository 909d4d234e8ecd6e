package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-ledger/ledger"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

const accountColumns = `id, workspace_id, account_type, account_subtype, institution_name, nickname, balance, created_at`

func scanAccount(row scanner) (*ledger.Account, error) {
	var a ledger.Account
	var subtype, institution sql.NullString
	var createdAt string
	if err := row.Scan(&a.ID, &a.WorkspaceID, &a.Type, &subtype, &institution, &a.Nickname, &a.Balance, &createdAt); err != nil {
		return nil, err
	}
	a.Subtype = subtype.String
	a.Institution = institution.String
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}

func (s *Store) GetAccount(ctx context.Context, id ledger.AccountID) (*ledger.Account, error) {
	a, err := scanAccount(s.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context, workspaceID ledger.WorkspaceID) ([]ledger.Account, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE workspace_id = ? ORDER BY created_at, rowid`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var out []ledger.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) InsertAccount(ctx context.Context, a ledger.Account) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO accounts (id, workspace_id, account_type, account_subtype, institution_name, nickname, balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.WorkspaceID, a.Type, nullString(a.Subtype), nullString(a.Institution), a.Nickname, a.Balance, formatTime(a.CreatedAt))
	return writeErr("insert account", "workspace", err)
}

func (s *Store) UpdateAccount(ctx context.Context, a ledger.Account) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE accounts
		SET account_type = ?, account_subtype = ?, institution_name = ?, nickname = ?
		WHERE id = ?
	`, a.Type, nullString(a.Subtype), nullString(a.Institution), a.Nickname, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return affectedOne(res, "update account")
}

func (s *Store) SetBalance(ctx context.Context, id ledger.AccountID, balance decimal.Decimal) error {
	res, err := s.q.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`, balance, id)
	if err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	return affectedOne(res, "set balance")
}

func (s *Store) DeleteAccount(ctx context.Context, id ledger.AccountID) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if isForeignKeyError(err) {
		return &ledger.ValidationError{Field: "account", Message: "Account has transactions or income records and cannot be deleted"}
	}
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func (s *Store) CountAccountReferences(ctx context.Context, id ledger.AccountID) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM transactions WHERE account_id = ?) +
			(SELECT COUNT(*) FROM recurring_income WHERE account_id = ?) +
			(SELECT COUNT(*) FROM misc_income WHERE account_id = ?)
	`, id, id, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count account references: %w", err)
	}
	return n, nil
}
