package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warp/budget-ledger/ledger"
)

// =============================================================================
// WORKSPACES
// =============================================================================

const workspaceColumns = `id, name, slug, owner_id, created_at`

func scanWorkspace(row scanner) (*ledger.Workspace, error) {
	var ws ledger.Workspace
	var createdAt string
	if err := row.Scan(&ws.ID, &ws.Name, &ws.Slug, &ws.OwnerID, &createdAt); err != nil {
		return nil, err
	}
	ws.CreatedAt = parseTime(createdAt)
	return &ws, nil
}

func (s *Store) GetWorkspace(ctx context.Context, id ledger.WorkspaceID) (*ledger.Workspace, error) {
	ws, err := scanWorkspace(s.q.QueryRowContext(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return ws, nil
}

func (s *Store) InsertWorkspace(ctx context.Context, ws ledger.Workspace) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO workspaces (id, name, slug, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, ws.ID, ws.Name, ws.Slug, ws.OwnerID, formatTime(ws.CreatedAt))
	return writeErr("insert workspace", "workspace", err)
}

func (s *Store) InsertMember(ctx context.Context, m ledger.Member) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role, created_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT (workspace_id, user_id) DO UPDATE SET role = excluded.role
	`, m.WorkspaceID, m.UserID, m.Role)
	return writeErr("insert member", "workspace", err)
}

func (s *Store) IsMember(ctx context.Context, workspaceID ledger.WorkspaceID, userID ledger.UserID) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM workspace_members WHERE workspace_id = ? AND user_id = ?
	`, workspaceID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return n > 0, nil
}

func (s *Store) WorkspaceForUser(ctx context.Context, userID ledger.UserID) (*ledger.Workspace, error) {
	ws, err := scanWorkspace(s.q.QueryRowContext(ctx, `
		SELECT w.id, w.name, w.slug, w.owner_id, w.created_at
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = ?
		ORDER BY w.created_at, w.rowid
		LIMIT 1
	`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}
	return ws, nil
}

func (s *Store) ListWorkspaces(ctx context.Context) ([]ledger.Workspace, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+workspaceColumns+` FROM workspaces ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var out []ledger.Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		out = append(out, *ws)
	}
	return out, rows.Err()
}
