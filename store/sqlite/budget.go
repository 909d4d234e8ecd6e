package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warp/budget-ledger/budget"
	"github.com/warp/budget-ledger/ledger"
)

// =============================================================================
// BUDGET ITEMS (budget.Store interface) - bills and expenses
// =============================================================================

const itemColumns = `id, workspace_id, amount, description, category_id, recurrence_type, weekly_days, day_of_month, yearly_date, created_at`

func itemTable(kind budget.Kind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown budget kind %q", kind)
	}
	return kind.Plural(), nil
}

func scanItem(kind budget.Kind, row scanner) (*budget.Item, error) {
	item := budget.Item{Kind: kind}
	var categoryID, weeklyDays, yearlyDate sql.NullString
	var dayOfMonth sql.NullInt64
	var createdAt string
	err := row.Scan(&item.ID, &item.WorkspaceID, &item.Amount, &item.Description, &categoryID,
		&item.Recurrence.Type, &weeklyDays, &dayOfMonth, &yearlyDate, &createdAt)
	if err != nil {
		return nil, err
	}
	item.CategoryID = ledger.CategoryID(categoryID.String)
	if item.Recurrence.WeeklyDays, err = budget.ParseWeeklyDays(weeklyDays.String); err != nil {
		return nil, err
	}
	item.Recurrence.DayOfMonth = int(dayOfMonth.Int64)
	if yearlyDate.Valid {
		if item.Recurrence.YearlyDate, err = budget.ParseMonthDay(yearlyDate.String); err != nil {
			return nil, err
		}
	}
	item.CreatedAt = parseTime(createdAt)
	return &item, nil
}

// recurrenceArgs returns weekly_days, day_of_month, yearly_date for storage.
func recurrenceArgs(r budget.Recurrence) (sql.NullString, sql.NullInt64, sql.NullString, error) {
	var weekly sql.NullString
	if len(r.WeeklyDays) > 0 {
		s, err := r.WeeklyDaysJSON()
		if err != nil {
			return sql.NullString{}, sql.NullInt64{}, sql.NullString{}, err
		}
		weekly = nullString(s)
	}
	var day sql.NullInt64
	if r.DayOfMonth != 0 {
		day = sql.NullInt64{Int64: int64(r.DayOfMonth), Valid: true}
	}
	return weekly, day, nullString(r.YearlyDate.String()), nil
}

func (s *Store) GetItem(ctx context.Context, kind budget.Kind, id ledger.BudgetItemID) (*budget.Item, error) {
	table, err := itemTable(kind)
	if err != nil {
		return nil, err
	}
	item, err := scanItem(kind, s.q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM `+table+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	return item, nil
}

func (s *Store) ListItems(ctx context.Context, workspaceID ledger.WorkspaceID, kind budget.Kind) ([]budget.Item, error) {
	table, err := itemTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM `+table+` WHERE workspace_id = ? ORDER BY created_at, rowid`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var out []budget.Item
	for rows.Next() {
		item, err := scanItem(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (s *Store) InsertItem(ctx context.Context, item budget.Item) error {
	table, err := itemTable(item.Kind)
	if err != nil {
		return err
	}
	weekly, day, yearly, err := recurrenceArgs(item.Recurrence)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO `+table+` (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.WorkspaceID, item.Amount, item.Description, nullString(string(item.CategoryID)),
		item.Recurrence.Type, weekly, day, yearly, formatTime(item.CreatedAt))
	return writeErr("insert "+string(item.Kind), "workspace or category", err)
}

func (s *Store) UpdateItem(ctx context.Context, item budget.Item) error {
	table, err := itemTable(item.Kind)
	if err != nil {
		return err
	}
	weekly, day, yearly, err := recurrenceArgs(item.Recurrence)
	if err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE `+table+`
		SET amount = ?, description = ?, category_id = ?, recurrence_type = ?, weekly_days = ?, day_of_month = ?, yearly_date = ?
		WHERE id = ?
	`, item.Amount, item.Description, nullString(string(item.CategoryID)),
		item.Recurrence.Type, weekly, day, yearly, item.ID)
	if err != nil {
		return writeErr("update "+string(item.Kind), "category", err)
	}
	return affectedOne(res, "update "+string(item.Kind))
}

func (s *Store) DeleteItem(ctx context.Context, kind budget.Kind, id ledger.BudgetItemID) error {
	table, err := itemTable(kind)
	if err != nil {
		return err
	}
	if _, err := s.q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return nil
}

// =============================================================================
// CATEGORIES
// =============================================================================

const categoryColumns = `id, workspace_id, name, color, created_at`

func scanCategory(row scanner) (*budget.Category, error) {
	var c budget.Category
	var createdAt string
	if err := row.Scan(&c.ID, &c.WorkspaceID, &c.Name, &c.Color, &createdAt); err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}

func (s *Store) GetCategory(ctx context.Context, id ledger.CategoryID) (*budget.Category, error) {
	c, err := scanCategory(s.q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, workspaceID ledger.WorkspaceID) ([]budget.Category, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE workspace_id = ? ORDER BY name COLLATE NOCASE`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []budget.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) InsertCategory(ctx context.Context, c budget.Category) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO categories (id, workspace_id, name, color, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.WorkspaceID, c.Name, c.Color, formatTime(c.CreatedAt))
	if isUniqueConstraintError(err) {
		return &ledger.ValidationError{Field: "name", Message: "A category with this name already exists"}
	}
	return writeErr("insert category", "workspace", err)
}

func (s *Store) UpdateCategory(ctx context.Context, c budget.Category) error {
	res, err := s.q.ExecContext(ctx, `UPDATE categories SET name = ?, color = ? WHERE id = ?`, c.Name, c.Color, c.ID)
	if isUniqueConstraintError(err) {
		return &ledger.ValidationError{Field: "name", Message: "A category with this name already exists"}
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return affectedOne(res, "update category")
}

func (s *Store) DeleteCategory(ctx context.Context, id ledger.CategoryID) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

var _ budget.Store = (*Store)(nil)
