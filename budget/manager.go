package budget

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/budget-ledger/ledger"
)

// =============================================================================
// STORE
// =============================================================================

// Store persists budget items and categories. Get* returns (nil, nil) when
// the row does not exist.
type Store interface {
	GetItem(ctx context.Context, kind Kind, id ledger.BudgetItemID) (*Item, error)
	ListItems(ctx context.Context, workspaceID ledger.WorkspaceID, kind Kind) ([]Item, error)
	InsertItem(ctx context.Context, item Item) error
	UpdateItem(ctx context.Context, item Item) error
	DeleteItem(ctx context.Context, kind Kind, id ledger.BudgetItemID) error

	GetCategory(ctx context.Context, id ledger.CategoryID) (*Category, error)
	ListCategories(ctx context.Context, workspaceID ledger.WorkspaceID) ([]Category, error)
	InsertCategory(ctx context.Context, c Category) error
	UpdateCategory(ctx context.Context, c Category) error
	DeleteCategory(ctx context.Context, id ledger.CategoryID) error
}

// Authorizer checks workspace membership. *ledger.Engine satisfies it.
type Authorizer interface {
	Authorize(ctx context.Context, c ledger.Caller, workspaceID ledger.WorkspaceID) error
}

// =============================================================================
// MANAGER
// =============================================================================

type Manager struct {
	Store Store
	Auth  Authorizer
	Log   zerolog.Logger
	NewID func() string
}

func NewManager(store Store, auth Authorizer) *Manager {
	return &Manager{Store: store, Auth: auth, Log: zerolog.Nop(), NewID: uuid.NewString}
}

// ItemInput is the editable part of a budget item.
type ItemInput struct {
	WorkspaceID ledger.WorkspaceID
	Amount      decimal.Decimal
	Description string
	CategoryID  ledger.CategoryID
	Recurrence  Recurrence
}

func (in *ItemInput) validate(kind Kind) error {
	if !kind.Valid() {
		return invalid("kind", "Budget kind must be bills or expenses")
	}
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" || in.Amount.IsZero() || in.Recurrence.Type == "" {
		return invalid("item", "Description, amount, and frequency are required")
	}
	if !in.Amount.IsPositive() {
		return invalid("amount", "Amount must be greater than zero")
	}
	noun := kind.Plural()
	r := in.Recurrence
	switch r.Type {
	case Weekly:
		if len(r.WeeklyDays) == 0 {
			return invalid("weeklyDays", "Please select at least one day for weekly "+noun)
		}
		for _, d := range r.WeeklyDays {
			if d < 0 || d > 6 {
				return invalid("weeklyDays", "Weekly days must be between Sunday (0) and Saturday (6)")
			}
		}
	case Monthly:
		if r.DayOfMonth == 0 {
			return invalid("dayOfMonth", "Day of month is required for monthly "+noun)
		}
		if r.DayOfMonth != LastDay && (r.DayOfMonth < 1 || r.DayOfMonth > 31) {
			return invalid("dayOfMonth", "Day of month must be between 1 and 31, or last")
		}
	case Yearly:
		if r.YearlyDate.IsZero() {
			return invalid("yearlyDate", "Date is required for yearly "+noun)
		}
	default:
		return invalid("recurrenceType", "Frequency must be weekly, monthly, or yearly")
	}
	in.Recurrence = r.Normalize()
	return nil
}

func (m *Manager) CreateItem(ctx context.Context, c ledger.Caller, kind Kind, in ItemInput) (*Item, error) {
	if err := m.Auth.Authorize(ctx, c, in.WorkspaceID); err != nil {
		return nil, err
	}
	if err := in.validate(kind); err != nil {
		return nil, err
	}
	if err := m.checkCategory(ctx, in.WorkspaceID, in.CategoryID); err != nil {
		return nil, err
	}
	item := Item{
		ID:          ledger.BudgetItemID(m.NewID()),
		Kind:        kind,
		WorkspaceID: in.WorkspaceID,
		Amount:      in.Amount,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Recurrence:  in.Recurrence,
		CreatedAt:   c.Now,
	}
	if err := m.Store.InsertItem(ctx, item); err != nil {
		return nil, m.storeErr("create "+string(kind), err)
	}
	return &item, nil
}

func (m *Manager) UpdateItem(ctx context.Context, c ledger.Caller, kind Kind, id ledger.BudgetItemID, in ItemInput) (*Item, error) {
	item, err := m.item(ctx, c, kind, id)
	if err != nil {
		return nil, err
	}
	in.WorkspaceID = item.WorkspaceID
	if err := in.validate(kind); err != nil {
		return nil, err
	}
	if err := m.checkCategory(ctx, item.WorkspaceID, in.CategoryID); err != nil {
		return nil, err
	}
	item.Amount = in.Amount
	item.Description = in.Description
	item.CategoryID = in.CategoryID
	item.Recurrence = in.Recurrence
	if err := m.Store.UpdateItem(ctx, *item); err != nil {
		return nil, m.storeErr("update "+string(kind), err)
	}
	return item, nil
}

func (m *Manager) DeleteItem(ctx context.Context, c ledger.Caller, kind Kind, id ledger.BudgetItemID) error {
	if _, err := m.item(ctx, c, kind, id); err != nil {
		return err
	}
	if err := m.Store.DeleteItem(ctx, kind, id); err != nil {
		return m.storeErr("delete "+string(kind), err)
	}
	return nil
}

func (m *Manager) ListItems(ctx context.Context, c ledger.Caller, workspaceID ledger.WorkspaceID, kind Kind) ([]Item, error) {
	if !kind.Valid() {
		return nil, invalid("kind", "Budget kind must be bills or expenses")
	}
	if err := m.Auth.Authorize(ctx, c, workspaceID); err != nil {
		return nil, err
	}
	items, err := m.Store.ListItems(ctx, workspaceID, kind)
	if err != nil {
		return nil, m.storeErr("list "+kind.Plural(), err)
	}
	return items, nil
}

func (m *Manager) item(ctx context.Context, c ledger.Caller, kind Kind, id ledger.BudgetItemID) (*Item, error) {
	if !kind.Valid() {
		return nil, invalid("kind", "Budget kind must be bills or expenses")
	}
	item, err := m.Store.GetItem(ctx, kind, id)
	if err != nil {
		return nil, m.storeErr("get "+string(kind), err)
	}
	if item == nil {
		return nil, &ledger.NotFoundError{Resource: string(kind), ID: string(id)}
	}
	if err := m.owned(ctx, c, string(kind), string(id), item.WorkspaceID); err != nil {
		return nil, err
	}
	return item, nil
}

// =============================================================================
// CATEGORIES
// =============================================================================

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type CategoryInput struct {
	WorkspaceID ledger.WorkspaceID
	Name        string
	Color       string
}

func (in *CategoryInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name", "Category name is required")
	}
	in.Color = strings.TrimSpace(in.Color)
	if in.Color == "" {
		in.Color = DefaultColor
	}
	if !hexColor.MatchString(in.Color) {
		return invalid("color", "Color must be a hex value like "+DefaultColor)
	}
	in.Color = strings.ToLower(in.Color)
	return nil
}

func (m *Manager) CreateCategory(ctx context.Context, c ledger.Caller, in CategoryInput) (*Category, error) {
	if err := m.Auth.Authorize(ctx, c, in.WorkspaceID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	cat := Category{
		ID:          ledger.CategoryID(m.NewID()),
		WorkspaceID: in.WorkspaceID,
		Name:        in.Name,
		Color:       in.Color,
		CreatedAt:   c.Now,
	}
	if err := m.Store.InsertCategory(ctx, cat); err != nil {
		return nil, m.storeErr("create category", err)
	}
	return &cat, nil
}

func (m *Manager) UpdateCategory(ctx context.Context, c ledger.Caller, id ledger.CategoryID, in CategoryInput) (*Category, error) {
	cat, err := m.category(ctx, c, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	cat.Name = in.Name
	cat.Color = in.Color
	if err := m.Store.UpdateCategory(ctx, *cat); err != nil {
		return nil, m.storeErr("update category", err)
	}
	return cat, nil
}

// DeleteCategory removes a category. Items and transactions that used it
// keep existing without one.
func (m *Manager) DeleteCategory(ctx context.Context, c ledger.Caller, id ledger.CategoryID) error {
	if _, err := m.category(ctx, c, id); err != nil {
		return err
	}
	if err := m.Store.DeleteCategory(ctx, id); err != nil {
		return m.storeErr("delete category", err)
	}
	return nil
}

func (m *Manager) ListCategories(ctx context.Context, c ledger.Caller, workspaceID ledger.WorkspaceID) ([]Category, error) {
	if err := m.Auth.Authorize(ctx, c, workspaceID); err != nil {
		return nil, err
	}
	cats, err := m.Store.ListCategories(ctx, workspaceID)
	if err != nil {
		return nil, m.storeErr("list categories", err)
	}
	return cats, nil
}

func (m *Manager) category(ctx context.Context, c ledger.Caller, id ledger.CategoryID) (*Category, error) {
	cat, err := m.Store.GetCategory(ctx, id)
	if err != nil {
		return nil, m.storeErr("get category", err)
	}
	if cat == nil {
		return nil, &ledger.NotFoundError{Resource: "category", ID: string(id)}
	}
	if err := m.owned(ctx, c, "category", string(id), cat.WorkspaceID); err != nil {
		return nil, err
	}
	return cat, nil
}

// owned authorizes access to a row loaded by id. A row in a workspace the
// caller cannot see is reported as missing.
func (m *Manager) owned(ctx context.Context, c ledger.Caller, resource, id string, workspaceID ledger.WorkspaceID) error {
	err := m.Auth.Authorize(ctx, c, workspaceID)
	if c.UserID != "" && ledger.IsUnauthorized(err) {
		return &ledger.NotFoundError{Resource: resource, ID: id}
	}
	return err
}

// checkCategory accepts an empty id or a category of the same workspace.
func (m *Manager) checkCategory(ctx context.Context, workspaceID ledger.WorkspaceID, id ledger.CategoryID) error {
	if id == "" {
		return nil
	}
	cat, err := m.Store.GetCategory(ctx, id)
	if err != nil {
		return m.storeErr("get category", err)
	}
	if cat == nil || cat.WorkspaceID != workspaceID {
		return &ledger.NotFoundError{Resource: "category", ID: string(id)}
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

func invalid(field, message string) error {
	return &ledger.ValidationError{Field: field, Message: message}
}

func (m *Manager) storeErr(op string, err error) error {
	if errors.Is(err, ledger.ErrValidation) || errors.Is(err, ledger.ErrNotFound) {
		return err
	}
	m.Log.Error().Err(err).Str("op", op).Msg("budget store failed")
	return &ledger.StoreError{Op: op, Err: fmt.Errorf("%s: %w", op, err)}
}
