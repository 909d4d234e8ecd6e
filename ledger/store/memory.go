// Package store provides Store implementations.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-ledger/ledger"
)

// ErrConstraint is returned when a write would break a key or reference.
var ErrConstraint = errors.New("constraint violation")

func errDuplicate(table, id string) error {
	return fmt.Errorf("%w: duplicate %s %s", ErrConstraint, table, id)
}

func errMissing(table, id string) error {
	return fmt.Errorf("%w: unknown %s %s", ErrConstraint, table, id)
}

// =============================================================================
// TABLES - Unlocked row storage shared by Memory and its transactional view
// =============================================================================

type incomeKey struct {
	Kind ledger.IncomeKind
	ID   ledger.IncomeID
}

type tables struct {
	seq          int64
	order        map[string]int64 // insertion sequence per row id
	workspaces   map[ledger.WorkspaceID]ledger.Workspace
	members      map[ledger.WorkspaceID]map[ledger.UserID]ledger.MemberRole
	accounts     map[ledger.AccountID]ledger.Account
	transactions map[ledger.TransactionID]ledger.Transaction
	income       map[incomeKey]ledger.Income
	categories   map[ledger.CategoryID]ledger.WorkspaceID
	expenses     map[ledger.BudgetItemID]ledger.WorkspaceID
}

func newTables() *tables {
	return &tables{
		order:        make(map[string]int64),
		workspaces:   make(map[ledger.WorkspaceID]ledger.Workspace),
		members:      make(map[ledger.WorkspaceID]map[ledger.UserID]ledger.MemberRole),
		accounts:     make(map[ledger.AccountID]ledger.Account),
		transactions: make(map[ledger.TransactionID]ledger.Transaction),
		income:       make(map[incomeKey]ledger.Income),
		categories:   make(map[ledger.CategoryID]ledger.WorkspaceID),
		expenses:     make(map[ledger.BudgetItemID]ledger.WorkspaceID),
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		seq:          t.seq,
		order:        make(map[string]int64, len(t.order)),
		workspaces:   make(map[ledger.WorkspaceID]ledger.Workspace, len(t.workspaces)),
		members:      make(map[ledger.WorkspaceID]map[ledger.UserID]ledger.MemberRole, len(t.members)),
		accounts:     make(map[ledger.AccountID]ledger.Account, len(t.accounts)),
		transactions: make(map[ledger.TransactionID]ledger.Transaction, len(t.transactions)),
		income:       make(map[incomeKey]ledger.Income, len(t.income)),
		categories:   make(map[ledger.CategoryID]ledger.WorkspaceID, len(t.categories)),
		expenses:     make(map[ledger.BudgetItemID]ledger.WorkspaceID, len(t.expenses)),
	}
	for k, v := range t.order {
		c.order[k] = v
	}
	for k, v := range t.workspaces {
		c.workspaces[k] = v
	}
	for k, v := range t.members {
		m := make(map[ledger.UserID]ledger.MemberRole, len(v))
		for u, r := range v {
			m[u] = r
		}
		c.members[k] = m
	}
	for k, v := range t.accounts {
		c.accounts[k] = v
	}
	for k, v := range t.transactions {
		c.transactions[k] = v
	}
	for k, v := range t.income {
		c.income[k] = v
	}
	for k, v := range t.categories {
		c.categories[k] = v
	}
	for k, v := range t.expenses {
		c.expenses[k] = v
	}
	return c
}

func (t *tables) touch(id string) {
	t.seq++
	t.order[id] = t.seq
}

// Workspaces

func (t *tables) GetWorkspace(_ context.Context, id ledger.WorkspaceID) (*ledger.Workspace, error) {
	ws, ok := t.workspaces[id]
	if !ok {
		return nil, nil
	}
	return &ws, nil
}

func (t *tables) InsertWorkspace(_ context.Context, ws ledger.Workspace) error {
	if _, ok := t.workspaces[ws.ID]; ok {
		return errDuplicate("workspace", string(ws.ID))
	}
	t.workspaces[ws.ID] = ws
	t.touch(string(ws.ID))
	return nil
}

func (t *tables) InsertMember(_ context.Context, m ledger.Member) error {
	if _, ok := t.workspaces[m.WorkspaceID]; !ok {
		return errMissing("workspace", string(m.WorkspaceID))
	}
	if t.members[m.WorkspaceID] == nil {
		t.members[m.WorkspaceID] = make(map[ledger.UserID]ledger.MemberRole)
	}
	t.members[m.WorkspaceID][m.UserID] = m.Role
	return nil
}

func (t *tables) IsMember(_ context.Context, workspaceID ledger.WorkspaceID, userID ledger.UserID) (bool, error) {
	_, ok := t.members[workspaceID][userID]
	return ok, nil
}

func (t *tables) WorkspaceForUser(_ context.Context, userID ledger.UserID) (*ledger.Workspace, error) {
	var found *ledger.Workspace
	for id, members := range t.members {
		if _, ok := members[userID]; !ok {
			continue
		}
		ws := t.workspaces[id]
		if found == nil || t.order[string(ws.ID)] < t.order[string(found.ID)] {
			found = &ws
		}
	}
	return found, nil
}

func (t *tables) ListWorkspaces(_ context.Context) ([]ledger.Workspace, error) {
	out := make([]ledger.Workspace, 0, len(t.workspaces))
	for _, ws := range t.workspaces {
		out = append(out, ws)
	}
	sort.Slice(out, func(i, j int) bool {
		return t.order[string(out[i].ID)] < t.order[string(out[j].ID)]
	})
	return out, nil
}

// Accounts

func (t *tables) GetAccount(_ context.Context, id ledger.AccountID) (*ledger.Account, error) {
	a, ok := t.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (t *tables) ListAccounts(_ context.Context, workspaceID ledger.WorkspaceID) ([]ledger.Account, error) {
	var out []ledger.Account
	for _, a := range t.accounts {
		if a.WorkspaceID == workspaceID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return t.order[string(out[i].ID)] < t.order[string(out[j].ID)]
	})
	return out, nil
}

func (t *tables) InsertAccount(_ context.Context, a ledger.Account) error {
	if _, ok := t.accounts[a.ID]; ok {
		return errDuplicate("account", string(a.ID))
	}
	if _, ok := t.workspaces[a.WorkspaceID]; !ok {
		return errMissing("workspace", string(a.WorkspaceID))
	}
	t.accounts[a.ID] = a
	t.touch(string(a.ID))
	return nil
}

func (t *tables) UpdateAccount(_ context.Context, a ledger.Account) error {
	cur, ok := t.accounts[a.ID]
	if !ok {
		return errMissing("account", string(a.ID))
	}
	a.Balance = cur.Balance
	a.WorkspaceID = cur.WorkspaceID
	a.CreatedAt = cur.CreatedAt
	t.accounts[a.ID] = a
	return nil
}

func (t *tables) SetBalance(_ context.Context, id ledger.AccountID, balance decimal.Decimal) error {
	a, ok := t.accounts[id]
	if !ok {
		return errMissing("account", string(id))
	}
	a.Balance = balance
	t.accounts[id] = a
	return nil
}

func (t *tables) DeleteAccount(_ context.Context, id ledger.AccountID) error {
	delete(t.accounts, id)
	delete(t.order, string(id))
	return nil
}

func (t *tables) CountAccountReferences(_ context.Context, id ledger.AccountID) (int, error) {
	n := 0
	for _, tx := range t.transactions {
		if tx.AccountID == id {
			n++
		}
	}
	for _, in := range t.income {
		if in.AccountID == id {
			n++
		}
	}
	return n, nil
}

// Transactions

func (t *tables) GetTransaction(_ context.Context, id ledger.TransactionID) (*ledger.Transaction, error) {
	tx, ok := t.transactions[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

// ListTransactions returns newest first by date, then by insertion.
func (t *tables) ListTransactions(_ context.Context, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	for _, tx := range t.transactions {
		if filter.Match(tx) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return t.order[string(out[i].ID)] > t.order[string(out[j].ID)]
	})
	return out, nil
}

func (t *tables) InsertTransaction(_ context.Context, tx ledger.Transaction) error {
	if _, ok := t.transactions[tx.ID]; ok {
		return errDuplicate("transaction", string(tx.ID))
	}
	if _, ok := t.accounts[tx.AccountID]; !ok {
		return errMissing("account", string(tx.AccountID))
	}
	t.transactions[tx.ID] = tx
	t.touch(string(tx.ID))
	return nil
}

func (t *tables) UpdateTransaction(_ context.Context, tx ledger.Transaction) error {
	if _, ok := t.transactions[tx.ID]; !ok {
		return errMissing("transaction", string(tx.ID))
	}
	if _, ok := t.accounts[tx.AccountID]; !ok {
		return errMissing("account", string(tx.AccountID))
	}
	t.transactions[tx.ID] = tx
	return nil
}

// DeleteTransaction clears any income link to the row, like ON DELETE SET NULL.
func (t *tables) DeleteTransaction(_ context.Context, id ledger.TransactionID) error {
	delete(t.transactions, id)
	delete(t.order, string(id))
	for k, in := range t.income {
		if in.TransactionID == id {
			in.TransactionID = ""
			t.income[k] = in
		}
	}
	return nil
}

// Income

func (t *tables) GetIncome(_ context.Context, kind ledger.IncomeKind, id ledger.IncomeID) (*ledger.Income, error) {
	in, ok := t.income[incomeKey{Kind: kind, ID: id}]
	if !ok {
		return nil, nil
	}
	return &in, nil
}

func (t *tables) ListIncome(_ context.Context, filter ledger.IncomeFilter) ([]ledger.Income, error) {
	var out []ledger.Income
	for _, in := range t.income {
		if filter.Match(in) {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return t.order[string(out[i].ID)] > t.order[string(out[j].ID)]
	})
	return out, nil
}

func (t *tables) IncomeByTransaction(_ context.Context, id ledger.TransactionID) (*ledger.Income, error) {
	for _, in := range t.income {
		if in.TransactionID == id {
			return &in, nil
		}
	}
	return nil, nil
}

func (t *tables) InsertIncome(_ context.Context, in ledger.Income) error {
	k := incomeKey{Kind: in.Kind, ID: in.ID}
	if _, ok := t.income[k]; ok {
		return errDuplicate("income", string(in.ID))
	}
	if _, ok := t.accounts[in.AccountID]; !ok {
		return errMissing("account", string(in.AccountID))
	}
	t.income[k] = in
	t.touch(string(in.ID))
	return nil
}

func (t *tables) UpdateIncome(_ context.Context, in ledger.Income) error {
	k := incomeKey{Kind: in.Kind, ID: in.ID}
	if _, ok := t.income[k]; !ok {
		return errMissing("income", string(in.ID))
	}
	if _, ok := t.accounts[in.AccountID]; !ok {
		return errMissing("account", string(in.AccountID))
	}
	t.income[k] = in
	return nil
}

func (t *tables) DeleteIncome(_ context.Context, kind ledger.IncomeKind, id ledger.IncomeID) error {
	delete(t.income, incomeKey{Kind: kind, ID: id})
	delete(t.order, string(id))
	return nil
}

// References

func (t *tables) CategoryWorkspace(_ context.Context, id ledger.CategoryID) (ledger.WorkspaceID, error) {
	return t.categories[id], nil
}

func (t *tables) ExpenseWorkspace(_ context.Context, id ledger.BudgetItemID) (ledger.WorkspaceID, error) {
	return t.expenses[id], nil
}

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu sync.RWMutex
	t  *tables
}

func NewMemory() *Memory {
	return &Memory{t: newTables()}
}

func (m *Memory) read(fn func(t *tables) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(m.t)
}

func (m *Memory) write(fn func(t *tables) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.t)
}

func (m *Memory) GetWorkspace(ctx context.Context, id ledger.WorkspaceID) (ws *ledger.Workspace, err error) {
	err = m.read(func(t *tables) error { ws, err = t.GetWorkspace(ctx, id); return err })
	return
}

func (m *Memory) InsertWorkspace(ctx context.Context, ws ledger.Workspace) error {
	return m.write(func(t *tables) error { return t.InsertWorkspace(ctx, ws) })
}

func (m *Memory) InsertMember(ctx context.Context, mem ledger.Member) error {
	return m.write(func(t *tables) error { return t.InsertMember(ctx, mem) })
}

func (m *Memory) IsMember(ctx context.Context, workspaceID ledger.WorkspaceID, userID ledger.UserID) (ok bool, err error) {
	err = m.read(func(t *tables) error { ok, err = t.IsMember(ctx, workspaceID, userID); return err })
	return
}

func (m *Memory) WorkspaceForUser(ctx context.Context, userID ledger.UserID) (ws *ledger.Workspace, err error) {
	err = m.read(func(t *tables) error { ws, err = t.WorkspaceForUser(ctx, userID); return err })
	return
}

func (m *Memory) ListWorkspaces(ctx context.Context) (out []ledger.Workspace, err error) {
	err = m.read(func(t *tables) error { out, err = t.ListWorkspaces(ctx); return err })
	return
}

func (m *Memory) GetAccount(ctx context.Context, id ledger.AccountID) (a *ledger.Account, err error) {
	err = m.read(func(t *tables) error { a, err = t.GetAccount(ctx, id); return err })
	return
}

func (m *Memory) ListAccounts(ctx context.Context, workspaceID ledger.WorkspaceID) (out []ledger.Account, err error) {
	err = m.read(func(t *tables) error { out, err = t.ListAccounts(ctx, workspaceID); return err })
	return
}

func (m *Memory) InsertAccount(ctx context.Context, a ledger.Account) error {
	return m.write(func(t *tables) error { return t.InsertAccount(ctx, a) })
}

func (m *Memory) UpdateAccount(ctx context.Context, a ledger.Account) error {
	return m.write(func(t *tables) error { return t.UpdateAccount(ctx, a) })
}

func (m *Memory) SetBalance(ctx context.Context, id ledger.AccountID, balance decimal.Decimal) error {
	return m.write(func(t *tables) error { return t.SetBalance(ctx, id, balance) })
}

func (m *Memory) DeleteAccount(ctx context.Context, id ledger.AccountID) error {
	return m.write(func(t *tables) error { return t.DeleteAccount(ctx, id) })
}

func (m *Memory) CountAccountReferences(ctx context.Context, id ledger.AccountID) (n int, err error) {
	err = m.read(func(t *tables) error { n, err = t.CountAccountReferences(ctx, id); return err })
	return
}

func (m *Memory) GetTransaction(ctx context.Context, id ledger.TransactionID) (tx *ledger.Transaction, err error) {
	err = m.read(func(t *tables) error { tx, err = t.GetTransaction(ctx, id); return err })
	return
}

func (m *Memory) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) (out []ledger.Transaction, err error) {
	err = m.read(func(t *tables) error { out, err = t.ListTransactions(ctx, filter); return err })
	return
}

func (m *Memory) InsertTransaction(ctx context.Context, tx ledger.Transaction) error {
	return m.write(func(t *tables) error { return t.InsertTransaction(ctx, tx) })
}

func (m *Memory) UpdateTransaction(ctx context.Context, tx ledger.Transaction) error {
	return m.write(func(t *tables) error { return t.UpdateTransaction(ctx, tx) })
}

func (m *Memory) DeleteTransaction(ctx context.Context, id ledger.TransactionID) error {
	return m.write(func(t *tables) error { return t.DeleteTransaction(ctx, id) })
}

func (m *Memory) GetIncome(ctx context.Context, kind ledger.IncomeKind, id ledger.IncomeID) (in *ledger.Income, err error) {
	err = m.read(func(t *tables) error { in, err = t.GetIncome(ctx, kind, id); return err })
	return
}

func (m *Memory) ListIncome(ctx context.Context, filter ledger.IncomeFilter) (out []ledger.Income, err error) {
	err = m.read(func(t *tables) error { out, err = t.ListIncome(ctx, filter); return err })
	return
}

func (m *Memory) IncomeByTransaction(ctx context.Context, id ledger.TransactionID) (in *ledger.Income, err error) {
	err = m.read(func(t *tables) error { in, err = t.IncomeByTransaction(ctx, id); return err })
	return
}

func (m *Memory) InsertIncome(ctx context.Context, in ledger.Income) error {
	return m.write(func(t *tables) error { return t.InsertIncome(ctx, in) })
}

func (m *Memory) UpdateIncome(ctx context.Context, in ledger.Income) error {
	return m.write(func(t *tables) error { return t.UpdateIncome(ctx, in) })
}

func (m *Memory) DeleteIncome(ctx context.Context, kind ledger.IncomeKind, id ledger.IncomeID) error {
	return m.write(func(t *tables) error { return t.DeleteIncome(ctx, kind, id) })
}

func (m *Memory) CategoryWorkspace(ctx context.Context, id ledger.CategoryID) (ws ledger.WorkspaceID, err error) {
	err = m.read(func(t *tables) error { ws, err = t.CategoryWorkspace(ctx, id); return err })
	return
}

func (m *Memory) ExpenseWorkspace(ctx context.Context, id ledger.BudgetItemID) (ws ledger.WorkspaceID, err error) {
	err = m.read(func(t *tables) error { ws, err = t.ExpenseWorkspace(ctx, id); return err })
	return
}

// The memory store keeps no budget tables. AddCategory and AddExpense
// register ids that transactions may refer to.

func (m *Memory) AddCategory(id ledger.CategoryID, workspaceID ledger.WorkspaceID) error {
	return m.write(func(t *tables) error {
		if _, ok := t.workspaces[workspaceID]; !ok {
			return errMissing("workspace", string(workspaceID))
		}
		t.categories[id] = workspaceID
		return nil
	})
}

func (m *Memory) AddExpense(id ledger.BudgetItemID, workspaceID ledger.WorkspaceID) error {
	return m.write(func(t *tables) error {
		if _, ok := t.workspaces[workspaceID]; !ok {
			return errMissing("workspace", string(workspaceID))
		}
		t.expenses[id] = workspaceID
		return nil
	})
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
// The store lock is held for the whole unit, so units never interleave.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.t.clone()
	if err := fn(tm.t); err != nil {
		tm.t = snapshot
		return err
	}
	return nil
}

var (
	_ ledger.TxStore = (*TxMemory)(nil)
	_ ledger.Store   = (*tables)(nil)
)
