package ledger

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCOUNT INPUT
// =============================================================================

// AccountInput carries the editable account fields. Balance, when present,
// is the desired balance; reaching it is booked as an adjustment transaction.
type AccountInput struct {
	WorkspaceID WorkspaceID
	Type        AccountType
	Subtype     string
	Institution string
	Nickname    string
	Balance     decimal.NullDecimal
}

func (in *AccountInput) normalize() error {
	in.Nickname = strings.TrimSpace(in.Nickname)
	if in.Type == "" || in.Nickname == "" {
		return invalid("account", "Account type and nickname are required")
	}
	if !in.Type.Valid() {
		return invalid("accountType", "Account type must be banking or cash")
	}
	if in.Type == AccountCash {
		in.Subtype = ""
		in.Institution = ""
		return nil
	}
	if strings.TrimSpace(in.Subtype) == "" || strings.TrimSpace(in.Institution) == "" {
		return invalid("account", "Banking accounts require account type and institution name")
	}
	return nil
}

// =============================================================================
// ACCOUNT MANAGER
// =============================================================================

// CreateAccount inserts an account at zero and books any opening balance
// as an adjustment in the same unit.
func (e *Engine) CreateAccount(ctx context.Context, c Caller, in AccountInput) (*Account, error) {
	var out *Account
	err := e.run(ctx, "create account", c, func(u *unit) error {
		if err := u.authorize(in.WorkspaceID); err != nil {
			return err
		}
		if err := in.normalize(); err != nil {
			return err
		}
		acct := Account{
			ID:          AccountID(u.newID()),
			WorkspaceID: in.WorkspaceID,
			Type:        in.Type,
			Subtype:     in.Subtype,
			Institution: in.Institution,
			Nickname:    in.Nickname,
			Balance:     decimal.Zero,
			CreatedAt:   u.caller.Now,
		}
		if err := u.store.InsertAccount(u.ctx, acct); err != nil {
			return err
		}
		if in.Balance.Valid {
			if _, err := u.adjustBalance(acct.ID, in.Balance.Decimal); err != nil {
				return err
			}
		}
		created, err := u.store.GetAccount(u.ctx, acct.ID)
		out = created
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAccount writes the descriptive fields and, when a balance is given,
// adjusts the balance to it.
func (e *Engine) UpdateAccount(ctx context.Context, c Caller, id AccountID, in AccountInput) (*Account, error) {
	var out *Account
	err := e.run(ctx, "update account", c, func(u *unit) error {
		acct, err := u.store.GetAccount(u.ctx, id)
		if err != nil {
			return err
		}
		if acct == nil {
			return notFound("account", id)
		}
		if err := u.owned("account", id, acct.WorkspaceID); err != nil {
			return err
		}
		if err := in.normalize(); err != nil {
			return err
		}
		acct.Type = in.Type
		acct.Subtype = in.Subtype
		acct.Institution = in.Institution
		acct.Nickname = in.Nickname
		if err := u.store.UpdateAccount(u.ctx, *acct); err != nil {
			return err
		}
		if in.Balance.Valid {
			if _, err := u.adjustBalance(id, in.Balance.Decimal); err != nil {
				return err
			}
		}
		updated, err := u.store.GetAccount(u.ctx, id)
		out = updated
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAccount removes an account nothing refers to. Accounts with
// transactions or income rows must be emptied first.
func (e *Engine) DeleteAccount(ctx context.Context, c Caller, id AccountID) error {
	return e.run(ctx, "delete account", c, func(u *unit) error {
		acct, err := u.store.GetAccount(u.ctx, id)
		if err != nil {
			return err
		}
		if acct == nil {
			return notFound("account", id)
		}
		if err := u.owned("account", id, acct.WorkspaceID); err != nil {
			return err
		}
		refs, err := u.store.CountAccountReferences(u.ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return invalid("account", "Account has transactions or income records and cannot be deleted")
		}
		if err := u.store.DeleteAccount(u.ctx, id); err != nil {
			return err
		}
		u.emit(Event{Type: EventAccountDeleted, WorkspaceID: acct.WorkspaceID, AccountID: id, Delta: decimal.Zero})
		return nil
	})
}

// AdjustAccountBalance moves an account to newBalance by recording an
// income or expense transaction for the difference, dated today. It returns
// nil when the balance already matches.
func (e *Engine) AdjustAccountBalance(ctx context.Context, c Caller, id AccountID, newBalance decimal.Decimal) (*Transaction, error) {
	var out *Transaction
	err := e.run(ctx, "adjust balance", c, func(u *unit) error {
		acct, err := u.store.GetAccount(u.ctx, id)
		if err != nil {
			return err
		}
		if acct == nil {
			return notFound("account", id)
		}
		if err := u.owned("account", id, acct.WorkspaceID); err != nil {
			return err
		}
		out, err = u.adjustBalance(id, newBalance)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *unit) adjustBalance(id AccountID, target decimal.Decimal) (*Transaction, error) {
	acct, err := u.store.GetAccount(u.ctx, id)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, notFound("account", id)
	}
	delta := target.Sub(acct.Balance)
	if delta.IsZero() {
		return nil, nil
	}
	txType := TxIncome
	if delta.IsNegative() {
		txType = TxExpense
	}
	return u.recordTransaction(TransactionInput{
		WorkspaceID: acct.WorkspaceID,
		Type:        txType,
		Date:        u.today,
		Description: "Balance adjustment for " + acct.Nickname,
		Amount:      delta.Abs(),
		AccountID:   acct.ID,
	})
}

// =============================================================================
// READS
// =============================================================================

func (e *Engine) ListAccounts(ctx context.Context, c Caller, workspaceID WorkspaceID) ([]Account, error) {
	var out []Account
	err := e.read(ctx, "list accounts", c, workspaceID, func(s Store) error {
		var err error
		out, err = s.ListAccounts(ctx, workspaceID)
		return err
	})
	return out, err
}

// Reconciliation compares an account's stored balance with the sum of its
// transactions.
type Reconciliation struct {
	AccountID AccountID       `json:"account_id"`
	Stored    decimal.Decimal `json:"stored"`
	Computed  decimal.Decimal `json:"computed"`
	Balanced  bool            `json:"balanced"`
}

// Reconcile is a read-only audit of the balance invariant for one account.
func (e *Engine) Reconcile(ctx context.Context, c Caller, id AccountID) (*Reconciliation, error) {
	if c.UserID == "" {
		return nil, &AuthorizationError{}
	}
	acct, err := e.Store.GetAccount(ctx, id)
	if err != nil {
		return nil, wrapStore("reconcile", err)
	}
	if acct == nil {
		return nil, notFound("account", id)
	}
	var out *Reconciliation
	err = e.read(ctx, "reconcile", c, acct.WorkspaceID, func(s Store) error {
		txs, err := s.ListTransactions(ctx, TransactionFilter{WorkspaceID: acct.WorkspaceID, AccountID: id})
		if err != nil {
			return err
		}
		sum := decimal.Zero
		for _, tx := range txs {
			sum = sum.Add(tx.Delta())
		}
		out = &Reconciliation{
			AccountID: id,
			Stored:    acct.Balance,
			Computed:  sum,
			Balanced:  acct.Balance.Equal(sum),
		}
		return nil
	})
	if IsUnauthorized(err) {
		return nil, notFound("account", id)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
