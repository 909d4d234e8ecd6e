package ledger

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// WORKSPACES
// =============================================================================

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a workspace name into its URL slug base.
// "Smith Family Budget!" -> "smith-family-budget"
func Slugify(name string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

func slugSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// CreateWorkspace creates a workspace owned by the caller and makes the
// caller its first member.
func (e *Engine) CreateWorkspace(ctx context.Context, c Caller, name string) (*Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("workspaceName", "Workspace name is required")
	}

	var out *Workspace
	err := e.run(ctx, "create workspace", c, func(u *unit) error {
		ws := Workspace{
			ID:        WorkspaceID(u.newID()),
			Name:      name,
			Slug:      Slugify(name) + "-" + slugSuffix(),
			OwnerID:   c.UserID,
			CreatedAt: c.Now,
		}
		if err := u.store.InsertWorkspace(u.ctx, ws); err != nil {
			return err
		}
		if err := u.store.InsertMember(u.ctx, Member{WorkspaceID: ws.ID, UserID: c.UserID, Role: RoleOwner}); err != nil {
			return err
		}
		out = &ws
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WorkspaceFor resolves the workspace the caller acts in.
func (e *Engine) WorkspaceFor(ctx context.Context, c Caller) (*Workspace, error) {
	if c.UserID == "" {
		return nil, &AuthorizationError{}
	}
	ws, err := e.Store.WorkspaceForUser(ctx, c.UserID)
	if err != nil {
		return nil, wrapStore("resolve workspace", err)
	}
	if ws == nil {
		return nil, &NotFoundError{Resource: "workspace"}
	}
	return ws, nil
}

// Authorize checks that the caller is a member of workspaceID. Other
// packages that keep workspace-scoped rows use it before touching them.
func (e *Engine) Authorize(ctx context.Context, c Caller, workspaceID WorkspaceID) error {
	return e.read(ctx, "authorize", c, workspaceID, func(Store) error { return nil })
}
