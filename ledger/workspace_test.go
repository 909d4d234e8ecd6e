package ledger_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-ledger/ledger"
	"github.com/warp/budget-ledger/ledger/store"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Smith Family Budget!", "smith-family-budget"},
		{"  Our   Home  ", "our-home"},
		{"2025 Plan", "2025-plan"},
		{"Café & Co", "caf-co"},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ledger.Slugify(tt.in))
		})
	}
}

func TestCreateWorkspace(t *testing.T) {
	ctx := context.Background()
	e := ledger.NewEngine(store.NewTxMemory())
	carol := ledger.Caller{UserID: "carol", Now: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}

	// GIVEN: Carol has no workspace yet
	_, err := e.WorkspaceFor(ctx, carol)
	var nf *ledger.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "workspace", nf.Resource)

	// WHEN: She creates one
	ws, err := e.CreateWorkspace(ctx, carol, "  Carol's Flat ")
	require.NoError(t, err)

	// THEN: Alice owns it, it has a unique slug and it is the default
	assert.Equal(t, "Carol's Flat", ws.Name)
	assert.Equal(t, ledger.UserID("carol"), ws.OwnerID)
	assert.True(t, strings.HasPrefix(ws.Slug, "carol-s-flat-"), ws.Slug)
	assert.Len(t, ws.Slug, len("carol-s-flat-")+6)

	got, err := e.WorkspaceFor(ctx, carol)
	require.NoError(t, err)
	assert.Equal(t, ws.ID, got.ID)
	require.NoError(t, e.Authorize(ctx, carol, ws.ID))

	// AND: A second workspace with the same name gets a different slug
	again, err := e.CreateWorkspace(ctx, carol, "Carol's Flat")
	require.NoError(t, err)
	assert.NotEqual(t, ws.Slug, again.Slug)

	// AND: Her default stays the first one
	got, err = e.WorkspaceFor(ctx, carol)
	require.NoError(t, err)
	assert.Equal(t, ws.ID, got.ID)
}

func TestCreateWorkspace_NameRequired(t *testing.T) {
	e := ledger.NewEngine(store.NewTxMemory())
	_, err := e.CreateWorkspace(context.Background(), ledger.Caller{UserID: "carol"}, "   ")

	var ve *ledger.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Workspace name is required", ve.Message)
}

func TestAuthorize_EmptyWorkspace(t *testing.T) {
	e := ledger.NewEngine(store.NewTxMemory())
	err := e.Authorize(context.Background(), ledger.Caller{UserID: "carol"}, "")

	var ve *ledger.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "No workspace found", ve.Message)
}

func TestDate(t *testing.T) {
	d, err := ledger.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())
	assert.Equal(t, "2024-03-01", d.AddDays(1).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.OnOrBefore(d))

	_, err = ledger.ParseDate("2024-13-01")
	assert.Error(t, err)

	var round ledger.Date
	text, err := d.MarshalText()
	require.NoError(t, err)
	require.NoError(t, round.UnmarshalText(text))
	assert.True(t, d.Equal(round))
}
