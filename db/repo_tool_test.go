package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodePrefix(t *testing.T) {
	cases := map[string]string{
		"Drill":        "DRI",
		"5m tape":      "5MT",
		"Ax":           "AXX",
		"  a-b_c d":    "ABC",
		"Ñandú wrench": "AND",
		"":             "XXX",
	}
	for in, want := range cases {
		assert.Equal(t, want, codePrefix(in), "name %q", in)
	}
}

func TestCreateTool_GeneratesSequentialCodes(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	a := mustTool(t, r, "Drill", 1)
	b := mustTool(t, r, "Drill press", 1)
	c := mustTool(t, r, "Sander", 1)
	assert.Equal(t, "DRI-0001", a.Code)
	assert.Equal(t, "DRI-0002", b.Code)
	assert.Equal(t, "SAN-0001", c.Code)

	next, err := r.GenerateToolCode(ctx, "drift punch")
	require.NoError(t, err)
	assert.Equal(t, "DRI-0003", next)

	// a hand-assigned code with the same prefix does not break the sequence
	_, err = r.CreateTool(ctx, ToolInput{Name: "Driver", Code: ptr("DRI-SPARE")})
	require.NoError(t, err)
	d := mustTool(t, r, "Drill bit set", 1)
	assert.Equal(t, "DRI-0003", d.Code)

	_, err = r.GenerateToolCode(ctx, " ")
	assert.True(t, IsKind(err, KindValidationFailed))
}

func TestCreateTool_DefaultsAndValidation(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	tool, err := r.CreateTool(ctx, ToolInput{Name: "Wrench", Description: ptr("  ")})
	require.NoError(t, err)
	assert.Equal(t, 1, tool.AvailableQuantity)
	assert.True(t, tool.Active)
	assert.Nil(t, tool.Description)
	assert.Nil(t, tool.CategoryID)

	_, err = r.CreateTool(ctx, ToolInput{Name: ""})
	assert.True(t, IsKind(err, KindValidationFailed))

	_, err = r.CreateTool(ctx, ToolInput{Name: "Saw", Quantity: ptr(-1)})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = r.CreateTool(ctx, ToolInput{Name: "Saw", CategoryID: ptr(uint(42))})
	assert.ErrorIs(t, err, ErrUnknownCategory)

	zero, err := r.CreateTool(ctx, ToolInput{Name: "Level", Quantity: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, zero.AvailableQuantity)
}

func TestCreateTool_DuplicateCode(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.CreateTool(ctx, ToolInput{Name: "Crimper", Code: ptr("CRM-1")})
	require.NoError(t, err)
	_, err = r.CreateTool(ctx, ToolInput{Name: "Crimper 2", Code: ptr("CRM-1")})
	assert.ErrorIs(t, err, ErrDuplicateCode)
	assert.True(t, IsKind(err, KindValidationFailed))
}

func TestListTools_Filters(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	cat, err := r.CreateCategory(ctx, CategoryInput{Name: "Cutting"})
	require.NoError(t, err)

	saw, err := r.CreateTool(ctx, ToolInput{Name: "Saw", CategoryID: &cat.ID, Quantity: ptr(2)})
	require.NoError(t, err)
	_, err = r.CreateTool(ctx, ToolInput{Name: "Knife", CategoryID: &cat.ID, Quantity: ptr(0)})
	require.NoError(t, err)
	_, err = r.CreateTool(ctx, ToolInput{Name: "Shears", Quantity: ptr(3), Active: ptr(false)})
	require.NoError(t, err)

	all, err := r.ListTools(ctx, ToolFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := r.ListTools(ctx, ToolFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	avail, err := r.ListAvailableTools(ctx)
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, saw.ID, avail[0].ID)

	byCat, err := r.ListToolsByCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Len(t, byCat, 2)
}

func TestListTools_Search(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	saw := mustTool(t, r, "Saw", 1)
	knife := mustTool(t, r, "Knife", 1)
	_, err := r.CreateTool(ctx, ToolInput{Name: "Shears", Active: ptr(false)})
	require.NoError(t, err)

	cases := []struct {
		q    string
		want int
	}{
		{"sa", 1},
		{"SAW", 1},
		{"0001", 3},
		{"kni-", 1},
		{"%", 0},
		{"_", 0},
		{"  ", 3},
	}
	for _, tc := range cases {
		got, err := r.ListTools(ctx, ToolFilter{Search: tc.q})
		require.NoError(t, err)
		assert.Len(t, got, tc.want, "q=%q", tc.q)
	}

	byCode, err := r.ListTools(ctx, ToolFilter{Search: knife.Code})
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, knife.ID, byCode[0].ID)

	activeOnly, err := r.ListTools(ctx, ToolFilter{Search: "s", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, saw.ID, activeOnly[0].ID)
}

func TestUpdateTool(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	cat, err := r.CreateCategory(ctx, CategoryInput{Name: "Measuring"})
	require.NoError(t, err)
	tape := mustTool(t, r, "Tape", 1)
	other := mustTool(t, r, "Caliper", 1)

	got, err := r.UpdateTool(ctx, tape.ID, ToolPatch{
		Name:              ptr("Tape 5m"),
		CategoryID:        &cat.ID,
		AvailableQuantity: ptr(4),
		Description:       ptr("yellow case"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Tape 5m", got.Name)
	assert.Equal(t, 4, got.AvailableQuantity)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, cat.ID, *got.CategoryID)
	require.NotNil(t, got.Description)
	assert.Equal(t, "yellow case", *got.Description)
	assert.Equal(t, tape.Code, got.Code)

	got, err = r.UpdateTool(ctx, tape.ID, ToolPatch{ClearCategory: true})
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	_, err = r.UpdateTool(ctx, tape.ID, ToolPatch{Code: ptr(other.Code)})
	assert.ErrorIs(t, err, ErrDuplicateCode)

	_, err = r.UpdateTool(ctx, tape.ID, ToolPatch{AvailableQuantity: ptr(-2)})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 4, stockOf(t, r, tape.ID))

	_, err = r.UpdateTool(ctx, tape.ID, ToolPatch{CategoryID: ptr(uint(77))})
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = r.UpdateTool(ctx, 999, ToolPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestSetToolActive(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	tool := mustTool(t, r, "Grinder", 1)

	got, err := r.SetToolActive(ctx, tool.ID, false)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.False(t, got.Lendable())

	_, err = r.SetToolActive(ctx, 999, true)
	assert.ErrorIs(t, err, ErrToolNotFound)

	missing, err := r.GetTool(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
