// internal/inventory/domain_test.go
package inventory

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemIsLowStock(t *testing.T) {
	assert.True(t, Item{Quantity: 5, MinStock: 10}.IsLowStock())
	assert.True(t, Item{Quantity: 0, MinStock: 0}.IsLowStock())
	assert.True(t, Item{Quantity: 3, MinStock: 3}.IsLowStock())
	assert.False(t, Item{Quantity: 20, MinStock: 5}.IsLowStock())
}

func TestItemLineValue(t *testing.T) {
	it := Item{Quantity: 2, Price: decimal.RequireFromString("5.50")}
	assert.True(t, it.LineValue().Equal(decimal.RequireFromString("11.00")), it.LineValue().String())
}

func TestItemInputNormalize(t *testing.T) {
	in, err := ItemInput{
		Name:     "  Widget ",
		Quantity: 5,
		Price:    decimal.RequireFromString("1.255"),
		MinStock: 2,
		Supplier: " Acme ",
	}.normalize()
	require.NoError(t, err)
	assert.Equal(t, "Widget", in.Name)
	assert.Equal(t, "Acme", in.Supplier)
	assert.Equal(t, "1.26", in.Price.StringFixed(2))
}

func TestItemInputNormalizeRejects(t *testing.T) {
	cases := []struct {
		field string
		in    ItemInput
	}{
		{"name", ItemInput{Name: "   "}},
		{"quantity", ItemInput{Name: "a", Quantity: -1}},
		{"price", ItemInput{Name: "a", Price: decimal.NewFromInt(-1)}},
		{"min_stock", ItemInput{Name: "a", MinStock: -3}},
		{"quantity", ItemInput{Name: "a", Quantity: math.MaxInt32 + 1}},
		{"min_stock", ItemInput{Name: "a", MinStock: math.MaxInt32 + 1}},
		{"price", ItemInput{Name: "a", Price: decimal.New(1, 10)}},
		{"price", ItemInput{Name: "a", Price: decimal.RequireFromString("9999999999.995")}},
		{"name", ItemInput{Name: strings.Repeat("é", 256)}},
		{"supplier", ItemInput{Name: "a", Supplier: strings.Repeat("x", 256)}},
	}
	for _, tc := range cases {
		_, err := tc.in.normalize()
		require.Error(t, err, tc.field)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr), tc.field)
		assert.Equal(t, tc.field, verr.Field)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestItemInputNormalizeAcceptsColumnLimits(t *testing.T) {
	in, err := ItemInput{
		Name:     strings.Repeat("é", 255),
		Quantity: math.MaxInt32,
		Price:    decimal.RequireFromString("9999999999.99"),
		MinStock: math.MaxInt32,
		Supplier: strings.Repeat("x", 255),
	}.normalize()
	require.NoError(t, err)
	assert.Equal(t, "9999999999.99", in.Price.StringFixed(2))
}

func TestNormalizeCategory(t *testing.T) {
	name, desc, err := normalizeCategory(" Tools ", " hand tools ")
	require.NoError(t, err)
	assert.Equal(t, "Tools", name)
	assert.Equal(t, "hand tools", desc)

	_, _, err = normalizeCategory(" \t", "x")
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = normalizeCategory(strings.Repeat("c", 256), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNormalizeCategoryReservesUncategorizedLabel(t *testing.T) {
	_, _, err := normalizeCategory(" "+UncategorizedLabel+" ", "")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Field)

	name, _, err := normalizeCategory("n/a", "")
	require.NoError(t, err)
	assert.Equal(t, "n/a", name)
}

func TestItemFilterMatches(t *testing.T) {
	tools := int64(1)
	widget := Item{Name: "Widget", CategoryID: &tools, Category: "Tools"}
	widget2 := Item{Name: "WIDGET-2", Category: UncategorizedLabel}
	gadget := Item{Name: "Gadget", CategoryID: &tools, Category: "Tools"}

	byName := ItemFilter{NameContains: "wid"}
	assert.True(t, byName.Matches(widget))
	assert.True(t, byName.Matches(widget2))
	assert.False(t, byName.Matches(gadget))

	byCategory := ItemFilter{Category: "Tools"}
	assert.True(t, byCategory.Matches(widget))
	assert.False(t, byCategory.Matches(widget2))
	assert.True(t, byCategory.Matches(gadget))

	both := ItemFilter{NameContains: "wid", Category: "Tools"}
	assert.True(t, both.Matches(widget))
	assert.False(t, both.Matches(widget2))
	assert.False(t, both.Matches(gadget))

	uncategorized := ItemFilter{Category: UncategorizedLabel}
	assert.True(t, uncategorized.Matches(widget2))

	assert.True(t, ItemFilter{}.Matches(gadget))
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("connection reset")
	cases := []struct {
		err      error
		sentinel error
	}{
		{&ValidationError{Field: "name", Reason: "required"}, ErrValidation},
		{&DuplicateNameError{Name: "Tools"}, ErrDuplicateName},
		{&NotFoundError{Entity: "item", ID: 9}, ErrNotFound},
		{&StorageError{Op: "list_items", Err: cause}, ErrStorage},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("handler: %w", tc.err)
		assert.ErrorIs(t, wrapped, tc.sentinel)
		assert.True(t, isDomainError(wrapped))
	}

	assert.ErrorIs(t, &StorageError{Op: "x", Err: cause}, cause)
	assert.False(t, isDomainError(cause))

	assert.Equal(t, `category "Tools" already exists`, (&DuplicateNameError{Name: "Tools"}).Error())
	assert.Equal(t, "item with ID 9 not found", (&NotFoundError{Entity: "item", ID: 9}).Error())
}
