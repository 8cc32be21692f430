package menu

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsBuiltInMenu(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Items(), 12)
	assert.Equal(t, []string{"grilled", "sides", "desserts"}, c.Categories())

	steak, ok := c.Lookup("1")
	require.True(t, ok)
	assert.Equal(t, "Grilled Ribeye Steak", steak.Name)
	assert.Equal(t, "24.99", steak.UnitPrice.StringFixed(2))
	assert.True(t, steak.Flags.Popular)

	_, ok = c.Lookup("999")
	assert.False(t, ok)
}

func TestLoad_RejectsDuplicateIDs(t *testing.T) {
	doc := `
items:
  - {id: "a", name: One, price: "1.00", category: x}
  - {id: "a", name: Two, price: "2.00", category: x}
`
	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoad_RejectsBadPrice(t *testing.T) {
	_, err := Load(strings.NewReader(`items: [{id: "a", name: One, price: "cheap"}]`))
	assert.Error(t, err)

	_, err = Load(strings.NewReader(`items: [{id: "a", name: One, price: "-1.00"}]`))
	assert.Error(t, err)
}

func TestLoad_RejectsSubPennyPrices(t *testing.T) {
	for _, price := range []string{"12.999", "0.001", "4.9950"} {
		_, err := Load(strings.NewReader(`items: [{id: "a", name: One, price: "` + price + `"}]`))
		require.Error(t, err, price)
		assert.Contains(t, err.Error(), "2 decimal places", price)
	}
}

func TestLoad_AcceptsTrailingZeroPrices(t *testing.T) {
	c, err := Load(strings.NewReader(`items: [{id: "a", name: One, price: "4.500"}, {id: "b", name: Two, price: "3"}]`))
	require.NoError(t, err)

	a, ok := c.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "4.50", a.UnitPrice.StringFixed(2))
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader(`items: [{id: "a", name: One, price: "1.00", colour: red}]`))
	assert.Error(t, err)
}

func TestNew_RejectsSpiceLevelOutOfRange(t *testing.T) {
	_, err := New([]Item{{ID: "a", UnitPrice: decimal.NewFromInt(1), SpiceLevel: 6}})
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Filter("desserts", ""), 4)
	assert.Len(t, c.Filter("All", ""), 12)

	got := c.Filter("", "FALAFEL")
	require.Len(t, got, 1)
	assert.Equal(t, "8", got[0].ID)

	// Search also matches the category name.
	assert.Len(t, c.Filter("", "sides"), 4)
	assert.Empty(t, c.Filter("sides", "tiramisu"))
}

func TestSort(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	items := c.Filter("desserts", "")

	low := Sort(items, SortPriceLow)
	assert.Equal(t, "Turkish Delight", low[0].Name)

	high := Sort(items, SortPriceHigh)
	assert.Equal(t, "Tiramisu", high[0].Name)

	byName := Sort(items, SortName)
	assert.Equal(t, "Baklava", byName[0].Name)

	popular := Sort(c.Items(), SortPopular)
	for _, it := range popular[:4] {
		assert.True(t, it.Flags.Popular, it.Name)
	}

	// Input is left untouched.
	assert.Equal(t, "Baklava", items[0].Name)
}

func TestSpiceLevelText(t *testing.T) {
	assert.Equal(t, "Mild", SpiceLevelText(1))
	assert.Equal(t, "Extra Hot", SpiceLevelText(5))
	assert.Equal(t, "Unknown", SpiceLevelText(0))
}
