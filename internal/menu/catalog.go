// Package menu holds the read-only catalog of orderable items.
package menu

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var defaultMenu []byte

// Flags are the dietary and merchandising markers shown on a menu card.
type Flags struct {
	Popular    bool `json:"popular,omitempty"`
	Vegetarian bool `json:"vegetarian,omitempty"`
	GlutenFree bool `json:"glutenFree,omitempty"`
}

// Item is a single orderable dish.
type Item struct {
	ID          string
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Image       string
	Category    string
	Flags       Flags
	SpiceLevel  int // 0 when not spicy, otherwise 1..5
	Allergens   []string
}

// Catalog is an immutable, ordered set of items indexed by id.
type Catalog struct {
	items []Item
	byID  map[string]int
}

type document struct {
	Items []struct {
		ID          string   `yaml:"id"`
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		Price       string   `yaml:"price"`
		Image       string   `yaml:"image"`
		Category    string   `yaml:"category"`
		Popular     bool     `yaml:"popular"`
		Vegetarian  bool     `yaml:"vegetarian"`
		GlutenFree  bool     `yaml:"gluten_free"`
		SpiceLevel  int      `yaml:"spice_level"`
		Allergens   []string `yaml:"allergens"`
	} `yaml:"items"`
}

// New builds a catalog. It rejects duplicate ids, negative prices, prices
// with a non-zero digit past the pennies and spice levels outside 0..5.
func New(items []Item) (*Catalog, error) {
	c := &Catalog{
		items: make([]Item, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for _, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("menu: item %q has no id", it.Name)
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("menu: duplicate item id %q", it.ID)
		}
		if it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("menu: item %q has negative price %s", it.ID, it.UnitPrice)
		}
		// The payment proxy charges unit prices rounded to 2dp; "1.500" is fine.
		if !it.UnitPrice.Equal(it.UnitPrice.Round(2)) {
			return nil, fmt.Errorf("menu: item %q price %s has more than 2 decimal places", it.ID, it.UnitPrice)
		}
		if it.SpiceLevel < 0 || it.SpiceLevel > 5 {
			return nil, fmt.Errorf("menu: item %q has spice level %d outside 0..5", it.ID, it.SpiceLevel)
		}
		c.byID[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	return c, nil
}

// Load parses a YAML menu document.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("menu: decode: %w", err)
	}

	items := make([]Item, 0, len(doc.Items))
	for _, raw := range doc.Items {
		p, err := decimal.NewFromString(raw.Price)
		if err != nil {
			return nil, fmt.Errorf("menu: item %q price %q: %w", raw.ID, raw.Price, err)
		}
		items = append(items, Item{
			ID:          raw.ID,
			Name:        raw.Name,
			Description: raw.Description,
			UnitPrice:   p,
			Image:       raw.Image,
			Category:    raw.Category,
			Flags: Flags{
				Popular:    raw.Popular,
				Vegetarian: raw.Vegetarian,
				GlutenFree: raw.GlutenFree,
			},
			SpiceLevel: raw.SpiceLevel,
			Allergens:  raw.Allergens,
		})
	}
	return New(items)
}

// LoadFile reads a catalog from path. An empty path yields the built-in menu.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("menu: open %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the built-in Farros House menu.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultMenu))
}

// Lookup resolves an item by id.
func (c *Catalog) Lookup(id string) (Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Items returns the catalog in document order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Categories lists distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range c.items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out
}

// Filter narrows the catalog by category ("" or "All" keeps everything) and a
// case-insensitive search term matched against name, description and category.
func (c *Catalog) Filter(category, term string) []Item {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		if category != "" && !strings.EqualFold(category, "all") && it.Category != category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(it.Name), term) &&
			!strings.Contains(strings.ToLower(it.Description), term) &&
			!strings.Contains(strings.ToLower(it.Category), term) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// SortOrder names a listing order.
type SortOrder string

const (
	SortDefault   SortOrder = ""
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortName      SortOrder = "name"
	SortPopular   SortOrder = "popular"
)

// Sort returns a sorted copy of items. Unknown orders keep the input order.
func Sort(items []Item, by SortOrder) []Item {
	out := make([]Item, len(items))
	copy(out, items)

	switch by {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].UnitPrice.LessThan(out[j].UnitPrice) })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].UnitPrice.GreaterThan(out[j].UnitPrice) })
	case SortName:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case SortPopular:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Flags.Popular && !out[j].Flags.Popular })
	}
	return out
}

var spiceLevels = []string{"Mild", "Light", "Medium", "Hot", "Extra Hot"}

// SpiceLevelText describes a 1..5 spice level.
func SpiceLevelText(level int) string {
	if level < 1 || level > len(spiceLevels) {
		return "Unknown"
	}
	return spiceLevels[level-1]
}
