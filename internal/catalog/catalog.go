// Package catalog holds the static list of draftable items and the
// ownership-level points schedule used for scoring.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

var ErrEmptyCatalog = errors.New("catalog has no items")
var ErrUnknownItem = errors.New("unknown catalog item")

// MinLevel and MaxLevel bound the ownership levels a player can declare.
const (
	MinLevel = 0
	MaxLevel = 6
)

// SentinelName names the single item of the fallback catalog.
const SentinelName = "Unknown"

// DefaultPoints is the ownership-level -> points schedule.
var DefaultPoints = Points{0: 3, 1: 5, 2: 9, 3: 10, 4: 11, 5: 12, 6: 16}

// Points maps an ownership level to the score it contributes.
type Points map[int]int

// ValidLevel reports whether level is inside the closed ownership range.
func ValidLevel(level int) bool { return level >= MinLevel && level <= MaxLevel }

type Item struct {
	Name     string   `json:"name" yaml:"name"`
	Rarity   int      `json:"rarity" yaml:"rarity"`
	Elements []string `json:"element" yaml:"element"`
	Limited  bool     `json:"isLimited" yaml:"isLimited"`
	// Icon is the grid button image, Badge the compact pick/ban image.
	Icon  string `json:"image_button" yaml:"image_button"`
	Badge string `json:"image_pick" yaml:"image_pick"`
	// Weights overrides the catalog points schedule for this item.
	Weights Points `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// HasElement reports whether the item carries tag.
func (it Item) HasElement(tag string) bool { return slices.Contains(it.Elements, tag) }

// Catalog is immutable after construction.
type Catalog struct {
	items  []Item
	byName map[string]int
	points Points
}

// New builds a catalog from items in order. A later item with a name already
// seen is dropped and reported in the returned warnings.
func New(items []Item, points Points) (*Catalog, []string, error) {
	if len(items) == 0 {
		return nil, nil, ErrEmptyCatalog
	}
	if len(points) == 0 {
		points = DefaultPoints
	}

	c := &Catalog{
		items:  make([]Item, 0, len(items)),
		byName: make(map[string]int, len(items)),
		points: clonePoints(points),
	}
	var warnings []string
	for _, it := range items {
		if it.Name == "" {
			warnings = append(warnings, "skipped catalog item without a name")
			continue
		}
		if _, dup := c.byName[it.Name]; dup {
			warnings = append(warnings, fmt.Sprintf("skipped duplicate catalog item %q", it.Name))
			continue
		}
		it.Elements = slices.Clone(it.Elements)
		it.Weights = clonePoints(it.Weights)
		c.byName[it.Name] = len(c.items)
		c.items = append(c.items, it)
	}
	if len(c.items) == 0 {
		return nil, warnings, ErrEmptyCatalog
	}
	return c, warnings, nil
}

// Sentinel is the one-item catalog used when loading fails.
func Sentinel() *Catalog {
	c, _, _ := New([]Item{{Name: SentinelName, Rarity: 4, Elements: []string{}}}, DefaultPoints)
	return c
}

func (c *Catalog) Len() int { return len(c.items) }

// Items returns a copy of the items in document order.
func (c *Catalog) Items() []Item { return slices.Clone(c.items) }

func (c *Catalog) Lookup(name string) (Item, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Limited returns the limited items in document order.
func (c *Catalog) Limited() []Item {
	var out []Item
	for _, it := range c.items {
		if it.Limited {
			out = append(out, it)
		}
	}
	return out
}

// Elements returns every element tag, sorted.
func (c *Catalog) Elements() []string {
	seen := map[string]struct{}{}
	for _, it := range c.items {
		for _, e := range it.Elements {
			seen[e] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Rarities returns every rarity tier, highest first.
func (c *Catalog) Rarities() []int {
	seen := map[int]struct{}{}
	for _, it := range c.items {
		seen[it.Rarity] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// PointsFor returns the points an item earns at level; ok is false when the
// level is out of range or has no schedule entry.
func (c *Catalog) PointsFor(name string, level int) (int, bool) {
	if !ValidLevel(level) {
		return 0, false
	}
	it, found := c.Lookup(name)
	if found && it.Weights != nil {
		if p, ok := it.Weights[level]; ok {
			return p, true
		}
	}
	p, ok := c.points[level]
	return p, ok
}

func clonePoints(p Points) Points {
	if p == nil {
		return nil
	}
	out := make(Points, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
