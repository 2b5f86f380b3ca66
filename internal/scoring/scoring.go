// Package scoring computes the box score from declared ownership levels and
// remembers the last submission for pre-fill.
package scoring

import (
	"github.com/DoyleJ11/wuwa-draft-client/internal/catalog"
)

// NotOwned marks a limited item the player does not own.
const NotOwned = -1

// Ownership maps a limited item name to an ownership level or NotOwned.
type Ownership map[string]int

// Score sums the points of every limited item with a valid level. Missing,
// out-of-range and non-limited entries contribute zero.
func Score(cat *catalog.Catalog, own Ownership) int {
	total := 0
	for name, level := range own {
		it, ok := cat.Lookup(name)
		if !ok || !it.Limited {
			continue
		}
		if p, ok := cat.PointsFor(name, level); ok {
			total += p
		}
	}
	return total
}

// Defaults returns NotOwned for every limited item.
func Defaults(cat *catalog.Catalog) Ownership {
	out := Ownership{}
	for _, it := range cat.Limited() {
		out[it.Name] = NotOwned
	}
	return out
}

// Normalize projects own onto the catalog's limited items: valid levels are
// kept, everything else becomes NotOwned, unknown names are dropped.
func Normalize(cat *catalog.Catalog, own Ownership) Ownership {
	out := Defaults(cat)
	for name := range out {
		if level, ok := own[name]; ok && catalog.ValidLevel(level) {
			out[name] = level
		}
	}
	return out
}

// Submitted returns only the owned entries, which is what the service is sent.
func Submitted(own Ownership) map[string]int {
	out := map[string]int{}
	for name, level := range own {
		if catalog.ValidLevel(level) {
			out[name] = level
		}
	}
	return out
}
