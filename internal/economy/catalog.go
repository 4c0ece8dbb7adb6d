package economy

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Names of the four fixed currency items. Their scrap values never change
// except for the key, whose value is the key-to-scrap ratio itself.
const (
	KeyItemName        = "Mann Co. Supply Crate Key"
	RefinedMetalName   = "Refined Metal"
	ReclaimedMetalName = "Reclaimed Metal"
	ScrapMetalName     = "Scrap Metal"
)

const (
	currencyKeys  = "keys"
	currencyMetal = "metal"
)

// Unusual-quality oddities that are not hats and must never get listings.
var excludedUnusualNames = map[string]bool{
	"Haunted Metal Scrap":                      true,
	"Horseless Headless Horsemann's Headtaker": true,
	"Unusualifier":                             true,
}

// ExcludedUnusualName reports whether the given item name is an
// unusual-quality oddity the bot refuses to trade as a hat.
func ExcludedUnusualName(name string) bool {
	return excludedUnusualNames[name]
}

// CatalogEntry is one price record from the community price catalog. The
// currency may be one the bot does not support (such as USD), which callers
// must check before converting.
type CatalogEntry struct {
	Currency   string  `json:"currency"`
	Value      float64 `json:"value"`
	ValueHigh  float64 `json:"value_high,omitempty"`
	LastUpdate int64   `json:"last_update"`
}

// Supported reports whether the entry is priced in keys or metal. Every
// acceptability strategy rejects unsupported entries before anything else.
func (e CatalogEntry) Supported() bool {
	return e.Currency == currencyKeys || e.Currency == currencyMetal
}

// PriceRangeFromEntry converts a catalog entry into a PriceRange,
// interpreting the entry's low and high values in its currency. Entries in
// an unsupported currency fail with ErrUnsupportedCurrency.
func PriceRangeFromEntry(e CatalogEntry, keyScrapRatio int) (PriceRange, error) {
	low := int(math.Round(e.Value))
	high := low
	if e.ValueHigh != 0 {
		high = int(math.Round(e.ValueHigh))
	}
	switch e.Currency {
	case currencyKeys:
		return NewPriceRange(Price{Keys: low}, Price{Keys: high}, keyScrapRatio)
	case currencyMetal:
		return NewPriceRange(Price{Refined: low}, Price{Refined: high}, keyScrapRatio)
	default:
		return PriceRange{}, fmt.Errorf("economy: catalog entry in %q: %w", e.Currency, ErrUnsupportedCurrency)
	}
}

// Catalog is a parsed community price catalog snapshot: per-item price
// entries keyed by name, quality, and effect code. The upstream schema is
// not under this system's control, so everything outside the paths below is
// ignored.
type Catalog struct {
	items map[string]catalogItem
}

type catalogItem struct {
	// quality code -> "Tradable" -> "Craftable" -> effect code -> entry
	Prices map[string]map[string]map[string]map[string]CatalogEntry `json:"prices"`
}

type catalogDocument struct {
	Response struct {
		Items map[string]catalogItem `json:"items"`
	} `json:"response"`
}

// ParseCatalog decodes a raw catalog document.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("economy: parse catalog: %w", err)
	}
	if doc.Response.Items == nil {
		return nil, fmt.Errorf("economy: parse catalog: no items: %w", ErrMalformedData)
	}
	return &Catalog{items: doc.Response.Items}, nil
}

func (c *Catalog) entry(name string, quality Quality, effectCode int) (CatalogEntry, bool) {
	item, ok := c.items[name]
	if !ok {
		return CatalogEntry{}, false
	}
	byQuality, ok := item.Prices[strconv.Itoa(int(quality))]
	if !ok {
		return CatalogEntry{}, false
	}
	entry, ok := byQuality["Tradable"]["Craftable"][strconv.Itoa(effectCode)]
	return entry, ok
}

// UnusualEntry returns the catalog entry for an unusual item identity.
func (c *Catalog) UnusualEntry(item Item) (CatalogEntry, error) {
	entry, ok := c.entry(item.Name, QualityUnusual, item.EffectCode)
	if !ok {
		return CatalogEntry{}, fmt.Errorf("economy: catalog entry for %s: %w", item, ErrNotFound)
	}
	return entry, nil
}

// ForEachUnusual calls fn for every unusual entry in the catalog, skipping
// the excluded oddity names and entries whose effect code is unknown.
func (c *Catalog) ForEachUnusual(fn func(entry CatalogEntry, name string, effect Effect)) {
	for name, item := range c.items {
		if ExcludedUnusualName(name) {
			continue
		}
		byEffect, ok := item.Prices[strconv.Itoa(int(QualityUnusual))]["Tradable"]["Craftable"]
		if !ok {
			continue
		}
		for code, entry := range byEffect {
			n, err := strconv.Atoi(code)
			if err != nil {
				continue
			}
			effect, err := EffectForCode(n)
			if err != nil {
				continue
			}
			fn(entry, name, effect)
		}
	}
}

// KeyScrapRatio derives the key-to-scrap ratio from the catalog's own entry
// for the key (a unique-quality item priced in metal). The middle of that
// range, in scrap, is the ratio.
func (c *Catalog) KeyScrapRatio() (int, error) {
	entry, ok := c.entry(KeyItemName, QualityUnique, 0)
	if !ok {
		return 0, fmt.Errorf("economy: catalog has no key price: %w", ErrMalformedData)
	}
	// The ratio itself is irrelevant for a metal-only range, so 1 is fine.
	r, err := PriceRangeFromEntry(entry, 1)
	if err != nil {
		return 0, fmt.Errorf("economy: key price: %w", err)
	}
	return r.Middle.ScrapValue(1)
}
