package strategy

import (
	"slices"
	"time"

	"github.com/unusualtrade/hatbot/internal/economy"
)

// AcceptAll accepts every entry priced in a supported currency.
func AcceptAll() Acceptability {
	return func(entry economy.CatalogEntry, _ string, _ economy.Effect, _ int) bool {
		return entry.Supported()
	}
}

// CheckData accepts entries whose community middle price lies in
// [minKeys, maxKeys], whose range spread is at most maxRange keys, and whose
// price was updated within maxAge. A zero or negative maxKeys or maxAge and
// a negative maxRange disable that check.
func CheckData(minKeys, maxKeys, maxRange float64, maxAge time.Duration) (Acceptability, error) {
	if err := checkFinite("min keys", minKeys); err != nil {
		return nil, err
	}
	if err := checkFinite("max keys", maxKeys); err != nil {
		return nil, err
	}
	if err := checkFinite("max range", maxRange); err != nil {
		return nil, err
	}
	return func(entry economy.CatalogEntry, _ string, _ economy.Effect, keyScrapRatio int) bool {
		return checkEntryData(entry, minKeys, maxKeys, maxRange, maxAge, keyScrapRatio)
	}, nil
}

// CheckType accepts entries by item name and effect. With nameAllow true the
// names slice lists the only accepted names, otherwise the rejected ones; a
// nil slice leaves names unrestricted. effectAllow and effects behave the
// same way.
func CheckType(nameAllow bool, names []string, effectAllow bool, effects []economy.Effect) Acceptability {
	return func(entry economy.CatalogEntry, name string, effect economy.Effect, _ int) bool {
		if !entry.Supported() {
			return false
		}
		return checkEntryType(name, effect, nameAllow, names, effectAllow, effects)
	}
}

// CheckDataAndType accepts entries that pass both CheckData and CheckType.
func CheckDataAndType(minKeys, maxKeys, maxRange float64, maxAge time.Duration, nameAllow bool, names []string, effectAllow bool, effects []economy.Effect) (Acceptability, error) {
	data, err := CheckData(minKeys, maxKeys, maxRange, maxAge)
	if err != nil {
		return nil, err
	}
	return func(entry economy.CatalogEntry, name string, effect economy.Effect, keyScrapRatio int) bool {
		return data(entry, name, effect, keyScrapRatio) &&
			checkEntryType(name, effect, nameAllow, names, effectAllow, effects)
	}, nil
}

func checkEntryData(entry economy.CatalogEntry, minKeys, maxKeys, maxRange float64, maxAge time.Duration, keyScrapRatio int) bool {
	r, err := economy.PriceRangeFromEntry(entry, keyScrapRatio)
	if err != nil {
		return false
	}
	middle, err := r.Middle.Decimal(keyScrapRatio)
	if err != nil {
		return false
	}
	if middle < minKeys {
		return false
	}
	if maxKeys > 0 && middle > maxKeys {
		return false
	}
	if maxRange >= 0 {
		spread, err := r.Spread(keyScrapRatio)
		if err != nil || spread > maxRange {
			return false
		}
	}
	if maxAge > 0 {
		updated := time.Unix(entry.LastUpdate, 0)
		if time.Since(updated) > maxAge {
			return false
		}
	}
	return true
}

func checkEntryType(name string, effect economy.Effect, nameAllow bool, names []string, effectAllow bool, effects []economy.Effect) bool {
	if names != nil && nameAllow != slices.Contains(names, name) {
		return false
	}
	if effects != nil && effectAllow != slices.Contains(effects, effect) {
		return false
	}
	return true
}
