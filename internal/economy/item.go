package economy

import "fmt"

// Item is the immutable identity of an item: name, quality, and (for
// unusuals) the particle effect code. It is comparable and is the lookup key
// joining inventory records, listings, and trade-offer line items across
// independently-sourced payloads.
//
// The stored name never carries a quality prefix; NewItem strips one if
// present.
type Item struct {
	Name    string
	Quality Quality
	// EffectCode is the unusual price index. Zero for non-unusual items;
	// the effect is required when Quality is Unusual and ignored otherwise.
	EffectCode int
}

// NewItem builds an Item identity. An unusual quality requires an effect;
// for any other quality the effect argument is ignored.
func NewItem(fullName string, quality Quality, effect Effect) (Item, error) {
	if fullName == "" {
		return Item{}, fmt.Errorf("economy: item with empty name: %w", ErrInvalidArgument)
	}
	if quality == QualityUnusual && effect == NoEffect {
		return Item{}, fmt.Errorf("economy: unusual item %q without effect: %w", fullName, ErrInvalidArgument)
	}
	code := 0
	if quality == QualityUnusual {
		code = effect.Code
	}
	return Item{
		Name:       quality.StripPrefix(fullName),
		Quality:    quality,
		EffectCode: code,
	}, nil
}

// Effect returns the item's particle effect, or NoEffect for non-unusuals.
func (i Item) Effect() Effect {
	if i.EffectCode == 0 {
		return NoEffect
	}
	e, ok := effectByCode[i.EffectCode]
	if !ok {
		return NoEffect
	}
	return e
}

func (i Item) String() string {
	if i.Quality == QualityUnusual {
		return fmt.Sprintf("%s %s", i.Effect().Name, i.Name)
	}
	return fmt.Sprintf("%s %s", i.Quality.Name(), i.Name)
}

// InventoryItem is an Item plus the marketplace asset ID of a concrete copy,
// as seen in inventories and trade offers.
type InventoryItem struct {
	Item
	AssetID string
}

// NewInventoryItem builds an InventoryItem; the asset ID must be non-empty.
func NewInventoryItem(fullName string, quality Quality, effect Effect, assetID string) (InventoryItem, error) {
	if assetID == "" {
		return InventoryItem{}, fmt.Errorf("economy: inventory item %q without asset ID: %w", fullName, ErrInvalidArgument)
	}
	item, err := NewItem(fullName, quality, effect)
	if err != nil {
		return InventoryItem{}, err
	}
	return InventoryItem{Item: item, AssetID: assetID}, nil
}

func (i InventoryItem) String() string {
	return fmt.Sprintf("%s (id: %s)", i.Item.String(), i.AssetID)
}
