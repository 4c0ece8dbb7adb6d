package steam

import (
	"encoding/json"
	"fmt"

	"github.com/unusualtrade/hatbot/internal/economy"
)

type offerItem struct {
	ID         string `json:"id"`
	MarketName string `json:"market_name"`
	AppData    struct {
		Quality int `json:"quality"`
	} `json:"app_data"`
	Descriptions []descriptionLine `json:"descriptions"`
}

type offerDocument struct {
	ID             string      `json:"id"`
	Partner        string      `json:"partner"`
	ItemsToGive    []offerItem `json:"itemsToGive"`
	ItemsToReceive []offerItem `json:"itemsToReceive"`
}

// ParseOfferPayload decodes a trade-offer relay document into an Offer. The
// offer ID may be absent; the partner and both item arrays must decode
// completely, since a partially understood offer cannot be valued safely.
func ParseOfferPayload(raw []byte) (string, economy.Offer, error) {
	var doc offerDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", economy.Offer{}, fmt.Errorf("steam: parse offer payload: %w", err)
	}
	if doc.Partner == "" {
		return "", economy.Offer{}, fmt.Errorf("steam: offer without partner: %w", economy.ErrMalformedData)
	}

	toGive, err := offerItems(doc.ItemsToGive)
	if err != nil {
		return "", economy.Offer{}, err
	}
	toReceive, err := offerItems(doc.ItemsToReceive)
	if err != nil {
		return "", economy.Offer{}, err
	}
	return doc.ID, economy.Offer{
		Partner:   doc.Partner,
		ToGive:    toGive,
		ToReceive: toReceive,
	}, nil
}

func offerItems(items []offerItem) ([]economy.InventoryItem, error) {
	out := make([]economy.InventoryItem, 0, len(items))
	for _, it := range items {
		quality, err := economy.QualityForCode(it.AppData.Quality)
		if err != nil {
			return nil, fmt.Errorf("steam: offer item %q: %w", it.MarketName, err)
		}
		effect, err := parseEffect(it.Descriptions)
		if err != nil {
			return nil, fmt.Errorf("steam: offer item %q: %w", it.MarketName, err)
		}
		item, err := economy.NewInventoryItem(it.MarketName, quality, effect, it.ID)
		if err != nil {
			return nil, fmt.Errorf("steam: offer item %q: %w", it.MarketName, err)
		}
		out = append(out, item)
	}
	return out, nil
}
