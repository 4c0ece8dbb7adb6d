package backpack

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/unusualtrade/hatbot/internal/economy"
	"github.com/unusualtrade/hatbot/internal/strategy"
)

const (
	intentBuy  = 0
	intentSell = 1
)

type currenciesPayload struct {
	Keys  int `json:"keys"`
	Metal int `json:"metal,omitempty"`
}

type itemPayload struct {
	ItemName   string `json:"item_name"`
	Quality    int    `json:"quality"`
	PriceIndex int    `json:"priceindex"`
}

type listingPayload struct {
	Intent     int               `json:"intent"`
	ID         string            `json:"id,omitempty"`
	Item       *itemPayload      `json:"item,omitempty"`
	Details    string            `json:"details"`
	Currencies currenciesPayload `json:"currencies"`
}

type publishRequest struct {
	Token    string           `json:"token"`
	Listings []listingPayload `json:"listings"`
}

type publishResponse struct {
	Listings map[string]struct {
		Created int    `json:"created"`
		Error   string `json:"error"`
	} `json:"listings"`
}

// PublishListings pushes visible listings to the marketplace in one batch.
// Sell listings are published against their asset ID; buy listings against
// the item identity. Listings the description function rejects are skipped.
func (c *Client) PublishListings(ctx context.Context, listings []economy.Listing, describe strategy.DescriptionFunc) error {
	payloads := make([]listingPayload, 0, len(listings))
	for _, l := range listings {
		p, err := payloadFor(l, describe)
		if err != nil {
			c.logger.Warn("skipping unpublishable listing",
				slog.String("item", l.Item().String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		payloads = append(payloads, p)
	}
	if len(payloads) == 0 {
		return nil
	}

	body, err := c.post(ctx, "/api/classifieds/list/v1", publishRequest{
		Token:    c.token,
		Listings: payloads,
	})
	if err != nil {
		return fmt.Errorf("backpack: publish listings: %w", err)
	}

	var resp publishResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("backpack: decode publish response: %w", err)
	}
	for name, result := range resp.Listings {
		if result.Error != "" {
			c.logger.Warn("listing rejected by marketplace",
				slog.String("item", name),
				slog.String("error", result.Error),
			)
		}
	}
	return nil
}

func payloadFor(l economy.Listing, describe strategy.DescriptionFunc) (listingPayload, error) {
	price, err := l.Price()
	if err != nil {
		return listingPayload{}, err
	}
	details, err := describe(l)
	if err != nil {
		return listingPayload{}, err
	}

	p := listingPayload{
		Details: details,
		Currencies: currenciesPayload{
			Keys:  price.Keys,
			Metal: price.Refined,
		},
	}
	if s, ok := l.(*economy.SellListing); ok {
		p.Intent = intentSell
		p.ID = s.AssetID()
	} else {
		p.Intent = intentBuy
		item := l.Item()
		p.Item = &itemPayload{
			ItemName:   item.Name,
			Quality:    int(economy.QualityUnusual),
			PriceIndex: item.EffectCode,
		}
	}
	return p, nil
}
