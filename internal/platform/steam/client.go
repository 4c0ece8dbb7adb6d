// Package steam is the Steam-side client: user inventories over HTTP and
// trade-offer payload decoding into economy types.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/unusualtrade/hatbot/internal/economy"
)

// effectHighlightColor marks the description line carrying the unusual
// effect name ("★ Unusual Effect: Burning Flames").
const effectHighlightColor = "ffd700"

// Client is the Steam inventory REST client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Steam client.
//
// baseURL is the community root, e.g. "https://steamcommunity.com".
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "steam")),
	}
}

// GetInventory fetches and decodes the TF2 inventory of the given account.
func (c *Client) GetInventory(ctx context.Context, accountID string) ([]economy.InventoryItem, error) {
	url := fmt.Sprintf("%s/profiles/%s/inventory/json/440/2", c.baseURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("steam: create inventory request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("steam: fetch inventory for %s: %w", accountID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("steam: read inventory response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("steam: inventory request for %s: status %d", accountID, resp.StatusCode)
	}

	items, err := c.parseInventory(body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("inventory fetched",
		slog.String("account_id", accountID),
		slog.Int("items", len(items)),
	)
	return items, nil
}

// RespondOffer tells the trade relay to accept or decline a pending offer.
// Held offers stay pending for manual review, so Hold is a no-op.
func (c *Client) RespondOffer(ctx context.Context, offerID string, response economy.OfferResponse) error {
	if offerID == "" {
		return fmt.Errorf("steam: empty offer ID: %w", economy.ErrInvalidArgument)
	}

	var action string
	switch response {
	case economy.ResponseAccept:
		action = "accept"
	case economy.ResponseDecline:
		action = "decline"
	case economy.ResponseHold:
		return nil
	default:
		return fmt.Errorf("steam: unknown offer response %q: %w", response, economy.ErrInvalidArgument)
	}

	url := fmt.Sprintf("%s/tradeoffer/%s/%s", c.baseURL, offerID, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("steam: create offer response request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("steam: respond to offer %s: %w", offerID, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("steam: respond to offer %s: status %d", offerID, resp.StatusCode)
	}
	c.logger.Info("offer response sent",
		slog.String("offer_id", offerID),
		slog.String("response", action),
	)
	return nil
}

type descriptionLine struct {
	Value string `json:"value"`
	Color string `json:"color"`
}

type inventoryAsset struct {
	ID         string `json:"id"`
	ClassID    string `json:"classid"`
	InstanceID string `json:"instanceid"`
}

type inventoryDescription struct {
	MarketName string `json:"market_name"`
	AppData    struct {
		Quality string `json:"quality"`
	} `json:"app_data"`
	Descriptions []descriptionLine `json:"descriptions"`
}

type inventoryDocument struct {
	Success      bool                            `json:"success"`
	Assets       map[string]inventoryAsset       `json:"rgInventory"`
	Descriptions map[string]inventoryDescription `json:"rgDescriptions"`
}

// parseInventory joins each asset with its description by class and instance
// ID. Assets whose description is missing or undecodable are skipped, not
// fatal: inventories routinely contain items the bot cannot trade anyway.
func (c *Client) parseInventory(raw []byte) ([]economy.InventoryItem, error) {
	var doc inventoryDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("steam: parse inventory: %w", err)
	}
	if !doc.Success {
		return nil, fmt.Errorf("steam: inventory response not successful: %w", economy.ErrMalformedData)
	}

	items := make([]economy.InventoryItem, 0, len(doc.Assets))
	for _, asset := range doc.Assets {
		desc, ok := doc.Descriptions[asset.ClassID+"_"+asset.InstanceID]
		if !ok {
			continue
		}
		item, err := itemFromDescription(desc, asset.ID)
		if err != nil {
			c.logger.Debug("skipping undecodable inventory item",
				slog.String("market_name", desc.MarketName),
				slog.String("error", err.Error()),
			)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func itemFromDescription(desc inventoryDescription, assetID string) (economy.InventoryItem, error) {
	code, err := strconv.Atoi(desc.AppData.Quality)
	if err != nil {
		return economy.InventoryItem{}, fmt.Errorf("steam: quality %q: %w", desc.AppData.Quality, economy.ErrMalformedData)
	}
	quality, err := economy.QualityForCode(code)
	if err != nil {
		return economy.InventoryItem{}, err
	}
	effect, err := parseEffect(desc.Descriptions)
	if err != nil {
		return economy.InventoryItem{}, err
	}
	return economy.NewInventoryItem(desc.MarketName, quality, effect, assetID)
}

// parseEffect extracts the unusual effect from an item's description lines.
// Non-unusual items have no highlight line and yield the zero Effect.
func parseEffect(lines []descriptionLine) (economy.Effect, error) {
	for _, line := range lines {
		if line.Color != effectHighlightColor {
			continue
		}
		_, name, found := strings.Cut(line.Value, ": ")
		if !found {
			return economy.NoEffect, fmt.Errorf("steam: effect line %q: %w", line.Value, economy.ErrMalformedData)
		}
		return economy.EffectForName(name)
	}
	return economy.NoEffect, nil
}
