package bot

import (
	"fmt"

	"github.com/unusualtrade/hatbot/internal/economy"
)

// Snapshot is the bot's persistent state: who it is and what it is selling
// and buying. Market data is not persisted; it is refetched on startup.
type Snapshot struct {
	AccountID string                 `json:"id"`
	Hats      []*economy.SellListing `json:"hats"`
	Buys      []*economy.BuyListing  `json:"buyListings"`
}

// Snapshot returns a deep copy of the bot's persistent state, listings in
// deterministic order.
func (b *TradingBot) Snapshot() *Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &Snapshot{AccountID: b.accountID}
	for _, l := range b.sells.Copy().All() {
		s.Hats = append(s.Hats, l.(*economy.SellListing))
	}
	for _, l := range b.buys.Copy().All() {
		s.Buys = append(s.Buys, l.(*economy.BuyListing))
	}
	return s
}

// Restore replaces both collections with the snapshot's listings. The
// snapshot must belong to the same account.
func (b *TradingBot) Restore(s *Snapshot) error {
	if s == nil {
		return fmt.Errorf("bot: restore nil snapshot: %w", economy.ErrInvalidArgument)
	}
	if s.AccountID != b.accountID {
		return fmt.Errorf("bot: snapshot belongs to account %q, not %q: %w",
			s.AccountID, b.accountID, economy.ErrInvalidArgument)
	}

	sells := economy.NewCollection()
	for _, l := range s.Hats {
		sells.Upsert(l.Copy())
	}
	buys := economy.NewCollection()
	for _, l := range s.Buys {
		buys.Upsert(l.Copy())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.sells = sells
	b.buys = buys
	return nil
}
