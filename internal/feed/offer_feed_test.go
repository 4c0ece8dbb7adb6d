package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unusualtrade/hatbot/internal/economy"
)

const offerPayload = `{
	"id": "4242",
	"partner": "76561198000000055",
	"itemsToGive": [],
	"itemsToReceive": [
		{"id": "2001", "market_name": "Mann Co. Supply Crate Key", "app_data": {"quality": 6}}
	]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// relayServer serves each given message on every new connection, then holds
// the connection open until the client goes away.
func relayServer(t *testing.T, messages ...string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestOfferFeedDeliversOffers(t *testing.T) {
	srv := relayServer(t, offerPayload)
	defer srv.Close()

	type delivery struct {
		id    string
		offer economy.Offer
	}
	received := make(chan delivery, 1)
	f := NewOfferFeed(wsURL(srv), func(_ context.Context, id string, offer economy.Offer) {
		received <- delivery{id: id, offer: offer}
	}, testLogger())
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- f.Run(ctx) }()

	select {
	case got := <-received:
		assert.Equal(t, "4242", got.id)
		assert.Equal(t, "76561198000000055", got.offer.Partner)
		require.Len(t, got.offer.ToReceive, 1)
		assert.Equal(t, "Mann Co. Supply Crate Key", got.offer.ToReceive[0].Name)
	case <-ctx.Done():
		t.Fatal("no offer delivered before timeout")
	}

	f.Close()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("feed did not stop after Close")
	}
}

func TestOfferFeedSkipsMalformedPayloads(t *testing.T) {
	srv := relayServer(t, `not json`, `{"itemsToGive": []}`, offerPayload)
	defer srv.Close()

	received := make(chan string, 3)
	f := NewOfferFeed(wsURL(srv), func(_ context.Context, id string, _ economy.Offer) {
		received <- id
	}, testLogger())
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go f.Run(ctx)

	select {
	case id := <-received:
		assert.Equal(t, "4242", id)
	case <-ctx.Done():
		t.Fatal("good offer was not delivered")
	}
	assert.Empty(t, received)
}

func TestOfferFeedStopsOnContextCancel(t *testing.T) {
	srv := relayServer(t)
	defer srv.Close()

	f := NewOfferFeed(wsURL(srv), func(context.Context, string, economy.Offer) {}, testLogger())
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- f.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("feed did not stop after cancel")
	}
}