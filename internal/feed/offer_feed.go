// Package feed streams incoming trade offers from the relay websocket to
// the pipeline.
package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/unusualtrade/hatbot/internal/economy"
	"github.com/unusualtrade/hatbot/internal/platform/steam"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message.
	pongWait = 30 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// reconnectDelay is the base delay before attempting to reconnect.
	reconnectDelay = 2 * time.Second

	// maxReconnectDelay caps the exponential backoff.
	maxReconnectDelay = 60 * time.Second
)

// OfferHandler is called for each decoded incoming trade offer.
type OfferHandler func(ctx context.Context, offerID string, offer economy.Offer)

// OfferFeed connects to the trade-offer relay websocket and invokes the
// handler for every offer it delivers. It reconnects with exponential
// backoff on disconnect. Malformed payloads are logged and skipped; a
// payload the relay garbles must never stall the stream.
type OfferFeed struct {
	wsURL     string
	onOffer   OfferHandler
	logger    *slog.Logger
	closeOnce sync.Once
	done      chan struct{}
}

// NewOfferFeed creates an offer feed against the given relay endpoint.
func NewOfferFeed(wsURL string, onOffer OfferHandler, logger *slog.Logger) *OfferFeed {
	return &OfferFeed{
		wsURL:   wsURL,
		onOffer: onOffer,
		logger:  logger.With(slog.String("component", "offer_feed")),
		done:    make(chan struct{}),
	}
}

// Run connects and processes offers until ctx is cancelled or Close is
// called.
func (f *OfferFeed) Run(ctx context.Context) error {
	delay := reconnectDelay
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		default:
		}

		start := time.Now()
		err := f.runConnection(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// A connection that survived a while earns a fresh backoff.
		if time.Since(start) > maxReconnectDelay {
			delay = reconnectDelay
		}
		f.logger.Warn("offer feed disconnected, reconnecting",
			slog.String("error", err.Error()),
			slog.Duration("delay", delay),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, maxReconnectDelay)
	}
}

func (f *OfferFeed) runConnection(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, f.wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go f.pingLoop(pingCtx, conn)

	// Unblock the read loop when the feed is cancelled or closed.
	go func() {
		select {
		case <-pingCtx.Done():
		case <-f.done:
		}
		conn.Close()
	}()

	f.logger.Info("offer feed connected", slog.String("url", f.wsURL))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		default:
		}

		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		offerID, offer, err := steam.ParseOfferPayload(payload)
		if err != nil {
			f.logger.Warn("skipping undecodable offer payload", slog.String("error", err.Error()))
			continue
		}
		f.onOffer(ctx, offerID, offer)
	}
}

func (f *OfferFeed) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// Close stops the feed.
func (f *OfferFeed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}
