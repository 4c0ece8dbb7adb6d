package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unusualtrade/hatbot/internal/economy"
)

type fakeSender struct {
	name     string
	titles   []string
	messages []string
	err      error
}

func (f *fakeSender) Send(_ context.Context, title, message string) error {
	if f.err != nil {
		return f.err
	}
	f.titles = append(f.titles, title)
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeSender) Name() string { return f.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifyFiltersEvents(t *testing.T) {
	s := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{s}, []string{EventOfferHeld}, testLogger())

	require.NoError(t, n.Notify(context.Background(), EventOfferAccepted, "accepted", "body"))
	assert.Empty(t, s.titles)

	require.NoError(t, n.Notify(context.Background(), EventOfferHeld, "held", "body"))
	assert.Equal(t, []string{"held"}, s.titles)
}

func TestNotifyEmptyFilterAllowsAll(t *testing.T) {
	s := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{s}, nil, testLogger())

	require.NoError(t, n.Notify(context.Background(), EventOfferDeclined, "declined", "body"))
	assert.Len(t, s.titles, 1)
}

func TestDispatchContinuesPastFailedSender(t *testing.T) {
	broken := &fakeSender{name: "broken", err: errors.New("webhook down")}
	working := &fakeSender{name: "working"}
	n := NewNotifier([]Sender{broken, working}, nil, testLogger())

	err := n.Notify(context.Background(), EventOfferHeld, "title", "body")
	assert.ErrorContains(t, err, "broken")
	assert.Len(t, working.titles, 1)
}

func TestNotifyOffer(t *testing.T) {
	s := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{s}, []string{EventOfferHeld}, testLogger())

	result := &economy.TradeOffer{
		Response:  economy.ResponseHold,
		Partner:   "76561198000000055",
		Narrative: "Our value: 100 Their value: 0",
	}
	require.NoError(t, n.NotifyOffer(context.Background(), "4242", result))

	require.Len(t, s.titles, 1)
	assert.Equal(t, "Offer 4242 from 76561198000000055: hold", s.titles[0])
	assert.Equal(t, result.Narrative, s.messages[0])

	// Accepted offers fall outside the configured filter.
	result.Response = economy.ResponseAccept
	require.NoError(t, n.NotifyOffer(context.Background(), "4243", result))
	assert.Len(t, s.titles, 1)
}

func TestTruncateMarksShortenedMessages(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 100))

	long := strings.Repeat("x", 200)
	got := truncate(long, 50)
	assert.Len(t, got, 50)
	assert.True(t, strings.HasSuffix(got, "[truncated]"))
}

func TestNotifyOfferRejectsNil(t *testing.T) {
	n := NewNotifier(nil, nil, testLogger())
	err := n.NotifyOffer(context.Background(), "1", nil)
	assert.ErrorIs(t, err, economy.ErrInvalidArgument)
}