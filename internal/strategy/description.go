package strategy

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/unusualtrade/hatbot/internal/economy"
)

// SimpleDescription renders the standard listing text: the side, the price,
// and the instant-accept note.
func SimpleDescription() DescriptionFunc {
	return simpleDescription
}

// DescriptionWithSayings renders the simple description with one of the
// given sayings attached, picked at random per call. placeBefore puts the
// saying in front of the description instead of after it.
func DescriptionWithSayings(placeBefore bool, sayings ...string) (DescriptionFunc, error) {
	if len(sayings) == 0 {
		return nil, fmt.Errorf("strategy: description with no sayings: %w", economy.ErrInvalidArgument)
	}
	for _, s := range sayings {
		if s == "" {
			return nil, fmt.Errorf("strategy: empty saying: %w", economy.ErrInvalidArgument)
		}
	}
	return func(l economy.Listing) (string, error) {
		base, err := simpleDescription(l)
		if err != nil {
			return "", err
		}
		saying := sayings[rand.IntN(len(sayings))]
		if placeBefore {
			return saying + " " + base, nil
		}
		return base + " " + saying, nil
	}, nil
}

func simpleDescription(l economy.Listing) (string, error) {
	price, err := l.Price()
	if err != nil {
		return "", fmt.Errorf("strategy: describe %s: %w", l.Item(), err)
	}

	var b strings.Builder
	if _, ok := l.(*economy.SellListing); ok {
		b.WriteString("Selling this hat for ")
	} else {
		b.WriteString("Buying this hat for ")
	}
	if price.Refined == 0 {
		fmt.Fprintf(&b, "%d keys.", price.Keys)
	} else {
		fmt.Fprintf(&b, "%d keys and %d refined.", price.Keys, price.Refined)
	}
	b.WriteString(" Send me an offer, I will accept instantly! Item offers held for manual review.")
	return b.String(), nil
}
