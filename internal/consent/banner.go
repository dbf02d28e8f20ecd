package consent

import (
	"context"
	"time"
)

const (
	// AcceptedKey is the preference a visitor sets by accepting cookies.
	AcceptedKey = "cookiesAccepted"

	DefaultShowDelay = time.Second
)

// Banner decides whether the cookie consent banner is shown to a visitor.
type Banner struct {
	store Store
	delay time.Duration
	ttl   time.Duration
}

func NewBanner(store Store, delay, ttl time.Duration) *Banner {
	if delay <= 0 {
		delay = DefaultShowDelay
	}
	return &Banner{store: store, delay: delay, ttl: ttl}
}

// ShowDelay is how long the page waits before showing the banner.
func (b *Banner) ShowDelay() time.Duration {
	return b.delay
}

func (b *Banner) Accepted(ctx context.Context, visitor string) (bool, error) {
	value, ok, err := b.store.Get(ctx, key(visitor))
	if err != nil {
		return false, err
	}
	return ok && value == "true", nil
}

// ShouldShow is true until the visitor accepts.
func (b *Banner) ShouldShow(ctx context.Context, visitor string) (bool, error) {
	accepted, err := b.Accepted(ctx, visitor)
	if err != nil {
		return false, err
	}
	return !accepted, nil
}

func (b *Banner) Accept(ctx context.Context, visitor string) error {
	return b.store.Set(ctx, key(visitor), "true", b.ttl)
}

func key(visitor string) string {
	return visitor + ":" + AcceptedKey
}
