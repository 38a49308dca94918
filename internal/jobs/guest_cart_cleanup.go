package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// GuestCartPurger deletes guest carts idle for longer than ttl.
type GuestCartPurger interface {
	PurgeGuestCarts(ctx context.Context, ttl time.Duration) (int64, error)
}

// GuestCartCleanup removes abandoned guest carts.
type GuestCartCleanup struct {
	carts   GuestCartPurger
	spec    string
	ttl     time.Duration
	timeout time.Duration
}

func NewGuestCartCleanup(carts GuestCartPurger, spec string, ttl time.Duration) *GuestCartCleanup {
	return &GuestCartCleanup{carts: carts, spec: spec, ttl: ttl, timeout: time.Minute}
}

func (j *GuestCartCleanup) Name() string { return "guest-cart-cleanup" }

func (j *GuestCartCleanup) Spec() string { return j.spec }

// Run runs one cleanup pass.
func (j *GuestCartCleanup) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.carts.PurgeGuestCarts(ctx, j.ttl)
	if err != nil {
		log.Error().Err(err).Str("job", j.Name()).Msg("guest cart cleanup failed")
		return
	}
	log.Info().Str("job", j.Name()).Int64("deleted", n).Dur("ttl", j.ttl).Msg("guest cart cleanup finished")
}
