package repository

import (
	"context"
	"errors"

	"giveaway-bot-backend/internal/features/giveaway/models"
)

var (
	ErrGiveawayNotFound = errors.New("giveaway not found")
	ErrDuplicateID      = errors.New("giveaway id already exists")
)

// Filter selects giveaways by field equality. Nil fields match everything.
type Filter struct {
	Ended *bool
}

// Patch is a shallow merge: every non-nil field fully replaces the stored
// value.
type Patch struct {
	EndsAt        *int64
	Participants  *[]string
	Ended         *bool
	WinnersPicked *[]string
}

// GiveawayRepository is the persistence boundary for giveaways and the
// singleton status panel reference. Every successful mutation is persisted
// synchronously before the call returns, so an immediate read observes it.
// Implementations serialize their own access; they provide no
// compare-and-swap, so multi-step read-modify-write sequences must be
// serialized by the caller.
type GiveawayRepository interface {
	Create(ctx context.Context, giveaway *models.Giveaway) error
	GetByID(ctx context.Context, id string) (*models.Giveaway, error)
	// List returns matching giveaways in insertion order, as a single
	// snapshot read.
	List(ctx context.Context, filter Filter) ([]*models.Giveaway, error)
	Update(ctx context.Context, id string, patch Patch) (*models.Giveaway, error)

	// PanelRef reports the persisted status panel message id, if any.
	PanelRef(ctx context.Context) (string, bool, error)
	SetPanelRef(ctx context.Context, messageID string) error

	// Ping reports whether the backing medium is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Open is a convenience filter for the common "all running giveaways"
// listing.
func Open() Filter {
	ended := false
	return Filter{Ended: &ended}
}
