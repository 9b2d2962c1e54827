package service

import (
	"context"

	"giveaway-bot-backend/internal/features/giveaway/models"
)

// Notifier is the engine's boundary to the presentation layer. The engine
// never formats text or touches rendering primitives; it only reports what
// happened. Implementations must not call back into the engine from inside
// an event.
type Notifier interface {
	// GiveawayOpened fires once when a giveaway is started.
	GiveawayOpened(g *models.Giveaway)
	// GiveawayClosed fires when winners have been drawn and persisted. An
	// empty winner list is a valid outcome (no valid entries). reroll marks
	// draws re-run on an already-closed giveaway.
	GiveawayClosed(g *models.Giveaway, winners []string, reroll bool)
	// GiveawayProgress fires when a running giveaway's entrant count or
	// remaining time should be re-rendered.
	GiveawayProgress(g *models.Giveaway, entrants int)
}

// StartInput carries everything needed to open a giveaway. ID is the
// announcement message id when the Discord layer starts the giveaway; left
// empty, the engine generates one.
type StartInput struct {
	ID          string
	MessageID   string
	ChannelID   string
	GuildID     string
	Prize       string
	WinnerCount int
	Duration    string
}

// GiveawayService owns the giveaway state machine: Open -> Closed, the
// entrant set, the periodic expiry check and the winner draw.
type GiveawayService interface {
	Start(ctx context.Context, input StartInput) (*models.Giveaway, error)
	// ToggleEntry flips membership: an entrant leaves, anyone else joins.
	// The returned bool reports whether the participant is an entrant after
	// the call.
	ToggleEntry(ctx context.Context, giveawayID, participantID string) (bool, error)
	// End closes a giveaway immediately, drawing winners and announcing.
	End(ctx context.Context, giveawayID string) (*models.Giveaway, error)
	// Reroll re-draws winners of a closed giveaway from its full recorded
	// entrant set; previous winners stay eligible.
	Reroll(ctx context.Context, giveawayID string) (*models.Giveaway, error)
	GetByID(ctx context.Context, giveawayID string) (*models.Giveaway, error)
	ListOpen(ctx context.Context) ([]*models.Giveaway, error)
	// Tick closes every open giveaway whose deadline has passed and emits
	// progress for the rest. Per-giveaway failures are isolated.
	Tick(ctx context.Context) error

	SetNotifier(n Notifier)
}
