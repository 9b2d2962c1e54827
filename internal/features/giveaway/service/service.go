package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "giveaway-bot-backend/internal/common/errors"
	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
	"giveaway-bot-backend/internal/utils/random"
)

type giveawayService struct {
	repo     repository.GiveawayRepository
	notifier Notifier

	// Per-giveaway locks serialize the read-modify-write sequences in
	// ToggleEntry, close and Reroll. The store has no compare-and-swap, and
	// Go dispatches gateway events and scheduler ticks concurrently, so a
	// manual end racing the expiry tick would otherwise double-draw.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGiveawayService(repo repository.GiveawayRepository) GiveawayService {
	return &giveawayService{
		repo:     repo,
		notifier: noopNotifier{},
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *giveawayService) SetNotifier(n Notifier) {
	if n != nil {
		s.notifier = n
	}
}

func (s *giveawayService) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *giveawayService) Start(ctx context.Context, input StartInput) (*models.Giveaway, error) {
	if strings.TrimSpace(input.Prize) == "" {
		return nil, apperrors.New(apperrors.ErrCodeInternal, "prize must not be empty")
	}
	if input.WinnerCount < 1 {
		return nil, apperrors.NewInvalidWinnerCount(input.WinnerCount)
	}

	duration := models.ParseCompactDuration(input.Duration)
	if duration < models.MinDuration {
		return nil, apperrors.NewInvalidDuration(input.Duration)
	}

	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now()
	giveaway := &models.Giveaway{
		ID:            id,
		MessageID:     input.MessageID,
		ChannelID:     input.ChannelID,
		GuildID:       input.GuildID,
		Prize:         input.Prize,
		WinnerCount:   input.WinnerCount,
		CreatedAt:     now.UnixMilli(),
		EndsAt:        now.Add(duration).UnixMilli(),
		Participants:  []string{},
		Ended:         false,
		WinnersPicked: []string{},
	}

	if err := s.repo.Create(ctx, giveaway); err != nil {
		if err == repository.ErrDuplicateID {
			return nil, apperrors.NewDuplicateID(id)
		}
		return nil, apperrors.NewStorageError("create giveaway", err)
	}

	logger.Info().
		Str("giveaway_id", id).
		Str("prize", giveaway.Prize).
		Int("winner_count", giveaway.WinnerCount).
		Dur("duration", duration).
		Msg("Giveaway started")

	s.notifier.GiveawayOpened(giveaway)
	return giveaway, nil
}

func (s *giveawayService) ToggleEntry(ctx context.Context, giveawayID, participantID string) (bool, error) {
	l := s.lockFor(giveawayID)
	l.Lock()
	defer l.Unlock()

	giveaway, err := s.getByID(ctx, giveawayID)
	if err != nil {
		return false, err
	}
	if giveaway.HasEnded(time.Now()) {
		return false, apperrors.NewGiveawayClosed(giveawayID)
	}

	joined := false
	participants := make([]string, 0, len(giveaway.Participants)+1)
	for _, p := range giveaway.Participants {
		if p == participantID {
			continue
		}
		participants = append(participants, p)
	}
	if len(participants) == len(giveaway.Participants) {
		participants = append(participants, participantID)
		joined = true
	}

	updated, err := s.repo.Update(ctx, giveawayID, repository.Patch{Participants: &participants})
	if err != nil {
		return false, apperrors.NewStorageError("update participants", err)
	}

	logger.Debug().
		Str("giveaway_id", giveawayID).
		Str("participant_id", participantID).
		Bool("joined", joined).
		Int("entrants", len(participants)).
		Msg("Entry toggled")

	s.notifier.GiveawayProgress(updated, len(participants))
	return joined, nil
}

func (s *giveawayService) End(ctx context.Context, giveawayID string) (*models.Giveaway, error) {
	return s.close(ctx, giveawayID, true)
}

// close draws winners, marks the giveaway ended and persists the result as
// one logical step. The announce event happens after the persist; a crash
// in between loses at most the announcement.
func (s *giveawayService) close(ctx context.Context, giveawayID string, announce bool) (*models.Giveaway, error) {
	l := s.lockFor(giveawayID)
	l.Lock()
	defer l.Unlock()

	giveaway, err := s.getByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if giveaway.Ended {
		return nil, apperrors.NewGiveawayClosed(giveawayID)
	}

	winners, err := random.Draw(giveaway.Participants, giveaway.WinnerCount)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "winner draw failed")
	}

	ended := true
	updated, err := s.repo.Update(ctx, giveawayID, repository.Patch{
		Ended:         &ended,
		WinnersPicked: &winners,
	})
	if err != nil {
		return nil, apperrors.NewStorageError("close giveaway", err)
	}

	logger.Info().
		Str("giveaway_id", giveawayID).
		Str("prize", updated.Prize).
		Int("entrants", len(updated.Participants)).
		Int("winners", len(winners)).
		Msg("Giveaway closed")

	if announce {
		s.notifier.GiveawayClosed(updated, winners, false)
	}
	return updated, nil
}

func (s *giveawayService) Reroll(ctx context.Context, giveawayID string) (*models.Giveaway, error) {
	l := s.lockFor(giveawayID)
	l.Lock()
	defer l.Unlock()

	giveaway, err := s.getByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if !giveaway.Ended {
		return nil, apperrors.NewStillOpen(giveawayID)
	}

	// A fresh, independent draw from the full recorded entrant set:
	// previous winners remain eligible.
	winners, err := random.Draw(giveaway.Participants, giveaway.WinnerCount)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "winner draw failed")
	}

	updated, err := s.repo.Update(ctx, giveawayID, repository.Patch{WinnersPicked: &winners})
	if err != nil {
		return nil, apperrors.NewStorageError("reroll giveaway", err)
	}

	logger.Info().
		Str("giveaway_id", giveawayID).
		Int("winners", len(winners)).
		Msg("Giveaway rerolled")

	s.notifier.GiveawayClosed(updated, winners, true)
	return updated, nil
}

func (s *giveawayService) GetByID(ctx context.Context, giveawayID string) (*models.Giveaway, error) {
	return s.getByID(ctx, giveawayID)
}

func (s *giveawayService) getByID(ctx context.Context, giveawayID string) (*models.Giveaway, error) {
	giveaway, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		if err == repository.ErrGiveawayNotFound {
			return nil, apperrors.NewNotFound(giveawayID)
		}
		return nil, apperrors.NewStorageError("get giveaway", err)
	}
	return giveaway, nil
}

func (s *giveawayService) ListOpen(ctx context.Context) ([]*models.Giveaway, error) {
	giveaways, err := s.repo.List(ctx, repository.Open())
	if err != nil {
		return nil, apperrors.NewStorageError("list giveaways", err)
	}
	return giveaways, nil
}

func (s *giveawayService) Tick(ctx context.Context) error {
	giveaways, err := s.ListOpen(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, g := range giveaways {
		if g.HasEnded(now) {
			if _, err := s.close(ctx, g.ID, true); err != nil {
				// Already closed means a manual end won the race; anything
				// else is logged and retried naturally on the next tick.
				if !apperrors.HasCode(err, apperrors.ErrCodeGiveawayClosed) {
					logger.Error().Err(err).Str("giveaway_id", g.ID).Msg("Failed to close expired giveaway")
				}
			}
			continue
		}
		s.notifier.GiveawayProgress(g, len(g.Participants))
	}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) GiveawayOpened(*models.Giveaway)                 {}
func (noopNotifier) GiveawayClosed(*models.Giveaway, []string, bool) {}
func (noopNotifier) GiveawayProgress(*models.Giveaway, int)          {}
