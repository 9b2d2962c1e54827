package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "giveaway-bot-backend/internal/common/errors"
	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
	filerepo "giveaway-bot-backend/internal/features/giveaway/repository/file"
)

type closedEvent struct {
	giveawayID string
	winners    []string
	reroll     bool
}

// recorder captures notifier events for assertions.
type recorder struct {
	mu       sync.Mutex
	opened   []string
	closed   []closedEvent
	progress []string
}

func (r *recorder) GiveawayOpened(g *models.Giveaway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, g.ID)
}

func (r *recorder) GiveawayClosed(g *models.Giveaway, winners []string, reroll bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, closedEvent{giveawayID: g.ID, winners: winners, reroll: reroll})
}

func (r *recorder) GiveawayProgress(g *models.Giveaway, entrants int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, g.ID)
}

func (r *recorder) closedEvents() []closedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]closedEvent(nil), r.closed...)
}

func newTestService(t *testing.T) (GiveawayService, repository.GiveawayRepository, *recorder) {
	t.Helper()
	repo, err := filerepo.New(filepath.Join(t.TempDir(), "giveaways.json"))
	require.NoError(t, err)
	svc := NewGiveawayService(repo)
	rec := &recorder{}
	svc.SetNotifier(rec)
	return svc, repo, rec
}

func startGiveaway(t *testing.T, svc GiveawayService, id string, winners int) *models.Giveaway {
	t.Helper()
	g, err := svc.Start(context.Background(), StartInput{
		ID:          id,
		MessageID:   id,
		ChannelID:   "chan-1",
		GuildID:     "guild-1",
		Prize:       "Nitro",
		WinnerCount: winners,
		Duration:    "1h",
	})
	require.NoError(t, err)
	return g
}

func TestStart(t *testing.T) {
	svc, _, rec := newTestService(t)

	before := time.Now().UnixMilli()
	g := startGiveaway(t, svc, "g1", 2)

	assert.Equal(t, "g1", g.ID)
	assert.Equal(t, "Nitro", g.Prize)
	assert.Equal(t, 2, g.WinnerCount)
	assert.False(t, g.Ended)
	assert.Empty(t, g.Participants)
	assert.GreaterOrEqual(t, g.CreatedAt, before)
	assert.InDelta(t, g.CreatedAt+time.Hour.Milliseconds(), g.EndsAt, 1000)

	assert.Equal(t, []string{"g1"}, rec.opened)
}

func TestStart_GeneratesIDWhenEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	g, err := svc.Start(context.Background(), StartInput{
		Prize:       "Nitro",
		WinnerCount: 1,
		Duration:    "10m",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
}

func TestStart_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, StartInput{Prize: "Nitro", WinnerCount: 1, Duration: "3s"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidDuration))

	_, err = svc.Start(ctx, StartInput{Prize: "Nitro", WinnerCount: 1, Duration: "whenever"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidDuration))

	_, err = svc.Start(ctx, StartInput{Prize: "Nitro", WinnerCount: 0, Duration: "1h"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidWinnerCount))

	_, err = svc.Start(ctx, StartInput{Prize: "  ", WinnerCount: 1, Duration: "1h"})
	assert.Error(t, err)
}

func TestStart_DuplicateID(t *testing.T) {
	svc, _, _ := newTestService(t)
	startGiveaway(t, svc, "g1", 1)

	_, err := svc.Start(context.Background(), StartInput{
		ID: "g1", Prize: "Nitro", WinnerCount: 1, Duration: "1h",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDuplicateID))
}

func TestToggleEntry(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	startGiveaway(t, svc, "g1", 1)

	joined, err := svc.ToggleEntry(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.True(t, joined)

	g, err := svc.GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, g.Participants)

	// Second press removes the entry.
	joined, err = svc.ToggleEntry(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.False(t, joined)

	g, err = svc.GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, g.Participants)

	// Joining again after a leave works.
	joined, err = svc.ToggleEntry(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.True(t, joined)
}

func TestToggleEntry_Errors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ToggleEntry(ctx, "missing", "u1")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	startGiveaway(t, svc, "g1", 1)
	_, err = svc.End(ctx, "g1")
	require.NoError(t, err)

	_, err = svc.ToggleEntry(ctx, "g1", "u1")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeGiveawayClosed))
}

func TestEnd_DrawsWinners(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()
	startGiveaway(t, svc, "g1", 2)

	for _, u := range []string{"u1", "u2", "u3"} {
		_, err := svc.ToggleEntry(ctx, "g1", u)
		require.NoError(t, err)
	}

	g, err := svc.End(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, g.Ended)
	require.Len(t, g.WinnersPicked, 2)
	for _, w := range g.WinnersPicked {
		assert.Contains(t, []string{"u1", "u2", "u3"}, w)
	}
	assert.NotEqual(t, g.WinnersPicked[0], g.WinnersPicked[1])

	events := rec.closedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "g1", events[0].giveawayID)
	assert.False(t, events[0].reroll)
}

func TestEnd_IsTerminal(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	startGiveaway(t, svc, "g1", 1)

	_, err := svc.End(ctx, "g1")
	require.NoError(t, err)

	_, err = svc.End(ctx, "g1")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeGiveawayClosed))
}

func TestEnd_ClampsWinnerCount(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	startGiveaway(t, svc, "g1", 5)

	_, err := svc.ToggleEntry(ctx, "g1", "u1")
	require.NoError(t, err)

	g, err := svc.End(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, g.WinnersPicked)
}

func TestEnd_NoEntrants(t *testing.T) {
	svc, _, rec := newTestService(t)
	startGiveaway(t, svc, "g1", 1)

	g, err := svc.End(context.Background(), "g1")
	require.NoError(t, err)
	assert.True(t, g.Ended)
	assert.Empty(t, g.WinnersPicked)

	events := rec.closedEvents()
	require.Len(t, events, 1)
	assert.Empty(t, events[0].winners)
}

func TestReroll(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()
	startGiveaway(t, svc, "g1", 1)

	// Open giveaways cannot be rerolled.
	_, err := svc.Reroll(ctx, "g1")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeStillOpen))

	for _, u := range []string{"u1", "u2", "u3"} {
		_, err := svc.ToggleEntry(ctx, "g1", u)
		require.NoError(t, err)
	}
	_, err = svc.End(ctx, "g1")
	require.NoError(t, err)

	g, err := svc.Reroll(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, g.WinnersPicked, 1)
	assert.Contains(t, []string{"u1", "u2", "u3"}, g.WinnersPicked[0])
	// Only winnersPicked changes; the closure and entrant set are untouched.
	assert.True(t, g.Ended)
	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, g.Participants)

	events := rec.closedEvents()
	require.Len(t, events, 2)
	assert.True(t, events[1].reroll)
}

func TestReroll_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Reroll(context.Background(), "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestListOpen(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	startGiveaway(t, svc, "g1", 1)
	startGiveaway(t, svc, "g2", 1)
	_, err := svc.End(ctx, "g1")
	require.NoError(t, err)

	open, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "g2", open[0].ID)
}

func TestTick_ClosesExpired(t *testing.T) {
	svc, repo, rec := newTestService(t)
	ctx := context.Background()

	// Seeded directly so the deadline is already in the past.
	expired := &models.Giveaway{
		ID:            "expired",
		MessageID:     "expired",
		ChannelID:     "chan-1",
		Prize:         "Nitro",
		WinnerCount:   2,
		CreatedAt:     time.Now().Add(-time.Hour).UnixMilli(),
		EndsAt:        time.Now().Add(-time.Minute).UnixMilli(),
		Participants:  []string{"u1", "u2", "u3"},
		WinnersPicked: []string{},
	}
	require.NoError(t, repo.Create(ctx, expired))
	startGiveaway(t, svc, "running", 1)

	require.NoError(t, svc.Tick(ctx))

	g, err := svc.GetByID(ctx, "expired")
	require.NoError(t, err)
	assert.True(t, g.Ended)
	assert.Len(t, g.WinnersPicked, 2)

	running, err := svc.GetByID(ctx, "running")
	require.NoError(t, err)
	assert.False(t, running.Ended)

	events := rec.closedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "expired", events[0].giveawayID)
	assert.ElementsMatch(t, g.WinnersPicked, events[0].winners)

	// The still-running giveaway got a countdown refresh instead.
	assert.Contains(t, rec.progress, "running")
}

func TestTick_IdempotentAfterClose(t *testing.T) {
	svc, repo, rec := newTestService(t)
	ctx := context.Background()

	expired := &models.Giveaway{
		ID:            "expired",
		Prize:         "Nitro",
		WinnerCount:   1,
		EndsAt:        time.Now().Add(-time.Minute).UnixMilli(),
		Participants:  []string{"u1"},
		WinnersPicked: []string{},
	}
	require.NoError(t, repo.Create(ctx, expired))

	require.NoError(t, svc.Tick(ctx))
	require.NoError(t, svc.Tick(ctx))

	assert.Len(t, rec.closedEvents(), 1)
}

func TestConcurrentToggles(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	startGiveaway(t, svc, "g1", 1)

	var wg sync.WaitGroup
	users := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8"}
	for _, u := range users {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, err := svc.ToggleEntry(ctx, "g1", u)
			assert.NoError(t, err)
		}(u)
	}
	wg.Wait()

	g, err := svc.GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.ElementsMatch(t, users, g.Participants)
}
