package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
)

func newTestRepo(t *testing.T) (repository.GiveawayRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return New(client), mr
}

func sampleGiveaway(id string) *models.Giveaway {
	return &models.Giveaway{
		ID:            id,
		MessageID:     id,
		ChannelID:     "chan-1",
		GuildID:       "guild-1",
		Prize:         "Nitro",
		WinnerCount:   2,
		CreatedAt:     1000,
		EndsAt:        2000,
		Participants:  []string{},
		WinnersPicked: []string{},
	}
}

func TestCreateAndGet(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleGiveaway("g1")))

	got, err := repo.GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Nitro", got.Prize)
	assert.Equal(t, 2, got.WinnerCount)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrGiveawayNotFound)
}

func TestCreate_DuplicateID(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleGiveaway("g1")))
	assert.ErrorIs(t, repo.Create(ctx, sampleGiveaway("g1")), repository.ErrDuplicateID)
}

func TestList_InsertionOrderAndFilter(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	ended := sampleGiveaway("g2")
	ended.Ended = true
	require.NoError(t, repo.Create(ctx, sampleGiveaway("g1")))
	require.NoError(t, repo.Create(ctx, ended))
	require.NoError(t, repo.Create(ctx, sampleGiveaway("g3")))

	all, err := repo.List(ctx, repository.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "g1", all[0].ID)
	assert.Equal(t, "g2", all[1].ID)
	assert.Equal(t, "g3", all[2].ID)

	open, err := repo.List(ctx, repository.Open())
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "g1", open[0].ID)
	assert.Equal(t, "g3", open[1].ID)
}

func TestList_SkipsDanglingIDs(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleGiveaway("g1")))
	require.NoError(t, repo.Create(ctx, sampleGiveaway("g2")))
	mr.Del(makeGiveawayKey("g1"))

	all, err := repo.List(ctx, repository.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "g2", all[0].ID)
}

func TestUpdate_PatchSemantics(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleGiveaway("g1")))

	participants := []string{"u1", "u2", "u3"}
	updated, err := repo.Update(ctx, "g1", repository.Patch{Participants: &participants})
	require.NoError(t, err)
	assert.Equal(t, participants, updated.Participants)
	assert.Equal(t, "Nitro", updated.Prize)

	endedFlag := true
	winners := []string{"u1", "u3"}
	updated, err = repo.Update(ctx, "g1", repository.Patch{Ended: &endedFlag, WinnersPicked: &winners})
	require.NoError(t, err)
	assert.True(t, updated.Ended)
	assert.Equal(t, winners, updated.WinnersPicked)
	assert.Equal(t, participants, updated.Participants)

	got, err := repo.GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, got.Ended)

	_, err = repo.Update(ctx, "missing", repository.Patch{Ended: &endedFlag})
	assert.ErrorIs(t, err, repository.ErrGiveawayNotFound)
}

func TestPanelRef(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, ok, err := repo.PanelRef(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetPanelRef(ctx, "panel-1"))

	ref, ok, err := repo.PanelRef(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "panel-1", ref)
}

func TestPing(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Ping(ctx))

	mr.Close()
	assert.Error(t, repo.Ping(ctx))
}
