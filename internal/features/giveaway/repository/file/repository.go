// Package file implements the giveaway repository over a single JSON
// document on disk. The whole document is held in memory and written back
// as a snapshot on every mutation, which preserves read-after-write for the
// single-process access pattern this bot has.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
)

type document struct {
	Giveaways []*models.Giveaway `json:"giveaways"`
	Meta      meta               `json:"meta"`
}

type meta struct {
	StatusMessageID string `json:"statusMessageId"`
}

type fileRepository struct {
	mu   sync.Mutex
	path string
	doc  document
}

// New loads (or creates) the JSON document at path. A corrupt or unreadable
// document resets to an empty collection: availability wins over preserving
// state we cannot parse, and the reset is logged so operators know data was
// dropped.
func New(path string) (repository.GiveawayRepository, error) {
	r := &fileRepository{path: path}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		r.doc = document{Giveaways: []*models.Giveaway{}}
		if err := r.persistLocked(); err != nil {
			return nil, err
		}
	case err != nil:
		logger.Warn().Err(err).Str("path", path).Msg("Store file unreadable, starting empty")
		r.doc = document{Giveaways: []*models.Giveaway{}}
		if err := r.persistLocked(); err != nil {
			return nil, err
		}
	default:
		if jsonErr := json.Unmarshal(data, &r.doc); jsonErr != nil {
			logger.Warn().Err(jsonErr).Str("path", path).Msg("Store file corrupt, starting empty")
			r.doc = document{Giveaways: []*models.Giveaway{}}
			if err := r.persistLocked(); err != nil {
				return nil, err
			}
		}
		if r.doc.Giveaways == nil {
			r.doc.Giveaways = []*models.Giveaway{}
		}
	}

	return r, nil
}

// persistLocked writes the full document snapshot. Caller holds r.mu (or is
// the constructor before the store is shared). The write goes through a
// temp file and rename so a crash mid-write cannot corrupt the document.
func (r *fileRepository) persistLocked() error {
	data, err := json.MarshalIndent(&r.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store document: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

func (r *fileRepository) indexLocked(id string) int {
	for i, g := range r.doc.Giveaways {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func (r *fileRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(giveaway.ID) >= 0 {
		return repository.ErrDuplicateID
	}
	r.doc.Giveaways = append(r.doc.Giveaways, giveaway.Clone())
	return r.persistLocked()
}

func (r *fileRepository) GetByID(ctx context.Context, id string) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return nil, repository.ErrGiveawayNotFound
	}
	return r.doc.Giveaways[i].Clone(), nil
}

func (r *fileRepository) List(ctx context.Context, filter repository.Filter) ([]*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Giveaway, 0, len(r.doc.Giveaways))
	for _, g := range r.doc.Giveaways {
		if filter.Ended != nil && g.Ended != *filter.Ended {
			continue
		}
		out = append(out, g.Clone())
	}
	return out, nil
}

func (r *fileRepository) Update(ctx context.Context, id string, patch repository.Patch) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return nil, repository.ErrGiveawayNotFound
	}

	g := r.doc.Giveaways[i]
	if patch.EndsAt != nil {
		g.EndsAt = *patch.EndsAt
	}
	if patch.Participants != nil {
		g.Participants = append([]string(nil), (*patch.Participants)...)
	}
	if patch.Ended != nil {
		g.Ended = *patch.Ended
	}
	if patch.WinnersPicked != nil {
		g.WinnersPicked = append([]string(nil), (*patch.WinnersPicked)...)
	}

	if err := r.persistLocked(); err != nil {
		return nil, err
	}
	return g.Clone(), nil
}

func (r *fileRepository) PanelRef(ctx context.Context) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc.Meta.StatusMessageID, r.doc.Meta.StatusMessageID != "", nil
}

func (r *fileRepository) SetPanelRef(ctx context.Context, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc.Meta.StatusMessageID = messageID
	return r.persistLocked()
}

func (r *fileRepository) Ping(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := os.Stat(r.path)
	return err
}

func (r *fileRepository) Close() error {
	return nil
}
