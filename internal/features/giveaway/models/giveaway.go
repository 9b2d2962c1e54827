package models

import "time"

// GiveawayStatus represents the lifecycle state of a giveaway.
type GiveawayStatus string

const (
	GiveawayStatusOpen   GiveawayStatus = "open"
	GiveawayStatusClosed GiveawayStatus = "closed" // terminal
)

// Giveaway is one running or concluded giveaway. The id is the Discord
// message id of the announcement in practice, but the engine treats it as
// opaque. Timestamps are milliseconds since epoch, matching the stored
// document format.
type Giveaway struct {
	ID            string   `json:"id"`
	MessageID     string   `json:"messageId"`
	ChannelID     string   `json:"channelId"`
	GuildID       string   `json:"guildId"`
	Prize         string   `json:"prize"`
	WinnerCount   int      `json:"winners"`
	CreatedAt     int64    `json:"createdAt"`
	EndsAt        int64    `json:"endsAt"`
	Participants  []string `json:"participants"`
	Ended         bool     `json:"ended"`
	WinnersPicked []string `json:"winnersPicked"`
}

// Status derives the state from the persisted ended flag.
func (g *Giveaway) Status() GiveawayStatus {
	if g.Ended {
		return GiveawayStatusClosed
	}
	return GiveawayStatusOpen
}

// HasEnded reports whether the deadline has passed at the given instant.
// A closed giveaway has always ended regardless of the clock.
func (g *Giveaway) HasEnded(now time.Time) bool {
	return g.Ended || now.UnixMilli() >= g.EndsAt
}

// Remaining returns the time left until the deadline, never negative.
func (g *Giveaway) Remaining(now time.Time) time.Duration {
	d := time.Duration(g.EndsAt-now.UnixMilli()) * time.Millisecond
	if d < 0 {
		return 0
	}
	return d
}

// EndsAtTime converts the stored deadline to a time.Time.
func (g *Giveaway) EndsAtTime() time.Time {
	return time.UnixMilli(g.EndsAt)
}

// IsParticipant reports membership in the entrant set.
func (g *Giveaway) IsParticipant(userID string) bool {
	for _, p := range g.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate freely without aliasing
// the store's in-memory document.
func (g *Giveaway) Clone() *Giveaway {
	cp := *g
	cp.Participants = append([]string(nil), g.Participants...)
	cp.WinnersPicked = append([]string(nil), g.WinnersPicked...)
	return &cp
}
