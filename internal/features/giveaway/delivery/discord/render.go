package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/features/giveaway/models"
)

const embedColor = 0x8000ff

func now() time.Time { return time.Now() }

func nowMilli() int64 { return time.Now().UnixMilli() }

func joinCustomID(giveawayID string) string {
	return joinPrefix + giveawayID
}

func joinComponents(giveawayID string, ended bool) []discordgo.MessageComponent {
	label := "Join / Leave"
	style := discordgo.PrimaryButton
	if ended {
		label = "Ended"
		style = discordgo.SecondaryButton
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    label,
					Style:    style,
					Disabled: ended,
					CustomID: joinCustomID(giveawayID),
					Emoji:    &discordgo.ComponentEmoji{Name: "🎉"},
				},
			},
		},
	}
}

func (h *Handler) makeEmbed(g *models.Giveaway, entrants int, ended bool) *discordgo.MessageEmbed {
	footerText := fmt.Sprintf("%s • Click the button to join", h.cfg.Branding.ServerName)
	if ended {
		footerText = fmt.Sprintf("%s • Giveaway ended", h.cfg.Branding.ServerName)
	}
	footer := &discordgo.MessageEmbedFooter{Text: footerText}
	if h.cfg.Branding.LogoURL != "" {
		footer.IconURL = h.cfg.Branding.LogoURL
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Prize", Value: g.Prize, Inline: true},
		{Name: "Winners", Value: fmt.Sprintf("%d", g.WinnerCount), Inline: true},
		{Name: "Entrants", Value: fmt.Sprintf("%d", entrants), Inline: true},
	}
	if !ended {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Ends in",
			Value: models.FormatDelta(g.Remaining(now())),
		})
	}

	return &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("🎉 %s Giveaway", h.cfg.Branding.ServerName),
		Color:     embedColor,
		Fields:    fields,
		Footer:    footer,
		Timestamp: g.EndsAtTime().Format(time.RFC3339),
	}
}

// editAnnouncement rewrites the original giveaway message in place.
func (h *Handler) editAnnouncement(g *models.Giveaway, entrants int, ended bool) {
	components := joinComponents(g.ID, ended)
	embed := h.makeEmbed(g, entrants, ended)
	_, err := h.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         g.MessageID,
		Channel:    g.ChannelID,
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	})
	if err != nil {
		logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Failed to edit giveaway message")
	}
}

func (h *Handler) GiveawayOpened(g *models.Giveaway) {
	h.editAnnouncement(g, len(g.Participants), false)
}

func (h *Handler) GiveawayProgress(g *models.Giveaway, entrants int) {
	h.editAnnouncement(g, entrants, false)
}

func (h *Handler) GiveawayClosed(g *models.Giveaway, winners []string, reroll bool) {
	if !reroll {
		h.editAnnouncement(g, len(g.Participants), true)
	}

	var content string
	switch {
	case len(winners) == 0:
		content = fmt.Sprintf("😕 No valid entries for **%s**.", g.Prize)
	case reroll:
		content = fmt.Sprintf("🔁 **Reroll!** New winners for **%s**: %s", g.Prize, mentions(winners))
	default:
		content = fmt.Sprintf("🎉 **Giveaway ended!** Winners of **%s**: %s\nCongratulations! Contact staff to claim your prize.",
			g.Prize, mentions(winners))
	}

	if _, err := h.session.ChannelMessageSend(g.ChannelID, content); err != nil {
		logger.Error().Err(err).Str("giveaway_id", g.ID).Msg("Failed to announce giveaway result")
	}
}

func mentions(userIDs []string) string {
	out := make([]string, len(userIDs))
	for i, id := range userIDs {
		out[i] = fmt.Sprintf("<@%s>", id)
	}
	return strings.Join(out, ", ")
}
