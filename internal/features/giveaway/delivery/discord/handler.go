// Package discord is the presentation layer: slash commands, the join
// button and the rendered embeds. It sits on the engine's notifier
// boundary; the engine never touches rendering, this package never decides
// lifecycle.
package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"giveaway-bot-backend/internal/common/config"
	apperrors "giveaway-bot-backend/internal/common/errors"
	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/service"
)

const joinPrefix = "gw_join_"

type Handler struct {
	session *discordgo.Session
	svc     service.GiveawayService
	cfg     *config.Config
}

func NewHandler(session *discordgo.Session, svc service.GiveawayService, cfg *config.Config) *Handler {
	return &Handler{session: session, svc: svc, cfg: cfg}
}

// Register attaches the gateway handlers. Call before Session.Open.
func (h *Handler) Register() {
	h.session.AddHandler(h.onReady)
	h.session.AddHandler(h.onInteractionCreate)
	h.session.AddHandler(func(s *discordgo.Session, _ *discordgo.GuildCreate) { h.setPresence(s) })
	h.session.AddHandler(func(s *discordgo.Session, _ *discordgo.GuildDelete) { h.setPresence(s) })
}

func commands() []*discordgo.ApplicationCommand {
	minWinners := 1.0
	return []*discordgo.ApplicationCommand{
		{
			Name:        "gstart",
			Description: "Start a giveaway",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "duration",
					Description: "e.g., 1h30m, 45m, 2d",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "prize",
					Description: "Prize name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "winners",
					Description: "Number of winners (default 1)",
					MinValue:    &minWinners,
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel to post the giveaway",
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
					},
				},
			},
		},
		{
			Name:        "gend",
			Description: "End a giveaway early",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message_id",
					Description: "Giveaway message ID",
					Required:    true,
				},
			},
		},
		{
			Name:        "greroll",
			Description: "Reroll the winners of a giveaway",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message_id",
					Description: "Giveaway message ID",
					Required:    true,
				},
			},
		},
		{
			Name:        "glist",
			Description: "Show all active giveaways",
		},
	}
}

func (h *Handler) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	for _, cmd := range commands() {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, h.cfg.Discord.GuildID, cmd); err != nil {
			logger.Error().Err(err).Str("command", cmd.Name).Msg("Failed to register command")
		}
	}
	h.setPresence(s)
	logger.Info().Str("user", s.State.User.Username).Msg("Bot is ready")
}

func (h *Handler) setPresence(s *discordgo.Session) {
	name := h.cfg.Branding.ServerName
	if len(s.State.Guilds) > 0 && s.State.Guilds[0].Name != "" {
		name = s.State.Guilds[0].Name
	}
	if err := s.UpdateWatchStatus(0, name); err != nil {
		logger.Warn().Err(err).Msg("Failed to set presence")
	}
}

func (h *Handler) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "gstart":
			h.handleStart(s, i)
		case "gend":
			h.handleEnd(s, i)
		case "greroll":
			h.handleReroll(s, i)
		case "glist":
			h.handleList(s, i)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if strings.HasPrefix(customID, joinPrefix) {
			h.handleJoinButton(s, i, strings.TrimPrefix(customID, joinPrefix))
		}
	}
}

func (h *Handler) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	options := i.ApplicationCommandData().Options
	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		optionMap[opt.Name] = opt
	}

	durStr := optionMap["duration"].StringValue()
	prize := optionMap["prize"].StringValue()
	winners := 1
	if opt, ok := optionMap["winners"]; ok {
		winners = int(opt.IntValue())
	}

	channelID := i.ChannelID
	if h.cfg.Discord.DefaultChannelID != "" {
		channelID = h.cfg.Discord.DefaultChannelID
	}
	if opt, ok := optionMap["channel"]; ok {
		channelID = opt.ChannelValue(nil).ID
	}

	duration := models.ParseCompactDuration(durStr)
	if duration < models.MinDuration {
		replyEphemeral(s, i, "Invalid duration (e.g., 45m, 1h30m, 2d).")
		return
	}

	// Post the announcement first: its message id becomes the giveaway id.
	preview := &models.Giveaway{
		Prize:       prize,
		WinnerCount: winners,
		EndsAt:      nowMilli() + duration.Milliseconds(),
	}
	msg, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embed:      h.makeEmbed(preview, 0, false),
		Components: joinComponents("pending", false),
	})
	if err != nil {
		logger.Error().Err(err).Str("channel_id", channelID).Msg("Failed to post giveaway message")
		replyEphemeral(s, i, "Could not post the giveaway in that channel.")
		return
	}

	_, err = h.svc.Start(ctx, service.StartInput{
		ID:          msg.ID,
		MessageID:   msg.ID,
		ChannelID:   channelID,
		GuildID:     i.GuildID,
		Prize:       prize,
		WinnerCount: winners,
		Duration:    durStr,
	})
	if err != nil {
		replyEphemeral(s, i, userMessage(err))
		if delErr := s.ChannelMessageDelete(channelID, msg.ID); delErr != nil {
			logger.Warn().Err(delErr).Msg("Failed to remove orphaned giveaway message")
		}
		return
	}

	// Re-point the button at the real id.
	components := joinComponents(msg.ID, false)
	if _, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         msg.ID,
		Channel:    channelID,
		Components: &components,
	}); err != nil {
		logger.Warn().Err(err).Str("giveaway_id", msg.ID).Msg("Failed to update join button")
	}

	replyEphemeral(s, i, fmt.Sprintf("Giveaway started in <#%s> for **%s**. Ends in **%s**.",
		channelID, prize, models.FormatDelta(duration)))
}

func (h *Handler) handleEnd(s *discordgo.Session, i *discordgo.InteractionCreate) {
	id := i.ApplicationCommandData().Options[0].StringValue()
	if _, err := h.svc.End(context.Background(), id); err != nil {
		replyEphemeral(s, i, userMessage(err))
		return
	}
	replyEphemeral(s, i, "Giveaway ended.")
}

func (h *Handler) handleReroll(s *discordgo.Session, i *discordgo.InteractionCreate) {
	id := i.ApplicationCommandData().Options[0].StringValue()
	if _, err := h.svc.Reroll(context.Background(), id); err != nil {
		replyEphemeral(s, i, userMessage(err))
		return
	}
	replyEphemeral(s, i, "Reroll complete.")
}

func (h *Handler) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	giveaways, err := h.svc.ListOpen(context.Background())
	if err != nil {
		replyEphemeral(s, i, userMessage(err))
		return
	}
	if len(giveaways) == 0 {
		replyEphemeral(s, i, "No active giveaways.")
		return
	}

	lines := make([]string, 0, len(giveaways))
	for _, g := range giveaways {
		lines = append(lines, fmt.Sprintf("• **%s** — ends in `%s` (<#%s>)",
			g.Prize, models.FormatDelta(g.Remaining(now())), g.ChannelID))
	}
	replyEphemeral(s, i, strings.Join(lines, "\n"))
}

func (h *Handler) handleJoinButton(s *discordgo.Session, i *discordgo.InteractionCreate, giveawayID string) {
	userID := interactionUserID(i)
	joined, err := h.svc.ToggleEntry(context.Background(), giveawayID, userID)
	if err != nil {
		replyEphemeral(s, i, userMessage(err))
		return
	}
	if joined {
		replyEphemeral(s, i, "🎉 You **joined** the giveaway! Good luck! 🎉")
	} else {
		replyEphemeral(s, i, "You **left** the giveaway.")
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// userMessage maps engine errors to the reply a member sees.
func userMessage(err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeNotFound:
		return "Giveaway not found."
	case apperrors.ErrCodeGiveawayClosed:
		return "This giveaway has ended."
	case apperrors.ErrCodeStillOpen:
		return "Giveaway is still active."
	case apperrors.ErrCodeInvalidDuration:
		return "Invalid duration (e.g., 45m, 1h30m, 2d)."
	case apperrors.ErrCodeInvalidWinnerCount:
		return "Winner count must be at least 1."
	default:
		logger.Error().Err(err).Msg("Command failed")
		return "Something went wrong, try again later."
	}
}

func replyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to respond to interaction")
	}
}
