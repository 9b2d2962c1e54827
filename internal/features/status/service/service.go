// Package service maintains the live status panel: a single embed in a
// configured channel, edited in place on every refresh with uptime,
// gateway latency and the open giveaway count. The panel message id is
// persisted so restarts keep editing the same message.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"giveaway-bot-backend/internal/common/config"
	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
)

// RefreshInterval is how often the panel is re-rendered.
const RefreshInterval = time.Second

const panelColor = 0x8000ff

type StatusService struct {
	session   *discordgo.Session
	repo      repository.GiveawayRepository
	cfg       *config.Config
	startedAt time.Time
}

func NewStatusService(session *discordgo.Session, repo repository.GiveawayRepository, cfg *config.Config) *StatusService {
	return &StatusService{
		session:   session,
		repo:      repo,
		cfg:       cfg,
		startedAt: time.Now(),
	}
}

// Refresh renders the panel once, creating the message on first use and
// recreating it if the stored one was deleted.
func (s *StatusService) Refresh(ctx context.Context) error {
	channelID := s.cfg.Discord.StatusChannelID
	if channelID == "" {
		return nil
	}

	embed, err := s.makeEmbed(ctx)
	if err != nil {
		return err
	}

	messageID, ok, err := s.repo.PanelRef(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return s.create(ctx, channelID, embed)
	}

	if _, err := s.session.ChannelMessageEditEmbed(channelID, messageID, embed); err != nil {
		// The panel message was likely deleted by hand; start a new one.
		logger.Warn().Err(err).Str("message_id", messageID).Msg("Status panel edit failed, recreating")
		return s.create(ctx, channelID, embed)
	}
	return nil
}

func (s *StatusService) create(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	msg, err := s.session.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		return err
	}
	if err := s.repo.SetPanelRef(ctx, msg.ID); err != nil {
		return err
	}
	logger.Info().Str("message_id", msg.ID).Msg("Status panel created")
	return nil
}

func (s *StatusService) makeEmbed(ctx context.Context) (*discordgo.MessageEmbed, error) {
	open, err := s.repo.List(ctx, repository.Open())
	if err != nil {
		return nil, err
	}

	latency := s.session.HeartbeatLatency().Round(time.Millisecond)
	return &discordgo.MessageEmbed{
		Title: "🤖 Bot Status",
		Color: panelColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Uptime", Value: models.FormatDelta(time.Since(s.startedAt)), Inline: true},
			{Name: "Latency", Value: latency.String(), Inline: true},
			{Name: "Active giveaways", Value: fmt.Sprintf("%d", len(open)), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: s.cfg.Branding.ServerName},
		Timestamp: time.Now().Format(time.RFC3339),
	}, nil
}
