// Package discord is the chat-facing edge of taxbox: slash commands in,
// embeds out. It owns the disgo client and implements the role directory
// and notifier contracts on top of the Discord REST API. The accounting
// engine never sees any of this.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"

	"github.com/evanesaias-afk/taxbox/internal/config"
	"github.com/evanesaias-afk/taxbox/internal/ledger"
)

// Gateway connects the ledger service to a Discord guild.
type Gateway struct {
	client   bot.Client
	svc      *ledger.Service
	cfg      config.Config
	guildID  snowflake.ID
	handlers map[string]func(e *events.ApplicationCommandInteractionCreate)
	commands []discord.ApplicationCommandCreate
	log      *slog.Logger
}

// New creates the gateway and its disgo client. The client is not connected
// until Run is called.
func New(token string, svc *ledger.Service, cfg config.Config, log *slog.Logger) (*Gateway, error) {
	if log == nil {
		log = slog.Default()
	}
	guildID, err := snowflake.Parse(cfg.Discord.GuildID)
	if err != nil {
		return nil, fmt.Errorf("discord.guild_id %q: %w", cfg.Discord.GuildID, err)
	}

	g := &Gateway{
		svc:      svc,
		cfg:      cfg,
		guildID:  guildID,
		handlers: make(map[string]func(e *events.ApplicationCommandInteractionCreate)),
		log:      log.With(slog.String("component", "discord")),
	}
	g.registerCommands()

	client, err := disgo.New(token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(gateway.IntentGuilds),
		),
		bot.WithEventListenerFunc(g.onCommand),
	)
	if err != nil {
		return nil, fmt.Errorf("creating discord client: %w", err)
	}
	g.client = *client
	return g, nil
}

// Client exposes the underlying bot client for the role directory and
// notifier adapters.
func (g *Gateway) Client() bot.Client { return g.client }

// GuildID returns the guild this gateway is bound to.
func (g *Gateway) GuildID() snowflake.ID { return g.guildID }

// Run registers the slash commands on the guild, opens the gateway, and
// blocks until ctx ends.
func (g *Gateway) Run(ctx context.Context) error {
	if _, err := g.client.Rest.SetGuildCommands(g.client.ApplicationID, g.guildID, g.commands); err != nil {
		return fmt.Errorf("registering commands: %w", err)
	}
	if err := g.client.OpenGateway(ctx); err != nil {
		return fmt.Errorf("opening gateway: %w", err)
	}
	g.log.Info("connected", slog.String("guild", g.guildID.String()))

	<-ctx.Done()
	g.client.Close(context.Background())
	return nil
}

// register wires one command definition to its handler. Dispatch is purely
// by name — no handler ever inspects another command's payload.
func (g *Gateway) register(cmd discord.SlashCommandCreate, handler func(e *events.ApplicationCommandInteractionCreate)) {
	g.commands = append(g.commands, cmd)
	g.handlers[cmd.CommandName()] = handler
}

func (g *Gateway) onCommand(e *events.ApplicationCommandInteractionCreate) {
	handler, ok := g.handlers[e.Data.CommandName()]
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("handler panic", slog.String("command", e.Data.CommandName()), slog.Any("panic", r))
		}
	}()
	handler(e)
}

// ─── Permission Checks ──────────────────────────────────────────────────────

func (g *Gateway) memberHasRole(e *events.ApplicationCommandInteractionCreate, roleID string) bool {
	member := e.Member()
	if member == nil || roleID == "" {
		return false
	}
	want, err := snowflake.Parse(roleID)
	if err != nil {
		return false
	}
	for _, id := range member.RoleIDs {
		if id == want {
			return true
		}
	}
	return false
}

func (g *Gateway) isAdmin(e *events.ApplicationCommandInteractionCreate) bool {
	return g.memberHasRole(e, g.cfg.Discord.AdminRoleID)
}

func (g *Gateway) isSeller(e *events.ApplicationCommandInteractionCreate) bool {
	return g.memberHasRole(e, g.cfg.Discord.SellerRoleID)
}
