package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"

	"github.com/evanesaias-afk/taxbox/internal/domain"
)

const (
	colorSuccess = 0x00AE86
	colorInfo    = 0x5865F2
	colorWarning = 0xFF0000

	footerText = "taxbox"
)

const handlerTimeout = 10 * time.Second

// registerCommands defines every slash command and its handler.
func (g *Gateway) registerCommands() {
	g.register(discord.SlashCommandCreate{
		Name:        "earn",
		Description: "Log a customer purchase and track seller tax",
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{Name: "customer", Description: "The customer", Required: true},
			discord.ApplicationCommandOptionUser{Name: "seller", Description: "The seller", Required: true},
			discord.ApplicationCommandOptionInt{Name: "amount", Description: "Coins spent", Required: true},
		},
	}, g.handleEarn)

	g.register(discord.SlashCommandCreate{
		Name:        "checkspend",
		Description: "Check how much a customer has spent",
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{Name: "customer", Description: "The customer", Required: true},
		},
	}, g.handleCheckSpend)

	g.register(discord.SlashCommandCreate{
		Name:        "checktax",
		Description: "Check pending tax owed by a seller",
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{Name: "seller", Description: "The seller", Required: true},
		},
	}, g.handleCheckTax)

	g.register(discord.SlashCommandCreate{
		Name:        "settletax",
		Description: "Clear a seller's tax after payment proof (admins only)",
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{Name: "seller", Description: "The seller", Required: true},
		},
	}, g.handleSettleTax)

	g.register(discord.SlashCommandCreate{
		Name:        "taxsummary",
		Description: "List all sellers owing tax (admins only)",
	}, g.handleTaxSummary)

	g.register(discord.SlashCommandCreate{
		Name:        "remind",
		Description: "Send a one-off tax reminder to a seller",
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{Name: "seller", Description: "The seller", Required: true},
		},
	}, g.handleRemind)
}

// ─── Handlers ───────────────────────────────────────────────────────────────

func (g *Gateway) handleEarn(e *events.ApplicationCommandInteractionCreate) {
	if !g.isSeller(e) && !g.isAdmin(e) {
		g.replyText(e, "Only sellers can log purchases.", true)
		return
	}

	data := e.SlashCommandInteractionData()
	customerID := data.Snowflake("customer").String()
	sellerID := data.Snowflake("seller").String()
	amount := int64(data.Int("amount"))

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	_, res, err := g.svc.RecordTransaction(ctx, customerID, sellerID, amount)
	if errors.Is(err, domain.ErrInvalidAmount) {
		g.replyText(e, "Amount must be a positive number of coins.", true)
		return
	}
	if err != nil {
		g.replyError(e, "recording transaction", err)
		return
	}

	g.replyEmbed(e, discord.Embed{
		Title: "Transaction Logged",
		Color: colorSuccess,
		Description: fmt.Sprintf(
			"**Customer:** <@%s>\n**Seller:** <@%s>\n**Amount:** `%d`\n**Tax Added:** `%d`\n**Seller Net:** `%d`\n**Customer Total Spent:** `%d`",
			customerID, sellerID, amount, res.Tax, res.Net, res.CustomerTotalSpent,
		),
	})
}

func (g *Gateway) handleCheckSpend(e *events.ApplicationCommandInteractionCreate) {
	customerID := e.SlashCommandInteractionData().Snowflake("customer").String()

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	spent, err := g.svc.TotalSpent(ctx, customerID)
	if err != nil {
		g.replyError(e, "reading ledger", err)
		return
	}
	g.replyText(e, fmt.Sprintf("<@%s> has spent **%d** coins.", customerID, spent), false)
}

func (g *Gateway) handleCheckTax(e *events.ApplicationCommandInteractionCreate) {
	sellerID := e.SlashCommandInteractionData().Snowflake("seller").String()

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	owed, err := g.svc.PendingTax(ctx, sellerID)
	if err != nil {
		g.replyError(e, "reading ledger", err)
		return
	}
	g.replyText(e, fmt.Sprintf("<@%s> currently owes **%d** coins in taxes.", sellerID, owed), false)
}

func (g *Gateway) handleSettleTax(e *events.ApplicationCommandInteractionCreate) {
	if !g.isAdmin(e) {
		g.replyText(e, "Only admins can settle tax.", true)
		return
	}
	sellerID := e.SlashCommandInteractionData().Snowflake("seller").String()

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	settled, err := g.svc.SettleTax(ctx, sellerID)
	if err != nil {
		g.replyError(e, "settling tax", err)
		return
	}
	if !settled {
		g.replyText(e, fmt.Sprintf("<@%s> has no outstanding tax.", sellerID), true)
		return
	}
	g.replyEmbed(e, discord.Embed{
		Title:       "Tax Settled",
		Color:       colorSuccess,
		Description: fmt.Sprintf("<@%s> is paid up. Seller role restored.", sellerID),
	})
}

func (g *Gateway) handleTaxSummary(e *events.ApplicationCommandInteractionCreate) {
	if !g.isAdmin(e) {
		g.replyText(e, "Only admins can view the tax summary.", true)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	rows, err := g.svc.Outstanding(ctx)
	if err != nil {
		g.replyError(e, "reading ledger", err)
		return
	}
	if len(rows) == 0 {
		g.replyText(e, "No sellers owe tax. 🎉", false)
		return
	}

	var b strings.Builder
	var total int64
	for _, row := range rows {
		fmt.Fprintf(&b, "<@%s> — `%d`\n", row.SellerID, row.TaxOwed)
		total += row.TaxOwed
	}
	fmt.Fprintf(&b, "\n**Total outstanding:** `%d`", total)

	g.replyEmbed(e, discord.Embed{
		Title:       "Outstanding Tax",
		Color:       colorWarning,
		Description: b.String(),
	})
}

func (g *Gateway) handleRemind(e *events.ApplicationCommandInteractionCreate) {
	sellerID := e.SlashCommandInteractionData().Snowflake("seller").String()

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	owed, err := g.svc.RemindSeller(ctx, sellerID)
	if err != nil {
		g.replyError(e, "sending reminder", err)
		return
	}
	if owed == 0 {
		g.replyText(e, fmt.Sprintf("<@%s> owes nothing — no reminder sent.", sellerID), true)
		return
	}
	g.replyText(e, fmt.Sprintf("Reminder sent to <@%s> for **%d** coins.", sellerID, owed), false)
}

// ─── Replies ────────────────────────────────────────────────────────────────

func (g *Gateway) replyText(e *events.ApplicationCommandInteractionCreate, content string, ephemeral bool) {
	msg := discord.MessageCreate{Content: content}
	if ephemeral {
		msg.Flags = discord.MessageFlagEphemeral
	}
	if err := e.CreateMessage(msg); err != nil {
		g.log.Warn("reply failed", slog.Any("error", err))
	}
}

func (g *Gateway) replyEmbed(e *events.ApplicationCommandInteractionCreate, embed discord.Embed) {
	embed.Footer = &discord.EmbedFooter{Text: footerText}
	if err := e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed}}); err != nil {
		g.log.Warn("reply failed", slog.Any("error", err))
	}
}

func (g *Gateway) replyError(e *events.ApplicationCommandInteractionCreate, action string, err error) {
	g.log.Error(action+" failed", slog.Any("error", err))
	g.replyText(e, "Something went wrong — try again or ping an admin.", true)
}
