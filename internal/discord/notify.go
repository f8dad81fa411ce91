package discord

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/evanesaias-afk/taxbox/internal/config"
	"github.com/evanesaias-afk/taxbox/internal/domain"
)

// DMNotifier delivers tax-due notices to sellers over direct messages.
type DMNotifier struct {
	client bot.Client
	tax    config.TaxConfig
}

var _ domain.Notifier = (*DMNotifier)(nil)

func NewDMNotifier(client bot.Client, tax config.TaxConfig) *DMNotifier {
	return &DMNotifier{client: client, tax: tax}
}

func (n *DMNotifier) NotifyTaxDue(ctx context.Context, sellerID string, owed int64) error {
	uid, err := snowflake.Parse(sellerID)
	if err != nil {
		return fmt.Errorf("seller id %q: %w", sellerID, err)
	}

	channel, err := n.client.Rest.CreateDMChannel(uid)
	if err != nil {
		return fmt.Errorf("open dm with %s: %w", sellerID, err)
	}

	embed := discord.Embed{
		Title: "Tax Payment Due",
		Color: colorWarning,
		Description: fmt.Sprintf(
			"You owe **%d** coins in seller tax.\nSend payment to **%s**.\n\n%s",
			owed, n.tax.PaymentHandle, n.tax.Instructions,
		),
		Footer: &discord.EmbedFooter{Text: footerText},
	}
	if _, err := n.client.Rest.CreateMessage(channel.ID(), discord.MessageCreate{Embeds: []discord.Embed{embed}}); err != nil {
		return fmt.Errorf("dm %s: %w", sellerID, err)
	}
	return nil
}
