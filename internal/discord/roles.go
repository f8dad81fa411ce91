package discord

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/snowflake/v2"

	"github.com/evanesaias-afk/taxbox/internal/domain"
)

// Roles grants and revokes guild roles through the Discord REST API.
type Roles struct {
	client  bot.Client
	guildID snowflake.ID
}

var _ domain.RoleDirectory = (*Roles)(nil)

func NewRoles(client bot.Client, guildID snowflake.ID) *Roles {
	return &Roles{client: client, guildID: guildID}
}

func (r *Roles) GrantRole(ctx context.Context, userID, roleID string) error {
	uid, rid, err := parseMemberRole(userID, roleID)
	if err != nil {
		return err
	}
	if err := r.client.Rest.AddMemberRole(r.guildID, uid, rid); err != nil {
		return fmt.Errorf("grant role %s to %s: %w", roleID, userID, err)
	}
	return nil
}

func (r *Roles) RevokeRole(ctx context.Context, userID, roleID string) error {
	uid, rid, err := parseMemberRole(userID, roleID)
	if err != nil {
		return err
	}
	if err := r.client.Rest.RemoveMemberRole(r.guildID, uid, rid); err != nil {
		return fmt.Errorf("revoke role %s from %s: %w", roleID, userID, err)
	}
	return nil
}

func parseMemberRole(userID, roleID string) (snowflake.ID, snowflake.ID, error) {
	uid, err := snowflake.Parse(userID)
	if err != nil {
		return 0, 0, fmt.Errorf("user id %q: %w", userID, err)
	}
	rid, err := snowflake.Parse(roleID)
	if err != nil {
		return 0, 0, fmt.Errorf("role id %q: %w", roleID, err)
	}
	return uid, rid, nil
}
