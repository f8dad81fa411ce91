// Package config loads and validates the taxbox TOML configuration.
// Secrets (the bot token) come from the environment, not the file, so a
// config can be committed without leaking credentials.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/evanesaias-afk/taxbox/internal/domain"
)

// Config is the top-level taxbox.toml structure.
type Config struct {
	Discord DiscordConfig `toml:"discord"`
	Tax     TaxConfig     `toml:"tax"`
	Tiers   []TierConfig  `toml:"tiers"`
	Sweep   SweepConfig   `toml:"sweep"`
	Store   StoreConfig   `toml:"store"`
	API     APIConfig     `toml:"api"`
	Events  EventsConfig  `toml:"events"`
}

// DiscordConfig identifies the guild and the roles the bot manages.
// Token is read from DISCORD_TOKEN, never from the file.
type DiscordConfig struct {
	GuildID      string `toml:"guild_id"`
	AdminRoleID  string `toml:"admin_role_id"`
	SellerRoleID string `toml:"seller_role_id"`
}

// TaxConfig controls the liability policy and the payment instructions
// included in reminder messages.
type TaxConfig struct {
	Rate          string `toml:"rate"` // decimal string, e.g. "0.25"
	PaymentHandle string `toml:"payment_handle"`
	Instructions  string `toml:"instructions"`
}

// TierConfig is one spend-tier role grant threshold.
type TierConfig struct {
	MinSpend int64  `toml:"min_spend"`
	RoleID   string `toml:"role_id"`
	Name     string `toml:"name"`
}

// SweepConfig schedules the weekly reminder sweep.
type SweepConfig struct {
	Weekday  string `toml:"weekday"`  // e.g. "Sunday"
	Time     string `toml:"time"`     // "HH:MM"
	Timezone string `toml:"timezone"` // IANA name, e.g. "America/New_York"
}

// StoreConfig selects and locates the ledger backend.
type StoreConfig struct {
	Backend string `toml:"backend"` // "json", "sqlite" or "postgres"
	Path    string `toml:"path"`    // json file or sqlite database path
	DSN     string `toml:"dsn"`     // postgres connection string
}

// APIConfig controls the operator HTTP server.
type APIConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// EventsConfig controls the optional Kafka transaction feed.
// Publishing is off unless brokers are listed.
type EventsConfig struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// Default returns the configuration a fresh `taxbox init` writes.
func Default() Config {
	return Config{
		Tax: TaxConfig{
			Rate:         "0.25",
			Instructions: "Send payment proof to an admin to restore your Seller role.",
		},
		Sweep: SweepConfig{
			Weekday:  "Sunday",
			Time:     "18:00",
			Timezone: "UTC",
		},
		Store: StoreConfig{
			Backend: "json",
			Path:    "data/ledger.json",
		},
		API: APIConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8612",
		},
		Events: EventsConfig{
			Topic: "taxbox.transactions",
		},
	}
}

// Load reads and validates a config file.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML.
func Save(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// Validate checks the parts of the config the engine and scheduler rely on.
func (c Config) Validate() error {
	rate, err := c.TaxRate()
	if err != nil {
		return err
	}
	if !domain.ValidTaxRate(rate) {
		return fmt.Errorf("tax.rate %s: %w", c.Tax.Rate, domain.ErrInvalidTaxRate)
	}
	if err := domain.ValidateTierRules(c.TierRules()); err != nil {
		return err
	}
	if _, err := c.SweepLocation(); err != nil {
		return err
	}
	if _, _, err := c.SweepTime(); err != nil {
		return err
	}
	if _, err := c.SweepWeekday(); err != nil {
		return err
	}
	switch c.Store.Backend {
	case "json", "sqlite", "postgres":
	default:
		return fmt.Errorf("store.backend %q: unknown backend", c.Store.Backend)
	}
	return nil
}

// TaxRate parses the configured rate as an exact decimal.
func (c Config) TaxRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.Tax.Rate)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("tax.rate %q: %w", c.Tax.Rate, err)
	}
	return rate, nil
}

// TierRules converts the configured tiers into domain rules, preserving order.
func (c Config) TierRules() []domain.TierRule {
	rules := make([]domain.TierRule, 0, len(c.Tiers))
	for _, t := range c.Tiers {
		rules = append(rules, domain.TierRule{MinSpend: t.MinSpend, RoleID: t.RoleID, Name: t.Name})
	}
	return rules
}

// SweepLocation resolves the configured time zone.
func (c Config) SweepLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Sweep.Timezone)
	if err != nil {
		return nil, fmt.Errorf("sweep.timezone %q: %w", c.Sweep.Timezone, err)
	}
	return loc, nil
}

// SweepTime parses the configured "HH:MM" instant.
func (c Config) SweepTime() (hour, minute int, err error) {
	if _, err := time.Parse("15:04", c.Sweep.Time); err != nil {
		return 0, 0, fmt.Errorf("sweep.time %q: %w", c.Sweep.Time, err)
	}
	fmt.Sscanf(c.Sweep.Time, "%d:%d", &hour, &minute)
	return hour, minute, nil
}

// SweepWeekday parses the configured weekday name.
func (c Config) SweepWeekday() (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if c.Sweep.Weekday == d.String() {
			return d, nil
		}
	}
	return 0, fmt.Errorf("sweep.weekday %q: not a weekday name", c.Sweep.Weekday)
}

// Token returns the bot token from the environment.
func Token() string {
	return os.Getenv("DISCORD_TOKEN")
}
