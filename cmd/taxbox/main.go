package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/evanesaias-afk/taxbox/internal/cli"
)

func main() {
	// Local development convenience; DISCORD_TOKEN usually lives in .env.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
