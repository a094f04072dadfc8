package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Serve   ServeCmd         `cmd:"" help:"Run the HTTP API"`
	Play    PlayCmd          `cmd:"" help:"Play at the terminal"`
	Top     TopCmd           `cmd:"" help:"Print the leaderboard"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("casino"),
		kong.Description("Blackjack and dice over HTTP, Telegram or the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
