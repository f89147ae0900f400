package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the Mendicot server"`
	Client  ClientCmd        `cmd:"" help:"Connect as an interactive player"`
	Bot     BotCmd           `cmd:"" help:"Connect one or more built-in bots"`
	Spawn   SpawnCmd         `cmd:"" help:"Run a server with in-process bots for demos"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("mendicot"),
		kong.Description("Four-player Mendicot over WebSockets"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
