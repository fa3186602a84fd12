package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/gridwatt/chargectl/cmd/cli/internal/commands"
	"github.com/gridwatt/chargectl/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Login        commands.LoginCmd        `cmd:"" help:"Log in to the dashboard API"`
		Logout       commands.LogoutCmd       `cmd:"" help:"Log out and clear the stored session"`
		Signup       commands.SignupCmd       `cmd:"" help:"Register a new account"`
		Whoami       commands.WhoamiCmd       `cmd:"" help:"Show the current session's profile"`
		ChargePoints commands.ChargePointsCmd `cmd:"" name:"charge-points" help:"List charge points"`
		Watch        commands.WatchCmd        `cmd:"" help:"Watch charging sessions"`
		Debug        bool                     `help:"Enable debug mode."`
		Version      kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	logger.Setup(cli.Debug)
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
