package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/effective-security/jwtfilter/cmd/jwtfilter/cli"
	"github.com/effective-security/x/ctl"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

type app struct {
	cli.Cli

	Process cli.ProcessCmd `cmd:"" help:"pack or unpack JSON records"`
	Genkey  cli.GenKeyCmd  `cmd:"" help:"generate JWE key pair"`
}

func main() {
	realMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

func realMain(args []string, out io.Writer, errout io.Writer, exit func(int)) {
	cl := app{
		Cli: cli.Cli{},
	}
	cl.Cli.WithErrWriter(errout).
		WithWriter(out)

	parser, err := kong.New(&cl,
		kong.Name("jwtfilter"),
		kong.Description("Pack and unpack records as JWT or JWE tokens"),
		kong.Writers(out, errout),
		kong.Exit(exit),
		ctl.BoolPtrMapper,
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		})
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args[1:])
	parser.FatalIfErrorf(err)

	if ctx != nil {
		err = ctx.Run(&cl.Cli)
		ctx.FatalIfErrorf(err)
	}
}
