package utils

import (
	"os"
	"path/filepath"

	"gopkg.in/urfave/cli.v1"
)

func init() {
	cli.AppHelpTemplate = `{{.Name}} {{if .Flags}}[global options] {{end}}command{{if .Flags}} [command options]{{end}} [arguments...]

VERSION:
  {{.Version}}

GLOBAL OPTIONS:
  {{range .Flags}}{{.}}
  {{end}}
`
}

// NewApp creates a cli.App with sane defaults, mirroring the teacher's
// cmd/utils.NewApp.
func NewApp(gitCommit, usage string) *cli.App {
	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Author = ""
	app.Email = ""
	app.Version = "0.1.0"
	if len(gitCommit) >= 8 {
		app.Version += "-" + gitCommit[:8]
	}
	app.Usage = usage
	return app
}

// Node configuration flags (spec §6A).
var (
	PortFlag = cli.IntFlag{
		Name:  "port",
		Usage: "libp2p listen port (0 picks a random free port)",
		Value: 0,
	}
	RendezvousFlag = cli.StringFlag{
		Name:  "rendezvous",
		Usage: "mDNS discovery service tag",
		Value: "gxchain",
	}
	LogLevelFlag = cli.StringFlag{
		Name:  "loglevel",
		Usage: "log level: debug, info, warn, error",
		Value: "info",
	}
	ClientOnlyFlag = cli.BoolFlag{
		Name:  "client-only",
		Usage: "join the transactions topic only; no chain, no miner (spec SUPPLEMENTED FEATURES)",
	}
)
