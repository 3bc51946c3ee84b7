package main

import (
	"bufio"
	"os"

	"github.com/pawelgaczynski/uringcp/logger"
	"github.com/pawelgaczynski/uringcp/pkg/proc"
	"github.com/urfave/cli/v2"
)

var root string

func main() {
	psLogger := logger.NewLogger("uringps", logger.ErrorLevel, false)

	app := &cli.App{
		Name:  "uringps",
		Usage: "list processes with their command names",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "root",
				Value:       proc.DefaultRoot,
				Usage:       "procfs mount point",
				Destination: &root,
			},
		},
		Action: func(*cli.Context) error {
			processes, err := proc.List(root)
			if err != nil {
				return err
			}

			out := bufio.NewWriter(os.Stdout)
			if err = proc.Fprint(out, processes); err != nil {
				return err
			}

			return out.Flush()
		},
	}

	if err := app.Run(os.Args); err != nil {
		psLogger.Error().Err(err).Msg("Listing processes failed")
		os.Exit(1)
	}
}
