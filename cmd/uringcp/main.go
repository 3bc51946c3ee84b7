// nolint:forbidigo
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/pawelgaczynski/uringcp"
	"github.com/pawelgaczynski/uringcp/iouring"
	"github.com/pawelgaczynski/uringcp/logger"
	"github.com/urfave/cli/v2"
)

const (
	ringEntries = 8
	blockSize   = 4096

	usageExitCode = 2
)

const usage = "usage: uringcp [flags] <src> <dst>"

type cmdConfig struct {
	entries         uint
	blockSize       uint
	verify          bool
	noSync          bool
	lockOSThread    bool
	processPriority bool
	cpu             int
	prettyLogger    bool
	checkFeatures   bool
	loggerLevel     string
}

var config = &cmdConfig{}

var flags = []cli.Flag{
	&cli.UintFlag{
		Name:        "entries",
		Value:       ringEntries,
		Usage:       "ring capacity and number of blocks in flight",
		Destination: &config.entries,
	},
	&cli.UintFlag{
		Name:        "blockSize",
		Value:       blockSize,
		Usage:       "size of every block, a multiple of the page size",
		Destination: &config.blockSize,
	},
	&cli.BoolFlag{
		Name:        "verify",
		Value:       false,
		Usage:       "compare BLAKE3 digests of source and destination after the copy",
		Destination: &config.verify,
	},
	&cli.BoolFlag{
		Name:        "noSync",
		Value:       false,
		Usage:       "skip the final datasync of the destination",
		Destination: &config.noSync,
	},
	&cli.BoolFlag{
		Name:        "lockOSThread",
		Value:       false,
		Usage:       "lock OS thread for the copy loop",
		Destination: &config.lockOSThread,
	},
	&cli.BoolFlag{
		Name:        "processPriority",
		Value:       false,
		Usage:       "set high process priority. Note: requires root privileges",
		Destination: &config.processPriority,
	},
	&cli.IntFlag{
		Name:        "cpu",
		Value:       -1,
		Usage:       "pin the locked OS thread to this CPU",
		Destination: &config.cpu,
	},
	&cli.BoolFlag{
		Name:        "prettyLogger",
		Value:       false,
		Usage:       "print prettier logs",
		Destination: &config.prettyLogger,
	},
	&cli.BoolFlag{
		Name:        "checkFeatures",
		Value:       false,
		Usage:       "report which io_uring operations the kernel supports and exit",
		Destination: &config.checkFeatures,
	},
	&cli.StringFlag{
		Name:        "loggerLevel",
		Value:       "error",
		Usage:       "logger level",
		Destination: &config.loggerLevel,
		Action: func(ctx *cli.Context, v string) error {
			_, err := logger.ParseLevel(v)

			return err
		},
	},
}

func flagUint32(name string, value uint) (uint32, error) {
	if uint64(value) > math.MaxUint32 {
		return 0, fmt.Errorf("--%s must not exceed %d: %d", name, uint32(math.MaxUint32), value)
	}

	return uint32(value), nil
}

func run(ctx *cli.Context) error {
	if config.checkFeatures {
		report, err := iouring.CheckAvailableFeatures()
		if err != nil {
			return err
		}
		fmt.Print(report)

		return nil
	}

	if ctx.NArg() != 2 {
		return cli.Exit(usage, usageExitCode)
	}

	level, err := logger.ParseLevel(config.loggerLevel)
	if err != nil {
		return cli.Exit(err.Error(), usageExitCode)
	}

	entries, err := flagUint32("entries", config.entries)
	if err != nil {
		return cli.Exit(err.Error(), usageExitCode)
	}
	blockSize, err := flagUint32("blockSize", config.blockSize)
	if err != nil {
		return cli.Exit(err.Error(), usageExitCode)
	}

	opts := []uringcp.ConfigOption{
		uringcp.WithRingEntries(entries),
		uringcp.WithBlockSize(blockSize),
		uringcp.WithSync(!config.noSync),
		uringcp.WithVerify(config.verify),
		uringcp.WithLockOSThread(config.lockOSThread),
		uringcp.WithProcessPriority(config.processPriority),
		uringcp.WithCPUAffinity(config.cpu),
		uringcp.WithLoggerLevel(level),
		uringcp.WithPrettyLogger(config.prettyLogger),
	}

	result, err := uringcp.Copy(ctx.Args().Get(0), ctx.Args().Get(1), opts...)
	if err != nil {
		return err
	}

	fmt.Printf("Copied %d bytes in %d blocks, %s\n", result.Bytes, result.Blocks, result.Duration)

	return nil
}

func main() {
	cliLogger := logger.NewLogger("cli", logger.ErrorLevel, false)

	app := &cli.App{
		EnableBashCompletion: true,
		Flags:                flags,
		Name:                 "uringcp",
		Usage:                "copy a file through io_uring with registered buffers",
		ArgsUsage:            "<src> <dst>",
		OnUsageError: func(ctx *cli.Context, err error, isSubcommand bool) error {
			return cli.Exit(fmt.Sprintf("%v\n%s", err, usage), usageExitCode)
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		cliLogger.Error().Err(err).Msg("uringcp failed")
		os.Exit(1)
	}
}
