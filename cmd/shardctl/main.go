package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("shardctl")

var gitCommitSHA = ""

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-interrupt:
			fmt.Println()
			log.Info("received interrupt signal")
			cancel()
		case <-ctx.Done():
		}

		signal.Stop(interrupt)
	}()

	app := &cli.App{
		Name:        "shardctl",
		Version:     gitCommitSHA,
		Description: "CLI to create, inspect and drive a key-value shard file.",
		Flags: []cli.Flag{
			FlagVerbose,
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				logging.SetAllLoggers(logging.LevelDebug)
			}
			return nil
		},
		Commands: []*cli.Command{
			newCmd_Create(),
			newCmd_Put(),
			newCmd_Get(),
			newCmd_Del(),
			newCmd_Stat(),
			newCmd_Snapshot(),
			newCmd_Compact(),
			newCmd_Bench(),
			newCmd_Version(),
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
