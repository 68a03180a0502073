package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func newCmd_Stat() *cli.Command {
	return &cli.Command{
		Name:        "stat",
		Usage:       "Print used and stale space percentages.",
		Description: "Print the shard's used and stale space as percentages of its data region.",
		Flags: []cli.Flag{
			FlagDir,
			FlagFile,
			FlagHashTableEntries,
			FlagSearchIndexEntries,
			FlagDataSize,
		},
		Action: func(c *cli.Context) error {
			s, err := openShard(c)
			if err != nil {
				return fmt.Errorf("open: %w", err)
			}
			defer s.Close()

			s.Mu.RLock()
			defer s.Mu.RUnlock()
			fmt.Printf("used: %d%%\n", s.UsedSpace())
			fmt.Printf("stale: %d%%\n", s.StaleSpace())
			return nil
		},
	}
}
