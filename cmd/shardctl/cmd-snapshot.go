package main

import (
	"fmt"

	"github.com/rpcpool/kvshard/shard"
	"github.com/urfave/cli/v2"
)

func newCmd_Snapshot() *cli.Command {
	return &cli.Command{
		Name:        "snapshot",
		Usage:       "List every entry visible in a stable snapshot.",
		Description: "Take a snapshot and print every entry recorded in the search index, live or dead.",
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
			snap := s.MakeSnapshot()
			s.Mu.RUnlock()
			defer snap.Close()

			snap.Each(func(e shard.Entry) bool {
				status := "dead"
				if e.Live {
					status = "live"
				}
				fmt.Printf("%s key=%q version=%d primaryHash=%d secondaryHash=%d\n", status, e.Key, e.Version, e.PrimaryHash, e.SecondaryHash)
				return true
			})
			return nil
		},
	}
}
