package main

import (
	"fmt"

	"github.com/rpcpool/kvshard/hash"
	"github.com/urfave/cli/v2"
)

func newCmd_Del() *cli.Command {
	return &cli.Command{
		Name:        "del",
		Usage:       "Delete a key's live record.",
		Description: "Delete the live record for --key, leaving a tombstone behind.",
		Flags: []cli.Flag{
			FlagDir,
			FlagFile,
			FlagHashTableEntries,
			FlagSearchIndexEntries,
			FlagDataSize,
			FlagKey,
		},
		Action: func(c *cli.Context) error {
			s, err := openShard(c)
			if err != nil {
				return fmt.Errorf("open: %w", err)
			}
			defer s.Close()

			key := []byte(c.String("key"))

			s.Mu.Lock()
			defer s.Mu.Unlock()
			if err := s.Del(hash.Primary(key), key); err != nil {
				return fmt.Errorf("del: %w", err)
			}
			fmt.Println(s.String())
			return nil
		},
	}
}
