package main

import (
	"errors"
	"fmt"

	"github.com/rpcpool/kvshard/hash"
	"github.com/rpcpool/kvshard/shard"
	"github.com/urfave/cli/v2"
)

func newCmd_Get() *cli.Command {
	return &cli.Command{
		Name:        "get",
		Usage:       "Look up a key's live record.",
		Description: "Look up the live record for --key and print its version and values.",
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

			s.Mu.RLock()
			values, version, err := s.Get(hash.Primary(key), key)
			s.Mu.RUnlock()
			if errors.Is(err, shard.ErrNotFound) {
				fmt.Println("not found")
				return nil
			}
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}

			fmt.Printf("version: %d\n", version)
			for i, v := range values {
				fmt.Printf("value[%d]: %s\n", i, v)
			}
			return nil
		},
	}
}
