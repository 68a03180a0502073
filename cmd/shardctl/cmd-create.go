package main

import (
	"fmt"

	"github.com/rpcpool/kvshard/shard"
	"github.com/urfave/cli/v2"
)

func newCmd_Create() *cli.Command {
	return &cli.Command{
		Name:        "create",
		Usage:       "Create a new, empty shard file.",
		Description: "Create a new, empty shard file of the given hash table, search index and data region sizes.",
		Flags: []cli.Flag{
			FlagDir,
			FlagFile,
			FlagHashTableEntries,
			FlagSearchIndexEntries,
			FlagDataSize,
		},
		Action: func(c *cli.Context) error {
			s, err := shard.Create(c.String("dir"), c.String("file"), shardOptions(c)...)
			if err != nil {
				return fmt.Errorf("create: %w", err)
			}
			defer s.Close()
			fmt.Println(s.String())
			return nil
		},
	}
}
