package main

import (
	"fmt"

	"github.com/rpcpool/kvshard/shard"
	"github.com/urfave/cli/v2"
)

var FlagDstDir = &cli.StringFlag{
	Name:     "dst-dir",
	Usage:    "Directory for the destination shard file.",
	Value:    ".",
	Required: false,
}

var FlagDstFile = &cli.StringFlag{
	Name:     "dst-file",
	Usage:    "Destination shard file name.",
	Required: true,
}

func newCmd_Compact() *cli.Command {
	return &cli.Command{
		Name:        "compact",
		Usage:       "Copy every live record into a fresh destination shard.",
		Description: "Copy every live record from --file into a freshly created --dst-file, dropping tombstones and stale versions.",
		Flags: []cli.Flag{
			FlagDir,
			FlagFile,
			FlagHashTableEntries,
			FlagSearchIndexEntries,
			FlagDataSize,
			FlagDstDir,
			FlagDstFile,
		},
		Action: func(c *cli.Context) error {
			src, err := openShard(c)
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			defer src.Close()

			dst, err := shard.Create(c.String("dst-dir"), c.String("dst-file"), shardOptions(c)...)
			if err != nil {
				return fmt.Errorf("create destination: %w", err)
			}
			defer dst.Close()

			everything := shard.CoordinateFunc(func(primaryHash, secondaryHash uint32, key []byte, values [][]byte) bool {
				return true
			})

			src.Mu.RLock()
			dst.Mu.Lock()
			err = src.CopyTo(everything, dst)
			dst.Mu.Unlock()
			src.Mu.RUnlock()
			if err != nil {
				return fmt.Errorf("compact: %w", err)
			}

			fmt.Println(dst.String())
			return nil
		},
	}
}
