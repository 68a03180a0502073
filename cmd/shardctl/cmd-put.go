package main

import (
	"fmt"

	"github.com/rpcpool/kvshard/hash"
	"github.com/urfave/cli/v2"
)

func newCmd_Put() *cli.Command {
	return &cli.Command{
		Name:        "put",
		Usage:       "Insert or update a key's record.",
		Description: "Insert or update the record for --key, writing each --value in order.",
		Flags: []cli.Flag{
			FlagDir,
			FlagFile,
			FlagHashTableEntries,
			FlagSearchIndexEntries,
			FlagDataSize,
			FlagKey,
			FlagValue,
			FlagVersion,
		},
		Action: func(c *cli.Context) error {
			s, err := openShard(c)
			if err != nil {
				return fmt.Errorf("open: %w", err)
			}
			defer s.Close()

			key := []byte(c.String("key"))
			values := make([][]byte, 0, len(c.StringSlice("value")))
			for _, v := range c.StringSlice("value") {
				values = append(values, []byte(v))
			}

			s.Mu.Lock()
			defer s.Mu.Unlock()
			err = s.Put(hash.Primary(key), hash.Secondary(key), key, values, c.Uint64("version"))
			if err != nil {
				return fmt.Errorf("put: %w", err)
			}
			fmt.Println(s.String())
			return nil
		},
	}
}
