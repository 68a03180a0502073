package main

import (
	"fmt"
	"strconv"

	"github.com/rpcpool/kvshard/hash"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var FlagCount = &cli.IntFlag{
	Name:  "count",
	Usage: "Number of keys to put.",
	Value: 1000,
}

var FlagWorkers = &cli.IntFlag{
	Name:  "workers",
	Usage: "Number of concurrent PUT callers.",
	Value: 8,
}

func newCmd_Bench() *cli.Command {
	return &cli.Command{
		Name:        "bench",
		Usage:       "Drive a shard with concurrent PUTs.",
		Description: "Put --count keys spread across --workers concurrent goroutines, demonstrating that Mu serializes writers safely.",
		Flags: []cli.Flag{
			FlagDir,
			FlagFile,
			FlagHashTableEntries,
			FlagSearchIndexEntries,
			FlagDataSize,
			FlagCount,
			FlagWorkers,
		},
		Action: func(c *cli.Context) error {
			s, err := openShard(c)
			if err != nil {
				return fmt.Errorf("open: %w", err)
			}
			defer s.Close()

			count := c.Int("count")
			workers := c.Int("workers")

			var g errgroup.Group
			keysPerWorker := (count + workers - 1) / workers
			for w := 0; w < workers; w++ {
				w := w
				g.Go(func() error {
					start := w * keysPerWorker
					end := start + keysPerWorker
					if end > count {
						end = count
					}
					for i := start; i < end; i++ {
						key := []byte("bench-" + strconv.Itoa(i))
						s.Mu.Lock()
						err := s.Put(hash.Primary(key), hash.Secondary(key), key, nil, 1)
						s.Mu.Unlock()
						if err != nil {
							return fmt.Errorf("put %d: %w", i, err)
						}
					}
					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}

			fmt.Println(s.String())
			return nil
		},
	}
}
