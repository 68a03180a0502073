package main

import (
	"github.com/rpcpool/kvshard/shard"
	"github.com/urfave/cli/v2"
)

const (
	shardDefaultHashTableEntries   = shard.DefaultHashTableEntries
	shardDefaultSearchIndexEntries = shard.DefaultSearchIndexEntries
	shardDefaultDataSize           = shard.DefaultDataSize
)

func shardOptions(c *cli.Context) []shard.Option {
	return []shard.Option{
		shard.WithHashTableEntries(uint32(c.Uint("hash-table-entries"))),
		shard.WithSearchIndexEntries(uint32(c.Uint("search-index-entries"))),
		shard.WithDataSize(uint32(c.Uint64("data-size"))),
	}
}

func openShard(c *cli.Context) (*shard.Shard, error) {
	return shard.Open(c.String("dir"), c.String("file"), shardOptions(c)...)
}
