package main

import "github.com/urfave/cli/v2"

var FlagVerbose = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "Enable debug logging.",
}

var FlagDir = &cli.StringFlag{
	Name:     "dir",
	Usage:    "Directory containing the shard file.",
	Value:    ".",
	Required: false,
}

var FlagFile = &cli.StringFlag{
	Name:     "file",
	Usage:    "Shard file name.",
	Required: true,
}

var FlagHashTableEntries = &cli.UintFlag{
	Name:  "hash-table-entries",
	Usage: "Number of slots in the hash table.",
	Value: uint(shardDefaultHashTableEntries),
}

var FlagSearchIndexEntries = &cli.UintFlag{
	Name:  "search-index-entries",
	Usage: "Number of slots in the search index.",
	Value: uint(shardDefaultSearchIndexEntries),
}

var FlagDataSize = &cli.Uint64Flag{
	Name:  "data-size",
	Usage: "Size in bytes of the data region.",
	Value: uint64(shardDefaultDataSize),
}

var FlagKey = &cli.StringFlag{
	Name:     "key",
	Usage:    "Record key.",
	Required: true,
}

var FlagValue = &cli.StringSliceFlag{
	Name:  "value",
	Usage: "Record value; repeat for multiple values.",
}

var FlagVersion = &cli.Uint64Flag{
	Name:  "version",
	Usage: "Record version to write.",
	Value: 1,
}
