package shard

// Default build-time parameters for a shard's file format. These are not
// baked into the file itself: Open rejects values whose total file size
// differs from the file's, but values that only move the boundaries between
// regions pass that check and read garbage. Keeping the constants alongside
// the shard's path is the disk layer's job, not this package's.
const (
	DefaultHashTableEntries   = uint32(1 << 16)
	DefaultSearchIndexEntries = uint32(1 << 17)
	DefaultDataSize           = uint32(256 << 20)
	DefaultSyncOnClose        = false
)

type config struct {
	hashTableEntries   uint32
	searchIndexEntries uint32
	dataSize           uint32
	syncOnClose        bool
}

// Option configures a shard's build-time parameters at Create/Open time.
type Option func(*config)

func (c *config) apply(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// WithHashTableEntries sets the number of 8-byte slots in the hash table
// region. Must match the value the shard file was created with.
func WithHashTableEntries(n uint32) Option {
	return func(c *config) {
		c.hashTableEntries = n
	}
}

// WithSearchIndexEntries sets the number of 16-byte slots in the search
// index region. Must match the value the shard file was created with.
func WithSearchIndexEntries(n uint32) Option {
	return func(c *config) {
		c.searchIndexEntries = n
	}
}

// WithDataSize sets the size in bytes of the append-only data region. Must
// match the value the shard file was created with.
func WithDataSize(n uint32) Option {
	return func(c *config) {
		c.dataSize = n
	}
}

// WithSyncOnClose causes Close to call Sync before unmapping.
func WithSyncOnClose(yes bool) Option {
	return func(c *config) {
		c.syncOnClose = yes
	}
}

func defaultConfig() config {
	return config{
		hashTableEntries:   DefaultHashTableEntries,
		searchIndexEntries: DefaultSearchIndexEntries,
		dataSize:           DefaultDataSize,
		syncOnClose:        DefaultSyncOnClose,
	}
}
