package hash_test

import (
	"testing"

	"github.com/rpcpool/kvshard/hash"
	"github.com/stretchr/testify/require"
)

func TestPrimaryDeterministic(t *testing.T) {
	key := []byte("alpha")
	require.Equal(t, hash.Primary(key), hash.Primary(key))
}

func TestSecondaryDeterministic(t *testing.T) {
	key := []byte("alpha")
	require.Equal(t, hash.Secondary(key), hash.Secondary(key))
}

func TestPrimaryAndSecondaryIndependent(t *testing.T) {
	key := []byte("alpha")
	require.NotEqual(t, hash.Primary(key), hash.Secondary(key))
}

func TestDifferentKeysDifferentHashes(t *testing.T) {
	require.NotEqual(t, hash.Primary([]byte("alpha")), hash.Primary([]byte("beta")))
	require.NotEqual(t, hash.Secondary([]byte("alpha")), hash.Secondary([]byte("beta")))
}

func TestEmptyKey(t *testing.T) {
	require.NotPanics(t, func() {
		hash.Primary(nil)
		hash.Secondary(nil)
	})
}
