package cnft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConcurrentMerkleTreeAccountSize(t *testing.T) {
	testCases := []struct {
		name     string
		depth    uint32
		buffer   uint32
		canopy   uint32
		expected int
	}{
		// sizes reported by getConcurrentMerkleTreeAccountSize
		{"Depth 3 buffer 8", 3, 8, 0, 1_304},
		{"Depth 14 buffer 64", 14, 64, 0, 31_800},
		{"Depth 14 buffer 64 canopy 10", 14, 64, 10, 31_800 + 2_046*32},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, ConcurrentMerkleTreeAccountSize(tc.depth, tc.buffer, tc.canopy))
		})
	}
}

func TestEncodeDecodeAccount(t *testing.T) {
	tree, err := SparseTreeFromLeaves(randomHashes(6), DefaultDepthSize)
	require.NoError(t, err)

	root := tree.GetCurrentRoot()
	acc := NewConcurrentMerkleTreeAccount(DefaultDepthSize, 5, testKey(4), root, 70)
	acc.Header.CreationSlot = 1234

	data, err := EncodeConcurrentMerkleTreeAccount(acc)
	require.NoError(t, err)
	require.Len(t, data, ConcurrentMerkleTreeAccountSize(14, 64, 5))

	decoded, err := DecodeConcurrentMerkleTreeAccount(data)
	require.NoError(t, err)
	require.Equal(t, root, decoded.CurrentRoot())
	require.Equal(t, uint32(14), decoded.Header.MaxDepth)
	require.Equal(t, uint32(64), decoded.Header.MaxBufferSize)
	require.Equal(t, testKey(4), decoded.Header.Authority)
	require.Equal(t, uint64(1234), decoded.Header.CreationSlot)
	require.Equal(t, uint64(70), decoded.SequenceNumber)
	require.Equal(t, uint64(6), decoded.ActiveIndex)
	require.Equal(t, uint32(5), decoded.CanopyDepth())
}

func TestDecodeRejectsInvalidAccounts(t *testing.T) {
	acc := NewConcurrentMerkleTreeAccount(DepthSizePair{MaxDepth: 3, MaxBufferSize: 8}, 0, testKey(1), randomHash(), 0)
	data, err := EncodeConcurrentMerkleTreeAccount(acc)
	require.NoError(t, err)

	t.Run("Short data", func(t *testing.T) {
		_, err := DecodeConcurrentMerkleTreeAccount(data[:10])
		require.ErrorIs(t, err, ErrInvalidAccount)
	})

	t.Run("Uninitialized", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] = AccountTypeUninitialized
		_, err := DecodeConcurrentMerkleTreeAccount(bad)
		require.ErrorIs(t, err, ErrInvalidAccount)
	})

	t.Run("Truncated body", func(t *testing.T) {
		_, err := DecodeConcurrentMerkleTreeAccount(data[:len(data)-8])
		require.ErrorIs(t, err, ErrInvalidAccount)
	})
}

func TestCanopyDepthFromNodes(t *testing.T) {
	for depth := uint32(0); depth <= 17; depth++ {
		require.Equal(t, depth, canopyDepthFromNodes(canopyNodeCount(depth)))
	}
}
