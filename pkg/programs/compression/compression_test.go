package compression

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/tensor-hq/tensor-tests-go/pkg/cnft"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
)

func TestVerifyLeafInstruction(t *testing.T) {
	leaves := [][32]byte{{1}, {2}, {3}, {4}, {5}}
	tree, err := cnft.SparseTreeFromLeaves(leaves, cnft.DepthSizePair{MaxDepth: 5, MaxBufferSize: 8})
	require.NoError(t, err)
	proof, err := tree.GetProof(3, 2)
	require.NoError(t, err)

	merkleTree := solana.NewWallet().PublicKey()
	ix, err := NewVerifyLeafInstruction(merkleTree, VerifyLeafArgs{
		Root:      proof.Root,
		Leaf:      proof.Leaf,
		LeafIndex: proof.LeafIndex,
		Proof:     proof.Siblings,
	})
	require.NoError(t, err)
	require.Equal(t, programs.AccountCompressionProgramID, ix.ProgramID())
	require.Len(t, ix.Accounts(), 1+3)
	require.False(t, ix.Accounts()[0].IsWritable)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 8+32+32+4)

	decoded, err := DecodeVerifyLeafArgs(data, ix.Accounts())
	require.NoError(t, err)
	require.Equal(t, proof.Root, decoded.Root)
	require.Equal(t, proof.Leaf, decoded.Leaf)
	require.Equal(t, uint32(3), decoded.LeafIndex)
	require.Equal(t, proof.Siblings, decoded.Proof)

	_, err = DecodeVerifyLeafArgs(data[1:], ix.Accounts())
	require.Error(t, err)
}
