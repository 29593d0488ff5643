// Package compression builds instructions for spl-account-compression.
package compression

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/tensor-hq/tensor-tests-go/pkg/cnft"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
)

var verifyLeafDiscriminator = programs.AnchorDiscriminator("verify_leaf")

type VerifyLeafArgs struct {
	Root      [32]byte
	Leaf      [32]byte
	LeafIndex uint32
	// Proof omits the siblings cached in the tree's canopy.
	Proof [][32]byte
}

// NewVerifyLeafInstruction asserts on-chain that Leaf sits at LeafIndex under Root. It
// fails with the tree's invalid-proof error otherwise.
func NewVerifyLeafInstruction(merkleTree solana.PublicKey, args VerifyLeafArgs) (solana.Instruction, error) {
	data, err := programs.EncodeData(verifyLeafDiscriminator[:], func(enc *bin.Encoder) error {
		if err := enc.WriteBytes(args.Root[:], false); err != nil {
			return err
		}
		if err := enc.WriteBytes(args.Leaf[:], false); err != nil {
			return err
		}
		return enc.WriteUint32(args.LeafIndex, bin.LE)
	})
	if err != nil {
		return nil, err
	}

	proof := cnft.MerkleProof{Siblings: args.Proof}
	metas := append(solana.AccountMetaSlice{solana.Meta(merkleTree)}, proof.AccountMetas()...)
	return solana.NewInstruction(programs.AccountCompressionProgramID, metas, data), nil
}

// DecodeVerifyLeafArgs parses the instruction data and remaining accounts of a
// verify_leaf instruction.
func DecodeVerifyLeafArgs(data []byte, accounts []*solana.AccountMeta) (*VerifyLeafArgs, error) {
	dec := bin.NewBorshDecoder(data)
	if err := programs.ExpectDiscriminator(dec, verifyLeafDiscriminator); err != nil {
		return nil, err
	}
	args := &VerifyLeafArgs{}
	root, err := dec.ReadNBytes(32)
	if err != nil {
		return nil, err
	}
	copy(args.Root[:], root)
	leaf, err := dec.ReadNBytes(32)
	if err != nil {
		return nil, err
	}
	copy(args.Leaf[:], leaf)
	if args.LeafIndex, err = dec.ReadUint32(bin.LE); err != nil {
		return nil, err
	}
	if len(accounts) > 1 {
		for _, acc := range accounts[1:] {
			args.Proof = append(args.Proof, [32]byte(acc.PublicKey))
		}
	}
	return args, nil
}
