package fixtures

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/tensor-hq/tensor-tests-go/pkg/merkle"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/whitelist"
)

const (
	DefaultWhitelistTreeSize = 100

	whitelistName = "hello_world"
)

type MintProof struct {
	Mint  solana.PublicKey
	Proof [][32]byte
}

type WhitelistTree struct {
	Tree   *merkle.MerkleTree
	Root   [32]byte
	Proofs []MintProof
}

// GenerateTreeOfSize builds a mint whitelist tree holding targetMints plus size random
// keys, and returns a proof for every target.
func GenerateTreeOfSize(size int, targetMints []solana.PublicKey) (*WhitelistTree, error) {
	leaves := make([][]byte, 0, len(targetMints)+size)
	for _, m := range targetMints {
		leaves = append(leaves, m.Bytes())
	}
	for i := 0; i < size; i++ {
		leaves = append(leaves, solana.NewWallet().PublicKey().Bytes())
	}

	tree, err := merkle.BuildMerkleTree(leaves)
	if err != nil {
		return nil, err
	}
	proofs := make([]MintProof, len(targetMints))
	for i, m := range targetMints {
		p, err := tree.GenerateProofFor(m.Bytes())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to prove mint %s", m)
		}
		proofs[i] = MintProof{Mint: m, Proof: p.Proof}
	}
	return &WhitelistTree{Tree: tree, Root: tree.Root, Proofs: proofs}, nil
}

// WhitelistArgs configures a new whitelist. Mints become a proof-checked merkle root;
// Voc and Fvc pin a verified collection or first verified creator.
type WhitelistArgs struct {
	Cosigner solana.PrivateKey
	Mints    []solana.PublicKey
	// TreeSize random filler leaves pad the mint tree; zero means the default.
	TreeSize int
	Voc      *solana.PublicKey
	Fvc      *solana.PublicKey
}

type CreatedWhitelist struct {
	Whitelist solana.PublicKey
	UUID      [32]byte
	Proofs    []MintProof
	Voc       *solana.PublicKey
	Fvc       *solana.PublicKey
}

func (e *Env) initWhitelist(ctx context.Context, args WhitelistArgs, withRoot bool) (*CreatedWhitelist, error) {
	id, err := whitelist.UUIDToBuffer(whitelist.GenWhitelistUUID())
	if err != nil {
		return nil, err
	}
	name, err := whitelist.NameToBuffer(whitelistName)
	if err != nil {
		return nil, err
	}
	ixArgs := whitelist.InitUpdateWhitelistArgs{UUID: id, Name: &name, Voc: args.Voc, Fvc: args.Fvc}

	out := &CreatedWhitelist{UUID: id, Voc: args.Voc, Fvc: args.Fvc}
	if withRoot {
		size := args.TreeSize
		if size == 0 {
			size = DefaultWhitelistTreeSize
		}
		tree, err := GenerateTreeOfSize(size, args.Mints)
		if err != nil {
			return nil, err
		}
		ixArgs.RootHash = &tree.Root
		out.Proofs = tree.Proofs
	}

	ix, wlPda, err := whitelist.NewInitUpdateWhitelistInstruction(args.Cosigner.PublicKey(), ixArgs)
	if err != nil {
		return nil, err
	}
	if _, err := e.send(ctx, args.Cosigner, []solana.Instruction{ix}); err != nil {
		return nil, errors.Wrap(err, "failed to init whitelist")
	}
	out.Whitelist = wlPda

	e.Logger.Sugar().Debugw("Created whitelist", "whitelist", wlPda.String(), "mints", len(args.Mints))
	return out, nil
}

// MakeProofWhitelist creates a whitelist whose only criterion is a mint merkle root.
func (e *Env) MakeProofWhitelist(ctx context.Context, cosigner solana.PrivateKey, mints []solana.PublicKey, treeSize int) (*CreatedWhitelist, error) {
	return e.initWhitelist(ctx, WhitelistArgs{Cosigner: cosigner, Mints: mints, TreeSize: treeSize}, true)
}

func (e *Env) MakeFvcWhitelist(ctx context.Context, cosigner solana.PrivateKey, fvc solana.PublicKey) (*CreatedWhitelist, error) {
	return e.initWhitelist(ctx, WhitelistArgs{Cosigner: cosigner, Fvc: &fvc}, false)
}

func (e *Env) MakeVocWhitelist(ctx context.Context, cosigner solana.PrivateKey, voc solana.PublicKey) (*CreatedWhitelist, error) {
	return e.initWhitelist(ctx, WhitelistArgs{Cosigner: cosigner, Voc: &voc}, false)
}

// MakeEverythingWhitelist sets the mint root and, when given, Voc and Fvc together.
func (e *Env) MakeEverythingWhitelist(ctx context.Context, args WhitelistArgs) (*CreatedWhitelist, error) {
	return e.initWhitelist(ctx, args, true)
}
