// Package bubblegum builds instructions for the Metaplex bubblegum program, which mints
// and manages compressed NFTs stored as leaves of a concurrent merkle tree.
package bubblegum

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/tensor-hq/tensor-tests-go/pkg/cnft"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
)

var (
	createTreeDiscriminator         = programs.AnchorDiscriminator("create_tree")
	mintV1Discriminator             = programs.AnchorDiscriminator("mint_v1")
	mintToCollectionV1Discriminator = programs.AnchorDiscriminator("mint_to_collection_v1")
	verifyCreatorDiscriminator      = programs.AnchorDiscriminator("verify_creator")
)

// FindTreeAuthorityPda derives the tree config account bubblegum keeps per merkle tree.
func FindTreeAuthorityPda(merkleTree solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{merkleTree[:]}, programs.BubblegumProgramID)
}

// FindSignerPda derives the PDA bubblegum signs collection CPIs with.
func FindSignerPda() (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte("collection_cpi")}, programs.BubblegumProgramID)
}

type CreateTreeAccounts struct {
	MerkleTree  solana.PublicKey
	Payer       solana.PublicKey
	TreeCreator solana.PublicKey
}

type CreateTreeArgs struct {
	MaxDepth      uint32
	MaxBufferSize uint32
	Public        *bool
}

// NewCreateTreeInstruction initialises the tree config for an already allocated tree
// account.
func NewCreateTreeInstruction(accounts CreateTreeAccounts, args CreateTreeArgs) (solana.Instruction, error) {
	treeAuthority, _, err := FindTreeAuthorityPda(accounts.MerkleTree)
	if err != nil {
		return nil, err
	}
	data, err := programs.EncodeData(createTreeDiscriminator[:], func(enc *bin.Encoder) error {
		if err := enc.WriteUint32(args.MaxDepth, bin.LE); err != nil {
			return err
		}
		if err := enc.WriteUint32(args.MaxBufferSize, bin.LE); err != nil {
			return err
		}
		if err := enc.WriteBool(args.Public != nil); err != nil {
			return err
		}
		if args.Public != nil {
			return enc.WriteBool(*args.Public)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metas := solana.AccountMetaSlice{
		solana.Meta(treeAuthority).WRITE(),
		solana.Meta(accounts.MerkleTree).WRITE(),
		solana.Meta(accounts.Payer).WRITE().SIGNER(),
		solana.Meta(accounts.TreeCreator).SIGNER(),
		solana.Meta(programs.NoopProgramID),
		solana.Meta(programs.AccountCompressionProgramID),
		solana.Meta(solana.SystemProgramID),
	}
	return solana.NewInstruction(programs.BubblegumProgramID, metas, data), nil
}

type MintAccounts struct {
	MerkleTree   solana.PublicKey
	LeafOwner    solana.PublicKey
	LeafDelegate solana.PublicKey
	Payer        solana.PublicKey
	TreeDelegate solana.PublicKey
}

func (a MintAccounts) metas() (solana.AccountMetaSlice, error) {
	treeAuthority, _, err := FindTreeAuthorityPda(a.MerkleTree)
	if err != nil {
		return nil, err
	}
	delegate := a.LeafDelegate
	if delegate.IsZero() {
		delegate = a.LeafOwner
	}
	return solana.AccountMetaSlice{
		solana.Meta(treeAuthority).WRITE(),
		solana.Meta(a.LeafOwner),
		solana.Meta(delegate),
		solana.Meta(a.MerkleTree).WRITE(),
		solana.Meta(a.Payer).SIGNER(),
		solana.Meta(a.TreeDelegate).SIGNER(),
		solana.Meta(programs.NoopProgramID),
		solana.Meta(programs.AccountCompressionProgramID),
	}, nil
}

// NewMintV1Instruction mints a collectionless (or unverified-collection) leaf.
func NewMintV1Instruction(accounts MintAccounts, metadata cnft.MetadataArgs) (solana.Instruction, error) {
	if err := metadata.Validate(); err != nil {
		return nil, err
	}
	metas, err := accounts.metas()
	if err != nil {
		return nil, err
	}
	metas = append(metas, solana.Meta(solana.SystemProgramID))

	data, err := programs.EncodeData(mintV1Discriminator[:], metadata.MarshalWithEncoder)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programs.BubblegumProgramID, metas, data), nil
}

type MintToCollectionAccounts struct {
	MintAccounts
	CollectionAuthority solana.PublicKey
	// CollectionAuthorityRecord is optional; nil passes the bubblegum program ID.
	CollectionAuthorityRecord *solana.PublicKey
	CollectionMint            solana.PublicKey
	CollectionMetadata        solana.PublicKey
	EditionAccount            solana.PublicKey
}

// NewMintToCollectionV1Instruction mints a leaf and verifies its collection in one step.
// The program sets collection.verified itself, so the metadata is sent with it cleared.
func NewMintToCollectionV1Instruction(accounts MintToCollectionAccounts, metadata cnft.MetadataArgs) (solana.Instruction, error) {
	if metadata.Collection == nil {
		return nil, fmt.Errorf("mint to collection requires metadata with a collection")
	}
	if err := metadata.Validate(); err != nil {
		return nil, err
	}
	sent := metadata.Clone()
	sent.Collection.Verified = false

	metas, err := accounts.metas()
	if err != nil {
		return nil, err
	}
	signer, _, err := FindSignerPda()
	if err != nil {
		return nil, err
	}
	metas = append(metas,
		solana.Meta(accounts.CollectionAuthority).SIGNER(),
		solana.Meta(programs.OptionalAccount(accounts.CollectionAuthorityRecord, programs.BubblegumProgramID)),
		solana.Meta(accounts.CollectionMint),
		solana.Meta(accounts.CollectionMetadata).WRITE(),
		solana.Meta(accounts.EditionAccount),
		solana.Meta(signer),
		solana.Meta(programs.NoopProgramID),
		solana.Meta(programs.AccountCompressionProgramID),
		solana.Meta(programs.TokenMetadataProgramID),
		solana.Meta(solana.SystemProgramID),
	)

	data, err := programs.EncodeData(mintToCollectionV1Discriminator[:], sent.MarshalWithEncoder)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programs.BubblegumProgramID, metas, data), nil
}

type VerifyCreatorAccounts struct {
	MerkleTree   solana.PublicKey
	LeafOwner    solana.PublicKey
	LeafDelegate solana.PublicKey
	Payer        solana.PublicKey
	Creator      solana.PublicKey
}

type VerifyCreatorArgs struct {
	Root     [32]byte
	Index    uint32
	Metadata cnft.MetadataArgs
	// Proof is the canopy-trimmed sibling path, passed as remaining accounts.
	Proof [][32]byte
}

// NewVerifyCreatorInstruction flips the verified flag of Creator on an existing leaf.
// Metadata must be the leaf's current metadata, before verification.
func NewVerifyCreatorInstruction(accounts VerifyCreatorAccounts, args VerifyCreatorArgs) (solana.Instruction, error) {
	treeAuthority, _, err := FindTreeAuthorityPda(accounts.MerkleTree)
	if err != nil {
		return nil, err
	}
	dataHash, err := cnft.ComputeDataHash(args.Metadata)
	if err != nil {
		return nil, err
	}
	creatorHash := cnft.ComputeCreatorHash(args.Metadata.Creators)
	delegate := accounts.LeafDelegate
	if delegate.IsZero() {
		delegate = accounts.LeafOwner
	}

	data, err := programs.EncodeData(verifyCreatorDiscriminator[:], func(enc *bin.Encoder) error {
		for _, b := range [][32]byte{args.Root, dataHash, creatorHash} {
			if err := enc.WriteBytes(b[:], false); err != nil {
				return err
			}
		}
		if err := enc.WriteUint64(uint64(args.Index), bin.LE); err != nil {
			return err
		}
		if err := enc.WriteUint32(args.Index, bin.LE); err != nil {
			return err
		}
		return args.Metadata.MarshalWithEncoder(enc)
	})
	if err != nil {
		return nil, err
	}

	metas := solana.AccountMetaSlice{
		solana.Meta(treeAuthority),
		solana.Meta(accounts.LeafOwner),
		solana.Meta(delegate),
		solana.Meta(accounts.MerkleTree).WRITE(),
		solana.Meta(accounts.Payer).SIGNER(),
		solana.Meta(accounts.Creator).SIGNER(),
		solana.Meta(programs.NoopProgramID),
		solana.Meta(programs.AccountCompressionProgramID),
		solana.Meta(solana.SystemProgramID),
	}
	proof := cnft.MerkleProof{Siblings: args.Proof}
	metas = append(metas, proof.AccountMetas()...)
	return solana.NewInstruction(programs.BubblegumProgramID, metas, data), nil
}

type InstructionKind uint8

const (
	KindCreateTree InstructionKind = iota
	KindMintV1
	KindMintToCollectionV1
	KindVerifyCreator
)

// ParsedInstruction is the decoded data of a bubblegum instruction. Fields not carried
// by Kind are left zero.
type ParsedInstruction struct {
	Kind        InstructionKind
	CreateTree  CreateTreeArgs
	Metadata    cnft.MetadataArgs
	Root        [32]byte
	DataHash    [32]byte
	CreatorHash [32]byte
	Nonce       uint64
	Index       uint32
}

// ParseInstruction decodes instruction data produced by the constructors above.
func ParseInstruction(data []byte) (*ParsedInstruction, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("instruction data too short: %d bytes", len(data))
	}
	var disc [8]byte
	copy(disc[:], data[:8])
	dec := bin.NewBorshDecoder(data[8:])
	out := &ParsedInstruction{}

	var err error
	switch disc {
	case createTreeDiscriminator:
		out.Kind = KindCreateTree
		if out.CreateTree.MaxDepth, err = dec.ReadUint32(bin.LE); err != nil {
			return nil, err
		}
		if out.CreateTree.MaxBufferSize, err = dec.ReadUint32(bin.LE); err != nil {
			return nil, err
		}
		some, err := dec.ReadBool()
		if err != nil {
			return nil, err
		}
		if some {
			public, err := dec.ReadBool()
			if err != nil {
				return nil, err
			}
			out.CreateTree.Public = &public
		}
		return out, nil
	case mintV1Discriminator:
		out.Kind = KindMintV1
	case mintToCollectionV1Discriminator:
		out.Kind = KindMintToCollectionV1
	case verifyCreatorDiscriminator:
		out.Kind = KindVerifyCreator
		for _, dst := range []*[32]byte{&out.Root, &out.DataHash, &out.CreatorHash} {
			b, err := dec.ReadNBytes(32)
			if err != nil {
				return nil, err
			}
			copy(dst[:], b)
		}
		if out.Nonce, err = dec.ReadUint64(bin.LE); err != nil {
			return nil, err
		}
		if out.Index, err = dec.ReadUint32(bin.LE); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown bubblegum instruction %x", disc)
	}

	if err := out.Metadata.UnmarshalWithDecoder(dec); err != nil {
		return nil, err
	}
	return out, nil
}
