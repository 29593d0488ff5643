// Package tokenMetadata builds the Metaplex token-metadata instructions the fixtures
// need to create collections, NFTs and pNFTs.
package tokenMetadata

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
)

const (
	InstructionCreateMasterEditionV3   uint8 = 17
	InstructionCreateMetadataAccountV3 uint8 = 33
	InstructionSetCollectionSize       uint8 = 34
	InstructionCreate                  uint8 = 42
	InstructionMint                    uint8 = 43
	InstructionVerify                  uint8 = 52
)

var (
	metadataSeed    = []byte("metadata")
	editionSeed     = []byte("edition")
	tokenRecordSeed = []byte("token_record")
)

func FindMetadataPda(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{metadataSeed, programs.TokenMetadataProgramID[:], mint[:]},
		programs.TokenMetadataProgramID,
	)
}

func FindMasterEditionPda(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{metadataSeed, programs.TokenMetadataProgramID[:], mint[:], editionSeed},
		programs.TokenMetadataProgramID,
	)
}

// FindTokenRecordPda derives the pNFT token record of a token account.
func FindTokenRecordPda(mint, token solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{metadataSeed, programs.TokenMetadataProgramID[:], mint[:], tokenRecordSeed, token[:]},
		programs.TokenMetadataProgramID,
	)
}

func optional(key *solana.PublicKey) *solana.AccountMeta {
	return solana.Meta(programs.OptionalAccount(key, programs.TokenMetadataProgramID))
}

type CreateMetadataAccountV3Accounts struct {
	Metadata        solana.PublicKey
	Mint            solana.PublicKey
	MintAuthority   solana.PublicKey
	Payer           solana.PublicKey
	UpdateAuthority solana.PublicKey
}

type CreateMetadataAccountV3Args struct {
	Data              DataV2
	IsMutable         bool
	CollectionDetails *CollectionDetails
}

func NewCreateMetadataAccountV3Instruction(accounts CreateMetadataAccountV3Accounts, args CreateMetadataAccountV3Args) (solana.Instruction, error) {
	data, err := programs.EncodeData([]byte{InstructionCreateMetadataAccountV3}, func(enc *bin.Encoder) error {
		if err := args.Data.MarshalWithEncoder(enc); err != nil {
			return err
		}
		if err := enc.WriteBool(args.IsMutable); err != nil {
			return err
		}
		return writeCollectionDetails(enc, args.CollectionDetails)
	})
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.Metadata).WRITE(),
		solana.Meta(accounts.Mint),
		solana.Meta(accounts.MintAuthority).SIGNER(),
		solana.Meta(accounts.Payer).WRITE().SIGNER(),
		solana.Meta(accounts.UpdateAuthority).SIGNER(),
		solana.Meta(solana.SystemProgramID),
	}
	return solana.NewInstruction(programs.TokenMetadataProgramID, metas, data), nil
}

type CreateMasterEditionV3Accounts struct {
	Edition         solana.PublicKey
	Mint            solana.PublicKey
	UpdateAuthority solana.PublicKey
	MintAuthority   solana.PublicKey
	Payer           solana.PublicKey
	Metadata        solana.PublicKey
}

// NewCreateMasterEditionV3Instruction creates the master edition. A nil maxSupply means
// unlimited prints.
func NewCreateMasterEditionV3Instruction(accounts CreateMasterEditionV3Accounts, maxSupply *uint64) (solana.Instruction, error) {
	data, err := programs.EncodeData([]byte{InstructionCreateMasterEditionV3}, func(enc *bin.Encoder) error {
		if err := enc.WriteBool(maxSupply != nil); err != nil {
			return err
		}
		if maxSupply != nil {
			return enc.WriteUint64(*maxSupply, bin.LE)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.Edition).WRITE(),
		solana.Meta(accounts.Mint).WRITE(),
		solana.Meta(accounts.UpdateAuthority).SIGNER(),
		solana.Meta(accounts.MintAuthority).SIGNER(),
		solana.Meta(accounts.Payer).WRITE().SIGNER(),
		solana.Meta(accounts.Metadata).WRITE(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SystemProgramID),
	}
	return solana.NewInstruction(programs.TokenMetadataProgramID, metas, data), nil
}

type SetCollectionSizeAccounts struct {
	CollectionMetadata        solana.PublicKey
	CollectionAuthority       solana.PublicKey
	CollectionMint            solana.PublicKey
	CollectionAuthorityRecord *solana.PublicKey
}

func NewSetCollectionSizeInstruction(accounts SetCollectionSizeAccounts, size uint64) (solana.Instruction, error) {
	data, err := programs.EncodeData([]byte{InstructionSetCollectionSize}, func(enc *bin.Encoder) error {
		return enc.WriteUint64(size, bin.LE)
	})
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.CollectionMetadata).WRITE(),
		solana.Meta(accounts.CollectionAuthority).WRITE().SIGNER(),
		solana.Meta(accounts.CollectionMint),
	}
	if accounts.CollectionAuthorityRecord != nil {
		metas = append(metas, solana.Meta(*accounts.CollectionAuthorityRecord))
	}
	return solana.NewInstruction(programs.TokenMetadataProgramID, metas, data), nil
}

type CreateAccounts struct {
	Metadata        solana.PublicKey
	MasterEdition   *solana.PublicKey
	Mint            solana.PublicKey
	Authority       solana.PublicKey
	Payer           solana.PublicKey
	UpdateAuthority solana.PublicKey
	// MintSigner marks the mint as a writable signer, which the program requires when
	// it initialises the mint account itself.
	MintSigner bool
}

func NewCreateInstruction(accounts CreateAccounts, args CreateArgs) (solana.Instruction, error) {
	data, err := programs.EncodeData([]byte{InstructionCreate}, func(enc *bin.Encoder) error {
		return writeCreateArgs(enc, args)
	})
	if err != nil {
		return nil, err
	}
	mint := solana.Meta(accounts.Mint).WRITE()
	if accounts.MintSigner {
		mint = mint.SIGNER()
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.Metadata).WRITE(),
		optional(accounts.MasterEdition),
		mint,
		solana.Meta(accounts.Authority).SIGNER(),
		solana.Meta(accounts.Payer).WRITE().SIGNER(),
		solana.Meta(accounts.UpdateAuthority).SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarInstructionsPubkey),
		solana.Meta(solana.TokenProgramID),
	}
	if accounts.MasterEdition != nil {
		metas[1].WRITE()
	}
	return solana.NewInstruction(programs.TokenMetadataProgramID, metas, data), nil
}

type MintAccounts struct {
	Token              solana.PublicKey
	TokenOwner         *solana.PublicKey
	Metadata           solana.PublicKey
	MasterEdition      *solana.PublicKey
	TokenRecord        *solana.PublicKey
	Mint               solana.PublicKey
	Authority          solana.PublicKey
	Payer              solana.PublicKey
	AuthorizationRules *solana.PublicKey
}

func NewMintInstruction(accounts MintAccounts, args MintArgs) (solana.Instruction, error) {
	data, err := programs.EncodeData([]byte{InstructionMint}, func(enc *bin.Encoder) error {
		return writeMintArgs(enc, args)
	})
	if err != nil {
		return nil, err
	}
	tokenRecord := optional(accounts.TokenRecord)
	if accounts.TokenRecord != nil {
		tokenRecord.WRITE()
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.Token).WRITE(),
		optional(accounts.TokenOwner),
		solana.Meta(accounts.Metadata),
		optional(accounts.MasterEdition),
		tokenRecord,
		solana.Meta(accounts.Mint).WRITE(),
		solana.Meta(accounts.Authority).SIGNER(),
		optional(nil), // delegate record
		solana.Meta(accounts.Payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarInstructionsPubkey),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SPLAssociatedTokenAccountProgramID),
		solana.Meta(programs.TokenAuthRulesProgramID),
		optional(accounts.AuthorizationRules),
	}
	return solana.NewInstruction(programs.TokenMetadataProgramID, metas, data), nil
}

type VerifyAccounts struct {
	Authority               solana.PublicKey
	Metadata                solana.PublicKey
	CollectionMint          *solana.PublicKey
	CollectionMetadata      *solana.PublicKey
	CollectionMasterEdition *solana.PublicKey
}

func NewVerifyInstruction(accounts VerifyAccounts, args VerificationArgs) (solana.Instruction, error) {
	data, err := programs.EncodeData([]byte{InstructionVerify, uint8(args)}, nil)
	if err != nil {
		return nil, err
	}
	collectionMetadata := optional(accounts.CollectionMetadata)
	if accounts.CollectionMetadata != nil {
		collectionMetadata.WRITE()
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.Authority).SIGNER(),
		optional(nil), // delegate record
		solana.Meta(accounts.Metadata).WRITE(),
		optional(accounts.CollectionMint),
		collectionMetadata,
		optional(accounts.CollectionMasterEdition),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarInstructionsPubkey),
	}
	return solana.NewInstruction(programs.TokenMetadataProgramID, metas, data), nil
}
