package tokenMetadata

import (
	"bytes"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
)

func newKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

func TestPdas(t *testing.T) {
	mint := newKey()
	metadata, _, err := FindMetadataPda(mint)
	require.NoError(t, err)
	edition, _, err := FindMasterEditionPda(mint)
	require.NoError(t, err)
	record, _, err := FindTokenRecordPda(mint, newKey())
	require.NoError(t, err)

	require.NotEqual(t, metadata, edition)
	require.NotEqual(t, metadata, record)

	again, _, err := FindMetadataPda(mint)
	require.NoError(t, err)
	require.Equal(t, metadata, again)
}

func TestPrintSupplyEncoding(t *testing.T) {
	testCases := []struct {
		name     string
		supply   PrintSupply
		expected []byte
	}{
		{"None", nil, []byte{0}},
		{"Zero", PrintSupplyZero{}, []byte{1, 0}},
		{"Limited", PrintSupplyLimited{Max: 5}, []byte{1, 1, 5, 0, 0, 0, 0, 0, 0, 0}},
		{"Unlimited", PrintSupplyUnlimited{}, []byte{1, 2}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			require.NoError(t, writePrintSupply(bin.NewBorshEncoder(buf), tc.supply))
			require.Equal(t, tc.expected, buf.Bytes())
		})
	}
}

func TestMintArgsEncoding(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, writeMintArgs(bin.NewBorshEncoder(buf), MintArgsV1{Amount: 1, AuthorizationData: true}))
	require.Equal(t, []byte{0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0}, buf.Bytes())

	buf.Reset()
	require.NoError(t, writeMintArgs(bin.NewBorshEncoder(buf), MintArgsV1{Amount: 2}))
	require.Equal(t, []byte{0, 2, 0, 0, 0, 0, 0, 0, 0, 0}, buf.Bytes())
}

func TestNewCreateInstruction(t *testing.T) {
	mint, owner := newKey(), newKey()
	metadata, _, err := FindMetadataPda(mint)
	require.NoError(t, err)
	edition, _, err := FindMasterEditionPda(mint)
	require.NoError(t, err)
	decimals := uint8(0)

	ix, err := NewCreateInstruction(CreateAccounts{
		Metadata:        metadata,
		MasterEdition:   &edition,
		Mint:            mint,
		Authority:       owner,
		Payer:           owner,
		UpdateAuthority: owner,
		MintSigner:      true,
	}, CreateArgsV1{
		AssetData: AssetData{
			Name:          "Whatever",
			Symbol:        "TSR",
			Uri:           "https://www.tensor.trade",
			TokenStandard: TokenStandardProgrammableNonFungible,
		},
		Decimals:    &decimals,
		PrintSupply: PrintSupplyZero{},
	})
	require.NoError(t, err)
	require.Equal(t, programs.TokenMetadataProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 9)
	require.True(t, accounts[1].IsWritable)
	require.True(t, accounts[2].IsSigner)
	require.True(t, accounts[2].IsWritable)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Equal(t, InstructionCreate, data[0])
	require.Equal(t, uint8(0), data[1], "V1 variant")
	// decimals some(0), print supply some(Zero)
	require.Equal(t, []byte{1, 0, 1, 0}, data[len(data)-4:])
}

func TestNewCreateInstructionWithoutEdition(t *testing.T) {
	ix, err := NewCreateInstruction(CreateAccounts{Metadata: newKey(), Mint: newKey()}, CreateArgsV1{})
	require.NoError(t, err)
	require.Equal(t, programs.TokenMetadataProgramID, ix.Accounts()[1].PublicKey)
	require.False(t, ix.Accounts()[1].IsWritable)
	require.False(t, ix.Accounts()[2].IsSigner)
}

func TestNewMintInstruction(t *testing.T) {
	mint, owner := newKey(), newKey()
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	record, _, err := FindTokenRecordPda(mint, ata)
	require.NoError(t, err)

	ix, err := NewMintInstruction(MintAccounts{
		Token:       ata,
		TokenOwner:  &owner,
		Metadata:    newKey(),
		TokenRecord: &record,
		Mint:        mint,
		Authority:   owner,
		Payer:       owner,
	}, MintArgsV1{Amount: 1, AuthorizationData: true})
	require.NoError(t, err)

	accounts := ix.Accounts()
	require.Len(t, accounts, 15)
	require.Equal(t, owner, accounts[1].PublicKey)
	require.Equal(t, programs.TokenMetadataProgramID, accounts[3].PublicKey, "no master edition")
	require.True(t, accounts[4].IsWritable)
	require.Equal(t, programs.TokenAuthRulesProgramID, accounts[13].PublicKey)
	require.Equal(t, programs.TokenMetadataProgramID, accounts[14].PublicKey, "no rule set")
}

func TestNewVerifyInstruction(t *testing.T) {
	collection := newKey()
	collectionMetadata, _, err := FindMetadataPda(collection)
	require.NoError(t, err)

	ix, err := NewVerifyInstruction(VerifyAccounts{
		Authority:          newKey(),
		Metadata:           newKey(),
		CollectionMint:     &collection,
		CollectionMetadata: &collectionMetadata,
	}, VerificationArgsCollectionV1)
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Equal(t, []byte{InstructionVerify, 1}, data)
	require.True(t, ix.Accounts()[4].IsWritable)
	require.Equal(t, programs.TokenMetadataProgramID, ix.Accounts()[5].PublicKey)
}

func TestCollectionInstructions(t *testing.T) {
	mint, owner := newKey(), newKey()
	metadata, _, err := FindMetadataPda(mint)
	require.NoError(t, err)

	ix, err := NewCreateMetadataAccountV3Instruction(CreateMetadataAccountV3Accounts{
		Metadata: metadata, Mint: mint, MintAuthority: owner, Payer: owner, UpdateAuthority: owner,
	}, CreateMetadataAccountV3Args{Data: DataV2{Name: "c", Symbol: "C", Uri: "u", SellerFeeBasisPoints: 100}})
	require.NoError(t, err)
	data, err := ix.Data()
	require.NoError(t, err)
	expected := []byte{
		InstructionCreateMetadataAccountV3,
		1, 0, 0, 0, 'c',
		1, 0, 0, 0, 'C',
		1, 0, 0, 0, 'u',
		100, 0,
		0, 0, 0, // creators, collection, uses
		0, // is mutable
		0, // collection details
	}
	require.Equal(t, expected, data)

	maxSupply := uint64(0)
	ix, err = NewCreateMasterEditionV3Instruction(CreateMasterEditionV3Accounts{Mint: mint, Metadata: metadata}, &maxSupply)
	require.NoError(t, err)
	data, err = ix.Data()
	require.NoError(t, err)
	require.Equal(t, []byte{InstructionCreateMasterEditionV3, 1, 0, 0, 0, 0, 0, 0, 0, 0}, data)

	ix, err = NewSetCollectionSizeInstruction(SetCollectionSizeAccounts{CollectionMetadata: metadata, CollectionAuthority: owner, CollectionMint: mint}, 50)
	require.NoError(t, err)
	require.Len(t, ix.Accounts(), 3)
	data, err = ix.Data()
	require.NoError(t, err)
	require.Equal(t, []byte{InstructionSetCollectionSize, 50, 0, 0, 0, 0, 0, 0, 0}, data)
}
