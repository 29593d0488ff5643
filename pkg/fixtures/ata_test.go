package fixtures

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/tensor-hq/tensor-tests-go/pkg/config"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/tokenMetadata"
)

func Test_CreateAndFundAta(t *testing.T) {
	ctx := context.Background()

	t.Run("Generates owner and mint", func(t *testing.T) {
		e, _ := newTestEnv(t)
		funded, err := e.CreateAndFundAta(ctx, CreateAndFundAtaArgs{RoyaltyBps: 500})
		require.NoError(t, err)
		require.NotEmpty(t, funded.Owner)
		require.Nil(t, funded.CollectionInfo)
		require.NoError(t, e.ExpectHasNft(ctx, funded.Mint, funded.Owner.PublicKey()))

		metadata, _, err := tokenMetadata.FindMetadataPda(funded.Mint)
		require.NoError(t, err)
		require.Equal(t, metadata, funded.Metadata)
		_, err = e.Client.GetAccountInfo(ctx, funded.MasterEdition, config.CommitmentConfirmed)
		require.NoError(t, err)
	})

	t.Run("Programmable with a fresh collection", func(t *testing.T) {
		e, _ := newTestEnv(t)
		owner := fundedWallet(t, e)
		creator := fundedWallet(t, e)
		collection := solana.NewWallet().PrivateKey

		funded, err := e.CreateAndFundAta(ctx, CreateAndFundAtaArgs{
			Owner:            owner,
			Creators:         []CreatorInput{{Address: creator.PublicKey(), Share: 100, Authority: creator}},
			Collection:       collection,
			CreateCollection: true,
			Programmable:     true,
		})
		require.NoError(t, err)
		require.NotNil(t, funded.CollectionInfo)
		require.Equal(t, collection.PublicKey(), funded.CollectionInfo.Mint)
		require.NoError(t, e.ExpectHasNft(ctx, funded.Mint, owner.PublicKey()))
		require.NoError(t, e.ExpectHasNft(ctx, collection.PublicKey(), owner.PublicKey()))

		tokenRecord, _, err := tokenMetadata.FindTokenRecordPda(funded.Mint, funded.Ata)
		require.NoError(t, err)
		_, err = e.Client.GetAccountInfo(ctx, tokenRecord, config.CommitmentConfirmed)
		require.NoError(t, err)
	})
}

func Test_MakeMintTwoAta(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEnv(t)
	owner := fundedWallet(t, e)
	other := fundedWallet(t, e)

	nft, err := e.MakeMintTwoAta(ctx, MintTwoAtaArgs{
		CreateAndFundAtaArgs: CreateAndFundAtaArgs{Owner: owner},
		Other:                other,
	})
	require.NoError(t, err)
	require.NoError(t, e.ExpectHasNft(ctx, nft.Mint, owner.PublicKey()))

	expected, _, err := solana.FindAssociatedTokenAddress(other.PublicKey(), nft.Mint)
	require.NoError(t, err)
	require.Equal(t, expected, nft.OtherAta)
	amount, err := e.GetTokenAmount(ctx, nft.OtherAta)
	require.NoError(t, err)
	require.Zero(t, amount)
	require.Error(t, e.ExpectHasNft(ctx, nft.Mint, other.PublicKey()))

	t.Run("Second ata for the same owner is refused", func(t *testing.T) {
		_, err := e.CreateAta(ctx, nft.Mint, other)
		require.True(t, IsProgramError(err, ErrSysAlreadyInUse))
	})
}
