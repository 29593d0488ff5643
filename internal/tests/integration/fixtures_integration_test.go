package integration

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/tensor-hq/tensor-tests-go/internal/tests"
	"github.com/tensor-hq/tensor-tests-go/pkg/cnft"
	"github.com/tensor-hq/tensor-tests-go/pkg/fixtures"
)

func Test_FixturesAgainstValidator(t *testing.T) {
	e := tests.NewValidatorEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cosigner, err := e.Sender.CreateFundedWallet(ctx, e.Payer, 10)
	require.NoError(t, err)
	owner, err := e.Sender.CreateFundedWallet(ctx, e.Payer, 10)
	require.NoError(t, err)

	t.Run("TSwap config", func(t *testing.T) {
		_, err := e.InitTSwap(ctx, cosigner, owner)
		require.NoError(t, err)
	})

	t.Run("Test nfts", func(t *testing.T) {
		opts := fixtures.NewTestNftsOpts()
		opts.DepthSizePair = cnft.DepthSizePair{MaxDepth: 5, MaxBufferSize: 8}
		opts.CNftMints = 4
		opts.CNftMintsToTraderA = 2
		opts.PNftMints = 2
		opts.PNftMintsToTraderA = 1

		nfts, err := e.MakeTestNfts(ctx, opts)
		require.NoError(t, err)
		require.Len(t, nfts.TraderACNfts, 2)
		require.Len(t, nfts.TraderBCNfts, 2)
		for _, p := range nfts.TraderAPNfts {
			require.NoError(t, e.ExpectHasNft(ctx, p.Mint, nfts.TraderA.PublicKey()))
		}
	})

	t.Run("Proof whitelist", func(t *testing.T) {
		funded, err := e.CreateAndFundAta(ctx, fixtures.CreateAndFundAtaArgs{Owner: owner})
		require.NoError(t, err)
		wl, err := e.MakeProofWhitelist(ctx, cosigner, []solana.PublicKey{funded.Mint}, 10)
		require.NoError(t, err)
		require.Len(t, wl.Proofs, 1)
	})
}
