package fixtures

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tensor-hq/tensor-tests-go/pkg/programs/tswap"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/whitelist"
)

func Test_InitTSwap(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEnv(t)
	cosigner := fundedWallet(t, e)
	owner := fundedWallet(t, e)

	tswapPda, err := e.InitTSwap(ctx, cosigner, owner)
	require.NoError(t, err)
	expected, _, err := tswap.FindTSwapPda()
	require.NoError(t, err)
	require.Equal(t, expected, tswapPda)

	authPda, _, err := whitelist.FindAuthorityPda()
	require.NoError(t, err)

	t.Run("Idempotent for the same keys", func(t *testing.T) {
		again, err := e.InitWLAuthority(ctx, cosigner, owner)
		require.NoError(t, err)
		require.Equal(t, authPda, again)
		_, err = e.InitTSwap(ctx, cosigner, owner)
		require.NoError(t, err)
	})

	t.Run("Another owner is refused", func(t *testing.T) {
		other := fundedWallet(t, e)
		_, err := e.InitTSwap(ctx, cosigner, other)
		require.Error(t, err)
		require.True(t, IsProgramError(err, ErrAnchorHasOne))
	})
}
