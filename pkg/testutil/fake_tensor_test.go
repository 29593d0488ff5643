package testutil

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tensor-hq/tensor-tests-go/pkg/clients/solanaClient"
	"github.com/tensor-hq/tensor-tests-go/pkg/config"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/tswap"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/whitelist"
)

func Test_FakeWhitelistProgram(t *testing.T) {
	ctx := context.Background()
	f := NewFakeCluster(zaptest.NewLogger(t))
	f.RegisterTensorPrograms()

	owner := solana.NewWallet().PrivateKey
	cosigner := solana.NewWallet().PrivateKey
	f.Fund(owner.PublicKey(), solana.LAMPORTS_PER_SOL)
	f.Fund(cosigner.PublicKey(), solana.LAMPORTS_PER_SOL)

	send := func(ix solana.Instruction, signers ...solana.PrivateKey) error {
		_, err := f.SendTransaction(ctx, signedTx(t, f, []solana.Instruction{ix}, signers...), solanaClient.SendOpts{})
		return err
	}

	id, err := whitelist.UUIDToBuffer(whitelist.GenWhitelistUUID())
	require.NoError(t, err)
	root := [32]byte{9}
	wlIx, wlPda, err := whitelist.NewInitUpdateWhitelistInstruction(cosigner.PublicKey(), whitelist.InitUpdateWhitelistArgs{UUID: id, RootHash: &root})
	require.NoError(t, err)

	t.Run("whitelist needs an authority", func(t *testing.T) {
		requireCustomCode(t, send(wlIx, cosigner), errCodeAccountNotInitialized)
	})

	authIx, authPda, err := whitelist.NewInitUpdateAuthorityInstruction(
		whitelist.InitUpdateAuthorityAccounts{Cosigner: cosigner.PublicKey(), Owner: owner.PublicKey()},
		whitelist.InitUpdateAuthorityArgs{},
	)
	require.NoError(t, err)
	require.NoError(t, send(authIx, owner, cosigner))

	info, err := f.GetAccountInfo(ctx, authPda, config.CommitmentConfirmed)
	require.NoError(t, err)
	auth, err := whitelist.DecodeAuthority(info.Data)
	require.NoError(t, err)
	require.Equal(t, cosigner.PublicKey(), auth.Cosigner)
	require.Equal(t, owner.PublicKey(), auth.Owner)

	t.Run("authority update checks the stored signers", func(t *testing.T) {
		intruder := solana.NewWallet().PrivateKey
		f.Fund(intruder.PublicKey(), solana.LAMPORTS_PER_SOL)
		ix, _, err := whitelist.NewInitUpdateAuthorityInstruction(
			whitelist.InitUpdateAuthorityAccounts{Cosigner: intruder.PublicKey(), Owner: intruder.PublicKey()},
			whitelist.InitUpdateAuthorityArgs{},
		)
		require.NoError(t, err)
		requireCustomCode(t, send(ix, intruder), errCodeHasOne)
	})

	require.NoError(t, send(wlIx, cosigner))
	info, err = f.GetAccountInfo(ctx, wlPda, config.CommitmentConfirmed)
	require.NoError(t, err)
	wl, err := whitelist.DecodeWhitelist(info.Data)
	require.NoError(t, err)
	require.Equal(t, whitelist.CurrentWhitelistVersion, wl.Version)
	require.True(t, wl.Verified)
	require.Equal(t, root, wl.RootHash)
	require.Equal(t, id, wl.UUID)
}

func Test_FakeTSwapProgram(t *testing.T) {
	ctx := context.Background()
	f := NewFakeCluster(zaptest.NewLogger(t))
	f.RegisterTensorPrograms()

	owner := solana.NewWallet().PrivateKey
	cosigner := solana.NewWallet().PrivateKey
	f.Fund(owner.PublicKey(), solana.LAMPORTS_PER_SOL)

	ix, tswapPda, err := tswap.NewInitUpdateTSwapInstruction(
		tswap.InitUpdateTSwapAccounts{Owner: owner.PublicKey(), NewOwner: owner.PublicKey(), Cosigner: cosigner.PublicKey()},
		tswap.Config{FeeBps: tswap.TakerFeeBps},
	)
	require.NoError(t, err)
	_, err = f.SendTransaction(ctx, signedTx(t, f, []solana.Instruction{ix}, owner, cosigner), solanaClient.SendOpts{})
	require.NoError(t, err)

	info, err := f.GetAccountInfo(ctx, tswapPda, config.CommitmentConfirmed)
	require.NoError(t, err)
	acc, err := tswap.DecodeTSwap(info.Data)
	require.NoError(t, err)
	require.Equal(t, tswap.CurrentTSwapVersion, acc.Version)
	require.Equal(t, owner.PublicKey(), acc.Owner)
	require.Equal(t, cosigner.PublicKey(), acc.Cosigner)
	require.Equal(t, tswapPda, acc.FeeVault)
	require.Equal(t, tswap.TakerFeeBps, acc.Config.FeeBps)

	other := solana.NewWallet().PrivateKey
	f.Fund(other.PublicKey(), solana.LAMPORTS_PER_SOL)
	ix, _, err = tswap.NewInitUpdateTSwapInstruction(
		tswap.InitUpdateTSwapAccounts{Owner: other.PublicKey(), NewOwner: other.PublicKey(), Cosigner: cosigner.PublicKey()},
		tswap.Config{FeeBps: 0},
	)
	require.NoError(t, err)
	_, err = f.SendTransaction(ctx, signedTx(t, f, []solana.Instruction{ix}, other, cosigner), solanaClient.SendOpts{})
	requireCustomCode(t, err, errCodeHasOne)
}
