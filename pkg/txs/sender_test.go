package txs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tensor-hq/tensor-tests-go/pkg/clients/solanaClient"
	"github.com/tensor-hq/tensor-tests-go/pkg/config"
	"github.com/tensor-hq/tensor-tests-go/pkg/testutil"
)

var testRetry = config.RetryConfig{
	MaxAttempts:     3,
	InitialBackoff:  time.Millisecond,
	MaxBackoff:      5 * time.Millisecond,
	BackoffMultiple: 2,
}

func newTestSender(t *testing.T) (*Sender, *testutil.FakeCluster, solana.PrivateKey) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cluster := testutil.NewFakeCluster(logger)
	sender := NewSender(cluster, &SenderConfig{
		Commitment:   config.CommitmentConfirmed,
		Retry:        testRetry,
		PollInterval: time.Millisecond,
	}, logger)

	payer := solana.NewWallet().PrivateKey
	cluster.Fund(payer.PublicKey(), 10*solana.LAMPORTS_PER_SOL)
	return sender, cluster, payer
}

func staleBlockhashRPCError() error {
	return &jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed: Blockhash not found",
		Data:    map[string]interface{}{"err": "BlockhashNotFound"},
	}
}

func transferIx(t *testing.T, from, to solana.PublicKey, lamports uint64) solana.Instruction {
	t.Helper()
	ix, err := system.NewTransferInstruction(lamports, from, to).ValidateAndBuild()
	require.NoError(t, err)
	return ix
}

func Test_BuildAndSendTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Lands and moves lamports", func(t *testing.T) {
		sender, cluster, payer := newTestSender(t)
		to := solana.NewWallet().PublicKey()

		sig, err := sender.BuildAndSendTx(ctx, &BuildAndSendTxArgs{
			Payer: payer,
			Ixs:   []solana.Instruction{transferIx(t, payer.PublicKey(), to, 1_000)},
			Debug: true,
		})
		require.NoError(t, err)
		require.False(t, sig.IsZero())

		balance, err := GetLamports(ctx, cluster, to)
		require.NoError(t, err)
		require.Equal(t, uint64(1_000), balance)

		payerBalance, err := GetLamports(ctx, cluster, payer.PublicKey())
		require.NoError(t, err)
		require.Equal(t, 10*solana.LAMPORTS_PER_SOL-1_000-testutil.LamportsPerSignature, payerBalance)
		require.Equal(t, 1, cluster.SendCount())
	})

	t.Run("Retries a stale blockhash on a fresh one", func(t *testing.T) {
		sender, cluster, payer := newTestSender(t)
		cluster.InjectSendErrors(staleBlockhashRPCError())

		_, err := sender.BuildAndSendTx(ctx, &BuildAndSendTxArgs{
			Payer: payer,
			Ixs:   []solana.Instruction{transferIx(t, payer.PublicKey(), solana.NewWallet().PublicKey(), 1)},
		})
		require.NoError(t, err)
		require.Equal(t, 2, cluster.SendCount())
		require.Equal(t, 2, cluster.BlockhashCount())
		require.Len(t, cluster.Transactions(), 1)
	})

	t.Run("Retries when the blockhash expires before landing", func(t *testing.T) {
		sender, cluster, payer := newTestSender(t)
		cluster.BlockhashValidity = 2
		cluster.DropNextSends(1)

		_, err := sender.BuildAndSendTx(ctx, &BuildAndSendTxArgs{
			Payer: payer,
			Ixs:   []solana.Instruction{transferIx(t, payer.PublicKey(), solana.NewWallet().PublicKey(), 1)},
		})
		require.NoError(t, err)
		require.Equal(t, 2, cluster.SendCount())
		require.Len(t, cluster.Transactions(), 1)
	})

	t.Run("Gives up after max attempts", func(t *testing.T) {
		sender, cluster, payer := newTestSender(t)
		cluster.InjectSendErrors(staleBlockhashRPCError(), staleBlockhashRPCError(), staleBlockhashRPCError(), staleBlockhashRPCError())

		_, err := sender.BuildAndSendTx(ctx, &BuildAndSendTxArgs{
			Payer: payer,
			Ixs:   []solana.Instruction{transferIx(t, payer.PublicKey(), solana.NewWallet().PublicKey(), 1)},
		})
		var stale *solanaClient.StaleBlockhashError
		require.ErrorAs(t, err, &stale)
		require.Equal(t, testRetry.MaxAttempts, cluster.SendCount())
	})

	t.Run("Preflight rejection is not retried", func(t *testing.T) {
		sender, cluster, payer := newTestSender(t)

		_, err := sender.BuildAndSendTx(ctx, &BuildAndSendTxArgs{
			Payer: payer,
			Ixs:   []solana.Instruction{transferIx(t, payer.PublicKey(), solana.NewWallet().PublicKey(), 100*solana.LAMPORTS_PER_SOL)},
		})
		var rejection *solanaClient.OnChainRejection
		require.ErrorAs(t, err, &rejection)
		code, ok := rejection.CustomCode()
		require.True(t, ok)
		require.Equal(t, uint32(1), code)
		require.NotEmpty(t, rejection.Logs)
		require.Equal(t, 1, cluster.SendCount())
		require.Empty(t, cluster.Transactions())
	})

	t.Run("Skip preflight surfaces the on-chain failure", func(t *testing.T) {
		sender, cluster, payer := newTestSender(t)

		_, err := sender.BuildAndSendTx(ctx, &BuildAndSendTxArgs{
			Payer:         payer,
			Ixs:           []solana.Instruction{transferIx(t, payer.PublicKey(), solana.NewWallet().PublicKey(), 100*solana.LAMPORTS_PER_SOL)},
			SkipPreflight: true,
		})
		var rejection *solanaClient.OnChainRejection
		require.ErrorAs(t, err, &rejection)
		require.False(t, rejection.Signature.IsZero())
		require.Equal(t, 0, rejection.InstructionIndex)
		require.Len(t, cluster.Transactions(), 1)

		// the fee is charged even though the transfer failed
		balance, err := GetLamports(ctx, cluster, payer.PublicKey())
		require.NoError(t, err)
		require.Equal(t, 10*solana.LAMPORTS_PER_SOL-testutil.LamportsPerSignature, balance)
	})

	t.Run("Missing extra signer", func(t *testing.T) {
		sender, cluster, payer := newTestSender(t)
		other := solana.NewWallet().PrivateKey
		cluster.Fund(other.PublicKey(), solana.LAMPORTS_PER_SOL)

		_, err := sender.BuildAndSendTx(ctx, &BuildAndSendTxArgs{
			Payer: payer,
			Ixs:   []solana.Instruction{transferIx(t, other.PublicKey(), payer.PublicKey(), 10)},
		})
		require.Error(t, err)
		require.Equal(t, 0, cluster.SendCount())

		_, err = sender.BuildAndSendTx(ctx, &BuildAndSendTxArgs{
			Payer:        payer,
			Ixs:          []solana.Instruction{transferIx(t, other.PublicKey(), payer.PublicKey(), 10)},
			ExtraSigners: []solana.PrivateKey{other},
		})
		require.NoError(t, err)
	})

	t.Run("No instructions", func(t *testing.T) {
		sender, _, payer := newTestSender(t)
		_, err := sender.BuildAndSendTx(ctx, &BuildAndSendTxArgs{Payer: payer})
		require.Error(t, err)
	})

	t.Run("Context cancelled while waiting", func(t *testing.T) {
		sender, cluster, payer := newTestSender(t)
		cluster.DropNextSends(1)
		cluster.BlockhashValidity = 1_000_000

		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err := sender.BuildAndSendTx(cctx, &BuildAndSendTxArgs{
			Payer: payer,
			Ixs:   []solana.Instruction{transferIx(t, payer.PublicKey(), solana.NewWallet().PublicKey(), 1)},
		})
		require.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}
