package txs

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"golang.org/x/sync/errgroup"

	"github.com/tensor-hq/tensor-tests-go/pkg/clients/solanaClient"
	"github.com/tensor-hq/tensor-tests-go/pkg/config"
)

const DefaultWalletSol = 1000

// CreateFundedWallet generates a keypair and funds it with sol from payer. Transfers from
// a funded payer are used instead of airdrops, which are unreliable under load.
func (s *Sender) CreateFundedWallet(ctx context.Context, payer solana.PrivateKey, sol uint64) (solana.PrivateKey, error) {
	if sol == 0 {
		sol = DefaultWalletSol
	}
	wallet, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate wallet: %w", err)
	}
	if err := s.TransferLamports(ctx, payer, wallet.PublicKey(), sol*solana.LAMPORTS_PER_SOL); err != nil {
		return nil, fmt.Errorf("failed to fund wallet %s: %w", wallet.PublicKey(), err)
	}
	return wallet, nil
}

// MakeNTraders creates n funded wallets concurrently.
func (s *Sender) MakeNTraders(ctx context.Context, payer solana.PrivateKey, n int, sol uint64) ([]solana.PrivateKey, error) {
	traders := make([]solana.PrivateKey, n)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			wallet, err := s.CreateFundedWallet(ctx, payer, sol)
			if err != nil {
				return err
			}
			traders[i] = wallet
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return traders, nil
}

// TransferLamports moves lamports from one wallet to another; from pays the fee.
func (s *Sender) TransferLamports(ctx context.Context, from solana.PrivateKey, to solana.PublicKey, lamports uint64) error {
	ix, err := system.NewTransferInstruction(lamports, from.PublicKey(), to).ValidateAndBuild()
	if err != nil {
		return fmt.Errorf("failed to build transfer: %w", err)
	}
	_, err = s.BuildAndSendTx(ctx, &BuildAndSendTxArgs{
		Payer: from,
		Ixs:   []solana.Instruction{ix},
	})
	return err
}

// Airdrop requests lamports from the faucet and waits until the airdrop is confirmed.
func (s *Sender) Airdrop(ctx context.Context, to solana.PublicKey, lamports uint64) error {
	sig, err := s.client.RequestAirdrop(ctx, to, lamports)
	if err != nil {
		return err
	}
	blockhash, err := s.client.GetLatestBlockhash(ctx, s.config.Commitment)
	if err != nil {
		return err
	}
	return s.confirm(ctx, sig, blockhash, s.config.Commitment)
}

// GetLamports returns the balance of an account, zero if it does not exist.
func GetLamports(ctx context.Context, client solanaClient.IClient, account solana.PublicKey) (uint64, error) {
	return client.GetBalance(ctx, account, config.CommitmentConfirmed)
}

// WithLamports snapshots the balances of accounts and passes them to callback, which
// typically sends a transaction and diffs against the snapshot.
func WithLamports[R any](
	ctx context.Context,
	client solanaClient.IClient,
	accounts map[string]solana.PublicKey,
	callback func(prev map[string]uint64) (R, error),
) (R, error) {
	var mu sync.Mutex
	prev := make(map[string]uint64, len(accounts))

	g, gctx := errgroup.WithContext(ctx)
	for name, key := range accounts {
		name, key := name, key
		g.Go(func() error {
			lamports, err := GetLamports(gctx, client, key)
			if err != nil {
				return fmt.Errorf("failed to get lamports of %s (%s): %w", name, key, err)
			}
			mu.Lock()
			prev[name] = lamports
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var zero R
		return zero, err
	}
	return callback(prev)
}
