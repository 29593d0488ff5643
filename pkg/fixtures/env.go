// Package fixtures builds on-chain test state: funded traders, merkle trees, collections,
// compressed and programmable NFTs, whitelists, auth rule sets and the tensorswap config.
package fixtures

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/tensor-hq/tensor-tests-go/pkg/clients/solanaClient"
	"github.com/tensor-hq/tensor-tests-go/pkg/txs"
	"github.com/tensor-hq/tensor-tests-go/pkg/util"
)

// Env carries everything a fixture needs to talk to the cluster. Payer funds new wallets
// and pays fees for transactions that have no natural payer.
type Env struct {
	Sender *txs.Sender
	Client solanaClient.IClient
	Payer  solana.PrivateKey
	Logger *zap.Logger
}

func NewEnv(sender *txs.Sender, payer solana.PrivateKey) *Env {
	return &Env{
		Sender: sender,
		Client: sender.Client(),
		Payer:  payer,
		Logger: sender.Logger(),
	}
}

func (e *Env) send(ctx context.Context, payer solana.PrivateKey, ixs []solana.Instruction, extraSigners ...solana.PrivateKey) (solana.Signature, error) {
	return e.Sender.BuildAndSendTx(ctx, &txs.BuildAndSendTxArgs{
		Payer:        payer,
		Ixs:          ixs,
		ExtraSigners: dedupeSigners(extraSigners...),
	})
}

// dedupeSigners drops nil keys and repeated signers.
func dedupeSigners(signers ...solana.PrivateKey) []solana.PrivateKey {
	present := make([]solana.PrivateKey, 0, len(signers))
	for _, s := range signers {
		if len(s) > 0 {
			present = append(present, s)
		}
	}
	return util.Dedupe(present, func(s solana.PrivateKey) solana.PublicKey { return s.PublicKey() })
}
