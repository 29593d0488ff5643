package solanaClient

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/tensor-hq/tensor-tests-go/pkg/config"
)

// IClient is the RPC boundary every helper talks to. Implementations return errors that
// are already classified: a stale blockhash surfaces as *StaleBlockhashError and a
// transaction the cluster executed and rejected as *OnChainRejection.
type IClient interface {
	// GetLatestBlockhash returns a recent blockhash and the last block height at which
	// transactions built on it are still accepted.
	GetLatestBlockhash(ctx context.Context, commitment config.Commitment) (*Blockhash, error)

	// SendTransaction submits a signed transaction and returns its signature. It does not
	// wait for confirmation.
	SendTransaction(ctx context.Context, tx *solana.Transaction, opts SendOpts) (solana.Signature, error)

	// GetSignatureStatus returns the status of a signature, or nil when the cluster has not
	// seen it yet.
	GetSignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error)

	// GetBlockHeight returns the current block height at the given commitment.
	GetBlockHeight(ctx context.Context, commitment config.Commitment) (uint64, error)

	// GetTransactionLogs returns the program log lines of a landed transaction.
	GetTransactionLogs(ctx context.Context, sig solana.Signature) ([]string, error)

	// GetAccountInfo returns ErrAccountNotFound when the account does not exist.
	GetAccountInfo(ctx context.Context, account solana.PublicKey, commitment config.Commitment) (*AccountInfo, error)

	GetBalance(ctx context.Context, account solana.PublicKey, commitment config.Commitment) (uint64, error)

	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error)

	// RequestAirdrop asks the faucet for lamports. Only local and test clusters serve it.
	RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64) (solana.Signature, error)

	// GetTokenAccountBalance returns the raw token amount held by a token account.
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment config.Commitment) (uint64, error)

	// GetAddressLookupTable returns the addresses stored in a lookup table account.
	GetAddressLookupTable(ctx context.Context, table solana.PublicKey) (solana.PublicKeySlice, error)
}

// Blockhash is a recent blockhash with its expiry height.
type Blockhash struct {
	Hash                 solana.Hash
	LastValidBlockHeight uint64
}

// SendOpts controls transaction submission.
type SendOpts struct {
	SkipPreflight       bool
	PreflightCommitment config.Commitment
}

// SignatureStatus is the cluster's view of a submitted transaction.
type SignatureStatus struct {
	Slot uint64
	// Commitment is the highest level the transaction has reached.
	Commitment config.Commitment
	// Err is the raw transaction error, nil on success.
	Err interface{}
}

// Reached reports whether the status satisfies the wanted commitment.
func (s *SignatureStatus) Reached(want config.Commitment) bool {
	return s.Commitment.Rank() >= want.Rank()
}

// AccountInfo is the subset of account state the helpers inspect.
type AccountInfo struct {
	Owner      solana.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool
}

// Compile-time check to ensure Client implements IClient
var _ IClient = (*Client)(nil)
