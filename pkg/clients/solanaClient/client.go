package solanaClient

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tensor-hq/tensor-tests-go/pkg/config"
)

// Client is the JSON-RPC implementation of IClient.
type Client struct {
	rpc     *rpc.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a client for cfg.RpcUrl. A RequestsPerSecond of zero disables
// throttling.
func NewClient(cfg *config.ClusterConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cluster config: %w", err)
	}
	return NewClientFromRPC(rpc.New(cfg.RpcUrl), cfg.RequestsPerSecond, logger), nil
}

// NewClientFromRPC wraps an existing rpc.Client.
func NewClientFromRPC(rpcClient *rpc.Client, requestsPerSecond float64, logger *zap.Logger) *Client {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &Client{
		rpc:     rpcClient,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// RPC exposes the underlying client for calls IClient does not cover.
func (c *Client) RPC() *rpc.Client {
	return c.rpc
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func (c *Client) GetLatestBlockhash(ctx context.Context, commitment config.Commitment) (*Blockhash, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentType(commitment))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	if res == nil || res.Value == nil {
		return nil, fmt.Errorf("failed to get latest blockhash: empty response")
	}
	return &Blockhash{
		Hash:                 res.Value.Blockhash,
		LastValidBlockHeight: res.Value.LastValidBlockHeight,
	}, nil
}

func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction, opts SendOpts) (solana.Signature, error) {
	if err := c.wait(ctx); err != nil {
		return solana.Signature{}, err
	}
	preflight := opts.PreflightCommitment
	if preflight == "" {
		preflight = config.DefaultCommitment
	}
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: rpc.CommitmentType(preflight),
	})
	if err != nil {
		classified := ClassifyError(err)
		var stale *StaleBlockhashError
		if errors.As(classified, &stale) {
			stale.Blockhash = tx.Message.RecentBlockhash
		}
		return solana.Signature{}, classified
	}
	return sig, nil
}

func (c *Client) GetSignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to get signature status for %s: %w", sig, err)
	}
	if res == nil || len(res.Value) == 0 || res.Value[0] == nil {
		return nil, nil
	}
	status := res.Value[0]
	return &SignatureStatus{
		Slot:       status.Slot,
		Commitment: config.Commitment(status.ConfirmationStatus),
		Err:        status.Err,
	}, nil
}

func (c *Client) GetBlockHeight(ctx context.Context, commitment config.Commitment) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	height, err := c.rpc.GetBlockHeight(ctx, rpc.CommitmentType(commitment))
	if err != nil {
		return 0, fmt.Errorf("failed to get block height: %w", err)
	}
	return height, nil
}

func (c *Client) GetTransactionLogs(ctx context.Context, sig solana.Signature) ([]string, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	maxVersion := uint64(0)
	res, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", sig, err)
	}
	if res == nil || res.Meta == nil {
		return nil, nil
	}
	return res.Meta.LogMessages, nil
}

func (c *Client) GetAccountInfo(ctx context.Context, account solana.PublicKey, commitment config.Commitment) (*AccountInfo, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.rpc.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentType(commitment),
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
		}
		return nil, fmt.Errorf("failed to get account %s: %w", account, err)
	}
	if res == nil || res.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	return &AccountInfo{
		Owner:      res.Value.Owner,
		Lamports:   res.Value.Lamports,
		Data:       res.Value.Data.GetBinary(),
		Executable: res.Value.Executable,
	}, nil
}

func (c *Client) GetBalance(ctx context.Context, account solana.PublicKey, commitment config.Commitment) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	res, err := c.rpc.GetBalance(ctx, account, rpc.CommitmentType(commitment))
	if err != nil {
		return 0, fmt.Errorf("failed to get balance of %s: %w", account, err)
	}
	return res.Value, nil
}

func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, dataSize, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get rent exemption for %d bytes: %w", dataSize, err)
	}
	return lamports, nil
}

func (c *Client) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64) (solana.Signature, error) {
	if err := c.wait(ctx); err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.rpc.RequestAirdrop(ctx, account, lamports, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to request airdrop for %s: %w", account, err)
	}
	c.logger.Sugar().Debugw("Requested airdrop",
		"account", account.String(),
		"lamports", lamports,
		"signature", sig.String(),
	)
	return sig, nil
}

func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment config.Commitment) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	res, err := c.rpc.GetTokenAccountBalance(ctx, account, rpc.CommitmentType(commitment))
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
		}
		return 0, fmt.Errorf("failed to get token balance of %s: %w", account, err)
	}
	if res == nil || res.Value == nil {
		return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	amount, err := strconv.ParseUint(res.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token amount %q for %s: %w", res.Value.Amount, account, err)
	}
	return amount, nil
}

func (c *Client) GetAddressLookupTable(ctx context.Context, table solana.PublicKey) (solana.PublicKeySlice, error) {
	info, err := c.GetAccountInfo(ctx, table, config.CommitmentConfirmed)
	if err != nil {
		return nil, err
	}
	state, err := addresslookuptable.DecodeAddressLookupTableState(info.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode lookup table %s: %w", table, err)
	}
	return state.Addresses, nil
}
