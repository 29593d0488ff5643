package txs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/tensor-hq/tensor-tests-go/pkg/clients/solanaClient"
	"github.com/tensor-hq/tensor-tests-go/pkg/config"
)

const DefaultPollInterval = 400 * time.Millisecond

// ITransactionSender builds, signs, submits and confirms transactions.
type ITransactionSender interface {
	// BuildAndSendTx returns the signature once the transaction reaches the requested
	// commitment.
	BuildAndSendTx(ctx context.Context, args *BuildAndSendTxArgs) (solana.Signature, error)
}

type BuildAndSendTxArgs struct {
	Payer        solana.PrivateKey
	Ixs          []solana.Instruction
	ExtraSigners []solana.PrivateKey
	// Commitment defaults to the sender's commitment.
	Commitment config.Commitment
	// SkipPreflight lets tests observe on-chain failures instead of simulation failures.
	SkipPreflight bool
	// Debug logs the transaction's program logs after it lands.
	Debug bool
	// AddressTables turns the transaction into a v0 transaction using these lookup tables.
	AddressTables []solana.PublicKey
}

type SenderConfig struct {
	Commitment   config.Commitment
	Retry        config.RetryConfig
	PollInterval time.Duration
}

func NewSenderConfig(cfg *config.ClusterConfig) *SenderConfig {
	return &SenderConfig{
		Commitment:   cfg.Commitment,
		Retry:        cfg.Retry,
		PollInterval: DefaultPollInterval,
	}
}

type Sender struct {
	client solanaClient.IClient
	logger *zap.Logger
	config *SenderConfig
}

func NewSender(client solanaClient.IClient, cfg *SenderConfig, logger *zap.Logger) *Sender {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Commitment == "" {
		cfg.Commitment = config.DefaultCommitment
	}
	return &Sender{
		client: client,
		logger: logger,
		config: cfg,
	}
}

func (s *Sender) Client() solanaClient.IClient {
	return s.client
}

func (s *Sender) Logger() *zap.Logger {
	return s.logger
}

// BuildAndSendTx builds one transaction from args, signs it with the payer and every extra
// signer, submits it and waits for confirmation. A stale blockhash, whether reported at
// submission or detected by block height during confirmation, rebuilds the transaction
// on a fresh blockhash with bounded exponential back-off. Every other failure is logged
// with the program logs and returned without retrying.
func (s *Sender) BuildAndSendTx(ctx context.Context, args *BuildAndSendTxArgs) (solana.Signature, error) {
	if len(args.Ixs) == 0 {
		return solana.Signature{}, fmt.Errorf("no instructions to send")
	}
	commitment := args.Commitment
	if commitment == "" {
		commitment = s.config.Commitment
	}

	tables, err := s.loadAddressTables(ctx, args.AddressTables)
	if err != nil {
		return solana.Signature{}, err
	}

	attempts := 0
	var sig solana.Signature
	operation := func() error {
		attempts++
		var err error
		sig, err = s.sendOnce(ctx, args, commitment, tables)
		if err == nil {
			return nil
		}
		var stale *solanaClient.StaleBlockhashError
		if errors.As(err, &stale) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Sugar().Warnw("Stale blockhash, rebuilding transaction",
			zap.Int("attempt", attempts),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, s.newBackOff(ctx), notify); err != nil {
		s.logFailure(args.Payer.PublicKey(), err)
		var stale *solanaClient.StaleBlockhashError
		if errors.As(err, &stale) {
			return solana.Signature{}, fmt.Errorf("gave up after %d attempts: %w", attempts, err)
		}
		return solana.Signature{}, err
	}

	if args.Debug {
		logs, err := s.client.GetTransactionLogs(ctx, sig)
		if err != nil {
			s.logger.Sugar().Warnw("Failed to fetch transaction logs", zap.String("signature", sig.String()), zap.Error(err))
		} else {
			s.logger.Sugar().Infow("Transaction landed",
				zap.String("signature", sig.String()),
				zap.Strings("logs", logs),
			)
		}
	}
	return sig, nil
}

func (s *Sender) newBackOff(ctx context.Context) backoff.BackOff {
	retry := s.config.Retry
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retry.InitialBackoff
	b.MaxInterval = retry.MaxBackoff
	b.Multiplier = retry.BackoffMultiple
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	maxRetries := 0
	if retry.MaxAttempts > 1 {
		maxRetries = retry.MaxAttempts - 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx)
}

func (s *Sender) sendOnce(ctx context.Context, args *BuildAndSendTxArgs, commitment config.Commitment, tables map[solana.PublicKey]solana.PublicKeySlice) (solana.Signature, error) {
	blockhash, err := s.client.GetLatestBlockhash(ctx, commitment)
	if err != nil {
		return solana.Signature{}, err
	}

	tx, err := buildTransaction(args, blockhash.Hash, tables)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := s.client.SendTransaction(ctx, tx, solanaClient.SendOpts{
		SkipPreflight:       args.SkipPreflight,
		PreflightCommitment: commitment,
	})
	if err != nil {
		return solana.Signature{}, err
	}

	if err := s.confirm(ctx, sig, blockhash, commitment); err != nil {
		return sig, err
	}
	return sig, nil
}

func buildTransaction(args *BuildAndSendTxArgs, blockhash solana.Hash, tables map[solana.PublicKey]solana.PublicKeySlice) (*solana.Transaction, error) {
	opts := []solana.TransactionOption{solana.TransactionPayer(args.Payer.PublicKey())}
	if len(tables) > 0 {
		opts = append(opts, solana.TransactionAddressTables(tables))
	}
	tx, err := solana.NewTransaction(args.Ixs, blockhash, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	signers := make(map[solana.PublicKey]solana.PrivateKey, len(args.ExtraSigners)+1)
	signers[args.Payer.PublicKey()] = args.Payer
	for _, signer := range args.ExtraSigners {
		signers[signer.PublicKey()] = signer
	}
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if pk, ok := signers[key]; ok {
			return &pk
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}

// confirm polls until the signature reaches commitment, the cluster reports it failed, or
// the blockhash expires without the transaction landing.
func (s *Sender) confirm(ctx context.Context, sig solana.Signature, blockhash *solanaClient.Blockhash, commitment config.Commitment) error {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		status, err := s.client.GetSignatureStatus(ctx, sig)
		if err != nil {
			return err
		}
		if status != nil {
			if status.Err != nil {
				logs, logErr := s.client.GetTransactionLogs(ctx, sig)
				if logErr != nil {
					s.logger.Sugar().Warnw("Failed to fetch logs of failed transaction", zap.String("signature", sig.String()), zap.Error(logErr))
				}
				return solanaClient.NewOnChainRejection(sig, status.Err, logs)
			}
			if status.Reached(commitment) {
				return nil
			}
		} else {
			height, err := s.client.GetBlockHeight(ctx, commitment)
			if err != nil {
				return err
			}
			if height > blockhash.LastValidBlockHeight {
				return &solanaClient.StaleBlockhashError{
					Blockhash: blockhash.Hash,
					Reason:    fmt.Sprintf("block height %d passed last valid height %d before %s landed", height, blockhash.LastValidBlockHeight, sig),
				}
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", sig, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *Sender) loadAddressTables(ctx context.Context, keys []solana.PublicKey) (map[solana.PublicKey]solana.PublicKeySlice, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(keys))
	for _, key := range keys {
		addresses, err := s.client.GetAddressLookupTable(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to load lookup table %s: %w", key, err)
		}
		tables[key] = addresses
	}
	return tables, nil
}

func (s *Sender) logFailure(payer solana.PublicKey, err error) {
	fields := []zap.Field{
		zap.String("payer", payer.String()),
		zap.Error(err),
	}
	var rejection *solanaClient.OnChainRejection
	if errors.As(err, &rejection) {
		if !rejection.Signature.IsZero() {
			fields = append(fields, zap.String("signature", rejection.Signature.String()))
		}
		if code, ok := rejection.CustomCode(); ok {
			fields = append(fields, zap.Uint32("customCode", code))
		}
		fields = append(fields, zap.Strings("logs", rejection.Logs))
	}
	s.logger.Error("Failed to send transaction", fields...)
}

// Compile-time check to ensure Sender implements ITransactionSender
var _ ITransactionSender = (*Sender)(nil)
