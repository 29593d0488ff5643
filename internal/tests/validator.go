package tests

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/tensor-hq/tensor-tests-go/pkg/clients/solanaClient"
	"github.com/tensor-hq/tensor-tests-go/pkg/config"
	"github.com/tensor-hq/tensor-tests-go/pkg/fixtures"
	"github.com/tensor-hq/tensor-tests-go/pkg/logger"
	"github.com/tensor-hq/tensor-tests-go/pkg/txs"
)

const (
	EnvRunIntegration  = "FIXTURES_INTEGRATION"
	EnvStartValidator  = "FIXTURES_START_VALIDATOR"
	EnvJoinValidatorIO = "JOIN_VALIDATOR_OUTPUT"

	validatorLedgerDir = "test-ledger"
	payerAirdropSol    = 500
)

type ValidatorConfig struct {
	RpcPort   string
	LedgerDir string
	Programs  []ProgramBinary
}

// StartValidator launches solana-test-validator with the given programs preloaded.
func StartValidator(ctx context.Context, cfg *ValidatorConfig) (*exec.Cmd, error) {
	args := []string{
		"--reset",
		"--quiet",
		"--rpc-port", cfg.RpcPort,
		"--ledger", cfg.LedgerDir,
	}
	for _, p := range cfg.Programs {
		args = append(args, "--bpf-program", p.ProgramId, p.Path)
	}
	fmt.Printf("Starting solana-test-validator with args: %v\n", args)
	cmd := exec.CommandContext(ctx, "solana-test-validator", args...)
	cmd.Stderr = os.Stderr
	if os.Getenv(EnvJoinValidatorIO) == "true" {
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start solana-test-validator: %w", err)
	}
	return cmd, nil
}

// WaitForValidator polls the RPC until it hands out blockhashes.
func WaitForValidator(ctx context.Context, t *testing.T, client solanaClient.IClient) error {
	for i := 1; i < 15; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("validator did not start: %w", ctx.Err())
		case <-time.After(time.Second * time.Duration(i)):
		}
		bh, err := client.GetLatestBlockhash(ctx, config.CommitmentFinalized)
		if err != nil {
			t.Logf("Validator not ready yet, retrying... %d: %v", i, err)
			continue
		}
		t.Logf("Validator is up and running, blockhash: %s", bh.Hash)
		return nil
	}
	return fmt.Errorf("validator did not start")
}

func KillValidator(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return fmt.Errorf("validator command is not running")
	}
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to kill validator process: %w", err)
	}
	_ = cmd.Wait()
	return nil
}

// NewValidatorEnv returns a fixtures env talking to a real cluster, configured from the
// FIXTURES_* variables. The test is skipped unless FIXTURES_INTEGRATION=true. With
// FIXTURES_START_VALIDATOR=true a local validator is started and killed on cleanup.
func NewValidatorEnv(t *testing.T) *fixtures.Env {
	t.Helper()
	if os.Getenv(EnvRunIntegration) != "true" {
		t.Skipf("set %s=true to run against a validator", EnvRunIntegration)
	}

	cfg, err := config.NewClusterConfigFromEnv()
	require.NoError(t, err)

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Sync() })

	client, err := solanaClient.NewClient(cfg, l)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if os.Getenv(EnvStartValidator) == "true" {
		root := GetProjectRootPath()
		programs, err := ReadProgramBinaries(root)
		require.NoError(t, err)

		cmd, err := StartValidator(ctx, &ValidatorConfig{
			RpcPort:   "8899",
			LedgerDir: fmt.Sprintf("%s/%s", t.TempDir(), validatorLedgerDir),
			Programs:  programs,
		})
		require.NoError(t, err)
		t.Cleanup(func() {
			if err := KillValidator(cmd); err != nil {
				t.Logf("Failed to kill validator: %v", err)
			}
		})
	}
	require.NoError(t, WaitForValidator(ctx, t, client))

	sender := txs.NewSender(client, txs.NewSenderConfig(cfg), l)
	payer := solana.NewWallet().PrivateKey
	require.NoError(t, sender.Airdrop(ctx, payer.PublicKey(), payerAirdropSol*solana.LAMPORTS_PER_SOL))

	l.Sugar().Infow("Validator env ready",
		"rpc_url", cfg.RpcUrl,
		"commitment", cfg.Commitment,
		"payer", payer.PublicKey().String(),
	)
	return fixtures.NewEnv(sender, payer)
}
