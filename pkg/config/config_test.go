package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClusterConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *ClusterConfig)
		wantErr string
	}{
		{"Defaults are valid", func(c *ClusterConfig) {}, ""},
		{"Missing rpc url", func(c *ClusterConfig) { c.RpcUrl = "" }, "rpcUrl"},
		{"Relative rpc url", func(c *ClusterConfig) { c.RpcUrl = "localhost" }, "rpcUrl"},
		{"Unknown commitment", func(c *ClusterConfig) { c.Commitment = "recent" }, "commitment"},
		{"Negative rps", func(c *ClusterConfig) { c.RequestsPerSecond = -1 }, "requestsPerSecond"},
		{"Zero attempts", func(c *ClusterConfig) { c.Retry.MaxAttempts = 0 }, "retry.maxAttempts"},
		{"Max below initial", func(c *ClusterConfig) { c.Retry.MaxBackoff = time.Millisecond }, "retry.maxBackoff"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultClusterConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNewClusterConfigFromEnv(t *testing.T) {
	t.Run("Cluster name resolves to url", func(t *testing.T) {
		t.Setenv(EnvFixturesRpcUrl, string(ClusterName_Devnet))
		t.Setenv(EnvFixturesCommitment, "finalized")
		t.Setenv(EnvFixturesRPS, "25")

		cfg, err := NewClusterConfigFromEnv()
		require.NoError(t, err)
		require.Equal(t, "https://api.devnet.solana.com", cfg.RpcUrl)
		require.Equal(t, CommitmentFinalized, cfg.Commitment)
		require.Equal(t, 25.0, cfg.RequestsPerSecond)
	})

	t.Run("Bad rps", func(t *testing.T) {
		t.Setenv(EnvFixturesRPS, "fast")
		_, err := NewClusterConfigFromEnv()
		require.Error(t, err)
	})
}

func TestCommitmentRank(t *testing.T) {
	require.Less(t, CommitmentProcessed.Rank(), CommitmentConfirmed.Rank())
	require.Less(t, CommitmentConfirmed.Rank(), CommitmentFinalized.Rank())
	require.Equal(t, 0, Commitment("bogus").Rank())
}
