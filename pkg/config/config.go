package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names read by the test harness. The helpers themselves never read
// the environment; only NewClusterConfigFromEnv does.
const (
	EnvFixturesRpcUrl     = "FIXTURES_RPC_URL"
	EnvFixturesCommitment = "FIXTURES_COMMITMENT"
	EnvFixturesRPS        = "FIXTURES_RPS"
	EnvFixturesDebug      = "FIXTURES_DEBUG"
)

type Commitment string

func (c Commitment) String() string {
	return string(c)
}

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// Rank orders commitment levels so a confirmation at a higher level satisfies a lower one.
func (c Commitment) Rank() int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	default:
		return 0
	}
}

type ClusterName string

const (
	ClusterName_Localnet ClusterName = "localnet"
	ClusterName_Devnet   ClusterName = "devnet"
	ClusterName_Testnet  ClusterName = "testnet"
)

var ClusterNameToRpcUrl = map[ClusterName]string{
	ClusterName_Localnet: "http://127.0.0.1:8899",
	ClusterName_Devnet:   "https://api.devnet.solana.com",
	ClusterName_Testnet:  "https://api.testnet.solana.com",
}

const (
	DefaultCommitment        = CommitmentConfirmed
	DefaultRequestsPerSecond = 0 // unlimited
	DefaultAirdropSol        = 1000
)

// RetryConfig configures the stale-blockhash retry loop.
type RetryConfig struct {
	MaxAttempts     int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides default retry settings
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     5,
	InitialBackoff:  100 * time.Millisecond,
	MaxBackoff:      5 * time.Second,
	BackoffMultiple: 2.0,
}

// ClusterConfig is the configuration a test suite needs to talk to a cluster.
type ClusterConfig struct {
	RpcUrl            string      `json:"rpc_url"`
	Commitment        Commitment  `json:"commitment"`
	RequestsPerSecond float64     `json:"requests_per_second"`
	DefaultAirdropSol uint64      `json:"default_airdrop_sol"`
	Retry             RetryConfig `json:"retry"`
	Debug             bool        `json:"debug"`
}

// NewDefaultClusterConfig returns a config pointed at a local test validator.
func NewDefaultClusterConfig() *ClusterConfig {
	return &ClusterConfig{
		RpcUrl:            ClusterNameToRpcUrl[ClusterName_Localnet],
		Commitment:        DefaultCommitment,
		RequestsPerSecond: DefaultRequestsPerSecond,
		DefaultAirdropSol: DefaultAirdropSol,
		Retry:             DefaultRetryConfig,
	}
}

// NewClusterConfigFromEnv overlays FIXTURES_* environment variables on the defaults.
func NewClusterConfigFromEnv() (*ClusterConfig, error) {
	cfg := NewDefaultClusterConfig()

	if v := os.Getenv(EnvFixturesRpcUrl); v != "" {
		if rpcUrl, ok := ClusterNameToRpcUrl[ClusterName(v)]; ok {
			v = rpcUrl
		}
		cfg.RpcUrl = v
	}
	if v := os.Getenv(EnvFixturesCommitment); v != "" {
		cfg.Commitment = Commitment(v)
	}
	if v := os.Getenv(EnvFixturesRPS); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", EnvFixturesRPS, v, err)
		}
		cfg.RequestsPerSecond = rps
	}
	if v := os.Getenv(EnvFixturesDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", EnvFixturesDebug, v, err)
		}
		cfg.Debug = debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ClusterConfig) Validate() error {
	var allErrors field.ErrorList
	if c.RpcUrl == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("rpcUrl"), "rpcUrl is required"))
	} else if u, err := url.Parse(c.RpcUrl); err != nil || u.Scheme == "" || u.Host == "" {
		allErrors = append(allErrors, field.Invalid(field.NewPath("rpcUrl"), c.RpcUrl, "must be an absolute URL"))
	}
	if c.Commitment.Rank() == 0 {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("commitment"), c.Commitment,
			[]string{CommitmentProcessed.String(), CommitmentConfirmed.String(), CommitmentFinalized.String()}))
	}
	if c.RequestsPerSecond < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("requestsPerSecond"), c.RequestsPerSecond, "must not be negative"))
	}
	allErrors = append(allErrors, c.Retry.validate(field.NewPath("retry"))...)
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func (r RetryConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	if r.MaxAttempts < 1 {
		allErrors = append(allErrors, field.Invalid(path.Child("maxAttempts"), r.MaxAttempts, "must be at least 1"))
	}
	if r.InitialBackoff < 0 {
		allErrors = append(allErrors, field.Invalid(path.Child("initialBackoff"), r.InitialBackoff.String(), "must not be negative"))
	}
	if r.MaxBackoff < r.InitialBackoff {
		allErrors = append(allErrors, field.Invalid(path.Child("maxBackoff"), r.MaxBackoff.String(), "must be >= initialBackoff"))
	}
	if r.BackoffMultiple < 1 {
		allErrors = append(allErrors, field.Invalid(path.Child("backoffMultiple"), r.BackoffMultiple, "must be >= 1"))
	}
	return allErrors
}
