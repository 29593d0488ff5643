package solanaClient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/tensor-hq/tensor-tests-go/pkg/config"
)

// Test_ClientImplementsInterface verifies that Client implements IClient
func Test_ClientImplementsInterface(t *testing.T) {
	logger := zaptest.NewLogger(t)

	client, err := NewClient(config.NewDefaultClusterConfig(), logger)
	assert.NoError(t, err)
	assert.NotNil(t, client)

	var c IClient = client
	assert.NotNil(t, c)
	assert.NotNil(t, client.RPC())
}

func Test_NewClientRejectsInvalidConfig(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := NewClient(nil, logger)
	assert.Error(t, err)

	cfg := config.NewDefaultClusterConfig()
	cfg.RpcUrl = ""
	_, err = NewClient(cfg, logger)
	assert.Error(t, err)
}

func Test_RateLimiterConfiguration(t *testing.T) {
	logger := zaptest.NewLogger(t)

	cfg := config.NewDefaultClusterConfig()
	unlimited, err := NewClient(cfg, logger)
	assert.NoError(t, err)
	assert.True(t, unlimited.limiter.Limit() > 1e300)

	cfg.RequestsPerSecond = 4
	limited, err := NewClient(cfg, logger)
	assert.NoError(t, err)
	assert.Equal(t, float64(4), float64(limited.limiter.Limit()))
	assert.Equal(t, 4, limited.limiter.Burst())
}
