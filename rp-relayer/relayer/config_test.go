package relayer

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-relayer/flags"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/l2fee"
	rplog "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/log"
	rpmetrics "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/metrics"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/txmgr"
)

func validConfig() *CLIConfig {
	txCfg := txmgr.NewCLIConfig("http://localhost:8545", txmgr.DefaultRelayerFlagValues)
	txCfg.Key.PrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	return &CLIConfig{
		L1EthRpc:          "http://localhost:8545",
		MessengerAddress:  "0x3bDC69C4E5e13E52A65f5583c23EFB9636b469d6",
		ZkSyncAddress:     "0x32400084C286CF3E17e7B677ea9583e60a000324",
		PollInterval:      time.Hour,
		FeeSource:         flags.FeeSourceStatic,
		GasPriceGwei:      100,
		PriorityFeeGwei:   1,
		L2GasLimit:        650_000,
		GasPerPubdataByte: 800,
		L1GasLimit:        267_123,
		TxMgrConfig:       txCfg,
		LogConfig:         rplog.DefaultCLIConfig(),
		MetricsConfig:     rpmetrics.DefaultCLIConfig(),
	}
}

func TestConfigCheck(t *testing.T) {
	require.NoError(t, validConfig().Check())

	tests := []struct {
		name   string
		modify func(c *CLIConfig)
		errMsg string
	}{
		{"bad messenger", func(c *CLIConfig) { c.MessengerAddress = "0x1234" }, "messenger address"},
		{"missing zksync", func(c *CLIConfig) { c.ZkSyncAddress = "" }, "zkSync address"},
		{"bad reth", func(c *CLIConfig) { c.RETHAddress = "reth" }, "rETH address"},
		{"zero poll interval", func(c *CLIConfig) { c.PollInterval = 0 }, "poll interval"},
		{"unknown fee source", func(c *CLIConfig) { c.FeeSource = "oracle" }, "unknown fee source"},
		{"priority fee above gas price", func(c *CLIConfig) { c.PriorityFeeGwei = 200 }, "exceeds gas price"},
		{"zero l2 gas limit", func(c *CLIConfig) { c.L2GasLimit = 0 }, "gas limit must be positive"},
		{"estimate without l2", func(c *CLIConfig) { c.EstimateL2Gas = true }, "L2 RPC is required"},
		{"estimate without oracle", func(c *CLIConfig) {
			c.EstimateL2Gas = true
			c.L2Rpc = "http://localhost:3050"
		}, "oracle address is required"},
		{"estimate without reth", func(c *CLIConfig) {
			c.EstimateL2Gas = true
			c.L2Rpc = "http://localhost:3050"
			c.OracleAddress = "0x0000000000000000000000000000000000000042"
		}, "rETH address is required"},
		{"no key", func(c *CLIConfig) { c.TxMgrConfig.Key.PrivateKey = "" }, "private key or a mnemonic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			require.ErrorContains(t, cfg.Check(), tt.errMsg)
		})
	}
}

func TestStaticFeeParameters(t *testing.T) {
	cfg := validConfig()
	cfg.GasPriceGwei = 0.5
	cfg.PriorityFeeGwei = 0.25

	p, err := cfg.StaticFeeParameters()
	require.NoError(t, err)
	require.Equal(t, l2fee.FeeParameters{
		GasPrice:          big.NewInt(500_000_000),
		MaxPriorityFee:    big.NewInt(250_000_000),
		GasLimit:          big.NewInt(650_000),
		GasPerPubdataByte: big.NewInt(800),
	}, p)
}
