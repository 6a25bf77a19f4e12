package relayer

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-relayer/flags"
	rpservice "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/eth"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/l2fee"
	rplog "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/log"
	rpmetrics "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/metrics"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/txmgr"
)

type CLIConfig struct {
	L1EthRpc         string
	L2Rpc            string
	MessengerAddress string
	ZkSyncAddress    string
	OracleAddress    string
	RETHAddress      string

	PollInterval  time.Duration
	OnlyWhenStale bool
	EstimateL2Gas bool

	FeeSource         string
	GasPriceGwei      float64
	PriorityFeeGwei   float64
	L2GasLimit        uint64
	GasPerPubdataByte uint64
	L1GasLimit        uint64

	TxMgrConfig   txmgr.CLIConfig
	LogConfig     rplog.CLIConfig
	MetricsConfig rpmetrics.CLIConfig
}

func (c *CLIConfig) Check() error {
	if err := c.TxMgrConfig.Check(); err != nil {
		return err
	}
	if err := c.LogConfig.Check(); err != nil {
		return err
	}
	if err := c.MetricsConfig.Check(); err != nil {
		return err
	}
	if _, err := rpservice.ParseAddress(c.MessengerAddress); err != nil {
		return fmt.Errorf("messenger address: %w", err)
	}
	if _, err := rpservice.ParseAddress(c.ZkSyncAddress); err != nil {
		return fmt.Errorf("zkSync address: %w", err)
	}
	if c.RETHAddress != "" {
		if _, err := rpservice.ParseAddress(c.RETHAddress); err != nil {
			return fmt.Errorf("rETH address: %w", err)
		}
	}
	if c.EstimateL2Gas {
		if c.L2Rpc == "" {
			return errors.New("L2 RPC is required to estimate the L2 gas limit")
		}
		if _, err := rpservice.ParseAddress(c.OracleAddress); err != nil {
			return fmt.Errorf("oracle address is required to estimate the L2 gas limit: %w", err)
		}
		if c.RETHAddress == "" {
			return errors.New("rETH address is required to estimate the L2 gas limit")
		}
	}
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.FeeSource != flags.FeeSourceStatic && c.FeeSource != flags.FeeSourceMarket {
		return fmt.Errorf("unknown fee source %q", c.FeeSource)
	}
	if _, err := c.StaticFeeParameters(); err != nil {
		return err
	}
	return nil
}

// StaticFeeParameters converts the configured gwei values to fee parameters.
func (c *CLIConfig) StaticFeeParameters() (l2fee.FeeParameters, error) {
	gasPrice, err := eth.GweiToWei(c.GasPriceGwei)
	if err != nil {
		return l2fee.FeeParameters{}, fmt.Errorf("gas price: %w", err)
	}
	priorityFee, err := eth.GweiToWei(c.PriorityFeeGwei)
	if err != nil {
		return l2fee.FeeParameters{}, fmt.Errorf("priority fee: %w", err)
	}
	p := l2fee.FeeParameters{
		GasPrice:          gasPrice,
		MaxPriorityFee:    priorityFee,
		GasLimit:          new(big.Int).SetUint64(c.L2GasLimit),
		GasPerPubdataByte: new(big.Int).SetUint64(c.GasPerPubdataByte),
	}
	if err := p.Check(); err != nil {
		return l2fee.FeeParameters{}, err
	}
	return p, nil
}

func NewConfig(ctx *cli.Context) (*CLIConfig, error) {
	logConfig, err := rplog.ReadCLIConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &CLIConfig{
		// Required Flags
		L1EthRpc:         ctx.String(flags.L1EthRpcFlag.Name),
		MessengerAddress: ctx.String(flags.MessengerAddressFlag.Name),
		ZkSyncAddress:    ctx.String(flags.ZkSyncAddressFlag.Name),
		TxMgrConfig:      txmgr.ReadCLIConfig(ctx, flags.L1EthRpcFlag.Name),

		// Optional Flags
		L2Rpc:             ctx.String(flags.L2RpcFlag.Name),
		OracleAddress:     ctx.String(flags.OracleAddressFlag.Name),
		RETHAddress:       ctx.String(flags.RETHAddressFlag.Name),
		PollInterval:      ctx.Duration(flags.PollIntervalFlag.Name),
		OnlyWhenStale:     ctx.Bool(flags.OnlyWhenStaleFlag.Name),
		EstimateL2Gas:     ctx.Bool(flags.EstimateL2GasFlag.Name),
		FeeSource:         ctx.String(flags.FeeSourceFlag.Name),
		GasPriceGwei:      ctx.Float64(flags.GasPriceFlag.Name),
		PriorityFeeGwei:   ctx.Float64(flags.PriorityFeeFlag.Name),
		L2GasLimit:        ctx.Uint64(flags.L2GasLimitFlag.Name),
		GasPerPubdataByte: ctx.Uint64(flags.GasPerPubdataFlag.Name),
		L1GasLimit:        ctx.Uint64(flags.L1GasLimitFlag.Name),
		LogConfig:         logConfig,
		MetricsConfig:     rpmetrics.ReadCLIConfig(ctx),
	}, nil
}
