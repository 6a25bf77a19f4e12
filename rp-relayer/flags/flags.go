package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	rpservice "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service"
	rplog "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/log"
	rpmetrics "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/metrics"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/txmgr"
)

const EnvVarPrefix = "RP_RELAYER"

const (
	FeeSourceStatic = "static"
	FeeSourceMarket = "market"
)

func prefixEnvVars(name string) []string {
	return rpservice.PrefixEnvVar(EnvVarPrefix, name)
}

var (
	// Required Flags
	L1EthRpcFlag = &cli.StringFlag{
		Name:     "l1-eth-rpc",
		Usage:    "The RPC URL for the L1 Ethereum chain",
		EnvVars:  prefixEnvVars("L1_ETH_RPC"),
		Required: true,
	}
	MessengerAddressFlag = &cli.StringFlag{
		Name:     "messenger-address",
		Usage:    "The address of the price messenger on L1",
		EnvVars:  prefixEnvVars("MESSENGER_ADDRESS"),
		Required: true,
	}
	ZkSyncAddressFlag = &cli.StringFlag{
		Name:     "zksync-address",
		Usage:    "The address of the zkSync bridge contract on L1, used for L2 cost estimation",
		EnvVars:  prefixEnvVars("ZKSYNC_ADDRESS"),
		Required: true,
	}

	// Optional Flags
	L2RpcFlag = &cli.StringFlag{
		Name:    "l2-rpc",
		Usage:   "The RPC URL for the L2 chain. Required with --estimate-l2-gas",
		EnvVars: prefixEnvVars("L2_RPC"),
	}
	OracleAddressFlag = &cli.StringFlag{
		Name:    "oracle-address",
		Usage:   "The address of the price oracle on L2. Required with --estimate-l2-gas",
		EnvVars: prefixEnvVars("ORACLE_ADDRESS"),
	}
	RETHAddressFlag = &cli.StringFlag{
		Name:    "reth-address",
		Usage:   "The address of the rETH token on L1. When set, the exchange rate is read every cycle",
		EnvVars: prefixEnvVars("RETH_ADDRESS"),
	}
	PollIntervalFlag = &cli.DurationFlag{
		Name:    "poll-interval",
		Usage:   "How frequently to run a relay cycle",
		Value:   time.Hour,
		EnvVars: prefixEnvVars("POLL_INTERVAL"),
	}
	FeeSourceFlag = &cli.StringFlag{
		Name:    "fee-source",
		Usage:   fmt.Sprintf("Where the L1 fee parameters come from: %q uses the gas flags, %q the L1 fee market", FeeSourceStatic, FeeSourceMarket),
		Value:   FeeSourceStatic,
		EnvVars: prefixEnvVars("FEE_SOURCE"),
	}
	GasPriceFlag = &cli.Float64Flag{
		Name:    "gas-price",
		Usage:   "L1 max fee per gas in gwei, also used to price L2 execution",
		Value:   100,
		EnvVars: prefixEnvVars("GAS_PRICE"),
	}
	PriorityFeeFlag = &cli.Float64Flag{
		Name:    "priority-fee",
		Usage:   "L1 max priority fee per gas in gwei. The minimum tip with the market fee source",
		Value:   1,
		EnvVars: prefixEnvVars("PRIORITY_FEE"),
	}
	L2GasLimitFlag = &cli.Uint64Flag{
		Name:    "l2-gas-limit",
		Usage:   "L2 gas limit of the forced transaction. The minimum with --estimate-l2-gas",
		Value:   650000,
		EnvVars: prefixEnvVars("L2_GAS_LIMIT"),
	}
	GasPerPubdataFlag = &cli.Uint64Flag{
		Name:    "gas-per-pubdata",
		Usage:   "L2 gas paid per byte of published data",
		Value:   800,
		EnvVars: prefixEnvVars("GAS_PER_PUBDATA"),
	}
	L1GasLimitFlag = &cli.Uint64Flag{
		Name:    "l1-gas-limit",
		Usage:   "L1 gas limit of the submission. 0 estimates it",
		Value:   267123,
		EnvVars: prefixEnvVars("L1_GAS_LIMIT"),
	}
	OnlyWhenStaleFlag = &cli.BoolFlag{
		Name:    "only-when-stale",
		Usage:   "Skip relay cycles while the messenger reports the L2 rate as current",
		EnvVars: prefixEnvVars("ONLY_WHEN_STALE"),
	}
	EstimateL2GasFlag = &cli.BoolFlag{
		Name:    "estimate-l2-gas",
		Usage:   "Estimate the L2 gas limit of the oracle update through the L2 node",
		EnvVars: prefixEnvVars("ESTIMATE_L2_GAS"),
	}
)

var requiredFlags = []cli.Flag{
	L1EthRpcFlag,
	MessengerAddressFlag,
	ZkSyncAddressFlag,
}

var optionalFlags = []cli.Flag{
	L2RpcFlag,
	OracleAddressFlag,
	RETHAddressFlag,
	PollIntervalFlag,
	FeeSourceFlag,
	GasPriceFlag,
	PriorityFeeFlag,
	L2GasLimitFlag,
	GasPerPubdataFlag,
	L1GasLimitFlag,
	OnlyWhenStaleFlag,
	EstimateL2GasFlag,
}

func init() {
	optionalFlags = append(optionalFlags, rplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, rpmetrics.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, txmgr.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

// Flags contains the list of configuration options available to the binary.
var Flags []cli.Flag

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
