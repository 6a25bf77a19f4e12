package deployer

import (
	"time"

	"github.com/urfave/cli/v2"

	rpservice "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service"
	rpcrypto "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/crypto"
	rplog "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/log"
)

const EnvVarPrefix = "RP_DEPLOYER"

const (
	L1RPCURLFlagName       = "l1-rpc-url"
	L2RPCURLFlagName       = "l2-rpc-url"
	ArtifactsDirFlagName   = "artifacts-dir"
	L2ArtifactsDirFlagName = "l2-artifacts-dir"
	L1ChainIDFlagName      = "l1-chain-id"
	L2ChainIDFlagName      = "l2-chain-id"
	StateFileFlagName      = "state-file"
	RocketStorageFlagName  = "rocket-storage"
	ZkSyncFlagName         = "zksync-address"
	TxTimeoutFlagName      = "tx-timeout"
	MessengerFlagName      = "messenger"
	OracleFlagName         = "oracle"
	RateProviderFlagName   = "rate-provider"
	AddressFlagName        = "address"
	UndoFlagName           = "undo"
)

func PrefixEnvVar(name string) []string {
	return rpservice.PrefixEnvVar(EnvVarPrefix, name)
}

var (
	L1RPCURLFlag = &cli.StringFlag{
		Name:    L1RPCURLFlagName,
		Usage:   "RPC URL for the L1 chain.",
		EnvVars: PrefixEnvVar("L1_RPC_URL"),
	}
	L2RPCURLFlag = &cli.StringFlag{
		Name:    L2RPCURLFlagName,
		Usage:   "RPC URL for the L2 chain.",
		EnvVars: PrefixEnvVar("L2_RPC_URL"),
	}
	ArtifactsDirFlag = &cli.StringFlag{
		Name:    ArtifactsDirFlagName,
		Usage:   "Forge output directory holding the compiled contracts.",
		EnvVars: PrefixEnvVar("ARTIFACTS_DIR"),
		Value:   "out",
	}
	L2ArtifactsDirFlag = &cli.StringFlag{
		Name:    L2ArtifactsDirFlagName,
		Usage:   "Forge output directory for the L2 contracts (oracle, rate provider). Defaults to --" + ArtifactsDirFlagName + ". The L2 contracts are deployed with plain CREATE transactions, so the bytecode must be EVM bytecode the L2 accepts.",
		EnvVars: PrefixEnvVar("L2_ARTIFACTS_DIR"),
	}
	StateFileFlag = &cli.StringFlag{
		Name:    StateFileFlagName,
		Usage:   "File recording bootstrap progress. A rerun with the same file resumes after the last completed step.",
		EnvVars: PrefixEnvVar("STATE_FILE"),
	}
	RocketStorageFlag = &cli.StringFlag{
		Name:    RocketStorageFlagName,
		Usage:   "Address of RocketStorage on L1.",
		EnvVars: PrefixEnvVar("ROCKET_STORAGE"),
	}
	ZkSyncFlag = &cli.StringFlag{
		Name:    ZkSyncFlagName,
		Usage:   "Address of the zkSync bridge contract on L1.",
		EnvVars: PrefixEnvVar("ZKSYNC_ADDRESS"),
	}
	L1ChainIDFlag = &cli.Uint64Flag{
		Name:    L1ChainIDFlagName,
		Usage:   "Expected chain id of the L1 RPC. Zero accepts any chain.",
		EnvVars: PrefixEnvVar("L1_CHAIN_ID"),
	}
	L2ChainIDFlag = &cli.Uint64Flag{
		Name:    L2ChainIDFlagName,
		Usage:   "Expected chain id of the L2 RPC. Zero accepts any chain.",
		EnvVars: PrefixEnvVar("L2_CHAIN_ID"),
	}
	TxTimeoutFlag = &cli.DurationFlag{
		Name:    TxTimeoutFlagName,
		Usage:   "How long to wait for each bootstrap transaction to be mined.",
		EnvVars: PrefixEnvVar("TX_TIMEOUT"),
		Value:   5 * time.Minute,
	}
	MessengerFlag = &cli.StringFlag{
		Name:    MessengerFlagName,
		Usage:   "Address of the price messenger on L1.",
		EnvVars: PrefixEnvVar("MESSENGER"),
	}
	OracleFlag = &cli.StringFlag{
		Name:    OracleFlagName,
		Usage:   "Address of the price oracle on L2.",
		EnvVars: PrefixEnvVar("ORACLE"),
	}
	RateProviderFlag = &cli.StringFlag{
		Name:    RateProviderFlagName,
		Usage:   "Address of the rate provider on L2.",
		EnvVars: PrefixEnvVar("RATE_PROVIDER"),
	}
	AddressFlag = &cli.StringFlag{
		Name:     AddressFlagName,
		Usage:    "Address to translate.",
		Required: true,
	}
	UndoFlag = &cli.BoolFlag{
		Name:  UndoFlagName,
		Usage: "Recover the L1 address from an aliased L2 address.",
	}
)

var GlobalFlags = rplog.CLIFlags(EnvVarPrefix)

var BootstrapFlags = append([]cli.Flag{
	L1RPCURLFlag,
	L2RPCURLFlag,
	L1ChainIDFlag,
	L2ChainIDFlag,
	ArtifactsDirFlag,
	L2ArtifactsDirFlag,
	StateFileFlag,
	RocketStorageFlag,
	ZkSyncFlag,
	TxTimeoutFlag,
}, append(rpcrypto.CLIFlags(EnvVarPrefix, "l1"), rpcrypto.CLIFlags(EnvVarPrefix, "l2")...)...)

var VerifyFlags = []cli.Flag{
	L1RPCURLFlag,
	L2RPCURLFlag,
	StateFileFlag,
	MessengerFlag,
	OracleFlag,
	RateProviderFlag,
}

var AliasFlags = []cli.Flag{
	AddressFlag,
	UndoFlag,
}

// AllFlags returns the flags of every command.
func AllFlags() []cli.Flag {
	var out []cli.Flag
	out = append(out, GlobalFlags...)
	out = append(out, BootstrapFlags...)
	out = append(out, VerifyFlags...)
	return append(out, AliasFlags...)
}
