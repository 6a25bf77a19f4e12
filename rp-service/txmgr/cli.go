package txmgr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	rpservice "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service"
	rpcrypto "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/crypto"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/dial"
)

const (
	NumConfirmationsFlagName     = "num-confirmations"
	NetworkTimeoutFlagName       = "network-timeout"
	ReceiptQueryIntervalFlagName = "txmgr.receipt-query-interval"
	ConfirmationTimeoutFlagName  = "txmgr.confirmation-timeout"
)

type DefaultFlagValues struct {
	NumConfirmations     uint64
	NetworkTimeout       time.Duration
	ReceiptQueryInterval time.Duration
	ConfirmationTimeout  time.Duration
}

var DefaultRelayerFlagValues = DefaultFlagValues{
	NumConfirmations:     uint64(1),
	NetworkTimeout:       10 * time.Second,
	ReceiptQueryInterval: 12 * time.Second,
	ConfirmationTimeout:  10 * time.Minute,
}

func CLIFlags(envPrefix string) []cli.Flag {
	return CLIFlagsWithDefaults(envPrefix, DefaultRelayerFlagValues)
}

func CLIFlagsWithDefaults(envPrefix string, defaults DefaultFlagValues) []cli.Flag {
	prefixEnvVars := func(name string) []string {
		return rpservice.PrefixEnvVar(envPrefix, name)
	}
	return append(rpcrypto.CLIFlags(envPrefix, ""),
		&cli.Uint64Flag{
			Name:    NumConfirmationsFlagName,
			Usage:   "Number of confirmations which we will wait after sending a transaction",
			Value:   defaults.NumConfirmations,
			EnvVars: prefixEnvVars("NUM_CONFIRMATIONS"),
		},
		&cli.DurationFlag{
			Name:    NetworkTimeoutFlagName,
			Usage:   "Timeout for all network operations",
			Value:   defaults.NetworkTimeout,
			EnvVars: prefixEnvVars("NETWORK_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:    ReceiptQueryIntervalFlagName,
			Usage:   "Frequency to poll for receipts",
			Value:   defaults.ReceiptQueryInterval,
			EnvVars: prefixEnvVars("TXMGR_RECEIPT_QUERY_INTERVAL"),
		},
		&cli.DurationFlag{
			Name:    ConfirmationTimeoutFlagName,
			Usage:   "How long to wait for a broadcast transaction to confirm before reporting it as indeterminate. 0 waits indefinitely.",
			Value:   defaults.ConfirmationTimeout,
			EnvVars: prefixEnvVars("TXMGR_CONFIRMATION_TIMEOUT"),
		},
	)
}

type CLIConfig struct {
	L1RPCURL             string
	Key                  rpcrypto.KeyConfig
	NumConfirmations     uint64
	NetworkTimeout       time.Duration
	ReceiptQueryInterval time.Duration
	ConfirmationTimeout  time.Duration
}

func NewCLIConfig(l1RPCURL string, defaults DefaultFlagValues) CLIConfig {
	return CLIConfig{
		L1RPCURL:             l1RPCURL,
		NumConfirmations:     defaults.NumConfirmations,
		NetworkTimeout:       defaults.NetworkTimeout,
		ReceiptQueryInterval: defaults.ReceiptQueryInterval,
		ConfirmationTimeout:  defaults.ConfirmationTimeout,
	}
}

func (m CLIConfig) Check() error {
	if m.L1RPCURL == "" {
		return errors.New("must provide a L1 RPC url")
	}
	if m.NumConfirmations == 0 {
		return errors.New("NumConfirmations must not be 0")
	}
	if m.NetworkTimeout == 0 {
		return errors.New("must provide NetworkTimeout")
	}
	if m.ReceiptQueryInterval == 0 {
		return errors.New("must provide ReceiptQueryInterval")
	}
	if m.ConfirmationTimeout < 0 {
		return errors.New("ConfirmationTimeout must not be negative")
	}
	if err := m.Key.Check(); err != nil {
		return err
	}
	return nil
}

// ReadCLIConfig reads the transaction manager flags. The L1 RPC is read from
// l1RPCFlagName so that it is shared with the rest of the service.
func ReadCLIConfig(ctx *cli.Context, l1RPCFlagName string) CLIConfig {
	return CLIConfig{
		L1RPCURL:             ctx.String(l1RPCFlagName),
		Key:                  rpcrypto.ReadCLIConfig(ctx, ""),
		NumConfirmations:     ctx.Uint64(NumConfirmationsFlagName),
		NetworkTimeout:       ctx.Duration(NetworkTimeoutFlagName),
		ReceiptQueryInterval: ctx.Duration(ReceiptQueryIntervalFlagName),
		ConfirmationTimeout:  ctx.Duration(ConfirmationTimeoutFlagName),
	}
}

// NewConfig dials L1, loads the signing key and returns the transaction manager config.
func NewConfig(ctx context.Context, cfg CLIConfig, l log.Logger) (*Config, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	l1, err := dial.DialEthClientWithTimeout(ctx, dial.DefaultDialTimeout, l, cfg.L1RPCURL)
	if err != nil {
		return nil, fmt.Errorf("could not dial eth client: %w", err)
	}

	cCtx, cancel := context.WithTimeout(ctx, cfg.NetworkTimeout)
	defer cancel()
	chainID, err := l1.ChainID(cCtx)
	if err != nil {
		l1.Close()
		return nil, fmt.Errorf("could not dial fetch L1 chain ID: %w", err)
	}

	key, err := cfg.Key.Key()
	if err != nil {
		l1.Close()
		return nil, fmt.Errorf("could not load signer: %w", err)
	}
	signer := rpcrypto.NewSigner(key, chainID)

	return &Config{
		Backend:              l1,
		ChainID:              chainID,
		NumConfirmations:     cfg.NumConfirmations,
		NetworkTimeout:       cfg.NetworkTimeout,
		ReceiptQueryInterval: cfg.ReceiptQueryInterval,
		ConfirmationTimeout:  cfg.ConfirmationTimeout,
		Signer:               signer.SignerFn(),
		From:                 signer.Address(),
	}, nil
}
