package relayer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-relayer/flags"
	rpservice "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/cliapp"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/eth"
	rplog "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/log"
)

func setup(cliCtx *cli.Context) (*CLIConfig, log.Logger, error) {
	if err := flags.CheckRequired(cliCtx); err != nil {
		return nil, nil, err
	}
	cfg, err := NewConfig(cliCtx)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid CLI flags: %w", err)
	}
	if err := cfg.Check(); err != nil {
		return nil, nil, fmt.Errorf("invalid CLI flags: %w", err)
	}

	l := rplog.NewLogger(os.Stdout, cfg.LogConfig)
	rplog.SetGlobalLogHandler(l.Handler())
	rpservice.ValidateEnvVars(flags.EnvVarPrefix, flags.Flags, l)
	return cfg, l, nil
}

// Main is the entrypoint into the relayer service.
func Main(version string) cliapp.LifecycleAction {
	return func(cliCtx *cli.Context, _ context.CancelCauseFunc) (cliapp.Lifecycle, error) {
		cfg, l, err := setup(cliCtx)
		if err != nil {
			return nil, err
		}
		l.Info("initializing relayer")
		return RelayerServiceFromCLIConfig(cliCtx.Context, version, cfg, l)
	}
}

// SubmitCLI runs a single relay cycle and exits.
func SubmitCLI(version string) cli.ActionFunc {
	return func(cliCtx *cli.Context) error {
		cfg, l, err := setup(cliCtx)
		if err != nil {
			return err
		}
		ctx, cancel := cliapp.WithInterruptSignals(cliCtx.Context)
		defer cancel()

		rs, err := RelayerServiceFromCLIConfig(ctx, version, cfg, l)
		if err != nil {
			return err
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			if err := rs.Stop(stopCtx); err != nil {
				l.Warn("failed to stop relayer", "err", err)
			}
		}()

		sub, err := rs.Driver().Cycle(ctx)
		if sub != nil {
			l.Info("submission result",
				"status", sub.Status,
				"tx", sub.TxHash,
				"cost", sub.Cost,
				"cost_eth", eth.FormatEther(sub.Cost))
		}
		return err
	}
}
