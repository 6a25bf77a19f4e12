package deployer

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	rpservice "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service"
	rplog "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/log"
)

// NewCommandLogger builds the logger of a deployer command and installs it as
// the global handler. Logs go to stderr so that stdout carries only results.
func NewCommandLogger(cliCtx *cli.Context) (log.Logger, error) {
	logCfg, err := rplog.ReadCLIConfig(cliCtx)
	if err != nil {
		return nil, fmt.Errorf("invalid log flags: %w", err)
	}
	if err := logCfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid log flags: %w", err)
	}
	var out io.Writer = os.Stderr
	if cliCtx.App != nil && cliCtx.App.ErrWriter != nil {
		out = cliCtx.App.ErrWriter
	}
	l := rplog.NewLogger(out, logCfg)
	rplog.SetGlobalLogHandler(l.Handler())
	rpservice.ValidateEnvVars(EnvVarPrefix, AllFlags(), l)
	return l, nil
}
