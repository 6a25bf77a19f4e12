package main

import (
	"context"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-relayer/flags"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-relayer/relayer"
	rpservice "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/cliapp"
	rplog "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/log"
)

var (
	Version   = "v0.0.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	rplog.SetupDefaults()

	app := cli.NewApp()
	app.Flags = flags.Flags
	app.Version = rpservice.FormatVersion(Version, GitCommit, GitDate, "")
	app.Name = "rp-relayer"
	app.Usage = "rETH rate relayer"
	app.Description = "Service for relaying the rETH exchange rate from L1 to the zkSync price oracle"
	app.Action = cliapp.LifecycleCmd(relayer.Main(Version))
	app.Commands = []*cli.Command{
		{
			Name:   "submit",
			Usage:  "Runs a single relay cycle and exits",
			Action: relayer.SubmitCLI(Version),
		},
	}

	ctx, cancel := cliapp.WithInterruptSignals(context.Background())
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}
