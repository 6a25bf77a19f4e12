package cli

import (
	"github.com/urfave/cli/v2"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-deployer/pkg/deployer"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-deployer/pkg/deployer/bootstrap"
)

// NewApp creates and configures a new CLI application
func NewApp(versionWithMeta string) *cli.App {
	app := cli.NewApp()
	app.Version = versionWithMeta
	app.Name = "rp-deployer"
	app.Usage = "Tool to deploy and link the rETH price messenger and oracle."
	app.Flags = deployer.GlobalFlags
	app.Commands = []*cli.Command{
		{
			Name:   "bootstrap",
			Usage:  "deploys the messenger on L1, the oracle and rate provider on L2, and links them",
			Flags:  deployer.BootstrapFlags,
			Action: bootstrap.BootstrapCLI,
		},
		{
			Name:   "verify",
			Usage:  "verifies that a deployed messenger, oracle and rate provider are linked",
			Flags:  deployer.VerifyFlags,
			Action: bootstrap.VerifyCLI,
		},
		{
			Name:   "alias",
			Usage:  "computes the L2 alias of an L1 address offline",
			Flags:  deployer.AliasFlags,
			Action: deployer.AliasCLI,
		},
	}
	return app
}
