package main

import (
	"os"

	"github.com/ethereum/go-ethereum/log"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-deployer/pkg/cli"
	rpservice "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service"
	rplog "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/log"
)

var (
	Version   = "v0.0.0"
	GitCommit = ""
	GitDate   = ""
)

// VersionWithMeta holds the textual version string including the metadata.
var VersionWithMeta = rpservice.FormatVersion(Version, GitCommit, GitDate, "")

func main() {
	rplog.SetupDefaults()

	app := cli.NewApp(VersionWithMeta)
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr
	if err := app.Run(os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}
