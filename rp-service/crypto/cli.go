package crypto

import (
	"strings"

	"github.com/urfave/cli/v2"

	rpservice "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service"
)

const (
	PrivateKeyFlagName = "private-key"
	MnemonicFlagName   = "mnemonic"
	HDPathFlagName     = "hd-path"
)

func flagName(chain, name string) string {
	if chain == "" {
		return name
	}
	return chain + "-" + name
}

func envName(chain, name string) string {
	if chain == "" {
		return name
	}
	return chain + "_" + name
}

// CLIFlags returns the key flags for one signer. A non-empty chain, e.g. "l1",
// namespaces the flags as --l1-private-key, --l1-mnemonic and --l1-hd-path.
func CLIFlags(envPrefix string, chain string) []cli.Flag {
	upper := strings.ToUpper(chain)
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagName(chain, PrivateKeyFlagName),
			Usage:   "The private key to use with the service. Must not be used with mnemonic.",
			EnvVars: rpservice.PrefixEnvVar(envPrefix, envName(upper, "PRIVATE_KEY")),
		},
		&cli.StringFlag{
			Name:    flagName(chain, MnemonicFlagName),
			Usage:   "The mnemonic used to derive the wallet. Must not be used with private key.",
			EnvVars: rpservice.PrefixEnvVar(envPrefix, envName(upper, "MNEMONIC")),
		},
		&cli.StringFlag{
			Name:    flagName(chain, HDPathFlagName),
			Usage:   "The HD path used to derive the wallet from the mnemonic.",
			Value:   DefaultHDPath,
			EnvVars: rpservice.PrefixEnvVar(envPrefix, envName(upper, "HD_PATH")),
		},
	}
}

func ReadCLIConfig(ctx *cli.Context, chain string) KeyConfig {
	return KeyConfig{
		PrivateKey: ctx.String(flagName(chain, PrivateKeyFlagName)),
		Mnemonic:   ctx.String(flagName(chain, MnemonicFlagName)),
		HDPath:     ctx.String(flagName(chain, HDPathFlagName)),
	}
}
