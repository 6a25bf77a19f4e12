package deployer

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-chain-ops/crossdomain"
)

// AliasCLI prints the L2 alias of an L1 address, or the reverse with --undo.
// It needs no network access.
func AliasCLI(cliCtx *cli.Context) error {
	raw := cliCtx.String(AddressFlagName)
	if !common.IsHexAddress(raw) {
		return fmt.Errorf("invalid address %q", raw)
	}
	addr := common.HexToAddress(raw)
	var out common.Address
	if cliCtx.Bool(UndoFlagName) {
		out = crossdomain.UndoL1ToL2Alias(addr)
	} else {
		out = crossdomain.ApplyL1ToL2Alias(addr)
	}
	_, err := fmt.Fprintln(cliCtx.App.Writer, out.Hex())
	return err
}
