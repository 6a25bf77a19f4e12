package bootstrap

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/olekukonko/tablewriter"
)

// WriteSummary renders the linkage as a table.
func WriteSummary(w io.Writer, l Linkage, l1ChainID *big.Int, l2ChainID *big.Int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Contract", "Chain", "Address"})
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")

	addr := func(a common.Address) string {
		if a == (common.Address{}) {
			return "-"
		}
		return a.Hex()
	}
	chain := func(name string, id *big.Int) string {
		if id == nil {
			return name
		}
		return name + " (" + id.String() + ")"
	}
	table.Append([]string{MessengerContract, chain("L1", l1ChainID), addr(l.Messenger)})
	table.Append([]string{OracleContract, chain("L2", l2ChainID), addr(l.Oracle)})
	table.Append([]string{"Oracle owner (aliased messenger)", chain("L2", l2ChainID), addr(l.AliasedMessenger)})
	table.Append([]string{RateProviderContract, chain("L2", l2ChainID), addr(l.RateProvider)})
	table.Render()
}
