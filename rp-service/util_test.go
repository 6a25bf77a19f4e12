package rp_service

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x1111000000000000000000000000000000001111")
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0x1111000000000000000000000000000000001111"), addr)

	_, err = ParseAddress("0x1234")
	require.ErrorIs(t, err, ErrInvalidAddress)

	_, err = ParseAddress("0x0000000000000000000000000000000000000000")
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestValidateEnvVars(t *testing.T) {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "l1-eth-rpc", EnvVars: PrefixEnvVar("RP_RELAYER", "L1_ETH_RPC")},
	}
	provided := []string{"RP_RELAYER_L1_ETH_RPC=http://localhost:8545", "RP_RELAYER_L1_ETH_RCP=typo", "HOME=/root"}
	require.Equal(t, []string{"RP_RELAYER_L1_ETH_RCP"}, validateEnvVars("RP_RELAYER", provided, cliFlagsToEnvVars(flags)))
}

func TestFormatVersion(t *testing.T) {
	require.Equal(t, "v1.0.0-abcdef12-1700000000-dev", FormatVersion("v1.0.0", "abcdef1234567890", "1700000000", "dev"))
	require.Equal(t, "v1.0.0", FormatVersion("v1.0.0", "", "", ""))
}
