package log

import (
	"bytes"
	"encoding/json"
	"flag"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	app := cli.NewApp()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range CLIFlags("RP_TEST") {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(app, set, nil)
}

func TestReadCLIConfigDefaults(t *testing.T) {
	cfg, err := ReadCLIConfig(newContext(t))
	require.NoError(t, err)
	require.Equal(t, log.LevelInfo, cfg.Level)
	require.Equal(t, FormatText, cfg.Format)
	require.NoError(t, cfg.Check())
}

func TestReadCLIConfigOverrides(t *testing.T) {
	cfg, err := ReadCLIConfig(newContext(t, "--log.level=DEBUG", "--log.format=json", "--log.color=true"))
	require.NoError(t, err)
	require.Equal(t, log.LevelDebug, cfg.Level)
	require.Equal(t, FormatJSON, cfg.Format)
	require.True(t, cfg.Color)
}

func TestReadCLIConfigInvalid(t *testing.T) {
	_, err := ReadCLIConfig(newContext(t, "--log.level=loud"))
	require.ErrorContains(t, err, "unknown log level")

	_, err = ReadCLIConfig(newContext(t, "--log.format=yaml"))
	require.ErrorContains(t, err, "unrecognized log-format")
}

func TestJSONHandlerRendersAmounts(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, CLIConfig{Level: log.LevelInfo, Format: FormatJSON})
	cost, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	logger.Info("estimated", "cost", cost, "fee", uint256.NewInt(800))
	logger.Debug("hidden")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Equal(t, map[string]any{
		"wei": "123456789012345678901234567890",
		"eth": "123456789012.34567890123456789",
	}, out["cost"])
	require.Equal(t, "800", out["fee"])
	require.Equal(t, "estimated", out["msg"])
	require.Equal(t, "info", out["lvl"])
}

func TestLogfmtHandlerRendersWeiInEther(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, CLIConfig{Level: log.LevelInfo, Format: FormatLogFmt})
	logger.Info("funded",
		"balance", big.NewInt(1_500_000_000_000_000_000),
		"base_fee_wei", uint256.NewInt(250_000_000),
		"gas_limit", big.NewInt(21000))

	line := buf.String()
	require.True(t, strings.Contains(line, "balance.wei=1500000000000000000 balance.eth=1.5"), line)
	require.Contains(t, line, "base_fee_wei.wei=250000000 base_fee_wei.eth=0.00000000025")
	require.Contains(t, line, "gas_limit=21000")
	require.NotContains(t, line, "gas_limit.eth")
}

func TestWeiAttrNil(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, CLIConfig{Level: log.LevelInfo, Format: FormatJSON})
	logger.Info("unknown", "cost", (*big.Int)(nil))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Equal(t, "<nil>", out["cost"])
}
