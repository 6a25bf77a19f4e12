package metrics

import (
	"context"
	"flag"
	"io"
	"math/big"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/testlog"
)

func TestCLIConfig(t *testing.T) {
	app := cli.NewApp()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range CLIFlags("RP_TEST") {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse([]string{"--metrics.enabled", "--metrics.port=9999"}))
	cfg := ReadCLIConfig(cli.NewContext(app, set, nil))
	require.True(t, cfg.Enabled)
	require.Equal(t, "0.0.0.0", cfg.ListenAddr)
	require.Equal(t, 9999, cfg.ListenPort)
	require.NoError(t, cfg.Check())

	cfg.ListenPort = 70000
	require.ErrorIs(t, cfg.Check(), ErrInvalidPort)
	cfg.Enabled = false
	require.NoError(t, cfg.Check())
}

func TestServer(t *testing.T) {
	registry := NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rp_test", Name: "ticks"})
	registry.MustRegister(counter)
	counter.Inc()

	srv, err := StartServer(registry, "127.0.0.1", 0)
	require.NoError(t, err)

	resp, err := http.Get("http://" + srv.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.True(t, strings.Contains(string(body), "rp_test_ticks 1"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
}

type staticBalance struct {
	wei *big.Int
}

func (s staticBalance) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return s.wei, nil
}

func TestBalanceMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	twoEther := new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18))
	m := LaunchBalanceMetrics(testlog.Logger(t, log.LevelInfo), registry, "rp_test", staticBalance{wei: twoEther}, common.Address{1})
	require.Eventually(t, func() bool {
		count, err := testutil.GatherAndCount(registry, "rp_test_balance")
		if err != nil || count != 1 {
			return false
		}
		families, err := registry.Gather()
		return err == nil && families[0].GetMetric()[0].GetGauge().GetValue() == 2
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, m.Close())
}
