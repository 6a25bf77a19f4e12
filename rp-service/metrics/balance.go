package metrics

import (
	"context"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"
	"github.com/prometheus/client_golang/prometheus"
)

const balanceInterval = 10 * time.Second

type BalanceGetter interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// WeiToEther approximates a wei amount as ether, for gauges only.
func WeiToEther(wei *big.Int) float64 {
	num := new(big.Rat).SetInt(wei)
	denom := big.NewRat(params.Ether, 1)
	f, _ := num.Quo(num, denom).Float64()
	return f
}

type balanceMonitor struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (b *balanceMonitor) Close() error {
	b.cancel()
	b.wg.Wait()
	return nil
}

// LaunchBalanceMetrics polls the balance of account and exports it in ether
// as <ns>_balance. Close the returned monitor to stop polling.
func LaunchBalanceMetrics(l log.Logger, r *prometheus.Registry, ns string, client BalanceGetter, account common.Address) io.Closer {
	balanceGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "balance",
		Help:      "balance (in ether) of account " + account.String(),
	})
	r.MustRegister(balanceGauge)

	ctx, cancel := context.WithCancel(context.Background())
	m := &balanceMonitor{cancel: cancel}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(balanceInterval)
		defer ticker.Stop()
		for {
			cCtx, cCancel := context.WithTimeout(ctx, 5*time.Second)
			bigBal, err := client.BalanceAt(cCtx, account, nil)
			cCancel()
			if err != nil {
				l.Warn("failed to get balance of account", "err", err, "address", account)
			} else {
				balanceGauge.Set(WeiToEther(bigBal))
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return m
}
