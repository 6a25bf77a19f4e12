package metrics

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	rpmetrics "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/metrics"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/txmgr"
)

const Namespace = "rp_relayer"

var _ rpmetrics.RegistryMetricer = (*Metrics)(nil)

type Metricer interface {
	RecordInfo(version string)
	RecordUp()

	txmgr.TxMetricer

	StartBalanceMetrics(l log.Logger, client rpmetrics.BalanceGetter, account common.Address) io.Closer

	RecordSubmission(status txmgr.Status)
	RecordCallValue(cost *big.Int)
	RecordPayload(payload *big.Int)
	RecordEstimationFailure()
	RecordSkippedCycle(reason string)
}

type Metrics struct {
	ns       string
	registry *prometheus.Registry

	info               prometheus.GaugeVec
	up                 prometheus.Gauge
	submissions        prometheus.CounterVec
	skipped            prometheus.CounterVec
	callValue          prometheus.Gauge
	payload            prometheus.Gauge
	estimationFailures prometheus.Counter
	txStatus           prometheus.CounterVec
	nonce              prometheus.Gauge
	txGasUsed          prometheus.Gauge
	txBlock            prometheus.Gauge
}

var _ Metricer = (*Metrics)(nil)

func NewMetrics(procName string) *Metrics {
	if procName == "" {
		procName = "default"
	}
	ns := Namespace + "_" + procName

	registry := rpmetrics.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		ns:       ns,
		registry: registry,

		info: *factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "info",
			Help:      "Information about the relayer",
		}, []string{"version"}),
		up: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "up",
			Help:      "1 if the rp-relayer has finished starting up",
		}),
		submissions: *factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "submissions_total",
			Help:      "Rate submissions by final status",
		}, []string{"status"}),
		skipped: *factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "skipped_cycles_total",
			Help:      "Relay cycles that did not submit, by reason",
		}, []string{"reason"}),
		callValue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "call_value_eth",
			Help:      "L2 execution cost attached to the last submission, in ether",
		}),
		payload: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "payload_rate",
			Help:      "Last relayed rETH exchange rate, in ether",
		}),
		estimationFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "cost_estimation_failures_total",
			Help:      "Failed L2 cost estimations",
		}),
		txStatus: *factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "txmgr",
			Name:      "tx_status_total",
			Help:      "Transaction status transitions",
		}, []string{"status"}),
		nonce: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "txmgr",
			Name:      "current_nonce",
			Help:      "Current nonce of the sender",
		}),
		txGasUsed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "txmgr",
			Name:      "tx_gas_used",
			Help:      "Gas used by the last confirmed transaction",
		}),
		txBlock: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "txmgr",
			Name:      "tx_block",
			Help:      "Block number of the last confirmed transaction",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) StartBalanceMetrics(l log.Logger, client rpmetrics.BalanceGetter, account common.Address) io.Closer {
	return rpmetrics.LaunchBalanceMetrics(l, m.registry, m.ns, client, account)
}

func (m *Metrics) RecordInfo(version string) {
	m.info.WithLabelValues(version).Set(1)
}

func (m *Metrics) RecordUp() {
	m.up.Set(1)
}

func (m *Metrics) RecordSubmission(status txmgr.Status) {
	m.submissions.WithLabelValues(status.String()).Inc()
}

func (m *Metrics) RecordCallValue(cost *big.Int) {
	m.callValue.Set(rpmetrics.WeiToEther(cost))
}

func (m *Metrics) RecordPayload(payload *big.Int) {
	m.payload.Set(rpmetrics.WeiToEther(payload))
}

func (m *Metrics) RecordEstimationFailure() {
	m.estimationFailures.Inc()
}

func (m *Metrics) RecordSkippedCycle(reason string) {
	m.skipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordNonce(nonce uint64) {
	m.nonce.Set(float64(nonce))
}

func (m *Metrics) RecordTxStatus(status txmgr.Status) {
	m.txStatus.WithLabelValues(status.String()).Inc()
}

func (m *Metrics) TxConfirmed(receipt *types.Receipt) {
	m.txGasUsed.Set(float64(receipt.GasUsed))
	if receipt.BlockNumber != nil {
		m.txBlock.Set(float64(receipt.BlockNumber.Uint64()))
	}
}

type noopMetrics struct {
	txmgr.NoopTxMetrics
}

var NoopMetrics Metricer = new(noopMetrics)

func (*noopMetrics) RecordInfo(version string) {}
func (*noopMetrics) RecordUp()                 {}

func (*noopMetrics) StartBalanceMetrics(l log.Logger, client rpmetrics.BalanceGetter, account common.Address) io.Closer {
	return nopCloser{}
}

func (*noopMetrics) RecordSubmission(status txmgr.Status) {}
func (*noopMetrics) RecordCallValue(cost *big.Int)        {}
func (*noopMetrics) RecordPayload(payload *big.Int)       {}
func (*noopMetrics) RecordEstimationFailure()             {}
func (*noopMetrics) RecordSkippedCycle(reason string)     {}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
