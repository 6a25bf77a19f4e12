package relayer

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-relayer/metrics"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/l2fee"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/txmgr"
)

var (
	testMessenger = common.HexToAddress("0x3bDC69C4E5e13E52A65f5583c23EFB9636b469d6")
	testSender    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

func testFees() l2fee.FeeParameters {
	return l2fee.FeeParameters{
		GasPrice:          big.NewInt(100_000_000_000),
		MaxPriorityFee:    big.NewInt(1_000_000_000),
		GasLimit:          big.NewInt(650_000),
		GasPerPubdataByte: big.NewInt(800),
	}
}

// countingEstimator prices a request as gasPrice * gasLimit and counts calls.
type countingEstimator struct {
	mu     sync.Mutex
	calls  int
	params []l2fee.FeeParameters
	err    error
}

func (e *countingEstimator) EstimateCost(ctx context.Context, params l2fee.FeeParameters) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.params = append(e.params, params)
	if e.err != nil {
		return nil, e.err
	}
	return new(big.Int).Mul(params.GasPrice, params.GasLimit), nil
}

type fixedGasEstimator struct {
	limit *big.Int
	err   error
	rates []*big.Int
}

func (g *fixedGasEstimator) EstimateL2GasLimit(ctx context.Context, rate *big.Int, gasPerPubdataByte *big.Int) (*big.Int, error) {
	g.rates = append(g.rates, rate)
	return g.limit, g.err
}

type sendResult struct {
	receipt *types.Receipt
	err     error
}

// fakeTxManager replays queued send results and records every candidate.
type fakeTxManager struct {
	mu         sync.Mutex
	candidates []txmgr.TxCandidate
	results    []sendResult

	checkStatus  txmgr.Status
	checkReceipt *types.Receipt
	checkErr     error
	checks       []common.Hash
}

func (m *fakeTxManager) queue(receipt *types.Receipt, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, sendResult{receipt: receipt, err: err})
}

func (m *fakeTxManager) Send(ctx context.Context, candidate txmgr.TxCandidate) (*types.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates = append(m.candidates, candidate)
	if len(m.results) == 0 {
		return nil, errors.New("unexpected send")
	}
	r := m.results[0]
	m.results = m.results[1:]
	return r.receipt, r.err
}

func (m *fakeTxManager) CheckTx(ctx context.Context, txHash common.Hash, nonce uint64) (txmgr.Status, *types.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks = append(m.checks, txHash)
	return m.checkStatus, m.checkReceipt, m.checkErr
}

func (m *fakeTxManager) From() common.Address { return testSender }

func (m *fakeTxManager) BlockNumber(ctx context.Context) (uint64, error) { return 1, nil }

func (m *fakeTxManager) Close() {}

func (m *fakeTxManager) sent() []txmgr.TxCandidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]txmgr.TxCandidate(nil), m.candidates...)
}

func confirmedReceipt(hash common.Hash) *types.Receipt {
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      hash,
		BlockNumber: big.NewInt(100),
	}
}

// recordingMetrics counts what the relayer records on top of the no-op metrics.
type recordingMetrics struct {
	metrics.Metricer

	mu                 sync.Mutex
	submissions        []txmgr.Status
	skipped            []string
	estimationFailures int
	callValues         []*big.Int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{Metricer: metrics.NoopMetrics}
}

func (r *recordingMetrics) RecordSubmission(status txmgr.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, status)
}

func (r *recordingMetrics) RecordSkippedCycle(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped = append(r.skipped, reason)
}

func (r *recordingMetrics) RecordEstimationFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.estimationFailures++
}

func (r *recordingMetrics) RecordCallValue(cost *big.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callValues = append(r.callValues, cost)
}

type fakeStaleness struct {
	stale bool
	err   error
	calls int
}

func (f *fakeStaleness) RateStale(ctx context.Context) (bool, error) {
	f.calls++
	return f.stale, f.err
}

type fakeRates struct {
	rate *big.Int
	err  error
}

func (f *fakeRates) ExchangeRate(ctx context.Context) (*big.Int, error) {
	return f.rate, f.err
}
