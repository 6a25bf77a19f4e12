package metrics

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/txmgr"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics("")
	m.RecordUp()
	m.RecordInfo("v1.0.0")
	m.RecordSubmission(txmgr.StatusConfirmed)
	m.RecordSubmission(txmgr.StatusConfirmed)
	m.RecordSubmission(txmgr.StatusIndeterminate)
	m.RecordCallValue(big.NewInt(params.Ether / 4))
	m.RecordEstimationFailure()
	m.RecordSkippedCycle("rate-not-stale")
	m.RecordNonce(7)
	m.TxConfirmed(&types.Receipt{GasUsed: 21000, BlockNumber: big.NewInt(12)})

	require.Equal(t, 1.0, testutil.ToFloat64(m.up))
	require.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("confirmed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("indeterminate")))
	require.Equal(t, 0.25, testutil.ToFloat64(m.callValue))
	require.Equal(t, 1.0, testutil.ToFloat64(m.estimationFailures))
	require.Equal(t, 7.0, testutil.ToFloat64(m.nonce))
	require.Equal(t, 21000.0, testutil.ToFloat64(m.txGasUsed))

	n, err := testutil.GatherAndCount(m.Registry(), "rp_relayer_default_submissions_total")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestNoopMetrics(t *testing.T) {
	NoopMetrics.RecordSubmission(txmgr.StatusFailed)
	require.NoError(t, NoopMetrics.StartBalanceMetrics(nil, nil, common.Address{}).Close())
}
