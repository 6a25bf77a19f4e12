package txmgr

import (
	"github.com/ethereum/go-ethereum/core/types"
)

type TxMetricer interface {
	RecordNonce(nonce uint64)
	RecordTxStatus(status Status)
	TxConfirmed(receipt *types.Receipt)
}

type NoopTxMetrics struct{}

func (NoopTxMetrics) RecordNonce(uint64) {}

func (NoopTxMetrics) RecordTxStatus(Status) {}

func (NoopTxMetrics) TxConfirmed(*types.Receipt) {}

var _ TxMetricer = NoopTxMetrics{}
