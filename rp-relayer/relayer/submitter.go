package relayer

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-bindings/bindings"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-relayer/metrics"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/l2fee"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/txmgr"
)

// ErrSubmissionReverted is returned when the L1 submission was included but reverted.
var ErrSubmissionReverted = errors.New("rate submission reverted on L1")

type CostEstimator interface {
	EstimateCost(ctx context.Context, params l2fee.FeeParameters) (*big.Int, error)
}

type L2GasEstimator interface {
	EstimateL2GasLimit(ctx context.Context, rate *big.Int, gasPerPubdataByte *big.Int) (*big.Int, error)
}

// Submission is the outcome of one relay attempt. It is not persisted.
type Submission struct {
	Payload *big.Int
	Fees    l2fee.FeeParameters
	Cost    *big.Int
	TxHash  common.Hash
	Nonce   uint64
	Status  txmgr.Status
	Receipt *types.Receipt
}

type SubmitterConfig struct {
	Messenger common.Address
	// L1GasLimit is the gas limit of the L1 transaction. Zero estimates it.
	L1GasLimit uint64
}

type SubmitterSetup struct {
	Log       log.Logger
	Metr      metrics.Metricer
	Cfg       SubmitterConfig
	Fees      l2fee.FeeSource
	Estimator CostEstimator
	// GasEstimator is optional. When set and a payload is given, the L2 gas
	// limit is raised to the node's estimate.
	GasEstimator L2GasEstimator
	Txmgr        txmgr.TxManager
}

// Submitter sends submitRate transactions to the messenger, paying for L2
// execution with a freshly estimated cost. It never retries.
type Submitter struct {
	SubmitterSetup
	messengerABI *abi.ABI
}

func NewSubmitter(setup SubmitterSetup) (*Submitter, error) {
	if setup.Cfg.Messenger == (common.Address{}) {
		return nil, errors.New("messenger address is required")
	}
	if setup.Metr == nil {
		setup.Metr = metrics.NoopMetrics
	}
	parsed, err := bindings.RocketZkSyncPriceMessengerMetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	return &Submitter{SubmitterSetup: setup, messengerABI: parsed}, nil
}

// Submit runs one submission: fix the fee parameters, estimate the L2 cost,
// send submitRate carrying the cost as value, and wait for L1 inclusion.
// The returned submission is non-nil and records how far it got, also on error.
func (s *Submitter) Submit(ctx context.Context, payload *big.Int) (*Submission, error) {
	sub := &Submission{Payload: payload, Status: txmgr.StatusUnsubmitted}
	if payload != nil {
		s.Metr.RecordPayload(payload)
	}

	fees, err := s.Fees.FeeParameters(ctx)
	if err != nil {
		return sub, fmt.Errorf("failed to fix fee parameters: %w", err)
	}
	if s.GasEstimator != nil && payload != nil {
		estimated, err := s.GasEstimator.EstimateL2GasLimit(ctx, payload, fees.GasPerPubdataByte)
		if err != nil {
			return sub, fmt.Errorf("failed to estimate L2 gas limit: %w", err)
		}
		fees = l2fee.WithEstimatedGasLimit(fees, estimated)
	}
	sub.Fees = fees

	cost, err := s.Estimator.EstimateCost(ctx, fees)
	if err != nil {
		s.Metr.RecordEstimationFailure()
		return sub, err
	}
	sub.Cost = cost
	s.Metr.RecordCallValue(cost)

	l := s.Log.New("gas_price", fees.GasPrice, "priority_fee", fees.MaxPriorityFee,
		"l2_gas_limit", fees.GasLimit, "gas_per_pubdata", fees.GasPerPubdataByte)
	l.Info("submitting rate", "payload", payload, "cost", cost)

	data, err := s.messengerABI.Pack("submitRate", fees.GasLimit, fees.GasPerPubdataByte)
	if err != nil {
		return sub, fmt.Errorf("failed to pack submitRate: %w", err)
	}
	receipt, err := s.Txmgr.Send(ctx, txmgr.TxCandidate{
		TxData:    data,
		To:        &s.Cfg.Messenger,
		Value:     cost,
		GasLimit:  s.Cfg.L1GasLimit,
		GasFeeCap: fees.GasPrice,
		GasTipCap: fees.MaxPriorityFee,
	})
	sub.Receipt = receipt
	sub.Status = txmgr.StatusOf(err)
	var sendErr *txmgr.SendError
	if errors.As(err, &sendErr) {
		sub.TxHash = sendErr.TxHash
		sub.Nonce = sendErr.Nonce
	} else if receipt != nil {
		sub.TxHash = receipt.TxHash
	}
	s.Metr.RecordSubmission(sub.Status)

	switch {
	case err == nil:
		l.Info("rate submitted", "tx", sub.TxHash, "block", receipt.BlockNumber, "status", sub.Status)
		return sub, nil
	case errors.Is(err, txmgr.ErrReverted):
		l.Error("rate submission reverted", "tx", sub.TxHash, "status", sub.Status)
		return sub, fmt.Errorf("%w: tx %s: %w", ErrSubmissionReverted, sub.TxHash, err)
	default:
		l.Error("rate submission failed", "tx", sub.TxHash, "status", sub.Status, "err", err)
		return sub, err
	}
}
