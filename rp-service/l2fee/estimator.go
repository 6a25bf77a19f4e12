package l2fee

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
)

// ErrCostEstimationUnavailable is returned when the bridge could not price the L2 transaction.
// There is no fallback value: a relay cycle must not proceed without a fresh estimate.
var ErrCostEstimationUnavailable = errors.New("L2 cost estimation unavailable")

var l2TransactionBaseCostFunc = w3.MustNewFunc("l2TransactionBaseCost(uint256 gasPrice, uint256 l2GasLimit, uint256 l2GasPerPubdataByteLimit)", "uint256")

type Caller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Estimator prices L2 execution through the rollup's L1 bridge contract.
type Estimator struct {
	caller Caller
	bridge common.Address
}

func NewEstimator(caller Caller, bridge common.Address) *Estimator {
	return &Estimator{caller: caller, bridge: bridge}
}

// EstimateCost returns the value in wei that an L1 transaction must carry to
// pay for L2 execution under params. Every call queries the bridge.
func (e *Estimator) EstimateCost(ctx context.Context, params FeeParameters) (*big.Int, error) {
	if err := params.Check(); err != nil {
		return nil, err
	}
	input, err := l2TransactionBaseCostFunc.EncodeArgs(params.GasPrice, params.GasLimit, params.GasPerPubdataByte)
	if err != nil {
		return nil, fmt.Errorf("failed to encode l2TransactionBaseCost call: %w", err)
	}
	output, err := e.caller.CallContract(ctx, ethereum.CallMsg{To: &e.bridge, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: call to %s failed: %w", ErrCostEstimationUnavailable, e.bridge, err)
	}
	var cost *big.Int
	if err := l2TransactionBaseCostFunc.DecodeReturns(output, &cost); err != nil {
		return nil, fmt.Errorf("%w: malformed response from %s: %w", ErrCostEstimationUnavailable, e.bridge, err)
	}
	if cost == nil || cost.Sign() < 0 {
		return nil, fmt.Errorf("%w: bridge returned %v", ErrCostEstimationUnavailable, cost)
	}
	return cost, nil
}
