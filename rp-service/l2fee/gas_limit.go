package l2fee

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/lmittmann/w3"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-chain-ops/crossdomain"
)

var updateRateFunc = w3.MustNewFunc("updateRate(uint256 _newRate)", "")

type RPCCaller interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

type eip712Meta struct {
	GasPerPubdata *hexutil.Big `json:"gasPerPubdata"`
}

// l1ToL2CallRequest is the request object of zks_estimateGasL1ToL2.
type l1ToL2CallRequest struct {
	From       common.Address `json:"from"`
	To         common.Address `json:"to"`
	Data       hexutil.Bytes  `json:"data"`
	Eip712Meta eip712Meta     `json:"eip712Meta"`
}

// GasLimitEstimator asks the L2 node how much gas the oracle update needs when
// executed as a forced transaction from the messenger.
type GasLimitEstimator struct {
	client    RPCCaller
	messenger common.Address
	oracle    common.Address
}

func NewGasLimitEstimator(client RPCCaller, messenger common.Address, oracle common.Address) *GasLimitEstimator {
	return &GasLimitEstimator{client: client, messenger: messenger, oracle: oracle}
}

// UpdateRateCalldata is the L2 calldata the messenger delivers for rate.
func UpdateRateCalldata(rate *big.Int) ([]byte, error) {
	return updateRateFunc.EncodeArgs(rate)
}

// EstimateL2GasLimit estimates the L2 gas of updateRate(rate), sent by the
// aliased messenger address.
func (g *GasLimitEstimator) EstimateL2GasLimit(ctx context.Context, rate *big.Int, gasPerPubdataByte *big.Int) (*big.Int, error) {
	data, err := UpdateRateCalldata(rate)
	if err != nil {
		return nil, fmt.Errorf("failed to encode updateRate: %w", err)
	}
	req := l1ToL2CallRequest{
		From:       crossdomain.ApplyL1ToL2Alias(g.messenger),
		To:         g.oracle,
		Data:       data,
		Eip712Meta: eip712Meta{GasPerPubdata: (*hexutil.Big)(gasPerPubdataByte)},
	}
	var gas hexutil.Big
	if err := g.client.CallContext(ctx, &gas, "zks_estimateGasL1ToL2", req); err != nil {
		return nil, fmt.Errorf("zks_estimateGasL1ToL2 failed: %w", err)
	}
	if gas.ToInt().Sign() <= 0 {
		return nil, fmt.Errorf("zks_estimateGasL1ToL2 returned %v", gas.ToInt())
	}
	return gas.ToInt(), nil
}

// WithEstimatedGasLimit replaces the configured L2 gas limit with the
// estimate, keeping the configured value as a floor.
func WithEstimatedGasLimit(params FeeParameters, estimated *big.Int) FeeParameters {
	out := params.Copy()
	if estimated != nil && (out.GasLimit == nil || estimated.Cmp(out.GasLimit) > 0) {
		out.GasLimit = new(big.Int).Set(estimated)
	}
	return out
}
