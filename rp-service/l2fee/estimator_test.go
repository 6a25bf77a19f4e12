package l2fee

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/require"
)

var testBridge = common.HexToAddress("0x32400084C286CF3E17e7B677ea9583e60a000324")

func defaultParams() FeeParameters {
	return FeeParameters{
		GasPrice:          big.NewInt(100 * params.GWei),
		MaxPriorityFee:    big.NewInt(1 * params.GWei),
		GasLimit:          big.NewInt(650_000),
		GasPerPubdataByte: big.NewInt(800),
	}
}

// snapshotBridge prices a transaction like a fixed bridge state would:
// gasPrice * (l2GasLimit + gasPerPubdata * 100).
type snapshotBridge struct {
	calls []ethereum.CallMsg
	err   error
	out   []byte
}

func (b *snapshotBridge) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	b.calls = append(b.calls, call)
	if b.err != nil {
		return nil, b.err
	}
	if b.out != nil {
		return b.out, nil
	}
	var gasPrice, gasLimit, perPubdata *big.Int
	if err := l2TransactionBaseCostFunc.DecodeArgs(call.Data, &gasPrice, &gasLimit, &perPubdata); err != nil {
		return nil, err
	}
	cost := new(big.Int).Mul(perPubdata, big.NewInt(100))
	cost.Add(cost, gasLimit)
	cost.Mul(cost, gasPrice)
	return common.LeftPadBytes(cost.Bytes(), 32), nil
}

func TestEstimateCostDeterministic(t *testing.T) {
	bridge := &snapshotBridge{}
	est := NewEstimator(bridge, testBridge)

	first, err := est.EstimateCost(context.Background(), defaultParams())
	require.NoError(t, err)
	second, err := est.EstimateCost(context.Background(), defaultParams())
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.True(t, first.Sign() >= 0)
	// 100 gwei * (650000 + 80000)
	require.Equal(t, new(big.Int).Mul(big.NewInt(100*params.GWei), big.NewInt(730_000)), first)

	// no caching: both estimates hit the bridge
	require.Len(t, bridge.calls, 2)
	require.Equal(t, testBridge, *bridge.calls[0].To)
	require.Equal(t, l2TransactionBaseCostFunc.Selector[:], bridge.calls[0].Data[:4])
}

func TestEstimateCostUnavailable(t *testing.T) {
	est := NewEstimator(&snapshotBridge{err: errors.New("execution reverted")}, testBridge)
	_, err := est.EstimateCost(context.Background(), defaultParams())
	require.ErrorIs(t, err, ErrCostEstimationUnavailable)
	require.ErrorContains(t, err, "execution reverted")

	est = NewEstimator(&snapshotBridge{out: []byte{0x01}}, testBridge)
	_, err = est.EstimateCost(context.Background(), defaultParams())
	require.ErrorIs(t, err, ErrCostEstimationUnavailable)
}

func TestEstimateCostRejectsInvalidParameters(t *testing.T) {
	bridge := &snapshotBridge{}
	est := NewEstimator(bridge, testBridge)
	p := defaultParams()
	p.GasPerPubdataByte = big.NewInt(0)
	_, err := est.EstimateCost(context.Background(), p)
	require.ErrorIs(t, err, ErrInvalidFeeParameters)
	require.Empty(t, bridge.calls)
}

func TestFeeParametersCheck(t *testing.T) {
	require.NoError(t, defaultParams().Check())

	p := defaultParams()
	p.GasPrice = nil
	require.ErrorIs(t, p.Check(), ErrInvalidFeeParameters)

	p = defaultParams()
	p.GasLimit = big.NewInt(-1)
	require.ErrorIs(t, p.Check(), ErrInvalidFeeParameters)

	p = defaultParams()
	p.MaxPriorityFee = big.NewInt(101 * params.GWei)
	require.ErrorIs(t, p.Check(), ErrInvalidFeeParameters)
}

func TestStaticFeeSource(t *testing.T) {
	src := StaticFeeSource{Params: defaultParams()}
	p, err := src.FeeParameters(context.Background())
	require.NoError(t, err)
	require.Equal(t, defaultParams(), p)

	// the returned parameters do not alias the configured ones
	p.GasPrice.SetInt64(1)
	require.Equal(t, big.NewInt(100*params.GWei), src.Params.GasPrice)
}

type market struct {
	tip     *big.Int
	baseFee *big.Int
}

func (m market) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return m.tip, nil
}

func (m market) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: m.baseFee}, nil
}

func TestMarketFeeSource(t *testing.T) {
	src := MarketFeeSource{
		Backend:           market{tip: big.NewInt(params.GWei / 2), baseFee: big.NewInt(20 * params.GWei)},
		MinPriorityFee:    big.NewInt(params.GWei),
		GasLimit:          big.NewInt(650_000),
		GasPerPubdataByte: big.NewInt(800),
	}
	p, err := src.FeeParameters(context.Background())
	require.NoError(t, err)
	require.Equal(t, big.NewInt(params.GWei), p.MaxPriorityFee)
	require.Equal(t, big.NewInt(41*params.GWei), p.GasPrice)
	require.Equal(t, big.NewInt(650_000), p.GasLimit)

	src.Backend = market{tip: big.NewInt(params.GWei)}
	_, err = src.FeeParameters(context.Background())
	require.ErrorContains(t, err, "no base fee")
}
