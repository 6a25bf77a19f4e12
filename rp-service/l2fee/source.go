package l2fee

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
)

// FeeSource fixes the fee parameters of one relay cycle.
type FeeSource interface {
	FeeParameters(ctx context.Context) (FeeParameters, error)
}

// StaticFeeSource returns configured parameters.
type StaticFeeSource struct {
	Params FeeParameters
}

func (s StaticFeeSource) FeeParameters(ctx context.Context) (FeeParameters, error) {
	p := s.Params.Copy()
	if err := p.Check(); err != nil {
		return FeeParameters{}, err
	}
	return p, nil
}

type FeeMarketBackend interface {
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// MarketFeeSource derives the L1 gas price from the current fee market:
// tip + 2*baseFee, with the tip floored at MinPriorityFee. The L2 gas values
// are taken from configuration.
type MarketFeeSource struct {
	Backend           FeeMarketBackend
	MinPriorityFee    *big.Int
	GasLimit          *big.Int
	GasPerPubdataByte *big.Int
}

func (s MarketFeeSource) FeeParameters(ctx context.Context) (FeeParameters, error) {
	tip, err := s.Backend.SuggestGasTipCap(ctx)
	if err != nil {
		return FeeParameters{}, fmt.Errorf("failed to fetch gas tip cap: %w", err)
	}
	if s.MinPriorityFee != nil && tip.Cmp(s.MinPriorityFee) < 0 {
		tip = new(big.Int).Set(s.MinPriorityFee)
	}
	head, err := s.Backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return FeeParameters{}, fmt.Errorf("failed to fetch latest header: %w", err)
	}
	if head.BaseFee == nil {
		return FeeParameters{}, errors.New("latest block has no base fee")
	}
	gasPrice := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	p := FeeParameters{
		GasPrice:          gasPrice,
		MaxPriorityFee:    tip,
		GasLimit:          s.GasLimit,
		GasPerPubdataByte: s.GasPerPubdataByte,
	}.Copy()
	if err := p.Check(); err != nil {
		return FeeParameters{}, err
	}
	return p, nil
}
