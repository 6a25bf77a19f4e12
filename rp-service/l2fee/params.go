package l2fee

import (
	"errors"
	"fmt"
	"math/big"
)

var ErrInvalidFeeParameters = errors.New("invalid fee parameters")

// FeeParameters are fixed once per relay cycle. GasPrice is used both for the
// L2 cost estimate and as the maxFeePerGas of the L1 transaction, so that the
// L1 transaction pays for L2 execution at the price the estimate assumed.
type FeeParameters struct {
	// GasPrice is the L1 max fee per gas, in wei.
	GasPrice *big.Int
	// MaxPriorityFee is the L1 max priority fee per gas, in wei.
	MaxPriorityFee *big.Int
	// GasLimit is the L2 gas limit of the forced transaction.
	GasLimit *big.Int
	// GasPerPubdataByte is the L2 gas paid per byte of published data.
	GasPerPubdataByte *big.Int
}

func (p FeeParameters) Check() error {
	fields := []struct {
		name string
		v    *big.Int
	}{
		{"gas price", p.GasPrice},
		{"max priority fee", p.MaxPriorityFee},
		{"gas limit", p.GasLimit},
		{"gas per pubdata byte", p.GasPerPubdataByte},
	}
	for _, f := range fields {
		if f.v == nil || f.v.Sign() <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidFeeParameters, f.name, f.v)
		}
	}
	if p.MaxPriorityFee.Cmp(p.GasPrice) > 0 {
		return fmt.Errorf("%w: max priority fee %v exceeds gas price %v", ErrInvalidFeeParameters, p.MaxPriorityFee, p.GasPrice)
	}
	return nil
}

// Copy returns a deep copy, so a cycle's parameters cannot be changed by a later cycle.
func (p FeeParameters) Copy() FeeParameters {
	cp := func(v *big.Int) *big.Int {
		if v == nil {
			return nil
		}
		return new(big.Int).Set(v)
	}
	return FeeParameters{
		GasPrice:          cp(p.GasPrice),
		MaxPriorityFee:    cp(p.MaxPriorityFee),
		GasLimit:          cp(p.GasLimit),
		GasPerPubdataByte: cp(p.GasPerPubdataByte),
	}
}
