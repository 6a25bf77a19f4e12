package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-multierror"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-chain-ops/crossdomain"
)

var ErrLinkageMismatch = errors.New("linkage mismatch")

type SourceReader interface {
	HasCode(ctx context.Context, addr common.Address) (bool, error)
	L2Target(ctx context.Context, messenger common.Address) (common.Address, error)
}

type DestinationReader interface {
	HasCode(ctx context.Context, addr common.Address) (bool, error)
	OracleOwner(ctx context.Context, oracle common.Address) (common.Address, error)
	OracleRate(ctx context.Context, oracle common.Address) (*big.Int, error)
	RateProviderOracle(ctx context.Context, rateProvider common.Address) (common.Address, error)
	RateProviderRate(ctx context.Context, rateProvider common.Address) (*big.Int, error)
}

func mismatch(what string, want, got any) error {
	return fmt.Errorf("%w: %s is %v, expected %v", ErrLinkageMismatch, what, got, want)
}

// Verify checks the deployed linkage on both chains and returns every problem
// found. The aliased messenger is recomputed from the messenger address rather
// than taken from l.
func Verify(ctx context.Context, l1 SourceReader, l2 DestinationReader, l Linkage) error {
	var result *multierror.Error
	codeCheck := func(name string, hasCode func(context.Context, common.Address) (bool, error), addr common.Address) bool {
		ok, err := hasCode(ctx, addr)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to fetch code of %s %s: %w", name, addr, err))
			return false
		}
		if !ok {
			result = multierror.Append(result, fmt.Errorf("%w: no code at %s %s", ErrLinkageMismatch, name, addr))
			return false
		}
		return true
	}

	if codeCheck("messenger", l1.HasCode, l.Messenger) {
		target, err := l1.L2Target(ctx, l.Messenger)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to read messenger L2 target: %w", err))
		} else if target != l.Oracle {
			result = multierror.Append(result, mismatch("messenger L2 target", l.Oracle, target))
		}
	}

	aliased := crossdomain.ApplyL1ToL2Alias(l.Messenger)
	if l.AliasedMessenger != (common.Address{}) && l.AliasedMessenger != aliased {
		result = multierror.Append(result, mismatch("recorded aliased messenger", aliased, l.AliasedMessenger))
	}

	oracleOK := codeCheck("oracle", l2.HasCode, l.Oracle)
	if oracleOK {
		owner, err := l2.OracleOwner(ctx, l.Oracle)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to read oracle owner: %w", err))
		} else if owner != aliased {
			result = multierror.Append(result, mismatch("oracle owner", aliased, owner))
		}
	}

	if codeCheck("rate provider", l2.HasCode, l.RateProvider) {
		oracle, err := l2.RateProviderOracle(ctx, l.RateProvider)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to read rate provider oracle: %w", err))
		} else if oracle != l.Oracle {
			result = multierror.Append(result, mismatch("rate provider oracle", l.Oracle, oracle))
		} else if oracleOK {
			if err := compareRates(ctx, l2, l); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}

	return result.ErrorOrNil()
}

func compareRates(ctx context.Context, l2 DestinationReader, l Linkage) error {
	oracleRate, err := l2.OracleRate(ctx, l.Oracle)
	if err != nil {
		return fmt.Errorf("failed to read oracle rate: %w", err)
	}
	providerRate, err := l2.RateProviderRate(ctx, l.RateProvider)
	if err != nil {
		return fmt.Errorf("failed to read rate provider rate: %w", err)
	}
	if oracleRate.Cmp(providerRate) != 0 {
		return mismatch("rate provider rate", oracleRate, providerRate)
	}
	return nil
}
