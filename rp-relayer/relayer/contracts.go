package relayer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-bindings/bindings"
)

type messengerStaleness struct {
	messenger *bindings.RocketZkSyncPriceMessengerCaller
}

func (m *messengerStaleness) RateStale(ctx context.Context) (bool, error) {
	return m.messenger.RateStale(&bind.CallOpts{Context: ctx})
}

type rethRates struct {
	reth *bindings.RocketTokenRETHCaller
}

func (r *rethRates) ExchangeRate(ctx context.Context) (*big.Int, error) {
	return r.reth.GetExchangeRate(&bind.CallOpts{Context: ctx})
}
