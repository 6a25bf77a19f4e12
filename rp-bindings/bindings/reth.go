package bindings

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
)

var rethGetExchangeRateFunc = w3.MustNewFunc("getExchangeRate()", "uint256")

// RocketTokenRETHCaller reads the ETH value of one rETH from the rETH token on L1.
type RocketTokenRETHCaller struct {
	address common.Address
	caller  bind.ContractCaller
}

func NewRocketTokenRETHCaller(address common.Address, caller bind.ContractCaller) *RocketTokenRETHCaller {
	return &RocketTokenRETHCaller{address: address, caller: caller}
}

// GetExchangeRate returns the ETH value of 1e18 rETH, in wei.
func (r *RocketTokenRETHCaller) GetExchangeRate(opts *bind.CallOpts) (*big.Int, error) {
	if opts == nil {
		opts = new(bind.CallOpts)
	}
	input, err := rethGetExchangeRateFunc.EncodeArgs()
	if err != nil {
		return nil, err
	}
	output, err := r.caller.CallContract(opts.Context, ethereum.CallMsg{From: opts.From, To: &r.address, Data: input}, opts.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("getExchangeRate call failed: %w", err)
	}
	var rate *big.Int
	if err := rethGetExchangeRateFunc.DecodeReturns(output, &rate); err != nil {
		return nil, fmt.Errorf("failed to decode getExchangeRate: %w", err)
	}
	return rate, nil
}
