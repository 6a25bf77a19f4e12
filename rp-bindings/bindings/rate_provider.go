package bindings

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// RocketBalancerRateProviderMetaData contains all meta data concerning the RocketBalancerRateProvider contract.
var RocketBalancerRateProviderMetaData = &bind.MetaData{
	ABI: "[{\"type\":\"constructor\",\"inputs\":[{\"name\":\"_oracle\",\"type\":\"address\",\"internalType\":\"contractRocketZkSyncPriceOracle\"}],\"stateMutability\":\"nonpayable\"},{\"type\":\"function\",\"name\":\"getRate\",\"inputs\":[],\"outputs\":[{\"name\":\"\",\"type\":\"uint256\",\"internalType\":\"uint256\"}],\"stateMutability\":\"view\"},{\"type\":\"function\",\"name\":\"oracle\",\"inputs\":[],\"outputs\":[{\"name\":\"\",\"type\":\"address\",\"internalType\":\"contractRocketZkSyncPriceOracle\"}],\"stateMutability\":\"view\"}]",
}

// RocketBalancerRateProviderCaller is a read-only Go binding around the L2 rate provider wrapper.
type RocketBalancerRateProviderCaller struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// NewRocketBalancerRateProviderCaller creates a new read-only instance of RocketBalancerRateProvider, bound to a specific deployed contract.
func NewRocketBalancerRateProviderCaller(address common.Address, caller bind.ContractCaller) (*RocketBalancerRateProviderCaller, error) {
	parsed, err := abi.JSON(strings.NewReader(RocketBalancerRateProviderMetaData.ABI))
	if err != nil {
		return nil, err
	}
	contract := bind.NewBoundContract(address, parsed, caller, nil, nil)
	return &RocketBalancerRateProviderCaller{contract: contract}, nil
}

// GetRate is a free data retrieval call binding the contract method getRate.
//
// Solidity: function getRate() view returns(uint256)
func (_RateProvider *RocketBalancerRateProviderCaller) GetRate(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := _RateProvider.contract.Call(opts, &out, "getRate")
	if err != nil {
		return *new(*big.Int), err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// Oracle is a free data retrieval call binding the contract method oracle.
//
// Solidity: function oracle() view returns(address)
func (_RateProvider *RocketBalancerRateProviderCaller) Oracle(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	err := _RateProvider.contract.Call(opts, &out, "oracle")
	if err != nil {
		return *new(common.Address), err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}
