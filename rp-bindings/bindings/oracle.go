package bindings

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// RocketZkSyncPriceOracleMetaData contains all meta data concerning the RocketZkSyncPriceOracle contract.
var RocketZkSyncPriceOracleMetaData = &bind.MetaData{
	ABI: "[{\"type\":\"constructor\",\"inputs\":[],\"stateMutability\":\"nonpayable\"},{\"type\":\"function\",\"name\":\"lastUpdated\",\"inputs\":[],\"outputs\":[{\"name\":\"\",\"type\":\"uint256\",\"internalType\":\"uint256\"}],\"stateMutability\":\"view\"},{\"type\":\"function\",\"name\":\"owner\",\"inputs\":[],\"outputs\":[{\"name\":\"\",\"type\":\"address\",\"internalType\":\"address\"}],\"stateMutability\":\"view\"},{\"type\":\"function\",\"name\":\"rate\",\"inputs\":[],\"outputs\":[{\"name\":\"\",\"type\":\"uint256\",\"internalType\":\"uint256\"}],\"stateMutability\":\"view\"},{\"type\":\"function\",\"name\":\"setOwner\",\"inputs\":[{\"name\":\"_newOwner\",\"type\":\"address\",\"internalType\":\"address\"}],\"outputs\":[],\"stateMutability\":\"nonpayable\"},{\"type\":\"function\",\"name\":\"updateRate\",\"inputs\":[{\"name\":\"_newRate\",\"type\":\"uint256\",\"internalType\":\"uint256\"}],\"outputs\":[],\"stateMutability\":\"nonpayable\"},{\"type\":\"event\",\"name\":\"RateUpdated\",\"inputs\":[{\"name\":\"rate\",\"type\":\"uint256\",\"indexed\":false,\"internalType\":\"uint256\"}],\"anonymous\":false}]",
}

// RocketZkSyncPriceOracle is a Go binding around the L2 price oracle contract.
type RocketZkSyncPriceOracle struct {
	RocketZkSyncPriceOracleCaller     // Read-only binding to the contract
	RocketZkSyncPriceOracleTransactor // Write-only binding to the contract
}

// RocketZkSyncPriceOracleCaller is a read-only Go binding around the L2 price oracle contract.
type RocketZkSyncPriceOracleCaller struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// RocketZkSyncPriceOracleTransactor is a write-only Go binding around the L2 price oracle contract.
type RocketZkSyncPriceOracleTransactor struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// NewRocketZkSyncPriceOracle creates a new instance of RocketZkSyncPriceOracle, bound to a specific deployed contract.
func NewRocketZkSyncPriceOracle(address common.Address, backend bind.ContractBackend) (*RocketZkSyncPriceOracle, error) {
	contract, err := bindRocketZkSyncPriceOracle(address, backend, backend)
	if err != nil {
		return nil, err
	}
	return &RocketZkSyncPriceOracle{
		RocketZkSyncPriceOracleCaller:     RocketZkSyncPriceOracleCaller{contract: contract},
		RocketZkSyncPriceOracleTransactor: RocketZkSyncPriceOracleTransactor{contract: contract},
	}, nil
}

// NewRocketZkSyncPriceOracleCaller creates a new read-only instance of RocketZkSyncPriceOracle, bound to a specific deployed contract.
func NewRocketZkSyncPriceOracleCaller(address common.Address, caller bind.ContractCaller) (*RocketZkSyncPriceOracleCaller, error) {
	contract, err := bindRocketZkSyncPriceOracle(address, caller, nil)
	if err != nil {
		return nil, err
	}
	return &RocketZkSyncPriceOracleCaller{contract: contract}, nil
}

func bindRocketZkSyncPriceOracle(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor) (*bind.BoundContract, error) {
	parsed, err := abi.JSON(strings.NewReader(RocketZkSyncPriceOracleMetaData.ABI))
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, parsed, caller, transactor, nil), nil
}

// Owner is a free data retrieval call binding the contract method owner.
//
// Solidity: function owner() view returns(address)
func (_Oracle *RocketZkSyncPriceOracleCaller) Owner(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	err := _Oracle.contract.Call(opts, &out, "owner")
	if err != nil {
		return *new(common.Address), err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// Rate is a free data retrieval call binding the contract method rate.
//
// Solidity: function rate() view returns(uint256)
func (_Oracle *RocketZkSyncPriceOracleCaller) Rate(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := _Oracle.contract.Call(opts, &out, "rate")
	if err != nil {
		return *new(*big.Int), err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// LastUpdated is a free data retrieval call binding the contract method lastUpdated.
//
// Solidity: function lastUpdated() view returns(uint256)
func (_Oracle *RocketZkSyncPriceOracleCaller) LastUpdated(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := _Oracle.contract.Call(opts, &out, "lastUpdated")
	if err != nil {
		return *new(*big.Int), err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// SetOwner is a paid mutator transaction binding the contract method setOwner.
//
// Solidity: function setOwner(address _newOwner) returns()
func (_Oracle *RocketZkSyncPriceOracleTransactor) SetOwner(opts *bind.TransactOpts, _newOwner common.Address) (*types.Transaction, error) {
	return _Oracle.contract.Transact(opts, "setOwner", _newOwner)
}

// UpdateRate is a paid mutator transaction binding the contract method updateRate.
//
// Solidity: function updateRate(uint256 _newRate) returns()
func (_Oracle *RocketZkSyncPriceOracleTransactor) UpdateRate(opts *bind.TransactOpts, _newRate *big.Int) (*types.Transaction, error) {
	return _Oracle.contract.Transact(opts, "updateRate", _newRate)
}
