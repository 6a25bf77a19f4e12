package bindings

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// RocketZkSyncPriceMessengerMetaData contains all meta data concerning the RocketZkSyncPriceMessenger contract.
var RocketZkSyncPriceMessengerMetaData = &bind.MetaData{
	ABI: "[{\"type\":\"constructor\",\"inputs\":[{\"name\":\"_rocketStorageAddress\",\"type\":\"address\",\"internalType\":\"contractRocketStorageInterface\"},{\"name\":\"_zkSyncAddress\",\"type\":\"address\",\"internalType\":\"address\"}],\"stateMutability\":\"nonpayable\"},{\"type\":\"function\",\"name\":\"l2Target\",\"inputs\":[],\"outputs\":[{\"name\":\"\",\"type\":\"address\",\"internalType\":\"address\"}],\"stateMutability\":\"view\"},{\"type\":\"function\",\"name\":\"rateStale\",\"inputs\":[],\"outputs\":[{\"name\":\"\",\"type\":\"bool\",\"internalType\":\"bool\"}],\"stateMutability\":\"view\"},{\"type\":\"function\",\"name\":\"submitRate\",\"inputs\":[{\"name\":\"_l2GasLimit\",\"type\":\"uint256\",\"internalType\":\"uint256\"},{\"name\":\"_gasPerPubdataByte\",\"type\":\"uint256\",\"internalType\":\"uint256\"}],\"outputs\":[],\"stateMutability\":\"payable\"},{\"type\":\"function\",\"name\":\"updateL2Target\",\"inputs\":[{\"name\":\"_l2Target\",\"type\":\"address\",\"internalType\":\"address\"}],\"outputs\":[],\"stateMutability\":\"nonpayable\"}]",
}

// RocketZkSyncPriceMessenger is a Go binding around the L1 price messenger contract.
type RocketZkSyncPriceMessenger struct {
	RocketZkSyncPriceMessengerCaller     // Read-only binding to the contract
	RocketZkSyncPriceMessengerTransactor // Write-only binding to the contract
}

// RocketZkSyncPriceMessengerCaller is a read-only Go binding around the L1 price messenger contract.
type RocketZkSyncPriceMessengerCaller struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// RocketZkSyncPriceMessengerTransactor is a write-only Go binding around the L1 price messenger contract.
type RocketZkSyncPriceMessengerTransactor struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// NewRocketZkSyncPriceMessenger creates a new instance of RocketZkSyncPriceMessenger, bound to a specific deployed contract.
func NewRocketZkSyncPriceMessenger(address common.Address, backend bind.ContractBackend) (*RocketZkSyncPriceMessenger, error) {
	contract, err := bindRocketZkSyncPriceMessenger(address, backend, backend)
	if err != nil {
		return nil, err
	}
	return &RocketZkSyncPriceMessenger{
		RocketZkSyncPriceMessengerCaller:     RocketZkSyncPriceMessengerCaller{contract: contract},
		RocketZkSyncPriceMessengerTransactor: RocketZkSyncPriceMessengerTransactor{contract: contract},
	}, nil
}

// NewRocketZkSyncPriceMessengerCaller creates a new read-only instance of RocketZkSyncPriceMessenger, bound to a specific deployed contract.
func NewRocketZkSyncPriceMessengerCaller(address common.Address, caller bind.ContractCaller) (*RocketZkSyncPriceMessengerCaller, error) {
	contract, err := bindRocketZkSyncPriceMessenger(address, caller, nil)
	if err != nil {
		return nil, err
	}
	return &RocketZkSyncPriceMessengerCaller{contract: contract}, nil
}

func bindRocketZkSyncPriceMessenger(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor) (*bind.BoundContract, error) {
	parsed, err := abi.JSON(strings.NewReader(RocketZkSyncPriceMessengerMetaData.ABI))
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, parsed, caller, transactor, nil), nil
}

// L2Target is a free data retrieval call binding the contract method l2Target.
//
// Solidity: function l2Target() view returns(address)
func (_Messenger *RocketZkSyncPriceMessengerCaller) L2Target(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	err := _Messenger.contract.Call(opts, &out, "l2Target")
	if err != nil {
		return *new(common.Address), err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// RateStale is a free data retrieval call binding the contract method rateStale.
//
// Solidity: function rateStale() view returns(bool)
func (_Messenger *RocketZkSyncPriceMessengerCaller) RateStale(opts *bind.CallOpts) (bool, error) {
	var out []interface{}
	err := _Messenger.contract.Call(opts, &out, "rateStale")
	if err != nil {
		return *new(bool), err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// SubmitRate is a paid mutator transaction binding the contract method submitRate.
//
// Solidity: function submitRate(uint256 _l2GasLimit, uint256 _gasPerPubdataByte) payable returns()
func (_Messenger *RocketZkSyncPriceMessengerTransactor) SubmitRate(opts *bind.TransactOpts, _l2GasLimit *big.Int, _gasPerPubdataByte *big.Int) (*types.Transaction, error) {
	return _Messenger.contract.Transact(opts, "submitRate", _l2GasLimit, _gasPerPubdataByte)
}

// UpdateL2Target is a paid mutator transaction binding the contract method updateL2Target.
//
// Solidity: function updateL2Target(address _l2Target) returns()
func (_Messenger *RocketZkSyncPriceMessengerTransactor) UpdateL2Target(opts *bind.TransactOpts, _l2Target common.Address) (*types.Transaction, error) {
	return _Messenger.contract.Transact(opts, "updateL2Target", _l2Target)
}
