package crossdomain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// AliasOffset is added to the address of an L1 contract when it sends a
// message to L2. Contracts on L2 see the aliased address as msg.sender.
var AliasOffset = common.HexToAddress("0x1111000000000000000000000000000000001111")

var (
	aliasOffset = new(uint256.Int).SetBytes20(AliasOffset.Bytes())
	// addressMask is 2^160-1. Masking a 256-bit value with it reduces the value mod 2^160.
	addressMask = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 160), uint256.NewInt(1))
)

// ApplyL1ToL2Alias returns the address an L1 sender takes when its message is
// executed on L2: (address + AliasOffset) mod 2^160.
func ApplyL1ToL2Alias(address common.Address) common.Address {
	v := new(uint256.Int).SetBytes20(address.Bytes())
	v.Add(v, aliasOffset)
	v.And(v, addressMask)
	return common.Address(v.Bytes20())
}

// UndoL1ToL2Alias recovers the L1 sender from an aliased L2 address:
// (address - AliasOffset) mod 2^160.
func UndoL1ToL2Alias(address common.Address) common.Address {
	v := new(uint256.Int).SetBytes20(address.Bytes())
	v.Sub(v, aliasOffset)
	v.And(v, addressMask)
	return common.Address(v.Bytes20())
}
