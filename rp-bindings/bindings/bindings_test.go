package bindings

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestMetaDataParses(t *testing.T) {
	messengerABI, err := RocketZkSyncPriceMessengerMetaData.GetAbi()
	require.NoError(t, err)
	require.True(t, messengerABI.Methods["submitRate"].IsPayable())
	require.Len(t, messengerABI.Constructor.Inputs, 2)

	oracleABI, err := RocketZkSyncPriceOracleMetaData.GetAbi()
	require.NoError(t, err)
	require.Empty(t, oracleABI.Constructor.Inputs)

	providerABI, err := RocketBalancerRateProviderMetaData.GetAbi()
	require.NoError(t, err)
	require.Len(t, providerABI.Constructor.Inputs, 1)
}

func TestSubmitRateCalldata(t *testing.T) {
	messengerABI, err := RocketZkSyncPriceMessengerMetaData.GetAbi()
	require.NoError(t, err)

	data, err := messengerABI.Pack("submitRate", big.NewInt(650000), big.NewInt(800))
	require.NoError(t, err)
	require.Len(t, data, 4+2*32)

	args, err := messengerABI.Methods["submitRate"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Equal(t, big.NewInt(650000), args[0])
	require.Equal(t, big.NewInt(800), args[1])
}

func TestUpdateL2TargetCalldata(t *testing.T) {
	messengerABI, err := RocketZkSyncPriceMessengerMetaData.GetAbi()
	require.NoError(t, err)

	target := common.HexToAddress("0x1234000000000000000000000000000000005678")
	data, err := messengerABI.Pack("updateL2Target", target)
	require.NoError(t, err)
	require.Equal(t, target.Bytes(), data[len(data)-20:])
}

type fixedCaller struct {
	call ethereum.CallMsg
	out  []byte
}

func (f *fixedCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fixedCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.call = call
	return f.out, nil
}

func TestRETHGetExchangeRate(t *testing.T) {
	reth := common.HexToAddress("0xae78736Cd615f374D3085123A210448E74Fc6393")
	rate := big.NewInt(1_120_000_000_000_000_000)
	caller := &fixedCaller{out: common.LeftPadBytes(rate.Bytes(), 32)}

	got, err := NewRocketTokenRETHCaller(reth, caller).GetExchangeRate(&bind.CallOpts{Context: context.Background()})
	require.NoError(t, err)
	require.Equal(t, rate, got)
	require.Equal(t, reth, *caller.call.To)
	require.Equal(t, crypto.Keccak256([]byte("getExchangeRate()"))[:4], caller.call.Data)
}
