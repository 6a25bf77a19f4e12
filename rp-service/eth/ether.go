package eth

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/params"
)

var weiPerEther = big.NewInt(params.Ether)

func GweiToWei(gwei float64) (*big.Int, error) {
	if math.IsNaN(gwei) || math.IsInf(gwei, 0) {
		return nil, fmt.Errorf("invalid gwei value: %v", gwei)
	}

	// convert float GWei value into integer Wei value
	wei, _ := new(big.Float).Mul(
		big.NewFloat(gwei),
		big.NewFloat(params.GWei)).
		Int(nil)

	if wei.Cmp(abi.MaxUint256) == 1 {
		return nil, errors.New("gwei value larger than max uint256")
	}
	if wei.Sign() < 0 {
		return nil, errors.New("negative gwei value")
	}

	return wei, nil
}

// FormatEther renders an amount of wei in ether units without trailing zeroes.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "<nil>"
	}
	sign := ""
	v := new(big.Int).Set(wei)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	ethers, remainder := new(big.Int).QuoRem(v, weiPerEther, new(big.Int))
	if remainder.Sign() == 0 {
		return sign + ethers.String()
	}
	suffix := strings.TrimRight(fmt.Sprintf("%018d", remainder), "0")
	return sign + ethers.String() + "." + suffix
}
