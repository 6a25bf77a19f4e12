package crypto

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrNotAuthorized = errors.New("not authorized to sign for this address")

// SignerFn signs a transaction on behalf of address.
type SignerFn func(ctx context.Context, address common.Address, tx *types.Transaction) (*types.Transaction, error)

// PrivateKeySignerFn returns a SignerFn that only signs for the address of key.
func PrivateKeySignerFn(key *ecdsa.PrivateKey, chainID *big.Int) SignerFn {
	from := crypto.PubkeyToAddress(key.PublicKey)
	signer := types.LatestSignerForChainID(chainID)
	return func(_ context.Context, address common.Address, tx *types.Transaction) (*types.Transaction, error) {
		if address != from {
			return nil, ErrNotAuthorized
		}
		return types.SignTx(tx, signer, key)
	}
}

func (s *Signer) SignerFn() SignerFn {
	return PrivateKeySignerFn(s.key, s.chainID)
}
