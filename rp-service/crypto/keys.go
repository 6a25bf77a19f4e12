package crypto

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/base/go-bip39"
	hdwallet "github.com/ethereum-optimism/go-ethereum-hdwallet"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultHDPath is the first account of the standard Ethereum derivation path.
const DefaultHDPath = "m/44'/60'/0'/0/0"

var (
	ErrNoKey        = errors.New("either a private key or a mnemonic must be set")
	ErrAmbiguousKey = errors.New("only one of a private key or a mnemonic may be set")
)

// KeyConfig describes where a signing key comes from.
type KeyConfig struct {
	PrivateKey string
	Mnemonic   string
	HDPath     string
}

func (c KeyConfig) Check() error {
	switch {
	case c.PrivateKey == "" && c.Mnemonic == "":
		return ErrNoKey
	case c.PrivateKey != "" && c.Mnemonic != "":
		return ErrAmbiguousKey
	}
	if c.Mnemonic != "" {
		if _, err := accounts.ParseDerivationPath(c.hdPath()); err != nil {
			return fmt.Errorf("invalid hd path %q: %w", c.hdPath(), err)
		}
	}
	return nil
}

func (c KeyConfig) hdPath() string {
	if c.HDPath == "" {
		return DefaultHDPath
	}
	return c.HDPath
}

// Key loads the configured private key, deriving it from the mnemonic when one is set.
func (c KeyConfig) Key() (*ecdsa.PrivateKey, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}
	if c.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(c.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		return key, nil
	}
	return DeriveKey(c.Mnemonic, c.hdPath())
}

// DeriveKey derives the key at hdPath from a BIP-39 mnemonic.
func DeriveKey(mnemonic string, hdPath string) (*ecdsa.PrivateKey, error) {
	seed, err := bip39.NewSeedWithErrorChecking(strings.TrimSpace(mnemonic), "")
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	w, err := hdwallet.NewFromSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	account := accounts.Account{URL: accounts.URL{Path: hdPath}}
	priv, err := w.PrivateKey(account)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key of path %s: %w", hdPath, err)
	}
	return priv, nil
}

// Signer holds a loaded key together with the chain it signs for.
type Signer struct {
	key     *ecdsa.PrivateKey
	chainID *big.Int
}

func NewSigner(key *ecdsa.PrivateKey, chainID *big.Int) *Signer {
	return &Signer{key: key, chainID: new(big.Int).Set(chainID)}
}

func (s *Signer) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *Signer) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// TransactOpts returns fresh transact options for contract bindings.
func (s *Signer) TransactOpts() (*bind.TransactOpts, error) {
	return bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
}
