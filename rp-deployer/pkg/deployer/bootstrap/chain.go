package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-bindings/bindings"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-chain-ops/foundry"
	rpcrypto "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/crypto"
)

const (
	MessengerContract    = "RocketZkSyncPriceMessenger"
	OracleContract       = "RocketZkSyncPriceOracle"
	RateProviderContract = "RocketBalancerRateProvider"
)

const DefaultTxTimeout = 5 * time.Minute

var (
	ErrTxFailed = errors.New("transaction failed")
	ErrNoSigner = errors.New("chain has no signer")
)

// ChainBackend is the node access a ChainDeployer needs.
type ChainBackend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// ChainDeployer deploys and calls the relay contracts on one EVM chain. It
// serves as the SourceChain on L1 and as the DestinationChain on L2. Without a
// Signer it can only read.
type ChainDeployer struct {
	Name      string
	Logger    log.Logger
	Backend   ChainBackend
	Signer    *rpcrypto.Signer
	Artifacts *foundry.ArtifactsFS
	// TxTimeout bounds the wait for each transaction to be mined.
	TxTimeout time.Duration
}

var (
	_ SourceChain       = (*ChainDeployer)(nil)
	_ DestinationChain  = (*ChainDeployer)(nil)
	_ SourceReader      = (*ChainDeployer)(nil)
	_ DestinationReader = (*ChainDeployer)(nil)
)

func (d *ChainDeployer) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if d.Signer == nil {
		return nil, ErrNoSigner
	}
	opts, err := d.Signer.TransactOpts()
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

func (d *ChainDeployer) txTimeout() time.Duration {
	if d.TxTimeout <= 0 {
		return DefaultTxTimeout
	}
	return d.TxTimeout
}

func (d *ChainDeployer) wait(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	d.Logger.Info("waiting for transaction", "chain", d.Name, "tx", tx.Hash())
	wCtx, cancel := context.WithTimeout(ctx, d.txTimeout())
	defer cancel()
	receipt, err := bind.WaitMined(wCtx, d.Backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for tx %s: %w", tx.Hash(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: tx %s reverted in block %d", ErrTxFailed, tx.Hash(), receipt.BlockNumber)
	}
	return receipt, nil
}

func (d *ChainDeployer) deploy(ctx context.Context, contract string, args ...any) (common.Address, error) {
	if d.Artifacts == nil {
		return common.Address{}, errors.New("no contract artifacts configured")
	}
	art, err := d.Artifacts.ReadContract(contract)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to read artifact of %s: %w", contract, err)
	}
	if len(art.Bytecode.Object) == 0 {
		return common.Address{}, fmt.Errorf("artifact of %s has no creation bytecode", contract)
	}
	opts, err := d.transactOpts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	addr, tx, _, err := bind.DeployContract(opts, art.ABI, art.Bytecode.Object, d.Backend, args...)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to send %s deployment: %w", contract, err)
	}
	d.Logger.Info("deploying contract", "chain", d.Name, "contract", contract, "address", addr, "tx", tx.Hash())
	receipt, err := d.wait(ctx, tx)
	if err != nil {
		return common.Address{}, err
	}
	if receipt.ContractAddress != (common.Address{}) {
		addr = receipt.ContractAddress
	}
	d.Logger.Info("deployed contract", "chain", d.Name, "contract", contract, "address", addr, "block", receipt.BlockNumber)
	return addr, nil
}

func (d *ChainDeployer) DeployMessenger(ctx context.Context, rocketStorage common.Address, zkSync common.Address) (common.Address, error) {
	return d.deploy(ctx, MessengerContract, rocketStorage, zkSync)
}

func (d *ChainDeployer) DeployOracle(ctx context.Context) (common.Address, error) {
	return d.deploy(ctx, OracleContract)
}

func (d *ChainDeployer) DeployRateProvider(ctx context.Context, oracle common.Address) (common.Address, error) {
	return d.deploy(ctx, RateProviderContract, oracle)
}

func (d *ChainDeployer) SetL2Target(ctx context.Context, messenger common.Address, oracle common.Address) error {
	contract, err := bindings.NewRocketZkSyncPriceMessenger(messenger, d.Backend)
	if err != nil {
		return err
	}
	opts, err := d.transactOpts(ctx)
	if err != nil {
		return err
	}
	tx, err := contract.UpdateL2Target(opts, oracle)
	if err != nil {
		return fmt.Errorf("failed to send updateL2Target: %w", err)
	}
	_, err = d.wait(ctx, tx)
	return err
}

func (d *ChainDeployer) SetOwner(ctx context.Context, oracle common.Address, owner common.Address) error {
	contract, err := bindings.NewRocketZkSyncPriceOracle(oracle, d.Backend)
	if err != nil {
		return err
	}
	opts, err := d.transactOpts(ctx)
	if err != nil {
		return err
	}
	tx, err := contract.SetOwner(opts, owner)
	if err != nil {
		return fmt.Errorf("failed to send setOwner: %w", err)
	}
	_, err = d.wait(ctx, tx)
	return err
}

func (d *ChainDeployer) HasCode(ctx context.Context, addr common.Address) (bool, error) {
	code, err := d.Backend.CodeAt(ctx, addr, nil)
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

func (d *ChainDeployer) L2Target(ctx context.Context, messenger common.Address) (common.Address, error) {
	contract, err := bindings.NewRocketZkSyncPriceMessengerCaller(messenger, d.Backend)
	if err != nil {
		return common.Address{}, err
	}
	return contract.L2Target(&bind.CallOpts{Context: ctx})
}

func (d *ChainDeployer) OracleOwner(ctx context.Context, oracle common.Address) (common.Address, error) {
	contract, err := bindings.NewRocketZkSyncPriceOracleCaller(oracle, d.Backend)
	if err != nil {
		return common.Address{}, err
	}
	return contract.Owner(&bind.CallOpts{Context: ctx})
}

func (d *ChainDeployer) OracleRate(ctx context.Context, oracle common.Address) (*big.Int, error) {
	contract, err := bindings.NewRocketZkSyncPriceOracleCaller(oracle, d.Backend)
	if err != nil {
		return nil, err
	}
	return contract.Rate(&bind.CallOpts{Context: ctx})
}

func (d *ChainDeployer) RateProviderOracle(ctx context.Context, rateProvider common.Address) (common.Address, error) {
	contract, err := bindings.NewRocketBalancerRateProviderCaller(rateProvider, d.Backend)
	if err != nil {
		return common.Address{}, err
	}
	return contract.Oracle(&bind.CallOpts{Context: ctx})
}

func (d *ChainDeployer) RateProviderRate(ctx context.Context, rateProvider common.Address) (*big.Int, error) {
	contract, err := bindings.NewRocketBalancerRateProviderCaller(rateProvider, d.Backend)
	if err != nil {
		return nil, err
	}
	return contract.GetRate(&bind.CallOpts{Context: ctx})
}
