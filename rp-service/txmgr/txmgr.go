package txmgr

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	rpcrypto "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/crypto"
)

// ETHBackend is the set of methods that the transaction manager uses to
// interact with an L1 node.
type ETHBackend interface {
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// TxCandidate is a transaction to be sent. Nil fee caps are filled in from the
// fee market; a zero gas limit is estimated.
type TxCandidate struct {
	TxData []byte
	To     *common.Address
	Value  *big.Int
	// GasLimit is the L1 gas limit of the transaction.
	GasLimit uint64
	// GasFeeCap is the maxFeePerGas of the transaction.
	GasFeeCap *big.Int
	// GasTipCap is the maxPriorityFeePerGas of the transaction.
	GasTipCap *big.Int
}

// TxManager sends transactions for a single account and waits for their confirmation.
type TxManager interface {
	// Send signs, broadcasts and confirms the candidate. It blocks until the
	// transaction is confirmed, reverted, or the confirmation wait times out.
	// Every error after signing is a *SendError carrying the tx hash.
	Send(ctx context.Context, candidate TxCandidate) (*types.Receipt, error)
	// CheckTx resolves a transaction that an earlier Send left indeterminate.
	CheckTx(ctx context.Context, txHash common.Hash, nonce uint64) (Status, *types.Receipt, error)
	From() common.Address
	BlockNumber(ctx context.Context) (uint64, error)
	Close()
}

// Config houses parameters for altering the behavior of a SimpleTxManager.
type Config struct {
	Backend ETHBackend

	ChainID *big.Int

	// NumConfirmations specifies how many blocks are need to consider a
	// transaction confirmed.
	NumConfirmations uint64

	// NetworkTimeout is the allowed duration for a single network request.
	NetworkTimeout time.Duration

	// ReceiptQueryInterval is the interval at which the tx manager will query
	// the backend to check for confirmations after a tx has been broadcast.
	ReceiptQueryInterval time.Duration

	// ConfirmationTimeout bounds the wait for confirmation after broadcast.
	// When it elapses the send ends as indeterminate. Zero waits until the
	// caller's context ends.
	ConfirmationTimeout time.Duration

	// Signer signs transactions for From.
	Signer rpcrypto.SignerFn
	From   common.Address
}

func (m *Config) Check() error {
	if m.Backend == nil {
		return errors.New("must provide the Backend")
	}
	if m.NumConfirmations == 0 {
		return errors.New("NumConfirmations must not be 0")
	}
	if m.NetworkTimeout == 0 {
		return errors.New("must provide NetworkTimeout")
	}
	if m.ReceiptQueryInterval == 0 {
		return errors.New("must provide ReceiptQueryInterval")
	}
	if m.Signer == nil {
		return errors.New("must provide the Signer")
	}
	if m.ChainID == nil {
		return errors.New("must provide the ChainID")
	}
	return nil
}

// SimpleTxManager is an implementation of TxManager that sends one transaction
// at a time per account and never resubmits.
type SimpleTxManager struct {
	cfg     *Config
	name    string
	l       log.Logger
	metr    TxMetricer
	backend ETHBackend

	// senderLock serializes sends of this account across managers.
	senderLock *sync.Mutex
	closed     atomic.Bool
}

var _ TxManager = (*SimpleTxManager)(nil)

// NewSimpleTxManagerFromConfig initializes a new SimpleTxManager with the passed Config.
func NewSimpleTxManagerFromConfig(name string, l log.Logger, m TxMetricer, conf *Config) (*SimpleTxManager, error) {
	if err := conf.Check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if m == nil {
		m = NoopTxMetrics{}
	}
	return &SimpleTxManager{
		cfg:        conf,
		name:       name,
		l:          l.New("service", name),
		metr:       m,
		backend:    conf.Backend,
		senderLock: senderLocks.get(conf.From),
	}, nil
}

func (m *SimpleTxManager) From() common.Address {
	return m.cfg.From
}

func (m *SimpleTxManager) BlockNumber(ctx context.Context) (uint64, error) {
	return m.backend.BlockNumber(ctx)
}

// Close stops accepting new sends. A send in progress runs to completion.
func (m *SimpleTxManager) Close() {
	m.closed.Store(true)
}

func (m *SimpleTxManager) Send(ctx context.Context, candidate TxCandidate) (*types.Receipt, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	m.senderLock.Lock()
	defer m.senderLock.Unlock()

	tx, err := m.prepare(ctx, candidate)
	if err != nil {
		m.metr.RecordTxStatus(StatusUnsubmitted)
		return nil, err
	}
	l := m.l.New("tx", tx.Hash(), "nonce", tx.Nonce())

	cCtx, cancel := context.WithTimeout(ctx, m.cfg.NetworkTimeout)
	err = m.backend.SendTransaction(cCtx, tx)
	cancel()
	if err != nil {
		status, cause := classifyBroadcastError(err)
		l.Warn("failed to broadcast transaction", "status", status, "err", err)
		m.metr.RecordTxStatus(status)
		return nil, &SendError{Status: status, TxHash: tx.Hash(), Nonce: tx.Nonce(), Err: cause}
	}
	m.metr.RecordTxStatus(StatusBroadcast)
	l.Info("transaction broadcast", "to", tx.To(), "value", tx.Value(), "gas_limit", tx.Gas(),
		"gas_fee_cap", tx.GasFeeCap(), "gas_tip_cap", tx.GasTipCap())

	receipt, err := m.waitForConfirmation(ctx, tx.Hash())
	if err != nil {
		l.Warn("transaction not confirmed in time", "timeout", m.cfg.ConfirmationTimeout, "err", err)
		m.metr.RecordTxStatus(StatusIndeterminate)
		return nil, &SendError{Status: StatusIndeterminate, TxHash: tx.Hash(), Nonce: tx.Nonce(), Err: errors.Join(ErrIndeterminate, err)}
	}
	m.metr.TxConfirmed(receipt)
	if receipt.Status == types.ReceiptStatusFailed {
		l.Error("transaction reverted", "block", receipt.BlockNumber, "gas_used", receipt.GasUsed)
		m.metr.RecordTxStatus(StatusFailed)
		return receipt, &SendError{Status: StatusFailed, TxHash: tx.Hash(), Nonce: tx.Nonce(), Err: ErrReverted}
	}
	l.Info("transaction confirmed", "block", receipt.BlockNumber, "gas_used", receipt.GasUsed)
	m.metr.RecordTxStatus(StatusConfirmed)
	return receipt, nil
}

// prepare fills in fees and gas, checks that the sender can pay for the
// transaction and signs it with the next pending nonce.
func (m *SimpleTxManager) prepare(ctx context.Context, candidate TxCandidate) (*types.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.NetworkTimeout)
	defer cancel()

	value := candidate.Value
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("negative value %v", value)
	}

	gasTipCap, gasFeeCap := candidate.GasTipCap, candidate.GasFeeCap
	if gasTipCap == nil || gasFeeCap == nil {
		tip, baseFee, err := m.suggestGasPriceCaps(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get gas price info: %w", err)
		}
		if gasTipCap == nil {
			gasTipCap = tip
		}
		if gasFeeCap == nil {
			gasFeeCap = calcGasFeeCap(baseFee, gasTipCap)
		}
	}
	if gasFeeCap.Cmp(gasTipCap) < 0 {
		return nil, fmt.Errorf("gas fee cap %v below gas tip cap %v", gasFeeCap, gasTipCap)
	}

	gasLimit := candidate.GasLimit
	if gasLimit == 0 {
		gas, err := m.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:      m.cfg.From,
			To:        candidate.To,
			GasTipCap: gasTipCap,
			GasFeeCap: gasFeeCap,
			Data:      candidate.TxData,
			Value:     value,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to estimate gas: %w", err)
		}
		gasLimit = gas
	}

	balance, err := m.backend.BalanceAt(ctx, m.cfg.From, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	required := new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), gasFeeCap)
	required.Add(required, value)
	if balance.Cmp(required) < 0 {
		return nil, &SendError{
			Status: StatusUnsubmitted,
			Err:    fmt.Errorf("%w: balance %v wei of %s, required %v wei", ErrInsufficientFunds, balance, m.cfg.From, required),
		}
	}

	nonce, err := m.backend.PendingNonceAt(ctx, m.cfg.From)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	m.metr.RecordNonce(nonce)

	rawTx := &types.DynamicFeeTx{
		ChainID:   m.cfg.ChainID,
		Nonce:     nonce,
		To:        candidate.To,
		Value:     value,
		Gas:       gasLimit,
		GasTipCap: gasTipCap,
		GasFeeCap: gasFeeCap,
		Data:      candidate.TxData,
	}
	signed, err := m.cfg.Signer(ctx, m.cfg.From, types.NewTx(rawTx))
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// suggestGasPriceCaps returns the suggested tip and the latest base fee.
func (m *SimpleTxManager) suggestGasPriceCaps(ctx context.Context) (*big.Int, *big.Int, error) {
	tip, err := m.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, err
	}
	head, err := m.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	if head.BaseFee == nil {
		return nil, nil, errors.New("txmgr does not support pre-london blocks that do not have a base fee")
	}
	return tip, head.BaseFee, nil
}

// calcGasFeeCap deterministically computes the recommended gas fee cap given
// the base fee and gasTipCap. The resulting gasFeeCap is equal to:
//
//	gasTipCap + 2*baseFee.
func calcGasFeeCap(baseFee, gasTipCap *big.Int) *big.Int {
	return new(big.Int).Add(
		gasTipCap,
		new(big.Int).Mul(baseFee, big.NewInt(2)),
	)
}

// waitForConfirmation polls for the receipt until it has NumConfirmations
// blocks on top of it, the confirmation timeout elapses or ctx ends.
func (m *SimpleTxManager) waitForConfirmation(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if m.cfg.ConfirmationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.ConfirmationTimeout)
		defer cancel()
	}
	ticker := time.NewTicker(m.cfg.ReceiptQueryInterval)
	defer ticker.Stop()
	for {
		receipt, err := m.queryReceipt(ctx, txHash)
		if err != nil {
			m.l.Info("receipt retrieval failed", "tx", txHash, "err", err)
		} else if receipt != nil {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// queryReceipt returns the receipt once it is buried deep enough. A receipt
// that is not found or not yet confirmed gives (nil, nil); any other lookup
// failure is returned.
func (m *SimpleTxManager) queryReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.NetworkTimeout)
	defer cancel()
	receipt, err := m.backend.TransactionReceipt(ctx, txHash)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if receipt == nil || receipt.BlockNumber == nil {
		return nil, nil
	}

	tip, err := m.backend.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get block number: %w", err)
	}
	txHeight := receipt.BlockNumber.Uint64()
	if txHeight+m.cfg.NumConfirmations-1 <= tip {
		return receipt, nil
	}
	m.l.Debug("transaction not yet confirmed", "tx", txHash, "tx_height", txHeight, "tip", tip,
		"confirmations", tip+1-txHeight)
	return nil, nil
}

// CheckTx looks up a transaction left indeterminate by an earlier Send.
// It reports StatusIndeterminate while the transaction is neither confirmed
// nor provably replaced, and StatusFailed with ErrDropped once the nonce was
// consumed by another transaction.
func (m *SimpleTxManager) CheckTx(ctx context.Context, txHash common.Hash, nonce uint64) (Status, *types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.NetworkTimeout)
	defer cancel()
	receipt, err := m.queryReceipt(ctx, txHash)
	if err != nil {
		return StatusIndeterminate, nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	if receipt != nil {
		if receipt.Status == types.ReceiptStatusFailed {
			return StatusFailed, receipt, ErrReverted
		}
		return StatusConfirmed, receipt, nil
	}
	if err := ctx.Err(); err != nil {
		return StatusIndeterminate, nil, err
	}
	latestNonce, err := m.backend.NonceAt(ctx, m.cfg.From, nil)
	if err != nil {
		return StatusIndeterminate, nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	if latestNonce > nonce {
		// either included (the receipt is then only short of confirmations), or replaced
		r, err := m.backend.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil && r != nil:
			return StatusIndeterminate, nil, nil
		case err == nil || isNotFound(err):
			return StatusFailed, nil, ErrDropped
		default:
			return StatusIndeterminate, nil, fmt.Errorf("failed to get receipt: %w", err)
		}
	}
	return StatusIndeterminate, nil, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ethereum.NotFound) || strings.Contains(err.Error(), ethereum.NotFound.Error()) ||
		strings.Contains(err.Error(), "transaction indexing in progress")
}
