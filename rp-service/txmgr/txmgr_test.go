package txmgr

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/require"

	rpcrypto "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/crypto"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/testlog"
)

type rpcError struct {
	code int
	msg  string
}

func (e rpcError) Error() string  { return e.msg }
func (e rpcError) ErrorCode() int { return e.code }

type mineMode int

const (
	mineConfirm mineMode = iota
	mineRevert
	mineNever
)

// mockBackend is a single-account L1 node.
type mockBackend struct {
	mu sync.Mutex

	balance      *big.Int
	nonce        uint64
	latestNonce  uint64
	baseFee      *big.Int
	tip          *big.Int
	estimatedGas uint64
	sendErr      error
	mode         mineMode
	// receiptDelay is the number of NotFound answers before a receipt shows up.
	receiptDelay int
	blockNumber  uint64
	// advance moves the chain tip by one block on every BlockNumber call.
	advance bool
	// receiptErr fails every receipt lookup when set.
	receiptErr error

	sent        []*types.Transaction
	minedAt     map[common.Hash]uint64
	lookups     map[common.Hash]int
	inflight    int
	maxInflight int
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		balance:      new(big.Int).Mul(big.NewInt(10), big.NewInt(params.Ether)),
		baseFee:      big.NewInt(10 * params.GWei),
		tip:          big.NewInt(2 * params.GWei),
		estimatedGas: 50_000,
		blockNumber:  100,
		lookups:      make(map[common.Hash]int),
		minedAt:      make(map[common.Hash]uint64),
	}
}

func (b *mockBackend) BlockNumber(ctx context.Context) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.advance {
		b.blockNumber++
	}
	return b.blockNumber, nil
}

func (b *mockBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &types.Header{Number: new(big.Int).SetUint64(b.blockNumber), BaseFee: b.baseFee}, nil
}

func (b *mockBackend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return new(big.Int).Set(b.balance), nil
}

func (b *mockBackend) NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latestNonce, nil
}

func (b *mockBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inflight++
	if b.inflight > b.maxInflight {
		b.maxInflight = b.inflight
	}
	return b.nonce, nil
}

func (b *mockBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return b.tip, nil
}

func (b *mockBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return b.estimatedGas, nil
}

func (b *mockBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		b.inflight--
		return b.sendErr
	}
	b.sent = append(b.sent, tx)
	b.minedAt[tx.Hash()] = b.blockNumber
	b.nonce++
	return nil
}

func (b *mockBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.receiptErr != nil {
		return nil, b.receiptErr
	}
	minedAt, found := b.minedAt[txHash]
	if !found || b.mode == mineNever {
		return nil, ethereum.NotFound
	}
	b.lookups[txHash]++
	if b.lookups[txHash] <= b.receiptDelay {
		return nil, ethereum.NotFound
	}
	status := types.ReceiptStatusSuccessful
	if b.mode == mineRevert {
		status = types.ReceiptStatusFailed
	}
	if b.lookups[txHash] == b.receiptDelay+1 {
		b.inflight--
	}
	return &types.Receipt{
		TxHash:      txHash,
		Status:      status,
		BlockNumber: new(big.Int).SetUint64(minedAt),
		GasUsed:     21_000,
	}, nil
}

func (b *mockBackend) sentTxs() []*types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*types.Transaction(nil), b.sent...)
}

func newTestManager(t *testing.T, backend *mockBackend, conf func(*Config)) *SimpleTxManager {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	chainID := big.NewInt(11155111)
	cfg := &Config{
		Backend:              backend,
		ChainID:              chainID,
		NumConfirmations:     1,
		NetworkTimeout:       time.Second,
		ReceiptQueryInterval: 5 * time.Millisecond,
		ConfirmationTimeout:  5 * time.Second,
		Signer:               rpcrypto.PrivateKeySignerFn(key, chainID),
		From:                 crypto.PubkeyToAddress(key.PublicKey),
	}
	if conf != nil {
		conf(cfg)
	}
	m, err := NewSimpleTxManagerFromConfig("test", testlog.Logger(t, log.LevelInfo), nil, cfg)
	require.NoError(t, err)
	return m
}

var testTo = common.HexToAddress("0x5e5e000000000000000000000000000000005e5e")

func relayCandidate() TxCandidate {
	return TxCandidate{
		TxData:    []byte{0xde, 0xad},
		To:        &testTo,
		Value:     big.NewInt(1_000_000),
		GasLimit:  267_123,
		GasFeeCap: big.NewInt(100 * params.GWei),
		GasTipCap: big.NewInt(1 * params.GWei),
	}
}

func TestSendConfirmed(t *testing.T) {
	backend := newMockBackend()
	backend.nonce = 7
	m := newTestManager(t, backend, nil)

	receipt, err := m.Send(context.Background(), relayCandidate())
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, StatusOf(err))
	require.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)

	sent := backend.sentTxs()
	require.Len(t, sent, 1)
	tx := sent[0]
	require.Equal(t, receipt.TxHash, tx.Hash())
	require.Equal(t, uint64(7), tx.Nonce())
	require.Equal(t, big.NewInt(1_000_000), tx.Value())
	require.Equal(t, uint64(267_123), tx.Gas())
	require.Equal(t, big.NewInt(100*params.GWei), tx.GasFeeCap())
	require.Equal(t, big.NewInt(1*params.GWei), tx.GasTipCap())
	require.Equal(t, testTo, *tx.To())
	require.Equal(t, []byte{0xde, 0xad}, tx.Data())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(11155111)), tx)
	require.NoError(t, err)
	require.Equal(t, m.From(), sender)
}

func TestSendFillsFeesAndGas(t *testing.T) {
	backend := newMockBackend()
	m := newTestManager(t, backend, nil)

	_, err := m.Send(context.Background(), TxCandidate{To: &testTo})
	require.NoError(t, err)
	tx := backend.sentTxs()[0]
	require.Equal(t, backend.estimatedGas, tx.Gas())
	require.Equal(t, backend.tip, tx.GasTipCap())
	// tip + 2*baseFee
	require.Equal(t, big.NewInt(22*params.GWei), tx.GasFeeCap())
}

func TestSendInsufficientFunds(t *testing.T) {
	backend := newMockBackend()
	candidate := relayCandidate()
	required := new(big.Int).Mul(new(big.Int).SetUint64(candidate.GasLimit), candidate.GasFeeCap)
	required.Add(required, candidate.Value)
	backend.balance = new(big.Int).Sub(required, big.NewInt(1))
	m := newTestManager(t, backend, nil)

	_, err := m.Send(context.Background(), candidate)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.Equal(t, StatusUnsubmitted, StatusOf(err))
	require.Empty(t, backend.sentTxs())

	// exactly enough is accepted
	backend.balance = required
	_, err = m.Send(context.Background(), candidate)
	require.NoError(t, err)
}

func TestSendBroadcastErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		is     error
		status Status
	}{
		{
			name:   "rejected",
			err:    rpcError{code: -32000, msg: "nonce too low"},
			is:     ErrBroadcastRejected,
			status: StatusUnsubmitted,
		},
		{
			name:   "node reports insufficient funds",
			err:    rpcError{code: -32000, msg: "insufficient funds for gas * price + value"},
			is:     ErrInsufficientFunds,
			status: StatusUnsubmitted,
		},
		{
			name:   "transport failure",
			err:    errors.New("connection reset by peer"),
			is:     ErrIndeterminate,
			status: StatusIndeterminate,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			backend := newMockBackend()
			backend.sendErr = test.err
			m := newTestManager(t, backend, nil)

			_, err := m.Send(context.Background(), relayCandidate())
			require.ErrorIs(t, err, test.is)
			require.Equal(t, test.status, StatusOf(err))
			var sendErr *SendError
			require.ErrorAs(t, err, &sendErr)
			require.NotEqual(t, common.Hash{}, sendErr.TxHash)
		})
	}
}

func TestSendConfirmationTimeout(t *testing.T) {
	backend := newMockBackend()
	backend.mode = mineNever
	m := newTestManager(t, backend, func(cfg *Config) {
		cfg.ConfirmationTimeout = 50 * time.Millisecond
	})

	start := time.Now()
	_, err := m.Send(context.Background(), relayCandidate())
	require.ErrorIs(t, err, ErrIndeterminate)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, StatusIndeterminate, StatusOf(err))
	require.Less(t, time.Since(start), 5*time.Second)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	require.Equal(t, backend.sentTxs()[0].Hash(), sendErr.TxHash)
	require.Equal(t, uint64(0), sendErr.Nonce)
}

func TestSendReverted(t *testing.T) {
	backend := newMockBackend()
	backend.mode = mineRevert
	m := newTestManager(t, backend, nil)

	receipt, err := m.Send(context.Background(), relayCandidate())
	require.ErrorIs(t, err, ErrReverted)
	require.Equal(t, StatusFailed, StatusOf(err))
	require.NotNil(t, receipt)
	require.Equal(t, types.ReceiptStatusFailed, receipt.Status)
}

func TestSendWaitsForConfirmations(t *testing.T) {
	backend := newMockBackend()
	backend.advance = true
	m := newTestManager(t, backend, func(cfg *Config) {
		cfg.NumConfirmations = 3
	})

	receipt, err := m.Send(context.Background(), relayCandidate())
	require.NoError(t, err)
	tip, err := backend.BlockNumber(context.Background())
	require.NoError(t, err)
	require.GreaterOrEqual(t, tip, receipt.BlockNumber.Uint64()+2)
}

func TestSendClosed(t *testing.T) {
	m := newTestManager(t, newMockBackend(), nil)
	m.Close()
	_, err := m.Send(context.Background(), relayCandidate())
	require.ErrorIs(t, err, ErrClosed)
}

func TestSendSerializedPerSender(t *testing.T) {
	backend := newMockBackend()
	backend.receiptDelay = 2
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	share := func(cfg *Config) {
		cfg.Signer = rpcrypto.PrivateKeySignerFn(key, cfg.ChainID)
		cfg.From = crypto.PubkeyToAddress(key.PublicKey)
	}
	a := newTestManager(t, backend, share)
	b := newTestManager(t, backend, share)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		m := a
		if i%2 == 1 {
			m = b
		}
		wg.Add(1)
		go func(i int, m *SimpleTxManager) {
			defer wg.Done()
			_, errs[i] = m.Send(context.Background(), relayCandidate())
		}(i, m)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 1, backend.maxInflight)

	nonces := make(map[uint64]bool)
	for _, tx := range backend.sentTxs() {
		nonces[tx.Nonce()] = true
	}
	require.Len(t, nonces, 4)
}

func TestCheckTx(t *testing.T) {
	backend := newMockBackend()
	backend.mode = mineNever
	m := newTestManager(t, backend, func(cfg *Config) {
		cfg.ConfirmationTimeout = 20 * time.Millisecond
	})
	_, err := m.Send(context.Background(), relayCandidate())
	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)

	status, _, err := m.CheckTx(context.Background(), sendErr.TxHash, sendErr.Nonce)
	require.NoError(t, err)
	require.Equal(t, StatusIndeterminate, status)

	backend.mu.Lock()
	backend.mode = mineConfirm
	backend.mu.Unlock()
	status, receipt, err := m.CheckTx(context.Background(), sendErr.TxHash, sendErr.Nonce)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, status)
	require.Equal(t, sendErr.TxHash, receipt.TxHash)
}

func TestCheckTxDropped(t *testing.T) {
	backend := newMockBackend()
	backend.mode = mineNever
	m := newTestManager(t, backend, func(cfg *Config) {
		cfg.ConfirmationTimeout = 20 * time.Millisecond
	})
	_, err := m.Send(context.Background(), relayCandidate())
	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)

	backend.mu.Lock()
	backend.latestNonce = sendErr.Nonce + 1
	backend.mu.Unlock()
	status, _, err := m.CheckTx(context.Background(), sendErr.TxHash, sendErr.Nonce)
	require.ErrorIs(t, err, ErrDropped)
	require.Equal(t, StatusFailed, status)
}

func TestCheckTxReceiptLookupFailure(t *testing.T) {
	backend := newMockBackend()
	backend.mode = mineNever
	m := newTestManager(t, backend, func(cfg *Config) {
		cfg.ConfirmationTimeout = 20 * time.Millisecond
	})
	_, err := m.Send(context.Background(), relayCandidate())
	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)

	// the nonce moved on, but the receipt cannot be read: the tx may have landed
	backend.mu.Lock()
	backend.mode = mineConfirm
	backend.latestNonce = sendErr.Nonce + 1
	backend.receiptErr = errors.New("read tcp 127.0.0.1:8545: connection reset by peer")
	backend.mu.Unlock()

	status, receipt, err := m.CheckTx(context.Background(), sendErr.TxHash, sendErr.Nonce)
	require.ErrorContains(t, err, "connection reset by peer")
	require.NotErrorIs(t, err, ErrDropped)
	require.Equal(t, StatusIndeterminate, status)
	require.Nil(t, receipt)

	backend.mu.Lock()
	backend.receiptErr = nil
	backend.mu.Unlock()
	status, receipt, err = m.CheckTx(context.Background(), sendErr.TxHash, sendErr.Nonce)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, status)
	require.Equal(t, sendErr.TxHash, receipt.TxHash)
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "indeterminate", StatusIndeterminate.String())
	require.Equal(t, "broadcast", StatusBroadcast.String())
	require.True(t, StatusConfirmed.Final())
	require.False(t, StatusIndeterminate.Final())
}
