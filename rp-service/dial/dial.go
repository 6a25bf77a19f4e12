package dial

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
)

// DefaultDialTimeout is a default timeout for dialing a client.
const DefaultDialTimeout = 1 * time.Minute
const defaultRetryCount = 30
const defaultRetryTime = 2 * time.Second
const defaultConnectTimeout = 10 * time.Second

var ErrWrongChain = errors.New("endpoint serves an unexpected chain")

// DialEthClientWithTimeout attempts to dial the provider using the provided
// URL. If the dial doesn't complete within timeout, this method will return an error.
func DialEthClientWithTimeout(ctx context.Context, timeout time.Duration, log log.Logger, url string) (*ethclient.Client, error) {
	c, err := DialRPCClientWithTimeout(ctx, timeout, log, url)
	if err != nil {
		return nil, err
	}
	return ethclient.NewClient(c), nil
}

// DialRPCClientWithTimeout dials the endpoint and waits until it answers eth_chainId.
func DialRPCClientWithTimeout(ctx context.Context, timeout time.Duration, log log.Logger, url string) (*rpc.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return dialRPCClientWithBackoff(ctx, log, url)
}

// Dials a JSON-RPC endpoint repeatedly, with a fixed backoff, until a client connection is established.
func dialRPCClientWithBackoff(ctx context.Context, log log.Logger, addr string) (*rpc.Client, error) {
	var lastErr error
	for attempt := 1; attempt <= defaultRetryCount; attempt++ {
		c, err := dialRPCClient(ctx, addr)
		if err == nil {
			return c, nil
		}
		lastErr = err
		log.Warn("failed to dial endpoint, retrying", "addr", addr, "attempt", attempt, "err", err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to dial %s: %w", addr, errors.Join(ctx.Err(), lastErr))
		case <-time.After(defaultRetryTime):
		}
	}
	return nil, fmt.Errorf("failed to dial %s after %d attempts: %w", addr, defaultRetryCount, lastErr)
}

// Dials a JSON-RPC endpoint once and checks that it answers.
func dialRPCClient(ctx context.Context, addr string) (*rpc.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()
	c, err := rpc.DialContext(ctx, addr)
	if err != nil {
		return nil, err
	}
	var id hexutil.Big
	if err := c.CallContext(ctx, &id, "eth_chainId"); err != nil {
		c.Close()
		return nil, fmt.Errorf("endpoint not ready: %w", err)
	}
	return c, nil
}

type ChainIDer interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// CheckChainID fails if the endpoint serves a chain other than expected.
// A nil expected chain id accepts any chain and only returns the served one.
func CheckChainID(ctx context.Context, c ChainIDer, expected *big.Int) (*big.Int, error) {
	id, err := c.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain id: %w", err)
	}
	if expected != nil && expected.Sign() != 0 && id.Cmp(expected) != 0 {
		return nil, fmt.Errorf("%w: expected %v, got %v", ErrWrongChain, expected, id)
	}
	return id, nil
}
