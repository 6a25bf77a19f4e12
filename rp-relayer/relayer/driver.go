package relayer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-relayer/metrics"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/txmgr"
)

// ErrPendingSubmission is returned by a cycle while an earlier submission is still unresolved.
var ErrPendingSubmission = errors.New("earlier submission is still indeterminate")

// StalenessChecker reports whether the L2 rate needs an update.
type StalenessChecker interface {
	RateStale(ctx context.Context) (bool, error)
}

// RateSource supplies the payload of a submission.
type RateSource interface {
	ExchangeRate(ctx context.Context) (*big.Int, error)
}

type DriverConfig struct {
	PollInterval   time.Duration
	NetworkTimeout time.Duration
	OnlyWhenStale  bool
}

type DriverSetup struct {
	Log       log.Logger
	Metr      metrics.Metricer
	Cfg       DriverConfig
	Txmgr     txmgr.TxManager
	Submitter *Submitter
	// Staleness is required with OnlyWhenStale.
	Staleness StalenessChecker
	// Rates is optional; without it submissions carry no payload.
	Rates RateSource
}

// RelayDriver runs a relay cycle every poll interval.
type RelayDriver struct {
	DriverSetup

	wg   sync.WaitGroup
	done chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	mutex   sync.Mutex
	running bool

	// pending is the last submission that ended indeterminate, if any.
	pending   *Submission
	pendingMu sync.Mutex
}

func NewRelayDriver(setup DriverSetup) (*RelayDriver, error) {
	if setup.Submitter == nil {
		return nil, errors.New("submitter is required")
	}
	if setup.Txmgr == nil {
		return nil, errors.New("tx manager is required")
	}
	if setup.Cfg.OnlyWhenStale && setup.Staleness == nil {
		return nil, errors.New("staleness checker is required to only relay stale rates")
	}
	if setup.Cfg.PollInterval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}
	if setup.Metr == nil {
		setup.Metr = metrics.NoopMetrics
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RelayDriver{
		DriverSetup: setup,
		done:        make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

func (d *RelayDriver) Start() error {
	d.Log.Info("starting relay driver")

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.running {
		return errors.New("relay driver is already running")
	}
	d.running = true

	d.wg.Add(1)
	go d.loop()

	d.Log.Info("started relay driver")
	return nil
}

func (d *RelayDriver) Stop() error {
	d.Log.Info("stopping relay driver")

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if !d.running {
		return errors.New("relay driver is not running")
	}
	d.running = false

	d.cancel()
	close(d.done)
	d.wg.Wait()

	d.Log.Info("stopped relay driver")
	return nil
}

func (d *RelayDriver) Running() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.running
}

func (d *RelayDriver) loop() {
	defer d.wg.Done()
	defer d.Log.Info("loop returning")

	ctx := d.ctx
	ticker := time.NewTicker(d.Cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := d.Cycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.Log.Warn("relay cycle failed", "err", err)
		}
		select {
		case <-d.done:
			return
		case <-ticker.C:
		}
	}
}

// Pending returns the unresolved indeterminate submission, if any.
func (d *RelayDriver) Pending() *Submission {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	return d.pending
}

// Cycle runs one relay cycle. It returns a nil submission when nothing was
// sent: the rate was current, or an earlier submission is still unresolved.
func (d *RelayDriver) Cycle(ctx context.Context) (*Submission, error) {
	d.pendingMu.Lock()
	pending := d.pending
	d.pendingMu.Unlock()

	if pending != nil {
		resolved, err := d.resolvePending(ctx, pending)
		if err != nil {
			return nil, err
		}
		if resolved.Status == txmgr.StatusConfirmed {
			d.Metr.RecordSkippedCycle("earlier-submission-confirmed")
			return nil, nil
		}
	}

	stale, payload, err := d.preflight(ctx)
	if err != nil {
		return nil, err
	}
	if !stale {
		d.Log.Info("L2 rate is current, skipping cycle")
		d.Metr.RecordSkippedCycle("rate-not-stale")
		return nil, nil
	}

	sub, err := d.Submitter.Submit(ctx, payload)
	if sub != nil && sub.Status == txmgr.StatusIndeterminate {
		d.pendingMu.Lock()
		d.pending = sub
		d.pendingMu.Unlock()
		d.Log.Warn("submission indeterminate, checking it before the next submission", "tx", sub.TxHash, "nonce", sub.Nonce)
	}
	return sub, err
}

// resolvePending checks an indeterminate submission. It returns
// ErrPendingSubmission while the outcome is still unknown.
func (d *RelayDriver) resolvePending(ctx context.Context, pending *Submission) (*Submission, error) {
	l := d.Log.New("tx", pending.TxHash, "nonce", pending.Nonce)
	status, receipt, err := d.Txmgr.CheckTx(ctx, pending.TxHash, pending.Nonce)
	if status == txmgr.StatusIndeterminate {
		if err != nil {
			l.Warn("failed to check indeterminate submission", "err", err)
		}
		d.Metr.RecordSkippedCycle("pending-submission")
		return nil, fmt.Errorf("%w: tx %s", ErrPendingSubmission, pending.TxHash)
	}

	d.pendingMu.Lock()
	d.pending = nil
	d.pendingMu.Unlock()

	resolved := *pending
	resolved.Status = status
	resolved.Receipt = receipt
	d.Metr.RecordSubmission(status)
	if status == txmgr.StatusConfirmed {
		l.Info("indeterminate submission confirmed", "block", receipt.BlockNumber)
	} else {
		l.Warn("indeterminate submission did not succeed", "status", status, "err", err)
	}
	return &resolved, nil
}

// preflight reads staleness and the payload concurrently.
func (d *RelayDriver) preflight(ctx context.Context) (bool, *big.Int, error) {
	stale := true
	var payload *big.Int

	g, gCtx := errgroup.WithContext(ctx)
	if d.Cfg.OnlyWhenStale {
		g.Go(func() error {
			cCtx, cancel := d.networkContext(gCtx)
			defer cancel()
			s, err := d.Staleness.RateStale(cCtx)
			if err != nil {
				return fmt.Errorf("failed to check rate staleness: %w", err)
			}
			stale = s
			return nil
		})
	}
	if d.Rates != nil {
		g.Go(func() error {
			cCtx, cancel := d.networkContext(gCtx)
			defer cancel()
			r, err := d.Rates.ExchangeRate(cCtx)
			if err != nil {
				return fmt.Errorf("failed to read exchange rate: %w", err)
			}
			payload = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, nil, err
	}
	return stale, payload, nil
}

func (d *RelayDriver) networkContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.Cfg.NetworkTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.Cfg.NetworkTimeout)
}
