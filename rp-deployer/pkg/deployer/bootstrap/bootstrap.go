package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-chain-ops/crossdomain"
)

var (
	// ErrPartialBootstrap matches every error returned by a bootstrap that stopped part way.
	ErrPartialBootstrap = errors.New("partial bootstrap")
	ErrStateMismatch    = errors.New("state file was written for a different configuration")
	// ErrCheckpoint is wrapped when a step completed on chain but its progress could not be saved.
	ErrCheckpoint = errors.New("failed to save bootstrap progress")
)

// Step numbers the bootstrap sequence. Step N is confirmed before step N+1 starts.
type Step int

const (
	StepNone Step = iota
	StepDeployMessenger
	StepDeployOracle
	StepSetL2Target
	StepSetOwner
	StepDeployRateProvider
)

// LastStep is the final step of a complete bootstrap.
const LastStep = StepDeployRateProvider

func (s Step) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepDeployMessenger:
		return "deploy-messenger"
	case StepDeployOracle:
		return "deploy-oracle"
	case StepSetL2Target:
		return "set-l2-target"
	case StepSetOwner:
		return "set-owner"
	case StepDeployRateProvider:
		return "deploy-rate-provider"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Linkage records the contracts of a bootstrap. Fields of steps that have not
// run yet are zero.
type Linkage struct {
	Messenger        common.Address `json:"messenger"`
	Oracle           common.Address `json:"oracle"`
	AliasedMessenger common.Address `json:"aliasedMessenger"`
	RateProvider     common.Address `json:"rateProvider"`
}

// Config holds the L1 addresses the messenger is constructed with.
type Config struct {
	RocketStorage common.Address `json:"rocketStorage"`
	ZkSync        common.Address `json:"zkSync"`
}

func (c Config) Check() error {
	if c.RocketStorage == (common.Address{}) {
		return errors.New("rocket storage address must be specified")
	}
	if c.ZkSync == (common.Address{}) {
		return errors.New("zkSync address must be specified")
	}
	return nil
}

// PartialBootstrapError reports the step that failed and everything that was
// completed before it. Completed contracts are left in place.
type PartialBootstrapError struct {
	Step      Step
	Completed Step
	Progress  Linkage
	Err       error
}

func (e *PartialBootstrapError) Error() string {
	if errors.Is(e.Err, ErrCheckpoint) {
		return fmt.Sprintf("bootstrap completed step %d (%s) but did not record it (messenger=%s oracle=%s): %v",
			int(e.Completed), e.Completed, e.Progress.Messenger, e.Progress.Oracle, e.Err)
	}
	return fmt.Sprintf("bootstrap stopped at step %d (%s) after completing step %d (messenger=%s oracle=%s): %v",
		int(e.Step), e.Step, int(e.Completed), e.Progress.Messenger, e.Progress.Oracle, e.Err)
}

func (e *PartialBootstrapError) Unwrap() error {
	return e.Err
}

func (e *PartialBootstrapError) Is(target error) bool {
	return target == ErrPartialBootstrap
}

// SourceChain deploys and configures the L1 side.
type SourceChain interface {
	DeployMessenger(ctx context.Context, rocketStorage common.Address, zkSync common.Address) (common.Address, error)
	SetL2Target(ctx context.Context, messenger common.Address, oracle common.Address) error
	L2Target(ctx context.Context, messenger common.Address) (common.Address, error)
}

// DestinationChain deploys and configures the L2 side.
type DestinationChain interface {
	DeployOracle(ctx context.Context) (common.Address, error)
	SetOwner(ctx context.Context, oracle common.Address, owner common.Address) error
	DeployRateProvider(ctx context.Context, oracle common.Address) (common.Address, error)
	OracleOwner(ctx context.Context, oracle common.Address) (common.Address, error)
}

type Bootstrapper struct {
	Logger log.Logger
	L1     SourceChain
	L2     DestinationChain

	// Checkpoint, if set, is called with the progress after every completed step.
	Checkpoint func(*State) error
}

type stage struct {
	step Step
	run  func(ctx context.Context, st *State) error
}

// Run executes the bootstrap sequence. A non-nil st resumes after
// st.Completed; it must have been produced for the same cfg.
func (b *Bootstrapper) Run(ctx context.Context, cfg Config, st *State) (Linkage, error) {
	if err := cfg.Check(); err != nil {
		return Linkage{}, fmt.Errorf("invalid bootstrap config: %w", err)
	}
	if st == nil {
		st = NewState(cfg)
	}
	if st.Config != cfg {
		return st.Linkage, fmt.Errorf("%w: state has rocketStorage=%s zkSync=%s", ErrStateMismatch, st.Config.RocketStorage, st.Config.ZkSync)
	}

	stages := []stage{
		{StepDeployMessenger, b.deployMessenger},
		{StepDeployOracle, b.deployOracle},
		{StepSetL2Target, b.setL2Target},
		{StepSetOwner, b.setOwner},
		{StepDeployRateProvider, b.deployRateProvider},
	}
	for _, s := range stages {
		lgr := b.Logger.New("step", int(s.step), "name", s.step.String())
		if st.Completed >= s.step {
			lgr.Info("bootstrap step already completed, skipping")
			continue
		}
		if err := ctx.Err(); err != nil {
			return st.Linkage, b.partial(s.step, st, err)
		}
		lgr.Info("running bootstrap step")
		if err := s.run(ctx, st); err != nil {
			lgr.Error("bootstrap step failed", "err", err)
			return st.Linkage, b.partial(s.step, st, err)
		}
		st.Completed = s.step
		lgr.Info("bootstrap step completed",
			"messenger", st.Messenger,
			"oracle", st.Oracle,
			"aliasedMessenger", st.AliasedMessenger,
			"rateProvider", st.RateProvider)
		if b.Checkpoint != nil {
			if err := b.Checkpoint(st); err != nil {
				return st.Linkage, b.partial(s.step, st, fmt.Errorf("%w: %w", ErrCheckpoint, err))
			}
		}
	}
	return st.Linkage, nil
}

func (b *Bootstrapper) partial(step Step, st *State, err error) error {
	return &PartialBootstrapError{
		Step:      step,
		Completed: st.Completed,
		Progress:  st.Linkage,
		Err:       err,
	}
}

func (b *Bootstrapper) deployMessenger(ctx context.Context, st *State) error {
	addr, err := b.L1.DeployMessenger(ctx, st.Config.RocketStorage, st.Config.ZkSync)
	if err != nil {
		return fmt.Errorf("failed to deploy messenger on L1: %w", err)
	}
	st.Messenger = addr
	return nil
}

func (b *Bootstrapper) deployOracle(ctx context.Context, st *State) error {
	addr, err := b.L2.DeployOracle(ctx)
	if err != nil {
		return fmt.Errorf("failed to deploy oracle on L2: %w", err)
	}
	st.Oracle = addr
	return nil
}

// setL2Target and setOwner send nothing when the chain already holds the value.
func (b *Bootstrapper) setL2Target(ctx context.Context, st *State) error {
	target, err := b.L1.L2Target(ctx, st.Messenger)
	if err != nil {
		return fmt.Errorf("failed to read L2 target of messenger %s: %w", st.Messenger, err)
	}
	if target == st.Oracle {
		b.Logger.Info("messenger already targets the oracle", "messenger", st.Messenger, "oracle", st.Oracle)
		return nil
	}
	if err := b.L1.SetL2Target(ctx, st.Messenger, st.Oracle); err != nil {
		return fmt.Errorf("failed to set L2 target of messenger %s to %s: %w", st.Messenger, st.Oracle, err)
	}
	return nil
}

func (b *Bootstrapper) setOwner(ctx context.Context, st *State) error {
	aliased := crossdomain.ApplyL1ToL2Alias(st.Messenger)
	owner, err := b.L2.OracleOwner(ctx, st.Oracle)
	if err != nil {
		return fmt.Errorf("failed to read owner of oracle %s: %w", st.Oracle, err)
	}
	if owner == aliased {
		b.Logger.Info("oracle already owned by the aliased messenger", "oracle", st.Oracle, "owner", aliased)
		st.AliasedMessenger = aliased
		return nil
	}
	if err := b.L2.SetOwner(ctx, st.Oracle, aliased); err != nil {
		return fmt.Errorf("failed to set owner of oracle %s to %s: %w", st.Oracle, aliased, err)
	}
	st.AliasedMessenger = aliased
	return nil
}

func (b *Bootstrapper) deployRateProvider(ctx context.Context, st *State) error {
	addr, err := b.L2.DeployRateProvider(ctx, st.Oracle)
	if err != nil {
		return fmt.Errorf("failed to deploy rate provider on L2: %w", err)
	}
	st.RateProvider = addr
	return nil
}
