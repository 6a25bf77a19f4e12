package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-chain-ops/foundry"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-deployer/pkg/deployer"
	rpservice "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/cliapp"
	rpcrypto "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/crypto"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/dial"
)

type BootstrapCLIConfig struct {
	L1RPCURL string
	L2RPCURL string
	// Expected chain ids. Zero accepts any chain.
	L1ChainID    uint64
	L2ChainID    uint64
	L1Key        rpcrypto.KeyConfig
	L2Key        rpcrypto.KeyConfig
	ArtifactsDir string
	// L2ArtifactsDir holds the oracle and rate provider artifacts. Empty uses ArtifactsDir.
	L2ArtifactsDir string
	StateFile      string
	TxTimeout      time.Duration
	Config         Config
}

// L2ArtifactsPath is the directory the L2 contracts are loaded from.
func (c *BootstrapCLIConfig) L2ArtifactsPath() string {
	if c.L2ArtifactsDir != "" {
		return c.L2ArtifactsDir
	}
	return c.ArtifactsDir
}

func (c *BootstrapCLIConfig) Check() error {
	if c.L1RPCURL == "" {
		return errors.New("L1 RPC URL must be specified")
	}
	if c.L2RPCURL == "" {
		return errors.New("L2 RPC URL must be specified")
	}
	if err := c.L1Key.Check(); err != nil {
		return fmt.Errorf("invalid L1 key: %w", err)
	}
	if err := c.L2Key.Check(); err != nil {
		return fmt.Errorf("invalid L2 key: %w", err)
	}
	if c.ArtifactsDir == "" {
		return errors.New("artifacts directory must be specified")
	}
	return c.Config.Check()
}

func ReadBootstrapCLIConfig(cliCtx *cli.Context) (*BootstrapCLIConfig, error) {
	cfg := &BootstrapCLIConfig{
		L1RPCURL:       cliCtx.String(deployer.L1RPCURLFlagName),
		L2RPCURL:       cliCtx.String(deployer.L2RPCURLFlagName),
		L1ChainID:      cliCtx.Uint64(deployer.L1ChainIDFlagName),
		L2ChainID:      cliCtx.Uint64(deployer.L2ChainIDFlagName),
		L1Key:          rpcrypto.ReadCLIConfig(cliCtx, "l1"),
		L2Key:          rpcrypto.ReadCLIConfig(cliCtx, "l2"),
		ArtifactsDir:   cliCtx.String(deployer.ArtifactsDirFlagName),
		L2ArtifactsDir: cliCtx.String(deployer.L2ArtifactsDirFlagName),
		StateFile:      cliCtx.String(deployer.StateFileFlagName),
		TxTimeout:      cliCtx.Duration(deployer.TxTimeoutFlagName),
	}
	var err error
	if cfg.Config.RocketStorage, err = rpservice.ParseAddress(cliCtx.String(deployer.RocketStorageFlagName)); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", deployer.RocketStorageFlagName, err)
	}
	if cfg.Config.ZkSync, err = rpservice.ParseAddress(cliCtx.String(deployer.ZkSyncFlagName)); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", deployer.ZkSyncFlagName, err)
	}
	return cfg, nil
}

// dialChains connects to both chains concurrently.
func dialChains(ctx context.Context, lgr log.Logger, l1URL string, l2URL string) (*ethclient.Client, *ethclient.Client, error) {
	var l1, l2 *ethclient.Client
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := dial.DialEthClientWithTimeout(gCtx, dial.DefaultDialTimeout, lgr, l1URL)
		if err != nil {
			return fmt.Errorf("failed to dial L1: %w", err)
		}
		l1 = c
		return nil
	})
	g.Go(func() error {
		c, err := dial.DialEthClientWithTimeout(gCtx, dial.DefaultDialTimeout, lgr, l2URL)
		if err != nil {
			return fmt.Errorf("failed to dial L2: %w", err)
		}
		l2 = c
		return nil
	})
	if err := g.Wait(); err != nil {
		if l1 != nil {
			l1.Close()
		}
		if l2 != nil {
			l2.Close()
		}
		return nil, nil, err
	}
	return l1, l2, nil
}

// chainIDs fetches both chain ids and rejects an endpoint serving an unexpected
// chain. A zero expected id accepts any chain.
func chainIDs(ctx context.Context, l1 dial.ChainIDer, l2 dial.ChainIDer, expectL1 uint64, expectL2 uint64) (*big.Int, *big.Int, error) {
	var l1ID, l2ID *big.Int
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if l1ID, err = dial.CheckChainID(gCtx, l1, new(big.Int).SetUint64(expectL1)); err != nil {
			return fmt.Errorf("L1: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if l2ID, err = dial.CheckChainID(gCtx, l2, new(big.Int).SetUint64(expectL2)); err != nil {
			return fmt.Errorf("L2: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to check chain IDs: %w", err)
	}
	return l1ID, l2ID, nil
}

func BootstrapCLI(cliCtx *cli.Context) error {
	lgr, err := deployer.NewCommandLogger(cliCtx)
	if err != nil {
		return err
	}
	cfg, err := ReadBootstrapCLIConfig(cliCtx)
	if err != nil {
		return err
	}
	ctx, cancel := cliapp.WithInterruptSignals(cliCtx.Context)
	defer cancel()

	linkage, l1ID, l2ID, err := RunBootstrap(ctx, lgr, cfg)
	if err != nil {
		return err
	}
	WriteSummary(cliCtx.App.Writer, linkage, l1ID, l2ID)
	return nil
}

// RunBootstrap dials both chains, loads the signers and runs the bootstrap,
// checkpointing to the state file when one is configured.
func RunBootstrap(ctx context.Context, lgr log.Logger, cfg *BootstrapCLIConfig) (Linkage, *big.Int, *big.Int, error) {
	if err := cfg.Check(); err != nil {
		return Linkage{}, nil, nil, fmt.Errorf("invalid bootstrap config: %w", err)
	}
	l1Key, err := cfg.L1Key.Key()
	if err != nil {
		return Linkage{}, nil, nil, fmt.Errorf("failed to load L1 key: %w", err)
	}
	l2Key, err := cfg.L2Key.Key()
	if err != nil {
		return Linkage{}, nil, nil, fmt.Errorf("failed to load L2 key: %w", err)
	}

	fsys := afero.NewOsFs()
	st := NewState(cfg.Config)
	if cfg.StateFile != "" {
		if st, err = ReadState(fsys, cfg.StateFile, cfg.Config); err != nil {
			return Linkage{}, nil, nil, err
		}
		if st.Done() {
			lgr.Info("bootstrap already completed", "state", cfg.StateFile)
			return st.Linkage, nil, nil, nil
		}
	}

	l1Client, l2Client, err := dialChains(ctx, lgr, cfg.L1RPCURL, cfg.L2RPCURL)
	if err != nil {
		return Linkage{}, nil, nil, err
	}
	defer l1Client.Close()
	defer l2Client.Close()

	l1ID, l2ID, err := chainIDs(ctx, l1Client, l2Client, cfg.L1ChainID, cfg.L2ChainID)
	if err != nil {
		return Linkage{}, nil, nil, err
	}
	l1Signer := rpcrypto.NewSigner(l1Key, l1ID)
	l2Signer := rpcrypto.NewSigner(l2Key, l2ID)
	lgr.Info("bootstrap deployers",
		"l1ChainID", l1ID, "l1Deployer", l1Signer.Address(),
		"l2ChainID", l2ID, "l2Deployer", l2Signer.Address(),
		"rocketStorage", cfg.Config.RocketStorage, "zkSync", cfg.Config.ZkSync)

	lgr.Info("contract artifacts", "l1", cfg.ArtifactsDir, "l2", cfg.L2ArtifactsPath())
	b := &Bootstrapper{
		Logger: lgr,
		L1: &ChainDeployer{
			Name: "l1", Logger: lgr, Backend: l1Client, Signer: l1Signer,
			Artifacts: foundry.OpenArtifactsDir(cfg.ArtifactsDir), TxTimeout: cfg.TxTimeout,
		},
		L2: &ChainDeployer{
			Name: "l2", Logger: lgr, Backend: l2Client, Signer: l2Signer,
			Artifacts: foundry.OpenArtifactsDir(cfg.L2ArtifactsPath()), TxTimeout: cfg.TxTimeout,
		},
	}
	if cfg.StateFile != "" {
		b.Checkpoint = func(st *State) error {
			return WriteState(fsys, cfg.StateFile, st)
		}
	}
	linkage, err := b.Run(ctx, cfg.Config, st)
	if err != nil {
		return linkage, l1ID, l2ID, err
	}
	lgr.Info("bootstrap complete",
		"messenger", linkage.Messenger,
		"oracle", linkage.Oracle,
		"aliasedMessenger", linkage.AliasedMessenger,
		"rateProvider", linkage.RateProvider)
	return linkage, l1ID, l2ID, nil
}

// VerifyCLI checks a deployed linkage, read from the state file or given by address flags.
func VerifyCLI(cliCtx *cli.Context) error {
	lgr, err := deployer.NewCommandLogger(cliCtx)
	if err != nil {
		return err
	}
	linkage, err := readLinkage(cliCtx)
	if err != nil {
		return err
	}
	l1URL, l2URL := cliCtx.String(deployer.L1RPCURLFlagName), cliCtx.String(deployer.L2RPCURLFlagName)
	if l1URL == "" || l2URL == "" {
		return errors.New("both L1 and L2 RPC URLs must be specified")
	}
	ctx, cancel := cliapp.WithInterruptSignals(cliCtx.Context)
	defer cancel()

	l1Client, l2Client, err := dialChains(ctx, lgr, l1URL, l2URL)
	if err != nil {
		return err
	}
	defer l1Client.Close()
	defer l2Client.Close()

	l1 := &ChainDeployer{Name: "l1", Logger: lgr, Backend: l1Client}
	l2 := &ChainDeployer{Name: "l2", Logger: lgr, Backend: l2Client}
	if err := Verify(ctx, l1, l2, linkage); err != nil {
		lgr.Error("linkage verification failed", "err", err)
		return err
	}
	lgr.Info("linkage verified",
		"messenger", linkage.Messenger,
		"oracle", linkage.Oracle,
		"rateProvider", linkage.RateProvider)
	WriteSummary(cliCtx.App.Writer, linkage, nil, nil)
	return nil
}

func readLinkage(cliCtx *cli.Context) (Linkage, error) {
	if path := cliCtx.String(deployer.StateFileFlagName); path != "" {
		st, err := ReadState(afero.NewOsFs(), path, Config{})
		if err != nil {
			return Linkage{}, err
		}
		if !st.Done() {
			return Linkage{}, fmt.Errorf("bootstrap in %s has only completed step %d (%s)", path, int(st.Completed), st.Completed)
		}
		return st.Linkage, nil
	}
	var l Linkage
	var err error
	if l.Messenger, err = rpservice.ParseAddress(cliCtx.String(deployer.MessengerFlagName)); err != nil {
		return l, fmt.Errorf("invalid %s: %w", deployer.MessengerFlagName, err)
	}
	if l.Oracle, err = rpservice.ParseAddress(cliCtx.String(deployer.OracleFlagName)); err != nil {
		return l, fmt.Errorf("invalid %s: %w", deployer.OracleFlagName, err)
	}
	if l.RateProvider, err = rpservice.ParseAddress(cliCtx.String(deployer.RateProviderFlagName)); err != nil {
		return l, fmt.Errorf("invalid %s: %w", deployer.RateProviderFlagName, err)
	}
	return l, nil
}
