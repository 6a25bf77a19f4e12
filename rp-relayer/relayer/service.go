package relayer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-bindings/bindings"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-relayer/flags"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-relayer/metrics"
	rpservice "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/cliapp"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/dial"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/l2fee"
	rpmetrics "github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/metrics"
	"github.com/rocket-pool/rocketpool-zksync-oracle/rp-service/txmgr"
)

var ErrAlreadyStopped = errors.New("already stopped")

type RelayerService struct {
	Log     log.Logger
	Metrics metrics.Metricer

	DriverConfig
	SubmitterConfig

	TxManager txmgr.TxManager
	L1Client  *ethclient.Client
	L2Client  *rpc.Client

	// txClient is the L1 connection owned by the tx manager.
	txClient *ethclient.Client

	submitter *Submitter
	driver    *RelayDriver

	Version string

	metricsSrv      *rpmetrics.Server
	balanceMetricer io.Closer

	stopped atomic.Bool
}

func RelayerServiceFromCLIConfig(ctx context.Context, version string, cfg *CLIConfig, log log.Logger) (*RelayerService, error) {
	var rs RelayerService
	if err := rs.initFromCLIConfig(ctx, version, cfg, log); err != nil {
		return nil, errors.Join(err, rs.Stop(ctx))
	}
	return &rs, nil
}

func (rs *RelayerService) initFromCLIConfig(ctx context.Context, version string, cfg *CLIConfig, log log.Logger) error {
	rs.Version = version
	rs.Log = log

	rs.initMetrics(cfg)

	rs.PollInterval = cfg.PollInterval
	rs.NetworkTimeout = cfg.TxMgrConfig.NetworkTimeout
	rs.OnlyWhenStale = cfg.OnlyWhenStale
	rs.L1GasLimit = cfg.L1GasLimit

	messenger, err := rpservice.ParseAddress(cfg.MessengerAddress)
	if err != nil {
		return fmt.Errorf("invalid messenger address: %w", err)
	}
	rs.Messenger = messenger

	if err := rs.initRPCClients(ctx, cfg); err != nil {
		return err
	}
	if err := rs.initTxManager(ctx, cfg); err != nil {
		return fmt.Errorf("failed to init tx manager: %w", err)
	}
	if err := rs.initSubmitter(cfg); err != nil {
		return fmt.Errorf("failed to init submitter: %w", err)
	}
	if err := rs.initDriver(cfg); err != nil {
		return fmt.Errorf("failed to init driver: %w", err)
	}
	if err := rs.initMetricsServer(cfg); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	rs.initBalanceMonitor(cfg)

	rs.Metrics.RecordInfo(rs.Version)
	rs.Metrics.RecordUp()
	return nil
}

func (rs *RelayerService) initMetrics(cfg *CLIConfig) {
	if cfg.MetricsConfig.Enabled {
		procName := "default"
		rs.Metrics = metrics.NewMetrics(procName)
	} else {
		rs.Metrics = metrics.NoopMetrics
	}
}

func (rs *RelayerService) initRPCClients(ctx context.Context, cfg *CLIConfig) error {
	l1Client, err := dial.DialEthClientWithTimeout(ctx, dial.DefaultDialTimeout, rs.Log, cfg.L1EthRpc)
	if err != nil {
		return fmt.Errorf("failed to dial L1 rpc: %w", err)
	}
	rs.L1Client = l1Client

	if cfg.EstimateL2Gas {
		l2Client, err := dial.DialRPCClientWithTimeout(ctx, dial.DefaultDialTimeout, rs.Log, cfg.L2Rpc)
		if err != nil {
			return fmt.Errorf("failed to dial L2 rpc: %w", err)
		}
		rs.L2Client = l2Client
	}
	return nil
}

func (rs *RelayerService) initTxManager(ctx context.Context, cfg *CLIConfig) error {
	txCfg, err := txmgr.NewConfig(ctx, cfg.TxMgrConfig, rs.Log)
	if err != nil {
		return err
	}
	if c, ok := txCfg.Backend.(*ethclient.Client); ok {
		rs.txClient = c
	}
	txManager, err := txmgr.NewSimpleTxManagerFromConfig("relayer", rs.Log, rs.Metrics, txCfg)
	if err != nil {
		return err
	}
	rs.TxManager = txManager
	return nil
}

func (rs *RelayerService) initSubmitter(cfg *CLIConfig) error {
	var fees l2fee.FeeSource
	switch cfg.FeeSource {
	case flags.FeeSourceMarket:
		static, err := cfg.StaticFeeParameters()
		if err != nil {
			return err
		}
		fees = l2fee.MarketFeeSource{
			Backend:           rs.L1Client,
			MinPriorityFee:    static.MaxPriorityFee,
			GasLimit:          static.GasLimit,
			GasPerPubdataByte: static.GasPerPubdataByte,
		}
	default:
		static, err := cfg.StaticFeeParameters()
		if err != nil {
			return err
		}
		fees = l2fee.StaticFeeSource{Params: static}
	}

	zkSync, err := rpservice.ParseAddress(cfg.ZkSyncAddress)
	if err != nil {
		return fmt.Errorf("invalid zkSync address: %w", err)
	}
	setup := SubmitterSetup{
		Log:       rs.Log,
		Metr:      rs.Metrics,
		Cfg:       rs.SubmitterConfig,
		Fees:      fees,
		Estimator: l2fee.NewEstimator(rs.L1Client, zkSync),
		Txmgr:     rs.TxManager,
	}
	if rs.L2Client != nil {
		oracle, err := rpservice.ParseAddress(cfg.OracleAddress)
		if err != nil {
			return fmt.Errorf("invalid oracle address: %w", err)
		}
		setup.GasEstimator = l2fee.NewGasLimitEstimator(rs.L2Client, rs.Messenger, oracle)
	}
	submitter, err := NewSubmitter(setup)
	if err != nil {
		return err
	}
	rs.submitter = submitter
	return nil
}

func (rs *RelayerService) initDriver(cfg *CLIConfig) error {
	messenger, err := bindings.NewRocketZkSyncPriceMessengerCaller(rs.Messenger, rs.L1Client)
	if err != nil {
		return fmt.Errorf("failed to bind messenger at address %s: %w", rs.Messenger, err)
	}
	setup := DriverSetup{
		Log:       rs.Log,
		Metr:      rs.Metrics,
		Cfg:       rs.DriverConfig,
		Txmgr:     rs.TxManager,
		Submitter: rs.submitter,
		Staleness: &messengerStaleness{messenger: messenger},
	}
	if cfg.RETHAddress != "" {
		reth := common.HexToAddress(cfg.RETHAddress)
		setup.Rates = &rethRates{reth: bindings.NewRocketTokenRETHCaller(reth, rs.L1Client)}
	}
	driver, err := NewRelayDriver(setup)
	if err != nil {
		return err
	}
	rs.driver = driver
	return nil
}

func (rs *RelayerService) initMetricsServer(cfg *CLIConfig) error {
	if !cfg.MetricsConfig.Enabled {
		rs.Log.Info("metrics disabled")
		return nil
	}
	m, ok := rs.Metrics.(rpmetrics.RegistryMetricer)
	if !ok {
		return fmt.Errorf("metrics were enabled, but metricer %T does not expose registry for metrics-server", rs.Metrics)
	}
	rs.Log.Debug("starting metrics server", "addr", cfg.MetricsConfig.ListenAddr, "port", cfg.MetricsConfig.ListenPort)
	metricsSrv, err := rpmetrics.StartServer(m.Registry(), cfg.MetricsConfig.ListenAddr, cfg.MetricsConfig.ListenPort)
	if err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	rs.Log.Info("started metrics server", "addr", metricsSrv.Addr())
	rs.metricsSrv = metricsSrv
	return nil
}

func (rs *RelayerService) initBalanceMonitor(cfg *CLIConfig) {
	if cfg.MetricsConfig.Enabled {
		rs.balanceMetricer = rs.Metrics.StartBalanceMetrics(rs.Log, rs.L1Client, rs.TxManager.From())
	}
}

func (rs *RelayerService) Start(ctx context.Context) error {
	return rs.driver.Start()
}

func (rs *RelayerService) Stopped() bool {
	return rs.stopped.Load()
}

func (rs *RelayerService) Stop(ctx context.Context) error {
	if rs.Stopped() {
		return ErrAlreadyStopped
	}
	rs.Log.Info("stopping relayer")

	var result error
	if rs.driver != nil && rs.driver.Running() {
		if err := rs.driver.Stop(); err != nil {
			result = errors.Join(result, fmt.Errorf("failed to stop relay driver: %w", err))
		}
	}

	if rs.balanceMetricer != nil {
		if err := rs.balanceMetricer.Close(); err != nil {
			result = errors.Join(result, fmt.Errorf("failed to close balance metricer: %w", err))
		}
	}

	if rs.TxManager != nil {
		rs.TxManager.Close()
	}

	if rs.metricsSrv != nil {
		if err := rs.metricsSrv.Stop(ctx); err != nil {
			result = errors.Join(result, fmt.Errorf("failed to stop metrics server: %w", err))
		}
	}

	if rs.txClient != nil {
		rs.txClient.Close()
	}
	if rs.L1Client != nil {
		rs.L1Client.Close()
	}
	if rs.L2Client != nil {
		rs.L2Client.Close()
	}

	if result == nil {
		rs.stopped.Store(true)
		rs.Log.Info("stopped relayer")
	}

	return result
}

var _ cliapp.Lifecycle = (*RelayerService)(nil)

func (rs *RelayerService) Driver() *RelayDriver {
	return rs.driver
}
