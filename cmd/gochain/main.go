package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/prism-labs/prism/pkg/api"
	"github.com/prism-labs/prism/pkg/chain"
	"github.com/prism-labs/prism/pkg/config"
	"github.com/prism-labs/prism/pkg/crypto"
	"github.com/prism-labs/prism/pkg/keyring"
	"github.com/prism-labs/prism/pkg/ledger"
	"github.com/prism-labs/prism/pkg/logger"
	"github.com/prism-labs/prism/pkg/mempool"
	"github.com/prism-labs/prism/pkg/metrics"
	"github.com/prism-labs/prism/pkg/miner"
	netpkg "github.com/prism-labs/prism/pkg/net"
	"github.com/prism-labs/prism/pkg/storage"
	"github.com/prism-labs/prism/pkg/txgen"
	"github.com/prism-labs/prism/pkg/utxo"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "prism",
		Short: "prism - a Prism proposer/voter-chain consensus node",
		Long: `prism runs a single node of the Prism blockchain: a proposer
chain ordering transactions, N voter chains electing leaders by vote,
and cryptographic sortition unifying proof-of-work across both.`,
		RunE: runNode,
	}

	config.BindFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runNode(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	log := logger.NewLogger(&logger.Config{
		Level:  verbosityToLevel(cfg.Verbosity),
		Prefix: "prism",
	})
	log.Info("prism: starting node, p2p=%s api=%s voter-chains=%d voter-depth-k=%d",
		cfg.P2PAddr, cfg.APIAddr, cfg.VoterChains, cfg.VoterDepthK)

	metricsRegistry := metrics.New()

	transport, err := netpkg.New(&netpkg.Config{
		ListenPort:     0,
		BootstrapPeers: cfg.KnownPeers,
		EnableMDNS:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to start p2p transport: %w", err)
	}
	defer transport.Close()

	nodeStorage, err := storage.New(storage.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}

	pool := mempool.New(&mempool.Config{Logger: log, Metrics: metricsRegistry})

	blockchain := chain.New(&chain.Config{
		NumVoterChains: cfg.VoterChains,
		Storage:        nodeStorage,
		Mempool:        pool,
		Logger:         log,
		Metrics:        metricsRegistry,
	})

	utxoState := utxo.NewState()

	k := keyring.New()
	icoAccounts, err := keyring.LoadICOKeys(k)
	if err != nil {
		return fmt.Errorf("failed to load ICO keys: %w", err)
	}
	var icoAddresses [6]crypto.H160
	for i, acct := range icoAccounts {
		icoAddresses[i] = acct.Address
	}
	utxoState.PerformICO(icoAddresses)

	ledgerManager := ledger.New(blockchain, utxoState, &ledger.Config{
		VoterDepthK:  cfg.VoterDepthK,
		PollInterval: time.Second,
		Logger:       log,
		Metrics:      metricsRegistry,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ledgerManager.Run(ctx)

	txGenerator, err := txgen.New(&txgen.Config{
		Keyring:   k,
		Mempool:   pool,
		UTXO:      utxoState,
		Transport: transport,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("failed to create transaction generator: %w", err)
	}
	txGenerator.Run()
	defer txGenerator.Exit()

	blockMiner := miner.New(&miner.Config{
		Chain:     blockchain,
		Mempool:   pool,
		Transport: transport,
		Logger:    log,
	})
	blockMiner.Run()
	defer blockMiner.Exit()

	workers := netpkg.NewWorkerPool(&netpkg.WorkerConfig{
		NumWorkers: cfg.P2PWorkers,
		Transport:  transport,
		Chain:      blockchain,
		Mempool:    pool,
		Logger:     log,
	})
	workers.Start()

	apiServer := api.NewServer(&api.Config{
		Port:      apiPort(cfg.APIAddr),
		Miner:     blockMiner,
		TxGen:     txGenerator,
		Transport: transport,
		Metrics:   metricsRegistry,
		Logger:    log,
	})
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Error("prism: api server stopped: %v", err)
		}
	}()
	log.Info("prism: api server listening on %s", cfg.APIAddr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("prism: shutting down")
	return nil
}

// verbosityToLevel maps the -v repeat count to a log level: no -v
// flags runs at INFO, one or more lowers the floor to DEBUG, matching
// the reference implementation's stderrlog verbosity knob.
func verbosityToLevel(verbosity int) logger.Level {
	if verbosity > 0 {
		return logger.DEBUG
	}
	return logger.INFO
}

// apiPort extracts the trailing ":port" from addr, defaulting to 7000
// if addr carries none.
func apiPort(addr string) int {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			var port int
			if _, err := fmt.Sscanf(addr[i+1:], "%d", &port); err == nil {
				return port
			}
			break
		}
	}
	return 7000
}
