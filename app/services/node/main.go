package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/naivecoin/app/services/node/handlers"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/network"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/peer"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/signature"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/state"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/storage/badger"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/wallet"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/worker"
	"github.com/ardanlabs/naivecoin/foundation/events"
	"github.com/ardanlabs/naivecoin/foundation/logger"
	"github.com/ardanlabs/naivecoin/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			PrivateHost     string        `conf:"default:0.0.0.0:9080"`
			CORSOrigin      string        `conf:"default:*"`
			PublicMaxBody   int64         `conf:"default:1048576,help:largest request body in bytes a wallet can send"`
			PrivateMaxBody  int64         `conf:"default:8388608,help:largest request body in bytes a peer can send"`
		}
		State struct {
			MinerName      string        `conf:"default:miner1"`
			Beneficiary    string        `conf:"help:address paid the mining rewards, overrides the miner wallet"`
			Genesis        string        `conf:"default:zblock/genesis.json"`
			Storage        string        `conf:"default:disk,help:one of disk|badger|memory"`
			DBPath         string        `conf:"default:zblock/miner1/"`
			SelectStrategy string        `conf:"default:fee"`
			KnownPeers     []string      `conf:"default:0.0.0.0:9080;0.0.0.0:9180"`
			PeerTimeout    time.Duration `conf:"default:10s"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/wallets/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "naivecoin ledger node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for addresses. The
	// names come from the wallet files in the name service folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load address name service: %w", err)
	}

	// Logging the addresses for documentation in the logs.
	for address, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "address", address)
	}

	// =========================================================================
	// Blockchain Support

	// The miner is paid the rewards and fees of the blocks it mines. Unless
	// an address is configured, the first address of the miner wallet is used.
	beneficiary := cfg.State.Beneficiary
	if beneficiary == "" {
		path := filepath.Join(cfg.NameService.Folder, cfg.State.MinerName+".json")
		beneficiary, err = minerAddress(path)
		if err != nil {
			return fmt.Errorf("unable to load miner wallet: %w", err)
		}
	}
	if !signature.IsAddress(beneficiary) {
		return fmt.Errorf("invalid beneficiary address %q", beneficiary)
	}

	// The genesis file holds the configuration of the ledger network. Every
	// node of the network must use the same one.
	gen, err := genesis.Load(cfg.State.Genesis)
	if err != nil {
		return fmt.Errorf("unable to load genesis file: %w", err)
	}

	// The storage keeps the blocks and the pending transactions across
	// restarts. The chain is replayed and validated from it on startup.
	strg, err := openStorage(cfg.State.Storage, cfg.State.DBPath)
	if err != nil {
		return fmt.Errorf("unable to open storage: %w", err)
	}

	// A peer set is a collection of known nodes in the network so transactions
	// and blocks can be shared.
	peerSet := peer.NewPeerSet()
	for _, host := range cfg.State.KnownPeers {
		peerSet.Add(peer.New(host))
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. For now, these raw messages are sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// The state value represents the blockchain node and manages the blockchain
	// database and provides an API for application support.
	state, err := state.New(state.Config{
		Beneficiary:    beneficiary,
		Host:           cfg.Web.PrivateHost,
		Storage:        strg,
		Genesis:        gen,
		SelectStrategy: cfg.State.SelectStrategy,
		KnownPeers:     peerSet,
		Network:        network.New(cfg.State.PeerTimeout, ev),
		EvHandler:      ev,
	})
	if err != nil {
		strg.Close()
		return err
	}
	defer state.Shutdown()

	log.Infow("startup", "status", "ledger loaded", "beneficiary", beneficiary, "latest", state.LatestBlock(), "supply", state.Supply())

	// The worker package implements the different workflows such as mining,
	// transaction peer sharing, and peer updates. The worker will register
	// itself with the state.
	worker.Run(state, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, state)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown:     shutdown,
		Log:          log,
		State:        state,
		NS:           ns,
		Evts:         evts,
		CORSOrigin:   cfg.Web.CORSOrigin,
		MaxBodyBytes: cfg.Web.PublicMaxBody,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Start Private Service

	log.Infow("startup", "status", "initializing V1 private API support")

	// Construct the mux for the private API calls.
	privateMux := handlers.PrivateMux(handlers.MuxConfig{
		Shutdown:     shutdown,
		Log:          log,
		State:        state,
		MaxBodyBytes: cfg.Web.PrivateMaxBody,
	})

	// Construct a server to service the requests against the mux.
	private := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      privateMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "private api router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown private API started")
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop private service gracefully: %w", err)
		}

		// Give outstanding requests a deadline for completion.
		ctx, cancelPri := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPri()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// =============================================================================

// minerAddress reads the wallet file and returns its first address.
func minerAddress(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var w wallet.Wallet
	if err := json.Unmarshal(content, &w); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	if len(w.Addresses) == 0 {
		return "", fmt.Errorf("%s: wallet has no addresses", path)
	}

	return w.Addresses[0].Address, nil
}

// openStorage constructs the configured storage for the blocks.
func openStorage(kind string, dbPath string) (database.Storage, error) {
	switch kind {
	case "disk":
		return disk.New(dbPath)
	case "badger":
		return badger.New(dbPath)
	case "memory":
		return memory.New(), nil
	}

	return nil, fmt.Errorf("unknown storage %q", kind)
}
