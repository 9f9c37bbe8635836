package main

import (
	"flag"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/Samuel1505/TrustBridge-sub000/app"
	eth "github.com/Samuel1505/TrustBridge-sub000/eth/client"
	"github.com/Samuel1505/TrustBridge-sub000/indexer"
	"github.com/Samuel1505/TrustBridge-sub000/registry"
	"github.com/Samuel1505/TrustBridge-sub000/token"
)

func absPath(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		log.Fatal("[MAIN] Invalid path ", path, ": ", err)
	}
	return abs
}

// createTokenPort binds the configured ERC-20 token. Without an rpc url it
// falls back to an in-memory token, which config validation only allows in
// staging mode.
func createTokenPort() (registry.TokenPort, common.Address) {
	if app.Config.Ethereum.RPCURL == "" {
		spender := common.HexToAddress(app.Config.Registry.Admin)
		if signer, err := app.CreateOperatorSigner(); err == nil {
			spender = signer.EthAddress()
			signer.Destroy()
		}
		log.Warn("[MAIN] No rpc url configured, using an in-memory token with spender ", spender.Hex())
		return token.NewMemory().Port(spender), spender
	}

	eth.Client.ValidateNetwork()

	signer, err := app.CreateOperatorSigner()
	if err != nil {
		log.Fatal("[MAIN] ", err)
	}
	erc20, err := eth.NewERC20Token(eth.Client, common.HexToAddress(app.Config.Ethereum.TokenAddress), signer)
	if err != nil {
		log.Fatal("[MAIN] Error binding token: ", err)
	}
	return erc20, erc20.Spender()
}

func registryParams(port registry.TokenPort, sink registry.EventSink) registry.Params {
	fee := new(big.Int)
	if app.Config.Registry.RegistrationFee != "" {
		fee.SetString(app.Config.Registry.RegistrationFee, 10)
	}
	return registry.Params{
		Admin:           common.HexToAddress(app.Config.Registry.Admin),
		FeeCollector:    common.HexToAddress(app.Config.Registry.FeeCollector),
		TrustedVerifier: common.HexToAddress(app.Config.Registry.TrustedVerifier),
		RegistrationFee: fee,
		StagingMode:     app.Config.Registry.StagingMode,
		Token:           port,
		Sink:            sink,
	}
}

// newNode replays the stored event log into a fresh registry and ledger.
// Registry parameters from config only seed an empty log; afterwards they
// come from the log's genesis and admin events, and config disagreeing with
// them is reported but not applied.
func newNode(port registry.TokenPort, operator common.Address) *Node {
	outbox := indexer.NewOutbox()
	params := registryParams(port, outbox)
	reg, err := registry.New(params)
	if err != nil {
		log.Fatal("[MAIN] Error creating registry: ", err)
	}
	ledger := registry.NewDonationLedger(reg, nil)

	events, err := indexer.LoadEvents()
	if err != nil {
		log.Fatal("[MAIN] ", err)
	}
	if err := reg.Restore(events, ledger); err != nil {
		log.Fatal("[MAIN] Error restoring registry: ", err)
	}
	if len(events) == 0 {
		if err := reg.Initialize(); err != nil {
			log.Fatal("[MAIN] Error initializing registry: ", err)
		}
	} else if drift := reg.ParamDrift(params); len(drift) > 0 {
		log.Warn("[MAIN] Ignoring registry config that differs from the event log: ", strings.Join(drift, ", "))
	}

	node := &Node{
		Outbox:   outbox,
		Registry: reg,
		Ledger:   ledger,
		Indexer:  indexer.NewRunner(outbox, reg, ledger),
	}
	node.Health = app.NewHealthCheck(operator, func() (uint64, uint64) {
		return reg.TotalNGOs(), ledger.TotalDonationsCount()
	})
	return node
}

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	var configPath, envPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&envPath, "env", "", "path to env file")
	flag.Parse()

	if configPath == "" && envPath == "" {
		log.Debug("[MAIN] No config or env file provided, reading environment only")
	}

	app.InitConfig(absPath(configPath), absPath(envPath))
	app.InitLogger()
	app.InitDB()

	port, operator := createTokenPort()
	node := newNode(port, operator)

	wg := &sync.WaitGroup{}
	services := CreateServices(wg, node)
	node.Health.SetServices(services)

	healthService := app.NewRunnerService(
		app.HealthServiceName,
		node.Health,
		wg,
		time.Duration(app.Config.HealthCheck.IntervalMillis)*time.Millisecond,
	)

	wg.Add(len(services) + 1)
	for _, service := range services {
		go service.Start()
	}
	go healthService.Start()

	log.Info("[MAIN] Started ", len(services)+1, " services")

	// Gracefully shut down server
	gracefulStop := make(chan os.Signal, 1)
	done := make(chan bool, 1)
	signal.Notify(gracefulStop, syscall.SIGINT, syscall.SIGTERM)
	go waitForExitSignals(gracefulStop, done)
	<-done

	log.Debug("[MAIN] Gracefully shutting down server...")
	for _, service := range services {
		service.Stop()
	}
	healthService.Stop()
	wg.Wait()

	if app.Config.Indexer.Enabled && !node.Indexer.Flush() {
		log.Error("[MAIN] ", node.Outbox.Len(), " events were not persisted")
	}
	if err := app.DB.Disconnect(); err != nil {
		log.Error("[MAIN] Error disconnecting from database: ", err)
	}
	log.Debug("[MAIN] Server gracefully stopped")
}

func waitForExitSignals(gracefulStop chan os.Signal, done chan bool) {
	sig := <-gracefulStop
	log.Debug("[MAIN] Got signal: ", sig)
	done <- true
}
