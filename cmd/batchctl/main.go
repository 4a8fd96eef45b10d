package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"go-payments.backend/internal/domain/entities"
	"go-payments.backend/internal/infrastructure/blockchain"
	"go-payments.backend/internal/infrastructure/gateway"
	"go-payments.backend/internal/usecases"
	"go-payments.backend/pkg/logger"
)

// batchctl drives the payment engine from the command line: it imports a
// transfer list from CSV, dispatches it through a wallet provider as one
// atomic batch and records it on the backend. Existing templates can be
// listed, replayed, exported back to CSV or cancelled.
const usage = `Usage: batchctl <command> [flags]

Commands:
  send     dispatch a CSV transfer list as one batch
  replay   re-send a stored template's transfers now
  export   write a stored template to a CSV file
  cancel   cancel a stored template
  assets   list the supported assets

Common flags:
  -wallet   wallet provider RPC endpoint (default http://localhost:8545)
  -backend  backend base URL (default http://localhost:8080)
`

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}
	logger.Init(os.Getenv("SERVER_ENV"))

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	walletURL := flags.String("wallet", "http://localhost:8545", "wallet provider RPC endpoint")
	backendURL := flags.String("backend", "http://localhost:8080", "backend base URL")
	csvPath := flags.String("csv", "", "CSV file to read or write")
	mode := flags.String("mode", "NOW", "batch mode: NOW, SCHEDULE or RECURRING")
	interval := flags.Uint("interval", 0, "schedule interval in minutes")
	operator := flags.String("operator", "", "operator address approved as spender")
	templateID := flags.Uint("template", 0, "template id")
	if err := flags.Parse(os.Args[2:]); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	backend, err := gateway.NewClient(*backendURL)
	if err != nil {
		return err
	}

	if command == "assets" {
		return listAssets(ctx, backend)
	}

	wallet, err := blockchain.NewRPCWalletDispatcher(*walletURL)
	if err != nil {
		return err
	}
	defer wallet.Close()

	session := usecases.NewSessionCoordinator(wallet, backend, logger.L())
	if _, err := session.Connect(ctx); err != nil {
		return fmt.Errorf("wallet connect: %w", err)
	}
	snapshot, err := session.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	log.Printf("Authenticated as %s", snapshot.Account)

	builder := usecases.NewBatchBuilder(common.HexToAddress(*operator))
	dispatcher := usecases.NewDispatchUsecase(builder, wallet, backend, logger.L())

	switch command {
	case "send":
		return send(ctx, dispatcher, snapshot.Account, *csvPath, entities.BatchMode(*mode), *interval)
	case "replay":
		return replay(ctx, dispatcher, backend, snapshot.Account, *templateID)
	case "export":
		return export(ctx, backend, snapshot.Account, *templateID, *csvPath)
	case "cancel":
		return backend.DeleteTemplate(ctx, *templateID)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
		return nil
	}
}

func send(ctx context.Context, dispatcher *usecases.DispatchUsecase, account, csvPath string, mode entities.BatchMode, interval uint) error {
	if csvPath == "" {
		return fmt.Errorf("send requires -csv")
	}
	text, err := os.ReadFile(csvPath)
	if err != nil {
		return err
	}

	codec := usecases.NewCsvCodec(logger.L())
	template, err := codec.Decode(string(text))
	if err != nil {
		return fmt.Errorf("decoding %s: %w", csvPath, err)
	}

	batch := usecases.NewBatchFromTemplate(template, mode, interval)
	if _, err := dispatcher.ExecuteBatch(ctx, batch, account); err != nil {
		return err
	}
	log.Printf("Dispatched %d transfers", batch.Len())
	return nil
}

func replay(ctx context.Context, dispatcher *usecases.DispatchUsecase, backend *gateway.Client, account string, id uint) error {
	template, err := findTemplate(ctx, backend, account, id)
	if err != nil {
		return err
	}
	if err := dispatcher.ReplayTemplate(ctx, template); err != nil {
		return err
	}
	log.Printf("Replayed template %d", id)
	return nil
}

func export(ctx context.Context, backend *gateway.Client, account string, id uint, csvPath string) error {
	template, err := findTemplate(ctx, backend, account, id)
	if err != nil {
		return err
	}

	codec := usecases.NewCsvCodec(logger.L())
	text, err := codec.Encode(template)
	if err != nil {
		return err
	}

	if csvPath == "" {
		csvPath = usecases.ExportFilename(template)
	}
	if err := os.WriteFile(csvPath, []byte(text), 0o644); err != nil {
		return err
	}
	log.Printf("Wrote %s", csvPath)
	return nil
}

func listAssets(ctx context.Context, backend *gateway.Client) error {
	assets, err := backend.ListAssets(ctx)
	if err != nil {
		return err
	}
	for _, a := range assets {
		kind := a.ContractAddress
		if a.IsNative() {
			kind = "native"
		}
		fmt.Printf("%4d  %-6s  chain %-6d  %d decimals  %s\n", a.ID, a.Symbol, a.ChainID, a.Decimals, kind)
	}
	return nil
}

func findTemplate(ctx context.Context, backend *gateway.Client, account string, id uint) (*entities.PaymentTemplate, error) {
	if id == 0 {
		return nil, fmt.Errorf("missing -template")
	}
	templates, err := backend.ListTemplates(ctx, account)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		if templates[i].ID == id {
			return &templates[i], nil
		}
	}
	return nil, fmt.Errorf("template %d not found for %s", id, account)
}
