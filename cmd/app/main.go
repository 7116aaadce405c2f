package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/mcortesgranados/refacil-ledger/pkg/events"
	"github.com/mcortesgranados/refacil-ledger/pkg/handlers"
	"github.com/mcortesgranados/refacil-ledger/pkg/ledger"
	"github.com/mcortesgranados/refacil-ledger/pkg/storage"
	dydbstore "github.com/mcortesgranados/refacil-ledger/pkg/storage/dynamodb"
	memstore "github.com/mcortesgranados/refacil-ledger/pkg/storage/memory"
	pgstore "github.com/mcortesgranados/refacil-ledger/pkg/storage/postgres"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	store := newStore(logger)

	service := ledger.NewService(store, events.NewLogPublisher(logger), logger)
	router := handlers.NewRouter(service, logger)

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080" // Default port if not specified
	}

	log.Printf("Starting server on port %s", port)

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newStore builds the ledger store selected by LEDGER_BACKEND. The service
// only ever sees the storage.LedgerStore interface, so backends swap freely.
func newStore(logger *slog.Logger) storage.LedgerStore {
	backend := os.Getenv("LEDGER_BACKEND")

	switch backend {
	case "dynamodb":
		cfg, err := config.LoadDefaultConfig(context.TODO())
		if err != nil {
			log.Fatalf("unable to load SDK config, %v", err)
		}

		transactionsTable := os.Getenv("DYNAMODB_TRANSACTIONS_TABLE_NAME")
		balancesTable := os.Getenv("DYNAMODB_BALANCES_TABLE_NAME")
		if transactionsTable == "" || balancesTable == "" {
			log.Fatal("One or more DynamoDB table name environment variables are not set")
		}

		return dydbstore.New(awsdynamodb.NewFromConfig(cfg), transactionsTable, balancesTable)

	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			log.Fatal("DATABASE_URL environment variable not set")
		}

		db, err := sql.Open("postgres", dsn)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to reach database: %v", err)
		}

		store := pgstore.New(db)
		if err := store.Migrate(context.Background()); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		return store

	default:
		logger.Info("no durable backend configured, using in-memory ledger store")
		return memstore.New()
	}
}
