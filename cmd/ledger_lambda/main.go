package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/mcortesgranados/refacil-ledger/pkg/api"
	ledgerevents "github.com/mcortesgranados/refacil-ledger/pkg/events"
	"github.com/mcortesgranados/refacil-ledger/pkg/ledger"
	"github.com/mcortesgranados/refacil-ledger/pkg/mapping"
	"github.com/mcortesgranados/refacil-ledger/pkg/storage"
	dydbstore "github.com/mcortesgranados/refacil-ledger/pkg/storage/dynamodb"
)

var service *ledger.Service

func init() {
	// Load environment variables from .env file (useful for local testing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize dependencies once.
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	transactionsTable := os.Getenv("DYNAMODB_TRANSACTIONS_TABLE_NAME")
	balancesTable := os.Getenv("DYNAMODB_BALANCES_TABLE_NAME")
	if transactionsTable == "" || balancesTable == "" {
		log.Fatal("One or more DynamoDB table name environment variables are not set")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	store := dydbstore.New(awsdynamodb.NewFromConfig(cfg), transactionsTable, balancesTable)
	service = ledger.NewService(store, ledgerevents.NewLogPublisher(logger), logger)
}

// HandleRequest processes a deposit/withdraw command arriving through API Gateway.
func HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var newTx api.NewTransaction
	if err := json.Unmarshal([]byte(request.Body), &newTx); err != nil {
		return respond(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	processedTx, err := service.Process(ctx, mapping.ToCommand(&newTx))
	if err != nil {
		var validationErr *ledger.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return respond(http.StatusBadRequest, map[string]string{"error": validationErr.Error()})
		case errors.Is(err, storage.ErrInsufficientFunds):
			return respond(http.StatusUnprocessableEntity, map[string]string{"error": "insufficient funds"})
		case errors.Is(err, storage.ErrDuplicateTransaction):
			return respond(http.StatusConflict, map[string]string{"error": "transaction with this id already exists"})
		default:
			log.Printf("ERROR: failed to process transaction: %v", err)
			return respond(http.StatusInternalServerError, map[string]string{"error": "failed to process transaction"})
		}
	}

	return respond(http.StatusCreated, mapping.ToApiTransaction(processedTx))
}

func respond(status int, body any) (events.APIGatewayProxyResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(payload),
	}, nil
}

func main() {
	lambda.Start(HandleRequest)
}
