package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
)

func main() {
	// Command line flags
	action := flag.String("action", "", "Action to run: create, pay, poll, recover")
	productID := flag.String("product-id", "", "Product ID for create")
	baseFee := flag.Int64("base-fee", 0, "Base fee in cents")
	deliveryFee := flag.Int64("delivery-fee", 0, "Delivery fee in cents")
	fullName := flag.String("full-name", "", "Customer full name")
	email := flag.String("email", "", "Customer email")
	phone := flag.String("phone", "", "Customer phone")
	address := flag.String("address", "", "Customer delivery address")
	city := flag.String("city", "", "Customer city")
	notes := flag.String("notes", "", "Optional delivery notes")
	transactionID := flag.String("transaction-id", "", "Transaction ID for pay/poll/recover")
	cardToken := flag.String("card-token", "", "Tokenized card for pay")
	acceptanceToken := flag.String("acceptance-token", "", "Gateway acceptance token for pay")
	personalAuthToken := flag.String("personal-auth-token", "", "Personal data auth token for pay")
	cardLast4 := flag.String("card-last4", "", "Last 4 card digits for the receipt (optional)")
	flag.Parse()

	apiURL := os.Getenv("CHECKOUT_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	client := NewClient(apiURL)
	ctx := context.Background()

	switch *action {
	case "create":
		createTransaction(ctx, client, CreateTransactionPayload{
			ProductID:   *productID,
			BaseFee:     *baseFee,
			DeliveryFee: *deliveryFee,
			Customer: CustomerPayload{
				FullName: *fullName,
				Email:    *email,
				Phone:    *phone,
				Address:  *address,
				City:     *city,
				Notes:    *notes,
			},
		})
	case "pay":
		payTransaction(ctx, client, *transactionID, PayTransactionPayload{
			CardToken:          *cardToken,
			AcceptanceToken:    *acceptanceToken,
			AcceptPersonalAuth: *personalAuthToken,
			CardLast4:          *cardLast4,
		})
	case "poll":
		pollTransaction(ctx, client, *transactionID)
	case "recover":
		recoverTransaction(ctx, client, *transactionID)
	default:
		log.Fatalf("Unknown action: %q. Valid actions: create, pay, poll, recover", *action)
	}
}

func createTransaction(ctx context.Context, client *Client, payload CreateTransactionPayload) {
	if payload.ProductID == "" {
		log.Fatal("Product ID is required for create. Use -product-id flag")
	}

	result, err := client.CreateTransaction(ctx, payload)
	if err != nil {
		log.Fatalf("Unable to create transaction: %v", err)
	}

	log.Printf("Transaction created: %s", result.TransactionID)
	log.Printf("Status: %s | Total: %d cents", result.Status, result.TotalAmount)
	log.Println("\nTo pay, run:")
	log.Printf("  go run ./client -action pay -transaction-id %s -card-token <tok> -acceptance-token <tok> -personal-auth-token <tok>", result.TransactionID)
}

func payTransaction(ctx context.Context, client *Client, transactionID string, payload PayTransactionPayload) {
	if transactionID == "" {
		log.Fatal("Transaction ID is required for pay. Use -transaction-id flag")
	}

	result, err := client.PayTransaction(ctx, transactionID, payload)
	if err != nil {
		log.Fatalf("Unable to pay transaction: %v", err)
	}

	log.Printf("Payment submitted: %s | Status: %s", result.TransactionID, result.Status)

	// A PENDING outcome means the gateway has not settled the charge yet;
	// keep polling until it resolves or the budget runs out.
	if result.Status == StatusPending {
		pollTransaction(ctx, client, transactionID)
		return
	}

	logOutcome(result)
}

func pollTransaction(ctx context.Context, client *Client, transactionID string) {
	if transactionID == "" {
		log.Fatal("Transaction ID is required for poll. Use -transaction-id flag")
	}

	log.Printf("Polling transaction %s...", transactionID)
	poller := NewPoller(client)

	result, err := poller.Poll(ctx, transactionID)
	if errors.Is(err, ErrStillPending) {
		log.Printf("Transaction %s is still pending after %d attempts.", transactionID, DefaultPollAttempts)
		log.Println("Run the poll action again later to resume; the transaction is not failed.")
		return
	}
	if err != nil {
		log.Fatalf("Unable to poll transaction: %v", err)
	}

	log.Printf("Transaction resolved to %s after %d attempt(s)", result.Status, result.Attempts)
}

func recoverTransaction(ctx context.Context, client *Client, transactionID string) {
	if transactionID == "" {
		log.Fatal("Transaction ID is required for recover. Use -transaction-id flag")
	}

	result, err := client.GetTransaction(ctx, transactionID)
	if err != nil {
		log.Fatalf("Unable to recover transaction: %v", err)
	}

	logOutcome(result)

	// Resume polling when the recovered transaction is still in flight
	if result.Status == StatusPending {
		pollTransaction(ctx, client, transactionID)
	}
}

func logOutcome(result *TransactionResponse) {
	log.Printf("Transaction %s | Status: %s", result.TransactionID, result.Status)
	if result.WompiReference != nil {
		log.Printf("Gateway reference: %s", *result.WompiReference)
	}
	if result.ErrorMessage != nil {
		log.Printf("Error message: %s", *result.ErrorMessage)
	}
}
