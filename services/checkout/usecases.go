package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/metric"
)

// CreateTransactionInput is the payload to start a checkout
type CreateTransactionInput struct {
	ProductID   string          `json:"productId"`
	BaseFee     json.Number     `json:"baseFee"`
	DeliveryFee json.Number     `json:"deliveryFee"`
	Customer    CustomerContact `json:"customer"`
}

// PayTransactionInput carries the payment credentials produced by the
// client-side tokenization flow
type PayTransactionInput struct {
	CardToken          string `json:"cardToken"`
	AcceptanceToken    string `json:"acceptanceToken"`
	AcceptPersonalAuth string `json:"acceptPersonalAuth"`
	// CardLast4 is optional display data for receipts; the full card number
	// never reaches this service.
	CardLast4 string `json:"cardLast4"`
}

// CheckoutUseCase contains the checkout business logic
type CheckoutUseCase struct {
	products     ProductRepository
	customers    CustomerRepository
	transactions TransactionRepository
	gateway      PaymentGateway

	transactionsCreated metric.Int64Counter
	paymentsApproved    metric.Int64Counter
	paymentsDeclined    metric.Int64Counter
	stockConflicts      metric.Int64Counter
}

// NewCheckoutUseCase creates a new CheckoutUseCase instance
func NewCheckoutUseCase(
	products ProductRepository,
	customers CustomerRepository,
	transactions TransactionRepository,
	gateway PaymentGateway,
	meter metric.Meter,
) (*CheckoutUseCase, error) {
	uc := &CheckoutUseCase{
		products:     products,
		customers:    customers,
		transactions: transactions,
		gateway:      gateway,
	}

	var err error
	if uc.transactionsCreated, err = meter.Int64Counter("checkout.transactions_created"); err != nil {
		return nil, err
	}
	if uc.paymentsApproved, err = meter.Int64Counter("checkout.payments_approved"); err != nil {
		return nil, err
	}
	if uc.paymentsDeclined, err = meter.Int64Counter("checkout.payments_declined"); err != nil {
		return nil, err
	}
	if uc.stockConflicts, err = meter.Int64Counter("checkout.stock_conflicts"); err != nil {
		return nil, err
	}

	return uc, nil
}

// CreateTransaction validates the checkout input, checks inventory, upserts
// the customer, computes the fee breakdown, and persists a PENDING
// transaction. Stock is NOT consumed here; it is only decremented once a
// payment is confirmed, so abandoned transactions need no compensating
// inventory logic.
func (uc *CheckoutUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*CreateTransactionResult, error) {
	// 1. A transaction needs a product and a customer mail
	if input.ProductID == "" {
		return nil, BadRequest("productId is required")
	}
	email := NormalizeEmail(input.Customer.Email)
	if email == "" {
		return nil, BadRequest("customer.email is required")
	}

	log.Printf("➡️ [CREATE TX] ProductID: %s | Email: %s", input.ProductID, email)

	// 2. Product availability is checked before any customer or transaction
	// writes, to avoid orphaned records for a product that cannot be sold
	product, err := uc.products.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, NotFound("Product not found")
	}
	if product.AvailableUnits <= 0 {
		log.Printf("❌ CREATE TX rejected: out of stock | ProductID=%s", input.ProductID)
		return nil, Conflict("Product out of stock")
	}

	// 3. Customer is upserted by normalized email to keep checkout guest-based
	contact := input.Customer
	contact.Email = email
	customer, err := uc.upsertCustomer(ctx, contact)
	if err != nil {
		return nil, err
	}

	// 4. Fees are optional and default to 0
	baseFee, err := parseFee(input.BaseFee)
	if err != nil {
		return nil, err
	}
	deliveryFee, err := parseFee(input.DeliveryFee)
	if err != nil {
		return nil, err
	}

	// 5. Transaction starts in PENDING until payment confirms
	transaction := NewTransaction(product, customer, baseFee, deliveryFee)
	if err := uc.transactions.Create(ctx, transaction); err != nil {
		return nil, err
	}

	uc.transactionsCreated.Add(ctx, 1)
	log.Printf("✅ [CREATE TX] Success: TransactionID=%s Total=%d", transaction.ID, transaction.TotalAmount)

	return &CreateTransactionResult{
		TransactionID: transaction.ID,
		Status:        transaction.Status,
		TotalAmount:   transaction.TotalAmount,
	}, nil
}

// upsertCustomer finds-or-creates a customer by normalized email. When a
// concurrent create wins the unique constraint, it re-reads and merges into
// the winning record instead of propagating the conflict. Bounded to one
// retry: a second collision means something other than the known race.
func (uc *CheckoutUseCase) upsertCustomer(ctx context.Context, contact CustomerContact) (*Customer, error) {
	existing, err := uc.customers.FindByEmail(ctx, contact.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Merge(contact)
		if err := uc.customers.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	customer := NewCustomer(contact)
	err = uc.customers.Create(ctx, customer)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, ErrDuplicateEmail) {
		return nil, err
	}

	log.Printf("ℹ️ [UPSERT] Concurrent create won for %s, merging into winner", contact.Email)
	winner, err := uc.customers.FindByEmail(ctx, contact.Email)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, fmt.Errorf("customer vanished after duplicate email conflict: %s", contact.Email)
	}
	winner.Merge(contact)
	if err := uc.customers.Update(ctx, winner); err != nil {
		return nil, err
	}
	return winner, nil
}

// parseFee parses an optional fee in integer cents, defaulting to 0
func parseFee(raw json.Number) (int64, error) {
	if raw.String() == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw.String(), 10, 64)
	if err != nil {
		return 0, BadRequest("baseFee and deliveryFee must be numbers")
	}
	return value, nil
}

// PayTransaction charges a PENDING transaction through the payment gateway
// and maps the outcome onto the transaction state machine:
//
//	gateway PENDING            -> PENDING, reference recorded, error cleared
//	approved, stock available  -> SUCCESS, stock decremented by exactly 1
//	approved, stock exhausted  -> CONFLICT, transaction stays PENDING
//	declined "acceptance token"-> PENDING, error recorded for re-consent
//	declined otherwise         -> FAILED, reference cleared, error recorded
//
// The transaction is claimed with a store-enforced PENDING -> IN_PROGRESS
// compare-and-swap before the gateway is invoked, so two concurrent callers
// can never both charge the same transaction.
func (uc *CheckoutUseCase) PayTransaction(ctx context.Context, transactionID string, input PayTransactionInput) (*PayTransactionResult, error) {
	transaction, err := uc.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, NotFound("Transaction not found")
	}

	// Only PENDING transactions can be paid; SUCCESS and FAILED are terminal
	if transaction.Status != StatusPending {
		return nil, Conflict("Transaction is not pending")
	}

	if input.CardToken == "" || input.AcceptanceToken == "" || input.AcceptPersonalAuth == "" {
		return nil, BadRequest("Missing payment credentials")
	}

	// The gateway charges against the customer's email; resolve it before
	// claiming so a missing record never leaves a dangling claim.
	customer, err := uc.customers.FindByID(ctx, transaction.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, NotFound("Customer not found")
	}

	// Claim the transaction. Losing the claim means another caller got here
	// first; reject without touching the record.
	claimed, err := uc.transactions.ClaimPending(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, Conflict("Transaction is not pending")
	}

	if input.CardLast4 != "" {
		if err := uc.transactions.RecordCardLast4(ctx, transactionID, input.CardLast4); err != nil {
			uc.releaseClaim(ctx, transaction)
			return nil, err
		}
	}

	log.Printf("➡️ [PAY TX] TransactionID: %s | Amount: %d", transaction.ID, transaction.TotalAmount)

	result, err := uc.gateway.Charge(ctx, PaymentRequest{
		Amount:             transaction.TotalAmount,
		CustomerEmail:      customer.Email,
		Reference:          transaction.ID,
		CardToken:          input.CardToken,
		AcceptanceToken:    input.AcceptanceToken,
		AcceptPersonalAuth: input.AcceptPersonalAuth,
	})
	if err != nil {
		// Transport errors are not masked as payment outcomes. Put the
		// transaction back exactly as it was so the client can retry.
		uc.releaseClaim(ctx, transaction)
		return nil, fmt.Errorf("payment gateway charge failed: %w", err)
	}

	return uc.applyGatewayResult(ctx, transaction, result)
}

// applyGatewayResult persists the state transition for a claimed transaction.
// The precedence (explicit PENDING, then success, then failure) is
// load-bearing: a provider-pending charge must not be treated as declined.
func (uc *CheckoutUseCase) applyGatewayResult(ctx context.Context, transaction *Transaction, result PaymentResult) (*PayTransactionResult, error) {
	switch {
	case result.Status == string(StatusPending):
		// No-op transition: stay PENDING, record the reference, clear the error
		if err := uc.transactions.CompleteClaim(ctx, transaction.ID, StatusPending, result.WompiReference, ""); err != nil {
			return nil, err
		}
		log.Printf("ℹ️ [PAY TX] Gateway pending: TransactionID=%s Ref=%s", transaction.ID, result.WompiReference)
		return &PayTransactionResult{
			TransactionID:  transaction.ID,
			Status:         StatusPending,
			WompiReference: nullable(result.WompiReference),
			ErrorMessage:   nil,
		}, nil

	case result.Success:
		return uc.confirmPayment(ctx, transaction, result)

	default:
		errorMessage := result.ErrorMessage
		if errorMessage == "" {
			errorMessage = "Payment failed"
		}

		// A rejected acceptance token is a recoverable input problem: keep
		// the transaction PENDING so the client can re-prompt for consent.
		// This is deliberately a literal substring match.
		if strings.Contains(strings.ToLower(errorMessage), "acceptance token") {
			if err := uc.transactions.CompleteClaim(ctx, transaction.ID, StatusPending, result.WompiReference, errorMessage); err != nil {
				return nil, err
			}
			log.Printf("↩️ [PAY TX] Recoverable decline: TransactionID=%s | %s", transaction.ID, errorMessage)
			return &PayTransactionResult{
				TransactionID:  transaction.ID,
				Status:         StatusPending,
				WompiReference: nullable(result.WompiReference),
				ErrorMessage:   nullable(errorMessage),
			}, nil
		}

		if err := uc.transactions.CompleteClaim(ctx, transaction.ID, StatusFailed, "", errorMessage); err != nil {
			return nil, err
		}
		uc.paymentsDeclined.Add(ctx, 1)
		log.Printf("❌ [PAY TX] Declined: TransactionID=%s | %s", transaction.ID, errorMessage)
		return &PayTransactionResult{
			TransactionID:  transaction.ID,
			Status:         StatusFailed,
			WompiReference: nil,
			ErrorMessage:   nullable(errorMessage),
		}, nil
	}
}

// confirmPayment finishes an approved charge: the live stock count is
// re-checked at the moment of confirmation (not the count read at creation
// time), then decremented by exactly 1. Losing the stock race leaves the
// transaction PENDING and surfaces CONFLICT; the charge already happened, and
// this design has no compensating refund step.
func (uc *CheckoutUseCase) confirmPayment(ctx context.Context, transaction *Transaction, result PaymentResult) (*PayTransactionResult, error) {
	if transaction.ProductID == "" {
		uc.releaseClaim(ctx, transaction)
		return nil, NotFound("Product not found")
	}

	product, err := uc.products.FindByID(ctx, transaction.ProductID)
	if err != nil {
		uc.releaseClaim(ctx, transaction)
		return nil, err
	}
	if product == nil {
		uc.releaseClaim(ctx, transaction)
		return nil, NotFound("Product not found")
	}
	if product.AvailableUnits <= 0 {
		uc.releaseClaim(ctx, transaction)
		uc.stockConflicts.Add(ctx, 1)
		log.Printf("❌ [PAY TX] Stock exhausted after approval: TransactionID=%s ProductID=%s", transaction.ID, product.ID)
		return nil, Conflict("Product out of stock")
	}

	decremented, err := uc.products.DecrementStock(ctx, transaction.ProductID)
	if err != nil {
		uc.releaseClaim(ctx, transaction)
		return nil, err
	}
	if !decremented {
		uc.releaseClaim(ctx, transaction)
		uc.stockConflicts.Add(ctx, 1)
		log.Printf("❌ [PAY TX] Lost stock race: TransactionID=%s ProductID=%s", transaction.ID, transaction.ProductID)
		return nil, Conflict("Product out of stock")
	}

	if err := uc.transactions.CompleteClaim(ctx, transaction.ID, StatusSuccess, result.WompiReference, ""); err != nil {
		return nil, err
	}

	uc.paymentsApproved.Add(ctx, 1)
	log.Printf("✅ [PAY TX] Success: TransactionID=%s Ref=%s", transaction.ID, result.WompiReference)
	return &PayTransactionResult{
		TransactionID:  transaction.ID,
		Status:         StatusSuccess,
		WompiReference: nullable(result.WompiReference),
		ErrorMessage:   nil,
	}, nil
}

// releaseClaim puts a claimed transaction back to PENDING with its original
// reference and error message, leaving the record as if the claim never
// happened
func (uc *CheckoutUseCase) releaseClaim(ctx context.Context, transaction *Transaction) {
	if err := uc.transactions.CompleteClaim(ctx, transaction.ID, StatusPending, transaction.WompiReference, transaction.ErrorMessage); err != nil {
		log.Printf("❌ Failed to release transaction claim: TransactionID=%s | %v", transaction.ID, err)
	}
}

// GetTransaction reads the current transaction status. Reads are idempotent;
// a claimed IN_PROGRESS row is reported as PENDING.
func (uc *CheckoutUseCase) GetTransaction(ctx context.Context, transactionID string) (*GetTransactionResult, error) {
	transaction, err := uc.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, NotFound("Transaction not found")
	}

	return &GetTransactionResult{
		TransactionID:  transaction.ID,
		Status:         transaction.PublicStatus(),
		TotalAmount:    transaction.TotalAmount,
		WompiReference: nullable(transaction.WompiReference),
		ErrorMessage:   nullable(transaction.ErrorMessage),
	}, nil
}

// ListProducts lists the product catalog
func (uc *CheckoutUseCase) ListProducts(ctx context.Context) ([]Product, error) {
	return uc.products.FindAll(ctx)
}
