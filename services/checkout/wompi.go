package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// PaymentRequest carries everything the gateway needs for one charge attempt.
// Reference is the transaction id, so provider-side events can be reconciled
// back to the local record.
type PaymentRequest struct {
	Amount             int64
	CustomerEmail      string
	Reference          string
	CardToken          string
	AcceptanceToken    string
	AcceptPersonalAuth string
}

// PaymentResult is the gateway outcome collapsed into the contract the pay
// orchestrator understands. Success and Status are the only inputs to the
// transaction state machine; provider-specific codes never leave the adapter.
type PaymentResult struct {
	Success        bool
	Status         string
	WompiReference string
	ErrorMessage   string
}

// PaymentGateway is the external boundary for card charges. A transport
// failure is returned as an error and propagates untranslated; domain-level
// outcomes (approved, pending, declined) come back inside PaymentResult.
type PaymentGateway interface {
	Charge(ctx context.Context, req PaymentRequest) (PaymentResult, error)
}

type wompiEnvelope struct {
	Data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// WompiGateway implements PaymentGateway against the Wompi card API
type WompiGateway struct {
	client     *resty.Client
	privateKey string
	currency   string
}

// NewWompiGateway creates a new WompiGateway instance
func NewWompiGateway(baseURL, privateKey, currency string) *WompiGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &WompiGateway{
		client:     client,
		privateKey: privateKey,
		currency:   currency,
	}
}

// Charge runs Wompi's two-step card flow:
//   - payment source: binds the card token + customer acceptance to a
//     reusable source id. Raw card details never reach this backend; the
//     client tokenizes them first.
//   - transaction: performs the actual charge using that source, tagged with
//     the local transaction id as reference.
//
// Only an APPROVED provider status maps to success. A provider PENDING status
// is surfaced as a pending result; anything else is a failure with the
// provider's message.
func (g *WompiGateway) Charge(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	sourceID, failure, err := g.createPaymentSource(ctx, req)
	if err != nil {
		return PaymentResult{}, err
	}
	if failure != "" {
		return PaymentResult{Success: false, ErrorMessage: failure}, nil
	}

	return g.createTransaction(ctx, req, sourceID)
}

func (g *WompiGateway) createPaymentSource(ctx context.Context, req PaymentRequest) (string, string, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+g.privateKey).
		SetBody(map[string]any{
			"type":                 "CARD",
			"token":                req.CardToken,
			"customer_email":       req.CustomerEmail,
			"acceptance_token":     req.AcceptanceToken,
			"accept_personal_auth": req.AcceptPersonalAuth,
		}).
		Post("/payment_sources")
	if err != nil {
		return "", "", fmt.Errorf("wompi payment source request failed: %w", err)
	}

	var payload wompiEnvelope
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return "", "", fmt.Errorf("wompi payment source response malformed: %w", err)
	}

	if !resp.IsSuccess() || payload.Data.ID == "" {
		message := payload.Error.Message
		if message == "" {
			message = "Unable to create payment source"
		}
		return "", message, nil
	}

	return payload.Data.ID, "", nil
}

func (g *WompiGateway) createTransaction(ctx context.Context, req PaymentRequest, sourceID string) (PaymentResult, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+g.privateKey).
		SetBody(map[string]any{
			// Wompi expects integer cents, which is what the orchestrator
			// already carries.
			"amount_in_cents":   req.Amount,
			"currency":          g.currency,
			"customer_email":    req.CustomerEmail,
			"payment_source_id": sourceID,
			"reference":         req.Reference,
			"payment_method": map[string]any{
				"installments": 1,
			},
		}).
		Post("/transactions")
	if err != nil {
		return PaymentResult{}, fmt.Errorf("wompi transaction request failed: %w", err)
	}

	var payload wompiEnvelope
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return PaymentResult{}, fmt.Errorf("wompi transaction response malformed: %w", err)
	}

	if !resp.IsSuccess() || payload.Data.ID == "" {
		message := payload.Error.Message
		if message == "" {
			message = "Unable to create transaction"
		}
		return PaymentResult{Success: false, ErrorMessage: message}, nil
	}

	switch payload.Data.Status {
	case "APPROVED":
		return PaymentResult{Success: true, WompiReference: payload.Data.ID}, nil
	case "PENDING":
		return PaymentResult{Success: false, Status: string(StatusPending), WompiReference: payload.Data.ID}, nil
	default:
		status := payload.Data.Status
		if status == "" {
			status = "failed"
		}
		return PaymentResult{Success: false, ErrorMessage: fmt.Sprintf("Transaction %s", status)}, nil
	}
}
