package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Transaction statuses as reported by the checkout API
const (
	StatusPending = "PENDING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// APIError is a structured error response from the checkout service
type APIError struct {
	HTTPStatus int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("checkout API error (%d %s): %s", e.HTTPStatus, e.Code, e.Message)
}

// CreateTransactionPayload is the request body for a new checkout
type CreateTransactionPayload struct {
	ProductID   string          `json:"productId"`
	BaseFee     int64           `json:"baseFee,omitempty"`
	DeliveryFee int64           `json:"deliveryFee,omitempty"`
	Customer    CustomerPayload `json:"customer"`
}

// CustomerPayload carries the checkout contact fields
type CustomerPayload struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Notes    string `json:"notes,omitempty"`
}

// PayTransactionPayload carries the tokenized payment credentials
type PayTransactionPayload struct {
	CardToken          string `json:"cardToken"`
	AcceptanceToken    string `json:"acceptanceToken"`
	AcceptPersonalAuth string `json:"acceptPersonalAuth"`
	CardLast4          string `json:"cardLast4,omitempty"`
}

// TransactionResponse is the API's view of a transaction
type TransactionResponse struct {
	TransactionID  string  `json:"transactionId"`
	Status         string  `json:"status"`
	TotalAmount    int64   `json:"totalAmount"`
	WompiReference *string `json:"wompiReference"`
	ErrorMessage   *string `json:"errorMessage"`
}

// Client is a thin resty wrapper over the checkout service API
type Client struct {
	http *resty.Client
}

// NewClient creates a new checkout API client
func NewClient(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Content-Type", "application/json"),
	}
}

// CreateTransaction starts a checkout and returns the PENDING transaction
func (c *Client) CreateTransaction(ctx context.Context, payload CreateTransactionPayload) (*TransactionResponse, error) {
	var result TransactionResponse
	var apiErr APIError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		SetError(&apiErr).
		Post("/api/transactions")
	if err != nil {
		return nil, fmt.Errorf("create transaction request failed: %w", err)
	}
	if resp.IsError() {
		apiErr.HTTPStatus = resp.StatusCode()
		return nil, &apiErr
	}
	return &result, nil
}

// GetTransaction reads the current transaction status
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*TransactionResponse, error) {
	var result TransactionResponse
	var apiErr APIError

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&apiErr).
		Get("/api/transactions/" + transactionID)
	if err != nil {
		return nil, fmt.Errorf("get transaction request failed: %w", err)
	}
	if resp.IsError() {
		apiErr.HTTPStatus = resp.StatusCode()
		return nil, &apiErr
	}
	return &result, nil
}

// PayTransaction submits the payment credentials for a PENDING transaction
func (c *Client) PayTransaction(ctx context.Context, transactionID string, payload PayTransactionPayload) (*TransactionResponse, error) {
	var result TransactionResponse
	var apiErr APIError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		SetError(&apiErr).
		Post("/api/transactions/" + transactionID + "/pay")
	if err != nil {
		return nil, fmt.Errorf("pay transaction request failed: %w", err)
	}
	if resp.IsError() {
		apiErr.HTTPStatus = resp.StatusCode()
		return nil, &apiErr
	}
	return &result, nil
}
