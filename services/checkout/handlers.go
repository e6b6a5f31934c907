package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CheckoutUseCaseInterface defines the interface for the checkout use case
type CheckoutUseCaseInterface interface {
	CreateTransaction(ctx context.Context, input CreateTransactionInput) (*CreateTransactionResult, error)
	PayTransaction(ctx context.Context, transactionID string, input PayTransactionInput) (*PayTransactionResult, error)
	GetTransaction(ctx context.Context, transactionID string) (*GetTransactionResult, error)
	ListProducts(ctx context.Context) ([]Product, error)
}

// CheckoutHandler contains the HTTP handlers
type CheckoutHandler struct {
	useCase CheckoutUseCaseInterface
	tracer  trace.Tracer
}

// NewCheckoutHandler creates a new CheckoutHandler instance
func NewCheckoutHandler(useCase CheckoutUseCaseInterface, tracer trace.Tracer) *CheckoutHandler {
	return &CheckoutHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// respondError maps domain error codes onto HTTP statuses. Anything that is
// not a CheckoutError is an unexpected failure and stays a 500.
func respondError(c *gin.Context, span trace.Span, err error) {
	span.RecordError(err)

	if ce, ok := AsCheckoutError(err); ok {
		status := http.StatusInternalServerError
		switch ce.Code {
		case CodeBadRequest:
			status = http.StatusBadRequest
		case CodeNotFound:
			status = http.StatusNotFound
		case CodeConflict:
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"code": ce.Code, "message": ce.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// CreateTransaction starts a checkout and persists a PENDING transaction
func (h *CheckoutHandler) CreateTransaction(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "create_transaction")
	defer span.End()

	var input CreateTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": CodeBadRequest, "message": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("product_id", input.ProductID),
	)

	result, err := h.useCase.CreateTransaction(ctx, input)
	if err != nil {
		respondError(c, span, err)
		return
	}

	span.SetAttributes(
		attribute.String("transaction_id", result.TransactionID),
		attribute.Int64("total_amount", result.TotalAmount),
	)

	c.JSON(http.StatusCreated, result)
}

// GetTransaction returns the current transaction status
func (h *CheckoutHandler) GetTransaction(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_transaction")
	defer span.End()

	transactionID := c.Param("id")
	span.SetAttributes(attribute.String("transaction_id", transactionID))

	result, err := h.useCase.GetTransaction(ctx, transactionID)
	if err != nil {
		respondError(c, span, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// PayTransaction charges a PENDING transaction through the payment gateway
func (h *CheckoutHandler) PayTransaction(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "pay_transaction")
	defer span.End()

	transactionID := c.Param("id")
	span.SetAttributes(attribute.String("transaction_id", transactionID))

	var input PayTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"code": CodeBadRequest, "message": err.Error()})
		return
	}

	result, err := h.useCase.PayTransaction(ctx, transactionID, input)
	if err != nil {
		respondError(c, span, err)
		return
	}

	span.SetAttributes(attribute.String("status", string(result.Status)))

	c.JSON(http.StatusOK, result)
}

// ListProducts lists the product catalog
func (h *CheckoutHandler) ListProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_products")
	defer span.End()

	products, err := h.useCase.ListProducts(ctx)
	if err != nil {
		respondError(c, span, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// HealthCheck reports service health
func (h *CheckoutHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "checkout-service",
	})
}
