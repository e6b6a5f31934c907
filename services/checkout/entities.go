package main

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransactionStatus represents the lifecycle state of a checkout transaction
type TransactionStatus string

const (
	// StatusPending is both the initial state and a legitimate re-entrant
	// state after certain gateway outcomes.
	StatusPending TransactionStatus = "PENDING"
	// StatusInProgress marks a transaction claimed by a pay call. It is a
	// store-internal guard and is reported to clients as PENDING.
	StatusInProgress TransactionStatus = "IN_PROGRESS"
	StatusSuccess    TransactionStatus = "SUCCESS"
	StatusFailed     TransactionStatus = "FAILED"
)

// Terminal reports whether no further pay call may mutate the transaction.
func (s TransactionStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Product represents a sellable catalog item. Price is in minor currency
// units (cents).
type Product struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	Price          int64     `json:"price" db:"price"`
	ImageURL       string    `json:"imageUrl,omitempty" db:"image_url"`
	AvailableUnits int       `json:"availableUnits" db:"available_units"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// Customer represents a checkout customer, keyed by normalized email
type Customer struct {
	ID        string    `json:"id" db:"id"`
	FullName  string    `json:"fullName" db:"full_name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Address   string    `json:"address" db:"address"`
	City      string    `json:"city" db:"city"`
	Notes     string    `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CustomerContact carries the contact fields supplied on each checkout
type CustomerContact struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Notes    string `json:"notes,omitempty"`
}

// NormalizeEmail trims and lower-cases an email. Every customer lookup and
// write uses the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewCustomer creates a new Customer from checkout contact fields
func NewCustomer(contact CustomerContact) *Customer {
	now := time.Now()
	return &Customer{
		ID:        uuid.New().String(),
		FullName:  contact.FullName,
		Email:     NormalizeEmail(contact.Email),
		Phone:     contact.Phone,
		Address:   contact.Address,
		City:      contact.City,
		Notes:     contact.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Merge overwrites the contact fields with fresh checkout input, keeping the
// existing identity. Subsequent checkouts with the same email update the
// record in place.
func (c *Customer) Merge(contact CustomerContact) {
	c.FullName = contact.FullName
	c.Email = NormalizeEmail(contact.Email)
	c.Phone = contact.Phone
	c.Address = contact.Address
	c.City = contact.City
	c.Notes = contact.Notes
	c.UpdatedAt = time.Now()
}

// Transaction represents a single checkout attempt tying one product, one
// customer, and a monetary total together
type Transaction struct {
	ID          string            `json:"id" db:"id"`
	ProductID   string            `json:"productId" db:"product_id"`
	CustomerID  string            `json:"customerId" db:"customer_id"`
	Status      TransactionStatus `json:"status" db:"status"`
	Amount      int64             `json:"amount" db:"amount"`
	BaseFee     int64             `json:"baseFee" db:"base_fee"`
	DeliveryFee int64             `json:"deliveryFee" db:"delivery_fee"`
	TotalAmount int64             `json:"totalAmount" db:"total_amount"`
	// WompiReference is the payment provider's identifier for the charge
	// attempt, stored for reconciliation.
	WompiReference string    `json:"wompiReference,omitempty" db:"wompi_reference"`
	ErrorMessage   string    `json:"errorMessage,omitempty" db:"error_message"`
	CardLast4      string    `json:"cardLast4,omitempty" db:"card_last4"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// NewTransaction creates a PENDING transaction for a product and customer.
// TotalAmount is always derived from amount + baseFee + deliveryFee, never
// supplied independently.
func NewTransaction(product *Product, customer *Customer, baseFee, deliveryFee int64) *Transaction {
	amount := product.Price
	return &Transaction{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		CustomerID:  customer.ID,
		Status:      StatusPending,
		Amount:      amount,
		BaseFee:     baseFee,
		DeliveryFee: deliveryFee,
		TotalAmount: amount + baseFee + deliveryFee,
		CreatedAt:   time.Now(),
	}
}

// PublicStatus maps the store-internal IN_PROGRESS claim back to PENDING for
// API responses and polling clients.
func (t *Transaction) PublicStatus() TransactionStatus {
	if t.Status == StatusInProgress {
		return StatusPending
	}
	return t.Status
}
