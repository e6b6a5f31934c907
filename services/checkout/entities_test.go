package main

import (
	"testing"
	"time"
)

func TestNewTransaction(t *testing.T) {
	// Arrange
	product := &Product{
		ID:             "product-123",
		Name:           "Hootsi Classic Burger",
		Price:          1000,
		AvailableUnits: 5,
	}
	customer := &Customer{
		ID:    "customer-456",
		Email: "ana@example.com",
	}

	// Act
	transaction := NewTransaction(product, customer, 100, 200)

	// Assert
	if transaction.ID == "" {
		t.Error("Expected ID to be set")
	}
	if transaction.ProductID != product.ID {
		t.Errorf("Expected ProductID %s, got %s", product.ID, transaction.ProductID)
	}
	if transaction.CustomerID != customer.ID {
		t.Errorf("Expected CustomerID %s, got %s", customer.ID, transaction.CustomerID)
	}
	if transaction.Status != StatusPending {
		t.Errorf("Expected Status %s, got %s", StatusPending, transaction.Status)
	}
	if transaction.Amount != 1000 {
		t.Errorf("Expected Amount 1000, got %d", transaction.Amount)
	}
	if transaction.TotalAmount != 1300 {
		t.Errorf("Expected TotalAmount 1300 (amount + baseFee + deliveryFee), got %d", transaction.TotalAmount)
	}
	if transaction.WompiReference != "" {
		t.Errorf("Expected empty WompiReference, got %s", transaction.WompiReference)
	}
	if transaction.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	now := time.Now()
	if transaction.CreatedAt.After(now) || transaction.CreatedAt.Before(now.Add(-time.Second)) {
		t.Error("CreatedAt is not within expected time range")
	}
}

func TestNewTransactionZeroFees(t *testing.T) {
	// Arrange
	product := &Product{ID: "product-123", Price: 32000, AvailableUnits: 1}
	customer := &Customer{ID: "customer-456"}

	// Act
	transaction := NewTransaction(product, customer, 0, 0)

	// Assert
	if transaction.TotalAmount != 32000 {
		t.Errorf("Expected TotalAmount to equal product price 32000, got %d", transaction.TotalAmount)
	}
}

func TestTransactionStatus(t *testing.T) {
	// Test that constants are defined correctly
	if StatusPending != "PENDING" {
		t.Errorf("Expected StatusPending to be 'PENDING', got %s", StatusPending)
	}
	if StatusInProgress != "IN_PROGRESS" {
		t.Errorf("Expected StatusInProgress to be 'IN_PROGRESS', got %s", StatusInProgress)
	}
	if StatusSuccess != "SUCCESS" {
		t.Errorf("Expected StatusSuccess to be 'SUCCESS', got %s", StatusSuccess)
	}
	if StatusFailed != "FAILED" {
		t.Errorf("Expected StatusFailed to be 'FAILED', got %s", StatusFailed)
	}
}

func TestTransactionStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("Expected PENDING to be non-terminal")
	}
	if StatusInProgress.Terminal() {
		t.Error("Expected IN_PROGRESS to be non-terminal")
	}
	if !StatusSuccess.Terminal() {
		t.Error("Expected SUCCESS to be terminal")
	}
	if !StatusFailed.Terminal() {
		t.Error("Expected FAILED to be terminal")
	}
}

func TestPublicStatus(t *testing.T) {
	// IN_PROGRESS is a store-internal claim and must read back as PENDING
	transaction := &Transaction{Status: StatusInProgress}
	if transaction.PublicStatus() != StatusPending {
		t.Errorf("Expected IN_PROGRESS to surface as PENDING, got %s", transaction.PublicStatus())
	}

	for _, status := range []TransactionStatus{StatusPending, StatusSuccess, StatusFailed} {
		transaction.Status = status
		if transaction.PublicStatus() != status {
			t.Errorf("Expected %s to surface unchanged, got %s", status, transaction.PublicStatus())
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"  Ana@Example.COM ": "ana@example.com",
		"ana@example.com":    "ana@example.com",
		"   ":                "",
	}
	for input, expected := range cases {
		if got := NormalizeEmail(input); got != expected {
			t.Errorf("NormalizeEmail(%q): expected %q, got %q", input, expected, got)
		}
	}
}

func TestNewCustomer(t *testing.T) {
	// Arrange
	contact := CustomerContact{
		FullName: "Ana Torres",
		Email:    " Ana@Example.com ",
		Phone:    "+573001112233",
		Address:  "Calle 10 #4-21",
		City:     "Bogota",
	}

	// Act
	customer := NewCustomer(contact)

	// Assert
	if customer.ID == "" {
		t.Error("Expected ID to be set")
	}
	if customer.Email != "ana@example.com" {
		t.Errorf("Expected normalized email, got %s", customer.Email)
	}
	if customer.FullName != contact.FullName {
		t.Errorf("Expected FullName %s, got %s", contact.FullName, customer.FullName)
	}
	if customer.CreatedAt.IsZero() || customer.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}
}

func TestCustomerMerge(t *testing.T) {
	// Arrange
	customer := NewCustomer(CustomerContact{
		FullName: "Ana Torres",
		Email:    "ana@example.com",
		City:     "Bogota",
	})
	originalID := customer.ID
	originalCreatedAt := customer.CreatedAt

	// Act
	customer.Merge(CustomerContact{
		FullName: "Ana M. Torres",
		Email:    " ANA@example.com",
		Phone:    "+573009998877",
		Address:  "Carrera 7 #45-10",
		City:     "Medellin",
	})

	// Assert: identity is kept, contact fields are overwritten
	if customer.ID != originalID {
		t.Errorf("Expected ID to be kept, got %s", customer.ID)
	}
	if !customer.CreatedAt.Equal(originalCreatedAt) {
		t.Error("Expected CreatedAt to be kept")
	}
	if customer.FullName != "Ana M. Torres" {
		t.Errorf("Expected updated FullName, got %s", customer.FullName)
	}
	if customer.Email != "ana@example.com" {
		t.Errorf("Expected normalized email after merge, got %s", customer.Email)
	}
	if customer.City != "Medellin" {
		t.Errorf("Expected updated City, got %s", customer.City)
	}
}
