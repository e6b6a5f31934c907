package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateEmail is returned by CustomerRepository.Create when a concurrent
// insert won the unique constraint on customers.email. The create orchestrator
// recovers by re-reading and merging into the winning record.
var ErrDuplicateEmail = errors.New("customer email already exists")

// uniqueViolation is the PostgreSQL error code for unique constraint failures
const uniqueViolation = "23505"

// ProductRepository defines the inventory lookup and stock mutation operations
type ProductRepository interface {
	// FindByID returns the product or (nil, nil) when absent
	FindByID(ctx context.Context, productID string) (*Product, error)

	// FindAll lists the product catalog
	FindAll(ctx context.Context) ([]Product, error)

	// DecrementStock atomically consumes one unit. It only applies while
	// available_units > 0 and reports whether a row was updated, so stock can
	// never go negative even under concurrent confirmed payments.
	DecrementStock(ctx context.Context, productID string) (bool, error)
}

// CustomerRepository defines the customer upsert operations
type CustomerRepository interface {
	// FindByID returns the customer or (nil, nil) when absent
	FindByID(ctx context.Context, customerID string) (*Customer, error)

	// FindByEmail looks up a customer by normalized email, (nil, nil) when absent
	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// Create inserts a new customer. Returns ErrDuplicateEmail when a
	// concurrent create raced ahead on the email unique constraint.
	Create(ctx context.Context, customer *Customer) error

	// Update overwrites the contact fields of an existing customer
	Update(ctx context.Context, customer *Customer) error
}

// TransactionRepository defines the transaction store, the only mutable source
// of truth for transaction state. Status transitions are enforced here with
// conditional updates keyed on the expected current state.
type TransactionRepository interface {
	// FindByID returns the transaction or (nil, nil) when absent
	FindByID(ctx context.Context, transactionID string) (*Transaction, error)

	// Create persists a new PENDING transaction
	Create(ctx context.Context, transaction *Transaction) error

	// ClaimPending flips PENDING to IN_PROGRESS in a single conditional
	// update and reports whether this caller won the claim. A transaction
	// that is terminal, already claimed, or missing is never modified.
	ClaimPending(ctx context.Context, transactionID string) (bool, error)

	// CompleteClaim finishes a claimed transaction, moving IN_PROGRESS to the
	// given status and recording the gateway reference and error message.
	CompleteClaim(ctx context.Context, transactionID string, status TransactionStatus, wompiReference, errorMessage string) error

	// RecordCardLast4 stores the card's displayable last digits for receipts
	RecordCardLast4(ctx context.Context, transactionID, last4 string) error
}

// PostgresProductRepository implements ProductRepository using PostgreSQL
type PostgresProductRepository struct {
	db *pgxpool.Pool
}

// NewProductRepository creates a new PostgresProductRepository instance
func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &PostgresProductRepository{db: db}
}

func (r *PostgresProductRepository) FindByID(ctx context.Context, productID string) (*Product, error) {
	var product Product
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, price, COALESCE(image_url, ''), available_units, created_at, updated_at
		FROM products WHERE id = $1
	`, productID).Scan(&product.ID, &product.Name, &product.Description, &product.Price,
		&product.ImageURL, &product.AvailableUnits, &product.CreatedAt, &product.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (r *PostgresProductRepository) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, price, COALESCE(image_url, ''), available_units, created_at, updated_at
		FROM products ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var product Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Description, &product.Price,
			&product.ImageURL, &product.AvailableUnits, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *PostgresProductRepository) DecrementStock(ctx context.Context, productID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET available_units = available_units - 1, updated_at = NOW()
		WHERE id = $1 AND available_units > 0
	`, productID)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// PostgresCustomerRepository implements CustomerRepository using PostgreSQL
type PostgresCustomerRepository struct {
	db *pgxpool.Pool
}

// NewCustomerRepository creates a new PostgresCustomerRepository instance
func NewCustomerRepository(db *pgxpool.Pool) CustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

func (r *PostgresCustomerRepository) FindByID(ctx context.Context, customerID string) (*Customer, error) {
	var customer Customer
	err := r.db.QueryRow(ctx, `
		SELECT id, full_name, email, phone, address, city, COALESCE(notes, ''), created_at, updated_at
		FROM customers WHERE id = $1
	`, customerID).Scan(&customer.ID, &customer.FullName, &customer.Email, &customer.Phone,
		&customer.Address, &customer.City, &customer.Notes, &customer.CreatedAt, &customer.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &customer, nil
}

func (r *PostgresCustomerRepository) FindByEmail(ctx context.Context, email string) (*Customer, error) {
	var customer Customer
	err := r.db.QueryRow(ctx, `
		SELECT id, full_name, email, phone, address, city, COALESCE(notes, ''), created_at, updated_at
		FROM customers WHERE email = $1
	`, email).Scan(&customer.ID, &customer.FullName, &customer.Email, &customer.Phone,
		&customer.Address, &customer.City, &customer.Notes, &customer.CreatedAt, &customer.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &customer, nil
}

func (r *PostgresCustomerRepository) Create(ctx context.Context, customer *Customer) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO customers (id, full_name, email, phone, address, city, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
	`, customer.ID, customer.FullName, customer.Email, customer.Phone,
		customer.Address, customer.City, customer.Notes, customer.CreatedAt, customer.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *PostgresCustomerRepository) Update(ctx context.Context, customer *Customer) error {
	_, err := r.db.Exec(ctx, `
		UPDATE customers
		SET full_name = $2, phone = $3, address = $4, city = $5, notes = NULLIF($6, ''), updated_at = NOW()
		WHERE id = $1
	`, customer.ID, customer.FullName, customer.Phone, customer.Address, customer.City, customer.Notes)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

// PostgresTransactionRepository implements TransactionRepository using PostgreSQL
type PostgresTransactionRepository struct {
	db *pgxpool.Pool
}

// NewTransactionRepository creates a new PostgresTransactionRepository instance
func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

func (r *PostgresTransactionRepository) FindByID(ctx context.Context, transactionID string) (*Transaction, error) {
	var transaction Transaction
	err := r.db.QueryRow(ctx, `
		SELECT id, product_id, customer_id, status, amount, base_fee, delivery_fee, total_amount,
		       COALESCE(wompi_reference, ''), COALESCE(error_message, ''), COALESCE(card_last4, ''), created_at
		FROM transactions WHERE id = $1
	`, transactionID).Scan(&transaction.ID, &transaction.ProductID, &transaction.CustomerID,
		&transaction.Status, &transaction.Amount, &transaction.BaseFee, &transaction.DeliveryFee,
		&transaction.TotalAmount, &transaction.WompiReference, &transaction.ErrorMessage,
		&transaction.CardLast4, &transaction.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return &transaction, nil
}

func (r *PostgresTransactionRepository) Create(ctx context.Context, transaction *Transaction) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO transactions (id, product_id, customer_id, status, amount, base_fee, delivery_fee,
		                          total_amount, wompi_reference, error_message, card_last4, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12)
	`, transaction.ID, transaction.ProductID, transaction.CustomerID, transaction.Status,
		transaction.Amount, transaction.BaseFee, transaction.DeliveryFee, transaction.TotalAmount,
		transaction.WompiReference, transaction.ErrorMessage, transaction.CardLast4, transaction.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *PostgresTransactionRepository) ClaimPending(ctx context.Context, transactionID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE transactions SET status = $2
		WHERE id = $1 AND status = $3
	`, transactionID, StatusInProgress, StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to claim transaction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresTransactionRepository) RecordCardLast4(ctx context.Context, transactionID, last4 string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE transactions SET card_last4 = NULLIF($2, '') WHERE id = $1
	`, transactionID, last4)
	if err != nil {
		return fmt.Errorf("failed to record card last4: %w", err)
	}
	return nil
}

func (r *PostgresTransactionRepository) CompleteClaim(ctx context.Context, transactionID string, status TransactionStatus, wompiReference, errorMessage string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE transactions
		SET status = $2, wompi_reference = NULLIF($3, ''), error_message = NULLIF($4, '')
		WHERE id = $1 AND status = $5
	`, transactionID, status, wompiReference, errorMessage, StatusInProgress)
	if err != nil {
		return fmt.Errorf("failed to complete transaction claim: %w", err)
	}
	return nil
}
