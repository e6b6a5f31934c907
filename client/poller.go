package main

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultPollAttempts bounds how many status reads a single polling run
	// performs before giving up.
	DefaultPollAttempts = 12
	// DefaultPollDelay is the fixed delay between attempts.
	DefaultPollDelay = 2500 * time.Millisecond
)

// ErrStillPending means the polling budget ran out while the transaction was
// still PENDING. This is a recoverable client-side outcome, not a data error:
// the transaction itself is untouched and a fresh poll may be started later
// (e.g. after a page reload) by recovering it by id.
var ErrStillPending = errors.New("transaction still pending")

// PollResult is the outcome of a polling run that observed a terminal status
type PollResult struct {
	TransactionID string
	Status        string
	Attempts      int
}

// Poller repeatedly reads a transaction's status until it turns terminal or
// the attempt budget is exhausted. Each poll is an independent idempotent
// read, so abandoning the loop needs no server-side cancellation.
type Poller struct {
	client   *Client
	attempts int
	delay    time.Duration
}

// NewPoller creates a Poller with the default budget of 12 attempts spaced
// 2.5s apart
func NewPoller(client *Client) *Poller {
	return &Poller{
		client:   client,
		attempts: DefaultPollAttempts,
		delay:    DefaultPollDelay,
	}
}

// NewPollerWithBudget creates a Poller with an explicit attempt budget and
// delay
func NewPollerWithBudget(client *Client, attempts int, delay time.Duration) *Poller {
	return &Poller{
		client:   client,
		attempts: attempts,
		delay:    delay,
	}
}

// Poll runs the bounded polling loop. A SUCCESS or FAILED status ends the
// loop immediately with the resolved status and the attempt count. If PENDING
// persists through every attempt, Poll returns ErrStillPending. The caller
// can cancel between attempts through ctx.
func (p *Poller) Poll(ctx context.Context, transactionID string) (PollResult, error) {
	for attempt := 1; attempt <= p.attempts; attempt++ {
		transaction, err := p.client.GetTransaction(ctx, transactionID)
		if err != nil {
			return PollResult{}, err
		}

		status := transaction.Status
		if status == "" {
			status = StatusPending
		}
		if status == StatusSuccess || status == StatusFailed {
			return PollResult{
				TransactionID: transactionID,
				Status:        status,
				Attempts:      attempt,
			}, nil
		}

		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return PollResult{}, ctx.Err()
		}
	}

	return PollResult{}, ErrStillPending
}
