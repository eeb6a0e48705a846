package payments

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// PaymentGateway abstracts the external payment provider.
type PaymentGateway interface {
	// VerifyTransaction asks the provider whether the transaction succeeded.
	VerifyTransaction(ctx context.Context, transactionReference string) (bool, error)
	// RefundTransaction issues a refund for a completed transaction.
	RefundTransaction(ctx context.Context, transactionReference string) (bool, error)
}

// MockPaymentGateway simulates a provider: verification succeeds roughly 90%
// of the time, refunds always succeed.
type MockPaymentGateway struct {
	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rng *rand.Rand
}

func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (g *MockPaymentGateway) VerifyTransaction(ctx context.Context, transactionReference string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(50 * time.Millisecond):
	}
	g.mu.Lock()
	verdict := g.rng.Float64() < 0.9
	g.mu.Unlock()
	return verdict, nil
}

func (g *MockPaymentGateway) RefundTransaction(ctx context.Context, transactionReference string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(50 * time.Millisecond):
	}
	return true, nil
}
