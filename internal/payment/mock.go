package payment

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockGateway is an in-process Gateway for local runs and tests.
type MockGateway struct {
	mu      sync.Mutex
	intents map[string]Intent
}

func NewMockGateway() *MockGateway {
	return &MockGateway{intents: make(map[string]Intent)}
}

func (g *MockGateway) CreateIntent(_ context.Context, amountMinorUnits int64) (Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent := Intent{
		ID:               "pi_mock_" + uuid.NewString(),
		AmountMinorUnits: amountMinorUnits,
		Status:           IntentRequiresPayment,
	}
	g.intents[intent.ID] = intent
	return intent, nil
}

func (g *MockGateway) UpdateIntent(_ context.Context, id string, amountMinorUnits int64) (Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[id]
	if !ok {
		return Intent{}, ErrIntentNotFound
	}
	intent.AmountMinorUnits = amountMinorUnits
	g.intents[id] = intent
	return intent, nil
}

func (g *MockGateway) RetrieveIntent(_ context.Context, id string) (Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[id]
	if !ok {
		return Intent{}, ErrIntentNotFound
	}
	return intent, nil
}

// Settle marks an intent as succeeded, simulating the customer completing
// payment. Test helper.
func (g *MockGateway) Settle(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[id]
	if !ok {
		return false
	}
	intent.Status = IntentSucceeded
	g.intents[id] = intent
	return true
}
