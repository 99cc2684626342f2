package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/controlefinanceiro/lancamentos/internal/events"
	"github.com/controlefinanceiro/lancamentos/internal/models"
)

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ResolveName(ctx context.Context, id int64) (string, error) {
	args := m.Called(id)
	return args.String(0), args.Error(1)
}

func (m *MockDirectory) ResolveKind(ctx context.Context, id int64) (models.Kind, error) {
	args := m.Called(id)
	return args.Get(0).(models.Kind), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}
