package category

import (
	"context"

	"github.com/stretchr/testify/mock"

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
