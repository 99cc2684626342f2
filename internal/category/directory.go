package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/controlefinanceiro/lancamentos/internal/models"
)

// Placeholder names shown in entry views when a category cannot be resolved.
const (
	NameMissing     = "Sem categoria"
	NameUnavailable = "Serviço Indisponível"
)

var (
	ErrNoCategory  = fmt.Errorf("%w: no category", models.ErrCategoryUnresolvable)
	ErrUnavailable = fmt.Errorf("%w: directory unavailable", models.ErrCategoryUnresolvable)
)

// Directory looks up categories held by the external category service.
type Directory interface {
	ResolveName(ctx context.Context, id int64) (string, error)
	ResolveKind(ctx context.Context, id int64) (models.Kind, error)
}

// Placeholder returns the name to display for a failed lookup.
func Placeholder(err error) string {
	if errors.Is(err, ErrUnavailable) {
		return NameUnavailable
	}
	return NameMissing
}

// NameOrPlaceholder resolves a category name, degrading to a placeholder.
func NameOrPlaceholder(ctx context.Context, dir Directory, id int64) string {
	name, err := dir.ResolveName(ctx, id)
	if err != nil {
		return Placeholder(err)
	}
	return name
}
