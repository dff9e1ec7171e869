package repositories

import (
	"context"
	"strings"

	"catalog/internal/models"
)

// ProductRepository defines the interface for product data access.
// Implementations return ErrProductNotFound (wrapped) for absent ids.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int64) error
	// Search returns products whose name or category contains term, ignoring case.
	// The term is matched literally.
	Search(ctx context.Context, term string) ([]models.Product, error)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching term as a lower-cased literal substring.
// The pattern must be used with ESCAPE '\'.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
