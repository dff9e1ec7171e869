package services

import (
	"context"
	"strings"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	validator *Validator
	events    *EventPublisher
	log       *logrus.Entry
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, validator *Validator, events *EventPublisher, logger *logrus.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		validator: validator,
		events:    events,
		log:       logger.WithField("component", "product_service"),
	}
}

// ListProducts retrieves all products.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates the input and stores it as a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := s.validator.ValidateProduct(in); err != nil {
		return nil, err
	}

	var product models.Product
	in.Apply(&product)
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"id": product.ID, "name": product.Name}).Info("Created product")
	s.publish(models.NewProductEvent(models.EventProductCreated, product.ID, &product))
	return &product, nil
}

// UpdateProduct replaces every mutable field of an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error) {
	if err := s.validator.ValidateProduct(in); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(product)
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.log.WithField("id", product.ID).Info("Updated product")
	s.publish(models.NewProductEvent(models.EventProductUpdated, product.ID, product))
	return product, nil
}

// DeleteProduct permanently removes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithField("id", id).Info("Deleted product")
	s.publish(models.NewProductEvent(models.EventProductDeleted, id, nil))
	return nil
}

// SearchProducts returns products whose name or category contains query, ignoring case.
// A blank query is rejected.
func (s *ProductService) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	if strings.TrimSpace(query) == "" {
		return nil, NewFieldError("query", "field is required")
	}

	products, err := s.repo.Search(ctx, strings.ToLower(query))
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"query": query, "results": len(products)}).Info("Search")
	return products, nil
}

// publish never fails the calling operation; the change is already stored.
func (s *ProductService) publish(event models.ProductEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishProductEvent(event); err != nil {
		s.log.WithError(err).Warn("Failed to publish product event")
	}
}
