package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/logging"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Search(ctx context.Context, term string) ([]models.Product, error) {
	args := m.Called(ctx, term)
	return args.Get(0).([]models.Product), args.Error(1)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func guitarInput() models.ProductInput {
	return models.ProductInput{
		Name:        "Acoustic Guitar",
		Description: strPtr("A 6-string acoustic guitar"),
		Price:       price("199.99"),
		Category:    "Instruments",
	}
}

func newService(repo *MockProductRepository, pub *MockPublisher) *services.ProductService {
	var events *services.EventPublisher
	if pub != nil {
		events = services.NewEventPublisher(pub, "catalog.products")
	}
	return services.NewProductService(repo, services.NewValidator(), events, logging.Discard())
}

func decodeEvent(t *testing.T, body []byte) models.ProductEvent {
	t.Helper()
	var event models.ProductEvent
	require.NoError(t, json.Unmarshal(body, &event))
	return event
}

func TestProductService_ListProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	expectedProducts := []models.Product{
		{ID: 1, Name: "Product A", Price: decimal.NewFromInt(10), Category: "A"},
		{ID: 2, Name: "Product B", Price: decimal.NewFromInt(20), Category: "B"},
	}

	mockRepo.On("GetAll", mock.Anything).Return(expectedProducts, nil).Once()

	products, err := service.ListProducts(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListProducts_StoreError(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	storeErr := errors.New("connection refused")
	mockRepo.On("GetAll", mock.Anything).Return([]models.Product(nil), storeErr).Once()

	products, err := service.ListProducts(context.Background())

	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, products)
}

func TestProductService_GetProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	expected := &models.Product{ID: 1, Name: "Product A", Price: decimal.NewFromInt(10), Category: "A"}

	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(expected, nil).Once()
	product, err := service.GetProduct(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, expected, product)

	mockRepo.On("GetByID", mock.Anything, int64(99)).
		Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrProductNotFound)).Once()
	product, err = service.GetProduct(context.Background(), 99)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := newService(mockRepo, mockPub)

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Product) bool {
		return p.Name == "Acoustic Guitar" && p.Category == "Instruments" &&
			p.Price.Equal(decimal.RequireFromString("199.99")) &&
			p.Description != nil && *p.Description == "A 6-string acoustic guitar"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Product).ID = 1
	}).Return(nil).Once()
	mockPub.On("Publish", "catalog.products", models.EventProductCreated, mock.Anything).Return(nil).Once()

	product, err := service.CreateProduct(context.Background(), guitarInput())

	require.NoError(t, err)
	assert.Equal(t, int64(1), product.ID)
	assert.Equal(t, "Acoustic Guitar", product.Name)
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)

	event := decodeEvent(t, mockPub.Calls[0].Arguments.Get(2).([]byte))
	assert.Equal(t, models.EventProductCreated, event.Type)
	assert.Equal(t, int64(1), event.ProductID)
	require.NotNil(t, event.Product)
	assert.Equal(t, "199.99", event.Product.Price.StringFixed(2))
}

func TestProductService_CreateProduct_ValidationFailureDoesNotPersist(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := newService(mockRepo, mockPub)

	input := guitarInput()
	input.Price = price("-1.00")
	input.Name = ""

	product, err := service.CreateProduct(context.Background(), input)

	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "price")
	assert.Contains(t, validationErr.Fields, "name")
	assert.Nil(t, product)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockPub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_CreateProduct_StoreError(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := newService(mockRepo, mockPub)

	storeErr := errors.New("database error")
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(storeErr).Once()

	product, err := service.CreateProduct(context.Background(), guitarInput())

	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, product)
	mockPub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_CreateProduct_PublishFailureIsNotFatal(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := newService(mockRepo, mockPub)

	mockRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Product).ID = 7
	}).Return(nil).Once()
	mockPub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("channel closed")).Once()

	product, err := service.CreateProduct(context.Background(), guitarInput())

	require.NoError(t, err)
	assert.Equal(t, int64(7), product.ID)
	mockPub.AssertExpectations(t)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := newService(mockRepo, mockPub)

	existing := &models.Product{
		ID:          1,
		Name:        "Old",
		Description: strPtr("old description"),
		Price:       decimal.NewFromInt(5),
		Category:    "Old",
	}
	input := models.ProductInput{Name: "New", Price: price("12.50"), Category: "New"}

	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil).Once()
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Product) bool {
		return p.ID == 1 && p.Name == "New" && p.Category == "New" &&
			p.Description == nil && p.Price.Equal(decimal.RequireFromString("12.5"))
	})).Return(nil).Once()
	mockPub.On("Publish", "catalog.products", models.EventProductUpdated, mock.Anything).Return(nil).Once()

	product, err := service.UpdateProduct(context.Background(), 1, input)

	require.NoError(t, err)
	assert.Equal(t, int64(1), product.ID)
	assert.Nil(t, product.Description, "full replace clears an omitted description")
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	mockRepo.On("GetByID", mock.Anything, int64(99)).
		Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrProductNotFound)).Once()

	product, err := service.UpdateProduct(context.Background(), 99, guitarInput())

	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	assert.Nil(t, product)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_UpdateProduct_InvalidInputSkipsStore(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	input := guitarInput()
	input.Category = ""

	_, err := service.UpdateProduct(context.Background(), 1, input)

	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "category")
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := newService(mockRepo, mockPub)

	mockRepo.On("Delete", mock.Anything, int64(1)).Return(nil).Once()
	mockPub.On("Publish", "catalog.products", models.EventProductDeleted, mock.Anything).Return(nil).Once()

	err := service.DeleteProduct(context.Background(), 1)
	assert.NoError(t, err)

	event := decodeEvent(t, mockPub.Calls[0].Arguments.Get(2).([]byte))
	assert.Equal(t, int64(1), event.ProductID)
	assert.Nil(t, event.Product)

	mockRepo.On("Delete", mock.Anything, int64(1)).
		Return(fmt.Errorf("product with ID 1: %w", repositories.ErrProductNotFound)).Once()
	err = service.DeleteProduct(context.Background(), 1)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)

	mockRepo.AssertExpectations(t)
	mockPub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestProductService_SearchProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	expected := []models.Product{{ID: 1, Name: "Acoustic Guitar", Price: decimal.NewFromInt(1), Category: "Instruments"}}
	mockRepo.On("Search", mock.Anything, "guitar").Return(expected, nil).Once()

	products, err := service.SearchProducts(context.Background(), "GuItAr")

	require.NoError(t, err)
	assert.Equal(t, expected, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_SearchProducts_BlankQuery(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	for _, query := range []string{"", "   ", "\t"} {
		_, err := service.SearchProducts(context.Background(), query)

		var validationErr *services.ValidationError
		require.ErrorAs(t, err, &validationErr, "query %q", query)
		assert.Contains(t, validationErr.Fields, "query")
	}
	mockRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}
