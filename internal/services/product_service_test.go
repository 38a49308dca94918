package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/services"
)

func TestProductService_Query(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	filter := models.ProductFilter{Category: "Top Wear", SortBy: models.SortPriceAsc}
	expected := []models.Product{{ID: "1", Name: "Tee", Price: 10}}
	mockRepo.On("Query", ctx, filter).Return(expected, nil).Once()

	products, err := service.Query(ctx, filter)

	assert.NoError(t, err)
	assert.Equal(t, expected, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_AuxiliaryLimits(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	base := &models.Product{ID: "1", Gender: "Men", Category: "Top Wear"}
	mockRepo.On("NewArrivals", ctx, 8).Return([]models.Product{}, nil).Once()
	mockRepo.On("GetByID", ctx, "1").Return(base, nil).Once()
	mockRepo.On("Similar", ctx, base, 4).Return([]models.Product{{ID: "2"}}, nil).Once()
	mockRepo.On("GetByID", ctx, "missing").Return(nil, fmt.Errorf("product: %w", apperrors.ErrNotFound)).Once()

	_, err := service.NewArrivals(ctx)
	require.NoError(t, err)

	similar, err := service.Similar(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, similar, 1)

	_, err = service.Similar(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)
	admin := &models.User{ID: "admin-1", Role: models.RoleAdmin}

	mockRepo.On("Create", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.UserID == "admin-1" && p.ID == "" && p.CreatedAt.IsZero() && p.UpdatedAt.IsZero()
	})).Return(nil).Once()

	pinned := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	product, err := service.Create(ctx, admin, &models.Product{
		ID: "client-chosen", Name: "Tee", SKU: "T-1", CreatedAt: pinned, UpdatedAt: pinned,
	})
	require.NoError(t, err)
	assert.Equal(t, "admin-1", product.UserID)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateIsPartial(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	stored := &models.Product{ID: "1", Name: "Tee", Description: "Cotton", Price: 10, IsFeatured: true,
		Images: []models.ProductImage{{URL: "a.jpg"}}}
	mockRepo.On("GetByID", ctx, "1").Return(stored, nil).Once()
	mockRepo.On("Update", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	price, featured := 29.99, false
	updated, err := service.Update(ctx, "1", models.ProductUpdate{Price: &price, IsFeatured: &featured})
	require.NoError(t, err)

	assert.Equal(t, 29.99, updated.Price)
	assert.False(t, updated.IsFeatured)
	assert.Equal(t, "Tee", updated.Name)
	assert.Equal(t, "Cotton", updated.Description)
	assert.Len(t, updated.Images, 1)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("Delete", ctx, "1").Return(nil).Once()
	mockRepo.On("Delete", ctx, "2").Return(fmt.Errorf("product 2: %w", apperrors.ErrNotFound)).Once()

	assert.NoError(t, service.Delete(ctx, "1"))
	assert.ErrorIs(t, service.Delete(ctx, "2"), apperrors.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
