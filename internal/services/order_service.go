package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
	}
}

// GetAllOrders retrieves all orders, newest first.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// ListForUser returns the caller's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, user *models.User) ([]models.Order, error) {
	return s.orderRepo.ListByUser(ctx, user.ID)
}

// GetOrderByID retrieves an order visible to user.
func (s *OrderService) GetOrderByID(ctx context.Context, user *models.User, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(user, order.UserID) {
		return nil, fmt.Errorf("order %s not visible to caller: %w", id, apperrors.ErrNotFound)
	}
	return order, nil
}

// UpdateOrderStatus updates the status of an existing order.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	parsed, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.UpdateStatus(ctx, id, parsed, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	log.Info().Str("order_id", id).Str("status", string(order.Status)).Msg("order status updated")
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("order_id", id).Msg("order deleted")
	return nil
}
