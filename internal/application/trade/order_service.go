package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Pricing holds the checkout surcharges
type Pricing struct {
	TaxRate               decimal.Decimal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal // items price above which shipping is free
}

// DefaultPricing returns 15% tax and a flat 10.00 shipping fee waived above 100.00
func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:               decimal.RequireFromString("0.15"),
		ShippingFee:           decimal.NewFromInt(10),
		FreeShippingThreshold: decimal.NewFromInt(100),
	}
}

func (p Pricing) charges(itemsPrice decimal.Decimal) (tax, shipping decimal.Decimal) {
	tax = itemsPrice.Mul(p.TaxRate).Round(2)
	if itemsPrice.GreaterThan(p.FreeShippingThreshold) {
		return tax, decimal.Zero
	}
	return tax, p.ShippingFee
}

// OrderService handles checkout, order queries and payment confirmation
type OrderService struct {
	orderRepo   trade.OrderRepository
	productRepo catalog.ProductRepository
	txManager   shared.TxManager
	pricing     Pricing
	metrics     *telemetry.ShopMetrics
	now         func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	txManager shared.TxManager,
	pricing Pricing,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		txManager:   txManager,
		pricing:     pricing,
		now:         time.Now,
	}
}

// SetMetrics attaches business metrics; nil disables them
func (s *OrderService) SetMetrics(m *telemetry.ShopMetrics) {
	s.metrics = m
}

// Create places an order for userID. Names and prices are taken from the
// live catalog, never from the request.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	items := make([]trade.OrderItem, 0, len(req.Items))
	itemsPrice := decimal.Zero
	for _, line := range req.Items {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if product == nil || product.IsDeleted() {
			return nil, shared.NewDomainError("INVALID_PRODUCT", fmt.Sprintf("Product %s is not available", line.ProductID))
		}
		if line.Quantity > product.CountInStock {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK", fmt.Sprintf("Only %d of %s in stock", product.CountInStock, product.Name))
		}
		item := trade.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Quantity:  line.Quantity,
			Price:     product.Price,
		}
		itemsPrice = itemsPrice.Add(item.Amount())
		items = append(items, item)
	}

	tax, shipping := s.pricing.charges(itemsPrice)
	order, err := trade.NewOrder(userID, items, trade.ShippingAddress{
		Address:    req.ShippingAddress.Address,
		City:       req.ShippingAddress.City,
		PostalCode: req.ShippingAddress.PostalCode,
		Country:    req.ShippingAddress.Country,
	}, req.PaymentMethod, tax, shipping)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.TotalPrice.StringFixed(2)),
	)
	s.metrics.OrderCreated(ctx, order.PaymentMethod)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ListAll returns one page of every order, newest first
func (s *OrderService) ListAll(ctx context.Context, filter OrderListFilter) (*OrderPage, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	total, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindAll(ctx, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.SortBy,
		OrderDir: filter.SortOrder,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]OrderResponse, len(orders))
	for i := range orders {
		resp[i] = ToOrderResponse(&orders[i])
	}
	return &OrderPage{
		Orders: resp,
		Page:   filter.Page,
		Pages:  shared.PageCount(total, filter.PageSize),
		Total:  total,
	}, nil
}

// ListMine returns the orders of userID, newest first
func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := make([]OrderResponse, len(orders))
	for i := range orders {
		resp[i] = ToOrderResponse(&orders[i])
	}
	return resp, nil
}

// GetMine returns an order the requester may read. Orders of other users
// are reported as not found.
func (s *OrderService) GetMine(ctx context.Context, requester Requester, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.findAccessible(ctx, requester, orderID, s.orderRepo.FindByID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// MarkPaid confirms the payment of an order and records the sold units.
// The order row is locked, every product gets sales += quantity in item
// order, products that no longer exist are skipped, and the order is saved.
// All of it commits or rolls back together.
func (s *OrderService) MarkPaid(ctx context.Context, requester Requester, orderID uuid.UUID) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "orders.mark_paid", attribute.String("order_id", orderID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	var paid *trade.Order
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.findAccessible(ctx, requester, orderID, s.orderRepo.FindByIDForUpdate)
		if err != nil {
			return err
		}
		if err := order.MarkPaid(s.now()); err != nil {
			return err
		}

		for _, item := range order.Items {
			err := s.productRepo.IncrementSales(ctx, item.ProductID, item.Quantity)
			if errors.Is(err, shared.ErrNotFound) {
				logger.L(ctx).Debug("Skipping sales of missing product",
					zap.String("order_id", order.ID.String()),
					zap.String("product_id", item.ProductID.String()),
				)
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to record sales of product %s: %w", item.ProductID, err)
			}
		}

		if err := s.orderRepo.Save(ctx, order); err != nil {
			return fmt.Errorf("failed to save paid order: %w", err)
		}
		paid = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Order paid",
		zap.String("order_id", paid.ID.String()),
		zap.Int("units", paid.TotalQuantity()),
	)
	s.metrics.OrderPaid(ctx, paid.TotalQuantity())
	resp := ToOrderResponse(paid)
	return &resp, nil
}

func (s *OrderService) findAccessible(
	ctx context.Context,
	requester Requester,
	orderID uuid.UUID,
	find func(context.Context, uuid.UUID) (*trade.Order, error),
) (*trade.Order, error) {
	order, err := find(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
		}
		return nil, err
	}
	if !requester.canAccess(order) {
		return nil, shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
	}
	return order, nil
}
