package trade

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// InvoiceServiceConfig holds invoice settings
type InvoiceServiceConfig struct {
	Dir      string
	ShopName string
	Currency string
}

// InvoiceService generates order invoices
type InvoiceService struct {
	orderRepo trade.OrderRepository
	userRepo  identity.UserRepository
	renderer  InvoiceRenderer
	config    InvoiceServiceConfig
	metrics   *telemetry.ShopMetrics
	now       func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	orderRepo trade.OrderRepository,
	userRepo identity.UserRepository,
	renderer InvoiceRenderer,
	config InvoiceServiceConfig,
) *InvoiceService {
	return &InvoiceService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		renderer:  renderer,
		config:    config,
		now:       time.Now,
	}
}

// SetMetrics attaches business metrics; nil disables them
func (s *InvoiceService) SetMetrics(m *telemetry.ShopMetrics) {
	s.metrics = m
}

// InvoicePath returns the file an order's invoice is written to
func (s *InvoiceService) InvoicePath(orderID uuid.UUID) string {
	return filepath.Join(s.config.Dir, "invoice_"+orderID.String()+".pdf")
}

// Generate renders the invoice of an order to disk and streams it to sink.
// It returns once the renderer signals completion or ctx is done.
// sink.Begin is not called when the order cannot be loaded.
func (s *InvoiceService) Generate(ctx context.Context, requester Requester, orderID uuid.UUID, sink InvoiceSink) (_ *InvoiceResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "invoices.generate", attribute.String("order_id", orderID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
		}
		return nil, err
	}
	if !requester.canAccess(order) {
		return nil, shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
	}

	doc, err := s.document(ctx, order)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create invoice directory: %w", err)
	}
	path := s.InvoicePath(order.ID)

	hs := newInvoiceHandshake(sink, path)
	s.renderer.Render(ctx, doc, path, hs)

	select {
	case <-hs.done:
	case <-ctx.Done():
		hs.cancel()
		s.metrics.InvoiceGenerated(ctx, 0, ctx.Err())
		logger.L(ctx).Warn("Invoice generation abandoned",
			zap.String("order_id", order.ID.String()),
			zap.Error(ctx.Err()),
		)
		return nil, ctx.Err()
	}

	written, err := hs.result()
	s.metrics.InvoiceGenerated(ctx, written, err)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice: %w", err)
	}

	logger.L(ctx).Info("Invoice generated",
		zap.String("order_id", order.ID.String()),
		zap.String("path", path),
		zap.Int64("bytes", written),
	)
	return &InvoiceResult{Path: path, Bytes: written}, nil
}

func (s *InvoiceService) document(ctx context.Context, order *trade.Order) (*InvoiceDocument, error) {
	doc := &InvoiceDocument{
		Number:   "INV-" + order.ID.String()[:8],
		IssuedAt: s.now(),
		ShopName: s.config.ShopName,
		Currency: s.config.Currency,
		Order:    order,
	}

	user, err := s.userRepo.FindByID(ctx, order.UserID)
	switch {
	case err == nil:
		doc.CustomerName = user.Name
		doc.CustomerEmail = user.Email
	case errors.Is(err, shared.ErrNotFound):
		// the account is gone; the invoice is still issued to the order
	default:
		return nil, err
	}
	return doc, nil
}
