package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ShopMetrics records storefront business counters. A nil *ShopMetrics records nothing.
type ShopMetrics struct {
	ordersCreated metric.Int64Counter
	ordersPaid    metric.Int64Counter
	unitsSold     metric.Int64Counter
	invoices      metric.Int64Counter
	invoiceBytes  metric.Int64Histogram
}

// NewShopMetrics creates the instruments on meter
func NewShopMetrics(meter metric.Meter) (*ShopMetrics, error) {
	m := &ShopMetrics{}
	var err error
	if m.ordersCreated, err = meter.Int64Counter("shop_orders_created_total",
		metric.WithDescription("Orders placed at checkout"), metric.WithUnit("{order}")); err != nil {
		return nil, err
	}
	if m.ordersPaid, err = meter.Int64Counter("shop_orders_paid_total",
		metric.WithDescription("Orders whose payment was confirmed"), metric.WithUnit("{order}")); err != nil {
		return nil, err
	}
	if m.unitsSold, err = meter.Int64Counter("shop_units_sold_total",
		metric.WithDescription("Product units added to sales counters"), metric.WithUnit("{unit}")); err != nil {
		return nil, err
	}
	if m.invoices, err = meter.Int64Counter("shop_invoices_total",
		metric.WithDescription("Invoice generation attempts by outcome"), metric.WithUnit("{invoice}")); err != nil {
		return nil, err
	}
	if m.invoiceBytes, err = meter.Int64Histogram("shop_invoice_size_bytes",
		metric.WithDescription("Size of streamed invoice PDFs"), metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(10_000, 50_000, 100_000, 250_000, 500_000, 1_000_000)); err != nil {
		return nil, err
	}
	return m, nil
}

// OrderCreated counts a placed order
func (m *ShopMetrics) OrderCreated(ctx context.Context, paymentMethod string) {
	if m == nil {
		return
	}
	m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_method", paymentMethod)))
}

// OrderPaid counts a confirmed payment and the units it sold
func (m *ShopMetrics) OrderPaid(ctx context.Context, units int) {
	if m == nil {
		return
	}
	m.ordersPaid.Add(ctx, 1)
	m.unitsSold.Add(ctx, int64(units))
}

// InvoiceGenerated counts an invoice attempt; size is only recorded on success
func (m *ShopMetrics) InvoiceGenerated(ctx context.Context, size int64, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.invoices.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if err == nil {
		m.invoiceBytes.Record(ctx, size)
	}
}
