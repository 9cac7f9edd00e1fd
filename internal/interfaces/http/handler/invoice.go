package handler

import (
	"context"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// InvoicePathHeader carries the server-side path of a streamed invoice
const InvoicePathHeader = "X-Invoice-Path"

// InvoiceGenerator renders and streams an order invoice
type InvoiceGenerator interface {
	Generate(ctx context.Context, requester tradeapp.Requester, orderID uuid.UUID, sink tradeapp.InvoiceSink) (*tradeapp.InvoiceResult, error)
}

// InvoiceHandler streams order invoices as PDF
type InvoiceHandler struct {
	BaseHandler
	invoices InvoiceGenerator
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices InvoiceGenerator) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// Download generates the invoice of an order and streams it as the whole response.
// Errors found before the first byte are reported as JSON. Later ones abort the
// connection so the client never mistakes a truncated PDF for a complete one.
//
//	GET /orders/myorders/:id/invoice
func (h *InvoiceHandler) Download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	requester, err := getRequester(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	sink := &pdfResponseSink{w: c.Writer}
	result, err := h.invoices.Generate(c.Request.Context(), requester, id, sink)
	if err != nil {
		if sink.started() {
			logger.GetGinLogger(c).Error("Invoice stream interrupted",
				zap.String("order_id", id.String()),
				zap.Error(err),
			)
			panic(http.ErrAbortHandler)
		}
		h.HandleError(c, err)
		return
	}

	logger.GetGinLogger(c).Debug("Invoice streamed",
		zap.String("order_id", id.String()),
		zap.Int64("bytes", result.Bytes),
	)
}

// pdfResponseSink writes invoice bytes straight to the HTTP response
type pdfResponseSink struct {
	w     gin.ResponseWriter
	begun bool
}

func (s *pdfResponseSink) Begin(path string) error {
	header := s.w.Header()
	header.Set("Content-Type", "application/pdf")
	header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": filepath.Base(path),
	}))
	header.Set(InvoicePathHeader, path)
	s.w.WriteHeader(http.StatusOK)
	s.w.WriteHeaderNow()
	s.begun = true
	return nil
}

func (s *pdfResponseSink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if err == nil {
		s.w.Flush()
	}
	return n, err
}

// started is read after Generate returns, when the sink is no longer written to
func (s *pdfResponseSink) started() bool {
	return s.begun
}
