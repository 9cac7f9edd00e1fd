package trade

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/trade"
)

// InvoiceDocument is everything an invoice shows
type InvoiceDocument struct {
	Number        string
	IssuedAt      time.Time
	ShopName      string
	Currency      string
	CustomerName  string
	CustomerEmail string
	Order         *trade.Order
}

// InvoiceEmitter receives the output of an InvoiceRenderer.
// A renderer calls Chunk zero or more times, then End, then Done, each
// from a single goroutine at a time. Done carries the render error, if any.
type InvoiceEmitter interface {
	Chunk(p []byte) error
	End() error
	Done(err error)
}

// InvoiceRenderer renders an invoice to a PDF file at path and streams the
// same bytes to the emitter. It may return before rendering completes.
type InvoiceRenderer interface {
	Render(ctx context.Context, doc *InvoiceDocument, path string, emit InvoiceEmitter)
}

// InvoiceSink is the consumer of a streamed invoice.
// Begin is called once, before the first byte, with the path of the file.
type InvoiceSink interface {
	Begin(path string) error
	Write(p []byte) (int, error)
}

// InvoiceResult describes a generated invoice
type InvoiceResult struct {
	Path  string
	Bytes int64
}

// Invoice handshake protocol violations
var (
	ErrChunkAfterEnd      = errors.New("invoice renderer emitted a chunk after end")
	ErrEndTwice           = errors.New("invoice renderer signalled end twice")
	ErrDoneBeforeEnd      = errors.New("invoice renderer completed before end")
	ErrHandshakeCancelled = errors.New("invoice generation was cancelled")
)

// invoiceHandshake forwards renderer output to a sink and checks the
// chunk, end, done ordering. It is safe for use from the renderer's goroutine.
type invoiceHandshake struct {
	mu        sync.Mutex
	sink      InvoiceSink
	path      string
	begun     bool
	ended     bool
	finished  bool
	cancelled bool
	written   int64
	err       error
	done      chan struct{}
}

func newInvoiceHandshake(sink InvoiceSink, path string) *invoiceHandshake {
	return &invoiceHandshake{sink: sink, path: path, done: make(chan struct{})}
}

func (h *invoiceHandshake) Chunk(p []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case h.cancelled:
		return ErrHandshakeCancelled
	case h.ended:
		if !h.finished {
			h.fail(ErrChunkAfterEnd)
		}
		return ErrChunkAfterEnd
	case h.finished:
		return ErrDoneBeforeEnd
	case h.err != nil:
		return h.err
	}
	if err := h.begin(); err != nil {
		return err
	}
	n, err := h.sink.Write(p)
	h.written += int64(n)
	if err != nil {
		h.fail(err)
		return err
	}
	return nil
}

func (h *invoiceHandshake) End() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case h.cancelled:
		return ErrHandshakeCancelled
	case h.ended:
		if !h.finished {
			h.fail(ErrEndTwice)
		}
		return ErrEndTwice
	case h.finished:
		return ErrDoneBeforeEnd
	}
	h.ended = true
	if h.err != nil {
		return h.err
	}
	return h.begin()
}

func (h *invoiceHandshake) Done(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.finished {
		return
	}
	h.finished = true
	switch {
	case err != nil:
		h.fail(err)
	case !h.ended:
		h.fail(ErrDoneBeforeEnd)
	}
	close(h.done)
}

// cancel detaches the sink; later renderer calls are refused
func (h *invoiceHandshake) cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelled = true
}

// result is valid once done is closed
func (h *invoiceHandshake) result() (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.written, h.err
}

func (h *invoiceHandshake) begin() error {
	if h.begun {
		return nil
	}
	h.begun = true
	if err := h.sink.Begin(h.path); err != nil {
		h.fail(err)
		return err
	}
	return nil
}

// fail keeps the first error
func (h *invoiceHandshake) fail(err error) {
	if h.err == nil {
		h.err = err
	}
}
