package trade

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// scriptedRenderer runs script on its own goroutine, the way an
// asynchronous renderer reports back
type scriptedRenderer struct {
	script func(emit InvoiceEmitter)
	doc    *InvoiceDocument
	path   string
}

func (r *scriptedRenderer) Render(_ context.Context, doc *InvoiceDocument, path string, emit InvoiceEmitter) {
	r.doc = doc
	r.path = path
	go r.script(emit)
}

type recordingSink struct {
	begins   []string
	body     bytes.Buffer
	beginErr error
}

func (s *recordingSink) Begin(path string) error {
	s.begins = append(s.begins, path)
	return s.beginErr
}

func (s *recordingSink) Write(p []byte) (int, error) {
	return s.body.Write(p)
}

type invoiceFixture struct {
	orders   *MockOrderRepository
	users    *MockUserRepository
	renderer *scriptedRenderer
	svc      *InvoiceService
	order    *trade.Order
	owner    *identity.User
}

func newInvoiceFixture(t *testing.T, script func(emit InvoiceEmitter)) *invoiceFixture {
	t.Helper()
	owner, err := identity.NewUser("Ada Lovelace", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	order := newUnpaidOrder(t, owner.ID, trade.OrderItem{
		ProductID: uuid.New(), Name: "Notebook", Quantity: 2, Price: decimal.NewFromInt(4),
	})

	f := &invoiceFixture{
		orders:   new(MockOrderRepository),
		users:    new(MockUserRepository),
		renderer: &scriptedRenderer{script: script},
		order:    order,
		owner:    owner,
	}
	f.svc = NewInvoiceService(f.orders, f.users, f.renderer, InvoiceServiceConfig{
		Dir:      filepath.Join(t.TempDir(), "invoices"),
		ShopName: "Corner Shop",
		Currency: "USD",
	})
	f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.users.On("FindByID", mock.Anything, owner.ID).Return(owner, nil)
	return f
}

func emitAll(chunks ...string) func(InvoiceEmitter) {
	return func(emit InvoiceEmitter) {
		for _, c := range chunks {
			if err := emit.Chunk([]byte(c)); err != nil {
				emit.Done(err)
				return
			}
		}
		emit.Done(emit.End())
	}
}

func TestInvoiceService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("streams chunks in order", func(t *testing.T) {
		f := newInvoiceFixture(t, emitAll("%PDF-", "1.7 ", "body"))
		sink := &recordingSink{}

		result, err := f.svc.Generate(ctx, Requester{UserID: f.owner.ID}, f.order.ID, sink)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.7 body", sink.body.String())
		assert.Equal(t, int64(len("%PDF-1.7 body")), result.Bytes)
		assert.Equal(t, f.svc.InvoicePath(f.order.ID), result.Path)
		assert.Equal(t, []string{result.Path}, sink.begins)
		assert.Equal(t, "invoice_"+f.order.ID.String()+".pdf", filepath.Base(result.Path))
		assert.DirExists(t, filepath.Dir(result.Path))

		require.NotNil(t, f.renderer.doc)
		assert.Equal(t, "Ada Lovelace", f.renderer.doc.CustomerName)
		assert.Equal(t, "ada@example.com", f.renderer.doc.CustomerEmail)
		assert.Equal(t, "INV-"+f.order.ID.String()[:8], f.renderer.doc.Number)
		assert.Equal(t, "Corner Shop", f.renderer.doc.ShopName)
	})

	t.Run("zero chunks still begins the stream", func(t *testing.T) {
		f := newInvoiceFixture(t, emitAll())
		sink := &recordingSink{}

		result, err := f.svc.Generate(ctx, Requester{UserID: f.owner.ID}, f.order.ID, sink)
		require.NoError(t, err)
		assert.Zero(t, result.Bytes)
		assert.Len(t, sink.begins, 1)
	})

	t.Run("admin may fetch any invoice", func(t *testing.T) {
		f := newInvoiceFixture(t, emitAll("x"))
		_, err := f.svc.Generate(ctx, Requester{UserID: uuid.New(), IsAdmin: true}, f.order.ID, &recordingSink{})
		require.NoError(t, err)
	})

	t.Run("other users see not found", func(t *testing.T) {
		f := newInvoiceFixture(t, emitAll("x"))
		sink := &recordingSink{}
		_, err := f.svc.Generate(ctx, Requester{UserID: uuid.New()}, f.order.ID, sink)
		assertDomainCode(t, err, "ORDER_NOT_FOUND")
		assert.Empty(t, sink.begins)
		assert.Nil(t, f.renderer.doc)
	})

	t.Run("missing order", func(t *testing.T) {
		f := newInvoiceFixture(t, emitAll("x"))
		id := uuid.New()
		f.orders.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)
		_, err := f.svc.Generate(ctx, Requester{IsAdmin: true}, id, &recordingSink{})
		assertDomainCode(t, err, "ORDER_NOT_FOUND")
	})

	t.Run("deleted account still gets an invoice", func(t *testing.T) {
		f := newInvoiceFixture(t, emitAll("x"))
		f.users.ExpectedCalls = nil
		f.users.On("FindByID", mock.Anything, f.owner.ID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Generate(ctx, Requester{IsAdmin: true}, f.order.ID, &recordingSink{})
		require.NoError(t, err)
		assert.Empty(t, f.renderer.doc.CustomerName)
	})

	t.Run("render failure before any byte", func(t *testing.T) {
		boom := errors.New("browser crashed")
		f := newInvoiceFixture(t, func(emit InvoiceEmitter) { emit.Done(boom) })
		sink := &recordingSink{}

		_, err := f.svc.Generate(ctx, Requester{IsAdmin: true}, f.order.ID, sink)
		require.ErrorIs(t, err, boom)
		assert.Empty(t, sink.begins)
	})

	t.Run("sink refuses to begin", func(t *testing.T) {
		f := newInvoiceFixture(t, emitAll("abc"))
		sink := &recordingSink{beginErr: errors.New("client gone")}

		_, err := f.svc.Generate(ctx, Requester{IsAdmin: true}, f.order.ID, sink)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "client gone")
		assert.Zero(t, sink.body.Len())
	})

	t.Run("context cancelled while waiting", func(t *testing.T) {
		release := make(chan struct{})
		f := newInvoiceFixture(t, func(emit InvoiceEmitter) {
			<-release
			emit.Done(emit.End())
		})
		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		_, err := f.svc.Generate(cctx, Requester{IsAdmin: true}, f.order.ID, &recordingSink{})
		require.ErrorIs(t, err, context.DeadlineExceeded)
		close(release)
	})
}

func TestInvoiceHandshake(t *testing.T) {
	t.Run("chunk after end", func(t *testing.T) {
		sink := &recordingSink{}
		hs := newInvoiceHandshake(sink, "/tmp/a.pdf")
		require.NoError(t, hs.Chunk([]byte("a")))
		require.NoError(t, hs.End())
		assert.ErrorIs(t, hs.Chunk([]byte("b")), ErrChunkAfterEnd)
		hs.Done(nil)

		written, err := hs.result()
		assert.ErrorIs(t, err, ErrChunkAfterEnd)
		assert.Equal(t, int64(1), written)
		assert.Equal(t, "a", sink.body.String())
	})

	t.Run("done before end", func(t *testing.T) {
		hs := newInvoiceHandshake(&recordingSink{}, "p")
		require.NoError(t, hs.Chunk([]byte("a")))
		hs.Done(nil)

		_, err := hs.result()
		assert.ErrorIs(t, err, ErrDoneBeforeEnd)
		assert.ErrorIs(t, hs.Chunk([]byte("b")), ErrDoneBeforeEnd)
	})

	t.Run("end twice", func(t *testing.T) {
		hs := newInvoiceHandshake(&recordingSink{}, "p")
		require.NoError(t, hs.End())
		assert.ErrorIs(t, hs.End(), ErrEndTwice)
		hs.Done(nil)

		_, err := hs.result()
		assert.ErrorIs(t, err, ErrEndTwice)
	})

	t.Run("done is idempotent", func(t *testing.T) {
		hs := newInvoiceHandshake(&recordingSink{}, "p")
		require.NoError(t, hs.End())
		hs.Done(nil)
		hs.Done(errors.New("late"))

		_, err := hs.result()
		assert.NoError(t, err)
		select {
		case <-hs.done:
		default:
			t.Fatal("done channel not closed")
		}
	})

	t.Run("cancelled handshake refuses output", func(t *testing.T) {
		sink := &recordingSink{}
		hs := newInvoiceHandshake(sink, "p")
		hs.cancel()
		assert.ErrorIs(t, hs.Chunk([]byte("a")), ErrHandshakeCancelled)
		assert.ErrorIs(t, hs.End(), ErrHandshakeCancelled)
		assert.Empty(t, sink.begins)
	})
}
