package printing

import (
	"context"
	"time"

	tradeapp "github.com/storefront/backend/internal/application/trade"
	"go.uber.org/zap"
)

const defaultChunkSize = 32 << 10

// PrintFunc turns an HTML document into PDF bytes
type PrintFunc func(ctx context.Context, html string) ([]byte, error)

// InvoiceRenderer renders invoices on a background goroutine, writing each
// PDF to its file and streaming it to the emitter chunk by chunk
type InvoiceRenderer struct {
	template  *InvoiceTemplate
	printPDF  PrintFunc
	files     *FileStore
	chunkSize int
	logger    *zap.Logger
}

var _ tradeapp.InvoiceRenderer = (*InvoiceRenderer)(nil)

// NewInvoiceRenderer creates a new InvoiceRenderer
func NewInvoiceRenderer(tmpl *InvoiceTemplate, printPDF PrintFunc, files *FileStore, chunkSize int, logger *zap.Logger) *InvoiceRenderer {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceRenderer{
		template:  tmpl,
		printPDF:  printPDF,
		files:     files,
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// Render returns immediately; completion is reported through emit.Done.
func (r *InvoiceRenderer) Render(ctx context.Context, doc *tradeapp.InvoiceDocument, path string, emit tradeapp.InvoiceEmitter) {
	go func() {
		emit.Done(r.render(ctx, doc, path, emit))
	}()
}

func (r *InvoiceRenderer) render(ctx context.Context, doc *tradeapp.InvoiceDocument, path string, emit tradeapp.InvoiceEmitter) error {
	start := time.Now()

	html, err := r.template.Execute(doc)
	if err != nil {
		return err
	}
	pdf, err := r.printPDF(ctx, html)
	if err != nil {
		return err
	}

	file, err := r.files.Create(path)
	if err != nil {
		return err
	}
	defer file.Abort()

	for off := 0; off < len(pdf); off += r.chunkSize {
		chunk := pdf[off:min(off+r.chunkSize, len(pdf))]
		if _, err := file.Write(chunk); err != nil {
			return NewRenderError(ErrCodeStorageFailed, "failed to write invoice file", err)
		}
		if err := emit.Chunk(chunk); err != nil {
			return err
		}
	}
	if err := file.Commit(); err != nil {
		return err
	}
	if err := emit.End(); err != nil {
		return err
	}

	r.logger.Debug("Invoice rendered",
		zap.String("number", doc.Number),
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
