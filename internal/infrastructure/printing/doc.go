// Package printing renders order invoices to PDF.
//
// InvoiceTemplate turns an invoice document into HTML, a ChromePrinter
// prints that HTML to PDF through the Chrome DevTools Protocol, and
// InvoiceRenderer writes the PDF under a FileStore while streaming the
// same bytes to the caller in fixed size chunks.
package printing
