package document

// Context is the header state in effect while a page is read. It is a value:
// each page produces a new Context from the previous one.
type Context struct {
	Kind           Kind
	InvoiceBase    string
	WithoutPayment bool
	Origin         string
	Supplier       string
}

// NewContext returns the initial context for a document of the given kind.
func NewContext(kind Kind) Context {
	return Context{Kind: kind}
}

// InvoiceNumber is the base number with the without-payment suffix applied.
// It is empty until a base number has been seen.
func (c Context) InvoiceNumber() string {
	if c.InvoiceBase == "" {
		return ""
	}
	if c.WithoutPayment {
		return c.InvoiceBase + WithoutPaymentSuffix
	}
	return c.InvoiceBase
}

// Stamp fills the header-derived fields of a freshly extracted row.
// Invoices carry the invoice number; proformas keep the order number aside.
func (c Context) Stamp(r Row) Row {
	if c.Kind == KindInvoice {
		r.InvoiceNumber = c.InvoiceNumber()
	} else {
		r.OrderNumber = c.InvoiceBase
	}
	if r.Origin == "" {
		r.Origin = c.Origin
	}
	return r
}
