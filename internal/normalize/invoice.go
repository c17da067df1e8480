package normalize

import "fatura/internal/core"

var invoiceFields = []field{
	{"id", []string{"id", "uuid"}},
	{"account_id", []string{"account_id", "accountId", "card_id", "cardId"}},
	{"month", []string{"month", "invoice_month", "invoiceMonth", "reference_month"}},
	{"due_date", []string{"due_date", "dueDate", "vencimento"}},
	{"total_cents", []string{"total_cents", "totalCents", "amount_cents"}},
	{"total", []string{"total", "amount", "valor"}},
	{"status", []string{"status", "situacao"}},
}

type invoiceIn struct {
	ID         FlexString  `json:"id"`
	AccountID  FlexString  `json:"account_id"`
	Month      string      `json:"month"`
	DueDate    string      `json:"due_date"`
	TotalCents FlexDecimal `json:"total_cents"`
	Total      FlexDecimal `json:"total"`
	Status     string      `json:"status"`
}

// InvoiceWire is the canonical JSON emitted by the API. The month travels
// as YYYY-MM-01.
type InvoiceWire struct {
	ID         string `json:"id"`
	AccountID  string `json:"account_id"`
	Month      string `json:"month"`
	DueDate    string `json:"due_date,omitempty"`
	TotalCents int64  `json:"total_cents"`
	Status     string `json:"status"`
}

func DecodeInvoice(body []byte) (core.Invoice, error) {
	var in invoiceIn
	if _, err := decodeCanonical(body, invoiceFields, &in); err != nil {
		return core.Invoice{}, err
	}
	return core.Invoice{
		ID:        in.ID.String(),
		AccountID: in.AccountID.String(),
		Month:     InvoiceMonthFromWire(in.Month),
		DueDate:   normalizeDate(in.DueDate),
		Total:     core.Cents(centsOf(in.TotalCents, in.Total)).Abs(),
		Status:    InvoiceStatus(in.Status),
	}, nil
}

func DecodeInvoices(body []byte) ([]core.Invoice, error) {
	items, err := decodeList(body)
	if err != nil {
		return nil, err
	}
	out := make([]core.Invoice, 0, len(items))
	for _, item := range items {
		inv, err := DecodeInvoice(item)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

// InvoiceStatus maps invoice status spellings; unknown values are open.
func InvoiceStatus(raw string) core.InvoiceStatus {
	switch core.Fold(raw) {
	case "closed", "fechada", "fechado":
		return core.InvoiceClosed
	case "paid", "paga", "pago", "quitada":
		return core.InvoicePaid
	default:
		return core.InvoiceOpen
	}
}

func InvoiceToWire(inv core.Invoice) InvoiceWire {
	return InvoiceWire{
		ID:         inv.ID,
		AccountID:  inv.AccountID,
		Month:      InvoiceMonthToWire(inv.Month),
		DueDate:    inv.DueDate,
		TotalCents: inv.Total.Cents,
		Status:     string(inv.Status),
	}
}

func InvoicesToWire(invs []core.Invoice) []InvoiceWire {
	out := make([]InvoiceWire, 0, len(invs))
	for _, inv := range invs {
		out = append(out, InvoiceToWire(inv))
	}
	return out
}
