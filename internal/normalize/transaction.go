package normalize

import (
	"bytes"
	"encoding/json"

	"fatura/internal/core"
)

var transactionFields = []field{
	{"id", []string{"id", "uuid"}},
	{"account_id", []string{"account_id", "accountId", "conta_id"}},
	{"account", []string{"account", "conta"}},
	{"legacy_card", []string{"legacy_card", "card", "card_name", "cardName", "cartao"}},
	{"purchase_date", []string{"purchase_date", "purchaseDate", "data_compra"}},
	{"charge_date", []string{"charge_date", "chargeDate", "data_cobranca"}},
	{"date", []string{"date", "data", "reference_date", "referenceDate"}},
	{"created_at", []string{"created_at", "createdAt"}},
	{"invoice_month", []string{"invoice_month", "invoiceMonth", "mes_fatura"}},
	{"merchant", []string{"merchant", "estabelecimento"}},
	{"description", []string{"description", "descricao", "memo"}},
	{"category_id", []string{"category_id", "categoryId"}},
	{"amount_cents", []string{"amount_cents", "amountCents", "value_cents"}},
	{"amount", []string{"amount", "valor", "value"}},
	{"direction", []string{"direction", "type", "tipo", "flow"}},
	{"status", []string{"status", "situacao"}},
	{"kind", []string{"kind", "transaction_kind", "transactionKind"}},
	{"installment", []string{"installment"}},
	{"bill_id", []string{"bill_id", "billId"}},
}

// amountGroup keys replace each other in patches. The stored direction is
// kept unless the patch names one.
var amountGroup = []string{"amount_cents", "amount"}

type installmentIn struct {
	GroupID      FlexString `json:"group_id"`
	GroupIDCamel FlexString `json:"groupId"`
	Current      FlexInt    `json:"current"`
	Total        FlexInt    `json:"total"`
}

type transactionIn struct {
	ID           FlexString      `json:"id"`
	AccountID    FlexString      `json:"account_id"`
	Account      json.RawMessage `json:"account"`
	LegacyCard   string          `json:"legacy_card"`
	PurchaseDate string          `json:"purchase_date"`
	ChargeDate   string          `json:"charge_date"`
	Date         string          `json:"date"`
	CreatedAt    string          `json:"created_at"`
	InvoiceMonth string          `json:"invoice_month"`
	Merchant     string          `json:"merchant"`
	Description  string          `json:"description"`
	CategoryID   FlexString      `json:"category_id"`
	AmountCents  FlexDecimal     `json:"amount_cents"`
	Amount       FlexDecimal     `json:"amount"`
	Direction    string          `json:"direction"`
	Status       string          `json:"status"`
	Kind         string          `json:"kind"`
	Installment  *installmentIn  `json:"installment"`
	BillID       FlexString      `json:"bill_id"`
}

// InstallmentWire is the wire shape of an installment reference.
type InstallmentWire struct {
	GroupID string `json:"group_id"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
}

// TransactionWire is the canonical JSON emitted by the API.
type TransactionWire struct {
	ID           string           `json:"id"`
	AccountID    string           `json:"account_id,omitempty"`
	LegacyCard   string           `json:"legacy_card,omitempty"`
	PurchaseDate string           `json:"purchase_date,omitempty"`
	ChargeDate   string           `json:"charge_date,omitempty"`
	Date         string           `json:"date,omitempty"`
	CreatedAt    string           `json:"created_at,omitempty"`
	InvoiceMonth string           `json:"invoice_month,omitempty"`
	Merchant     string           `json:"merchant,omitempty"`
	Description  string           `json:"description"`
	CategoryID   string           `json:"category_id,omitempty"`
	AmountCents  int64            `json:"amount_cents"`
	Direction    string           `json:"direction"`
	Status       string           `json:"status"`
	Kind         string           `json:"kind"`
	Installment  *InstallmentWire `json:"installment,omitempty"`
	BillID       string           `json:"bill_id,omitempty"`
}

// DecodeTransaction reads one transaction payload in any known spelling.
func DecodeTransaction(body []byte) (core.Transaction, error) {
	var in transactionIn
	if _, err := decodeCanonical(body, transactionFields, &in); err != nil {
		return core.Transaction{}, err
	}
	return in.toCore(), nil
}

// DecodeTransactions reads a list payload: a bare array or an envelope such
// as {"results": [...]}.
func DecodeTransactions(body []byte) ([]core.Transaction, error) {
	items, err := decodeList(body)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(items))
	for _, item := range items {
		tx, err := DecodeTransaction(item)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// PatchTransaction applies a partial update to an existing transaction. Only
// keys present in body change.
func PatchTransaction(existing core.Transaction, body []byte) (core.Transaction, error) {
	patch, err := canonicalize(body, transactionFields)
	if err != nil {
		return core.Transaction{}, err
	}
	base, err := toMap(TransactionToWire(existing))
	if err != nil {
		return core.Transaction{}, err
	}
	if _, ok := patch["account"]; ok {
		delete(base, "account_id")
		delete(base, "legacy_card")
	}
	merged := merge(base, patch, amountGroup)
	b, err := json.Marshal(merged)
	if err != nil {
		return core.Transaction{}, err
	}
	tx, err := DecodeTransaction(b)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.ID = existing.ID
	return tx, nil
}

func (in transactionIn) toCore() core.Transaction {
	signed := centsOf(in.AmountCents, in.Amount)
	accountID := in.AccountID.String()
	legacy := in.LegacyCard
	if accountID == "" && len(in.Account) > 0 {
		id, name := accountRef(in.Account)
		accountID = id
		if legacy == "" {
			legacy = name
		}
	}

	tx := core.Transaction{
		ID:           in.ID.String(),
		AccountID:    accountID,
		LegacyCard:   legacy,
		PurchaseDate: normalizeDate(in.PurchaseDate),
		ChargeDate:   normalizeDate(in.ChargeDate),
		Date:         normalizeDate(in.Date),
		CreatedAt:    in.CreatedAt,
		InvoiceMonth: InvoiceMonthFromWire(in.InvoiceMonth),
		Merchant:     in.Merchant,
		Description:  in.Description,
		CategoryID:   in.CategoryID.String(),
		Amount:       core.Cents(signed).Abs(),
		Direction:    ClassifyDirection(in.Direction, signed),
		Status:       Status(in.Status),
		Kind:         Kind(in.Kind),
		BillID:       in.BillID.String(),
	}

	if in.Installment != nil && in.Installment.Total > 0 {
		groupID := in.Installment.GroupID.String()
		if groupID == "" {
			groupID = in.Installment.GroupIDCamel.String()
		}
		tx.Installment = &core.Installment{
			GroupID: groupID,
			Current: int(in.Installment.Current),
			Total:   int(in.Installment.Total),
		}
		tx.Kind = core.KindInstallment
	}
	if tx.Kind == core.KindInstallment && tx.Installment == nil {
		tx.Kind = core.KindOneOff
	}
	return tx
}

// accountRef reads a nested account reference: an object with an id and
// name, a bare id number, or a free-text card name.
func accountRef(raw json.RawMessage) (id, name string) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", ""
	}
	switch raw[0] {
	case '{':
		var obj struct {
			ID   FlexString `json:"id"`
			Name string     `json:"name"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil {
			return obj.ID.String(), obj.Name
		}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return "", s
		}
	default:
		var f FlexString
		if err := f.UnmarshalJSON(raw); err == nil {
			return f.String(), ""
		}
	}
	return "", ""
}

// TransactionToWire renders the canonical API shape.
func TransactionToWire(tx core.Transaction) TransactionWire {
	w := TransactionWire{
		ID:           tx.ID,
		AccountID:    tx.AccountID,
		LegacyCard:   tx.LegacyCard,
		PurchaseDate: tx.PurchaseDate,
		ChargeDate:   tx.ChargeDate,
		Date:         tx.Date,
		CreatedAt:    tx.CreatedAt,
		InvoiceMonth: InvoiceMonthToWire(tx.InvoiceMonth),
		Merchant:     tx.Merchant,
		Description:  tx.Description,
		CategoryID:   tx.CategoryID,
		AmountCents:  tx.Amount.Abs().Cents,
		Direction:    string(tx.Direction),
		Status:       string(tx.Status),
		Kind:         string(tx.Kind),
		BillID:       tx.BillID,
	}
	if tx.Installment != nil {
		w.Installment = &InstallmentWire{
			GroupID: tx.Installment.GroupID,
			Current: tx.Installment.Current,
			Total:   tx.Installment.Total,
		}
	}
	return w
}

// TransactionsToWire renders a list; a nil input renders as an empty list.
func TransactionsToWire(txs []core.Transaction) []TransactionWire {
	out := make([]TransactionWire, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionToWire(tx))
	}
	return out
}
