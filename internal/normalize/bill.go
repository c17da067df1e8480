package normalize

import (
	"encoding/json"

	"fatura/internal/core"
)

var billFields = []field{
	{"id", []string{"id", "uuid"}},
	{"name", []string{"name", "nome", "description"}},
	{"payee", []string{"payee", "favorecido", "merchant"}},
	{"kind", []string{"kind", "type", "tipo"}},
	{"default_amount_cents", []string{"default_amount_cents", "defaultAmountCents", "amount_cents", "amountCents"}},
	{"default_amount", []string{"default_amount", "defaultAmount", "amount", "valor"}},
	{"day_of_month", []string{"day_of_month", "dayOfMonth", "due_day", "dueDay", "dia"}},
	{"start_month", []string{"start_month", "startMonth"}},
	{"end_month", []string{"end_month", "endMonth"}},
	{"category_id", []string{"category_id", "categoryId", "category_slug", "categorySlug", "category"}},
	{"installment_group_id", []string{"installment_group_id", "installmentGroupId"}},
	{"account_id", []string{"account_id", "accountId"}},
	{"active", []string{"active", "is_active", "isActive", "ativo"}},
}

type billIn struct {
	ID                 FlexString  `json:"id"`
	Name               string      `json:"name"`
	Payee              string      `json:"payee"`
	Kind               string      `json:"kind"`
	DefaultAmountCents FlexDecimal `json:"default_amount_cents"`
	DefaultAmount      FlexDecimal `json:"default_amount"`
	DayOfMonth         FlexInt     `json:"day_of_month"`
	StartMonth         string      `json:"start_month"`
	EndMonth           string      `json:"end_month"`
	CategoryID         FlexString  `json:"category_id"`
	InstallmentGroupID FlexString  `json:"installment_group_id"`
	AccountID          FlexString  `json:"account_id"`
	Active             FlexBool    `json:"active"`
}

// BillWire is the canonical JSON emitted by the API. Months travel as
// YYYY-MM-01.
type BillWire struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Payee              string `json:"payee,omitempty"`
	Kind               string `json:"kind,omitempty"`
	DefaultAmountCents int64  `json:"default_amount_cents"`
	DayOfMonth         int    `json:"day_of_month"`
	StartMonth         string `json:"start_month,omitempty"`
	EndMonth           string `json:"end_month,omitempty"`
	CategoryID         string `json:"category_id,omitempty"`
	InstallmentGroupID string `json:"installment_group_id,omitempty"`
	AccountID          string `json:"account_id,omitempty"`
	Active             bool   `json:"active"`
}

func DecodeBill(body []byte) (core.Bill, error) {
	var in billIn
	if _, err := decodeCanonical(body, billFields, &in); err != nil {
		return core.Bill{}, err
	}
	return in.toCore(), nil
}

func DecodeBills(body []byte) ([]core.Bill, error) {
	items, err := decodeList(body)
	if err != nil {
		return nil, err
	}
	out := make([]core.Bill, 0, len(items))
	for _, item := range items {
		b, err := DecodeBill(item)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// PatchBill applies a partial update to an existing bill.
func PatchBill(existing core.Bill, body []byte) (core.Bill, error) {
	patch, err := canonicalize(body, billFields)
	if err != nil {
		return core.Bill{}, err
	}
	base, err := toMap(BillToWire(existing))
	if err != nil {
		return core.Bill{}, err
	}
	merged := merge(base, patch, []string{"default_amount_cents", "default_amount"})
	b, err := json.Marshal(merged)
	if err != nil {
		return core.Bill{}, err
	}
	bill, err := DecodeBill(b)
	if err != nil {
		return core.Bill{}, err
	}
	bill.ID = existing.ID
	return bill, nil
}

func (in billIn) toCore() core.Bill {
	return core.Bill{
		ID:                 in.ID.String(),
		Name:               in.Name,
		Payee:              in.Payee,
		Kind:               in.Kind,
		DefaultAmount:      core.Cents(centsOf(in.DefaultAmountCents, in.DefaultAmount)).Abs(),
		DayOfMonth:         int(in.DayOfMonth),
		StartMonth:         core.MonthOf(in.StartMonth),
		EndMonth:           core.MonthOf(in.EndMonth),
		CategoryID:         in.CategoryID.String(),
		InstallmentGroupID: in.InstallmentGroupID.String(),
		AccountID:          in.AccountID.String(),
		Active:             in.Active.Or(true),
	}
}

func BillToWire(b core.Bill) BillWire {
	return BillWire{
		ID:                 b.ID,
		Name:               b.Name,
		Payee:              b.Payee,
		Kind:               b.Kind,
		DefaultAmountCents: b.DefaultAmount.Cents,
		DayOfMonth:         b.DayOfMonth,
		StartMonth:         InvoiceMonthToWire(b.StartMonth),
		EndMonth:           InvoiceMonthToWire(b.EndMonth),
		CategoryID:         b.CategoryID,
		InstallmentGroupID: b.InstallmentGroupID,
		AccountID:          b.AccountID,
		Active:             b.Active,
	}
}

func BillsToWire(bills []core.Bill) []BillWire {
	out := make([]BillWire, 0, len(bills))
	for _, b := range bills {
		out = append(out, BillToWire(b))
	}
	return out
}
