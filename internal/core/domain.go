package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Checking   AccountType = "checking"
	CreditCard AccountType = "credit_card"
)

const (
	Expense Direction = "expense"
	Income  Direction = "income"
)

const (
	Planned   Status = "planned"
	Confirmed Status = "confirmed"
	Paid      Status = "paid"
	Overdue   Status = "overdue"
)

const (
	KindOneOff         Kind = "one_off"
	KindRecurring      Kind = "recurring"
	KindInstallment    Kind = "installment"
	KindInvoicePayment Kind = "invoice_payment"
)

const (
	InvoiceOpen   InvoiceStatus = "open"
	InvoiceClosed InvoiceStatus = "closed"
	InvoicePaid   InvoiceStatus = "paid"
)

type (
	AccountType   string
	Direction     string
	Status        string
	Kind          string
	InvoiceStatus string

	// Statement holds the billing cycle of a credit card.
	Statement struct {
		CutoffDay int `json:"cutoff_day"`
		DueDay    int `json:"due_day"`
	}

	Account struct {
		ID             string      `json:"id"`
		Type           AccountType `json:"type"`
		Name           string      `json:"name"`
		Color          string      `json:"color,omitempty"`
		Active         bool        `json:"active"`
		OpeningBalance Money       `json:"opening_balance"`
		Limit          Money       `json:"limit"`
		Statement      *Statement  `json:"statement,omitempty"`
	}

	Installment struct {
		GroupID string `json:"group_id"`
		Current int    `json:"current"`
		Total   int    `json:"total"`
	}

	// Transaction is a posted or planned money movement. Amount is always a
	// magnitude; Direction carries the sign.
	Transaction struct {
		ID           string       `json:"id"`
		AccountID    string       `json:"account_id,omitempty"`
		LegacyCard   string       `json:"legacy_card,omitempty"`
		PurchaseDate string       `json:"purchase_date,omitempty"`
		ChargeDate   string       `json:"charge_date,omitempty"`
		Date         string       `json:"date,omitempty"`
		CreatedAt    string       `json:"created_at,omitempty"`
		InvoiceMonth string       `json:"invoice_month,omitempty"`
		Merchant     string       `json:"merchant,omitempty"`
		Description  string       `json:"description"`
		CategoryID   string       `json:"category_id,omitempty"`
		Amount       Money        `json:"amount"`
		Direction    Direction    `json:"direction"`
		Status       Status       `json:"status"`
		Kind         Kind         `json:"kind"`
		Installment  *Installment `json:"installment,omitempty"`
		BillID       string       `json:"bill_id,omitempty"`
	}

	// Bill is a recurring expense template. Paying it creates or links a Transaction.
	Bill struct {
		ID                 string `json:"id"`
		Name               string `json:"name"`
		Payee              string `json:"payee,omitempty"`
		Kind               string `json:"kind,omitempty"`
		DefaultAmount      Money  `json:"default_amount"`
		DayOfMonth         int    `json:"day_of_month"`
		StartMonth         string `json:"start_month,omitempty"`
		EndMonth           string `json:"end_month,omitempty"`
		CategoryID         string `json:"category_id,omitempty"`
		InstallmentGroupID string `json:"installment_group_id,omitempty"`
		AccountID          string `json:"account_id,omitempty"`
		Active             bool   `json:"active"`
	}

	Category struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Slug   string `json:"slug"`
		Color  string `json:"color,omitempty"`
		Icon   string `json:"icon,omitempty"`
		Active bool   `json:"active"`
	}

	Invoice struct {
		ID        string        `json:"id"`
		AccountID string        `json:"account_id"`
		Month     string        `json:"month"`
		DueDate   string        `json:"due_date,omitempty"`
		Total     Money         `json:"total"`
		Status    InvoiceStatus `json:"status"`
	}

	User struct {
		ID           string    `json:"id"`
		Email        string    `json:"email"`
		DisplayName  string    `json:"display_name"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidStatement   = errors.New("invalid statement")
	ErrInvalidDirection   = errors.New("invalid direction")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidKind        = errors.New("invalid kind")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidDay         = errors.New("invalid day")
	ErrInvalidInstallment = errors.New("invalid installment")
	ErrInvalidSlug        = errors.New("invalid slug")
)

// invoicePaymentPhrases mark a transaction that pays a card invoice.
var invoicePaymentPhrases = []string{
	"pagamento fatura",
	"pagamento de fatura",
	"pagamento da fatura",
	"pgto fatura",
	"invoice payment",
	"credit card payment",
}

func (t AccountType) Valid() bool { return t == Checking || t == CreditCard }

func (d Direction) Valid() bool { return d == Expense || d == Income }

func (s Status) Valid() bool {
	switch s {
	case Planned, Confirmed, Paid, Overdue:
		return true
	}
	return false
}

func (k Kind) Valid() bool {
	switch k {
	case KindOneOff, KindRecurring, KindInstallment, KindInvoicePayment:
		return true
	}
	return false
}

// IsCreditCard reports whether the account is a credit card.
func (a Account) IsCreditCard() bool { return a.Type == CreditCard }

// CutoffDay returns the statement cutoff day, or 0 when none is set.
func (a Account) CutoffDay() int {
	if a.Statement == nil {
		return 0
	}
	return a.Statement.CutoffDay
}

func (s Statement) Validate() error {
	if s.CutoffDay < 1 || s.CutoffDay > 28 {
		return ErrInvalidStatement
	}
	if s.DueDay < 1 || s.DueDay > 28 {
		return ErrInvalidStatement
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	if a.Type == Checking && a.Statement != nil {
		return errors.New("statement is only allowed on credit card accounts")
	}
	if a.Statement != nil {
		if err := a.Statement.Validate(); err != nil {
			return err
		}
	}
	if a.Limit.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsInvoicePayment reports whether the transaction settles a card invoice,
// either by kind or by a known description phrase.
func (t Transaction) IsInvoicePayment() bool {
	if t.Kind == KindInvoicePayment {
		return true
	}
	return HasInvoicePaymentPhrase(t.Description)
}

// HasInvoicePaymentPhrase reports whether text mentions paying a card invoice.
func HasInvoicePaymentPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range invoicePaymentPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Direction.Valid() {
		return ErrInvalidDirection
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.PurchaseDate != "" {
		if _, err := ParseDate(t.PurchaseDate); err != nil {
			return err
		}
	}
	if t.ChargeDate != "" {
		if _, err := ParseDate(t.ChargeDate); err != nil {
			return err
		}
	}
	if t.InvoiceMonth != "" {
		if _, err := ParseYearMonth(t.InvoiceMonth); err != nil {
			return err
		}
	}
	if t.Kind == KindInstallment {
		if t.Installment == nil {
			return ErrInvalidInstallment
		}
		if t.Installment.Total < 1 || t.Installment.Current < 1 || t.Installment.Current > t.Installment.Total {
			return ErrInvalidInstallment
		}
	} else if t.Installment != nil {
		return ErrInvalidInstallment
	}
	return nil
}

// IsInvoice reports whether the bill represents a card invoice rather than
// a recurring expense.
func (b Bill) IsInvoice() bool {
	switch strings.ToLower(strings.TrimSpace(b.Kind)) {
	case "invoice", "card_invoice", "fatura":
		return true
	}
	return false
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if err := b.DefaultAmount.Validate(); err != nil {
		return err
	}
	if b.DayOfMonth < 1 || b.DayOfMonth > 31 {
		return ErrInvalidDay
	}
	var start, end YearMonth
	var err error
	if b.StartMonth != "" {
		if start, err = ParseYearMonth(b.StartMonth); err != nil {
			return err
		}
	}
	if b.EndMonth != "" {
		if end, err = ParseYearMonth(b.EndMonth); err != nil {
			return err
		}
		if b.StartMonth != "" && end.Before(start) {
			return errors.New("end month must not be before start month")
		}
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Slug != "" && c.Slug != Slugify(c.Slug) {
		return ErrInvalidSlug
	}
	return nil
}

func (i Invoice) Validate() error {
	if i.AccountID == "" {
		return errors.New("invoice requires an account")
	}
	if _, err := ParseYearMonth(i.Month); err != nil {
		return err
	}
	return nil
}
