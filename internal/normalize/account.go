package normalize

import (
	"encoding/json"

	"fatura/internal/core"
)

var accountFields = []field{
	{"id", []string{"id", "uuid"}},
	{"type", []string{"type", "account_type", "accountType", "tipo"}},
	{"name", []string{"name", "nome"}},
	{"color", []string{"color", "cor"}},
	{"active", []string{"active", "is_active", "isActive", "ativo"}},
	{"opening_balance_cents", []string{"opening_balance_cents", "openingBalanceCents"}},
	{"opening_balance", []string{"opening_balance", "openingBalance", "saldo_inicial"}},
	{"limit_cents", []string{"limit_cents", "limitCents", "credit_limit_cents"}},
	{"limit", []string{"limit", "credit_limit", "limite"}},
	{"statement", []string{"statement"}},
	{"cutoff_day", []string{"cutoff_day", "cutoffDay", "closing_day", "closingDay", "statement_cutoff_day", "dia_fechamento"}},
	{"due_day", []string{"due_day", "dueDay", "statement_due_day", "dia_vencimento"}},
}

type statementIn struct {
	CutoffDay      FlexInt `json:"cutoff_day"`
	CutoffDayCamel FlexInt `json:"cutoffDay"`
	ClosingDay     FlexInt `json:"closing_day"`
	DueDay         FlexInt `json:"due_day"`
	DueDayCamel    FlexInt `json:"dueDay"`
}

type accountIn struct {
	ID                  FlexString   `json:"id"`
	Type                string       `json:"type"`
	Name                string       `json:"name"`
	Color               string       `json:"color"`
	Active              FlexBool     `json:"active"`
	OpeningBalanceCents FlexDecimal  `json:"opening_balance_cents"`
	OpeningBalance      FlexDecimal  `json:"opening_balance"`
	LimitCents          FlexDecimal  `json:"limit_cents"`
	Limit               FlexDecimal  `json:"limit"`
	Statement           *statementIn `json:"statement"`
	CutoffDay           FlexInt      `json:"cutoff_day"`
	DueDay              FlexInt      `json:"due_day"`
}

// StatementWire is the wire shape of a card statement.
type StatementWire struct {
	CutoffDay int `json:"cutoff_day"`
	DueDay    int `json:"due_day"`
}

// AccountWire is the canonical JSON emitted by the API.
type AccountWire struct {
	ID                  string         `json:"id"`
	Type                string         `json:"type"`
	Name                string         `json:"name"`
	Color               string         `json:"color,omitempty"`
	Active              bool           `json:"active"`
	OpeningBalanceCents int64          `json:"opening_balance_cents"`
	LimitCents          int64          `json:"limit_cents"`
	Statement           *StatementWire `json:"statement"`
}

func DecodeAccount(body []byte) (core.Account, error) {
	var in accountIn
	if _, err := decodeCanonical(body, accountFields, &in); err != nil {
		return core.Account{}, err
	}
	return in.toCore(), nil
}

func DecodeAccounts(body []byte) ([]core.Account, error) {
	items, err := decodeList(body)
	if err != nil {
		return nil, err
	}
	out := make([]core.Account, 0, len(items))
	for _, item := range items {
		a, err := DecodeAccount(item)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// PatchAccount applies a partial update to an existing account.
func PatchAccount(existing core.Account, body []byte) (core.Account, error) {
	patch, err := canonicalize(body, accountFields)
	if err != nil {
		return core.Account{}, err
	}
	base, err := toMap(AccountToWire(existing))
	if err != nil {
		return core.Account{}, err
	}
	merged := merge(base, patch,
		[]string{"opening_balance_cents", "opening_balance"},
		[]string{"limit_cents", "limit"},
		[]string{"statement", "cutoff_day", "due_day"},
	)
	b, err := json.Marshal(merged)
	if err != nil {
		return core.Account{}, err
	}
	a, err := DecodeAccount(b)
	if err != nil {
		return core.Account{}, err
	}
	a.ID = existing.ID
	return a, nil
}

// centsOf prefers an explicit cents field over a currency-unit one.
func centsOf(cents, units FlexDecimal) int64 {
	if cents.Valid {
		return cents.Decimal.Round(0).IntPart()
	}
	if units.Valid {
		return core.FromDecimal(units.Decimal).Cents
	}
	return 0
}

func (in accountIn) toCore() core.Account {
	cutoff, due := int(in.CutoffDay), int(in.DueDay)
	if s := in.Statement; s != nil {
		cutoff = firstNonZero(int(s.CutoffDay), int(s.CutoffDayCamel), int(s.ClosingDay))
		due = firstNonZero(int(s.DueDay), int(s.DueDayCamel))
	}
	hasStatement := cutoff > 0 || due > 0

	a := core.Account{
		ID:     in.ID.String(),
		Type:   AccountType(in.Type, hasStatement),
		Name:   in.Name,
		Color:  in.Color,
		Active: in.Active.Or(true),
	}
	// Statement and limit only mean something for cards, the opening
	// balance only for checking accounts.
	if a.Type == core.CreditCard {
		a.Limit = core.Cents(centsOf(in.LimitCents, in.Limit))
		if hasStatement {
			a.Statement = &core.Statement{CutoffDay: cutoff, DueDay: due}
		}
	} else {
		a.OpeningBalance = core.Cents(centsOf(in.OpeningBalanceCents, in.OpeningBalance))
	}
	return a
}

func firstNonZero(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func AccountToWire(a core.Account) AccountWire {
	w := AccountWire{
		ID:                  a.ID,
		Type:                string(a.Type),
		Name:                a.Name,
		Color:               a.Color,
		Active:              a.Active,
		OpeningBalanceCents: a.OpeningBalance.Cents,
		LimitCents:          a.Limit.Cents,
	}
	if a.Statement != nil {
		w.Statement = &StatementWire{CutoffDay: a.Statement.CutoffDay, DueDay: a.Statement.DueDay}
	}
	return w
}

func AccountsToWire(accounts []core.Account) []AccountWire {
	out := make([]AccountWire, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountToWire(a))
	}
	return out
}
