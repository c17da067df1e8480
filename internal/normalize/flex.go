package normalize

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fatura/internal/core"
)

// FlexString decodes a JSON string or number into a string. Legacy rows
// carry numeric ids.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// FlexInt decodes a JSON number or numeric string. Anything else decodes to 0.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexInt(n)
	return nil
}

// FlexBool decodes true/false, 0/1 and the usual string spellings.
type FlexBool struct {
	Set   bool
	Value bool
}

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FlexBool{}
	switch x := v.(type) {
	case bool:
		*f = FlexBool{Set: true, Value: x}
	case float64:
		*f = FlexBool{Set: true, Value: x != 0}
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes", "sim", "y", "s":
			*f = FlexBool{Set: true, Value: true}
		case "false", "0", "no", "nao", "não", "n":
			*f = FlexBool{Set: true, Value: false}
		}
	}
	return nil
}

// Or returns the decoded value, or def when the field was absent.
func (f FlexBool) Or(def bool) bool {
	if !f.Set {
		return def
	}
	return f.Value
}

// FlexDecimal decodes a JSON number or a formatted amount string such as
// "R$ 1.234,56". Unreadable values leave Valid false instead of failing the
// whole payload.
type FlexDecimal struct {
	Decimal decimal.Decimal
	Valid   bool
}

func (f *FlexDecimal) UnmarshalJSON(b []byte) error {
	*f = FlexDecimal{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		cents, err := core.ParseAmount(s)
		if err != nil {
			return nil
		}
		*f = FlexDecimal{Decimal: decimal.New(cents, -2), Valid: true}
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return nil
	}
	*f = FlexDecimal{Decimal: d, Valid: true}
	return nil
}
