// Package state is the client-side state container: a snapshot of the
// ledger plus the session token, changed only through Actions.
package state

import (
	"slices"

	"fatura/internal/core"
)

// State is the whole client state. It is treated as immutable: Reduce
// returns a new value and never edits the slices of its input.
type State struct {
	Token        string             `json:"token,omitempty"`
	Email        string             `json:"email,omitempty"`
	Accounts     []core.Account     `json:"accounts"`
	Transactions []core.Transaction `json:"transactions"`
	Bills        []core.Bill        `json:"bills"`
	Categories   []core.Category    `json:"categories"`
	LastError    string             `json:"last_error,omitempty"`
	SyncedAt     string             `json:"synced_at,omitempty"`
}

// Authenticated reports whether a session token is held.
func (s State) Authenticated() bool { return s.Token != "" }

// Action is a state transition. The set is closed: only this package
// defines actions.
type Action interface {
	isAction()
}

type (
	// LoggedIn stores a new session.
	LoggedIn struct {
		Token string
		Email string
	}

	// LoggedOut drops the session and every cached collection.
	LoggedOut struct{}

	// Synced replaces every collection with a fresh fetch.
	Synced struct {
		Accounts     []core.Account
		Transactions []core.Transaction
		Bills        []core.Bill
		Categories   []core.Category
		At           string
	}

	AccountSaved       struct{ Account core.Account }
	AccountDeleted     struct{ ID string }
	TransactionsSaved  struct{ Transactions []core.Transaction }
	TransactionDeleted struct{ ID string }
	BillSaved          struct{ Bill core.Bill }
	BillDeleted        struct{ ID string }
	CategorySaved      struct{ Category core.Category }
	CategoryDeleted    struct{ ID string }

	// Failed records the message of the last failed operation.
	Failed struct{ Message string }

	// ErrorCleared resets LastError.
	ErrorCleared struct{}
)

func (LoggedIn) isAction()           {}
func (LoggedOut) isAction()          {}
func (Synced) isAction()             {}
func (AccountSaved) isAction()       {}
func (AccountDeleted) isAction()     {}
func (TransactionsSaved) isAction()  {}
func (TransactionDeleted) isAction() {}
func (BillSaved) isAction()          {}
func (BillDeleted) isAction()        {}
func (CategorySaved) isAction()      {}
func (CategoryDeleted) isAction()    {}
func (Failed) isAction()             {}
func (ErrorCleared) isAction()       {}

// Reduce applies a to s and returns the next state. It is pure.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case LoggedIn:
		s.Token = a.Token
		s.Email = a.Email
		s.LastError = ""
	case LoggedOut:
		return State{}
	case Synced:
		s.Accounts = slices.Clone(a.Accounts)
		s.Transactions = slices.Clone(a.Transactions)
		s.Bills = slices.Clone(a.Bills)
		s.Categories = slices.Clone(a.Categories)
		s.SyncedAt = a.At
		s.LastError = ""
	case AccountSaved:
		s.Accounts = upsert(s.Accounts, a.Account, func(x core.Account) string { return x.ID })
	case AccountDeleted:
		s.Accounts = remove(s.Accounts, a.ID, func(x core.Account) string { return x.ID })
	case TransactionsSaved:
		for _, t := range a.Transactions {
			s.Transactions = upsert(s.Transactions, t, func(x core.Transaction) string { return x.ID })
		}
	case TransactionDeleted:
		s.Transactions = remove(s.Transactions, a.ID, func(x core.Transaction) string { return x.ID })
	case BillSaved:
		s.Bills = upsert(s.Bills, a.Bill, func(x core.Bill) string { return x.ID })
	case BillDeleted:
		s.Bills = remove(s.Bills, a.ID, func(x core.Bill) string { return x.ID })
	case CategorySaved:
		s.Categories = upsert(s.Categories, a.Category, func(x core.Category) string { return x.ID })
	case CategoryDeleted:
		s.Categories = remove(s.Categories, a.ID, func(x core.Category) string { return x.ID })
	case Failed:
		s.LastError = a.Message
	case ErrorCleared:
		s.LastError = ""
	}
	return s
}

// upsert returns a copy of items with v replacing the element with the same
// id, or appended when there is none.
func upsert[T any](items []T, v T, id func(T) string) []T {
	out := slices.Clone(items)
	if i := slices.IndexFunc(out, func(x T) bool { return id(x) == id(v) }); i >= 0 {
		out[i] = v
		return out
	}
	return append(out, v)
}

func remove[T any](items []T, target string, id func(T) string) []T {
	return slices.DeleteFunc(slices.Clone(items), func(x T) bool { return id(x) == target })
}
