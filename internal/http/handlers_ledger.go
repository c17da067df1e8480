package http

import (
	"net/http"

	"fatura/internal/normalize"
	"fatura/internal/storage"
)

// Accounts

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.deps.Ledger.ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, normalize.AccountsToWire(accounts))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.deps.Ledger.GetAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, normalize.AccountToWire(*a))
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := normalize.DecodeAccount(body)
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	a.ID = ""
	if err := s.deps.Ledger.CreateAccount(r.Context(), &a); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, normalize.AccountToWire(a))
}

func (s *Server) handlePatchAccount(w http.ResponseWriter, r *http.Request) {
	existing, err := s.deps.Ledger.GetAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := normalize.PatchAccount(*existing, body)
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	a.ID = existing.ID
	if err := s.deps.Ledger.UpdateAccount(r.Context(), &a); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, normalize.AccountToWire(a))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Transactions

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.TransactionFilter{
		AccountID:    q.Get("account_id"),
		InvoiceMonth: normalize.InvoiceMonthFromWire(q.Get("invoice_month")),
	}
	if raw := q.Get("status"); raw != "" {
		filter.Status = normalize.Status(raw)
	}
	txs, err := s.deps.Ledger.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, normalize.TransactionsToWire(txs))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.deps.Ledger.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, normalize.TransactionToWire(*t))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := normalize.DecodeTransaction(body)
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	t.ID = ""
	if err := s.deps.Ledger.CreateTransaction(r.Context(), &t); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, normalize.TransactionToWire(t))
}

func (s *Server) handlePatchTransaction(w http.ResponseWriter, r *http.Request) {
	existing, err := s.deps.Ledger.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := normalize.PatchTransaction(*existing, body)
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	t.ID = existing.ID
	if err := s.deps.Ledger.UpdateTransaction(r.Context(), &t); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, normalize.TransactionToWire(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Bills

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.deps.Ledger.ListBills(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, normalize.BillsToWire(bills))
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.Ledger.GetBill(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, normalize.BillToWire(*b))
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := normalize.DecodeBill(body)
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	b.ID = ""
	if err := s.deps.Ledger.CreateBill(r.Context(), &b); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, normalize.BillToWire(b))
}

func (s *Server) handlePatchBill(w http.ResponseWriter, r *http.Request) {
	existing, err := s.deps.Ledger.GetBill(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := normalize.PatchBill(*existing, body)
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	b.ID = existing.ID
	if err := s.deps.Ledger.UpdateBill(r.Context(), &b); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, normalize.BillToWire(b))
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteBill(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Categories

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Ledger.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, normalize.CategoriesToWire(cats))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Ledger.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, normalize.CategoryToWire(*c))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := normalize.DecodeCategory(body)
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	c.ID = ""
	if err := s.deps.Ledger.CreateCategory(r.Context(), &c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, normalize.CategoryToWire(c))
}

func (s *Server) handlePatchCategory(w http.ResponseWriter, r *http.Request) {
	existing, err := s.deps.Ledger.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := normalize.PatchCategory(*existing, body)
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	c.ID = existing.ID
	if err := s.deps.Ledger.UpdateCategory(r.Context(), &c); err != nil {
		writeError(w, r, err)
		return
	}
	// The stored slug is immutable; report what was kept.
	if stored, err := s.deps.Ledger.GetCategory(r.Context(), c.ID); err == nil {
		c = *stored
	}
	writeJSON(w, http.StatusOK, normalize.CategoryToWire(c))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
