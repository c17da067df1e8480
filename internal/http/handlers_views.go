package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fatura/internal/aggregation"
	"fatura/internal/billing"
	"fatura/internal/core"
	"fatura/internal/normalize"
)

// Invoices

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	invoices, err := s.deps.Invoices.List(r.Context(), q.Get("account_id"), q.Get("month"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, normalize.InvoicesToWire(invoices))
}

type recomputeRequest struct {
	AccountID normalize.FlexString `json:"account_id"`
	Month     string               `json:"month"`
}

func (s *Server) handleRecomputeInvoice(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req recomputeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	inv, err := s.deps.Invoices.Recompute(r.Context(), req.AccountID.String(), req.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, normalize.InvoiceToWire(*inv))
}

// Installments

type installmentCount struct {
	Installments normalize.FlexInt `json:"installments"`
	N            normalize.FlexInt `json:"n"`
	Count        normalize.FlexInt `json:"count"`
}

func (c installmentCount) value() int {
	for _, v := range []normalize.FlexInt{c.Installments, c.N, c.Count} {
		if v != 0 {
			return int(v)
		}
	}
	return 0
}

// decodeInstallmentRequest reads a purchase template plus its installment
// count from the same JSON object.
func decodeInstallmentRequest(w http.ResponseWriter, r *http.Request) (core.Transaction, int, error) {
	body, err := readBody(w, r)
	if err != nil {
		return core.Transaction{}, 0, err
	}
	template, err := normalize.DecodeTransaction(body)
	if err != nil {
		return core.Transaction{}, 0, badRequest(err)
	}
	var count installmentCount
	if err := json.Unmarshal(body, &count); err != nil {
		return core.Transaction{}, 0, badRequest(err)
	}
	template.ID = ""
	return template, count.value(), nil
}

type installmentsResponse struct {
	GroupID      string                      `json:"group_id"`
	Count        int                         `json:"count"`
	Transactions []normalize.TransactionWire `json:"transactions"`
}

func newInstallmentsResponse(plan []core.Transaction) installmentsResponse {
	resp := installmentsResponse{Count: len(plan), Transactions: normalize.TransactionsToWire(plan)}
	if len(plan) > 0 && plan[0].Installment != nil {
		resp.GroupID = plan[0].Installment.GroupID
	}
	return resp
}

func (s *Server) handlePreviewInstallments(w http.ResponseWriter, r *http.Request) {
	template, n, err := decodeInstallmentRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := s.deps.Installments.Preview(r.Context(), template, n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newInstallmentsResponse(plan))
}

func (s *Server) handleCreateInstallments(w http.ResponseWriter, r *http.Request) {
	template, n, err := decodeInstallmentRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := s.deps.Installments.Create(r.Context(), template, n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newInstallmentsResponse(plan))
}

func (s *Server) handleInstallmentGroup(w http.ResponseWriter, r *http.Request) {
	plan, err := s.deps.Installments.Group(r.Context(), r.PathValue("group"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newInstallmentsResponse(plan))
}

// Billing

type invoiceMonthResponse struct {
	PurchaseDate   string `json:"purchase_date"`
	CutoffDay      int    `json:"cutoff_day"`
	InvoiceMonth   string `json:"invoice_month"`
	ReferenceMonth string `json:"reference_month"`
}

func (s *Server) handleInvoiceMonth(w http.ResponseWriter, r *http.Request) {
	purchaseDate := strings.TrimSpace(r.URL.Query().Get("purchase_date"))
	cutoff, err := queryInt(r, "cutoff_day", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cutoff < 0 || cutoff > 31 {
		writeError(w, r, badRequest(core.ErrInvalidDay))
		return
	}
	month := billing.InvoiceMonth(purchaseDate, cutoff)
	if month == "" {
		writeError(w, r, badRequest(errors.New("purchase_date must be YYYY-MM-DD")))
		return
	}
	writeJSON(w, http.StatusOK, invoiceMonthResponse{
		PurchaseDate:   purchaseDate,
		CutoffDay:      cutoff,
		InvoiceMonth:   month,
		ReferenceMonth: billing.ReferenceMonth(month),
	})
}

// Summary

type summaryResponse struct {
	Years  []int               `json:"years"`
	Matrix *aggregation.Matrix `json:"matrix"`
	Table  [][]string          `json:"table"`
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.deps.Summary.Monthly(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Years: m.Years(), Matrix: m, Table: m.Table()})
}
