package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"fatura/internal/aggregation"
	"fatura/internal/core"
	"fatura/internal/normalize"
)

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (c *Client) authenticate(ctx context.Context, path string, creds credentials) (string, error) {
	body, err := c.do(ctx, http.MethodPost, path, nil, creds)
	if err != nil {
		return "", err
	}
	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Token == "" {
		return "", fmt.Errorf("decode token response: missing token")
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

// Login exchanges credentials for a token and keeps it for later requests.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	return c.authenticate(ctx, "/api/auth/login", credentials{Email: email, Password: password})
}

func (c *Client) Register(ctx context.Context, email, displayName, password string) (string, error) {
	return c.authenticate(ctx, "/api/auth/register", credentials{Email: email, Password: password, DisplayName: displayName})
}

// Accounts

func (c *Client) ListAccounts(ctx context.Context) ([]core.Account, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/accounts", nil, nil)
	if err != nil {
		return nil, err
	}
	return normalize.DecodeAccounts(body)
}

func (c *Client) GetAccount(ctx context.Context, id string) (core.Account, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/accounts/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return core.Account{}, err
	}
	return normalize.DecodeAccount(body)
}

func (c *Client) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/accounts", nil, normalize.AccountToWire(a))
	if err != nil {
		return core.Account{}, err
	}
	return normalize.DecodeAccount(body)
}

// UpdateAccount sends a partial update; only the keys in patch change.
func (c *Client) UpdateAccount(ctx context.Context, id string, patch map[string]any) (core.Account, error) {
	body, err := c.do(ctx, http.MethodPatch, "/api/accounts/"+url.PathEscape(id), nil, patch)
	if err != nil {
		return core.Account{}, err
	}
	return normalize.DecodeAccount(body)
}

func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/accounts/"+url.PathEscape(id), nil, nil)
	return err
}

// Transactions

// TransactionQuery filters ListTransactions. Zero fields are not sent.
type TransactionQuery struct {
	AccountID    string
	InvoiceMonth string
	Status       core.Status
}

func (q TransactionQuery) values() url.Values {
	v := url.Values{}
	if q.AccountID != "" {
		v.Set("account_id", q.AccountID)
	}
	if q.InvoiceMonth != "" {
		v.Set("invoice_month", normalize.InvoiceMonthToWire(q.InvoiceMonth))
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	return v
}

func (c *Client) ListTransactions(ctx context.Context, q TransactionQuery) ([]core.Transaction, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/transactions", q.values(), nil)
	if err != nil {
		return nil, err
	}
	return normalize.DecodeTransactions(body)
}

func (c *Client) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/transactions/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return core.Transaction{}, err
	}
	return normalize.DecodeTransaction(body)
}

func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/transactions", nil, normalize.TransactionToWire(t))
	if err != nil {
		return core.Transaction{}, err
	}
	return normalize.DecodeTransaction(body)
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, patch map[string]any) (core.Transaction, error) {
	body, err := c.do(ctx, http.MethodPatch, "/api/transactions/"+url.PathEscape(id), nil, patch)
	if err != nil {
		return core.Transaction{}, err
	}
	return normalize.DecodeTransaction(body)
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), nil, nil)
	return err
}

// Bills

func (c *Client) ListBills(ctx context.Context) ([]core.Bill, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/bills", nil, nil)
	if err != nil {
		return nil, err
	}
	return normalize.DecodeBills(body)
}

func (c *Client) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/bills", nil, normalize.BillToWire(b))
	if err != nil {
		return core.Bill{}, err
	}
	return normalize.DecodeBill(body)
}

func (c *Client) UpdateBill(ctx context.Context, id string, patch map[string]any) (core.Bill, error) {
	body, err := c.do(ctx, http.MethodPatch, "/api/bills/"+url.PathEscape(id), nil, patch)
	if err != nil {
		return core.Bill{}, err
	}
	return normalize.DecodeBill(body)
}

func (c *Client) DeleteBill(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/bills/"+url.PathEscape(id), nil, nil)
	return err
}

// Categories

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil)
	if err != nil {
		return nil, err
	}
	return normalize.DecodeCategories(body)
}

func (c *Client) CreateCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/categories", nil, normalize.CategoryToWire(cat))
	if err != nil {
		return core.Category{}, err
	}
	return normalize.DecodeCategory(body)
}

func (c *Client) UpdateCategory(ctx context.Context, id string, patch map[string]any) (core.Category, error) {
	body, err := c.do(ctx, http.MethodPatch, "/api/categories/"+url.PathEscape(id), nil, patch)
	if err != nil {
		return core.Category{}, err
	}
	return normalize.DecodeCategory(body)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id), nil, nil)
	return err
}

// Invoices

func (c *Client) ListInvoices(ctx context.Context, accountID, month string) ([]core.Invoice, error) {
	q := url.Values{}
	if accountID != "" {
		q.Set("account_id", accountID)
	}
	if month != "" {
		q.Set("month", month)
	}
	body, err := c.do(ctx, http.MethodGet, "/api/invoices", q, nil)
	if err != nil {
		return nil, err
	}
	return normalize.DecodeInvoices(body)
}

func (c *Client) RecomputeInvoice(ctx context.Context, accountID, month string) (core.Invoice, error) {
	in := map[string]string{"account_id": accountID, "month": month}
	body, err := c.do(ctx, http.MethodPost, "/api/invoices/recompute", nil, in)
	if err != nil {
		return core.Invoice{}, err
	}
	return normalize.DecodeInvoice(body)
}

// Installments

type installmentRequest struct {
	normalize.TransactionWire
	Installments int `json:"installments"`
}

type installmentResponse struct {
	Transactions json.RawMessage `json:"transactions"`
}

func (c *Client) installments(ctx context.Context, path string, template core.Transaction, n int) ([]core.Transaction, error) {
	in := installmentRequest{TransactionWire: normalize.TransactionToWire(template), Installments: n}
	body, err := c.do(ctx, http.MethodPost, path, nil, in)
	if err != nil {
		return nil, err
	}
	var resp installmentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode installments: %w", err)
	}
	return normalize.DecodeTransactions(resp.Transactions)
}

// PreviewInstallments asks the server how a purchase would be split.
func (c *Client) PreviewInstallments(ctx context.Context, template core.Transaction, n int) ([]core.Transaction, error) {
	return c.installments(ctx, "/api/installments/preview", template, n)
}

func (c *Client) CreateInstallments(ctx context.Context, template core.Transaction, n int) ([]core.Transaction, error) {
	return c.installments(ctx, "/api/installments", template, n)
}

// InvoiceMonth asks the server which invoice (YYYY-MM) a purchase falls into.
func (c *Client) InvoiceMonth(ctx context.Context, purchaseDate string, cutoffDay int) (string, error) {
	q := url.Values{"purchase_date": {purchaseDate}, "cutoff_day": {strconv.Itoa(cutoffDay)}}
	body, err := c.do(ctx, http.MethodGet, "/api/billing/invoice-month", q, nil)
	if err != nil {
		return "", err
	}
	var resp struct {
		InvoiceMonth string `json:"invoice_month"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode invoice month: %w", err)
	}
	return core.MonthOf(resp.InvoiceMonth), nil
}

// Summary is the monthly matrix as served by the API.
type Summary struct {
	Years  []int               `json:"years"`
	Matrix *aggregation.Matrix `json:"matrix"`
	Table  [][]string          `json:"table"`
}

// MonthlySummary fetches the matrix for year. Zero asks for the current year.
func (c *Client) MonthlySummary(ctx context.Context, year int) (*Summary, error) {
	var q url.Values
	if year != 0 {
		q = url.Values{"year": {strconv.Itoa(year)}}
	}
	body, err := c.do(ctx, http.MethodGet, "/api/summary/monthly", q, nil)
	if err != nil {
		return nil, err
	}
	var s Summary
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &s, nil
}
