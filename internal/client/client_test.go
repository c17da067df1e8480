package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fatura/internal/core"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)
	_, err = New("://")
	assert.Error(t, err)

	c, err := New("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
}

func TestLoginStoresTokenAndSendsIt(t *testing.T) {
	var gotAuth []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/auth/login":
			var in credentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "ana@example.com", in.Email)
			_, _ = io.WriteString(w, `{"token":"jwt-1"}`)
		case "/api/accounts":
			_, _ = io.WriteString(w, `[]`)
		}
	})

	token, err := c.Login(context.Background(), "ana@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "jwt-1", token)
	assert.Equal(t, "jwt-1", c.Token())

	_, err = c.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"", "Token jwt-1"}, gotAuth)
}

func TestAPIErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail", `{"detail":"invalid or expired token"}`, "invalid or expired token"},
		{"message", `{"message":"nope"}`, "nope"},
		{"structured detail falls back", `{"detail":[{"loc":["body"]}]}`, GenericErrorMessage},
		{"html", `<html>bad gateway</html>`, GenericErrorMessage},
		{"empty", ``, GenericErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.ListBills(context.Background())
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.True(t, IsUnauthorized(err))
		})
	}
}

func TestListTransactionsNormalizesEnvelopes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "card-1", r.URL.Query().Get("account_id"))
		assert.Equal(t, "2026-04-01", r.URL.Query().Get("invoice_month"))
		_, _ = io.WriteString(w, `{"results":[
			{"id":"t1","accountId":"card-1","data_compra":"2026-03-10","descricao":"Mercado","valor":"159,90","mes_fatura":"2026-04-01"},
			{"id":"t2","account":{"id":"card-1"},"purchaseDate":"2026-03-11","description":"Estorno","amount":-20,"type":"credito"}
		]}`)
	})

	txs, err := c.ListTransactions(context.Background(), TransactionQuery{AccountID: "card-1", InvoiceMonth: "2026-04"})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(15990), txs[0].Amount.Cents)
	assert.Equal(t, "2026-04", txs[0].InvoiceMonth)
	assert.Equal(t, "card-1", txs[1].AccountID)
	assert.Equal(t, core.Income, txs[1].Direction)
}

func TestCreateInstallmentsSendsCount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/installments/preview", r.URL.Path)
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.EqualValues(t, 3, in["installments"])
		assert.EqualValues(t, 1000, in["amount_cents"])
		_, _ = io.WriteString(w, `{"group_id":"g","count":2,"transactions":[
			{"id":"a","description":"TV (1/2)","amount_cents":500,"installment":{"group_id":"g","current":1,"total":2}},
			{"id":"b","description":"TV (2/2)","amount_cents":500,"installment":{"group_id":"g","current":2,"total":2}}
		]}`)
	})

	plan, err := c.PreviewInstallments(context.Background(), core.Transaction{Description: "TV", Amount: core.Cents(1000)}, 3)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	require.NotNil(t, plan[1].Installment)
	assert.Equal(t, 2, plan[1].Installment.Current)
}

func TestInvoiceMonthAndSummary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/billing/invoice-month":
			assert.Equal(t, "5", r.URL.Query().Get("cutoff_day"))
			_, _ = io.WriteString(w, `{"invoice_month":"2026-04"}`)
		case "/api/summary/monthly":
			assert.Equal(t, "2026", r.URL.Query().Get("year"))
			_, _ = io.WriteString(w, `{"years":[2026],"table":[["","jan/26"],["Entradas","0,00"]]}`)
		}
	})

	month, err := c.InvoiceMonth(context.Background(), "2026-03-10", 5)
	require.NoError(t, err)
	assert.Equal(t, "2026-04", month)

	s, err := c.MonthlySummary(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, []int{2026}, s.Years)
	assert.Equal(t, "Entradas", s.Table[1][0])
}

func TestTimeoutIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
	}, WithTimeout(50*time.Millisecond))

	_, err := c.ListCategories(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDeleteSendsMethod(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/bills/a%20b", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	}, WithToken("t"))

	require.NoError(t, c.DeleteBill(context.Background(), "a b"))
}

func TestResourceIDsAreEscapedOnce(t *testing.T) {
	tests := []struct {
		id      string
		escaped string
	}{
		{id: "plain", escaped: "/api/transactions/plain"},
		{id: "a b", escaped: "/api/transactions/a%20b"},
		{id: "a/b", escaped: "/api/transactions/a%2Fb"},
		{id: "50%", escaped: "/api/transactions/50%25"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			var gotEscaped, gotPath string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotEscaped = r.URL.EscapedPath()
				gotPath = r.URL.Path
				w.WriteHeader(http.StatusNoContent)
			})

			require.NoError(t, c.DeleteTransaction(context.Background(), tt.id))
			assert.Equal(t, tt.escaped, gotEscaped)
			assert.Equal(t, "/api/transactions/"+tt.id, gotPath)
		})
	}
}

func TestEndpointKeepsBasePath(t *testing.T) {
	c, err := New("http://example.com/v1/")
	require.NoError(t, err)

	got := c.endpoint("/api/bills/"+url.PathEscape("x/y"), url.Values{"year": {"2026"}})
	assert.Equal(t, "http://example.com/v1/api/bills/x%2Fy?year=2026", got)
}
