package installments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fatura/internal/core"
)

func TestPlan(t *testing.T) {
	card := &core.Account{ID: "card-1", Type: core.CreditCard, Statement: &core.Statement{CutoffDay: 5, DueDay: 12}}
	template := core.Transaction{
		AccountID:    "card-1",
		PurchaseDate: "2026-01-28",
		Description:  "Notebook",
		Amount:       core.Cents(123323),
		Direction:    core.Expense,
		Status:       core.Confirmed,
	}

	txs, err := Plan(template, 4, card)
	require.NoError(t, err)
	require.Len(t, txs, 4)

	groupID := txs[0].Installment.GroupID
	require.NotEmpty(t, groupID)

	var sum int64
	for i, tx := range txs {
		sum += tx.Amount.Cents
		assert.Equal(t, core.KindInstallment, tx.Kind)
		assert.Equal(t, groupID, tx.Installment.GroupID)
		assert.Equal(t, i+1, tx.Installment.Current)
		assert.Equal(t, 4, tx.Installment.Total)
		assert.NoError(t, tx.Validate())
	}
	assert.Equal(t, int64(123323), sum)

	assert.Equal(t, "2026-02", txs[0].InvoiceMonth)
	assert.Equal(t, "2026-05", txs[3].InvoiceMonth)
	assert.Equal(t, "2026-02-12", txs[0].ChargeDate)
	assert.Equal(t, "Notebook (1/4)", txs[0].Description)
	assert.Equal(t, core.Confirmed, txs[0].Status)
	assert.Equal(t, core.Planned, txs[1].Status)
	assert.Equal(t, []int64{30831, 30831, 30831, 30830}, []int64{
		txs[0].Amount.Cents, txs[1].Amount.Cents, txs[2].Amount.Cents, txs[3].Amount.Cents,
	})
}

func TestPlanRejectsBadInput(t *testing.T) {
	template := core.Transaction{PurchaseDate: "2026-01-28", Description: "x", Amount: core.Cents(100)}

	_, err := Plan(template, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidCount)

	template.Amount = core.Cents(0)
	_, err = Plan(template, 2, nil)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	template.Amount = core.Cents(100)
	template.PurchaseDate = "garbage"
	_, err = Plan(template, 2, nil)
	assert.Error(t, err)
}
