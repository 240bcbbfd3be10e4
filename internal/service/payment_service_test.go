package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/pkg/pagination"
)

func TestPaymentDefaults(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.payments.Create(env.ctx, domain.Payment{CompanyID: "company-2", Amount: 1800, DueDate: testNow.Add(30 * day)})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, p.Status)
	assert.Equal(t, "BRL", p.Currency)

	_, err = env.payments.Create(env.ctx, domain.Payment{CompanyID: "company-2", Amount: 0})
	assert.True(t, domain.IsInvalid(err))
}

func TestMarkAsPaid(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.payments.MarkAsPaid(env.ctx, "pay-2")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, p.Status)
	require.NotNil(t, p.PaidAt)
	assert.Equal(t, testNow, *p.PaidAt)

	_, err = env.payments.MarkAsPaid(env.ctx, "pay-2")
	assert.Equal(t, domain.ErrCodeConflict, domain.CodeOf(err))
}

func TestCancelledPaymentCannotBePaid(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.payments.Delete(env.ctx, "pay-3"))
	p, err := env.payments.GetByID(env.ctx, "pay-3")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCancelled, p.Status)

	_, err = env.payments.MarkAsPaid(env.ctx, "pay-3")
	assert.True(t, domain.IsInvalid(err))

	for _, status := range []string{"pending", "paid"} {
		_, err = env.payments.Update(env.ctx, "pay-3", map[string]any{"status": status})
		assert.True(t, domain.IsInvalid(err), status)
	}
	_, err = env.payments.Update(env.ctx, "pay-3", map[string]any{"description": "estornado"})
	require.NoError(t, err)
	p, err = env.payments.GetByID(env.ctx, "pay-3")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCancelled, p.Status)
}

func TestMarkOverdue(t *testing.T) {
	env := newTestEnv(t)

	n, err := env.payments.MarkOverdue(env.ctx, env.now)
	require.NoError(t, err)
	assert.Zero(t, n)

	env.advance(16 * day)
	n, err = env.payments.MarkOverdue(env.ctx, env.now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	overdue, err := env.payments.ListByStatus(env.ctx, domain.PaymentOverdue, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, 2, overdue.Total)

	n, err = env.payments.MarkOverdue(env.ctx, env.now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPaymentStats(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.payments.Stats(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStats{Total: 3, Paid: 1, Pending: 1, Overdue: 1, TotalAmount: 6800, PaidAmount: 2500}, stats)

	byCompany, err := env.payments.ListByCompany(env.ctx, "company-1", pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, 2, byCompany.Total)
}
