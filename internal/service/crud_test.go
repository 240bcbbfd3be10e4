package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/repository"
	"github.com/aryan0dhankhar/wellpulse/pkg/pagination"
)

var idPattern = regexp.MustCompile(`^\d+-[0-9a-f]{9}$`)

func TestCreateStampsRecord(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.companies.Create(env.ctx, domain.Company{Name: "Nova Ltda", CNPJ: "11.111.111/0001-11", Sector: "Varejo"})
	require.NoError(t, err)
	assert.Regexp(t, idPattern, created.ID)
	assert.Equal(t, testNow, created.CreatedAt)
	assert.Equal(t, testNow, created.UpdatedAt)
	assert.True(t, created.IsActive)
	require.NotNil(t, created.BusinessHours)

	got, err := env.companies.GetByID(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.CNPJ, got.CNPJ)
	assert.Equal(t, 0, got.EmployeeCount)
}

func TestCreateRejectsInvalidRecord(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.companies.Create(env.ctx, domain.Company{Name: "  "})
	require.Error(t, err)
	assert.True(t, domain.IsInvalid(err))
}

func TestUpdateKeepsImmutableFields(t *testing.T) {
	env := newTestEnv(t)
	env.advance(time.Hour)

	updated, err := env.companies.Update(env.ctx, "company-1", map[string]any{
		"id":        "hijacked",
		"createdAt": "2030-01-01T00:00:00Z",
		"name":      "Tech Solutions S.A.",
	})
	require.NoError(t, err)
	assert.Equal(t, "company-1", updated.ID)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), updated.CreatedAt.UTC())
	assert.Equal(t, env.now, updated.UpdatedAt)
	assert.Equal(t, "Tech Solutions S.A.", updated.Name)
	assert.Equal(t, "12.345.678/0001-90", updated.CNPJ, "fields outside the patch are kept")

	_, err = env.companies.GetByID(env.ctx, "hijacked")
	assert.True(t, domain.IsNotFound(err))
}

func TestUpdateRevalidates(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.companies.Update(env.ctx, "company-1", map[string]any{"name": ""})
	assert.True(t, domain.IsInvalid(err))

	_, err = env.companies.Update(env.ctx, "company-1", map[string]any{"employeeCount": "many"})
	assert.True(t, domain.IsInvalid(err))
}

func TestMissingRecordsAreNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.companies.GetByID(env.ctx, "nope")
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, "company not found", err.Error())

	_, err = env.companies.Update(env.ctx, "nope", map[string]any{"name": "x"})
	assert.True(t, domain.IsNotFound(err))

	assert.True(t, domain.IsNotFound(env.companies.Delete(env.ctx, "nope")))
}

func TestDeactivatingDeleteKeepsRecord(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.companies.Delete(env.ctx, "company-2"))

	got, err := env.companies.GetByID(env.ctx, "company-2")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	active, err := env.companies.ListActive(env.ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "company-1", active[0].ID)
}

func TestSoftDeleteHidesRecord(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.surveys.Delete(env.ctx, "survey-2"))

	_, err := env.surveys.GetByID(env.ctx, "survey-2")
	assert.True(t, domain.IsNotFound(err))

	stored, err := env.store.Surveys.Get(env.ctx, "survey-2")
	require.NoError(t, err)
	require.NotNil(t, stored.DeletedAt)
	assert.Equal(t, testNow, *stored.DeletedAt)

	page, err := env.surveys.GetAll(env.ctx, pagination.Params{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestGetAllPaginatesInInsertionOrder(t *testing.T) {
	env := newTestEnv(t)

	page, err := env.companies.GetAll(env.ctx, pagination.Params{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "company-2", page.Data[0].ID)
}

func TestEmployeeCountIsDerived(t *testing.T) {
	env := newTestEnv(t)

	c, err := env.companies.GetByID(env.ctx, "company-1")
	require.NoError(t, err)
	assert.Equal(t, 3, c.EmployeeCount)

	require.NoError(t, env.employees.Delete(env.ctx, "emp-1"))
	c, err = env.companies.GetByID(env.ctx, "company-1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.EmployeeCount)
}

func TestLatencyStopsOnCancel(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewCompanyService(store, Config{Latency: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := svc.GetAll(ctx, pagination.Params{})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Less(t, time.Since(start), time.Second)
}

func TestMergeIgnoresUnknownKeys(t *testing.T) {
	base := &domain.Payment{Base: domain.Base{ID: "p"}, CompanyID: "c", Amount: 10, Status: domain.PaymentPending}

	out, err := merge(base, map[string]any{"amount": 25.5, "bogus": true})
	require.NoError(t, err)
	assert.Equal(t, 25.5, out.Amount)
	assert.Equal(t, "c", out.CompanyID)
	assert.Equal(t, 10.0, base.Amount, "base is not modified")
}
