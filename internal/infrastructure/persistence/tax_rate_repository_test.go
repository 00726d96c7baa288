package persistence

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/tax"
)

func mustRate(t *testing.T, p tax.RateParams) *tax.Rate {
	t.Helper()
	r, err := tax.NewRate(p)
	require.NoError(t, err)
	return r
}

func TestGormTaxRateRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTaxRateRepository(db)
	ctx := context.Background()

	state := mustRate(t, tax.RateParams{StateCode: "TX", Rate: decimal.RequireFromString("0.0625")})
	county := mustRate(t, tax.RateParams{StateCode: "TX", County: "Travis", Rate: decimal.RequireFromString("0.0825")})
	zip := mustRate(t, tax.RateParams{StateCode: "TX", ZipCode: "78701", Rate: decimal.RequireFromString("0.0850")})
	oldZip := mustRate(t, tax.RateParams{StateCode: "TX", ZipCode: "78702", Rate: decimal.RequireFromString("0.0800")})
	oldZip.Deactivate()
	require.NoError(t, repo.SaveBatch(ctx, []*tax.Rate{state, county, zip, oldZip}))

	tests := []struct {
		name   string
		lookup func() (*tax.Rate, error)
		want   *tax.Rate
	}{
		{"zip match", func() (*tax.Rate, error) { return repo.FindActiveByZip(ctx, "tx", "78701") }, zip},
		{"county ignores case", func() (*tax.Rate, error) { return repo.FindActiveByCounty(ctx, "TX", "travis") }, county},
		{"state rate has no county or zip", func() (*tax.Rate, error) { return repo.FindActiveStateRate(ctx, "TX") }, state},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.lookup()
			require.NoError(t, err)
			assert.Equal(t, tt.want.ID, got.ID)
			assert.True(t, tt.want.Rate.Equal(got.Rate))
		})
	}

	t.Run("inactive zip is a miss", func(t *testing.T) {
		_, err := repo.FindActiveByZip(ctx, "TX", "78702")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("list filters by state and active", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["state_code"] = "tx"
		filter.Filters["active"] = true
		rates, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, rates, 3)
	})
}
