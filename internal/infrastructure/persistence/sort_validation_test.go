package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	for in, want := range map[string]string{
		"":                        "DESC",
		"asc":                     "ASC",
		"  ASC ":                  "ASC",
		"desc":                    "DESC",
		"ASC; DROP TABLE orders;": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(in), "input %q", in)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty falls back", "", "created_at"},
		{"whitelisted column", "next_billing_date", "next_billing_date"},
		{"trimmed", " amount ", "amount"},
		{"case sensitive", "STATUS", "created_at"},
		{"column of another table", "order_number", "created_at"},
		{"injection", "status; DELETE FROM subscriptions", "created_at"},
		{"subquery", "(SELECT password_hash FROM customers)", "created_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortField(tt.input, SubscriptionSortFields, "created_at"))
		})
	}
}

func TestSortFieldsWhitelists_HaveDefaultColumn(t *testing.T) {
	for name, fields := range map[string]map[string]bool{
		"customer":     CustomerSortFields,
		"product":      ProductSortFields,
		"subscription": SubscriptionSortFields,
		"invoice":      InvoiceSortFields,
		"order":        OrderSortFields,
		"tax_rate":     TaxRateSortFields,
		"discount":     DiscountSortFields,
		"inventory":    InventoryTransactionSortFields,
		"subscriber":   SubscriberSortFields,
		"consultation": ConsultationSortFields,
		"case_study":   CaseStudySortFields,
	} {
		assert.True(t, fields["created_at"], "%s must allow the default sort column", name)
	}
}

func TestPaginate_BuildsOrderAndWindow(t *testing.T) {
	db := setupTestDB(t).Session(&gorm.Session{DryRun: true})

	f := shared.Filter{Page: 3, PageSize: 20, OrderBy: "next_billing_date", OrderDir: "asc"}
	stmt := paginate(db.Model(&models.SubscriptionModel{}), f, SubscriptionSortFields).
		Find(&[]models.SubscriptionModel{}).Statement
	sql := stmt.SQL.String()
	assert.Contains(t, sql, "ORDER BY next_billing_date ASC")
	assert.Contains(t, sql, "LIMIT 20")
	assert.Contains(t, sql, "OFFSET 40")

	f = shared.Filter{OrderBy: "hack --"}
	stmt = paginate(db.Model(&models.SubscriptionModel{}), f, SubscriptionSortFields).
		Find(&[]models.SubscriptionModel{}).Statement
	sql = stmt.SQL.String()
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.NotContains(t, sql, "LIMIT")
}
