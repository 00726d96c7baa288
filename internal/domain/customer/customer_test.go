package customer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	c, err := NewCustomer("  Jane@Example.COM ", "Jane", "Doe", "")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", c.Email)
	assert.Equal(t, "Jane Doe", c.FullName())
	assert.False(t, c.IsGuest)

	_, err = NewCustomer("not-an-email", "Jane", "Doe", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestNewGuestCustomer(t *testing.T) {
	c, err := NewGuestCustomer("guest@example.com", "", "", "")
	require.NoError(t, err)
	assert.True(t, c.IsGuest)
}

func TestCustomer_RecordCRMSync(t *testing.T) {
	c, err := NewCustomer("jane@example.com", "Jane", "Doe", "")
	require.NoError(t, err)
	c.CRMTags = []string{"customer"}
	c.CRMSyncError = "previous failure"

	now := time.Now()
	c.RecordCRMSync("ghl-1", []string{"customer", "subscriber"}, now)

	assert.Equal(t, "ghl-1", c.CRMContactID)
	assert.Equal(t, []string{"customer", "subscriber"}, c.CRMTags)
	assert.Empty(t, c.CRMSyncError)
	require.NotNil(t, c.CRMLastSyncAt)
	assert.True(t, now.Equal(*c.CRMLastSyncAt))
}

func TestMergeTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, MergeTags([]string{"a", "b"}, []string{"b", " c ", ""}))
	assert.Empty(t, MergeTags(nil, nil))
}
