package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_WithPageSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultPageSize},
		{-5, DefaultPageSize},
		{50, 50},
		{500, MaxPageSize},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultFilter().WithPageSize(tt.in).PageSize, "page_size %d", tt.in)
	}
}

func TestFilter_Offset(t *testing.T) {
	f := DefaultFilter()
	assert.Equal(t, 0, f.Offset())

	f.Page = 4
	assert.Equal(t, 60, f.Offset())

	f.PageSize = 0
	assert.Equal(t, 0, f.Offset())
}
