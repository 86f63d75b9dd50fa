package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		page, size           int
		wantPage, off, limit int
	}{
		{"defaults", 0, 0, 1, 0, DefaultPageSize},
		{"second page", 2, 10, 2, 10, 10},
		{"negative page", -3, 5, 1, 0, 5},
		{"size clamped", 1, 1000, 1, 0, MaxPageSize},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, off, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p)
			assert.Equal(t, tt.off, off)
			assert.Equal(t, tt.limit, limit)
		})
	}
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}

func TestMeta(t *testing.T) {
	t.Parallel()

	m := Meta(2, 10, 10, 25)
	assert.Equal(t, int64(3), m.TotalPages)
	assert.True(t, m.HasPrev)
	assert.True(t, m.HasNext)

	last := Meta(3, 20, 10, 25)
	assert.False(t, last.HasNext)

	empty := Meta(1, 0, 20, 0)
	assert.Equal(t, int64(0), empty.TotalPages)
	assert.False(t, empty.HasPrev)
	assert.False(t, empty.HasNext)
}
