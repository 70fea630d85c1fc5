package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	cases := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, 0, DefaultPageSize, 0},
		{"negative limit", -5, 0, DefaultPageSize, 0},
		{"explicit", 50, 100, 50, 100},
		{"capped", 10000, 0, MaxPageSize, 0},
		{"at cap", MaxPageSize, 0, MaxPageSize, 0},
		{"negative offset", 50, -10, 50, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := NewPage(tc.limit, tc.offset)
			assert.Equal(t, tc.wantLimit, page.Limit)
			assert.Equal(t, tc.wantOffset, page.Offset)
		})
	}
}
