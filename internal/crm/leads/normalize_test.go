package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldSearchTerm(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Café Brücke", "cafe brucke"},
		{"ACME Traders", "acme traders"},
		{"  São Paulo  ", "sao paulo"},
		{"déjà-vu", "deja-vu"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FoldSearchTerm(tc.in), tc.in)
	}
}
