package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase unchanged", "ana@example.org", "ana@example.org"},
		{"uppercase folded", "ANA@EXAMPLE.ORG", "ana@example.org"},
		{"whitespace trimmed", "  ana@example.org\t", "ana@example.org"},
		{"mixed", " Ana.Souza@Example.ORG ", "ana.souza@example.org"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizeEmail(tc.in))
		})
	}
}
