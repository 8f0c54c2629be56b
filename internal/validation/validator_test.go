package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TeoCir/IsekkKran/internal/validation"
)

func TestMissingColumns(t *testing.T) {
	required := []string{"Betegnelse", "Målkvantum", "KE.1"}

	assert.Empty(t, validation.MissingColumns([]string{"KE.1", "Målkvantum", "Betegnelse", "Extra"}, required))
	assert.Equal(t, []string{"Målkvantum", "KE.1"},
		validation.MissingColumns([]string{"Betegnelse", "målkvantum", "KE"}, required))
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"15", "15", true},
		{" 1.5 ", "1.5", true},
		{"-2", "-2", true},
		{"12,5", "12.5", true},
		{"1e3", "1000", true},
		{"", "0", false},
		{"NaN", "0", false},
		{"abc", "0", false},
		{"1.2.3", "0", false},
		{"1,234.5", "0", false},
		{"1,2,3", "0", false},
		{"1.5e2", "150", true},
		{"2e-3", "0.002", true},
		{"1e50000000", "0", false},
		{"1e2000000000", "0", false},
		{"1e-50000000", "0", false},
		{"2e308", "0", false},
		{"1e400", "0", false},
	}
	for _, tt := range tests {
		got, ok := validation.ParseQuantity(tt.raw)
		assert.Equal(t, tt.ok, ok, "quantity %q", tt.raw)
		assert.Equal(t, tt.want, got.String(), "quantity %q", tt.raw)
	}
}
