package shaarolami

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractCodes(t *testing.T) {
	testCases := []struct {
		name     string
		markup   string
		expected []string
	}{
		{
			name:     "grouped and contiguous shapes",
			markup:   "1234.56.78.90 text 9876543210",
			expected: []string{"1234567890", "9876543210"},
		},
		{
			name:     "dash and space separators",
			markup:   "<td>0123-45-67-89</td><td>4455 66 77 88</td>",
			expected: []string{"0123456789", "4455667788"},
		},
		{
			name:     "duplicates collapse",
			markup:   "8504.40.90.00 ... 8504409000 ... 8504.40.90.00",
			expected: []string{"8504409000"},
		},
		{
			name:     "first-seen order",
			markup:   "9876543210 then 1234567890",
			expected: []string{"9876543210", "1234567890"},
		},
		{
			name:     "longer digit runs rejected",
			markup:   "12345678901 123456789",
			expected: nil,
		},
		{
			name:     "grouped run inside longer number rejected",
			markup:   "91234.56.78.90",
			expected: nil,
		},
		{
			name:     "empty input",
			markup:   "",
			expected: nil,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, ExtractCodes(test.markup))
		})
	}
}
