package navigator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractConfirmationID(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "requisition with hash",
			text:     "Order received. Requisition #: Q-20260830-114",
			expected: "Q-20260830-114",
		},
		{
			name:     "requisition number spelled out",
			text:     "Your requisition number 84321907 has been created.",
			expected: "84321907",
		},
		{
			name:     "confirmation number",
			text:     "Confirmation Number: CNF-7731",
			expected: "CNF-7731",
		},
		{
			name:     "order number",
			text:     "Thank you. Order No. LC009912 was placed.",
			expected: "LC009912",
		},
		{
			name:     "requisition wins over order number",
			text:     "Order #: 555 details. Requisition #: R-9000",
			expected: "R-9000",
		},
		{
			name:     "no identifier",
			text:     "Thank you for using the portal.",
			expected: "",
		},
		{
			name:     "identifier too short",
			text:     "Order #: 12",
			expected: "",
		},
		{
			name:     "empty text",
			text:     "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractConfirmationID(tc.text))
		})
	}
}
