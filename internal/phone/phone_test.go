package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "local format with leading zero", input: "08123456789", expected: "628123456789"},
		{name: "bare number without prefix", input: "8123456789", expected: "628123456789"},
		{name: "already canonical", input: "628123456789", expected: "628123456789"},
		{name: "international with plus", input: "+628123456789", expected: "628123456789"},
		{name: "dashes and spaces", input: "0812-3456 789", expected: "628123456789"},
		{name: "parentheses", input: "(0812) 3456-789", expected: "628123456789"},
		{name: "very short number", input: "0812", expected: "62812"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_SeparatorInsensitive(t *testing.T) {
	// Same digit sequence, different separators, one canonical output.
	variants := []string{
		"08123456789",
		"0812-3456-789",
		"0812 3456 789",
		"(0812) 3456789",
		"+62 812-3456-789",
	}

	for _, v := range variants {
		assert.Equal(t, "628123456789", Normalize(v), "input %q", v)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"08123456789", "8123456789", "628123456789", "+62 812 3456 789", "0812"}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestFormatForDisplay(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "canonical twelve digits", input: "628123456789", expected: "0812-3456-789"},
		{name: "canonical longer number", input: "6281234567890", expected: "0812-3456-7890"},
		{name: "short number unformatted", input: "62812345", expected: "0812345"},
		{name: "already local", input: "0812345678", expected: "0812-3456-78"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatForDisplay(tt.input))
		})
	}
}

func TestFormatForDisplay_RoundTripsNormalize(t *testing.T) {
	display := FormatForDisplay(Normalize("0812 3456 789"))
	assert.Equal(t, "0812-3456-789", display)

	// Re-normalizing the display form lands back on the canonical number.
	assert.Equal(t, "628123456789", Normalize(display))
}
