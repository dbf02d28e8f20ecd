package mpesa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "local format", input: "0712345678", expected: "254712345678"},
		{name: "international", input: "254712345678", expected: "254712345678"},
		{name: "plus prefix", input: "+254712345678", expected: "254712345678"},
		{name: "spaces", input: "0712 345 678", expected: "254712345678"},
		{name: "short local passes through", input: "07123", expected: "07123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.input))
		})
	}
}

func TestValidPhone(t *testing.T) {
	assert.True(t, validPhone("254712345678"))
	assert.False(t, validPhone("0712345678"))
	assert.False(t, validPhone("25471234567"))
	assert.False(t, validPhone("25471234567x"))
}

func TestTimestamp(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	ts := time.Date(2024, 1, 15, 13, 30, 45, 123_000_000, nairobi)

	assert.Equal(t, "20240115103045", Timestamp(ts))
}

func TestPassword(t *testing.T) {
	const timestamp = "20240115103045"

	got := Password("174379", "passkey", timestamp)
	assert.Equal(t, "81d93a79d9331f99fcc27b05f1fed1d71862886e035d7fba1ad8b4a13e60fdc3", got)
	assert.Equal(t, got, Password("174379", "passkey", timestamp))

	assert.NotEqual(t, got, Password("174380", "passkey", timestamp))
	assert.NotEqual(t, got, Password("174379", "passkey2", timestamp))
	assert.NotEqual(t, got, Password("174379", "passkey", "20240115103046"))
}
