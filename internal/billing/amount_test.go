package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmountCents(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		want  string
	}{
		{name: "whole dollars", cents: 1000, want: "10.00"},
		{name: "with cents", cents: 1999, want: "19.99"},
		{name: "sub dollar", cents: 50, want: "0.50"},
		{name: "single cent", cents: 1, want: "0.01"},
		{name: "zero", cents: 0, want: "0.00"},
		{name: "large COP amount", cents: 7990000, want: "79900.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAmountCents(tt.cents))
		})
	}
}

func TestParseDecimalAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{name: "two decimals", raw: "19.99", want: 1999},
		{name: "one decimal", raw: "19.9", want: 1990},
		{name: "no decimals", raw: "20", want: 2000},
		{name: "comma separator", raw: "19,99", want: 1999},
		{name: "trailing zeros", raw: "20.00", want: 2000},
		{name: "empty", raw: "", wantErr: true},
		{name: "garbage", raw: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDecimalAmount(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "USD", normalizeCurrency("usd"))
	assert.Equal(t, "COP", normalizeCurrency(" cop "))
	assert.Equal(t, "EUR", normalizeCurrency("EUR"))
}
