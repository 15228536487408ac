package util

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw     string
		iso     string
		display string
		ok      bool
	}{
		{"2025-03-15", "2025-03-15", "15/03/2025", true},
		{"2025-03-15T10:30:00-03:00", "2025-03-15", "15/03/2025", true},
		{"15/03/2025", "2025-03-15", "15/03/2025", true},
		{"  15/03/2025 ", "2025-03-15", "15/03/2025", true},
		{"March 15, 2025", "2025-03-15", "15/03/2025", true},
		{"not a date", "", "—", false},
		{"", "", "—", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeDate(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.iso, got.ISO)
			assert.Equal(t, tt.display, got.Display())
		})
	}
}

func TestNormalizeDateRoundTripsDayMonthYear(t *testing.T) {
	for _, year := range []int{1999, 2024, 2025} {
		for month := 1; month <= 12; month++ {
			for _, day := range []int{1, 9, 10, 28} {
				in := fmt.Sprintf("%02d/%02d/%04d", day, month, year)
				got, ok := NormalizeDate(in)
				require.True(t, ok, in)
				assert.Equal(t, in, got.Display())
			}
		}
	}
}
