package util

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanotif/internal/domain"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.CanonicalPhone
		ok   bool
	}{
		{"mobile with punctuation", "(11) 98765-4321", "5511987654321", true},
		{"landline", "11 3456-7890", "551134567890", true},
		{"already prefixed", "+55 11 98765-4321", "5511987654321", true},
		{"short number passes through", "98765-4321", "987654321", true},
		{"long foreign number passes through", "+1 415 555 0100 22", "1415555010022", true},
		{"no digits", "(--)", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePhone(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhonePrefixesOnce(t *testing.T) {
	for _, n := range []int{10, 11} {
		for first := 1; first <= 9; first++ {
			digits := fmt.Sprintf("%d", first)
			for len(digits) < n {
				digits += "7"
			}
			if digits[:2] == "55" {
				continue
			}
			got, ok := NormalizePhone(digits)
			require.True(t, ok)
			assert.Equal(t, domain.CanonicalPhone("55"+digits), got)

			again, ok := NormalizePhone(string(got))
			require.True(t, ok)
			assert.Equal(t, got, again, "normalization must be idempotent")
		}
	}
}

func TestIsCanonical(t *testing.T) {
	assert.True(t, IsCanonical("5511987654321"))
	assert.False(t, IsCanonical("987654321"))
}

func TestPhonePlausible(t *testing.T) {
	assert.True(t, PhonePlausible("5511987654321"))
	assert.False(t, PhonePlausible("55"))
	assert.False(t, PhonePlausible(""))
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "*********4321", MaskPhone("5511987654321"))
	assert.Equal(t, "***", MaskPhone("123"))
}
