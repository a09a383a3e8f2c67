package order

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	re := regexp.MustCompile(`^ORD-[0-9A-Z]+-[0-9A-Z]{6}$`)
	for i := 0; i < 100; i++ {
		n := GenerateOrderNumber()
		assert.Regexp(t, re, n)
	}
}

func TestGenerateOrderNumberUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		n := GenerateOrderNumber()
		assert.False(t, seen[n], "duplicate order number %s", n)
		seen[n] = true
	}
}
