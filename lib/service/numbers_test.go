package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tourwise/billing/common"
)

var numberFormat = regexp.MustCompile(`^[A-Z]{3}-\d{6}-\d{4}$`)

func fixedGenerator(suffix string) *InvoiceNumberGenerator {
	return &InvoiceNumberGenerator{
		Suffix: func() (string, error) { return suffix, nil },
		Now:    func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) },
	}
}

func TestCandidateFormat(t *testing.T) {
	gen := fixedGenerator("0472")

	candidate, err := gen.Candidate(common.NumberPrefixStandard)

	assert.NoError(t, err)
	assert.Equal(t, "INV-240315-0472", candidate)
	assert.Regexp(t, numberFormat, candidate)
}

func TestCandidateFormatForAllPrefixes(t *testing.T) {
	gen := NewInvoiceNumberGenerator()
	for _, prefix := range []string{common.NumberPrefixStandard, common.NumberPrefixTransfer, common.NumberPrefixDriverTip} {
		candidate, err := gen.Candidate(prefix)
		assert.NoError(t, err)
		assert.Regexp(t, numberFormat, candidate)
	}
}

func TestGenerateAcceptsFirstFreeCandidate(t *testing.T) {
	gen := fixedGenerator("0001")
	probes := 0

	number, err := gen.Generate(context.Background(), common.NumberPrefixTransfer, func(ctx context.Context, candidate string) (bool, error) {
		probes++
		return false, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "CIT-240315-0001", number)
	assert.Equal(t, 1, probes)
}

func TestGenerateExhaustsAfterFiveCollisions(t *testing.T) {
	gen := fixedGenerator("0001")
	probes := 0

	_, err := gen.Generate(context.Background(), common.NumberPrefixStandard, func(ctx context.Context, candidate string) (bool, error) {
		probes++
		return true, nil
	})

	assert.ErrorIs(t, err, ErrNumberGenerationExhausted)
	assert.Equal(t, common.MaxInvoiceNumberAttempts, probes)
}
