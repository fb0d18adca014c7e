package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/labstack/gommon/random"
	"github.com/tourwise/billing/common"
)

const numericBytes = random.Numeric

// NumberExistsFunc probes whether a candidate number is already taken.
type NumberExistsFunc func(ctx context.Context, number string) (bool, error)

// InvoiceNumberGenerator produces human-readable invoice numbers of the form
// PREFIX-YYMMDD-NNNN. The suffix is random rather than a counter, so the
// generator probes each candidate against the store and gives up after
// common.MaxInvoiceNumberAttempts collisions. The unique constraint on the
// number column backstops the probe under concurrent creation.
//
// Suffix and Now are injectable so tests can force collisions and dates.
type InvoiceNumberGenerator struct {
	Suffix func() (string, error)
	Now    func() time.Time
}

func NewInvoiceNumberGenerator() *InvoiceNumberGenerator {
	return &InvoiceNumberGenerator{
		Suffix: randomNumberSuffix,
		Now:    time.Now,
	}
}

func (g *InvoiceNumberGenerator) Candidate(prefix string) (string, error) {
	suffix, err := g.Suffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", prefix, g.Now().Format("060102"), suffix), nil
}

func (g *InvoiceNumberGenerator) Generate(ctx context.Context, prefix string, exists NumberExistsFunc) (string, error) {
	for attempt := 0; attempt < common.MaxInvoiceNumberAttempts; attempt++ {
		candidate, err := g.Candidate(prefix)
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrNumberGenerationExhausted
}

func randomNumberSuffix() (string, error) {
	b, err := randBytesFromStr(4, numericBytes)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func randBytesFromStr(length int, from string) ([]byte, error) {
	b := make([]byte, length)
	fromLenBigInt := big.NewInt(int64(len(from)))
	for i := range b {
		r, err := rand.Int(rand.Reader, fromLenBigInt)
		if err != nil {
			return nil, err
		}
		b[i] = from[r.Int64()]
	}
	return b, nil
}
