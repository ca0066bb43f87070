package money

import (
	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// TestDataGenerator generates realistic invoice amounts using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a new test data generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(0), // Random seed
	}
}

// NewTestDataGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(seed),
	}
}

// Faker exposes the underlying faker for callers building richer fixtures.
func (g *TestDataGenerator) Faker() *gofakeit.Faker {
	return g.faker
}

// RandomAmount generates a random two-decimal amount within a cent range.
func (g *TestDataGenerator) RandomAmount(minCents, maxCents int64) decimal.Decimal {
	if minCents > maxCents {
		minCents, maxCents = maxCents, minCents
	}
	cents := g.faker.Int64() % (maxCents - minCents + 1)
	if cents < 0 {
		cents = -cents
	}
	return decimal.New(minCents+cents, -2)
}

// UnitPrice generates a wholesale unit price (0.50 to 2,500.00).
func (g *TestDataGenerator) UnitPrice() decimal.Decimal {
	return g.RandomAmount(50, 250000)
}

// LargeAmount generates an amount that needs thousands grouping (1,000.00 to 9,999,999.99).
func (g *TestDataGenerator) LargeAmount() decimal.Decimal {
	return g.RandomAmount(100000, 999999999)
}

// Quantity generates a line quantity (1 to 5,000).
func (g *TestDataGenerator) Quantity() int64 {
	return int64(g.faker.Number(1, 5000))
}

// Currency returns one of the currencies invoices are issued in.
func (g *TestDataGenerator) Currency() string {
	return g.faker.RandomString([]string{EUR, USD, GBP, CHF})
}
