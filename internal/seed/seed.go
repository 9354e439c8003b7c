// Package seed fills the store with plausible fake records for local
// development and demos.
package seed

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

var categories = map[core.Kind][]string{
	core.KindExpense: {"Food", "Transport", "Housing", "Utilities", "Entertainment", "Health"},
	core.KindIncome:  {"Salary", "Freelance", "Dividends", "Gift", "Refund"},
}

// Creator is the part of the record service the seeder needs.
type Creator interface {
	Kind() core.Kind
	Create(ctx context.Context, sess storage.Session, candidate core.Record) (*core.Record, error)
}

// Generator produces fake candidate records.
type Generator struct {
	faker *gofakeit.Faker
	now   func() time.Time
}

// NewGenerator returns a Generator. The same seed yields the same records.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed), now: time.Now}
}

// Record returns one candidate of kind dated within the last 90 days.
// Roughly one in ten has no category so the fallback gets exercised.
func (g *Generator) Record(kind core.Kind) core.Record {
	now := g.now().UTC()
	r := core.Record{
		Kind:        kind,
		Description: g.faker.Sentence(3),
		Amount:      math.Round(g.faker.Price(1, 500)*100) / 100,
		DateCreated: g.faker.DateRange(now.AddDate(0, 0, -90), now).UTC(),
	}
	if g.faker.Number(1, 10) > 1 {
		r.Category = g.faker.RandomString(categories[kind])
	}
	return r
}

// Run creates n records through svc, one committed operation each, and
// returns how many were stored before the first failure.
func Run(ctx context.Context, svc Creator, sess storage.Session, g *Generator, n int) (int, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentSeed)

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		candidate := g.Record(svc.Kind())
		if err := candidate.Validate(); err != nil {
			return i, fmt.Errorf("generated invalid %s: %w", svc.Kind(), err)
		}
		if _, err := svc.Create(ctx, sess, candidate); err != nil {
			return i, fmt.Errorf("seed %s %d/%d: %w", svc.Kind(), i+1, n, err)
		}
	}

	logger.InfoContext(ctx, "Seed complete",
		log.FieldOperation, log.OpSeed,
		log.FieldRecordKind, svc.Kind().String(),
		"count", n)
	return n, nil
}
