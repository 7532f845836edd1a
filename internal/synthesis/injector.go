package synthesis

import (
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/pkg/models"
)

// Injector mutates candidate batches according to a declarative anomaly rule
// set. Injection runs before leakage filtering: an anomalous row must survive
// the leakage check even if its un-mutated form would have matched an
// original row, and a mutated row that now matches an original row must still
// be filtered.
type Injector struct {
	logger *logrus.Logger
	rng    *rand.Rand
}

// NewInjector creates an injector. A nil logger defaults to a fresh logrus
// instance; the random source is time-seeded.
func NewInjector(logger *logrus.Logger) *Injector {
	if logger == nil {
		logger = logrus.New()
	}
	return &Injector{
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededInjector creates an injector with a fixed random seed.
func NewSeededInjector(logger *logrus.Logger, seed int64) *Injector {
	in := NewInjector(logger)
	in.rng = rand.New(rand.NewSource(seed))
	return in
}

// Inject applies the rules in caller-supplied order, mutating the batch in
// place, and returns the number of cells mutated. Each rule independently
// selects round(len(batch)*ratio) distinct row indices uniformly without
// replacement. Malformed rules and rules targeting columns absent from the
// batch schema are skipped with a warning; the run continues.
func (in *Injector) Inject(batch *models.Batch, rules []models.AnomalyRule) int {
	if batch == nil || batch.Len() == 0 || len(rules) == 0 {
		return 0
	}

	mutated := 0
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			in.logger.WithError(err).WithField("column", rule.Column).Warn("Skipping malformed anomaly rule")
			continue
		}
		if !batch.HasColumn(rule.Column) {
			in.logger.WithFields(logrus.Fields{
				"column": rule.Column,
				"kind":   rule.Kind,
			}).Warn("Anomaly rule targets a column not in the batch schema, skipping")
			continue
		}

		count := int(math.Round(float64(batch.Len()) * rule.Ratio))
		if count == 0 {
			continue
		}
		if count > batch.Len() {
			count = batch.Len()
		}

		// Sampling without replacement: the head of a permutation gives
		// distinct uniform indices.
		for _, idx := range in.rng.Perm(batch.Len())[:count] {
			switch rule.Kind {
			case models.AnomalyFixedValue:
				batch.Rows[idx][rule.Column] = rule.Value
			case models.AnomalyNullify:
				batch.Rows[idx][rule.Column] = nil
			}
			mutated++
		}

		in.logger.WithFields(logrus.Fields{
			"column": rule.Column,
			"kind":   rule.Kind,
			"rows":   count,
			"ratio":  rule.Ratio,
		}).Debug("Applied anomaly rule")
	}

	return mutated
}
