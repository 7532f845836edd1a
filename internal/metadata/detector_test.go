package metadata

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthworks/tabsynth/pkg/models"
)

func TestDetectColumnKinds(t *testing.T) {
	dataset := &models.Dataset{
		Columns: []string{"count", "price", "label", "mixed"},
		Rows: []models.Row{
			{"count": int64(1), "price": 9.5, "label": "x", "mixed": int64(1)},
			{"count": int64(2), "price": 3.25, "label": "y", "mixed": "two"},
			{"count": nil, "price": 1.0, "label": "x", "mixed": int64(3)},
		},
	}

	meta := NewDetector(logrus.New()).Detect(dataset)
	require.Len(t, meta.Columns, 4)

	count := meta.Column("count")
	assert.Equal(t, KindNumeric, count.Kind)
	assert.True(t, count.Integer, "nulls do not break integer detection")

	price := meta.Column("price")
	assert.Equal(t, KindNumeric, price.Kind)
	assert.False(t, price.Integer)

	assert.Equal(t, KindCategorical, meta.Column("label").Kind)
	assert.Equal(t, KindCategorical, meta.Column("mixed").Kind, "a single non-numeric cell makes the column categorical")
}

func TestDetectPIITagging(t *testing.T) {
	dataset := &models.Dataset{
		Columns: []string{"customer_email", "phone", "first_name", "full_name", "city", "amount"},
		Rows: []models.Row{
			{"customer_email": "a@b.c", "phone": "555", "first_name": "Ann", "full_name": "Ann Lee", "city": "Rome", "amount": int64(10)},
		},
	}

	meta := NewDetector(logrus.New()).Detect(dataset)

	assert.Equal(t, "email", meta.Column("customer_email").PIIType)
	assert.Equal(t, "phone_number", meta.Column("phone").PIIType)
	assert.Equal(t, "first_name", meta.Column("first_name").PIIType, "specific pattern wins over generic 'name'")
	assert.Equal(t, "person_name", meta.Column("full_name").PIIType)
	assert.Equal(t, "city", meta.Column("city").PIIType)
	assert.Empty(t, meta.Column("amount").PIIType)
}

func TestDetectNumericColumnsAreNeverPII(t *testing.T) {
	// Mirrors the training-side rule: numeric columns keep their
	// distribution even when the name looks sensitive.
	dataset := &models.Dataset{
		Columns: []string{"card_limit"},
		Rows:    []models.Row{{"card_limit": int64(5000)}},
	}

	meta := NewDetector(logrus.New()).Detect(dataset)
	assert.Equal(t, KindNumeric, meta.Column("card_limit").Kind)
	assert.Empty(t, meta.Column("card_limit").PIIType)
}

func TestDetectAllNullColumn(t *testing.T) {
	dataset := &models.Dataset{
		Columns: []string{"empty"},
		Rows:    []models.Row{{"empty": nil}, {"empty": nil}},
	}

	meta := NewDetector(logrus.New()).Detect(dataset)
	assert.Equal(t, KindCategorical, meta.Column("empty").Kind)
}
