package normalizer

import (
	"testing"

	"github.com/giygas/medicine-library/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func label(id string, brand, generic, route, purpose, indications []string) entities.RawLabel {
	return entities.RawLabel{
		ID: id,
		OpenFDA: entities.OpenFDAInfo{
			BrandName:   brand,
			GenericName: generic,
			Route:       route,
		},
		Purpose:             purpose,
		IndicationsAndUsage: indications,
	}
}

func TestExtractUse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"purpose with relief phrase", "Purpose: for the temporary relief of minor aches, pains and fever", "Minor Aches"},
		{"uses prefix and verbs", "Uses: temporarily relieves headache", "Headache"},
		{"indications and usage prefix", "INDICATIONS AND USAGE: Treatment of hypertension", "Hypertension"},
		{"truncates to three words", "Purpose: relief of cough due to colds", "Relief Of Cough"},
		{"skips short candidates", "Sun and wind protection", "Wind Protection"},
		{"title cases mixed case", "ANTACID", "Antacid"},
		{"drops symbols and digits", "Pain reliever/fever reducer 500mg", "Pain Relieverfever Reducer"},
		{"newlines collapse", "Purpose\nAllergy\r\nrelief", "Allergy Relief"},
		{"no-break space between words", "Purpose: minor\u00a0aches, pains", "Minor Aches"},
		{"em space between words", "Purpose: minor\u2003aches, pains", "Minor Aches"},
		{"vertical tab between words", "Purpose: minor\vaches, pains", "Minor Aches"},
		{"byte order mark between words", "minor\ufeffaches", "Minor Aches"},
		{"nothing qualifies", "Use: flu", DefaultUse},
		{"empty text", "", DefaultUse},
		{"only symbols", "*** 123 ***", DefaultUse},
		{"default source text", DefaultUse, "Medical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractUse(tt.input))
		})
	}
}

func TestExtractUseIsDeterministic(t *testing.T) {
	input := "Purpose: helps prevent sunburn, and tanning"
	first := ExtractUse(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExtractUse(input))
	}
}

func TestNormalize(t *testing.T) {
	t.Run("full label", func(t *testing.T) {
		raw := label("abc-1", []string{"Tylenol"}, []string{"Paracetamol"}, []string{"ORAL"},
			[]string{"Purpose: for the temporary relief of minor aches, pains and fever"}, nil)

		med, ok := Normalize(raw, 7)
		require.True(t, ok)
		assert.Equal(t, entities.Medicine{
			ID:             "abc-1",
			BrandName:      "Tylenol",
			GenericFormula: "Paracetamol",
			Dosage:         "ORAL",
			Uses:           []string{"Minor Aches"},
		}, med)
	})

	t.Run("defaults and positional id", func(t *testing.T) {
		raw := label("", []string{"Brandless"}, nil, []string{}, nil, nil)

		med, ok := Normalize(raw, 3)
		require.True(t, ok)
		assert.Equal(t, "3", med.ID)
		assert.Equal(t, UnknownGeneric, med.GenericFormula)
		assert.Equal(t, DefaultDosage, med.Dosage)
		// "Medical Use" itself runs through the pipeline and loses "Use".
		assert.Equal(t, []string{"Medical"}, med.Uses)
	})

	t.Run("falls back to indications", func(t *testing.T) {
		raw := label("x", []string{"Zyrtec"}, []string{"Cetirizine"}, nil,
			[]string{""}, []string{"Indications: hay fever"})

		med, ok := Normalize(raw, 0)
		require.True(t, ok)
		assert.Equal(t, []string{"Hay Fever"}, med.Uses)
	})

	t.Run("missing brand is rejected", func(t *testing.T) {
		for _, brands := range [][]string{nil, {}, {""}} {
			raw := label("x", brands, []string{"Ibuprofen"}, nil, nil, nil)
			med, ok := Normalize(raw, 0)
			assert.False(t, ok)
			assert.Equal(t, UnknownBrand, med.BrandName)
		}
	})

	t.Run("uses always has one non-empty entry", func(t *testing.T) {
		inputs := []string{"", "a", "and, and", "Purpose:", "for the", "x,y,z"}
		for _, in := range inputs {
			med, ok := Normalize(label("id", []string{"B"}, nil, nil, []string{in}, nil), 0)
			require.True(t, ok)
			require.Len(t, med.Uses, 1, "input %q", in)
			assert.NotEmpty(t, med.Uses[0], "input %q", in)
		}
	})
}

func TestNormalizeAll(t *testing.T) {
	raws := []entities.RawLabel{
		label("a", []string{"Tylenol"}, []string{"Paracetamol"}, []string{"ORAL"}, []string{"Pain"}, nil),
		label("b", nil, []string{"Paracetamol"}, nil, nil, nil),
		label("", []string{"Excedrin"}, nil, nil, nil, nil),
	}

	medicines, report := NormalizeAll(raws)

	require.Len(t, medicines, 2)
	assert.Equal(t, "a", medicines[0].ID)
	assert.Equal(t, "2", medicines[1].ID, "positional id keeps the original index")
	assert.Equal(t, Report{
		Total:            3,
		Accepted:         2,
		Rejected:         1,
		DefaultedGeneric: 1,
		DefaultedDosage:  1,
		DefaultedUses:    0,
	}, report)
}
