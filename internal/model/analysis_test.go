package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Legal ")
	require.NoError(t, err)
	assert.Equal(t, ModeLegal, m)

	_, err = ParseMode("poetry")
	assert.Error(t, err)
}

func TestParseFactVerdict(t *testing.T) {
	tests := map[string]FactVerdict{
		"True":              FactTrue,
		"original":          FactTrue,
		"FALSE":             FactFalse,
		"Fake":              FactFalse,
		"Insufficient data": FactInsufficient,
	}
	for in, want := range tests {
		got, err := ParseFactVerdict(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFactVerdict("Probably")
	assert.Error(t, err)
}

func TestFactVerdict_Label(t *testing.T) {
	assert.Equal(t, "Fake", FactFalse.Label())
	assert.Equal(t, "True", FactTrue.Label())
	assert.Equal(t, "Insufficient data", FactInsufficient.Label())
}

func TestParseLegalVerdict(t *testing.T) {
	v, err := ParseLegalVerdict("needs further verification")
	require.NoError(t, err)
	assert.Equal(t, LegalNeedsReview, v)

	_, err = ParseLegalVerdict("True")
	assert.Error(t, err)
}

func TestParseConfidence(t *testing.T) {
	c, err := ParseConfidence("n/a")
	require.NoError(t, err)
	assert.Equal(t, ConfidenceNA, c)

	_, err = ParseConfidence("certain")
	assert.Error(t, err)
}

func TestNormalizeScore(t *testing.T) {
	s, err := NormalizeScore(87.5)
	require.NoError(t, err)
	assert.Equal(t, 88, s)

	s, err = NormalizeScore(100.4)
	require.NoError(t, err)
	assert.Equal(t, 100, s)

	for _, bad := range []float64{-1, 101, math.NaN(), math.Inf(1)} {
		_, err := NormalizeScore(bad)
		assert.Error(t, err, bad)
	}
}

func TestResult_Validate(t *testing.T) {
	fact := NewFactResult(FactResult{Result: FactTrue, AccuracyScore: 90})
	legal := NewLegalResult(LegalResult{Verdict: LegalFake, AccuracyScore: 10})

	assert.NoError(t, fact.Validate())
	assert.NoError(t, legal.Validate())
	assert.Equal(t, "True", fact.Verdict())
	assert.Equal(t, 10, legal.Score())

	mixed := Result{Mode: ModeFact, Fact: fact.Fact, Legal: legal.Legal}
	assert.Error(t, mixed.Validate())
	assert.Error(t, Result{Mode: ModeLegal, Fact: fact.Fact}.Validate())
	assert.Error(t, Result{}.Validate())
}

func TestHistoryEntry_Validate(t *testing.T) {
	e := HistoryEntry{ID: "1", Mode: ModeFact, Result: NewFactResult(FactResult{Result: FactTrue})}
	assert.NoError(t, e.Validate())

	e.Mode = ModeLegal
	assert.Error(t, e.Validate())

	e = HistoryEntry{Mode: ModeFact, Result: NewFactResult(FactResult{Result: FactTrue})}
	assert.Error(t, e.Validate())
}

func TestSubmission(t *testing.T) {
	assert.True(t, Submission{Query: " \n"}.IsEmpty())
	assert.False(t, Submission{File: &Attachment{Name: "a.pdf"}}.IsEmpty())
	assert.Equal(t, "a.pdf", Submission{File: &Attachment{Name: "a.pdf"}}.FileName())
	assert.Equal(t, "", Submission{}.FileName())
}

func TestAllowedMIMEType(t *testing.T) {
	for _, mt := range []string{"image/png", "image/jpeg", "video/mp4", "application/pdf", "application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document"} {
		assert.True(t, AllowedMIMEType(mt), mt)
	}
	for _, mt := range []string{"application/zip", "text/html", "", "garbage/"} {
		assert.False(t, AllowedMIMEType(mt), mt)
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "rating", Message: "required"}
	assert.Equal(t, "rating: required", err.Error())
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "bad", (&ValidationError{Message: "bad"}).Error())
}
