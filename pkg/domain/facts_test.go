package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestFacts_MergeDoesNotOverwrite(t *testing.T) {
	facts := domain.Facts{"full_name": "Jane Doe"}

	added := facts.Merge(domain.Facts{"full_name": "John Roe", "address": "12 High St"})

	assert.Equal(t, []string{"address"}, added)
	assert.Equal(t, "Jane Doe", facts["full_name"])
	assert.Equal(t, "12 High St", facts["address"])
}

func TestFacts_MergeIsIdempotent(t *testing.T) {
	extracted := domain.Facts{"full_name": "Jane Doe", "purpose": "for travel"}
	facts := domain.Facts{}

	facts.Merge(extracted)
	first := facts.Clone()
	added := facts.Merge(extracted)

	assert.Empty(t, added)
	assert.Equal(t, first, facts)
}

func TestFacts_EmptyValuesCountAsMissing(t *testing.T) {
	facts := domain.Facts{"full_name": "  ", "address": "x"}

	assert.False(t, facts.Has("full_name"))
	assert.Equal(t, []string{"full_name", "purpose"}, facts.Missing([]string{"full_name", "address", "purpose"}))

	facts.Merge(domain.Facts{"full_name": "Jane Doe"})
	assert.Equal(t, "Jane Doe", facts["full_name"])
}

func TestFacts_SetOverwrites(t *testing.T) {
	facts := domain.Facts{"purpose": "My name is Jane Doe"}
	facts.Set("purpose", "for travel")
	assert.Equal(t, "for travel", facts["purpose"])
}

func TestFacts_FirstOf(t *testing.T) {
	facts := domain.Facts{"applicant_name": "Jane Doe"}
	assert.Equal(t, "Jane Doe", facts.FirstOf("full_name", "applicant_name"))
	assert.Equal(t, "", facts.FirstOf("address"))
}

func TestSession_ResetClearsEverything(t *testing.T) {
	s := domain.NewSession("s1")
	s.Begin(domain.KindAffidavit)
	s.Facts.Set("full_name", "Jane Doe")
	s.PendingField = "address"
	s.Turns = 3

	s.Reset()

	assert.Equal(t, domain.StateMenu, s.State)
	assert.Empty(t, s.Kind)
	assert.Empty(t, s.Facts)
	assert.Empty(t, s.PendingField)
	assert.Zero(t, s.Turns)
}

func TestSession_Begin(t *testing.T) {
	s := domain.NewSession("s1")

	s.Begin(domain.KindGeneral)
	assert.Equal(t, domain.StateChatting, s.State)

	s.Begin(domain.KindLetter)
	assert.Equal(t, domain.StateCollecting, s.State)
	assert.Equal(t, domain.KindLetter, s.Kind)
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := domain.NewSession("s1")
	s.Begin(domain.KindAffidavit)
	s.Facts.Set("full_name", "Jane Doe")

	c := s.Clone()
	c.Facts.Set("full_name", "Other")
	c.PendingField = "address"

	assert.Equal(t, "Jane Doe", s.Facts["full_name"])
	assert.Empty(t, s.PendingField)
}

func TestFailure_MatchesSentinel(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("turn: %w", domain.NewFailure(domain.FailureGeneration, cause))

	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, domain.ErrRender)

	var f *domain.Failure
	assert.True(t, errors.As(err, &f))
	assert.Equal(t, domain.FailureGeneration, f.Kind)
}
