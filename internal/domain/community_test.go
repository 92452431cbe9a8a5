package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubscriber(t *testing.T) {
	t.Parallel()

	s, err := NewSubscriber(" A@X.com ")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", s.Email)

	_, err = NewSubscriber("")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = NewSubscriber("not-an-email")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestNewReview(t *testing.T) {
	t.Parallel()

	r, err := NewReview(" Ann ", " Great event ", "r1")
	require.NoError(t, err)
	assert.Equal(t, Review{Name: "Ann", Review: "Great event", ID: "r1"}, r)

	_, err = NewReview("Ann", "   ", "r1")
	assert.True(t, errors.Is(err, ErrValidation))
}
