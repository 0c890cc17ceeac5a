package review

import (
	"testing"

	"github.com/coderr/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview(t *testing.T) {
	t.Run("creates review", func(t *testing.T) {
		r, err := NewReview(3, 5, 4, "Alles gut")

		require.NoError(t, err)
		assert.Equal(t, uint(3), r.BusinessUserID)
		assert.Equal(t, uint(5), r.ReviewerID)
		assert.Equal(t, 4, r.Rating)
		assert.Equal(t, "Alles gut", r.Description)
		assert.True(t, r.IsWrittenBy(5))
		assert.False(t, r.IsWrittenBy(3))
	})

	for _, rating := range []int{0, 6, -1} {
		_, err := NewReview(3, 5, rating, "")
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "rating", de.Field)
		assert.Equal(t, "rating must be between 1 and 5.", de.Message)
	}
}

func TestReview_Update(t *testing.T) {
	r, err := NewReview(3, 5, 4, "ok")
	require.NoError(t, err)

	rating := 5
	require.NoError(t, r.Update(&rating, nil))
	assert.Equal(t, 5, r.Rating)
	assert.Equal(t, "ok", r.Description)

	desc := ""
	require.NoError(t, r.Update(nil, &desc))
	assert.Equal(t, "", r.Description)

	bad := 9
	assert.Error(t, r.Update(&bad, nil))
	assert.Equal(t, 5, r.Rating)
}

func TestErrAlreadyReviewed(t *testing.T) {
	assert.ErrorIs(t, ErrAlreadyReviewed, shared.ErrInvalidInput)
	assert.Equal(t, "You have already reviewed this business user.", ErrAlreadyReviewed.Error())
}
