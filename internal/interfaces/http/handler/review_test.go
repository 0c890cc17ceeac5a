package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/coderr/backend/internal/application/review"
	"github.com/coderr/backend/internal/interfaces/http/dto"
	"github.com/coderr/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postReview(t *testing.T, app *testutil.App, token string, businessID uint, rating int, description string) review.ReviewResponse {
	t.Helper()
	w := app.Do(t, http.MethodPost, "/api/reviews/", map[string]any{
		"business_user": businessID,
		"rating":        rating,
		"description":   description,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DecodeAs[review.ReviewResponse](t, w)
}

func TestReviewHandler_Create(t *testing.T) {
	app := testutil.NewApp(t)
	businessID, businessToken := app.RegisterUser(t, "studio", "business")
	customerID, customerToken := app.RegisterUser(t, "buyer", "customer")

	created := postReview(t, app, customerToken, businessID, 4, "Alles war toll!")
	assert.Equal(t, businessID, created.BusinessUser)
	assert.Equal(t, customerID, created.Reviewer)
	assert.Equal(t, 4, created.Rating)
	assert.Equal(t, "Alles war toll!", created.Description)

	t.Run("second review of the same business user", func(t *testing.T) {
		w := app.Do(t, http.MethodPost, "/api/reviews/", map[string]any{
			"business_user": businessID, "rating": 5,
		}, customerToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "You have already reviewed this business user.", testutil.Decode(t, w)["detail"])
	})

	t.Run("business users cannot review", func(t *testing.T) {
		w := app.Do(t, http.MethodPost, "/api/reviews/", map[string]any{
			"business_user": businessID, "rating": 5,
		}, businessToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("target must be a business user", func(t *testing.T) {
		_, otherCustomer := app.RegisterUser(t, "second_buyer", "customer")
		for _, target := range []uint{customerID, 999} {
			w := app.Do(t, http.MethodPost, "/api/reviews/", map[string]any{
				"business_user": target, "rating": 5,
			}, otherCustomer)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, []string{"business_user"}, testutil.ErrorFields(t, w))
		}
	})

	t.Run("rating out of range", func(t *testing.T) {
		_, otherCustomer := app.RegisterUser(t, "third_buyer", "customer")
		w := app.Do(t, http.MethodPost, "/api/reviews/", map[string]any{
			"business_user": businessID, "rating": 6,
		}, otherCustomer)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"rating"}, testutil.ErrorFields(t, w))
	})

	t.Run("missing rating", func(t *testing.T) {
		w := app.Do(t, http.MethodPost, "/api/reviews/", map[string]any{"business_user": businessID}, customerToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"rating"}, testutil.ErrorFields(t, w))
	})
}

func TestReviewHandler_List(t *testing.T) {
	app := testutil.NewApp(t)
	firstBusiness, _ := app.RegisterUser(t, "studio", "business")
	secondBusiness, _ := app.RegisterUser(t, "agency", "business")
	anna, annaToken := app.RegisterUser(t, "anna", "customer")
	_, bertToken := app.RegisterUser(t, "bert", "customer")

	postReview(t, app, annaToken, firstBusiness, 2, "ok")
	postReview(t, app, annaToken, secondBusiness, 5, "super")
	postReview(t, app, bertToken, firstBusiness, 4, "gut")

	list := func(query string) []review.ReviewResponse {
		w := app.Do(t, http.MethodGet, "/api/reviews/"+query, nil, bertToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return testutil.DecodeAs[[]review.ReviewResponse](t, w)
	}

	assert.Len(t, list(""), 3)

	byBusiness := list(fmt.Sprintf("?business_user_id=%d", firstBusiness))
	require.Len(t, byBusiness, 2)
	for _, r := range byBusiness {
		assert.Equal(t, firstBusiness, r.BusinessUser)
	}

	byReviewer := list(fmt.Sprintf("?reviewer_id=%d", anna))
	assert.Len(t, byReviewer, 2)

	ordered := list("?ordering=-rating")
	require.Len(t, ordered, 3)
	assert.Equal(t, 5, ordered[0].Rating)
	assert.Equal(t, 2, ordered[2].Rating)

	ordered = list(fmt.Sprintf("?business_user_id=%d&ordering=rating", firstBusiness))
	require.Len(t, ordered, 2)
	assert.Equal(t, 2, ordered[0].Rating)

	t.Run("invalid filter", func(t *testing.T) {
		w := app.Do(t, http.MethodGet, "/api/reviews/?business_user_id=abc", nil, bertToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"business_user_id"}, testutil.ErrorFields(t, w))
	})

	t.Run("anonymous", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, app.Do(t, http.MethodGet, "/api/reviews/", nil, "").Code)
	})
}

func TestReviewHandler_UpdateAndDelete(t *testing.T) {
	app := testutil.NewApp(t)
	businessID, _ := app.RegisterUser(t, "studio", "business")
	_, reviewerToken := app.RegisterUser(t, "anna", "customer")
	_, otherToken := app.RegisterUser(t, "bert", "customer")
	created := postReview(t, app, reviewerToken, businessID, 4, "Alles war toll!")
	path := fmt.Sprintf("/api/reviews/%d/", created.ID)

	t.Run("reviewer edits", func(t *testing.T) {
		w := app.Do(t, http.MethodPatch, path, map[string]any{
			"rating": 5, "description": "Noch besser als erwartet!",
		}, reviewerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := testutil.DecodeAs[review.ReviewResponse](t, w)
		assert.Equal(t, 5, resp.Rating)
		assert.Equal(t, "Noch besser als erwartet!", resp.Description)
		assert.Equal(t, businessID, resp.BusinessUser)
	})

	t.Run("unallowed fields", func(t *testing.T) {
		w := app.Do(t, http.MethodPatch, path, map[string]any{"rating": 3, "business_user": 99}, reviewerToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Unallowed fields in request.", testutil.Decode(t, w)["detail"])
	})

	t.Run("invalid rating", func(t *testing.T) {
		w := app.Do(t, http.MethodPatch, path, map[string]any{"rating": 0}, reviewerToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"rating"}, testutil.ErrorFields(t, w))
	})

	t.Run("someone else", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, app.Do(t, http.MethodPatch, path, map[string]any{"rating": 1}, otherToken).Code)
		assert.Equal(t, http.StatusForbidden, app.Do(t, http.MethodDelete, path, nil, otherToken).Code)
	})

	t.Run("unknown review", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, app.Do(t, http.MethodPatch, "/api/reviews/999/", map[string]any{"rating": 1}, otherToken).Code)
	})

	t.Run("reviewer deletes", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, app.Do(t, http.MethodDelete, path, nil, reviewerToken).Code)
		assert.Equal(t, http.StatusNotFound, app.Do(t, http.MethodDelete, path, nil, reviewerToken).Code)

		// the pair may be reviewed again
		postReview(t, app, reviewerToken, businessID, 3, "")
	})
}

func TestReviewHandler_PermissionBeforeBody(t *testing.T) {
	app := testutil.NewApp(t)
	businessID, businessToken := app.RegisterUser(t, "studio", "business")
	_, reviewerToken := app.RegisterUser(t, "anna", "customer")
	_, otherToken := app.RegisterUser(t, "bert", "customer")
	created := postReview(t, app, reviewerToken, businessID, 4, "")
	path := fmt.Sprintf("/api/reviews/%d/", created.ID)

	t.Run("business create with an invalid body", func(t *testing.T) {
		w := app.Do(t, http.MethodPost, "/api/reviews/", map[string]any{"rating": "abc"}, businessToken)
		require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
		assert.Equal(t, dto.ErrCodeForbidden, testutil.ErrorCode(t, w))
	})

	t.Run("non-reviewer patch with a mistyped rating", func(t *testing.T) {
		w := app.Do(t, http.MethodPatch, path, map[string]any{"rating": "abc"}, otherToken)
		assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	})

	t.Run("reviewer still gets the body error", func(t *testing.T) {
		w := app.Do(t, http.MethodPatch, path, map[string]any{"rating": "abc"}, reviewerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})
}
