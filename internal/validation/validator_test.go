package validation

import (
	"errors"
	"testing"

	"imhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct(t *testing.T) {
	t.Run("valid link", func(t *testing.T) {
		link := &models.ShortLink{Title: "Sitrep", Slug: "sitrep-1", URL: "https://example.org/sitrep"}
		assert.NoError(t, Struct(link))
	})

	t.Run("invalid slug and url", func(t *testing.T) {
		link := &models.ShortLink{Title: "Sitrep", Slug: "bad slug", URL: "not a url"}
		err := Struct(link)
		require.Error(t, err)

		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeValidation, appErr.Code)
		assert.Contains(t, appErr.Message, "slug can only contain")
		assert.Contains(t, appErr.Message, "url must be a valid URL")
	})

	t.Run("contact enum", func(t *testing.T) {
		c := &models.Contact{Name: "Ana", Organization: "UNICEF", LocationType: "moon", Status: "active"}
		err := Struct(c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "location_type must be one of [field remote office mobile]")
	})

	t.Run("submission requires email", func(t *testing.T) {
		s := &models.ContactSubmission{Organization: "WFP", FocalPointName: "Ben"}
		err := Struct(s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email is required")
	})

	t.Run("optional email may be empty", func(t *testing.T) {
		g := &models.Group{Name: "WASH", Sector: "WASH", Description: "d", Link: "https://chat.whatsapp.com/x"}
		assert.NoError(t, Struct(g))
	})
}
