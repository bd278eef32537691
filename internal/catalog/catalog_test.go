package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/promptwars/internal/apperr"
	"github.com/jason-s-yu/promptwars/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 20, c.Count())
	assert.Equal(t, Stats{Total: 20, Elements: 7, Actions: 6, Materials: 7}, c.Stats())

	fire, ok := c.Resolve("fire")
	require.True(t, ok)
	assert.Equal(t, models.CategoryElement, fire.Category)

	_, ok = c.Resolve("nonexistent")
	assert.False(t, ok)

	assert.Len(t, c.ListByCategory(models.CategoryAction), 6)
	assert.Nil(t, c.ListByCategory(models.Category("weather")))
}

func TestValidateAll(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.True(t, c.ValidateAll([]string{"fire", "attack", "sword"}))
	assert.True(t, c.ValidateAll(nil), "empty input is trivially valid")
	assert.False(t, c.ValidateAll([]string{"fire", "nonexistent"}))
}

func TestDrawHandCoversCategories(t *testing.T) {
	c, err := Default(WithSeed(42))
	require.NoError(t, err)

	for size := 3; size <= c.Count(); size++ {
		for i := 0; i < 25; i++ {
			hand, err := c.DrawHand(size)
			require.NoError(t, err)
			require.Len(t, hand, size)

			seen := make(map[string]bool, size)
			for _, card := range hand {
				assert.False(t, seen[card.ID], "duplicate card %s in hand of %d", card.ID, size)
				seen[card.ID] = true
			}
			assert.Equal(t, models.CategoryElement, hand[0].Category)
			assert.Equal(t, models.CategoryAction, hand[1].Category)
			assert.Equal(t, models.CategoryMaterial, hand[2].Category)
		}
	}
}

func TestDrawHandRejectsBadSizes(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, size := range []int{-1, 0, 1, 2} {
		_, err := c.DrawHand(size)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "size %d", size)
	}

	_, err = c.DrawHand(c.Count() + 1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestNewRejectsIncompleteCatalog(t *testing.T) {
	_, err := New([]models.Card{
		{ID: "fire", Name: "Fire", Category: models.CategoryElement},
		{ID: "attack", Name: "Attack", Category: models.CategoryAction},
	})
	assert.Error(t, err)

	_, err = Parse([]byte("cards:\n  - id: fire\n    category: plasma\n"))
	assert.Error(t, err)

	_, err = New([]models.Card{
		{ID: "fire", Category: models.CategoryElement},
		{ID: "fire", Category: models.CategoryAction},
	})
	assert.Error(t, err)
}
