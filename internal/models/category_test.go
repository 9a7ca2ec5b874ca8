package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindCategory(t *testing.T) {
	tests := []struct {
		key    string
		wantID string
		wantOK bool
	}{
		{"dessert", "dessert", true},
		{"main_course", "main_course", true},
		{"main course", "main_course", true},
		{"all", CategoryAll, true},
		{"", "", false},
		{"pudding", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			c, ok := FindCategory(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, c.ID)
		})
	}
}

func TestCategories_OnlyAllHasNoTag(t *testing.T) {
	for _, c := range Categories {
		if c.ID == CategoryAll {
			assert.True(t, c.IsAll())
			continue
		}
		assert.NotEmpty(t, c.APITag, "category %s needs an API tag", c.ID)
		assert.False(t, c.IsAll())
	}
}

func TestSelection(t *testing.T) {
	var zero Selection
	assert.Equal(t, CategoryAll, zero.Selected().ID)

	dessert, _ := FindCategory("dessert")
	sel := SelectionOf(dessert)
	assert.True(t, sel.IsSelected(dessert))
	assert.False(t, sel.IsSelected(Categories[0]))

	unknown := Selection{CategoryID: "nope"}
	assert.Equal(t, CategoryAll, unknown.Selected().ID)
}

func TestRecipe_HasDishType(t *testing.T) {
	r := Recipe{DishTypes: []string{"dessert", "snack"}}
	assert.True(t, r.HasDishType("dessert"))
	assert.False(t, r.HasDishType("dess"))
	assert.False(t, (&Recipe{}).HasDishType("dessert"))
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	assert.Equal(t, "x", Deref(StringPtr("x")))
	assert.Equal(t, "", Deref(nil))
}
