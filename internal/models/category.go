package models

// Category is one entry of the fixed dish-type catalog.
// APITag is the value sent as the remote "type" filter; the "all" entry has none.
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	APITag string `json:"api_tag"`
}

// CategoryAll is the ID of the catch-all category.
const CategoryAll = "all"

// IsAll reports whether the category means "no filter".
func (c Category) IsAll() bool {
	return c.ID == CategoryAll || c.APITag == ""
}

// Categories is the curated category catalog, in display order.
var Categories = []Category{
	{ID: CategoryAll, Name: "All", APITag: ""},
	{ID: "main_course", Name: "Main course", APITag: "main course"},
	{ID: "side_dish", Name: "Side dishes", APITag: "side dish"},
	{ID: "dessert", Name: "Desserts", APITag: "dessert"},
	{ID: "appetizer", Name: "Appetizers", APITag: "appetizer"},
	{ID: "salad", Name: "Salads", APITag: "salad"},
	{ID: "bread", Name: "Bread", APITag: "bread"},
	{ID: "breakfast", Name: "Breakfast", APITag: "breakfast"},
	{ID: "soup", Name: "Soups", APITag: "soup"},
	{ID: "beverage", Name: "Beverages", APITag: "beverage"},
	{ID: "sauce", Name: "Sauces", APITag: "sauce"},
	{ID: "snack", Name: "Snacks", APITag: "snack"},
}

// FindCategory looks a category up by ID or API tag.
func FindCategory(key string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == key || (c.APITag != "" && c.APITag == key) {
			return c, true
		}
	}
	return Category{}, false
}

// Selection is the currently selected category. The zero value selects "all".
type Selection struct {
	CategoryID string `json:"category_id"`
}

// SelectionOf returns the selection for c.
func SelectionOf(c Category) Selection {
	return Selection{CategoryID: c.ID}
}

// Selected returns the selected category, falling back to "all" for unknown IDs.
func (s Selection) Selected() Category {
	if c, ok := FindCategory(s.CategoryID); ok {
		return c
	}
	return Categories[0]
}

// IsSelected reports whether c is the selected category.
func (s Selection) IsSelected(c Category) bool {
	return s.Selected().ID == c.ID
}
