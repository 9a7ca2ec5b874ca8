package spoonacular

// SearchParams selects one page of the remote catalog.
// Query and Type are optional; an empty value is not sent.
type SearchParams struct {
	Query  string
	Type   string
	Number int
	Offset int
}

// SearchResponse is the complexSearch response body.
type SearchResponse struct {
	Results      []RawRecipe `json:"results"`
	Offset       int         `json:"offset"`
	Number       int         `json:"number"`
	TotalResults int         `json:"totalResults"`
}

// RawRecipe is a recipe as returned with addRecipeInformation=true.
// Every field except ID may be missing.
type RawRecipe struct {
	ID             int64    `json:"id"`
	Title          *string  `json:"title"`
	Image          *string  `json:"image"`
	Summary        *string  `json:"summary"`
	ReadyInMinutes *int     `json:"readyInMinutes"`
	Servings       *int     `json:"servings"`
	SourceURL      *string  `json:"sourceUrl"`
	DishTypes      []string `json:"dishTypes"`
}

// apiError is the body the API sends with a non-2xx status.
type apiError struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}
