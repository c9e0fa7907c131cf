package recipe

// Ingredient is one recipe component. Notes is empty when the model gave none.
type Ingredient struct {
	Item   string `json:"item"`
	Amount string `json:"amount"`
	Notes  string `json:"notes,omitempty"`
}

// RecipeResult is the structured answer of the generation service.
// Ingredients keep the order the service returned them in.
type RecipeResult struct {
	RecipeName        string       `json:"recipeName"`
	Servings          string       `json:"servings"`
	Ingredients       []Ingredient `json:"ingredients"`
	BriefInstructions string       `json:"briefInstructions"`
	ChefTip           string       `json:"chefTip"`
}
