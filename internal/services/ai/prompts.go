package ai

import "fmt"

const chefInstruction = "Please act as a professional chef. Provide a detailed list of ingredients, servings, and a pro tip for this recipe: %s."

// BuildRecipePrompt embeds the dish name verbatim in the chef instruction.
// The caller is responsible for trimming the query.
func BuildRecipePrompt(query string) string {
	return fmt.Sprintf(chefInstruction, query)
}
