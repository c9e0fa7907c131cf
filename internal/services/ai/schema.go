package ai

// SchemaType is the OpenAPI subset type name understood by the Gemini API.
type SchemaType string

const (
	TypeObject SchemaType = "OBJECT"
	TypeArray  SchemaType = "ARRAY"
	TypeString SchemaType = "STRING"
)

// ResponseMIMEType asks the model for JSON text instead of prose.
const ResponseMIMEType = "application/json"

// Schema declares the shape the model must answer with. It marshals to the
// REST representation of a Gemini responseSchema.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// RecipeSchema is the response contract for a recipe lookup. Its property
// names match the JSON tags of recipe.RecipeResult.
func RecipeSchema() *Schema {
	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"recipeName": {
				Type:        TypeString,
				Description: "The name of the recipe.",
			},
			"servings": {
				Type:        TypeString,
				Description: "Typical servings (e.g., '4 servings').",
			},
			"ingredients": {
				Type: TypeArray,
				Items: &Schema{
					Type: TypeObject,
					Properties: map[string]*Schema{
						"item":   {Type: TypeString, Description: "Ingredient name."},
						"amount": {Type: TypeString, Description: "Quantity with units."},
						"notes":  {Type: TypeString, Description: "Preparation notes like 'diced' or 'chilled'."},
					},
					Required: []string{"item", "amount"},
				},
			},
			"briefInstructions": {
				Type:        TypeString,
				Description: "A short summary of the cooking method.",
			},
			"chefTip": {
				Type:        TypeString,
				Description: "An expert culinary tip for this dish.",
			},
		},
		Required: []string{"recipeName", "servings", "ingredients", "briefInstructions", "chefTip"},
	}
}
