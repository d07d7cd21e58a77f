package grocery

import "strings"

const (
	AisleProduce  = "Produce"
	AisleDairy    = "Dairy & Eggs"
	AisleMeat     = "Meat & Seafood"
	AisleBakery   = "Bakery"
	AislePantry   = "Pantry"
	AisleBaking   = "Spices & Baking"
	AisleFrozen   = "Frozen"
	AisleBeverage = "Beverages"
	AisleOther    = "Other"
)

// AisleOrder is the walking order used to group a shopping list.
var AisleOrder = []string{
	AisleProduce, AisleDairy, AisleMeat, AisleBakery, AislePantry,
	AisleBaking, AisleFrozen, AisleBeverage, AisleOther,
}

type aisleKeywords struct {
	aisle    string
	keywords []string
}

// Keywords are matched as substrings of the ingredient name; the longest
// matching keyword wins, so "peanut butter" beats "butter".
var aisles = []aisleKeywords{
	{AisleProduce, []string{
		"apple", "banana", "orange", "lemon", "lime", "avocado", "tomato",
		"potato", "sweet potato", "onion", "green onion", "garlic", "ginger",
		"lettuce", "romaine", "spinach", "kale", "arugula", "broccoli",
		"cauliflower", "cabbage", "carrot", "celery", "cucumber", "zucchini",
		"squash", "eggplant", "bell pepper", "jalapeño", "jalapeno", "pepper",
		"mushroom", "corn", "pea", "green bean", "berry", "berries", "grape",
		"melon", "peach", "pear", "mango", "pineapple", "herb", "basil",
		"cilantro", "parsley", "mint", "scallion", "shallot", "fruit",
	}},
	{AisleDairy, []string{
		"milk", "almond milk", "oat milk", "butter", "cheese", "cream",
		"cream cheese", "sour cream", "heavy cream", "yogurt", "greek yogurt",
		"egg", "half and half", "ricotta", "mozzarella", "parmesan", "feta",
		"cheddar",
	}},
	{AisleMeat, []string{
		"chicken", "beef", "ground beef", "pork", "bacon", "sausage", "ham",
		"turkey", "ground turkey", "lamb", "steak", "salmon", "tuna", "shrimp",
		"fish", "cod", "tilapia", "tofu", "tempeh",
	}},
	{AisleBakery, []string{
		"bread", "sourdough", "bagel", "tortilla", "bun", "roll", "pita",
		"naan", "croissant", "muffin", "baguette",
	}},
	{AislePantry, []string{
		"rice", "pasta", "spaghetti", "noodle", "oat", "oats", "quinoa",
		"couscous", "cereal", "granola", "bean", "lentil", "chickpea",
		"canned", "broth", "stock", "chicken broth", "chicken stock", "soup",
		"sauce", "tomato sauce", "tomato paste", "soy sauce", "hot sauce",
		"vinegar", "oil", "olive oil", "coconut milk", "peanut butter",
		"almond butter", "honey", "maple syrup", "jam", "mustard", "ketchup",
		"mayonnaise", "salsa", "nut", "almond", "walnut", "seed",
	}},
	{AisleBaking, []string{
		"flour", "sugar", "brown sugar", "baking powder", "baking soda",
		"yeast", "vanilla", "cocoa", "chocolate chip", "salt", "black pepper",
		"cinnamon", "cumin", "paprika", "oregano", "thyme", "chili powder",
		"spice", "seasoning",
	}},
	{AisleFrozen, []string{
		"frozen", "ice cream", "ice",
	}},
	{AisleBeverage, []string{
		"coffee", "tea", "juice", "orange juice", "apple juice", "soda",
		"sparkling water", "wine", "beer",
	}},
}

// Categorize returns the store aisle for an ingredient name. Matching is
// case-insensitive; unknown names fall back to AisleOther.
func Categorize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return AisleOther
	}

	best, bestLen := AisleOther, 0
	for _, a := range aisles {
		for _, kw := range a.keywords {
			if len(kw) > bestLen && strings.Contains(name, kw) {
				best, bestLen = a.aisle, len(kw)
			}
		}
	}
	return best
}
