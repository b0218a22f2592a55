package imagesearch

import (
	"net/url"
	"strings"
)

// restaurantOverrides pins specific dishes at specific restaurants to
// hand-picked photos. Checked before the generic table.
var restaurantOverrides = map[string]map[string]string{
	"ocean": {
		"lobster roll": "https://images.dishwire.dev/ocean/lobster-roll.jpg",
	},
}

// genericDishImages maps common dish names to stock photos.
var genericDishImages = map[string]string{
	"margherita pizza":  "https://images.dishwire.dev/stock/margherita-pizza.jpg",
	"pepperoni pizza":   "https://images.dishwire.dev/stock/pepperoni-pizza.jpg",
	"spaghetti carbonara": "https://images.dishwire.dev/stock/carbonara.jpg",
	"penne alla vodka":  "https://images.dishwire.dev/stock/penne-vodka.jpg",
	"caesar salad":      "https://images.dishwire.dev/stock/caesar-salad.jpg",
	"mapo tofu":         "https://images.dishwire.dev/stock/mapo-tofu.jpg",
	"kung pao chicken":  "https://images.dishwire.dev/stock/kung-pao-chicken.jpg",
	"tiramisu":          "https://images.dishwire.dev/stock/tiramisu.jpg",
	"lobster roll":      "https://images.dishwire.dev/stock/lobster-roll.jpg",
	"clam chowder":      "https://images.dishwire.dev/stock/clam-chowder.jpg",
}

// placeholderImageURL encodes the query text into a placeholder image.
func placeholderImageURL(query string) string {
	return "https://placehold.co/800x600?text=" + url.QueryEscape(query)
}

// curatedDishImage answers a dish lookup from the static tables:
// restaurant-specific override, then the generic dish table, then a
// placeholder. Always reference imagery except for overrides, which
// are hand-verified.
func curatedDishImage(restaurantName, dishName string) DishImage {
	rkey := strings.ToLower(strings.TrimSpace(restaurantName))
	dkey := strings.ToLower(strings.TrimSpace(dishName))

	if dishes, ok := restaurantOverrides[rkey]; ok {
		if u, ok := dishes[dkey]; ok {
			return DishImage{URL: u, IsReference: false}
		}
	}
	if u, ok := genericDishImages[dkey]; ok {
		return DishImage{URL: u, IsReference: true}
	}
	return DishImage{
		URL:         placeholderImageURL(strings.TrimSpace(restaurantName + " " + dishName)),
		IsReference: true,
	}
}
