// Package catalog holds the static product listing. Products are defined at
// process start and never change at runtime, so price lookups are served from
// a map built once in New.
package catalog

import "strconv"

type Product struct {
	ID      int            `json:"id"`
	Name    string         `json:"name"`
	Image   string         `json:"image"`
	Weights map[string]int `json:"weights"` // weight in grams -> price
}

const (
	CategoryNonVegPickles = "non_vegpickles"
	CategoryVegPickles    = "veg_pickles"
	CategorySnacks        = "snacks"
)

type Catalog struct {
	categories map[string][]Product
	// (product id, weight) -> price, precomputed. First category wins when an
	// id repeats across categories; id uniqueness is assumed, not enforced.
	prices map[string]map[string]int
}

func New(categories map[string][]Product) *Catalog {
	c := &Catalog{categories: categories, prices: map[string]map[string]int{}}
	for _, name := range []string{CategoryNonVegPickles, CategoryVegPickles, CategorySnacks} {
		for _, p := range categories[name] {
			id := strconv.Itoa(p.ID)
			if _, ok := c.prices[id]; ok {
				continue
			}
			byWeight := make(map[string]int, len(p.Weights))
			for w, price := range p.Weights {
				byWeight[w] = price
			}
			c.prices[id] = byWeight
		}
	}
	return c
}

// Category returns the ordered product list for a category name, nil if the
// category does not exist.
func (c *Catalog) Category(name string) []Product {
	return c.categories[name]
}

// PriceFor resolves the price of a product at a given weight. The second
// return is false when the product id or the weight is unknown.
func (c *Catalog) PriceFor(productID, weight string) (int, bool) {
	byWeight, ok := c.prices[productID]
	if !ok {
		return 0, false
	}
	price, ok := byWeight[weight]
	return price, ok
}

// Default is the retailer's current assortment.
func Default() *Catalog {
	return New(map[string][]Product{
		CategoryNonVegPickles: {
			{ID: 1, Image: "chicken_pickle.jpg", Name: "Chicken Pickle", Weights: map[string]int{"250": 600, "500": 1200, "1000": 1800}},
			{ID: 2, Image: "fish_pickle.jpg", Name: "Fish Pickle", Weights: map[string]int{"250": 200, "500": 400, "1000": 800}},
			{ID: 3, Image: "gongura_mutton.jpg", Name: "Gongura Mutton", Weights: map[string]int{"250": 400, "500": 800, "1000": 1600}},
			{ID: 4, Image: "mutton_pickle.jpg", Name: "Mutton Pickle", Weights: map[string]int{"250": 400, "500": 800, "1000": 1600}},
			{ID: 5, Image: "gongura_prawns.jpg", Name: "Gongura Prawns", Weights: map[string]int{"250": 600, "500": 1200, "1000": 1800}},
			{ID: 6, Image: "chicken_pickle_gongura.jpg", Name: "Chicken Pickle (Gongura)", Weights: map[string]int{"250": 350, "500": 700, "1000": 1050}},
		},
		CategoryVegPickles: {
			{ID: 7, Image: "traditional_mango_pickle.jpg", Name: "Traditional Mango Pickle", Weights: map[string]int{"250": 150, "500": 280, "1000": 500}},
			{ID: 8, Image: "zesty_lemon_pickle.jpg", Name: "Zesty Lemon Pickle", Weights: map[string]int{"250": 120, "500": 220, "1000": 400}},
			{ID: 9, Image: "tomato_pickle.jpg", Name: "Tomato Pickle", Weights: map[string]int{"250": 130, "500": 240, "1000": 450}},
			{ID: 10, Image: "kakarakaya_pickle.jpg", Name: "Kakarakaya Pickle", Weights: map[string]int{"250": 130, "500": 240, "1000": 450}},
			{ID: 11, Image: "chintakaya_pickle.png", Name: "Chintakaya Pickle", Weights: map[string]int{"250": 130, "500": 240, "1000": 450}},
			{ID: 12, Image: "spicy_pandu_mirchi.jpg", Name: "Spicy Pandu Mirchi", Weights: map[string]int{"250": 130, "500": 240, "1000": 450}},
		},
		CategorySnacks: {
			{ID: 13, Image: "banana_chips.jpg", Name: "Banana Chips", Weights: map[string]int{"250": 300, "500": 600, "1000": 800}},
			{ID: 14, Image: "crispy_aam_papad.png", Name: "Crispy Aam-Papad", Weights: map[string]int{"250": 150, "500": 300, "1000": 600}},
			{ID: 16, Image: "boondhi_acchu.png", Name: "Boondhi Acchu", Weights: map[string]int{"250": 300, "500": 600, "1000": 900}},
			{ID: 17, Image: "chekkalu.jpg", Name: "Chekkalu", Weights: map[string]int{"250": 350, "500": 700, "1000": 1000}},
			{ID: 18, Image: "ragi_laddu.jpg", Name: "Ragi Laddu", Weights: map[string]int{"250": 350, "500": 700, "1000": 1000}},
			{ID: 19, Image: "dry_fruit_laddu.jpg", Name: "Dry Fruit Laddu", Weights: map[string]int{"250": 500, "500": 1000, "1000": 1500}},
			{ID: 20, Image: "kara_boondi.jpg", Name: "Kara Boondi", Weights: map[string]int{"250": 250, "500": 500, "1000": 750}},
			{ID: 21, Image: "gavvalu.jpg", Name: "Gavvalu", Weights: map[string]int{"250": 250, "500": 500, "1000": 750}},
			{ID: 22, Image: "kaju_chikki.jpg", Name: "Kaju Chikki", Weights: map[string]int{"250": 250, "500": 500, "1000": 750}},
		},
	})
}
