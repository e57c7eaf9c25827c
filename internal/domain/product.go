package domain

import "strings"

// Product is one entry in the fixed product catalog.
type Product struct {
	ID       string
	Name     string
	AmazonID string
	Aliases  []string
}

// Products is the catalog the analyzer matches conversations against.
var Products = []Product{
	{ID: "artemis_3d", Name: "Artemis 3D", AmazonID: "ASIN_ARTEMIS_3D", Aliases: []string{"artemis", "artemis 3d"}},
	{ID: "ether", Name: "Ether", AmazonID: "ASIN_ETHER", Aliases: []string{"ether"}},
	{ID: "oxylus", Name: "Oxylus", AmazonID: "ASIN_OXYLUS", Aliases: []string{"oxylus"}},
	{ID: "pillow", Name: "Pillow", AmazonID: "ASIN_PILLOW", Aliases: []string{"pillow", "camping pillow"}},
	{ID: "apollo_air", Name: "ApolloAir", AmazonID: "ASIN_APOLLO_AIR", Aliases: []string{"apolloair", "apollo air", "apollo air 5.2"}},
}

// ProductByID returns the catalog entry with the given id, or nil.
func ProductByID(id string) *Product {
	for i := range Products {
		if Products[i].ID == id {
			return &Products[i]
		}
	}
	return nil
}

// DetectProduct scans free text for a catalog alias and returns the first
// matching product, or nil when nothing matches.
func DetectProduct(text string) *Product {
	lower := strings.ToLower(text)
	for i := range Products {
		for _, alias := range Products[i].Aliases {
			if strings.Contains(lower, alias) {
				return &Products[i]
			}
		}
	}
	return nil
}
