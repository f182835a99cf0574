package main

import (
	"fmt"

	"github.com/dvfens/ags/internal/app/service"
)

type ImportResult struct {
	Created int
	Failed  []string
}

func (r *ImportResult) record(kind, name string, err error) {
	if err != nil {
		r.Failed = append(r.Failed, fmt.Sprintf("%s %q: %v", kind, name, err))
		return
	}
	r.Created++
}

// Import writes a parsed catalog through the catalog service. Categories go first
// so products can reference them by slug. A failed row does not stop the import.
func Import(catalog service.CatalogService, c *Catalog) ImportResult {
	var result ImportResult

	for i := range c.Categories {
		category := c.Categories[i]
		result.record("category", category.Name, catalog.CreateCategory(&category))
	}
	for _, input := range c.Products {
		_, err := catalog.CreateProduct(input)
		result.record("product", input.Name, err)
	}
	for i := range c.GiftWraps {
		wrap := c.GiftWraps[i]
		result.record("gift wrap", wrap.Name, catalog.CreateGiftWrap(&wrap))
	}
	for i := range c.Occasions {
		occasion := c.Occasions[i]
		result.record("occasion", occasion.Name, catalog.CreateOccasion(&occasion))
	}

	return result
}
