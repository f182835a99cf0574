package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/app/service"
)

const (
	sheetCategories = "categories"
	sheetProducts   = "products"
	sheetGiftWraps  = "gift_wraps"
	sheetOccasions  = "occasions"
)

// Catalog is everything read from a seed workbook. Rows are kept in sheet order.
type Catalog struct {
	Categories []model.Category
	Products   []service.CreateProductInput
	GiftWraps  []model.GiftWrap
	Occasions  []model.Occasion
	Skipped    []string // "sheet row N: reason"
}

// sheet is a header-indexed view over one worksheet. Missing sheets read as empty.
type sheet struct {
	name   string
	header map[string]int
	rows   [][]string
}

func loadSheet(f *excelize.File, name string) (*sheet, error) {
	if idx, _ := f.GetSheetIndex(name); idx < 0 {
		return &sheet{name: name}, nil
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}
	s := &sheet{name: name, header: make(map[string]int)}
	if len(rows) == 0 {
		return s, nil
	}
	for i, h := range rows[0] {
		s.header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	s.rows = rows[1:]
	return s, nil
}

func (s *sheet) cell(row []string, column string) string {
	i, ok := s.header[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c *Catalog) skip(sheet string, rowIdx int, reason string) {
	// +2: header row plus 1-based numbering, matching what a spreadsheet shows
	c.Skipped = append(c.Skipped, fmt.Sprintf("%s row %d: %s", sheet, rowIdx+2, reason))
}

// ReadCatalog parses the categories, products, gift_wraps and occasions sheets.
func ReadCatalog(f *excelize.File) (*Catalog, error) {
	c := &Catalog{}

	categories, err := loadSheet(f, sheetCategories)
	if err != nil {
		return nil, err
	}
	for i, row := range categories.rows {
		name := categories.cell(row, "name")
		if name == "" {
			c.skip(sheetCategories, i, "missing name")
			continue
		}
		slug := categories.cell(row, "slug")
		if slug == "" {
			slug = generateSlug(name)
		}
		c.Categories = append(c.Categories, model.Category{
			Name:     name,
			Slug:     slug,
			Type:     model.CategoryType(strings.ToLower(categories.cell(row, "type"))),
			ImageURL: categories.cell(row, "image"),
		})
	}

	products, err := loadSheet(f, sheetProducts)
	if err != nil {
		return nil, err
	}
	for i, row := range products.rows {
		name := products.cell(row, "name")
		if name == "" {
			c.skip(sheetProducts, i, "missing name")
			continue
		}
		price, err := decimal.NewFromString(products.cell(row, "price"))
		if err != nil || price.IsNegative() {
			c.skip(sheetProducts, i, "invalid price")
			continue
		}
		input := service.CreateProductInput{
			Name:         name,
			Description:  products.cell(row, "description"),
			Price:        price,
			CategorySlug: strings.ToLower(products.cell(row, "category")),
			ImageURL:     products.cell(row, "image"),
			Tags:         splitTags(products.cell(row, "tags")),
		}
		if raw := products.cell(row, "available"); raw != "" {
			available, err := parseBool(raw)
			if err != nil {
				c.skip(sheetProducts, i, "invalid available flag")
				continue
			}
			input.IsAvailable = &available
		}
		c.Products = append(c.Products, input)
	}

	wraps, err := loadSheet(f, sheetGiftWraps)
	if err != nil {
		return nil, err
	}
	for i, row := range wraps.rows {
		name := wraps.cell(row, "name")
		price, err := decimal.NewFromString(wraps.cell(row, "price"))
		if name == "" || err != nil || price.IsNegative() {
			c.skip(sheetGiftWraps, i, "missing name or invalid price")
			continue
		}
		c.GiftWraps = append(c.GiftWraps, model.GiftWrap{
			Name:     name,
			Price:    price,
			Type:     wraps.cell(row, "type"),
			ImageURL: wraps.cell(row, "image"),
		})
	}

	occasions, err := loadSheet(f, sheetOccasions)
	if err != nil {
		return nil, err
	}
	for i, row := range occasions.rows {
		name := occasions.cell(row, "name")
		if name == "" {
			c.skip(sheetOccasions, i, "missing name")
			continue
		}
		c.Occasions = append(c.Occasions, model.Occasion{
			Name:  name,
			Emoji: occasions.cell(row, "emoji"),
		})
	}

	return c, nil
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return strconv.ParseBool(raw)
}

var (
	slugInvalid = regexp.MustCompile(`[^\p{L}\p{N}-]+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// generateSlug builds a URL slug from a display name.
func generateSlug(name string) string {
	slug := slugInvalid.ReplaceAllString(name, "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	return strings.ToLower(strings.Trim(slug, "-"))
}
