// Package products parses CSV product files and groups rows into products
// with variants.
package products

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"spinup/internal/domain"
)

// ParseResult is the outcome of one CSV parse pass. Row-level problems are
// collected into Errors and Warnings rather than aborting the parse.
type ParseResult struct {
	Products []domain.Product
	Warnings []string
	Errors   []string
}

const maxVariantOptions = 3

// Parse reads a CSV product file and groups its rows by handle, in first-seen
// order. Rows missing a required field are skipped with an error entry; a
// missing image_url is only a warning. Parse itself fails for nothing: file
// problems surface through Errors.
func Parse(path string) ParseResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return ParseResult{Errors: []string{fmt.Sprintf("File not found: %s", path)}}
	}

	lines := make([]string, 0)
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return ParseResult{Errors: []string{"CSV file is empty"}}
	}

	headers := parseLine(lines[0])
	colIndex := make(map[string]int, len(headers))
	for i, header := range headers {
		colIndex[strings.ToLower(header)] = i
	}

	var (
		result ParseResult
		order  []string
	)
	productsByHandle := make(map[string]*domain.Product)

	for i := 1; i < len(lines); i++ {
		rowNum := i + 1
		fields := parseLine(lines[i])

		getValue := func(col string) string {
			idx, ok := colIndex[strings.ToLower(col)]
			if !ok || idx >= len(fields) {
				return ""
			}
			return fields[idx]
		}

		handle := getValue("handle")
		title := getValue("title")
		priceStr := getValue("price")

		if handle == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing required field 'handle'", rowNum))
			continue
		}
		if title == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing required field 'title'", rowNum))
			continue
		}
		if priceStr == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing required field 'price'", rowNum))
			continue
		}

		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Invalid price value '%s'", rowNum, priceStr))
			continue
		}

		imageURL := getValue("image_url")
		if imageURL == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Row %d: Missing image_url for product '%s'", rowNum, handle))
		}

		variant := domain.ProductVariant{
			SKU:          getValue("sku"),
			Price:        price,
			InventoryQty: parseIntOrZero(getValue("inventory_qty")),
			WeightUnit:   getValue("weight_unit"),
			ImageURL:     imageURL,
			Options:      parseOptions(getValue),
		}
		if raw := getValue("compare_at_price"); raw != "" {
			if d, err := decimal.NewFromString(raw); err == nil {
				variant.CompareAtPrice = &d
			}
		}
		if w := getValue("weight"); w != "" {
			if f, err := strconv.ParseFloat(w, 64); err == nil {
				variant.Weight = &f
			}
		}

		if existing, ok := productsByHandle[handle]; ok {
			// Later rows for a known handle only contribute a variant; their
			// title/description/etc fields are ignored.
			existing.Variants = append(existing.Variants, variant)
			continue
		}

		product := &domain.Product{
			Handle:      handle,
			Title:       title,
			Description: getValue("description"),
			Vendor:      getValue("vendor"),
			Type:        getValue("type"),
			Tags:        parseTags(getValue("tags")),
			Variants:    []domain.ProductVariant{variant},
		}
		productsByHandle[handle] = product
		order = append(order, handle)
	}

	result.Products = make([]domain.Product, 0, len(order))
	for _, handle := range order {
		result.Products = append(result.Products, *productsByHandle[handle])
	}
	return result
}

// parseLine splits a CSV line on commas, honoring double-quoted fields with
// "" as an escaped quote. Fields are trimmed. Embedded newlines are not
// supported; records are strictly one per line.
func parseLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}

func parseOptions(getValue func(string) string) []domain.VariantOption {
	var options []domain.VariantOption
	for n := 1; n <= maxVariantOptions; n++ {
		name := getValue(fmt.Sprintf("variant_option%d_name", n))
		value := getValue(fmt.Sprintf("variant_option%d_value", n))
		if name != "" && value != "" {
			options = append(options, domain.VariantOption{Name: name, Value: value})
		}
	}
	return options
}

func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tags = append(tags, strings.TrimSpace(part))
	}
	return tags
}

func parseIntOrZero(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
