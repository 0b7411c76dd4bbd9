package domain

import "github.com/shopspring/decimal"

// VariantOption is a single option name/value pair on a variant. Options are
// kept as an ordered slice because the product options schema derives its
// column order from the order options first appear.
type VariantOption struct {
	Name  string
	Value string
}

// ProductVariant is one sellable variation of a product, parsed from a CSV row.
type ProductVariant struct {
	SKU            string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	InventoryQty   int
	Weight         *float64
	WeightUnit     string
	ImageURL       string
	Options        []VariantOption
}

// OptionValue returns the value for the named option, or "" when the variant
// does not carry it.
func (v ProductVariant) OptionValue(name string) string {
	for _, opt := range v.Options {
		if opt.Name == name {
			return opt.Value
		}
	}
	return ""
}

// Product groups one or more variants under a shared handle. The handle is
// the CSV grouping key and the storefront URL slug.
type Product struct {
	Handle      string
	Title       string
	Description string
	Vendor      string
	Type        string
	Tags        []string
	Variants    []ProductVariant
}
