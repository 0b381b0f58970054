package store

import (
	"fmt"

	"tidewear/pkg/domain"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

// Seed loads a fixed set of demonstration categories, products, articles and
// default settings. It works against any backend and is meant to run once at
// startup; it does not check for existing rows.
func Seed(st Store) error {
	categories := []domain.NewCategory{
		{Name: "Swimwear", Slug: "swimwear"},
		{Name: "Beachwear", Slug: "beachwear"},
		{Name: "Accessories", Slug: "accessories"},
	}
	for _, c := range categories {
		if _, err := st.CreateCategory(c); err != nil {
			return fmt.Errorf("seed category %q: %w", c.Slug, err)
		}
	}

	products := []domain.NewProduct{
		{
			Name:        "Coral Reef One-Piece",
			Description: "Sculpted one-piece in a coral print, cut from regenerated ocean nylon.",
			Price:       250,
			Images:      []string{"/images/products/coral-reef-one-piece-1.jpg", "/images/products/coral-reef-one-piece-2.jpg"},
			Category:    "swimwear",
			InStock:     true,
			IsFeatured:  true,
			Materials:   []string{"ECONYL regenerated nylon", "recycled elastane"},
			Origin:      "Portugal",
		},
		{
			Name:          "Tidal Wrap Bikini",
			Description:   "Adjustable wrap top and high-cut brief, dyed with low-impact pigments.",
			Price:         180,
			DiscountPrice: floatPtr(145),
			Images:        []string{"/images/products/tidal-wrap-bikini-1.jpg"},
			Category:      "swimwear",
			InStock:       true,
			IsFeatured:    true,
			Materials:     []string{"recycled polyamide"},
			Origin:        "Italy",
		},
		{
			Name:         "Dunecrest Limited Maillot",
			Description:  "Numbered run of fifty, woven from a single lot of deadstock jacquard.",
			Price:        320,
			Images:       []string{"/images/products/dunecrest-maillot-1.jpg"},
			Category:     "swimwear",
			InStock:      true,
			IsLimited:    true,
			LimitedCount: intPtr(50),
			Materials:    []string{"deadstock jacquard", "organic cotton lining"},
			Origin:       "France",
		},
		{
			Name:        "Driftwood Linen Cover-Up",
			Description: "Open-weave cover-up in undyed European linen.",
			Price:       140,
			Images:      []string{"/images/products/driftwood-cover-up-1.jpg"},
			Category:    "beachwear",
			InStock:     true,
			Materials:   []string{"European flax linen"},
			Origin:      "Lithuania",
		},
		{
			Name:        "Seagrass Tote",
			Description: "Hand-woven seagrass tote with unbleached canvas lining.",
			Price:       85,
			Images:      []string{"/images/products/seagrass-tote-1.jpg"},
			Category:    "accessories",
			InStock:     true,
			Materials:   []string{"seagrass", "organic canvas"},
			Origin:      "Vietnam",
		},
	}
	for _, p := range products {
		if _, err := st.CreateProduct(p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}

	articles := []domain.NewArticle{
		{
			Title:    "What Regenerated Nylon Actually Is",
			Slug:     "what-regenerated-nylon-actually-is",
			Content:  "Regenerated nylon starts as fishing nets, fabric scraps and carpet flooring recovered from landfills and oceans...",
			Excerpt:  "A plain-language look at the material behind most of our swim range.",
			Category: "materials",
		},
		{
			Title:    "Caring for Swimwear So It Lasts",
			Slug:     "caring-for-swimwear-so-it-lasts",
			Content:  "Rinse in cold fresh water after every wear. Chlorine, sunscreen and salt are what break elastane down...",
			Excerpt:  "Five habits that double the life of a suit.",
			Category: "care",
		},
	}
	for _, a := range articles {
		if _, err := st.CreateArticle(a); err != nil {
			return fmt.Errorf("seed article %q: %w", a.Slug, err)
		}
	}

	settings := []domain.NewSetting{
		{Key: "store_name", Value: "Tidewear", Category: "general", Description: "Display name used across the storefront"},
		{Key: "store_currency", Value: "EUR", Category: "payment", Description: "ISO currency code for checkout"},
		{Key: "free_shipping_threshold", Value: "150", Category: "shipping", Description: "Order total above which shipping is free"},
		{Key: "newsletter_enabled", Value: "true", Category: "general"},
	}
	for _, s := range settings {
		if _, err := st.CreateSetting(s); err != nil {
			return fmt.Errorf("seed setting %q: %w", s.Key, err)
		}
	}
	return nil
}
