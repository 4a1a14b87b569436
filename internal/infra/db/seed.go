package db

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// SeedProducts は商品テーブルが空のときだけキッチン用品の初期データを入れる。
func SeedProducts(ctx context.Context, products repo.ProductRepository) error {
	count, err := products.CountAll(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, p := range seedCatalog() {
		if _, err := products.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func seedCatalog() []model.Product {
	return []model.Product{
		{Name: "Chef's Knife 8\"", Description: "High-carbon stainless steel chef's knife.", Price: 49.99, Image: "/images/chefs-knife.jpg", Category: "cutlery", IsActive: true},
		{Name: "Bamboo Cutting Board", Description: "Large end-grain bamboo cutting board.", Price: 24.50, Image: "/images/cutting-board.jpg", Category: "prep", IsActive: true},
		{Name: "Cast Iron Skillet 10\"", Description: "Pre-seasoned cast iron skillet.", Price: 34.99, Image: "/images/skillet.jpg", Category: "cookware", IsActive: true},
		{Name: "Silicone Spatula Set", Description: "Heat resistant spatula set of 4.", Price: 12.99, Image: "/images/spatula-set.jpg", Category: "utensils", IsActive: true},
		{Name: "Digital Kitchen Scale", Description: "Precision scale, 1g resolution.", Price: 19.99, Image: "/images/kitchen-scale.jpg", Category: "gadgets", IsActive: true},
		{Name: "Stainless Mixing Bowls", Description: "Nesting mixing bowls, set of 5.", Price: 29.99, Image: "/images/mixing-bowls.jpg", Category: "prep", IsActive: true},
		{Name: "French Press 1L", Description: "Borosilicate glass french press.", Price: 27.00, Image: "/images/french-press.jpg", Category: "coffee", IsActive: true},
		{Name: "Whisk Balloon 12\"", Description: "Stainless steel balloon whisk.", Price: 8.99, Image: "/images/whisk.jpg", Category: "utensils", IsActive: true},
	}
}
