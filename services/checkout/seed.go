package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// seedProducts is the demo catalog. Rows are keyed by name so re-running the
// seed is a no-op for products that already exist.
var seedProducts = []Product{
	{
		Name:           "Hootsi Classic Burger",
		Description:    "Beef patty, cheddar, house pickles, caramelized onion, and garlic mayo.",
		Price:          32000,
		ImageURL:       "https://picsum.photos/seed/hootsi-classic/600/400",
		AvailableUnits: 120,
	},
	{
		Name:           "Hootsi Crispy Chicken",
		Description:    "Buttermilk fried chicken, slaw, spicy aioli, and toasted brioche.",
		Price:          29500,
		ImageURL:       "https://picsum.photos/seed/hootsi-chicken/600/400",
		AvailableUnits: 90,
	},
	{
		Name:           "Smoky BBQ Stack",
		Description:    "Double beef, smoked bacon, cheddar, onion rings, and BBQ sauce.",
		Price:          42000,
		ImageURL:       "https://picsum.photos/seed/hootsi-bbq/600/400",
		AvailableUnits: 80,
	},
	{
		Name:           "Andean Veggie Melt",
		Description:    "Grilled portobello, roasted peppers, provolone, and basil pesto.",
		Price:          28000,
		ImageURL:       "https://picsum.photos/seed/hootsi-veggie/600/400",
		AvailableUnits: 70,
	},
	{
		Name:           "Patacon Crunch",
		Description:    "Crispy patacon base, shredded beef, avocado cream, and pico de gallo.",
		Price:          26000,
		ImageURL:       "https://picsum.photos/seed/hootsi-patacon/600/400",
		AvailableUnits: 60,
	},
	{
		Name:           "Coastal Fish Sandwich",
		Description:    "Beer-battered fish, lime slaw, and tartar sauce on sesame bun.",
		Price:          31000,
		ImageURL:       "https://picsum.photos/seed/hootsi-fish/600/400",
		AvailableUnits: 65,
	},
	{
		Name:           "Truffle Fries",
		Description:    "Crispy fries tossed with truffle oil and parmesan.",
		Price:          14000,
		ImageURL:       "https://picsum.photos/seed/hootsi-fries/600/400",
		AvailableUnits: 200,
	},
	{
		Name:           "Guava Glaze Wings",
		Description:    "Sticky guava glaze wings with toasted sesame.",
		Price:          22000,
		ImageURL:       "https://picsum.photos/seed/hootsi-wings/600/400",
		AvailableUnits: 110,
	},
	{
		Name:           "Mango Lime Lemonade",
		Description:    "Fresh mango puree with lime and sparkling lemonade.",
		Price:          9000,
		ImageURL:       "https://picsum.photos/seed/hootsi-lemonade/600/400",
		AvailableUnits: 160,
	},
	{
		Name:           "Cold Brew Tonic",
		Description:    "Cold brew coffee topped with citrus tonic and orange peel.",
		Price:          11000,
		ImageURL:       "https://picsum.photos/seed/hootsi-coldbrew/600/400",
		AvailableUnits: 140,
	},
	{
		Name:           "Choco Salted Shake",
		Description:    "Chocolate shake with sea salt caramel drizzle.",
		Price:          15000,
		ImageURL:       "https://picsum.photos/seed/hootsi-shake/600/400",
		AvailableUnits: 130,
	},
	{
		Name:           "Aji Pineapple Salad",
		Description:    "Pineapple, mixed greens, and aji-lime vinaigrette.",
		Price:          18000,
		ImageURL:       "https://picsum.photos/seed/hootsi-salad/600/400",
		AvailableUnits: 75,
	},
}

// SeedProducts inserts the demo catalog, skipping products whose name already
// exists
func SeedProducts(ctx context.Context, db *pgxpool.Pool) error {
	inserted := 0
	for _, product := range seedProducts {
		now := time.Now()
		tag, err := db.Exec(ctx, `
			INSERT INTO products (id, name, description, price, image_url, available_units, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (name) DO NOTHING
		`, uuid.New().String(), product.Name, product.Description, product.Price,
			product.ImageURL, product.AvailableUnits, now, now)
		if err != nil {
			return fmt.Errorf("failed to seed product %q: %w", product.Name, err)
		}
		inserted += int(tag.RowsAffected())
	}

	log.Printf("✅ Product seed complete: %d inserted, %d already present", inserted, len(seedProducts)-inserted)
	return nil
}
