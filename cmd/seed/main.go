package main

import (
	"github.com/sgtmake/storefront-api/internal/config"
	"github.com/sgtmake/storefront-api/internal/logger"
	"github.com/sgtmake/storefront-api/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加示例商品
	products := []models.Product{
		{
			Slug:        "alloy-sprocket-428",
			Name:        "Alloy Rear Sprocket 428",
			Description: "CNC machined 7075 aluminium rear sprocket, 428 pitch.",
			BasePrice:   models.NewMoneyFromDecimal(decimal.NewFromFloat(2499.00)),
			OfferPrice:  models.NewMoneyFromDecimal(decimal.NewFromFloat(1999.00)),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1558981403-c5f9899a28bc?w=800",
			}),
			Tags:     models.StringArray([]string{"drivetrain", "sprocket"}),
			Variants: models.StringArray([]string{"42T", "44T", "46T"}),
			Stock:    120,
			IsActive: true,
		},
		{
			Slug:        "braided-brake-line",
			Name:        "Braided Steel Brake Line",
			Description: "Stainless braided brake line with banjo fittings.",
			BasePrice:   models.NewMoneyFromDecimal(decimal.NewFromFloat(1599.00)),
			OfferPrice:  models.NewMoneyFromDecimal(decimal.NewFromFloat(1299.00)),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1591637333184-19aa84b3e01f?w=800",
			}),
			Tags:     models.StringArray([]string{"brakes"}),
			Variants: models.StringArray([]string{"front", "rear"}),
			Stock:    80,
			IsActive: true,
		},
		{
			Slug:        "chain-lube-500ml",
			Name:        "Chain Lube 500ml",
			Description: "All weather chain lubricant, 500ml aerosol.",
			BasePrice:   models.NewMoneyFromDecimal(decimal.NewFromFloat(599.00)),
			OfferPrice:  models.NewMoneyFromDecimal(decimal.NewFromFloat(499.00)),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1517524008697-84bbe3c3fd98?w=800",
			}),
			Tags:     models.StringArray([]string{"maintenance"}),
			Stock:    300,
			IsActive: true,
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", product.Slug)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Slug)
		}
	}

	stdLog.Printf("Seed completed")
}
