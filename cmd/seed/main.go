package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/volatiletech/null/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"go-payments.backend/internal/config"
	"go-payments.backend/internal/domain/entities"
)

func main() {
	cleanFlag := flag.Bool("clean", false, "Clean database before seeding")
	cleanOnlyFlag := flag.Bool("clean-only", false, "Only clean database, do not seed")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.Database.URL()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&entities.User{},
		&entities.Asset{},
		&entities.PaymentTemplate{},
		&entities.Transfer{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if *cleanFlag || *cleanOnlyFlag {
		log.Println("Cleaning database...")
		if err := cleanDatabase(db); err != nil {
			log.Fatalf("Failed to clean database: %v", err)
		}
		log.Println("Database cleaned successfully!")

		if *cleanOnlyFlag {
			return
		}
	}

	log.Println("Starting database seeding...")

	assets, err := seedAssets(db)
	if err != nil {
		log.Fatalf("Failed to seed assets: %v", err)
	}
	log.Printf("Created %d assets", len(assets))

	payer, err := seedUser(db, "0x6969174FD72466430a46e18234D0b530c9FD5f49", "jo@example.com", "jo")
	if err != nil {
		log.Fatalf("Failed to seed payer: %v", err)
	}
	log.Printf("Created user: %s", payer.EthereumAddress)

	payee, err := seedUser(db, "0x1234567890abcdef1234567890abcdef12345678", "alex@example.com", "alex")
	if err != nil {
		log.Fatalf("Failed to seed payee: %v", err)
	}
	log.Printf("Created user: %s", payee.EthereumAddress)

	template, err := seedTemplate(db, payer, payee.EthereumAddress, assets)
	if err != nil {
		log.Fatalf("Failed to seed payment template: %v", err)
	}
	log.Printf("Created payment template %q with %d transfers", template.Name, len(template.Transfers))

	log.Println("Database seeding completed successfully!")
}

func seedAssets(db *gorm.DB) ([]entities.Asset, error) {
	assets := []entities.Asset{
		{
			Symbol:          entities.AssetSymbolUSDC,
			Name:            "USD Coin",
			Decimals:        6,
			ContractAddress: "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913",
			ChainID:         8453,
		},
		{
			Symbol:          entities.AssetSymbolETH,
			Name:            "Ethereum",
			Decimals:        18,
			ContractAddress: entities.NativeAssetAddress,
			ChainID:         8453,
		},
		{
			Symbol:          entities.AssetSymbolEURe,
			Name:            "Monerium EUR",
			Decimals:        18,
			ContractAddress: "0x60a3e35cc302bfa44cb288bc5a4f316fdb1adb42",
			ChainID:         8453,
		},
		{
			Symbol:          entities.AssetSymbolUSDC,
			Name:            "USD Coin",
			Decimals:        6,
			ContractAddress: "0x0b2c639c533813f4aa9d7837caf62653d097ff85",
			ChainID:         10,
		},
		{
			Symbol:          entities.AssetSymbolETH,
			Name:            "Ethereum",
			Decimals:        18,
			ContractAddress: entities.NativeAssetAddress,
			ChainID:         10,
		},
	}

	for i := range assets {
		var existing entities.Asset
		result := db.Where("symbol = ? AND chain_id = ?", assets[i].Symbol, assets[i].ChainID).First(&existing)
		if result.Error == nil {
			log.Printf("Asset %s on chain %d already exists, skipping", assets[i].Symbol, assets[i].ChainID)
			assets[i] = existing
			continue
		}

		if err := db.Create(&assets[i]).Error; err != nil {
			return nil, fmt.Errorf("failed to create asset %s: %w", assets[i].Symbol, err)
		}
	}

	return assets, nil
}

func seedUser(db *gorm.DB, ethAddress, email, username string) (*entities.User, error) {
	var existing entities.User
	result := db.Where("ethereum_address = ?", ethAddress).First(&existing)
	if result.Error == nil {
		log.Printf("User %s already exists, using existing", ethAddress)
		return &existing, nil
	}

	user := entities.User{
		EthereumAddress: ethAddress,
		Email:           &email,
		Username:        &username,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func seedTemplate(db *gorm.DB, owner *entities.User, destination string, assets []entities.Asset) (*entities.PaymentTemplate, error) {
	var existing entities.PaymentTemplate
	result := db.Where("user_id = ? AND name = ?", owner.ID, "Recurring Payment").First(&existing)
	if result.Error == nil {
		log.Println("Payment template already exists, using existing")
		return &existing, nil
	}

	dayMillis := int64(24 * time.Hour / time.Millisecond)
	template := entities.PaymentTemplate{
		UserID:            owner.ID,
		Name:              "Recurring Payment",
		ScheduledAt:       null.TimeFrom(time.Now().Add(24 * time.Hour).UTC()),
		RecurringInterval: null.Int64From(dayMillis),
		Transfers: []entities.Transfer{
			{
				SourceUserID:           owner.ID,
				DestinationUserAddress: destination,
				Amount:                 "100.50",
				AssetID:                assets[0].ID,
				Status:                 entities.TransferStatusPending,
			},
			{
				SourceUserID:           owner.ID,
				DestinationUserAddress: destination,
				Amount:                 "250.75",
				AssetID:                assets[2].ID,
				Status:                 entities.TransferStatusPending,
			},
		},
	}

	if err := db.Create(&template).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment template: %w", err)
	}
	return &template, nil
}

// cleanDatabase deletes all records in reverse dependency order to respect
// foreign key constraints.
func cleanDatabase(db *gorm.DB) error {
	result := db.Where("1 = 1").Delete(&entities.Transfer{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete transfers: %w", result.Error)
	}
	log.Printf("Deleted %d transfers", result.RowsAffected)

	result = db.Where("1 = 1").Delete(&entities.PaymentTemplate{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete payment templates: %w", result.Error)
	}
	log.Printf("Deleted %d payment templates", result.RowsAffected)

	result = db.Where("1 = 1").Delete(&entities.User{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete users: %w", result.Error)
	}
	log.Printf("Deleted %d users", result.RowsAffected)

	// Assets are reference data and kept.
	return nil
}
