package storage

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tnadu/Sparrow-The-Trip-Planner-Backend/models"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connection to db: " + dbError.Error())
	}

	DB = db
	return db
}

func performMigrations(db *gorm.DB) {
	db.AutoMigrate(
		&models.User{},
		&models.Member{},
		&models.Group{},
		&models.BelongsTo{},
		&models.Route{},
		&models.Attraction{},
		&models.IsWithin{},
		&models.Status{},
		&models.Notebook{},
		&models.FlagType{},
		&models.RatingFlag{},
		&models.Tag{},
		&models.IsTagged{},
		&models.AuditLog{},
	)
}

// SeedLookupTables fills the status and flag-type tables on first boot.
// Run once per empty table, never again.
func SeedLookupTables(db *gorm.DB) {
	var statusCount int64
	db.Model(&models.Status{}).Count(&statusCount)
	if statusCount == 0 {
		for _, name := range models.DefaultStatuses {
			db.Create(&models.Status{Name: name})
		}
		log.Println("seeded default statuses")
	}

	var flagTypeCount int64
	db.Model(&models.FlagType{}).Count(&flagTypeCount)
	if flagTypeCount == 0 {
		for _, name := range models.DefaultFlagTypes {
			db.Create(&models.FlagType{Name: name})
		}
		log.Println("seeded default flag types")
	}
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	performMigrations(db)
	SeedLookupTables(db)
	return db
}
