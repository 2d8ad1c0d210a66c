package db

import (
	"log"
	"os"
	"qanda/internal/models"
	"qanda/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=qanda port=5432 sslmode=disable"
	}

	var err error
	// TranslateError so unique violations surface as gorm.ErrDuplicatedKey
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	// Seed initial topics
	seedTopics()
}

// Migrate runs the schema migration on the given connection.
// Shared with the test setup so both paths migrate the same model set.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Topic{},
		&models.Question{},
		&models.Answer{},
		&models.Vote{},
	)
}

func seedTopics() {
	var count int64
	DB.Model(&models.Topic{}).Count(&count)
	if count > 0 {
		log.Println("Topics already seeded, skipping")
		return
	}

	topics := []models.Topic{
		{Name: "General", Description: "Anything that fits nowhere else"},
		{Name: "Programming", Description: "Code, tools and software craft"},
		{Name: "Machine Learning", Description: "Models, data and training"},
		{Name: "Career", Description: "Work, interviews and growth"},
	}

	for _, topic := range topics {
		topic.Slug = utils.Slugify(topic.Name)
		if err := DB.Create(&topic).Error; err != nil {
			log.Printf("Failed to create topic %s: %v", topic.Name, err)
		}
	}
	log.Println("Initial topics created successfully")
}
