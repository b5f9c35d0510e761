package config

import (
	"errors"
	"log"

	"org-registry-backend/db/models"

	"gorm.io/gorm"
)

// SeedInitialUsers creates the test actors used by the import surface: one
// admin (sees every operation in the history) and one regular user.
func SeedInitialUsers(db *gorm.DB) error {
	seedUsers := []models.User{
		{Username: "admin", Email: "admin@example.com", IsAdmin: true},
		{Username: "user", Email: "user@example.com", IsAdmin: false},
	}

	for _, seed := range seedUsers {
		var existing models.User
		err := db.Where("username = ?", seed.Username).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&seed).Error; err != nil {
			log.Printf("Failed to seed user %s: %v", seed.Username, err)
			return err
		}
		log.Printf("Seeded user: %s", seed.Username)
	}
	return nil
}
