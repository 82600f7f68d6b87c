package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tulisify/tulisify/internal/entities"
)

// PasswordHasher turns a plaintext password into a stored hash.
type PasswordHasher func(password string) (string, error)

type demoUser struct {
	email    string
	password string
	name     string
	role     entities.UserRole
}

var demoUsers = []demoUser{
	{"admin@tulisify.com", "admin123456", "Admin Tulisify", entities.UserRoleAdmin},
	{"user@tulisify.com", "user123456", "User Tulisify", entities.UserRoleUser},
}

var demoBooks = []entities.Book{
	{
		Title:       "Pulang",
		Author:      "Tere Liye",
		Year:        2015,
		Category:    entities.CategorySU,
		Description: "Kisah perjalanan pulang seorang anak kampung ke dunia shadow economy.",
	},
	{
		Title:       "Pergi",
		Author:      "Tere Liye",
		Year:        2018,
		Category:    entities.CategoryThirteenPlus,
		Description: "Lanjutan kisah Bujang dalam menemukan makna pergi.",
	},
	{
		Title:       "Hujan",
		Author:      "Tere Liye",
		Year:        2016,
		Category:    entities.CategorySU,
		Description: "Tentang persahabatan, cinta, dan melupakan.",
	},
}

// SeedDemoData creates the demo accounts and books. Accounts are created
// only when their email is unused and books only when the table is empty,
// so running it on every start is safe.
func (d *Database) SeedDemoData(ctx context.Context, hash PasswordHasher) error {
	db := d.DB.WithContext(ctx)

	var adminID string
	for _, du := range demoUsers {
		var existing entities.User
		err := db.Where("email = ?", du.email).First(&existing).Error
		if err == nil {
			if du.role == entities.UserRoleAdmin {
				adminID = existing.ID
			}
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up %s: %w", du.email, err)
		}

		passwordHash, err := hash(du.password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", du.email, err)
		}
		user := entities.User{
			ID:           uuid.NewString(),
			Email:        du.email,
			Name:         du.name,
			Role:         du.role,
			PasswordHash: passwordHash,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", du.email, err)
		}
		if du.role == entities.UserRoleAdmin {
			adminID = user.ID
		}
		logrus.WithField("email", du.email).Info("created demo user")
	}

	var count int64
	if err := db.Model(&entities.Book{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count books: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, b := range demoBooks {
		book := b
		book.ID = uuid.NewString()
		book.CreatedBy = adminID
		if err := db.Create(&book).Error; err != nil {
			return fmt.Errorf("failed to create book %s: %w", b.Title, err)
		}
	}
	logrus.WithField("books", len(demoBooks)).Info("seeded demo books")
	return nil
}
