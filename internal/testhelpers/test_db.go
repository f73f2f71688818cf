// Package testhelpers provides a throwaway users database for tests.
package testhelpers

import (
	"fmt"
	"strings"
	"testing"

	"prepwise/interview/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	openSQLite      = func(dsn string) (*gorm.DB, error) { return gorm.Open(sqlite.Open(dsn), &gorm.Config{}) }
	migrateSchema   = func(db *gorm.DB) error { return db.AutoMigrate(&models.User{}) }
	dropUserTableFn = func(db *gorm.DB) error { return db.Migrator().DropTable(&models.User{}) }
)

// openTestDB opens a shared-cache in-memory database keyed by name, so each
// test gets its own schema
func openTestDB(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.NewReplacer("/", "_", " ", "_").Replace(name))
	db, err := openSQLite(dsn)
	if err != nil {
		return nil, fmt.Errorf("open test database: %w", err)
	}
	if err := migrateSchema(db); err != nil {
		return nil, fmt.Errorf("migrate test database: %w", err)
	}
	return db, nil
}

// SetupTestDB returns a migrated users database that is closed when the test ends
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := openTestDB(t.Name())
	if err != nil {
		t.Fatalf("%v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedUser inserts a user whose password hash matches password
func SeedUser(t *testing.T, db *gorm.DB, name, email, password string) *models.User {
	t.Helper()
	// lowest cost keeps the suite fast
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Name: name, Email: email, PasswordHash: string(hash)}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

// DropUserTable removes the users table to force repository errors.
func DropUserTable(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := dropUserTableFn(db); err != nil {
		t.Fatalf("drop user table: %v", err)
	}
}
