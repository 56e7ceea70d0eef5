package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRepo opens a private in-memory database and runs the full
// migration, partial indexes included.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepo(conn)
}

func mustCreateUser(t *testing.T, r *Repo, email string) *models.User {
	t.Helper()
	u, err := r.FindOrCreateUser(context.Background(), email, "", uuid.NewString())
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func mustCreateStream(t *testing.T, r *Repo, name, ownerID string) *models.Stream {
	t.Helper()
	st, err := r.CreateStream(context.Background(), name, "", ownerID)
	if err != nil {
		t.Fatalf("create stream %s: %v", name, err)
	}
	return st
}
