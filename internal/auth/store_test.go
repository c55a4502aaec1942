package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tasktracker/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestUserStore_CreateAndFind(t *testing.T) {
	store := NewUserStore(newTestDB(t))
	ctx := context.Background()

	u := &model.User{Username: "alice", PasswordHash: []byte{1, 2}, Salt: []byte{3, 4}}
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	found, err := store.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if found.ID != u.ID || found.Username != "alice" {
		t.Fatalf("found wrong user: %+v", found)
	}
}

func TestUserStore_DuplicateUsername(t *testing.T) {
	store := NewUserStore(newTestDB(t))
	ctx := context.Background()

	first := &model.User{Username: "alice", PasswordHash: []byte{1}, Salt: []byte{2}}
	if err := store.CreateUser(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}

	second := &model.User{Username: "alice", PasswordHash: []byte{5}, Salt: []byte{6}}
	if err := store.CreateUser(ctx, second); !errors.Is(err, errDuplicateUsername) {
		t.Fatalf("expected duplicate signal, got %v", err)
	}
}

func TestUserStore_UnknownUsername(t *testing.T) {
	store := NewUserStore(newTestDB(t))

	if _, err := store.FindByUsername(context.Background(), "ghost"); !errors.Is(err, errUserNotFound) {
		t.Fatalf("expected user-not-found signal, got %v", err)
	}
}
