package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"storefront/internal/model"
)

func setupUserMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create GORM database: %v", err)
	}

	return gormDB, mock
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := setupUserMockDB(t)
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()

	repo := NewUserRepository(db)

	user := &model.User{
		Username:     "alice",
		PasswordHash: "$2a$10$hash",
		Status:       model.UserStatusNormal,
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), user)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db, mock := setupUserMockDB(t)
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()

	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "status"}).
		AddRow(1, "alice", "$2a$10$hash", 1)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE username = \\?").
		WithArgs("alice", 1).
		WillReturnRows(rows)

	user, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Expected username alice, got %s", user.Username)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

func TestUserRepository_GetByUsername_NotFound(t *testing.T) {
	db, mock := setupUserMockDB(t)
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()

	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE username = \\?").
		WithArgs("nobody", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	user, err := repo.GetByUsername(context.Background(), "nobody")
	if err == nil {
		t.Error("Expected an error for missing user")
	}
	if user != nil {
		t.Error("Expected nil user")
	}
}

func TestUserRepository_ExistsByUsername(t *testing.T) {
	db, mock := setupUserMockDB(t)
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()

	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users` WHERE username = \\?").
		WithArgs("alice").
		WillReturnRows(rows)

	exists, err := repo.ExistsByUsername(context.Background(), "alice")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if !exists {
		t.Error("Expected user to exist")
	}
}

func TestUserRepository_UpdateLastLogin(t *testing.T) {
	db, mock := setupUserMockDB(t)
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()

	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateLastLogin(context.Background(), 1)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}
