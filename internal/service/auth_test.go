package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/platewise/backend/internal/database"
	"github.com/pageza/platewise/backend/internal/models"
)

func setupAuthDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupAuthDB(t)
	auth := NewAuthService(db, "test-secret")

	token, err := auth.Register("test@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Password is stored hashed
	var user models.User
	require.NoError(t, db.Where("email = ?", "test@example.com").First(&user).Error)
	assert.NotEqual(t, "password123", user.PasswordHash)

	loginToken, err := auth.Login("test@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupAuthDB(t)
	auth := NewAuthService(db, "test-secret")

	_, err := auth.Register("test@example.com", "password123")
	require.NoError(t, err)

	_, err = auth.Register("test@example.com", "different456")
	require.Error(t, err)
	assert.Equal(t, "user already exists", err.Error())
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupAuthDB(t)
	auth := NewAuthService(db, "test-secret")

	_, err := auth.Register("test@example.com", "password123")
	require.NoError(t, err)

	_, err = auth.Login("test@example.com", "wrongpassword")
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestLoginUnknownEmail(t *testing.T) {
	db := setupAuthDB(t)
	auth := NewAuthService(db, "test-secret")

	_, err := auth.Login("nobody@example.com", "password123")
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestValidateToken(t *testing.T) {
	db := setupAuthDB(t)
	auth := NewAuthService(db, "test-secret")

	token, err := auth.Register("test@example.com", "password123")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.Where("email = ?", "test@example.com").First(&user).Error)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	db := setupAuthDB(t)
	auth := NewAuthService(db, "test-secret")
	other := NewAuthService(db, "other-secret")

	token, err := auth.Register("test@example.com", "password123")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	db := setupAuthDB(t)
	auth := NewAuthService(db, "test-secret")

	_, err := auth.ValidateToken("not-a-token")
	assert.Error(t, err)
}
