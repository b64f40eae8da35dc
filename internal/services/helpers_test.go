package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopadmin/internal/auth"
	"shopadmin/internal/database"
	"shopadmin/internal/mailer"
	"shopadmin/internal/models"
	"shopadmin/internal/repositories"
	"shopadmin/internal/services"
)

const testJWTSecret = "test_jwt_secret"

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(user)
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// MockMailer records sent messages.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

// newTestDB opens a private in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

type authFixture struct {
	db      *gorm.DB
	users   *repositories.GORMUserRepository
	mail    *MockMailer
	tokens  *auth.JWTService
	service *services.AuthService
}

// newAuthFixture wires an AuthService against SQLite with a mock mailer.
func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := newTestDB(t)
	f := &authFixture{
		db:     db,
		users:  repositories.NewGORMUserRepository(db),
		mail:   new(MockMailer),
		tokens: auth.NewJWTService(testJWTSecret, 5*time.Minute, 24*time.Hour),
	}
	f.service = services.NewAuthService(services.AuthDeps{
		Users:        f.users,
		ResetTokens:  repositories.NewGORMResetTokenRepository(db),
		Accounts:     repositories.NewGORMTransactor(db),
		Tokens:       f.tokens,
		Revocations:  repositories.NewGORMRevocationStore(db),
		Hasher:       auth.NewBcryptHasher(bcrypt.MinCost),
		Mailer:       f.mail,
		ResetTTL:     time.Hour,
		ResetURLBase: "http://localhost:8000",
	})
	return f
}

func (f *authFixture) createUser(t *testing.T, email, password string, staff bool) *models.User {
	t.Helper()
	user := &models.User{Email: email, Password: hashPassword(t, password), IsStaff: staff, IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}
