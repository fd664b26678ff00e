package devserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound signals a missing user row.
var ErrNotFound = errors.New("user not found")

// User is the dev backend's user row.
type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username         string    `gorm:"uniqueIndex;not null"`
	Email            string    `gorm:"uniqueIndex;not null"`
	PasswordHash     string    `gorm:"not null"`
	FirstName        string
	LastName         string
	AvatarURL        string
	PrimaryContact   string
	SecondaryContact string
	ProfileJSON      string `gorm:"default:'{}'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Store wraps the sqlite-backed user table.
type Store struct {
	conn *gorm.DB
}

// OpenStore boots the sqlite store and runs the schema migration. Use
// ":memory:" for tests.
func OpenStore(path string) (*Store, error) {
	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if err := conn.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// CreateUser hashes the password and inserts the row.
func (s *Store) CreateUser(ctx context.Context, user *User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Username == "" {
		user.Username = strings.SplitN(user.Email, "@", 2)[0]
	}
	if user.ProfileJSON == "" {
		user.ProfileJSON = "{}"
	}
	user.PasswordHash = string(hash)
	return s.conn.WithContext(ctx).Create(user).Error
}

// Authenticate returns the user when the email/password pair matches.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// FindByEmail loads a user by email.
func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.conn.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by primary key.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := s.conn.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies non-empty profile fields and returns the fresh row.
func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, avatarURL, primaryContact, secondaryContact string) (*User, error) {
	updates := map[string]any{}
	if avatarURL != "" {
		updates["avatar_url"] = avatarURL
	}
	if primaryContact != "" {
		updates["primary_contact"] = primaryContact
	}
	if secondaryContact != "" {
		updates["secondary_contact"] = secondaryContact
	}
	if len(updates) > 0 {
		if err := s.conn.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.FindByID(ctx, id)
}
