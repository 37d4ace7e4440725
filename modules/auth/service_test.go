package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/example/taskboard/domain/user"
)

func setupAuthService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	// MinCost keeps the suite fast; cost does not change the contract.
	hasher := &PasswordHasher{cost: bcrypt.MinCost}
	jwtManager := NewJWTManager(JWTConfig{
		SecretKey:     "test-secret-key",
		TokenDuration: time.Hour,
		Issuer:        "taskboard-test",
	})

	return NewAuthService(NewUserRepository(db), hasher, jwtManager)
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and issues token", func(t *testing.T) {
		service := setupAuthService(t)

		result, err := service.SignUp(ctx, "ada@example.com", "password123", "Ada", "Lovelace")
		if err != nil {
			t.Fatalf("SignUp() error = %v", err)
		}
		if result.User.ID == "" {
			t.Error("user ID not assigned")
		}
		if result.User.Email != "ada@example.com" {
			t.Errorf("Email = %q, want %q", result.User.Email, "ada@example.com")
		}
		if result.User.FirstName != "Ada" || result.User.LastName != "Lovelace" {
			t.Errorf("name = %q %q, want Ada Lovelace", result.User.FirstName, result.User.LastName)
		}
		if result.User.PasswordHash == "password123" {
			t.Error("password stored in plaintext")
		}
		if result.Token == "" {
			t.Error("no token issued")
		}
		if result.ExpiresIn != 3600 {
			t.Errorf("ExpiresIn = %d, want 3600", result.ExpiresIn)
		}

		claims, err := service.ValidateToken(ctx, result.Token)
		if err != nil {
			t.Fatalf("ValidateToken() error = %v", err)
		}
		if claims.UserID != result.User.ID {
			t.Errorf("token UserID = %q, want %q", claims.UserID, result.User.ID)
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		service := setupAuthService(t)

		if _, err := service.SignUp(ctx, "ada@example.com", "password123", "Ada", "Lovelace"); err != nil {
			t.Fatalf("first SignUp() error = %v", err)
		}
		_, err := service.SignUp(ctx, "ada@example.com", "different-pass", "Other", "Person")
		if !errors.Is(err, ErrUserExists) {
			t.Errorf("SignUp() error = %v, want ErrUserExists", err)
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		service := setupAuthService(t)

		tests := []struct {
			name     string
			email    string
			password string
			wantErr  error
		}{
			{
				name:     "invalid email",
				email:    "not-an-email",
				password: "password123",
				wantErr:  ErrInvalidEmail,
			},
			{
				name:     "short password",
				email:    "ok@example.com",
				password: "short",
				wantErr:  ErrWeakPassword,
			},
			{
				name:     "over bcrypt limit",
				email:    "ok@example.com",
				password: string(make([]byte, 73)),
				wantErr:  ErrPasswordTooLong,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := service.SignUp(ctx, tt.email, tt.password, "", "")
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("SignUp() error = %v, want %v", err, tt.wantErr)
				}
			})
		}
	})
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	service := setupAuthService(t)

	signedUp, err := service.SignUp(ctx, "grace@example.com", "password123", "Grace", "Hopper")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	t.Run("correct credentials", func(t *testing.T) {
		result, err := service.SignIn(ctx, "grace@example.com", "password123")
		if err != nil {
			t.Fatalf("SignIn() error = %v", err)
		}
		if result.User.ID != signedUp.User.ID {
			t.Errorf("user ID = %q, want %q", result.User.ID, signedUp.User.ID)
		}
		if result.Token == "" {
			t.Error("no token issued")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.SignIn(ctx, "grace@example.com", "wrong-password")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("SignIn() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		_, err := service.SignIn(ctx, "nobody@example.com", "password123")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("SignIn() error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	service := setupAuthService(t)

	signedUp, err := service.SignUp(ctx, "alan@example.com", "password123", "Alan", "Turing")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	user, err := service.GetUser(ctx, signedUp.User.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.Email != "alan@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "alan@example.com")
	}

	if _, err := service.GetUser(ctx, "missing-id"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUser() error = %v, want ErrUserNotFound", err)
	}
}
