package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/taskboard/config"
	domain "github.com/example/taskboard/domain/user"
)

// AuthModule provides account and token services.
type AuthModule struct {
	cfg     config.AuthConfig
	dbPath  string
	db      *gorm.DB
	service *AuthService
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(cfg config.AuthConfig, dbPath string) *AuthModule {
	return &AuthModule{
		cfg:    cfg,
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the user store and wires the auth service.
func (m *AuthModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	repo := NewUserRepository(db)
	hasher := NewPasswordHasher()
	jwtManager := NewJWTManager(JWTConfig{
		SecretKey:     m.cfg.JWTSecret,
		TokenDuration: m.cfg.TokenTTL,
		Issuer:        m.cfg.Issuer,
	})
	m.service = NewAuthService(repo, hasher, jwtManager)

	log.Printf("[auth] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *AuthModule) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{Healthy: false, Message: "database not initialized"}
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("failed to get database connection: %v", err)}
	}
	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"database": m.dbPath},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "signup", json.Unmarshal, json.Marshal, m.handleSignUp,
	); err != nil {
		return fmt.Errorf("failed to register signup service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "signin", json.Unmarshal, json.Marshal, m.handleSignIn,
	); err != nil {
		return fmt.Errorf("failed to register signin service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}

	log.Println("[auth] Registered services: signup, signin, validate-token, get-user")
	return nil
}

// handleSignUp handles account registration.
func (m *AuthModule) handleSignUp(ctx context.Context, req SignUpRequest, _ *mono.Msg) (AuthResponse, error) {
	result, err := m.service.SignUp(ctx, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return AuthResponse{}, err
	}
	return toAuthResponse(result), nil
}

// handleSignIn handles credential verification.
func (m *AuthModule) handleSignIn(ctx context.Context, req SignInRequest, _ *mono.Msg) (AuthResponse, error) {
	result, err := m.service.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return AuthResponse{}, err
	}
	return toAuthResponse(result), nil
}

// handleValidateToken validates a bearer token. Validation failures are
// reported in the response body rather than as errors so that callers can
// distinguish an invalid token from a failed service call.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrExpiredToken) {
			return ValidateTokenResponse{Valid: false, Error: err.Error()}, nil
		}
		return ValidateTokenResponse{}, err
	}
	return ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

// handleGetUser retrieves a user by ID.
func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return GetUserResponse{}, err
	}
	return GetUserResponse{User: toUserPayload(user)}, nil
}

func toAuthResponse(result *AuthResult) AuthResponse {
	return AuthResponse{
		User:      toUserPayload(result.User),
		Token:     result.Token,
		ExpiresIn: result.ExpiresIn,
	}
}

func toUserPayload(user *domain.User) UserPayload {
	return UserPayload{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
}
