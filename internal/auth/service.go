package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/morpheus-mall/mall-backend/config"
	"github.com/morpheus-mall/mall-backend/internal/auditlog"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("your account is inactive")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidToken       = errors.New("invalid token")
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Claims carried by access tokens.
type Claims struct {
	UserID   uint   `json:"user_id"`
	RoleName string `json:"role"`
	jwt.RegisteredClaims
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	Login(ctx context.Context, in LoginInput) (*TokenPair, *User, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ParseAccessToken(token string) (*Claims, error)
	GetUserByID(ctx context.Context, userID uint) (User, error)
	ListUsers(ctx context.Context, roleName string, page, limit int) ([]User, int64, error)
	AssignRole(ctx context.Context, actorID, userID uint, roleName, ip string) error
	GetPublicRoles(ctx context.Context) ([]UserRole, error)
}

type service struct {
	repo          Repository
	audit         auditlog.Service
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewService(r Repository, audit auditlog.Service, cfg *config.Config) Service {
	return &service{
		repo:          r,
		audit:         audit,
		accessSecret:  cfg.JWTAccessSecret,
		refreshSecret: cfg.JWTRefreshSecret,
		accessTTL:     time.Duration(cfg.JWTAccessTTLHours) * time.Hour,
		refreshTTL:    time.Duration(cfg.JWTRefreshTTLHours) * time.Hour,
		now:           time.Now,
	}
}

// =============================
// Register
// =============================

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Phone    string
}

// Register creates a shopper account. Operator roles are granted afterwards
// through AssignRole.
func (s *service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	role, err := s.repo.FindRoleByName(ctx, RoleCustomer)
	if err != nil {
		return nil, fmt.Errorf("load customer role: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		RoleID:       role.ID,
		Role:         *role,
		Status:       StatusActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// =============================
// Login
// =============================

type LoginInput struct {
	Email    string
	Password string
}

func (s *service) Login(ctx context.Context, in LoginInput) (*TokenPair, *User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if user.Status != StatusActive {
		return nil, nil, ErrInactiveAccount
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, user, nil
}

func (s *service) generateAccessToken(user *User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		RoleName: user.Role.RoleName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.accessSecret))
}

func (s *service) generateRefreshToken(user *User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.refreshSecret))
}

func (s *service) parse(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseAccessToken validates an access token and returns its claims.
func (s *service) ParseAccessToken(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, s.accessSecret)
}

// =============================
// Refresh
// =============================

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parse(refreshToken, s.refreshSecret)
	if err != nil {
		return "", err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", ErrUserNotFound
	}
	if user.Status != StatusActive {
		return "", ErrInactiveAccount
	}
	return s.generateAccessToken(&user)
}

func (s *service) GetUserByID(ctx context.Context, userID uint) (User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) ListUsers(ctx context.Context, roleName string, page, limit int) ([]User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, roleName, limit, (page-1)*limit)
}

// AssignRole moves a user to another role and records it in the audit log.
func (s *service) AssignRole(ctx context.Context, actorID, userID uint, roleName, ip string) error {
	details := map[string]interface{}{
		"target_user_id": userID,
		"role":           roleName,
	}

	if !IsKnownRole(roleName) {
		details["error"] = "unknown role"
		s.logAudit(ctx, actorID, "USER_ROLE_ASSIGNED", details, ip, auditlog.StatusFailure)
		return ErrInvalidRole
	}

	role, err := s.repo.FindRoleByName(ctx, roleName)
	if err != nil {
		return fmt.Errorf("load role %s: %w", roleName, err)
	}

	if err := s.repo.UpdateRole(ctx, userID, role.ID); err != nil {
		details["error"] = err.Error()
		s.logAudit(ctx, actorID, "USER_ROLE_ASSIGNED", details, ip, auditlog.StatusFailure)
		return err
	}

	s.logAudit(ctx, actorID, "USER_ROLE_ASSIGNED", details, ip, auditlog.StatusSuccess)
	return nil
}

func (s *service) GetPublicRoles(ctx context.Context) ([]UserRole, error) {
	return s.repo.GetPublicRoles(ctx)
}

func (s *service) logAudit(ctx context.Context, actorID uint, action string, details map[string]interface{}, ip, status string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogAction(ctx, &actorID, nil, action, details, ip, status); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("action", action).Msg("audit log write failed")
	}
}
