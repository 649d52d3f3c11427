package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"storefront/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthUseCase interface {
	Register(ctx context.Context, name, email, phone, password string) (*domain.User, error)
	// Login authenticates a user holding the given role and issues a token.
	Login(ctx context.Context, email, password string, role domain.Role) (*domain.AuthToken, error)
	Me(ctx context.Context, userID int64) (*domain.User, error)
	// ParseToken validates a bearer token and returns its principal.
	ParseToken(token string) (*domain.Principal, error)
	// EnsureAdmin creates the admin account, or resets its password if it exists.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type tokenClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type authUseCase struct {
	userRepo domain.UserRepository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	log      *logrus.Logger
}

func NewAuthUseCase(repo domain.UserRepository, secret string, ttl time.Duration, logger *logrus.Logger) AuthUseCase {
	return &authUseCase{
		userRepo: repo,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		log:      logger,
	}
}

func (uc *authUseCase) Register(ctx context.Context, name, email, phone, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	uc.log.Infof("Use Case: Attempting registration for email: %s", email)

	if name == "" {
		uc.log.Warn("Use Case: Registration failed - empty name")
		return nil, fmt.Errorf("%w: user name cannot be empty", domain.ErrInvalidInput)
	}
	if !isValidEmail(email) {
		uc.log.Warnf("Use Case: Registration failed - invalid email format: %s", email)
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if err := validatePassword(password); err != nil {
		uc.log.Warnf("Use Case: Registration failed - password validation error: %v", err)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", email, err)
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}

	user, err := uc.userRepo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(phone),
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
	})
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create user %s: %v", email, err)
		return nil, err
	}

	uc.log.Infof("Use Case: User registered successfully. ID: %d, Email: %s", user.ID, user.Email)
	return user, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string, role domain.Role) (*domain.AuthToken, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	invalid := fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)

	if !isValidEmail(email) || password == "" {
		return nil, invalid
	}

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("Use Case: Auth failed - user not found: %s", email)
			return nil, invalid
		}
		uc.log.Errorf("Use Case: Error retrieving user %s during auth: %v", email, err)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			uc.log.Warnf("Use Case: Auth failed - incorrect password for user %s (ID: %d)", email, user.ID)
			return nil, invalid
		}
		return nil, fmt.Errorf("internal error during authentication: %w", err)
	}
	if user.Role != role {
		uc.log.Warnf("Use Case: Auth failed - user %d has role %s, %s required", user.ID, user.Role, role)
		return nil, invalid
	}

	token, err := uc.issue(user)
	if err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: Authentication successful for user %s (ID: %d)", email, user.ID)
	return token, nil
}

func (uc *authUseCase) issue(user *domain.User) (*domain.AuthToken, error) {
	now := uc.now()
	expires := now.Add(uc.ttl)
	claims := tokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		return nil, fmt.Errorf("could not sign token: %w", err)
	}
	return &domain.AuthToken{Token: signed, ExpiresAt: expires, User: user}, nil
}

func (uc *authUseCase) ParseToken(token string) (*domain.Principal, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return uc.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthorized)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("%w: malformed token subject", domain.ErrUnauthorized)
	}
	if claims.Role != domain.RoleCustomer && claims.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role in token", domain.ErrUnauthorized)
	}
	return &domain.Principal{UserID: userID, Role: claims.Role}, nil
}

func (uc *authUseCase) Me(ctx context.Context, userID int64) (*domain.User, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: invalid user ID", domain.ErrInvalidInput)
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get user profile for ID %d: %v", userID, err)
		return nil, err
	}
	return user, nil
}

func (uc *authUseCase) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !isValidEmail(email) {
		return fmt.Errorf("%w: invalid admin email", domain.ErrInvalidInput)
	}
	if len(password) < 8 {
		return fmt.Errorf("%w: admin password must be at least 8 characters long", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("internal error processing password: %w", err)
	}
	admin, err := uc.userRepo.UpsertAdmin(ctx, &domain.User{Name: "Administrator", Email: email, PasswordHash: string(hash)})
	if err != nil {
		return err
	}
	uc.log.Infof("Use Case: Admin account %s ready (ID: %d)", admin.Email, admin.ID)
	return nil
}

// isValidEmail is a basic shape check: one '@' and a dotted domain.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	domainParts := strings.Split(parts[1], ".")
	return len(domainParts) >= 2 && domainParts[0] != "" && domainParts[len(domainParts)-1] != ""
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", domain.ErrInvalidInput)
	}
	var hasLetter, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("%w: password must contain letters and digits", domain.ErrInvalidInput)
	}
	return nil
}
