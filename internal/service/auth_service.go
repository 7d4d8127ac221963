package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/notelyhq/notely/internal/domain"
	"github.com/notelyhq/notely/internal/mail"
	"github.com/notelyhq/notely/internal/repository"
	"github.com/notelyhq/notely/internal/storage"
	"github.com/notelyhq/notely/pkg/password"
)

var (
	ErrEmailTaken    = errors.New("email already registered")
	ErrInvalidCreds  = errors.New("invalid email or password")
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("current password is incorrect")
	ErrMailDelivery  = errors.New("email could not be sent")
)

const (
	activationTokenTTL = 24 * time.Hour
	resetTokenTTL      = time.Hour
)

type AuthService struct {
	userRepo  repository.UserRepository
	mailer    mail.Mailer
	store     storage.ObjectStore
	jwtSecret []byte
	clientURL string
}

func NewAuthService(userRepo repository.UserRepository, mailer mail.Mailer, store storage.ObjectStore, jwtSecret, clientURL string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		mailer:    mailer,
		store:     store,
		jwtSecret: []byte(jwtSecret),
		clientURL: clientURL,
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// Register creates an inactive account and mails an activation link. The
// account cannot use protected routes until the token is exchanged.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	rawToken, tokenHash, err := newOneTimeToken()
	if err != nil {
		return fmt.Errorf("generating activation token: %w", err)
	}
	expire := time.Now().Add(activationTokenTTL)

	now := time.Now()
	user := &domain.User{
		ID:               uuid.New(),
		Email:            input.Email,
		Name:             input.Name,
		PasswordHash:     hash,
		IsActivated:      false,
		ActivationToken:  &tokenHash,
		ActivationExpire: &expire,
		Preferences:      map[string]string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	activationURL := s.clientURL + "/activate/" + rawToken
	body := fmt.Sprintf(`<h1>Account Activation</h1>
<p>Please click the link below to activate your account:</p>
<a href="%s" target="_blank">Activate Account</a>`, activationURL)

	if err := s.mailer.Send(user.Email, "Account Activation", body); err != nil {
		log.Printf("auth: sending activation mail to %s: %v", user.Email, err)
		user.ActivationToken = nil
		user.ActivationExpire = nil
		if uerr := s.userRepo.Update(ctx, user); uerr != nil {
			return fmt.Errorf("clearing activation token: %w", uerr)
		}
		return ErrMailDelivery
	}

	return nil
}

// Activate exchanges a one-time activation token for a logged-in session.
func (s *AuthService) Activate(ctx context.Context, token string) (*AuthResponse, error) {
	user, err := s.userRepo.GetByActivationToken(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	if user == nil || user.ActivationExpire == nil || user.ActivationExpire.Before(time.Now()) {
		return nil, ErrInvalidToken
	}

	user.IsActivated = true
	user.ActivationToken = nil
	user.ActivationExpire = nil
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("activating user: %w", err)
	}

	return s.respondWithToken(user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCreds
	}

	if !password.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCreds
	}

	return s.respondWithToken(user)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

type UpdateDetailsInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (s *AuthService) UpdateDetails(ctx context.Context, userID uuid.UUID, input UpdateDetailsInput) (*domain.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		existing, err := s.userRepo.GetByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != user.ID {
			return nil, ErrEmailTaken
		}
		user.Email = *input.Email
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating details: %w", err)
	}
	return user, nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) (*AuthResponse, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !password.Verify(current, user.PasswordHash) {
		return nil, ErrWrongPassword
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating password: %w", err)
	}

	return s.respondWithToken(user)
}

// UpdatePreferences merges the given keys into the user's preference map.
func (s *AuthService) UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs map[string]string) (map[string]string, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Preferences == nil {
		user.Preferences = map[string]string{}
	}
	for k, v := range prefs {
		user.Preferences[k] = v
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating preferences: %w", err)
	}
	return user.Preferences, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	rawToken, tokenHash, err := newOneTimeToken()
	if err != nil {
		return fmt.Errorf("generating reset token: %w", err)
	}
	expire := time.Now().Add(resetTokenTTL)

	user.ResetToken = &tokenHash
	user.ResetExpire = &expire
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}

	resetURL := s.clientURL + "/resetpassword/" + rawToken
	body := fmt.Sprintf(`<h1>Password Reset</h1>
<p>You are receiving this email because you (or someone else) has requested the reset of a password.</p>
<p>Please click the link below to reset your password:</p>
<a href="%s" target="_blank">Reset Password</a>`, resetURL)

	if err := s.mailer.Send(user.Email, "Password Reset", body); err != nil {
		log.Printf("auth: sending reset mail to %s: %v", user.Email, err)
		user.ResetToken = nil
		user.ResetExpire = nil
		if uerr := s.userRepo.Update(ctx, user); uerr != nil {
			return fmt.Errorf("clearing reset token: %w", uerr)
		}
		return ErrMailDelivery
	}

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (*AuthResponse, error) {
	user, err := s.userRepo.GetByResetToken(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	if user == nil || user.ResetExpire == nil || user.ResetExpire.Before(time.Now()) {
		return nil, ErrInvalidToken
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	user.PasswordHash = hash
	user.ResetToken = nil
	user.ResetExpire = nil
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("resetting password: %w", err)
	}

	return s.respondWithToken(user)
}

// UpdateAvatar stores the uploaded image and points the user record at it.
func (s *AuthService) UpdateAvatar(ctx context.Context, userID uuid.UUID, filename, contentType string, size int64, r io.Reader) (*domain.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	objectKey := "avatars/" + userID.String() + path.Ext(filename)
	if err := s.store.Put(ctx, objectKey, r, size, contentType); err != nil {
		return nil, fmt.Errorf("storing avatar: %w", err)
	}

	url := s.store.URL(objectKey)
	user.AvatarURL = &url
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating avatar: %w", err)
	}
	return user, nil
}

func (s *AuthService) respondWithToken(user *domain.User) (*AuthResponse, error) {
	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}
	return &AuthResponse{User: user, AccessToken: token}, nil
}

func (s *AuthService) generateToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// newOneTimeToken returns the raw token that goes into the mail link and
// the sha256 hex digest that goes into the database.
func newOneTimeToken() (raw, hash string, err error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	return raw, hashToken(raw), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
