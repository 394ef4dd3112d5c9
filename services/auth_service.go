package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"clubnight-api/models"
	"clubnight-api/repositories"
	"clubnight-api/utils"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const codeTTL = 30 * time.Minute

type RegisterInput struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Age            int    `json:"age"`
	ProfilePicture string `json:"profile_picture"`
}

// AuthService handles user accounts: registration, two step login,
// password change and token refresh.
type AuthService struct {
	users  UserStore
	tokens *TokenService
	images *ImageService
	mailer CodeSender
	log    *zerolog.Logger

	now     func() time.Time
	newCode func() (string, error)
}

func NewAuthService(users UserStore, tokens *TokenService, images *ImageService, mailer CodeSender, log *zerolog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		images:  images,
		mailer:  mailer,
		log:     log,
		now:     time.Now,
		newCode: generateSixDigitCode,
	}
}

func generateSixDigitCode() (string, error) {
	const digits = "0123456789"
	code := make([]byte, 6)

	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}

	return string(code), nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", utils.NewDependencyError("failed to hash password", err)
	}
	return string(hashed), nil
}

// Register creates a user. The returned flag is false when a profile picture
// was supplied but could not be stored; the account exists either way.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (bool, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	switch {
	case in.Email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "":
		return false, utils.NewValidationError("email, password, first_name and last_name are required")
	case !utils.IsValidEmail(in.Email):
		return false, utils.NewValidationError("email is not valid")
	case !utils.IsValidPassword(in.Password):
		return false, utils.NewValidationError("password must be at least 6 characters and mix letters, digits or symbols")
	case in.Age < 0:
		return false, utils.NewValidationError("age must not be negative")
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return false, err
	}

	user := &models.User{
		Email:     in.Email,
		Password:  hashed,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Age:       in.Age,
	}

	s.log.Info().Str("email", in.Email).Msg("registering user")
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return false, utils.NewConflict("User with this email already exists. Do you want to login instead?")
		}
		return false, storeError(err, "user")
	}

	if in.ProfilePicture == "" {
		return true, nil
	}
	if err := s.images.PutProfilePicture(ctx, in.Email, in.ProfilePicture); err != nil {
		s.log.Warn().Err(err).Str("email", in.Email).Msg("profile picture not stored")
		return false, nil
	}
	return true, nil
}

// issueCode stores a fresh code with its expiry on the user and returns it.
func (s *AuthService) issueCode(ctx context.Context, user *models.User, extra map[string]interface{}) (string, error) {
	code, err := s.newCode()
	if err != nil {
		return "", utils.NewDependencyError("failed to generate code", err)
	}

	expires := s.now().UTC().Add(codeTTL)
	updates := map[string]interface{}{
		"six_digit_code":            code,
		"six_digit_code_expiration": expires,
	}
	for k, v := range extra {
		updates[k] = v
	}
	if err := s.users.Update(ctx, user.Email, updates); err != nil {
		return "", storeError(err, "user")
	}
	return code, nil
}

// checkCode verifies a pending code without consuming it.
func (s *AuthService) checkCode(user *models.User, code string) error {
	if !utils.IsSixDigitCode(code) {
		return utils.NewValidationError("code must be six digits")
	}
	if user.SixDigitCode == "" || user.SixDigitCodeExpiration == nil {
		return utils.NewAuthError("no code was requested")
	}
	if s.now().After(*user.SixDigitCodeExpiration) {
		return utils.NewAuthError("code has expired")
	}
	if user.SixDigitCode != code {
		return utils.NewAuthError("code is not valid")
	}
	return nil
}

// RequestLogin checks the password and mails a login code.
func (s *AuthService) RequestLogin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return utils.NewValidationError("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return utils.NewAuthError("invalid credentials")
		}
		return storeError(err, "user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return utils.NewAuthError("invalid credentials")
	}

	code, err := s.issueCode(ctx, user, nil)
	if err != nil {
		return err
	}
	if err := s.mailer.SendLoginCode(user.Email, user.FirstName, code); err != nil {
		return utils.NewDependencyError("failed to send login code", err)
	}
	return nil
}

// ValidateLogin consumes a login code and issues a token pair.
func (s *AuthService) ValidateLogin(ctx context.Context, email, code string) (*TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, storeError(err, "user")
	}
	if err := s.checkCode(user, code); err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(ctx, user.Email, RoleUser)
	if err != nil {
		return nil, utils.NewDependencyError("failed to issue tokens", err)
	}

	err = s.users.Update(ctx, user.Email, map[string]interface{}{
		"six_digit_code":            "",
		"six_digit_code_expiration": nil,
		"refresh_token":             pair.RefreshToken,
	})
	if err != nil {
		return nil, storeError(err, "user")
	}
	return pair, nil
}

func (s *AuthService) RequestPasswordChange(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return storeError(err, "user")
	}

	code, err := s.issueCode(ctx, user, map[string]interface{}{"password_change_approved": false})
	if err != nil {
		return err
	}
	if err := s.mailer.SendPasswordChangeCode(user.Email, user.FirstName, code); err != nil {
		return utils.NewDependencyError("failed to send password change code", err)
	}
	return nil
}

// ValidatePasswordChange consumes the code and allows one password change.
func (s *AuthService) ValidatePasswordChange(ctx context.Context, email, code string) error {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return storeError(err, "user")
	}
	if err := s.checkCode(user, code); err != nil {
		return err
	}

	return storeError(s.users.Update(ctx, user.Email, map[string]interface{}{
		"six_digit_code":            "",
		"six_digit_code_expiration": nil,
		"password_change_approved":  true,
	}), "user")
}

func (s *AuthService) ConfirmPasswordChange(ctx context.Context, email, newPassword string) error {
	if !utils.IsValidPassword(newPassword) {
		return utils.NewValidationError("password must be at least 6 characters and mix letters, digits or symbols")
	}
	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return storeError(err, "user")
	}
	if !user.PasswordChangeApproved {
		return utils.NewAuthError("password change was not validated")
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return storeError(s.users.Update(ctx, user.Email, map[string]interface{}{
		"password":                 hashed,
		"password_change_approved": false,
	}), "user")
}

// Refresh returns a new access token when refreshToken verifies and is the
// one stored for the user.
func (s *AuthService) Refresh(ctx context.Context, email, refreshToken string) (string, error) {
	subject, _, err := s.tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return "", tokenError(err)
	}
	if subject != strings.ToLower(email) {
		return "", utils.NewAuthError("refresh token does not belong to this user")
	}

	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		return "", storeError(err, "user")
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return "", utils.NewAuthError("refresh token is not valid")
	}

	access, err := s.tokens.IssueAccessToken(ctx, subject, RoleUser)
	if err != nil {
		return "", utils.NewDependencyError("failed to issue token", err)
	}
	return access, nil
}

// Logout forgets the stored refresh token.
func (s *AuthService) Logout(ctx context.Context, email string) error {
	return storeError(s.users.Update(ctx, email, map[string]interface{}{"refresh_token": ""}), "user")
}

// tokenError maps token verification failures onto AuthError.
func tokenError(err error) error {
	switch {
	case errors.Is(err, ErrMissingToken):
		return utils.NewAuthError("missing token")
	case errors.Is(err, ErrExpiredToken):
		return utils.NewAuthError("token has expired")
	case errors.Is(err, ErrInvalidToken):
		return utils.NewAuthError("invalid token")
	default:
		return utils.NewDependencyError("failed to verify token", err)
	}
}
