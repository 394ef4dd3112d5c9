package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"clubnight-api/config"
	"clubnight-api/logger"
	"clubnight-api/models"
	"clubnight-api/storage"
	"clubnight-api/utils"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecretName = "TEST_JWT"

func newTestTokens() *TokenService {
	return NewTokenService(config.NewStaticSecretStore(map[string]map[string]string{
		testJWTSecretName: {"jwt_secret": "access-key", "refresh_secret": "refresh-key"},
	}), testJWTSecretName)
}

func TestTokenService(t *testing.T) {
	ctx := context.Background()
	tokens := newTestTokens()

	t.Run("pair verifies with matching keys only", func(t *testing.T) {
		pair, err := tokens.IssuePair(ctx, "a@x.io", RoleUser)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		subject, role, err := tokens.VerifyAccess(ctx, pair.AccessToken)
		if err != nil || subject != "a@x.io" || role != RoleUser {
			t.Fatalf("verify access: %q %q %v", subject, role, err)
		}
		if _, _, err := tokens.VerifyAccess(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("refresh token accepted as access token: %v", err)
		}
		if _, _, err := tokens.VerifyRefresh(ctx, pair.RefreshToken); err != nil {
			t.Fatalf("verify refresh: %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, _, err := tokens.VerifyAccess(ctx, ""); !errors.Is(err, ErrMissingToken) {
			t.Fatalf("expected ErrMissingToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, _, err := tokens.VerifyAccess(ctx, "not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		old := newTestTokens()
		old.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
		token, err := old.IssueAccessToken(ctx, "a@x.io", RoleUser)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, _, err := tokens.VerifyAccess(ctx, token); !errors.Is(err, ErrExpiredToken) {
			t.Fatalf("expected ErrExpiredToken, got %v", err)
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		broken := NewTokenService(config.NewStaticSecretStore(nil), "NOPE")
		if _, err := broken.IssuePair(ctx, "a@x.io", RoleUser); !errors.Is(err, config.ErrSecretNotFound) {
			t.Fatalf("expected ErrSecretNotFound, got %v", err)
		}
	})
}

func newTestAuth(users *fakeUsers, mailer *fakeMailer) *AuthService {
	s := NewAuthService(users, newTestTokens(), newTestImages(storage.NewMemoryStore()), mailer, logger.Nop())
	s.newCode = func() (string, error) { return "123456", nil }
	return s
}

func TestAuthRegister(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	s := newTestAuth(users, &fakeMailer{})

	in := RegisterInput{Email: "New@Club.io", Password: "Secret1!", FirstName: "Nia", LastName: "Nowak", Age: 27}

	stored, err := s.Register(ctx, in)
	if err != nil || !stored {
		t.Fatalf("register: %v %v", stored, err)
	}
	u, err := users.GetByEmail(ctx, "new@club.io")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("Secret1!")) != nil {
		t.Fatal("password not hashed with bcrypt")
	}

	t.Run("duplicate", func(t *testing.T) {
		_, err := s.Register(ctx, in)
		if !utils.IsKind(err, utils.KindConflict) {
			t.Fatalf("expected Conflict, got %v", err)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := s.Register(ctx, RegisterInput{Email: "x@y.io"})
		if !utils.IsKind(err, utils.KindValidation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("bad picture keeps the account", func(t *testing.T) {
		stored, err := s.Register(ctx, RegisterInput{Email: "pic@club.io", Password: "Secret1!", FirstName: "P", LastName: "Q", ProfilePicture: "%%%"})
		if err != nil || stored {
			t.Fatalf("expected account without picture, got %v %v", stored, err)
		}
		if _, err := users.GetByEmail(ctx, "pic@club.io"); err != nil {
			t.Fatalf("account missing: %v", err)
		}
	})
}

func TestAuthLoginFlow(t *testing.T) {
	ctx := context.Background()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("Secret1!"), bcrypt.MinCost)
	users := newFakeUsers(models.User{Email: "dj@club.io", Password: string(hashed), FirstName: "Dee"})
	mailer := &fakeMailer{}
	s := newTestAuth(users, mailer)

	t.Run("wrong password", func(t *testing.T) {
		if err := s.RequestLogin(ctx, "dj@club.io", "nope"); !utils.IsKind(err, utils.KindAuth) {
			t.Fatalf("expected AuthError, got %v", err)
		}
	})

	t.Run("code round trip", func(t *testing.T) {
		if err := s.RequestLogin(ctx, "dj@club.io", "Secret1!"); err != nil {
			t.Fatalf("request login: %v", err)
		}
		if mailer.lastTo != "dj@club.io" || mailer.lastCode != "123456" {
			t.Fatalf("code not mailed: %q %q", mailer.lastTo, mailer.lastCode)
		}

		if _, err := s.ValidateLogin(ctx, "dj@club.io", "654321"); !utils.IsKind(err, utils.KindAuth) {
			t.Fatalf("expected AuthError for wrong code, got %v", err)
		}

		pair, err := s.ValidateLogin(ctx, "dj@club.io", "123456")
		if err != nil {
			t.Fatalf("validate login: %v", err)
		}
		u, _ := users.GetByEmail(ctx, "dj@club.io")
		if u.SixDigitCode != "" || u.RefreshToken != pair.RefreshToken {
			t.Fatalf("code not cleared or refresh token not stored: %+v", u)
		}

		if _, err := s.ValidateLogin(ctx, "dj@club.io", "123456"); !utils.IsKind(err, utils.KindAuth) {
			t.Fatalf("code must be single use, got %v", err)
		}

		access, err := s.Refresh(ctx, "dj@club.io", pair.RefreshToken)
		if err != nil || access == "" {
			t.Fatalf("refresh: %v", err)
		}

		if err := s.Logout(ctx, "dj@club.io"); err != nil {
			t.Fatalf("logout: %v", err)
		}
		if _, err := s.Refresh(ctx, "dj@club.io", pair.RefreshToken); !utils.IsKind(err, utils.KindAuth) {
			t.Fatalf("refresh after logout must fail, got %v", err)
		}
	})

	t.Run("expired code", func(t *testing.T) {
		if err := s.RequestLogin(ctx, "dj@club.io", "Secret1!"); err != nil {
			t.Fatalf("request login: %v", err)
		}
		s.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
		defer func() { s.now = time.Now }()

		if _, err := s.ValidateLogin(ctx, "dj@club.io", "123456"); !utils.IsKind(err, utils.KindAuth) {
			t.Fatalf("expected AuthError for expired code, got %v", err)
		}
	})

	t.Run("mail failure", func(t *testing.T) {
		mailer.err = errors.New("smtp down")
		defer func() { mailer.err = nil }()
		if err := s.RequestLogin(ctx, "dj@club.io", "Secret1!"); !utils.IsKind(err, utils.KindDependency) {
			t.Fatalf("expected DependencyError, got %v", err)
		}
	})
}

func TestAuthPasswordChange(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers(models.User{Email: "dj@club.io", Password: "old"})
	s := newTestAuth(users, &fakeMailer{})

	if err := s.ConfirmPasswordChange(ctx, "dj@club.io", "NewSecret1!"); !utils.IsKind(err, utils.KindAuth) {
		t.Fatalf("confirm without validation must fail, got %v", err)
	}

	if err := s.RequestPasswordChange(ctx, "dj@club.io"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := s.ValidatePasswordChange(ctx, "dj@club.io", "123456"); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := s.ConfirmPasswordChange(ctx, "dj@club.io", "NewSecret1!"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	u, _ := users.GetByEmail(ctx, "dj@club.io")
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("NewSecret1!")) != nil {
		t.Fatal("new password not stored")
	}
	if err := s.ConfirmPasswordChange(ctx, "dj@club.io", "Another1!"); !utils.IsKind(err, utils.KindAuth) {
		t.Fatalf("approval must be single use, got %v", err)
	}
}
