package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clubnight-api/config"
	"clubnight-api/models"
	"clubnight-api/repositories"
	"clubnight-api/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

type oauthProvider struct {
	endpoint    oauth2.Endpoint
	scopes      []string
	userInfoURL string
	emailsURL   string // github only
}

// ThirdPartyLogin is the outcome of a provider login
type ThirdPartyLogin struct {
	Tokens         *TokenPair
	Created        bool
	PictureSkipped bool
}

type OAuthService struct {
	secrets    config.SecretStore
	secretName string
	users      UserStore
	tokens     *TokenService
	images     *ImageService
	log        *zerolog.Logger
	httpClient *http.Client
	providers  map[string]oauthProvider
}

func NewOAuthService(secrets config.SecretStore, secretName string, users UserStore, tokens *TokenService, images *ImageService, log *zerolog.Logger) *OAuthService {
	return &OAuthService{
		secrets:    secrets,
		secretName: secretName,
		users:      users,
		tokens:     tokens,
		images:     images,
		log:        log,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		providers: map[string]oauthProvider{
			"google": {
				endpoint:    google.Endpoint,
				scopes:      []string{"openid", "email", "profile"},
				userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
			},
			"facebook": {
				endpoint:    facebook.Endpoint,
				scopes:      []string{"email", "public_profile"},
				userInfoURL: "https://graph.facebook.com/me?fields=id,name,email,picture",
			},
			"github": {
				endpoint:    github.Endpoint,
				scopes:      []string{"read:user", "user:email"},
				userInfoURL: "https://api.github.com/user",
				emailsURL:   "https://api.github.com/user/emails",
			},
		},
	}
}

func (s *OAuthService) oauthConfig(ctx context.Context, provider string) (*oauth2.Config, oauthProvider, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, oauthProvider{}, utils.NewValidationError("Unsupported type of service")
	}

	bundle, err := s.secrets.GetSecret(ctx, s.secretName)
	if err != nil {
		return nil, p, utils.NewDependencyError("failed to load client credentials", err)
	}
	clientID, clientSecret := bundle[provider+"_client_id"], bundle[provider+"_client_secret"]
	if clientID == "" || clientSecret == "" {
		return nil, p, utils.NewDependencyError("client credentials missing", fmt.Errorf("no %s credentials in %s", provider, s.secretName))
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     p.endpoint,
		RedirectURL:  bundle["callback_uri"],
		Scopes:       p.scopes,
	}, p, nil
}

// AuthURL returns the provider authorization URL. The provider name is sent as state.
func (s *OAuthService) AuthURL(ctx context.Context, provider string) (string, error) {
	cfg, _, err := s.oauthConfig(ctx, provider)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(provider), nil
}

// Confirm exchanges the authorization code, loads the provider profile and
// logs the user in, creating the account on first use.
func (s *OAuthService) Confirm(ctx context.Context, code, state string) (*ThirdPartyLogin, error) {
	if code == "" || state == "" {
		return nil, utils.NewValidationError("Missing code or state parameter")
	}
	cfg, p, err := s.oauthConfig(ctx, state)
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", state).Msg("code exchange failed")
		return nil, utils.NewAuthError("Failed to obtain access token")
	}
	client := cfg.Client(ctx, token)

	profile, err := s.fetchProfile(client, state, p)
	if err != nil {
		return nil, err
	}

	result := &ThirdPartyLogin{}
	_, err = s.users.GetByEmail(ctx, profile.email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		if err := s.createUser(ctx, state, profile); err != nil {
			return nil, err
		}
		result.Created = true
		if profile.pictureURL != "" {
			result.PictureSkipped = !s.importPicture(ctx, profile)
		}
	case err != nil:
		return nil, storeError(err, "user")
	}

	pair, err := s.tokens.IssuePair(ctx, profile.email, RoleUser)
	if err != nil {
		return nil, utils.NewDependencyError("failed to issue tokens", err)
	}
	if err := s.users.Update(ctx, profile.email, map[string]interface{}{"refresh_token": pair.RefreshToken}); err != nil {
		return nil, storeError(err, "user")
	}
	result.Tokens = pair
	return result, nil
}

type providerProfile struct {
	email      string
	firstName  string
	lastName   string
	pictureURL string
}

func (s *OAuthService) fetchProfile(client *http.Client, provider string, p oauthProvider) (*providerProfile, error) {
	var info struct {
		Email     string          `json:"email"`
		Name      string          `json:"name"`
		Login     string          `json:"login"`
		AvatarURL string          `json:"avatar_url"`
		Picture   json.RawMessage `json:"picture"`
	}
	if err := getJSON(client, p.userInfoURL, &info); err != nil {
		return nil, utils.NewDependencyError("failed to fetch user information", err)
	}

	profile := &providerProfile{email: strings.ToLower(info.Email)}
	if profile.email == "" && p.emailsURL != "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(client, p.emailsURL, &emails); err != nil {
			return nil, utils.NewDependencyError("failed to fetch user e-mails", err)
		}
		for i, e := range emails {
			if i == 0 || (e.Primary && e.Verified) {
				profile.email = strings.ToLower(e.Email)
			}
		}
	}
	if profile.email == "" {
		return nil, utils.NewAuthError("provider did not share an e-mail address")
	}

	name := info.Name
	if name == "" {
		name = info.Login
	}
	if parts := strings.Fields(name); len(parts) > 0 {
		profile.firstName = parts[0]
		profile.lastName = strings.Join(parts[1:], " ")
	}

	switch provider {
	case "github":
		profile.pictureURL = info.AvatarURL
	case "facebook":
		var pic struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		}
		if json.Unmarshal(info.Picture, &pic) == nil {
			profile.pictureURL = pic.Data.URL
		}
	default:
		var url string
		if json.Unmarshal(info.Picture, &url) == nil {
			profile.pictureURL = url
		}
	}
	return profile, nil
}

func getJSON(client *http.Client, url string, out interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *OAuthService) createUser(ctx context.Context, provider string, profile *providerProfile) error {
	// Provider accounts never log in with a password
	hashed, err := hashPassword(uuid.New().String())
	if err != nil {
		return err
	}

	s.log.Info().Str("email", profile.email).Str("provider", provider).Msg("creating user from provider profile")
	err = s.users.Create(ctx, &models.User{
		Email:     profile.email,
		Password:  hashed,
		FirstName: profile.firstName,
		LastName:  profile.lastName,
		Provider:  provider,
	})
	if err != nil && !errors.Is(err, repositories.ErrAlreadyExists) {
		return storeError(err, "user")
	}
	return nil
}

func (s *OAuthService) importPicture(ctx context.Context, profile *providerProfile) bool {
	resp, err := s.httpClient.Get(profile.pictureURL)
	if err != nil {
		s.log.Warn().Err(err).Str("email", profile.email).Msg("failed to download profile picture")
		return false
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil || resp.StatusCode != http.StatusOK {
		s.log.Warn().Err(err).Int("status", resp.StatusCode).Msg("failed to download profile picture")
		return false
	}
	if err := s.images.PutProfilePictureBytes(ctx, profile.email, data); err != nil {
		s.log.Warn().Err(err).Str("email", profile.email).Msg("failed to store profile picture")
		return false
	}
	return true
}
