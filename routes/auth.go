package routes

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/1rvyn/web-stories-editor/database"
	"github.com/1rvyn/web-stories-editor/middleware"
	"github.com/1rvyn/web-stories-editor/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type Auth0Config struct {
	Domain       string
	Audience     string
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Login signs editors in through Auth0 and keeps them in a session.
type Login struct {
	oauth    *oauth2.Config
	domain   string
	audience string
	users    *database.Users
	store    *session.Store
	landing  string
	log      *zap.Logger
}

// NewLogin sends signed in editors to landing.
func NewLogin(cfg Auth0Config, users *database.Users, store *session.Store, landing string, log *zap.Logger) *Login {
	return &Login{
		oauth: &oauth2.Config{
			RedirectURL:  cfg.CallbackURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  fmt.Sprintf("https://%s/authorize", cfg.Domain),
				TokenURL: fmt.Sprintf("https://%s/oauth/token", cfg.Domain),
			},
		},
		domain:   cfg.Domain,
		audience: cfg.Audience,
		users:    users,
		store:    store,
		landing:  landing,
		log:      log.Named("login"),
	}
}

func (l *Login) Register(app fiber.Router) {
	app.Get("/login/google", l.LoginWithGoogle)
	app.Get("/callback", l.Callback)
}

func (l *Login) LoginWithGoogle(c *fiber.Ctx) error {
	sess, err := l.store.Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Error getting session")
	}
	state := uuid.NewString()
	sess.Set("oauth_state", state)
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Error saving session")
	}

	url := l.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("connection", "google-oauth2"),
		oauth2.SetAuthURLParam("audience", l.audience),
	)
	return c.Redirect(url)
}

type userInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified bool   `json:"email_verified"`
}

func (l *Login) Callback(c *fiber.Ctx) error {
	sess, err := l.store.Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Error getting session")
	}
	state, _ := sess.Get("oauth_state").(string)
	if state == "" || c.Query("state") != state {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid oauth state")
	}
	sess.Delete("oauth_state")

	ctx := c.UserContext()
	token, err := l.oauth.Exchange(ctx, c.Query("code"))
	if err != nil {
		l.log.Warn("Code exchange failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("Code exchange failed")
	}

	client := l.oauth.Client(ctx, token)
	resp, err := client.Get(fmt.Sprintf("https://%s/userinfo", l.domain))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed getting user info")
	}
	defer resp.Body.Close()

	var info userInfo
	if err = json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Sub == "" {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed decoding user info")
	}

	user, err := l.users.Upsert(ctx, models.User{
		Email:         info.Email,
		Name:          info.Name,
		Picture:       info.Picture,
		Auth0ID:       info.Sub,
		EmailVerified: info.EmailVerified,
	})
	if err != nil {
		l.log.Error("Failed to store user", zap.String("sub", info.Sub), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to store user in database")
	}

	// The editor app calls the API with this token.
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token.AccessToken,
		Expires:  time.Now().Add(time.Hour * 24),
		HTTPOnly: false,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	sess.Set("user_id", user.ID)
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Error saving session")
	}

	l.log.Info("Editor signed in", zap.Uint("user_id", user.ID))
	return c.Redirect(l.landing)
}
