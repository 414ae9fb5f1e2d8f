package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1rvyn/web-stories-editor/config"
	"github.com/1rvyn/web-stories-editor/dashboard"
	"github.com/1rvyn/web-stories-editor/database"
	"github.com/1rvyn/web-stories-editor/logger"
	"github.com/1rvyn/web-stories-editor/media"
	"github.com/1rvyn/web-stories-editor/metrics"
	"github.com/1rvyn/web-stories-editor/middleware"
	"github.com/1rvyn/web-stories-editor/routes"
	"github.com/1rvyn/web-stories-editor/stories"
	"github.com/1rvyn/web-stories-editor/views"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "web-stories",
		Short: "Web stories editor backend",
		Long: `Serves the web stories dashboard and editor API, and the published
stories under the listing page.`,
	}

	var migrate bool
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(cfg *config.Config, db *gorm.DB, log *zap.Logger) error {
				if migrate {
					if err := database.Migrate(db); err != nil {
						return fmt.Errorf("migrate: %w", err)
					}
				}
				return serveHTTP(cfg, db, log)
			})
		},
	}
	serve.Flags().BoolVar(&migrate, "migrate", true, "Migrate the schema before serving")

	cmd.AddCommand(serve, &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(cfg *config.Config, db *gorm.DB, log *zap.Logger) error {
				if err := database.Migrate(db); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				log.Info("Schema migrated")
				return nil
			})
		},
	})
	return cmd
}

func withDeps(run func(cfg *config.Config, db *gorm.DB, log *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return run(cfg, db, log)
}

func serveHTTP(cfg *config.Config, db *gorm.DB, log *zap.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	storage, err := newStorage(cfg, log)
	if err != nil {
		return err
	}

	users := database.NewUsers(db)
	settings := database.NewSettings(db)
	listing := database.NewListingPages(db)
	images := database.NewImages(db)
	mediaItems := database.NewMediaItems(db)
	documents := database.NewDocuments(db)

	builder := &dashboard.Builder{
		Listing:  dashboard.ListingPages{Pages: listing, SiteURL: cfg.SiteURL},
		EditURLs: dashboard.AdminURLs{Prefix: cfg.AdminPath},
		Location: loc,
		Logger:   log.Named("dashboard"),
	}
	h := &routes.Handler{
		Stories:       stories.NewService(database.NewStories(db), settings, builder, cfg.SiteName, log),
		Settings:      settings,
		Images:        images,
		Media:         media.NewImages(storage, images, log),
		MediaItems:    mediaItems,
		MediaFiles:    media.NewItems(storage, mediaItems, log),
		Documents:     documents,
		DocumentFiles: media.NewDocuments(storage, documents, log),
		AdminPath:     cfg.AdminPath,
		Listing:       listing,
		Users:         users,
		Site:          cfg.SiteName,
		SiteURL:       cfg.SiteURL,
		Log:           log.Named("http"),
	}

	app := fiber.New(fiber.Config{
		Views:     views.Engine(),
		BodyLimit: media.MaxFileSize + media.MaxImageSize + 1<<20,
	})
	app.Use(middleware.ZapLogger(log.Named("access")))
	app.Get("/metrics", metrics.Handler())
	if mem, ok := storage.(*media.Memory); ok {
		app.Get("/media/*", mem.Serve)
	}

	if err := setupRoutes(app, cfg, h, users, log); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("Shutting down server")
	return app.ShutdownWithTimeout(10 * time.Second)
}

func setupRoutes(app *fiber.App, cfg *config.Config, h *routes.Handler, users *database.Users, log *zap.Logger) error {
	if !cfg.AuthEnabled() {
		return fmt.Errorf("AUTH0_DOMAIN and AUTH0_AUDIENCE must be set")
	}
	jwks, err := middleware.NewJWKS(cfg.Auth0Domain)
	if err != nil {
		return err
	}
	auth := &middleware.Auth{
		Keyfunc:  jwks.Keyfunc,
		Audience: cfg.Auth0Audience,
		Issuer:   middleware.IssuerFor(cfg.Auth0Domain),
		Users:    users,
		Logger:   log.Named("auth"),
	}

	// Protected routes
	h.API(app.Group("/api", auth.Required()))

	landing := cfg.AdminPath + "/web-stories/"
	if cfg.OAuthEnabled() {
		store := session.New()
		routes.NewLogin(routes.Auth0Config{
			Domain:       cfg.Auth0Domain,
			Audience:     cfg.Auth0Audience,
			ClientID:     cfg.Auth0ClientID,
			ClientSecret: cfg.Auth0ClientSecret,
			CallbackURL:  cfg.Auth0CallbackURL,
		}, users, store, landing, log).Register(app)
		h.Admin(app.Group(cfg.AdminPath, middleware.SessionAuthRequired(store, "/login/google", log.Named("session"))))
	} else {
		log.Warn("Auth0 client settings missing, browser sign in and admin pages are disabled")
	}

	// Public routes
	h.Public(app)
	return nil
}

// newStorage picks R2 when it is configured and keeps uploads in memory
// otherwise.
func newStorage(cfg *config.Config, log *zap.Logger) (media.Storage, error) {
	if !cfg.MediaEnabled() {
		log.Warn("MEDIA_BUCKET not configured, keeping uploads in memory")
		base := cfg.MediaPublicURL
		if base == "" {
			base = cfg.SiteURL + "/media"
		}
		return &media.Memory{BaseURL: base}, nil
	}
	return media.NewR2(context.Background(), media.R2Config{
		Endpoint:  cfg.R2Endpoint,
		Bucket:    cfg.MediaBucket,
		PublicURL: cfg.MediaPublicURL,
		AccessKey: cfg.AWSAccessKeyID,
		SecretKey: cfg.AWSSecretAccessKey,
	})
}
