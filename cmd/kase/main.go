package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"kase/internal/app/commands"
	checkoutapp "kase/internal/app/handlers/checkout"
	listingapp "kase/internal/app/handlers/listings"
	"kase/internal/app/middleware"
	"kase/internal/app/policies"
	"kase/internal/app/queries"
	"kase/internal/domain/listings"
	"kase/internal/domain/shared/money"
	minioarchive "kase/internal/infra/archive/minio"
	"kase/internal/infra/auth"
	"kase/internal/infra/bookingapi"
	"kase/internal/infra/broker/kafka"
	"kase/internal/infra/config"
	ginserver "kase/internal/infra/http/gin"
	"kase/internal/infra/obs"
	"kase/internal/infra/prefs"
	"kase/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.BookingAPIBaseURL = getenv("BOOKING_API_URL", "http://localhost:9090")
		cfg.BookingAPITimeout = 10 * time.Second
		cfg.DefaultCurrency = "USD"
		cfg.SessionTTL = 30 * time.Minute
		cfg.SessionSweep = time.Minute
	}

	app := buildApplication(cfg, logger)
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: func() error { return nil },
	}, app.handlers)

	fixturesPath := cfg.ListingsFixtures
	if fixturesPath == "" {
		fixturesPath = defaultListingFixturesPath()
	}
	if err := app.loadListingFixtures(ctx, fixturesPath, cfg.DefaultCurrency, logger); err != nil {
		logger.Warn("listing fixtures load failed", "error", err, "path", fixturesPath)
	}

	go app.sessions.StartJanitor(ctx, cfg.SessionSweep)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	catalog  *memory.ListingCatalog
	sessions *memory.SessionStore
	producer *kafka.Producer
}

func buildApplication(cfg config.Config, logger *slog.Logger) application {
	catalog := memory.NewListingCatalog()
	sessions := memory.NewSessionStore(cfg.SessionTTL)
	idStore := memory.NewIdempotencyStore()
	formatter := prefs.Formatter{}
	bookingClient := bookingapi.NewClient(cfg.BookingAPIBaseURL, cfg.BookingAPITimeout)

	var producer *kafka.Producer
	var events policies.EventsPort
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Warn("kafka producer disabled", "error", err)
		} else {
			producer = p
			events = &kafka.EventPublisher{Producer: p, Topic: cfg.KafkaTopic}
			logger.Info("kafka producer ready", "topic", cfg.KafkaTopic)
		}
	}

	var archive policies.ArchivePort
	if cfg.S3Endpoint != "" {
		archiver, err := minioarchive.NewArchiver(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
		if err != nil {
			logger.Warn("receipt archive disabled", "error", err)
		} else {
			archive = archiver
			logger.Info("receipt archive ready", "bucket", cfg.S3Bucket)
		}
	}

	commandBus := commands.NewInMemoryBus()

	startHandler := &checkoutapp.StartCheckoutHandler{Sessions: sessions, Catalog: catalog}
	commands.RegisterHandler(commandBus, checkoutapp.StartCheckoutCommand{}.Key(), startHandler)

	updateHandler := &checkoutapp.UpdateSessionHandler{Sessions: sessions}
	commands.RegisterHandler(commandBus, checkoutapp.UpdateDatesCommand{}.Key(),
		commands.HandlerFunc[checkoutapp.UpdateDatesCommand, *checkoutapp.SessionResult](updateHandler.HandleDates))
	commands.RegisterHandler(commandBus, checkoutapp.UpdateGuestsCommand{}.Key(),
		commands.HandlerFunc[checkoutapp.UpdateGuestsCommand, *checkoutapp.SessionResult](updateHandler.HandleGuests))
	commands.RegisterHandler(commandBus, checkoutapp.UpdateIdentityCommand{}.Key(),
		commands.HandlerFunc[checkoutapp.UpdateIdentityCommand, *checkoutapp.SessionResult](updateHandler.HandleIdentity))

	navHandler := &checkoutapp.NavigateHandler{Sessions: sessions}
	commands.RegisterHandler(commandBus, checkoutapp.ContinueToPaymentCommand{}.Key(),
		commands.HandlerFunc[checkoutapp.ContinueToPaymentCommand, *checkoutapp.SessionResult](navHandler.HandleContinue))
	commands.RegisterHandler(commandBus, checkoutapp.BackToDetailsCommand{}.Key(),
		commands.HandlerFunc[checkoutapp.BackToDetailsCommand, *checkoutapp.SessionResult](navHandler.HandleBack))
	commands.RegisterHandler(commandBus, checkoutapp.ResetCheckoutCommand{}.Key(),
		commands.HandlerFunc[checkoutapp.ResetCheckoutCommand, *checkoutapp.SessionResult](navHandler.HandleReset))
	commands.RegisterHandler(commandBus, checkoutapp.CloseCheckoutCommand{}.Key(),
		commands.HandlerFunc[checkoutapp.CloseCheckoutCommand, *checkoutapp.CloseCheckoutResult](navHandler.HandleClose))

	submitHandler := &checkoutapp.SubmitPaymentHandler{
		Sessions: sessions,
		Booking:  bookingClient,
		Events:   events,
		Archive:  archive,
		Logger:   logger,
	}
	commands.RegisterHandler(commandBus, checkoutapp.SubmitPaymentCommand{}.Key(), submitHandler)

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, checkoutapp.GetCheckoutQuery{}.Key(), &checkoutapp.GetCheckoutHandler{Sessions: sessions})
	queries.RegisterHandler(queryBus, listingapp.SearchCatalogQuery{}.Key(), &listingapp.SearchCatalogHandler{Catalog: catalog})
	queries.RegisterHandler(queryBus, listingapp.GetListingQuery{}.Key(), &listingapp.GetListingHandler{Catalog: catalog})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Idempotency(idStore, nil),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	identity := ginserver.IdentityMiddleware{
		Resolver: auth.TokenResolver{Secret: []byte(cfg.AuthTokenSecret)},
		Logger:   logger,
	}

	return application{
		handlers: ginserver.Handlers{
			Checkout: ginserver.CheckoutHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
				Prefs:    formatter,
			},
			Listing: ginserver.ListingHandler{
				Queries: queryBusWithMiddleware,
				Prefs:   formatter,
			},
			AuthMiddleware: identity.Handle,
		},
		catalog:  catalog,
		sessions: sessions,
		producer: producer,
	}
}

func (a application) close(logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Error("kafka producer close failed", "error", err)
		}
	}
}

func (a application) loadListingFixtures(ctx context.Context, path, currency string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("listing fixtures file empty", "path", path)
		return nil
	}

	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now().UTC()
	for _, fx := range fixtures {
		kind, err := listings.ParseKind(fx.Kind)
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		cur := strings.ToUpper(strings.TrimSpace(fx.Currency))
		if cur == "" {
			cur = currency
		}
		price, err := money.New(fx.UnitPriceCents, cur)
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		listing := &listings.Listing{
			ID:          listings.ListingID(fx.ID),
			Kind:        kind,
			Title:       fx.Title,
			Description: fx.Description,
			Location: listings.Location{
				City:    fx.Location.City,
				Country: fx.Location.Country,
				Lat:     fx.Location.Lat,
				Lon:     fx.Location.Lon,
			},
			UnitPrice:    price,
			GuestsLimit:  fx.GuestsLimit,
			Rating:       fx.Rating,
			Tags:         append([]string(nil), fx.Tags...),
			ThumbnailURL: fx.ThumbnailURL,
			Photos:       append([]string(nil), fx.Photos...),
			CreatedAt:    parseFixtureTime(fx.CreatedAt, now),
		}
		if err := a.catalog.Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", listing.ID)
	}
	return nil
}

type listingFixture struct {
	ID             string          `json:"id"`
	Kind           string          `json:"kind"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Location       fixtureLocation `json:"location"`
	UnitPriceCents int64           `json:"unit_price_cents"`
	Currency       string          `json:"currency"`
	GuestsLimit    int             `json:"guests_limit"`
	Rating         float64         `json:"rating"`
	Tags           []string        `json:"tags"`
	ThumbnailURL   string          `json:"thumbnail_url"`
	Photos         []string        `json:"photos"`
	CreatedAt      string          `json:"created_at"`
}

type fixtureLocation struct {
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func parseFixtureTime(value string, fallback time.Time) time.Time {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return fallback
}

func defaultListingFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "listings.json"),
		filepath.Join("deploy", "data", "listings.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
