package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/venille-ai/venille/internal/bot"
	"github.com/venille-ai/venille/internal/i18n"
	"github.com/venille-ai/venille/internal/messaging"
	"github.com/venille-ai/venille/internal/reminder"
	"github.com/venille-ai/venille/internal/scheduler"
	"github.com/venille-ai/venille/internal/session"
	"github.com/venille-ai/venille/internal/store"
	"github.com/venille-ai/venille/internal/twiliowhatsapp"
	"github.com/venille-ai/venille/internal/util"
	"github.com/venille-ai/venille/internal/web"
	"github.com/venille-ai/venille/internal/whatsapp"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for Venille state data
	DefaultStateDir = "/var/lib/venille"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "venille.db"
	// DefaultReminderCron runs the reminder scan every day at 09:00
	DefaultReminderCron = "0 9 * * *"
	// DefaultShutdownTimeout bounds graceful shutdown of the web server
	DefaultShutdownTimeout = 10 * time.Second
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	slog.Info("Bootstrapping Venille with configured modules")
	slog.Debug("Final configuration",
		"state_dir", *flags.stateDir,
		"dsn_set", *flags.dbDSN != "",
		"transport", *flags.transport,
		"web_addr", *flags.webAddr,
		"reminder_cron", *flags.reminderCron)

	if err := run(flags); err != nil {
		slog.Error("Venille failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Venille exited successfully")
}

// Config holds environment configuration
type Config struct {
	Transport    string
	WhatsAppDSN  string
	DatabaseURL  string
	StateDir     string
	WebAddr      string
	ReminderCron string
	VendorNumber string
	SalesContact string
	CycleDays    int
}

// Flags holds command line flag values
type Flags struct {
	qrOutput     *string
	numeric      *bool
	stateDir     *string
	dbDSN        *string
	transport    *string
	webAddr      *string
	reminderCron *string
	vendorNumber *string
	salesContact *string
	cycleDays    *int
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		Transport:    os.Getenv("VENILLE_TRANSPORT"),
		WhatsAppDSN:  os.Getenv("WHATSAPP_DB_DSN"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		StateDir:     os.Getenv("VENILLE_STATE_DIR"),
		WebAddr:      os.Getenv("WEB_ADDR"),
		ReminderCron: os.Getenv("REMINDER_CRON"),
		VendorNumber: os.Getenv("VENDOR_NUMBER"),
		SalesContact: os.Getenv("SALES_CONTACT_URL"),
		CycleDays:    util.ParseIntEnv("CYCLE_DAYS", bot.DefaultCycleDays),
	}

	if config.Transport == "" {
		config.Transport = "whatsapp"
	}
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No VENILLE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = config.DatabaseURL
	}
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.WhatsAppDSN)
	}
	if config.ReminderCron == "" {
		config.ReminderCron = DefaultReminderCron
	}

	slog.Debug("environment variables loaded",
		"VENILLE_TRANSPORT", config.Transport,
		"WHATSAPP_DB_DSN_SET", config.WhatsAppDSN != "",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"VENILLE_STATE_DIR", config.StateDir,
		"WEB_ADDR", config.WebAddr,
		"REMINDER_CRON", config.ReminderCron,
		"VENDOR_NUMBER_SET", config.VendorNumber != "",
		"CYCLE_DAYS", config.CycleDays)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:     flag.String("qr-output", "", "path to write login QR code"),
		numeric:      flag.Bool("numeric-code", false, "use numeric login code instead of QR code"),
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for Venille data (overrides $VENILLE_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.WhatsAppDSN, "database DSN for the user store and WhatsApp session (overrides $WHATSAPP_DB_DSN or $DATABASE_URL)"),
		transport:    flag.String("transport", config.Transport, "messaging transport: whatsapp or twilio (overrides $VENILLE_TRANSPORT)"),
		webAddr:      flag.String("web-addr", config.WebAddr, "pairing web server address (overrides $WEB_ADDR)"),
		reminderCron: flag.String("reminder-cron", config.ReminderCron, "cron schedule for the daily reminder scan (overrides $REMINDER_CRON)"),
		vendorNumber: flag.String("vendor-number", config.VendorNumber, "vendor number or JID to notify on pad orders (overrides $VENDOR_NUMBER)"),
		salesContact: flag.String("sales-contact", config.SalesContact, "sales contact link for order confirmations (overrides $SALES_CONTACT_URL)"),
		cycleDays:    flag.Int("cycle-days", config.CycleDays, "cycle length in days for next-period prediction (overrides $CYCLE_DAYS)"),
	}
	flag.Parse()
	return flags
}

// ensureDirectoriesExist creates the state directory (SQLite lives under it)
func ensureDirectoriesExist(flags Flags) error {
	slog.Debug("Ensuring state directory exists", "state_dir", *flags.stateDir)
	return os.MkdirAll(*flags.stateDir, 0o755)
}

// buildStore constructs the user store matching the DSN type.
func buildStore(dsn string) (store.Store, error) {
	if dsn == "" {
		slog.Warn("No DSN configured, using in-memory store (data is lost on restart)")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(dsn) == "postgres" {
		return store.NewPostgresStore(store.WithPostgresDSN(dsn))
	}
	return store.NewSQLiteStore(store.WithSQLiteDSN(dsn))
}

// buildMessaging constructs the messaging service for the selected transport.
// For WhatsApp it also returns the pairing status for the web page and a
// connect function to run after the web server is listening.
func buildMessaging(flags Flags) (messaging.Service, web.PairingStatus, func(context.Context), error) {
	switch *flags.transport {
	case "twilio":
		client, err := twiliowhatsapp.NewClient()
		if err != nil {
			return nil, nil, nil, err
		}
		return messaging.NewTwilioService(client), nil, nil, nil
	default:
		waOpts := []whatsapp.Option{
			whatsapp.WithDBDSN(*flags.dbDSN),
		}
		if *flags.qrOutput != "" {
			waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
		}
		if *flags.numeric {
			waOpts = append(waOpts, whatsapp.WithNumericCode())
		}
		client, err := whatsapp.NewClient(waOpts...)
		if err != nil {
			return nil, nil, nil, err
		}
		connect := func(ctx context.Context) {
			if err := client.Connect(ctx); err != nil {
				slog.Error("WhatsApp connect failed", "error", err)
			}
		}
		return messaging.NewWhatsAppService(client), client, connect, nil
	}
}

func run(flags Flags) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := buildStore(*flags.dbDSN)
	if err != nil {
		return err
	}
	defer st.Close()

	msgService, pairing, connect, err := buildMessaging(flags)
	if err != nil {
		return err
	}

	catalog := i18n.NewCatalog()
	sessions := session.NewStore()

	botOpts := []bot.Option{
		bot.WithCycleDays(*flags.cycleDays),
	}
	if *flags.vendorNumber != "" {
		botOpts = append(botOpts, bot.WithVendorJID(*flags.vendorNumber))
	}
	if *flags.salesContact != "" {
		botOpts = append(botOpts, bot.WithSalesContactURL(*flags.salesContact))
	}
	handler := bot.NewHandler(st, sessions, msgService, catalog, botOpts...)

	scanner := reminder.NewScanner(st, msgService, catalog)
	sched := scheduler.NewScheduler()
	defer sched.Stop()
	if err := sched.AddJob(*flags.reminderCron, func() {
		if err := scanner.Run(ctx); err != nil {
			slog.Error("Reminder scan failed", "error", err)
		}
	}); err != nil {
		return err
	}
	slog.Info("Reminder scan scheduled", "cron", *flags.reminderCron)

	webOpts := []web.Option{}
	if *flags.webAddr != "" {
		webOpts = append(webOpts, web.WithAddr(*flags.webAddr))
	}
	if twilioSvc, ok := msgService.(*messaging.TwilioService); ok {
		webOpts = append(webOpts, web.WithWebhook(twilioSvc.WebhookHandler))
	}
	var webServer *web.Server
	if pairing != nil || len(webOpts) > 0 {
		webServer = web.NewServer(pairing, webOpts...)
		webServer.Start()
	}

	if err := msgService.Start(ctx); err != nil {
		return err
	}
	defer msgService.Stop()

	if connect != nil {
		go connect(ctx)
	}

	go handler.Run(ctx)

	<-ctx.Done()
	slog.Info("Shutdown signal received")

	if webServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer shutdownCancel()
		if err := webServer.Stop(shutdownCtx); err != nil {
			slog.Warn("Web server shutdown failed", "error", err)
		}
	}
	return nil
}
