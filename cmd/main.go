package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	discordclient "capturebot/clients/discord"
	"capturebot/config"
	"capturebot/db"
	"capturebot/handlers"
	"capturebot/services/archiver"
	"capturebot/services/entities"
	"capturebot/services/messages"
	"capturebot/services/txmanager"
	discordusecase "capturebot/usecases/discord"
)

const shutdownTimeout = 5 * time.Second

var skipMigrations bool

func main() {
	root := &cobra.Command{
		Use:          "capturebot",
		Short:        "Capture Discord messages, threads and reactions into Postgres",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	root.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "start without applying database migrations")
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			dbConn, err := connect(cfg)
			if err != nil {
				return err
			}
			defer dbConn.Close()

			return db.ApplyMigrations(dbConn, cfg.DatabaseConfig.Schema)
		},
	}
}

func connect(cfg *config.AppConfig) (*sqlx.DB, error) {
	dsn, err := cfg.DatabaseConfig.DSN()
	if err != nil {
		return nil, err
	}
	return db.NewConnection(dsn)
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Initialize database connection
	dbConn, err := connect(cfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if skipMigrations {
		log.Printf("⚠️ Skipping database migrations")
	} else if err := db.ApplyMigrations(dbConn, cfg.DatabaseConfig.Schema); err != nil {
		return err
	}

	// Initialize repositories with shared connection
	entitiesRepo := db.NewPostgresEntitiesRepository(dbConn, cfg.DatabaseConfig.Schema)
	messagesRepo := db.NewPostgresMessagesRepository(dbConn, cfg.DatabaseConfig.Schema)

	txManager := txmanager.NewTransactionManager(dbConn)

	entitiesService := entities.NewEntitiesService(entitiesRepo)
	messagesService := messages.NewMessagesService(messagesRepo, txManager)
	archiverService := archiver.NewArchiverService(
		&http.Client{Timeout: cfg.ArchiveConfig.DownloadTimeout},
		cfg.ArchiveConfig,
	)

	session, err := discordgo.New("Bot " + cfg.DiscordConfig.BotToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	discordClient := discordclient.NewDiscordClient(session)

	discordUseCase := discordusecase.NewDiscordUseCase(
		discordClient,
		entitiesService,
		messagesService,
		archiverService,
		cfg.RankingConfig,
	)
	discordHandler := handlers.NewDiscordEventsHandler(session, discordClient, discordUseCase, cfg)

	router := mux.NewRouter()
	handlers.NewHealthHandler(cfg.Environment).SetupEndpoints(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
	}

	if err := discordHandler.StartBot(); err != nil {
		return err
	}
	defer discordHandler.StopBot()

	return handleGracefulShutdown(ctx, server)
}

func handleGracefulShutdown(ctx context.Context, server *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("🛑 Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("❌ Server shutdown error: %v", err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
