package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"github.com/openlive/faq-chatbot/internal/config"
	"github.com/openlive/faq-chatbot/internal/database"
	"github.com/openlive/faq-chatbot/internal/handler"
	"github.com/openlive/faq-chatbot/internal/middleware"
	"github.com/openlive/faq-chatbot/internal/repository"
	"github.com/openlive/faq-chatbot/internal/service"
)

// main is the single entry-point for the chatbot API.
func main() {
	cfg := config.Load()
	log.Printf("Configuration loaded:")
	log.Printf("  - Corpus source: %s", cfg.CorpusSource)
	log.Printf("  - Corpus path: %s", cfg.CorpusPath)
	log.Printf("  - Match threshold: %.2f", cfg.MatchThreshold)
	log.Printf("  - AI provider: %q", cfg.AIProvider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mongoDB *mongo.Database
	if cfg.MongoURI != "" {
		client, err := database.NewMongo(ctx, cfg.MongoURI)
		switch {
		case err != nil && cfg.CorpusSource == config.SourceMongo:
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		case err != nil:
			log.Printf("Warning: MongoDB unavailable, interaction logging to Mongo disabled: %v", err)
		default:
			defer client.Disconnect(context.Background())
			mongoDB = client.Database(cfg.DBName)
			log.Printf("Connected to MongoDB, using database: %s", cfg.DBName)
		}
	}

	// Corpus
	var repo service.CorpusRepository
	var fileRepo *repository.FileCorpusRepository
	if cfg.CorpusSource == config.SourceMongo {
		repo = repository.NewMongoCorpusRepository(mongoDB)
	} else {
		fileRepo = repository.NewFileCorpusRepository(cfg.CorpusPath)
		repo = fileRepo
	}

	faqSvc, err := service.NewFAQService(ctx, repo, service.FAQOptions{
		MatchThreshold:  &cfg.MatchThreshold,
		SearchThreshold: cfg.SearchThreshold,
		SearchLimit:     cfg.SearchLimit,
	})
	if err != nil {
		log.Printf("Warning: FAQ corpus unavailable: %v", err)
	}

	// Interaction logging
	sinks := openSinks(ctx, cfg, mongoDB)
	defer sinks.close()

	interactions, err := service.NewInteractionLogger(sinks.sinks, service.LoggerOptions{
		Workers: cfg.LoggerWorkers,
		Timeout: cfg.LogTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to start interaction logger: %v", err)
	}
	defer interactions.Close()

	// Chat
	fallback, closeFallback := newFallback(ctx, cfg, faqSvc)
	defer closeFallback()
	chatSvc := service.NewChatService(faqSvc, fallback, interactions)

	// Create Fiber app
	fiberCfg := handler.AppConfig()
	fiberCfg.ReadTimeout = cfg.ReadTimeout
	fiberCfg.WriteTimeout = cfg.WriteTimeout
	fiberCfg.BodyLimit = middleware.BodyLimit
	app := fiber.New(fiberCfg)

	app.Use(middleware.Recover())
	app.Use(middleware.Logging())
	app.Use(middleware.Security())
	app.Use(middleware.CORS(cfg.Origins()))

	handler.NewHealthHandler(faqSvc, sinks.checks).Register(app)
	handler.RegisterRoutes(app, handler.Services{
		FAQ:     faqSvc,
		Chat:    chatSvc,
		Logger:  interactions,
		History: sinks.history,
	})
	app.Static("/", cfg.StaticDir)
	app.Use(middleware.NotFound)

	interactions.LogStartup()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server starting on port %s", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("Shutting down server")
		return app.ShutdownWithTimeout(10 * time.Second)
	})
	if fileRepo != nil && cfg.WatchCorpus {
		g.Go(func() error {
			return fileRepo.Watch(gctx, func() {
				if err := faqSvc.Reload(gctx); err != nil {
					log.Printf("Corpus reload failed, keeping current corpus: %v", err)
				}
			})
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Server stopped with error: %v", err)
		return
	}
	log.Printf("Server stopped")
}

// sinkSet is every interaction sink that could be opened plus the first
// readable one.
type sinkSet struct {
	sinks   []service.InteractionSink
	history service.InteractionReader
	checks  map[string]handler.HealthCheck
	closers []func() error
}

func (s *sinkSet) add(sink service.InteractionSink) {
	s.sinks = append(s.sinks, sink)
	if r, ok := sink.(service.InteractionReader); ok && s.history == nil {
		s.history = r
	}
}

func (s *sinkSet) close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			log.Printf("Warning: closing sink: %v", err)
		}
	}
}

func openSinks(ctx context.Context, cfg config.Config, mongoDB *mongo.Database) *sinkSet {
	set := &sinkSet{checks: map[string]handler.HealthCheck{}}

	if cfg.SQLitePath != "" {
		sink, db, err := openSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			log.Printf("Warning: SQLite interaction log disabled: %v", err)
		} else {
			set.add(sink)
			set.checks["sqlite"] = db.PingContext
			set.closers = append(set.closers, db.Close)
			log.Printf("Interaction log: SQLite at %s", cfg.SQLitePath)
		}
	}

	if mongoDB != nil {
		set.add(repository.NewMongoInteractionRepository(mongoDB))
		set.checks["mongo"] = func(ctx context.Context) error {
			return mongoDB.Client().Ping(ctx, nil)
		}
		log.Printf("Interaction log: MongoDB collection interactions")
	}

	if cfg.SheetsID != "" {
		sheet, err := repository.NewSheetsInteractionRepository(ctx, repository.SheetsConfig{
			SpreadsheetID:     cfg.SheetsID,
			SheetName:         cfg.SheetsName,
			RequestsPerSecond: cfg.SheetsRPS,
		}, option.WithCredentialsFile(cfg.SheetsCredentialsFile))
		if err != nil {
			log.Printf("Warning: Google Sheets interaction log disabled: %v", err)
		} else {
			if err := sheet.EnsureHeader(ctx); err != nil {
				log.Printf("Warning: could not initialise sheet header: %v", err)
			}
			set.add(sheet)
			log.Printf("Interaction log: Google Sheet %s", cfg.SheetsID)
		}
	}

	if len(set.sinks) == 0 {
		log.Printf("Interaction log: disabled (no sinks configured)")
	}
	return set
}

func openSQLite(ctx context.Context, path string) (*repository.SQLiteInteractionRepository, *sql.DB, error) {
	db, err := database.NewSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	sink, err := repository.NewSQLiteInteractionRepository(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return sink, db, nil
}

// newFallback returns the configured AI fallback (nil when disabled) and its
// cleanup.
func newFallback(ctx context.Context, cfg config.Config, faq service.FAQService) (service.AnswerGenerator, func()) {
	switch cfg.AIProvider {
	case config.AIProviderStatic:
		return service.NewStaticFallback(cfg.FallbackMessage), func() {}
	case config.AIProviderVertex:
		var topics []string
		for _, s := range faq.FrequentQuestions(ctx, 10) {
			topics = append(topics, s.Question)
		}
		vf, err := service.NewVertexFallback(ctx, service.VertexConfig{
			ProjectID:       cfg.ProjectID,
			Location:        cfg.Location,
			Model:           cfg.Model,
			CredentialsFile: cfg.CredentialsFile,
			Topics:          topics,
		})
		if err != nil {
			log.Printf("Warning: Vertex AI fallback disabled: %v", err)
			return nil, func() {}
		}
		return vf, func() { _ = vf.Close() }
	default:
		return nil, func() {}
	}
}
