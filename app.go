package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shopadmin/internal/auth"
	"shopadmin/internal/config"
	"shopadmin/internal/database"
	"shopadmin/internal/mailer"
	"shopadmin/internal/metrics"
	"shopadmin/internal/repositories"
	"shopadmin/internal/server"
	"shopadmin/internal/services"
	"shopadmin/pkg/rabbitmq"
)

// application owns every long-lived resource of a running process.
type application struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	auth    *services.AuthService
	fiber   *fiber.App
	purger  *repositories.GORMRevocationStore
	closers []func() error
}

// newApplication connects to the stores and builds the services and HTTP app.
func newApplication(cfg *config.Config, log *zap.Logger) (*application, error) {
	a := &application{cfg: cfg, log: log}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.closers = append(a.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	revocations, err := a.revocationStore()
	if err != nil {
		a.close()
		return nil, err
	}
	mail, err := a.mailer()
	if err != nil {
		a.close()
		return nil, err
	}

	m := metrics.New("shopadmin")

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)

	// --- Initialize Services ---
	a.auth = services.NewAuthService(services.AuthDeps{
		Users:        userRepo,
		ResetTokens:  repositories.NewGORMResetTokenRepository(db),
		Accounts:     repositories.NewGORMTransactor(db),
		Tokens:       auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Revocations:  revocations,
		Hasher:       auth.NewBcryptHasher(0),
		Mailer:       mail,
		ResetTTL:     cfg.PasswordResetTTL,
		ResetURLBase: cfg.ResetURLBase,
		Metrics:      m,
		Log:          log.Named("auth"),
	})

	a.fiber = server.New(server.Deps{
		Auth:       a.auth,
		Categories: services.NewCategoryService(categoryRepo, log.Named("categories")),
		Products:   services.NewProductService(productRepo, categoryRepo, log.Named("products")),
		Bulk:       services.NewBulkImportService(repositories.NewGORMTransactor(db), m, log.Named("bulk")),
		Metrics:    m,
		Log:        log,
	})
	return a, nil
}

func (a *application) revocationStore() (auth.RevocationStore, error) {
	switch a.cfg.RevocationStore {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		a.log.Info("Using Redis revocation store", zap.String("addr", a.cfg.RedisAddr))
		return auth.NewRedisRevocationStore(client), nil
	default:
		store := repositories.NewGORMRevocationStore(a.db)
		a.purger = store
		return store, nil
	}
}

func (a *application) mailer() (mailer.Mailer, error) {
	switch a.cfg.MailDriver {
	case "smtp":
		return newSMTPMailer(a.cfg), nil
	case "amqp":
		client, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:    a.cfg.RabbitMQURL,
			Queues: []string{a.cfg.MailQueue},
		}, a.log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return mailer.NewQueueMailer(client, a.cfg.MailQueue), nil
	default:
		return mailer.NewLogMailer(a.log.Named("mail")), nil
	}
}

func newSMTPMailer(cfg *config.Config) *mailer.SMTPMailer {
	return mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.MailHost,
		Port:     cfg.MailPort,
		Username: cfg.MailUsername,
		Password: cfg.MailPassword,
		From:     cfg.MailFrom,
	})
}

// purgeRevokedTokens deletes expired revocation rows every interval until ctx ends.
func (a *application) purgeRevokedTokens(ctx context.Context, interval time.Duration) {
	if a.purger == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := a.purger.PurgeExpired(ctx, now)
			if err != nil {
				a.log.Warn("Failed to purge revoked tokens", zap.Error(err))
				continue
			}
			if n > 0 {
				a.log.Info("Purged expired revoked tokens", zap.Int64("count", n))
			}
		}
	}
}

// close releases resources in reverse order of acquisition.
func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("Error during shutdown", zap.Error(err))
		}
	}
	a.closers = nil
}
