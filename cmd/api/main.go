package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/retail-ledger/internal/application/auth"
	appledger "github.com/jhoicas/retail-ledger/internal/application/ledger"
	"github.com/jhoicas/retail-ledger/internal/application/ports"
	appstock "github.com/jhoicas/retail-ledger/internal/application/stock"
	apptransfer "github.com/jhoicas/retail-ledger/internal/application/transfer"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/events"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/retail-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/retail-ledger/internal/interfaces/http"
	"github.com/jhoicas/retail-ledger/pkg/config"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}

	ctx := context.Background()
	repos, tx, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	// Redis: lock distribuido y caché de estados de cuenta. Sin Redis, lock en proceso.
	var (
		locker    ports.Locker
		stmtCache ports.StatementCache
	)
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		locker = lock.NewRedisLocker(rdb, lock.DefaultRedisOptions(), log.Component("lock"))
		stmtCache = cache.NewRedisStatementCache(rdb)
	} else {
		if cfg.App.StoreDriver == "postgres" {
			log.Warn().Msg("sin REDIS_ADDR: el lock por producto solo protege esta instancia")
		}
		locker = lock.NewKeyedMutex()
		stmtCache = cache.NewMemoryStatementCache(1024)
	}

	var publisher ports.EventPublisher = events.Nop{}
	if cfg.Kafka.Enabled() {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar publicador Kafka")
			}
		}()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicando eventos en Kafka")
	}

	ledgerUC := appledger.NewUseCase(appledger.Deps{
		Repos:     repos,
		Tx:        tx,
		Cache:     stmtCache,
		CacheTTL:  cfg.Ledger.StatementCacheTTL,
		Renderer:  infrapdf.NewStatementRenderer(),
		Publisher: publisher,
		Log:       log,
	})
	stockUC := appstock.NewUseCase(appstock.Deps{Repos: repos, Tx: tx, Locker: locker, Publisher: publisher, Log: log})
	transferUC := apptransfer.NewUseCase(apptransfer.Deps{Repos: repos, Tx: tx, Locker: locker, Publisher: publisher, Log: log})
	authUC := auth.NewAuthUseCase(repos.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Retail Ledger API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:   ledgerUC,
		StockUC:    stockUC,
		TransferUC: transferUC,
		AuthUC:     authUC,
		JWTSecret:  cfg.JWT.Secret,
		Log:        log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStore abre PostgreSQL (aplicando el esquema) o el almacén en memoria según STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.Repos, ports.TxRunner, func()) {
	if cfg.App.StoreDriver == "memory" {
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.New()
		return store.Repos(), store, func() {}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("migrar esquema")
	}
	return postgres.NewRepos(pool), postgres.NewTxRunner(pool), pool.Close
}
