// seed crea el usuario admin y, con -demo, sucursales, productos y cuentas de ejemplo.
//
// Uso: go run ./cmd/seed -email admin@tienda.local -password <clave> [-demo]
// Usa la misma configuración que la API (DATABASE_URL / DB_*); es idempotente para el admin.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/application/auth"
	appledger "github.com/jhoicas/retail-ledger/internal/application/ledger"
	"github.com/jhoicas/retail-ledger/internal/application/ports"
	appstock "github.com/jhoicas/retail-ledger/internal/application/stock"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/retail-ledger/pkg/config"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

func main() {
	email := flag.String("email", "admin@tienda.local", "email del admin")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "password del admin (mín. 8)")
	demo := flag.Bool("demo", false, "crear datos de ejemplo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrar esquema")
	}

	repos := postgres.NewRepos(pool)
	tx := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(repos.Users, auth.JWTConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}, log)
	admin, created, err := authUC.EnsureAdmin(ctx, *email, *password)
	if err != nil {
		log.Fatal().Err(err).Msg("crear admin")
	}
	log.Info().Str("email", admin.Email).Bool("created", created).Msg("admin listo")

	if !*demo {
		return
	}
	if err := seedDemo(ctx, repos, tx, admin.ID, log); err != nil {
		log.Fatal().Err(err).Msg("datos de ejemplo")
	}
	log.Info().Msg("datos de ejemplo creados")
}

func seedDemo(ctx context.Context, repos repository.Repos, tx ports.TxRunner, userID string, log *logger.Logger) error {
	stockUC := appstock.NewUseCase(appstock.Deps{Repos: repos, Tx: tx, Locker: lock.NewKeyedMutex(), Log: log})
	ledgerUC := appledger.NewUseCase(appledger.Deps{Repos: repos, Tx: tx, Log: log})

	branch, err := stockUC.CreateBranch(ctx, "Sucursal Centro", "Calle 10 # 5-20")
	if err != nil {
		return err
	}

	products := []appstock.CreateProductInput{
		{Name: "Arroz 500 g", Code: "ARZ-500", MinQuantity: decimal.NewFromInt(20), InitialQuantity: decimal.NewFromInt(120)},
		{Name: "Aceite 1 L", Code: "ACE-1000", MinQuantity: decimal.NewFromInt(10), InitialQuantity: decimal.NewFromInt(8)},
		{Name: "Azúcar 1 kg", Code: "AZU-1000", MinQuantity: decimal.NewFromInt(15), InitialQuantity: decimal.NewFromInt(40)},
		{Name: "Arroz 500 g", Code: "ARZ-500", MinQuantity: decimal.NewFromInt(5), InitialQuantity: decimal.NewFromInt(12), BranchID: &branch.ID},
	}
	for _, p := range products {
		p.UserID = userID
		if _, err := stockUC.CreateProduct(ctx, p); err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return fmt.Errorf("producto %s: %w", p.Code, err)
		}
	}

	acc, err := ledgerUC.CreateAccount(ctx, appledger.CreateAccountInput{
		Name: "María Gómez", Phone: "3001234567", OpeningBalance: decimal.NewFromInt(25000),
	})
	if err != nil {
		return err
	}
	if _, err := ledgerUC.RecordEvent(ctx, appledger.RecordEventInput{
		AccountID: acc.ID, Kind: entity.LedgerKindSale, Amount: decimal.NewFromInt(48000), Reference: "FAC-0001", UserID: userID,
	}); err != nil {
		return err
	}
	_, err = ledgerUC.RecordEvent(ctx, appledger.RecordEventInput{
		AccountID: acc.ID, Kind: entity.LedgerKindReceipt, Amount: decimal.NewFromInt(30000), Reference: "RC-0001", UserID: userID,
	})
	return err
}
