// Command seed-db applies the schema and upserts catalog and vehicle
// reference data from a JSON file. Files ending in .gz are decompressed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/invsblmen/pos-bengkel/internal/domain/catalog"
	"github.com/invsblmen/pos-bengkel/internal/storage/postgres"
)

type seedFile struct {
	Parts    []partJSON    `json:"parts"`
	Services []serviceJSON `json:"services"`
	Vehicles []vehicleJSON `json:"vehicles"`
}

type partJSON struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	BuyPrice  decimal.Decimal `json:"buy_price"`
	SellPrice decimal.Decimal `json:"sell_price"`
	Stock     int             `json:"stock"`
}

type serviceJSON struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Price               decimal.Decimal `json:"price"`
	MaintenanceCategory string          `json:"maintenance_category"`
}

type vehicleJSON struct {
	ID         string `json:"id"`
	Plate      string `json:"plate"`
	OdometerKm int    `json:"odometer_km"`
}

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/seed.json", "path to seed JSON file, optionally .gz")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
	seed, err := readSeed(seedPath)
	if err != nil {
		return err
	}

	slog.Info("connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	cat := postgres.NewCatalogRepository(pool)
	for _, p := range seed.Parts {
		if err := cat.UpsertPart(ctx, p.part()); err != nil {
			return err
		}
	}
	slog.Info("upserted parts", slog.Int("count", len(seed.Parts)))

	for _, s := range seed.Services {
		if err := cat.UpsertService(ctx, s.service()); err != nil {
			return err
		}
	}
	slog.Info("upserted services", slog.Int("count", len(seed.Services)))

	vehicles := postgres.NewVehicleRepository(pool)
	for _, v := range seed.Vehicles {
		if err := vehicles.UpsertVehicle(ctx, v.ID, v.Plate, v.OdometerKm); err != nil {
			return err
		}
	}
	slog.Info("upserted vehicles", slog.Int("count", len(seed.Vehicles)))

	return nil
}

func readSeed(path string) (*seedFile, error) {
	slog.Info("reading seed file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open seed file")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	return decodeSeed(r)
}

func decodeSeed(r io.Reader) (*seedFile, error) {
	var seed seedFile
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return nil, errors.Wrap(err, "parse seed JSON")
	}
	for i, p := range seed.Parts {
		if p.ID == "" {
			return nil, errors.Errorf("part %d: id is required", i)
		}
		if p.BuyPrice.IsNegative() || p.SellPrice.IsNegative() {
			return nil, errors.Errorf("part %s: negative price", p.ID)
		}
	}
	for i, s := range seed.Services {
		if s.ID == "" {
			return nil, errors.Errorf("service %d: id is required", i)
		}
	}
	for i, v := range seed.Vehicles {
		if v.ID == "" {
			return nil, errors.Errorf("vehicle %d: id is required", i)
		}
		if v.OdometerKm < 0 {
			return nil, errors.Errorf("vehicle %s: negative odometer", v.ID)
		}
	}
	return &seed, nil
}

func (p partJSON) part() catalog.Part {
	return catalog.Part{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		BuyPrice:  p.BuyPrice,
		SellPrice: p.SellPrice,
		Stock:     p.Stock,
	}
}

func (s serviceJSON) service() catalog.Service {
	return catalog.Service{
		ID:                  s.ID,
		Name:                s.Name,
		Price:               s.Price,
		MaintenanceCategory: s.MaintenanceCategory,
	}
}
