// Package store abre los repositorios según STORE_DRIVER.
package store

import (
	"context"
	"fmt"

	"github.com/jhoicas/Reckonix-api/internal/application/usecase"
	"github.com/jhoicas/Reckonix-api/internal/domain/repository"
	"github.com/jhoicas/Reckonix-api/internal/infrastructure/memory"
	"github.com/jhoicas/Reckonix-api/internal/infrastructure/mongodb"
	"github.com/jhoicas/Reckonix-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Reckonix-api/pkg/config"
)

// Stores repositorios listos para inyectar.
type Stores struct {
	Users     repository.UserRepository
	Companies repository.CompanyRepository
	Records   repository.RecordRepository
	Tx        usecase.TxRunner

	closers []func()
}

// Close libera las conexiones en orden inverso.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Open conecta los stores. Usuarios y empresas viven en PostgreSQL; las colecciones de
// negocio en PostgreSQL o MongoDB, y las colecciones indicadas se registran al
// arrancar. Con memory todo queda en proceso y las colecciones se crean vacías.
func Open(ctx context.Context, cfg *config.Config, collections []string) (*Stores, error) {
	if cfg.Store.Driver == config.StoreMemory {
		users := memory.NewUserRepository()
		companies := memory.NewCompanyRepository()
		return &Stores{
			Users:     users,
			Companies: companies,
			Records:   memory.NewRecordRepository(collections...),
			Tx:        memory.NewTxRunner(companies, users),
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	s := &Stores{
		Users:     postgres.NewUserRepository(pool),
		Companies: postgres.NewCompanyRepository(pool),
		Tx:        postgres.NewTxRunner(pool),
		closers:   []func(){pool.Close},
	}

	// El catálogo debe conocer todo ACCESS_COLLECTIONS, no solo lo que sembró la migración.
	var records catalog
	if cfg.Store.Driver == config.StoreMongo {
		client, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Disconnect(context.Background()) })
		records = mongodb.NewRecordRepository(client.Database(cfg.Mongo.Database))
	} else {
		records = postgres.NewRecordRepository(pool)
	}
	if err := records.RegisterCollections(ctx, collections); err != nil {
		s.Close()
		return nil, err
	}
	s.Records = records
	return s, nil
}

type catalog interface {
	repository.RecordRepository
	RegisterCollections(ctx context.Context, names []string) error
}
