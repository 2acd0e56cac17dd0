package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/repository"
)

// CatalogProvisioner creates and removes catalog databases and tables.
type CatalogProvisioner struct {
	catalog repository.Catalog
	logger  *zap.Logger
}

// NewCatalogProvisioner creates a new CatalogProvisioner.
func NewCatalogProvisioner(catalog repository.Catalog, logger *zap.Logger) *CatalogProvisioner {
	return &CatalogProvisioner{
		catalog: catalog,
		logger:  logger,
	}
}

// CreateDatabase returns created=false with a nil error when the database already exists.
func (p *CatalogProvisioner) CreateDatabase(ctx context.Context, name, description string) (bool, error) {
	err := p.catalog.CreateDatabase(ctx, name, description)
	if errors.Is(err, domain.ErrAlreadyExists) {
		p.logger.Info("Catalog database already exists", zap.String("database", name))
		return false, nil
	}
	if err != nil {
		p.logger.Error("Failed to create catalog database", zap.String("database", name), zap.Error(err))
		return false, fmt.Errorf("usecase: create database %s: %w", name, err)
	}
	p.logger.Info("Catalog database created", zap.String("database", name))
	return true, nil
}

// CreateTable declares an external table. Only catalog metadata is touched.
func (p *CatalogProvisioner) CreateTable(ctx context.Context, database string, schema domain.TableSchema) (bool, error) {
	err := p.catalog.CreateTable(ctx, database, schema)
	if errors.Is(err, domain.ErrAlreadyExists) {
		p.logger.Info("Catalog table already exists",
			zap.String("database", database),
			zap.String("table", schema.Name),
		)
		return false, nil
	}
	if err != nil {
		p.logger.Error("Failed to create catalog table",
			zap.String("database", database),
			zap.String("table", schema.Name),
			zap.Error(err),
		)
		return false, fmt.Errorf("usecase: create table %s.%s: %w", database, schema.Name, err)
	}
	p.logger.Info("Catalog table created",
		zap.String("database", database),
		zap.String("table", schema.Name),
		zap.String("location", schema.Location),
	)
	return true, nil
}

// DeleteDatabase deletes every table of the database and then the database.
// Each failure is logged and the attempt continues; all failures are joined
// into the returned error. A database that does not exist is skipped.
func (p *CatalogProvisioner) DeleteDatabase(ctx context.Context, name string) error {
	tables, err := p.catalog.ListTables(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		p.logger.Info("Catalog database does not exist, skipping deletion", zap.String("database", name))
		return nil
	}

	var errs []error
	if err != nil {
		p.logger.Error("Failed to list catalog tables", zap.String("database", name), zap.Error(err))
		errs = append(errs, fmt.Errorf("usecase: list tables in %s: %w", name, err))
	}

	for _, table := range tables {
		if err := p.catalog.DeleteTable(ctx, name, table); err != nil {
			p.logger.Error("Failed to delete catalog table",
				zap.String("database", name),
				zap.String("table", table),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("usecase: delete table %s.%s: %w", name, table, err))
			continue
		}
		p.logger.Info("Deleted catalog table", zap.String("database", name), zap.String("table", table))
	}

	if err := p.catalog.DeleteDatabase(ctx, name); err != nil {
		p.logger.Error("Failed to delete catalog database", zap.String("database", name), zap.Error(err))
		errs = append(errs, fmt.Errorf("usecase: delete database %s: %w", name, err))
	} else {
		p.logger.Info("Deleted catalog database", zap.String("database", name))
	}

	return errors.Join(errs...)
}
