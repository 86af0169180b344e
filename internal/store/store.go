// Package store persists computed estimates so users can review their
// footprint history. Backends: in-memory, SQLite and MongoDB.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/ecotrack/internal/carbon"
	"github.com/rshade/ecotrack/internal/config"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrNotFound is returned by Get for an unknown record ID.
	ErrNotFound = constError("estimate record not found")

	// ErrInvalidRecord is returned by Save for a record without ID or user.
	ErrInvalidRecord = constError("invalid estimate record")
)

// Record is one persisted estimate.
type Record struct {
	ID              string                  `json:"id" bson:"_id"`
	UserID          string                  `json:"user_id" bson:"user_id"`
	CreatedAt       time.Time               `json:"created_at" bson:"created_at"`
	FactorVersion   string                  `json:"factor_version" bson:"factor_version"`
	Convention      string                  `json:"convention" bson:"convention"`
	Input           carbon.LifestyleInput   `json:"input" bson:"input"`
	Breakdown       carbon.Breakdown        `json:"breakdown" bson:"breakdown"`
	Recommendations []carbon.Recommendation `json:"recommendations" bson:"recommendations"`
}

func (r Record) validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if r.UserID == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidRecord)
	}
	return nil
}

// Store persists estimate records. Implementations are safe for concurrent use.
type Store interface {
	// Save inserts r. Saving an existing ID is an error.
	Save(ctx context.Context, r Record) error

	// Get returns the record with id or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// List returns up to limit records of userID, newest first.
	List(ctx context.Context, userID string, limit int) ([]Record, error)

	Close() error
}

// Open creates the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		logger.Info().Str("driver", config.DriverMemory).Msg("estimate history kept in memory")
		return NewMemoryStore(), nil
	case config.DriverSQLite:
		s, err := NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("driver", config.DriverSQLite).Str("path", cfg.SQLitePath).Msg("estimate history store opened")
		return s, nil
	case config.DriverMongo:
		s, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("driver", config.DriverMongo).Str("database", cfg.MongoDatabase).Msg("estimate history store opened")
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
