package storage

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/support-intel/internal/domain"
	"github.com/spec-kit/support-intel/internal/reconcile"
)

// Source identifies where a loaded ticket set came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceEmpty  Source = "empty"
)

// SmartStore layers the remote row-per-customer store over the local
// mirror. Loads prefer remote; saves always write the local mirror and then
// sync remote best-effort, so a failed remote write never loses data within
// a session.
type SmartStore struct {
	remote *PostgresStore
	local  *RedisStore
	logger *zap.Logger
}

// NewSmartStore builds the layered store. Either layer may be nil.
func NewSmartStore(remote *PostgresStore, local *RedisStore, logger *zap.Logger) *SmartStore {
	return &SmartStore{remote: remote, local: local, logger: logger}
}

// LoadSharedFirst loads the shared remote state first, falling back to the
// local mirror, and reports which source served the data. On a local hit
// with remote enabled, the local state is pushed up so the remote store
// converges.
func (s *SmartStore) LoadSharedFirst(ctx context.Context) ([]domain.SupportTicket, Source, error) {
	if s.remote != nil {
		tickets, err := s.remote.LoadAll(ctx)
		if err == nil {
			return tickets, SourceRemote, nil
		}
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("remote ticket load failed", zap.Error(err))
		}
	}

	if s.local != nil {
		tickets, err := s.local.LoadAll(ctx)
		if err == nil {
			if s.remote != nil && len(tickets) > 0 {
				if syncErr := s.remote.SaveAll(ctx, tickets); syncErr != nil {
					s.logger.Warn("remote backfill failed", zap.Error(syncErr))
				}
			}
			return tickets, SourceLocal, nil
		}
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("local ticket load failed", zap.Error(err))
		}
	}

	return nil, SourceEmpty, nil
}

// SaveSmart writes the local mirror first, then syncs remote. The returned
// source reports the most durable layer that accepted the write.
func (s *SmartStore) SaveSmart(ctx context.Context, tickets []domain.SupportTicket) Source {
	saved := SourceEmpty
	if s.local != nil {
		if err := s.local.SaveAll(ctx, tickets); err != nil {
			s.logger.Warn("local ticket save failed", zap.Error(err))
		} else {
			saved = SourceLocal
		}
	}
	if s.remote != nil {
		if err := s.remote.SaveAll(ctx, tickets); err != nil {
			s.logger.Warn("remote ticket save failed", zap.Error(err))
		} else {
			saved = SourceRemote
		}
	}
	return saved
}

// BootstrapLegacy runs the one-time legacy migration: only when neither
// store has current-format data, the v1 issue blob (if present) is migrated
// and persisted. Returns the migrated set, which is empty when there was
// nothing to migrate.
func (s *SmartStore) BootstrapLegacy(ctx context.Context) ([]domain.SupportTicket, error) {
	if s.local == nil {
		return nil, nil
	}
	issues, err := s.local.LoadLegacyIssues(ctx)
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return nil, nil
	}

	migrated := reconcile.MigrateLegacyIssues(issues)
	s.logger.Info("migrated legacy issues", zap.Int("issues", len(issues)), zap.Int("tickets", len(migrated)))
	s.SaveSmart(ctx, migrated)
	return migrated, nil
}
