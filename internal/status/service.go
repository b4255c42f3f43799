package status

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-daystatus/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-daystatus/internal/status/entity"
	statusrepo "github.com/ovaphlow/pitchfork/service-daystatus/internal/status/repo"
)

// Store reads and replaces per-day status records.
//
// Reads return the merge of every user's records: when two users hold the
// same date key, the record written last wins. Concurrent replaces for one
// user are last-commit-wins; there is no version check.
type Store struct {
	repo   *statusrepo.StatusRepo
	logger *zap.SugaredLogger
}

func NewStore(db *sqlx.DB, r *statusrepo.StatusRepo, logger *zap.SugaredLogger) *Store {
	if r == nil {
		r = statusrepo.NewStatusRepo(db)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{repo: r, logger: logger}
}

// GetOwn returns the merged map for an authenticated caller. The result is
// not filtered to userID.
func (s *Store) GetOwn(ctx context.Context, userID string) map[string]string {
	return s.merged(ctx, "user_id", userID)
}

// GetPublic returns the merged map without any caller identity.
func (s *Store) GetPublic(ctx context.Context) map[string]string {
	return s.merged(ctx)
}

// ReplaceAll makes data the complete set of records owned by userID. On
// error nothing changed.
func (s *Store) ReplaceAll(ctx context.Context, userID string, data map[string]string) error {
	if err := s.repo.ReplaceForUser(ctx, userID, data); err != nil {
		return apperror.Storage(err)
	}
	s.logger.Debugw("status replaced", "user_id", userID, "entries", len(data))
	return nil
}

// Summary computes dashboard statistics over the public map.
func (s *Store) Summary(ctx context.Context) Summary {
	return Summarize(s.GetPublic(ctx))
}

func (s *Store) Labels() []string { return entity.Labels() }

// merged folds all records into one map. Storage errors are logged and an
// empty map is returned.
func (s *Store) merged(ctx context.Context, logKV ...any) map[string]string {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Warnw("status read failed", append(logKV, "err", err)...)
		return map[string]string{}
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.DataKey] = r.StatusValue
	}
	return out
}
