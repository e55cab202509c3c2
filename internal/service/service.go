package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"fuelbook/backend/internal/cache"
	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/store"
	"fuelbook/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

const summaryCacheKey = "summary:global"

type Service struct {
	repo      store.Repository
	summaries cache.SummaryCache
	log       *logrus.Logger
	validate  *validator.Validate
	cacheTTL  time.Duration
}

func New(repo store.Repository, summaries cache.SummaryCache, log *logrus.Logger, cacheTTL time.Duration) *Service {
	if summaries == nil {
		summaries = cache.NoopSummaryCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &Service{
		repo:      repo,
		summaries: summaries,
		log:       log,
		validate:  validator.New(),
		cacheTTL:  cacheTTL,
	}
}

func (s *Service) invalidateSummary(ctx context.Context) {
	if err := s.summaries.Invalidate(ctx, summaryCacheKey); err != nil {
		s.log.WithError(err).Warn("summary cache invalidate failed")
	}
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("aud"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"action": action,
			"entity": entityType + "/" + entityID,
		}).Warn("audit log write failed")
	}
}

func (s *Service) requireAdmin(ctx context.Context) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required: %w", store.ErrInvalid)
	}
	return nil
}

// parseDate accepts RFC3339 or a bare YYYY-MM-DD; empty means now.
func parseDate(raw string, fallback time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable date %q: %w", raw, store.ErrInvalid)
}

func (s *Service) validateStruct(req any) error {
	if err := s.validate.Struct(req); err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			return fmt.Errorf("%s: %w", verr.Error(), store.ErrInvalid)
		}
		return fmt.Errorf("%v: %w", err, store.ErrInvalid)
	}
	return nil
}
