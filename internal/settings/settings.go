// Package settings stores the platform-wide settings bag.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ordelix/ordelix/internal/shared"
)

// DefaultBannerText is installed when no settings have been saved.
const DefaultBannerText = "Welcome to Ordelix - The Premium Artisan Commerce Network"

// Settings is the mutable platform configuration.
type Settings struct {
	BannerText       string `json:"bannerText"`
	FeatureApprovals bool   `json:"featureApprovals"`
	DemoMode         bool   `json:"demoMode"`
}

// HasBanner reports whether a banner should be shown.
func (s Settings) HasBanner() bool {
	return strings.TrimSpace(s.BannerText) != ""
}

// Default returns the initial settings.
func Default() Settings {
	return Settings{BannerText: DefaultBannerText, FeatureApprovals: true, DemoMode: true}
}

// UpdateRequest merges supplied keys into the stored settings.
type UpdateRequest struct {
	BannerText       *string `json:"bannerText,omitempty"`
	FeatureApprovals *bool   `json:"featureApprovals,omitempty"`
	DemoMode         *bool   `json:"demoMode,omitempty"`
}

// Keys lists the supplied keys in declaration order.
func (r UpdateRequest) Keys() []string {
	keys := make([]string, 0, 3)
	if r.BannerText != nil {
		keys = append(keys, "bannerText")
	}
	if r.FeatureApprovals != nil {
		keys = append(keys, "featureApprovals")
	}
	if r.DemoMode != nil {
		keys = append(keys, "demoMode")
	}
	return keys
}

// Apply returns s with the supplied keys overwritten.
func (r UpdateRequest) Apply(s Settings) Settings {
	if r.BannerText != nil {
		s.BannerText = *r.BannerText
	}
	if r.FeatureApprovals != nil {
		s.FeatureApprovals = *r.FeatureApprovals
	}
	if r.DemoMode != nil {
		s.DemoMode = *r.DemoMode
	}
	return s
}

// Repository persists settings.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

// Service reads and updates settings.
type Service struct {
	mu     sync.Mutex
	repo   Repository
	audit  shared.AuditTrail
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service. audit may be nil.
func NewService(repo Repository, audit shared.AuditTrail, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// Get returns the current settings.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	return s.repo.Get(ctx)
}

// Update merges req into the stored settings and records which keys changed.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Get(ctx)
	if err != nil {
		return Settings{}, err
	}
	updated := req.Apply(current)
	if err := s.repo.Save(ctx, updated); err != nil {
		return Settings{}, fmt.Errorf("save settings: %w", err)
	}

	if s.audit != nil {
		keys := req.Keys()
		err := s.audit.Record(ctx, shared.AuditLog{
			Action:      "Settings Updated",
			Entity:      "settings",
			EntityID:    "platform",
			Details:     "System settings updated: " + strings.Join(keys, ", "),
			PerformedBy: "Admin",
			Meta:        map[string]any{"keys": keys},
			At:          s.now().UTC(),
		})
		if err != nil {
			s.logger.Warn("record settings audit", slog.Any("error", err))
		}
	}
	return updated, nil
}
