// Package interfacegen turns one user's aggregated patterns into a
// renderable interface configuration: theme, visible components, layout
// order, cultural overlay, and an explained change list diffed against the
// previous build.
package interfacegen

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/attunelabs/attune-backend/internal/domain"
	pkgerrors "github.com/attunelabs/attune-backend/internal/pkg/errors"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

// Generator orchestrates theme selection, component visibility, layout
// prioritization, and change detection. It is pure over its inputs; the
// services layer owns encryption and persistence.
type Generator struct {
	log *logger.Logger

	themes     *ThemeSelector
	visibility *ComponentVisibilityEngine
	layout     *LayoutPrioritizer
	changes    *ChangeDetector

	now func() time.Time
}

func NewGenerator(log *logger.Logger) *Generator {
	return &Generator{
		log:        log.With("module", "interfacegen"),
		themes:     NewThemeSelector(),
		visibility: NewComponentVisibilityEngine(),
		layout:     NewLayoutPrioritizer(),
		changes:    NewChangeDetector(),
		now:        time.Now,
	}
}

// Generate builds the next config for one user. previous is nil on the
// first build; the change list then carries the single baseline entry.
func (g *Generator) Generate(p domain.AggregatedPatterns, previous *domain.UIConfig) (domain.UIConfig, error) {
	if p.UserID == uuid.Nil {
		return domain.UIConfig{}, fmt.Errorf("generate config: %w", pkgerrors.ErrInvalidArgument)
	}

	theme := g.themes.Select(p)
	visible := g.visibility.Evaluate(p)
	layout, mobile := g.layout.Prioritize(visible, p)

	// Components render in layout order.
	components := make([]domain.ComponentConfig, 0, len(layout))
	for _, entry := range layout {
		components = append(components, visible[entry.Component])
	}

	version := 1
	if previous != nil {
		version = previous.Metadata.Version + 1
	}

	cfg := domain.UIConfig{
		UserID:     p.UserID,
		Theme:      theme,
		Components: components,

		Layout:       layout,
		MobileLayout: mobile,

		CulturalOverlay: domain.CulturalOverlay{
			Language:              p.Cultural.PrimaryLanguage,
			CommunicationApproach: p.Cultural.CommunicationApproach,
			StoicismLevel:         p.Cultural.StoicismLevel,
		},

		Metadata: domain.UIMetadata{
			RiskLevel:      p.Risk.Level,
			Theme:          theme.Name,
			SessionCount:   p.SessionCount,
			DataConfidence: p.DataConfidence,
			Version:        version,
			GeneratedAt:    g.now().UTC(),
		},
	}
	cfg.Changes = g.changes.Diff(previous, cfg)

	g.log.Debug("generated interface config",
		"user_id", p.UserID.String(),
		"theme", cfg.Theme.Name,
		"risk_level", cfg.Metadata.RiskLevel,
		"components", len(cfg.Components),
		"changes", len(cfg.Changes),
	)
	return cfg, nil
}
