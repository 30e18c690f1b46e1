package interfacegen

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/interfaces"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
)

// variabilityAdaptiveCutoff sends highly variable users to the adaptive
// theme even when their trajectory label reads stable.
const variabilityAdaptiveCutoff = 0.7

// themes.yaml holds the frontend-facing palette and motion contract per
// theme name. Animation stays low where agitation is likely.
//
//go:embed themes.yaml
var themesRaw []byte

type themeStyle struct {
	Animation string            `yaml:"animation"`
	Palette   map[string]string `yaml:"palette"`
}

var themeStyles = mustParseThemeStyles(themesRaw)

func mustParseThemeStyles(raw []byte) map[string]themeStyle {
	var styles map[string]themeStyle
	if err := yaml.Unmarshal(raw, &styles); err != nil {
		panic(fmt.Sprintf("interfacegen: parse themes.yaml: %v", err))
	}
	for _, name := range []string{
		interfaces.ThemeCrisis,
		interfaces.ThemeCalm,
		interfaces.ThemeWarm,
		interfaces.ThemeAdaptive,
		interfaces.ThemeBalanced,
	} {
		style, ok := styles[name]
		if !ok || style.Animation == "" || len(style.Palette) == 0 {
			panic(fmt.Sprintf("interfacegen: themes.yaml missing style for %q", name))
		}
	}
	return styles
}

// ThemeSelector picks the visual register for one snapshot. Rules run in
// strict precedence order; the crisis theme at critical risk is not
// negotiable by any later rule.
type ThemeSelector struct{}

func NewThemeSelector() *ThemeSelector { return &ThemeSelector{} }

func (s *ThemeSelector) Select(p domain.AggregatedPatterns) domain.Theme {
	theme := s.pick(p)
	style := themeStyles[theme.Name]
	theme.Palette = style.Palette
	theme.Animation = style.Animation
	if p.Risk.Level == patterns.RiskMedium {
		theme.OverlayTags = append(theme.OverlayTags, "elevated_support")
	}
	return theme
}

func (s *ThemeSelector) pick(p domain.AggregatedPatterns) domain.Theme {
	switch p.Risk.Level {
	case patterns.RiskCritical:
		return domain.Theme{Name: interfaces.ThemeCrisis, Variant: "full"}
	case patterns.RiskHigh:
		return domain.Theme{Name: interfaces.ThemeCrisis, Variant: "soft"}
	}

	if p.Emotional.Trajectory == patterns.TrajectoryVolatile || p.Emotional.Variability > variabilityAdaptiveCutoff {
		return domain.Theme{Name: interfaces.ThemeAdaptive}
	}
	if p.Emotional.Trajectory == patterns.TrajectoryImproving {
		return domain.Theme{Name: interfaces.ThemeBalanced, Variant: "uplift"}
	}

	switch dominantEmotion(p.Emotional) {
	case "fear", "anxious":
		return domain.Theme{Name: interfaces.ThemeCalm}
	case "sad", "hopeless", "resigned", "numb":
		return domain.Theme{Name: interfaces.ThemeWarm}
	case "angry":
		return domain.Theme{Name: interfaces.ThemeCalm}
	}
	return domain.Theme{Name: interfaces.ThemeBalanced}
}

// dominantEmotion is the largest distribution share, ties broken
// alphabetically so repeated runs agree.
func dominantEmotion(e domain.EmotionalPattern) string {
	best, bestShare := "", 0.0
	for emotion, share := range e.Distribution {
		if share > bestShare || (share == bestShare && best != "" && emotion < best) {
			best, bestShare = emotion, share
		}
	}
	return best
}
