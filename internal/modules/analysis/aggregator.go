package analysis

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
	"github.com/attunelabs/attune-backend/internal/modules/analysis/tables"
	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

// Aggregator runs every analyzer over one user's session window and returns
// a single immutable snapshot. All analyzers are constructed once here and
// shared across users; none of them holds per-user state.
type Aggregator struct {
	log *logger.Logger

	baseline   *BaselineTracker
	emotional  *EmotionalPatternAnalyzer
	cultural   *CulturalContextAnalyzer
	triggers   *TriggerDetector
	coping     *CopingEffectivenessTracker
	dissonance *DissonanceDetector
	risk       *RiskAssessmentEngine
	profiler   *MentalHealthProfiler

	now func() time.Time
}

func NewAggregator(tab *tables.Tables, log *logger.Logger) *Aggregator {
	return &Aggregator{
		log:        log.With("module", "analysis"),
		baseline:   NewBaselineTracker(),
		emotional:  NewEmotionalPatternAnalyzer(),
		cultural:   NewCulturalContextAnalyzer(tab),
		triggers:   NewTriggerDetector(tab),
		coping:     NewCopingEffectivenessTracker(tab),
		dissonance: NewDissonanceDetector(tab),
		risk:       NewRiskAssessmentEngine(),
		profiler:   NewMentalHealthProfiler(),
		now:        time.Now,
	}
}

// Aggregate computes one user's complete pattern snapshot. Sessions may
// arrive in any order; an empty window still yields a valid snapshot with
// an unestablished baseline and no dissonance read.
func (a *Aggregator) Aggregate(userID uuid.UUID, sessions []domain.VoiceSession, loc *time.Location, windowDays int) domain.AggregatedPatterns {
	ordered := make([]domain.VoiceSession, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].RecordedAt.Before(ordered[j].RecordedAt)
	})

	baseline := a.baseline.Compute(ordered)
	emotional := a.emotional.Analyze(ordered, loc)
	cultural := a.cultural.Analyze(ordered)
	triggers := a.triggers.Detect(ordered)
	coping := a.coping.Track(ordered)

	var dissonance *domain.DissonanceResult
	if len(ordered) > 0 {
		res := a.dissonance.Detect(ordered[len(ordered)-1], baseline)
		dissonance = &res
	}

	risk := a.risk.Assess(RiskInputs{
		Dissonance: dissonance,
		Emotional:  emotional,
		Triggers:   triggers,
		Baseline:   baseline,
	})

	profile := a.profiler.Build(ProfileInputs{
		Baseline:   baseline,
		Emotional:  emotional,
		Cultural:   cultural,
		Triggers:   triggers,
		Coping:     coping,
		Dissonance: dissonance,
		Risk:       risk,
	})

	agg := domain.AggregatedPatterns{
		UserID:         userID,
		SessionCount:   len(ordered),
		WindowDays:     windowDays,
		DataConfidence: patterns.DataConfidenceForSessions(len(ordered)),
		Baseline:       baseline,
		Emotional:      emotional,
		Cultural:       cultural,
		Triggers:       triggers,
		Coping:         coping,
		Dissonance:     dissonance,
		Risk:           risk,
		Profile:        profile,
		GeneratedAt:    a.now().UTC(),
	}

	a.log.Debug("aggregated patterns",
		"user_id", userID.String(),
		"sessions", agg.SessionCount,
		"risk_level", risk.Level,
		"trajectory", emotional.Trajectory,
	)
	return agg
}
