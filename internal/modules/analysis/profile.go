package analysis

import (
	"fmt"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
)

// ProfileInputs carries every analyzer output the profiler narrates.
type ProfileInputs struct {
	Baseline   domain.VoiceBaseline
	Emotional  domain.EmotionalPattern
	Cultural   domain.CulturalContext
	Triggers   domain.TriggerPattern
	Coping     domain.CopingProfile
	Dissonance *domain.DissonanceResult
	Risk       domain.RiskAssessment
}

// MentalHealthProfiler maps analyzer outputs onto narrative lists. It adds
// no scoring of its own.
type MentalHealthProfiler struct{}

func NewMentalHealthProfiler() *MentalHealthProfiler { return &MentalHealthProfiler{} }

var concernByEmotion = map[string]string{
	"anxious":  "persistent anxiety",
	"sad":      "low mood",
	"fear":     "fear and worry",
	"angry":    "anger regulation",
	"numb":     "emotional numbing",
	"hopeless": "hopelessness",
	"resigned": "resignation",
}

func (p *MentalHealthProfiler) Build(in ProfileInputs) domain.MentalHealthProfile {
	prof := domain.MentalHealthProfile{
		CommunicationStyle: in.Cultural.CommunicationApproach,
		CurrentState:       currentState(in.Risk),
	}

	for _, emotion := range in.Emotional.PrimaryEmotions {
		if concern, ok := concernByEmotion[emotion]; ok {
			prof.PrimaryConcerns = append(prof.PrimaryConcerns, concern)
		}
	}
	if len(in.Triggers.Triggers) > 0 {
		prof.PrimaryConcerns = append(prof.PrimaryConcerns,
			fmt.Sprintf("distress around %s", in.Triggers.Triggers[0].Topic))
	}

	if d := in.Dissonance; d != nil {
		switch d.Type {
		case patterns.DissonanceMinimization, patterns.DissonanceDefensiveConcealment:
			prof.SecondaryConcerns = append(prof.SecondaryConcerns, "minimizes distress in words")
		}
	}
	if in.Cultural.DeflectionFrequency >= 1 {
		prof.SecondaryConcerns = append(prof.SecondaryConcerns, "tends to deflect direct questions")
	}
	if in.Emotional.Trajectory == patterns.TrajectoryVolatile {
		prof.SecondaryConcerns = append(prof.SecondaryConcerns, "emotional volatility")
	}

	prof.SupportNeeds = supportNeeds(in)
	prof.Strengths = strengths(in)

	for _, s := range in.Coping.Effective {
		prof.EffectivePatterns = append(prof.EffectivePatterns, s.Name)
	}
	for _, s := range in.Coping.Ineffective {
		prof.IneffectivePatterns = append(prof.IneffectivePatterns, s.Name)
	}
	return prof
}

func currentState(risk domain.RiskAssessment) string {
	switch risk.Trajectory {
	case patterns.RiskTrajectoryEscalating:
		return fmt.Sprintf("%s risk with a declining trend", risk.Level)
	case patterns.RiskTrajectoryImproving:
		return fmt.Sprintf("%s risk with an improving trend", risk.Level)
	default:
		return fmt.Sprintf("%s risk, holding steady", risk.Level)
	}
}

func supportNeeds(in ProfileInputs) []string {
	var needs []string
	if patterns.RiskRank(in.Risk.Level) >= patterns.RiskRank(patterns.RiskHigh) {
		needs = append(needs, "crisis support access")
	}
	if in.Cultural.StoicismLevel == patterns.StoicismHigh {
		needs = append(needs, "indirect, low-pressure check-ins")
	}
	if len(in.Coping.Effective) == 0 {
		needs = append(needs, "coping skill building")
	}
	if in.Emotional.Trajectory == patterns.TrajectoryDeclining {
		needs = append(needs, "increased monitoring")
	}
	return needs
}

func strengths(in ProfileInputs) []string {
	var out []string
	for _, s := range in.Coping.Effective {
		out = append(out, fmt.Sprintf("uses %s effectively", s.Name))
	}
	if in.Emotional.Trajectory == patterns.TrajectoryImproving {
		out = append(out, "recent improvement")
	}
	if in.Coping.Consistency >= 0.5 {
		out = append(out, "consistent self-care habit")
	}
	if in.Baseline.Established {
		out = append(out, "regular session engagement")
	}
	return out
}
