package analysis

import (
	"math"
	"strings"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
	"github.com/attunelabs/attune-backend/internal/modules/analysis/tables"
)

// Micro-moment thresholds over the extracted voice features. Calibration
// constants carried from the deployed rule set.
const (
	pitchTremor     = 50.0
	pitchCrack      = 200.0
	pitchFlat       = 10.0
	energySigh      = 0.15
	pauseHesitation = 0.3
	zcrHarshness    = 0.15
)

// Dissonance scoring constants.
const (
	dissonanceOpposite = 0.8
	dissonancePartial  = 0.4
	microBonusPerFlag  = 0.1
	microBonusCap      = 0.3
	concealmentFloor   = 0.7

	truthConfidenceBase     = 0.75
	truthConfidenceHighDiss = 0.10
	truthConfidencePerMicro = 0.025
	truthConfidenceCap      = 0.95
)

// DissonanceDetector measures the gap between what a session's words claim
// and what its voice features indicate. It scores exactly one session,
// usually the latest, against an optional established baseline.
type DissonanceDetector struct {
	tab *tables.Tables
}

func NewDissonanceDetector(tab *tables.Tables) *DissonanceDetector {
	return &DissonanceDetector{tab: tab}
}

func (d *DissonanceDetector) Detect(s domain.VoiceSession, baseline domain.VoiceBaseline) domain.DissonanceResult {
	transcript := strings.ToLower(s.Transcript)
	stated := d.classifyStated(transcript)
	features := s.VoiceFeatures()
	micro := microMoments(features)

	statedPol := PolarityOf(stated.emotion)
	voicePol := PolarityOf(s.VoiceEmotion)

	score := dissonanceScore(statedPol, voicePol, len(micro))

	res := domain.DissonanceResult{
		StatedEmotion:    stated.emotion,
		StatedConfidence: stated.confidence,
		VoiceEmotion:     s.VoiceEmotion,
		VoiceConfidence:  s.VoiceEmotionConfidence,
		Score:            round3(score),
		Type:             dissonanceType(statedPol, voicePol, score, len(micro)),
		TruthEmotion:     s.VoiceEmotion,
		TruthConfidence:  round3(truthConfidence(score, len(micro))),
		MicroMoments:     micro,
	}

	if baseline.Established {
		dev := round3(baselineDeviation(features, baseline))
		res.BaselineDeviation = &dev
	}

	crisis := d.matchesAny(transcript, d.tab.Crisis.Phrases)
	postCalm := score > concealmentFloor &&
		containsFlag(micro, patterns.MicroFlatProsody) &&
		d.matchesAny(transcript, d.tab.Crisis.PostDecisionCalm)

	riskScore := sessionRiskScore(res, crisis)
	if crisis || postCalm {
		riskScore = math.Max(riskScore, 0.85)
	}
	res.RiskLevel = patterns.RiskLevelForScore(riskScore)
	res.Interpretation = interpretation(res.Type, crisis, postCalm)
	return res
}

type statedEmotion struct {
	emotion    string
	confidence float64
}

// classifyStated matches the transcript against the fixed phrase tables.
// Negative evidence outranks positive on a tie; deflection-only statements
// read as "fine" with lowered confidence.
func (d *DissonanceDetector) classifyStated(transcript string) statedEmotion {
	posHits, posTop := phraseHits(transcript, d.tab.Emotions.Positive)
	negHits, negTop := phraseHits(transcript, d.tab.Emotions.Negative)

	switch {
	case negHits > 0 && negHits >= posHits:
		return statedEmotion{emotion: negTop, confidence: statedConfidence(negHits)}
	case posHits > 0:
		return statedEmotion{emotion: posTop, confidence: statedConfidence(posHits)}
	}

	for _, phrase := range d.tab.Cultural.Deflections {
		if strings.Contains(transcript, phrase) {
			return statedEmotion{emotion: "fine", confidence: 0.4}
		}
	}
	return statedEmotion{emotion: "neutral", confidence: 0.3}
}

// phraseHits counts matches and returns the emotion with the most hits,
// first table entry winning ties.
func phraseHits(transcript string, list []tables.StatedPhrase) (int, string) {
	total := 0
	byEmotion := make(map[string]int)
	order := make([]string, 0, 4)
	for _, sp := range list {
		c := strings.Count(transcript, sp.Phrase)
		if c == 0 {
			continue
		}
		total += c
		if _, seen := byEmotion[sp.Emotion]; !seen {
			order = append(order, sp.Emotion)
		}
		byEmotion[sp.Emotion] += c
	}
	top := ""
	best := 0
	for _, e := range order {
		if byEmotion[e] > best {
			top, best = e, byEmotion[e]
		}
	}
	return total, top
}

func statedConfidence(hits int) float64 {
	return math.Min(0.7+0.05*float64(hits-1), 0.9)
}

// microMoments applies the fixed feature thresholds. A zeroed pitch mean
// means the feature bundle is missing, so flat prosody is not inferred
// from it.
func microMoments(f domain.VoiceFeatures) []string {
	var out []string
	if f.PitchStd > pitchTremor {
		out = append(out, patterns.MicroTremor)
	}
	if f.PitchRange > pitchCrack {
		out = append(out, patterns.MicroVoiceCrack)
	}
	if f.PitchStd < pitchFlat && f.PitchMean > 0 {
		out = append(out, patterns.MicroFlatProsody)
	}
	if f.EnergyStd > energySigh {
		out = append(out, patterns.MicroSigh)
	}
	if f.PauseRatio > pauseHesitation {
		out = append(out, patterns.MicroHesitation)
	}
	if f.ZeroCrossingRate > zcrHarshness {
		out = append(out, patterns.MicroHarshness)
	}
	return out
}

// dissonanceScore: 0 when polarities agree, 0.8 when opposed, 0.4 when one
// side is neutral, plus up to +0.3 for micro-moments. Stated-positive with
// two or more micro-moments floors at 0.7 unless the voice corroborates
// the positive words.
func dissonanceScore(statedPol, voicePol string, microCount int) float64 {
	var base float64
	switch {
	case statedPol == voicePol:
		base = 0
	case statedPol != PolarityNeutral && voicePol != PolarityNeutral:
		base = dissonanceOpposite
	default:
		base = dissonancePartial
	}
	score := clamp01(base + math.Min(microBonusPerFlag*float64(microCount), microBonusCap))
	if statedPol == PolarityPositive && voicePol != PolarityPositive && microCount >= 2 && score < concealmentFloor {
		score = concealmentFloor
	}
	return score
}

func dissonanceType(statedPol, voicePol string, score float64, microCount int) string {
	switch {
	case score < 0.3:
		return patterns.DissonanceCongruent
	case statedPol == PolarityPositive && voicePol == PolarityNegative && microCount >= 2:
		return patterns.DissonanceDefensiveConcealment
	case statedPol == PolarityPositive && voicePol == PolarityNegative:
		return patterns.DissonanceMinimization
	case statedPol == PolarityNegative && voicePol != PolarityNegative:
		return patterns.DissonanceExaggeration
	default:
		return patterns.DissonanceMixed
	}
}

// truthConfidence: the voice is always the resolved signal; confidence
// grows with dissonance and corroborating micro-moments.
func truthConfidence(score float64, microCount int) float64 {
	c := truthConfidenceBase + truthConfidencePerMicro*float64(microCount)
	if score > concealmentFloor {
		c += truthConfidenceHighDiss
	}
	return math.Min(c, truthConfidenceCap)
}

// baselineDeviation is the mean normalized distance from the established
// baseline across pitch, energy, and speech rate.
func baselineDeviation(f domain.VoiceFeatures, b domain.VoiceBaseline) float64 {
	dev := func(cur, base float64) float64 {
		if base <= 0 {
			return 0
		}
		return math.Min(math.Abs(cur-base)/base, 1)
	}
	return (dev(f.PitchMean, b.PitchMean) +
		dev(f.EnergyMean, b.EnergyMean) +
		dev(f.SpeechRate, b.SpeechRateMean)) / 3
}

// sessionRiskScore sums the weighted evidence for this single session.
func sessionRiskScore(res domain.DissonanceResult, crisis bool) float64 {
	score := 0.0
	if res.Score > concealmentFloor {
		score += 0.25
	}
	if PolarityOf(res.TruthEmotion) == PolarityNegative {
		score += 0.20
	}
	if len(res.MicroMoments) >= 3 {
		score += 0.15
	}
	if res.BaselineDeviation != nil && *res.BaselineDeviation > 0.6 {
		score += 0.15
	}
	if crisis {
		score += 0.60
	}
	return clamp01(score)
}

func interpretation(dissType string, crisis, postCalm bool) string {
	switch {
	case crisis:
		return "crisis language present; immediate attention required"
	case postCalm:
		return "settled calm following sustained distress; check in directly"
	}
	switch dissType {
	case patterns.DissonanceCongruent:
		return "words and voice agree"
	case patterns.DissonanceMinimization:
		return "voice carries more distress than the words admit"
	case patterns.DissonanceDefensiveConcealment:
		return "strong concealment signals; words say fine, voice does not"
	case patterns.DissonanceExaggeration:
		return "words state more distress than the voice carries"
	default:
		return "stated and voiced signals conflict without a clear pattern"
	}
}

func (d *DissonanceDetector) matchesAny(transcript string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(transcript, p) {
			return true
		}
	}
	return false
}

func containsFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
