package analysis

import "strings"

// Fixed valence scalar per emotion label. Labels arrive from the upstream
// voice classifier and from the stated-emotion phrase tables; anything
// unknown scores neutral.
var emotionValence = map[string]float64{
	"happy":    0.8,
	"hopeful":  0.6,
	"calm":     0.4,
	"fine":     0.3,
	"neutral":  0.0,
	"anxious":  -0.4,
	"angry":    -0.5,
	"numb":     -0.5,
	"sad":      -0.6,
	"fear":     -0.6,
	"resigned": -0.7,
	"hopeless": -0.9,
}

// Polarity bands over valence.
const (
	PolarityPositive = "positive"
	PolarityNegative = "negative"
	PolarityNeutral  = "neutral"
)

func ValenceOf(emotion string) float64 {
	return emotionValence[strings.ToLower(strings.TrimSpace(emotion))]
}

// KnownEmotion reports whether the label has a calibrated valence. Unknown
// labels still analyze (as neutral) but are worth surfacing upstream.
func KnownEmotion(emotion string) bool {
	_, ok := emotionValence[strings.ToLower(strings.TrimSpace(emotion))]
	return ok
}

func PolarityOf(emotion string) string {
	v := ValenceOf(emotion)
	switch {
	case v >= 0.2:
		return PolarityPositive
	case v <= -0.2:
		return PolarityNegative
	default:
		return PolarityNeutral
	}
}

// highRiskEmotions are labels whose dominance alone raises risk.
var highRiskEmotions = map[string]bool{
	"hopeless": true,
	"numb":     true,
	"resigned": true,
}

func isHighRiskEmotion(emotion string) bool {
	return highRiskEmotions[strings.ToLower(strings.TrimSpace(emotion))]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
