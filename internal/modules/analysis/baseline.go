package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
)

// BaselineTracker learns a user's normal voice statistics from their
// session history. It is a pure function over its input; with fewer than
// three sessions it returns an unestablished baseline and never fails.
type BaselineTracker struct{}

func NewBaselineTracker() *BaselineTracker { return &BaselineTracker{} }

func (t *BaselineTracker) Compute(sessions []domain.VoiceSession) domain.VoiceBaseline {
	n := len(sessions)
	if n < patterns.BaselineMinSessions {
		return domain.VoiceBaseline{Established: false, SessionCount: n}
	}

	pitch := make([]float64, 0, n)
	energy := make([]float64, 0, n)
	rate := make([]float64, 0, n)
	pause := make([]float64, 0, n)
	for _, s := range sessions {
		f := s.VoiceFeatures()
		pitch = append(pitch, f.PitchMean)
		energy = append(energy, f.EnergyMean)
		rate = append(rate, f.SpeechRate)
		pause = append(pause, f.PauseRatio)
	}

	b := domain.VoiceBaseline{
		Established:  true,
		SessionCount: n,

		PitchMean:      mean(pitch),
		PitchStd:       stddev(pitch),
		EnergyMean:     mean(energy),
		EnergyStd:      stddev(energy),
		SpeechRateMean: mean(rate),
		SpeechRateStd:  stddev(rate),
		PauseRatioMean: mean(pause),

		EmotionDistribution: emotionDistribution(sessions),
	}
	b.StressMarkers = stressMarkers(sessions, b)
	return b
}

// stressMarkers compares feature means conditioned on emotion label against
// the overall baseline. A ratio above 1.2 or below 0.8 becomes a personal
// marker like "speaks faster when anxious".
func stressMarkers(sessions []domain.VoiceSession, b domain.VoiceBaseline) []patterns.StressMarker {
	byEmotion := make(map[string][]domain.VoiceSession)
	for _, s := range sessions {
		if s.VoiceEmotion == "" {
			continue
		}
		byEmotion[s.VoiceEmotion] = append(byEmotion[s.VoiceEmotion], s)
	}

	emotions := make([]string, 0, len(byEmotion))
	for e := range byEmotion {
		if len(byEmotion[e]) >= 2 {
			emotions = append(emotions, e)
		}
	}
	sort.Strings(emotions)

	var markers []patterns.StressMarker
	for _, emotion := range emotions {
		group := byEmotion[emotion]
		for _, spec := range markerFeatures {
			base := spec.baseline(b)
			if base == 0 {
				continue
			}
			var vals []float64
			for _, s := range group {
				vals = append(vals, spec.value(s.VoiceFeatures()))
			}
			ratio := mean(vals) / base
			if ratio > 1.2 || ratio < 0.8 {
				markers = append(markers, patterns.StressMarker{
					Emotion:     emotion,
					Feature:     spec.name,
					Ratio:       round3(ratio),
					Description: spec.describe(emotion, ratio),
				})
			}
		}
	}
	return markers
}

type markerFeature struct {
	name     string
	value    func(domain.VoiceFeatures) float64
	baseline func(domain.VoiceBaseline) float64
	high     string
	low      string
}

func (m markerFeature) describe(emotion string, ratio float64) string {
	if ratio > 1 {
		return fmt.Sprintf(m.high, emotion)
	}
	return fmt.Sprintf(m.low, emotion)
}

var markerFeatures = []markerFeature{
	{
		name:     "speech_rate",
		value:    func(f domain.VoiceFeatures) float64 { return f.SpeechRate },
		baseline: func(b domain.VoiceBaseline) float64 { return b.SpeechRateMean },
		high:     "speaks faster when %s",
		low:      "speaks slower when %s",
	},
	{
		name:     "pitch_mean",
		value:    func(f domain.VoiceFeatures) float64 { return f.PitchMean },
		baseline: func(b domain.VoiceBaseline) float64 { return b.PitchMean },
		high:     "pitch rises when %s",
		low:      "pitch drops when %s",
	},
	{
		name:     "energy_mean",
		value:    func(f domain.VoiceFeatures) float64 { return f.EnergyMean },
		baseline: func(b domain.VoiceBaseline) float64 { return b.EnergyMean },
		high:     "voice gets louder when %s",
		low:      "voice gets quieter when %s",
	},
	{
		name:     "pause_ratio",
		value:    func(f domain.VoiceFeatures) float64 { return f.PauseRatio },
		baseline: func(b domain.VoiceBaseline) float64 { return b.PauseRatioMean },
		high:     "pauses more when %s",
		low:      "pauses less when %s",
	},
}

func emotionDistribution(sessions []domain.VoiceSession) map[string]float64 {
	if len(sessions) == 0 {
		return nil
	}
	counts := make(map[string]int)
	total := 0
	for _, s := range sessions {
		if s.VoiceEmotion == "" {
			continue
		}
		counts[s.VoiceEmotion]++
		total++
	}
	if total == 0 {
		return nil
	}
	dist := make(map[string]float64, len(counts))
	for e, c := range counts {
		dist[e] = round3(float64(c) / float64(total))
	}
	return dist
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sq float64
	for _, v := range vals {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(vals)))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
