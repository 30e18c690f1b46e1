package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
)

// Trajectory tuning. The halves-delta band and confidence divisor are
// calibration constants carried from the deployed rule set.
const (
	trajectoryStableBand   = 0.15
	trajectoryConfidenceAt = 0.5
	volatileEntropyCutoff  = 0.7
	primaryEmotionShare    = 0.20
)

// EmotionalPatternAnalyzer aggregates per-session emotion labels into
// distribution, direction, and time-of-day structure. Sessions must be
// sorted chronologically ascending.
type EmotionalPatternAnalyzer struct{}

func NewEmotionalPatternAnalyzer() *EmotionalPatternAnalyzer { return &EmotionalPatternAnalyzer{} }

func (a *EmotionalPatternAnalyzer) Analyze(sessions []domain.VoiceSession, loc *time.Location) domain.EmotionalPattern {
	if loc == nil {
		loc = time.UTC
	}
	p := domain.EmotionalPattern{
		Trajectory:   patterns.TrajectoryInsufficientData,
		Distribution: emotionDistribution(sessions),
		TimeOfDay:    timeOfDayPattern(sessions, loc),
	}
	p.PrimaryEmotions = primaryEmotions(p.Distribution)
	p.Variability = labelEntropy(sessions)

	if len(sessions) < patterns.TrajectoryMinSessions {
		return p
	}

	trajectory, confidence := halvesTrajectory(sessions)
	if trajectory == patterns.TrajectoryStable && p.Variability > volatileEntropyCutoff {
		trajectory = patterns.TrajectoryVolatile
	}
	p.Trajectory = trajectory
	p.TrajectoryConfidence = confidence

	if len(sessions) >= patterns.RecentShiftMinSessions {
		p.RecentShift = recentShift(sessions)
	}
	return p
}

// halvesTrajectory splits the window chronologically and compares mean
// valence between halves.
func halvesTrajectory(sessions []domain.VoiceSession) (string, float64) {
	mid := len(sessions) / 2
	first := meanValence(sessions[:mid])
	second := meanValence(sessions[mid:])
	delta := second - first

	if math.Abs(delta) < trajectoryStableBand {
		return patterns.TrajectoryStable, 0
	}
	confidence := math.Min(math.Abs(delta)/trajectoryConfidenceAt, 1)
	if delta > 0 {
		return patterns.TrajectoryImproving, round3(confidence)
	}
	return patterns.TrajectoryDeclining, round3(confidence)
}

func meanValence(sessions []domain.VoiceSession) float64 {
	if len(sessions) == 0 {
		return 0
	}
	var sum float64
	for _, s := range sessions {
		sum += ValenceOf(s.VoiceEmotion)
	}
	return sum / float64(len(sessions))
}

// labelEntropy is the Shannon entropy of the label distribution normalized
// by the maximum entropy for the number of distinct labels observed.
func labelEntropy(sessions []domain.VoiceSession) float64 {
	counts := make(map[string]int)
	total := 0
	for _, s := range sessions {
		if s.VoiceEmotion == "" {
			continue
		}
		counts[s.VoiceEmotion]++
		total++
	}
	if total == 0 || len(counts) < 2 {
		return 0
	}
	var h float64
	for _, c := range counts {
		p := float64(c) / float64(total)
		h -= p * math.Log(p)
	}
	return round3(h / math.Log(float64(len(counts))))
}

func primaryEmotions(dist map[string]float64) []string {
	var out []string
	for e, share := range dist {
		if share > primaryEmotionShare {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if dist[out[i]] != dist[out[j]] {
			return dist[out[i]] > dist[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// Local-time buckets: morning 5-11, afternoon 12-16, evening 17-21,
// night 22-4.
func timeBucket(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h <= 11:
		return "morning"
	case h >= 12 && h <= 16:
		return "afternoon"
	case h >= 17 && h <= 21:
		return "evening"
	default:
		return "night"
	}
}

func timeOfDayPattern(sessions []domain.VoiceSession, loc *time.Location) map[string]string {
	bucketCounts := make(map[string]map[string]int)
	for _, s := range sessions {
		if s.VoiceEmotion == "" {
			continue
		}
		bucket := timeBucket(s.RecordedAt.In(loc))
		if bucketCounts[bucket] == nil {
			bucketCounts[bucket] = make(map[string]int)
		}
		bucketCounts[bucket][s.VoiceEmotion]++
	}
	if len(bucketCounts) == 0 {
		return nil
	}
	out := make(map[string]string, len(bucketCounts))
	for bucket, counts := range bucketCounts {
		out[bucket] = dominantLabel(counts)
	}
	return out
}

func dominantLabel(counts map[string]int) string {
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	best, bestCount := "", -1
	for _, l := range labels {
		if counts[l] > bestCount {
			best, bestCount = l, counts[l]
		}
	}
	return best
}

// recentShift compares the dominant emotion of the last seven sessions to
// the seven before. Only a shift that crosses the positive/negative
// boundary is reported.
func recentShift(sessions []domain.VoiceSession) string {
	n := len(sessions)
	last := countLabels(sessions[n-7:])
	prev := countLabels(sessions[n-14 : n-7])
	lastDom := dominantLabel(last)
	prevDom := dominantLabel(prev)
	if lastDom == "" || prevDom == "" || lastDom == prevDom {
		return ""
	}
	lastPol := PolarityOf(lastDom)
	prevPol := PolarityOf(prevDom)
	if lastPol == prevPol {
		return ""
	}
	if lastPol == PolarityNeutral || prevPol == PolarityNeutral {
		return ""
	}
	return fmt.Sprintf("dominant emotion shifted from %s to %s over the last seven sessions", prevDom, lastDom)
}

func countLabels(sessions []domain.VoiceSession) map[string]int {
	counts := make(map[string]int)
	for _, s := range sessions {
		if s.VoiceEmotion == "" {
			continue
		}
		counts[s.VoiceEmotion]++
	}
	return counts
}
