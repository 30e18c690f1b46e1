package analysis

import (
	"testing"

	"github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/domain/patterns"
)

func TestCultural_EmptyHistoryDefaults(t *testing.T) {
	a := NewCulturalContextAnalyzer(loadTables(t))
	ctx := a.Analyze(nil)
	if ctx.PrimaryLanguage != "en" {
		t.Fatalf("language = %q, want en", ctx.PrimaryLanguage)
	}
	if ctx.StoicismLevel != patterns.StoicismLow {
		t.Fatalf("stoicism = %q, want low", ctx.StoicismLevel)
	}
	if ctx.CommunicationApproach == "" {
		t.Fatalf("expected a default communication approach")
	}
}

func TestCultural_SingleDeflectionIsNoise(t *testing.T) {
	a := NewCulturalContextAnalyzer(loadTables(t))
	ctx := a.Analyze([]domain.VoiceSession{
		makeSession(0, "neutral", "i'm fine, school was long", quietFeatures),
		makeSession(24, "neutral", "talked about the weather", quietFeatures),
	})
	if len(ctx.DeflectionPhrases) != 0 {
		t.Fatalf("single mention reported: %v", ctx.DeflectionPhrases)
	}
	if ctx.DeflectionFrequency != 0 {
		t.Fatalf("frequency = %v, want 0", ctx.DeflectionFrequency)
	}
}

func TestCultural_RepeatedDeflectionRaisesStoicism(t *testing.T) {
	a := NewCulturalContextAnalyzer(loadTables(t))
	ctx := a.Analyze([]domain.VoiceSession{
		makeSession(0, "neutral", "i'm fine. it is what it is", quietFeatures),
		makeSession(24, "neutral", "i'm fine, don't worry about me. others have it worse", quietFeatures),
		makeSession(48, "neutral", "can't complain. i can handle it", quietFeatures),
	})
	if len(ctx.DeflectionPhrases) == 0 {
		t.Fatalf("expected deflection phrases to be reported")
	}
	if ctx.DeflectionPhrases[0].Phrase != "i'm fine" || ctx.DeflectionPhrases[0].Count != 2 {
		t.Fatalf("top deflection = %+v, want i'm fine x2", ctx.DeflectionPhrases[0])
	}
	if ctx.DeflectionFrequency <= 0 {
		t.Fatalf("frequency = %v, want > 0", ctx.DeflectionFrequency)
	}
	if ctx.StoicismLevel == patterns.StoicismLow {
		t.Fatalf("stoicism = %q, want moderate or high", ctx.StoicismLevel)
	}
	if ctx.CommunicationApproach == "direct_supportive" {
		t.Fatalf("approach should soften above low stoicism, got %q", ctx.CommunicationApproach)
	}
}

func TestCultural_CodeSwitchingDetected(t *testing.T) {
	a := NewCulturalContextAnalyzer(loadTables(t))
	ctx := a.Analyze([]domain.VoiceSession{
		makeSession(0, "sad", "pagod ako today, school was hindi okay", quietFeatures),
		makeSession(24, "sad", "hindi ko alam, pero i keep trying", quietFeatures),
		makeSession(48, "neutral", "today was fine", quietFeatures),
	})
	if !ctx.CodeSwitching {
		t.Fatalf("expected code switching to be detected")
	}
	if ctx.CodeSwitchingPattern == "" {
		t.Fatalf("expected a code-switching pattern description")
	}
}

func TestCultural_MarkersMatchWholeWordsOnly(t *testing.T) {
	a := NewCulturalContextAnalyzer(loadTables(t))
	// "po" must not fire inside "point" or "possible".
	ctx := a.Analyze([]domain.VoiceSession{
		makeSession(0, "neutral", "the point is it's possible to improve", quietFeatures),
		makeSession(24, "neutral", "another point about the report", quietFeatures),
		makeSession(48, "neutral", "nothing else to report", quietFeatures),
	})
	if ctx.CodeSwitching {
		t.Fatalf("substring matches should not count as code switching")
	}
}

func TestCultural_StressorsNeedTwoHits(t *testing.T) {
	a := NewCulturalContextAnalyzer(loadTables(t))
	ctx := a.Analyze([]domain.VoiceSession{
		makeSession(0, "anxious", "i can't disappoint my family again", quietFeatures),
		makeSession(24, "anxious", "so much family pressure about grades", quietFeatures),
		makeSession(48, "neutral", "normal day", quietFeatures),
	})
	found := false
	for _, s := range ctx.CulturalStressors {
		if s == "family_expectations" {
			found = true
		}
	}
	if !found {
		t.Fatalf("stressors = %v, want family_expectations", ctx.CulturalStressors)
	}
}
