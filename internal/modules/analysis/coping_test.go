package analysis

import (
	"strings"
	"testing"

	"github.com/attunelabs/attune-backend/internal/domain"
)

func TestCoping_MoodLiftAfterMentionScoresEffective(t *testing.T) {
	tr := NewCopingEffectivenessTracker(loadTables(t))
	p := tr.Track([]domain.VoiceSession{
		makeSession(0, "sad", "went for a run this morning", quietFeatures),
		makeSession(24, "happy", "feeling lighter today", quietFeatures),
		makeSession(48, "sad", "went for a run before class", quietFeatures),
		makeSession(72, "happy", "pretty decent day", quietFeatures),
		makeSession(96, "neutral", "quiet evening", quietFeatures),
	})
	if len(p.Effective) != 1 {
		t.Fatalf("effective = %+v, want exactly exercise", p.Effective)
	}
	s := p.Effective[0]
	if s.Name != "exercise" || s.Category != "physical" {
		t.Fatalf("strategy = %+v", s)
	}
	if s.MentionCount != 2 {
		t.Fatalf("mention count = %d, want 2", s.MentionCount)
	}
	if s.Effectiveness < 0.9 {
		t.Fatalf("effectiveness = %v, want near 1 for sad-to-happy lifts", s.Effectiveness)
	}
	if s.ImprovementRate != 1 {
		t.Fatalf("improvement rate = %v, want 1", s.ImprovementRate)
	}
	if p.PrimaryStyle != "physical" {
		t.Fatalf("primary style = %q, want physical", p.PrimaryStyle)
	}
	if p.Consistency != 0.4 {
		t.Fatalf("consistency = %v, want 0.4 (2 of 5 sessions)", p.Consistency)
	}
}

func TestCoping_AvoidantDeclineScoresIneffective(t *testing.T) {
	tr := NewCopingEffectivenessTracker(loadTables(t))
	p := tr.Track([]domain.VoiceSession{
		makeSession(0, "anxious", "stayed in bed most of the morning", quietFeatures),
		makeSession(24, "sad", "still exhausted", quietFeatures),
		makeSession(48, "sad", "stayed in bed again", quietFeatures),
		makeSession(72, "hopeless", "everything feels heavier", quietFeatures),
	})
	if len(p.Ineffective) != 1 {
		t.Fatalf("ineffective = %+v, want exactly sleeping_it_off", p.Ineffective)
	}
	s := p.Ineffective[0]
	if s.Name != "sleeping_it_off" {
		t.Fatalf("strategy = %q", s.Name)
	}
	if s.Effectiveness >= 0.4 {
		t.Fatalf("effectiveness = %v, want below 0.4", s.Effectiveness)
	}
	if len(p.Effective) != 0 {
		t.Fatalf("effective = %+v, want none", p.Effective)
	}
}

func TestCoping_FinalSessionMentionNotScored(t *testing.T) {
	tr := NewCopingEffectivenessTracker(loadTables(t))
	p := tr.Track([]domain.VoiceSession{
		makeSession(0, "sad", "meditated before class", quietFeatures),
		makeSession(24, "neutral", "okay i guess", quietFeatures),
		makeSession(48, "sad", "meditated again tonight", quietFeatures),
	})
	if len(p.Effective) != 1 {
		t.Fatalf("effective = %+v, want meditation", p.Effective)
	}
	s := p.Effective[0]
	// Only the first mention has a next session. If the final mention
	// counted it would drag the improvement rate to 0.5.
	if s.ImprovementRate != 1 {
		t.Fatalf("improvement rate = %v, want 1", s.ImprovementRate)
	}
	if s.MentionCount != 2 {
		t.Fatalf("mention count = %d, want 2", s.MentionCount)
	}
}

func TestCoping_NoMoodChangeLandsInNeitherList(t *testing.T) {
	tr := NewCopingEffectivenessTracker(loadTables(t))
	p := tr.Track([]domain.VoiceSession{
		makeSession(0, "neutral", "listened to music for a while", quietFeatures),
		makeSession(24, "neutral", "nothing new", quietFeatures),
		makeSession(48, "neutral", "listened to music again", quietFeatures),
		makeSession(72, "neutral", "same as always", quietFeatures),
	})
	if len(p.Effective) != 0 || len(p.Ineffective) != 0 {
		t.Fatalf("effective = %+v ineffective = %+v, want both empty", p.Effective, p.Ineffective)
	}
}

func TestCoping_MixedStyleWhenNoCategoryDominates(t *testing.T) {
	tr := NewCopingEffectivenessTracker(loadTables(t))
	p := tr.Track([]domain.VoiceSession{
		makeSession(0, "neutral", "went for a run", quietFeatures),
		makeSession(24, "neutral", "talked to my friend after", quietFeatures),
		makeSession(48, "neutral", "journaling before bed", quietFeatures),
		makeSession(72, "neutral", "went for a run again", quietFeatures),
		makeSession(96, "neutral", "called my friend", quietFeatures),
		makeSession(120, "neutral", "journaling again", quietFeatures),
	})
	if p.PrimaryStyle != "mixed" {
		t.Fatalf("primary style = %q, want mixed for a 2/2/2 split", p.PrimaryStyle)
	}
	if p.Consistency != 1 {
		t.Fatalf("consistency = %v, want 1", p.Consistency)
	}
}

func TestCoping_SingleMentionIgnoredAndSuggestionsSkipUsedCategories(t *testing.T) {
	tr := NewCopingEffectivenessTracker(loadTables(t))
	p := tr.Track([]domain.VoiceSession{
		makeSession(0, "sad", "went for a run this morning", quietFeatures),
		makeSession(24, "sad", "went for a run at night", quietFeatures),
		makeSession(48, "happy", "prayed about it once", quietFeatures),
	})
	for _, s := range append(p.Effective, p.Ineffective...) {
		if s.Name == "prayer" {
			t.Fatalf("single prayer mention should be ignored, got %+v", s)
		}
	}
	if len(p.Untried) == 0 {
		t.Fatalf("expected untried suggestions")
	}
	for _, sug := range p.Untried {
		if strings.Contains(sug, "walk") || strings.Contains(sug, "stretch") {
			t.Fatalf("suggestion %q comes from an already used category", sug)
		}
	}
}
