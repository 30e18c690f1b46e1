// Package tables loads the read-only reference data the analyzers match
// transcripts against. The tables are compiled into the binary; nothing
// here is user-specific or mutable at runtime.
package tables

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var tableFS embed.FS

// StatedPhrase maps a literal transcript phrase to the emotion it states.
type StatedPhrase struct {
	Phrase  string `yaml:"phrase"`
	Emotion string `yaml:"emotion"`
}

// EmotionTable holds the explicit positive and negative phrase lists used
// to classify stated emotion.
type EmotionTable struct {
	Positive []StatedPhrase `yaml:"positive"`
	Negative []StatedPhrase `yaml:"negative"`
}

// LanguageMarkers lists high-frequency function words for one non-English
// language, used for language preference and code-switch detection.
type LanguageMarkers struct {
	Code    string   `yaml:"code"`
	Markers []string `yaml:"markers"`
}

// StressorEntry names a cultural stressor and the keywords that evidence it.
type StressorEntry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// CulturalTable drives the cultural context analyzer.
type CulturalTable struct {
	// Deflections are lexically positive phrases culturally coded as
	// concealment. A stated emotion built only from these carries
	// lowered confidence.
	Deflections  []string          `yaml:"deflections"`
	StoicMarkers []string          `yaml:"stoic_markers"`
	Stressors    []StressorEntry   `yaml:"stressors"`
	Languages    []LanguageMarkers `yaml:"languages"`
	// Approaches keys recommended communication style by stoicism level.
	Approaches map[string]string `yaml:"approaches"`
}

// TopicEntry names a candidate trigger topic and its keywords.
type TopicEntry struct {
	Topic    string   `yaml:"topic"`
	Keywords []string `yaml:"keywords"`
}

// TriggerTable drives the trigger detector.
type TriggerTable struct {
	Topics []TopicEntry `yaml:"topics"`
}

// StrategyEntry names a coping strategy, its category, and its keywords.
type StrategyEntry struct {
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// CopingTable drives the coping effectiveness tracker.
type CopingTable struct {
	Strategies []StrategyEntry `yaml:"strategies"`
	// Suggestions lists untried strategies to offer, keyed by category.
	Suggestions map[string][]string `yaml:"suggestions"`
}

// CrisisTable holds the literal crisis phrases and the post-decision calm
// vocabulary. Matching is exact substring over a lowercased transcript.
type CrisisTable struct {
	Phrases          []string `yaml:"phrases"`
	PostDecisionCalm []string `yaml:"post_decision_calm"`
}

// Tables bundles every reference table, loaded once at startup.
type Tables struct {
	Emotions EmotionTable
	Cultural CulturalTable
	Triggers TriggerTable
	Coping   CopingTable
	Crisis   CrisisTable
}

// Load parses the embedded YAML tables and lowercases every phrase so
// matchers can assume normalized input.
func Load() (*Tables, error) {
	t := &Tables{}
	if err := loadYAML("emotions.yaml", &t.Emotions); err != nil {
		return nil, err
	}
	if err := loadYAML("cultural.yaml", &t.Cultural); err != nil {
		return nil, err
	}
	if err := loadYAML("triggers.yaml", &t.Triggers); err != nil {
		return nil, err
	}
	if err := loadYAML("coping.yaml", &t.Coping); err != nil {
		return nil, err
	}
	if err := loadYAML("crisis.yaml", &t.Crisis); err != nil {
		return nil, err
	}
	t.normalize()
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func loadYAML(name string, out interface{}) error {
	raw, err := tableFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("tables: read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("tables: parse %s: %w", name, err)
	}
	return nil
}

func (t *Tables) normalize() {
	for i := range t.Emotions.Positive {
		t.Emotions.Positive[i].Phrase = norm(t.Emotions.Positive[i].Phrase)
		t.Emotions.Positive[i].Emotion = norm(t.Emotions.Positive[i].Emotion)
	}
	for i := range t.Emotions.Negative {
		t.Emotions.Negative[i].Phrase = norm(t.Emotions.Negative[i].Phrase)
		t.Emotions.Negative[i].Emotion = norm(t.Emotions.Negative[i].Emotion)
	}
	normList(t.Cultural.Deflections)
	normList(t.Cultural.StoicMarkers)
	for i := range t.Cultural.Stressors {
		normList(t.Cultural.Stressors[i].Keywords)
	}
	for i := range t.Cultural.Languages {
		normList(t.Cultural.Languages[i].Markers)
	}
	for i := range t.Triggers.Topics {
		normList(t.Triggers.Topics[i].Keywords)
	}
	for i := range t.Coping.Strategies {
		t.Coping.Strategies[i].Name = norm(t.Coping.Strategies[i].Name)
		normList(t.Coping.Strategies[i].Keywords)
	}
	normList(t.Crisis.Phrases)
	normList(t.Crisis.PostDecisionCalm)
}

func (t *Tables) validate() error {
	if len(t.Emotions.Positive) == 0 || len(t.Emotions.Negative) == 0 {
		return fmt.Errorf("tables: emotions.yaml missing phrase lists")
	}
	if len(t.Cultural.Deflections) == 0 {
		return fmt.Errorf("tables: cultural.yaml missing deflections")
	}
	if len(t.Triggers.Topics) == 0 {
		return fmt.Errorf("tables: triggers.yaml missing topics")
	}
	if len(t.Coping.Strategies) == 0 {
		return fmt.Errorf("tables: coping.yaml missing strategies")
	}
	if len(t.Crisis.Phrases) == 0 {
		return fmt.Errorf("tables: crisis.yaml missing phrases")
	}
	return nil
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func normList(list []string) {
	for i := range list {
		list[i] = norm(list[i])
	}
}
