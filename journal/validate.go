package journal

import (
	"errors"
	"fmt"
	"strings"
)

const (
	stageReasonCount    = 3
	recommendationCount = 3
)

func (r stageReply) validate() error {
	if !Stage(r.Stage).Valid() {
		return fmt.Errorf("stage %d out of range 0-4", r.Stage)
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return fmt.Errorf("confidence %d out of range 0-100", r.Confidence)
	}
	if len(r.Reasons) != stageReasonCount {
		return fmt.Errorf("got %d reasons, want %d", len(r.Reasons), stageReasonCount)
	}
	if r.Keywords == nil {
		return missingField("keywords")
	}
	return nil
}

func (o OrganizedJournal) validate() error {
	if o.WordCount < 0 {
		return fmt.Errorf("word_count %d is negative", o.WordCount)
	}
	if o.DetectedEmotions == nil {
		return missingField("detected_emotions")
	}
	if o.KeyEvents == nil {
		return missingField("key_events")
	}
	return nil
}

func missingField(name string) error {
	return fmt.Errorf("%s: %w", name, errMissingField)
}

func (p RestPlan) validate() error {
	if len(p.Recommendations) != recommendationCount {
		return fmt.Errorf("got %d recommendations, want %d", len(p.Recommendations), recommendationCount)
	}
	for i, rec := range p.Recommendations {
		if strings.TrimSpace(rec.Title) == "" {
			return fmt.Errorf("recommendation %d: %w", i+1, errMissingTitle)
		}
	}
	return nil
}

var (
	errMissingTitle = errors.New("missing title")
	errMissingField = errors.New("missing field")
)
