package journal

import (
	"strings"
	"testing"
)

func TestCombineEntries(t *testing.T) {
	t.Parallel()

	got := CombineEntries([]Entry{
		{Title: "Mon", Content: "tired"},
		{Title: "Tue", Content: "better"},
	})
	want := "【Day 1】Mon\ntired\n\n---\n【Day 2】Tue\nbetter\n"
	if got != want {
		t.Fatalf("got=%q\nwant=%q", got, want)
	}

	if got := CombineEntries(nil); got != "" {
		t.Fatalf("empty got=%q", got)
	}
}

func TestBuildStagePrompt_AppendsEntriesToRubric(t *testing.T) {
	t.Parallel()

	entries := []Entry{{Title: "Mon", Content: "could not sleep"}}
	got := BuildStagePrompt(entries)
	if !strings.HasPrefix(got, stagePrompt) {
		t.Fatalf("missing rubric prefix")
	}
	if !strings.HasSuffix(got, CombineEntries(entries)) {
		t.Fatalf("missing entries suffix: %q", got[len(got)-40:])
	}
	for i := 0; i <= 4; i++ {
		if !strings.Contains(got, "- Stage "+string(rune('0'+i))) {
			t.Fatalf("rubric missing stage %d", i)
		}
	}
}

func TestBuildRestPrompt_Substitutes(t *testing.T) {
	t.Parallel()

	got := BuildRestPrompt(StageModerateFatigue, "evening")
	if strings.Contains(got, "{stage}") || strings.Contains(got, "{timeOfDay}") {
		t.Fatalf("placeholders left in prompt")
	}
	if !strings.Contains(got, "Current stage: Stage 2\nTime of day: evening\n") {
		t.Fatalf("substitution missing")
	}

	got = BuildRestPrompt(StageNormal, "  ")
	if !strings.Contains(got, "Time of day: morning\n") {
		t.Fatalf("default time of day missing")
	}

	// Placeholder-like text in the caller's value is inserted literally.
	got = BuildRestPrompt(StageNormal, "{stage}")
	if !strings.Contains(got, "Time of day: {stage}\n") {
		t.Fatalf("time of day was rewritten")
	}
}

func TestBuildOrganizePrompt(t *testing.T) {
	t.Parallel()

	got := BuildOrganizePrompt("raw text")
	if got != organizePrompt+"raw text" {
		t.Fatalf("unexpected prompt")
	}
}
