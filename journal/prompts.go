package journal

import (
	"fmt"
	"strconv"
	"strings"
)

const organizePrompt = `
Tidy up the journal text the user wrote so it is easier to read.

## Guidelines:
1. Fix typos and missing characters naturally
2. Add readable paragraph breaks
3. Clearly separate feelings from events
4. Never change the original meaning or emotions
5. Do not add interpretation or speculation
6. Answer in the same language as the journal

## Output format:
{
  "organized_text": "the organized journal text",
  "word_count": number of characters,
  "detected_emotions": ["detected emotion 1", "emotion 2"],
  "key_events": ["key event 1", "event 2"]
}

Journal text as entered:
`

const stagePrompt = `
You are a psychological counselor. Analyze the user's journal and classify their mental stage on a 5-level scale.

## Stage criteria:
- Stage 0 (normal): positive tone, motivated
- Stage 1 (mild fatigue): vague lack of energy or motivation, head feels slow
- Stage 2 (moderate fatigue): increasingly irritated with people around them
- Stage 3 (severe fatigue): difficulty controlling emotions, shows in expression and attitude, early-morning waking
- Stage 4 (danger zone): tears come on their own, wishes to die (adjustment-disorder level)

## Points of analysis:
1. Frequency and kinds of emotion words
2. Expressions of fatigue and stress
3. Descriptions of relationships
4. Mentions of sleep and physical symptoms
5. Outlook on the future

## Output format:
Always answer in JSON with this structure, writing reasons and keywords in the journal's language:
{
  "stage": number (0-4),
  "confidence": number (0-100),
  "reasons": ["reason 1", "reason 2", "reason 3"],
  "keywords": ["detected keyword 1", "keyword 2"],
  "emergency": boolean (true for Stage 3 and above)
}

Journal entries to analyze:
`

const restPrompt = `
You are an expert who suggests active rest based on the "7 types of rest" model.

## The 7 types of rest:
### Physical rest
1. Rest type: sleep or naps, stopping work, lounging on the sofa
2. Exercise type: walking, yoga, stretching, light strength training
3. Nutrition type: meals gentle on the stomach, warming up with hot water

### Psychological rest
4. Social type: hugging family, time with pets, small talk, time in nature
5. Entertainment type: music or films, supporting a favourite artist, reading
6. Creative/imaginative type: drawing or crafts, DIY, meditation, daydreaming

### Social rest
7. Change-of-scene type: changing clothes, rearranging the room, eating out, travel

## Recommendations by stage:
- Stage 0: balanced (rotate through all 7 types)
- Stage 1: exercise + social (a phone call while walking, chatting at a cafe)
- Stage 2: rest + entertainment + change of scene (nap + music + rearranging the room)
- Stage 3: nutrition + creative/imaginative + professional support (hot water + meditation + counseling)
- Stage 4: emergency response (see a professional immediately)

Current stage: Stage {stage}
Time of day: {timeOfDay}

Give exactly 3 concrete suggestions in this format:
{
  "recommendations": [
    {
      "title": "suggestion title",
      "type": "rest type (e.g. exercise type)",
      "duration": "time needed (e.g. 5-10 minutes)",
      "description": "how to do it concretely",
      "materials": "what is needed (e.g. nothing, a yoga mat)"
    }
  ],
  "emergency_message": "emergency message (for Stage 3 and above)"
}
`

// connectionTestPrompt is the fixed greeting used to check that the LLM endpoint answers.
const connectionTestPrompt = "Hello! This is a connection test. Please respond with 'OpenAI connection successful' in Japanese."

// DefaultTimeOfDay is used when a recommendation request names no time of day.
const DefaultTimeOfDay = "morning"

const entryDelimiter = "\n---\n"

// BuildOrganizePrompt appends rawText to the organize instructions.
func BuildOrganizePrompt(rawText string) string {
	return organizePrompt + rawText
}

// CombineEntries labels each entry with its 1-based day and joins them with a delimiter line.
func CombineEntries(entries []Entry) string {
	parts := make([]string, 0, len(entries))
	for i, e := range entries {
		parts = append(parts, fmt.Sprintf("【Day %d】%s\n%s\n", i+1, e.Title, e.Content))
	}
	return strings.Join(parts, entryDelimiter)
}

// BuildStagePrompt appends the combined entries to the stage rubric.
func BuildStagePrompt(entries []Entry) string {
	return stagePrompt + CombineEntries(entries)
}

// BuildRestPrompt substitutes stage and time of day into the rest template.
func BuildRestPrompt(stage Stage, timeOfDay string) string {
	if strings.TrimSpace(timeOfDay) == "" {
		timeOfDay = DefaultTimeOfDay
	}
	r := strings.NewReplacer("{stage}", strconv.Itoa(int(stage)), "{timeOfDay}", timeOfDay)
	return r.Replace(restPrompt)
}
