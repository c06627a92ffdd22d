package journal

import "time"

// analysisDateLayout is ISO-8601 in UTC with millisecond precision, e.g. 2025-06-01T09:30:00.000Z.
const analysisDateLayout = "2006-01-02T15:04:05.000Z07:00"

func formatAnalysisDate(t time.Time) string {
	return t.UTC().Format(analysisDateLayout)
}
