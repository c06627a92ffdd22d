// Package journal turns journal text into model-backed results: cleaned-up text, a fatigue
// stage classification and active-rest recommendations.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/journal-coach/journal/fileutils"
	"github.com/theimaginaryfoundation/journal-coach/journal/logging"
	"github.com/theimaginaryfoundation/journal-coach/journal/provider"
)

const (
	DefaultStandardModel     = "gpt-4.1-mini-2025-04-14"
	DefaultHighAccuracyModel = "o4-mini-2025-04-16"
)

const (
	opOrganize   = "journal organize"
	opStage      = "stage analysis"
	opRest       = "active rest recommendation"
	opConnection = "OpenAI connection"
)

var (
	organizeSchema = provider.GenerateSchema[OrganizedJournal]()
	stageSchema    = provider.GenerateSchema[stageReply]()
	restSchema     = provider.GenerateSchema[RestPlan]()
)

// Gateway issues one model call per operation (two for an escalated stage analysis) and never
// returns an error past its methods; failures are reported in the result envelope.
type Gateway struct {
	completer         provider.Completer
	standardModel     string
	highAccuracyModel string
	logger            *zap.Logger
	now               func() time.Time
}

type Option func(*Gateway)

// WithModels overrides the standard and high-accuracy models. Empty values keep the defaults.
func WithModels(standard, highAccuracy string) Option {
	return func(g *Gateway) {
		if standard != "" {
			g.standardModel = standard
		}
		if highAccuracy != "" {
			g.highAccuracyModel = highAccuracy
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Gateway) { g.logger = logging.OrNop(l) }
}

// WithClock sets the time source for analysis_date.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

func NewGateway(completer provider.Completer, opts ...Option) *Gateway {
	g := &Gateway{
		completer:         completer,
		standardModel:     DefaultStandardModel,
		highAccuracyModel: DefaultHighAccuracyModel,
		logger:            zap.NewNop(),
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Models returns the standard and high-accuracy model names in use.
func (g *Gateway) Models() (standard, highAccuracy string) {
	return g.standardModel, g.highAccuracyModel
}

// OrganizeJournalText fixes typos and paragraphing in rawText without changing its meaning.
func (g *Gateway) OrganizeJournalText(ctx context.Context, rawText string) Result[OrganizedJournal] {
	out, err := g.complete(ctx, opOrganize, provider.CompletionRequest{
		Model:       g.standardModel,
		Prompt:      BuildOrganizePrompt(rawText),
		MaxTokens:   1000,
		Temperature: 0.3,
		SchemaName:  "OrganizedJournal",
		Schema:      organizeSchema,
	})
	if err != nil {
		return fail[OrganizedJournal](opOrganize, err)
	}
	organized, err := decodeReply[OrganizedJournal](out)
	if err != nil {
		return fail[OrganizedJournal](opOrganize, err)
	}
	if strings.TrimSpace(rawText) != "" && strings.TrimSpace(organized.OrganizedText) == "" {
		return fail[OrganizedJournal](opOrganize, errors.New("unexpected reply shape: organized_text is empty"))
	}
	return ok(organized)
}

// AnalyzeJournalForStage classifies entries on the 0-4 stage scale. A standard-model result at
// EmergencyStage or above is discarded and the analysis is repeated on the high-accuracy model.
func (g *Gateway) AnalyzeJournalForStage(ctx context.Context, entries []Entry, useHighAccuracy bool) Result[StageAnalysis] {
	analysis, err := g.analyzeStage(ctx, entries, useHighAccuracy, false)
	if err != nil {
		return fail[StageAnalysis](opStage, err)
	}
	return ok(analysis)
}

func (g *Gateway) analyzeStage(ctx context.Context, entries []Entry, useHighAccuracy bool, escalated bool) (StageAnalysis, error) {
	if len(entries) == 0 {
		return StageAnalysis{}, errors.New("no journal entries")
	}

	model := g.standardModel
	if useHighAccuracy {
		model = g.highAccuracyModel
	}

	out, err := g.complete(ctx, opStage, provider.CompletionRequest{
		Model:       model,
		Prompt:      BuildStagePrompt(entries),
		MaxTokens:   800,
		Temperature: 0.1,
		SchemaName:  "StageAnalysis",
		Schema:      stageSchema,
	})
	if err != nil {
		return StageAnalysis{}, err
	}
	reply, err := parseReply[stageReply](out)
	if err != nil {
		return StageAnalysis{}, err
	}

	// Only the stage decides escalation; the rest of a discarded reply is never checked.
	stage := Stage(reply.Stage)
	if !stage.Valid() {
		return StageAnalysis{}, fmt.Errorf("unexpected reply shape: stage %d out of range 0-4", reply.Stage)
	}
	if stage.Emergency() && !useHighAccuracy {
		g.logger.Info("stage at or above emergency threshold, re-checking with high-accuracy model",
			zap.Int("stage", reply.Stage),
			zap.String("standard_model", model),
			zap.String("high_accuracy_model", g.highAccuracyModel))
		return g.analyzeStage(ctx, entries, true, true)
	}
	if err := reply.validate(); err != nil {
		return StageAnalysis{}, fmt.Errorf("unexpected reply shape: %w", err)
	}

	if reply.Emergency != stage.Emergency() {
		g.logger.Debug("model emergency flag disagrees with stage; using stage",
			zap.Int("stage", reply.Stage), zap.Bool("model_emergency", reply.Emergency))
	}

	return StageAnalysis{
		Stage:        stage,
		Confidence:   reply.Confidence,
		Reasons:      reply.Reasons,
		Keywords:     reply.Keywords,
		Emergency:    stage.Emergency(),
		ModelUsed:    model,
		AnalysisDate: formatAnalysisDate(g.now()),
		Escalated:    escalated,
	}, nil
}

// GenerateActiveRestRecommendations returns three rest suggestions for stage at timeOfDay
// (DefaultTimeOfDay when empty).
func (g *Gateway) GenerateActiveRestRecommendations(ctx context.Context, stage Stage, timeOfDay string) Result[RestPlan] {
	if !stage.Valid() {
		return fail[RestPlan](opRest, fmt.Errorf("stage %d out of range 0-4", int(stage)))
	}

	out, err := g.complete(ctx, opRest, provider.CompletionRequest{
		Model:       g.standardModel,
		Prompt:      BuildRestPrompt(stage, timeOfDay),
		MaxTokens:   1000,
		Temperature: 0.7,
		SchemaName:  "RestPlan",
		Schema:      restSchema,
	})
	if err != nil {
		return fail[RestPlan](opRest, err)
	}
	plan, err := decodeReply[RestPlan](out)
	if err != nil {
		return fail[RestPlan](opRest, err)
	}
	return ok(plan)
}

// TestOpenAIConnection sends a short greeting and returns the raw reply as the message.
func (g *Gateway) TestOpenAIConnection(ctx context.Context) ConnectionResult {
	out, err := g.complete(ctx, opConnection, provider.CompletionRequest{
		Model:     g.standardModel,
		Prompt:    connectionTestPrompt,
		MaxTokens: 50,
	})
	if err != nil {
		return ConnectionResult{Success: false, Message: opConnection + " error: " + err.Error()}
	}
	return ConnectionResult{Success: true, Message: out, Model: g.standardModel}
}

func (g *Gateway) complete(ctx context.Context, op string, req provider.CompletionRequest) (string, error) {
	if g.completer == nil {
		return "", errors.New("completer is nil")
	}

	log := g.logger.With(
		zap.String("op", op),
		zap.String("model", req.Model),
		zap.String("call_id", uuid.NewString()),
	)
	start := time.Now()
	out, err := g.completer.Complete(ctx, req)
	if err != nil {
		log.Warn("completion failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", err
	}
	log.Debug("completion done",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("prompt_len", len(req.Prompt)),
		zap.Int("reply_len", len(out)))
	return out, nil
}

// replyPreviewRunes caps how much of an unparseable reply is echoed in the failure message.
const replyPreviewRunes = 80

type validator interface {
	validate() error
}

func parseReply[T any](text string) (T, error) {
	var v T
	if err := fileutils.DecodeModelJSON(text, &v); err != nil {
		return v, fmt.Errorf("parse reply %q: %w", fileutils.Truncate(text, replyPreviewRunes), err)
	}
	return v, nil
}

func decodeReply[T validator](text string) (T, error) {
	v, err := parseReply[T](text)
	if err != nil {
		return v, err
	}
	if err := v.validate(); err != nil {
		return v, fmt.Errorf("unexpected reply shape: %w", err)
	}
	return v, nil
}
