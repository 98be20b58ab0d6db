package generation

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"lifequest/internal/models"
)

const (
	OP_GENERATE_MISSIONS = "generate_missions"
	OP_GENERATE_STEPS    = "generate_steps"
	OP_GENERATE_ADAPTIVE = "generate_adaptive_missions"
	OP_GENERATE_BRIEF    = "generate_daily_brief"
	OP_PREDICT_SCENARIO  = "predict_scenario_outcome"
)

// Adapter builds prompts, calls the provider once and parses the answer into
// typed records. With no provider every call is served from Templates.
type Adapter struct {
	provider  Provider
	templates *Templates
	timeout   time.Duration
	logger    *zap.Logger
}

func NewAdapter(provider Provider, templates *Templates, timeout time.Duration, logger *zap.Logger) *Adapter {
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{provider: provider, templates: templates, timeout: timeout, logger: logger}
}

func (a *Adapter) Enabled() bool {
	return a.provider != nil
}

func (a *Adapter) ProviderName() string {
	if a.provider == nil {
		return "fallback"
	}
	return a.provider.Name()
}

func (a *Adapter) call(ctx context.Context, op string, prompt string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	started := time.Now()
	text, err := a.provider.Complete(ctx, prompt)
	if err != nil {
		if IsQuotaError(err) {
			a.logger.Warn("generation provider rejected credentials or quota; set AI_ENABLED=false to serve fallback content",
				zap.String("op", op),
				zap.String("provider", a.provider.Name()),
				zap.Error(err))
			return &Error{Op: op, Provider: a.provider.Name(), Quota: true, Err: err}
		}
		a.logger.Error("generation provider call failed",
			zap.String("op", op),
			zap.String("provider", a.provider.Name()),
			zap.Error(err))
		return &Error{Op: op, Provider: a.provider.Name(), Err: err}
	}

	if err := decode(text, v); err != nil {
		a.logger.Error("generation provider returned malformed output",
			zap.String("op", op),
			zap.String("provider", a.provider.Name()),
			zap.Int("length", len(text)),
			zap.Error(err))
		return &Error{Op: op, Provider: a.provider.Name(), Err: err}
	}

	a.logger.Debug("generation provider call",
		zap.String("op", op),
		zap.String("provider", a.provider.Name()),
		zap.Duration("took", time.Since(started)))
	return nil
}

// GenerateMissionsForUser returns exactly one mission per difficulty.
func (a *Adapter) GenerateMissionsForUser(ctx context.Context, profile *models.Profile) ([]*models.Mission, error) {
	if !a.Enabled() {
		return a.templates.FallbackMissions(profile), nil
	}

	var payload missionsPayload
	if err := a.call(ctx, OP_GENERATE_MISSIONS, missionsPrompt(profile, ""), &payload); err != nil {
		return nil, err
	}
	return a.templates.repairMissions(payload.Missions, profile, models.RECURRENCE_NONE), nil
}

// GenerateAdaptiveMissions is the daily variant; returned missions carry no id.
func (a *Adapter) GenerateAdaptiveMissions(ctx context.Context, profile *models.Profile, stats *models.UserStats, day time.Time) ([]*models.Mission, error) {
	if !a.Enabled() {
		return a.templates.FallbackAdaptiveMissions(profile, stats, day), nil
	}

	var payload missionsPayload
	if err := a.call(ctx, OP_GENERATE_ADAPTIVE, adaptivePrompt(profile, stats, day), &payload); err != nil {
		return nil, err
	}
	missions := a.templates.repairMissions(payload.Missions, profile, models.RECURRENCE_DAILY)
	for _, m := range missions {
		m.ID = ""
	}
	return missions, nil
}

// GenerateMissionSteps returns steps numbered 1 to 3.
func (a *Adapter) GenerateMissionSteps(ctx context.Context, mission *models.Mission, profile *models.Profile) ([]*models.MissionStep, error) {
	if !a.Enabled() {
		return a.templates.FallbackSteps(mission), nil
	}

	var payload stepsPayload
	if err := a.call(ctx, OP_GENERATE_STEPS, stepsPrompt(mission, profile), &payload); err != nil {
		return nil, err
	}
	return a.templates.repairSteps(payload.Steps, mission), nil
}

func (a *Adapter) GenerateDailyBrief(ctx context.Context, profile *models.Profile, stats *models.UserStats, day time.Time) (*models.DailyBrief, error) {
	fallback := a.templates.FallbackDailyBrief(profile, stats, day)
	if !a.Enabled() {
		return fallback, nil
	}

	var payload briefPayload
	if err := a.call(ctx, OP_GENERATE_BRIEF, dailyBriefPrompt(profile, stats, day), &payload); err != nil {
		return nil, err
	}

	brief := &models.DailyBrief{
		Date:      fallback.Date,
		Greeting:  strings.TrimSpace(payload.Greeting),
		Focus:     normalize(payload.Focus),
		Tips:      payload.Tips,
		Generated: true,
	}
	if brief.Greeting == "" {
		brief.Greeting = fallback.Greeting
	}
	if !models.IsCategory(brief.Focus) {
		brief.Focus = fallback.Focus
	}
	if len(brief.Tips) == 0 {
		brief.Tips = fallback.Tips
	}
	return brief, nil
}

func (a *Adapter) PredictScenarioOutcome(ctx context.Context, profile *models.Profile, scenario string) (*models.ScenarioPrediction, error) {
	fallback := a.templates.FallbackPrediction(profile, scenario)
	if !a.Enabled() {
		return fallback, nil
	}

	var payload predictionPayload
	if err := a.call(ctx, OP_PREDICT_SCENARIO, scenarioPrompt(profile, scenario), &payload); err != nil {
		return nil, err
	}

	prediction := &models.ScenarioPrediction{
		Scenario:        scenario,
		Outcome:         strings.TrimSpace(payload.Outcome),
		RiskLevel:       normalize(payload.RiskLevel),
		Recommendations: payload.Recommendations,
		Generated:       true,
	}
	if prediction.Outcome == "" {
		prediction.Outcome = fallback.Outcome
	}
	switch prediction.RiskLevel {
	case "low", "medium", "high":
	default:
		prediction.RiskLevel = fallback.RiskLevel
	}
	if len(prediction.Recommendations) == 0 {
		prediction.Recommendations = fallback.Recommendations
	}
	return prediction, nil
}
