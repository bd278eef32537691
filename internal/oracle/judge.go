package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/promptwars/internal/apperr"
	"github.com/jason-s-yu/promptwars/internal/models"
)

const systemPrompt = `You are an AI judge for "Prompt Wars," a creative text-based battle game.

Your role is to evaluate two players' creative prompts and determine the winner based on:
1. **Creativity** (0-10): How imaginative and original is the prompt?
2. **Card Adherence** (0-10): How well does the prompt incorporate the required cards?
3. **Battle Impact**: Which prompt would be more effective in a fantasy battle?

RULES:
- Each player submits a prompt using specific cards (elements, actions, materials)
- The prompt MUST use all the cards they selected
- Award higher scores for creative combinations and vivid imagery
- Deduct points if cards are not properly incorporated
- Determine a winner based on overall effectiveness
- Ties are allowed if both prompts are equally matched

OUTPUT FORMAT (JSON):
{
  "winner": "player1" or "player2" or "tie",
  "player1_creativity": 0-10,
  "player1_adherence": 0-10,
  "player2_creativity": 0-10,
  "player2_adherence": 0-10,
  "damage": 0-50 (damage dealt to loser, 0 for tie),
  "reasoning": "A SHORT, EXCITING 2-3 sentence story describing what happened in the battle and who won.",
  "visual_effect": "fire" or "ice" or "lightning" or "explosion" or "heal" or "shield"
}

Be fair, creative, and entertaining in your judgments! The reasoning should be a mini-story, not a dry explanation.`

const (
	judgeTemperature = 0.7
	judgeMaxTokens   = 500
	effectDurationMs = 1500
)

// Contender is one side of a battle as the judge sees it.
type Contender struct {
	Name       string
	Submission *models.Submission
}

// Battle is the input to a single judgment.
type Battle struct {
	Player1 Contender
	Player2 Contender
}

// Judge turns a pair of submissions into an Outcome using a Provider.
type Judge struct {
	provider Provider
	timeout  time.Duration
	logger   logrus.FieldLogger
}

// NewJudge wraps provider. A zero timeout leaves the caller's context as the only bound.
func NewJudge(provider Provider, timeout time.Duration, logger logrus.FieldLogger) *Judge {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Judge{provider: provider, timeout: timeout, logger: logger}
}

// Provider exposes the backend, mostly for health reporting.
func (j *Judge) Provider() Provider {
	return j.provider
}

// IsAvailable reports whether the backend can currently be reached.
func (j *Judge) IsAvailable(ctx context.Context) bool {
	return j.provider.IsAvailable(ctx)
}

// Judge asks the provider for a verdict. Every failure is an apperr provider error.
func (j *Judge) Judge(ctx context.Context, b Battle) (*models.Outcome, error) {
	if b.Player1.Submission == nil || b.Player2.Submission == nil {
		return nil, apperr.Provider("battle is missing a submission", nil)
	}
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	messages := []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: battlePrompt(b)},
	}
	start := time.Now()
	resp, err := j.provider.Generate(ctx, messages, GenerateOptions{Temperature: judgeTemperature, MaxTokens: judgeMaxTokens})
	if err != nil {
		j.logger.WithError(err).Warnf("judge call to %s failed", j.provider.Name())
		return nil, apperr.Provider("judge is unavailable", err)
	}
	j.logger.WithFields(logrus.Fields{
		"provider": j.provider.Name(),
		"model":    resp.Model,
		"elapsed":  time.Since(start).String(),
	}).Debug("judge responded")

	v, err := parseVerdict(resp.Content)
	if err != nil {
		j.logger.WithError(err).Warnf("unusable verdict: %q", resp.Content)
		return nil, apperr.Provider("judge returned an unusable verdict", err)
	}
	return v.outcome(b.Player1.Submission.PlayerID, b.Player2.Submission.PlayerID), nil
}

func battlePrompt(b Battle) string {
	var sb strings.Builder
	sb.WriteString("BATTLE ROUND\n\n")
	writeContender(&sb, b.Player1, "Player 1")
	sb.WriteString("\n")
	writeContender(&sb, b.Player2, "Player 2")
	sb.WriteString("\nJudge this battle and provide your verdict in JSON format.")
	return sb.String()
}

func writeContender(sb *strings.Builder, c Contender, fallback string) {
	name := c.Name
	if name == "" {
		name = fallback
	}
	fmt.Fprintf(sb, "%s:\n- Cards Used: %s\n- Prompt: %q\n", name, strings.Join(c.Submission.CardIDs, ", "), c.Submission.Prompt)
}

type verdict struct {
	Winner            *string  `json:"winner"`
	Player1Creativity *float64 `json:"player1_creativity"`
	Player1Adherence  *float64 `json:"player1_adherence"`
	Player2Creativity *float64 `json:"player2_creativity"`
	Player2Adherence  *float64 `json:"player2_adherence"`
	Damage            *float64 `json:"damage"`
	Reasoning         *string  `json:"reasoning"`
	VisualEffect      string   `json:"visual_effect"`
}

// stripFence removes a surrounding markdown code fence, with or without a json tag.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func parseVerdict(content string) (*verdict, error) {
	var v verdict
	if err := json.Unmarshal([]byte(stripFence(content)), &v); err != nil {
		return nil, fmt.Errorf("verdict is not valid JSON: %w", err)
	}

	missing := make([]string, 0)
	for name, present := range map[string]bool{
		"winner":             v.Winner != nil,
		"player1_creativity": v.Player1Creativity != nil,
		"player1_adherence":  v.Player1Adherence != nil,
		"player2_creativity": v.Player2Creativity != nil,
		"player2_adherence":  v.Player2Adherence != nil,
		"damage":             v.Damage != nil,
		"reasoning":          v.Reasoning != nil,
	} {
		if !present {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("verdict is missing fields: %s", strings.Join(missing, ", "))
	}

	switch w := strings.ToLower(strings.TrimSpace(*v.Winner)); w {
	case "player1", "player2", "tie":
		v.Winner = &w
	default:
		return nil, errors.New("verdict winner must be player1, player2 or tie, got " + *v.Winner)
	}
	return &v, nil
}

func clampScore(s float64) float64 {
	return math.Max(0, math.Min(models.MaxScore, s))
}

func (v *verdict) outcome(player1ID, player2ID string) *models.Outcome {
	p1 := models.Scores{Creativity: clampScore(*v.Player1Creativity), Adherence: clampScore(*v.Player1Adherence)}
	p2 := models.Scores{Creativity: clampScore(*v.Player2Creativity), Adherence: clampScore(*v.Player2Adherence)}

	o := &models.Outcome{
		Narrative:     *v.Reasoning,
		Player1Scores: p1,
		Player2Scores: p2,
	}
	switch *v.Winner {
	case "player1":
		o.WinnerID = player1ID
		o.CreativityScore, o.AdherenceScore = p1.Creativity, p1.Adherence
	case "player2":
		o.WinnerID = player2ID
		o.CreativityScore, o.AdherenceScore = p2.Creativity, p2.Adherence
	default:
		o.CreativityScore = (p1.Creativity + p2.Creativity) / 2
		o.AdherenceScore = (p1.Adherence + p2.Adherence) / 2
	}

	if !o.Tie() {
		o.Damage = int(math.Round(math.Max(0, math.Min(models.MaxDamage, *v.Damage))))
	}

	effect := models.ParseEffectType(strings.ToLower(strings.TrimSpace(v.VisualEffect)))
	intensity := 1.0
	if !o.Tie() {
		intensity = 1.5
	}
	o.VisualEffects = []models.VisualEffect{{
		Type:       effect,
		Intensity:  intensity,
		Color:      effect.Color(),
		DurationMs: effectDurationMs,
	}}
	return o
}
