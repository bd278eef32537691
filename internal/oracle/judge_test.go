package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/promptwars/internal/apperr"
	"github.com/jason-s-yu/promptwars/internal/models"
)

type stubProvider struct {
	content   string
	err       error
	available bool
	calls     int
	last      []Message
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-1" }

func (s *stubProvider) Generate(_ context.Context, messages []Message, _ GenerateOptions) (Response, error) {
	s.calls++
	s.last = messages
	if s.err != nil {
		return Response{}, s.err
	}
	return Response{Content: s.content, Model: "stub-1"}, nil
}

func (s *stubProvider) IsAvailable(context.Context) bool { return s.available }

func testBattle() Battle {
	return Battle{
		Player1: Contender{Name: "Alice", Submission: &models.Submission{PlayerID: "p1", Prompt: "a fire sword", CardIDs: []string{"fire", "attack", "sword"}}},
		Player2: Contender{Name: "Bob", Submission: &models.Submission{PlayerID: "p2", Prompt: "an ice shield", CardIDs: []string{"ice", "defend", "shield"}}},
	}
}

func TestJudgePlayer1Wins(t *testing.T) {
	stub := &stubProvider{content: "```json\n" + `{"winner":"player1","player1_creativity":8,"player1_adherence":9,"player2_creativity":6,"player2_adherence":7,"damage":25,"reasoning":"The blade melts the shield!","visual_effect":"fire"}` + "\n```"}
	j := NewJudge(stub, 0, nil)

	out, err := j.Judge(context.Background(), testBattle())
	require.NoError(t, err)

	assert.Equal(t, "p1", out.WinnerID)
	assert.Equal(t, 25, out.Damage)
	assert.Equal(t, 8.0, out.CreativityScore)
	assert.Equal(t, 9.0, out.AdherenceScore)
	assert.Equal(t, models.Scores{Creativity: 6, Adherence: 7}, out.Player2Scores)
	require.Len(t, out.VisualEffects, 1)
	assert.Equal(t, models.EffectFire, out.VisualEffects[0].Type)
	assert.Equal(t, "#FF4500", out.VisualEffects[0].Color)
	assert.Equal(t, 1.5, out.VisualEffects[0].Intensity)
	assert.Equal(t, 1500, out.VisualEffects[0].DurationMs)

	require.Len(t, stub.last, 2)
	assert.Equal(t, RoleSystem, stub.last[0].Role)
	assert.Contains(t, stub.last[1].Content, "Alice:")
	assert.Contains(t, stub.last[1].Content, "fire, attack, sword")
}

func TestJudgeTieClampsAndAverages(t *testing.T) {
	stub := &stubProvider{content: `{"winner":"Tie","player1_creativity":12,"player1_adherence":6,"player2_creativity":7,"player2_adherence":-1,"damage":30,"reasoning":"Stalemate.","visual_effect":"rainbow"}`}
	out, err := NewJudge(stub, 0, nil).Judge(context.Background(), testBattle())
	require.NoError(t, err)

	assert.True(t, out.Tie())
	assert.Equal(t, 0, out.Damage, "ties deal no damage")
	assert.Equal(t, 10.0, out.Player1Scores.Creativity)
	assert.Equal(t, 0.0, out.Player2Scores.Adherence)
	assert.Equal(t, 8.5, out.CreativityScore)
	assert.Equal(t, 3.0, out.AdherenceScore)
	assert.Equal(t, models.EffectExplosion, out.VisualEffects[0].Type)
	assert.Equal(t, 1.0, out.VisualEffects[0].Intensity)
}

func TestJudgeClampsDamage(t *testing.T) {
	stub := &stubProvider{content: `{"winner":"player2","player1_creativity":1,"player1_adherence":1,"player2_creativity":9,"player2_adherence":9,"damage":80,"reasoning":"Crushing."}`}
	out, err := NewJudge(stub, 0, nil).Judge(context.Background(), testBattle())
	require.NoError(t, err)
	assert.Equal(t, "p2", out.WinnerID)
	assert.Equal(t, models.MaxDamage, out.Damage)
}

func TestJudgeRejectsBadVerdicts(t *testing.T) {
	cases := map[string]string{
		"not json":       "The winner is player one.",
		"missing fields": `{"winner":"player1","damage":10}`,
		"bad winner":     `{"winner":"both","player1_creativity":1,"player1_adherence":1,"player2_creativity":1,"player2_adherence":1,"damage":1,"reasoning":"?"}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewJudge(&stubProvider{content: content}, 0, nil).Judge(context.Background(), testBattle())
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindProvider))
		})
	}
}

func TestJudgeProviderFailure(t *testing.T) {
	stub := &stubProvider{err: errors.New("connection refused")}
	_, err := NewJudge(stub, 0, nil).Judge(context.Background(), testBattle())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindProvider))
	assert.Equal(t, 1, stub.calls)
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripFence(`  {"a":1}  `))
}
