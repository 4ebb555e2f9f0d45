package classify

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/abramin/wattson/internal/domain"
	"github.com/abramin/wattson/internal/graph"
	"github.com/abramin/wattson/internal/llm"
)

// Classifier turns one raw user turn into intents and indicator slots,
// using the prior snapshot and history as context.
type Classifier interface {
	Classify(ctx context.Context, input string, snap *domain.IntentSnapshot, history []graph.Exchange) (*ParsedTurn, error)
}

type classifier struct {
	client   llm.LLMClient
	observer llm.Observer
	now      func() time.Time
}

// NewClassifier creates a Classifier backed by an LLM client.
func NewClassifier(client llm.LLMClient, observer llm.Observer) Classifier {
	return &classifier{
		client:   client,
		observer: observer,
		now:      time.Now,
	}
}

func (c *classifier) Classify(ctx context.Context, input string, snap *domain.IntentSnapshot, history []graph.Exchange) (*ParsedTurn, error) {
	resp, err := c.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskClassify,
		SystemPrompt: buildClassifySystemPrompt(c.now()),
		UserPrompt:   buildClassifyUserPrompt(input, snap, history),
	})
	if err != nil {
		return nil, fmt.Errorf("llm classify failed: %w", err)
	}

	turn, err := llm.ExtractJSON[ParsedTurn](resp.Text, nil)
	if err != nil {
		return nil, &ParseError{
			Code:    ErrCodeInvalidOutputFormat,
			Message: fmt.Sprintf("failed to extract turn: %v", err),
		}
	}

	normalizeTurn(&turn)
	refineIntents(&turn, input, priorIndicator(snap))

	if perr := validateTurn(&turn); perr != nil {
		return nil, perr
	}
	return &turn, nil
}

// Relative-time words the model sometimes leaves glued to the indicator
// text. Matched at either edge only; interior digits and words stay.
var (
	leadingTimeWords  = regexp.MustCompile(`^(今天|昨天|明天|本周|上周|下周|上月|本月|今年|去年)\s*的?`)
	trailingTimeWords = regexp.MustCompile(`\s*的?(今天|昨天|明天|本周|上周|下周|上月|本月|今年|去年)$`)
)

// normalizeTurn strips stray time words off indicator edges and drops
// mentions that carry neither an indicator nor a time.
func normalizeTurn(t *ParsedTurn) {
	kept := t.Indicators[:0]
	for _, ind := range t.Indicators {
		if ind.Indicator != nil {
			name := leadingTimeWords.ReplaceAllString(*ind.Indicator, "")
			name = trailingTimeWords.ReplaceAllString(name, "")
			name = strings.TrimSpace(name)
			if name == "" {
				ind.Indicator = nil
			} else {
				ind.Indicator = &name
			}
		}
		if ind.Indicator == nil && !ind.HasTime() {
			continue
		}
		kept = append(kept, ind)
	}
	t.Indicators = kept
}

// priorIndicator returns the most recently mentioned indicator text, or ""
// when the conversation has none yet.
func priorIndicator(snap *domain.IntentSnapshot) string {
	if snap == nil {
		return ""
	}
	for i := len(snap.Indicators) - 1; i >= 0; i-- {
		if snap.Indicators[i].Indicator != "" {
			return snap.Indicators[i].Indicator
		}
	}
	return ""
}

var (
	slotFillWords  = []string{"今天", "昨天", "明天", "上周", "本周", "下周", "上月", "本月", "今年", "去年"}
	compareWords   = []string{"对比", "比较", "相比", "和", "及", "&"}
	listQueryWords = []string{"平均", "总计", "统计", "汇总", "分别"}
	trendWords     = []string{"趋势", "走势", "变化"}
)

// refineIntents overrides a generic single_query classification using
// keyword evidence, once a prior indicator gives the turn something to
// continue from.
func refineIntents(t *ParsedTurn, input string, priorIndicator string) {
	if len(t.Intents) == 0 || t.Intents[0] != domain.IntentSingleQuery {
		return
	}
	if priorIndicator == "" {
		return
	}

	switch {
	case containsAny(input, trendWords):
		t.Intents[0] = domain.IntentTrend
	case containsAny(input, listQueryWords):
		t.Intents[0] = domain.IntentListQuery
	case containsAny(input, compareWords):
		t.Intents[0] = domain.IntentCompare
	case containsAny(input, slotFillWords) && !hasIndicator(t):
		t.Intents[0] = domain.IntentSlotFill
	}
}

func hasIndicator(t *ParsedTurn) bool {
	for _, ind := range t.Indicators {
		if ind.Indicator != nil {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
