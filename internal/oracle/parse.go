package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mkarpov/tipstream/internal/model"
)

// placeholderSymbols are null-like symbol values some models emit instead of
// omitting the asset.
var placeholderSymbols = map[string]bool{
	"":     true,
	"None": true,
	"N/A":  true,
	"null": true,
}

// sanitizeJSON strips reasoning blocks and markdown fences that local models
// wrap around their JSON output.
func sanitizeJSON(raw string) string {
	// DeepSeek-style reasoning precedes the answer.
	if idx := strings.LastIndex(raw, "</think>"); idx >= 0 {
		raw = raw[idx+len("</think>"):]
	}

	raw = strings.TrimSpace(raw)

	if idx := strings.Index(raw, "```json"); idx >= 0 {
		raw = raw[idx+len("```json"):]
		if end := strings.Index(raw, "```"); end >= 0 {
			raw = raw[:end]
		}
	} else if strings.Contains(raw, "```") {
		parts := strings.SplitN(raw, "```", 3)
		if len(parts) >= 2 {
			raw = parts[1]
		}
	}

	return strings.TrimSpace(raw)
}

// rawClassification mirrors the phase 1 JSON shape loosely; unknown fields
// are ignored, missing fields take defaults.
type rawClassification struct {
	IsRelevant bool   `json:"is_relevant"`
	PostType   string `json:"post_type"`
	Reason     string `json:"reason"`
}

func parseClassification(raw string) (*Classification, error) {
	var rc rawClassification
	if err := json.Unmarshal([]byte(sanitizeJSON(raw)), &rc); err != nil {
		return nil, fmt.Errorf("malformed classification output: %w", err)
	}

	postType := strings.ToLower(strings.TrimSpace(rc.PostType))
	if !knownPostTypes[postType] {
		postType = PostTypeOther
	}

	return &Classification{
		IsRelevant: rc.IsRelevant,
		PostType:   postType,
		Reason:     rc.Reason,
	}, nil
}

type rawAsset struct {
	Symbol   string `json:"symbol"`
	Category string `json:"category"`
	Signal   string `json:"signal"`
	Market   string `json:"market"`
	Note     string `json:"note"`
}

type rawExtraction struct {
	Assets           []rawAsset `json:"assets"`
	OverallSentiment string     `json:"overall_sentiment"`
	Confidence       *float64   `json:"confidence"`
	Summary          string     `json:"summary"`
	KeyPoints        []string   `json:"key_points"`
}

func parseExtraction(raw string) (*Extraction, error) {
	var re rawExtraction
	if err := json.Unmarshal([]byte(sanitizeJSON(raw)), &re); err != nil {
		return nil, fmt.Errorf("malformed extraction output: %w", err)
	}

	assets := make([]Asset, 0, len(re.Assets))
	for _, a := range re.Assets {
		symbol := strings.TrimSpace(a.Symbol)
		if placeholderSymbols[symbol] {
			continue
		}

		market := strings.ToUpper(strings.TrimSpace(a.Market))
		if market == "" {
			market = "US"
		}

		assets = append(assets, Asset{
			Symbol:   symbol,
			Category: a.Category,
			Signal:   model.NormalizeSignal(a.Signal),
			Market:   market,
			Note:     a.Note,
		})
	}

	sentiment := re.OverallSentiment
	if sentiment == "" {
		sentiment = "Neutral"
	}

	confidence := 0.5
	if re.Confidence != nil {
		confidence = *re.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
	}

	return &Extraction{
		Assets:           assets,
		OverallSentiment: sentiment,
		Confidence:       confidence,
		Summary:          re.Summary,
		KeyPoints:        re.KeyPoints,
	}, nil
}
