package node

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pricofy/langbly-node/internal/chunker"
	"github.com/pricofy/langbly-node/internal/domain"
	"github.com/pricofy/langbly-node/internal/host"
)

const (
	detectTarget    = "en"
	unknownLanguage = "unknown"

	ConfidenceHigh = "high"
	ConfidenceNone = "none"
)

// detect has no endpoint of its own: it translates a sample of the text and
// reads back the source language the API detected
func (n *Node) detect(
	ctx context.Context, exec host.ExecuteFunctions, i int,
) (domain.JSON, error) {
	text, err := stringParam(exec, paramText, i)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	sample := chunker.Sample(text, chunker.DefaultSampleChars)

	n.logger.Debug("Detecting item language",
		zap.Int("item", i),
		zap.Int("characters", chunker.CountChars(sample)))

	tr, err := n.requestTranslation(ctx, exec.HTTP(), domain.TranslateRequest{
		Q:      sample,
		Target: detectTarget,
	})
	if err != nil {
		return nil, err
	}

	lang := strings.TrimSpace(tr.DetectedSourceLanguage)
	if lang == "" {
		lang = unknownLanguage
	}
	confidence := ConfidenceNone
	if !strings.EqualFold(lang, unknownLanguage) {
		confidence = ConfidenceHigh
	}

	return domain.DetectionResult{
		DetectedLanguage: lang,
		OriginalText:     text,
		Confidence:       confidence,
	}.JSON(), nil
}
