package node

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pricofy/langbly-node/internal/chunker"
	"github.com/pricofy/langbly-node/internal/domain"
	"github.com/pricofy/langbly-node/internal/host"
)

type translateOptions struct {
	sourceLanguage string
	format         string
	formality      string
}

func (n *Node) translate(
	ctx context.Context, exec host.ExecuteFunctions, i int,
) (domain.JSON, error) {
	text, err := stringParam(exec, paramText, i)
	if err != nil {
		return nil, err
	}
	targetLanguage, err := stringParam(exec, paramTargetLanguage, i)
	if err != nil {
		return nil, err
	}
	opts, err := n.readTranslateOptions(exec, i)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if strings.TrimSpace(targetLanguage) == "" {
		return nil, ErrMissingTargetLanguage
	}

	req := buildTranslateRequest(text, targetLanguage, opts)

	n.logger.Debug("Translating item",
		zap.Int("item", i),
		zap.String("target", req.Target),
		zap.String("source", req.Source),
		zap.Int("characters", chunker.CountChars(text)))

	tr, err := n.requestTranslation(ctx, exec.HTTP(), req)
	if err != nil {
		return nil, err
	}

	// Without a detected language the source is echoed as entered
	detected := tr.DetectedSourceLanguage
	if detected == "" {
		detected = opts.sourceLanguage
	}

	return domain.TranslationResult{
		TranslatedText:         tr.TranslatedText,
		DetectedSourceLanguage: detected,
		TargetLanguage:         targetLanguage,
		OriginalText:           text,
	}.JSON(), nil
}

func (n *Node) readTranslateOptions(
	exec host.ExecuteFunctions, i int,
) (translateOptions, error) {
	raw, err := collectionParam(exec, paramOptions, i)
	if err != nil {
		return translateOptions{}, err
	}

	var opts translateOptions
	if opts.sourceLanguage, err = n.optionValue(raw, optSourceLanguage); err != nil {
		return translateOptions{}, err
	}
	if opts.format, err = n.optionValue(raw, optFormat); err != nil {
		return translateOptions{}, err
	}
	if opts.formality, err = n.optionValue(raw, optFormality); err != nil {
		return translateOptions{}, err
	}
	return opts, nil
}

// buildTranslateRequest only sets the optional fields that differ from the
// API defaults
func buildTranslateRequest(
	text, targetLanguage string, opts translateOptions,
) domain.TranslateRequest {
	req := domain.TranslateRequest{
		Q:      text,
		Target: normalizeLanguage(targetLanguage),
	}
	if src := normalizeLanguage(opts.sourceLanguage); src != "" {
		req.Source = src
	}
	if opts.format != "" && opts.format != FormatText {
		req.Format = opts.format
	}
	if opts.formality != "" && opts.formality != FormalityDefault {
		req.Formality = opts.formality
	}
	return req
}
