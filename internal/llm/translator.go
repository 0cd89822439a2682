package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ppiankov/lepidex/internal/model"
)

// ErrDisabled is returned when translation is requested without a provider
var ErrDisabled = errors.New("translation disabled: no llm provider configured")

// Translator renders successful records in a target language. It only reads
// records; translations are returned as separate values.
type Translator struct {
	provider Provider
	language string
}

// NewTranslator creates a translator; provider may be nil
func NewTranslator(provider Provider, language string) *Translator {
	if language == "" {
		language = "English"
	}
	return &Translator{provider: provider, language: language}
}

// IsEnabled reports whether a provider is configured
func (t *Translator) IsEnabled() bool {
	return t.provider != nil
}

// Language returns the target language
func (t *Translator) Language() string {
	return t.language
}

// Translate renders one record
func (t *Translator) Translate(ctx context.Context, rec model.DescriptionRecord) (model.Translation, error) {
	if t.provider == nil {
		return model.Translation{}, ErrDisabled
	}

	species := rec.Query.ScientificName
	if species == "" {
		species = rec.Query.CommonName
	}

	resp, err := t.provider.Translate(ctx, TranslateRequest{
		Source:   rec.Source,
		Species:  species,
		Text:     rec.Text,
		Language: t.language,
	})
	if err != nil {
		return model.Translation{}, fmt.Errorf("translate %s: %w", rec.Source, err)
	}
	if err := checkURLs(rec.Text, resp.Text); err != nil {
		return model.Translation{}, fmt.Errorf("translate %s: %w", rec.Source, err)
	}

	return model.Translation{
		Source:   rec.Source,
		Language: t.language,
		Text:     resp.Text,
		Provider: t.provider.Name(),
		Model:    resp.Model,
	}, nil
}

// TranslateReport translates every successful entry in report order. Failed
// records are skipped and reported in the joined error.
func (t *Translator) TranslateReport(ctx context.Context, report *model.AggregateReport) ([]model.Translation, error) {
	if t.provider == nil {
		return nil, ErrDisabled
	}

	var translations []model.Translation
	var errs []error
	for _, rec := range report.Successes() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		tr, err := t.Translate(ctx, rec)
		if err != nil {
			slog.WarnContext(ctx, "translation failed", "source", rec.Source, "error", err)
			errs = append(errs, err)
			continue
		}
		translations = append(translations, tr)
	}

	return translations, errors.Join(errs...)
}
