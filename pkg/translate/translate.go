// Package translate produces the English name fields. It prefers the
// Azure Translator service and falls back to pinyin romanization when no
// key is configured or a request fails. Results are memoized in sqlite so
// repeated runs stay cheap.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"transitatlas/pkg/config"
	"transitatlas/pkg/db"
	"transitatlas/pkg/pinyin"
	"transitatlas/pkg/request"
)

// Origins recorded with memoized translations.
const (
	OriginAzure  = "azure"
	OriginPinyin = "pinyin"
)

// Translator converts Chinese names to English.
type Translator struct {
	http      *request.Client
	db        *db.DB
	key       string
	region    string
	endpoint  string
	batchSize int
}

// New creates a Translator. With an empty key every translation uses the
// pinyin fallback.
func New(http *request.Client, d *db.DB, cfg config.TranslatorConfig) *Translator {
	batch := cfg.BatchSize
	if batch <= 0 || batch > 100 {
		batch = 100 // Azure caps a request at 100 texts
	}
	return &Translator{
		http:      http,
		db:        d,
		key:       cfg.Key,
		region:    cfg.Region,
		endpoint:  strings.TrimSuffix(cfg.Endpoint, "/"),
		batchSize: batch,
	}
}

type azureResult struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// Translate converts a single name.
func (t *Translator) Translate(ctx context.Context, text string) string {
	results := t.TranslateBatch(ctx, []string{text})
	return results[text]
}

// TranslateBatch converts many names in as few API calls as possible and
// returns a mapping from input to translation. Inputs are deduplicated;
// empty strings map to "".
func (t *Translator) TranslateBatch(ctx context.Context, texts []string) map[string]string {
	results := make(map[string]string, len(texts))

	// Dedupe and resolve from the memo table first.
	var pending []string
	seen := make(map[string]bool)
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true

		if cached, ok := t.db.GetTranslation(ctx, text); ok {
			results[text] = cached
			continue
		}
		pending = append(pending, text)
	}

	if len(pending) == 0 {
		return t.fill(results, texts)
	}

	if t.key == "" {
		for _, text := range pending {
			results[text] = t.fallback(ctx, text)
		}
		return t.fill(results, texts)
	}

	for start := 0; start < len(pending); start += t.batchSize {
		end := min(start+t.batchSize, len(pending))
		batch := pending[start:end]

		translated, err := t.callAzure(ctx, batch)
		if err != nil {
			slog.Warn("batch translation failed, falling back to pinyin",
				"size", len(batch), "error", err)
			for _, text := range batch {
				results[text] = t.fallback(ctx, text)
			}
			continue
		}

		for i, text := range batch {
			out := CleanTranslation(translated[i])
			if out == "" {
				results[text] = t.fallback(ctx, text)
				continue
			}
			results[text] = out
			if err := t.db.PutTranslation(ctx, text, out, OriginAzure); err != nil {
				slog.Warn("failed to memoize translation", "text", text, "error", err)
			}
		}
	}

	return t.fill(results, texts)
}

// fill maps the original (untrimmed) inputs onto the computed results.
func (t *Translator) fill(results map[string]string, texts []string) map[string]string {
	out := make(map[string]string, len(texts))
	for _, text := range texts {
		out[text] = results[strings.TrimSpace(text)]
	}
	return out
}

func (t *Translator) fallback(ctx context.Context, text string) string {
	out := pinyin.Romanize(text)
	if err := t.db.PutTranslation(ctx, text, out, OriginPinyin); err != nil {
		slog.Warn("failed to memoize fallback translation", "text", text, "error", err)
	}
	return out
}

// callAzure translates one batch, returning translations in input order.
func (t *Translator) callAzure(ctx context.Context, texts []string) ([]string, error) {
	type item struct {
		Text string `json:"text"`
	}
	items := make([]item, len(texts))
	for i, text := range texts {
		items[i] = item{Text: text}
	}
	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}

	q := url.Values{}
	q.Set("api-version", "3.0")
	q.Set("from", "zh-Hans")
	q.Set("to", "en")
	u := t.endpoint + "/translate?" + q.Encode()

	headers := map[string]string{
		"Ocp-Apim-Subscription-Key":    t.key,
		"Ocp-Apim-Subscription-Region": t.region,
		"Content-Type":                 "application/json",
		"X-ClientTraceId":              uuid.NewString(),
	}

	resp, err := t.http.PostWithHeaders(ctx, u, body, headers)
	if err != nil {
		return nil, fmt.Errorf("translator request failed: %w", err)
	}

	var parsed []azureResult
	if err := json.Unmarshal(resp, &parsed); err != nil {
		return nil, fmt.Errorf("translator decode failed: %w", err)
	}
	if len(parsed) != len(texts) {
		return nil, fmt.Errorf("translator returned %d results for %d texts", len(parsed), len(texts))
	}

	out := make([]string, len(texts))
	for i, r := range parsed {
		if len(r.Translations) > 0 {
			out[i] = r.Translations[0].Text
		}
	}
	return out, nil
}

var nonNameChars = regexp.MustCompile(`[^\p{L}\p{N}\s\-()]`)
var spaceRuns = regexp.MustCompile(`\s+`)

// CleanTranslation normalizes a raw translation into a name usable in
// data fields and folder names: stray punctuation removed, whitespace
// collapsed, Title Case.
func CleanTranslation(s string) string {
	s = nonNameChars.ReplaceAllString(s, "")
	s = spaceRuns.ReplaceAllString(s, " ")
	return pinyin.TitleCase(strings.TrimSpace(s))
}
