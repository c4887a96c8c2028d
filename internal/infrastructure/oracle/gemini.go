package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/infrastructure/metrics"
)

// Gemini implements usecase.MatchOracle and usecase.DocumentParser on the
// Gemini API. One client serves both concerns: fuzzy property matching and
// vendor document extraction.
type Gemini struct {
	client *genai.Client
	model  string
	logger zerolog.Logger
}

// NewGemini creates a new Gemini client. Credentials are picked up from the
// environment (GOOGLE_API_KEY or application default credentials).
func NewGemini(ctx context.Context, model string, logger zerolog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

type matchSuggestion struct {
	VendorName string  `json:"vendor_name"`
	PropertyID string  `json:"property_id"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// matchResponseSchema constrains the matching call to an array of
// suggestion objects so the model cannot drift from the wire contract.
var matchResponseSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"vendor_name": {Type: genai.TypeString},
			"property_id": {Type: genai.TypeString},
			"confidence":  {Type: genai.TypeNumber},
			"reason":      {Type: genai.TypeString},
		},
		Required: []string{"vendor_name", "property_id", "confidence"},
	},
}

// generateStructured runs one schema-constrained generation call and
// unmarshals the JSON response into T. All oracle round trips funnel
// through here, so call accounting lives in exactly one place.
func generateStructured[T any](ctx context.Context, g *Gemini, parts []*genai.Part, config *genai.GenerateContentConfig) (T, error) {
	var out T

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: parts,
		}},
		config,
	)
	if err != nil {
		metrics.OracleCall("error", time.Since(start))
		return out, err
	}
	metrics.OracleCall("ok", time.Since(start))

	rawText := resp.Text()
	if rawText == "" {
		return out, fmt.Errorf("empty response from model")
	}

	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &out); err != nil {
		return out, fmt.Errorf("unmarshal model response: %w\nraw response: %s", err, rawText)
	}

	return out, nil
}

// SuggestMatches asks the model to map vendor property labels to registry
// entries. Only names the caller passed in are answered; anything else the
// model volunteers is dropped.
func (g *Gemini) SuggestMatches(ctx context.Context, names []string, properties []*domain.Property) (map[string]domain.MatchResult, error) {
	prompt := buildMatchPrompt(names, properties)

	suggestions, err := generateStructured[[]matchSuggestion](ctx, g,
		[]*genai.Part{{Text: prompt}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.3),
			ResponseMIMEType: "application/json",
			ResponseSchema:   matchResponseSchema,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("generate matches: %w", err)
	}

	asked := make(map[string]bool, len(names))
	for _, name := range names {
		asked[name] = true
	}

	results := make(map[string]domain.MatchResult, len(suggestions))
	for _, s := range suggestions {
		if !asked[s.VendorName] {
			g.logger.Warn().Str("vendor_name", s.VendorName).Msg("oracle answered an unasked name, dropping")
			continue
		}

		results[s.VendorName] = domain.MatchResult{
			PropertyID: s.PropertyID,
			Confidence: s.Confidence,
			Reason:     s.Reason,
		}
	}

	return results, nil
}

func buildMatchPrompt(names []string, properties []*domain.Property) string {
	var b strings.Builder

	b.WriteString("You match property names from a vendor's statement against a property registry.\n\n")
	b.WriteString("Registry (id | name | address):\n")
	for _, p := range properties {
		fmt.Fprintf(&b, "- %s | %s | %s\n", p.ID, p.Name, p.Address)
	}

	b.WriteString("\nVendor names to match:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s\n", name)
	}

	b.WriteString(`
Vendors misspell names, abbreviate them, reorder words, or append markers
like "(OLD)" or "(NEW)". Match each vendor name to the registry entry it most
plausibly refers to.

Output STRICT JSON only: a JSON array of objects with these fields:
- "vendor_name": string, the vendor name exactly as listed above
- "property_id": string, the id of the matched registry entry
- "confidence": number between 0.0 and 1.0
- "reason": string, a short explanation of the match

Confidence policy:
- Use 0.8-0.9 for minor textual differences: misspellings, abbreviations,
  reordered words, extra markers.
- Use 0.5-0.7 for partial matches where only part of the name lines up.
- Anything below 0.5 must NOT be returned as a match. Omit uncertain names
  entirely (confidence >= 0.5 is the admission threshold).

Rules:
- Never invent property ids that are not in the registry.
- Answer only for the vendor names listed, one object per name at most.
- Do NOT wrap the response in code fences. Output must begin with "[" and
  end with "]".
`)

	return b.String()
}

type parsedEntry struct {
	PropertyName string `json:"property_name"`
	Kind         string `json:"kind"`
	Description  string `json:"description"`
	Amount       string `json:"amount"`
}

var parseResponseSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"property_name": {Type: genai.TypeString},
			"kind":          {Type: genai.TypeString, Enum: []string{"income", "expense", "adjustment"}},
			"description":   {Type: genai.TypeString},
			"amount":        {Type: genai.TypeString},
		},
		Required: []string{"property_name", "kind", "amount"},
	},
}

// ParseVendorDocument extracts line entries from an encoded vendor statement.
func (g *Gemini) ParseVendorDocument(ctx context.Context, pdf []byte, vendor string) (*domain.VendorDocument, error) {
	prompt := buildParsePrompt(vendor)

	parsed, err := generateStructured[[]parsedEntry](ctx, g,
		[]*genai.Part{
			{Text: prompt},
			{
				InlineData: &genai.Blob{
					MIMEType: "application/pdf",
					Data:     pdf,
				},
			},
		},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.1),
			ResponseMIMEType: "application/json",
			ResponseSchema:   parseResponseSchema,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("generate document parse: %w", err)
	}

	doc := &domain.VendorDocument{Entries: make([]domain.VendorEntry, 0, len(parsed))}
	for _, e := range parsed {
		kind, ok := parseKind(e.Kind)
		if !ok {
			g.logger.Warn().Str("kind", e.Kind).Str("property", e.PropertyName).Msg("unknown line item kind, treating as adjustment")
			kind = domain.LineItemAdjustment
		}

		doc.Entries = append(doc.Entries, domain.VendorEntry{
			PropertyName: e.PropertyName,
			Kind:         kind,
			Description:  e.Description,
			Amount:       e.Amount,
		})
	}

	return doc, nil
}

func buildParsePrompt(vendor string) string {
	return fmt.Sprintf(`You are a statement parser for property management vendors. The attached
PDF is a statement from vendor %q.

Task:
- Extract ALL line items in the statement.
- Output STRICT JSON only (no comments, no trailing commas, no extra text).
- Output a JSON array of objects.

Each object must have these fields:
- "property_name": string, the property label exactly as printed
- "kind": string, one of "income", "expense" or "adjustment"
- "description": string
- "amount": string, the amount exactly as printed (e.g. "1,200.00")

Rules:
- Rent and other receipts are "income", costs and fees are "expense",
  credits and corrections are "adjustment".
- Keep the property label verbatim, including markers like "(OLD)".
- Do NOT wrap the response in code fences.
- Output must begin with "[" and end with "]".
`, vendor)
}

func parseKind(s string) (domain.LineItemKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return domain.LineItemIncome, true
	case "expense":
		return domain.LineItemExpense, true
	case "adjustment":
		return domain.LineItemAdjustment, true
	default:
		return "", false
	}
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: if there's still junk around the JSON array, keep only
	// from the first '[' to the last ']'.
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = s[start : end+1]
			s = strings.TrimSpace(s)
		}
	}

	return s
}
