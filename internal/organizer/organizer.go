// Package organizer composes provider prompts and turns raw model replies
// into validated items and edit operations, repairing structurally broken
// replies with a single corrective follow-up call.
package organizer

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"shoppr/internal/layout"
	"shoppr/internal/llm"
	"shoppr/internal/shopping"
)

//go:embed categorize_prompt.md
var categorizePrompt string

//go:embed edit_prompt.md
var editPrompt string

//go:embed ocr_prompt.md
var ocrPrompt string

//go:embed repair_prompt.md
var repairPrompt string

var (
	categorizeTmpl = template.Must(template.New("categorize").Parse(categorizePrompt))
	editTmpl       = template.Must(template.New("edit").Parse(editPrompt))
	repairTmpl     = template.Must(template.New("repair").Parse(repairPrompt))
)

// Generator is the slice of the LLM gateway the organizer needs. Tests
// substitute a scripted fake.
type Generator interface {
	Generate(ctx context.Context, agent, system, prompt string) (llm.Response, error)
	Describe(ctx context.Context, agent, prompt string, image []byte, mime string) (llm.Response, error)
}

// ResponseValidationError reports a model reply that stayed invalid after the
// single repair attempt. The raw provider payload is never included.
type ResponseValidationError struct {
	Mode      string
	Violation string
}

func (e *ResponseValidationError) Error() string {
	return fmt.Sprintf("%s response failed validation: %s", e.Mode, e.Violation)
}

func (e *ResponseValidationError) Kind() string { return "response_validation" }

func (e *ResponseValidationError) Hint() string {
	return "try a shorter or clearer list"
}

// Organizer drives the categorize, edit and OCR flows.
type Organizer struct {
	gen Generator
	log *zap.Logger
}

// New creates an Organizer on top of a gateway.
func New(gen Generator, log *zap.Logger) *Organizer {
	return &Organizer{gen: gen, log: log}
}

// Categorize turns free-form list text into validated, area-tagged items with
// ids and positions assigned in response order.
func (o *Organizer) Categorize(ctx context.Context, l *layout.Layout, text string) ([]shopping.ShoppingItem, []string, error) {
	system, err := buildCategorizePrompt(l)
	if err != nil {
		return nil, nil, err
	}

	resp, err := o.gen.Generate(ctx, "categorize", system, text)
	if err != nil {
		return nil, nil, err
	}

	items, warnings, violation := parseItems(resp.Content, l)
	if violation == "" {
		return items, warnings, nil
	}

	o.log.Warn("categorize response invalid, attempting repair",
		zap.String("violation", violation))
	repaired, err := o.repair(ctx, system, resp.Content, violation)
	if err != nil {
		return nil, nil, err
	}
	items, warnings, violation = parseItems(repaired.Content, l)
	if violation != "" {
		return nil, nil, &ResponseValidationError{Mode: "categorize", Violation: violation}
	}
	return items, warnings, nil
}

// PlanEdit turns a natural-language instruction into a validated operation
// sequence against the given snapshot.
func (o *Organizer) PlanEdit(ctx context.Context, l *layout.Layout, snapshot []shopping.ShoppingItem, instruction string) ([]shopping.Operation, []string, error) {
	system, err := buildEditPrompt(l, snapshot)
	if err != nil {
		return nil, nil, err
	}

	resp, err := o.gen.Generate(ctx, "edit", system, instruction)
	if err != nil {
		return nil, nil, err
	}

	ops, warnings, violation := parseOperations(resp.Content, snapshot)
	if violation == "" {
		return ops, warnings, nil
	}

	o.log.Warn("edit response invalid, attempting repair",
		zap.String("violation", violation))
	repaired, err := o.repair(ctx, system, resp.Content, violation)
	if err != nil {
		return nil, nil, err
	}
	ops, warnings, violation = parseOperations(repaired.Content, snapshot)
	if violation != "" {
		return nil, nil, &ResponseValidationError{Mode: "edit", Violation: violation}
	}
	return ops, warnings, nil
}

// ExtractText runs the vision model over a shopping list photo and returns
// the raw line-per-item text.
func (o *Organizer) ExtractText(ctx context.Context, image []byte, mime string) (string, error) {
	resp, err := o.gen.Describe(ctx, "ocr", strings.TrimSpace(ocrPrompt), image, mime)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", &ResponseValidationError{
			Mode:      "ocr",
			Violation: "no text could be extracted from the image",
		}
	}
	return text, nil
}

// repair issues the single corrective follow-up call, reusing the original
// system prompt so the schema instructions stay in front of the model.
func (o *Organizer) repair(ctx context.Context, system, original, violation string) (llm.Response, error) {
	var buf bytes.Buffer
	err := repairTmpl.Execute(&buf, map[string]string{
		"Violation": violation,
		"Original":  original,
	})
	if err != nil {
		return llm.Response{}, fmt.Errorf("failed to build repair prompt: %w", err)
	}
	return o.gen.Generate(ctx, "repair", system, buf.String())
}

func buildCategorizePrompt(l *layout.Layout) (string, error) {
	storeName := layout.SupermarketDisplay(l.Key)
	if storeName == "" {
		storeName = "a typical supermarket"
	}

	var buf bytes.Buffer
	err := categorizeTmpl.Execute(&buf, map[string]any{
		"StoreName": storeName,
		"Areas":     l.Areas(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to build categorize prompt: %w", err)
	}
	return buf.String(), nil
}

// snapshotItem is the view of an existing item shown to the model in edit
// mode.
type snapshotItem struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Quantity *string `json:"quantity"`
	Area     string  `json:"area"`
	Checked  bool    `json:"checked"`
}

func buildEditPrompt(l *layout.Layout, snapshot []shopping.ShoppingItem) (string, error) {
	view := make([]snapshotItem, 0, len(snapshot))
	for _, it := range snapshot {
		si := snapshotItem{ID: it.ID, Name: it.Name, Area: it.Area, Checked: it.Checked}
		if it.Quantity != "" {
			q := it.Quantity
			si.Quantity = &q
		}
		view = append(view, si)
	}
	snapJSON, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal item snapshot: %w", err)
	}

	keys := make([]string, 0, len(l.Areas()))
	for _, a := range l.Areas() {
		keys = append(keys, a.Key)
	}

	var buf bytes.Buffer
	err = editTmpl.Execute(&buf, map[string]string{
		"AreaKeys": strings.Join(keys, ", "),
		"Snapshot": string(snapJSON),
	})
	if err != nil {
		return "", fmt.Errorf("failed to build edit prompt: %w", err)
	}
	return buf.String(), nil
}
