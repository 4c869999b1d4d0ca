package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/statement-recon/internal/recon"
)

// parseStatementWithModel sends the PDF to Gemini and decodes the statement
// summary it returns.
func parseStatementWithModel(ctx context.Context, client *genai.Client, model string, pdfBytes []byte) (*recon.StatementDetail, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildStatementPrompt()},
				{
					InlineData: &genai.Blob{
						MIMEType: "application/pdf",
						Data:     pdfBytes,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("parseStatementWithModel: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("parseStatementWithModel: empty response from model")
	}

	detail, err := decodeStatementDetail(rawText)
	if err != nil {
		return nil, fmt.Errorf("parseStatementWithModel: %w", err)
	}
	return detail, nil
}

// decodeStatementDetail cleans up raw model text and decodes it. Numbers
// stay json.Number so long account numbers keep every digit.
func decodeStatementDetail(rawText string) (*recon.StatementDetail, error) {
	clean := cleanModelJSON(rawText)

	var detail recon.StatementDetail
	dec := json.NewDecoder(strings.NewReader(clean))
	dec.UseNumber()
	if err := dec.Decode(&detail); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w\nraw response: %s", err, rawText)
	}
	if detail.Accounts == nil {
		detail.Accounts = []recon.RawAccount{}
	}
	return &detail, nil
}

// cleanModelJSON strips Markdown fences and any prose around the outermost
// JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
