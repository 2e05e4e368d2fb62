package describe

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ericogr/gamedash/internal/constants"
	"github.com/ericogr/gamedash/internal/logging"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("description generation is not configured")

const defaultPrompt = "This is a thumbnail of a Roblox asset named \"{{name}}\". Describe what it looks like in one short paragraph suitable for an NPC that needs to recognise it in the game world. Return only the description."

// Describer writes asset descriptions with the OpenAI Chat Completions API.
type Describer struct {
	APIKey     string
	BaseURL    string
	Model      string
	Prompt     string
	HTTPClient *http.Client
}

// New returns a Describer. An empty prompt uses the built-in one; the
// token {{name}} is replaced with the asset name.
func New(apiKey, prompt string) *Describer {
	return &Describer{
		APIKey:     apiKey,
		BaseURL:    constants.OpenAIBaseURL,
		Model:      constants.OpenAIChatModel,
		Prompt:     strings.TrimSpace(prompt),
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Enabled reports whether an API key is configured.
func (d *Describer) Enabled() bool {
	return d != nil && d.APIKey != ""
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// Describe asks for a description of an asset given its name and optional
// PNG thumbnail.
func (d *Describer) Describe(ctx context.Context, name string, png []byte) (string, error) {
	if !d.Enabled() {
		return "", ErrDisabled
	}
	prompt := d.Prompt
	if prompt == "" {
		prompt = defaultPrompt
	}
	prompt = strings.ReplaceAll(prompt, "{{name}}", name)
	logging.Debug("describe prompt", logging.Fields{constants.LogFieldName: name, "prompt": prompt})

	parts := []contentPart{{Type: "text", Text: prompt}}
	if len(png) > 0 {
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageRef{URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)},
		})
	}
	payload := map[string]interface{}{
		"model": d.Model,
		"messages": []message{
			{Role: "system", Content: "You describe 3D game assets concisely and concretely."},
			{Role: "user", Content: parts},
		},
		"max_tokens": 300,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(d.BaseURL, "/")+constants.OpenAIChatCompletionsPath, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+d.APIKey)
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("openai error: %d %s", resp.StatusCode, string(body))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	text := strings.Trim(strings.TrimSpace(out.Choices[0].Message.Content), "\"")
	if text == "" {
		return "", fmt.Errorf("empty description from OpenAI")
	}
	return text, nil
}
