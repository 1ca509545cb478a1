package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Ollama implements TextExtractor and DocumentClassifier against a local
// Ollama instance running a vision-capable model (llava family, qwen2-vl).
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama creates a new Ollama provider.
func NewOllama(baseURL, modelName string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llava"
	}
	return &Ollama{
		baseURL: baseURL,
		model:   modelName,
		client: &http.Client{
			// Vision models on local hardware are slow.
			Timeout: 120 * time.Second,
		},
	}, nil
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func (o *Ollama) chat(ctx context.Context, prompt string, images []string) (string, error) {
	reqBody := ollamaChatRequest{
		Model: o.model,
		Messages: []ollamaMessage{
			{Role: "user", Content: prompt, Images: images},
		},
		Stream: false,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("ollama returned %d: %s", resp.StatusCode, string(body))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return chatResp.Message.Content, nil
}

// ExtractText transcribes the image with the vision model.
func (o *Ollama) ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	finalImageData, _, _, err := PrepareImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	encoded := base64.StdEncoding.EncodeToString(finalImageData)
	text, err := o.chat(ctx, transcribePrompt, []string{encoded})
	if err != nil {
		return "", err
	}
	return stripFences(text), nil
}

// ClassifyDocument returns the provider's raw JSON classification payload.
func (o *Ollama) ClassifyDocument(ctx context.Context, text string) ([]byte, error) {
	out, err := o.chat(ctx, classifyPrompt+text, nil)
	if err != nil {
		return nil, err
	}
	return []byte(stripFences(out)), nil
}

// Close is a no-op; the provider holds no long-lived resources.
func (o *Ollama) Close() error {
	return nil
}
