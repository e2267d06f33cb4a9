package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fisa/matjip-backend/config"
)

var ErrAIDisabled = errors.New("OpenAI API key is not configured")

// AIService 텍스트 생성 클라이언트
type AIService interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest 한 번의 chat completion 요청
type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	JSON        bool // response_format json_object
}

type aiService struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewAIService AI 서비스 생성자
func NewAIService(cfg config.OpenAIConfig, httpClient *http.Client) AIService {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1/chat/completions"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &aiService{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: baseURL,
		timeout: timeout,
		client:  httpClient,
	}
}

// OpenAI API 요청 구조체
type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (s *aiService) Complete(ctx context.Context, in CompletionRequest) (string, error) {
	if s.apiKey == "" {
		return "", ErrAIDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reqData := openAIRequest{
		Model:       s.model,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	}
	if in.System != "" {
		reqData.Messages = append(reqData.Messages, openAIMessage{Role: "system", Content: in.System})
	}
	reqData.Messages = append(reqData.Messages, openAIMessage{Role: "user", Content: in.User})
	if in.JSON {
		reqData.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return "", fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if openAIResp.Error != nil {
		return "", fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API returned status %d", resp.StatusCode)
	}
	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(openAIResp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return content, nil
}
