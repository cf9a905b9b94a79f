package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const defaultPrompt = "Resuma em até duas frases, em português, o clima do mercado a partir destas manchetes do dia:\n\n"

// Обзор дня для сводки через openai
type OpenAISummarizer struct {
	// sdk для openai
	client *openai.Client
	promt  string
	// Флаг вкл/выкл summarizer, выключен если нет ключа
	enabled bool
	mu      sync.Mutex
}

func NewOpenAISummarizer(apiKey string, promt string, log *zap.Logger) *OpenAISummarizer {
	if promt == "" {
		promt = defaultPrompt
	}

	s := &OpenAISummarizer{
		client:  openai.NewClient(apiKey),
		promt:   promt,
		enabled: apiKey != "",
	}

	log.Info("openai summarizer", zap.Bool("enabled", s.enabled))

	return s
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return "", nil
	}

	request := openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: s.promt + text,
			},
		},
		MaxTokens:   256,
		Temperature: 0.7,
		TopP:        1,
	}

	resp, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	return trimToSentence(resp.Choices[0].Message.Content), nil
}

// Модель может оборвать ответ на середине предложения из-за MaxTokens.
// Оставляем только законченные предложения
func trimToSentence(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasSuffix(raw, ".") {
		return raw
	}

	idx := strings.LastIndex(raw, ".")
	if idx < 0 {
		return raw
	}

	return raw[:idx+1]
}
