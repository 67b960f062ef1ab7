// Package ai wraps the third-party generative-text completion API. The
// core only assembles prompts and consumes either a text result or the
// fixed fallback; completion failures never propagate to callers.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
)

// Fallback is returned on any completion failure: unconfigured key,
// network error, timeout or parse error.
const Fallback = "Desculpe, não consegui processar sua mensagem no momento. " +
	"Por favor, tente novamente ou aguarde que um de nossos atendentes irá ajudá-lo em breve."

const systemPrompt = "Você é um assistente de suporte ao cliente. Responda sempre em " +
	"português, de forma educada e objetiva. Use o contexto da base de conhecimento " +
	"quando fornecido; se não souber a resposta, diga que um atendente dará sequência."

// Turn is one role-tagged chat utterance.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Responder calls an OpenAI-compatible chat-completions endpoint.
type Responder struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewResponder(opts Options) *Responder {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Responder{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		model:   opts.Model,
		client:  &http.Client{Timeout: opts.Timeout},
	}
}

// ContextBlock renders knowledge entries into the prompt block injected
// ahead of the conversation.
func ContextBlock(entries []model.KnowledgeEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Base de conhecimento:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s: %s\n", e.Title, e.Content)
	}
	return b.String()
}

// GenerateResponse returns the completion text for the conversation, or
// Fallback on any failure. It never returns an error.
func (r *Responder) GenerateResponse(ctx context.Context, turns []Turn, knowledgeContext string) string {
	if r.apiKey == "" {
		log.Println("ai: no API key configured, using fallback")
		return Fallback
	}

	system := systemPrompt
	if knowledgeContext != "" {
		system += "\n\n" + knowledgeContext
	}
	messages := make([]Turn, 0, len(turns)+1)
	messages = append(messages, Turn{Role: "system", Content: system})
	messages = append(messages, turns...)

	body, err := json.Marshal(map[string]interface{}{
		"model":    r.model,
		"messages": messages,
	})
	if err != nil {
		log.Printf("ai: marshal request: %v", err)
		return Fallback
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		log.Printf("ai: new request: %v", err)
		return Fallback
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		log.Printf("ai: completion request: %v", err)
		return Fallback
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("ai: completion status %d: %s", resp.StatusCode, snippet)
		return Fallback
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("ai: decode completion: %v", err)
		return Fallback
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		log.Println("ai: empty completion")
		return Fallback
	}
	return parsed.Choices[0].Message.Content
}
