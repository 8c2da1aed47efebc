package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/samber/lo"
)

const (
	providerHosted = "openai"
	providerLocal  = "ollama"

	defaultHostedBaseURL = "https://api.openai.com/v1"
	defaultLocalBaseURL  = "http://localhost:11434"

	systemPrompt = "Você é um assistente de chat limitado para suporte básico do sistema. " +
		"Se o usuário pedir assuntos fora de ajuda do sistema, ou temas ofensivos, " +
		"sensíveis ou potencialmente problemáticos, responda apenas com: " +
		"\"Este é um chat limitado e não posso falar sobre esse assunto.\""

	replyNotConfigured = "LLM não configurada no servidor."
)

// gateway is the LLM provider as seen by the assisted channel.
type gateway interface {
	// configured reports whether generateReply can reach a provider at all.
	configured() bool
	// generateReply returns the trimmed, non-empty answer or a *GatewayError.
	generateReply(ctx context.Context, text string) (string, error)
	// probeOnline never fails; any problem reads as offline.
	probeOnline(ctx context.Context) bool
}

type gatewayConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

func newGateway(cfg gatewayConfig, log *slog.Logger) gateway {
	client := &http.Client{Timeout: cfg.Timeout}
	base := strings.TrimRight(cfg.BaseURL, "/")
	log = log.With("provider", cfg.Provider, "model", cfg.Model)

	if cfg.Provider == providerLocal {
		if base == "" || base == defaultHostedBaseURL {
			base = defaultLocalBaseURL
		}
		return &localGateway{baseURL: base, model: cfg.Model, timeout: cfg.Timeout, client: client, log: log}
	}

	if base == "" {
		base = defaultHostedBaseURL
	}
	g := &hostedGateway{
		baseURL: base,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		client:  client,
		log:     log,
	}
	if cfg.APIKey != "" {
		g.api = openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(base),
			option.WithHTTPClient(client),
			option.WithMaxRetries(0),
		)
	}
	return g
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type localChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type localChatResponse struct {
	Message *chatMessage `json:"message"`
}

// localGateway talks to an Ollama server.
type localGateway struct {
	baseURL string
	model   string
	timeout time.Duration
	client  *http.Client
	log     *slog.Logger
}

func (g *localGateway) configured() bool {
	return true
}

func (g *localGateway) generateReply(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	payload := localChatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
	}
	var resp localChatResponse
	if err := postJSON(ctx, g.client, g.baseURL+"/api/chat", nil, payload, &resp); err != nil {
		return "", err
	}
	if resp.Message == nil {
		return "", &GatewayError{Op: "chat", Err: ErrEmptyOutput}
	}
	return nonEmpty("chat", resp.Message.Content)
}

func (g *localGateway) probeOnline(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := getOK(ctx, g.client, g.baseURL+"/api/version"); err != nil {
		g.log.Debug("llm probe failed", "error", err)
		return false
	}
	return true
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responsesInput struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type responsesRequest struct {
	Model       string           `json:"model"`
	Input       []responsesInput `json:"input"`
	Temperature float64          `json:"temperature"`
}

type responsesOutput struct {
	Content []contentBlock `json:"content"`
}

type responsesResponse struct {
	Output []responsesOutput `json:"output"`
}

// hostedGateway talks to the OpenAI Responses API.
type hostedGateway struct {
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
	client  *http.Client
	api     openai.Client
	log     *slog.Logger
}

func (g *hostedGateway) configured() bool {
	return g.apiKey != ""
}

func (g *hostedGateway) generateReply(ctx context.Context, text string) (string, error) {
	if !g.configured() {
		return replyNotConfigured, nil
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	payload := responsesRequest{
		Model: g.model,
		Input: []responsesInput{
			{Role: "system", Content: []contentBlock{{Type: "text", Text: systemPrompt}}},
			{Role: "user", Content: []contentBlock{{Type: "text", Text: text}}},
		},
		Temperature: 0.2,
	}
	headers := map[string]string{"Authorization": "Bearer " + g.apiKey}
	var resp responsesResponse
	if err := postJSON(ctx, g.client, g.baseURL+"/responses", headers, payload, &resp); err != nil {
		return "", err
	}
	return nonEmpty("responses", outputText(resp))
}

func (g *hostedGateway) probeOnline(ctx context.Context) bool {
	if !g.configured() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if _, err := g.api.Models.List(ctx); err != nil {
		g.log.Debug("llm probe failed", "error", err)
		return false
	}
	return true
}

// outputText joins every output_text block of a Responses API reply.
func outputText(resp responsesResponse) string {
	texts := lo.FlatMap(resp.Output, func(item responsesOutput, _ int) []string {
		return lo.FilterMap(item.Content, func(block contentBlock, _ int) (string, bool) {
			return block.Text, block.Type == "output_text"
		})
	})
	return strings.TrimSpace(strings.Join(texts, "\n"))
}

func nonEmpty(op, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &GatewayError{Op: op, Err: ErrEmptyOutput}
	}
	return text, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload, out interface{}) error {
	start := time.Now()
	incr("gateway.calls", 1)
	defer timeSince("gateway.latency", start)

	err := doPostJSON(ctx, client, url, headers, payload, out)
	if err != nil {
		incr("gateway.errors", 1)
	}
	return err
}

func doPostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload, out interface{}) error {
	op := url[strings.LastIndex(url, "/")+1:]

	body, err := json.Marshal(payload)
	if err != nil {
		return &GatewayError{Op: op, Err: fmt.Errorf("encode payload: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &GatewayError{Op: op, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &GatewayError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func getOK(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
