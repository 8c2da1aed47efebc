package main

import (
	"context"
	"log/slog"
	"strings"
)

const (
	assistantSender = "AI CHAT"
	assistantPrefix = "[AI_CHAT] "

	replyRefused     = "Este é um chat limitado e não posso falar sobre esse assunto."
	replyUnavailable = "LLM indisponível no momento. Verifique se o serviço está rodando " +
		"e se o modelo foi baixado."
)

// assistant answers every message posted to the assisted channel.
type assistant struct {
	gateway gateway
	log     *slog.Logger
}

func newAssistant(g gateway, log *slog.Logger) *assistant {
	return &assistant{gateway: g, log: log}
}

// greet tells a newly joined member whether the provider is reachable.
func (a *assistant) greet(ctx context.Context, m member) error {
	frame, err := encodeStatus(a.status(ctx))
	if err != nil {
		return err
	}
	return m.deliver(frame)
}

func (a *assistant) status(ctx context.Context) status {
	if a.gateway.probeOnline(ctx) {
		return statusOnline
	}
	return statusOffline
}

// respond runs after the user's message has been published: it reports
// processing, computes the reply, publishes it and reports the outcome.
func (a *assistant) respond(ctx context.Context, ch *channel, text string) error {
	if err := ch.announce(statusProcessing); err != nil {
		return err
	}
	reply, after := a.reply(ctx, text)
	if err := ch.publish(newMessage(assistantSender, reply, tagAI)); err != nil {
		return err
	}
	return ch.announce(after)
}

func (a *assistant) reply(ctx context.Context, text string) (string, status) {
	if !isAllowed(text) {
		incr("moderation.refused", 1)
		return replyRefused, statusOnline
	}
	if !a.gateway.configured() {
		return replyNotConfigured, statusOffline
	}
	reply, err := a.gateway.generateReply(ctx, assistantPrefix+strings.TrimSpace(text))
	if err != nil {
		a.log.Warn("llm reply failed", "error", err)
		return replyUnavailable, statusOffline
	}
	return reply, statusOnline
}
