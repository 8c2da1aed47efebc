package main

import (
	"context"
	"log/slog"
	"time"
)

// hub owns the process-wide state: both channels, the shared ping ticker,
// the token verifier and the LLM gateway.
type hub struct {
	ctx       context.Context
	channels  channels
	assistant *assistant
	verifier  verifier
	ticker    *mTicker
	pongWait  time.Duration
	log       *slog.Logger
}

func newHub(ctx context.Context, v verifier, g gateway, log *slog.Logger) *hub {
	return newHubWithKeepalive(ctx, v, g, log, pingPeriod, pongWait)
}

// newHubWithKeepalive pings every connection once per ping and drops peers
// silent for longer than wait.
func newHubWithKeepalive(ctx context.Context, v verifier, g gateway, log *slog.Logger, ping, wait time.Duration) *hub {
	return &hub{
		ctx: ctx,
		channels: channels{
			chatChannel:   newChannel(chatChannel, log),
			aiChatChannel: newChannel(aiChatChannel, log),
		},
		assistant: newAssistant(g, log.With("channel", aiChatChannel)),
		verifier:  v,
		ticker:    newMTicker(ping),
		pongWait:  wait,
		log:       log,
	}
}

// assistantFor returns the assistant serving name, nil for plain channels.
func (h *hub) assistantFor(name string) *assistant {
	if name == aiChatChannel {
		return h.assistant
	}
	return nil
}

// stop disconnects every client and halts the pings.
func (h *hub) stop() {
	for _, ch := range h.channels {
		ch.closeAll()
	}
	h.ticker.stop()
}
