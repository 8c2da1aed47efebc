package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// replyFrames runs one assisted exchange and returns what a member saw.
func replyFrames(t *testing.T, g gateway, text string) (*channel, []map[string]interface{}) {
	t.Helper()
	ch := newChannel(aiChatChannel, testLogger())
	m := &fakeMember{}
	ch.registry.join(m)

	require.NoError(t, newAssistant(g, testLogger()).respond(context.Background(), ch, text))
	return ch, m.decoded(t)
}

func lastMessage(t *testing.T, frame map[string]interface{}) map[string]interface{} {
	t.Helper()
	require.Equal(t, "state", frame["type"])
	messages := frame["messages"].([]interface{})
	require.NotEmpty(t, messages)
	return messages[len(messages)-1].(map[string]interface{})
}

func TestAssistant_Refuses_Off_Topic(t *testing.T) {
	req := require.New(t)
	g := &fakeGateway{online: true, reply: "should not be used"}

	ch, frames := replyFrames(t, g, "qual a capital da frança")

	req.Empty(g.calls())
	req.Len(frames, 3)
	req.Equal(map[string]interface{}{"type": "status", "state": "processing"}, frames[0])
	msg := lastMessage(t, frames[1])
	req.Equal(replyRefused, msg["text"])
	req.Equal("AI CHAT", msg["sender"])
	req.Equal("AI", msg["tag"])
	req.Equal(map[string]interface{}{"type": "status", "state": "online"}, frames[2])
	req.Equal(1, ch.history.len())
}

func TestAssistant_Not_Configured(t *testing.T) {
	req := require.New(t)
	g := &fakeGateway{noKey: true}

	_, frames := replyFrames(t, g, "oi, preciso de ajuda com login")

	req.Empty(g.calls())
	req.Equal("LLM não configurada no servidor.", lastMessage(t, frames[1])["text"])
	req.Equal("offline", frames[2]["state"])
}

func TestAssistant_Hosted_Without_Key(t *testing.T) {
	g := newGateway(gatewayConfig{Provider: providerHosted, Model: "gpt-5", BaseURL: defaultHostedBaseURL, Timeout: time.Second}, testLogger())

	_, frames := replyFrames(t, g, "oi")

	require.Equal(t, "LLM não configurada no servidor.", lastMessage(t, frames[1])["text"])
	require.Equal(t, "offline", frames[2]["state"])
}

func TestAssistant_Forwards_Tagged_Text(t *testing.T) {
	req := require.New(t)
	g := &fakeGateway{online: true, reply: "Para trocar a senha, abra o painel."}

	_, frames := replyFrames(t, g, "  como trocar a senha?  ")

	req.Equal([]string{"[AI_CHAT] como trocar a senha?"}, g.calls())
	req.Equal("Para trocar a senha, abra o painel.", lastMessage(t, frames[1])["text"])
	req.Equal("online", frames[2]["state"])
}

func TestAssistant_Gateway_Failure_Degrades(t *testing.T) {
	req := require.New(t)
	g := &fakeGateway{err: &GatewayError{Op: "chat", StatusCode: 502}}

	_, frames := replyFrames(t, g, "ajuda")

	req.Len(g.calls(), 1)
	req.Equal(replyUnavailable, lastMessage(t, frames[1])["text"])
	req.Equal("offline", frames[2]["state"])
}

func TestAssistant_Greet(t *testing.T) {
	for _, online := range []bool{true, false} {
		m := &fakeMember{}
		require.NoError(t, newAssistant(&fakeGateway{online: online}, testLogger()).greet(context.Background(), m))

		want := `{"type":"status","state":"offline"}`
		if online {
			want = `{"type":"status","state":"online"}`
		}
		require.JSONEq(t, want, string(m.frames[0]))
	}
}
