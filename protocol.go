package main

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type tag string

const (
	tagUser tag = "USER"
	tagAI   tag = "AI"
)

type status string

const (
	statusOnline     status = "online"
	statusOffline    status = "offline"
	statusProcessing status = "processing"
)

const (
	frameMessage = "message"
	frameState   = "state"
	frameStatus  = "status"

	defaultSender = "Usuário"
)

// Message is one chat line. It is never modified after newMessage.
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Tag       tag       `json:"tag,omitempty"`
}

func newMessage(sender, text string, t tag) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      strings.TrimSpace(text),
		CreatedAt: time.Now().UTC(),
		Tag:       t,
	}
}

type stateFrame struct {
	Type     string    `json:"type"`
	Messages []Message `json:"messages"`
}

type statusFrame struct {
	Type  string `json:"type"`
	State status `json:"state"`
}

type inboundFrame struct {
	Type    string `json:"type"`
	Payload *struct {
		Sender string `json:"sender"`
		Text   string `json:"text"`
	} `json:"payload"`
}

func encodeState(messages []Message) ([]byte, error) {
	if messages == nil {
		messages = []Message{}
	}
	return json.Marshal(stateFrame{Type: frameState, Messages: messages})
}

func encodeStatus(s status) ([]byte, error) {
	return json.Marshal(statusFrame{Type: frameStatus, State: s})
}

// decodeInbound extracts sender and trimmed text from a client frame. It
// reports false for anything that must be ignored: undecodable JSON, a type
// other than "message", or blank text.
func decodeInbound(data []byte) (sender, text string, ok bool) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return "", "", false
	}
	if frame.Type != frameMessage || frame.Payload == nil {
		return "", "", false
	}
	text = strings.TrimSpace(frame.Payload.Text)
	if text == "" {
		return "", "", false
	}
	sender = frame.Payload.Sender
	if sender == "" {
		sender = defaultSender
	}
	return sender, text, true
}
