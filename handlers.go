package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

func newUpgrader(origin string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return origin == "" || r.Header.Get("Origin") == origin
		},
	}
}

type wsHandler struct {
	h        *hub
	ch       *channel
	upgrader *websocket.Upgrader
}

// ServeHTTP completes the handshake before checking the token so that a
// rejection can be reported with close code 1008. A bad token therefore
// still gets a 101; browsers never expose the status of a refused upgrade,
// only a close code.
func (wsh wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := wsh.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	sock := wsSocket{conn: ws, pongWait: wsh.h.pongWait}

	id, err := wsh.h.verifier.verify(r.URL.Query().Get("token"))
	if err != nil {
		incr("auth.rejected", 1)
		wsh.ch.log.Info("connection rejected", "remote", r.RemoteAddr, "error", err)
		sock.reject(websocket.ClosePolicyViolation, "")
		sock.close()
		return
	}

	s := &session{
		ch:        wsh.ch,
		assistant: wsh.h.assistantFor(wsh.ch.name),
		conn:      newConnection(sock, wsh.h.ticker, id),
		log:       wsh.ch.log.With("subject", id.Subject, "remote", r.RemoteAddr),
	}
	s.run(wsh.h.ctx)
}

type channelHealth struct {
	Connections int `json:"connections"`
	Messages    int `json:"messages"`
}

type healthResponse struct {
	Status   string                   `json:"status"`
	LLM      status                   `json:"llm"`
	Channels map[string]channelHealth `json:"channels"`
}

type healthHandler struct {
	h *hub
}

func (hh healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		LLM:      hh.h.assistant.status(r.Context()),
		Channels: make(map[string]channelHealth, len(hh.h.channels)),
	}
	for name, ch := range hh.h.channels {
		resp.Channels[name] = channelHealth{
			Connections: ch.registry.len(),
			Messages:    ch.history.len(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type announcement struct {
	Sender string `json:"sender" validate:"max=100"`
	Text   string `json:"text" validate:"required,max=2000"`
}

var validate = validator.New()

// announceHandler lets an admin publish over HTTP. The message is relayed
// like any other but never answered by the assistant.
type announceHandler struct {
	h *hub
}

func (ah announceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ch, ok := ah.h.channels[mux.Vars(r)["channel"]]
	if !ok {
		sendError(w, http.StatusNotFound, "Unknown channel.")
		return
	}
	id, err := ah.h.verifier.verify(bearerToken(r))
	if err != nil {
		incr("auth.rejected", 1)
		sendError(w, http.StatusUnauthorized, "Invalid or missing token.")
		return
	}
	if id.Role != roleAdmin {
		sendError(w, http.StatusForbidden, "Admin role required.")
		return
	}

	var body announcement
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&body); err != nil {
		sendError(w, http.StatusBadRequest, "Unable to read JSON body.")
		return
	}
	body.Text = strings.TrimSpace(body.Text)
	if err := validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			sendError(w, http.StatusBadRequest, fmt.Sprintf("Invalid field %s.", strings.ToLower(verrs[0].Field())))
			return
		}
		sendError(w, http.StatusBadRequest, "Invalid body.")
		return
	}
	if body.Sender == "" {
		body.Sender = defaultSender
	}

	var t tag
	if ah.h.assistantFor(ch.name) != nil {
		t = tagUser
	}
	msg := newMessage(body.Sender, body.Text, t)
	if err := ch.publish(msg); err != nil {
		sendError(w, http.StatusInternalServerError, "Unable to publish.")
		return
	}
	ch.log.Info("announcement published", "subject", id.Subject)
	writeJSON(w, http.StatusCreated, msg)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func sendError(w http.ResponseWriter, code int, str string) {
	http.Error(w,
		fmt.Sprintf("Error: %s. %s", strings.ToLower(http.StatusText(code)), str),
		code)
}
