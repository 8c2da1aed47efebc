package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func issueToken(t *testing.T, secret, subject, role string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// fakeMember records delivered frames, or fails every delivery.
type fakeMember struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func (f *fakeMember) deliver(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail || f.closed {
		return fmt.Errorf("%w: fake", ErrDeliveryFailure)
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeMember) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeMember) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeMember) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// decoded returns every received frame as a generic JSON object.
func (f *fakeMember) decoded(t *testing.T) []map[string]interface{} {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]interface{}, 0, len(f.frames))
	for _, frame := range f.frames {
		var v map[string]interface{}
		require.NoError(t, json.Unmarshal(frame, &v))
		out = append(out, v)
	}
	return out
}

// fakeGateway is a scripted LLM provider. A non-nil hold makes every
// reply wait until it is closed; delay makes every reply take that long.
type fakeGateway struct {
	mu       sync.Mutex
	online   bool
	noKey    bool
	reply    string
	err      error
	hold     chan struct{}
	delay    time.Duration
	received []string
}

func (g *fakeGateway) configured() bool {
	return !g.noKey
}

func (g *fakeGateway) generateReply(ctx context.Context, text string) (string, error) {
	g.mu.Lock()
	g.received = append(g.received, text)
	g.mu.Unlock()

	if g.hold != nil {
		select {
		case <-g.hold:
		case <-ctx.Done():
			return "", &GatewayError{Op: "chat", Err: ctx.Err()}
		}
	}
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return "", &GatewayError{Op: "chat", Err: ctx.Err()}
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reply, g.err
}

func (g *fakeGateway) probeOnline(context.Context) bool {
	return g.online
}

func (g *fakeGateway) calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.received...)
}
