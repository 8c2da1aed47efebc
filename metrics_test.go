package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := count("test.counter")
	incr("test.counter", 3)
	decr("test.counter", 1)
	require.Equal(t, before+2, count("test.counter"))
}

func TestReporter_Run(t *testing.T) {
	var out bytes.Buffer
	r := &reporter{out: &out, reg: gometrics.NewRegistry(), tick: time.Hour}
	gometrics.GetOrRegisterCounter("sessions", r.reg).Inc(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.run(ctx)

	var dump map[string]map[string]int64
	require.NoError(t, json.Unmarshal(out.Bytes(), &dump))
	require.Equal(t, int64(2), dump["sessions"]["count"])
}

func TestRelay_Counts_Rejections(t *testing.T) {
	relay := newTestRelay(t, &fakeGateway{})
	before := count("auth.rejected")

	ws := relay.dial(t, "/api/ws/chat", "")
	ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := ws.ReadMessage()
	require.Error(t, err)

	require.Eventually(t, func() bool {
		return count("auth.rejected") == before+1
	}, time.Second, 5*time.Millisecond)
}
