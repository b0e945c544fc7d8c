package service

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solver-server/internal/protocol"
	"solver-server/internal/solver"
)

func startLoop(t *testing.T, engine solver.Engine) (client net.Conn, loop *Loop, done chan error) {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	d := NewDispatcher(testConfig(), testEvaluator(), engine, nil, nil)
	loop = NewLoop(conn, d, testConfig(), nil)
	require.Equal(t, StateListening, loop.State())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done = make(chan error, 1)
	go func() {
		done <- loop.Run(ctx)
	}()

	client, err = net.Dial("udp", conn.LocalAddr().String())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, loop, done
}

func roundTrip(t *testing.T, client net.Conn, payload string) string {
	t.Helper()
	_, err := client.Write([]byte(payload))
	require.NoError(t, err)

	buf := make([]byte, 64*1024)
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, err := client.Read(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func TestLoopValidationError(t *testing.T) {
	client, _, _ := startLoop(t, &stubEngine{sol: &solver.Solution{X: []float64{0, 0}}})

	rsp := roundTrip(t, client, `{"parameter":[1,2]}`)
	assert.Equal(t, `{"error":"wrong param size (np=3, len(p)=2)"}`, rsp)
}

func TestLoopSolve(t *testing.T) {
	engine := &stubEngine{sol: &solver.Solution{
		X:      []float64{1, -1},
		Status: "GradientThreshold",
	}}
	client, _, _ := startLoop(t, engine)

	rsp := roundTrip(t, client, `{"parameter":[1,2,3]}`)
	var out protocol.SolutionResponse
	require.NoError(t, json.Unmarshal([]byte(rsp), &out))
	assert.Equal(t, []float64{1, -1}, out.Solution)
	assert.Equal(t, "GradientThreshold", out.ExitStatus)
}

func TestLoopDropsGarbageSilently(t *testing.T) {
	client, _, _ := startLoop(t, &stubEngine{sol: &solver.Solution{X: []float64{0, 0}}})

	_, err := client.Write([]byte("garbage {{{"))
	require.NoError(t, err)
	_, err = client.Write([]byte("x\n\n"))
	require.NoError(t, err)

	// No datagram may come back for either payload.
	buf := make([]byte, 1024)
	require.NoError(t, client.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, err = client.Read(buf)
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestLoopQuit(t *testing.T) {
	client, loop, done := startLoop(t, &stubEngine{sol: &solver.Solution{X: []float64{0, 0}}})

	rsp := roundTrip(t, client, "x\n")
	assert.Equal(t, `{"msg":"Received quit command"}`, rsp)

	select {
	case err := <-done:
		require.NoError(t, err)
		assert.Equal(t, StateTerminated, loop.State())
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not terminate after quit command")
	}
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	d := NewDispatcher(testConfig(), testEvaluator(), &stubEngine{}, nil, nil)
	loop := NewLoop(conn, d, testConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
		assert.Equal(t, StateTerminated, loop.State())
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on context cancel")
	}
}

func TestDispatchTransitions(t *testing.T) {
	d := NewDispatcher(testConfig(), testEvaluator(), &stubEngine{sol: &solver.Solution{X: []float64{0, 0}}}, nil, nil)
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()
	loop := NewLoop(conn, d, testConfig(), nil)

	rsp, quit := loop.Dispatch(context.Background(), []byte("x"))
	assert.True(t, quit)
	assert.Equal(t, `{"msg":"Received quit command"}`, string(rsp))

	rsp, quit = loop.Dispatch(context.Background(), []byte("???"))
	assert.False(t, quit)
	assert.Nil(t, rsp)

	rsp, quit = loop.Dispatch(context.Background(), []byte(`{"parameter":[1,2,3]}`))
	assert.False(t, quit)
	assert.NotNil(t, rsp)
}
