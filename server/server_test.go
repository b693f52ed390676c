package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mobile-next/sweep2sleep/commands"
	"github.com/mobile-next/sweep2sleep/gesture"
	"github.com/mobile-next/sweep2sleep/service"
	"github.com/mobile-next/sweep2sleep/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startService installs a gesture service with a mock clock for the
// duration of the test.
func startService(t *testing.T, mask int) *service.Service {
	t.Helper()
	s, err := service.New(service.Options{
		Mask:    mask,
		Version: "test",
		Clock:   utils.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	commands.SetService(s)
	t.Cleanup(func() {
		commands.SetService(nil)
		s.Close()
	})
	return s
}

func setupHTTPServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postRPC(t *testing.T, url string, body string) JSONRPCResponse {
	t.Helper()
	resp, err := http.Post(url+"/rpc", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out JSONRPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorPayload(t *testing.T, resp JSONRPCResponse) (int, string) {
	t.Helper()
	require.NotNil(t, resp.Error, "expected error response")
	e := resp.Error.(map[string]interface{})
	return int(e["code"].(float64)), e["message"].(string)
}

func TestBanner(t *testing.T) {
	_, ts := setupHTTPServer(t, Options{})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestJSONRPC_MethodNotAllowed(t *testing.T) {
	_, ts := setupHTTPServer(t, Options{})

	resp, err := http.Get(ts.URL + "/rpc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestJSONRPC_EnvelopeErrors(t *testing.T) {
	_, ts := setupHTTPServer(t, Options{})

	tests := []struct {
		name string
		body string
		code int
	}{
		{"parse error", `{not json`, ErrCodeParseError},
		{"wrong version", `{"jsonrpc":"1.0","method":"status","id":1}`, ErrCodeInvalidRequest},
		{"missing id", `{"jsonrpc":"2.0","method":"status"}`, ErrCodeInvalidRequest},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, ErrCodeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","method":"swipe","id":1}`, ErrCodeMethodNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := errorPayload(t, postRPC(t, ts.URL, tt.body))
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestJSONRPC_NotRunning(t *testing.T) {
	commands.SetService(nil)
	_, ts := setupHTTPServer(t, Options{})

	code, message := errorPayload(t, postRPC(t, ts.URL, `{"jsonrpc":"2.0","method":"status","id":1}`))
	assert.Equal(t, ErrCodeServerError, code)
	assert.Equal(t, "Server error", message)
}

func TestJSONRPC_MaskSet(t *testing.T) {
	s := startService(t, 4)
	_, ts := setupHTTPServer(t, Options{})

	resp := postRPC(t, ts.URL, `{"jsonrpc":"2.0","method":"mask_set","params":{"mask":"0x1c"},"id":1}`)
	code, message := errorPayload(t, resp)
	assert.Equal(t, ErrCodeInvalidParams, code)
	assert.Equal(t, "Invalid params", message)
	assert.Equal(t, gesture.Mask(4), s.Settings().Mask())

	resp = postRPC(t, ts.URL, `{"jsonrpc":"2.0","method":"mask_set","id":2}`)
	code, _ = errorPayload(t, resp)
	assert.Equal(t, ErrCodeInvalidParams, code)

	resp = postRPC(t, ts.URL, `{"jsonrpc":"2.0","method":"mask_set","params":{"mask":511},"id":3}`)
	require.Nil(t, resp.Error)
	assert.Equal(t, float64(3), resp.ID)
	result := resp.Result.(map[string]interface{})
	assert.Equal(t, float64(gesture.DefaultImplemented), result["mask"])
	assert.Equal(t, gesture.DefaultImplemented, s.Settings().Mask())
}

func TestJSONRPC_DebugSetRequiresField(t *testing.T) {
	startService(t, 0)
	_, ts := setupHTTPServer(t, Options{})

	code, _ := errorPayload(t, postRPC(t, ts.URL, `{"jsonrpc":"2.0","method":"debug_set","params":{},"id":1}`))
	assert.Equal(t, ErrCodeInvalidParams, code)
}

func TestJSONRPC_StatusAndVersion(t *testing.T) {
	startService(t, 28)
	_, ts := setupHTTPServer(t, Options{Version: "9.9.9"})

	resp := postRPC(t, ts.URL, `{"jsonrpc":"2.0","method":"status","id":"a"}`)
	require.Nil(t, resp.Error)
	assert.Equal(t, "a", resp.ID)
	status := resp.Result.(map[string]interface{})
	assert.Equal(t, float64(28), status["mask"])
	assert.Equal(t, gesture.DriverVersion, status["driverVersion"])

	resp = postRPC(t, ts.URL, `{"jsonrpc":"2.0","method":"version","id":2}`)
	require.Nil(t, resp.Error)
	assert.Equal(t, "9.9.9", resp.Result.(map[string]interface{})["version"])
}

func TestServer_VersionIsPerServer(t *testing.T) {
	a := New(Options{Version: "1.0.0"})
	b := New(Options{Version: "2.0.0"})
	c := New(Options{})

	for _, tt := range []struct {
		srv  *Server
		want string
	}{{a, "1.0.0"}, {b, "2.0.0"}, {c, "dev"}} {
		res, err := tt.srv.Execute("version", nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.(map[string]string)["version"])
	}
}

func TestServer_Execute(t *testing.T) {
	startService(t, 4)
	srv := New(Options{})

	res, err := srv.Execute("mask_get", nil)
	require.NoError(t, err)
	assert.NotNil(t, res)

	_, err = srv.Execute("swipe", nil)
	assert.ErrorIs(t, err, ErrMethodNotFound)

	_, err = srv.Execute(MethodShutdown, nil)
	require.NoError(t, err)
	select {
	case <-srv.ShutdownRequested():
	default:
		t.Fatal("shutdown was not requested")
	}
}

func TestJSONRPC_Shutdown(t *testing.T) {
	srv, ts := setupHTTPServer(t, Options{})

	resp := postRPC(t, ts.URL, `{"jsonrpc":"2.0","method":"server.shutdown","id":1}`)
	require.Nil(t, resp.Error)

	select {
	case <-srv.ShutdownRequested():
	case <-time.After(time.Second):
		t.Fatal("shutdown was not requested")
	}

	// a second call must not panic on the closed channel
	resp = postRPC(t, ts.URL, `{"jsonrpc":"2.0","method":"server.shutdown","id":2}`)
	assert.Nil(t, resp.Error)
}

func TestCORSPreflight(t *testing.T) {
	_, ts := setupHTTPServer(t, Options{EnableCORS: true})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/rpc", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestNormalizeAddr(t *testing.T) {
	addr, err := normalizeAddr("12000")
	require.NoError(t, err)
	assert.Equal(t, ":12000", addr)

	addr, err = normalizeAddr("localhost:12000")
	require.NoError(t, err)
	assert.Equal(t, "localhost:12000", addr)

	_, err = normalizeAddr("twelve")
	assert.Error(t, err)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	srv := New(Options{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * ShutdownTimeout):
		t.Fatal("server did not stop")
	}
}
