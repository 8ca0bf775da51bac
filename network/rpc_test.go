package network

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) RPCConfig {
	return RPCConfig{URL: url, MaxAttempts: 3, Backoff: time.Millisecond, Timeout: 2 * time.Second}
}

func TestRPCClientCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/get-block-number", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"BlockHeight": 100}`))
	}))
	defer server.Close()

	client := NewRPCClient(testConfig(server.URL + "/v1"))
	var res heightResult
	require.NoError(t, client.Call(context.Background(), "get-block-number", nil, &res))
	assert.Equal(t, uint32(100), res.BlockHeight)
}

func TestRPCClientRetriesErrorBody(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Write([]byte(`{"code": 2, "message": "unavailable"}`))
			return
		}
		w.Write([]byte(`{"Epoch": 9}`))
	}))
	defer server.Close()

	client := NewRPCClient(testConfig(server.URL))
	var res epochResult
	require.NoError(t, client.Call(context.Background(), "get-epoch-number", nil, &res))
	assert.Equal(t, uint32(9), res.Epoch)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRPCClientAttemptLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rpcError{Code: 3, Message: "bad account"})
	}))
	defer server.Close()

	client := NewRPCClient(testConfig(server.URL))
	err := client.Call(context.Background(), "get-data", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRPCError)
	assert.Contains(t, err.Error(), "bad account")
	assert.Equal(t, int32(3), calls.Load())
}

func TestRPCClientConnectionError(t *testing.T) {
	cfg := testConfig("http://localhost:1")
	cfg.MaxAttempts = 1
	client := NewRPCClient(cfg)
	err := client.Call(context.Background(), "get-fees", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestRPCClientInvalidResponseIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"BlockHeight": "not a number"}`))
	}))
	defer server.Close()

	client := NewRPCClient(testConfig(server.URL))
	var res heightResult
	err := client.Call(context.Background(), "get-block-number", nil, &res)
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRPCClientContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewRPCClient(testConfig(server.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.Call(ctx, "get-block-number", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
