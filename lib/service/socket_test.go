// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bureau-foundation/fairmint/lib/admintoken"
	"github.com/bureau-foundation/fairmint/lib/clock"
	"github.com/bureau-foundation/fairmint/lib/codec"
	"github.com/bureau-foundation/fairmint/lib/testutil"
)

// testClockEpoch is the fake clock's time in auth tests.
var testClockEpoch = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

var testAdmin = common.HexToAddress("0x00000000000000000000000000000000000ad111")

func sendRequest(t *testing.T, socketPath string, request any) Response {
	t.Helper()

	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to socket: %v", err)
	}
	defer conn.Close()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		t.Fatalf("writing request: %v", err)
	}
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return response
}

func decodeData(t *testing.T, response Response, target any) {
	t.Helper()
	if len(response.Data) == 0 {
		t.Fatal("response has no data to decode")
	}
	if err := codec.Unmarshal(response.Data, target); err != nil {
		t.Fatalf("decoding response data: %v", err)
	}
}

func testSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(testutil.SocketDir(t), "test.sock")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// testAuthConfig returns an AuthConfig with a fresh keypair, an empty
// revocation list, and a fake clock at testClockEpoch, plus the
// private key for minting tokens.
func testAuthConfig(t *testing.T) (*AuthConfig, ed25519.PrivateKey) {
	t.Helper()
	public, private, err := admintoken.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return &AuthConfig{
		PublicKey:   public,
		Audience:    "test-collection",
		Revocations: NewRevocationList(),
		Clock:       clock.Fake(testClockEpoch),
	}, private
}

// mintTestToken signs a token for testAdmin valid from five minutes
// before testClockEpoch to five minutes after.
func mintTestToken(t *testing.T, privateKey ed25519.PrivateKey, audience string) []byte {
	t.Helper()
	token := &admintoken.Token{
		Subject:   testAdmin,
		Audience:  audience,
		ID:        "test-token-id",
		IssuedAt:  testClockEpoch.Add(-5 * time.Minute).Unix(),
		ExpiresAt: testClockEpoch.Add(5 * time.Minute).Unix(),
	}
	tokenBytes, err := admintoken.Mint(privateKey, token)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	return tokenBytes
}

// startServer runs server.Serve in the background until the test ends
// and waits for the socket to appear.
func startServer(t *testing.T, server *SocketServer, socketPath string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		if err := testutil.RequireReceive(t, done, 5*time.Second, "Serve did not return"); err != nil {
			t.Errorf("Serve returned error: %v", err)
		}
	})
	waitForSocket(t, socketPath)
}

// waitForSocket polls until the socket file exists, bounded by the
// test context.
func waitForSocket(t *testing.T, path string) {
	t.Helper()
	for {
		if _, err := os.Stat(path); err == nil {
			return
		}
		if t.Context().Err() != nil {
			t.Fatalf("socket %s did not appear before test context expired", path)
		}
		runtime.Gosched()
	}
}

func TestSocketServerStatus(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger(), nil)
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) {
		return map[string]any{"supply": 42, "revealed": false}, nil
	})
	startServer(t, server, socketPath)

	response := sendRequest(t, socketPath, map[string]string{"action": "status"})
	if !response.OK {
		t.Fatalf("ok = false, error %q", response.Error)
	}
	var data map[string]any
	decodeData(t, response, &data)
	if data["supply"] != uint64(42) {
		t.Errorf("supply = %v (%T), want 42", data["supply"], data["supply"])
	}
	if data["revealed"] != false {
		t.Errorf("revealed = %v, want false", data["revealed"])
	}
}

func TestSocketServerRequestErrors(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger(), nil)
	server.Handle("fail", func(ctx context.Context, raw []byte) (any, error) {
		return nil, fmt.Errorf("claim exceeds allowance")
	})
	startServer(t, server, socketPath)

	tests := []struct {
		name      string
		request   any
		wantError string
	}{
		{"unknown action", map[string]string{"action": "nonexistent"}, `unknown action "nonexistent"`},
		{"missing action", map[string]string{"foo": "bar"}, "missing required field: action"},
		{"handler error", map[string]string{"action": "fail"}, "claim exceeds allowance"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			response := sendRequest(t, socketPath, test.request)
			if response.OK {
				t.Fatal("ok = true, want false")
			}
			if response.Error != test.wantError {
				t.Errorf("error = %q, want %q", response.Error, test.wantError)
			}
		})
	}
}

func TestSocketServerInvalidCBOR(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger(), nil)
	startServer(t, server, socketPath)

	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer conn.Close()

	conn.Write([]byte{0xff, 0xfe, 0xfd, 0xfc, 0xfb})
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	if response.OK {
		t.Error("ok = true for invalid CBOR")
	}
}

func TestSocketServerNilResult(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger(), nil)
	server.Handle("noop", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})
	startServer(t, server, socketPath)

	response := sendRequest(t, socketPath, map[string]string{"action": "noop"})
	if !response.OK {
		t.Errorf("ok = false, error %q", response.Error)
	}
	if len(response.Data) != 0 {
		t.Errorf("response carries %d bytes of data, want none", len(response.Data))
	}
}

func TestSocketServerConcurrentRequests(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger(), nil)
	server.Handle("echo", func(ctx context.Context, raw []byte) (any, error) {
		var request struct {
			Value int `cbor:"value"`
		}
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		return map[string]any{"value": request.Value}, nil
	})
	startServer(t, server, socketPath)

	const concurrency = 20
	var wg sync.WaitGroup
	for i := range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			response := sendRequest(t, socketPath, map[string]any{"action": "echo", "value": i})
			if !response.OK {
				t.Errorf("request %d: ok = false", i)
				return
			}
			var data map[string]any
			decodeData(t, response, &data)
			if data["value"] != uint64(i) {
				t.Errorf("request %d: value = %v", i, data["value"])
			}
		}()
	}
	wg.Wait()
}

func TestSocketServerGracefulShutdown(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger(), nil)

	handlerStarted := make(chan struct{})
	handlerRelease := make(chan struct{})
	server.Handle("slow", func(ctx context.Context, raw []byte) (any, error) {
		close(handlerStarted)
		<-handlerRelease
		return map[string]any{"completed": true}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(ctx)
	}()
	waitForSocket(t, socketPath)

	responses := make(chan Response, 1)
	go func() {
		responses <- sendRequest(t, socketPath, map[string]string{"action": "slow"})
	}()

	testutil.RequireClosed(t, handlerStarted, 5*time.Second, "handler did not start")
	close(handlerRelease)
	cancel()

	response := testutil.RequireReceive(t, responses, 5*time.Second, "in-flight request did not complete")
	if !response.OK {
		t.Errorf("in-flight request ok = false")
	}
	if err := testutil.RequireReceive(t, serveDone, 5*time.Second, "Serve did not return after cancellation"); err != nil {
		t.Errorf("Serve returned error: %v", err)
	}
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Error("socket file not cleaned up after Serve returned")
	}
}

func TestSocketServerDuplicateHandlerPanics(t *testing.T) {
	server := NewSocketServer("/tmp/test.sock", testLogger(), nil)
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })

	defer func() {
		if r := recover(); r == nil {
			t.Error("no panic on duplicate handler registration")
		}
	}()
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })
}

func TestSocketServerHandleAuth(t *testing.T) {
	socketPath := testSocketPath(t)
	authConfig, privateKey := testAuthConfig(t)
	server := NewSocketServer(socketPath, testLogger(), authConfig)

	var received *admintoken.Token
	server.HandleAuth("reveal", func(ctx context.Context, token *admintoken.Token, raw []byte) (any, error) {
		received = token
		return map[string]any{"offset": 7}, nil
	})
	startServer(t, server, socketPath)

	response := sendRequest(t, socketPath, map[string]any{
		"action": "reveal",
		"token":  mintTestToken(t, privateKey, "test-collection"),
	})
	if !response.OK {
		t.Fatalf("ok = false, error %q", response.Error)
	}
	var data map[string]any
	decodeData(t, response, &data)
	if data["offset"] != uint64(7) {
		t.Errorf("offset = %v, want 7", data["offset"])
	}
	if received == nil || received.Subject != testAdmin {
		t.Errorf("handler received %+v, want subject %s", received, testAdmin)
	}
}

func TestSocketServerAuthRejections(t *testing.T) {
	authConfig, privateKey := testAuthConfig(t)

	expired, err := admintoken.Mint(privateKey, &admintoken.Token{
		Subject:   testAdmin,
		Audience:  "test-collection",
		ID:        "expired-token",
		IssuedAt:  1577836800, // 2020-01-01T00:00:00Z
		ExpiresAt: 1577840400,
	})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	tampered := mintTestToken(t, privateKey, "test-collection")
	tampered[0] ^= 0xFF

	revoked, err := admintoken.Mint(privateKey, &admintoken.Token{
		Subject:   testAdmin,
		Audience:  "test-collection",
		ID:        "revoked-token",
		IssuedAt:  testClockEpoch.Unix(),
		ExpiresAt: testClockEpoch.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	authConfig.Revocations.Revoke("revoked-token", testClockEpoch.Add(time.Hour))

	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger(), authConfig)
	server.HandleAuth("reveal", func(ctx context.Context, token *admintoken.Token, raw []byte) (any, error) {
		t.Errorf("handler called with token %q", token.ID)
		return nil, nil
	})
	startServer(t, server, socketPath)

	tests := []struct {
		name      string
		token     []byte
		wantError string
	}{
		{"missing token", nil, "missing token field"},
		{"expired", expired, "token expired"},
		{"tampered", tampered, "authentication failed"},
		{"wrong audience", mintTestToken(t, privateKey, "other-collection"), "authentication failed"},
		{"revoked", revoked, "token revoked"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			request := map[string]any{"action": "reveal"}
			if test.token != nil {
				request["token"] = test.token
			}
			response := sendRequest(t, socketPath, request)
			if response.OK {
				t.Fatal("ok = true, want false")
			}
			if !strings.Contains(response.Error, test.wantError) {
				t.Errorf("error = %q, want %q", response.Error, test.wantError)
			}
		})
	}
}

func TestSocketServerMixedHandlers(t *testing.T) {
	socketPath := testSocketPath(t)
	authConfig, _ := testAuthConfig(t)
	server := NewSocketServer(socketPath, testLogger(), authConfig)
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) {
		return map[string]any{"supply": 1}, nil
	})
	server.HandleAuth("reveal", func(ctx context.Context, token *admintoken.Token, raw []byte) (any, error) {
		return nil, nil
	})
	startServer(t, server, socketPath)

	if response := sendRequest(t, socketPath, map[string]string{"action": "status"}); !response.OK {
		t.Errorf("status without token: ok = false, error %q", response.Error)
	}
	if response := sendRequest(t, socketPath, map[string]string{"action": "reveal"}); response.OK {
		t.Error("reveal without token: ok = true")
	}
}

func TestSocketServerHandleAuthPanicsWithoutConfig(t *testing.T) {
	server := NewSocketServer("/tmp/test.sock", testLogger(), nil)

	defer func() {
		r := recover()
		message, ok := r.(string)
		if !ok || !strings.Contains(message, "HandleAuth requires AuthConfig") {
			t.Errorf("panic = %v, want HandleAuth requires AuthConfig", r)
		}
	}()
	server.HandleAuth("reveal", func(ctx context.Context, token *admintoken.Token, raw []byte) (any, error) {
		return nil, nil
	})
}

func TestSocketServerDuplicateAuthAction(t *testing.T) {
	authConfig, _ := testAuthConfig(t)
	server := NewSocketServer("/tmp/test.sock", testLogger(), authConfig)
	server.HandleAuth("reveal", func(ctx context.Context, token *admintoken.Token, raw []byte) (any, error) {
		return nil, nil
	})

	defer func() {
		if r := recover(); r == nil {
			t.Error("no panic registering an unauthenticated handler over an authenticated one")
		}
	}()
	server.Handle("reveal", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })
}

func TestRevocationListPrunesExpired(t *testing.T) {
	list := NewRevocationList()
	list.Revoke("a", testClockEpoch.Add(time.Minute))
	list.Revoke("b", testClockEpoch.Add(time.Hour))
	list.Revoke("forever", time.Time{})

	if !list.IsRevoked("a", testClockEpoch) {
		t.Error("a not revoked before its expiry")
	}
	if list.IsRevoked("a", testClockEpoch.Add(2*time.Minute)) {
		t.Error("a still revoked after its expiry")
	}
	if got := list.Len(); got != 2 {
		t.Errorf("Len after prune = %d, want 2", got)
	}
	if !list.IsRevoked("forever", testClockEpoch.AddDate(10, 0, 0)) {
		t.Error("permanent revocation lapsed")
	}
	if list.IsRevoked("c", testClockEpoch) {
		t.Error("unknown id reported revoked")
	}
}
