// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bureau-foundation/fairmint/lib/admintoken"
	"github.com/bureau-foundation/fairmint/lib/codec"
)

func TestNewServiceClient(t *testing.T) {
	dir := t.TempDir()

	tokenPath := filepath.Join(dir, "admin.token")
	if err := os.WriteFile(tokenPath, []byte("token-bytes"), 0o600); err != nil {
		t.Fatalf("writing token file: %v", err)
	}
	client, err := NewServiceClient("/tmp/test.sock", tokenPath)
	if err != nil {
		t.Fatalf("NewServiceClient: %v", err)
	}
	if string(client.tokenBytes) != "token-bytes" {
		t.Errorf("tokenBytes = %q, want token-bytes", client.tokenBytes)
	}

	if _, err := NewServiceClient("/tmp/test.sock", filepath.Join(dir, "missing")); err == nil {
		t.Error("NewServiceClient accepted a missing token file")
	}

	emptyPath := filepath.Join(dir, "empty.token")
	if err := os.WriteFile(emptyPath, nil, 0o600); err != nil {
		t.Fatalf("writing empty file: %v", err)
	}
	if _, err := NewServiceClient("/tmp/test.sock", emptyPath); err == nil {
		t.Error("NewServiceClient accepted an empty token file")
	}
}

func TestClientCallUnauthenticated(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger(), nil)
	server.Handle("owner-of", func(ctx context.Context, raw []byte) (any, error) {
		var request struct {
			ID    uint64 `cbor:"id"`
			Token []byte `cbor:"token"`
		}
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		if request.Token != nil {
			return nil, errors.New("unexpected token field")
		}
		return map[string]any{"id": request.ID}, nil
	})
	startServer(t, server, socketPath)

	client := NewServiceClientFromToken(socketPath, nil)
	var result struct {
		ID uint64 `cbor:"id"`
	}
	if err := client.Call(context.Background(), "owner-of", map[string]any{"id": 12}, &result); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result.ID != 12 {
		t.Errorf("id = %d, want 12", result.ID)
	}

	// A nil result and a response without data are both fine.
	if err := client.Call(context.Background(), "owner-of", nil, nil); err != nil {
		t.Errorf("Call with nil result: %v", err)
	}
}

func TestClientCallAuthenticated(t *testing.T) {
	socketPath := testSocketPath(t)
	authConfig, privateKey := testAuthConfig(t)
	server := NewSocketServer(socketPath, testLogger(), authConfig)
	server.HandleAuth("set-base-locator", func(ctx context.Context, token *admintoken.Token, raw []byte) (any, error) {
		var request struct {
			Locator string `cbor:"locator"`
		}
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		return map[string]any{"locator": request.Locator, "subject": token.Subject.Hex()}, nil
	})
	startServer(t, server, socketPath)

	tokenPath := filepath.Join(t.TempDir(), "admin.token")
	if err := os.WriteFile(tokenPath, mintTestToken(t, privateKey, "test-collection"), 0o600); err != nil {
		t.Fatalf("writing token: %v", err)
	}
	client, err := NewServiceClient(socketPath, tokenPath)
	if err != nil {
		t.Fatalf("NewServiceClient: %v", err)
	}

	var result map[string]string
	err = client.Call(context.Background(), "set-base-locator", map[string]any{"locator": "ipfs://base/"}, &result)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result["locator"] != "ipfs://base/" {
		t.Errorf("locator = %q", result["locator"])
	}
	if result["subject"] != testAdmin.Hex() {
		t.Errorf("subject = %q, want %s", result["subject"], testAdmin.Hex())
	}

	unauthenticated := NewServiceClientFromToken(socketPath, nil)
	err = unauthenticated.Call(context.Background(), "set-base-locator", map[string]any{"locator": "x"}, nil)
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("error = %v, want *ServiceError", err)
	}
	if serviceErr.Message != "missing token field" {
		t.Errorf("message = %q, want missing token field", serviceErr.Message)
	}
}

func TestClientCallServiceError(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger(), nil)
	server.Handle("claim", func(ctx context.Context, raw []byte) (any, error) {
		return nil, errors.New("mint: invalid proof")
	})
	startServer(t, server, socketPath)

	client := NewServiceClientFromToken(socketPath, nil)
	tests := []struct {
		action      string
		wantMessage string
	}{
		{"claim", "mint: invalid proof"},
		{"bogus", `unknown action "bogus"`},
	}
	for _, test := range tests {
		err := client.Call(context.Background(), test.action, nil, nil)
		var serviceErr *ServiceError
		if !errors.As(err, &serviceErr) {
			t.Fatalf("%s: error = %v, want *ServiceError", test.action, err)
		}
		if serviceErr.Action != test.action || serviceErr.Message != test.wantMessage {
			t.Errorf("%s: got %+v, want message %q", test.action, serviceErr, test.wantMessage)
		}
	}
}

func TestClientCallConnectionRefused(t *testing.T) {
	client := NewServiceClientFromToken(testSocketPath(t), nil)
	err := client.Call(context.Background(), "status", nil, nil)
	if err == nil {
		t.Fatal("Call succeeded with no server")
	}
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		t.Errorf("connection failure reported as *ServiceError: %v", err)
	}
}

func TestClientConcurrentCalls(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger(), nil)
	server.Handle("balance", func(ctx context.Context, raw []byte) (any, error) {
		var request struct {
			N int `cbor:"n"`
		}
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		return map[string]int{"balance": request.N * 2}, nil
	})
	startServer(t, server, socketPath)

	client := NewServiceClientFromToken(socketPath, nil)
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var result map[string]int
			if err := client.Call(context.Background(), "balance", map[string]any{"n": i}, &result); err != nil {
				t.Errorf("call %d: %v", i, err)
				return
			}
			if result["balance"] != i*2 {
				t.Errorf("call %d: balance = %d, want %d", i, result["balance"], i*2)
			}
		}()
	}
	wg.Wait()
}
