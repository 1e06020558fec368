package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackupService_Respond(t *testing.T) {
	ctx := context.Background()

	newService := func(body string, status int) (BackupService, *httptest.Server) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if status != http.StatusOK {
				w.WriteHeader(status)
				return
			}
			w.Write([]byte(body))
		}))
		return NewBackupServiceWithClient(server.URL, server.Client()), server
	}

	t.Run("exact match precedes partial match", func(t *testing.T) {
		service, server := newService(`{"hello": "hi there"}`, http.StatusOK)
		defer server.Close()

		answer, err := service.Respond(ctx, "hello")
		assert.NoError(t, err)
		assert.Equal(t, "hi there", answer)
	})

	t.Run("normalizes case and surrounding whitespace", func(t *testing.T) {
		service, server := newService(`{"hello": "hi there"}`, http.StatusOK)
		defer server.Close()

		answer, err := service.Respond(ctx, "  HELLO  ")
		assert.NoError(t, err)
		assert.Equal(t, "hi there", answer)
	})

	t.Run("falls back to partial containment", func(t *testing.T) {
		service, server := newService(`{"hello": "hi there"}`, http.StatusOK)
		defer server.Close()

		answer, err := service.Respond(ctx, "hello world")
		assert.NoError(t, err)
		assert.Equal(t, "hi there", answer)
	})

	t.Run("key containing the input also matches", func(t *testing.T) {
		service, server := newService(`{"how are you doing": "doing fine"}`, http.StatusOK)
		defer server.Close()

		answer, err := service.Respond(ctx, "how are you")
		assert.NoError(t, err)
		assert.Equal(t, "doing fine", answer)
	})

	t.Run("no match returns the apology", func(t *testing.T) {
		service, server := newService(`{"hello": "hi there"}`, http.StatusOK)
		defer server.Close()

		answer, err := service.Respond(ctx, "xyz")
		assert.NoError(t, err)
		assert.Equal(t, backupApology, answer)
	})

	t.Run("non-2xx from the data source is terminal", func(t *testing.T) {
		service, server := newService("", http.StatusInternalServerError)
		defer server.Close()

		_, err := service.Respond(ctx, "hello")
		assert.Error(t, err)
	})

	t.Run("unreachable data source is terminal", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		service := NewBackupService(server.URL)
		server.Close()

		_, err := service.Respond(ctx, "hello")
		assert.Error(t, err)
	})

	t.Run("malformed mapping is terminal", func(t *testing.T) {
		service, server := newService(`["not", "a", "map"]`, http.StatusOK)
		defer server.Close()

		_, err := service.Respond(ctx, "hello")
		assert.Error(t, err)
	})
}
