package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// completionBody builds a minimal chat-completion response whose
// message content is the given string.
func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":     "cmpl-test",
		"object": "chat.completion",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	})
	return string(body)
}

func newTestRecognizer(t *testing.T, handler http.HandlerFunc) *Recognizer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New("test-key", server.URL+"/v1", "test-vision-model")
}

func TestParseReceipt(t *testing.T) {
	image := []byte("\xff\xd8\xff fake jpeg bytes")

	t.Run("extracts title and amount", func(t *testing.T) {
		r := newTestRecognizer(t, func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Model string `json:"model"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				t.Errorf("request body not JSON: %v", err)
			}
			if body.Model != "test-vision-model" {
				t.Errorf("model = %q", body.Model)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(completionBody(`{"title":"Pizza Place","amount":42.5}`)))
		})

		title, amount, err := r.ParseReceipt(context.Background(), image)
		if err != nil {
			t.Fatalf("ParseReceipt failed: %v", err)
		}
		if title != "Pizza Place" || amount != 42.5 {
			t.Errorf("got (%q, %v)", title, amount)
		}
	})

	t.Run("transport failure surfaces as error", func(t *testing.T) {
		r := newTestRecognizer(t, func(w http.ResponseWriter, req *http.Request) {
			http.Error(w, "overloaded", http.StatusInternalServerError)
		})

		if _, _, err := r.ParseReceipt(context.Background(), image); err == nil {
			t.Fatal("expected error from failing service")
		}
	})

	t.Run("non-JSON answer surfaces as error", func(t *testing.T) {
		r := newTestRecognizer(t, func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(completionBody("sorry, I cannot read this receipt")))
		})

		if _, _, err := r.ParseReceipt(context.Background(), image); err == nil {
			t.Fatal("expected error for unparseable content")
		}
	})

	t.Run("zero amount is rejected", func(t *testing.T) {
		r := newTestRecognizer(t, func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(completionBody(`{"title":"Ghost","amount":0}`)))
		})

		_, _, err := r.ParseReceipt(context.Background(), image)
		if !errors.Is(err, ErrNoResult) {
			t.Fatalf("err = %v, want ErrNoResult", err)
		}
	})
}
