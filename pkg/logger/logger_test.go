package logger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WritesThroughZap(t *testing.T) {
	g := NewWithT(t)

	core, logs := observer.New(zap.InfoLevel)
	l := wrap(zap.New(core), "doitnow", "")

	l.InfoWithTrace(context.Background(), "todo created", zap.Int64("entity_id", 1))
	LogError(context.Background(), l, io.EOF, "todo failed")

	g.Expect(logs.Len()).To(Equal(2))

	first := logs.All()[0]
	g.Expect(first.Message).To(Equal("todo created"))
	g.Expect(first.ContextMap()).To(HaveKeyWithValue("service", "doitnow"))
	g.Expect(first.ContextMap()).To(HaveKeyWithValue("entity_id", int64(1)))

	second := logs.All()[1]
	g.Expect(second.Level).To(Equal(zap.ErrorLevel))
	g.Expect(second.ContextMap()).To(HaveKeyWithValue("error", "EOF"))
}

func TestLogger_PushesToLoki(t *testing.T) {
	g := NewWithT(t)

	received := make(chan lokiPush, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		g.Expect(r.URL.Path).To(Equal(lokiPushPath))

		var body lokiPush
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			received <- body
		}

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	l := wrap(zap.NewNop(), "doitnow", server.URL+"/")
	l.InfoWithTrace(context.Background(), "hello", zap.String("path", "/api/todos"))

	var push lokiPush
	g.Eventually(received, 2*time.Second).Should(Receive(&push))
	g.Expect(push.Streams).To(HaveLen(1))
	g.Expect(push.Streams[0].Stream).To(HaveKeyWithValue("service", "doitnow"))

	var line map[string]any
	g.Expect(json.Unmarshal([]byte(push.Streams[0].Values[0][1]), &line)).To(Succeed())
	g.Expect(line).To(HaveKeyWithValue("message", "hello"))
	g.Expect(line).To(HaveKeyWithValue("path", "/api/todos"))
	g.Expect(line).To(HaveKeyWithValue("level", "info"))
}

func TestNewNop(t *testing.T) {
	g := NewWithT(t)

	l := NewNop()
	g.Expect(l.Zap()).NotTo(BeNil())
	l.InfoWithTrace(context.Background(), "discarded")
}
