package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestLoggerNotifierWritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	n := NewLoggerNotifier(logger)

	if err := n.Send(context.Background(), Message{Kind: KindNewMessage, Destination: "bob", Body: "hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"kind":"new_message"`, `"destination":"bob"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}

func TestNilLoggerNotifierIsNoop(t *testing.T) {
	var n *LoggerNotifier
	if err := n.Send(context.Background(), Message{Kind: KindNewMessage}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestEncodePublishing(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p, err := encodePublishing(Message{Kind: KindNewMessage, Destination: "bob", Body: "hi"}, at)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if p.DeliveryMode != amqp.Persistent || p.ContentType != "application/json" || p.Type != KindNewMessage {
		t.Fatalf("unexpected publishing: %+v", p)
	}

	var decoded Message
	if err := json.Unmarshal(p.Body, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.Destination != "bob" || decoded.Body != "hi" {
		t.Fatalf("unexpected body: %+v", decoded)
	}
}
