package notify

import (
	"context"
	"encoding/json"
	"testing"

	skafka "github.com/segmentio/kafka-go"
)

// fakeWriter is a test writer that records messages written.
type fakeWriter struct {
	msgs []skafka.Message
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...skafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaNotify(t *testing.T) {
	fw := &fakeWriter{}
	n := NewKafkaNotifierWithWriter(fw)
	err := n.Notify(context.Background(), "SP-2125", "Shipment SP-2125 status changed to Accepted")
	if err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if len(fw.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fw.msgs))
	}
	if string(fw.msgs[0].Key) != "SP-2125" {
		t.Errorf("key = %q, want shipment id", fw.msgs[0].Key)
	}
	var ev ShipmentEvent
	if err := json.Unmarshal(fw.msgs[0].Value, &ev); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if ev.ShipmentID != "SP-2125" || ev.Message == "" || ev.EmittedAt == "" {
		t.Errorf("payload = %+v", ev)
	}
}

func TestMultiNotifierFansOut(t *testing.T) {
	fw1, fw2 := &fakeWriter{}, &fakeWriter{}
	m := Multi(NewKafkaNotifierWithWriter(fw1), NewKafkaNotifierWithWriter(fw2))
	if err := m.Notify(context.Background(), "SP-1", "msg"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(fw1.msgs) != 1 || len(fw2.msgs) != 1 {
		t.Fatalf("fan-out incomplete: %d/%d", len(fw1.msgs), len(fw2.msgs))
	}
}
