package bus

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	t.Parallel()

	b := New(Config{})
	first, cancelFirst := b.Subscribe()
	defer cancelFirst()
	second, cancelSecond := b.Subscribe()
	defer cancelSecond()

	b.Publish(StatusUpdate{Status: "Analyzing with AI..."})

	for i, ch := range []<-chan Event{first, second} {
		select {
		case evt := <-ch:
			status, ok := evt.(StatusUpdate)
			if !ok || status.Status != "Analyzing with AI..." {
				t.Fatalf("subscriber %d: unexpected event %#v", i, evt)
			}
		default:
			t.Fatalf("subscriber %d did not receive the event", i)
		}
	}
}

func TestPublishDropsWhenSubscriberIsFull(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	b := New(Config{BufferSize: 1, Logger: zap.New(core)})
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish(AnalysisComplete{ReportID: 1})
	b.Publish(AnalysisComplete{ReportID: 2})

	evt := <-ch
	if got := evt.(AnalysisComplete).ReportID; got != 1 {
		t.Fatalf("expected first event to be delivered, got report %d", got)
	}
	select {
	case evt := <-ch:
		t.Fatalf("expected second event to be dropped, got %#v", evt)
	default:
	}

	if observed.FilterMessage("bus events dropped due to slow subscriber").Len() != 1 {
		t.Fatalf("expected a drop warning, got %v", observed.All())
	}
}

func TestUnsubscribeAndClose(t *testing.T) {
	t.Parallel()

	b := New(Config{})
	ch, cancel := b.Subscribe()
	if b.Subscribers() != 1 {
		t.Fatalf("expected one subscriber")
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed after unsubscribe")
	}
	if b.Subscribers() != 0 {
		t.Fatalf("expected no subscribers")
	}

	other, _ := b.Subscribe()
	b.Close()
	b.Close()
	if _, ok := <-other; ok {
		t.Fatalf("expected channel to be closed after bus close")
	}

	// Publishing to a closed bus is a no-op.
	b.Publish(AnalysisError{Message: "late"})

	late, _ := b.Subscribe()
	if _, ok := <-late; ok {
		t.Fatalf("expected subscription on a closed bus to be closed")
	}
}

func TestEventTypesAndDirection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		evt     Event
		typ     Type
		command bool
	}{
		{AnalyzeProspect{}, "analyze-single-prospect", true},
		{ProceedWithAI{}, "proceed-with-ai-analysis", true},
		{ScrapeReady{}, "scraping-complete-for-review", false},
		{StatusUpdate{}, "analysis-status-update", false},
		{AnalysisComplete{}, "analysis-complete", false},
		{AnalysisError{}, "analysis-error", false},
	}

	for _, tt := range tests {
		if tt.evt.Type() != tt.typ {
			t.Fatalf("expected %q, got %q", tt.typ, tt.evt.Type())
		}
		if IsCommand(tt.evt) != tt.command {
			t.Fatalf("%q: expected command=%v", tt.typ, tt.command)
		}
	}
}
