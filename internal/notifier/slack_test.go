package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestSlackNotifier_Unconfigured(t *testing.T) {
	n := NewSlackNotifier("", http.DefaultClient, discardLogger())
	if n.Configured() {
		t.Error("Configured() = true without webhook")
	}
	if err := n.Send(context.Background(), "hi"); err != nil {
		t.Errorf("Send() = %v, want nil", err)
	}
}

func TestSlackNotifier_PayloadFormat(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	text := `<b>R&amp;D &lt;Lead&gt;</b>` + "\n" + `🔗 <a href="https://work.mercor.com/jobs/x">Apply Here</a>` + "\n<i>Job ID: x</i>"

	if err := n.Send(context.Background(), text); err != nil {
		t.Fatalf("Send() = %v", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := "*R&amp;D &lt;Lead&gt;*\n🔗 <https://work.mercor.com/jobs/x|Apply Here>\n_Job ID: x_"
	if payload.Text != want {
		t.Errorf("text = %q\nwant   %q", payload.Text, want)
	}
	if !payload.Mrkdwn {
		t.Error("mrkdwn flag not set")
	}
}

func TestSlackNotifier_ErrorNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Send(context.Background(), "hi"); err == nil {
		t.Error("expected error, got nil")
	}
	if c := calls.Load(); c != 1 {
		t.Errorf("expected 1 HTTP call, got %d", c)
	}
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(discardLogger())
	if n.Configured() {
		t.Error("LogNotifier must never report configured")
	}
	if err := n.Send(context.Background(), "hi"); err != nil {
		t.Errorf("Send() = %v, want nil", err)
	}
}
