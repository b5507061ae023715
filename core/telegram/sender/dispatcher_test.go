package sender

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/vedbot/core/logger"
)

func chatCtx(chatID int64) context.Context {
	return logger.WithUpdateMeta(context.Background(), 1, 1, chatID)
}

func TestDispatcherKeepsPerChatOrder(t *testing.T) {
	d := NewDispatcher(Options{Workers: 3, QueueSize: 100})

	var mu sync.Mutex
	got := map[int64][]int{}
	for i := 0; i < 50; i++ {
		for _, chat := range []int64{7, -12, 1001} {
			i, chat := i, chat
			err := d.Enqueue(chatCtx(chat), "send.text", "sendMessage", func() error {
				mu.Lock()
				got[chat] = append(got[chat], i)
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Fatalf("enqueue: %v", err)
			}
		}
	}
	d.Close()

	for chat, seq := range got {
		if len(seq) != 50 {
			t.Fatalf("chat %d got %d jobs", chat, len(seq))
		}
		for i, v := range seq {
			if v != i {
				t.Fatalf("chat %d out of order at %d: %v", chat, i, seq)
			}
		}
	}
}

func TestDispatcherShardNegativeChat(t *testing.T) {
	d := NewDispatcher(Options{Workers: 4})
	defer d.Close()
	for _, id := range []int64{-1, -100123, 0, 5} {
		if s := d.shard(id); s < 0 || s >= 4 {
			t.Fatalf("shard(%d) = %d", id, s)
		}
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})
	block := make(chan struct{})
	started := make(chan struct{})

	_ = d.Enqueue(chatCtx(1), "a", "", func() error { close(started); <-block; return nil })
	<-started
	if err := d.Enqueue(chatCtx(1), "b", "", func() error { return nil }); err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	if err := d.Enqueue(chatCtx(1), "c", "", func() error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	close(block)
	d.Close()

	if err := d.Enqueue(chatCtx(1), "d", "", func() error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
	d.Close()
}

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	calls := 0
	err := d.Enqueue(chatCtx(1), "send.text", "sendMessage", func() error {
		calls++
		if calls < 3 {
			return &net.OpError{Op: "dial", Err: errors.New("refused")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	d.Close()
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if n := d.ErrorCount(); n != 0 {
		t.Fatalf("errors = %d", n)
	}
}

func TestDispatcherCountsPermanentFailure(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})
	calls := 0
	_ = d.Enqueue(chatCtx(1), "send.text", "sendMessage", func() error {
		calls++
		return errors.New("Bad Request: chat not found (400)")
	})
	d.Close()
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if n := d.ErrorCount(); n != 1 {
		t.Fatalf("errors = %d, want 1", n)
	}
}

func TestClassifyError(t *testing.T) {
	cases := map[string]error{
		"timeout":  context.DeadlineExceeded,
		"dial":     &net.OpError{Op: "dial", Err: errors.New("x")},
		"http_4xx": errors.New("telegram: Bad Request (400)"),
		"http_5xx": errors.New("telegram: internal (502)"),
		"flood":    errors.New("telegram: too many requests (429)"),
		"unknown":  errors.New("boom"),
	}
	for want, err := range cases {
		if got := classifyError(err); got != want {
			t.Errorf("classifyError(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123:AA-bb_cc/sendMessage": EOF`)
	got := sanitizeErrorMessage(err)
	if got != `Post "https://api.telegram.org/bot<redacted>/sendMessage": EOF` {
		t.Fatalf("got %q", got)
	}
}
