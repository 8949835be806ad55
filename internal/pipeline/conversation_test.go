package pipeline

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ppiankov/naysayer/internal/model"
)

func TestConversation_FIFO(t *testing.T) {
	c := NewConversation(0)
	if c.Limit() != DefaultHistorySize {
		t.Fatalf("expected default limit %d, got %d", DefaultHistorySize, c.Limit())
	}

	for i := 0; i < 25; i++ {
		c.Append(model.Message{Role: model.RoleUser, Content: fmt.Sprintf("m%d", i)})
	}

	msgs := c.Messages()
	if len(msgs) != 20 {
		t.Fatalf("expected 20 messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		if want := fmt.Sprintf("m%d", i+5); m.Content != want {
			t.Errorf("message %d = %s, want %s", i, m.Content, want)
		}
	}
}

func TestConversation_AppendMany(t *testing.T) {
	c := NewConversation(3)
	c.Append(
		model.Message{Content: "a"},
		model.Message{Content: "b"},
		model.Message{Content: "c"},
		model.Message{Content: "d"},
	)

	msgs := c.Messages()
	if len(msgs) != 3 || msgs[0].Content != "b" || msgs[2].Content != "d" {
		t.Errorf("unexpected buffer: %+v", msgs)
	}
}

func TestConversation_MessagesIsCopy(t *testing.T) {
	c := NewConversation(5)
	c.Append(model.Message{Content: "original"})

	msgs := c.Messages()
	msgs[0].Content = "changed"

	if c.Messages()[0].Content != "original" {
		t.Error("Messages must return a copy")
	}
}

func TestConversation_Clear(t *testing.T) {
	c := NewConversation(5)
	c.Append(model.Message{Content: "a"}, model.Message{Content: "b"})
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected empty buffer, got %d", c.Len())
	}

	c.Append(model.Message{Content: "c"})
	if c.Len() != 1 {
		t.Errorf("expected 1 message after clear, got %d", c.Len())
	}
}

func TestConversation_Concurrent(t *testing.T) {
	c := NewConversation(20)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Append(model.Message{Content: fmt.Sprintf("m%d", i)})
			_ = c.Messages()
		}(i)
	}
	wg.Wait()

	if c.Len() != 20 {
		t.Errorf("expected full buffer, got %d", c.Len())
	}
}
