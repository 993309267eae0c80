package fileparser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/catalogops/import-pipeline/pkg/errors"
	"github.com/catalogops/import-pipeline/pkg/storage"
)

type fakeOpener struct {
	objects map[string]string
	opened  []string
}

func (f *fakeOpener) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f.opened = append(f.opened, key)
	body, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such object: %s", key)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []RowMessage
	failOn   func(msg RowMessage) bool
}

func (f *fakePublisher) PublishRow(ctx context.Context, msg RowMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != nil && f.failOn(msg) {
		return errors.New("broker unavailable")
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakePublisher) published() []RowMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RowMessage(nil), f.messages...)
}

func newTestProcessor(opener *fakeOpener, publisher *fakePublisher) *Processor {
	return NewProcessor(opener, publisher, 4, time.Minute, nil)
}

func TestHandleEventPublishesOneMessagePerRow(t *testing.T) {
	opener := &fakeOpener{objects: map[string]string{
		"uploaded/products.csv": "h1,h2\na,b\n",
	}}
	publisher := &fakePublisher{}
	p := newTestProcessor(opener, publisher)

	err := p.HandleEvent(context.Background(), storage.ObjectEvent{
		Bucket: "import-products",
		Key:    "uploaded/products.csv",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := publisher.published()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Fields["h1"] != "a" || msgs[0].Fields["h2"] != "b" {
		t.Errorf("expected {h1:a h2:b}, got %v", msgs[0].Fields)
	}
	if msgs[0].SourceKey != "uploaded/products.csv" {
		t.Errorf("expected source key uploaded/products.csv, got %q", msgs[0].SourceKey)
	}
}

// Object keys arrive store-encoded; '+' means space.
func TestHandleEventDecodesObjectKey(t *testing.T) {
	opener := &fakeOpener{objects: map[string]string{
		"uploaded/my products.csv": "h1\nv\n",
	}}
	publisher := &fakePublisher{}
	p := newTestProcessor(opener, publisher)

	err := p.HandleEvent(context.Background(), storage.ObjectEvent{
		Bucket: "import-products",
		Key:    "uploaded/my+products.csv",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opener.opened) != 1 || opener.opened[0] != "uploaded/my products.csv" {
		t.Errorf("expected decoded key, opened %v", opener.opened)
	}
}

// A malformed row fails the invocation as a whole, but rows already
// published stay published.
func TestHandleEventMalformedRowPartialEnqueue(t *testing.T) {
	opener := &fakeOpener{objects: map[string]string{
		"uploaded/products.csv": "title,price,count\nbook,10,3\npen,2,7\n\"broken,1\n",
	}}
	publisher := &fakePublisher{}
	p := newTestProcessor(opener, publisher)

	err := p.HandleEvent(context.Background(), storage.ObjectEvent{
		Bucket: "import-products",
		Key:    "uploaded/products.csv",
	})
	if !errors.Is(err, apperrors.ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow, got %v", err)
	}

	msgs := publisher.published()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages enqueued before failure, got %d", len(msgs))
	}
}

// A publish failure loses that row but never aborts the stream.
func TestHandleEventPublishFailureDoesNotAbortStream(t *testing.T) {
	opener := &fakeOpener{objects: map[string]string{
		"uploaded/products.csv": "title\nfirst\nsecond\nthird\n",
	}}
	publisher := &fakePublisher{
		failOn: func(msg RowMessage) bool { return msg.Fields["title"] == "second" },
	}
	p := newTestProcessor(opener, publisher)

	err := p.HandleEvent(context.Background(), storage.ObjectEvent{
		Bucket: "import-products",
		Key:    "uploaded/products.csv",
	})
	if err != nil {
		t.Fatalf("expected success despite publish failure, got %v", err)
	}

	msgs := publisher.published()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 delivered messages, got %d", len(msgs))
	}
	for _, m := range msgs {
		if m.Fields["title"] == "second" {
			t.Error("failed row should not be delivered")
		}
	}
}

func TestHandleEventOpenFailure(t *testing.T) {
	opener := &fakeOpener{objects: map[string]string{}}
	publisher := &fakePublisher{}
	p := newTestProcessor(opener, publisher)

	err := p.HandleEvent(context.Background(), storage.ObjectEvent{
		Bucket: "import-products",
		Key:    "uploaded/missing.csv",
	})
	if err == nil {
		t.Fatal("expected error for missing object")
	}
	if len(publisher.published()) != 0 {
		t.Error("no messages should be published")
	}
}
