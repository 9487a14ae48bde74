package browser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseFeedWindow(t *testing.T) {
	feed := NewResponseFeed()

	// nothing published outside a window is observed
	feed.Publish(Response{URL: "https://example.com/before"})

	ch, cancel := feed.Subscribe(8)
	feed.Publish(Response{URL: "https://example.com/a.pdf", ContentType: "application/pdf"})
	feed.Publish(Response{URL: "https://example.com/b.pdf", ContentType: "application/pdf"})
	cancel()

	var got []Response
	for r := range ch {
		got = append(got, r)
	}
	require.Len(t, got, 2)
	require.Equal(t, "https://example.com/a.pdf", got[0].URL)
	require.Equal(t, "https://example.com/b.pdf", got[1].URL)

	// publishing after the window closed must not panic or deliver
	feed.Publish(Response{URL: "https://example.com/after"})
}

func TestResponseFeedBoundedBuffer(t *testing.T) {
	feed := NewResponseFeed()
	ch, cancel := feed.Subscribe(1)

	feed.Publish(Response{URL: "first"})
	// buffer is full, this one is dropped instead of blocking
	feed.Publish(Response{URL: "second"})
	cancel()

	var got []Response
	for r := range ch {
		got = append(got, r)
	}
	require.Len(t, got, 1)
	require.Equal(t, "first", got[0].URL)
}

func TestResponseFeedCancelTwice(t *testing.T) {
	feed := NewResponseFeed()
	_, cancel := feed.Subscribe(1)
	cancel()
	require.NotPanics(t, cancel)
}
