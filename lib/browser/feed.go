package browser

import "sync"

// ResponseFeed fans observed network responses out to subscribers over
// bounded channels. Discovery opens a fresh subscription window around
// each click and closes it explicitly once the click has settled, so
// capture never depends on wall-clock sleeps.
type ResponseFeed struct {
	mu   sync.Mutex
	subs map[int]chan Response
	next int
}

func NewResponseFeed() *ResponseFeed {
	return &ResponseFeed{subs: map[int]chan Response{}}
}

// Publish delivers the response to every open subscription. Slow
// subscribers with a full buffer miss the response rather than block
// the page driver.
func (f *ResponseFeed) Publish(r Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- r:
		default:
		}
	}
}

// Subscribe opens a subscription window with the given buffer size.
// The cancel function closes the window and the returned channel.
func (f *ResponseFeed) Subscribe(buffer int) (<-chan Response, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++
	ch := make(chan Response, buffer)
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		sub, ok := f.subs[id]
		if !ok {
			return
		}
		delete(f.subs, id)
		close(sub)
	}
	return ch, cancel
}
