package tsdata

import (
	"context"
	"sync"
	"time"

	"github.com/gammazero/channelqueue"
)

// RequestEventType tells whether a request started or finished.
type RequestEventType int

const (
	RequestStarted RequestEventType = iota
	RequestFinished
)

func (t RequestEventType) String() string {
	switch t {
	case RequestStarted:
		return "started"
	case RequestFinished:
		return "finished"
	}
	return "unknown"
}

// RequestEvent notifies an OnRequestEvent reader about the progress of a
// request sent to the data source.
type RequestEvent struct {
	Type      RequestEventType
	RequestID string
	// Time is the anchor time of the request.
	Time time.Time
}

// OnRequestEvent creates a channel that receives request events, and adds
// that channel to the list of notification channels. Events are delivered in
// the same places the request started and finished functions are called.
//
// Calling the returned cancel function removes the notification channel from
// the list of channels to be notified, and closes the channel to allow any
// reading goroutines to stop waiting on the channel. All channels are closed
// when the provider is closed.
func (p *Provider) OnRequestEvent() (<-chan RequestEvent, context.CancelFunc) {
	// Unbounded so that distributeEvents does not block on a slow reader.
	cq := channelqueue.New[RequestEvent](-1)
	ch := cq.In()
	select {
	case p.addEventChan <- ch:
	case <-p.closing:
		close(ch)
		return cq.Out(), func() {}
	}

	var once sync.Once
	cncl := func() {
		once.Do(func() {
			select {
			case p.rmEventChan <- ch:
			case <-p.closing:
			}
		})
	}
	log.Debug("Provider OnRequestEvent configured")
	return cq.Out(), cncl
}

// distributeEvents copies each event to all channels in outEventsChans.
func (p *Provider) distributeEvents() {
	var outEventsChans []chan<- RequestEvent

	for {
		select {
		case event, ok := <-p.inEvents:
			if !ok {
				// Dismiss any event readers.
				for _, ch := range outEventsChans {
					close(ch)
				}
				return
			}
			for _, ch := range outEventsChans {
				ch <- event
			}
		case ch := <-p.addEventChan:
			outEventsChans = append(outEventsChans, ch)
		case ch := <-p.rmEventChan:
			for i, ca := range outEventsChans {
				if ca == ch {
					outEventsChans[i] = outEventsChans[len(outEventsChans)-1]
					outEventsChans[len(outEventsChans)-1] = nil
					outEventsChans = outEventsChans[:len(outEventsChans)-1]
					close(ch)
					break
				}
			}
		}
	}
}
