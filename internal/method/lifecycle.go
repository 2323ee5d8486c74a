package method

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// listenLifecycle signals once the page reports the named lifecycle event.
// The listener is dropped when ctx is done.
func listenLifecycle(ctx context.Context, name string) <-chan struct{} {
	ch := make(chan struct{}, 1)
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == name {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	})
	return ch
}

func msDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
