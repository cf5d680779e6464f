// Package discovery announces the link service over mDNS/DNS-SD so peers
// on the local network can find it without a configured address, using the
// pure-Go github.com/brutella/dnssd package.
package discovery

import (
	"context"
	"fmt"
)

const serviceType = "_linkkit._tcp"

// Announcer holds the running DNS-SD responder for one announced service.
type Announcer struct {
	responder dnssdResponder
	cancel    context.CancelFunc
}

// dnssdResponder is the seam over dnssd.Responder, narrowed to what
// Announce needs.
type dnssdResponder interface {
	Respond(ctx context.Context) error
}

// Announce registers name on port under the link service type and starts
// responding to mDNS queries in the background. Stop shuts the responder
// down; errCh receives at most one error if the responder loop exits.
func Announce(name string, port int) (announcer *Announcer, errCh <-chan error, err error) {
	_, responder, buildErr := buildService(name, port)
	if buildErr != nil {
		return nil, nil, buildErr
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan error, 1)

	a := &Announcer{responder: responder, cancel: cancel}

	go func() {
		defer close(ch)
		if err := responder.Respond(ctx); err != nil && ctx.Err() == nil {
			ch <- fmt.Errorf("discovery: responder: %w", err)
		}
	}()

	return a, ch, nil
}

// Stop cancels the responder's context, ending the announcement.
func (a *Announcer) Stop() {
	a.cancel()
}
