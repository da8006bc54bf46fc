package dispatch

import (
	"context"
	"errors"
	"sync"
)

// Opener opens a URL, typically in the system browser.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// LaunchNavigator opens deeplinks and websites with an Opener.
type LaunchNavigator struct {
	opener Opener
}

// Compile-time interface check
var _ Navigator = (*LaunchNavigator)(nil)

// NewLaunchNavigator creates a navigator backed by opener.
func NewLaunchNavigator(opener Opener) *LaunchNavigator {
	return &LaunchNavigator{opener: opener}
}

// Navigate opens the deeplink.
func (n *LaunchNavigator) Navigate(ctx context.Context, url string) error {
	return n.opener.Open(ctx, url)
}

// OpenWebsite opens the website.
func (n *LaunchNavigator) OpenWebsite(ctx context.Context, url string) error {
	return n.opener.Open(ctx, url)
}

// VisitKind tells deeplink navigations and website opens apart.
type VisitKind string

// Visit kinds.
const (
	VisitDeeplink VisitKind = "deeplink"
	VisitWebsite  VisitKind = "website"
)

// Visit is one navigation seen by a Recorder.
type Visit struct {
	Kind VisitKind `json:"kind"`
	URL  string    `json:"url"`
}

// Recorder is a navigator that records visits instead of performing them.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	visits []Visit
}

// Compile-time interface check
var _ Navigator = (*Recorder)(nil)

// Navigate records a deeplink navigation.
func (r *Recorder) Navigate(_ context.Context, url string) error {
	r.record(VisitDeeplink, url)
	return nil
}

// OpenWebsite records a website open.
func (r *Recorder) OpenWebsite(_ context.Context, url string) error {
	r.record(VisitWebsite, url)
	return nil
}

func (r *Recorder) record(kind VisitKind, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = append(r.visits, Visit{Kind: kind, URL: url})
}

// Visits returns a copy of the recorded visits.
func (r *Recorder) Visits() []Visit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Visit(nil), r.visits...)
}

// Count returns the number of visits of a kind.
func (r *Recorder) Count(kind VisitKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.visits {
		if v.Kind == kind {
			n++
		}
	}
	return n
}

// Last returns the most recent visit of a kind.
func (r *Recorder) Last(kind VisitKind) (Visit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.visits) - 1; i >= 0; i-- {
		if r.visits[i].Kind == kind {
			return r.visits[i], true
		}
	}
	return Visit{}, false
}

// Tee sends every navigation to each navigator in order.
type Tee []Navigator

// Compile-time interface check
var _ Navigator = Tee(nil)

// Navigate forwards to every navigator and joins their errors.
func (t Tee) Navigate(ctx context.Context, url string) error {
	var errs []error
	for _, n := range t {
		errs = append(errs, n.Navigate(ctx, url))
	}
	return errors.Join(errs...)
}

// OpenWebsite forwards to every navigator and joins their errors.
func (t Tee) OpenWebsite(ctx context.Context, url string) error {
	var errs []error
	for _, n := range t {
		errs = append(errs, n.OpenWebsite(ctx, url))
	}
	return errors.Join(errs...)
}
