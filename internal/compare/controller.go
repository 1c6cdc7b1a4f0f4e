package compare

import (
	"context"
	"fmt"
	"sync"

	"github.com/Happy-Ferret/addons-code-manager/internal/api"
	"github.com/Happy-Ferret/addons-code-manager/internal/logging"
	"github.com/Happy-Ferret/addons-code-manager/internal/versions"
)

// Params are the routed parameters of one comparison view.
type Params struct {
	Lang          string
	AddonID       int64
	BaseVersionID versions.VersionID
	HeadVersionID versions.VersionID

	// Path optionally scopes the initial diff fetch to a single file.
	Path string
}

// Key returns the comparison key for the parameter tuple.
func (p Params) Key() versions.ComparisonKey {
	return versions.ComparisonKey{
		AddonID:       p.AddonID,
		BaseVersionID: p.BaseVersionID,
		HeadVersionID: p.HeadVersionID,
	}
}

func (p Params) sameTuple(o Params) bool {
	return p.AddonID == o.AddonID &&
		p.BaseVersionID == o.BaseVersionID &&
		p.HeadVersionID == o.HeadVersionID
}

// Router is the routing collaborator used for base/head swap redirects.
type Router interface {
	Push(url string)
}

// Phase is the lifecycle state of one comparison session.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseRedirecting Phase = "redirecting"
	PhaseLoading     Phase = "loading"
	PhaseReady       Phase = "ready"
	PhaseFailed      Phase = "failed"
)

// EventType tags a lifecycle event published by the controller.
type EventType string

const (
	EventBegin    EventType = "begin"
	EventLoaded   EventType = "loaded"
	EventAborted  EventType = "aborted"
	EventRedirect EventType = "redirect"
	EventSelected EventType = "selected"
)

// Event is one lifecycle notification. Key is set for diff lifecycle
// events, Path for selections, URL for redirects.
type Event struct {
	Type EventType               `json:"type"`
	Key  *versions.ComparisonKey `json:"key,omitempty"`
	Path string                  `json:"path,omitempty"`
	URL  string                  `json:"url,omitempty"`
}

// EventSink receives controller events. Publish must not block for long;
// it is called with the controller lock held.
type EventSink interface {
	Publish(ev Event)
}

// Controller drives the fetch lifecycle for one mounted comparison view.
// It owns the session's state and funnels every mutation through the
// versions reducer; the mutex serializes whole fetch cycles, so the
// begin/loaded/aborted events of one fetch are never interleaved with
// another fetch's events for the same key.
//
// Calls block until the fetch resolves. A stale response completing after
// a newer begin for the same key would merge last-write-wins by arrival
// order; the serialization here narrows that window but the design does
// not guard it with a generation counter.
type Controller struct {
	mu     sync.Mutex
	state  *versions.State
	params *Params
	phase  Phase

	client api.Client
	router Router
	logger logging.Logger
	sink   EventSink
}

// New builds an idle controller. sink may be nil.
func New(client api.Client, router Router, logger logging.Logger, sink EventSink) *Controller {
	return &Controller{
		state:  versions.NewState(),
		phase:  PhaseIdle,
		client: client,
		router: router,
		logger: logger.With(logging.Field{Key: "component", Value: "compare"}),
		sink:   sink,
	}
}

func (c *Controller) publish(ev Event) {
	if c.sink != nil {
		c.sink.Publish(ev)
	}
}

// RedirectURL is the base/head swap target for params whose base is newer
// than its head.
func RedirectURL(p Params) string {
	return fmt.Sprintf("/%s/compare/%d/versions/%d...%d/",
		p.Lang, p.AddonID, p.HeadVersionID, p.BaseVersionID)
}

// OnRouteChange applies a routed parameter change (or the initial mount).
//
// A base newer than its head redirects before any network access. An
// unchanged tuple is an idempotent no-op. Otherwise the key's cache is
// reset (begin), the diff is fetched, and the result lands in the store as
// loaded or aborted; fetch failures become store state, never an error.
func (c *Controller) OnRouteChange(ctx context.Context, p Params) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.BaseVersionID > p.HeadVersionID {
		url := RedirectURL(p)
		c.logger.Info("redirecting to reversed comparison",
			logging.Field{Key: "url", Value: url})
		c.phase = PhaseRedirecting
		c.router.Push(url)
		c.publish(Event{Type: EventRedirect, URL: url})
		return
	}

	if c.params != nil && c.params.sameTuple(p) {
		return
	}
	c.params = &p

	key := p.Key()
	c.state = c.state.ApplyDiffBegin(key)
	c.phase = PhaseLoading
	c.publish(Event{Type: EventBegin, Key: &key})

	c.fetchDiff(ctx, key, p.Path)
}

// OnSelectFile records a file selection on the head version and lazily
// fetches that file's diff if the current key has none cached. The scoped
// fetch does not reset the key's mapping, so sibling entries survive.
func (c *Controller) OnSelectFile(ctx context.Context, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.params == nil {
		return
	}

	key := c.params.Key()
	c.state = c.state.UpdateSelectedPath(c.params.HeadVersionID, path)
	c.publish(Event{Type: EventSelected, Path: path})

	if byPath, status := c.state.DiffMap(key); status == versions.DiffAvailable {
		if _, ok := byPath[path]; ok {
			return
		}
	}

	c.fetchDiff(ctx, key, path)
}

// fetchDiff runs one begin-less fetch cycle for key. Caller holds the lock.
func (c *Controller) fetchDiff(ctx context.Context, key versions.ComparisonKey, path string) {
	payload, err := c.client.GetDiff(ctx, api.DiffRequest{
		AddonID:       key.AddonID,
		BaseVersionID: int64(key.BaseVersionID),
		HeadVersionID: int64(key.HeadVersionID),
		Path:          path,
	})
	if err != nil {
		c.logger.Warn("diff fetch failed",
			logging.Field{Key: "addon", Value: key.AddonID},
			logging.Field{Key: "base", Value: key.BaseVersionID},
			logging.Field{Key: "head", Value: key.HeadVersionID},
			logging.Field{Key: "error", Value: err.Error()})
		c.state = c.state.ApplyDiffAborted(key)
		c.phase = PhaseFailed
		c.publish(Event{Type: EventAborted, Key: &key})
		return
	}

	next := c.state.ApplyDiffLoaded(key, payload)
	if next == c.state {
		// Data-integrity mismatch (selected file without an entry);
		// discarded on the assumption a consistent update follows.
		c.logger.Warn("discarded inconsistent diff response",
			logging.Field{Key: "addon", Value: key.AddonID},
			logging.Field{Key: "head", Value: key.HeadVersionID})
	}
	c.state = next
	c.phase = PhaseReady
	c.publish(Event{Type: EventLoaded, Key: &key})
}

// LoadFile fetches one version's metadata plus the content of path and
// applies both to the store. Unlike diff fetches, errors are returned to
// the caller; the diff pane's three-state cache does not apply here.
func (c *Controller) LoadFile(ctx context.Context, versionID versions.VersionID, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.params == nil {
		return fmt.Errorf("compare: no comparison mounted")
	}

	payload, err := c.client.GetVersion(ctx, api.VersionRequest{
		AddonID:   c.params.AddonID,
		VersionID: int64(versionID),
		Path:      path,
	})
	if err != nil {
		c.logger.Warn("version fetch failed",
			logging.Field{Key: "version", Value: versionID},
			logging.Field{Key: "path", Value: path},
			logging.Field{Key: "error", Value: err.Error()})
		return err
	}

	c.state = c.state.ApplyVersionLoaded(payload)
	c.state = c.state.ApplyFileLoaded(versionID, path, payload)
	return nil
}

// State returns the session's current cache snapshot.
func (c *Controller) State() *versions.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Phase returns the session's lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Params returns the last applied parameter tuple, or nil before the first
// mount.
func (c *Controller) Params() *Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.params == nil {
		return nil
	}
	p := *c.params
	return &p
}
