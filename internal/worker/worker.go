// Package worker provides a background notification registration. It shows
// notifications on behalf of callers from a single goroutine and keeps the
// ones still on screen so they can be looked up by tag.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/Daniel-42-z/webnotify/internal/webnotify"
)

// ErrClosed is returned once the registration has been closed.
var ErrClosed = errors.New("worker registration closed")

// Displayer shows a notification.
type Displayer interface {
	New(title string, opts webnotify.Options) (webnotify.Instance, error)
}

type request struct {
	title string
	opts  webnotify.Options
	res   chan error
}

// Registration implements webnotify.Registration.
type Registration struct {
	display Displayer
	log     *slog.Logger

	reqs chan request
	done chan struct{}
	wg   sync.WaitGroup

	closeOnce sync.Once

	mu   sync.Mutex
	seq  uint64
	live map[string]*entry
}

var _ webnotify.Registration = (*Registration)(nil)

// New starts a registration that displays through d.
func New(d Displayer, log *slog.Logger) *Registration {
	if log == nil {
		log = slog.Default()
	}
	r := &Registration{
		display: d,
		log:     log,
		reqs:    make(chan request),
		done:    make(chan struct{}),
		live:    make(map[string]*entry),
	}
	r.wg.Add(1)
	go r.loop()
	return r
}

// ShowNotification queues the notification and waits until it is shown.
func (r *Registration) ShowNotification(ctx context.Context, title string, opts webnotify.Options) error {
	req := request{title: title, opts: opts, res: make(chan error, 1)}

	select {
	case r.reqs <- req:
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetNotifications returns the live notifications matching filter, oldest
// first. An empty tag matches everything.
func (r *Registration) GetNotifications(ctx context.Context, filter webnotify.Filter) ([]webnotify.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case <-r.done:
		return nil, ErrClosed
	default:
	}

	matched := r.matching(filter.Tag)
	list := make([]webnotify.Instance, len(matched))
	for i, e := range matched {
		list[i] = e
	}
	return list, nil
}

// Len returns the number of live notifications.
func (r *Registration) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Tags returns the tags of the live notifications, oldest first.
func (r *Registration) Tags() []string {
	matched := r.matching("")
	tags := make([]string, len(matched))
	for i, e := range matched {
		tags[i] = e.tag
	}
	return tags
}

func (r *Registration) matching(tag string) []*entry {
	r.mu.Lock()
	matched := make([]*entry, 0, len(r.live))
	for _, e := range r.live {
		if tag == "" || e.tag == tag {
			matched = append(matched, e)
		}
	}
	r.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	return matched
}

// Stop stops the worker. Notifications already shown stay on screen.
func (r *Registration) Stop() {
	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}

// Close stops the worker and closes every live notification.
func (r *Registration) Close() error {
	r.Stop()
	return r.Clear()
}

// Clear closes every live notification.
func (r *Registration) Clear() error {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.live))
	for _, e := range r.live {
		entries = append(entries, e)
	}
	r.live = make(map[string]*entry)
	r.mu.Unlock()

	var result *multierror.Error
	for _, e := range entries {
		if err := e.inst.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (r *Registration) loop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			return
		case req := <-r.reqs:
			req.res <- r.show(req.title, req.opts)
		}
	}
}

func (r *Registration) show(title string, opts webnotify.Options) error {
	inst, err := r.create(title, opts)
	if err != nil {
		return err
	}

	e := &entry{id: uuid.NewString(), tag: opts.Tag, inst: inst, reg: r}

	r.mu.Lock()
	r.seq++
	e.seq = r.seq
	var replaced []*entry
	if e.tag != "" {
		for id, old := range r.live {
			if old.tag == e.tag {
				replaced = append(replaced, old)
				delete(r.live, id)
			}
		}
	}
	r.live[e.id] = e
	r.mu.Unlock()

	// A tag identifies one notification; a new one replaces the old.
	for _, old := range replaced {
		if err := old.inst.Close(); err != nil {
			r.log.Warn("closing replaced notification failed", slog.String("tag", old.tag), slog.Any("err", err))
		}
	}
	r.log.Debug("worker showed notification", slog.String("id", e.id), slog.String("tag", e.tag))
	return nil
}

func (r *Registration) create(title string, opts webnotify.Options) (inst webnotify.Instance, err error) {
	defer func() {
		if p := recover(); p != nil {
			inst = nil
			err = fmt.Errorf("creating notification: %v", p)
		}
	}()

	inst, err = r.display.New(title, opts)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, errors.New("displayer returned no notification")
	}
	return inst, nil
}

func (r *Registration) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, id)
}

// entry is a notification held by the registration.
type entry struct {
	id   string
	tag  string
	seq  uint64
	inst webnotify.Instance
	reg  *Registration
}

func (e *entry) SetOnClick(fn func()) {
	e.inst.SetOnClick(fn)
}

func (e *entry) Close() error {
	e.reg.remove(e.id)
	return e.inst.Close()
}
