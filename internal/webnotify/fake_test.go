package webnotify

import (
	"context"
	"sync"
	"sync/atomic"
)

type fakeInstance struct {
	closes  atomic.Int32
	onClick atomic.Pointer[func()]
	err     error
}

func (i *fakeInstance) SetOnClick(fn func()) { i.onClick.Store(&fn) }

func (i *fakeInstance) Close() error {
	i.closes.Add(1)
	return i.err
}

func (i *fakeInstance) click() {
	if fn := i.onClick.Load(); fn != nil {
		(*fn)()
	}
}

type created struct {
	title string
	opts  Options
}

type fakePlatform struct {
	mu         sync.Mutex
	permission Permission
	// grantOnRequest is the state applied when RequestPermission runs.
	grantOnRequest Permission
	requestErr     error
	requests       int
	newErr         error
	newPanic       any
	created        []created
	instances      []*fakeInstance
}

func newFakePlatform(p Permission) *fakePlatform {
	return &fakePlatform{permission: p, grantOnRequest: p}
}

func (p *fakePlatform) Permission() Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission
}

func (p *fakePlatform) RequestPermission(context.Context) (Permission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests++
	if p.requestErr != nil {
		return p.permission, p.requestErr
	}
	p.permission = p.grantOnRequest
	return p.permission, nil
}

func (p *fakePlatform) New(title string, opts Options) (Instance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.newPanic != nil {
		panic(p.newPanic)
	}
	if p.newErr != nil {
		return nil, p.newErr
	}
	p.created = append(p.created, created{title: title, opts: opts})
	inst := &fakeInstance{}
	p.instances = append(p.instances, inst)
	return inst, nil
}

func (p *fakePlatform) requestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests
}

func (p *fakePlatform) createdCalls() []created {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]created(nil), p.created...)
}

type fakeRegistration struct {
	mu      sync.Mutex
	showErr error
	getErr  error
	list    []Instance
	shown   []created
	filters []Filter
}

func (r *fakeRegistration) ShowNotification(_ context.Context, title string, opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, created{title: title, opts: opts})
	return r.showErr
}

func (r *fakeRegistration) GetNotifications(_ context.Context, filter Filter) ([]Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = append(r.filters, filter)
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.list, nil
}

type result struct {
	err  error
	hide HideFunc
}

// collect returns a callback that records every invocation.
func collect() (Callback, func() []result) {
	var (
		mu  sync.Mutex
		got []result
	)
	cb := func(err error, hide HideFunc) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, result{err: err, hide: hide})
	}
	return cb, func() []result {
		mu.Lock()
		defer mu.Unlock()
		return append([]result(nil), got...)
	}
}
