package notifier

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daniel-42-z/webnotify/internal/permission"
	"github.com/Daniel-42-z/webnotify/internal/prompt"
	"github.com/Daniel-42-z/webnotify/internal/webnotify"
)

type fakeBackend struct {
	mu        sync.Mutex
	nextID    uint32
	sent      []Message
	dismissed []uint32
	sendErr   error
	clicks    map[uint32]func()
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Send(_ context.Context, msg Message) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return 0, b.sendErr
	}
	b.nextID++
	b.sent = append(b.sent, msg)
	return b.nextID, nil
}

func (b *fakeBackend) Dismiss(id uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dismissed = append(b.dismissed, id)
	return nil
}

func (b *fakeBackend) Close() error { return nil }

func (b *fakeBackend) OnClick(id uint32, fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clicks == nil {
		b.clicks = make(map[uint32]func())
	}
	b.clicks[id] = fn
}

type failingPrompter struct{}

func (failingPrompter) Prompt(context.Context, string) (bool, error) {
	return false, errors.New("no terminal")
}

type undecidedPrompter struct{}

func (undecidedPrompter) Prompt(context.Context, string) (bool, error) {
	return false, prompt.ErrNoAnswer
}

func newTestPlatform(t *testing.T, p prompt.Prompter) (*Platform, *fakeBackend) {
	t.Helper()
	b := &fakeBackend{}
	return &Platform{
		AppName:  "webnotify",
		Backend:  b,
		Store:    permission.NewStore(filepath.Join(t.TempDir(), "permission.toml")),
		Prompter: p,
	}, b
}

func TestPlatform_RequestPermission(t *testing.T) {
	p, _ := newTestPlatform(t, prompt.Always(true))
	assert.Equal(t, webnotify.PermissionDefault, p.Permission())

	state, err := p.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, webnotify.PermissionGranted, state)
	assert.Equal(t, webnotify.PermissionGranted, p.Permission())

	p.Prompter = prompt.Always(false)
	state, err = p.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, webnotify.PermissionDenied, state)
	assert.Equal(t, webnotify.PermissionDenied, p.Permission())
}

func TestPlatform_RequestPermissionError(t *testing.T) {
	p, _ := newTestPlatform(t, failingPrompter{})

	state, err := p.RequestPermission(context.Background())
	assert.Error(t, err)
	assert.Equal(t, webnotify.PermissionDefault, state)

	p.Prompter = nil
	_, err = p.RequestPermission(context.Background())
	assert.Error(t, err)
}

func TestPlatform_RequestPermissionUndecided(t *testing.T) {
	p, _ := newTestPlatform(t, undecidedPrompter{})

	state, err := p.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, webnotify.PermissionDefault, state)
	assert.Equal(t, webnotify.PermissionDefault, p.Permission())

	at, err := p.Store.UpdatedAt()
	require.NoError(t, err)
	assert.True(t, at.IsZero())

	// An earlier decision survives a deferred prompt.
	require.NoError(t, p.Store.Set(webnotify.PermissionGranted))
	state, err = p.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, webnotify.PermissionGranted, state)
}

func TestPlatform_NewAndClose(t *testing.T) {
	p, b := newTestPlatform(t, prompt.Always(true))

	clicked := false
	inst, err := p.New("Hi", webnotify.Options{
		Body:    "text",
		Icon:    "x.ico",
		Tag:     "t1",
		OnClick: func() {},
		Extra:   map[string]any{"urgency": byte(2)},
	})
	require.NoError(t, err)

	require.Len(t, b.sent, 1)
	assert.Equal(t, Message{
		Title:     "Hi",
		Body:      "text",
		Icon:      "x.ico",
		Tag:       "t1",
		Clickable: true,
		Hints:     map[string]any{"urgency": byte(2)},
	}, b.sent[0])

	inst.SetOnClick(func() { clicked = true })
	b.clicks[1]()
	assert.True(t, clicked)

	require.NoError(t, inst.Close())
	require.NoError(t, inst.Close())
	assert.Equal(t, []uint32{1}, b.dismissed)
}

func TestPlatform_NewError(t *testing.T) {
	p, b := newTestPlatform(t, prompt.Always(true))
	b.sendErr = errors.New("no server")

	inst, err := p.New("Hi", webnotify.Options{})
	assert.Error(t, err)
	assert.Nil(t, inst)
}

func TestFacadeOverPlatform(t *testing.T) {
	p, b := newTestPlatform(t, prompt.Always(true))
	f := webnotify.New(p)

	hide, err := f.Show(context.Background(), "Hi", webnotify.Options{})
	require.NoError(t, err)
	assert.Equal(t, "/favicon.ico", b.sent[0].Icon)

	hide()
	assert.Equal(t, []uint32{1}, b.dismissed)
}

func TestExec_Command(t *testing.T) {
	e := NewExec("webnotify")
	var ran []string
	e.run = func(_ context.Context, name string, args ...string) error {
		ran = append([]string{name}, args...)
		return nil
	}

	e.goos = "linux"
	id, err := e.Send(context.Background(), Message{Title: "Hi", Body: "there", Icon: "x.ico"})
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.Equal(t, []string{"notify-send", "--app-name", "webnotify", "--icon", "x.ico", "Hi", "there"}, ran)

	e.goos = "darwin"
	_, err = e.Send(context.Background(), Message{Title: `say "hi"`, Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"osascript", "-e", `display notification "b" with title "say \"hi\""`}, ran)

	e.goos = "plan9"
	_, err = e.Send(context.Background(), Message{Title: "Hi"})
	assert.Error(t, err)
}

func TestExec_RunError(t *testing.T) {
	e := NewExec("webnotify")
	e.goos = "linux"
	e.run = func(context.Context, string, ...string) error { return errors.New("exit status 1") }

	_, err := e.Send(context.Background(), Message{Title: "Hi"})
	assert.ErrorContains(t, err, "failed to send notification")
}

func TestBeeep_Send(t *testing.T) {
	b := NewBeeep()
	var got []string
	b.notify = func(title, message, icon string) error {
		got = []string{title, message, icon}
		return nil
	}

	_, err := b.Send(context.Background(), Message{Title: "Hi", Body: "b", Icon: "i.png"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hi", "b", "i.png"}, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Send(ctx, Message{Title: "Hi"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDBus_HandleSignal(t *testing.T) {
	d := newDBus("webnotify", nil, slog.Default())

	clicks := 0
	d.OnClick(7, func() { clicks++ })

	d.handleSignal(&dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(7), defaultActionKey}})
	d.handleSignal(&dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(8), defaultActionKey}})
	d.handleSignal(&dbus.Signal{Name: signalActionInvoked, Body: []interface{}{"bogus"}})
	d.handleSignal(nil)
	assert.Equal(t, 1, clicks)

	d.handleSignal(&dbus.Signal{Name: signalNotificationClosed, Body: []interface{}{uint32(7), uint32(2)}})
	d.handleSignal(&dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(7), defaultActionKey}})
	assert.Equal(t, 1, clicks)
}

func TestDBus_Hints(t *testing.T) {
	hints := dbusHints(Message{Tag: "t1", Hints: map[string]any{"urgency": byte(2)}})
	assert.Equal(t, dbus.MakeVariant("t1"), hints["x-canonical-private-synchronous"])
	assert.Equal(t, dbus.MakeVariant(byte(2)), hints["urgency"])

	assert.Empty(t, dbusHints(Message{}))
}

func TestDBus_HintsSkipUnencodable(t *testing.T) {
	var hints map[string]dbus.Variant
	require.NotPanics(t, func() {
		hints = dbusHints(Message{Hints: map[string]any{
			"missing":  nil,
			"callback": func() {},
			"channel":  make(chan int),
			"category": "im.received",
		}})
	})
	assert.Equal(t, map[string]dbus.Variant{"category": dbus.MakeVariant("im.received")}, hints)
}

func TestOpen_Unknown(t *testing.T) {
	_, err := Open("carrier-pigeon", "webnotify", nil)
	assert.Error(t, err)

	b, err := Open("exec", "webnotify", nil)
	require.NoError(t, err)
	assert.Equal(t, "exec", b.Name())
}
