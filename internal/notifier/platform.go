package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Daniel-42-z/webnotify/internal/permission"
	"github.com/Daniel-42-z/webnotify/internal/prompt"
	"github.com/Daniel-42-z/webnotify/internal/webnotify"
)

// sendTimeout bounds a single backend call.
const sendTimeout = 10 * time.Second

// Platform is the desktop notification capability. Permission lives in a
// Store, requests go to a Prompter and display goes to a Backend.
type Platform struct {
	AppName  string
	Backend  Backend
	Store    *permission.Store
	Prompter prompt.Prompter
	Log      *slog.Logger
}

var _ webnotify.Platform = (*Platform)(nil)

func (p *Platform) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

// Permission implements webnotify.Platform. Read errors count as default.
func (p *Platform) Permission() webnotify.Permission {
	state, err := p.Store.Get()
	if err != nil {
		p.logger().Warn("reading notification permission failed", slog.Any("err", err))
		return webnotify.PermissionDefault
	}
	return state
}

// RequestPermission implements webnotify.Platform.
func (p *Platform) RequestPermission(ctx context.Context) (webnotify.Permission, error) {
	if p.Prompter == nil {
		return p.Permission(), fmt.Errorf("no permission prompter configured")
	}

	granted, err := p.Prompter.Prompt(ctx, p.AppName)
	if errors.Is(err, prompt.ErrNoAnswer) {
		p.logger().Debug("notification permission left undecided")
		return p.Permission(), nil
	}
	if err != nil {
		return p.Permission(), err
	}

	state := webnotify.PermissionDenied
	if granted {
		state = webnotify.PermissionGranted
	}
	if err := p.Store.Set(state); err != nil {
		return p.Permission(), err
	}
	p.logger().Info("notification permission updated", slog.String("state", string(state)))
	return state, nil
}

// New implements webnotify.Platform.
func (p *Platform) New(title string, opts webnotify.Options) (webnotify.Instance, error) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	msg := MessageFrom(title, opts)
	id, err := p.Backend.Send(ctx, msg)
	if err != nil {
		return nil, err
	}
	p.logger().Debug("notification shown",
		slog.String("backend", p.Backend.Name()),
		slog.Uint64("id", uint64(id)),
		slog.String("tag", msg.Tag),
	)
	return &Notification{id: id, tag: msg.Tag, backend: p.Backend}, nil
}

// MessageFrom converts facade options into a backend message.
func MessageFrom(title string, opts webnotify.Options) Message {
	msg := Message{
		Title:     title,
		Body:      opts.Body,
		Icon:      opts.Icon,
		Tag:       opts.Tag,
		Clickable: opts.OnClick != nil,
	}
	if len(opts.Extra) > 0 {
		msg.Hints = make(map[string]any, len(opts.Extra))
		for k, v := range opts.Extra {
			msg.Hints[k] = v
		}
	}
	return msg
}
