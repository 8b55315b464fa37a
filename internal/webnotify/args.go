package webnotify

import (
	"fmt"
	"time"
)

// CallShape identifies how ShowNotification arguments were laid out.
type CallShape int

const (
	ShapeEmpty CallShape = iota
	ShapeTitle
	ShapeOptions
	ShapeTitleOptions
	ShapeTooMany
)

func (s CallShape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapeTitle:
		return "title"
	case ShapeOptions:
		return "options"
	case ShapeTitleOptions:
		return "title+options"
	case ShapeTooMany:
		return "too-many"
	default:
		return fmt.Sprintf("CallShape(%d)", int(s))
	}
}

// maxArgs is the largest accepted argument count, callback included.
const maxArgs = 3

// Call is a normalized ShowNotification invocation.
type Call struct {
	Shape    CallShape
	Title    string
	Options  Options
	Callback Callback
}

// ParseArgs resolves the positional arguments of ShowNotification.
//
// A trailing Callback (or func(error, HideFunc)) is taken as the completion
// callback. What remains is read as (), (title), (options) or
// (title, options). A single non-string value is read as options. nil values
// count as absent. Three values with no callback match no form and fall back
// to ShapeEmpty. Calls with more than three arguments have ShapeTooMany.
func ParseArgs(args []any) Call {
	call := Call{Callback: func(error, HideFunc) {}}
	if len(args) > maxArgs {
		call.Shape = ShapeTooMany
		return call
	}

	rest := args
	if n := len(rest); n > 0 {
		if cb, ok := asCallback(rest[n-1]); ok {
			if cb != nil {
				call.Callback = cb
			}
			rest = rest[:n-1]
		}
	}

	switch len(rest) {
	case 1:
		if s, ok := rest[0].(string); ok {
			call.Shape = ShapeTitle
			call.Title = s
		} else {
			call.Shape = ShapeOptions
			call.Options = optionsOf(rest[0])
		}
	case 2:
		call.Shape = ShapeTitleOptions
		call.Title = titleOf(rest[0])
		call.Options = optionsOf(rest[1])
	default:
		call.Shape = ShapeEmpty
	}
	return call
}

func asCallback(v any) (Callback, bool) {
	switch cb := v.(type) {
	case Callback:
		return cb, true
	case func(error, HideFunc):
		return cb, true
	default:
		return nil, false
	}
}

func titleOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func optionsOf(v any) Options {
	switch o := v.(type) {
	case Options:
		return o
	case *Options:
		if o == nil {
			return Options{}
		}
		return *o
	case map[string]any:
		return OptionsFromMap(o)
	default:
		return Options{}
	}
}

// OptionsFromMap builds Options from loosely typed fields. Known keys are
// body, icon, tag, autoClose (milliseconds or time.Duration), onClick and
// registration (or serviceWorkerRegistration). Everything else lands in Extra.
func OptionsFromMap(m map[string]any) Options {
	var opts Options
	for k, v := range m {
		switch k {
		case "body":
			opts.Body, _ = v.(string)
		case "icon":
			opts.Icon, _ = v.(string)
		case "tag":
			opts.Tag, _ = v.(string)
		case "autoClose":
			opts.AutoClose = millis(v)
		case "onClick":
			opts.OnClick, _ = v.(func())
		case "registration", "serviceWorkerRegistration":
			opts.Registration, _ = v.(Registration)
		default:
			if opts.Extra == nil {
				opts.Extra = make(map[string]any)
			}
			opts.Extra[k] = v
		}
	}
	return opts
}

func millis(v any) time.Duration {
	switch n := v.(type) {
	case time.Duration:
		return n
	case int:
		return time.Duration(n) * time.Millisecond
	case int64:
		return time.Duration(n) * time.Millisecond
	case float64:
		return time.Duration(n * float64(time.Millisecond))
	default:
		return 0
	}
}
