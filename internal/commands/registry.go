// Package commands exposes the services to the desktop shell as named
// commands taking JSON arguments and returning a JSON result envelope.
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/mindtrack/internal/apperr"
	"github.com/julianstephens/mindtrack/internal/logger"
)

// Handler runs one command. args is the raw JSON argument object.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Result is what the shell receives for every invocation.
type Result struct {
	OK    bool
	Data  any
	Error *apperr.Envelope
}

// MarshalJSON writes {"ok":true,"data":...} or {"ok":false,"error":...}.
// A successful command with no value is encoded with "data":null.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.OK {
		return json.Marshal(struct {
			OK   bool `json:"ok"`
			Data any  `json:"data"`
		}{true, r.Data})
	}
	return json.Marshal(struct {
		OK    bool             `json:"ok"`
		Error *apperr.Envelope `json:"error"`
	}{false, r.Error})
}

// Registry maps command names to handlers.
type Registry struct {
	handlers map[string]Handler
	mu       sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds or replaces a command.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs a command and converts its outcome into a Result. It never
// returns a raw error; panics are reported as Unexpected.
func (r *Registry) Invoke(ctx context.Context, name string, args []byte) (res Result) {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		return failure(apperr.Validation("command", apperr.MsgInvalidInput, fmt.Sprintf("unknown command %q", name)))
	}

	log := logger.With("command", name)
	started := time.Now()

	defer func() {
		if p := recover(); p != nil {
			log.Error("Command panicked", "panic", p)
			res = failure(apperr.Unexpected(fmt.Sprintf("panic in %s: %v", name, p), nil))
		}
	}()

	if len(bytes.TrimSpace(args)) == 0 {
		args = []byte("{}")
	}

	log.Debug("Invoking command")
	data, err := h(ctx, json.RawMessage(args))
	if err != nil {
		appErr := apperr.From(err)
		log.Debug("Command failed", "kind", appErr.Kind, "elapsed", time.Since(started), "error", appErr)
		return failure(appErr)
	}

	log.Debug("Command succeeded", "elapsed", time.Since(started))
	return Result{OK: true, Data: data}
}

// Serve reads the JSON arguments from in, runs the command and writes the
// encoded Result to out.
func (r *Registry) Serve(ctx context.Context, name string, in io.Reader, out io.Writer) error {
	args, err := io.ReadAll(in)
	if err != nil {
		return writeResult(out, failure(apperr.Io(err)))
	}
	return writeResult(out, r.Invoke(ctx, name, args))
}

// WriteFailure writes err as a failed Result. It is used when the command
// could not run at all.
func WriteFailure(out io.Writer, err error) error {
	return writeResult(out, failure(apperr.From(err)))
}

func writeResult(out io.Writer, res Result) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}

func failure(err *apperr.AppError) Result {
	envelope := err.Envelope()
	return Result{OK: false, Error: &envelope}
}

// decodeArgs unmarshals the argument object into T, reporting malformed
// JSON as invalid input.
func decodeArgs[T any](args json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(args, &v); err != nil {
		return v, apperr.Validation("args", apperr.MsgInvalidInput, "invalid command arguments: "+err.Error())
	}
	return v, nil
}
