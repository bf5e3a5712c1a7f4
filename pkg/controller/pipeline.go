package controller

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
)

// Verdict tells the pipeline driver what to do after a stage ran.
type Verdict int

const (
	// Next hands the request to the following stage.
	Next Verdict = iota
	// Responded stops the pipeline; the stage wrote the response.
	Responded
)

func (v Verdict) String() string {
	if v == Responded {
		return "Responded"
	}

	return "Next"
}

// Stage is one step of the request pipeline. A stage may return a derived
// request (for example with values added to its context) which is passed on to
// later stages. Returning a non-nil error hands the request to the terminal
// error handler.
type Stage interface {
	Process(w http.ResponseWriter, r *http.Request) (*http.Request, Verdict, error)
}

// StageFunc adapts a function to Stage.
type StageFunc func(w http.ResponseWriter, r *http.Request) (*http.Request, Verdict, error)

func (f StageFunc) Process(w http.ResponseWriter, r *http.Request) (*http.Request, Verdict, error) {
	return f(w, r)
}

// ErrorHandler converts an error that escaped the stages into a response.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ErrUnhandled is reported when every stage passed a request through.
var ErrUnhandled = errors.New("no stage responded to the request")

// PanicError carries a recovered panic value and the stack of the panicking
// goroutine.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}

	return fmt.Sprint(e.Value)
}

func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)

	return err
}

// TracedError is an error annotated with the stack of the goroutine that
// handed it to the pipeline.
type TracedError struct {
	Err   error
	Stack []byte
}

func (e *TracedError) Error() string {
	return e.Err.Error()
}

func (e *TracedError) Unwrap() error {
	return e.Err
}

// withStack records the current stack on err unless it already carries one.
func withStack(err error) error {
	var (
		pe *PanicError
		te *TracedError
	)
	if errors.As(err, &pe) || errors.As(err, &te) {
		return err
	}

	return &TracedError{Err: err, Stack: debug.Stack()}
}

// Pipeline runs its stages in order for every request and guarantees exactly
// one response: a stage that responds ends the run, an error or panic ends in
// the error handler.
type Pipeline struct {
	stages  []Stage
	onError ErrorHandler
}

// NewPipeline builds a pipeline. The order of stages is the order of execution.
func NewPipeline(onError ErrorHandler, stages ...Stage) *Pipeline {
	return &Pipeline{
		stages:  append([]Stage(nil), stages...),
		onError: onError,
	}
}

func (p *Pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tw := &trackingWriter{ResponseWriter: w}

	if err := p.run(tw, r); err != nil {
		p.onError(tw, r, err)
	}
}

func (p *Pipeline) run(w *trackingWriter, r *http.Request) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			//nolint: errorlint,err113
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			err = &PanicError{Value: rvr, Stack: debug.Stack()}
		}
	}()

	for _, stage := range p.stages {
		next, verdict, err := stage.Process(w, r)
		if err != nil {
			return withStack(err)
		}
		if verdict == Responded {
			return nil
		}
		if next != nil {
			r = next
		}
	}

	return ErrUnhandled
}

// trackingWriter remembers whether a response has been started so the error
// handler never writes a second one.
type trackingWriter struct {
	http.ResponseWriter

	wrote bool
}

func (t *trackingWriter) WriteHeader(code int) {
	t.wrote = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *trackingWriter) Write(b []byte) (int, error) {
	t.wrote = true

	return t.ResponseWriter.Write(b) //nolint: wrapcheck
}

func (t *trackingWriter) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}

// Written reports whether a response was already started on w.
func Written(w http.ResponseWriter) bool {
	for {
		switch tw := w.(type) {
		case *trackingWriter:
			return tw.wrote
		case interface{ Unwrap() http.ResponseWriter }:
			w = tw.Unwrap()
		default:
			return false
		}
	}
}
