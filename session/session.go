// Package session holds driver sessions: one browser, its element table and
// the executor that serializes commands against them.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/dialog"
	"github.com/liuxd6825/iedriver/log"
	"github.com/liuxd6825/iedriver/trace"
)

// Closer is implemented by browsers that own native resources.
type Closer interface {
	Close()
}

// Options configure a session.
type Options struct {
	DialogReady dialog.ReadyOptions
	// Tracer traces the session's commands. Nil records nothing.
	Tracer *trace.Tracer
}

// Session is one client session. Everything except ID and Run must be used
// from the executor loop.
type Session struct {
	id       string
	created  time.Time
	browser  common.Browser
	elements *common.ElementTable
	executor *Executor
	finder   *common.ElementFinder
	options  Options
	logger   *log.Logger
	closed   bool
}

var _ common.Session = &Session{}

// New creates a session driving browser.
func New(browser common.Browser, finder *common.ElementFinder, opts Options, logger *log.Logger) *Session {
	if opts.Tracer == nil {
		opts.Tracer = trace.NewNoopTracer()
	}
	s := &Session{
		id:       uuid.NewString(),
		created:  time.Now(),
		browser:  browser,
		elements: common.NewElementTable(),
		executor: NewExecutor(logger),
		finder:   finder,
		options:  opts,
		logger:   logger,
	}
	logger.Debugf("Session:New", "sid:%s", s.id)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Created returns when the session was created.
func (s *Session) Created() time.Time { return s.created }

// Browser returns the browser the session was created with.
func (s *Session) Browser() common.Browser { return s.browser }

// GetCurrentBrowser implements common.Session.
func (s *Session) GetCurrentBrowser() (common.Browser, error) {
	if s.closed || s.browser == nil {
		return nil, fmt.Errorf("session %s: %w", s.id, common.ErrNoSuchWindow)
	}
	return s.browser, nil
}

// Elements implements common.Session.
func (s *Session) Elements() *common.ElementTable { return s.elements }

// Finder returns the element resolver of the session.
func (s *Session) Finder() *common.ElementFinder { return s.finder }

// Options returns the session options.
func (s *Session) Options() Options { return s.options }

// Tracer returns the tracer for the session's commands.
func (s *Session) Tracer() *trace.Tracer { return s.options.Tracer }

// Executor returns the command loop of the session.
func (s *Session) Executor() *Executor { return s.executor }

// Close releases the browser and stops the executor.
func (s *Session) Close() {
	s.executor.Close()
	if s.closed {
		return
	}
	s.closed = true
	if c, ok := s.browser.(Closer); ok {
		c.Close()
	}
	s.logger.Debugf("Session:Close", "sid:%s", s.id)
}
