// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"sync"
)

// Logger is a leveled logger safe for concurrent use. Child loggers
// share the mutex of their parent and follow its patches.
type Logger struct {
	settings settings
	children []*Logger
	mutex    *sync.Mutex
}

// New creates a root logger. Loggers writing to the same writer
// should be children of a single root.
func New(options ...Option) *Logger {
	s := newSettings(options)
	s.setDefaults()

	return &Logger{
		settings: s,
		mutex:    new(sync.Mutex),
	}
}

// New creates a child logger inheriting the settings not set by options.
func (l *Logger) New(options ...Option) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	s := newSettings(options)
	s.mergeWith(l.settings)
	s.setDefaults()

	child := &Logger{
		settings: s,
		mutex:    l.mutex,
	}
	l.children = append(l.children, child)
	return child
}

// Patch applies the options to the logger and all its children.
func (l *Logger) Patch(options ...Option) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.patch(options)
}

func (l *Logger) patch(options []Option) {
	patched := newSettings(options)
	patched.mergeWith(l.settings)
	patched.setDefaults()
	l.settings = patched

	for _, child := range l.children {
		child.patch(options)
	}
}

// PatchLevel changes the level of the logger and its children.
func (l *Logger) PatchLevel(level Level) {
	l.Patch(SetLevel(level))
}

var global = New()

// NewFromGlobal creates a child logger of the global logger.
func NewFromGlobal(options ...Option) *Logger {
	return global.New(options...)
}

// Patch patches the global logger and all its children.
func Patch(options ...Option) {
	global.Patch(options...)
}

// PatchLevel patches the global logger level.
func PatchLevel(level Level) {
	global.PatchLevel(level)
}
