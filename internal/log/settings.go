// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"io"
	"os"
)

// Option is the type to specify settings modifier
// for the logger operation.
type Option func(s *settings)

// SetLevel sets the level for the logger.
// The level defaults to info.
func SetLevel(level Level) Option {
	return func(s *settings) {
		s.level = &level
	}
}

// SetFormat set the format for the logger.
// The format defaults to FormatConsole.
func SetFormat(format Format) Option {
	return func(s *settings) {
		s.format = &format
	}
}

// SetWriter set the writer for the logger.
// The writer defaults to os.Stdout.
func SetWriter(writer io.Writer) Option {
	return func(s *settings) {
		s.writer = writer
	}
}

// SetCallerFile enables or disables logging the caller file.
func SetCallerFile(enabled bool) Option { return setCaller(callerFile, enabled) }

// SetCallerLine enables or disables logging the caller line number.
func SetCallerLine(enabled bool) Option { return setCaller(callerLine, enabled) }

// SetCallerFunc enables or disables logging the caller function.
func SetCallerFunc(enabled bool) Option { return setCaller(callerFunc, enabled) }

func setCaller(field callerFields, enabled bool) Option {
	return func(s *settings) {
		s.callerSet |= field
		if enabled {
			s.caller |= field
		} else {
			s.caller &^= field
		}
	}
}

// AddContext adds a key value pair to the logger context. Values of
// an existing key are appended to.
func AddContext(key, value string) Option {
	return func(s *settings) {
		s.context = appendContext(s.context, key, value)
	}
}

type settings struct {
	writer io.Writer
	level  *Level
	format *Format
	// caller holds the enabled caller fields among the callerSet ones.
	caller    callerFields
	callerSet callerFields
	context   []contextKeyValues
}

type contextKeyValues struct {
	key    string
	values []string
}

func appendContext(context []contextKeyValues, key string, values ...string) []contextKeyValues {
	for i := range context {
		if context[i].key == key {
			context[i].values = append(context[i].values, values...)
			return context
		}
	}
	return append(context, contextKeyValues{key: key, values: values})
}

func newSettings(options []Option) (s settings) {
	for _, option := range options {
		option(&s)
	}
	return s
}

// mergeWith sets each field not set from the parent settings. The
// parent context comes first.
func (s *settings) mergeWith(parent settings) {
	if s.writer == nil {
		s.writer = parent.writer
	}

	if parent.level != nil && (s.level == nil || *s.level == DoNotChange) {
		level := *parent.level
		s.level = &level
	}

	if s.format == nil && parent.format != nil {
		format := *parent.format
		s.format = &format
	}

	inherited := parent.callerSet &^ s.callerSet
	s.caller |= parent.caller & inherited
	s.callerSet |= inherited

	var context []contextKeyValues
	for _, kv := range parent.context {
		context = append(context, contextKeyValues{
			key:    kv.key,
			values: append([]string(nil), kv.values...),
		})
	}
	for _, kv := range s.context {
		context = appendContext(context, kv.key, kv.values...)
	}
	s.context = context
}

func (s *settings) setDefaults() {
	if s.writer == nil {
		s.writer = os.Stdout
	}

	if s.level == nil || *s.level == DoNotChange {
		level := Info
		s.level = &level
	}

	if s.format == nil {
		format := FormatConsole
		s.format = &format
	}
}
