// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color" //nolint:misspell
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const timePrefixRegex = `^[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}(Z|[+-][0-9]{2}:[0-9]{2}) `

func init() {
	color.NoColor = true
}

func Test_Logger_levels(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		level    Level
		logCall  func(l *Logger)
		expected string
	}{
		"trace": {
			level:    Trace,
			logCall:  func(l *Logger) { l.Trace("some words") },
			expected: timePrefixRegex + "TRACE    some words\n$",
		},
		"debugf": {
			level:    Debug,
			logCall:  func(l *Logger) { l.Debugf("value %d", 1) },
			expected: timePrefixRegex + "DEBUG    value 1\n$",
		},
		"filtered": {
			level:    Warn,
			logCall:  func(l *Logger) { l.Info("not shown") },
			expected: "^$",
		},
		"critical": {
			level:    Trace,
			logCall:  func(l *Logger) { l.Critical("some critical") },
			expected: timePrefixRegex + "CRITICAL some critical\n$",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			buffer := bytes.NewBuffer(nil)
			logger := New(SetWriter(buffer), SetLevel(testCase.level))

			testCase.logCall(logger)

			assert.Regexp(t, testCase.expected, buffer.String())
		})
	}
}

func Test_Logger_context(t *testing.T) {
	t.Parallel()

	buffer := bytes.NewBuffer(nil)
	logger := New(SetWriter(buffer),
		AddContext("key1", "a"), AddContext("key1", "b"))
	child := logger.New(AddContext("key2", "c"), AddContext("key1", "d"))

	child.Info("message")

	assert.Regexp(t, timePrefixRegex+"INFO     message\tkey1=a,b,d key2=c\n$", buffer.String())
}

func Test_Logger_caller(t *testing.T) {
	t.Parallel()

	buffer := bytes.NewBuffer(nil)
	logger := New(SetWriter(buffer),
		SetCallerFile(true), SetCallerLine(true))
	child := logger.New(SetCallerLine(false))

	logger.Warn("careful")
	child.Warn("child")

	lines := strings.Split(strings.TrimSuffix(buffer.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, timePrefixRegex+"WARN     careful\tlogger_test.go:L[0-9]+$", lines[0])
	assert.Regexp(t, timePrefixRegex+"WARN     child\tlogger_test.go$", lines[1])
}

func Test_Logger_json(t *testing.T) {
	t.Parallel()

	buffer := bytes.NewBuffer(nil)
	logger := New(SetWriter(buffer), SetFormat(FormatJSON), AddContext("pkg", "rpc"))

	logger.Errorf("dial %s failed", "ws://x")

	var fields map[string]string
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &fields))
	assert.Equal(t, "error", fields["level"])
	assert.Equal(t, "dial ws://x failed", fields["msg"])
	assert.Equal(t, "rpc", fields["pkg"])
	assert.NotEmpty(t, fields["time"])
}

func Test_Logger_Patch(t *testing.T) {
	t.Parallel()

	buffer := bytes.NewBuffer(nil)
	parent := New(SetWriter(buffer), SetLevel(Info))
	child := parent.New(AddContext("pkg", "rpc"))

	child.Debug("hidden")
	parent.PatchLevel(Debug)
	child.Debug("shown")

	lines := strings.Split(strings.TrimSuffix(buffer.String(), "\n"), "\n")
	require.Len(t, lines, 1)
	assert.Regexp(t, timePrefixRegex+"DEBUG    shown\tpkg=rpc$", lines[0])
}

func Test_Logger_childKeepsOwnLevel(t *testing.T) {
	t.Parallel()

	buffer := bytes.NewBuffer(nil)
	parent := New(SetWriter(buffer), SetLevel(Error))
	child := parent.New(SetLevel(Debug))

	child.Debug("child debug")
	parent.Debug("parent debug")

	assert.Regexp(t, timePrefixRegex+"DEBUG    child debug\n$", buffer.String())
}

func Test_ParseLevel(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		s      string
		level  Level
		errMsg string
	}{
		"name":    {s: "info", level: Info},
		"upper":   {s: "TRACE", level: Trace},
		"spaces":  {s: " warn ", level: Warn},
		"zero":    {s: "0", level: Critical},
		"five":    {s: "5", level: Trace},
		"too_big": {s: "6", errMsg: "level is not recognised: 6"},
		"unknown": {s: "loud", errMsg: "level is not recognised: loud"},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			level, err := ParseLevel(testCase.s)
			if testCase.errMsg != "" {
				assert.ErrorIs(t, err, ErrLevelNotRecognised)
				assert.EqualError(t, err, testCase.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.level, level)
		})
	}
}

func Test_ParseFormat(t *testing.T) {
	t.Parallel()

	format, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatConsole, format)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrFormatNotRecognised)
}

func Test_settings_mergeWith(t *testing.T) {
	t.Parallel()

	doNotChange := DoNotChange
	warn := Warn
	s := newSettings([]Option{SetLevel(doNotChange), SetCallerFile(true)})
	parent := settings{level: &warn}
	SetCallerFile(false)(&parent)
	SetCallerLine(true)(&parent)

	s.mergeWith(parent)

	assert.Equal(t, Warn, *s.level)
	assert.Equal(t, callerFile|callerLine, s.caller)
}
