// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color" //nolint:misspell
)

// Level is the level of the logger.
type Level uint8

const (
	// Trace is the trace level.
	Trace Level = iota
	// Debug is the debug level.
	Debug
	// Info is the info level.
	Info
	// Warn is the warn level.
	Warn
	// Error is the error level.
	Error
	// Critical is the critical level.
	Critical
	// DoNotChange leaves the level of the logger as is when patching
	// or inherits the parent level for child loggers.
	DoNotChange Level = Level(^uint8(0))
)

var levels = [...]struct {
	name   string
	colour color.Attribute
}{
	Trace:    {"TRACE", color.FgHiCyan},
	Debug:    {"DEBUG", color.FgHiBlue},
	Info:     {"INFO", color.FgCyan},
	Warn:     {"WARN", color.FgYellow},
	Error:    {"ERROR", color.FgHiRed},
	Critical: {"CRITICAL", color.FgRed},
}

// levelWidth is the width of the longest level name.
const levelWidth = len("CRITICAL")

func (level Level) String() string {
	if int(level) >= len(levels) {
		return "???"
	}
	return levels[level].name
}

// ColouredString returns the level name coloured for terminals.
func (level Level) ColouredString() string {
	attribute := color.Reset
	if int(level) < len(levels) {
		attribute = levels[level].colour
	}
	return color.New(attribute).Sprint(level.String())
}

// ErrLevelNotRecognised is returned by ParseLevel for unknown levels.
var ErrLevelNotRecognised = errors.New("level is not recognised")

// ParseLevel parses a level name such as "info" or "INFO", or a
// verbosity number from "0" (critical) to "5" (trace).
func ParseLevel(s string) (level Level, err error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if verbosity, parseErr := strconv.ParseUint(name, 10, 8); parseErr == nil && verbosity <= uint64(Critical) {
		return Critical - Level(verbosity), nil
	}
	for i, l := range levels {
		if l.name == name {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrLevelNotRecognised, s)
}
