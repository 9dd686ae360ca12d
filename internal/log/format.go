// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Format is the format of the logs.
type Format uint8

const (
	// FormatConsole writes a coloured line per entry.
	FormatConsole Format = iota
	// FormatJSON writes a JSON object per line.
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatConsole:
		return "console"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ErrFormatNotRecognised is returned by ParseFormat for unknown formats.
var ErrFormatNotRecognised = errors.New("format is not recognised")

// ParseFormat parses "console" or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "console", "":
		return FormatConsole, nil
	case "json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrFormatNotRecognised, s)
}

type entry struct {
	time    time.Time
	level   Level
	message string
	caller  string
	context []contextKeyValues
}

func (e entry) console() string {
	var b strings.Builder
	b.WriteString(e.time.Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(e.level.ColouredString())
	b.WriteString(strings.Repeat(" ", levelWidth-len(e.level.String())+1))
	b.WriteString(e.message)

	if e.caller != "" {
		b.WriteString("\t" + e.caller)
	}

	for i, kv := range e.context {
		if i == 0 {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(kv.key + "=" + strings.Join(kv.values, ","))
	}
	b.WriteByte('\n')
	return b.String()
}

func (e entry) json() string {
	fields := map[string]any{
		"time":  e.time.Format(time.RFC3339),
		"level": strings.ToLower(e.level.String()),
		"msg":   e.message,
	}
	if e.caller != "" {
		fields["caller"] = e.caller
	}
	for _, kv := range e.context {
		fields[kv.key] = strings.Join(kv.values, ",")
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return fmt.Sprintf(`{"level":"error","msg":%q}`+"\n", err.Error())
	}
	return string(encoded) + "\n"
}
