// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

type callerFields uint8

const (
	callerFile callerFields = 1 << iota
	callerLine
	callerFunc
)

// callerString returns file:Lline:function of the code calling the
// exported logging method.
func callerString(fields callerFields) string {
	if fields == 0 {
		return ""
	}

	const depth = 3
	pc, file, line, ok := runtime.Caller(depth)
	if !ok {
		return "unknown"
	}

	parts := make([]string, 0, 3)
	if fields&callerFile != 0 {
		parts = append(parts, filepath.Base(file))
	}
	if fields&callerLine != 0 {
		parts = append(parts, "L"+strconv.Itoa(line))
	}
	if fields&callerFunc != 0 {
		if fn := runtime.FuncForPC(pc); fn != nil {
			parts = append(parts, strings.TrimPrefix(filepath.Ext(fn.Name()), "."))
		}
	}
	return strings.Join(parts, ":")
}
