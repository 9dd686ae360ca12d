// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"fmt"
	"time"
)

func (l *Logger) log(level Level, s string, args ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if *l.settings.level > level {
		return
	}

	if len(args) > 0 {
		s = fmt.Sprintf(s, args...)
	}

	e := entry{
		time:    time.Now(),
		level:   level,
		message: s,
		caller:  callerString(l.settings.caller),
		context: l.settings.context,
	}

	var line string
	switch *l.settings.format {
	case FormatJSON:
		line = e.json()
	default:
		line = e.console()
	}
	_, _ = l.settings.writer.Write([]byte(line))
}

// Trace logs with the trace level.
func (l *Logger) Trace(s string) { l.log(Trace, s) }

// Debug logs with the debug level.
func (l *Logger) Debug(s string) { l.log(Debug, s) }

// Info logs with the info level.
func (l *Logger) Info(s string) { l.log(Info, s) }

// Warn logs with the warn level.
func (l *Logger) Warn(s string) { l.log(Warn, s) }

// Error logs with the error level.
func (l *Logger) Error(s string) { l.log(Error, s) }

// Critical logs with the critical level.
func (l *Logger) Critical(s string) { l.log(Critical, s) }

// Tracef formats and logs at the trace level.
func (l *Logger) Tracef(format string, args ...interface{}) { l.log(Trace, format, args...) }

// Debugf formats and logs at the debug level.
func (l *Logger) Debugf(format string, args ...interface{}) { l.log(Debug, format, args...) }

// Infof formats and logs at the info level.
func (l *Logger) Infof(format string, args ...interface{}) { l.log(Info, format, args...) }

// Warnf formats and logs at the warn level.
func (l *Logger) Warnf(format string, args ...interface{}) { l.log(Warn, format, args...) }

// Errorf formats and logs at the error level.
func (l *Logger) Errorf(format string, args ...interface{}) { l.log(Error, format, args...) }

// Criticalf formats and logs at the critical level.
func (l *Logger) Criticalf(format string, args ...interface{}) { l.log(Critical, format, args...) }
