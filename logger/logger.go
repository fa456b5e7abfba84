/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package logger provides the structured logging surface used across the
// session/connection/tag layers: level-filtered entries with attached
// fields, backed by logrus. It deliberately drops the teacher package's
// syslog/gorm/Gin/Hashicorp/spf13 integrations (see DESIGN.md) since this
// library has no HTTP, ORM, or plugin-host surface to hook into — only the
// structured-entry core survives, generalized to this library's own fields.
package logger

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	loglvl "github/sabouaram/plctag/logger/level"
)

// Logger is the structured logging surface every package in this module is
// handed at construction time.
type Logger interface {
	// SetOutput redirects where entries are written; stderr by default.
	SetOutput(w io.Writer)

	SetLevel(lvl loglvl.Level)
	GetLevel() loglvl.Level

	SetFields(f Fields)
	GetFields() Fields

	Debug(message string, data interface{}, args ...interface{})
	Info(message string, data interface{}, args ...interface{})
	Warning(message string, data interface{}, args ...interface{})
	Error(message string, data interface{}, args ...interface{})
	Fatal(message string, data interface{}, args ...interface{})
	Panic(message string, data interface{}, args ...interface{})

	// CheckError logs at lvlKO if err is non-nil, otherwise at lvlOK (when
	// lvlOK is not NilLevel). Returns whether an error was present.
	CheckError(lvlKO, lvlOK loglvl.Level, message string, err error) bool

	// Entry opens a chainable builder for a single log record.
	Entry(lvl loglvl.Level, message string, args ...interface{}) Entry

	// Clone returns an independent logger sharing the same level and a copy
	// of the current fields.
	Clone() Logger
}

type lgr struct {
	mu  sync.RWMutex
	log *logrus.Logger
	lvl loglvl.Level
	fld Fields
}

// New returns a Logger writing through logrus at InfoLevel with an empty
// field set.
func New() Logger {
	l := &lgr{
		log: logrus.New(),
		fld: NewFields(),
	}
	l.SetLevel(loglvl.InfoLevel)
	return l
}

func (l *lgr) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.SetOutput(w)
}

func (l *lgr) SetLevel(lvl loglvl.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lvl = lvl
	l.log.SetLevel(lvl.Logrus())
}

func (l *lgr) GetLevel() loglvl.Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lvl
}

func (l *lgr) SetFields(f Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fld = f
}

func (l *lgr) GetFields() Fields {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fld
}

func (l *lgr) logrusRef() *logrus.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.log
}

func (l *lgr) newEntry(lvl loglvl.Level, message string, data interface{}) Entry {
	e := newEntry(l.logrusRef, lvl, message).(*entry)
	e.fields = l.GetFields()
	if data != nil {
		e.data = data
	}
	return e
}

func (l *lgr) Debug(message string, data interface{}, args ...interface{}) {
	l.newEntry(loglvl.DebugLevel, fmt.Sprintf(message, args...), data).Log()
}

func (l *lgr) Info(message string, data interface{}, args ...interface{}) {
	l.newEntry(loglvl.InfoLevel, fmt.Sprintf(message, args...), data).Log()
}

func (l *lgr) Warning(message string, data interface{}, args ...interface{}) {
	l.newEntry(loglvl.WarnLevel, fmt.Sprintf(message, args...), data).Log()
}

func (l *lgr) Error(message string, data interface{}, args ...interface{}) {
	l.newEntry(loglvl.ErrorLevel, fmt.Sprintf(message, args...), data).Log()
}

func (l *lgr) Fatal(message string, data interface{}, args ...interface{}) {
	l.newEntry(loglvl.FatalLevel, fmt.Sprintf(message, args...), data).Log()
}

func (l *lgr) Panic(message string, data interface{}, args ...interface{}) {
	l.newEntry(loglvl.PanicLevel, fmt.Sprintf(message, args...), data).Log()
}

func (l *lgr) CheckError(lvlKO, lvlOK loglvl.Level, message string, err error) bool {
	if err != nil {
		l.newEntry(lvlKO, message, nil).(*entry).ErrorAdd(err).Log()
		return true
	}
	if lvlOK != loglvl.NilLevel {
		l.newEntry(lvlOK, message, nil).Log()
	}
	return false
}

func (l *lgr) Entry(lvl loglvl.Level, message string, args ...interface{}) Entry {
	return l.newEntry(lvl, fmt.Sprintf(message, args...), nil)
}

func (l *lgr) Clone() Logger {
	n := &lgr{
		log: logrus.New(),
		fld: l.GetFields().clone(),
	}
	n.SetLevel(l.GetLevel())
	return n
}
