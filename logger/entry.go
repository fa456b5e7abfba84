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

package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	loglvl "github/sabouaram/plctag/logger/level"
)

// Entry builds one structured log record through method chaining, then
// emits it with Log. Every setter returns the same Entry so calls compose.
type Entry interface {
	Field(key string, val interface{}) Entry
	AddFields(f Fields) Entry
	ErrorAdd(err ...error) Entry
	Data(v interface{}) Entry
	Log()
}

type entry struct {
	log    func() *logrus.Logger
	lvl    loglvl.Level
	msg    string
	fields Fields
	errs   []error
	data   interface{}
}

func newEntry(log func() *logrus.Logger, lvl loglvl.Level, msg string) Entry {
	return &entry{log: log, lvl: lvl, msg: msg, fields: NewFields()}
}

func (e *entry) Field(key string, val interface{}) Entry {
	e.fields = e.fields.Add(key, val)
	return e
}

func (e *entry) AddFields(f Fields) Entry {
	e.fields = e.fields.Merge(f)
	return e
}

func (e *entry) ErrorAdd(err ...error) Entry {
	for _, er := range err {
		if er != nil {
			e.errs = append(e.errs, er)
		}
	}
	return e
}

func (e *entry) Data(v interface{}) Entry {
	e.data = v
	return e
}

// Log emits the entry, unless its level is NilLevel or no logger is set.
// A Fatal-level entry terminates the process after logging, matching the
// convenience methods this mirrors.
func (e *entry) Log() {
	if e == nil || e.lvl == loglvl.NilLevel || e.log == nil {
		return
	}
	log := e.log()
	if log == nil {
		return
	}

	fields := e.fields
	if len(e.errs) > 0 {
		msgs := make([]string, 0, len(e.errs))
		for _, er := range e.errs {
			msgs = append(msgs, er.Error())
		}
		fields = fields.Add("error", strings.Join(msgs, ", "))
	}
	if e.data != nil {
		fields = fields.Add("data", e.data)
	}

	log.WithFields(fields.Logrus()).Log(e.lvl.Logrus(), e.msg)

	if e.lvl == loglvl.FatalLevel {
		os.Exit(1)
	} else if e.lvl == loglvl.PanicLevel {
		panic(e.msg)
	}
}
