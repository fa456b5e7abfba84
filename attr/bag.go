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

// Package attr parses the ampersand-separated "key=value" attribute string
// used to describe a tag (gateway, path, cpu, elem_size, ...) and exposes
// typed accessors with defaults over the library's recognised attribute keys.
package attr

import (
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	liberr "github/sabouaram/plctag/errors"
)

// Bag is a parsed attribute string: a flat string-to-string map preserving
// insertion order is not required since lookups are by key, not position.
type Bag struct {
	values map[string]string
}

// Parse splits s on "&", then each segment on the first "=", trims both
// sides, and rejects any segment whose key or value is empty after
// trimming.
func Parse(s string) (*Bag, liberr.Error) {
	b := &Bag{values: make(map[string]string)}

	if strings.TrimSpace(s) == "" {
		return b, nil
	}

	for _, part := range strings.Split(s, "&") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		kv := strings.SplitN(part, "=", 2)
		key := strings.TrimSpace(kv[0])
		if key == "" {
			return nil, ErrorEmptyKey.Error(nil)
		}

		var val string
		if len(kv) == 2 {
			val = strings.TrimSpace(kv[1])
		}
		if val == "" {
			return nil, ErrorEmptyValue.Error(nil)
		}

		b.values[key] = val
	}

	return b, nil
}

// Has reports whether key was present in the parsed string.
func (b *Bag) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// GetString returns the raw string value of key, or def if absent.
func (b *Bag) GetString(key string, def string) string {
	if v, ok := b.values[key]; ok {
		return v
	}
	return def
}

// GetInt returns key parsed as a base-10 integer, or def if absent or
// unparsable.
func (b *Bag) GetInt(key string, def int64) int64 {
	v, ok := b.values[key]
	if !ok {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return i
}

// GetBool returns key interpreted as "0"/"1" (and the usual strconv.ParseBool
// spellings), or def if absent or unparsable.
func (b *Bag) GetBool(key string, def bool) bool {
	v, ok := b.values[key]
	if !ok {
		return def
	}
	p, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return p
}

// Map returns a shallow copy of the underlying key/value pairs.
func (b *Bag) Map() map[string]string {
	out := make(map[string]string, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// Decode fills dst (a pointer to a struct, typically plc/config.Config) from
// the bag's contents via mitchellh/mapstructure, enabling callers to
// assemble a validated Config from the same attribute strings that plc.Create
// accepts directly.
func (b *Bag) Decode(dst interface{}) liberr.Error {
	generic := make(map[string]interface{}, len(b.values))
	for k, v := range b.values {
		generic[k] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           dst,
		TagName:          "mapstructure",
	})
	if err != nil {
		return ErrorDecode.Error(err)
	}

	if err = dec.Decode(generic); err != nil {
		return ErrorDecode.Error(err)
	}

	return nil
}
