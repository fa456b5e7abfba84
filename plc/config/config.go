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

// Package config is the typed, validated counterpart to attr.Bag: where
// attr.Bag parses the literal "k=v&k=v" attribute string, Config is the
// struct a caller assembling tags programmatically decodes into (via
// mapstructure) and validates before ever turning it into an attribute
// string for plc.Create.
package config

import (
	"fmt"
	"strings"

	libval "github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	liberr "github/sabouaram/plctag/errors"
)

// Config mirrors the attribute keys attr.Bag recognises, typed and
// struct-tag-validated instead of loosely-typed strings.
type Config struct {
	// Protocol selects the wire protocol: "ab_eip" or "modbus_tcp".
	Protocol string `mapstructure:"protocol" json:"protocol" yaml:"protocol" toml:"protocol" validate:"required,oneof=ab_eip modbus_tcp"`

	// Gateway is the "host:port" TCP endpoint every tag sharing it reuses a
	// single connection to.
	Gateway string `mapstructure:"gateway" json:"gateway" yaml:"gateway" toml:"gateway" validate:"required"`

	// Path is the CIP routing path for ab_eip ("1,0", "1,2,A:3:4") or the
	// decimal Modbus unit id for modbus_tcp.
	Path string `mapstructure:"path" json:"path" yaml:"path" toml:"path"`

	// CPU selects the ab_eip family: "plc5", "slc", "micrologix",
	// "controllogix"/"compactlogix" ("lgx" aliases the latter). Ignored for
	// modbus_tcp.
	CPU string `mapstructure:"cpu" json:"cpu" yaml:"cpu" toml:"cpu"`

	// Name is the tag name: an N7:k-style PCCC logical address, a Logix tag
	// name, or an hr/co/di/ir-prefixed Modbus address.
	Name string `mapstructure:"name" json:"name" yaml:"name" toml:"name" validate:"required"`

	ElemSize     int  `mapstructure:"elem_size" json:"elem_size" yaml:"elem_size" toml:"elem_size" validate:"required,gt=0"`
	ElemCount    int  `mapstructure:"elem_count" json:"elem_count" yaml:"elem_count" toml:"elem_count" validate:"required,gt=0"`
	AllowPacking bool `mapstructure:"allow_packing" json:"allow_packing" yaml:"allow_packing" toml:"allow_packing"`

	IdleTimeoutMs    int `mapstructure:"idle_timeout_ms" json:"idle_timeout_ms" yaml:"idle_timeout_ms" toml:"idle_timeout_ms" validate:"gte=0"`
	AutoSyncReadMs   int `mapstructure:"auto_sync_read_ms" json:"auto_sync_read_ms" yaml:"auto_sync_read_ms" toml:"auto_sync_read_ms" validate:"gte=0"`
	AutoSyncWriteMs  int `mapstructure:"auto_sync_write_ms" json:"auto_sync_write_ms" yaml:"auto_sync_write_ms" toml:"auto_sync_write_ms" validate:"gte=0"`
	ReadCacheMs      int `mapstructure:"read_cache_ms" json:"read_cache_ms" yaml:"read_cache_ms" toml:"read_cache_ms" validate:"gte=0"`
	Debug            int `mapstructure:"debug" json:"debug" yaml:"debug" toml:"debug" validate:"gte=0"`
}

// New decodes a loosely-typed map (e.g. parsed from JSON/YAML/TOML by the
// caller) into a Config via mapstructure, then validates it.
func New(m map[string]interface{}) (*Config, liberr.Error) {
	c := &Config{}

	if err := mapstructure.Decode(m, c); err != nil {
		return nil, ErrorDecode.Error(err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every struct-tag constraint on c, exactly the way
// ftpclient.Config.Validate checks its own fields.
func (c *Config) Validate() liberr.Error {
	e := ErrorValidatorError.Error(nil)

	if err := libval.New().Struct(c); err != nil {
		if er, ok := err.(*libval.InvalidValidationError); ok {
			e.Add(er)
		}
		if vErrs, ok := err.(libval.ValidationErrors); ok {
			for _, er := range vErrs {
				//nolint #goerr113
				e.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", er.Namespace(), er.ActualTag()))
			}
		}
	}

	if !e.HasParent() {
		return nil
	}
	return e
}

// AttribString renders c into the literal "k=v&k=v" attribute string
// plc.Create expects, so a caller can assemble a Config and still go
// through the single attr.Bag-driven entry point.
func (c *Config) AttribString() string {
	parts := []string{
		"protocol=" + c.Protocol,
		"gateway=" + c.Gateway,
	}
	if c.Path != "" {
		parts = append(parts, "path="+c.Path)
	}
	if c.CPU != "" {
		parts = append(parts, "cpu="+c.CPU)
	}
	parts = append(parts,
		"name="+c.Name,
		fmt.Sprintf("elem_size=%d", c.ElemSize),
		fmt.Sprintf("elem_count=%d", c.ElemCount),
	)
	if c.AllowPacking {
		parts = append(parts, "allow_packing=1")
	}
	if c.IdleTimeoutMs > 0 {
		parts = append(parts, fmt.Sprintf("idle_timeout_ms=%d", c.IdleTimeoutMs))
	}
	if c.AutoSyncReadMs > 0 {
		parts = append(parts, fmt.Sprintf("auto_sync_read_ms=%d", c.AutoSyncReadMs))
	}
	if c.AutoSyncWriteMs > 0 {
		parts = append(parts, fmt.Sprintf("auto_sync_write_ms=%d", c.AutoSyncWriteMs))
	}
	if c.ReadCacheMs > 0 {
		parts = append(parts, fmt.Sprintf("read_cache_ms=%d", c.ReadCacheMs))
	}
	if c.Debug > 0 {
		parts = append(parts, fmt.Sprintf("debug=%d", c.Debug))
	}
	return strings.Join(parts, "&")
}
