// Copyright 2015 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package indent provides helpers to prefix every line of a byte or
// string stream with a fixed prefix, including through an io.Writer.
package indent

import (
	"bytes"
	"io"
)

// String returns in with prefix inserted at the start of every line.
// A trailing "\n" ends the last line; no prefix is written after it.
func String(prefix, in string) string {
	return string(Bytes([]byte(prefix), []byte(in)))
}

// Bytes is the []byte equivalent of String.
func Bytes(prefix, in []byte) []byte {
	var buf bytes.Buffer
	w := NewWriter(&buf, string(prefix))
	w.Write(in)
	return buf.Bytes()
}

// A Writer inserts prefix at the start of every line written to it.
type Writer struct {
	w      io.Writer
	prefix string
	atBOL  bool
}

// NewWriter returns a Writer that writes to w, inserting prefix at the
// beginning of every line.
func NewWriter(w io.Writer, prefix string) *Writer {
	return &Writer{w: w, prefix: prefix, atBOL: true}
}

// Write implements io.Writer. The returned count reflects only the
// bytes of p that were successfully flushed, not the inserted prefix
// bytes that rode along with them.
func (w *Writer) Write(p []byte) (int, error) {
	var full bytes.Buffer
	isData := make([]bool, 0, len(p)+len(w.prefix))
	atBOL := w.atBOL
	for _, c := range p {
		if atBOL {
			full.WriteString(w.prefix)
			for range w.prefix {
				isData = append(isData, false)
			}
			atBOL = false
		}
		full.WriteByte(c)
		isData = append(isData, true)
		if c == '\n' {
			atBOL = true
		}
	}

	fullBytes := full.Bytes()
	wn, err := w.w.Write(fullBytes)
	if wn > len(fullBytes) {
		wn = len(fullBytes)
	}
	if wn < 0 {
		wn = 0
	}

	n := 0
	for i := 0; i < wn; i++ {
		if isData[i] {
			n++
		}
	}

	if wn == len(fullBytes) {
		w.atBOL = atBOL
	} else if wn > 0 {
		w.atBOL = fullBytes[wn-1] == '\n'
	}
	// wn == 0: leave w.atBOL unchanged.

	return n, err
}
