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

// Package rangelist expands the "-l" line-range lists shared by the
// check-file and exclusion-file grammars: a space- or comma-separated
// sequence of singletons ("39") and intervals ("42-45"), the latter
// expanding to every line in the inclusive range.
package rangelist

import (
	"fmt"
	"strconv"
	"strings"
)

// Line is one expanded line number, flagged if it came from an
// interval rather than a singleton.
type Line struct {
	Number   int
	Expanded bool
}

// Expand parses items (as delivered by the tokenizer: one arg per
// whitespace-delimited token, each possibly itself comma-separated)
// into the flat, order-preserving sequence of lines it denotes.
func Expand(items []string) ([]Line, error) {
	var out []Line
	for _, item := range items {
		for _, piece := range strings.Split(item, ",") {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			if idx := strings.IndexByte(piece, '-'); idx > 0 {
				lo, err := strconv.Atoi(piece[:idx])
				if err != nil {
					return nil, fmt.Errorf("rangelist: bad interval %q: %w", piece, err)
				}
				hi, err := strconv.Atoi(piece[idx+1:])
				if err != nil {
					return nil, fmt.Errorf("rangelist: bad interval %q: %w", piece, err)
				}
				if hi < lo {
					return nil, fmt.Errorf("rangelist: interval %q has hi < lo", piece)
				}
				for n := lo; n <= hi; n++ {
					out = append(out, Line{Number: n, Expanded: true})
				}
				continue
			}
			n, err := strconv.Atoi(piece)
			if err != nil {
				return nil, fmt.Errorf("rangelist: bad line number %q: %w", piece, err)
			}
			out = append(out, Line{Number: n, Expanded: false})
		}
	}
	return out, nil
}
