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

// Package tokencmd implements the generic, line-oriented command
// tokenizer shared by the check-file and exclusion-file frontends: a
// file of "<verb> -flag arg... -flag arg..." commands, with "#"
// line comments, "/* ... */" block comments, and pluggable argument
// readers keyed on the first rune of the argument.
package tokencmd

import (
	"fmt"
	"io"
	"unicode"
)

// Config parameterizes the tokenizer for one grammar.
type Config struct {
	// Verb is the command keyword, possibly multi-word (e.g. "check"
	// or "coverage exclude").
	Verb string
	// FlagIntroducer precedes a flag name with no intervening
	// whitespace (conventionally "-").
	FlagIntroducer string
	// FlagDelim names the flag/argument separator of the grammar
	// (conventionally a single space). Parse does not read it: a flag
	// is always separated from its arguments by whitespace.
	FlagDelim string
	// StopToken, if non-empty, ends parsing (without error) the first
	// time it is encountered as a bare word.
	StopToken string
}

// ArgReader reads one argument starting at pos in input, returning the
// decoded argument text and the position just past it. The default
// reader stops at the next whitespace rune; registered readers may
// consume quoted or braced regions instead. input is the tokenizer's
// full comment-stripped buffer, not merely the current physical line.
type ArgReader func(input string, pos int) (arg string, next int, err error)

// Command is one recognized command: its flags (each mapped to the
// list of arguments that followed it, in order) and the source line
// its verb started on.
type Command struct {
	Flags map[string][]string
	Line  int
}

// SyntaxError reports a tokenizing failure with its source location.
type SyntaxError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

// DefaultReader consumes runes up to the next whitespace rune.
func DefaultReader(input string, pos int) (string, int, error) {
	runes := []rune(input)
	start := pos
	for pos < len(runes) && !unicode.IsSpace(runes[pos]) {
		pos++
	}
	if pos == start {
		return "", pos, fmt.Errorf("expected an argument")
	}
	return string(runes[start:pos]), pos, nil
}

// QuoteReader consumes a "..." region, unescaped, returning its
// interior text.
func QuoteReader(input string, pos int) (string, int, error) {
	runes := []rune(input)
	if pos >= len(runes) || runes[pos] != '"' {
		return "", pos, fmt.Errorf("expected opening quote")
	}
	start := pos + 1
	i := start
	for i < len(runes) && runes[i] != '"' {
		i++
	}
	if i >= len(runes) {
		return "", i, fmt.Errorf("unterminated quoted string")
	}
	return string(runes[start:i]), i + 1, nil
}

// BraceReader consumes a {...} region, returning its interior text.
func BraceReader(input string, pos int) (string, int, error) {
	runes := []rune(input)
	if pos >= len(runes) || runes[pos] != '{' {
		return "", pos, fmt.Errorf("expected opening brace")
	}
	start := pos + 1
	i := start
	for i < len(runes) && runes[i] != '}' {
		i++
	}
	if i >= len(runes) {
		return "", i, fmt.Errorf("unterminated braced argument")
	}
	return string(runes[start:i]), i + 1, nil
}

// Parse reads commands matching cfg from r, dispatching argument
// decoding for each flag's arguments to the reader registered for the
// argument's first byte in readers, or DefaultReader if none is
// registered.
func Parse(cfg Config, readers map[byte]ArgReader, r io.Reader, filename string) ([]Command, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	buf, lineOf, colOf, err := stripComments(string(raw))
	if err != nil {
		return nil, &SyntaxError{File: filename, Line: 1, Col: 1, Msg: err.Error()}
	}

	p := &parser{
		cfg:      cfg,
		readers:  readers,
		buf:      buf,
		lineOf:   lineOf,
		colOf:    colOf,
		filename: filename,
		verbWords: splitWords(cfg.Verb),
	}
	return p.run()
}

type parser struct {
	cfg       Config
	readers   map[byte]ArgReader
	buf       []rune
	lineOf    []int
	colOf     []int
	filename  string
	verbWords []string
}

func (p *parser) errAt(pos int, format string, args ...interface{}) error {
	line, col := 1, 1
	if pos < len(p.lineOf) {
		line, col = p.lineOf[pos], p.colOf[pos]
	} else if len(p.lineOf) > 0 {
		line, col = p.lineOf[len(p.lineOf)-1], p.colOf[len(p.lineOf)-1]
	}
	return &SyntaxError{File: p.filename, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipWS(pos int) int {
	for pos < len(p.buf) && unicode.IsSpace(p.buf[pos]) {
		pos++
	}
	return pos
}

func readWord(buf []rune, pos int) (string, int) {
	start := pos
	for pos < len(buf) && !unicode.IsSpace(buf[pos]) {
		pos++
	}
	return string(buf[start:pos]), pos
}

// matchWords attempts to match the space-separated words in words
// starting at pos, returning the position just past the match.
func (p *parser) matchWords(pos int, words []string) (int, bool) {
	cur := pos
	for i, w := range words {
		if i > 0 {
			if cur >= len(p.buf) || !unicode.IsSpace(p.buf[cur]) {
				return pos, false
			}
			cur = p.skipWS(cur)
		}
		got, next := readWord(p.buf, cur)
		if got != w {
			return pos, false
		}
		cur = next
	}
	return cur, true
}

func (p *parser) hasPrefixRunes(pos int, lit string) bool {
	litRunes := []rune(lit)
	if pos+len(litRunes) > len(p.buf) {
		return false
	}
	for i, r := range litRunes {
		if p.buf[pos+i] != r {
			return false
		}
	}
	return true
}

func (p *parser) run() ([]Command, error) {
	var commands []Command
	var cur *Command

	pos := p.skipWS(0)
	for pos < len(p.buf) {
		if p.cfg.StopToken != "" {
			if next, ok := p.matchWords(pos, splitWords(p.cfg.StopToken)); ok {
				pos = next
				break
			}
		}
		if next, ok := p.matchWords(pos, p.verbWords); ok {
			commands = append(commands, Command{Flags: map[string][]string{}, Line: p.lineOf[pos]})
			cur = &commands[len(commands)-1]
			pos = p.skipWS(next)
			continue
		}

		if cur == nil {
			return nil, p.errAt(pos, "expected command %q", p.cfg.Verb)
		}
		if !p.hasPrefixRunes(pos, p.cfg.FlagIntroducer) {
			return nil, p.errAt(pos, "expected flag introducer %q", p.cfg.FlagIntroducer)
		}
		pos += len([]rune(p.cfg.FlagIntroducer))

		flagName, next := readWord(p.buf, pos)
		if flagName == "" {
			return nil, p.errAt(pos, "expected a flag name after %q", p.cfg.FlagIntroducer)
		}
		pos = next
		if _, ok := cur.Flags[flagName]; !ok {
			cur.Flags[flagName] = []string{}
		}

		for {
			pos = p.skipWS(pos)
			if pos >= len(p.buf) {
				break
			}
			if p.cfg.StopToken != "" {
				if _, ok := p.matchWords(pos, splitWords(p.cfg.StopToken)); ok {
					break
				}
			}
			if _, ok := p.matchWords(pos, p.verbWords); ok {
				break
			}
			if p.hasPrefixRunes(pos, p.cfg.FlagIntroducer) {
				break
			}

			reader := ArgReader(DefaultReader)
			if pos < len(p.buf) && p.buf[pos] < 256 {
				if r, ok := p.readers[byte(p.buf[pos])]; ok {
					reader = r
				}
			}
			arg, next, err := reader(string(p.buf), pos)
			if err != nil {
				return nil, p.errAt(pos, "%v", err)
			}
			cur.Flags[flagName] = append(cur.Flags[flagName], arg)
			pos = next
		}
	}

	return commands, nil
}

func splitWords(s string) []string {
	var words []string
	var cur []rune
	for _, r := range s {
		if unicode.IsSpace(r) {
			if len(cur) > 0 {
				words = append(words, string(cur))
				cur = nil
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		words = append(words, string(cur))
	}
	return words
}

// stripComments blanks out "#"-to-end-of-line and "/* ... */" comment
// text (preserving newlines, so line numbers stay accurate) without
// touching the interior of a double-quoted region.
func stripComments(input string) (buf []rune, lineOf, colOf []int, err error) {
	runes := []rune(input)
	buf = make([]rune, len(runes))
	lineOf = make([]int, len(runes))
	colOf = make([]int, len(runes))

	line, col := 1, 1
	inQuote := false
	i := 0
	for i < len(runes) {
		c := runes[i]
		lineOf[i] = line
		colOf[i] = col

		switch {
		case inQuote:
			buf[i] = c
			if c == '"' {
				inQuote = false
			}
			i++
			col++
		case c == '"':
			inQuote = true
			buf[i] = c
			i++
			col++
		case c == '#':
			for i < len(runes) && runes[i] != '\n' {
				buf[i] = ' '
				lineOf[i], colOf[i] = line, col
				i++
				col++
			}
		case c == '/' && i+1 < len(runes) && runes[i+1] == '*':
			startLine, startCol := line, col
			buf[i] = ' '
			i++
			col++
			buf[i] = ' '
			lineOf[i], colOf[i] = line, col
			i++
			col++
			closed := false
			for i < len(runes) {
				if runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/' {
					buf[i] = ' '
					lineOf[i], colOf[i] = line, col
					i++
					col++
					buf[i] = ' '
					lineOf[i], colOf[i] = line, col
					i++
					col++
					closed = true
					break
				}
				if runes[i] == '\n' {
					buf[i] = '\n'
					lineOf[i], colOf[i] = line, col
					line++
					col = 1
					i++
					continue
				}
				buf[i] = ' '
				lineOf[i], colOf[i] = line, col
				i++
				col++
			}
			if !closed {
				return nil, nil, nil, fmt.Errorf("unterminated comment starting at %d:%d", startLine, startCol)
			}
		case c == '\n':
			buf[i] = c
			i++
			line++
			col = 1
		default:
			buf[i] = c
			i++
			col++
		}
	}
	return buf, lineOf, colOf, nil
}
