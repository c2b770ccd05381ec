// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package stmt

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// scanner walks a free-form statement looking for positional "?" markers.
// Markers inside string literals, quoted identifiers and comments are text.
type scanner struct {
	input string
	// brackets is set when [name] quotes an identifier.
	brackets bool
	pos   int
	// nextPos is start of the next char.
	nextPos int
	// char is the rune starting at pos. char is set to 0 when pos reaches the
	// end of input.
	char rune
	// chunkStart is the position just after the last marker found.
	chunkStart int
	// chunks holds the text around the markers, so there is always one more
	// chunk than there are markers.
	chunks []string
	// lineNum is the number of the current line of the input.
	lineNum int
	// lineStart is the position of the first char of the current line in the
	// input.
	lineStart int
}

// scan splits input on its "?" markers. Bracketed sections are skipped
// only when brackets is set.
func scan(input string, brackets bool) (chunks []string, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("%w: %s", ErrMalformedStatement, err)
		}
	}()

	s := &scanner{brackets: brackets}
	s.init(input)
	for s.pos < len(s.input) {
		if ok, err := s.skipStringLiteral(); err != nil {
			return nil, err
		} else if ok {
			continue
		}
		if ok, err := s.skipBracketed(); err != nil {
			return nil, err
		} else if ok {
			continue
		}
		if s.skipComment() {
			continue
		}
		if s.char == '?' {
			if err := s.marker(); err != nil {
				return nil, err
			}
			continue
		}
		s.advanceChar()
	}
	s.chunks = append(s.chunks, s.input[s.chunkStart:])
	return s.chunks, nil
}

// init resets the state of the scanner and sets the input string.
func (s *scanner) init(input string) {
	s.input = input
	s.pos = 0
	s.nextPos = 0
	s.char = 0
	s.chunkStart = 0
	s.chunks = nil
	s.lineNum = 1
	s.lineStart = 0
	s.advanceChar()
}

// colNum calculates the current column number taking into account line breaks.
func (s *scanner) colNum() int {
	return s.pos - s.lineStart + 1
}

// advanceChar moves the scanner to the next character in the input, keeping
// track of line breaks.
func (s *scanner) advanceChar() bool {
	if s.nextPos >= len(s.input) {
		s.char = 0
		s.pos = s.nextPos
		return false
	}
	if s.char == '\n' {
		s.lineStart = s.nextPos
		s.lineNum++
	}
	var size int
	s.char, size = utf8.DecodeRuneInString(s.input[s.nextPos:])
	s.pos = s.nextPos
	s.nextPos += size
	return true
}

// errorAt wraps an error with line and column information.
func errorAt(err error, line int, column int, input string) error {
	if strings.ContainsRune(input, '\n') {
		return fmt.Errorf("line %d, column %d: %w", line, column, err)
	}
	return fmt.Errorf("column %d: %w", column, err)
}

type checkpoint struct {
	scanner   *scanner
	pos       int
	nextPos   int
	char      rune
	lineNum   int
	lineStart int
}

func (s *scanner) save() *checkpoint {
	return &checkpoint{
		scanner:   s,
		pos:       s.pos,
		nextPos:   s.nextPos,
		char:      s.char,
		lineNum:   s.lineNum,
		lineStart: s.lineStart,
	}
}

func (cp *checkpoint) restore() {
	cp.scanner.pos = cp.pos
	cp.scanner.nextPos = cp.nextPos
	cp.scanner.char = cp.char
	cp.scanner.lineNum = cp.lineNum
	cp.scanner.lineStart = cp.lineStart
}

// marker consumes a "?" and closes the current chunk. Numbered markers such
// as "?1" are refused since arguments are always bound in order.
func (s *scanner) marker() error {
	line, col := s.lineNum, s.colNum()
	s.chunks = append(s.chunks, s.input[s.chunkStart:s.pos])
	s.advanceChar()
	if s.pos < len(s.input) && '0' <= s.char && s.char <= '9' {
		return errorAt(fmt.Errorf("numbered parameters are not supported"), line, col, s.input)
	}
	s.chunkStart = s.pos
	return nil
}

// skipComment jumps over "--" and "/* */" comments. If no comment is found
// the scanner state is left unchanged.
func (s *scanner) skipComment() bool {
	cp := s.save()
	c := s.char
	if s.skipChar('-') || s.skipChar('/') {
		if (c == '-' && s.skipChar('-')) || (c == '/' && s.skipChar('*')) {
			var end rune
			if c == '-' {
				end = '\n'
			} else {
				end = '*'
			}
			for s.pos < len(s.input) {
				if s.char == end {
					if end == '*' {
						s.advanceChar()
						if !s.skipChar('/') {
							continue
						}
					}
					return true
				}
				s.advanceChar()
			}
			// Reached end of input (valid comment end).
			return true
		}
		cp.restore()
		return false
	}
	return false
}

// skipStringLiteral jumps over single and double quoted sections of input.
// Doubled up quotes are escaped.
func (s *scanner) skipStringLiteral() (bool, error) {
	cp := s.save()

	c := s.char
	if s.skipChar('"') || s.skipChar('\'') {
		maybeCloser := true
		for s.skipCharFind(c) {
			if maybeCloser && !s.peekChar(c) {
				return true, nil
			}
			maybeCloser = !maybeCloser
		}

		cp.restore()
		return false, errorAt(fmt.Errorf("missing closing quote in string literal"), s.lineNum, s.colNum(), s.input)
	}
	return false, nil
}

// skipBracketed jumps over a SQL Server style [quoted identifier].
func (s *scanner) skipBracketed() (bool, error) {
	if !s.brackets {
		return false, nil
	}
	cp := s.save()
	if !s.skipChar('[') {
		return false, nil
	}
	if s.skipCharFind(']') {
		return true, nil
	}
	cp.restore()
	return false, errorAt(fmt.Errorf("missing closing bracket in identifier"), s.lineNum, s.colNum(), s.input)
}

// peekChar returns true if the current char equals the one passed as parameter.
func (s *scanner) peekChar(c rune) bool {
	return s.pos < len(s.input) && s.char == c
}

// skipChar jumps over the current char if it matches c.
func (s *scanner) skipChar(c rune) bool {
	if s.pos < len(s.input) && s.char == c {
		s.advanceChar()
		return true
	}
	return false
}

// skipCharFind advances the scanner until it finds c and then jumps over it.
// It returns false if the end of input is reached first.
func (s *scanner) skipCharFind(c rune) bool {
	for s.pos < len(s.input) {
		if s.char == c {
			s.advanceChar()
			return true
		}
		s.advanceChar()
	}
	return false
}
