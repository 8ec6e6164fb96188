// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package chatmark

import (
	"strconv"
	"strings"
)

// tabStopSize is the column multiple a tab advances to.
const tabStopSize = 4

// splitIndent returns the width in columns of the line's leading whitespace
// and the rest of the line.
func splitIndent(line string) (width int, rest string) {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			width++
		case '\t':
			width += tabStopSize - width%tabStopSize
		default:
			return width, line[i:]
		}
	}
	return width, ""
}

// trimIndentColumns removes up to n columns of leading whitespace from line.
func trimIndentColumns(line string, n int) string {
	width := 0
	for i := 0; i < len(line); i++ {
		if width >= n {
			return line[i:]
		}
		switch line[i] {
		case ' ':
			width++
		case '\t':
			width += tabStopSize - width%tabStopSize
		default:
			return line[i:]
		}
	}
	return ""
}

func isBlankLine(line string) bool {
	for i := 0; i < len(line); i++ {
		if b := line[i]; !(b == '\r' || b == '\n' || b == ' ' || b == '\t') {
			return false
		}
	}
	return true
}

// isEndEscaped reports whether s ends with an odd number of backslashes.
func isEndEscaped(s string) bool {
	n := 0
	for ; n < len(s); n++ {
		if s[len(s)-n-1] != '\\' {
			break
		}
	}
	return n%2 == 1
}

// parseThematicBreak attempts to parse the line as a thematic break:
// three or more matching '-', '_' or '*' characters
// optionally separated by whitespace.
// It returns the end of the thematic break characters
// or -1 if the line is not a thematic break.
// parseThematicBreak assumes that the caller has stripped any leading indentation.
func parseThematicBreak(line string) (end int) {
	n := 0
	var want byte
	for i := 0; i < len(line); i++ {
		switch b := line[i]; b {
		case '-', '_', '*':
			if n == 0 {
				want = b
			} else if b != want {
				return -1
			}
			n++
			end = i + 1
		case ' ', '\t':
		default:
			return -1
		}
	}
	if n < 3 {
		return -1
	}
	return end
}

// parseBlockQuote attempts to parse a block quote marker from the beginning of the line.
// It returns the end of the block quote marker
// or -1 if the line does not begin with the marker.
// parseBlockQuote assumes that the caller has stripped any leading indentation.
func parseBlockQuote(line string) (end int) {
	if len(line) == 0 || line[0] != '>' {
		return -1
	}
	if len(line) > 1 && (line[1] == ' ' || line[1] == '\t') {
		return 2
	}
	return 1
}

type atxHeading struct {
	level   int // 1-6
	content string
}

// parseATXHeading attempts to parse the line as a heading:
// one to six '#' characters, whitespace, and non-empty content
// with an optional closing sequence of '#' characters.
// The level is zero if the line is not a heading.
// parseATXHeading assumes that the caller has stripped any leading indentation.
func parseATXHeading(line string) atxHeading {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(line) {
		return atxHeading{}
	}
	if line[level] != ' ' && line[level] != '\t' {
		return atxHeading{}
	}
	content := strings.TrimRight(line[level:], " \t")
	if !isEndEscaped(strings.TrimRight(content, "#")) {
		if trimmed := strings.TrimRight(content, "#"); trimmed == "" || strings.HasSuffix(trimmed, " ") || strings.HasSuffix(trimmed, "\t") {
			content = trimmed
		}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return atxHeading{}
	}
	return atxHeading{level: level, content: content}
}

// codeFence is the opening line of a fenced code block.
type codeFence struct {
	char     byte
	n        int
	indent   int
	language string
}

// parseCodeFence attempts to parse the line as an opening code fence:
// three or more backticks or tildes followed by an optional language tag.
// The returned fence has n == 0 if the line is not a fence.
func parseCodeFence(line string) codeFence {
	indent, rest := splitIndent(line)
	if len(rest) < 3 || (rest[0] != '`' && rest[0] != '~') {
		return codeFence{}
	}
	f := codeFence{char: rest[0], indent: indent}
	for f.n < len(rest) && rest[f.n] == f.char {
		f.n++
	}
	if f.n < 3 {
		return codeFence{}
	}
	info := strings.TrimSpace(rest[f.n:])
	if f.char == '`' && strings.Contains(info, "`") {
		return codeFence{}
	}
	if fields := strings.Fields(info); len(fields) > 0 {
		f.language = strings.Trim(fields[0], "{}.")
	}
	return f
}

// closes reports whether line is a closing fence for f.
func (f codeFence) closes(line string) bool {
	_, rest := splitIndent(line)
	n := 0
	for n < len(rest) && rest[n] == f.char {
		n++
	}
	return n >= f.n && isBlankLine(rest[n:])
}

// codePayload builds the payload of a fenced code block from its inner lines.
// Indentation matching the fence is removed,
// as are leading blank lines and trailing whitespace.
// Indentation of the first non-blank line is kept.
func codePayload(lines []string, indent int) string {
	for len(lines) > 0 && isBlankLine(lines[0]) {
		lines = lines[1:]
	}
	sb := new(strings.Builder)
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(trimIndentColumns(line, indent))
	}
	return strings.TrimRight(sb.String(), " \t\r\n")
}

// listItemLine is a line that starts a list item.
type listItemLine struct {
	indent int
	marker ListMarker
	number int
	task   TaskState
	text   string
}

// parseListItem attempts to parse the line as the start of a list item:
// a bullet ('-', '*' or '+') or a number followed by '.' or ')',
// then whitespace and content.
// The returned item has a zero marker if the line does not start a list item.
func parseListItem(line string) listItemLine {
	indent, rest := splitIndent(line)
	item := listItemLine{indent: indent}
	var markerEnd int
	switch {
	case len(rest) > 0 && (rest[0] == '-' || rest[0] == '*' || rest[0] == '+'):
		item.marker = BulletMarker
		markerEnd = 1
	case len(rest) > 0 && isASCIIDigit(rest[0]):
		for markerEnd < len(rest) && markerEnd < 9 && isASCIIDigit(rest[markerEnd]) {
			markerEnd++
		}
		if markerEnd >= len(rest) || (rest[markerEnd] != '.' && rest[markerEnd] != ')') {
			return listItemLine{}
		}
		item.number, _ = strconv.Atoi(rest[:markerEnd])
		item.marker = OrderedMarker
		markerEnd++
	default:
		return listItemLine{}
	}
	if markerEnd >= len(rest) || (rest[markerEnd] != ' ' && rest[markerEnd] != '\t') {
		return listItemLine{}
	}
	item.text = strings.TrimSpace(rest[markerEnd:])
	if item.text == "" {
		return listItemLine{}
	}
	item.task, item.text = parseTaskMarker(item.text)
	return item
}

// parseTaskMarker splits a "[ ]" or "[x]" checkbox from the start of a list item's text.
func parseTaskMarker(text string) (TaskState, string) {
	if len(text) < 3 || text[0] != '[' || text[2] != ']' {
		return NotTask, text
	}
	if len(text) > 3 && text[3] != ' ' && text[3] != '\t' {
		return NotTask, text
	}
	var state TaskState
	switch text[1] {
	case ' ':
		state = TaskOpen
	case 'x', 'X':
		state = TaskDone
	default:
		return NotTask, text
	}
	return state, strings.TrimSpace(text[3:])
}

// parseAbbreviationDefinition attempts to parse the line as
// "*[ABBR]: expansion".
func parseAbbreviationDefinition(line string) (abbr, title string, ok bool) {
	rest, ok := strings.CutPrefix(line, "*[")
	if !ok {
		return "", "", false
	}
	abbr, title, ok = strings.Cut(rest, "]:")
	abbr = strings.TrimSpace(abbr)
	title = strings.TrimSpace(title)
	if !ok || abbr == "" || title == "" || strings.ContainsAny(abbr, "[]") {
		return "", "", false
	}
	return abbr, title, true
}

// startsBlock reports whether a line begins a block other than a paragraph,
// and so ends a paragraph in progress.
func startsBlock(line string) bool {
	_, rest := splitIndent(line)
	if _, _, ok := parseAbbreviationDefinition(rest); ok {
		return true
	}
	return parseATXHeading(rest).level > 0 ||
		parseThematicBreak(rest) >= 0 ||
		parseBlockQuote(rest) >= 0 ||
		parseListItem(line).marker != 0
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
