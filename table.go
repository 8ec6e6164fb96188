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
	"fmt"
	"strings"
)

// lineClaim records which recognizer owns a source line.
type lineClaim uint8

const (
	unclaimed lineClaim = iota
	claimedByCode
	claimedByTable
)

// A claimedSpan is a run of lines that a recognizer has turned into a finished block.
// Claimed lines are never examined by later recognizers.
type claimedSpan struct {
	claim lineClaim
	start int
	end   int
	block *Block
}

// claimSet tracks the claimed spans of a sequence of lines.
type claimSet struct {
	lines  []lineClaim
	starts map[int]*claimedSpan
}

// claimLines runs the fence and table recognizers over lines in priority order.
func claimLines(lines []string) *claimSet {
	cs := &claimSet{
		lines:  make([]lineClaim, len(lines)),
		starts: make(map[int]*claimedSpan),
	}
	claimFences(cs, lines)
	for _, h := range []TableHeuristic{StrictTable, SeparatorlessTable, LooseTable} {
		claimTables(cs, lines, h)
	}
	return cs
}

func (cs *claimSet) free(i int) bool {
	return cs.lines[i] == unclaimed
}

// spanAt returns the span starting at line i or nil.
func (cs *claimSet) spanAt(i int) *claimedSpan {
	return cs.starts[i]
}

func (cs *claimSet) add(span *claimedSpan) {
	for i := span.start; i < span.end; i++ {
		cs.lines[i] = span.claim
	}
	cs.starts[span.start] = span
}

// claimFences claims every fenced code block.
// A fence without a closing line runs to the end of the input.
func claimFences(cs *claimSet, lines []string) {
	for i := 0; i < len(lines); i++ {
		f := parseCodeFence(lines[i])
		if f.n == 0 {
			continue
		}
		end, spanEnd := len(lines), len(lines)
		for j := i + 1; j < len(lines); j++ {
			if f.closes(lines[j]) {
				end, spanEnd = j, j+1
				break
			}
		}
		cs.add(&claimedSpan{
			claim: claimedByCode,
			start: i,
			end:   spanEnd,
			block: &Block{
				kind:    CodeBlockKind,
				info:    f.language,
				literal: codePayload(lines[i+1:end], f.indent),
			},
		})
		i = spanEnd - 1
	}
}

// claimTables claims every unclaimed run of lines that h recognizes.
func claimTables(cs *claimSet, lines []string, h TableHeuristic) {
	for i := 0; i < len(lines); {
		end := matchTable(cs, lines, i, h)
		if end < 0 {
			i++
			continue
		}
		table, err := buildTable(lines[i:end], h)
		if err != nil {
			logf("lines %d-%d: %v", i+1, end, err)
			i++
			continue
		}
		cs.add(&claimedSpan{
			claim: claimedByTable,
			start: i,
			end:   end,
			block: table,
		})
		i = end
	}
}

// matchTable returns the end of the table that h recognizes at line i
// or -1 if there is none.
func matchTable(cs *claimSet, lines []string, i int, h TableHeuristic) int {
	row := func(j int, ok func(string) bool) bool {
		return j < len(lines) && cs.free(j) && isTableCandidate(lines[j]) && ok(lines[j])
	}
	switch h {
	case StrictTable:
		if !row(i, hasPipe) || len(splitCells(lines[i])) == 0 || isSeparatorRow(lines[i]) || !row(i+1, isSeparatorRow) {
			return -1
		}
		j := i + 2
		for row(j, hasPipe) {
			j++
		}
		if j == i+2 {
			return -1
		}
		return j
	case SeparatorlessTable:
		if !row(i, isBoundedRow) || len(splitCells(lines[i])) == 0 || isSeparatorRow(lines[i]) {
			return -1
		}
		j := i + 1
		for row(j, isBoundedRow) {
			j++
		}
		if j == i+1 {
			return -1
		}
		return j
	case LooseTable:
		j := i
		for row(j, isLooseRow) {
			j++
		}
		if j-i < 2 || len(splitCells(lines[i])) == 0 {
			return -1
		}
		return j
	default:
		return -1
	}
}

// isTableCandidate reports whether a line may belong to a table at all.
func isTableCandidate(line string) bool {
	if isBlankLine(line) {
		return false
	}
	_, rest := splitIndent(line)
	return parseBlockQuote(rest) < 0 &&
		parseATXHeading(rest).level == 0 &&
		parseListItem(line).marker == 0
}

func hasPipe(line string) bool {
	return countPipes(line) > 0
}

// countPipes counts the pipes in a line that are not escaped with a backslash.
func countPipes(line string) int {
	n := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '|':
			n++
		}
	}
	return n
}

// isBoundedRow reports whether a line starts and ends with an unescaped pipe.
func isBoundedRow(line string) bool {
	line = strings.TrimSpace(line)
	return len(line) >= 2 && line[0] == '|' && line[len(line)-1] == '|' && !isEndEscaped(line[:len(line)-1])
}

func isLooseRow(line string) bool {
	return countPipes(line) >= 2
}

// isSeparatorRow reports whether a line is made of cells like "---", ":--" or "-:".
func isSeparatorRow(line string) bool {
	if !hasPipe(line) {
		return false
	}
	cells := splitCells(line)
	if len(cells) == 0 {
		return false
	}
	for _, cell := range cells {
		dashes := strings.TrimSuffix(strings.TrimPrefix(cell, ":"), ":")
		if dashes == "" || strings.Trim(dashes, "-") != "" {
			return false
		}
	}
	return true
}

// buildTable builds a table block from the lines a heuristic claimed.
// Rows are padded with empty cells or truncated to the header's width.
func buildTable(lines []string, h TableHeuristic) (table *Block, err error) {
	defer func() {
		if v := recover(); v != nil {
			table = nil
			err = fmt.Errorf("build table: %v", v)
		}
	}()

	header := splitCells(lines[0])
	table = &Block{kind: TableKind, heuristic: h}
	body := lines[1:]
	if h == StrictTable {
		table.align = parseAlignments(body[0], len(header))
		body = body[1:]
	}
	table.blockChildren = append(table.blockChildren, buildRow(header, len(header), true))
	for _, line := range body {
		if isSeparatorRow(line) {
			continue
		}
		table.blockChildren = append(table.blockChildren, buildRow(splitCells(line), len(header), false))
	}
	return table, nil
}

// buildRow builds a table row. Tests replace it to exercise recovery.
var buildRow = newTableRow

func newTableRow(cells []string, width int, header bool) *Block {
	row := &Block{
		kind:          TableRowKind,
		header:        header,
		blockChildren: make([]*Block, width),
	}
	for i := range row.blockChildren {
		cell := &Block{kind: TableCellKind}
		if i < len(cells) && cells[i] != "" {
			cell.inlineChildren = []*Inline{{kind: UnparsedKind, text: cells[i]}}
		}
		row.blockChildren[i] = cell
	}
	return row
}

func parseAlignments(separator string, width int) []Alignment {
	cells := splitCells(separator)
	align := make([]Alignment, width)
	for i := range align {
		if i >= len(cells) {
			break
		}
		left := strings.HasPrefix(cells[i], ":")
		right := strings.HasSuffix(cells[i], ":")
		switch {
		case left && right:
			align[i] = AlignCenter
		case right:
			align[i] = AlignRight
		case left:
			align[i] = AlignLeft
		}
	}
	return align
}

// splitCells splits a table row on unescaped pipes outside code spans.
// Empty cells produced by a leading or trailing pipe are dropped.
// An escaped pipe becomes a literal pipe in the cell text.
func splitCells(line string) []string {
	line = strings.TrimSpace(line)
	var cells []string
	cell := new(strings.Builder)
	for i := 0; i < len(line); {
		switch c := line[i]; c {
		case '\\':
			if i+1 < len(line) && line[i+1] == '|' {
				cell.WriteByte('|')
				i += 2
				continue
			}
			cell.WriteByte(c)
			i++
		case '`':
			n := backtickRunLength(line[i:])
			if end := findBacktickRun(line[i+n:], n); end >= 0 {
				cell.WriteString(line[i : i+n+end+n])
				i += n + end + n
				continue
			}
			cell.WriteString(line[i : i+n])
			i += n
		case '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
			i++
		default:
			cell.WriteByte(c)
			i++
		}
	}
	cells = append(cells, strings.TrimSpace(cell.String()))
	if cells[0] == "" && strings.HasPrefix(line, "|") {
		cells = cells[1:]
	}
	if n := len(cells); n > 0 && cells[n-1] == "" && strings.HasSuffix(line, "|") && !isEndEscaped(line[:len(line)-1]) {
		cells = cells[:n-1]
	}
	return cells
}

// backtickRunLength returns the number of backticks at the start of s.
func backtickRunLength(s string) int {
	n := 0
	for n < len(s) && s[n] == '`' {
		n++
	}
	return n
}

// findBacktickRun returns the index of the first run of exactly n backticks in s
// or -1 if there is none.
func findBacktickRun(s string, n int) int {
	for i := 0; i < len(s); {
		if s[i] != '`' {
			i++
			continue
		}
		m := backtickRunLength(s[i:])
		if m == n {
			return i
		}
		i += m
	}
	return -1
}
