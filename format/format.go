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

// Package format writes parsed chat messages back out as markup
// in a canonical style.
package format

import (
	"io"
	"strconv"
	"strings"

	"zombiezen.com/go/chatmark"
)

// Format writes the document to w as markup.
// Parsing and rendering the output produces the same HTML as rendering doc,
// and formatting the output again produces the same bytes.
//
// Headings use "#" markers, bullets use "-", emphasis uses "*",
// and code blocks are fenced with backticks.
// Tables always carry a separator row.
func Format(w io.Writer, doc *chatmark.Document) error {
	f := &formatter{
		w:           &errWriter{w: w},
		atLineStart: true,
	}
	f.blocks(&doc.Block)
	if f.w.hasWritten {
		f.w.WriteString("\n")
	}
	return f.w.err
}

type formatter struct {
	w *errWriter
	// prefix is written before the content of every line.
	prefix      string
	atLineStart bool
	inHeading   bool
	// singleLine is set while writing a heading or table cell.
	singleLine bool
	// lastDelim is the emphasis-like delimiter written last, if any,
	// and lastOpened reports whether it opened a span.
	lastDelim  string
	lastOpened bool
	// trailingEquals is set when the last text written ends in an unescaped '='.
	trailingEquals bool
}

// write writes s to the current line.
func (f *formatter) write(s string) {
	if s == "" {
		return
	}
	if f.atLineStart {
		f.w.WriteString(f.prefix)
		f.atLineStart = false
	}
	f.w.WriteString(s)
}

// newline ends the current line.
// Ending an empty line writes the prefix without trailing spaces.
func (f *formatter) newline() {
	if f.atLineStart {
		f.w.WriteString(strings.TrimRight(f.prefix, " "))
	}
	f.w.WriteString("\n")
	f.atLineStart = true
	f.setDelim("", false)
}

// blocks writes the block children of parent separated by blank lines.
func (f *formatter) blocks(parent *chatmark.Block) {
	n := 0
	for i := 0; i < parent.ChildCount(); i++ {
		b := parent.Child(i).Block()
		if b == nil {
			continue
		}
		if n > 0 {
			f.newline()
			f.newline()
		}
		f.block(b)
		n++
	}
}

func (f *formatter) block(b *chatmark.Block) {
	switch b.Kind() {
	case chatmark.ParagraphKind:
		f.inlines(b)
	case chatmark.HeadingKind:
		f.write(strings.Repeat("#", b.HeadingLevel()) + " ")
		f.inHeading, f.singleLine = true, true
		f.inlines(b)
		f.inHeading, f.singleLine = false, false
	case chatmark.ThematicBreakKind:
		f.write("---")
	case chatmark.CodeBlockKind:
		f.codeBlock(b)
	case chatmark.BlockQuoteKind:
		if b.ChildCount() == 0 {
			f.write(">")
			return
		}
		oldPrefix := f.prefix
		f.prefix += "> "
		f.blocks(b)
		f.prefix = oldPrefix
	case chatmark.ListKind:
		f.list(b)
	case chatmark.TableKind:
		f.table(b)
	case chatmark.AbbreviationDefinitionKind:
		abbr, title := b.Abbreviation()
		f.write("*[" + abbr + "]: " + title)
	}
}

func (f *formatter) codeBlock(b *chatmark.Block) {
	code := b.Code()
	fence := strings.Repeat("`", max(3, longestRun(code, '`')+1))
	f.write(fence + b.Language())
	if code != "" {
		for _, line := range strings.Split(code, "\n") {
			f.newline()
			f.write(line)
		}
	}
	f.newline()
	f.write(fence)
}

func (f *formatter) list(b *chatmark.Block) {
	start := b.ListStart()
	for i := 0; i < b.ChildCount(); i++ {
		item := b.Child(i).Block()
		if item == nil {
			continue
		}
		if i > 0 {
			f.newline()
		}
		marker := "-"
		if start >= 0 {
			marker = strconv.Itoa(start+i) + "."
		}
		f.listItem(item, marker)
	}
}

func (f *formatter) listItem(item *chatmark.Block, marker string) {
	f.write(marker + " ")
	switch item.Task() {
	case chatmark.TaskOpen:
		f.write("[ ]")
	case chatmark.TaskDone:
		f.write("[x]")
	}
	oldPrefix := f.prefix
	f.prefix += strings.Repeat(" ", len(marker)+1)
	for i := 0; i < item.ChildCount(); i++ {
		child := item.Child(i).Block()
		if child == nil {
			continue
		}
		switch child.Kind() {
		case chatmark.ParagraphKind:
			if item.Task() != chatmark.NotTask {
				f.write(" ")
			}
			f.inlines(child)
		case chatmark.ListKind:
			f.newline()
			f.list(child)
		}
	}
	f.prefix = oldPrefix
}

func (f *formatter) table(b *chatmark.Block) {
	width := 0
	for i := 0; i < b.ChildCount(); i++ {
		row := b.Child(i).Block()
		if row == nil {
			continue
		}
		width = max(width, row.ChildCount())
		if i > 0 {
			f.newline()
		}
		f.tableRow(row, width)
		if row.IsHeaderRow() {
			f.newline()
			f.tableSeparator(b, width)
		}
	}
}

func (f *formatter) tableRow(row *chatmark.Block, width int) {
	f.write("|")
	for col := 0; col < width; col++ {
		f.write(" ")
		if col < row.ChildCount() {
			if cell := row.Child(col).Block(); cell != nil {
				f.singleLine = true
				f.inlines(cell)
				f.singleLine = false
			}
		}
		f.write(" |")
	}
}

func (f *formatter) tableSeparator(b *chatmark.Block, width int) {
	f.write("|")
	for col := 0; col < width; col++ {
		switch b.Alignment(col) {
		case chatmark.AlignLeft:
			f.write(" :--- |")
		case chatmark.AlignCenter:
			f.write(" :---: |")
		case chatmark.AlignRight:
			f.write(" ---: |")
		default:
			f.write(" --- |")
		}
	}
}

// inlines writes the inline children of a leaf block.
func (f *formatter) inlines(parent *chatmark.Block) {
	var list []*chatmark.Inline
	for i := 0; i < parent.ChildCount(); i++ {
		if inline := parent.Child(i).Inline(); inline != nil {
			list = append(list, inline)
		}
	}
	f.inlineList(list)
}

func (f *formatter) inlineChildren(parent *chatmark.Inline) {
	list := make([]*chatmark.Inline, parent.ChildCount())
	for i := range list {
		list[i] = parent.Child(i)
	}
	f.inlineList(list)
}

func (f *formatter) inlineList(list []*chatmark.Inline) {
	for i, inline := range list {
		var next *chatmark.Inline
		if i+1 < len(list) {
			next = list[i+1]
		}
		f.inline(inline, next)
	}
}

func (f *formatter) inline(inline, next *chatmark.Inline) {
	switch inline.Kind() {
	case chatmark.TextKind, chatmark.AbbreviationKind:
		s := escapeText(inline.Text(), f.atLineStart, f.inHeading)
		if strings.HasPrefix(s, "=") && strings.HasSuffix(f.lastDelim, "=") {
			s = `\` + s
		}
		if next != nil && next.Kind() == chatmark.LinkKind && strings.HasSuffix(s, "!") {
			s = s[:len(s)-1] + `\!`
		}
		f.write(s)
		f.setDelim("", false)
		f.trailingEquals = strings.HasSuffix(s, "=") && !strings.HasSuffix(s, `\=`)
		return
	case chatmark.LineBreakKind:
		if f.singleLine || f.atLineStart || next == nil {
			f.write("<br>")
		} else {
			f.newline()
		}
	case chatmark.EmphasisKind, chatmark.StrongKind, chatmark.StrikethroughKind,
		chatmark.SubscriptKind, chatmark.SuperscriptKind, chatmark.MarkKind:
		f.delimited(inline)
		return
	case chatmark.CodeSpanKind:
		f.write(codeSpan(inline.Text()))
	case chatmark.KeyboardKind:
		f.write("<kbd>" + inline.Text() + "</kbd>")
	case chatmark.LinkKind:
		f.write("[")
		f.setDelim("", false)
		f.inlineChildren(inline)
		f.write("](" + linkTarget(inline.LinkDestination(), inline.LinkTitle()) + ")")
	case chatmark.ImageKind:
		f.write("![" + escapeText(inline.Text(), false, false) + "](" +
			linkTarget(inline.LinkDestination(), inline.LinkTitle()) + ")")
	case chatmark.AutolinkKind:
		f.write("<" + inline.Text() + ">")
	}
	f.setDelim("", false)
}

// delimiters maps the inline kinds that wrap their children
// to their markup delimiter and equivalent HTML tag.
var delimiters = map[chatmark.InlineKind]struct{ delim, tag string }{
	chatmark.EmphasisKind:      {"*", "em"},
	chatmark.StrongKind:        {"**", "strong"},
	chatmark.StrikethroughKind: {"~~", "del"},
	chatmark.SubscriptKind:     {"~", "sub"},
	chatmark.SuperscriptKind:   {"^", "sup"},
	chatmark.MarkKind:          {"==", "mark"},
}

// delimited writes an inline that wraps its children.
// When the delimiter would run into an adjacent delimiter of the same character,
// the HTML tag is written instead.
func (f *formatter) delimited(inline *chatmark.Inline) {
	d := delimiters[inline.Kind()]
	useTag := inline.ChildCount() == 0 ||
		clashes(f.lastDelim, d.delim, f.lastOpened) ||
		d.delim == "==" && f.trailingEquals
	if !useTag {
		last := inline.Child(inline.ChildCount() - 1)
		if ld, ok := delimiters[last.Kind()]; ok && clashes(ld.delim, d.delim, true) {
			useTag = true
		}
	}
	if useTag {
		f.write("<" + d.tag + ">")
		f.setDelim("", false)
		f.inlineChildren(inline)
		f.write("</" + d.tag + ">")
		f.setDelim("", false)
		return
	}
	f.write(d.delim)
	f.setDelim(d.delim, true)
	f.inlineChildren(inline)
	f.write(d.delim)
	f.setDelim(d.delim, false)
}

func (f *formatter) setDelim(delim string, opened bool) {
	f.lastDelim = delim
	f.lastOpened = opened
	f.trailingEquals = false
}

// clashes reports whether delimiter b written directly after delimiter a
// would be read as a different run.
// nested is true when both are openers or both are closers:
// strong and emphasis then combine into a run of three and parse back unchanged.
func clashes(a, b string, nested bool) bool {
	if a == "" || a[0] != b[0] {
		return false
	}
	return !nested || !(a == "*" && b == "**" || a == "**" && b == "*")
}

// alwaysEscaped is the set of characters that can start inline syntax
// anywhere in a line.
const alwaysEscaped = "\\`*_[]<~^|"

// escapeText backslash-escapes the characters in s
// that would otherwise be read as markup.
// lineStart reports whether s begins a line,
// where more characters can start a block.
func escapeText(s string, lineStart, heading bool) string {
	sb := new(strings.Builder)
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		atStart := lineStart && i == 0
		switch {
		case strings.IndexByte(alwaysEscaped, c) >= 0:
			sb.WriteByte('\\')
		case c == '=' && (i > 0 && s[i-1] == '=' || i+1 < len(s) && s[i+1] == '='):
			sb.WriteByte('\\')
		case c == '#' && (heading || atStart):
			sb.WriteByte('\\')
		case atStart && (c == '>' || c == '-' || c == '+'):
			sb.WriteByte('\\')
		case lineStart && c == '.' && isNumberPrefix(s[:i]):
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// isNumberPrefix reports whether s could be the number of an ordered list item.
func isNumberPrefix(s string) bool {
	if len(s) == 0 || len(s) > 9 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// codeSpan returns a code span whose content is s.
// The backtick fence is longer than any run of backticks in s.
func codeSpan(s string) string {
	fence := strings.Repeat("`", longestRun(s, '`')+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") ||
		(len(s) >= 2 && s[0] == ' ' && s[len(s)-1] == ' ' && strings.Trim(s, " ") != "") {
		s = " " + s + " "
	}
	return fence + s + fence
}

func linkTarget(dest, title string) string {
	dest = chatmark.NormalizeURI(dest)
	if title == "" {
		return dest
	}
	quote := `"`
	if strings.Contains(title, `"`) {
		quote = "'"
	}
	return dest + " " + quote + title + quote
}

// longestRun returns the length of the longest run of c in s.
func longestRun(s string, c byte) int {
	longest, n := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] != c {
			n = 0
			continue
		}
		n++
		longest = max(longest, n)
	}
	return longest
}

// errWriter wraps an io.Writer and remembers the first error.
// Writes after an error are no-ops.
type errWriter struct {
	w          io.Writer
	hasWritten bool
	err        error
}

func (ew *errWriter) WriteString(s string) {
	if ew.err != nil || s == "" {
		return
	}
	ew.hasWritten = true
	_, ew.err = io.WriteString(ew.w, s)
}
