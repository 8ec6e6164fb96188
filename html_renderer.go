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
	"io"
	"strconv"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html/atom"
	"zombiezen.com/go/chatmark/highlight"
)

// DefaultOutlineTitle is the heading of the table of contents
// when [HTMLRenderer.OutlineTitle] is empty.
const DefaultOutlineTitle = "Table of Contents"

// An HTMLRenderer converts parsed documents into HTML.
//
// # Security considerations
//
// The renderer never copies markup from its input:
// every element in the output is produced by the renderer itself
// and all text and attribute values are escaped.
// Links and images with schemes other than http, https, ftp, mailto or tel
// (such as javascript: or data:) are rendered as plain text.
// Set Policy to additionally filter the output through an HTML sanitizer.
type HTMLRenderer struct {
	// IDPrefix is prepended to every id attribute and fragment link
	// so that several messages can share a page.
	IDPrefix string
	// OutlineMinHeadings is the number of headings a document needs
	// before a table of contents is inserted after its first heading.
	// Zero means 2. A negative value disables the table of contents.
	OutlineMinHeadings int
	// OutlineTitle is the title of the table of contents.
	// If empty, DefaultOutlineTitle is used.
	OutlineTitle string
	// Languages holds the syntax highlighters for code blocks.
	// If nil, highlight.Default() is used.
	Languages *highlight.Registry
	// If Policy is not nil, the rendered HTML is passed through it.
	Policy *bluemonday.Policy
	// If NoExternalLinkIcon is true,
	// links to other sites are rendered without the trailing icon.
	NoExternalLinkIcon bool
}

// Render converts text into HTML using the default options for [HTMLRenderer].
func Render(text string) string {
	return new(HTMLRenderer).RenderString(text)
}

// RenderString parses and renders text.
// It never fails: if rendering panics,
// the escaped text is returned in a single paragraph.
func (r *HTMLRenderer) RenderString(text string) (html string) {
	defer func() {
		if v := recover(); v != nil {
			logf("render: %v", v)
			dst := []byte("<p>")
			dst = appendEscaped(dst, text)
			dst = append(dst, "</p>\n"...)
			html = string(dst)
		}
	}()
	return string(r.AppendDocument(nil, Parse([]byte(text))))
}

// Render writes the parsed document to the given writer as HTML.
func (r *HTMLRenderer) Render(w io.Writer, doc *Document) error {
	if _, err := w.Write(r.AppendDocument(nil, doc)); err != nil {
		return fmt.Errorf("render message to html: %w", err)
	}
	return nil
}

// AppendDocument appends the rendered HTML of a parsed document to dst
// and returns the resulting byte slice.
func (r *HTMLRenderer) AppendDocument(dst []byte, doc *Document) []byte {
	start := len(dst)
	state := &renderState{
		HTMLRenderer: r,
		dst:          dst,
		languages:    r.Languages,
		outline:      Outline(doc),
		headingIDs:   make(map[*Block]string),
	}
	if state.languages == nil {
		state.languages = highlight.Default()
	}
	for _, h := range state.outline {
		state.headingIDs[h.block] = r.IDPrefix + h.Slug
	}
	minHeadings := r.OutlineMinHeadings
	if minHeadings == 0 {
		minHeadings = 2
	}
	state.outlinePending = minHeadings > 0 && len(state.outline) >= minHeadings
	state.children(&doc.Block, false)

	if r.Policy != nil {
		sanitized := r.Policy.SanitizeBytes(state.dst[start:])
		state.dst = append(state.dst[:start], sanitized...)
	}
	return state.dst
}

type renderState struct {
	*HTMLRenderer
	dst            []byte
	languages      *highlight.Registry
	outline        []HeadingEntry
	outlinePending bool
	headingIDs     map[*Block]string
	codeBlocks     int
}

func (r *renderState) openTagAttr(name atom.Atom) {
	r.dst = append(r.dst, '<')
	r.dst = append(r.dst, name.String()...)
}

func (r *renderState) openTag(name atom.Atom) {
	r.openTagAttr(name)
	r.dst = append(r.dst, '>')
}

func (r *renderState) openTagClass(name atom.Atom, class string) {
	r.openTagAttr(name)
	r.attr("class", class)
	r.dst = append(r.dst, '>')
}

func (r *renderState) closeTag(name atom.Atom) {
	r.dst = append(r.dst, "</"...)
	r.dst = append(r.dst, name.String()...)
	r.dst = append(r.dst, '>')
}

// attr appends an attribute with an escaped value.
func (r *renderState) attr(name, value string) {
	r.dst = append(r.dst, ' ')
	r.dst = append(r.dst, name...)
	r.dst = append(r.dst, `="`...)
	r.dst = appendEscaped(r.dst, value)
	r.dst = append(r.dst, '"')
}

var headingTags = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func (r *renderState) block(block *Block) {
	switch block.Kind() {
	case ParagraphKind:
		r.openTag(atom.P)
		r.inlines(block.inlineChildren)
		r.closeTag(atom.P)
	case HeadingKind:
		tagName := headingTags[min(max(block.HeadingLevel(), 1), 6)-1]
		r.openTagAttr(tagName)
		if id, ok := r.headingIDs[block]; ok {
			r.attr("id", id)
		}
		r.dst = append(r.dst, '>')
		r.inlines(block.inlineChildren)
		r.closeTag(tagName)
		if r.outlinePending {
			r.outlinePending = false
			r.dst = append(r.dst, '\n')
			r.tableOfContents()
		}
	case ThematicBreakKind:
		r.openTagClass(atom.Hr, "markdown-hr")
	case CodeBlockKind:
		r.codeBlock(block)
	case BlockQuoteKind:
		r.openTagClass(atom.Blockquote, "markdown-blockquote")
		r.dst = append(r.dst, '\n')
		r.children(block, false)
		r.closeTag(atom.Blockquote)
	case ListKind:
		tagName := atom.Ul
		if block.ListMarker() == OrderedMarker {
			tagName = atom.Ol
		}
		r.openTagAttr(tagName)
		if n := block.ListStart(); n >= 0 && n != 1 {
			r.attr("start", strconv.Itoa(n))
		}
		r.dst = append(r.dst, ">\n"...)
		r.children(block, false)
		r.closeTag(tagName)
	case ListItemKind:
		if task := block.Task(); task != NotTask {
			r.openTagClass(atom.Li, "task-item")
			r.openTagAttr(atom.Input)
			r.attr("type", "checkbox")
			if task == TaskDone {
				r.dst = append(r.dst, " checked"...)
			}
			r.dst = append(r.dst, " disabled>"...)
			if len(block.blockChildren) > 0 {
				r.dst = append(r.dst, ' ')
			}
		} else {
			r.openTag(atom.Li)
		}
		r.children(block, true)
		r.closeTag(atom.Li)
	case TableKind:
		r.table(block)
	}
}

// children renders the child blocks of parent, each followed by a newline.
// Paragraphs in tight containers are rendered without their tags.
func (r *renderState) children(parent *Block, tight bool) {
	for _, c := range parent.blockChildren {
		switch {
		case c.Kind() == AbbreviationDefinitionKind:
			continue
		case tight && c.Kind() == ParagraphKind:
			r.inlines(c.inlineChildren)
		default:
			r.block(c)
			r.dst = append(r.dst, '\n')
		}
	}
}

func (r *renderState) tableOfContents() {
	title := r.OutlineTitle
	if title == "" {
		title = DefaultOutlineTitle
	}
	r.openTagClass(atom.Nav, "table-of-contents")
	r.openTagClass(atom.Div, "toc-title")
	r.dst = appendEscaped(r.dst, title)
	r.closeTag(atom.Div)
	r.openTagClass(atom.Ul, "toc-list")
	for _, h := range r.outline {
		r.openTagClass(atom.Li, "toc-item toc-level-"+strconv.Itoa(h.Level))
		r.openTagAttr(atom.A)
		r.attr("href", "#"+r.IDPrefix+h.Slug)
		r.dst = append(r.dst, '>')
		r.dst = appendEscaped(r.dst, h.Title)
		r.closeTag(atom.A)
		r.closeTag(atom.Li)
	}
	r.closeTag(atom.Ul)
	r.closeTag(atom.Nav)
}

func (r *renderState) codeBlock(block *Block) {
	r.codeBlocks++
	id := r.IDPrefix + "code-" + strconv.Itoa(r.codeBlocks)
	lang := block.Language()
	if lang == "" {
		lang = "text"
	}

	r.openTagClass(atom.Div, "code-block-container")
	r.openTagClass(atom.Div, "code-header")
	r.openTagClass(atom.Span, "language")
	r.dst = appendEscaped(r.dst, lang)
	r.closeTag(atom.Span)
	r.openTagAttr(atom.Button)
	r.attr("class", "copy-btn")
	r.attr("type", "button")
	r.attr("data-copy-target", id)
	r.attr("aria-label", "Copy code")
	r.dst = append(r.dst, ">Copy"...)
	r.closeTag(atom.Button)
	r.closeTag(atom.Div)

	r.openTag(atom.Pre)
	r.openTagAttr(atom.Code)
	r.attr("class", "language-"+lang)
	r.attr("id", id)
	r.dst = append(r.dst, '>')
	code := block.Code()
	for _, tok := range tokenize(r.languages.Lookup(block.Language()), code) {
		if tok.Class == highlight.Plain {
			r.dst = appendEscaped(r.dst, tok.Text)
			continue
		}
		r.openTagClass(atom.Span, tok.Class.String())
		r.dst = appendEscaped(r.dst, tok.Text)
		r.closeTag(atom.Span)
	}
	r.closeTag(atom.Code)
	r.closeTag(atom.Pre)
	r.closeTag(atom.Div)
}

// tokenize runs a tokenizer, falling back to a single plain token
// if the tokenizer panics or does not account for every byte of the code.
func tokenize(t highlight.Tokenizer, code string) (tokens []highlight.Token) {
	defer func() {
		if v := recover(); v != nil {
			logf("highlight: %v", v)
			tokens = highlight.Identity.Tokenize(code)
		}
	}()
	tokens = t.Tokenize(code)
	n := 0
	for _, tok := range tokens {
		n += len(tok.Text)
	}
	if n != len(code) {
		logf("highlight: tokens cover %d of %d bytes", n, len(code))
		return highlight.Identity.Tokenize(code)
	}
	return tokens
}

func (r *renderState) table(block *Block) {
	r.openTagClass(atom.Div, "table-container")
	r.openTagClass(atom.Table, "markdown-table")
	rows := block.blockChildren
	if len(rows) > 0 && rows[0].IsHeaderRow() {
		r.openTag(atom.Thead)
		r.tableRow(block, rows[0], atom.Th)
		r.closeTag(atom.Thead)
		rows = rows[1:]
	}
	if len(rows) > 0 {
		r.openTag(atom.Tbody)
		for _, row := range rows {
			r.tableRow(block, row, atom.Td)
		}
		r.closeTag(atom.Tbody)
	}
	r.closeTag(atom.Table)
	r.closeTag(atom.Div)
}

var alignmentClasses = [...]string{
	AlignLeft:   "align-left",
	AlignCenter: "align-center",
	AlignRight:  "align-right",
}

func (r *renderState) tableRow(table, row *Block, cellTag atom.Atom) {
	r.openTag(atom.Tr)
	for i, cell := range row.blockChildren {
		r.openTagAttr(cellTag)
		if align := table.Alignment(i); align != AlignNone {
			r.attr("class", alignmentClasses[align])
		}
		r.dst = append(r.dst, '>')
		r.inlines(cell.inlineChildren)
		r.closeTag(cellTag)
	}
	r.closeTag(atom.Tr)
}

func (r *renderState) inlines(nodes []*Inline) {
	for _, node := range nodes {
		r.inline(node)
	}
}

func (r *renderState) inline(inline *Inline) {
	switch inline.Kind() {
	case TextKind, UnparsedKind:
		r.dst = appendEscaped(r.dst, inline.text)
	case LineBreakKind:
		r.dst = append(r.dst, "<br>\n"...)
	case EmphasisKind:
		r.wrapped(atom.Em, inline)
	case StrongKind:
		r.wrapped(atom.Strong, inline)
	case StrikethroughKind:
		r.wrapped(atom.Del, inline)
	case SubscriptKind:
		r.wrapped(atom.Sub, inline)
	case SuperscriptKind:
		r.wrapped(atom.Sup, inline)
	case MarkKind:
		r.wrapped(atom.Mark, inline)
	case CodeSpanKind:
		r.openTagClass(atom.Code, "inline-code")
		r.dst = appendEscaped(r.dst, inline.text)
		r.closeTag(atom.Code)
	case KeyboardKind:
		r.openTagClass(atom.Kbd, "keyboard-key")
		r.dst = appendEscaped(r.dst, inline.text)
		r.closeTag(atom.Kbd)
	case AbbreviationKind:
		r.openTagAttr(atom.Abbr)
		r.attr("title", inline.title)
		r.dst = append(r.dst, '>')
		r.dst = appendEscaped(r.dst, inline.text)
		r.closeTag(atom.Abbr)
	case LinkKind:
		r.link(inline)
	case AutolinkKind:
		if classifyLink(inline.text) != externalTarget {
			r.dst = appendEscaped(r.dst, inline.text)
			return
		}
		r.openTagAttr(atom.A)
		r.attr("href", NormalizeURI(inline.text))
		r.externalLinkAttrs("auto-link")
		r.dst = appendEscaped(r.dst, inline.text)
		r.externalLinkIcon()
		r.closeTag(atom.A)
	case ImageKind:
		r.image(inline)
	}
}

func (r *renderState) wrapped(tagName atom.Atom, inline *Inline) {
	r.openTag(tagName)
	r.inlines(inline.children)
	r.closeTag(tagName)
}

func (r *renderState) link(inline *Inline) {
	target := classifyLink(inline.destination)
	if target == unsafeTarget {
		r.inlines(inline.children)
		return
	}
	r.openTagAttr(atom.A)
	r.attr("href", NormalizeURI(inline.destination))
	if inline.title != "" {
		r.attr("title", inline.title)
	}
	if target == localTarget {
		r.dst = append(r.dst, '>')
		r.inlines(inline.children)
		r.closeTag(atom.A)
		return
	}
	r.externalLinkAttrs("external-link")
	r.inlines(inline.children)
	r.externalLinkIcon()
	r.closeTag(atom.A)
}

// externalLinkAttrs finishes an open tag for a link to another site.
func (r *renderState) externalLinkAttrs(class string) {
	r.attr("target", "_blank")
	r.attr("rel", "noopener noreferrer")
	r.attr("class", class)
	r.dst = append(r.dst, '>')
}

func (r *renderState) externalLinkIcon() {
	if r.NoExternalLinkIcon {
		return
	}
	r.dst = append(r.dst, ' ')
	r.openTagClass(atom.I, "fas fa-external-link-alt")
	r.closeTag(atom.I)
}

func (r *renderState) image(inline *Inline) {
	if !isSafeImageSource(inline.destination) {
		r.dst = appendEscaped(r.dst, inline.text)
		return
	}
	r.openTagClass(atom.Span, "image-container")
	r.openTagAttr(atom.Img)
	r.attr("src", NormalizeURI(inline.destination))
	r.attr("alt", inline.text)
	if inline.title != "" {
		r.attr("title", inline.title)
	}
	r.attr("loading", "lazy")
	r.attr("class", "markdown-image")
	r.dst = append(r.dst, '>')
	if inline.text != "" {
		r.openTagClass(atom.Span, "image-caption")
		r.dst = appendEscaped(r.dst, inline.text)
		r.closeTag(atom.Span)
	}
	r.closeTag(atom.Span)
}
