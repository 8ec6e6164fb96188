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
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxInlineNesting is the deepest that links and honored HTML tags are parsed.
const maxInlineNesting = 16

// An InlineParser converts [UnparsedKind] [Inline] nodes
// into inline trees.
type InlineParser struct {
	// Abbreviations are wrapped wherever they appear as whole words in text.
	Abbreviations AbbreviationMap
}

// Rewrite replaces any [UnparsedKind] nodes in the given block and its descendants
// with parsed versions of the node.
func (p *InlineParser) Rewrite(root *Block) {
	am := newAbbreviationMatcher(p.Abbreviations)
	Walk(root.AsNode(), &WalkOptions{
		BlocksOnly: true,
		Pre: func(c *Cursor) bool {
			b := c.Node().Block()
			if !hasUnparsed(b) {
				return true
			}
			var parsed []*Inline
			for _, inline := range b.inlineChildren {
				if inline.Kind() == UnparsedKind {
					parsed = append(parsed, p.parseAll(inline.text, am)...)
				} else {
					parsed = append(parsed, inline)
				}
			}
			b.inlineChildren = parsed
			return true
		},
	})
}

// Parse parses text into a sequence of inline nodes.
func (p *InlineParser) Parse(text string) []*Inline {
	return p.parseAll(text, newAbbreviationMatcher(p.Abbreviations))
}

func (p *InlineParser) parseAll(text string, am *abbreviationMatcher) []*Inline {
	return finishInlines(p.parse(text, false, 0), am)
}

type inlineState struct {
	text       string
	plainStart int
	inLink     bool
	depth      int
	nodes      []*Inline
	stack      []delimiterStackElement
	scan       *inlineScanner
}

func (p *InlineParser) parse(text string, inLink bool, depth int) []*Inline {
	state := &inlineState{
		text:   text,
		inLink: inLink,
		depth:  depth,
		scan:   &inlineScanner{text: text},
	}
	for pos := 0; pos < len(text); {
		switch c := text[pos]; {
		case c == '\\':
			pos = p.parseBackslash(state, pos)
		case c == '`':
			pos = p.parseCodeSpan(state, pos)
		case c == '*' || c == '_' || c == '~' || c == '^' || c == '=':
			pos = p.parseDelimiterRun(state, pos)
		case c == '!' && pos+1 < len(text) && text[pos+1] == '[':
			pos = p.parseImage(state, pos)
		case c == '[':
			pos = p.parseLink(state, pos)
		case c == '<':
			pos = p.parseAngle(state, pos)
		case c == 'h' || c == 'H':
			pos = p.parseBareAutolink(state, pos)
		case c == '\n':
			state.flush(pos)
			state.add(&Inline{kind: LineBreakKind})
			pos++
			state.plainStart = pos
		default:
			pos++
		}
	}
	state.flush(len(text))
	return p.processEmphasis(state)
}

// flush adds the plain text accumulated before pos.
func (state *inlineState) flush(pos int) {
	if state.plainStart < pos {
		state.add(&Inline{
			kind: TextKind,
			text: state.text[state.plainStart:pos],
		})
	}
	state.plainStart = pos
}

// emit adds a node that was parsed from text[pos:end].
func (state *inlineState) emit(pos, end int, node *Inline) int {
	state.flush(pos)
	state.add(node)
	state.plainStart = end
	return end
}

// escapableChars is the set of characters that a backslash makes literal.
const escapableChars = "\\`*_{}[]<>#+-.!|~^="

func (p *InlineParser) parseBackslash(state *inlineState, start int) (end int) {
	if start+1 >= len(state.text) || strings.IndexByte(escapableChars, state.text[start+1]) < 0 {
		return start + 1
	}
	return state.emit(start, start+2, &Inline{
		kind: TextKind,
		text: state.text[start+1 : start+2],
	})
}

func (p *InlineParser) parseCodeSpan(state *inlineState, start int) (end int) {
	n := backtickRunLength(state.text[start:])
	contentStart := start + n
	contentEnd := state.scan.closingRun(contentStart, n)
	if contentEnd < 0 {
		// Advance past literal backtick string.
		return contentStart
	}
	return state.emit(start, contentEnd+n, &Inline{
		kind: CodeSpanKind,
		text: codeSpanContent(state.text[contentStart:contentEnd]),
	})
}

// codeSpanContent converts line endings to spaces
// and strips a single space from each side of the content
// if both sides have one.
func codeSpanContent(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) >= 2 && s[0] == ' ' && s[len(s)-1] == ' ' && strings.Trim(s, " ") != "" {
		s = s[1 : len(s)-1]
	}
	return s
}

func (p *InlineParser) parseDelimiterRun(state *inlineState, start int) (end int) {
	c := state.text[start]
	end = start + 1
	for end < len(state.text) && state.text[end] == c {
		end++
	}
	elem := delimiterStackElement{
		typ:   delimiterTypes[c],
		flags: emphasisFlags(state.text, start, end),
		n:     end - start,
	}
	switch elem.typ {
	case inlineDelimiterTilde:
		if elem.n > 2 {
			return end
		}
	case inlineDelimiterCaret:
		if elem.n != 1 {
			return end
		}
	case inlineDelimiterEquals:
		if elem.n != 2 {
			return end
		}
	}
	elem.node = &Inline{
		kind: TextKind,
		text: state.text[start:end],
	}
	state.emit(start, end, elem.node)
	state.stack = append(state.stack, elem)
	return end
}

// emphasisFlags determines whether the given delimiter run
// can open and/or close a span.
// Underscores follow stricter rules so that snake_case words stay intact.
func emphasisFlags(text string, start, end int) uint8 {
	var flags uint8
	prevChar := ' '
	if start > 0 {
		prevChar, _ = utf8.DecodeLastRuneInString(text[:start])
	}
	nextChar := ' '
	if end < len(text) {
		nextChar, _ = utf8.DecodeRuneInString(text[end:])
	}
	leftFlanking := !isUnicodeWhitespace(nextChar) &&
		(!isUnicodePunctuation(nextChar) || isUnicodeWhitespace(prevChar) || isUnicodePunctuation(prevChar))
	rightFlanking := !isUnicodeWhitespace(prevChar) &&
		(!isUnicodePunctuation(prevChar) || isUnicodeWhitespace(nextChar) || isUnicodePunctuation(nextChar))
	notUnderscore := text[start] != '_'
	if leftFlanking && (notUnderscore || !rightFlanking || isUnicodePunctuation(prevChar)) {
		flags |= openerFlag
	}
	if rightFlanking && (notUnderscore || !leftFlanking || isUnicodePunctuation(nextChar)) {
		flags |= closerFlag
	}
	return flags
}

// processEmphasis matches delimiter runs, working from the innermost closers outward,
// and returns the parsed nodes with the matched spans built around them.
// The delimiter stack is a linked list so that dropping a delimiter is constant time.
func (p *InlineParser) processEmphasis(state *inlineState) []*Inline {
	stack := state.stack
	if len(stack) == 0 {
		return state.nodes
	}
	for i := range stack {
		stack[i].prev = i - 1
		stack[i].next = i + 1
	}
	stack[len(stack)-1].next = -1
	unlink := func(i int) {
		if prev := stack[i].prev; prev >= 0 {
			stack[prev].next = stack[i].next
		}
		if next := stack[i].next; next >= 0 {
			stack[next].prev = stack[i].prev
		}
	}

	var openersBottom [openersBottomCount]int
	for current := 0; current >= 0; {
		closer := &stack[current]
		if closer.flags&closerFlag == 0 {
			current = closer.next
			continue
		}

		// Look back for the first matching opener
		// above the openers bottom for this delimiter type.
		bottom := &openersBottom[closer.openersBottomIndex()]
		openerIndex := closer.prev
		for openerIndex >= *bottom && !isDelimiterMatch(stack[openerIndex], *closer) {
			openerIndex = stack[openerIndex].prev
		}
		if openerIndex < *bottom {
			// There are no openers for this kind of closer up to this point,
			// so put a lower bound on future searches.
			*bottom = current
			next := closer.next
			if closer.flags&openerFlag == 0 {
				unlink(current)
			}
			current = next
			continue
		}

		opener := &stack[openerIndex]
		switch typ := closer.typ; {
		case typ == inlineDelimiterStar || typ == inlineDelimiterUnderscore:
			switch on, cn := len(opener.node.text), len(closer.node.text); {
			case on >= 3 && cn >= 3:
				pairDelimiters(opener, closer, 3, EmphasisKind, StrongKind)
			case on >= 2 && cn >= 2:
				pairDelimiters(opener, closer, 2, StrongKind)
			default:
				pairDelimiters(opener, closer, 1, EmphasisKind)
			}
		case typ == inlineDelimiterTilde && len(closer.node.text) == 2:
			pairDelimiters(opener, closer, 2, StrikethroughKind)
		case typ == inlineDelimiterTilde:
			pairDelimiters(opener, closer, 1, SubscriptKind)
		case typ == inlineDelimiterCaret:
			pairDelimiters(opener, closer, 1, SuperscriptKind)
		case typ == inlineDelimiterEquals:
			pairDelimiters(opener, closer, 2, MarkKind)
		}

		// Delimiters between the opener and closer can no longer match.
		opener.next = current
		closer.prev = openerIndex

		if opener.node.text == "" {
			unlink(openerIndex)
		}
		if closer.node.text == "" {
			next := closer.next
			unlink(current)
			current = next
		}
	}
	return buildSpans(state.nodes, stack)
}

// pairDelimiters records spans of the given kinds, innermost first,
// between an opener and a closer and consumes n characters from each.
func pairDelimiters(opener, closer *delimiterStackElement, n int, kinds ...InlineKind) {
	consumeDelimiters(opener.node, closer.node, n)
	opener.opens = append(opener.opens, kinds...)
	closer.closes = append(closer.closes, kinds...)
}

// buildSpans nests nodes inside the spans recorded on the delimiter stack.
// Delimiter runs that were used up are dropped.
func buildSpans(nodes []*Inline, stack []delimiterStackElement) []*Inline {
	root := new(Inline)
	open := []*Inline{root}
	k := 0
	for _, node := range nodes {
		parent := open[len(open)-1]
		if k >= len(stack) || stack[k].node != node {
			parent.children = append(parent.children, node)
			continue
		}
		elem := &stack[k]
		k++
		open = open[:len(open)-len(elem.closes)]
		parent = open[len(open)-1]
		if node.text != "" {
			parent.children = append(parent.children, node)
		}
		for i := len(elem.opens) - 1; i >= 0; i-- {
			span := &Inline{kind: elem.opens[i]}
			parent.children = append(parent.children, span)
			open = append(open, span)
			parent = span
		}
	}
	return root.children
}

// consumeDelimiters removes n delimiter characters
// from the inner side of both delimiter runs.
func consumeDelimiters(opener, closer *Inline, n int) {
	opener.text = opener.text[:len(opener.text)-n]
	closer.text = closer.text[n:]
}

func (p *InlineParser) parseImage(state *inlineState, start int) (end int) {
	if state.depth >= maxInlineNesting {
		return start + 1
	}
	link, ok := state.scan.inlineLink(start + 1)
	if !ok {
		return start + 1
	}
	alt := plainText(p.parse(link.label, true, state.depth+1))
	return state.emit(start, link.end, &Inline{
		kind:        ImageKind,
		text:        alt,
		destination: link.destination,
		title:       link.title,
	})
}

func (p *InlineParser) parseLink(state *inlineState, start int) (end int) {
	if state.inLink || state.depth >= maxInlineNesting {
		return start + 1
	}
	link, ok := state.scan.inlineLink(start)
	if !ok {
		return start + 1
	}
	return state.emit(start, link.end, &Inline{
		kind:        LinkKind,
		destination: link.destination,
		title:       link.title,
		children:    p.parse(link.label, true, state.depth+1),
	})
}

// parseAngle handles autolinks in angle brackets
// and the HTML tags that are honored in text.
// Any other '<' is literal text.
func (p *InlineParser) parseAngle(state *inlineState, start int) (end int) {
	rest := state.text[start:]
	if n := parseAngleAutolink(rest); n > 0 && !state.inLink {
		return state.emit(start, start+n, &Inline{
			kind: AutolinkKind,
			text: rest[1 : n-1],
		})
	}
	tag, ok := parseHTMLTag(rest)
	if !ok || tag.closing {
		return start + 1
	}
	kind, ok := inlineTagKinds[tag.name]
	if !ok {
		return start + 1
	}
	if kind == LineBreakKind {
		return state.emit(start, start+tag.end, &Inline{kind: LineBreakKind})
	}
	contentStart := start + tag.end
	closeStart, closeEnd := state.scan.closingTag(contentStart, tag.name)
	if closeStart < 0 {
		return start + 1
	}
	content := state.text[contentStart:closeStart]
	node := &Inline{kind: kind}
	switch {
	case kind == KeyboardKind:
		node.text = content
	case state.depth >= maxInlineNesting:
		node.children = []*Inline{{kind: TextKind, text: content}}
	default:
		node.children = p.parse(content, state.inLink, state.depth+1)
	}
	return state.emit(start, closeEnd, node)
}

// parseAngleAutolink returns the length of an autolink like "<https://example.com>"
// at the start of s or -1.
func parseAngleAutolink(s string) int {
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return -1
	}
	url := s[1:end]
	if strings.ContainsAny(url, " \t\n<") || !hasAutolinkScheme(url) {
		return -1
	}
	return end + 1
}

func hasAutolinkScheme(url string) bool {
	for _, prefix := range []string{"http://", "https://", "mailto:", "ftp://"} {
		if len(url) > len(prefix) && strings.EqualFold(url[:len(prefix)], prefix) {
			return true
		}
	}
	return false
}

// parseBareAutolink recognizes "http://" and "https://" URLs in running text.
// A URL ends at whitespace, '<', '>' or '"'.
// Trailing punctuation and unbalanced closing parentheses are not part of the URL.
func (p *InlineParser) parseBareAutolink(state *inlineState, start int) (end int) {
	text := state.text
	if state.inLink {
		return start + 1
	}
	if prev, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(prev) {
		return start + 1
	}
	rest := text[start:]
	prefix := 0
	for _, s := range []string{"http://", "https://"} {
		if len(rest) > len(s) && strings.EqualFold(rest[:len(s)], s) {
			prefix = len(s)
		}
	}
	if prefix == 0 {
		return start + 1
	}
	n := strings.IndexAny(rest, " \t\n<>\"")
	if n < 0 {
		n = len(rest)
	}
	url := trimAutolinkSuffix(rest[:n])
	if len(url) <= prefix {
		return start + 1
	}
	return state.emit(start, start+len(url), &Inline{
		kind: AutolinkKind,
		text: url,
	})
}

func trimAutolinkSuffix(url string) string {
	unbalanced := strings.Count(url, ")") - strings.Count(url, "(")
	for len(url) > 0 {
		switch c := url[len(url)-1]; {
		case strings.IndexByte(".,:;!?'\"*_~", c) >= 0:
			url = url[:len(url)-1]
		case c == ')' && unbalanced > 0:
			url = url[:len(url)-1]
			unbalanced--
		default:
			return url
		}
	}
	return url
}

// inlineLink is a parsed "[label](destination "title")".
type inlineLink struct {
	label       string
	destination string
	title       string
	end         int
}

// inlineLink parses a link starting at the '[' at text[start].
func (sc *inlineScanner) inlineLink(start int) (inlineLink, bool) {
	text := sc.text
	labelEnd := sc.labelEnd(start)
	if labelEnd < 0 || labelEnd+1 >= len(text) || text[labelEnd+1] != '(' {
		return inlineLink{}, false
	}
	targetStart := labelEnd + 2
	targetEnd := sc.parenEnd(labelEnd + 1)
	if targetEnd < 0 {
		return inlineLink{}, false
	}
	dest, title := splitLinkTarget(text[targetStart:targetEnd])
	return inlineLink{
		label:       text[start+1 : labelEnd],
		destination: dest,
		title:       title,
		end:         targetEnd + 1,
	}, true
}

// splitLinkTarget splits the text between a link's parentheses
// into a destination and an optional quoted title.
func splitLinkTarget(s string) (dest, title string) {
	s = strings.TrimSpace(s)
	if n := len(s); n >= 2 && (s[n-1] == '"' || s[n-1] == '\'') {
		if k := strings.LastIndexByte(s[:n-1], s[n-1]); k > 0 && (s[k-1] == ' ' || s[k-1] == '\t') {
			title = unescapeBackslashes(s[k+1 : n-1])
			s = strings.TrimSpace(s[:k])
		}
	}
	if len(s) >= 2 && s[0] == '<' && s[len(s)-1] == '>' {
		s = s[1 : len(s)-1]
	}
	return unescapeBackslashes(s), title
}

func unescapeBackslashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	sb := new(strings.Builder)
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(escapableChars, s[i+1]) >= 0 {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// finishInlines merges adjacent text nodes
// and marks up abbreviations in text.
func finishInlines(nodes []*Inline, am *abbreviationMatcher) []*Inline {
	var result []*Inline
	for i := 0; i < len(nodes); i++ {
		node := nodes[i]
		if node.kind == TextKind {
			j := i + 1
			for j < len(nodes) && nodes[j].kind == TextKind {
				j++
			}
			if j-i > 1 {
				node = &Inline{kind: TextKind, text: joinText(nodes[i:j])}
				i = j - 1
			}
			if node.text != "" {
				result = append(result, node)
			}
			continue
		}
		if len(node.children) > 0 {
			node.children = finishInlines(node.children, am)
		}
		result = append(result, node)
	}
	if am == nil {
		return result
	}
	expanded := result[:0:0]
	for _, node := range result {
		if node.kind == TextKind {
			if parts := am.split(node.text); parts != nil {
				expanded = append(expanded, parts...)
				continue
			}
		}
		expanded = append(expanded, node)
	}
	return expanded
}

// joinText concatenates the text of a run of text nodes.
func joinText(nodes []*Inline) string {
	n := 0
	for _, node := range nodes {
		n += len(node.text)
	}
	sb := new(strings.Builder)
	sb.Grow(n)
	for _, node := range nodes {
		sb.WriteString(node.text)
	}
	return sb.String()
}

func (state *inlineState) add(newNode *Inline) {
	state.nodes = append(state.nodes, newNode)
}

type delimiterStackElement struct {
	typ   inlineDelimiter
	flags uint8
	n     int
	node  *Inline
	// prev and next link the delimiters still in play.
	prev, next int
	// opens and closes list the spans this run starts and ends, innermost first.
	opens, closes []InlineKind
}

const openersBottomCount = 11

func (elem delimiterStackElement) openersBottomIndex() int {
	switch elem.typ {
	case inlineDelimiterStar:
		if elem.flags&openerFlag == 0 {
			return elem.n % 3
		}
		return 3 + elem.n%3
	case inlineDelimiterUnderscore:
		return 6
	case inlineDelimiterTilde:
		return 6 + elem.n
	case inlineDelimiterCaret:
		return 9
	case inlineDelimiterEquals:
		return 10
	default:
		panic("unreachable")
	}
}

func isDelimiterMatch(open, close delimiterStackElement) bool {
	if open.typ != close.typ || open.flags&openerFlag == 0 || close.flags&closerFlag == 0 {
		return false
	}
	switch open.typ {
	case inlineDelimiterStar, inlineDelimiterUnderscore:
		// A run that can both open and close
		// only matches if the combined length is not a multiple of three,
		// unless both lengths are.
		return open.flags&closerFlag == 0 && close.flags&openerFlag == 0 ||
			(open.n+close.n)%3 != 0 ||
			open.n%3 == 0 && close.n%3 == 0
	default:
		return open.n == close.n
	}
}

const (
	openerFlag = 1 << iota
	closerFlag
)

type inlineDelimiter int8

const (
	inlineDelimiterStar inlineDelimiter = 1 + iota
	inlineDelimiterUnderscore
	inlineDelimiterTilde
	inlineDelimiterCaret
	inlineDelimiterEquals
)

var delimiterTypes = map[byte]inlineDelimiter{
	'*': inlineDelimiterStar,
	'_': inlineDelimiterUnderscore,
	'~': inlineDelimiterTilde,
	'^': inlineDelimiterCaret,
	'=': inlineDelimiterEquals,
}

func hasUnparsed(b *Block) bool {
	for _, c := range b.inlineChildren {
		if c.Kind() == UnparsedKind {
			return true
		}
	}
	return false
}

func isUnicodeWhitespace(r rune) bool {
	return unicode.Is(unicode.Zs, r) || r == '\t' || r == '\n' || r == '\f' || r == '\r'
}

func isUnicodePunctuation(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
