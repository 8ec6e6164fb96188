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

// Package chatmark renders the lightweight markup used in chat messages
// into safe HTML.
//
// Rendering happens in two passes.
// [Parse] builds a tree of [Block] and [Inline] nodes from the source text,
// and [*HTMLRenderer] walks the tree to produce markup.
// Every byte of input text is escaped exactly once, at render time.
package chatmark

import (
	"bytes"
	"strings"
)

// maxNesting is the deepest that block quotes and lists are nested.
// Deeper structure is kept as text.
const maxNesting = 16

// Document is the root of a parsed message.
type Document struct {
	Block
	// Abbreviations holds the abbreviations defined anywhere in the document.
	Abbreviations AbbreviationMap
}

// Parse parses source into a document.
// Parse never fails: text that no rule recognizes becomes paragraphs.
func Parse(source []byte) *Document {
	doc := &Document{
		Block:         Block{kind: DocumentKind},
		Abbreviations: make(AbbreviationMap),
	}
	p := new(blockParser)
	doc.blockChildren = p.parse(splitLines(source))
	doc.Abbreviations.Extract(doc.AsNode())
	(&InlineParser{Abbreviations: doc.Abbreviations}).Rewrite(&doc.Block)
	return doc
}

// splitLines normalizes line endings and splits source into lines.
// NUL bytes are replaced with U+FFFD.
func splitLines(source []byte) []string {
	s := string(bytes.ReplaceAll(source, []byte{0}, []byte("\uFFFD")))
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

type blockParser struct {
	depth int
}

// parse turns lines into blocks.
// Code fences and tables are claimed first;
// the remaining lines are read one block at a time.
func (p *blockParser) parse(lines []string) []*Block {
	claims := claimLines(lines)
	var blocks []*Block
	for i := 0; i < len(lines); {
		if span := claims.spanAt(i); span != nil {
			blocks = append(blocks, span.block)
			i = span.end
			continue
		}
		line := lines[i]
		if isBlankLine(line) {
			i++
			continue
		}
		indent, rest := splitIndent(line)
		if abbr, title, ok := parseAbbreviationDefinition(rest); ok {
			blocks = append(blocks, &Block{
				kind:    AbbreviationDefinitionKind,
				info:    abbr,
				literal: title,
			})
			i++
			continue
		}
		if h := parseATXHeading(rest); h.level > 0 && indent < 4 {
			blocks = append(blocks, &Block{
				kind:           HeadingKind,
				n:              h.level,
				inlineChildren: unparsed(h.content),
			})
			i++
			continue
		}
		if parseThematicBreak(rest) >= 0 {
			blocks = append(blocks, &Block{kind: ThematicBreakKind})
			i++
			continue
		}
		var b *Block
		switch {
		case parseBlockQuote(rest) >= 0:
			b, i = p.parseBlockQuote(lines, claims, i)
		case parseListItem(line).marker != 0:
			var lists []*Block
			lists, i = p.parseLists(lines, claims, i)
			blocks = append(blocks, lists...)
			continue
		default:
			b, i = parseParagraph(lines, claims, i)
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// parseBlockQuote groups the consecutive quoted lines starting at i
// and parses their content as a nested document.
func (p *blockParser) parseBlockQuote(lines []string, claims *claimSet, i int) (*Block, int) {
	var inner []string
	for ; i < len(lines) && claims.free(i); i++ {
		_, rest := splitIndent(lines[i])
		end := parseBlockQuote(rest)
		if end < 0 {
			break
		}
		inner = append(inner, rest[end:])
	}
	quote := &Block{kind: BlockQuoteKind}
	if p.depth >= maxNesting {
		quote.blockChildren = []*Block{{
			kind:           ParagraphKind,
			inlineChildren: unparsed(joinTrimmed(inner)),
		}}
		return quote, i
	}
	child := &blockParser{depth: p.depth + 1}
	quote.blockChildren = child.parse(inner)
	return quote, i
}

// listEntry is a list item line and the lines that continue it.
type listEntry struct {
	listItemLine
	lines []string
}

// parseLists reads the list items starting at i
// and groups them into lists.
// A blank line between items does not end the list.
// An indented line that does not start a block continues the previous item.
func (p *blockParser) parseLists(lines []string, claims *claimSet, i int) ([]*Block, int) {
	var entries []*listEntry
	for i < len(lines) && claims.free(i) {
		line := lines[i]
		if isBlankLine(line) {
			next := i + 1
			for next < len(lines) && claims.free(next) && isBlankLine(lines[next]) {
				next++
			}
			if next < len(lines) && claims.free(next) && parseListItem(lines[next]).marker != 0 {
				i = next
				continue
			}
			break
		}
		_, rest := splitIndent(line)
		if parseThematicBreak(rest) >= 0 {
			break
		}
		if item := parseListItem(line); item.marker != 0 {
			entries = append(entries, &listEntry{
				listItemLine: item,
				lines:        []string{item.text},
			})
			i++
			continue
		}
		if indent, _ := splitIndent(line); indent < 2 || startsBlock(line) {
			break
		}
		last := entries[len(entries)-1]
		last.lines = append(last.lines, line)
		i++
	}
	return buildLists(entries, p.depth), i
}

// buildLists nests entries by indentation.
// Entries indented deeper than the first entry belong to the item before them.
// A change of marker kind at the same level starts a new list.
func buildLists(entries []*listEntry, depth int) []*Block {
	var lists []*Block
	base := entries[0].indent
	for i := 0; i < len(entries); {
		list := &Block{
			kind:   ListKind,
			marker: entries[i].marker,
			n:      entries[i].number,
		}
		for i < len(entries) && entries[i].marker == list.marker && (entries[i].indent <= base || depth >= maxNesting) {
			item := entries[i].block()
			i++
			if depth < maxNesting {
				j := i
				for j < len(entries) && entries[j].indent > base {
					j++
				}
				if j > i {
					item.blockChildren = append(item.blockChildren, buildLists(entries[i:j], depth+1)...)
					i = j
				}
			}
			list.blockChildren = append(list.blockChildren, item)
		}
		lists = append(lists, list)
	}
	return lists
}

func (e *listEntry) block() *Block {
	item := &Block{
		kind:   ListItemKind,
		marker: e.marker,
		n:      e.number,
		task:   e.task,
	}
	if text := joinTrimmed(e.lines); text != "" {
		item.blockChildren = []*Block{{
			kind:           ParagraphKind,
			inlineChildren: unparsed(text),
		}}
	}
	return item
}

// parseParagraph collects lines until a blank line,
// a claimed line or the start of another block.
func parseParagraph(lines []string, claims *claimSet, i int) (*Block, int) {
	start := i
	for i++; i < len(lines) && claims.free(i); i++ {
		if isBlankLine(lines[i]) || startsBlock(lines[i]) {
			break
		}
	}
	return &Block{
		kind:           ParagraphKind,
		inlineChildren: unparsed(joinTrimmed(lines[start:i])),
	}, i
}

// joinTrimmed joins lines with newlines
// after trimming surrounding whitespace from each.
func joinTrimmed(lines []string) string {
	sb := new(strings.Builder)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}
	return sb.String()
}

func unparsed(text string) []*Inline {
	return []*Inline{{kind: UnparsedKind, text: text}}
}
