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

import "strings"

// HeadingEntry is a heading listed in a document's outline.
type HeadingEntry struct {
	Level int
	Title string
	// Slug is the heading's anchor, unique within the document.
	// It does not include [HTMLRenderer.IDPrefix].
	Slug string

	block *Block
}

// Outline returns the headings of a document in source order,
// including headings nested in block quotes and list items.
func Outline(doc *Document) []HeadingEntry {
	var entries []HeadingEntry
	slugs := newSlugger()
	Walk(doc.AsNode(), &WalkOptions{
		BlocksOnly: true,
		Pre: func(c *Cursor) bool {
			b := c.Node().Block()
			if b.Kind() != HeadingKind {
				return true
			}
			title := plainText(b.inlineChildren)
			entries = append(entries, HeadingEntry{
				Level: b.HeadingLevel(),
				Title: title,
				Slug:  slugs.unique(title),
				block: b,
			})
			return false
		},
	})
	return entries
}

// plainText returns the text content of inline nodes with markup removed.
func plainText(nodes []*Inline) string {
	sb := new(strings.Builder)
	appendPlainText(sb, nodes)
	return sb.String()
}

func appendPlainText(sb *strings.Builder, nodes []*Inline) {
	for _, node := range nodes {
		switch node.Kind() {
		case TextKind, UnparsedKind, CodeSpanKind, AutolinkKind, ImageKind, KeyboardKind, AbbreviationKind:
			sb.WriteString(node.text)
		case LineBreakKind:
			sb.WriteByte(' ')
		default:
			appendPlainText(sb, node.children)
		}
	}
}
