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
	"bufio"
	"fmt"
	"io"
	"strings"
)

var blockKindNames = [...]string{
	ParagraphKind:              "paragraph",
	HeadingKind:                "heading",
	ThematicBreakKind:          "thematic_break",
	CodeBlockKind:              "code_block",
	BlockQuoteKind:             "block_quote",
	ListKind:                   "list",
	ListItemKind:               "item",
	TableKind:                  "table",
	TableRowKind:               "row",
	TableCellKind:              "cell",
	AbbreviationDefinitionKind: "abbreviation_definition",
	DocumentKind:               "document",
}

func (k BlockKind) String() string {
	if int(k) < len(blockKindNames) && blockKindNames[k] != "" {
		return blockKindNames[k]
	}
	return fmt.Sprintf("BlockKind(%d)", uint16(k))
}

var inlineKindNames = [...]string{
	TextKind:          "text",
	LineBreakKind:     "line_break",
	EmphasisKind:      "emphasis",
	StrongKind:        "strong",
	StrikethroughKind: "strikethrough",
	SubscriptKind:     "subscript",
	SuperscriptKind:   "superscript",
	MarkKind:          "mark",
	CodeSpanKind:      "code_span",
	LinkKind:          "link",
	AutolinkKind:      "autolink",
	ImageKind:         "image",
	KeyboardKind:      "keyboard",
	AbbreviationKind:  "abbreviation",
	UnparsedKind:      "unparsed",
}

func (k InlineKind) String() string {
	if int(k) < len(inlineKindNames) && inlineKindNames[k] != "" {
		return inlineKindNames[k]
	}
	return fmt.Sprintf("InlineKind(%d)", uint16(k))
}

func (m ListMarker) String() string {
	switch m {
	case BulletMarker:
		return "bullet"
	case OrderedMarker:
		return "ordered"
	default:
		return fmt.Sprintf("ListMarker(%d)", uint8(m))
	}
}

func (h TableHeuristic) String() string {
	switch h {
	case StrictTable:
		return "strict"
	case SeparatorlessTable:
		return "separatorless"
	case LooseTable:
		return "loose"
	default:
		return fmt.Sprintf("TableHeuristic(%d)", uint8(h))
	}
}

func (a Alignment) String() string {
	switch a {
	case AlignNone:
		return "none"
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return fmt.Sprintf("Alignment(%d)", uint8(a))
	}
}

// DumpTree writes an indented outline of the tree rooted at root,
// one node per line.
func DumpTree(w io.Writer, root Node) error {
	bw := bufio.NewWriter(w)
	Walk(root, &WalkOptions{
		Pre: func(c *Cursor) bool {
			bw.WriteString(strings.Repeat("  ", c.Depth()))
			bw.WriteString(describeNode(c.Node()))
			bw.WriteByte('\n')
			return true
		},
	})
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("dump tree: %w", err)
	}
	return nil
}

func describeNode(n Node) string {
	if b := n.Block(); b != nil {
		return describeBlock(b)
	}
	inline := n.Inline()
	switch k := inline.Kind(); k {
	case TextKind, UnparsedKind, CodeSpanKind, KeyboardKind, AutolinkKind:
		return fmt.Sprintf("%v %q", k, inline.text)
	case LinkKind:
		return fmt.Sprintf("%v %q", k, inline.destination)
	case ImageKind:
		return fmt.Sprintf("%v %q alt=%q", k, inline.destination, inline.text)
	case AbbreviationKind:
		return fmt.Sprintf("%v %q title=%q", k, inline.text, inline.title)
	default:
		return k.String()
	}
}

func describeBlock(b *Block) string {
	switch k := b.Kind(); k {
	case HeadingKind:
		return fmt.Sprintf("%v level=%d", k, b.HeadingLevel())
	case CodeBlockKind:
		return fmt.Sprintf("%v lang=%q %q", k, b.Language(), b.Code())
	case ListKind:
		if n := b.ListStart(); n >= 0 {
			return fmt.Sprintf("%v %v start=%d", k, b.ListMarker(), n)
		}
		return fmt.Sprintf("%v %v", k, b.ListMarker())
	case ListItemKind:
		switch b.Task() {
		case TaskOpen:
			return k.String() + " [ ]"
		case TaskDone:
			return k.String() + " [x]"
		}
		return k.String()
	case TableKind:
		s := fmt.Sprintf("%v %v", k, b.TableHeuristic())
		for _, a := range b.align {
			if a != AlignNone {
				return fmt.Sprintf("%s align=%v", s, b.align)
			}
		}
		return s
	case TableRowKind:
		if b.IsHeaderRow() {
			return k.String() + " header"
		}
		return k.String()
	case AbbreviationDefinitionKind:
		abbr, title := b.Abbreviation()
		return fmt.Sprintf("%v %q title=%q", k, abbr, title)
	default:
		return k.String()
	}
}
