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

// Block represents a structural element of a document,
// such as a paragraph, a list or a table.
// Blocks contain either other blocks or inline nodes.
type Block struct {
	kind      BlockKind
	n         int
	marker    ListMarker
	task      TaskState
	heuristic TableHeuristic
	header    bool
	info      string
	literal   string
	align     []Alignment

	blockChildren  []*Block
	inlineChildren []*Inline
}

// BlockKind is an enumeration of values returned by [*Block.Kind].
type BlockKind uint16

const (
	ParagraphKind BlockKind = 1 + iota
	HeadingKind
	ThematicBreakKind
	CodeBlockKind
	BlockQuoteKind
	ListKind
	ListItemKind
	TableKind
	TableRowKind
	TableCellKind
	AbbreviationDefinitionKind
	DocumentKind
)

// Kind returns the type of block node
// or zero if the node is nil.
func (b *Block) Kind() BlockKind {
	if b == nil {
		return 0
	}
	return b.kind
}

// HeadingLevel returns the 1-based level for a [HeadingKind]
// or zero otherwise.
func (b *Block) HeadingLevel() int {
	if b.Kind() != HeadingKind {
		return 0
	}
	return b.n
}

// Language returns the language tag of a [CodeBlockKind] block
// as written on its opening fence.
// It returns the empty string for other blocks
// or for fences without a tag.
func (b *Block) Language() string {
	if b.Kind() != CodeBlockKind {
		return ""
	}
	return b.info
}

// Code returns the payload of a [CodeBlockKind] block.
func (b *Block) Code() string {
	if b.Kind() != CodeBlockKind {
		return ""
	}
	return b.literal
}

// ListMarker returns the marker kind of a [ListKind] or [ListItemKind] block
// or zero for other blocks.
func (b *Block) ListMarker() ListMarker {
	switch b.Kind() {
	case ListKind, ListItemKind:
		return b.marker
	default:
		return 0
	}
}

// ListStart returns the number of the first item of an ordered list,
// or -1 if the block is not an ordered list.
func (b *Block) ListStart() int {
	if b.Kind() != ListKind || b.marker != OrderedMarker {
		return -1
	}
	return b.n
}

// Task returns the checkbox state of a [ListItemKind] block.
func (b *Block) Task() TaskState {
	if b.Kind() != ListItemKind {
		return NotTask
	}
	return b.task
}

// TableHeuristic reports which recognizer claimed a [TableKind] block.
func (b *Block) TableHeuristic() TableHeuristic {
	if b.Kind() != TableKind {
		return 0
	}
	return b.heuristic
}

// Alignment returns the alignment of the given column of a [TableKind] block.
func (b *Block) Alignment(col int) Alignment {
	if b.Kind() != TableKind || col < 0 || col >= len(b.align) {
		return AlignNone
	}
	return b.align[col]
}

// IsHeaderRow reports whether the block is a table's header row.
func (b *Block) IsHeaderRow() bool {
	return b.Kind() == TableRowKind && b.header
}

// Abbreviation returns the abbreviation and its expansion
// for an [AbbreviationDefinitionKind] block.
func (b *Block) Abbreviation() (abbr, title string) {
	if b.Kind() != AbbreviationDefinitionKind {
		return "", ""
	}
	return b.info, b.literal
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on nil returns 0.
func (b *Block) ChildCount() int {
	if b == nil {
		return 0
	}
	return len(b.blockChildren) + len(b.inlineChildren)
}

// Child returns the i'th child of the node.
// Block children come before inline children.
func (b *Block) Child(i int) Node {
	if i < len(b.blockChildren) {
		return b.blockChildren[i].AsNode()
	}
	return b.inlineChildren[i-len(b.blockChildren)].AsNode()
}

// ListMarker is an enumeration of list marker kinds.
// Lists never mix kinds:
// a change of marker kind starts a new list.
type ListMarker uint8

const (
	// BulletMarker is used for items starting with "-", "*" or "+".
	BulletMarker ListMarker = 1 + iota
	// OrderedMarker is used for items starting with a number.
	OrderedMarker
)

// TaskState is the checkbox state of a list item.
type TaskState uint8

const (
	NotTask TaskState = iota
	TaskOpen
	TaskDone
)

// TableHeuristic identifies the recognizer that claimed a table.
type TableHeuristic uint8

const (
	// StrictTable is a header row, a separator row and one or more data rows.
	StrictTable TableHeuristic = 1 + iota
	// SeparatorlessTable is a run of pipe-bounded rows with no separator row.
	SeparatorlessTable
	// LooseTable is a run of lines that each contain at least two pipes.
	LooseTable
)

// Alignment is the horizontal alignment of a table column.
type Alignment uint8

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Inline represents content elements like text, links, or emphasis.
type Inline struct {
	kind        InlineKind
	text        string
	destination string
	title       string
	children    []*Inline
}

// InlineKind is an enumeration of values returned by [*Inline.Kind].
type InlineKind uint16

const (
	TextKind InlineKind = 1 + iota
	LineBreakKind
	EmphasisKind
	StrongKind
	StrikethroughKind
	SubscriptKind
	SuperscriptKind
	MarkKind
	CodeSpanKind
	LinkKind
	AutolinkKind
	ImageKind
	KeyboardKind
	AbbreviationKind

	// UnparsedKind is used for inline text that has not been tokenized.
	UnparsedKind
)

// Kind returns the type of inline node
// or zero if the node is nil.
func (inline *Inline) Kind() InlineKind {
	if inline == nil {
		return 0
	}
	return inline.kind
}

// Text returns the literal content of a leaf node:
// the text of a [TextKind] or [UnparsedKind] node,
// the content of a [CodeSpanKind] or [KeyboardKind] node,
// the URL of an [AutolinkKind] node,
// the alternate text of an [ImageKind] node,
// or the abbreviation of an [AbbreviationKind] node.
func (inline *Inline) Text() string {
	if inline == nil {
		return ""
	}
	return inline.text
}

// LinkDestination returns the destination of a link, autolink or image.
func (inline *Inline) LinkDestination() string {
	switch inline.Kind() {
	case LinkKind, ImageKind:
		return inline.destination
	case AutolinkKind:
		return inline.text
	default:
		return ""
	}
}

// LinkTitle returns the title of a link or image,
// or the expansion of an abbreviation.
func (inline *Inline) LinkTitle() string {
	if inline == nil {
		return ""
	}
	return inline.title
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on nil returns 0.
func (inline *Inline) ChildCount() int {
	if inline == nil {
		return 0
	}
	return len(inline.children)
}

// Child returns the i'th child of the node.
func (inline *Inline) Child(i int) *Inline {
	return inline.children[i]
}
