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

// Node refers to either a [Block] or an [Inline] in a parsed message.
// The zero Node refers to nothing.
// Nodes are comparable: two Nodes are == when they refer to the same element.
type Node struct {
	block  *Block
	inline *Inline
}

// Block returns the block n refers to, or nil.
func (n Node) Block() *Block {
	return n.block
}

// Inline returns the inline n refers to, or nil.
func (n Node) Inline() *Inline {
	return n.inline
}

// IsZero reports whether n refers to nothing.
func (n Node) IsZero() bool {
	return n.block == nil && n.inline == nil
}

// ChildCount returns the number of children of the element n refers to.
// The zero Node has no children.
func (n Node) ChildCount() int {
	switch {
	case n.block != nil:
		return n.block.ChildCount()
	case n.inline != nil:
		return n.inline.ChildCount()
	}
	return 0
}

// Child returns the i'th child of the element n refers to.
// It panics if i is out of range.
func (n Node) Child(i int) Node {
	switch {
	case n.block != nil:
		return n.block.Child(i)
	case n.inline != nil:
		return n.inline.Child(i).AsNode()
	}
	panic("chatmark: Child called on zero Node")
}

// AsNode returns a [Node] referring to the block.
// A nil block yields the zero Node.
func (b *Block) AsNode() Node {
	return Node{block: b}
}

// AsNode returns a [Node] referring to the inline.
// A nil inline yields the zero Node.
func (inline *Inline) AsNode() Node {
	return Node{inline: inline}
}
