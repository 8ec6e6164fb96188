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

// A Cursor is the position of [Walk] in a tree.
type Cursor struct {
	node   Node
	parent Node
	depth  int
}

// Node returns the node being visited.
func (c *Cursor) Node() Node {
	return c.node
}

// Parent returns the parent of the node being visited.
// The root's parent is the zero Node.
func (c *Cursor) Parent() Node {
	return c.parent
}

// Depth returns the distance from the root. The root is at depth zero.
func (c *Cursor) Depth() int {
	return c.depth
}

// WalkOptions controls a [Walk].
type WalkOptions struct {
	// Pre is called when a node is entered, before its children.
	// Returning false skips the node's children and its Post call.
	Pre func(c *Cursor) bool
	// Post is called when a node is left, after its children.
	// Returning false stops the walk.
	Post func(c *Cursor) bool
	// BlocksOnly restricts the walk to blocks.
	BlocksOnly bool
}

// Walk visits root and its descendants in document order.
// The traversal keeps its own stack,
// so walking a deeply nested message does not recurse.
func Walk(root Node, opts *WalkOptions) {
	// Each frame is a node whose children are being visited
	// and the index of the next child.
	type frame struct {
		cursor Cursor
		next   int
		end    int
	}

	enter := func(c Cursor) (frame, bool) {
		if opts.Pre != nil && !opts.Pre(&c) {
			return frame{}, false
		}
		end := c.node.ChildCount()
		if b := c.node.Block(); b != nil && opts.BlocksOnly {
			end = len(b.blockChildren)
		}
		return frame{cursor: c, end: end}, true
	}

	top, ok := enter(Cursor{node: root})
	if !ok {
		return
	}
	stack := []frame{top}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.next == f.end {
			c := f.cursor
			stack = stack[:len(stack)-1]
			if opts.Post != nil && !opts.Post(&c) {
				return
			}
			continue
		}
		child := Cursor{
			node:   f.cursor.node.Child(f.next),
			parent: f.cursor.node,
			depth:  f.cursor.depth + 1,
		}
		f.next++
		if next, ok := enter(child); ok {
			stack = append(stack, next)
		}
	}
}
