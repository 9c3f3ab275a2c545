// Copyright 2024 Ross Light
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

package cmark

import "fmt"

// A Block is a structural element in a CommonMark document.
// Blocks form a tree rooted at a [DocumentKind] block.
// During the block phase a block accumulates raw line fragments;
// finalization derives its string content from them,
// and the inline phase fills in [Block.Inlines] for leaf blocks.
type Block struct {
	kind BlockKind

	startLine   int
	startColumn int
	endLine     int

	open          bool
	lastLineBlank bool

	parent   *Block
	children []*Block

	strings       []string
	stringContent string
	inlines       []*Inline

	// Per-kind payloads.
	list  ListData
	tight bool
	level int
	fence fenceData
}

func newBlock(kind BlockKind, line, column int) *Block {
	return &Block{
		kind:        kind,
		startLine:   line,
		startColumn: column,
		endLine:     line,
		open:        true,
	}
}

// Kind returns the type of the block
// or zero if the block is nil.
func (b *Block) Kind() BlockKind {
	if b == nil {
		return 0
	}
	return b.kind
}

// StartLine returns the 1-based line on which the block opened.
func (b *Block) StartLine() int {
	if b == nil {
		return 0
	}
	return b.startLine
}

// StartColumn returns the 1-based column at which the block opened.
func (b *Block) StartColumn() int {
	if b == nil {
		return 0
	}
	return b.startColumn
}

// EndLine returns the 1-based end line recorded when the block was finalized:
// the line before the finalizing line when that line is later than
// the block's start line, and otherwise the finalizing line itself.
func (b *Block) EndLine() int {
	if b == nil {
		return 0
	}
	return b.endLine
}

// IsOpen reports whether the block is still accepting lines or children.
// Every block in a finished parse reports false.
func (b *Block) IsOpen() bool {
	return b != nil && b.open
}

// Parent returns the block's container
// or nil for the document root.
func (b *Block) Parent() *Block {
	if b == nil {
		return nil
	}
	return b.parent
}

// Children returns the block's child blocks.
// The returned slice is owned by the block and must not be modified.
func (b *Block) Children() []*Block {
	if b == nil {
		return nil
	}
	return b.children
}

// Inlines returns the inline content of a leaf block,
// filled in by the inline phase.
func (b *Block) Inlines() []*Inline {
	if b == nil {
		return nil
	}
	return b.inlines
}

// StringContent returns the text accumulated by a leaf block,
// concatenated at finalization.
func (b *Block) StringContent() string {
	if b == nil {
		return ""
	}
	return b.stringContent
}

// HeadingLevel returns the level (1-6) of a heading block
// or zero for any other kind.
func (b *Block) HeadingLevel() int {
	switch b.Kind() {
	case ATXHeadingKind, SetextHeadingKind:
		return b.level
	default:
		return 0
	}
}

// ListData returns the list payload of a [ListKind] or [ListItemKind] block.
func (b *Block) ListData() ListData {
	if b == nil {
		return ListData{}
	}
	return b.list
}

// IsTight reports whether a [ListKind] block is tight,
// that is, none of its items contain blank-line-separated content.
// The value is provisional until the list is finalized.
func (b *Block) IsTight() bool {
	return b != nil && b.tight
}

// FenceChar returns the fence character ('`' or '~')
// of a [FencedCodeKind] block.
func (b *Block) FenceChar() byte {
	if b == nil {
		return 0
	}
	return b.fence.char
}

// FenceLength returns the length of the opening fence
// of a [FencedCodeKind] block.
func (b *Block) FenceLength() int {
	if b == nil {
		return 0
	}
	return b.fence.length
}

// Info returns the info string of a [FencedCodeKind] block
// with backslash escapes resolved.
func (b *Block) Info() string {
	if b == nil {
		return ""
	}
	return b.fence.info
}

func (b *Block) lastChild() *Block {
	if b == nil || len(b.children) == 0 {
		return nil
	}
	return b.children[len(b.children)-1]
}

// AsNode converts the block to a [Node] pointer.
func (b *Block) AsNode() Node {
	return Node{block: b}
}

// ChildCount returns the number of child nodes:
// child blocks for containers, inlines for parsed leaves.
func (b *Block) ChildCount() int {
	if b == nil {
		return 0
	}
	if len(b.children) > 0 {
		return len(b.children)
	}
	return len(b.inlines)
}

// Child returns the i'th child node.
func (b *Block) Child(i int) Node {
	if len(b.children) > 0 {
		return b.children[i].AsNode()
	}
	return b.inlines[i].AsNode()
}

// BlockKind is an enumeration of values returned by [*Block.Kind].
type BlockKind uint16

const (
	DocumentKind BlockKind = 1 + iota
	ParagraphKind
	BlockQuoteKind
	ListKind
	ListItemKind
	ATXHeadingKind
	SetextHeadingKind
	IndentedCodeKind
	FencedCodeKind
	HTMLBlockKind
	ReferenceDefKind
	ThematicBreakKind
)

// String returns the name of the block kind.
func (kind BlockKind) String() string {
	switch kind {
	case DocumentKind:
		return "Document"
	case ParagraphKind:
		return "Paragraph"
	case BlockQuoteKind:
		return "BlockQuote"
	case ListKind:
		return "List"
	case ListItemKind:
		return "ListItem"
	case ATXHeadingKind:
		return "ATXHeading"
	case SetextHeadingKind:
		return "SetextHeading"
	case IndentedCodeKind:
		return "IndentedCode"
	case FencedCodeKind:
		return "FencedCode"
	case HTMLBlockKind:
		return "HTMLBlock"
	case ReferenceDefKind:
		return "ReferenceDef"
	case ThematicBreakKind:
		return "ThematicBreak"
	default:
		return fmt.Sprintf("BlockKind(%d)", uint16(kind))
	}
}

// acceptsLines reports whether a block of this kind
// receives raw line fragments during the block phase.
func (kind BlockKind) acceptsLines() bool {
	return kind == ParagraphKind ||
		kind == IndentedCodeKind ||
		kind == FencedCodeKind
}

// canContain reports whether a block of this kind
// may have a child of the given kind.
func (kind BlockKind) canContain(childKind BlockKind) bool {
	switch kind {
	case DocumentKind, BlockQuoteKind, ListItemKind:
		return true
	case ListKind:
		return childKind == ListItemKind
	default:
		return false
	}
}

// ListType discriminates bullet lists from ordered lists.
type ListType uint8

const (
	BulletList ListType = 1 + iota
	OrderedList
)

// ListData is the payload of [ListKind] and [ListItemKind] blocks.
type ListData struct {
	Type       ListType
	BulletChar byte // '*', '+', or '-' for bullet lists
	Start      int  // first ordinal of an ordered list
	Delimiter  byte // '.' or ')' for ordered lists

	// MarkerOffset is the indent of the list marker in columns
	// and Padding the width of the marker plus the spaces after it,
	// where no spaces, five or more spaces, or a blank item count as one.
	// Together they decide whether a later line
	// is a continuation of the item.
	MarkerOffset int
	Padding      int
}

// listsMatch reports whether an item with the given marker data
// belongs to a list accumulating under data.
// The ordinal start is deliberately not compared:
// consecutive items merge into one list
// whenever type and delimiter or bullet character agree.
func listsMatch(data, itemData ListData) bool {
	return data.Type == itemData.Type &&
		data.Delimiter == itemData.Delimiter &&
		data.BulletChar == itemData.BulletChar
}

type fenceData struct {
	char   byte
	length int
	offset int
	info   string
}

// Node is a pointer to a [Block] or an [Inline].
// Nodes can be compared for equality using the == operator.
type Node struct {
	block  *Block
	inline *Inline
}

// Block returns the referenced block
// or nil if the pointer does not reference a block.
func (n Node) Block() *Block {
	return n.block
}

// Inline returns the referenced inline
// or nil if the pointer does not reference an inline.
func (n Node) Inline() *Inline {
	return n.inline
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on the zero value returns 0.
func (n Node) ChildCount() int {
	if n.block != nil {
		return n.block.ChildCount()
	}
	return n.inline.ChildCount()
}

// Child returns the i'th child of the node.
func (n Node) Child(i int) Node {
	if n.block != nil {
		return n.block.Child(i)
	}
	return n.inline.Child(i).AsNode()
}
