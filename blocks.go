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

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// codeIndent is the column width of an indent
// required to start or continue an indented code block.
//
// [indented code block]: https://spec.commonmark.org/0.30/#indented-code-blocks
const codeIndent = 4

var (
	reThematicBreak = regexp.MustCompile(`^(?:(?:\* *){3,}|(?:_ *){3,}|(?:- *){3,}) *$`)
	reATXHeading    = regexp.MustCompile(`^#{1,6}(?: +|$)`)
	reATXTrailer    = regexp.MustCompile(`(?:(\\#) *#*| *#+) *$`)
	reSetextLine    = regexp.MustCompile(`^(?:=+|-+) *$`)
	reBulletMarker  = regexp.MustCompile(`^[*+-]( +|$)`)
	reOrderedMarker = regexp.MustCompile(`^(\d+)([.)])( +|$)`)
	reInitialSpaces = regexp.MustCompile(`(?m)^ +`)
	reTrailingBlank = regexp.MustCompile(`(?:\n *)*$`)
)

// A DocumentParser splits a document into a tree of blocks,
// one line at a time.
// The zero value is not usable; call [NewDocumentParser].
type DocumentParser struct {
	doc          *Block
	tip          *Block
	inlineParser *InlineParser
}

// NewDocumentParser returns a parser with an empty document
// open at line 1, column 1.
func NewDocumentParser() *DocumentParser {
	doc := newBlock(DocumentKind, 1, 1)
	return &DocumentParser{
		doc: doc,
		tip: doc,
		inlineParser: &InlineParser{
			References: make(ReferenceMap),
		},
	}
}

// Document returns the root block of the document being parsed.
func (p *DocumentParser) Document() *Block {
	return p.doc
}

// References returns the map of link reference definitions
// collected while finalizing paragraphs.
func (p *DocumentParser) References() ReferenceMap {
	return p.inlineParser.References
}

// A LineError reports an attempt to add a line to a closed container.
// It indicates a bug in the caller's line sequencing
// and never occurs for documents fed through [Parse].
type LineError struct {
	Line int
	Kind BlockKind
}

func (e *LineError) Error() string {
	return fmt.Sprintf("cmark: line %d: add line to closed %v container", e.Line, e.Kind)
}

// lineParser is a cursor on a single line of text,
// carrying the state shared by the continuation rules
// and the block start functions.
type lineParser struct {
	p          *DocumentParser
	line       string
	lineNumber int
	offset     int

	firstNonSpace int
	blank         bool
	indent        int

	container       *Block
	lastMatched     *Block
	oldtip          *Block
	unmatchedClosed bool
}

// rescan recomputes the first non-space position,
// the blank flag, and the indent at the current offset.
func (lp *lineParser) rescan() {
	lp.firstNonSpace = findNonSpace(lp.line, lp.offset)
	lp.blank = lp.firstNonSpace == len(lp.line)
	lp.indent = lp.firstNonSpace - lp.offset
}

func (lp *lineParser) rest() string {
	return lp.line[lp.firstNonSpace:]
}

// closeUnmatched finalizes every block on the open spine
// below the last matched container.
// It runs at most once per line;
// the lazy continuation path skips it entirely.
func (lp *lineParser) closeUnmatched() {
	for !lp.unmatchedClosed && lp.oldtip != lp.lastMatched {
		lp.p.finalize(lp.oldtip, lp.lineNumber)
		lp.oldtip = lp.oldtip.parent
	}
	lp.unmatchedClosed = true
}

// open closes unmatched blocks and opens a new block
// as a child of the deepest container that can hold it.
func (lp *lineParser) open(kind BlockKind, offset int) *Block {
	lp.closeUnmatched()
	lp.container = lp.p.addChild(kind, lp.lineNumber, offset)
	return lp.container
}

type parseResult int8

const (
	noMatch parseResult = iota
	matchedContainer
	matchedLeaf
)

// blockStarts are tried in order against the remainder of a line
// once the open containers have been matched.
// A matchedContainer result keeps scanning for further starts
// on the same line; matchedLeaf stops and hands the remainder
// to the line append step.
var blockStarts = []func(*lineParser) parseResult{
	// Indented code, or an over-indented continuation line.
	func(lp *lineParser) parseResult {
		if lp.indent < codeIndent {
			return noMatch
		}
		if lp.p.tip.kind == ParagraphKind || lp.blank {
			// Lazy paragraph continuation or blank; no block starts here.
			return matchedLeaf
		}
		lp.offset += codeIndent
		lp.open(IndentedCodeKind, lp.offset)
		return matchedLeaf
	},

	// Block quote.
	func(lp *lineParser) parseResult {
		if lp.firstNonSpace >= len(lp.line) || lp.line[lp.firstNonSpace] != '>' {
			return noMatch
		}
		lp.offset = lp.firstNonSpace + 1
		if lp.offset < len(lp.line) && lp.line[lp.offset] == ' ' {
			lp.offset++
		}
		lp.open(BlockQuoteKind, lp.offset)
		return matchedContainer
	},

	// ATX heading.
	func(lp *lineParser) parseResult {
		m := reATXHeading.FindString(lp.rest())
		if m == "" {
			return noMatch
		}
		lp.offset = lp.firstNonSpace + len(m)
		h := lp.open(ATXHeadingKind, lp.firstNonSpace)
		h.level = len(strings.TrimRight(m, " "))
		// The heading's only line is captured here;
		// trailing hashes are stripped unless escaped.
		h.strings = []string{reATXTrailer.ReplaceAllString(lp.line[lp.offset:], "${1}")}
		return matchedLeaf
	},

	// Fenced code block.
	func(lp *lineParser) parseResult {
		length, char, ok := scanOpenFence(lp.rest())
		if !ok {
			return noMatch
		}
		f := lp.open(FencedCodeKind, lp.firstNonSpace)
		f.fence = fenceData{
			char:   char,
			length: length,
			offset: lp.indent,
			info:   unescapeString(strings.TrimSpace(lp.line[lp.firstNonSpace+length:])),
		}
		lp.offset = lp.firstNonSpace + length
		return matchedLeaf
	},

	// HTML block.
	func(lp *lineParser) parseResult {
		if !opensHTMLBlock(lp.rest()) {
			return noMatch
		}
		lp.open(HTMLBlockKind, lp.firstNonSpace)
		// The offset is deliberately left alone:
		// the block keeps its leading indentation.
		return matchedLeaf
	},

	// Setext heading underline.
	// Rewrites the current single-line paragraph in place.
	func(lp *lineParser) parseResult {
		if lp.container.kind != ParagraphKind || len(lp.container.strings) != 1 {
			return noMatch
		}
		m := reSetextLine.FindString(lp.rest())
		if m == "" {
			return noMatch
		}
		lp.closeUnmatched()
		lp.container.kind = SetextHeadingKind
		if m[0] == '=' {
			lp.container.level = 1
		} else {
			lp.container.level = 2
		}
		lp.offset = len(lp.line)
		return matchedContainer
	},

	// Thematic break.
	func(lp *lineParser) parseResult {
		if !reThematicBreak.MatchString(lp.rest()) {
			return noMatch
		}
		lp.open(ThematicBreakKind, lp.firstNonSpace)
		lp.offset = len(lp.line) - 1
		return matchedLeaf
	},

	// List item, opening a new list if needed.
	func(lp *lineParser) parseResult {
		data, ok := parseListMarker(lp.line, lp.firstNonSpace)
		if !ok {
			return noMatch
		}
		data.MarkerOffset = lp.indent
		lp.closeUnmatched()
		lp.offset = lp.firstNonSpace + data.Padding
		if lp.container.kind != ListKind || !listsMatch(lp.container.list, data) {
			list := lp.p.addChild(ListKind, lp.lineNumber, lp.firstNonSpace)
			list.list = data
			list.tight = true
			lp.container = list
		}
		item := lp.p.addChild(ListItemKind, lp.lineNumber, lp.firstNonSpace)
		item.list = data
		lp.container = item
		return matchedContainer
	},
}

// IncorporateLine analyzes one line of text,
// updating the block tree and the tip.
// Lines must be presented in order, numbered from 1.
// The returned error is a [*LineError] and reports a sequencing bug;
// it never occurs for well-formed use.
func (p *DocumentParser) IncorporateLine(line string, lineNumber int) error {
	line = detabLine(line)

	lp := &lineParser{
		p:          p,
		line:       line,
		lineNumber: lineNumber,
		container:  p.doc,
		oldtip:     p.tip,
	}

	// Descend the open spine, matching each container's continuation rule.
	allMatched := true
	for {
		child := lp.container.lastChild()
		if child == nil || !child.open {
			break
		}
		lp.container = child
		lp.rescan()

		switch lp.container.kind {
		case BlockQuoteKind:
			if lp.indent <= 3 && lp.firstNonSpace < len(line) && line[lp.firstNonSpace] == '>' {
				lp.offset = lp.firstNonSpace + 1
				if lp.offset < len(line) && line[lp.offset] == ' ' {
					lp.offset++
				}
			} else {
				allMatched = false
			}
		case ListItemKind:
			if lp.indent >= lp.container.list.MarkerOffset+lp.container.list.Padding {
				lp.offset += lp.container.list.MarkerOffset + lp.container.list.Padding
			} else if lp.blank {
				lp.offset = lp.firstNonSpace
			} else {
				allMatched = false
			}
		case IndentedCodeKind:
			if lp.indent >= codeIndent {
				lp.offset += codeIndent
			} else if lp.blank {
				lp.offset = lp.firstNonSpace
			} else {
				allMatched = false
			}
		case ATXHeadingKind, SetextHeadingKind, ThematicBreakKind:
			// A heading or break never spans more than one line.
			allMatched = false
		case FencedCodeKind:
			// Skip up to the opening fence's indent.
			for i := lp.container.fence.offset; i > 0 && lp.offset < len(line) && line[lp.offset] == ' '; i-- {
				lp.offset++
			}
		case HTMLBlockKind:
			if lp.blank {
				allMatched = false
			}
		case ParagraphKind:
			if lp.blank {
				lp.container.lastLineBlank = true
				allMatched = false
			}
		}
		if !allMatched {
			lp.container = lp.container.parent
			break
		}
	}
	lp.lastMatched = lp.container

	// A second consecutive blank line closes out any enclosing lists.
	if lp.blank && lp.container.lastLineBlank {
		p.breakOutOfLists(lp.container, lineNumber)
	}

	// Look for new block starts on the remainder of the line.
scan:
	for lp.container.kind != FencedCodeKind && lp.container.kind != IndentedCodeKind && lp.container.kind != HTMLBlockKind &&
		lp.offset < len(line) && startsBlock(line[lp.offset]) {
		lp.rescan()
		result := noMatch
		for _, start := range blockStarts {
			if result = start(lp); result != noMatch {
				break
			}
		}
		switch result {
		case noMatch, matchedLeaf:
			break scan
		}
		if lp.container.kind.acceptsLines() {
			break
		}
	}

	// Append what remains of the line to the deepest accepting block.
	lp.rescan()
	if p.tip != lp.lastMatched && !lp.blank && p.tip.kind == ParagraphKind && len(p.tip.strings) > 0 {
		// Lazy continuation: the line extends the open paragraph
		// even though not every container matched.
		p.tip.lastLineBlank = false
		return p.addLine(line, lp.offset, lineNumber)
	}

	lp.closeUnmatched()
	container := lp.container
	container.lastLineBlank = lp.blank && rememberBlank(container, lineNumber)
	for anc := container.parent; anc != nil; anc = anc.parent {
		anc.lastLineBlank = false
	}

	switch container.kind {
	case IndentedCodeKind, HTMLBlockKind:
		return p.addLine(line, lp.offset, lineNumber)
	case FencedCodeKind:
		if lp.closesFence(container) {
			// The closing fence is consumed, not stored.
			p.finalize(container, lineNumber)
			return nil
		}
		return p.addLine(line, lp.offset, lineNumber)
	case ATXHeadingKind, SetextHeadingKind, ThematicBreakKind:
		// Content, if any, was captured when the block opened.
		return nil
	default:
		if container.kind.acceptsLines() {
			return p.addLine(line, lp.firstNonSpace, lineNumber)
		}
		if lp.blank {
			return nil
		}
		p.addChild(ParagraphKind, lineNumber, lp.firstNonSpace)
		return p.addLine(line, lp.firstNonSpace, lineNumber)
	}
}

// rememberBlank reports whether a blank line ending at this container
// should count against list tightness.
// Block quote and fenced code lines carry their own structure,
// and a list item that is empty on its opening line
// does not make its list loose.
func rememberBlank(b *Block, lineNumber int) bool {
	switch b.kind {
	case BlockQuoteKind, FencedCodeKind:
		return false
	case ListItemKind:
		return !(len(b.children) == 0 && b.startLine == lineNumber)
	default:
		return true
	}
}

// closesFence reports whether the remainder of the line
// is a closing fence for the given open code block.
func (lp *lineParser) closesFence(b *Block) bool {
	if lp.indent > 3 || lp.firstNonSpace >= len(lp.line) || lp.line[lp.firstNonSpace] != b.fence.char {
		return false
	}
	return scanClosingFence(lp.rest(), b.fence.char) >= b.fence.length
}

// addChild opens a new block as a child of the tip,
// finalizing tip blocks until one can contain the new kind,
// and makes the new block the tip.
func (p *DocumentParser) addChild(kind BlockKind, lineNumber, offset int) *Block {
	for !p.tip.kind.canContain(kind) {
		p.finalize(p.tip, lineNumber)
	}
	b := newBlock(kind, lineNumber, offset+1)
	b.parent = p.tip
	p.tip.children = append(p.tip.children, b)
	p.tip = b
	return b
}

// addLine appends the line's remainder to the tip.
func (p *DocumentParser) addLine(line string, offset, lineNumber int) error {
	if !p.tip.open {
		return &LineError{Line: lineNumber, Kind: p.tip.kind}
	}
	if offset > len(line) {
		offset = len(line)
	}
	p.tip.strings = append(p.tip.strings, line[offset:])
	return nil
}

// breakOutOfLists finalizes every block from the given one
// up to and including the outermost enclosing list,
// resetting the tip to that list's parent.
func (p *DocumentParser) breakOutOfLists(b *Block, lineNumber int) {
	var lastList *Block
	for probe := b; probe != nil; probe = probe.parent {
		if probe.kind == ListKind {
			lastList = probe
		}
	}
	if lastList == nil {
		return
	}
	for b != lastList {
		p.finalize(b, lineNumber)
		b = b.parent
	}
	p.finalize(lastList, lineNumber)
	p.tip = lastList.parent
}

// finalize closes a block, derives its string content,
// and moves the tip to its parent.
// Finalizing an already-closed block is a no-op.
func (p *DocumentParser) finalize(b *Block, lineNumber int) {
	if !b.open {
		return
	}
	b.open = false
	if lineNumber > b.startLine {
		b.endLine = lineNumber - 1
	} else {
		b.endLine = lineNumber
	}

	switch b.kind {
	case ParagraphKind:
		content := reInitialSpaces.ReplaceAllString(strings.Join(b.strings, "\n"), "")
		// Peel link reference definitions off the front.
		for strings.HasPrefix(content, "[") {
			rest, ok := p.inlineParser.ParseReference(content)
			if !ok {
				break
			}
			content = rest
			if strings.TrimSpace(content) == "" {
				b.kind = ReferenceDefKind
				break
			}
		}
		b.stringContent = content
	case ATXHeadingKind, SetextHeadingKind, HTMLBlockKind:
		b.stringContent = strings.Join(b.strings, "\n")
	case IndentedCodeKind:
		s := strings.Join(b.strings, "\n")
		loc := reTrailingBlank.FindStringIndex(s)
		b.stringContent = s[:loc[0]] + "\n"
	case FencedCodeKind:
		// The first accumulated line is the opening fence's info text.
		if len(b.strings) <= 1 {
			b.stringContent = ""
		} else {
			b.stringContent = strings.Join(b.strings[1:], "\n") + "\n"
		}
	case ListKind:
		b.tight = true
	items:
		for i, item := range b.children {
			lastItem := i == len(b.children)-1
			if endsWithBlankLine(item) && !lastItem {
				b.tight = false
				break
			}
			for j, sub := range item.children {
				lastSub := j == len(item.children)-1
				if endsWithBlankLine(sub) && !(lastItem && lastSub) {
					b.tight = false
					break items
				}
			}
		}
	}

	b.strings = nil
	p.tip = b.parent
}

// endsWithBlankLine reports whether the block,
// or the last descendant of a list or list item,
// was followed by a blank line.
func endsWithBlankLine(b *Block) bool {
	if b.lastLineBlank {
		return true
	}
	if (b.kind == ListKind || b.kind == ListItemKind) && len(b.children) > 0 {
		return endsWithBlankLine(b.children[len(b.children)-1])
	}
	return false
}

// parseListMarker attempts to parse a list marker
// at the given position in the line.
// A line that reads as a thematic break is never a marker.
//
// [list marker]: https://spec.commonmark.org/0.30/#list-marker
func parseListMarker(line string, pos int) (ListData, bool) {
	rest := line[pos:]
	if reThematicBreak.MatchString(rest) {
		return ListData{}, false
	}
	var data ListData
	var markerLen, spacesAfter int
	if m := reBulletMarker.FindStringSubmatch(rest); m != nil {
		data.Type = BulletList
		data.BulletChar = m[0][0]
		markerLen = len(m[0])
		spacesAfter = len(m[1])
	} else if m := reOrderedMarker.FindStringSubmatch(rest); m != nil {
		data.Type = OrderedList
		data.Start, _ = strconv.Atoi(m[1])
		data.Delimiter = m[2][0]
		markerLen = len(m[0])
		spacesAfter = len(m[3])
	} else {
		return ListData{}, false
	}
	blankItem := markerLen == len(rest)
	if spacesAfter >= 5 || spacesAfter < 1 || blankItem {
		// Treat the marker as followed by a single space:
		// the extra indentation belongs to the content.
		data.Padding = markerLen - spacesAfter + 1
	} else {
		data.Padding = markerLen
	}
	return data, true
}

// scanOpenFence recognizes an opening code fence:
// a run of three or more backticks or tildes
// whose character does not reappear on the line.
func scanOpenFence(s string) (length int, char byte, ok bool) {
	if len(s) == 0 || (s[0] != '`' && s[0] != '~') {
		return 0, 0, false
	}
	c := s[0]
	n := 1
	for n < len(s) && s[n] == c {
		n++
	}
	if n < 3 || strings.IndexByte(s[n:], c) >= 0 {
		return 0, 0, false
	}
	return n, c, true
}

// scanClosingFence returns the length of a closing fence run
// of the given character at the start of s,
// or 0 if s is not a closing fence.
// Only spaces may follow the run.
func scanClosingFence(s string, char byte) int {
	n := 0
	for n < len(s) && s[n] == char {
		n++
	}
	if n < 3 {
		return 0
	}
	for i := n; i < len(s); i++ {
		if s[i] != ' ' {
			return 0
		}
	}
	return n
}

// startsBlock reports whether a character can begin a new block.
func startsBlock(c byte) bool {
	switch c {
	case ' ', '#', '`', '~', '*', '+', '_', '=', '<', '>', '-':
		return true
	}
	return '0' <= c && c <= '9'
}

func findNonSpace(line string, offset int) int {
	for i := offset; i < len(line); i++ {
		if line[i] != ' ' {
			return i
		}
	}
	return len(line)
}
