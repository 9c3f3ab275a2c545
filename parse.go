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

// Package cmark provides a [CommonMark] parser
// built around line-at-a-time block incorporation.
//
// [CommonMark]: https://commonmark.org/
package cmark

import (
	"strings"

	"go4.org/bytereplacer"
)

// tabStopSize is the multiple of columns that a [tab] advances to.
//
// [tab]: https://spec.commonmark.org/0.30/#tabs
const tabStopSize = 4

// lineEndings rewrites all line ending forms to '\n'
// and replaces NUL bytes with the Unicode replacement character.
var lineEndings = bytereplacer.New(
	"\r\n", "\n",
	"\r", "\n",
	"\x00", "�",
)

// Parse converts a document to a block tree
// whose leaf content has been decomposed into inline nodes.
// Every input is a valid document;
// the returned error is a [*LineError] and reports an engine bug.
func Parse(markdown string) (*Block, error) {
	p := NewDocumentParser()
	lines := splitLines(markdown)
	for i, line := range lines {
		if err := p.IncorporateLine(line, i+1); err != nil {
			return nil, err
		}
	}
	return p.Finalize(len(lines)), nil
}

// splitLines normalizes line endings and splits the source into lines.
// A trailing newline does not produce a final empty line.
func splitLines(source string) []string {
	normalized := string(lineEndings.Replace([]byte(source)))
	normalized = strings.TrimSuffix(normalized, "\n")
	return strings.Split(normalized, "\n")
}

// detabLine expands tabs to spaces
// using tab stops every tabStopSize columns, relative to the line.
func detabLine(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	sb := new(strings.Builder)
	sb.Grow(len(line))
	col := 0
	for i := 0; i < len(line); i++ {
		if line[i] == '\t' {
			n := tabStopSize - col%tabStopSize
			for j := 0; j < n; j++ {
				sb.WriteByte(' ')
			}
			col += n
		} else {
			sb.WriteByte(line[i])
			col++
		}
	}
	return sb.String()
}

// Finalize closes every block remaining on the open spine
// and runs the inline phase over the finished tree.
// It returns the document root.
// The parser must not be used after Finalize.
func (p *DocumentParser) Finalize(lineNumber int) *Block {
	for p.tip != nil {
		p.finalize(p.tip, lineNumber)
	}
	p.processInlines()
	return p.doc
}

// processInlines fills in the inline sequences of inline-capable leaves
// by parsing their string content, which is left in place.
// Block-phase effects on a node always precede its inline parse;
// each leaf's parse is independent of the others.
func (p *DocumentParser) processInlines() {
	Walk(p.doc.AsNode(), &WalkOptions{
		Pre: func(c *Cursor) bool {
			b := c.Node().Block()
			if b == nil {
				return false
			}
			switch b.kind {
			case ParagraphKind, ATXHeadingKind, SetextHeadingKind:
				b.inlines = p.inlineParser.Parse(strings.TrimSpace(b.stringContent))
				return false
			}
			return true
		},
	})
}
