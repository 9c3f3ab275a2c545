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
	"strings"

	"golang.org/x/net/html/atom"
)

// opensHTMLBlock reports whether a line begins an [HTML block]:
// an open or close tag of a block-level HTML element,
// a processing instruction, or a declaration.
//
// [HTML block]: https://spec.commonmark.org/0.30/#html-blocks
func opensHTMLBlock(s string) bool {
	if len(s) < 2 || s[0] != '<' {
		return false
	}
	if s[1] == '?' || s[1] == '!' {
		return true
	}
	i := 1
	closing := false
	if s[i] == '/' {
		closing = true
		i++
	}
	start := i
	for i < len(s) && (isASCIILetter(s[i]) || isASCIIDigit(s[i])) {
		i++
	}
	if i == start || i >= len(s) {
		return false
	}
	switch c := s[i]; {
	case c == ' ' || c == '\t':
	case c == '>':
	case c == '/' && !closing:
	default:
		return false
	}
	a := atom.Lookup([]byte(strings.ToLower(s[start:i])))
	if a == 0 {
		return false
	}
	_, ok := htmlBlockTags[a]
	return ok
}

// htmlBlockTags is the set of HTML elements
// whose tags can open an HTML block.
var htmlBlockTags = map[atom.Atom]struct{}{
	atom.Article:    {},
	atom.Header:     {},
	atom.Aside:      {},
	atom.Hgroup:     {},
	atom.Blockquote: {},
	atom.Hr:         {},
	atom.Iframe:     {},
	atom.Body:       {},
	atom.Li:         {},
	atom.Map:        {},
	atom.Button:     {},
	atom.Object:     {},
	atom.Canvas:     {},
	atom.Ol:         {},
	atom.Caption:    {},
	atom.Output:     {},
	atom.Col:        {},
	atom.P:          {},
	atom.Colgroup:   {},
	atom.Pre:        {},
	atom.Dd:         {},
	atom.Progress:   {},
	atom.Div:        {},
	atom.Section:    {},
	atom.Dl:         {},
	atom.Table:      {},
	atom.Td:         {},
	atom.Dt:         {},
	atom.Tbody:      {},
	atom.Embed:      {},
	atom.Textarea:   {},
	atom.Fieldset:   {},
	atom.Tfoot:      {},
	atom.Figcaption: {},
	atom.Th:         {},
	atom.Figure:     {},
	atom.Thead:      {},
	atom.Footer:     {},
	atom.Tr:         {},
	atom.Form:       {},
	atom.Ul:         {},
	atom.H1:         {},
	atom.H2:         {},
	atom.H3:         {},
	atom.H4:         {},
	atom.H5:         {},
	atom.H6:         {},
	atom.Video:      {},
	atom.Script:     {},
	atom.Style:      {},
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
