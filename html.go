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
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// RenderHTML renders a finished block tree as HTML.
// Reference links were resolved during the inline phase,
// so the tree carries everything the renderer needs.
func RenderHTML(w io.Writer, doc *Block) error {
	buf := appendBlockHTML(nil, doc, false)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("render markdown to html: %w", err)
	}
	return nil
}

func appendBlockHTML(dst []byte, b *Block, tight bool) []byte {
	switch b.Kind() {
	case DocumentKind:
		n := len(dst)
		dst = appendBlocksHTML(dst, b.children, false)
		if len(dst) > n {
			dst = append(dst, '\n')
		}
	case ParagraphKind:
		if tight {
			dst = appendInlinesHTML(dst, b.inlines)
		} else {
			dst = append(dst, "<p>"...)
			dst = appendInlinesHTML(dst, b.inlines)
			dst = append(dst, "</p>"...)
		}
	case BlockQuoteKind:
		dst = append(dst, "<blockquote>\n"...)
		dst = appendBlocksHTML(dst, b.children, false)
		dst = append(dst, "\n</blockquote>"...)
	case ATXHeadingKind, SetextHeadingKind:
		level := strconv.Itoa(b.level)
		dst = append(dst, "<h"...)
		dst = append(dst, level...)
		dst = append(dst, ">"...)
		dst = appendInlinesHTML(dst, b.inlines)
		dst = append(dst, "</h"...)
		dst = append(dst, level...)
		dst = append(dst, ">"...)
	case IndentedCodeKind, FencedCodeKind:
		dst = append(dst, "<pre><code"...)
		if words := strings.Fields(b.fence.info); len(words) > 0 {
			dst = append(dst, ` class="language-`...)
			dst = append(dst, html.EscapeString(words[0])...)
			dst = append(dst, `"`...)
		}
		dst = append(dst, ">"...)
		dst = append(dst, html.EscapeString(b.stringContent)...)
		dst = append(dst, "</code></pre>"...)
	case ListKind:
		ordered := b.list.Type == OrderedList
		if ordered {
			dst = append(dst, "<ol"...)
			if b.list.Start != 1 {
				dst = append(dst, ` start="`...)
				dst = strconv.AppendInt(dst, int64(b.list.Start), 10)
				dst = append(dst, `"`...)
			}
			dst = append(dst, ">\n"...)
		} else {
			dst = append(dst, "<ul>\n"...)
		}
		dst = appendBlocksHTML(dst, b.children, b.tight)
		if ordered {
			dst = append(dst, "\n</ol>"...)
		} else {
			dst = append(dst, "\n</ul>"...)
		}
	case ListItemKind:
		dst = append(dst, "<li>"...)
		inner := appendBlocksHTML(nil, b.children, tight)
		dst = append(dst, bytes.TrimSpace(inner)...)
		dst = append(dst, "</li>"...)
	case HTMLBlockKind:
		dst = append(dst, b.stringContent...)
	case ThematicBreakKind:
		dst = append(dst, "<hr>"...)
	case ReferenceDefKind:
		// Nothing to render.
	}
	return dst
}

func appendBlocksHTML(dst []byte, blocks []*Block, tight bool) []byte {
	first := true
	for _, c := range blocks {
		if c.kind == ReferenceDefKind {
			continue
		}
		if !first {
			dst = append(dst, '\n')
		}
		first = false
		dst = appendBlockHTML(dst, c, tight)
	}
	return dst
}

func appendInlinesHTML(dst []byte, inlines []*Inline) []byte {
	for _, c := range inlines {
		dst = appendInlineHTML(dst, c)
	}
	return dst
}

func appendInlineHTML(dst []byte, inline *Inline) []byte {
	switch inline.Kind() {
	case TextKind:
		dst = append(dst, html.EscapeString(inline.text)...)
	case SoftBreakKind:
		dst = append(dst, '\n')
	case HardBreakKind:
		dst = append(dst, "<br>\n"...)
	case CodeSpanKind:
		dst = append(dst, "<code>"...)
		dst = append(dst, html.EscapeString(inline.text)...)
		dst = append(dst, "</code>"...)
	case EntityKind:
		dst = append(dst, html.EscapeString(html.UnescapeString(inline.text))...)
	case RawHTMLKind:
		dst = append(dst, inline.text...)
	case EmphasisKind:
		dst = append(dst, "<em>"...)
		dst = appendInlinesHTML(dst, inline.children)
		dst = append(dst, "</em>"...)
	case StrongKind:
		dst = append(dst, "<strong>"...)
		dst = appendInlinesHTML(dst, inline.children)
		dst = append(dst, "</strong>"...)
	case LinkKind:
		dst = append(dst, `<a href="`...)
		dst = append(dst, html.EscapeString(NormalizeURI(inline.destination))...)
		dst = append(dst, `"`...)
		if inline.title != "" {
			dst = append(dst, ` title="`...)
			dst = append(dst, html.EscapeString(inline.title)...)
			dst = append(dst, `"`...)
		}
		dst = append(dst, ">"...)
		dst = appendInlinesHTML(dst, inline.children)
		dst = append(dst, "</a>"...)
	case ImageKind:
		dst = append(dst, `<img src="`...)
		dst = append(dst, html.EscapeString(NormalizeURI(inline.destination))...)
		dst = append(dst, `" alt="`...)
		dst = append(dst, html.EscapeString(appendInlineText(nil, inline.children).String())...)
		dst = append(dst, `"`...)
		if inline.title != "" {
			dst = append(dst, ` title="`...)
			dst = append(dst, html.EscapeString(inline.title)...)
			dst = append(dst, `"`...)
		}
		dst = append(dst, ">"...)
	}
	return dst
}

// appendInlineText flattens an inline sequence to plain text,
// as used for image alt attributes.
func appendInlineText(sb *strings.Builder, inlines []*Inline) *strings.Builder {
	if sb == nil {
		sb = new(strings.Builder)
	}
	for _, c := range inlines {
		switch c.Kind() {
		case TextKind, CodeSpanKind:
			sb.WriteString(c.text)
		case EntityKind:
			sb.WriteString(html.UnescapeString(c.text))
		case SoftBreakKind, HardBreakKind:
			sb.WriteByte('\n')
		default:
			appendInlineText(sb, c.children)
		}
	}
	return sb
}

// NormalizeURI percent-encodes any characters in a string
// that are not reserved or unreserved URI characters,
// and also the reserved characters '[' and ']'.
// This is commonly used for transforming CommonMark link destinations
// into strings suitable for href or src attributes.
func NormalizeURI(s string) string {
	// RFC 3986 reserved and unreserved characters, except '[' and ']'.
	const safeSet = `;/?:@&=+$,-_.!~*'()#`

	sb := new(strings.Builder)
	sb.Grow(len(s))
	skip := 0
	var buf [utf8.UTFMax]byte
	for i, c := range s {
		if skip > 0 {
			skip--
			sb.WriteRune(c)
			continue
		}
		switch {
		case c == '%':
			if i+2 < len(s) && isHexDigit(s[i+1]) && isHexDigit(s[i+2]) {
				skip = 2
				sb.WriteByte('%')
			} else {
				sb.WriteString("%25")
			}
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || strings.ContainsRune(safeSet, c):
			sb.WriteRune(c)
		default:
			n := utf8.EncodeRune(buf[:], c)
			for _, b := range buf[:n] {
				sb.WriteByte('%')
				sb.WriteByte(urlHexDigit(b >> 4))
				sb.WriteByte(urlHexDigit(b & 0x0f))
			}
		}
	}
	return sb.String()
}

func isHexDigit(c byte) bool {
	return 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F' || '0' <= c && c <= '9'
}

func urlHexDigit(x byte) byte {
	switch {
	case x < 0xa:
		return '0' + x
	case x < 0x10:
		return 'A' + x - 0xa
	default:
		panic("out of bounds")
	}
}
