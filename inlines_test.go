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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func summarizeInlines(inlines []*Inline) []testInline {
	var out []testInline
	for _, c := range inlines {
		out = append(out, summarizeInline(c))
	}
	return out
}

func TestScanDelims(t *testing.T) {
	tests := []struct {
		prefix    string
		run       string
		suffix    string
		wantCount int
		wantOpen  bool
		wantClose bool
	}{
		{"", "*", "abc", 1, true, false},
		{"abc", "*", "", 1, false, true},
		{"a", "*", "b", 1, true, true},
		{"a ", "*", " b", 1, false, false},
		{"a", "**", "b", 2, true, true},
		{"a", "***", "b", 3, true, true},
		{"a", "****", "b", 4, false, false},
		{"", "**", "abc", 2, true, false},
		// Underscores refuse intraword emphasis.
		{"a", "_", "b", 1, false, false},
		{"aa", "_", `"bb"`, 1, false, true},
		{`"bb"`, "_", "cc", 1, true, false},
		{`"a"`, "_", `"b"`, 1, true, true},
		{" ", "_", "abc", 1, true, false},
	}
	for _, test := range tests {
		p := &InlineParser{
			subject: test.prefix + test.run + test.suffix,
			pos:     len(test.prefix),
		}
		got := p.scanDelims(test.run[0])
		if got.count != test.wantCount || got.canOpen != test.wantOpen || got.canClose != test.wantClose {
			t.Errorf("scanDelims(%q) at %d in %q = %+v; want count: %d, canOpen: %t, canClose: %t",
				test.run[0], p.pos, p.subject, got, test.wantCount, test.wantOpen, test.wantClose)
		}
	}
}

func TestInlineParser(t *testing.T) {
	softbreak := testInline{Kind: "SoftBreak"}
	hardbreak := testInline{Kind: "HardBreak"}
	code := func(s string) testInline { return testInline{Kind: "CodeSpan", Text: s} }
	em := func(children ...testInline) testInline { return testInline{Kind: "Emphasis", Children: children} }
	strong := func(children ...testInline) testInline { return testInline{Kind: "Strong", Children: children} }

	tests := []struct {
		name    string
		subject string
		want    []testInline
	}{
		{
			name:    "Plain",
			subject: "hello world",
			want:    []testInline{str("hello world")},
		},
		{
			name:    "SoftBreak",
			subject: "foo\nbar",
			want:    []testInline{str("foo"), softbreak, str("bar")},
		},
		{
			name:    "HardBreakFromSpaces",
			subject: "foo  \nbar",
			want:    []testInline{str("foo"), hardbreak, str("bar")},
		},
		{
			name:    "HardBreakFromBackslash",
			subject: "foo\\\nbar",
			want:    []testInline{str("foo"), hardbreak, str("bar")},
		},
		{
			name:    "SingleTrailingSpace",
			subject: "foo \nbar",
			want:    []testInline{str("foo"), softbreak, str("bar")},
		},
		{
			name:    "EscapedPunctuation",
			subject: `\*not emphasis\*`,
			want:    []testInline{str("*"), str("not emphasis"), str("*")},
		},
		{
			name:    "EscapedNonPunctuation",
			subject: `\a`,
			want:    []testInline{str(`\`), str("a")},
		},
		{
			name:    "Emphasis",
			subject: "*foo*",
			want:    []testInline{em(str("foo"))},
		},
		{
			name:    "EmphasisUnderscore",
			subject: "_foo_",
			want:    []testInline{em(str("foo"))},
		},
		{
			name:    "Strong",
			subject: "**foo**",
			want:    []testInline{strong(str("foo"))},
		},
		{
			name:    "StrongInEmphasis",
			subject: "*foo **bar** baz*",
			want:    []testInline{em(str("foo "), strong(str("bar")), str(" baz"))},
		},
		{
			name:    "TripleDelimiters",
			subject: "***both***",
			want:    []testInline{strong(em(str("both")))},
		},
		{
			name:    "UnclosedEmphasisStaysLiteral",
			subject: "*foo",
			want:    []testInline{str("*"), str("foo")},
		},
		{
			name:    "UnclosedStrongStaysLiteral",
			subject: "**foo",
			want:    []testInline{str("**"), str("foo")},
		},
		{
			name:    "NoIntrawordUnderscore",
			subject: "a_b_c",
			want:    []testInline{str("a"), str("_"), str("b"), str("_"), str("c")},
		},
		{
			name:    "CodeSpan",
			subject: "`code`",
			want:    []testInline{code("code")},
		},
		{
			name:    "CodeSpanCollapsesWhitespace",
			subject: "`a  b\nc`",
			want:    []testInline{code("a b c")},
		},
		{
			name:    "CodeSpanWithBacktick",
			subject: "`` ` ``",
			want:    []testInline{code("`")},
		},
		{
			name:    "UnclosedCodeSpan",
			subject: "`foo",
			want:    []testInline{str("`"), str("foo")},
		},
		{
			name:    "CodeSpanIgnoresEmphasis",
			subject: "`*lit*`",
			want:    []testInline{code("*lit*")},
		},
		{
			name:    "URIAutolink",
			subject: "<https://example.com/a?b=c>",
			want: []testInline{{
				Kind:        "Link",
				Destination: "https://example.com/a?b=c",
				Children:    []testInline{str("https://example.com/a?b=c")},
			}},
		},
		{
			name:    "EmailAutolink",
			subject: "<foo@bar.example>",
			want: []testInline{{
				Kind:        "Link",
				Destination: "foo@bar.example",
				Children:    []testInline{str("mailto:foo@bar.example")},
			}},
		},
		{
			name:    "NotAnAutolink",
			subject: "<1 not a tag>",
			want:    []testInline{str("<"), str("1 not a tag>")},
		},
		{
			name:    "RawHTMLTag",
			subject: `a <b class="x">c</b>`,
			want: []testInline{
				str("a "),
				{Kind: "RawHTML", Text: `<b class="x">`},
				str("c"),
				{Kind: "RawHTML", Text: "</b>"},
			},
		},
		{
			name:    "HTMLComment",
			subject: "x <!-- y --> z",
			want: []testInline{
				str("x "),
				{Kind: "RawHTML", Text: "<!-- y -->"},
				str(" z"),
			},
		},
		{
			name:    "NamedEntity",
			subject: "a&amp;b",
			want:    []testInline{str("a"), {Kind: "Entity", Text: "&amp;"}, str("b")},
		},
		{
			name:    "NumericEntity",
			subject: "&#120;&#x2603;",
			want: []testInline{
				{Kind: "Entity", Text: "&#120;"},
				{Kind: "Entity", Text: "&#x2603;"},
			},
		},
		{
			name:    "BareAmpersand",
			subject: "&nope",
			want:    []testInline{str("&"), str("nope")},
		},
		{
			name:    "InlineLink",
			subject: `[text](/url "title")`,
			want: []testInline{{
				Kind:        "Link",
				Destination: "/url",
				Title:       "title",
				Children:    []testInline{str("text")},
			}},
		},
		{
			name:    "InlineLinkNoTitle",
			subject: "[text](/url)",
			want: []testInline{{
				Kind:        "Link",
				Destination: "/url",
				Children:    []testInline{str("text")},
			}},
		},
		{
			name:    "InlineLinkAngleDestination",
			subject: "[a](</url with space>)",
			want: []testInline{{
				Kind:        "Link",
				Destination: "/url with space",
				Children:    []testInline{str("a")},
			}},
		},
		{
			name:    "LinkLabelWithNestedBrackets",
			subject: "[a[b]c](/u)",
			want: []testInline{{
				Kind:        "Link",
				Destination: "/u",
				Children:    []testInline{str("a"), str("["), str("b"), str("]"), str("c")},
			}},
		},
		{
			name:    "EmphasisInLinkLabel",
			subject: "[*em*](/u)",
			want: []testInline{{
				Kind:        "Link",
				Destination: "/u",
				Children:    []testInline{em(str("em"))},
			}},
		},
		{
			name:    "UnmatchedBracketIsLiteral",
			subject: "[no link",
			want:    []testInline{str("["), str("no link")},
		},
		{
			name:    "Image",
			subject: "![alt](/img.png)",
			want: []testInline{{
				Kind:        "Image",
				Destination: "/img.png",
				Children:    []testInline{str("alt")},
			}},
		},
		{
			name:    "BangWithoutImage",
			subject: "hi! there",
			want:    []testInline{str("hi"), str("!"), str(" there")},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := new(InlineParser)
			got := summarizeInlines(p.Parse(test.subject))
			if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Parse(%q) (-want +got):\n%s", test.subject, diff)
			}
		})
	}
}

func TestInlineParserReferences(t *testing.T) {
	refs := ReferenceMap{
		"foo":     {Destination: "/url", Title: "a title"},
		"bar baz": {Destination: "/other"},
	}
	tests := []struct {
		subject string
		want    []testInline
	}{
		{
			subject: "[foo]",
			want: []testInline{{
				Kind:        "Link",
				Destination: "/url",
				Title:       "a title",
				Children:    []testInline{str("foo")},
			}},
		},
		{
			subject: "[foo][]",
			want: []testInline{{
				Kind:        "Link",
				Destination: "/url",
				Title:       "a title",
				Children:    []testInline{str("foo")},
			}},
		},
		{
			subject: "[see][foo]",
			want: []testInline{{
				Kind:        "Link",
				Destination: "/url",
				Title:       "a title",
				Children:    []testInline{str("see")},
			}},
		},
		{
			// Labels match case-insensitively with collapsed whitespace.
			subject: "[Bar  Baz]",
			want: []testInline{{
				Kind:        "Link",
				Destination: "/other",
				Children:    []testInline{str("Bar  Baz")},
			}},
		},
		{
			subject: "[missing]",
			want:    []testInline{str("["), str("missing"), str("]")},
		},
	}
	for _, test := range tests {
		p := &InlineParser{References: refs}
		got := summarizeInlines(p.Parse(test.subject))
		if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Parse(%q) (-want +got):\n%s", test.subject, diff)
		}
	}
}

func TestEmphasisFallbackPreservesBytes(t *testing.T) {
	// Opening runs that never close must survive byte for byte.
	subjects := []string{
		"*foo",
		"**foo",
		"***foo",
		"foo *bar **baz",
		"_under _score",
	}
	for _, subject := range subjects {
		p := new(InlineParser)
		sb := new(strings.Builder)
		for _, inline := range p.Parse(subject) {
			if inline.Kind() != TextKind {
				t.Errorf("Parse(%q) contains %v node; want all Text", subject, inline.Kind())
			}
			sb.WriteString(inline.Text())
		}
		if got := sb.String(); got != subject {
			t.Errorf("Parse(%q) concatenates to %q; want input preserved", subject, got)
		}
	}
}

func TestUnescapeString(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"", ""},
		{"plain", "plain"},
		{`\*`, "*"},
		{`a\.b\.c`, "a.b.c"},
		{`\a`, `\a`},
		{`tr\ailing\`, `tr\ailing\`},
	}
	for _, test := range tests {
		if got := unescapeString(test.s); got != test.want {
			t.Errorf("unescapeString(%q) = %q; want %q", test.s, got, test.want)
		}
	}
}
