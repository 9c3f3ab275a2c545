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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"foo", "foo"},
		{"  foo  ", "foo"},
		{"Foo Bar", "foo bar"},
		{"foo\n   bar", "foo bar"},
		{"ΑΓΩ", "αγω"},
		{"", ""},
	}
	for _, test := range tests {
		if got := NormalizeLabel(test.s); got != test.want {
			t.Errorf("NormalizeLabel(%q) = %q; want %q", test.s, got, test.want)
		}
	}
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantRest string
		wantOK   bool
		wantRefs ReferenceMap
	}{
		{
			name:     "WithTitle",
			content:  `[foo]: /url "title"`,
			wantRest: "",
			wantOK:   true,
			wantRefs: ReferenceMap{"foo": {Destination: "/url", Title: "title"}},
		},
		{
			name:     "NoTitle",
			content:  "[foo]: /url",
			wantRest: "",
			wantOK:   true,
			wantRefs: ReferenceMap{"foo": {Destination: "/url"}},
		},
		{
			name:     "AngleDestination",
			content:  "[foo]: </my url>",
			wantRest: "",
			wantOK:   true,
			wantRefs: ReferenceMap{"foo": {Destination: "/my url"}},
		},
		{
			name:     "FollowedByContent",
			content:  "[foo]: /url\nnext line",
			wantRest: "next line",
			wantOK:   true,
			wantRefs: ReferenceMap{"foo": {Destination: "/url"}},
		},
		{
			name:     "TitleOnNextLine",
			content:  "[foo]: /url\n\"title\"",
			wantRest: "",
			wantOK:   true,
			wantRefs: ReferenceMap{"foo": {Destination: "/url", Title: "title"}},
		},
		{
			name:     "MissingColon",
			content:  "[foo] /url",
			wantRest: "[foo] /url",
			wantOK:   false,
			wantRefs: ReferenceMap{},
		},
		{
			name:     "MissingDestination",
			content:  "[foo]:",
			wantRest: "[foo]:",
			wantOK:   false,
			wantRefs: ReferenceMap{},
		},
		{
			name:     "TrailingGarbage",
			content:  "[foo]: /url extra",
			wantRest: "[foo]: /url extra",
			wantOK:   false,
			wantRefs: ReferenceMap{},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := &InlineParser{References: make(ReferenceMap)}
			rest, ok := p.ParseReference(test.content)
			if rest != test.wantRest || ok != test.wantOK {
				t.Errorf("ParseReference(%q) = %q, %t; want %q, %t", test.content, rest, ok, test.wantRest, test.wantOK)
			}
			if diff := cmp.Diff(test.wantRefs, p.References); diff != "" {
				t.Errorf("ParseReference(%q) references (-want +got):\n%s", test.content, diff)
			}
		})
	}
}

func TestParseReferenceFirstDefinitionWins(t *testing.T) {
	p := &InlineParser{References: make(ReferenceMap)}
	if _, ok := p.ParseReference("[foo]: /first"); !ok {
		t.Fatal("first definition did not parse")
	}
	if _, ok := p.ParseReference("[FOO]: /second"); !ok {
		t.Fatal("second definition did not parse")
	}
	want := ReferenceMap{"foo": {Destination: "/first"}}
	if diff := cmp.Diff(want, p.References); diff != "" {
		t.Errorf("references (-want +got):\n%s", diff)
	}
}
