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

	"golang.org/x/text/cases"
)

// LinkDefinition is the data of a [link reference definition].
//
// [link reference definition]: https://spec.commonmark.org/0.30/#link-reference-definition
type LinkDefinition struct {
	Destination string
	Title       string
}

// ReferenceMap is a mapping of [normalized labels] to link definitions.
// The first definition recorded for a label wins;
// later conflicting definitions are ignored.
//
// [normalized labels]: https://spec.commonmark.org/0.30/#matches
type ReferenceMap map[string]LinkDefinition

// NormalizeLabel converts a link label to its lookup form:
// surrounding whitespace is trimmed,
// interior whitespace runs collapse to a single space,
// and the result is Unicode case-folded.
func NormalizeLabel(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}
