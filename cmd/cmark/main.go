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

// cmark converts CommonMark documents to HTML.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"zombiezen.com/go/cmark"
)

func main() {
	var showAST bool
	var outputPath string
	rootCmd := &cobra.Command{
		Use:   "cmark [file ...]",
		Short: "Convert CommonMark to HTML",
		Long: `cmark reads CommonMark from the named files (or standard input)
and writes HTML to standard output.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, outputPath, showAST)
		},
	}
	rootCmd.Flags().BoolVar(&showAST, "ast", false, "print the parse tree instead of HTML")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write output to `file` instead of stdout")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cmark:", err)
		os.Exit(1)
	}
}

func run(args []string, outputPath string, showAST bool) error {
	source, err := readSource(args)
	if err != nil {
		return err
	}
	doc, err := cmark.Parse(source)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if showAST {
		return dumpTree(out, doc)
	}
	return cmark.RenderHTML(out, doc)
}

func readSource(args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	sb := new(strings.Builder)
	for _, name := range args {
		data, err := os.ReadFile(name)
		if err != nil {
			return "", err
		}
		sb.Write(data)
	}
	return sb.String(), nil
}

// dumpTree writes the block and inline tree,
// one node per line, indented by depth.
func dumpTree(w io.Writer, doc *cmark.Block) error {
	var err error
	cmark.Walk(doc.AsNode(), &cmark.WalkOptions{
		Pre: func(c *cmark.Cursor) bool {
			if err != nil {
				return false
			}
			indent := strings.Repeat("  ", c.Depth())
			if b := c.Node().Block(); b != nil {
				_, err = fmt.Fprintf(w, "%s%v [%d, %d, %d]%s\n",
					indent, b.Kind(), b.StartLine(), b.StartColumn(), b.EndLine(), blockDetail(b))
				return err == nil
			}
			inline := c.Node().Inline()
			switch inline.Kind() {
			case cmark.LinkKind, cmark.ImageKind:
				_, err = fmt.Fprintf(w, "%s%v destination=%q title=%q\n",
					indent, inline.Kind(), inline.Destination(), inline.Title())
			case cmark.SoftBreakKind, cmark.HardBreakKind, cmark.EmphasisKind, cmark.StrongKind:
				_, err = fmt.Fprintf(w, "%s%v\n", indent, inline.Kind())
			default:
				_, err = fmt.Fprintf(w, "%s%v %q\n", indent, inline.Kind(), inline.Text())
			}
			return err == nil
		},
	})
	return err
}

func blockDetail(b *cmark.Block) string {
	switch b.Kind() {
	case cmark.ATXHeadingKind, cmark.SetextHeadingKind:
		return fmt.Sprintf(" level=%d", b.HeadingLevel())
	case cmark.FencedCodeKind:
		return fmt.Sprintf(" fence=%q info=%q", strings.Repeat(string(b.FenceChar()), b.FenceLength()), b.Info())
	case cmark.ListKind:
		return fmt.Sprintf(" tight=%t", b.IsTight())
	case cmark.IndentedCodeKind, cmark.HTMLBlockKind:
		return fmt.Sprintf(" content=%q", b.StringContent())
	}
	return ""
}
