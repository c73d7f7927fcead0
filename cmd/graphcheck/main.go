// graphcheck validates event graph files: schema, link reciprocity and a
// decode/encode/decode round trip. With -w it rewrites each file in its
// canonical form.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/creaturesim/server/internal/sequencer"
)

func main() {
	write := flag.Bool("w", false, "rewrite files in canonical form")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: graphcheck [-w] <dir|file.yaml>...")
		os.Exit(1)
	}

	files, err := collect(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	failed := 0
	for _, path := range files {
		summary, canonical, err := check(path)
		if err != nil {
			fmt.Printf("FAIL  %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("ok    %s  %s\n", path, summary)
		if *write {
			if err := os.WriteFile(path, canonical, 0o644); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
	}
	fmt.Printf("\n%d files, %d failed\n", len(files), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func collect(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			m, err := filepath.Glob(filepath.Join(arg, pattern))
			if err != nil {
				return nil, err
			}
			files = append(files, m...)
		}
	}
	sort.Strings(files)
	return files, nil
}

// check decodes path, re-encodes it and decodes the result again. The two
// encodings must match byte for byte.
func check(path string) (string, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	g, err := sequencer.Decode(raw)
	if err != nil {
		return "", nil, err
	}
	first, err := sequencer.Encode(g)
	if err != nil {
		return "", nil, err
	}
	again, err := sequencer.Decode(first)
	if err != nil {
		return "", nil, fmt.Errorf("re-decode: %w", err)
	}
	second, err := sequencer.Encode(again)
	if err != nil {
		return "", nil, err
	}
	if !bytes.Equal(first, second) {
		return "", nil, fmt.Errorf("round trip is not stable")
	}
	return summarize(g), first, nil
}

func summarize(g *sequencer.Graph) string {
	kinds := make(map[string]int)
	links := 0
	for _, n := range g.Nodes {
		kinds[n.Kind]++
		links += len(n.Nexts)
	}
	names := make([]string, 0, len(kinds))
	for k, c := range kinds {
		names = append(names, fmt.Sprintf("%s×%d", k, c))
	}
	sort.Strings(names)
	return fmt.Sprintf("id=%s nodes=%d links=%d starts=%d [%s]",
		g.ID, len(g.Nodes), links, len(g.Starts()), strings.Join(names, " "))
}
