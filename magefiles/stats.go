//go:build mage

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stats prints Go lines of code, production and test, for each top-level
// package tree (cmd, internal/<pkg>, pkg/<pkg>) as one JSON object per line,
// followed by the totals.
func Stats() error {
	type counts struct {
		Tree string `json:"tree"`
		Prod int    `json:"go_loc_prod"`
		Test int    `json:"go_loc_test"`
	}
	byTree := map[string]*counts{}
	var total counts
	total.Tree = "total"

	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path == "vendor" || path == ".git" || path == binaryDir || strings.HasPrefix(info.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		// Skip magefiles; they are build tooling, not project code.
		if !strings.HasSuffix(path, ".go") || strings.HasPrefix(path, "magefiles") {
			return nil
		}
		n, countErr := countLines(path)
		if countErr != nil {
			return nil
		}
		tree := treeOf(path)
		c, ok := byTree[tree]
		if !ok {
			c = &counts{Tree: tree}
			byTree[tree] = c
		}
		if strings.HasSuffix(path, "_test.go") {
			c.Test += n
			total.Test += n
		} else {
			c.Prod += n
			total.Prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	trees := make([]string, 0, len(byTree))
	for t := range byTree {
		trees = append(trees, t)
	}
	sort.Strings(trees)
	for _, t := range append(trees, "") {
		c := &total
		if t != "" {
			c = byTree[t]
		}
		line, err := json.Marshal(c)
		if err != nil {
			return err
		}
		fmt.Println(string(line))
	}
	return nil
}

// treeOf returns the first two path elements for internal/ and pkg/
// files and the first element otherwise.
func treeOf(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 2 && (parts[0] == "internal" || parts[0] == "pkg") {
		return parts[0] + "/" + parts[1]
	}
	if len(parts) > 1 {
		return parts[0]
	}
	return "."
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
