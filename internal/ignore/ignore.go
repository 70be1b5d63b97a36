// Package ignore compiles gitignore-style exclusion rules for tree walks.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// List is a compiled set of exclusion rules. The zero value ignores nothing.
type List struct {
	rules  []string
	ignore *gitignore.GitIgnore
}

// New compiles patterns. Blank lines and comments are dropped.
func New(patterns ...string) *List {
	rules := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		rules = append(rules, p)
	}
	return &List{
		rules:  rules,
		ignore: gitignore.CompileIgnoreLines(rules...),
	}
}

// Load reads rules from an ignore file, one per line, and appends extra.
func Load(path string, extra ...string) (*List, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ignore file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ignore file %s: %w", path, err)
	}

	return New(append(lines, extra...)...), nil
}

// Len returns the number of compiled rules.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.rules)
}

// ShouldIgnore reports whether rel, a path relative to the walked root, is excluded.
func (l *List) ShouldIgnore(rel string, isDir bool) bool {
	if l == nil || l.ignore == nil || len(l.rules) == 0 {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir && !strings.HasSuffix(rel, "/") {
		rel += "/"
	}
	return l.ignore.MatchesPath(rel)
}
