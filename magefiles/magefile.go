//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main contains Mage build targets for geodataset developer tooling.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build compiles every package.
func Build() error {
	return sh.RunV("go", "build", "./...")
}

// Vet runs go vet over every package.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Test runs the unit tests after vetting.
func Test() error {
	mg.Deps(Vet)
	return sh.RunV("go", "test", "./...")
}

// Race runs the unit tests with the race detector.
func Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Cover writes a coverage profile to coverage.out and prints the summary.
func Cover() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

// Clean removes generated artifacts.
func Clean() error {
	return sh.Rm("coverage.out")
}

// Stats prints Go production and test line counts and the word count of the
// markdown documents at the repository root.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipDirs are not counted by Stats.
var skipDirs = map[string]bool{"_examples": true, ".git": true, "bin": true}

// walkFiles calls fn for every regular file under root whose name passes keep.
func walkFiles(root string, keep func(name string) bool, fn func(data []byte)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !keep(d.Name()) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		fn(data)
		return nil
	})
}

// countGoLines counts non-blank lines in _test.go files when testOnly is
// set, and in the other .go files otherwise.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	keep := func(name string) bool {
		return strings.HasSuffix(name, ".go") && strings.HasSuffix(name, "_test.go") == testOnly
	}
	err := walkFiles(root, keep, func(data []byte) {
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				total++
			}
		}
	})
	return total, err
}

// countDocWords counts words in the .md, .yaml, and .yml files under root.
func countDocWords(root string) (int, error) {
	total := 0
	keep := func(name string) bool {
		switch filepath.Ext(name) {
		case ".md", ".yaml", ".yml":
			return true
		}
		return false
	}
	err := walkFiles(root, keep, func(data []byte) {
		total += len(strings.Fields(string(data)))
	})
	return total, err
}
