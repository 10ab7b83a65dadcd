//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the echosign project using Mage.
//
// Usage:
//
//	mage build            Compile the echosign binary to bin/
//	mage test             Run all tests
//	mage testShort        Run tests that need no external services
//	mage testIntegration  Run the Redis and Postgres store tests
//	mage serve            Build and run the HTTP server
//	mage lint             Run golangci-lint
//	mage clean            Remove build artifacts
//	mage install          Install echosign to GOPATH/bin
//	mage stats            Print Go LOC and documentation word counts
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "echosign"
	binaryDir  = "bin"
	cmdDir     = "./cmd/echosign"
)

// Environment variables that enable the external store tests.
const (
	envRedisAddr   = "ECHOSIGN_TEST_REDIS_ADDR"
	envPostgresDSN = "ECHOSIGN_TEST_POSTGRES_DSN"
)

// Build compiles the echosign binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests. Store tests for Redis and Postgres skip unless
// their environment variables are set.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// TestShort runs the tests with -short and the race detector.
func TestShort() error {
	return sh.RunV("go", "test", "-short", "-race", "./...")
}

// TestIntegration runs the Redis and Postgres store tests. Both
// ECHOSIGN_TEST_REDIS_ADDR and ECHOSIGN_TEST_POSTGRES_DSN must be set.
func TestIntegration() error {
	for _, env := range []string{envRedisAddr, envPostgresDSN} {
		if os.Getenv(env) == "" {
			return fmt.Errorf("%s is not set", env)
		}
	}
	return sh.RunV("go", "test", "-count=1", "./internal/redisstore/...", "./internal/postgres/...", "./internal/storage/...")
}

// Serve builds the binary and runs the HTTP server with the default
// configuration.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "serve")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV("go", "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Stats prints Go lines of code and documentation word counts.
func Stats() error {
	var prodLines, testLines int

	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			switch path {
			case "vendor", ".git", "_examples", binaryDir:
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasPrefix(path, "magefiles") {
			return nil
		}
		count, countErr := countLines(path)
		if countErr != nil {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") {
			testLines += count
		} else {
			prodLines += count
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Lines of code (Go, total):      %d\n", prodLines+testLines)
	fmt.Printf("Words (documentation):          %d\n", countDocWords())
	return nil
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

// countDocWords counts the words of the top-level markdown files.
func countDocWords() int {
	matches, err := filepath.Glob("*.md")
	if err != nil {
		return 0
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		inWord := false
		for _, r := range string(data) {
			if unicode.IsSpace(r) {
				inWord = false
			} else if !inWord {
				inWord = true
				total++
			}
		}
	}
	return total
}
