//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for caseseam using Mage.
//
// Usage:
//
//	mage build              Compile caseseam to bin/
//	mage test:all           Run every test
//	mage test:unit          Run tests with -short and the race detector
//	mage test:cover         Write coverage.out and print the total
//	mage test:postgres -dsn Run the store contract suite against Postgres
//	mage lint               Run go vet and golangci-lint
//	mage clean              Remove build artifacts
//	mage install            Install caseseam to GOPATH/bin
//	mage stats              Print Go lines of code per package tree
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "caseseam"
	binaryDir  = "bin"
	cmdDir     = "./cmd/caseseam"
	versionVar = "github.com/mesh-intelligence/caseseam/internal/cli.Version"
)

// Build compiles the caseseam binary to bin/, stamping the version from
// the nearest git tag.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v",
		"-ldflags", "-X "+versionVar+"="+version(),
		"-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	for _, p := range []string{binaryDir, "coverage.out"} {
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// version returns the git-described version without a leading v, or
// "0.0.0-dev" outside a tagged checkout.
func version() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || out == "" {
		return "0.0.0-dev"
	}
	return strings.TrimPrefix(out, "v")
}
