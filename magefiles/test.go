//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets.
type Test mg.Namespace

// postgresDSNEnv is read by the sqlstore Postgres contract test.
const postgresDSNEnv = "CASESEAM_TEST_POSTGRES_DSN"

// All runs every test.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs tests in short mode with the race detector.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "-short", "-race", "./...")
}

// Cover writes coverage.out and prints the total coverage line.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	out, err := sh.Output(binGo, "tool", "cover", "-func=coverage.out")
	if err != nil {
		return err
	}
	lines := strings.Split(out, "\n")
	fmt.Println(lines[len(lines)-1])
	return nil
}

// Postgres runs the store contract suite against a scratch Postgres
// database. Pass -dsn or set CASESEAM_TEST_POSTGRES_DSN. The suite drops
// and recreates the cases table.
func (Test) Postgres() error {
	fs := flag.NewFlagSet("test:postgres", flag.ContinueOnError)
	dsn := fs.String("dsn", os.Getenv(postgresDSNEnv), "Postgres connection string")
	parseTargetFlags(fs)
	if *dsn == "" {
		return fmt.Errorf("test:postgres needs -dsn or %s", postgresDSNEnv)
	}
	env := map[string]string{postgresDSNEnv: *dsn}
	return sh.RunWithV(env, binGo, "test", "-v", "-run", "Postgres", "./internal/sqlstore/")
}
