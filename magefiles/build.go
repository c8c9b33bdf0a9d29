// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for mapikit using Mage.
//
// Usage:
//
//	mage build        Compile the mapikit binary to bin/
//	mage test:all     Run all tests
//	mage test:race    Run all tests with the race detector
//	mage test:cover   Write a coverage profile and print the summary
//	mage lint         Run golangci-lint
//	mage clean        Remove build artifacts
//	mage install      Install mapikit to GOPATH/bin
//	mage stats        Print Go line counts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "mapikit"
	binaryDir  = "bin"
	cmdDir     = "./cmd/mapikit"
)

// ldflags stamps the version from MAPIKIT_VERSION into the binary.
func ldflags() string {
	version := os.Getenv("MAPIKIT_VERSION")
	if version == "" {
		return ""
	}
	return "-X main.Version=" + version
}

// Build compiles the mapikit binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := os.RemoveAll(coverProfile); err != nil {
		return err
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
