//-------------------------------------------------------------------------
//
// pgEdge Cost Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package version provides build and version information for pgedge-costdw.
package version

import (
	"fmt"
	"runtime"
)

// Build information set at compile time via ldflags:
//
//	-ldflags "-X github.com/pgEdge/pgedge-costdw/pkg/version.Version=0.3.1"
var (
	Version   = "0.3.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go" yaml:"go"`
}

// Current returns the build information of the running binary.
func Current() Build {
	return Build{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// String formats b on one line.
func (b Build) String() string {
	return fmt.Sprintf("pgedge-costdw %s (commit: %s, built: %s, go: %s)",
		b.Version, b.Commit, b.BuildDate, b.GoVersion)
}

// Info returns formatted version information.
func Info() string {
	return Current().String()
}

// Short returns just the version string.
func Short() string {
	return Version
}
