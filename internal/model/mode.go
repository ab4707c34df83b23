// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// Mode is an operating profile sent to the assistant service to bias its
// behavior.
type Mode string

const (
	ModeGeneral       Mode = "General"
	ModeCodeAnalysis  Mode = "Code Analysis"
	ModeDebugger      Mode = "Debugger"
	ModeCodeReviewer  Mode = "Code Reviewer"
	ModeCodeGenerator Mode = "Code Generator"
	ModeDocumentation Mode = "Documentation"
	ModeExplainCode   Mode = "Explain Code"
	ModeOptimization  Mode = "Optimization"

	// ModeExplainCodeJSON routes the exchange to the structured-analysis
	// endpoint instead of /chat.
	ModeExplainCodeJSON Mode = "Explain Code JSON"
)

// DefaultMode is selected for a fresh client.
const DefaultMode = ModeGeneral

// FallbackModes is used when the service's mode list cannot be fetched.
var FallbackModes = []Mode{
	ModeGeneral,
	ModeCodeAnalysis,
	ModeDebugger,
	ModeCodeReviewer,
	ModeCodeGenerator,
	ModeDocumentation,
	ModeExplainCode,
	ModeOptimization,
}

// QuickModes are offered on the empty-conversation screen.
var QuickModes = []Mode{ModeCodeAnalysis, ModeDebugger, ModeDocumentation}

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// IsStructured reports whether the mode uses the structured-analysis endpoint.
func (m Mode) IsStructured() bool {
	return m == ModeExplainCodeJSON
}

// ModesFromStrings converts service mode names, dropping blanks and
// duplicates and always making the structured-analysis mode available.
func ModesFromStrings(names []string) []Mode {
	seen := make(map[Mode]bool, len(names)+1)
	modes := make([]Mode, 0, len(names)+1)
	for _, name := range names {
		m := Mode(strings.TrimSpace(name))
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		modes = append(modes, m)
	}
	if !seen[ModeExplainCodeJSON] {
		modes = append(modes, ModeExplainCodeJSON)
	}
	return modes
}

// NextMode returns the mode after current in modes, wrapping around. A
// negative step moves backwards. If current is not in modes the first mode
// is returned.
func NextMode(modes []Mode, current Mode, step int) Mode {
	if len(modes) == 0 {
		return current
	}
	idx := -1
	for i, m := range modes {
		if m == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return modes[0]
	}
	n := len(modes)
	return modes[((idx+step)%n+n)%n]
}

// =============================================================================
// TEMPERATURE
// =============================================================================

const (
	DefaultTemperature = 0.7
	MinTemperature     = 0.0
	MaxTemperature     = 1.0
	TemperatureStep    = 0.1
)

// ClampTemperature forces t into [MinTemperature, MaxTemperature] and rounds
// it to one decimal place.
func ClampTemperature(t float64) float64 {
	if t < MinTemperature {
		t = MinTemperature
	}
	if t > MaxTemperature {
		t = MaxTemperature
	}
	return float64(int(t*10+0.5)) / 10
}
