// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"bytes"
	"encoding/json"

	"github.com/cerevo/cerevo-tui/internal/backend"
)

// AnalysisCompleted is shown when a structured analysis carries no content.
const AnalysisCompleted = "Code analysis completed."

// FormatAnalysis renders a structured-analysis response as reply text. A JSON
// object or array is pretty-printed with two-space indentation; otherwise the
// raw model output is used.
func FormatAnalysis(resp *backend.ExplainResponse) string {
	if resp == nil {
		return AnalysisCompleted
	}
	if doc := bytes.TrimSpace(resp.JSON); len(doc) > 0 && (doc[0] == '{' || doc[0] == '[') {
		var buf bytes.Buffer
		if err := json.Indent(&buf, doc, "", "  "); err == nil {
			return buf.String()
		}
	}
	if resp.Raw != "" {
		return resp.Raw
	}
	if resp.RawOutput != "" {
		return resp.RawOutput
	}
	return AnalysisCompleted
}
