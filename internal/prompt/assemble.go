// Package prompt composes the document context block and the final prompt
// sent to a provider adapter.
package prompt

import (
	"fmt"
	"strings"

	"github.com/docuchat/docuchat-server/internal/types"
)

// SystemPreamble is the system-role instruction shared by every provider.
const SystemPreamble = "You are a helpful assistant. Answer the user's questions clearly and concisely."

// Assemble concatenates file contents into one bounded context block.
// Files appear in input order — order is caller-supplied priority and is
// never changed here. Each file is capped at types.MaxContextCharsPerFile,
// a second and tighter bound than the extraction cap, because all files
// share a single prompt budget. An empty file list yields an empty string:
// the caller treats that as "answer from general knowledge".
func Assemble(files []types.FileContent) string {
	if len(files) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Content from uploaded files:\n\n")
	for i, f := range files {
		fmt.Fprintf(&sb, "File %d: %s\n", i+1, f.Name)
		sb.WriteString(truncateForContext(f.Content))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// BuildPrompt joins the assembled context (possibly empty) with the user's
// message. When context is present the model is told to ground its answer
// in it.
func BuildPrompt(context, message string) string {
	if context == "" {
		return message
	}
	return context + "\nUser question: " + message + "\n\nAnswer based on the file content above."
}

func truncateForContext(s string) string {
	runes := []rune(s)
	if len(runes) <= types.MaxContextCharsPerFile {
		return s
	}
	return string(runes[:types.MaxContextCharsPerFile]) + types.TruncationMarker
}
