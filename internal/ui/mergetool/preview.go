package mergetool

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"

	"github.com/zhubert/mend/internal/ui"
)

// highlightFile syntax highlights content using the lexer picked from the
// file name, falling back to content analysis. On any chroma error the text
// is returned unchanged.
func highlightFile(content, filename, styleName string) string {
	lexer := lexers.Match(filename)
	if lexer == nil {
		lexer = lexers.Analyse(content)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return content
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return content
	}
	return buf.String()
}

// renderPreview builds the viewport content for a conflicted file: source
// lines are highlighted, conflict markers are drawn in the side colors, and
// every line is cut to width.
func renderPreview(content, filename, styleName string, width int) string {
	truncated := false
	if len(content) > ui.MaxPreviewBytes {
		content = content[:ui.MaxPreviewBytes]
		truncated = true
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\t", "    ")

	raw := strings.Split(content, "\n")
	lines := strings.Split(strings.TrimSuffix(highlightFile(content, filename, styleName), "\n"), "\n")
	if len(lines) < len(raw) {
		// chroma dropped or merged lines; fall back to plain text
		lines = raw
	}

	var b strings.Builder
	for i, line := range raw {
		if line == "" && i == len(raw)-1 {
			break
		}
		out := lines[i]
		switch classifyLine(line) {
		case markerOurs:
			out = ui.MarkerOursStyle.Render(line)
		case markerBase:
			out = ui.MarkerBaseStyle.Render(line)
		case markerSeparator:
			out = ui.MarkerSeparatorStyle.Render(line)
		case markerTheirs:
			out = ui.MarkerTheirsStyle.Render(line)
		}
		if width > 0 {
			out = ansi.Truncate(out, width, ui.PreviewTruncationTail)
		}
		b.WriteString(out)
		b.WriteString("\n")
	}
	if truncated {
		b.WriteString(ui.StatusInfoStyle.Render("(preview truncated)"))
		b.WriteString("\n")
	}
	return b.String()
}
