package report

import (
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlight writes src to w coloured for a 256-colour terminal using the
// named chroma lexer. Unknown lexers fall back to plain text.
func Highlight(w io.Writer, src, lexerName string) error {
	lexer := lexers.Get(lexerName)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		_, werr := io.WriteString(w, src)
		return werr
	}
	return formatter.Format(w, style, iterator)
}

// HighlightString is Highlight into a string; on failure src is returned as is.
func HighlightString(src, lexerName string) string {
	var b strings.Builder
	if err := Highlight(&b, src, lexerName); err != nil {
		return src
	}
	return b.String()
}
