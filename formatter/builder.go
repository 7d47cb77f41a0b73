package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/gnolang/tspec/internal/funcspec"
	"github.com/gnolang/tspec/specgen"
)

const indent = "    "

var (
	fileStyle    = color.New(color.FgCyan, color.Bold)
	kindStyle    = color.New(color.FgYellow, color.Bold)
	tagStyle     = color.New(color.FgHiBlue, color.Bold)
	idStyle      = color.New(color.FgGreen, color.Bold)
	commentStyle = color.New(color.FgHiBlack)
)

// SetColor turns colored output on or off for every formatter.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

const functionTemplate = `{{header .Kind .Owner .Name}}
{{range .Blocks}}{{specBlock .}}{{end}}`

var funcTemplate = template.Must(template.New("function").Funcs(template.FuncMap{
	"header":    header,
	"specBlock": specBlock,
}).Parse(functionTemplate))

// GenerateFormattedSpecs renders the predicates and function specs of every
// output as annotation comments.
func GenerateFormattedSpecs(outs []specgen.Output) string {
	var builder strings.Builder
	for _, out := range outs {
		builder.WriteString(fileStyle.Sprintf("--> %s\n", out.File))
		builder.WriteString(FormatPredicates(out.Predicates))
		for _, fn := range out.Functions {
			builder.WriteString(FormatFunction(fn))
		}
		for _, t := range out.Tactics {
			builder.WriteString(FormatTactic(t))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

// FormatPredicates renders predicate declarations as one comment.
func FormatPredicates(preds []specgen.Predicate) string {
	if len(preds) == 0 {
		return ""
	}
	var builder strings.Builder
	builder.WriteString(commentStyle.Sprint("/*") + "\n")
	for i, p := range preds {
		if i > 0 {
			builder.WriteString("\n")
		}
		text := strings.ReplaceAll(p.Text, "\n", "\n"+indent)
		builder.WriteString(indent + tagStyle.Sprint("@pred") + " " + text + "\n")
	}
	builder.WriteString(commentStyle.Sprint("*/") + "\n")
	return builder.String()
}

func FormatFunction(fn specgen.Function) string {
	var buf bytes.Buffer
	if err := funcTemplate.Execute(&buf, fn); err != nil {
		return fmt.Sprintf("Error formatting function %s: %v\n", fn.ID, err)
	}
	return buf.String()
}

// header is e.g. "// method Animal.speak".
func header(kind, owner, name string) string {
	qualified := name
	if owner != "" {
		qualified = owner + "." + name
	}
	return commentStyle.Sprint("// ") + kindStyle.Sprint(kind) + " " + qualified
}

func specBlock(b funcspec.Block) string {
	var sb strings.Builder
	sb.WriteString(commentStyle.Sprint("/*") + "\n")
	sb.WriteString(indent + tagStyle.Sprint("@id") + " " + idStyle.Sprint(b.ID) + "\n\n")
	sb.WriteString(indent + tagStyle.Sprint("@pre") + " " + b.Pre + "\n")
	sb.WriteString(indent + tagStyle.Sprint("@post") + " " + b.Post + "\n")
	sb.WriteString(commentStyle.Sprint("*/") + "\n")
	return sb.String()
}

// FormatTactic renders the assertion checked after one statement, e.g.
//
//	// tactic after expr (line 4) in inc
//	/*
//	    @tactic assert(Scope(count, #count) * types(#count: Num))
//	*/
func FormatTactic(t specgen.Tactic) string {
	var sb strings.Builder
	sb.WriteString(commentStyle.Sprint("// ") + kindStyle.Sprint("tactic") + " after " + t.Statement)
	if t.Line > 0 {
		sb.WriteString(fmt.Sprintf(" (line %d)", t.Line))
	}
	if t.Function != "" {
		sb.WriteString(" in " + t.Function)
	}
	sb.WriteString("\n")
	sb.WriteString(commentStyle.Sprint("/*") + "\n")
	text := strings.ReplaceAll(t.Assert, "\n", "\n"+indent+indent)
	sb.WriteString(indent + tagStyle.Sprint("@tactic") + " " + text + "\n")
	sb.WriteString(commentStyle.Sprint("*/") + "\n")
	return sb.String()
}

// FormatClasses renders the closed hierarchy of every class.
func FormatClasses(outs []specgen.Output) string {
	var builder strings.Builder
	for _, out := range outs {
		if len(out.Classes) == 0 {
			continue
		}
		builder.WriteString(fileStyle.Sprintf("--> %s\n", out.File))
		for _, c := range out.Classes {
			builder.WriteString(kindStyle.Sprint("class") + " " + c.Name)
			if c.Parent != "" {
				builder.WriteString(" extends " + c.Parent)
			}
			builder.WriteString("\n")
			for _, row := range [][2]string{
				{"ancestors", strings.Join(c.Ancestors, ", ")},
				{"descendants", strings.Join(c.Descendants, ", ")},
				{"F+", strings.Join(c.Fields, ", ")},
				{"N+", strings.Join(c.Methods, ", ")},
			} {
				builder.WriteString(indent + tagStyle.Sprintf("%-12s", row[0]+":") + " " + row[1] + "\n")
			}
		}
	}
	return builder.String()
}
