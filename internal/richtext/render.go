package richtext

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var lightColors = map[string]string{
	"bgY": "#fff4e5",
	"bgB": "#cde7fa",
	"bgP": "#fde8ff",
}

var darkColors = map[string]string{
	"bgY": "#8c7620",
	"bgB": "#295f87",
	"bgP": "#7d537f",
}

// HighlightStyle returns the inline style for a highlight class, or false
// when the class is not one quizlet uses for highlighting.
func HighlightStyle(class string) (string, bool) {
	light, ok := lightColors[class]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("background-color: light-dark(%s, %s);", light, darkColors[class]), true
}

// Render produces the html for node. A nil node renders as fallback
// unchanged. Text is not escaped, quizlet already stores it as field ready
// markup.
func Render(node Node, fallback string) string {
	if node == nil {
		return fallback
	}
	var sb strings.Builder
	render(&sb, node)
	return sb.String()
}

func render(sb *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		sb.WriteString("<br>")
	case *Text:
		sb.WriteString(renderText(n))
	case *Paragraph:
		sb.WriteString("<div>")
		for _, child := range n.Children {
			render(sb, child)
		}
		sb.WriteString("</div>")
	case *Fragment:
		for _, child := range n.Children {
			render(sb, child)
		}
	}
}

// renderText wraps the text with each mark in order, so the last mark ends
// up outermost.
func renderText(t *Text) string {
	text := t.Text
	for _, m := range t.Marks {
		switch m.Kind {
		case Bold:
			text = "<b>" + text + "</b>"
		case Italic:
			text = "<i>" + text + "</i>"
		case Underline:
			text = "<u>" + text + "</u>"
		}
		if len(m.Attrs) == 0 {
			continue
		}

		attrs := formatAttrs(m.Attrs)
		style, ok := HighlightStyle(m.Attrs["class"])
		if ok {
			text = fmt.Sprintf(`<span %s style="%s">%s</span>`, attrs, style, text)
			continue
		}
		text = fmt.Sprintf(`<span %s>%s</span>`, attrs, text)
	}
	return text
}

func formatAttrs(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf(`%s="%s"`, k, attrs[k])
	}
	return strings.Join(parts, " ")
}

var emphasisRegex = regexp.MustCompile(`\*(.+?)\*`)

// Ankify converts quizlet's plain text conventions into field html: newlines
// become <br> and *text* becomes bold.
func Ankify(text string) string {
	text = strings.ReplaceAll(text, "\n", "<br>")
	return emphasisRegex.ReplaceAllString(text, "<b>$1</b>")
}

// NoteCSS styles the highlight classes in note types that show rendered
// rich text, following the reviewer's night mode.
const NoteCSS = `
:root {
  --yellow_light_background: #fff4e5;
  --blue_light_background: #cde7fa;
  --pink_light_background: #fde8ff;
}

.nightMode {
  --yellow_light_background: #8c7620;
  --blue_light_background: #295f87;
  --pink_light_background: #7d537f;
}

.bgY {
  background-color: var(--yellow_light_background) !important;
}

.bgB {
  background-color: var(--blue_light_background) !important;
}

.bgP {
  background-color: var(--pink_light_background) !important;
}
`
