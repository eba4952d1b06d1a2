package narrative

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Resolver renders lines for one locale.
type Resolver struct {
	texts   Texts
	printer *message.Printer
}

// NewResolver creates a resolver that formats numbers for locale.
func NewResolver(texts Texts, locale string) (*Resolver, error) {
	if texts == nil {
		return nil, fmt.Errorf("texts are required")
	}
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &Resolver{texts: texts, printer: message.NewPrinter(tag)}, nil
}

// Render resolves the line's message and fills its placeholders in order.
// Placeholders without a matching replacement are left as written.
func (r *Resolver) Render(line Line) string {
	var msg strings.Builder
	for _, part := range line.Message {
		msg.WriteString(r.resolve(part))
	}
	return r.substitute(msg.String(), line.Replacements)
}

// RenderAll renders every line.
func (r *Resolver) RenderAll(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, r.Render(line))
	}
	return out
}

func (r *Resolver) resolve(part Part) string {
	switch part.Kind {
	case KindText:
		return r.texts.General(part.ID)
	case KindTrimmedText:
		return strings.TrimSpace(r.texts.General(part.ID))
	case KindNumber:
		return r.printer.Sprintf("%d", part.Number)
	case KindSpell:
		return r.texts.SpellName(part.ID)
	case KindCreatureSingular:
		return r.texts.CreatureName(part.ID, false)
	case KindCreaturePlural:
		return r.texts.CreatureName(part.ID, true)
	case KindRaw:
		return part.Raw
	}
	return ""
}

func (r *Resolver) substitute(template string, replacements []Part) string {
	var out strings.Builder
	next := 0
	for i := 0; i < len(template); i++ {
		ch := template[i]
		if ch != '%' || i+1 >= len(template) {
			out.WriteByte(ch)
			continue
		}
		verb := template[i+1]
		switch verb {
		case '%':
			out.WriteByte('%')
			i++
		case 's', 'd':
			if next < len(replacements) {
				out.WriteString(r.resolve(replacements[next]))
				next++
			} else {
				out.WriteByte('%')
				out.WriteByte(verb)
			}
			i++
		default:
			out.WriteByte(ch)
		}
	}
	return out.String()
}
