package importer

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
)

// bibFieldColumns renames BibTeX fields whose usual name would not be
// recognized as an identifier column.
var bibFieldColumns = map[string]string{
	"pmid": "Pubmed Id",
}

// ReadBibTeX reads the entries of a .bib file. Each entry becomes a record
// with a "Citekey" column, an "Entry Type" column and one column per field.
// @comment, @string and @preamble blocks are ignored.
func ReadBibTeX(r io.Reader, name string) (*collection.Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	c := collection.New(name, []string{"Citekey", "Entry Type"})
	p := &bibParser{src: string(data)}
	for {
		entry, ok, err := p.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if entry != nil {
			c.Append(entry)
		}
	}
	return c, nil
}

type bibParser struct {
	src string
	pos int
}

// next returns the next entry, nil for an ignored block, and false at EOF.
func (p *bibParser) next() (collection.Record, bool, error) {
	at := strings.IndexByte(p.src[p.pos:], '@')
	if at < 0 {
		return nil, false, nil
	}
	p.pos += at + 1

	kind := strings.ToLower(p.readWhile(isIdentByte))
	p.skipSpace()
	if p.pos >= len(p.src) || (p.src[p.pos] != '{' && p.src[p.pos] != '(') {
		return nil, true, nil
	}
	open := p.src[p.pos]
	closeCh := byte('}')
	if open == '(' {
		closeCh = ')'
	}
	p.pos++

	switch kind {
	case "comment", "string", "preamble":
		p.skipBalanced(open, closeCh)
		return nil, true, nil
	}

	startLine := strings.Count(p.src[:p.pos], "\n") + 1
	key := strings.TrimSpace(p.readWhile(func(r byte) bool { return r != ',' && r != closeCh }))
	rec := collection.Record{"Citekey": key, "Entry Type": kind}
	if p.pos < len(p.src) && p.src[p.pos] == closeCh {
		p.pos++
		return rec, true, nil
	}
	p.pos++ // ','

	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, false, fmt.Errorf("entry %q at line %d: unexpected end of file", key, startLine)
		}
		if p.src[p.pos] == closeCh {
			p.pos++
			return rec, true, nil
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}

		field := strings.ToLower(strings.TrimSpace(p.readWhile(func(r byte) bool { return r != '=' && r != closeCh })))
		if p.pos >= len(p.src) || p.src[p.pos] != '=' {
			continue
		}
		p.pos++
		value, err := p.readValue(closeCh)
		if err != nil {
			return nil, false, fmt.Errorf("entry %q at line %d, field %s: %w", key, startLine, field, err)
		}
		if field == "" {
			continue
		}
		if col, ok := bibFieldColumns[field]; ok {
			field = col
		}
		if field == "author" || field == "editor" {
			value = strings.Join(splitBibAuthors(value), "; ")
		}
		if value != "" {
			rec[field] = value
		}
	}
}

// readValue reads a field value: {braced}, "quoted" or a bare token, with
// '#' concatenation.
func (p *bibParser) readValue(closeCh byte) (string, error) {
	var parts []string
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return "", fmt.Errorf("unexpected end of file")
		}
		switch p.src[p.pos] {
		case '{':
			p.pos++
			start := p.pos
			if !p.skipBalanced('{', '}') {
				return "", fmt.Errorf("unbalanced braces")
			}
			parts = append(parts, p.src[start:p.pos-1])
		case '"':
			p.pos++
			start := p.pos
			depth := 0
			for p.pos < len(p.src) && (p.src[p.pos] != '"' || depth > 0) {
				switch p.src[p.pos] {
				case '{':
					depth++
				case '}':
					depth--
				}
				p.pos++
			}
			if p.pos >= len(p.src) {
				return "", fmt.Errorf("unterminated quoted value")
			}
			parts = append(parts, p.src[start:p.pos])
			p.pos++
		default:
			parts = append(parts, strings.TrimSpace(p.readWhile(func(r byte) bool {
				return r != ',' && r != '#' && r != closeCh
			})))
		}

		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == '#' {
			p.pos++
			continue
		}
		return cleanBibValue(strings.Join(parts, "")), nil
	}
}

// skipBalanced advances past the closing delimiter matching an already
// consumed opening one. It reports false at end of input.
func (p *bibParser) skipBalanced(open, closeCh byte) bool {
	depth := 1
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case open:
			depth++
		case closeCh:
			depth--
		}
		p.pos++
		if depth == 0 {
			return true
		}
	}
	return false
}

func (p *bibParser) readWhile(keep func(byte) bool) string {
	start := p.pos
	for p.pos < len(p.src) && keep(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *bibParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '-' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// cleanBibValue drops grouping braces and collapses whitespace.
func cleanBibValue(s string) string {
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// splitBibAuthors splits a BibTeX name list on the " and " separator.
func splitBibAuthors(s string) []string {
	var out []string
	for _, name := range strings.Split(s, " and ") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
