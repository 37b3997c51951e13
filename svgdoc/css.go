package svgdoc

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"

	"github.com/benoitkugler/svgtree/internal/logx"
)

// splitStyle returns the declarations of an inline style attribute.
func splitStyle(style string) map[string]string {
	out := map[string]string{}
	style = strings.TrimSpace(style)
	if style == "" {
		return out
	}
	// the CSS parser is strict about semicolons
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		logx.Logger().Debug("invalid inline style, falling back to plain split", "style", style, "err", err)
		for _, pair := range strings.Split(style, ";") {
			kv := strings.SplitN(pair, ":", 2)
			if len(kv) == 2 {
				out[strings.ToLower(strings.TrimSpace(kv[0]))] = strings.TrimSpace(kv[1])
			}
		}
		return out
	}
	for _, de := range decls {
		out[strings.ToLower(de.Property)] = de.Value
	}
	return out
}

// selector is a simple compound selector: tag, #id and .class parts,
// without combinators
type selector struct {
	tag     string // empty or "*" for any
	id      string
	classes []string
}

func parseSelector(s string) (selector, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " >+~[:") {
		return selector{}, false
	}
	var sel selector
	i := strings.IndexAny(s, ".#")
	if i == -1 {
		sel.tag = s
		return sel, true
	}
	sel.tag = s[:i]
	s = s[i:]
	for len(s) > 0 {
		end := strings.IndexAny(s[1:], ".#")
		if end == -1 {
			end = len(s)
		} else {
			end++
		}
		part := s[1:end]
		if part == "" {
			return selector{}, false
		}
		if s[0] == '#' {
			sel.id = part
		} else {
			sel.classes = append(sel.classes, part)
		}
		s = s[end:]
	}
	return sel, true
}

func (sel selector) matches(n *Node) bool {
	if sel.tag != "" && sel.tag != "*" && sel.tag != n.Tag {
		return false
	}
	if sel.id != "" && sel.id != n.ID {
		return false
	}
	classes := n.Classes()
	for _, c := range sel.classes {
		found := false
		for _, nc := range classes {
			if nc == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type sheetRule struct {
	selectors    []selector
	declarations []*css.Declaration
}

// parseSheet extracts the rules with supported selectors.
func parseSheet(text string) []sheetRule {
	ss, err := parser.Parse(text)
	if err != nil {
		logx.Logger().Debug("ignoring invalid style sheet", "err", err)
		return nil
	}
	var out []sheetRule
	for _, r := range ss.Rules {
		if r.Kind == css.AtRule {
			continue
		}
		var rule sheetRule
		for _, s := range r.Selectors {
			if sel, ok := parseSelector(s); ok {
				rule.selectors = append(rule.selectors, sel)
			}
		}
		if len(rule.selectors) == 0 {
			continue
		}
		rule.declarations = r.Declarations
		out = append(out, rule)
	}
	return out
}

// applySheet adds the declarations of the rules matching each node,
// with the lowest precedence: attributes and inline styles are kept.
// Among rules, the last one wins.
func applySheet(root *Node, rules []sheetRule) {
	if len(rules) == 0 {
		return
	}
	root.Walk(func(n *Node) bool {
		var decls map[string]string
		for _, rule := range rules {
			for _, sel := range rule.selectors {
				if !sel.matches(n) {
					continue
				}
				if decls == nil {
					decls = map[string]string{}
				}
				for _, de := range rule.declarations {
					decls[strings.ToLower(de.Property)] = de.Value
				}
				break
			}
		}
		for k, v := range decls {
			if _, has := n.Attrs[k]; !has {
				n.Attrs[k] = v
			}
		}
		return true
	})
}
