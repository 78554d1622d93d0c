package compiler

import "github.com/ministryofjustice/hmpps-form-engine/internal/ast"

// generatePseudoNodes implements spec §4.1 step 4: scan REFERENCE nodes,
// and for every unique (namespace, key) pair create (or reuse) a pseudo
// node, attached to the REFERENCE as its "base" property.
//
// ANSWER_LOCAL vs ANSWER_REMOTE (spec §3, "ANSWER_LOCAL/REMOTE by field
// code") is resolved structurally rather than from an explicit author
// discriminant: a field code is LOCAL when the FIELD it names is a
// descendant of the same STEP as the referencing REFERENCE node, REMOTE
// when it was declared in a different step (spec §3's "code is unique
// within its step's answer namespace but may repeat across steps for
// REMOTE" implies the distinction tracks step ownership, not a property
// the author sets) — an Open Question resolution recorded in DESIGN.md.
func (c *compiler) generatePseudoNodes() {
	fieldStep := c.fieldDeclaringSteps()

	for _, ref := range c.artefact.Nodes.FindByType(ast.Expression) {
		if ref.SubKind() != ast.Reference {
			continue
		}
		namespaceRaw, _ := ref.Properties().String("namespace")
		namespace := ast.Namespace(namespaceRaw)
		if !namespace.HasPseudo() {
			continue
		}

		path, _ := ref.Properties().Array("path")
		if len(path) == 0 {
			c.errs.Addf(string(ref.ID()), "REFERENCE with namespace %q has no path key", namespace)
			continue
		}
		key, ok := path[0].(string)
		if !ok {
			c.errs.Addf(string(ref.ID()), "REFERENCE path[0] must be a literal string key for namespace %q", namespace)
			continue
		}

		var kind ast.PseudoKind
		switch namespace {
		case ast.NamespacePost:
			kind = ast.Post
		case ast.NamespaceQuery:
			kind = ast.Query
		case ast.NamespaceParams:
			kind = ast.Params
		case ast.NamespaceData:
			kind = ast.Data
		case ast.NamespaceAnswers:
			declStep, known := fieldStep[key]
			refStep, _ := c.enclosingStep(ref.ID())
			if known && declStep == refStep {
				kind = ast.AnswerLocal
			} else {
				kind = ast.AnswerRemote
			}
		}

		p := c.pseudoFor(kind, key)
		ref.Properties()["base"] = p
	}
}

func (c *compiler) pseudoFor(kind ast.PseudoKind, key string) *ast.Pseudo {
	k := pseudoKey{kind: kind, key: key}
	if p, ok := c.pseudos[k]; ok {
		return p
	}
	p := ast.NewPseudo(c.pseudoAlloc.Next(), kind, key)
	c.pseudos[k] = p
	if err := c.artefact.Nodes.Register(p.ID(), p); err != nil {
		c.errs.Addf(string(p.ID()), "%s", err)
	}
	return p
}

// fieldDeclaringSteps maps every FIELD block's code to the STEP it is a
// descendant of (first occurrence wins for a code repeated in more than
// one step, which is REMOTE's normal shape).
func (c *compiler) fieldDeclaringSteps() map[string]ast.Identity {
	out := map[string]ast.Identity{}
	for _, b := range c.artefact.Nodes.FindByType(ast.Block) {
		if b.SubKind() != ast.Field {
			continue
		}
		code, ok := b.Properties().String("code")
		if !ok || code == "" {
			continue
		}
		if _, exists := out[code]; exists {
			continue
		}
		if step, ok := c.enclosingStep(b.ID()); ok {
			out[code] = step
		}
	}
	return out
}

func (c *compiler) enclosingStep(id ast.Identity) (ast.Identity, bool) {
	parent, ok := c.parentOf(id)
	for ok {
		if n, isNode := c.asNode(parent); isNode && n.Kind() == ast.Step {
			return parent, true
		}
		parent, ok = c.parentOf(parent)
	}
	return "", false
}

func (c *compiler) asNode(id ast.Identity) (*ast.Node, bool) {
	any, ok := c.artefact.Nodes.Get(id)
	if !ok {
		return nil, false
	}
	n, ok := any.(*ast.Node)
	return n, ok
}
