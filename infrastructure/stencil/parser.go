// Package stencil builds graphs from nested stencil documents.
//
// A document is a tree of shapes:
//
//	resourceId: task1
//	stencil: {id: Task}         # or stencil: Task
//	properties: {name: Review}
//	bounds: {upperLeft: {x: 0, y: 0}, lowerRight: {x: 100, y: 80}}
//	outgoing: [{resourceId: flow1}]
//	dockers: [{x: 50, y: 40}]
//	childShapes: [...]
//
// JSON documents are read the same way since they are valid YAML.
package stencil

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"graphcore/domain/core/valueobjects"
	pkgerrors "graphcore/pkg/errors"
)

// Shape is one element of a stencil document
type Shape struct {
	ID         string
	Stencil    string
	Properties map[string]string
	Parent     string
	Outgoing   []string
	Bounds     *valueobjects.Bounds
	Dockers    []valueobjects.Point
}

// Document holds the shapes of a stencil document in document order, so
// every parent precedes its children
type Document struct {
	Shapes []*Shape
	index  map[string]*Shape
}

// Root returns the top-level shape
func (d *Document) Root() *Shape {
	if len(d.Shapes) == 0 {
		return nil
	}
	return d.Shapes[0]
}

// Shape looks a shape up by resource id
func (d *Document) Shape(id string) (*Shape, bool) {
	s, ok := d.index[id]
	return s, ok
}

// Parse reads a stencil document
func Parse(r io.Reader) (*Document, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if err == io.EOF {
			return nil, malformed("document is empty")
		}
		return nil, pkgerrors.NewDomainError(pkgerrors.DomainInfrastructureError, pkgerrors.ErrStencilMalformed.Code,
			"stencil document cannot be decoded").WithCause(err)
	}

	g := newGenerator()
	if err := g.walk(&root); err != nil {
		return nil, err
	}
	if len(g.doc.Shapes) == 0 {
		return nil, malformed("document has no root shape")
	}
	return g.doc, nil
}

// objectParser receives the token stream of the value it was pushed for
type objectParser interface {
	startObject() error
	endObject() error
	fieldName(name string)
	value(v string) error
	startArray() error
	endArray() error
}

// generator turns a yaml node tree into a token stream and feeds it to the
// parser on top of its stack
type generator struct {
	doc     *Document
	parsers []objectParser
}

func newGenerator() *generator {
	g := &generator{doc: &Document{index: make(map[string]*Shape)}}
	g.push(&documentParser{g: g})
	return g
}

func (g *generator) push(p objectParser) { g.parsers = append(g.parsers, p) }
func (g *generator) pop()                { g.parsers = g.parsers[:len(g.parsers)-1] }
func (g *generator) top() objectParser   { return g.parsers[len(g.parsers)-1] }

func (g *generator) walk(n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			if err := g.walk(c); err != nil {
				return err
			}
		}
		return nil

	case yaml.AliasNode:
		return g.walk(n.Alias)

	case yaml.MappingNode:
		if err := g.top().startObject(); err != nil {
			return err
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			g.top().fieldName(n.Content[i].Value)
			if err := g.walk(n.Content[i+1]); err != nil {
				return err
			}
		}
		return g.top().endObject()

	case yaml.SequenceNode:
		if err := g.top().startArray(); err != nil {
			return err
		}
		for _, c := range n.Content {
			if err := g.walk(c); err != nil {
				return err
			}
		}
		return g.top().endArray()

	case yaml.ScalarNode:
		return g.top().value(n.Value)
	}
	return malformed(fmt.Sprintf("unexpected yaml node kind %d at line %d", n.Kind, n.Line))
}

// openShape starts a new shape below parent
func (g *generator) openShape(parent *Shape) {
	s := &Shape{Properties: make(map[string]string)}
	if parent != nil {
		s.Parent = parent.ID
	}
	g.doc.Shapes = append(g.doc.Shapes, s)
	g.push(&shapeParser{g: g, shape: s, parent: parent})
}

// closeShape checks a finished shape and indexes it
func (g *generator) closeShape(s *Shape) error {
	if s.ID == "" {
		return malformed("shape without resourceId")
	}
	if s.Stencil == "" {
		return malformed(fmt.Sprintf("shape %q has no stencil id", s.ID))
	}
	if _, dup := g.doc.index[s.ID]; dup {
		return malformed(fmt.Sprintf("duplicate resourceId %q", s.ID))
	}
	g.doc.index[s.ID] = s
	return nil
}

// documentParser expects the root shape
type documentParser struct {
	g    *generator
	done bool
}

func (p *documentParser) startObject() error {
	if p.done {
		return malformed("document has more than one root shape")
	}
	p.done = true
	p.g.openShape(nil)
	return nil
}

func (p *documentParser) endObject() error     { return nil }
func (p *documentParser) fieldName(string)     {}
func (p *documentParser) value(v string) error { return malformed("root must be a shape object") }
func (p *documentParser) startArray() error    { return malformed("root must be a shape object") }
func (p *documentParser) endArray() error      { return nil }

// shapeParser handles the fields of one shape
type shapeParser struct {
	g      *generator
	shape  *Shape
	parent *Shape
	field  string
}

func (p *shapeParser) startObject() error {
	switch p.field {
	case "childShapes":
		if p.shape.ID == "" {
			return malformed("resourceId must precede childShapes")
		}
		p.g.openShape(p.shape)
	case "properties":
		p.g.push(&propertiesParser{g: p.g, shape: p.shape})
	case "stencil":
		p.g.push(&stencilParser{g: p.g, shape: p.shape})
	case "bounds":
		p.g.push(&boundsParser{g: p.g, shape: p.shape})
	default:
		p.g.push(&skipParser{g: p.g, depth: 1})
	}
	return nil
}

func (p *shapeParser) endObject() error {
	p.g.pop()
	return p.g.closeShape(p.shape)
}

func (p *shapeParser) fieldName(name string) {
	p.field = name
}

func (p *shapeParser) value(v string) error {
	switch p.field {
	case "resourceId":
		p.shape.ID = v
	case "stencil":
		p.shape.Stencil = v
	}
	return nil
}

func (p *shapeParser) startArray() error {
	switch p.field {
	case "childShapes":
	case "outgoing":
		p.g.push(&outgoingParser{g: p.g, shape: p.shape})
	case "dockers":
		p.g.push(&dockersParser{g: p.g, shape: p.shape})
	default:
		p.g.push(&skipParser{g: p.g, depth: 1})
	}
	return nil
}

func (p *shapeParser) endArray() error { return nil }

// propertiesParser collects scalar properties; nested values are skipped
type propertiesParser struct {
	g     *generator
	shape *Shape
	field string
}

func (p *propertiesParser) startObject() error {
	p.g.push(&skipParser{g: p.g, depth: 1})
	return nil
}

func (p *propertiesParser) endObject() error {
	p.g.pop()
	return nil
}

func (p *propertiesParser) fieldName(name string) { p.field = name }

func (p *propertiesParser) value(v string) error {
	p.shape.Properties[p.field] = v
	return nil
}

func (p *propertiesParser) startArray() error {
	p.g.push(&skipParser{g: p.g, depth: 1})
	return nil
}

func (p *propertiesParser) endArray() error { return nil }

type stencilParser struct {
	g     *generator
	shape *Shape
	field string
}

func (p *stencilParser) startObject() error {
	p.g.push(&skipParser{g: p.g, depth: 1})
	return nil
}

func (p *stencilParser) endObject() error {
	p.g.pop()
	return nil
}

func (p *stencilParser) fieldName(name string) { p.field = name }

func (p *stencilParser) value(v string) error {
	if p.field == "id" {
		p.shape.Stencil = v
	}
	return nil
}

func (p *stencilParser) startArray() error {
	p.g.push(&skipParser{g: p.g, depth: 1})
	return nil
}

func (p *stencilParser) endArray() error { return nil }

// outgoingParser reads [{resourceId: ...}] and pops at the end of the array
type outgoingParser struct {
	g     *generator
	shape *Shape
	field string
	depth int
}

func (p *outgoingParser) startObject() error {
	p.depth++
	if p.depth > 1 {
		p.g.push(&skipParser{g: p.g, depth: 1})
		p.depth--
	}
	return nil
}

func (p *outgoingParser) endObject() error {
	p.depth--
	p.field = ""
	return nil
}

func (p *outgoingParser) fieldName(name string) { p.field = name }

func (p *outgoingParser) value(v string) error {
	if p.depth == 0 || p.field == "resourceId" {
		p.shape.Outgoing = append(p.shape.Outgoing, v)
	}
	return nil
}

func (p *outgoingParser) startArray() error {
	p.g.push(&skipParser{g: p.g, depth: 1})
	return nil
}

func (p *outgoingParser) endArray() error {
	p.g.pop()
	return nil
}

// boundsParser reads {upperLeft: {x, y}, lowerRight: {x, y}}
type boundsParser struct {
	g      *generator
	shape  *Shape
	field  string
	corner string
	ul, lr valueobjects.Point
}

func (p *boundsParser) startObject() error {
	if p.corner != "" {
		return malformed(fmt.Sprintf("shape %q: nested object in bounds", p.shape.ID))
	}
	p.corner = p.field
	return nil
}

func (p *boundsParser) endObject() error {
	if p.corner != "" {
		p.corner = ""
		return nil
	}
	b, err := valueobjects.NewBounds(p.ul, p.lr)
	if err != nil {
		return malformed(fmt.Sprintf("shape %q: %v", p.shape.ID, err))
	}
	p.shape.Bounds = &b
	p.g.pop()
	return nil
}

func (p *boundsParser) fieldName(name string) { p.field = name }

func (p *boundsParser) value(v string) error {
	var pt *valueobjects.Point
	switch p.corner {
	case "upperLeft":
		pt = &p.ul
	case "lowerRight":
		pt = &p.lr
	default:
		return nil
	}
	return setCoordinate(p.shape.ID, pt, p.field, v)
}

func (p *boundsParser) startArray() error {
	p.g.push(&skipParser{g: p.g, depth: 1})
	return nil
}

func (p *boundsParser) endArray() error { return nil }

// dockersParser reads [{x, y}, ...] and pops at the end of the array
type dockersParser struct {
	g     *generator
	shape *Shape
	field string
	cur   valueobjects.Point
}

func (p *dockersParser) startObject() error {
	p.cur = valueobjects.Point{}
	return nil
}

func (p *dockersParser) endObject() error {
	p.shape.Dockers = append(p.shape.Dockers, p.cur)
	return nil
}

func (p *dockersParser) fieldName(name string) { p.field = name }

func (p *dockersParser) value(v string) error {
	return setCoordinate(p.shape.ID, &p.cur, p.field, v)
}

func (p *dockersParser) startArray() error {
	p.g.push(&skipParser{g: p.g, depth: 1})
	return nil
}

func (p *dockersParser) endArray() error {
	p.g.pop()
	return nil
}

// skipParser ignores one value, however deeply nested
type skipParser struct {
	g     *generator
	depth int
}

func (p *skipParser) startObject() error { p.depth++; return nil }
func (p *skipParser) startArray() error  { p.depth++; return nil }
func (p *skipParser) endObject() error   { return p.leave() }
func (p *skipParser) endArray() error    { return p.leave() }
func (p *skipParser) fieldName(string)   {}
func (p *skipParser) value(string) error { return nil }

func (p *skipParser) leave() error {
	p.depth--
	if p.depth == 0 {
		p.g.pop()
	}
	return nil
}

func setCoordinate(shapeID string, pt *valueobjects.Point, field, v string) error {
	if field != "x" && field != "y" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return malformed(fmt.Sprintf("shape %q: coordinate %s=%q is not a number", shapeID, field, v))
	}
	if field == "x" {
		pt.X = f
	} else {
		pt.Y = f
	}
	return nil
}

func malformed(message string) error {
	return pkgerrors.NewDomainError(pkgerrors.DomainInfrastructureError, pkgerrors.ErrStencilMalformed.Code, message)
}
