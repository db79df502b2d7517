package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/io7m/ironpage-sub000/internal/ast"
	"github.com/io7m/ironpage-sub000/internal/diag"
	"github.com/io7m/ironpage-sub000/internal/names"
	"github.com/io7m/ironpage-sub000/internal/schema"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

const (
	// MaxSourceSize is the largest schema source the parser accepts.
	MaxSourceSize = 1024 * 1024
)

const formatHint = "Expected format:\n" +
	"  <Schema xmlns=\"" + ironpage.SchemaNamespace + "\" id=\"...\" versionMajor=\"1\" versionMinor=\"0\">\n" +
	"    <Comment>...</Comment>\n" +
	"    <Import id=\"...\" versionMajor=\"...\" versionMinor=\"...\"/>\n" +
	"    <DeclareType name=\"...\"><TypePrimitive type=\"...\"/></DeclareType>\n" +
	"    <DeclareAttribute name=\"...\" cardinality=\"...\"><TypeNamed schema=\"...\" type=\"...\"/></DeclareAttribute>\n" +
	"  </Schema>"

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used to report panicking diagnostic receivers.
func WithLogger(logger ironpage.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// WithMaxSourceSize overrides MaxSourceSize.
func WithMaxSourceSize(n int64) Option {
	return func(p *Parser) { p.maxSize = n }
}

// Parser parses exactly one source document. It is not safe for concurrent use.
type Parser struct {
	sink    diag.Sink
	uri     string
	reader  io.Reader
	logger  ironpage.Logger
	maxSize int64
	failed  bool
}

// New creates a parser reading the document at uri from reader.
func New(sink diag.Sink, uri string, reader io.Reader, opts ...Option) *Parser {
	p := &Parser{
		uri:     uri,
		reader:  reader,
		maxSize: MaxSourceSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.sink = diag.Safe(sink, p.logger)
	return p
}

// Execute parses the document. It returns false if any error was reported.
func (p *Parser) Execute() (*ast.ParsedSchema, bool) {
	root, ok := p.readTree()
	if !ok {
		return nil, false
	}
	result := p.parseSchema(root)
	if p.failed {
		return nil, false
	}
	return result, true
}

func (p *Parser) publish(d diag.Diagnostic) {
	if d.Severity == diag.SeverityError {
		p.failed = true
	}
	p.sink.Receive(d)
}

func (p *Parser) syntaxError(pos ast.Position, format string, args ...interface{}) {
	p.publish(diag.Errorf(diag.SyntaxError, format, args...).
		At(p.uri, pos.Line, pos.Column).
		WithHint(formatHint))
}

// element is a decoded XML element with its position.
type element struct {
	name     xml.Name
	attrs    []xml.Attr
	children []*element
	text     strings.Builder
	pos      ast.Position
}

func (e *element) attr(local string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// trackingReader remembers the first non-EOF error of the underlying reader
// so read failures can be told apart from malformed XML.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(b []byte) (int, error) {
	n, err := t.r.Read(b)
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	return n, err
}

func (p *Parser) readTree() (*element, bool) {
	tracker := &trackingReader{r: io.LimitReader(p.reader, p.maxSize+1)}
	counting := &countingReader{r: tracker}
	decoder := xml.NewDecoder(counting)
	decoder.Strict = true

	var (
		stack []*element
		root  *element
	)
	for {
		// Taken before the token is read, so it is the start of the token
		// rather than the end of a possibly multi-line start tag.
		line, column := decoder.InputPos()
		token, err := decoder.Token()
		if counting.n > p.maxSize {
			return nil, p.tooLarge()
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, p.decodeFailed(err, tracker)
		}

		switch t := token.(type) {
		case xml.StartElement:
			e := &element{
				name:  t.Name,
				attrs: t.Copy().Attr,
				pos:   ast.Position{Line: line, Column: column},
			}
			if len(stack) == 0 {
				if root != nil {
					p.syntaxError(e.pos, "Multiple root elements")
					return nil, false
				}
				root = e
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, e)
			}
			stack = append(stack, e)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			} else if strings.TrimSpace(string(t)) != "" {
				p.syntaxError(ast.Position{Line: line, Column: column}, "Text outside the root element")
				return nil, false
			}
		}
	}

	if tracker.err != nil {
		return nil, p.decodeFailed(tracker.err, tracker)
	}
	if root == nil {
		p.syntaxError(ast.Position{}, "Document is empty")
		return nil, false
	}
	return root, true
}

func (p *Parser) tooLarge() bool {
	p.publish(diag.Errorf(diag.SyntaxError,
		"Schema source exceeds maximum size of %d bytes", p.maxSize).
		At(p.uri, 0, 0).
		WithHint("Split large schemas into several schemas connected by imports."))
	return false
}

func (p *Parser) decodeFailed(err error, tracker *trackingReader) bool {
	if tracker.err != nil {
		p.publish(diag.Errorf(diag.SourceError, "Failed to read schema source: %v", tracker.err).
			At(p.uri, 0, 0))
		return false
	}
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		p.publish(diag.Errorf(diag.SyntaxError, "%s", syntaxErr.Msg).
			At(p.uri, syntaxErr.Line, 0).
			WithHint("Check that all XML tags are properly closed and attributes are quoted."))
		return false
	}
	p.publish(diag.Errorf(diag.SyntaxError, "%v", err).At(p.uri, 0, 0))
	return false
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.n += int64(n)
	return n, err
}

func (p *Parser) checkName(e *element, local string) bool {
	if e.name.Local != local {
		p.syntaxError(e.pos, "Expected element %s but found %s", local, e.name.Local)
		return false
	}
	if e.name.Space != ironpage.SchemaNamespace {
		p.syntaxError(e.pos, "Element %s is in namespace %q, expected %q",
			e.name.Local, e.name.Space, ironpage.SchemaNamespace)
		return false
	}
	return true
}

// checkAttributes reports attributes other than the allowed ones and
// returns the values of the required ones.
func (p *Parser) checkAttributes(e *element, required ...string) (map[string]string, bool) {
	ok := true
	allowed := make(map[string]struct{}, len(required))
	for _, r := range required {
		allowed[r] = struct{}{}
	}
	for _, a := range e.attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		if _, known := allowed[a.Name.Local]; !known || a.Name.Space != "" {
			p.syntaxError(e.pos, "Unexpected attribute %q on element %s", a.Name.Local, e.name.Local)
			ok = false
		}
	}
	values := make(map[string]string, len(required))
	for _, r := range required {
		v, present := e.attr(r)
		if !present {
			p.syntaxError(e.pos, "Element %s is missing required attribute %q", e.name.Local, r)
			ok = false
			continue
		}
		values[r] = v
	}
	return values, ok
}

func (p *Parser) checkVersion(e *element, attr, value string) bool {
	if _, err := names.ParseVersion(value); err != nil {
		p.syntaxError(e.pos, "Attribute %q of element %s: %v", attr, e.name.Local, err)
		return false
	}
	return true
}

func (p *Parser) checkNoText(e *element) {
	if strings.TrimSpace(e.text.String()) != "" {
		p.syntaxError(e.pos, "Element %s must not contain text", e.name.Local)
	}
}

func (p *Parser) parseSchema(root *element) *ast.ParsedSchema {
	if !p.checkName(root, "Schema") {
		return nil
	}
	attrs, ok := p.checkAttributes(root, "id", "versionMajor", "versionMinor")
	if ok {
		ok = p.checkVersion(root, "versionMajor", attrs["versionMajor"]) &&
			p.checkVersion(root, "versionMinor", attrs["versionMinor"])
	}
	p.checkNoText(root)

	result := &ast.ParsedSchema{
		Position:     root.pos,
		URI:          p.uri,
		ID:           attrs["id"],
		VersionMajor: attrs["versionMajor"],
		VersionMinor: attrs["versionMinor"],
	}

	for _, child := range root.children {
		if child.name.Space != ironpage.SchemaNamespace {
			p.syntaxError(child.pos, "Element %s is in namespace %q, expected %q",
				child.name.Local, child.name.Space, ironpage.SchemaNamespace)
			continue
		}
		var decl ast.ParsedDeclaration
		switch child.name.Local {
		case "Comment":
			decl = p.parseComment(child)
		case "Import":
			decl = p.parseImport(child)
		case "DeclareType":
			decl = p.parseType(child)
		case "DeclareAttribute":
			decl = p.parseAttribute(child)
		default:
			p.syntaxError(child.pos, "Unexpected element %s (expected Comment, Import, DeclareType or DeclareAttribute)",
				child.name.Local)
		}
		if decl != nil {
			result.Declarations = append(result.Declarations, decl)
		}
	}

	if !ok {
		return nil
	}
	return result
}

func (p *Parser) parseComment(e *element) ast.ParsedDeclaration {
	if _, ok := p.checkAttributes(e); !ok {
		return nil
	}
	if len(e.children) > 0 {
		p.syntaxError(e.children[0].pos, "Element Comment must contain only text")
		return nil
	}
	return ast.ParsedComment{Position: e.pos, Text: strings.TrimSpace(e.text.String())}
}

func (p *Parser) parseImport(e *element) ast.ParsedDeclaration {
	attrs, ok := p.checkAttributes(e, "id", "versionMajor", "versionMinor")
	if !ok {
		return nil
	}
	if !p.checkVersion(e, "versionMajor", attrs["versionMajor"]) ||
		!p.checkVersion(e, "versionMinor", attrs["versionMinor"]) {
		return nil
	}
	if len(e.children) > 0 {
		p.syntaxError(e.children[0].pos, "Element Import must be empty")
		return nil
	}
	p.checkNoText(e)
	return ast.ParsedImport{
		Position:     e.pos,
		ID:           attrs["id"],
		VersionMajor: attrs["versionMajor"],
		VersionMinor: attrs["versionMinor"],
	}
}

func (p *Parser) parseType(e *element) ast.ParsedDeclaration {
	attrs, ok := p.checkAttributes(e, "name")
	ref, comment, bodyOK := p.parseBody(e)
	if !ok || !bodyOK {
		return nil
	}
	return ast.ParsedType{Position: e.pos, Name: attrs["name"], Base: ref, Comment: comment}
}

func (p *Parser) parseAttribute(e *element) ast.ParsedDeclaration {
	attrs, ok := p.checkAttributes(e, "name", "cardinality")
	var cardinality schema.Cardinality
	if ok {
		c, err := schema.ParseCardinality(attrs["cardinality"])
		if err != nil {
			p.syntaxError(e.pos, "%v", err)
			ok = false
		}
		cardinality = c
	}
	ref, comment, bodyOK := p.parseBody(e)
	if !ok || !bodyOK {
		return nil
	}
	return ast.ParsedAttribute{
		Position:    e.pos,
		Name:        attrs["name"],
		Type:        ref,
		Cardinality: cardinality,
		Comment:     comment,
	}
}

// parseBody reads the single type reference and optional comment of a
// type or attribute declaration.
func (p *Parser) parseBody(e *element) (ast.ParsedTypeReference, string, bool) {
	var (
		ref        ast.ParsedTypeReference
		comment    string
		hasComment bool
		ok         = true
	)
	p.checkNoText(e)

	for _, child := range e.children {
		if child.name.Space != ironpage.SchemaNamespace {
			p.syntaxError(child.pos, "Element %s is in namespace %q, expected %q",
				child.name.Local, child.name.Space, ironpage.SchemaNamespace)
			ok = false
			continue
		}
		switch child.name.Local {
		case "TypePrimitive", "TypeNamed":
			if ref != nil {
				p.syntaxError(child.pos, "Element %s must contain exactly one type reference", e.name.Local)
				ok = false
				continue
			}
			r := p.parseTypeReference(child)
			if r == nil {
				ok = false
				continue
			}
			ref = r
		case "Comment":
			if hasComment {
				p.syntaxError(child.pos, "Element %s may contain at most one Comment", e.name.Local)
				ok = false
				continue
			}
			c, isComment := p.parseComment(child).(ast.ParsedComment)
			if !isComment {
				ok = false
				continue
			}
			comment = c.Text
			hasComment = true
		default:
			p.syntaxError(child.pos, "Unexpected element %s in %s (expected TypePrimitive, TypeNamed or Comment)",
				child.name.Local, e.name.Local)
			ok = false
		}
	}

	if ref == nil && ok {
		p.syntaxError(e.pos, "Element %s must contain exactly one type reference", e.name.Local)
		ok = false
	}
	return ref, comment, ok
}

func (p *Parser) parseTypeReference(e *element) ast.ParsedTypeReference {
	if len(e.children) > 0 {
		p.syntaxError(e.children[0].pos, "Element %s must be empty", e.name.Local)
		return nil
	}
	p.checkNoText(e)

	switch e.name.Local {
	case "TypePrimitive":
		attrs, ok := p.checkAttributes(e, "type")
		if !ok {
			return nil
		}
		primitive, err := schema.ParsePrimitiveType(attrs["type"])
		if err != nil {
			p.syntaxError(e.pos, "%v", err)
			return nil
		}
		return ast.ParsedTypePrimitive{Position: e.pos, Type: primitive}
	case "TypeNamed":
		attrs, ok := p.checkAttributes(e, "schema", "type")
		if !ok {
			return nil
		}
		return ast.ParsedTypeNamed{Position: e.pos, Schema: attrs["schema"], Type: attrs["type"]}
	default:
		panic(fmt.Sprintf("unreachable: type reference element %s", e.name.Local))
	}
}
