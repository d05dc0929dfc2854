package extract

import (
	"errors"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/recluselabs/recluse/pkg/parser"
	"github.com/recluselabs/recluse/pkg/usage"
)

// selfToken is the reserved receiver word that resolves a call's class hint
// to the caller's own class. The check is lexical, not type-based.
const selfToken = "self"

// PythonExtractor is the grammar-aware extraction path: a tree-sitter walk
// with the scope stack active, recording definitions, call/name-load/import
// references and used names.
type PythonExtractor struct {
	parser *parser.Parser
}

// NewPythonExtractor returns an extractor owning its own parser instance.
// Parser instances are not goroutine-safe, so neither is the extractor.
func NewPythonExtractor() *PythonExtractor {
	return &PythonExtractor{parser: parser.New()}
}

// Close releases the underlying parser.
func (e *PythonExtractor) Close() {
	e.parser.Close()
}

// Extract parses the source and walks the tree. A source that cannot be
// parsed cleanly fails with a ParseError and contributes zero records;
// there is no partial extraction.
func (e *PythonExtractor) Extract(unit string, source []byte) (*Result, error) {
	parsed, err := e.parser.Parse(source, parser.LangPython, unit)
	if err != nil {
		return nil, &ParseError{Unit: unit, Err: err}
	}
	defer parsed.Tree.Close()

	root := parsed.Tree.RootNode()
	if root == nil || root.HasError() {
		return nil, &ParseError{Unit: unit, Err: errors.New("source contains syntax errors")}
	}

	w := &pythonWalker{
		unit:   unit,
		source: source,
		result: &Result{Unit: unit, Language: parser.LangPython},
		seen:   make(map[string]struct{}),
	}
	w.walk(root)
	return w.result, nil
}

// pythonWalker carries the traversal state for one file. The scope stack is
// owned by the walk and restored on every exit path; no state survives
// across files.
type pythonWalker struct {
	unit   string
	source []byte
	scope  scopeStack
	result *Result
	seen   map[string]struct{}
}

func (w *pythonWalker) walk(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "class_definition":
		w.walkClass(node)

	case "function_definition":
		w.walkFunction(node)

	case "assignment":
		w.walkAssignment(node)

	case "augmented_assignment":
		// x += 1 re-binds an existing name: not a definition, and the
		// simple target is not a read either.
		if left := node.ChildByFieldName("left"); left != nil && left.Type() != "identifier" {
			w.walk(left)
		}
		w.walk(node.ChildByFieldName("right"))

	case "named_expression":
		// The walrus target is a binding, not a read.
		w.walk(node.ChildByFieldName("value"))

	case "call":
		w.walkCall(node)

	case "attribute":
		// Only the object side reads a name; the attribute itself is a
		// field selector, not an identifier load.
		w.walk(node.ChildByFieldName("object"))

	case "keyword_argument":
		w.walk(node.ChildByFieldName("value"))

	case "import_statement":
		w.walkImport(node)

	case "import_from_statement":
		w.walkImportFrom(node)

	case "for_statement", "for_in_clause":
		// Loop targets are bindings, not reads.
		w.walk(node.ChildByFieldName("right"))
		w.walk(node.ChildByFieldName("body"))
		w.walk(node.ChildByFieldName("alternative"))

	case "as_pattern":
		// with expr as x / except E as x: the alias is a binding.
		if node.NamedChildCount() > 0 {
			w.walk(node.NamedChild(0))
		}

	case "global_statement", "nonlocal_statement":
		// Scope declarations name bindings without reading them.

	case "lambda":
		w.walkParameters(node.ChildByFieldName("parameters"))
		w.walk(node.ChildByFieldName("body"))

	case "identifier":
		w.addReference(usage.Reference{
			TargetName:   w.text(node),
			SiteUnit:     w.unit,
			SiteClass:    w.scope.currentClass(),
			SiteFunction: w.scope.currentFunction(),
			Kind:         usage.RefNameLoad,
		})

	default:
		w.walkChildren(node)
	}
}

func (w *pythonWalker) walkClass(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)

	w.addDefinition(usage.Definition{
		Name:  name,
		Unit:  w.unit,
		Class: w.scope.currentClass(),
		Line:  parser.Line(node),
		Kind:  usage.DefClass,
	})

	w.scope.pushClass(name)
	w.walk(node.ChildByFieldName("superclasses"))
	w.walk(node.ChildByFieldName("body"))
	w.scope.popClass()
}

func (w *pythonWalker) walkFunction(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)

	w.addDefinition(usage.Definition{
		Name:  name,
		Unit:  w.unit,
		Class: w.scope.currentClass(),
		Line:  parser.Line(node),
		Kind:  usage.DefFunction,
	})

	w.scope.pushFunction(name)
	w.walkParameters(node.ChildByFieldName("parameters"))
	w.walk(node.ChildByFieldName("return_type"))
	w.walk(node.ChildByFieldName("body"))
	w.scope.popFunction()
}

// walkParameters visits annotation and default-value expressions while
// skipping the parameter names themselves, which are bindings.
func (w *pythonWalker) walkParameters(params *sitter.Node) {
	if params == nil {
		return
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)
		switch param.Type() {
		case "typed_parameter":
			w.walk(param.ChildByFieldName("type"))
		case "default_parameter":
			w.walk(param.ChildByFieldName("value"))
		case "typed_default_parameter":
			w.walk(param.ChildByFieldName("type"))
			w.walk(param.ChildByFieldName("value"))
		}
	}
}

func (w *pythonWalker) walkAssignment(node *sitter.Node) {
	left := node.ChildByFieldName("left")
	if left != nil {
		switch left.Type() {
		case "identifier":
			name := w.text(left)
			w.addDefinition(usage.Definition{
				Name:       name,
				Unit:       w.unit,
				Class:      w.scope.currentClass(),
				Function:   w.scope.currentFunction(),
				Line:       parser.Line(node),
				Kind:       usage.DefVariable,
				IsConstant: usage.IsConstantName(name),
			})
		case "pattern_list", "tuple_pattern", "list_pattern":
			// Tuple unpacking targets are not recorded. A deliberate
			// precision/recall trade-off.
		default:
			// Attribute and subscript targets are not definitions, but
			// their receiver side still reads names.
			w.walk(left)
		}
	}
	w.walk(node.ChildByFieldName("type"))
	w.walk(node.ChildByFieldName("right"))
}

func (w *pythonWalker) walkCall(node *sitter.Node) {
	fn := node.ChildByFieldName("function")
	if fn != nil {
		switch fn.Type() {
		case "identifier":
			// Bare name(...) call, no class context.
			w.addReference(usage.Reference{
				TargetName:   w.text(fn),
				SiteUnit:     w.unit,
				SiteClass:    w.scope.currentClass(),
				SiteFunction: w.scope.currentFunction(),
				Kind:         usage.RefCall,
			})

		case "attribute":
			object := fn.ChildByFieldName("object")
			attr := fn.ChildByFieldName("attribute")
			if object != nil && attr != nil && object.Type() == "identifier" {
				receiver := w.text(object)
				hint := receiver
				if receiver == selfToken {
					hint = w.scope.currentClass()
				} else {
					// The receiver token doubles as a class use.
					w.addUsedName(receiver)
				}
				w.addReference(usage.Reference{
					TargetName:      w.text(attr),
					TargetClassHint: hint,
					SiteUnit:        w.unit,
					SiteClass:       w.scope.currentClass(),
					SiteFunction:    w.scope.currentFunction(),
					Kind:            usage.RefCall,
				})
			}
		}
		// Computed or chained callees yield no call reference, but their
		// subexpressions still read names.
		w.walk(fn)
	}
	w.walk(node.ChildByFieldName("arguments"))
}

func (w *pythonWalker) walkImport(node *sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			// import a.b.c binds a.
			w.addImport(firstIdentifier(child, w.source))
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				w.addImport(w.text(alias))
			}
		}
	}
}

func (w *pythonWalker) walkImportFrom(node *sitter.Node) {
	module := node.ChildByFieldName("module_name")
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if module != nil && child.StartByte() == module.StartByte() {
			// The module path is not a binding in the importing file.
			continue
		}
		switch child.Type() {
		case "dotted_name":
			w.addImport(firstIdentifier(child, w.source))
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				w.addImport(w.text(alias))
			}
		case "wildcard_import":
			// Wildcard bindings are unknowable without resolving the
			// module; nothing is recorded.
		}
	}
}

func (w *pythonWalker) addImport(name string) {
	if name == "" {
		return
	}
	w.addReference(usage.Reference{
		TargetName:   name,
		SiteUnit:     w.unit,
		SiteClass:    w.scope.currentClass(),
		SiteFunction: w.scope.currentFunction(),
		Kind:         usage.RefImport,
	})
	w.addUsedName(name)
}

func (w *pythonWalker) addDefinition(def usage.Definition) {
	w.result.Definitions = append(w.result.Definitions, def)
}

func (w *pythonWalker) addReference(ref usage.Reference) {
	w.result.References = append(w.result.References, ref)
}

func (w *pythonWalker) addUsedName(name string) {
	if _, dup := w.seen[name]; dup {
		return
	}
	w.seen[name] = struct{}{}
	w.result.UsedNames = append(w.result.UsedNames, name)
}

func (w *pythonWalker) walkChildren(node *sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		w.walk(node.NamedChild(i))
	}
}

func (w *pythonWalker) text(node *sitter.Node) string {
	return parser.GetNodeText(node, w.source)
}

// firstIdentifier returns the first identifier segment of a dotted_name.
func firstIdentifier(node *sitter.Node, source []byte) string {
	if node.NamedChildCount() == 0 {
		return parser.GetNodeText(node, source)
	}
	return parser.GetNodeText(node.NamedChild(0), source)
}
