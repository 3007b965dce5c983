package treesitter

// Profile tells the front end which concrete tree-sitter node types play the
// walker's roles in one language grammar. All maps are keyed by node type.
type Profile struct {
	// Bindings maps value-binding nodes to the field holding the
	// initializer. An empty field means the initializer is the named node
	// after an "=" token, or the content of an equals_value_clause.
	Bindings map[string]string

	// Calls maps invocation nodes to the field naming the callee.
	Calls map[string]string

	// Refs maps wrapper expressions to the field that leads to the referenced
	// name. An empty field means the first named child.
	Refs map[string]string

	// Idents are the node types whose text is a bare name.
	Idents map[string]bool

	// Lists are expression lists expanded into one initializer per element.
	Lists map[string]bool

	// Decls maps declaration nodes to the field holding the declared name.
	Decls map[string]Decl

	// Scopes are function-like nodes. Top-level-only declarations inside
	// them are local and not indexed.
	Scopes map[string]bool
}

// Decl describes a declaration node.
type Decl struct {
	Field    string
	TopLevel bool
}

func set(types ...string) map[string]bool {
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

var profiles = map[string]*Profile{
	"csharp": {
		Bindings: map[string]string{"variable_declarator": ""},
		Calls:    map[string]string{"invocation_expression": "function"},
		Refs: map[string]string{
			"object_creation_expression": "type",
			"member_access_expression":   "name",
			"qualified_name":             "name",
			"generic_name":               "",
			"parenthesized_expression":   "",
			"await_expression":           "",
		},
		Idents: set("identifier"),
		Decls: map[string]Decl{
			"class_declaration":     {Field: "name"},
			"interface_declaration": {Field: "name"},
			"struct_declaration":    {Field: "name"},
			"enum_declaration":      {Field: "name"},
			"record_declaration":    {Field: "name"},
			"delegate_declaration":  {Field: "name"},
			"method_declaration":    {Field: "name"},
		},
	},
	"go": {
		Bindings: map[string]string{
			"short_var_declaration": "right",
			"var_spec":              "value",
			"const_spec":            "value",
		},
		Calls: map[string]string{"call_expression": "function"},
		Refs: map[string]string{
			"selector_expression":      "field",
			"composite_literal":        "type",
			"unary_expression":         "operand",
			"index_expression":         "operand",
			"generic_type":             "type",
			"qualified_type":           "name",
			"parenthesized_expression": "",
		},
		Idents: set("identifier", "type_identifier", "field_identifier"),
		Lists:  set("expression_list"),
		Decls: map[string]Decl{
			"function_declaration": {Field: "name"},
			"method_declaration":   {Field: "name"},
			"type_spec":            {Field: "name"},
			"var_spec":             {Field: "name", TopLevel: true},
			"const_spec":           {Field: "name", TopLevel: true},
		},
		Scopes: set("function_declaration", "method_declaration", "func_literal"),
	},
	"java": {
		Bindings: map[string]string{"variable_declarator": "value"},
		Calls:    map[string]string{"method_invocation": "name"},
		Refs: map[string]string{
			"object_creation_expression": "type",
			"field_access":               "field",
			"generic_type":               "",
			"parenthesized_expression":   "",
		},
		Idents: set("identifier", "type_identifier"),
		Decls: map[string]Decl{
			"class_declaration":     {Field: "name"},
			"interface_declaration": {Field: "name"},
			"enum_declaration":      {Field: "name"},
			"record_declaration":    {Field: "name"},
			"method_declaration":    {Field: "name"},
		},
	},
	"javascript": {
		Bindings: map[string]string{"variable_declarator": "value"},
		Calls:    map[string]string{"call_expression": "function"},
		Refs: map[string]string{
			"new_expression":           "constructor",
			"member_expression":        "property",
			"parenthesized_expression": "",
			"await_expression":         "",
		},
		Idents: set("identifier", "property_identifier"),
		Decls: map[string]Decl{
			"function_declaration":           {Field: "name"},
			"generator_function_declaration": {Field: "name"},
			"class_declaration":              {Field: "name"},
			"method_definition":              {Field: "name"},
			"variable_declarator":            {Field: "name", TopLevel: true},
		},
		Scopes: set("function_declaration", "generator_function_declaration", "function_expression",
			"function", "arrow_function", "method_definition"),
	},
	"typescript": {
		Bindings: map[string]string{"variable_declarator": "value"},
		Calls:    map[string]string{"call_expression": "function"},
		Refs: map[string]string{
			"new_expression":           "constructor",
			"member_expression":        "property",
			"parenthesized_expression": "",
			"await_expression":         "",
			"non_null_expression":      "",
		},
		Idents: set("identifier", "property_identifier", "type_identifier"),
		Decls: map[string]Decl{
			"function_declaration":           {Field: "name"},
			"generator_function_declaration": {Field: "name"},
			"class_declaration":              {Field: "name"},
			"abstract_class_declaration":     {Field: "name"},
			"interface_declaration":          {Field: "name"},
			"type_alias_declaration":         {Field: "name"},
			"enum_declaration":               {Field: "name"},
			"method_definition":              {Field: "name"},
			"variable_declarator":            {Field: "name", TopLevel: true},
		},
		Scopes: set("function_declaration", "generator_function_declaration", "function_expression",
			"function", "arrow_function", "method_definition"),
	},
	"python": {
		Bindings: map[string]string{"assignment": "right"},
		Calls:    map[string]string{"call": "function"},
		Refs: map[string]string{
			"attribute":                "attribute",
			"parenthesized_expression": "",
			"await":                    "",
		},
		Idents: set("identifier"),
		Lists:  set("expression_list"),
		Decls: map[string]Decl{
			"function_definition": {Field: "name"},
			"class_definition":    {Field: "name"},
		},
		Scopes: set("function_definition", "lambda"),
	},
}

// ProfileFor returns the node profile of a language.
func ProfileFor(lang string) (*Profile, bool) {
	p, ok := profiles[lang]
	return p, ok
}
