package python

var skippedTypes = map[string]bool{
	"comment":                 true,
	"import_statement":        true,
	"import_from_statement":   true,
	"future_import_statement": true,
	"decorator":               true,
	"type_parameter":          true,
	"keyword_separator":       true,
	"positional_separator":    true,
}

// Fields holding annotations or declarations that never produce nodes.
var skippedFields = map[string]bool{
	"return_type":     true,
	"superclasses":    true,
	"type_parameters": true,
}

var literalTypes = map[string]bool{
	"integer":             true,
	"float":               true,
	"string":              true,
	"concatenated_string": true,
	"true":                true,
	"false":               true,
	"none":                true,
	"ellipsis":            true,
}

var expressionTypes = map[string]bool{
	"binary_operator":          true,
	"unary_operator":           true,
	"boolean_operator":         true,
	"not_operator":             true,
	"comparison_operator":      true,
	"conditional_expression":   true,
	"named_expression":         true,
	"subscript":                true,
	"slice":                    true,
	"list":                     true,
	"tuple":                    true,
	"set":                      true,
	"dictionary":               true,
	"pair":                     true,
	"list_comprehension":       true,
	"set_comprehension":        true,
	"dictionary_comprehension": true,
	"generator_expression":     true,
	"await":                    true,
	"yield":                    true,
}

var genericStatements = map[string]string{
	"expression_statement": "",
	"pass_statement":       "pass",
	"break_statement":      "break",
	"continue_statement":   "continue",
	"assert_statement":     "assert",
	"delete_statement":     "del",
	"global_statement":     "global",
	"nonlocal_statement":   "nonlocal",
	"print_statement":      "print",
	"exec_statement":       "exec",
	"match_statement":      "match",
	"case_clause":          "case",
	"finally_clause":       "finally",
}

var opaqueStatements = map[string]bool{
	"pass_statement":     true,
	"break_statement":    true,
	"continue_statement": true,
}

var parameterTypes = map[string]bool{
	"identifier":               true,
	"typed_parameter":          true,
	"default_parameter":        true,
	"typed_default_parameter":  true,
	"list_splat_pattern":       true,
	"dictionary_splat_pattern": true,
}

var exceptClauses = map[string]bool{
	"except_clause":       true,
	"except_group_clause": true,
}

// producesOneNode reports receiver types that become exactly one node, so
// no wrapping Expression is needed around them.
func producesOneNode(typ string) bool {
	switch typ {
	case "call", "attribute", "identifier", "lambda":
		return true
	}
	return literalTypes[typ] || expressionTypes[typ]
}
