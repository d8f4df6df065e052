package java

// Productions whose whole subtree carries nothing for the generic AST.
var skippedTypes = map[string]bool{
	"package_declaration":                 true,
	"import_declaration":                  true,
	"module_declaration":                  true,
	"line_comment":                        true,
	"block_comment":                       true,
	"modifiers":                           true,
	"marker_annotation":                   true,
	"annotation":                          true,
	"type_arguments":                      true,
	"type_parameters":                     true,
	"dimensions":                          true,
	"superclass":                          true,
	"super_interfaces":                    true,
	"extends_interfaces":                  true,
	"permits":                             true,
	"throws":                              true,
	"receiver_parameter":                  true,
	"annotation_type_element_declaration": true,
	"type_identifier":                     true,
	"scoped_type_identifier":              true,
	"generic_type":                        true,
	"array_type":                          true,
	"integral_type":                       true,
	"floating_point_type":                 true,
	"boolean_type":                        true,
	"void_type":                           true,
	"annotated_type":                      true,
	"catch_type":                          true,
}

// Literals are kept verbatim as constants.
var literalTypes = map[string]bool{
	"decimal_integer_literal":        true,
	"hex_integer_literal":            true,
	"octal_integer_literal":          true,
	"binary_integer_literal":         true,
	"decimal_floating_point_literal": true,
	"hex_floating_point_literal":     true,
	"true":                           true,
	"false":                          true,
	"character_literal":              true,
	"string_literal":                 true,
	"text_block":                     true,
	"null_literal":                   true,
	"class_literal":                  true,
}

// Expressions without a specialized node.
var expressionTypes = map[string]bool{
	"binary_expression":     true,
	"unary_expression":      true,
	"update_expression":     true,
	"ternary_expression":    true,
	"instanceof_expression": true,
	"cast_expression":       true,
	"array_access":          true,
	"template_expression":   true,
}

// Statements without a specialized node, with their label.
var genericStatements = map[string]string{
	"expression_statement":         "",
	"switch_expression":            "switch",
	"switch_block_statement_group": "case",
	"switch_rule":                  "case",
	"synchronized_statement":       "synchronized",
	"assert_statement":             "assert",
	"yield_statement":              "yield",
	"break_statement":              "break",
	"continue_statement":           "continue",
	"finally_clause":               "finally",
	"static_initializer":           "static",
}

// Class-like declarations.
var classTypes = map[string]bool{
	"class_declaration":           true,
	"interface_declaration":       true,
	"enum_declaration":            true,
	"record_declaration":          true,
	"annotation_type_declaration": true,
}

// Receivers that become exactly one node and need no wrapping Expression.
var singleNodeReceivers = map[string]bool{
	"method_invocation":          true,
	"object_creation_expression": true,
	"array_creation_expression":  true,
	"field_access":               true,
	"array_access":               true,
	"identifier":                 true,
	"this":                       true,
}

func init() {
	for t := range literalTypes {
		singleNodeReceivers[t] = true
	}
}
