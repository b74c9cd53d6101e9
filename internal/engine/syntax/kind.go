package syntax

// Kind is the normalized node kind. Grammar kinds that the engine never inspects collapse into
// KindOther and keep their grammar name in Raw.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindProgram
	KindBlock
	KindForStatement
	KindCatchClause
	KindVariableStatement
	KindVariableDeclaration
	KindObjectBindingPattern
	KindArrayBindingPattern
	KindBindingElement
	KindFunctionDeclaration
	KindFunctionExpression
	KindArrowFunction
	KindMethod
	KindConstructor
	KindParameters
	KindParameter
	KindModifier
	KindClassDeclaration
	KindClassBody
	KindPropertyDeclaration
	KindMethodSignature
	KindInterfaceDeclaration
	KindTypeAliasDeclaration
	KindTypeLiteral
	KindPropertySignature
	KindEnumDeclaration
	KindImportDeclaration
	KindImportClause
	KindNamespaceImport
	KindNamedImports
	KindImportSpecifier
	KindExportDeclaration
	KindNamedExports
	KindExportSpecifier
	KindObjectLiteral
	KindPropertyAssignment
	KindShorthandProperty
	KindPropertyAccess
	KindReturnStatement
	KindTypeAnnotation
	KindAsExpression
	KindIdentifier
	KindPropertyName
	KindTypeName
	KindOther

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:              "invalid",
	KindProgram:              "program",
	KindBlock:                "block",
	KindForStatement:         "for-statement",
	KindCatchClause:          "catch-clause",
	KindVariableStatement:    "variable-statement",
	KindVariableDeclaration:  "variable-declaration",
	KindObjectBindingPattern: "object-binding-pattern",
	KindArrayBindingPattern:  "array-binding-pattern",
	KindBindingElement:       "binding-element",
	KindFunctionDeclaration:  "function-declaration",
	KindFunctionExpression:   "function-expression",
	KindArrowFunction:        "arrow-function",
	KindMethod:               "method",
	KindConstructor:          "constructor",
	KindParameters:           "parameters",
	KindParameter:            "parameter",
	KindModifier:             "modifier",
	KindClassDeclaration:     "class-declaration",
	KindClassBody:            "class-body",
	KindPropertyDeclaration:  "property-declaration",
	KindMethodSignature:      "method-signature",
	KindInterfaceDeclaration: "interface-declaration",
	KindTypeAliasDeclaration: "type-alias-declaration",
	KindTypeLiteral:          "type-literal",
	KindPropertySignature:    "property-signature",
	KindEnumDeclaration:      "enum-declaration",
	KindImportDeclaration:    "import-declaration",
	KindImportClause:         "import-clause",
	KindNamespaceImport:      "namespace-import",
	KindNamedImports:         "named-imports",
	KindImportSpecifier:      "import-specifier",
	KindExportDeclaration:    "export-declaration",
	KindNamedExports:         "named-exports",
	KindExportSpecifier:      "export-specifier",
	KindObjectLiteral:        "object-literal",
	KindPropertyAssignment:   "property-assignment",
	KindShorthandProperty:    "shorthand-property",
	KindPropertyAccess:       "property-access",
	KindReturnStatement:      "return-statement",
	KindTypeAnnotation:       "type-annotation",
	KindAsExpression:         "as-expression",
	KindIdentifier:           "identifier",
	KindPropertyName:         "property-name",
	KindTypeName:             "type-name",
	KindOther:                "other",
}

func (k Kind) String() string {
	if k >= kindCount {
		return "invalid"
	}
	return kindNames[k]
}

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindProgram; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// IsIdentifier reports whether nodes of this kind are name leaves that print their current text.
func (k Kind) IsIdentifier() bool {
	switch k {
	case KindIdentifier, KindPropertyName, KindTypeName:
		return true
	default:
		return false
	}
}

// IsFunctionLike reports kinds that own a parameter list.
func (k Kind) IsFunctionLike() bool {
	switch k {
	case KindFunctionDeclaration, KindFunctionExpression, KindArrowFunction, KindMethod, KindConstructor:
		return true
	default:
		return false
	}
}

// Field labels used by the builder. Grammar field names are kept as-is; these are the ones the
// engine reads or the builder synthesizes.
const (
	FieldName       = "name"
	FieldProperty   = "property"
	FieldKey        = "key"
	FieldValue      = "value"
	FieldType       = "type"
	FieldAlias      = "alias"
	FieldBody       = "body"
	FieldParameters = "parameters"
	FieldParameter  = "parameter"
	FieldReturnType = "return_type"
	FieldSource     = "source"
	FieldObject     = "object"
	FieldLeft       = "left"
	FieldDecl       = "declaration"
)
