package project_analyzer

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// topLevelDeclTypes are the node types counted as one declaration each.
var topLevelDeclTypes = map[string]bool{
	"function_declaration": true,
	"method_declaration":   true,
	"type_declaration":     true,
	"function_definition":  true,
	"class_definition":     true,
	"class_declaration":    true,
	"decorated_definition": true,
	"interface_declaration": true,
	"enum_declaration":      true,
	"lexical_declaration":   true,
	"var_declaration":       true,
	"const_declaration":     true,
}

// countTopLevelDeclarations parses a source file with tree-sitter and counts
// declarations directly under the root node. Unsupported languages count as
// zero rather than failing the scan.
func countTopLevelDeclarations(language string, sourceCode []byte) int {
	parser := sitter.NewParser()

	switch language {
	case "Go":
		parser.SetLanguage(golang.GetLanguage())
	case "Python":
		parser.SetLanguage(python.GetLanguage())
	case "JavaScript":
		parser.SetLanguage(javascript.GetLanguage())
	case "TypeScript":
		parser.SetLanguage(typescript.GetLanguage())
	default:
		return 0
	}

	tree := parser.Parse(nil, sourceCode)
	if tree == nil {
		return 0
	}

	root := tree.RootNode()
	count := 0
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if topLevelDeclTypes[root.NamedChild(i).Type()] {
			count++
		}
	}
	return count
}
