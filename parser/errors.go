package parser

import (
	"fmt"

	"github.com/robinvdvleuten/beanclerk/ast"
)

// ParseError represents a syntax error during parsing.
type ParseError struct {
	Pos     ast.Position
	Message string
}

func (e *ParseError) Error() string {
	location := fmt.Sprintf("%s:%d", e.Pos.Filename, e.Pos.Line)
	if e.Pos.Filename == "" {
		location = fmt.Sprintf("line %d", e.Pos.Line)
	}

	return fmt.Sprintf("%s: %s", location, e.Message)
}

// GetPosition returns where the error occurred.
func (e *ParseError) GetPosition() ast.Position {
	return e.Pos
}
