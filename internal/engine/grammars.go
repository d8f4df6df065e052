package engine

// Built-in grammars.
import (
	_ "github.com/leapstack-labs/gast/pkg/grammars/java"
	_ "github.com/leapstack-labs/gast/pkg/grammars/python"
)
