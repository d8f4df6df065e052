// Package gast defines the generic, language-agnostic AST and the
// stack-based Builder that assembles it from enter/exit events.
//
// Grammar adapters translate concrete productions into builder operations;
// consumers read the finished tree through Node accessors, Walk and All, or
// exchange it as JSON with MarshalJSON and FromExchange.
package gast
