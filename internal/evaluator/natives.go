package evaluator

import (
	"lox/internal/native"
	"lox/internal/object"
)

// registerNatives installs the Non-goal-sanctioned native function set into
// a fresh global environment (spec.md §1, §3 "NativeFunction").
func registerNatives(globals *object.Environment) {
	globals.Define("clock", &object.NativeFunction{
		Name:  "clock",
		Arity: 0,
		Fn: func(args []object.Object) (object.Object, error) {
			return &object.Number{Value: native.Clock()}, nil
		},
	})
}
