// Package sampletests declares a set of example tests that exercise the engine end to end: literal and
// parameterised arguments, fixture chains in every scope, two-phase fixtures backed by real
// resources, and skip/xfail markers.
//
// Importing the package registers its tests in ward.DefaultRegistry.
package sampletests
