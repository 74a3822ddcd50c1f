/*
Package dsl provides a fluent builder for constructing forms in Go.

It is an alternative to hand-written schema JSON for tests, examples and forms generated
by code. Nodes keep the order they are added in, so the first node is the entry node.

Example usage:

	b := dsl.New("contact", "Contact")

	b.Add("start").Start("Welcome!").Go("name")
	b.Add("name").Input("What is your name?").Required().Go("newsletter")
	b.Add("newsletter").Choice("Subscribe?").
		Option("Yes", "yes").
		Option("Later", "later").
		Required().
		Go("done")
	b.Add("done").End("Thanks, we'll be in touch")

	repo, err := b.BuildRepository()
	// ... pass repo to formflow.New(...)
*/
package dsl
