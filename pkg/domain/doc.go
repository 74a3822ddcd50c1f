/*
Package domain contains the core models of the formflow engine.

A form is a directed graph authored in a visual editor. The engine walks it one
node at a time on behalf of a participant and describes the next thing the
participant can do as an action descriptor. This package is kept pure: no I/O,
no persistence, no transport.

# Key Entities

  - Form: an identified, titled Schema.
  - Schema: ordered Nodes and Edges exactly as the editor saved them.
  - Node: a tagged variant (start, input, choice, end) plus opaque extension kinds.
  - ActionDescriptor: the client-facing description of the next step.
  - Position: the persisted record of where a participant currently is.
*/
package domain
