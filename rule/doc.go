// Package rule implements the rule pipeline engine: Elements traverse
// ordered Groups of (name, matcher, action) Rules, each rule firing at
// most once per Group visit and the scan restarting from the top of
// the Group after every fire, until a full pass matches nothing.
//
// A Rule's action is either Local, running on the node driving the
// scan, or Remote, which hands the rest of the traversal to whichever
// unit.Router-owned worker the action resolves to. Because a Go
// closure cannot cross that hop, Register installs a named
// continuation (through package unit's handler registry) for every
// Remote rule in a Pipeline; the worker's node runs the continuation
// and resumes the scan itself, eventually calling the originating
// stream.Sink's Done or Emit through the stream.Ref carried in the
// cast payload.
package rule
