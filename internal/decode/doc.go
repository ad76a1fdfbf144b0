// Package decode turns a value tree into typed Go values when a field can be
// written in more than one shape.
//
// The building blocks are:
//
//   - Matcher: a pure predicate over a node's shape (string, sequence,
//     mapping with a given key, ...).
//   - Decoder: a function that extracts a T from a node or fails with a
//     structured *Error.
//   - Union: an ordered list of (Matcher, Decoder) candidates. The first
//     matcher that accepts the node commits; a failing decoder does not fall
//     through to later candidates.
//   - Schema: a record declaration. Each field has a key, a decoder and a
//     rule for what happens when the key is absent.
//   - Enum: an immutable keyword table with a default for absent input.
//
// Unions, schemas and enums are meant to be built once at package level and
// shared; decoding never mutates them. A decode call allocates all of its
// own state, so independent calls may run in parallel without coordination.
package decode
