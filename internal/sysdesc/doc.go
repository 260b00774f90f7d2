// Package sysdesc parses System Description Files (SDF) into an intermediate
// tree that closely mirrors the document's own structure.
//
// The tree deliberately stays loose: it is a faithful, location-tagged record
// of what the user wrote, with only structural and lexical rules enforced
// (well-formed XML, known elements and attributes, parseable literals,
// page-size arithmetic, declaration cardinality). Whether the described
// system actually makes sense is decided later, by the validation package,
// over the rearranged model the registry package builds from this tree. That
// split keeps every structural failure fatal and immediate, while semantic
// problems can all be collected and reported together.
package sysdesc
