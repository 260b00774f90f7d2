// Package registry defines the canonical semantic model of a system
// description and the transformation that builds it from the parser's
// intermediate tree.
//
// The intermediate tree mirrors the document's hierarchy, which is the wrong
// shape for analysis and code generation. The Registry rearranges the same
// information into flat sets of small immutable value entities: protection
// domains, inlets (a domain paired with one of its local channel ids),
// communication channels, IRQ channels and mapped memory regions. Equality
// everywhere is structural, so set membership is the only notion of identity.
//
// Building a Registry performs no semantic cross-checking. It deliberately
// constructs entities from raw names even when those names match nothing
// else in the model; that is how dangling references become visible to the
// validation package, which owns all cross-entity rules.
package registry
