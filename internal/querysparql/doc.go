// Package querysparql owns the resolution state of one resolution pass and
// renders the resolved plan as a SPARQL query.
//
// A Builder is created per pass and discarded afterwards; nothing survives
// across queries. The engine is its only writer and never touches it from
// more than one goroutine, so the Builder carries no locks.
//
// Rendering rules (Build):
//
//	?VARn token            -> ?VARn           (projected variable)
//	TYPEn token            -> a               (rdf:type)
//	resolved binding       -> <entity-id>
//	unresolved binding     -> ?placeholder    (reported in Query.Unresolved)
//
// Output is deterministic: triples in plan order, projected variables in
// order of first appearance.
package querysparql
