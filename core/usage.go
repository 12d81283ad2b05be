package core

// AttrUsage declares which endpoint attributes a triplet function reads.
//
// It replaces runtime inspection of the function with an explicit capability
// flag supplied by the caller. When in doubt, declare UsesBoth: over-shipping
// is a performance cost, under-shipping silently computes on stale or zero
// attributes.
type AttrUsage uint8

const (
	// UsesNone declares the function reads neither endpoint attribute.
	UsesNone AttrUsage = iota
	// UsesSrc declares the function reads only the source attribute.
	UsesSrc
	// UsesDst declares the function reads only the destination attribute.
	UsesDst
	// UsesBoth declares the function reads both endpoint attributes.
	// This is the conservative default.
	UsesBoth
)

// NeedsSrc reports whether source attributes must be replicated.
func (u AttrUsage) NeedsSrc() bool { return u == UsesSrc || u == UsesBoth }

// NeedsDst reports whether destination attributes must be replicated.
func (u AttrUsage) NeedsDst() bool { return u == UsesDst || u == UsesBoth }

// Fidelity records which endpoint attributes an edge partition currently has
// replicated. It only ever increases; downgrading would force re-shipping.
type Fidelity uint8

const (
	// FidelityNone means no endpoint attributes are materialized.
	FidelityNone Fidelity = 0
	// FidelitySrc means source attributes are materialized.
	FidelitySrc Fidelity = 1 << 0
	// FidelityDst means destination attributes are materialized.
	FidelityDst Fidelity = 1 << 1
	// FidelityBoth means both endpoint attributes are materialized.
	FidelityBoth Fidelity = FidelitySrc | FidelityDst
)

// HasSrc reports whether source attributes are materialized.
func (f Fidelity) HasSrc() bool { return f&FidelitySrc != 0 }

// HasDst reports whether destination attributes are materialized.
func (f Fidelity) HasDst() bool { return f&FidelityDst != 0 }

// Dominates reports whether f covers every attribute requested by need.
func (f Fidelity) Dominates(need Fidelity) bool { return f&need == need }

// With returns f with the requested attributes added.
func (f Fidelity) With(need Fidelity) Fidelity { return f | need }

// Swap exchanges the source and destination flags. Used when a partition's
// edges are reversed.
func (f Fidelity) Swap() Fidelity {
	var out Fidelity
	if f.HasSrc() {
		out |= FidelityDst
	}
	if f.HasDst() {
		out |= FidelitySrc
	}
	return out
}
