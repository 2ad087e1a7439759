package eval

import "context"

// PerfFlags is a plain struct of boolean toggles queried by hot paths
// (spec §6) — an immutable snapshot passed by value into one execute(...)
// call, never a package global. Grounded in the teacher's
// PerformanceMetrics/VMOptimizer fields living on *VirtualMachine rather
// than as globals; here the struct travels via context instead of a struct
// field so every node's Get/EvalValue/SetAt signature stays uniform without
// threading an extra parameter through the whole tree.
type PerfFlags struct {
	RVALFastpath bool // RVAL_FASTPATH
	PrimitiveFastOps bool // PRIMITIVE_FASTOPS

	FieldPIC       bool // FIELD_PIC
	FieldPICSize4  bool // FIELD_PIC_SIZE_4
	IndexPIC       bool // INDEX_PIC
	IndexPICSize4  bool // INDEX_PIC_SIZE_4
	MethodPIC      bool // METHOD_PIC
	MethodPICSize4 bool // METHOD_PIC_SIZE_4
	LocalSlotPIC   bool // LOCAL_SLOT_PIC

	PICAdaptive2To4        bool // PIC_ADAPTIVE_2_TO_4
	PICAdaptiveMethodsOnly bool // PIC_ADAPTIVE_METHODS_ONLY
	PICAdaptiveHeuristic   bool // PIC_ADAPTIVE_HEURISTIC

	ScopePool bool // SCOPE_POOL
	RegexCache bool // REGEX_CACHE

	PICDebugCounters bool // PIC_DEBUG_COUNTERS
}

// DefaultPerfFlags turns on the fast paths, every PIC (starting at 2 entries
// with adaptive promotion and heuristic freeze), the scope pool and the regex
// cache. The *PICSize4 flags, PICAdaptiveMethodsOnly and PICDebugCounters
// stay off. A caller that wants a cold, uncached
// baseline (e.g. for testing the slow path) builds a zero-value PerfFlags
// instead.
func DefaultPerfFlags() PerfFlags {
	return PerfFlags{
		RVALFastpath:           true,
		PrimitiveFastOps:       true,
		FieldPIC:               true,
		IndexPIC:               true,
		MethodPIC:              true,
		LocalSlotPIC:           true,
		PICAdaptive2To4:        true,
		PICAdaptiveHeuristic:   true,
		ScopePool:              true,
		RegexCache:             true,
	}
}

type perfCtxKey struct{}

func WithPerfFlags(ctx context.Context, pf PerfFlags) context.Context {
	return context.WithValue(ctx, perfCtxKey{}, pf)
}

// PerfFlagsFrom returns the flags installed on ctx, or DefaultPerfFlags if
// none were set (so tree-walking helper code never has to nil-check).
func PerfFlagsFrom(ctx context.Context) PerfFlags {
	if pf, ok := ctx.Value(perfCtxKey{}).(PerfFlags); ok {
		return pf
	}
	return DefaultPerfFlags()
}

func (pf PerfFlags) picInitialSize(size4Flag bool) int {
	if size4Flag {
		return 4
	}
	return 2
}
