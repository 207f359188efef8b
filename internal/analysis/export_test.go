package analysis

// Exported aliases so external test packages can reach unexported identifiers.
const FallbackConfidence = fallbackConfidence

var MergeFlags = mergeFlags
