package schema

// Custom string types for type safety.
type (
	// PolicyKind represents the aggregation policy used to total a run.
	PolicyKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// NodeKind distinguishes groups from criteria in explanations.
	NodeKind string

	// DatabaseBackend represents the database backend for score history.
	DatabaseBackend string
)

// All aggregation policies supported.
const (
	MeanPolicy     PolicyKind = "mean" // default
	WeightedPolicy PolicyKind = "weighted"
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All node kinds.
const (
	GroupNode     NodeKind = "group"
	CriterionNode NodeKind = "criterion"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Weight bounds in basis points.
const (
	MinWeightBPS  = 0
	MaxWeightBPS  = 10000
	FullWeightBPS = MaxWeightBPS // every sibling level must sum to this
)

// AllPolicyKinds returns a list of all supported policies.
var AllPolicyKinds = []PolicyKind{MeanPolicy, WeightedPolicy}

// ValidPolicyKinds lists all valid policies.
var ValidPolicyKinds = map[PolicyKind]struct{}{
	MeanPolicy:     {},
	WeightedPolicy: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
