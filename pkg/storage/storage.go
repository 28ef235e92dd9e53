package storage

// Storage defines the root interface for the entire data layer.
// It composes all available storage operations. Components should depend on the
// more granular interfaces (EngineStore, UserStore, etc.) instead of this one.
type Storage interface {
	EngineStore
	WithdrawalStore
	AuditStore
	AdminDirectory
}

// EngineStore is the set of operations the rules engine needs.
type EngineStore interface {
	UserStore
	LedgerReader
	ConfigStore
	HoldReader
	AwardStore
}
