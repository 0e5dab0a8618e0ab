package game

// PlayerID identifies a player across tables and the ledger.
type PlayerID string

// TableID identifies a table (the external channel the session serves).
type TableID string
