// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (ledger.go, message.go, chat.go, errors.go) hold
// shared types and cross-cutting contracts. No implementation code lives
// here; adapters and the ledger engine implement these interfaces.
package domain
