// Package types defines the change-set and configuration types, document
// identity values, and standard errors shared by the Atelier persistence
// core. The engine, importer, and attachment creator all speak in terms
// of these types; they carry no behavior beyond validation.
package types
