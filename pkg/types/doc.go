// Package types defines the case record, the status vocabulary, the
// CaseGateway seam interface, backend configuration, and the standard
// errors shared by every caseseam backend.
package types
