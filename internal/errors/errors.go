// Package errors defines the normalized error taxonomy for the converter.
// Every user-facing failure is one of the kinds below; callers match them
// with Equal or RFCCode rather than by message text.
package errors

import (
	"github.com/pingcap/errors"
)

// Document and extraction errors.
var (
	// ErrMalformedDocument covers unparsable markup and unparsable document
	// content (for example a non-numeric token inside a table element). It
	// is fatal: no partial network is ever produced from a malformed file.
	ErrMalformedDocument = errors.Normalize(
		"malformed XDSL document: %s",
		errors.RFCCodeText("XDSL:ErrMalformedDocument"),
	)
	ErrUnknownNodeKind = errors.Normalize(
		"unknown node kind '%s' (node '%s')",
		errors.RFCCodeText("XDSL:ErrUnknownNodeKind"),
	)
	ErrUnsupportedTemporalConstruct = errors.Normalize(
		"temporal construct '%s' is not supported",
		errors.RFCCodeText("XDSL:ErrUnsupportedTemporalConstruct"),
	)
	ErrEmptyStateSpace = errors.Normalize(
		"node '%s' declares no states",
		errors.RFCCodeText("XDSL:ErrEmptyStateSpace"),
	)
)

// Structural validation errors.
var (
	ErrDuplicateNodeID = errors.Normalize(
		"duplicate node id '%s'",
		errors.RFCCodeText("XDSL:ErrDuplicateNodeID"),
	)
	ErrDanglingArc = errors.Normalize(
		"node '%s' lists undeclared parent '%s'",
		errors.RFCCodeText("XDSL:ErrDanglingArc"),
	)
	ErrCyclicGraph = errors.Normalize(
		"network is not acyclic: %s",
		errors.RFCCodeText("XDSL:ErrCyclicGraph"),
	)
	ErrTableSizeMismatch = errors.Normalize(
		"table for node '%s' holds %d values, expected %d",
		errors.RFCCodeText("XDSL:ErrTableSizeMismatch"),
	)
)

// RFCCode extracts the normalized code from err, unwrapping as needed.
// The second return is false when err does not carry one.
func RFCCode(err error) (errors.RFCErrorCode, bool) {
	if err == nil {
		return "", false
	}
	if norm, ok := errors.Cause(err).(*errors.Error); ok {
		return norm.RFCCode(), true
	}
	return "", false
}

// Describe splits err into its machine-readable code and human-readable
// message, for transports that carry the two separately. Errors outside
// the taxonomy come back with an empty code and their plain text.
func Describe(err error) (code, message string) {
	if norm, ok := errors.Cause(err).(*errors.Error); ok {
		return string(norm.RFCCode()), norm.GetMsg()
	}
	return "", err.Error()
}
