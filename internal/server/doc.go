// Package server exposes the converter over HTTP: upload an XDSL document,
// get back the pyAgrum construction script or the materialized diagram.
// Finished artifacts are cached by document digest, so re-posting the same
// network is free.
package server
