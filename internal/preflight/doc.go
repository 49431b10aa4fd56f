// Package preflight provides readiness checks for the filesystem paths and
// local resources the filer depends on.
//
// The CLI `config validate` command prints every result; `watch` refuses to
// start when the monitor directory or state directory check fails. The
// destination may live on a network share, so its failure is reported but
// does not block watching.
package preflight
