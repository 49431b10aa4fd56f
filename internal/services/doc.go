// Package services defines shared utilities consumed by the identification,
// filing, and watch code paths.
//
// Key responsibilities:
//   - Context helpers that stamp the file being processed, the pipeline stage,
//     and the daemon session identifier for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent history statuses (pending vs failed).
package services
