// Command ecufiler identifies ECU firmware dumps and files them into a
// vehicle archive.
//
// One-shot commands (identify, parse-name, file, folders, history) run in the
// foreground and exit. The watch command runs the daemon until interrupted.
// Every command reads the same TOML configuration; see `ecufiler config init`.
package main
