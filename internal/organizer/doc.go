// Package organizer files identified dumps into the destination tree.
//
// A dump lands in <destination>/<make>/<folder>, where the folder name is
// built from the vehicle fields of its merged record. Optionally a dump whose
// registration already has a folder is added to that folder instead. Each
// destination folder carries a plain-text log with one SESSION block per
// filed dump. Moves never overwrite: a clashing name gets a time suffix.
//
// Search walks the same tree and matches folder names, which is how the
// filer finds earlier work for a vehicle without consulting the history
// database.
package organizer
