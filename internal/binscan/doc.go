// Package binscan recovers identification fields from raw ECU dumps.
//
// A dump is flattened into a text view of the same length in which every
// printable ASCII byte is kept and every other byte becomes the placeholder
// '~'. No vendor pattern accepts the placeholder, so matches never straddle
// binary noise while byte offsets stay usable for window searches.
//
// Scan runs an ordered list of vendor phases over that view:
//
//	bosch, ford, continental, delphi, delco, transtron, bmw, mercedes, generic
//
// Each phase writes a field only while it is still empty. The delphi phase is
// the exception: when it finds a CRD signature it first clears
// bosch_sw_number, bosch_variant and oem_hw_number, which the bosch phase
// tends to fill with look-alike numbers on Delphi images. Reordering phases
// changes results; delphi must stay after bosch.
//
// Scanning never fails. An empty or unrecognizable buffer yields an empty
// record.
package binscan
