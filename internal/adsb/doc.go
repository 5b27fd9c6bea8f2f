// Package adsb retrieves aircraft snapshots from an ADS-B receiver and
// feeds them to an MQTT publisher.
//
// This package manages:
//   - HTTP retrieval of aircraft.json from dump1090/tar1090 receivers
//   - Validation and compaction of the snapshot document
//   - The periodic fetch-and-publish poll loop
//
// # Failure Model
//
// A receiver going quiet is normal operation, not an error condition. Every
// fetch failure is classified (ErrTransport, ErrDecode, ErrShape), counted,
// logged, and forgotten; the poll loop keeps its cadence and picks the data
// back up when the receiver returns.
//
// # Payload Fidelity
//
// Published payloads are the receiver's own JSON, compacted. The document
// is decoded only far enough to validate its shape and count aircraft;
// re-encoding a parsed structure would reorder keys and reformat numbers,
// so the raw bytes are compacted instead.
package adsb
