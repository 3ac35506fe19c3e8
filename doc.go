// Package shareline maintains a longitudinal, entity-keyed time series of
// shareholder positions out of periodic snapshot uploads.
//
// The core functionalities include:
//   - Normalization: turning one raw uploaded workbook into a canonical
//     (date, records) pair, with defined defaults for every row defect.
//   - Identity resolution: mapping a raw record to a stable canonical key
//     (normalized PAN preferred, trimmed name fallback).
//   - Merging: folding dated records into the persisted store with
//     last-write-wins semantics per (key, date) and untouched history for
//     entities absent from an upload.
//   - Grouping: reversible name-prefix clustering into display aggregates,
//     and validated user-curated manual groups.
//   - Analytics: two-point behavior classification, time-window delta
//     ranking with asymmetric boundary resolution, and composable filters
//     behind a configurable minimum-activity gate.
//
// All transforms are pure: they take a store value and return a rebuilt one,
// leaving persistence to the injected store capability (see the store
// package). This package is the foundational logic for the `shl`
// command-line tool and the HTTP transport in the server package.
package shareline
