// Package perfbook turns a sectioned brokerage statement export into a
// balanced, performance-annotated view of an account. It is designed to be
// local-first and auditable: every figure a report shows can be traced back
// to statement cells and explicit reconciliation rules.
//
// The core functionalities include:
//   - Statement Parsing: reading multi-section CSV exports into named raw
//     tables, permissively (malformed records are dropped or padded, never
//     fatal).
//   - Normalization: converting heterogeneous textual numbers (accounting
//     negatives, currency symbols, thousands separators) into exact
//     decimals, with parse issues reported rather than raised.
//   - Reconciliation: merging positions, dividends and realized gains into
//     one instrument table, and synthesizing settled-cash and accrual
//     entries so the books balance exactly against the reported net asset
//     value.
//   - Performance: calendar-window and since-date returns over date-indexed
//     value series, composite benchmark construction, and the official
//     flow-adjusted NAV return.
//   - Risk: single-benchmark OLS regression (beta, R², idiosyncratic risk)
//     and independent per-factor betas.
//
// The package favors degrade-and-continue over raise-and-abort: a report
// run never fails because one cell was malformed. Only a missing input
// stream is fatal.
package perfbook
