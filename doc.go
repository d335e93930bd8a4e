// Package brokerage turns a ledger of brokerage transactions into positions,
// cost basis, realized and unrealized P&L, and performance figures. It is
// designed to be local-first and auditable: every derived number can be
// recomputed from the ledger alone, and the same ledger always reproduces the
// same results.
//
// The core functionalities include:
//   - Ledger Management: Recording brokerage events (buys, sells, option
//     lifecycle, dividends, deposits, withdrawals, internal transfers) in an
//     append-only, chronological record. Corrections are reversing entries,
//     never edits.
//   - Lot Tracking: Replaying the ledger into cost-basis lots per account and
//     instrument, with FIFO, LIFO or specific-lot matching, tax-neutral
//     internal transfers, and one realized P&L record per consumed lot.
//   - Valuation: Pricing open positions at any date against a price provider,
//     degrading gracefully when a quote is missing.
//   - Performance: Time-weighted returns chain-linked at external flow
//     boundaries, and annualized internal rates of return over the full
//     cash-flow schedule.
//   - Data Persistence: Encoding and decoding the ledger, reference data and
//     quotes to and from human-readable, version-controllable formats (JSONL
//     and JSON).
//
// This package serves as the foundational logic for the `bpt` command-line
// tool, ensuring that all operations are consistent and based on a single
// source of truth.
package brokerage
