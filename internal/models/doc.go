// Package models defines the core domain models for BillPort.
//
// # Models
//
//   - Bill: a payable obligation owned by exactly one user
//   - Payment: append-only audit record of a payment applied to a Bill
//   - User: registered user account
//   - RecurringBillCandidate: derived recurring-charge suggestion (never persisted)
//   - EmailBillCandidate: derived bill suggestion extracted from email metadata
//   - Insight: spending analysis for one biller's history
//
// # Design Principles
//
//  1. **One canonical Bill shape**: legacy payloads with inconsistent field
//     names (amount vs totalAmount, isPaid as 0/1 vs a status string) are
//     normalized at the API boundary via NormalizeBill, never branched on
//     downstream.
//  2. **Derived status**: a bill's payment status is always computed from
//     PaidAmount vs TotalAmount, never stored or set independently.
//  3. **Avoid circular references**: relationships use ID strings, not pointers.
package models
