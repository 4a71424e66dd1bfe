// Package models defines the core domain models for SmartSplit.
//
// # Canonical Models
//
//   - Member: a person in the group, identified by an immutable ID
//   - Bill: a shared expense paid by one member and split equally among
//     the involved members
//   - RoomDocument: the full {members, bills, updatedAt} document shape
//     used for file export/import and for the shared remote room
//
// # Derived Models
//
// The following are computed on demand and never persisted:
//   - Balance: a member's net position across all bills
//   - Transaction: one transfer in a settlement plan
//
// # Design Principles
//
//  1. Members are referenced by ID strings, never by pointers, to avoid
//     circular references and to keep the models trivially serializable.
//  2. A bill may carry a payer ID that no longer resolves to a member
//     (the member was removed, or the bill arrived from another client).
//     Consumers must tolerate this: the ID still participates in balance
//     calculations under its stored value.
//  3. All amounts are in a single implicit currency unit.
package models
