// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

// Package postgres implements the auth repositories on PostgreSQL.
// Every call resolves its querier through store.QuerierFrom, so it joins
// the unit of work opened by store.Transactor when one is active.
package postgres
