// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

// Package auth implements the Quorum authentication and session core.
//
// # Domain Types
//
// Domain types should be created using their constructors:
//   - NewUser - creates an active User from validated registration input
//   - NewSession - creates a Session with an 8-hour expiry and hashed token
//
// Repository implementations receive pre-validated types from these constructors.
//
// # Services
//
//   - SessionManager - Register, Authenticate, Terminate
//   - AuthorizationGuard - Authorize, under a strict or existence policy
//
// Every SessionManager operation runs as one unit of work through a
// Transactor. AuthorizationGuard joins the caller's unit of work.
//
// # Errors
//
// Client-visible failures are oops errors tagged with a domain (signup,
// signin, signout, authorization) and a code such as SGR-001. Codes repeat
// across domains; classify with KindOf.
package auth
