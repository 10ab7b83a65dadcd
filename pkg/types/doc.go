// Package types defines the canonical entity shapes, the Store persistence
// interface, configuration, and standard error types shared by every
// echosign component.
//
// Tenants own spaces; users, spaces, entries and analytics events are
// namespaced by tenant id. Signature entries reference spaces by id without
// ownership, so deleting a space leaves its entries in storage.
package types
