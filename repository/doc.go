// Package repository provides generic bun-backed persistence gateways keyed by
// string identifiers: upserting save, sorted and paginated finds, counts and
// deletes, plus the Job repository with eager Task loading.
package repository
