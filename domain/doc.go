// Package domain holds the workforce entities. References between entities
// are non-owning identifier fields; only Job.Tasks is ever resolved inline.
package domain
