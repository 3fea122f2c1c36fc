// Package gorm implements the vault store interfaces using GORM.
//
// Queries are issued as parameterized raw SQL against PostgreSQL. The only
// identifier ever interpolated into a statement is the fixed administrative
// group id used by the bulk-revocation exemption.
package gorm
