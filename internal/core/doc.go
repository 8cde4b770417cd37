// Package core provides the business logic for catalog CSV imports.
//
// This package holds the domain flow independent of any transport. The HTTP
// handlers and the virexctl CLI both drive it.
//
// # Import Flow
//
// An import runs one file through the importer pipeline and then writes the
// selected operations:
//
//  1. [Service.ImportGeneric] or [Service.ImportCategory] takes a limiter slot
//  2. Reference tables are loaded into a per-request cache
//  3. The file is parsed, resolved, coerced and validated
//  4. Rows are planned against what is stored (INSERT, UPDATE or SKIP)
//  5. Selected operations are written one by one; failures are collected
//
// The preview variants stop after step 4 and keep the plan in the plan cache
// until [Service.ExecutePlan] runs it or it expires.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError].
// Each error category has a code for support reference:
//
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
//   - VAL001-VAL005: Validation errors (columns, numbers, categories)
//   - FILE001-FILE005: File errors (size, format, empty)
//   - IMP001-IMP005: Import errors (busy, expired plans, timeouts)
//
// # Audit Logging
//
// Executed imports, previews and download uploads are recorded in the audit
// log with a severity level. Old entries are purged by the retention
// scheduler.
package core
