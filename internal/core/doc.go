// Package core provides the business logic for validating phenotype data files.
//
// This package sits between the transports (HTTP handlers, the CLI) and the
// validation engine. It contains no transport code and can be used by web
// handlers, command line tools, or tests without modification.
//
// # Validation Runs
//
// A run is one data file checked against one data dictionary. The flow is:
//
//  1. Caller passes a [Request] to [Service.ValidateFile]
//  2. The service waits for a slot from its [RunLimiter]
//  3. The dictionary is loaded and the data file is tokenized
//  4. The engine reconciles the header and checks every data row
//  5. The findings are persisted as a [store.Run] and returned
//
// A run with validation errors is a successful call: the findings are data.
// ValidateFile only returns an error when the inputs could not be read, the
// system was too busy, or the run could not be persisted.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE005: Data file errors (size, format, missing)
//   - DICT001-DICT004: Dictionary errors (empty, columns, duplicates, bounds)
//   - RUN001-RUN005: Run errors (busy, not found, cancelled, timeout)
//   - DB001-DB003: Run store connectivity errors
package core
