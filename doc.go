// Package sheaf provides declarative batch orchestration: a JSON or
// YAML tree of actions and combinators that fans out, chains, loops,
// and accumulates a shared result.
//
// The engine is in package 'core'.  Stock actions are in 'actions',
// script interpreters in 'interpreters', stored batches in 'library',
// and analysis and diagrams in 'tools'.  Command-line tools are in
// 'cmd'.
package sheaf
