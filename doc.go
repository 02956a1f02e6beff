// Package montu is the Composition Root for the Montu document store.
//
// It connects the document engine (query matching, updates, aggregation)
// with the filesystem adapter (atomic JSON persistence, cross-process
// locking) using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// Montu treats a directory of JSON files as a transactional database. Each
// collection is one human-readable JSON array on disk, every write replaces
// the file atomically, and flock-based advisory locks make a single data
// directory safe to share between processes. There is no server: every user
// of the store is an embedded client.
//
// Features:
//
//   - **Hexagonal Architecture**: Document engine is isolated from persistence details.
//   - **Transactional Safe**: Atomic file replacement; declarative multi-collection transactions.
//   - **Query Operators**: Mongo-style filters ($eq, $gt, $in, $regex, $and, $or, ...).
//   - **Aggregation**: $match, $group, $sort, $skip, $limit, $project, $count pipelines.
//   - **Typed Retrieval**: Generic wrapper (`NewTypedCollection[T]`) for type-safe access.
//   - **Reactive**: Filesystem watching surfaces changes made by other processes.
//
// Usage:
//
//	// Open a store with functional options
//	db, err := montu.Open("./data",
//		montu.WithLockTimeout(2*time.Second),
//		montu.WithLogger(logger),
//	)
//
//	// Insert a document
//	id, err := db.InsertOne("tasks", montu.Document{
//		"title": "Block out layout",
//		"status": "pending",
//	})
package montu
