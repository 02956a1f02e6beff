package core

import "fmt"

// OpKind names one of the declarative write operations accepted by bulk
// writes and transactions.
type OpKind string

const (
	OpInsert OpKind = "insert"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// Operation is one declarative write. Transactions and bulk writes take a
// list of these instead of arbitrary callbacks, which is what makes rollback
// implementable: the store can validate the whole list up front and replay it
// against a working copy.
type Operation struct {
	Kind       OpKind   `json:"kind"`
	Collection string   `json:"collection"`
	Document   Document `json:"document,omitempty"` // insert
	Filter     Document `json:"filter,omitempty"`   // update, delete
	Update     Document `json:"update,omitempty"`   // update
	Many       bool     `json:"many,omitempty"`     // update, delete: apply to every match
}

// Validate checks the operation shape before execution.
func (op Operation) Validate() error {
	if op.Collection == "" {
		return &ValidationError{Reason: "operation has no collection"}
	}
	switch op.Kind {
	case OpInsert:
		if op.Document == nil {
			return &ValidationError{Collection: op.Collection, Reason: "insert without document"}
		}
	case OpUpdate:
		if op.Filter == nil {
			return &ValidationError{Collection: op.Collection, Reason: "update without filter"}
		}
		if op.Update == nil {
			return &ValidationError{Collection: op.Collection, Reason: "update without update spec"}
		}
	case OpDelete:
		if op.Filter == nil {
			return &ValidationError{Collection: op.Collection, Reason: "delete without filter"}
		}
	default:
		return &ValidationError{Collection: op.Collection, Reason: fmt.Sprintf("unknown operation kind %q", op.Kind)}
	}
	return nil
}

// BulkResult summarizes a bulk write.
type BulkResult struct {
	Inserted int
	Updated  int
	Deleted  int
	Errors   []error
}

// TxResult summarizes a committed transaction.
type TxResult struct {
	Inserted int
	Updated  int
	Deleted  int
}
