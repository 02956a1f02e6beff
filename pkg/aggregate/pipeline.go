// Package aggregate runs ordered pipelines of transformation stages over
// document sequences. Each stage consumes the output of its predecessor, so
// pipelines compose regardless of stage count; the first stage sees the raw
// input sequence.
//
// Pipelines run entirely over read snapshots and hold no collection lock, so
// slow pipelines never starve writers. In exchange they are bounded: a run
// that produces more intermediate documents than the configured budget fails
// instead of running unbounded.
package aggregate

import (
	"fmt"

	"github.com/katha-begin/Montu-sub000/pkg/core"
)

// DefaultBudget caps the total number of documents emitted across all stages
// of one pipeline run.
const DefaultBudget = 1_000_000

// Pipeline is a compiled aggregation pipeline, safe for concurrent use.
type Pipeline struct {
	stages []stage
	budget int
}

type stage interface {
	run(docs []core.Document, exec *executor) ([]core.Document, error)
}

// executor carries per-run state: the document budget and the index of the
// stage being executed, for error attribution.
type executor struct {
	remaining int
	stageIdx  int
}

func (e *executor) charge(n int) error {
	e.remaining -= n
	if e.remaining < 0 {
		return &core.QueryError{Stage: e.stageIdx, Detail: "pipeline exceeded document budget"}
	}
	return nil
}

// Option configures a compiled pipeline.
type Option func(*Pipeline)

// WithBudget overrides the document budget for runs of this pipeline.
func WithBudget(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.budget = n
		}
	}
}

// Compile parses a pipeline of stage specifications. Each specification is a
// single-key document naming the stage; an unrecognized stage name fails with
// a core.QueryError carrying the stage's position.
func Compile(pipeline []core.Document, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{budget: DefaultBudget}
	for i, spec := range pipeline {
		if len(spec) != 1 {
			return nil, &core.QueryError{Stage: i, Detail: fmt.Sprintf("stage must have exactly one key, got %d", len(spec))}
		}
		for name, arg := range spec {
			build, ok := stageBuilders[name]
			if !ok {
				return nil, &core.QueryError{Stage: i, Detail: fmt.Sprintf("unknown stage %q", name)}
			}
			st, err := build(i, arg)
			if err != nil {
				return nil, err
			}
			p.stages = append(p.stages, st)
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes the pipeline over docs and returns the final sequence. The
// input slice is never mutated; stages that reorder or reshape work on
// copies. Stages after a failing stage never execute.
func (p *Pipeline) Run(docs []core.Document) ([]core.Document, error) {
	exec := &executor{remaining: p.budget}
	cur := docs
	for i, st := range p.stages {
		exec.stageIdx = i
		next, err := st.run(cur, exec)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	if cur == nil {
		cur = []core.Document{}
	}
	return cur, nil
}

// Run compiles and executes a pipeline in one call.
func Run(docs []core.Document, pipeline []core.Document, opts ...Option) ([]core.Document, error) {
	p, err := Compile(pipeline, opts...)
	if err != nil {
		return nil, err
	}
	return p.Run(docs)
}

// stageBuilders is the registry of stage constructors, resolved once at
// compile time. The stage index is captured for error attribution.
var stageBuilders = map[string]func(idx int, arg any) (stage, error){
	"$match":   buildMatch,
	"$group":   buildGroup,
	"$sort":    buildSort,
	"$skip":    buildSkip,
	"$limit":   buildLimit,
	"$project": buildProject,
	"$count":   buildCount,
}
