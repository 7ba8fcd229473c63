package gesture

import (
	"sync"

	"github.com/emoticon-ai/emoticon/internal/landmark"
)

// Evaluator runs a rule set against landmark frames. Evaluation never
// fails: a rule whose predicate panics (for example on a short landmark
// slice) is skipped for that frame and counted for diagnostics.
type Evaluator struct {
	faces *RuleSet
	body  *BodyRuleSet

	mu       sync.Mutex
	ruleErrs map[string]int
}

// NewEvaluator creates an evaluator over the given face rule set.
// The body rule set is optional; pass nil to disable body-language rules.
func NewEvaluator(faces *RuleSet, body *BodyRuleSet) *Evaluator {
	return &Evaluator{
		faces:    faces,
		body:     body,
		ruleErrs: make(map[string]int),
	}
}

// Evaluate returns the set of gesture names whose predicates hold for the
// face frame, in registration order. It is invoked once per detected
// face; results for different faces are never merged.
func (e *Evaluator) Evaluate(f *landmark.Face) []string {
	if f == nil {
		return nil
	}

	var names []string
	for _, r := range e.faces.rules {
		if e.safeApply(r.Name, func() bool { return r.When(f) }) {
			names = append(names, r.Name)
		}
	}
	return names
}

// EvaluateBody returns the set of body-language pattern names that hold
// for the pose frame. Returns nil when no body rule set is configured.
func (e *Evaluator) EvaluateBody(p *landmark.Pose) []string {
	if e.body == nil || p == nil {
		return nil
	}

	var names []string
	for _, r := range e.body.rules {
		if e.safeApply(r.Name, func() bool { return r.When(p) }) {
			names = append(names, r.Name)
		}
	}
	return names
}

// safeApply evaluates one predicate, converting a panic into "not
// detected" and recording it against the rule name.
func (e *Evaluator) safeApply(name string, fn func() bool) (held bool) {
	defer func() {
		if r := recover(); r != nil {
			held = false
			e.mu.Lock()
			e.ruleErrs[name]++
			e.mu.Unlock()
		}
	}()
	return fn()
}

// RuleErrors returns a copy of the per-rule evaluation failure counts,
// for diagnostics only.
func (e *Evaluator) RuleErrors() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]int, len(e.ruleErrs))
	for k, v := range e.ruleErrs {
		out[k] = v
	}
	return out
}
