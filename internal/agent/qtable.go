package agent

import (
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

// StateAction keys a Q-value.
type StateAction[S comparable] struct {
	State  S
	Action mdp.Action
}

// QTable maps (state, action) pairs to values. Unseen pairs read as 0.
type QTable[S comparable] struct {
	values map[StateAction[S]]float64
}

// NewQTable creates an empty table
func NewQTable[S comparable]() *QTable[S] {
	return &QTable[S]{values: make(map[StateAction[S]]float64)}
}

// Get returns Q(state, action)
func (t *QTable[S]) Get(state S, action mdp.Action) float64 {
	return t.values[StateAction[S]{state, action}]
}

// Set stores Q(state, action)
func (t *QTable[S]) Set(state S, action mdp.Action, value float64) {
	t.values[StateAction[S]{state, action}] = value
}

// Len returns the number of stored pairs
func (t *QTable[S]) Len() int {
	return len(t.values)
}

// Clone returns an independent copy
func (t *QTable[S]) Clone() *QTable[S] {
	c := make(map[StateAction[S]]float64, len(t.values))
	for k, v := range t.values {
		c[k] = v
	}
	return &QTable[S]{values: c}
}

// Range calls fn for every stored pair until fn returns false. Order is
// unspecified.
func (t *QTable[S]) Range(fn func(state S, action mdp.Action, value float64) bool) {
	for k, v := range t.values {
		if !fn(k.State, k.Action, v) {
			return
		}
	}
}

// greedy returns the highest valued action. Ties go to the action listed
// first; an empty list yields ok=false.
func greedy(actions []mdp.Action, q func(mdp.Action) float64) (best mdp.Action, value float64, ok bool) {
	for i, a := range actions {
		v := q(a)
		if i == 0 || v > value {
			best, value = a, v
		}
	}
	return best, value, len(actions) > 0
}
