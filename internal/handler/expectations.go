// ABOUTME: In-memory registry of negative tests and their expected statuses
// ABOUTME: Production TestContext implementation for the daemon and tests

package handler

import "sync"

// ExpectationRegistry is a thread-safe TestContext implementation.
// Callers running negative tests register the contexts and statuses they
// expect to fail; matching errors are then acknowledged instead of
// emitted.
type ExpectationRegistry struct {
	mu       sync.RWMutex
	negative map[string]bool
	expected map[string]map[int]bool
}

// NewExpectationRegistry creates an empty registry. An empty registry
// expects no errors, so every capture emits.
func NewExpectationRegistry() *ExpectationRegistry {
	return &ExpectationRegistry{
		negative: make(map[string]bool),
		expected: make(map[string]map[int]bool),
	}
}

// Expect marks context as a negative test that expects the given
// statuses.
func (r *ExpectationRegistry) Expect(context string, statuses ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.negative[context] = true
	set := r.expected[context]
	if set == nil {
		set = make(map[int]bool)
		r.expected[context] = set
	}
	for _, s := range statuses {
		set[s] = true
	}
}

// Clear removes all expectations for context.
func (r *ExpectationRegistry) Clear(context string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.negative, context)
	delete(r.expected, context)
}

// IsNegativeTest implements TestContext.
func (r *ExpectationRegistry) IsNegativeTest(context string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.negative[context]
}

// IsExpectedStatus implements TestContext.
func (r *ExpectationRegistry) IsExpectedStatus(context string, status int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.expected[context][status]
}
