// Package framework contains the low-level implementation of test harness infrastructure
// that can be reused for different kinds of tests.
//
// The general model is:
//
// 1. The test harness talks to an API under test over HTTP. It does not control the API and
// makes no assumptions about its state beyond what each test creates for itself.
//
// 2. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results.
//
// The domain-specific code that knows what is being tested is responsible for building the
// requests, the expectations about the responses, and a domain-specific test API on top of
// the test context.
package framework
