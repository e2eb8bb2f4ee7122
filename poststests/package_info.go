// Package poststests contains the posts API contract tests themselves and their supporting API.
//
// Each test is expressed as a scenario.Scenario and run through the scenario package, so the
// request chains here only describe what to send and what to expect. Infrastructure that is not
// specific to the posts API, such as test filtering and result reporting, is in the lower-level
// framework package.
package poststests
