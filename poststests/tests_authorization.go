package poststests

import (
	"github.com/launchdarkly/posts-contract-tests/client"
	"github.com/launchdarkly/posts-contract-tests/expect"
	"github.com/launchdarkly/posts-contract-tests/scenario"
	"github.com/launchdarkly/posts-contract-tests/servicedef"
)

// registerAndLogin returns steps that register the fixture user, log in, and extract the access
// token as "token".
func registerAndLogin() []scenario.Step {
	register := withBody(request(client.MethodPost, servicedef.PathRegister), "{{user}}")
	register.FailOnStatusCode = true
	login := withBody(request(client.MethodPost, servicedef.PathLogin), "{{user}}")
	login.FailOnStatusCode = true
	return []scenario.Step{
		{
			Name:    "register",
			Request: register,
			Expect: []expect.Expectation{
				expect.StatusEquals(201),
				expect.BodyFieldEquals("user.email", "{{email}}"),
			},
		},
		{
			Name:    "login",
			Request: login,
			Expect:  []expect.Expectation{expect.StatusEquals(200)},
			Extract: []scenario.Extract{scenario.ExtractField("token", "accessToken")},
		},
	}
}

func DoAuthorizationTests(t *T) {
	t.Run("create an unauthorized post", func(t *T) {
		t.RunScenario(scenario.Scenario{Name: "unauthorized create", Steps: []scenario.Step{{
			Name:    "create",
			Request: request(client.MethodPost, servicedef.PathOwnedPosts),
			Expect:  []expect.Expectation{expect.StatusEquals(401)},
		}}})
	})

	t.Run("create an authorized post", func(t *T) {
		steps := append(registerAndLogin(), scenario.Step{
			Name:    "create",
			Request: withBearerToken(request(client.MethodPost, servicedef.PathOwnedPosts), "{{token}}"),
			Expect:  []expect.Expectation{expect.StatusEquals(201)},
		})
		t.RunScenario(scenario.Scenario{Name: "authorized create", Steps: steps})
	})

	t.Run("invalid token is rejected", func(t *T) {
		t.RunScenario(scenario.Scenario{Name: "invalid token", Steps: []scenario.Step{{
			Name:    "create",
			Request: withBearerToken(request(client.MethodPost, servicedef.PathOwnedPosts), "not-a-valid-token"),
			Expect:  []expect.Expectation{expect.StatusEquals(401)},
		}}})
	})
}
