package poststests

import (
	"github.com/launchdarkly/posts-contract-tests/client"
	"github.com/launchdarkly/posts-contract-tests/expect"
	"github.com/launchdarkly/posts-contract-tests/scenario"
	"github.com/launchdarkly/posts-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	nonExistentPostForUpdate = "/posts/999999999"
	nonExistentPostForDelete = "/posts/99999999"
	createdPostPath          = servicedef.PathPosts + "/{{postId}}"
)

// createPost returns a step that creates a post with a JSON body and extracts its id as "postId".
func createPost(body ldvalue.Value) scenario.Step {
	return scenario.Step{
		Name:    "create",
		Request: withBody(request(client.MethodPost, servicedef.PathPosts), body),
		Expect:  []expect.Expectation{expect.StatusEquals(201)},
		Extract: []scenario.Extract{scenario.ExtractField("postId", "id")},
	}
}

func DoEntityTests(t *T) {
	t.Run("create post entity", func(t *T) {
		body := postBody("Azure Active Directory Authentication", "Log in to Azure Active Directory", ldvalue.OptionalInt{})
		spec := withBody(request(client.MethodPost, servicedef.PathPosts), body)
		spec.Form = true
		t.RunScenario(scenario.Scenario{Name: "create with form body", Steps: []scenario.Step{{
			Name:    "create",
			Request: spec,
			Expect: []expect.Expectation{
				expect.StatusEquals(201),
				expect.BodyFieldEquals("post", body.GetByKey("post")),
				expect.BodyFieldEquals("comment", body.GetByKey("comment")),
			},
		}}})
	})

	t.Run("update non-existing entity", func(t *T) {
		body := postBody("Azure Active Directory Authentication", "Log in to Azure Active Directory", ldvalue.NewOptionalInt(5))
		t.RunScenario(scenario.Scenario{Name: "update non-existing", Steps: []scenario.Step{{
			Name:    "update",
			Request: withBody(request(client.MethodPut, nonExistentPostForUpdate), body),
			Expect:  []expect.Expectation{expect.StatusEquals(404)},
		}}})
	})

	t.Run("create post entity and update entity", func(t *T) {
		body := postBody("Azure Active", "Log in to Azure Active Directory", ldvalue.NewOptionalInt(5))
		t.RunScenario(scenario.Scenario{Name: "create and update", Steps: []scenario.Step{
			createPost(body),
			{
				Name:    "update",
				Request: withBody(request(client.MethodPut, createdPostPath), map[string]interface{}{"stars": 10}),
				Expect: []expect.Expectation{
					expect.StatusEquals(200),
					expect.BodyFieldEquals("stars", 10),
				},
			},
		}})
	})

	t.Run("delete non-existing entity", func(t *T) {
		body := map[string]interface{}{
			"post":    "Azure Active Directory Authentication",
			"comment": "Log in to Azure Active Directory",
			"stars":   5,
			"photo":   "img",
		}
		t.RunScenario(scenario.Scenario{Name: "delete non-existing", Steps: []scenario.Step{{
			Name:    "delete",
			Request: withBody(request(client.MethodDelete, nonExistentPostForDelete), body),
			Expect:  []expect.Expectation{expect.StatusEquals(404)},
		}}})
	})

	t.Run("create, update and delete entity post", func(t *T) {
		body := postBody("Azure Active", "Log in to Azure Active Directory", ldvalue.NewOptionalInt(5))
		t.RunScenario(scenario.Scenario{Name: "create, update, delete", Steps: []scenario.Step{
			createPost(body),
			{
				Name:    "update",
				Request: withBody(request(client.MethodPut, createdPostPath), map[string]interface{}{"stars": 10}),
				Expect:  []expect.Expectation{expect.StatusEquals(200)},
			},
			{
				Name:    "delete",
				Request: request(client.MethodDelete, createdPostPath),
				Expect:  []expect.Expectation{expect.StatusEquals(200)},
			},
			{
				Name:    "get deleted",
				Request: request(client.MethodGet, createdPostPath),
				Expect:  []expect.Expectation{expect.StatusEquals(404)},
			},
		}})
	})
}
