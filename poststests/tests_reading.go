package poststests

import (
	"encoding/json"

	"github.com/launchdarkly/posts-contract-tests/client"
	"github.com/launchdarkly/posts-contract-tests/expect"
	"github.com/launchdarkly/posts-contract-tests/scenario"
	"github.com/launchdarkly/posts-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoReadingTests(t *T) {
	t.Run("get all posts", func(t *T) {
		t.RunScenario(scenario.Scenario{Name: "get all posts", Steps: []scenario.Step{{
			Name:    "list",
			Request: request(client.MethodGet, servicedef.PathPosts),
			Expect: []expect.Expectation{
				expect.StatusEquals(200),
				expect.HeaderContains("content-type", "application/json"),
			},
		}}})
	})

	t.Run("get only first 10 posts", func(t *T) {
		t.RunScenario(scenario.Scenario{Name: "first page", Steps: []scenario.Step{{
			Name:    "first page",
			Request: request(client.MethodGet, servicedef.PathPosts+"?_page=1&_limit=10"),
			Expect: []expect.Expectation{
				expect.StatusEquals(200),
				expect.BodyLength(10),
			},
		}}})
	})

	t.Run("get posts with id 55 and id 60", func(t *T) {
		spec := request(client.MethodGet, servicedef.PathPosts)
		spec.Query = client.RepeatedParam("id", 55, 60)
		result := t.RunScenario(scenario.Scenario{Name: "filter by id", Steps: []scenario.Step{{
			Name:    "filter",
			Request: spec,
			Expect: []expect.Expectation{
				expect.StatusEquals(200),
				expect.BodyLength(2),
				expect.BodyArrayContains("*.id", 55),
				expect.BodyArrayContains("*.id", 60),
			},
		}}})

		var posts []servicedef.Post
		require.NoError(t, json.Unmarshal(t.RequireStep(result, "filter").Response.RawBody, &posts))
		var ids []int
		for _, p := range posts {
			ids = append(ids, p.ID)
		}
		assert.ElementsMatch(t, []int{55, 60}, ids)
	})
}
