package scenario

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/posts-contract-tests/client"
	"github.com/launchdarkly/posts-contract-tests/expect"
	"github.com/launchdarkly/posts-contract-tests/fixture"
	"github.com/launchdarkly/posts-contract-tests/framework"
	"github.com/launchdarkly/posts-contract-tests/mockapi"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	requests []client.RequestSpec
	respond  func(ctx context.Context, spec client.RequestSpec) (client.Response, error)
}

func (f *fakeSender) SendWithLogger(ctx context.Context, spec client.RequestSpec, _ framework.Logger) (client.Response, error) {
	f.requests = append(f.requests, spec)
	if f.respond == nil {
		return client.NewResponse(200, nil, []byte(`{}`)), nil
	}
	return f.respond(ctx, spec)
}

func withMockAPI(t *testing.T, action func(*Runner)) {
	api, err := mockapi.New()
	require.NoError(t, err)
	httphelpers.WithServer(api, func(server *httptest.Server) {
		c, err := client.New(server.URL)
		require.NoError(t, err)
		action(NewRunner(c, nil))
	})
}

func userFixture() fixture.Fixture {
	return fixture.NewUserProvider(nil, nil).Build()
}

func emptyFixture() fixture.Fixture {
	return fixture.New("", nil)
}

func get(path string) client.RequestSpec {
	return client.RequestSpec{Method: client.MethodGet, Path: path}
}

func TestAllStepsPassing(t *testing.T) {
	sender := &fakeSender{}
	sc := Scenario{Name: "two", Steps: []Step{
		{Request: get("/a"), Expect: []expect.Expectation{expect.StatusEquals(200)}},
		{Request: get("/b"), Expect: []expect.Expectation{expect.StatusEquals(200)}},
	}}
	result := NewRunner(sender, nil).Run(context.Background(), sc, emptyFixture())

	assert.Equal(t, StatePassed, result.State)
	assert.True(t, result.OK())
	assert.NoError(t, result.Err)
	assert.Equal(t, "step 1", result.Steps[0].Name)
	assert.Equal(t, "", result.Summary())
	require.Len(t, sender.requests, 2)
	assert.Equal(t, "/a", sender.requests[0].Path)
	assert.Equal(t, "/b", sender.requests[1].Path)
}

func TestFailedExtractionSkipsOnlyDependentSteps(t *testing.T) {
	sender := &fakeSender{}
	sc := Scenario{Name: "chain", Steps: []Step{
		{
			Name:    "login",
			Request: get("/login"),
			Extract: []Extract{ExtractField("token", "accessToken")},
		},
		{
			Name:    "create",
			Request: client.RequestSpec{Method: client.MethodPost, Path: "/664/posts", Headers: map[string]string{"Authorization": "Bearer {{token}}"}},
			Extract: []Extract{ExtractField("postId", "id")},
		},
		{
			Name:    "independent",
			Request: get("/posts"),
			Expect:  []expect.Expectation{expect.StatusEquals(200)},
		},
		{
			Name:    "read created",
			Request: get("/posts/{{postId}}"),
		},
	}}
	result := NewRunner(sender, nil).Run(context.Background(), sc, emptyFixture())

	assert.Equal(t, StatePartiallyFailed, result.State)
	assert.NoError(t, result.Err)

	login := result.Steps[0]
	assert.Equal(t, StepFailed, login.Status)
	require.Len(t, login.Errors, 1)
	var ee *ExtractionError
	require.True(t, errors.As(login.Errors[0], &ee))
	assert.Equal(t, "token", ee.Name)
	assert.Equal(t, `missing field: could not extract "token" from response body path "accessToken"`, ee.Error())

	assert.Equal(t, StepSkipped, result.Steps[1].Status)
	assert.Equal(t, `dependency failed: token (from "login")`, result.Steps[1].SkipReason)

	assert.Equal(t, StepPassed, result.Steps[2].Status)

	assert.Equal(t, StepSkipped, result.Steps[3].Status)
	assert.Equal(t, `dependency failed: postId (from "create")`, result.Steps[3].SkipReason)

	require.Len(t, sender.requests, 2)
	assert.Equal(t, "/login", sender.requests[0].Path)
	assert.Equal(t, "/posts", sender.requests[1].Path)
}

func TestFailedAssertionMakesExtractedValuesUnavailable(t *testing.T) {
	sender := &fakeSender{respond: func(context.Context, client.RequestSpec) (client.Response, error) {
		return client.NewResponse(500, nil, []byte(`{"id":7}`)), nil
	}}
	sc := Scenario{Steps: []Step{
		{
			Request: get("/posts"),
			Expect:  []expect.Expectation{expect.StatusEquals(201), expect.BodyFieldEquals("id", 8)},
			Extract: []Extract{ExtractField("postId", "id")},
		},
		{Request: get("/posts/{{postId}}")},
	}}
	result := NewRunner(sender, nil).Run(context.Background(), sc, emptyFixture())

	assert.Equal(t, StateFailed, result.State)
	first := result.Steps[0]
	assert.Equal(t, StepFailed, first.Status)
	assert.Equal(t, []string{
		"expected status 201, got 500",
		`expected body field "id" to equal 8, got 7`,
	}, first.Failures())
	assert.Equal(t, 7, first.Extracted["postId"].IntValue())
	assert.Equal(t, StepSkipped, result.Steps[1].Status)
	assert.Len(t, sender.requests, 1)
}

func TestPlaceholderWithDefaultDoesNotDependOnFailedStep(t *testing.T) {
	sender := &fakeSender{}
	sc := Scenario{Steps: []Step{
		{Request: get("/a"), Extract: []Extract{ExtractField("limit", "missing")}},
		{Request: get("/posts?_limit={{limit|5}}")},
	}}
	result := NewRunner(sender, nil).Run(context.Background(), sc, emptyFixture())

	assert.Equal(t, StatePartiallyFailed, result.State)
	require.Len(t, sender.requests, 2)
	assert.Equal(t, "/posts?_limit=5", sender.requests[1].Path)
}

func TestConfigurationErrorSendsNothing(t *testing.T) {
	rh, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(rh, func(server *httptest.Server) {
		c, err := client.New(server.URL)
		require.NoError(t, err)
		sc := Scenario{Name: "bad", Steps: []Step{
			{Name: "ok", Request: get("/posts")},
			{Name: "needs id", Request: get("/posts/{{postId}}")},
		}}
		result := NewRunner(c, nil).Run(context.Background(), sc, emptyFixture())

		assert.Equal(t, StateFailed, result.State)
		var ce *ConfigurationError
		require.True(t, errors.As(result.Err, &ce))
		assert.Equal(t, "needs id", ce.Step)
		for _, s := range result.Steps {
			assert.Equal(t, StepSkipped, s.Status)
		}
		assert.Len(t, requestsCh, 0)
	})
}

func TestTransportErrorAbortsScenario(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()
	c, err := client.New(url)
	require.NoError(t, err)

	sc := Scenario{Steps: []Step{
		{Request: get("/posts")},
		{Request: get("/posts/1")},
	}}
	result := NewRunner(c, nil).Run(context.Background(), sc, emptyFixture())

	assert.Equal(t, StateFailed, result.State)
	var te *client.TransportError
	require.True(t, errors.As(result.Err, &te))
	assert.Equal(t, StepFailed, result.Steps[0].Status)
	assert.False(t, result.Steps[0].HasResponse)
	assert.Equal(t, StepSkipped, result.Steps[1].Status)
	assert.Equal(t, "scenario aborted after transport error", result.Steps[1].SkipReason)
}

func TestStatusErrorCountsAsAssertionFailure(t *testing.T) {
	sender := &fakeSender{respond: func(_ context.Context, spec client.RequestSpec) (client.Response, error) {
		return client.NewResponse(404, nil, nil), &client.StatusError{Method: spec.Method, URL: spec.Path, StatusCode: 404}
	}}
	sc := Scenario{Steps: []Step{
		{Request: client.RequestSpec{Method: client.MethodGet, Path: "/x", FailOnStatusCode: true}},
		{Request: get("/y")},
	}}
	result := NewRunner(sender, nil).Run(context.Background(), sc, emptyFixture())

	assert.NoError(t, result.Err)
	assert.Equal(t, StepFailed, result.Steps[0].Status)
	var ae *AssertionError
	require.True(t, errors.As(result.Steps[0].Errors[0], &ae))
	assert.True(t, result.Steps[0].HasResponse)
	assert.Equal(t, StepFailed, result.Steps[1].Status)
	assert.Len(t, sender.requests, 2)
}

func TestCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sender := &fakeSender{}
	result := NewRunner(sender, nil).Run(ctx, Scenario{Steps: []Step{{Request: get("/a")}}}, emptyFixture())

	assert.Equal(t, StateFailed, result.State)
	assert.True(t, errors.Is(result.Err, context.Canceled))
	assert.Equal(t, "cancelled", result.Steps[0].SkipReason)
	assert.Len(t, sender.requests, 0)
}

func TestCancelledDuringRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sender := &fakeSender{respond: func(context.Context, client.RequestSpec) (client.Response, error) {
		cancel()
		return client.NewResponse(200, nil, nil), nil
	}}
	sc := Scenario{Steps: []Step{{Request: get("/a")}, {Request: get("/b")}, {Request: get("/c")}}}
	result := NewRunner(sender, nil).Run(ctx, sc, emptyFixture())

	assert.Equal(t, StateFailed, result.State)
	assert.True(t, errors.Is(result.Err, context.Canceled))
	assert.Equal(t, StepPassed, result.Steps[0].Status)
	assert.Equal(t, StepSkipped, result.Steps[1].Status)
	assert.Equal(t, "cancelled", result.Steps[2].SkipReason)
	assert.Len(t, sender.requests, 1)
}

func TestTemplatesUseFixtureAndExtractedValues(t *testing.T) {
	t.Setenv("POSTS_TEST_TOKEN_PREFIX", "Bearer")
	sender := &fakeSender{respond: func(_ context.Context, spec client.RequestSpec) (client.Response, error) {
		if spec.Path == "/register" {
			return client.NewResponse(201, nil, []byte(`{"accessToken":"tok","user":{"id":"u1"}}`)), nil
		}
		return client.NewResponse(201, nil, []byte(`{"id":101}`)), nil
	}}
	fx := fixture.New("user", map[string]ldvalue.Value{
		"email":    ldvalue.String("a@example.com"),
		"password": ldvalue.String("secret"),
	})
	sc := Scenario{Steps: []Step{
		{
			Request: client.RequestSpec{Method: client.MethodPost, Path: "/register", Body: "{{user}}"},
			Extract: []Extract{ExtractField("token", "accessToken"), ExtractField("userId", "user.id")},
		},
		{
			Request: client.RequestSpec{
				Method:  client.MethodPost,
				Path:    "/664/posts",
				Headers: map[string]string{"Authorization": "{{env.POSTS_TEST_TOKEN_PREFIX}} {{token}}"},
				Query:   []client.QueryParam{{Key: "by", Value: "{{email}}"}},
				Body: map[string]interface{}{
					"owner": "{{userId}}",
					"note":  "posted by {{email}}",
					"tags":  []interface{}{"{{missing|none}}"},
				},
			},
			Extract: []Extract{ExtractField("postId", "id")},
		},
		{
			Request: client.RequestSpec{Method: client.MethodPut, Path: "/posts/{{postId}}", Body: map[string]interface{}{"ref": "{{postId}}"}},
			Expect:  []expect.Expectation{expect.BodyFieldEquals("id", "{{postId}}")},
		},
	}}
	result := NewRunner(sender, nil).Run(context.Background(), sc, fx)
	require.Equal(t, StatePassed, result.State, result.Summary())
	require.Len(t, sender.requests, 3)

	register := sender.requests[0].Body.(ldvalue.Value)
	assert.Equal(t, "a@example.com", register.GetByKey("email").StringValue())
	assert.Equal(t, "secret", register.GetByKey("password").StringValue())

	create := sender.requests[1]
	assert.Equal(t, "Bearer tok", create.Headers["Authorization"])
	assert.Equal(t, "a@example.com", create.Query[0].Value)
	body := create.Body.(ldvalue.Value)
	assert.Equal(t, "u1", body.GetByKey("owner").StringValue())
	assert.Equal(t, "posted by a@example.com", body.GetByKey("note").StringValue())
	assert.Equal(t, "none", body.GetByKey("tags").GetByIndex(0).StringValue())

	update := sender.requests[2]
	assert.Equal(t, "/posts/101", update.Path)
	ref := update.Body.(ldvalue.Value).GetByKey("ref")
	assert.Equal(t, ldvalue.NumberType, ref.Type())
	assert.Equal(t, 101, ref.IntValue())

	assert.Equal(t, "/posts/{{postId}}", sc.Steps[2].Request.Path, "scenario template must not be modified")
}

func TestRunIsRepeatableWithFreshFixtures(t *testing.T) {
	provider := fixture.NewUserProvider(nil, nil)
	sender := &fakeSender{}
	sc := Scenario{Steps: []Step{{Request: client.RequestSpec{Method: client.MethodPost, Path: "/register", Body: "{{user}}"}}}}
	runner := NewRunner(sender, nil)
	runner.Run(context.Background(), sc, provider.Build())
	runner.Run(context.Background(), sc, provider.Build())

	require.Len(t, sender.requests, 2)
	first := sender.requests[0].Body.(ldvalue.Value).GetByKey("email").StringValue()
	second := sender.requests[1].Body.(ldvalue.Value).GetByKey("email").StringValue()
	assert.NotEqual(t, first, second)
}

func TestRunLogsProgress(t *testing.T) {
	var logger framework.CapturingLogger
	sc := Scenario{Name: "logged", Steps: []Step{{Name: "only", Request: get("/a"), Extract: []Extract{ExtractField("x", "")}}}}
	NewRunner(&fakeSender{}, nil).RunWithLogger(context.Background(), sc, emptyFixture(), &logger)

	var messages []string
	for _, m := range logger.Output() {
		messages = append(messages, m.Message)
	}
	assert.Equal(t, []string{`Captured x = {}`, `Step "only" passed`, `Scenario "logged" passed`}, messages)
}

func TestValidate(t *testing.T) {
	fx := userFixture()
	for name, sc := range map[string]Scenario{
		"no steps":          {},
		"bad method":        {Steps: []Step{{Request: client.RequestSpec{Method: "TRACE", Path: "/"}}}},
		"bad kind":          {Steps: []Step{{Request: get("/"), Expect: []expect.Expectation{{Kind: "body-matches"}}}}},
		"unterminated":      {Steps: []Step{{Request: get("/posts/{{id")}}},
		"empty placeholder": {Steps: []Step{{Request: get("/posts/{{ }}")}}},
		"unknown name":      {Steps: []Step{{Request: get("/posts/{{id}}")}}},
		"forward reference": {Steps: []Step{
			{Request: get("/posts/{{id}}")},
			{Request: get("/posts"), Extract: []Extract{ExtractField("id", "0.id")}},
		}},
		"unnamed extract": {Steps: []Step{{Request: get("/"), Extract: []Extract{{Path: "id"}}}}},
		"unknown in expectation": {Steps: []Step{
			{Request: get("/"), Expect: []expect.Expectation{expect.HeaderContains("location", "{{where}}")}},
		}},
		"unknown in query key": {Steps: []Step{
			{Request: client.RequestSpec{Method: client.MethodGet, Path: "/posts", Query: []client.QueryParam{{Key: "{{missing}}", Value: "1"}}}},
		}},
		"unknown in header name": {Steps: []Step{
			{Request: client.RequestSpec{Method: client.MethodGet, Path: "/", Headers: map[string]string{"{{hdr}}": "v"}}},
		}},
		"unknown in expectation path": {Steps: []Step{
			{Request: get("/"), Expect: []expect.Expectation{expect.BodyFieldEquals("{{field}}", 1)}},
		}},
		"unknown in expectation header": {Steps: []Step{
			{Request: get("/"), Expect: []expect.Expectation{expect.HeaderContains("{{hdr}}", "x")}},
		}},
		"unknown in extract path": {Steps: []Step{
			{Request: get("/"), Extract: []Extract{ExtractField("id", "{{where}}.id")}},
		}},
		"form body is an array": {Steps: []Step{
			{Request: client.RequestSpec{Method: client.MethodPost, Path: "/posts", Body: []string{"x"}, Form: true}},
		}},
		"form body is a string fixture field": {Steps: []Step{
			{Request: client.RequestSpec{Method: client.MethodPost, Path: "/posts", Body: "{{email}}", Form: true}},
		}},
		"body cannot be serialized": {Steps: []Step{
			{Request: client.RequestSpec{Method: client.MethodPost, Path: "/posts", Body: func() {}}},
		}},
	} {
		t.Run(name, func(t *testing.T) {
			err := sc.Validate(fx)
			var ce *ConfigurationError
			assert.True(t, errors.As(err, &ce), "got %v", err)
		})
	}

	valid := Scenario{Steps: []Step{
		{Request: client.RequestSpec{Method: client.MethodPost, Path: "/login", Body: map[string]interface{}{"email": "{{email}}"}},
			Extract: []Extract{ExtractField("token", "accessToken")}},
		{Request: client.RequestSpec{Method: client.MethodGet, Path: "/{{env.HOME}}/{{other|x}}",
			Headers: map[string]string{"Authorization": "Bearer {{token}}"}}},
		{Request: client.RequestSpec{Method: client.MethodPost, Path: "/register", Body: "{{user}}"}},
		{Request: client.RequestSpec{Method: client.MethodPost, Path: "/posts", Body: "{{user}}", Form: true}},
		{Request: client.RequestSpec{Method: client.MethodPost, Path: "/posts", Body: map[string]interface{}{"post": "{{email}}"}, Form: true},
			Expect:  []expect.Expectation{expect.HeaderContains("{{hdr|content-type}}", "json")},
			Extract: []Extract{ExtractField("postId", "{{idField|id}}")}},
	}}
	assert.NoError(t, valid.Validate(fx))
}

func TestInvalidFormBodySendsNothing(t *testing.T) {
	rh, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(rh, func(server *httptest.Server) {
		c, err := client.New(server.URL)
		require.NoError(t, err)
		sc := Scenario{Name: "form", Steps: []Step{
			{Name: "first", Request: get("/a")},
			{Name: "bad", Request: client.RequestSpec{Method: client.MethodPost, Path: "/posts", Body: []string{"x"}, Form: true}},
			{Name: "last", Request: get("/b")},
		}}
		result := NewRunner(c, nil).Run(context.Background(), sc, emptyFixture())

		assert.Equal(t, StateFailed, result.State)
		var ce *ConfigurationError
		require.True(t, errors.As(result.Err, &ce))
		assert.Equal(t, "bad", ce.Step)
		assert.Len(t, requestsCh, 0)
	})
}

func TestTemplatesInNamesAndPaths(t *testing.T) {
	sender := &fakeSender{respond: func(_ context.Context, spec client.RequestSpec) (client.Response, error) {
		h := http.Header{}
		h.Set("X-Post-Id", "9")
		return client.NewResponse(200, h, []byte(`{"data":{"id":9}}`)), nil
	}}
	fx := fixture.New("", map[string]ldvalue.Value{
		"param":  ldvalue.String("page"),
		"header": ldvalue.String("X-Trace"),
		"field":  ldvalue.String("data"),
		"hdr":    ldvalue.String("x-post-id"),
	})
	sc := Scenario{Steps: []Step{
		{
			Request: client.RequestSpec{
				Method:  client.MethodGet,
				Path:    "/posts",
				Headers: map[string]string{"{{header}}": "t1"},
				Query:   []client.QueryParam{{Key: "_{{param}}", Value: "2"}},
			},
			Expect: []expect.Expectation{
				expect.BodyFieldEquals("{{field}}.id", 9),
				expect.HeaderContains("{{hdr}}", "9"),
			},
			Extract: []Extract{ExtractField("id", "{{field}}.id")},
		},
	}}
	result := NewRunner(sender, nil).Run(context.Background(), sc, fx)
	require.Equal(t, StatePassed, result.State, result.Summary())

	sent := sender.requests[0]
	assert.Equal(t, map[string]string{"X-Trace": "t1"}, sent.Headers)
	assert.Equal(t, []client.QueryParam{{Key: "_page", Value: "2"}}, sent.Query)
	assert.Equal(t, 9, result.Steps[0].Extracted["id"].IntValue())
}

func TestSubstitutedPathValuesAreEscaped(t *testing.T) {
	sender := &fakeSender{respond: func(_ context.Context, spec client.RequestSpec) (client.Response, error) {
		return client.NewResponse(200, nil, []byte(`{"slug":"a/b?c#d","q":"x&y=z"}`)), nil
	}}
	sc := Scenario{Steps: []Step{
		{Request: get("/start"), Extract: []Extract{ExtractField("slug", "slug"), ExtractField("q", "q")}},
		{Request: get("/posts/{{slug}}?search={{q}}")},
	}}
	result := NewRunner(sender, nil).Run(context.Background(), sc, emptyFixture())
	require.Equal(t, StatePassed, result.State, result.Summary())
	assert.Equal(t, "/posts/a%2Fb%3Fc%23d?search=x%26y%3Dz", sender.requests[1].Path)
}

func TestStepDependencies(t *testing.T) {
	step := Step{
		Request: client.RequestSpec{
			Method:  client.MethodPut,
			Path:    "/posts/{{postId}}",
			Headers: map[string]string{"Authorization": "Bearer {{token}}"},
			Body:    map[string]interface{}{"a": []interface{}{"{{b}}", "{{c|1}}"}, "d": "{{env.D}}"},
		},
		Expect: []expect.Expectation{expect.BodyFieldEquals("id", "{{postId}}")},
	}
	deps, err := step.Dependencies()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "postId", "token"}, deps)
}

func TestEndToEndAuthorizedCreate(t *testing.T) {
	withMockAPI(t, func(runner *Runner) {
		fx := userFixture()
		sc := Scenario{Name: "authorized create", Steps: []Step{
			{
				Name:    "unauthorized",
				Request: client.RequestSpec{Method: client.MethodPost, Path: "/664/posts", Body: map[string]interface{}{"post": "p"}},
				Expect:  []expect.Expectation{expect.StatusEquals(401)},
			},
			{
				Name:    "register",
				Request: client.RequestSpec{Method: client.MethodPost, Path: "/register", Body: "{{user}}"},
				Expect:  []expect.Expectation{expect.StatusEquals(201), expect.BodyFieldEquals("user.email", "{{email}}")},
			},
			{
				Name:    "login",
				Request: client.RequestSpec{Method: client.MethodPost, Path: "/login", Body: "{{user}}"},
				Expect:  []expect.Expectation{expect.StatusEquals(200)},
				Extract: []Extract{ExtractField("token", "accessToken")},
			},
			{
				Name: "create",
				Request: client.RequestSpec{
					Method:  client.MethodPost,
					Path:    "/664/posts",
					Headers: map[string]string{"Authorization": "Bearer {{token}}"},
					Body:    map[string]interface{}{"post": "p", "comment": "c"},
				},
				Expect: []expect.Expectation{expect.StatusEquals(201), expect.BodyFieldEquals("post", "p")},
			},
		}}
		result := runner.Run(context.Background(), sc, fx)
		assert.Equal(t, StatePassed, result.State, result.Summary())
		assert.Equal(t, fx.String("email"), result.Steps[1].Response.Body.GetByKey("user").GetByKey("email").StringValue())
	})
}

func TestEndToEndCreateUpdateDeleteGet(t *testing.T) {
	withMockAPI(t, func(runner *Runner) {
		sc := Scenario{Name: "lifecycle", Steps: []Step{
			{
				Request: client.RequestSpec{Method: client.MethodPost, Path: "/posts",
					Body: map[string]interface{}{"post": "Azure Active", "comment": "Log in", "stars": 5}},
				Expect: []expect.Expectation{
					expect.StatusEquals(201),
					expect.BodyFieldEquals("post", "Azure Active"),
					expect.BodyFieldEquals("comment", "Log in"),
				},
				Extract: []Extract{ExtractField("postId", "id")},
			},
			{
				Request: client.RequestSpec{Method: client.MethodPut, Path: "/posts/{{postId}}", Body: map[string]interface{}{"stars": 10}},
				Expect:  []expect.Expectation{expect.StatusEquals(200), expect.BodyFieldEquals("stars", 10)},
			},
			{
				Request: client.RequestSpec{Method: client.MethodDelete, Path: "/posts/{{postId}}"},
				Expect:  []expect.Expectation{expect.StatusEquals(200)},
			},
			{
				Request: get("/posts/{{postId}}"),
				Expect:  []expect.Expectation{expect.StatusEquals(404)},
			},
		}}
		result := runner.Run(context.Background(), sc, emptyFixture())
		assert.Equal(t, StatePassed, result.State, result.Summary())
	})
}

func TestSummaryListsProblems(t *testing.T) {
	result := Result{
		Name: "s",
		Steps: []StepResult{
			{Name: "a", Status: StepPassed},
			{Name: "b", Status: StepFailed, Errors: []error{&AssertionError{Failures: []string{"x", "y"}}}},
			{Name: "c", Status: StepSkipped, SkipReason: "dependency failed: t"},
		},
	}
	assert.Equal(t, "[b] x\n[b] y\n[c] skipped: dependency failed: t", result.Summary())
}
