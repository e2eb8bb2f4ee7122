// Package servicedef contains the JSON representations of the resources served by the posts API.
package servicedef

import "gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

// Post is a post resource. The API stores whatever fields a client submits, so these are only
// the ones that the suite and the fake API know about.
type Post struct {
	ID      int                 `json:"id"`
	Post    string              `json:"post,omitempty"`
	Comment string              `json:"comment,omitempty"`
	Stars   ldvalue.OptionalInt `json:"stars"`
	Photo   string              `json:"photo,omitempty"`
}

// Credentials is the request body for registering and logging in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the public part of a registered user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthResponse is the response body for a successful registration or login.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

const (
	PathPosts         = "/posts"
	PathOwnedPosts    = "/664/posts"
	PathRegister      = "/register"
	PathLogin         = "/login"
	HeaderTotalCount  = "X-Total-Count"
	QueryPage         = "_page"
	QueryLimit        = "_limit"
	DefaultPageLimit  = 10
	MinPasswordLength = 4
)
