package mockapi

import (
	"encoding/json"
	"io/ioutil"
	"mime"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/launchdarkly/posts-contract-tests/servicedef"

	"github.com/go-chi/chi/v5"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := make(map[string][]string)
	for key, values := range query {
		if !strings.HasPrefix(key, "_") {
			filters[key] = values
		}
	}
	posts := s.store.Posts(filters)
	total := len(posts)

	page, limit := intParam(query, servicedef.QueryPage), intParam(query, servicedef.QueryLimit)
	if page > 0 || limit > 0 {
		if limit <= 0 {
			limit = servicedef.DefaultPageLimit
		}
		if page <= 0 {
			page = 1
		}
		start := len(posts)
		if page-1 <= len(posts)/limit {
			start = min((page-1)*limit, len(posts))
		}
		posts = posts[start : start+min(limit, len(posts)-start)]
	}

	w.Header().Set(servicedef.HeaderTotalCount, strconv.Itoa(total))
	writeJSON(w, http.StatusOK, posts)
}

func intParam(query map[string][]string, name string) int {
	values := query[name]
	if len(values) == 0 {
		return 0
	}
	n, err := strconv.Atoi(values[0])
	if err != nil {
		return 0
	}
	return n
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}
	p, found := s.store.Post(id)
	if !found {
		writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.store.CreatePost(fields))
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}
	fields, err := readFields(r)
	if err != nil {
		fields = ldvalue.ObjectBuild().Build()
	}
	p, found := s.store.UpdatePost(id, fields)
	if !found {
		writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok || !s.store.DeletePost(id) {
		writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func postID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

// readFields decodes a JSON or form-encoded request body into an object. Form values are
// strings, or arrays of strings for repeated keys. An empty body is an empty object.
func readFields(r *http.Request) (ldvalue.Value, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return ldvalue.Null(), err
		}
		b := ldvalue.ObjectBuild()
		for key, values := range r.PostForm {
			if len(values) == 1 {
				b.Set(key, ldvalue.String(values[0]))
				continue
			}
			arr := ldvalue.ArrayBuild()
			for _, v := range values {
				arr.Add(ldvalue.String(v))
			}
			b.Set(key, arr.Build())
		}
		return b.Build(), nil
	}

	data, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return ldvalue.Null(), err
	}
	if strings.TrimSpace(string(data)) == "" {
		return ldvalue.ObjectBuild().Build(), nil
	}
	if !json.Valid(data) {
		return ldvalue.Null(), errInvalidBody
	}
	v := ldvalue.Parse(data)
	if v.Type() != ldvalue.ObjectType {
		return ldvalue.Null(), errInvalidBody
	}
	return v, nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	if err == nil {
		err = validateNewCredentials(creds)
	}
	var user servicedef.User
	if err == nil {
		user, err = s.store.Register(creds)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeAuthResponse(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	var user servicedef.User
	if err == nil {
		user, err = s.store.Authenticate(creds)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeAuthResponse(w, http.StatusOK, user)
}

func (s *Server) writeAuthResponse(w http.ResponseWriter, status int, user servicedef.User) {
	token, err := s.tokens.issue(user.ID, user.Email)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, status, servicedef.AuthResponse{AccessToken: token, User: user})
}

func readCredentials(r *http.Request) (servicedef.Credentials, error) {
	fields, err := readFields(r)
	if err != nil {
		return servicedef.Credentials{}, err
	}
	creds := servicedef.Credentials{
		Email:    fields.GetByKey("email").StringValue(),
		Password: fields.GetByKey("password").StringValue(),
	}
	if creds.Email == "" || creds.Password == "" {
		return creds, errMissingCredentials
	}
	return creds, nil
}

func validateNewCredentials(creds servicedef.Credentials) error {
	if addr, err := mail.ParseAddress(creds.Email); err != nil || addr.Address != creds.Email {
		return errInvalidEmail
	}
	if len(creds.Password) < servicedef.MinPasswordLength {
		return errPasswordTooShort
	}
	return nil
}
