package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/launchdarkly/posts-contract-tests/servicedef"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// These messages are returned to clients as JSON strings.
var (
	errEmailExists        = errors.New("Email already exists")
	errUserNotFound       = errors.New("Cannot find user")
	errWrongPassword      = errors.New("Incorrect password")
	errMissingCredentials = errors.New("Email and password are required")
	errInvalidEmail       = errors.New("Email format is invalid")
	errPasswordTooShort   = errors.New("Password is too short")
	errInvalidBody        = errors.New("Request body must be a JSON object")
)

type user struct {
	servicedef.User
	password string
}

// Store holds the fake API's posts and users in memory. It is safe for concurrent use.
type Store struct {
	lock   sync.RWMutex
	posts  map[int]ldvalue.Value
	nextID int
	users  map[string]user // by email
}

// NewStore creates a Store containing seedPosts generated posts with ids 1 through seedPosts.
// The generated content depends only on the count, so two stores seeded alike are identical.
func NewStore(seedPosts int) *Store {
	s := &Store{
		posts:  make(map[int]ldvalue.Value),
		nextID: 1,
		users:  make(map[string]user),
	}
	faker := gofakeit.New(int64(seedPosts))
	for i := 1; i <= seedPosts; i++ {
		p := servicedef.Post{
			ID:      i,
			Post:    faker.Sentence(4),
			Comment: faker.Sentence(8),
			Stars:   ldvalue.NewOptionalInt(faker.Number(1, 5)),
			Photo:   fmt.Sprintf("https://picsum.photos/id/%d/200", i),
		}
		s.posts[i] = postValue(p)
		s.nextID = i + 1
	}
	return s
}

func postValue(p servicedef.Post) ldvalue.Value {
	data, _ := json.Marshal(p)
	return ldvalue.Parse(data)
}

// Posts returns the posts that match every filter, in id order. A filter maps a field name to
// the values it may have; values are compared by their text form, so "55" matches 55.
func (s *Store) Posts(filters map[string][]string) []ldvalue.Value {
	s.lock.RLock()
	defer s.lock.RUnlock()
	ids := make([]int, 0, len(s.posts))
	for id := range s.posts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	ret := make([]ldvalue.Value, 0, len(ids))
	for _, id := range ids {
		if matchesFilters(s.posts[id], filters) {
			ret = append(ret, s.posts[id])
		}
	}
	return ret
}

func matchesFilters(post ldvalue.Value, filters map[string][]string) bool {
	for field, wanted := range filters {
		actual := textOf(post.GetByKey(field))
		found := false
		for _, w := range wanted {
			if w == actual {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Post returns the post with the given id.
func (s *Store) Post(id int) (ldvalue.Value, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	p, ok := s.posts[id]
	return p, ok
}

// CreatePost stores a new post with the next free id and returns it. Any "id" in fields is ignored.
func (s *Store) CreatePost(fields ldvalue.Value) ldvalue.Value {
	s.lock.Lock()
	defer s.lock.Unlock()
	id := s.nextID
	s.nextID++
	p := withID(ldvalue.Null(), fields, id)
	s.posts[id] = p
	return p
}

// UpdatePost merges fields into an existing post and returns the result.
func (s *Store) UpdatePost(id int, fields ldvalue.Value) (ldvalue.Value, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	existing, ok := s.posts[id]
	if !ok {
		return ldvalue.Null(), false
	}
	p := withID(existing, fields, id)
	s.posts[id] = p
	return p, true
}

// DeletePost removes a post, and reports whether it existed.
func (s *Store) DeletePost(id int) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.posts[id]; !ok {
		return false
	}
	delete(s.posts, id)
	return true
}

func withID(base, fields ldvalue.Value, id int) ldvalue.Value {
	b := ldvalue.ObjectBuild()
	for _, k := range base.Keys() {
		b.Set(k, base.GetByKey(k))
	}
	for _, k := range fields.Keys() {
		b.Set(k, fields.GetByKey(k))
	}
	b.Set("id", ldvalue.Int(id))
	return b.Build()
}

// Register adds a user. Email addresses are compared case-insensitively.
func (s *Store) Register(creds servicedef.Credentials) (servicedef.User, error) {
	key := strings.ToLower(creds.Email)
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, exists := s.users[key]; exists {
		return servicedef.User{}, errEmailExists
	}
	u := user{User: servicedef.User{ID: uuid.NewString(), Email: creds.Email}, password: creds.Password}
	s.users[key] = u
	return u.User, nil
}

// Authenticate checks a user's credentials.
func (s *Store) Authenticate(creds servicedef.Credentials) (servicedef.User, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	u, ok := s.users[strings.ToLower(creds.Email)]
	if !ok {
		return servicedef.User{}, errUserNotFound
	}
	if u.password != creds.Password {
		return servicedef.User{}, errWrongPassword
	}
	return u.User, nil
}

func textOf(v ldvalue.Value) string {
	if v.Type() == ldvalue.StringType {
		return v.StringValue()
	}
	return v.JSONString()
}
