package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	Method string
	Path   string
	Body   any
}

// stubHTTP answers from canned JSON bodies keyed by "METHOD path".
type stubHTTP struct {
	mu        sync.Mutex
	calls     []call
	responses map[string]string
	errs      map[string]error
}

func newStub() *stubHTTP {
	return &stubHTTP{
		responses: map[string]string{},
		errs:      map[string]error{},
	}
}

func (s *stubHTTP) respond(method, path, body string) {
	s.responses[method+" "+path] = body
}

func (s *stubHTTP) fail(method, path string, err error) {
	s.errs[method+" "+path] = err
}

func (s *stubHTTP) Get(_ context.Context, path string, out any) error {
	return s.handle(http.MethodGet, path, nil, out)
}

func (s *stubHTTP) Post(_ context.Context, path string, body, out any) error {
	return s.handle(http.MethodPost, path, body, out)
}

func (s *stubHTTP) handle(method, path string, body, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, call{Method: method, Path: path, Body: body})
	key := method + " " + path
	if err, ok := s.errs[key]; ok {
		return err
	}
	raw, ok := s.responses[key]
	if !ok {
		return errors.New("stub: no response for " + key)
	}
	return json.Unmarshal([]byte(raw), out)
}

func (s *stubHTTP) recorded() []call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]call, len(s.calls))
	copy(out, s.calls)
	return out
}

func TestLoginReturnsDecodedUser(t *testing.T) {
	stub := newStub()
	stub.respond(http.MethodPost, "/api/authentication/login", `{"id":1,"name":"Ada"}`)
	svc := NewAuthService(stub)

	req := LoginRequest{"id": "a", "pw": "b"}
	user, err := svc.Login(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, UserDTO{"id": float64(1), "name": "Ada"}, user)
	calls := stub.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/api/authentication/login", calls[0].Path)
	assert.Equal(t, req, calls[0].Body)
}

func TestLogoutSendsNoBody(t *testing.T) {
	stub := newStub()
	stub.respond(http.MethodPost, "/api/authentication/logout", `{"message":"logged out"}`)
	svc := NewAuthService(stub)

	resp, err := svc.Logout(context.Background())
	require.NoError(t, err)

	assert.Equal(t, MessageResponse{Message: "logged out"}, resp)
	calls := stub.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/api/authentication/logout", calls[0].Path)
	assert.Nil(t, calls[0].Body)
}

func TestCurrentUserIssuesGet(t *testing.T) {
	stub := newStub()
	stub.respond(http.MethodGet, "/api/authentication/me", `{"id":3,"email":"grace@example.com","role":"editor"}`)
	svc := NewAuthService(stub)

	user, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "grace@example.com", user["email"])
	calls := stub.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, call{Method: http.MethodGet, Path: "/api/authentication/me"}, calls[0])
}

func TestCurrentUserIsNotCached(t *testing.T) {
	stub := newStub()
	stub.respond(http.MethodGet, "/api/authentication/me", `{"id":3}`)
	svc := NewAuthService(stub)

	_, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)
	_, err = svc.CurrentUser(context.Background())
	require.NoError(t, err)

	assert.Len(t, stub.recorded(), 2)
}

func TestErrorsPassThroughUnchanged(t *testing.T) {
	unauthorized := errors.New("401")

	tests := []struct {
		name   string
		method string
		path   string
		invoke func(*AuthService) error
	}{
		{
			name:   "login",
			method: http.MethodPost,
			path:   "/api/authentication/login",
			invoke: func(s *AuthService) error {
				_, err := s.Login(context.Background(), LoginRequest{"email": "x"})
				return err
			},
		},
		{
			name:   "logout",
			method: http.MethodPost,
			path:   "/api/authentication/logout",
			invoke: func(s *AuthService) error {
				_, err := s.Logout(context.Background())
				return err
			},
		},
		{
			name:   "current user",
			method: http.MethodGet,
			path:   "/api/authentication/me",
			invoke: func(s *AuthService) error {
				_, err := s.CurrentUser(context.Background())
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStub()
			stub.fail(tt.method, tt.path, unauthorized)

			err := tt.invoke(NewAuthService(stub))
			require.Error(t, err)
			assert.Same(t, unauthorized, err)
			assert.EqualError(t, err, "401")
			assert.Len(t, stub.recorded(), 1)
		})
	}
}

func TestFailedCallsReturnZeroValues(t *testing.T) {
	stub := newStub()
	stub.fail(http.MethodGet, "/api/authentication/me", errors.New("boom"))
	stub.fail(http.MethodPost, "/api/authentication/logout", errors.New("boom"))
	svc := NewAuthService(stub)

	user, err := svc.CurrentUser(context.Background())
	assert.Error(t, err)
	assert.Nil(t, user)

	msg, err := svc.Logout(context.Background())
	assert.Error(t, err)
	assert.Equal(t, MessageResponse{}, msg)
}

func TestConcurrentCallsAreIndependent(t *testing.T) {
	stub := newStub()
	stub.respond(http.MethodPost, "/api/authentication/login", `{"id":1}`)
	svc := NewAuthService(stub)

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Login(context.Background(), LoginRequest{"email": "a@b.c"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	calls := stub.recorded()
	assert.Len(t, calls, n)
	for _, c := range calls {
		assert.True(t, reflect.DeepEqual(LoginRequest{"email": "a@b.c"}, c.Body))
	}
}
