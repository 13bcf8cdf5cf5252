package submission_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/submission"
)

type recorded struct {
	Method    string
	Path      string
	RequestID string
	Cookie    string
	Body      map[string]any
}

type apiStub struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	body     string
}

func (s *apiStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = gojson.Unmarshal(data, &body)
	cookie := ""
	if c, err := r.Cookie("session"); err == nil {
		cookie = c.Value
	}

	s.mu.Lock()
	s.requests = append(s.requests, recorded{
		Method:    r.Method,
		Path:      r.URL.Path,
		RequestID: r.Header.Get(submission.RequestIDHeader),
		Cookie:    cookie,
		Body:      body,
	})
	status, payload := s.status, s.body
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
	w.Header().Set("Content-Type", "application/hal+json")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, payload)
}

func (s *apiStub) last() recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func workPackageForm() *form.Form {
	return form.New([]model.FieldConfig{
		{Key: "subject"},
		{Key: "_links.assignee"},
	}, map[string]any{
		"subject": "Task",
		"_links": map[string]any{
			"assignee": map[string]any{"href": "/api/users/3", "name": "Jane"},
		},
	})
}

func newService(t *testing.T, stub *apiStub) *submission.Service {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	return submission.NewService(submission.NewHTTPTransport(submission.WithBaseURL(srv.URL)))
}

func TestSubmit_MethodSelection(t *testing.T) {
	stub := &apiStub{body: `{"id": 1}`}
	svc := newService(t, stub)
	ctx := context.Background()

	_, err := svc.Submit(ctx, workPackageForm(), "/api/work_packages", "42", "post")
	require.NoError(t, err)
	require.Equal(t, http.MethodPatch, stub.last().Method)
	require.Equal(t, "/api/work_packages/42", stub.last().Path)

	body, err := svc.Submit(ctx, workPackageForm(), "/api/work_packages", "", "")
	require.NoError(t, err)
	require.JSONEq(t, `{"id": 1}`, string(body))
	require.Equal(t, http.MethodPost, stub.last().Method)
	require.Equal(t, "/api/work_packages", stub.last().Path)

	_, err = svc.Submit(ctx, workPackageForm(), "/api/projects", "", "patch")
	require.NoError(t, err)
	require.Equal(t, http.MethodPatch, stub.last().Method)

	_, err = svc.Submit(ctx, workPackageForm(), "/api/projects", "", "delete")
	require.ErrorIs(t, err, submission.ErrUnsupportedMethod)
}

func TestSubmit_FormatsPayloadAndCarriesCredentials(t *testing.T) {
	stub := &apiStub{body: `{}`}
	svc := newService(t, stub)

	_, err := svc.Submit(context.Background(), workPackageForm(), "/api/work_packages", "", "")
	require.NoError(t, err)
	first := stub.last()
	require.NotEmpty(t, first.RequestID)
	require.Equal(t, map[string]any{
		"subject": "Task",
		"_links":  map[string]any{"assignee": map[string]any{"href": "/api/users/3"}},
	}, first.Body)

	_, err = svc.Submit(context.Background(), workPackageForm(), "/api/work_packages", "", "")
	require.NoError(t, err)
	second := stub.last()
	require.Equal(t, "abc", second.Cookie)
	require.NotEqual(t, first.RequestID, second.RequestID)
}

func TestSubmit_UnprocessableEntityAppliesErrors(t *testing.T) {
	stub := &apiStub{
		status: http.StatusUnprocessableEntity,
		body: `{
			"_type": "Error",
			"errorIdentifier": "urn:openproject-org:api:v3:errors:MultipleErrors",
			"_embedded": {"errors": [
				{"_embedded": {"details": {"attribute": "subject"}}, "message": "can't be blank"},
				{"_embedded": {"details": {"attribute": "assignee"}}, "message": "is invalid"},
				{"_embedded": {"details": {"attribute": "bogus"}}, "message": "dropped"}
			]}
		}`,
	}
	svc := newService(t, stub)
	f := workPackageForm()

	_, err := svc.Submit(context.Background(), f, "/api/work_packages", "", "")

	var failure *submission.ValidationFailure
	require.ErrorAs(t, err, &failure)
	require.Len(t, failure.Errors, 3)
	var status *submission.StatusError
	require.ErrorAs(t, err, &status)
	require.Equal(t, http.StatusUnprocessableEntity, status.Code)

	require.True(t, f.Submitted())
	require.Equal(t, map[string]map[string]model.ErrorDetail{
		"subject":         {"subject": {Message: "can't be blank"}},
		"_links.assignee": {"assignee": {Message: "is invalid"}},
	}, f.Errors())
}

func TestSubmit_OtherErrorsUnchanged(t *testing.T) {
	stub := &apiStub{status: http.StatusForbidden, body: `{"message": "no"}`}
	svc := newService(t, stub)
	f := workPackageForm()

	_, err := svc.Submit(context.Background(), f, "/api/work_packages", "", "")

	var status *submission.StatusError
	require.ErrorAs(t, err, &status)
	require.Equal(t, http.StatusForbidden, status.Code)
	var failure *submission.ValidationFailure
	require.False(t, errors.As(err, &failure))
	require.True(t, f.Valid())
}

func TestValidate(t *testing.T) {
	stub := &apiStub{body: `{"_embedded": {"validationErrors": {
		"subject": {"_embedded": {"details": {"attribute": "subject"}}, "message": "can't be blank"}
	}}}`}
	svc := newService(t, stub)
	f := workPackageForm()

	errs, err := svc.Validate(context.Background(), f, "/api/work_packages")
	require.NoError(t, err)
	require.Equal(t, []model.ValidationError{{Key: "subject", Message: "can't be blank"}}, errs)
	require.Equal(t, "/api/work_packages/form", stub.last().Path)
	require.Equal(t, http.MethodPost, stub.last().Method)
	require.True(t, f.Invalid("subject"))
}

func TestIsolatedErrors(t *testing.T) {
	stub := &apiStub{body: `{"_embedded": {"validationErrors": {
		"subject": {"_embedded": {"details": {"attribute": "subject"}}, "message": "can't be blank"},
		"startDate": {"_embedded": {"details": {"attribute": "startDate"}}, "message": "is invalid"}
	}}}`}
	svc := newService(t, stub)

	got, err := svc.IsolatedErrors(context.Background(), map[string]any{"startDate": "2021-13-01"}, "/api/work_packages/form", "startDate")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"startDate": "is invalid"}, got)
	require.Equal(t, map[string]any{"startDate": "2021-13-01", "_links": map[string]any{}}, stub.last().Body)
}

func TestHTTPTransport_RelativeURLNeedsBase(t *testing.T) {
	_, err := submission.NewHTTPTransport().Create(context.Background(), "/api/x", "", nil)
	require.Error(t, err)
}
