package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leavedesk/internal/shared/apperror"
	"leavedesk/internal/user"
	usererrors "leavedesk/internal/user/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeUserService struct {
	createFn      func(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error)
	getAllFn      func(ctx context.Context) ([]user.UserResponse, error)
	deleteFn      func(ctx context.Context, username string) error
	resetLeavesFn func(ctx context.Context, username string) error
}

func (f *fakeUserService) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	return f.createFn(ctx, req)
}

func (f *fakeUserService) GetAll(ctx context.Context) ([]user.UserResponse, error) {
	return f.getAllFn(ctx)
}

func (f *fakeUserService) Delete(ctx context.Context, username string) error {
	return f.deleteFn(ctx, username)
}

func (f *fakeUserService) ResetLeaves(ctx context.Context, username string) error {
	return f.resetLeavesFn(ctx, username)
}

func TestUserHandler_AddUser(t *testing.T) {
	apperror.Init()

	t.Run("success", func(t *testing.T) {
		svc := &fakeUserService{
			createFn: func(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
				assert.Equal(t, "jdoe", req.Username)
				assert.Equal(t, "FACULTY", req.Role)
				return user.UserResponse{
					Username:      req.Username,
					FirstName:     req.FirstName,
					LastName:      req.LastName,
					Role:          req.Role,
					CasualLeave:   12,
					MedicalLeave:  10,
					EarnedLeave:   15,
					AcademicLeave: 15,
				}, nil
			},
		}

		h := user.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"username":"jdoe","password":"s3cret-pass","firstName":"John","lastName":"Doe","role":"FACULTY"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/admin/addUser", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.AddUser(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)

		var got user.UserResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "jdoe", got.Username)
		assert.Equal(t, 12, got.CasualLeave)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		h := user.NewHandler(&fakeUserService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"username":"jdoe","password":"s3cret-pass","firstName":"John","lastName":"Doe","role":"INTERN"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/admin/addUser", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.AddUser(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, apperror.CodeInvalidInput, env.Error.Code)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		svc := &fakeUserService{
			createFn: func(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
				return user.UserResponse{}, usererrors.ErrUsernameAlreadyExists
			},
		}

		h := user.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"username":"jdoe","password":"s3cret-pass","firstName":"John","lastName":"Doe","role":"FACULTY"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/admin/addUser", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.AddUser(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "Username already exists. Please choose a different one.", env.Error.Message)
	})
}

func TestUserHandler_DeleteUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeUserService{
			deleteFn: func(ctx context.Context, username string) error {
				assert.Equal(t, "jdoe", username)
				return nil
			},
		}

		h := user.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/admin/deleteUser?username=jdoe", nil)

		h.DeleteUser(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		assert.Contains(t, string(env.Data), "deleted successfully")
	})

	t.Run("username is required", func(t *testing.T) {
		h := user.NewHandler(&fakeUserService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/admin/deleteUser", nil)

		h.DeleteUser(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_ResetLeaves(t *testing.T) {
	t.Run("empty body resets everyone", func(t *testing.T) {
		svc := &fakeUserService{
			resetLeavesFn: func(ctx context.Context, username string) error {
				assert.Empty(t, username)
				return nil
			},
		}

		h := user.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/admin/reset-leaves", strings.NewReader(""))
		c.Request.Header.Set("Content-Type", "application/json")

		h.ResetLeaves(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("named user", func(t *testing.T) {
		svc := &fakeUserService{
			resetLeavesFn: func(ctx context.Context, username string) error {
				assert.Equal(t, "jdoe", username)
				return nil
			},
		}

		h := user.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/admin/reset-leaves", strings.NewReader(`{"username":"jdoe"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.ResetLeaves(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
