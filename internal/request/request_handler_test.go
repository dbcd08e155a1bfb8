package request_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-leave/internal/authz"
	"go-leave/internal/request"
	requesterrors "go-leave/internal/request/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
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

type fakeRequestService struct {
	createFn  func(ctx context.Context, actor authz.Actor, req request.CreateLeaveRequest) (request.LeaveRequestResponse, error)
	getAllFn  func(ctx context.Context, actor authz.Actor) ([]request.LeaveRequestResponse, error)
	getByIDFn func(ctx context.Context, actor authz.Actor, id uint) (request.LeaveRequestResponse, error)
	updateFn  func(ctx context.Context, actor authz.Actor, id uint, req request.UpdateLeaveRequest) (request.LeaveRequestResponse, error)
	approveFn func(ctx context.Context, actor authz.Actor, id uint, remarks string) (request.LeaveRequestResponse, error)
	rejectFn  func(ctx context.Context, actor authz.Actor, id uint, reason string) (request.LeaveRequestResponse, error)
	deleteFn  func(ctx context.Context, actor authz.Actor, id uint) error
}

func (f *fakeRequestService) Create(ctx context.Context, actor authz.Actor, req request.CreateLeaveRequest) (request.LeaveRequestResponse, error) {
	return f.createFn(ctx, actor, req)
}
func (f *fakeRequestService) GetAll(ctx context.Context, actor authz.Actor) ([]request.LeaveRequestResponse, error) {
	return f.getAllFn(ctx, actor)
}
func (f *fakeRequestService) GetByID(ctx context.Context, actor authz.Actor, id uint) (request.LeaveRequestResponse, error) {
	return f.getByIDFn(ctx, actor, id)
}
func (f *fakeRequestService) Update(ctx context.Context, actor authz.Actor, id uint, req request.UpdateLeaveRequest) (request.LeaveRequestResponse, error) {
	return f.updateFn(ctx, actor, id, req)
}
func (f *fakeRequestService) Approve(ctx context.Context, actor authz.Actor, id uint, remarks string) (request.LeaveRequestResponse, error) {
	return f.approveFn(ctx, actor, id, remarks)
}
func (f *fakeRequestService) Reject(ctx context.Context, actor authz.Actor, id uint, reason string) (request.LeaveRequestResponse, error) {
	return f.rejectFn(ctx, actor, id, reason)
}
func (f *fakeRequestService) Delete(ctx context.Context, actor authz.Actor, id uint) error {
	return f.deleteFn(ctx, actor, id)
}

func newTestContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func setActor(c *gin.Context, actor authz.Actor) {
	c.Set("user_id", actor.ID)
	c.Set("is_admin", actor.IsAdmin)
	c.Set("is_manager", actor.IsManager)
	c.Set("is_hr", actor.IsHR)
	c.Set("department", actor.Department)
}

func TestRequestHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeRequestService{
			createFn: func(ctx context.Context, actor authz.Actor, req request.CreateLeaveRequest) (request.LeaveRequestResponse, error) {
				assert.Equal(t, uint(7), actor.ID)
				assert.Equal(t, "IT", actor.Department)
				assert.Equal(t, "ANNUAL", req.LeaveType)
				return request.LeaveRequestResponse{
					ID:            42,
					EmployeeID:    actor.ID,
					Department:    actor.Department,
					LeaveType:     req.LeaveType,
					StartDate:     req.StartDate,
					NumberOfDays:  5,
					ManagerStatus: "PENDING",
					HRStatus:      "PENDING",
				}, nil
			},
		}
		h := request.NewHandler(svc)
		c, w := newTestContext(t, http.MethodPost, "/leave-requests",
			`{"leave_type":"ANNUAL","start_date":"2030-03-04","end_date":"2030-03-08","reason":"Family trip"}`)
		setActor(c, authz.Actor{ID: 7, Department: "IT"})

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got request.LeaveRequestResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, uint(42), got.ID)
		assert.Equal(t, "PENDING", got.ManagerStatus)
	})

	t.Run("negative binding error", func(t *testing.T) {
		h := request.NewHandler(&fakeRequestService{})
		c, w := newTestContext(t, http.MethodPost, "/leave-requests", `{"leave_type":"NOT_A_TYPE"}`)
		setActor(c, authz.Actor{ID: 7})

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("negative conflict from service", func(t *testing.T) {
		svc := &fakeRequestService{
			createFn: func(ctx context.Context, actor authz.Actor, req request.CreateLeaveRequest) (request.LeaveRequestResponse, error) {
				return request.LeaveRequestResponse{}, requesterrors.ErrRequestConflict
			},
		}
		h := request.NewHandler(svc)
		c, w := newTestContext(t, http.MethodPost, "/leave-requests",
			`{"leave_type":"ANNUAL","start_date":"2030-03-04"}`)
		setActor(c, authz.Actor{ID: 7})

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})

	t.Run("negative unknown error collapses to 500", func(t *testing.T) {
		svc := &fakeRequestService{
			createFn: func(ctx context.Context, actor authz.Actor, req request.CreateLeaveRequest) (request.LeaveRequestResponse, error) {
				return request.LeaveRequestResponse{}, errors.New("pq: connection refused")
			},
		}
		h := request.NewHandler(svc)
		c, w := newTestContext(t, http.MethodPost, "/leave-requests",
			`{"leave_type":"ANNUAL","start_date":"2030-03-04"}`)
		setActor(c, authz.Actor{ID: 7})

		h.Create(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
		assert.NotContains(t, env.Error.Message, "pq:")
	})
}

func TestRequestHandler_GetAll(t *testing.T) {
	t.Run("success paginates in memory", func(t *testing.T) {
		svc := &fakeRequestService{
			getAllFn: func(ctx context.Context, actor authz.Actor) ([]request.LeaveRequestResponse, error) {
				out := make([]request.LeaveRequestResponse, 15)
				for i := range out {
					out[i] = request.LeaveRequestResponse{ID: uint(i + 1)}
				}
				return out, nil
			},
		}
		h := request.NewHandler(svc)
		c, w := newTestContext(t, http.MethodGet, "/leave-requests?page=2&page_size=10", "")
		setActor(c, authz.Actor{ID: 7, IsHR: true})

		h.GetAll(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		var got []request.LeaveRequestResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Len(t, got, 5)
		assert.Equal(t, uint(11), got[0].ID)
	})
}

func TestRequestHandler_GetById(t *testing.T) {
	t.Run("negative invalid id param", func(t *testing.T) {
		h := request.NewHandler(&fakeRequestService{})
		c, w := newTestContext(t, http.MethodGet, "/leave-requests/abc", "")
		c.Params = gin.Params{{Key: "id", Value: "abc"}}
		setActor(c, authz.Actor{ID: 7})

		h.GetById(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative forbidden from service", func(t *testing.T) {
		svc := &fakeRequestService{
			getByIDFn: func(ctx context.Context, actor authz.Actor, id uint) (request.LeaveRequestResponse, error) {
				return request.LeaveRequestResponse{}, authz.ErrNotVisible
			},
		}
		h := request.NewHandler(svc)
		c, w := newTestContext(t, http.MethodGet, "/leave-requests/1", "")
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		setActor(c, authz.Actor{ID: 8})

		h.GetById(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})
}

func TestRequestHandler_Approve(t *testing.T) {
	t.Run("success with empty body", func(t *testing.T) {
		svc := &fakeRequestService{
			approveFn: func(ctx context.Context, actor authz.Actor, id uint, remarks string) (request.LeaveRequestResponse, error) {
				assert.Equal(t, uint(1), id)
				assert.Empty(t, remarks)
				return request.LeaveRequestResponse{ID: id, ManagerStatus: "APPROVED", HRStatus: "PENDING"}, nil
			},
		}
		h := request.NewHandler(svc)
		c, w := newTestContext(t, http.MethodPost, "/leave-requests/1/approve", "")
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		setActor(c, authz.Actor{ID: 50, IsManager: true, Department: "IT"})

		h.Approve(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("success with remarks", func(t *testing.T) {
		svc := &fakeRequestService{
			approveFn: func(ctx context.Context, actor authz.Actor, id uint, remarks string) (request.LeaveRequestResponse, error) {
				assert.Equal(t, "looks fine", remarks)
				return request.LeaveRequestResponse{ID: id, ManagerStatus: "APPROVED"}, nil
			},
		}
		h := request.NewHandler(svc)
		c, w := newTestContext(t, http.MethodPost, "/leave-requests/1/approve", `{"remarks":"looks fine"}`)
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		setActor(c, authz.Actor{ID: 50, IsManager: true, Department: "IT"})

		h.Approve(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative stage already decided", func(t *testing.T) {
		svc := &fakeRequestService{
			approveFn: func(ctx context.Context, actor authz.Actor, id uint, remarks string) (request.LeaveRequestResponse, error) {
				return request.LeaveRequestResponse{}, requesterrors.ErrStageAlreadyDecided
			},
		}
		h := request.NewHandler(svc)
		c, w := newTestContext(t, http.MethodPost, "/leave-requests/1/approve", "")
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		setActor(c, authz.Actor{ID: 50, IsManager: true})

		h.Approve(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})

	t.Run("success caches the response and frees the idempotency lock", func(t *testing.T) {
		resp := request.LeaveRequestResponse{ID: 1, ManagerStatus: "APPROVED", HRStatus: "APPROVED"}
		svc := &fakeRequestService{
			approveFn: func(ctx context.Context, actor authz.Actor, id uint, remarks string) (request.LeaveRequestResponse, error) {
				return resp, nil
			},
		}
		rdb, rmock := redismock.NewClientMock()
		payload, err := json.Marshal(resp)
		assert.NoError(t, err)

		cacheKey := "idemp:/leave-requests/:id/approve:60:key-1"
		rmock.ExpectSet(cacheKey, payload, 24*time.Hour).SetVal("OK")
		rmock.ExpectDel(cacheKey + ":lock").SetVal(1)

		h := request.NewHandlerWithRedis(svc, rdb)
		c, w := newTestContext(t, http.MethodPost, "/leave-requests/1/approve", "")
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		setActor(c, authz.Actor{ID: 60, IsHR: true})
		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", cacheKey+":lock")

		h.Approve(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("failed decision still frees the idempotency lock", func(t *testing.T) {
		svc := &fakeRequestService{
			approveFn: func(ctx context.Context, actor authz.Actor, id uint, remarks string) (request.LeaveRequestResponse, error) {
				return request.LeaveRequestResponse{}, requesterrors.ErrStageAlreadyDecided
			},
		}
		rdb, rmock := redismock.NewClientMock()

		cacheKey := "idemp:/leave-requests/:id/approve:60:key-2"
		// No Set expected: only the lock release.
		rmock.ExpectDel(cacheKey + ":lock").SetVal(1)

		h := request.NewHandlerWithRedis(svc, rdb)
		c, w := newTestContext(t, http.MethodPost, "/leave-requests/1/approve", "")
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		setActor(c, authz.Actor{ID: 60, IsHR: true})
		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", cacheKey+":lock")

		h.Approve(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})
}

func TestRequestHandler_Reject(t *testing.T) {
	t.Run("negative missing rejection reason", func(t *testing.T) {
		h := request.NewHandler(&fakeRequestService{})
		c, w := newTestContext(t, http.MethodPost, "/leave-requests/1/reject", `{}`)
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		setActor(c, authz.Actor{ID: 50, IsManager: true})

		h.Reject(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("success", func(t *testing.T) {
		svc := &fakeRequestService{
			rejectFn: func(ctx context.Context, actor authz.Actor, id uint, reason string) (request.LeaveRequestResponse, error) {
				assert.Equal(t, "not enough cover", reason)
				return request.LeaveRequestResponse{ID: id, ManagerStatus: "REJECTED"}, nil
			},
		}
		h := request.NewHandler(svc)
		c, w := newTestContext(t, http.MethodPost, "/leave-requests/1/reject", `{"rejection_reason":"not enough cover"}`)
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		setActor(c, authz.Actor{ID: 50, IsManager: true, Department: "IT"})

		h.Reject(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("success caches the response and frees the idempotency lock", func(t *testing.T) {
		resp := request.LeaveRequestResponse{ID: 1, ManagerStatus: "REJECTED"}
		svc := &fakeRequestService{
			rejectFn: func(ctx context.Context, actor authz.Actor, id uint, reason string) (request.LeaveRequestResponse, error) {
				return resp, nil
			},
		}
		rdb, rmock := redismock.NewClientMock()
		payload, err := json.Marshal(resp)
		assert.NoError(t, err)

		cacheKey := "idemp:/leave-requests/:id/reject:50:key-3"
		rmock.ExpectSet(cacheKey, payload, 24*time.Hour).SetVal("OK")
		rmock.ExpectDel(cacheKey + ":lock").SetVal(1)

		h := request.NewHandlerWithRedis(svc, rdb)
		c, w := newTestContext(t, http.MethodPost, "/leave-requests/1/reject", `{"rejection_reason":"not enough cover"}`)
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		setActor(c, authz.Actor{ID: 50, IsManager: true, Department: "IT"})
		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", cacheKey+":lock")

		h.Reject(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})
}

func TestRequestHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeRequestService{
			deleteFn: func(ctx context.Context, actor authz.Actor, id uint) error {
				assert.Equal(t, uint(3), id)
				return nil
			},
		}
		h := request.NewHandler(svc)
		c, w := newTestContext(t, http.MethodDelete, "/leave-requests/3", "")
		c.Params = gin.Params{{Key: "id", Value: "3"}}
		setActor(c, authz.Actor{ID: 7})

		h.Delete(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative locked", func(t *testing.T) {
		svc := &fakeRequestService{
			deleteFn: func(ctx context.Context, actor authz.Actor, id uint) error {
				return requesterrors.ErrRequestLocked
			},
		}
		h := request.NewHandler(svc)
		c, w := newTestContext(t, http.MethodDelete, "/leave-requests/3", "")
		c.Params = gin.Params{{Key: "id", Value: "3"}}
		setActor(c, authz.Actor{ID: 7})

		h.Delete(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})
}
