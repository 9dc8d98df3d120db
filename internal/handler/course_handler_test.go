package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-tools/tutor-hours-api/internal/models"
	"github.com/campus-tools/tutor-hours-api/internal/service"
	appErrors "github.com/campus-tools/tutor-hours-api/pkg/errors"
)

type courseServiceMock struct {
	courses     []models.Course
	course      *models.Course
	err         error
	lastID      string
	lastRequest service.CourseRequest
}

func (m *courseServiceMock) List(ctx context.Context) ([]models.Course, error) {
	return m.courses, m.err
}

func (m *courseServiceMock) Create(ctx context.Context, req service.CourseRequest) (*models.Course, error) {
	m.lastRequest = req
	return m.course, m.err
}

func (m *courseServiceMock) Update(ctx context.Context, id string, req service.CourseRequest) (*models.Course, error) {
	m.lastID = id
	m.lastRequest = req
	return m.course, m.err
}

func TestCourseHandlerList(t *testing.T) {
	mockSvc := &courseServiceMock{courses: []models.Course{{ID: "c1", Code: "CSCI 150"}}}
	handler := NewCourseHandler(mockSvc)

	w := httptest.NewRecorder()
	c := anonymousContext(t, w, "/courses")

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.Course `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "CSCI 150", envelope.Data[0].Code)
}

func TestCourseHandlerCreate(t *testing.T) {
	mockSvc := &courseServiceMock{course: &models.Course{ID: "c1", Code: "CSCI 150"}}
	handler := NewCourseHandler(mockSvc)

	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/courses", `{"code":"CSCI 150","name":"Intro to Computing"}`)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "CSCI 150", mockSvc.lastRequest.Code)
}

func TestCourseHandlerCreateDuplicate(t *testing.T) {
	mockSvc := &courseServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "course code already exists")}
	handler := NewCourseHandler(mockSvc)

	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/courses", `{"code":"CSCI 150"}`)

	handler.Create(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestCourseHandlerUpdate(t *testing.T) {
	mockSvc := &courseServiceMock{course: &models.Course{ID: "c1", Code: "CSCI 151"}}
	handler := NewCourseHandler(mockSvc)

	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPut, "/courses/c1", `{"code":"CSCI 151"}`)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	handler.Update(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", mockSvc.lastID)
}
