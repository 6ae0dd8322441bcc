package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/vqdung71104/student-management-sub000/internal/dto"
	"github.com/vqdung71104/student-management-sub000/internal/middleware"
	"github.com/vqdung71104/student-management-sub000/internal/models"
	"github.com/vqdung71104/student-management-sub000/internal/service"
	appErrors "github.com/vqdung71104/student-management-sub000/pkg/errors"
)

type exportServiceMock struct {
	createResp  *dto.ExportJobResponse
	createErr   error
	statusResp  *dto.ExportStatusResponse
	statusErr   error
	download    *service.ExportDownload
	downloadErr error
}

func (m *exportServiceMock) CreateJob(ctx context.Context, req dto.ExportRequest, studentID string) (*dto.ExportJobResponse, error) {
	return m.createResp, m.createErr
}

func (m *exportServiceMock) GetStatus(ctx context.Context, id, studentID string) (*dto.ExportStatusResponse, error) {
	return m.statusResp, m.statusErr
}

func (m *exportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error) {
	return m.download, m.downloadErr
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestExportHandlerCreateExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{
		createResp: &dto.ExportJobResponse{ID: "job-1", Status: models.ExportStatusQueued, Progress: 0},
	}
	handler := NewExportHandler(mockSvc)

	payload, _ := json.Marshal(dto.ExportRequest{SectionIDs: []string{"140001"}, Format: models.ExportFormatCSV})
	c, w := newGinContext(http.MethodPost, "/schedule/export", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{StudentID: "20216666"})

	handler.CreateExport(c)
	require.Equal(t, http.StatusAccepted, w.Code)
}

func TestExportHandlerCreateExportUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(&exportServiceMock{})

	c, w := newGinContext(http.MethodPost, "/schedule/export", nil)

	handler.CreateExport(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExportHandlerExportStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{
		statusResp: &dto.ExportStatusResponse{ID: "job-1", Status: models.ExportStatusFinished, Progress: 100},
	}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/schedule/export/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{StudentID: "20216666"})

	handler.ExportStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestExportHandlerExportStatusForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{statusErr: appErrors.ErrForbidden}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/schedule/export/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{StudentID: "20219999"})

	handler.ExportStatus(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestExportHandlerDownloadExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	file, err := os.CreateTemp("", "timetable*.csv")
	require.NoError(t, err)
	defer os.Remove(file.Name())
	_, _ = file.WriteString("data")
	_, _ = file.Seek(0, 0)

	mockSvc := &exportServiceMock{
		download: &service.ExportDownload{
			File:      file,
			Filename:  "timetable.csv",
			Format:    models.ExportFormatCSV,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/schedule/export/download/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}

	handler.DownloadExport(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "timetable.csv")
}
