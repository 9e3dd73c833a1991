package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coachline-hq/coachline-api/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAttachmentRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/attachments", UploadAttachment)
	return r
}

func multipartUpload(t *testing.T, fieldName, filename string, content []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write(content)
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUploadAttachment(t *testing.T) {
	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()
	defer services.SetS3Service(nil)

	r := newAttachmentRouter()
	body, contentType := multipartUpload(t, "file", "receipt.png", []byte("fake png bytes"))

	req, _ := http.NewRequest("POST", "/api/v1/attachments", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code, "upload failed: %s", w.Body.String())

	var response struct {
		Data struct {
			S3Key string `json:"s3_key"`
			URL   string `json:"url"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.NotEmpty(t, response.Data.S3Key)
	assert.NotEmpty(t, response.Data.URL)
	assert.True(t, mockS3.HasFile(response.Data.S3Key))
}

func TestUploadAttachmentValidation(t *testing.T) {
	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()
	defer services.SetS3Service(nil)

	r := newAttachmentRouter()

	// Disallowed extension
	body, contentType := multipartUpload(t, "file", "script.sh", []byte("#!/bin/sh"))
	req, _ := http.NewRequest("POST", "/api/v1/attachments", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResponse struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	json.Unmarshal(w.Body.Bytes(), &errResponse)
	assert.Equal(t, "INVALID_FILE_FORMAT", errResponse.Error.Code)

	// Wrong field name
	body, contentType = multipartUpload(t, "document", "receipt.png", []byte("png"))
	req, _ = http.NewRequest("POST", "/api/v1/attachments", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadAttachmentWithoutStorage(t *testing.T) {
	services.SetS3Service(nil)

	r := newAttachmentRouter()
	body, contentType := multipartUpload(t, "file", "receipt.png", []byte("png"))

	req, _ := http.NewRequest("POST", "/api/v1/attachments", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
