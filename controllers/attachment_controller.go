package controllers

import (
	"errors"
	"net/http"

	"github.com/coachline-hq/coachline-api/services"
	"github.com/coachline-hq/coachline-api/utils"
	"github.com/gin-gonic/gin"
)

// UploadAttachment handles POST /api/v1/attachments - uploads a message
// attachment to S3 and returns the key to reference when sending
func UploadAttachment(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "A file is required",
			},
		})
		return
	}

	if err := utils.ValidateAttachmentFile(fileHeader); err != nil {
		var attachErr *utils.AttachmentError
		code := "VALIDATION_ERROR"
		if errors.As(err, &attachErr) {
			code = attachErr.Code
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	s3 := services.GetS3Service()
	if s3 == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_UNAVAILABLE",
				"message": "Attachment storage is not configured",
			},
		})
		return
	}

	s3Key, err := s3.UploadAttachment(fileHeader)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to upload attachment",
			},
		})
		return
	}

	url, err := s3.GetPresignedURL(s3Key)
	if err != nil {
		// The upload itself succeeded; return the key without a preview URL
		url = ""
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"s3_key": s3Key,
			"url":    url,
		},
	})
}
