package controllers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/coachline-hq/coachline-api/config"
	"github.com/coachline-hq/coachline-api/middleware"
	"github.com/coachline-hq/coachline-api/models"
	"github.com/coachline-hq/coachline-api/services"
	"github.com/gin-gonic/gin"
)

// SubmitApplicationRequest represents the public intake form
type SubmitApplicationRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	RoleType    string `json:"role_type"`
	Specialties string `json:"specialties"`
	Bio         string `json:"bio"`
	Experience  string `json:"experience"`
}

// RejectApplicationRequest represents the reviewer's rejection payload
type RejectApplicationRequest struct {
	Reason string `json:"reason"`
}

// SubmitApplication handles POST /api/v1/applications - public trainer intake
func SubmitApplication(c *gin.Context) {
	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	roleType := req.RoleType
	if roleType == "" {
		roleType = "trainer"
	}

	application := models.Application{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		RoleType:    roleType,
		Specialties: req.Specialties,
		Bio:         req.Bio,
		Experience:  req.Experience,
		Status:      models.ApplicationPending,
	}

	db := config.GetDB()
	if err := db.Create(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to submit application",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    application,
	})
}

// ListApplications handles GET /api/v1/applications - lists applications for
// review, optionally filtered by status (admins only)
func ListApplications(c *gin.Context) {
	db := config.GetDB()
	query := db.Order("created_at DESC")

	if raw := c.Query("status"); raw != "" {
		status := models.ApplicationStatus(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Unknown application status",
				},
			})
			return
		}
		query = query.Where("status = ?", status)
	}

	var applications []models.Application
	if err := query.Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch applications",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    applications,
	})
}

// ApproveApplication handles POST /api/v1/applications/:id/approve.
//
// The pending -> approved transition and the account/profile provisioning run
// in one transaction guarded by a conditional update: of two concurrent
// approvals only one sees RowsAffected == 1, the other gets INVALID_STATE.
// On any provisioning failure the transaction rolls back and the application
// stays pending, so the action can be retried safely.
func ApproveApplication(c *gin.Context) {
	reviewer, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()

	var application models.Application
	if err := db.First(&application, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "APPLICATION_NOT_FOUND",
				"message": "Application not found",
			},
		})
		return
	}

	cfg := config.GetConfig()
	defaultRate := 50.0
	if cfg != nil {
		defaultRate = cfg.DefaultHourlyRate
	}

	now := time.Now()
	tx := db.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to start transaction",
			},
		})
		return
	}

	// Transition succeeds only if the application is still pending
	result := tx.Model(&models.Application{}).
		Where("id = ? AND status = ?", application.ID, models.ApplicationPending).
		Updates(map[string]interface{}{
			"status":      models.ApplicationApproved,
			"reviewed_by": reviewer.ID,
			"reviewed_at": now,
		})
	if result.Error != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update application",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATE",
				"message": "Application has already been reviewed",
			},
		})
		return
	}

	provision, err := services.ProvisionTrainer(tx, &application, defaultRate)
	if err != nil {
		tx.Rollback()
		log.Printf("Provisioning failed for application %d: %v", application.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROVISIONING_ERROR",
				"message": "Failed to provision trainer account",
			},
		})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to commit approval",
			},
		})
		return
	}

	// Welcome mail is fire-and-forget: a relay failure never unwinds the approval
	if mail := services.GetMailService(); mail != nil && !provision.Reused {
		body := fmt.Sprintf("Hi %s,\n\nYour trainer application has been approved. Your profile is live at /trainers/%s.",
			application.FirstName, provision.Trainer.Slug)
		if provision.PlainPassword != "" {
			body += fmt.Sprintf("\n\nSign in with %s and the temporary password: %s", application.Email, provision.PlainPassword)
		}
		if err := mail.Send(application.Email, "Welcome to Coachline", body); err != nil {
			log.Printf("Failed to send welcome mail for application %d: %v", application.ID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"trainer_id": provision.Trainer.ID,
			"slug":       provision.Trainer.Slug,
		},
	})
}

// RejectApplication handles POST /api/v1/applications/:id/reject. Uses the
// same conditional-update guard as approval; approve and reject are mutually
// exclusive terminal outcomes.
func RejectApplication(c *gin.Context) {
	reviewer, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()

	var application models.Application
	if err := db.First(&application, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "APPLICATION_NOT_FOUND",
				"message": "Application not found",
			},
		})
		return
	}

	var req RejectApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      models.ApplicationRejected,
		"reviewed_by": reviewer.ID,
		"reviewed_at": now,
	}
	if req.Reason != "" {
		updates["admin_notes"] = req.Reason
	}

	result := db.Model(&models.Application{}).
		Where("id = ? AND status = ?", application.ID, models.ApplicationPending).
		Updates(updates)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update application",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATE",
				"message": "Application has already been reviewed",
			},
		})
		return
	}

	if mail := services.GetMailService(); mail != nil {
		body := fmt.Sprintf("Hi %s,\n\nThank you for applying. We are unable to move forward with your application at this time.",
			application.FirstName)
		if req.Reason != "" {
			body += "\n\nReviewer note: " + req.Reason
		}
		if err := mail.Send(application.Email, "Your Coachline application", body); err != nil {
			log.Printf("Failed to send rejection mail for application %d: %v", application.ID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
