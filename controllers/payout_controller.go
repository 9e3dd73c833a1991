package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/coachline-hq/coachline-api/config"
	"github.com/coachline-hq/coachline-api/models"
	"github.com/coachline-hq/coachline-api/services"
	"github.com/gin-gonic/gin"
)

// ProcessPayout handles POST /api/v1/payouts/:id/process - runs a pending
// payout through the payment provider and records the outcome.
//
// The pending -> processing claim is a conditional update, so concurrent
// process requests (or an overlapping background job tick) settle to exactly
// one provider call.
func ProcessPayout(c *gin.Context) {
	db := config.GetDB()

	var payout models.Payout
	if err := db.First(&payout, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PAYOUT_NOT_FOUND",
				"message": "Payout not found",
			},
		})
		return
	}

	claim := db.Model(&models.Payout{}).
		Where("id = ? AND status = ?", payout.ID, models.PayoutPending).
		Update("status", models.PayoutProcessing)
	if claim.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to claim payout",
			},
		})
		return
	}
	if claim.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATE",
				"message": "Payout is not pending",
			},
		})
		return
	}

	payments := services.GetPaymentService()
	if payments == nil {
		// Undo the claim so the payout can be processed once a provider is configured
		db.Model(&models.Payout{}).Where("id = ?", payout.ID).
			Update("status", models.PayoutPending)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PAYMENTS_UNAVAILABLE",
				"message": "Payment provider is not configured",
			},
		})
		return
	}

	providerID, err := payments.ProcessPayout(payout.Reference, payout.AmountCents())
	now := time.Now()
	if err != nil {
		// Detail goes to the log; the caller gets a generic upstream failure
		log.Printf("Payout %d failed at provider: %v", payout.ID, err)
		reason := err.Error()
		if updateErr := db.Model(&models.Payout{}).Where("id = ?", payout.ID).Updates(map[string]interface{}{
			"status":         models.PayoutFailed,
			"failure_reason": &reason,
			"processed_at":   &now,
		}).Error; updateErr != nil {
			log.Printf("Failed to record payout %d failure: %v", payout.ID, updateErr)
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPSTREAM_ERROR",
				"message": "Payment provider failed to process the payout",
			},
		})
		return
	}

	if err := db.Model(&models.Payout{}).Where("id = ?", payout.ID).Updates(map[string]interface{}{
		"status":       models.PayoutCompleted,
		"provider_id":  &providerID,
		"processed_at": &now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to record payout completion",
			},
		})
		return
	}

	if err := db.First(&payout, payout.ID).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    payout,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
