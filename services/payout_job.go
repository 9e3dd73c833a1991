package services

import (
	"log"
	"sync"
	"time"

	"github.com/coachline-hq/coachline-api/config"
	"github.com/coachline-hq/coachline-api/models"
)

const payoutBatchSize = 20

// PayoutJob is the periodic processor that moves pending payouts through the
// payment provider. One goroutine, one ticker; each tick claims a batch of
// pending payouts with a conditional update so a second instance of the job
// can never process the same payout twice.
type PayoutJob struct {
	interval time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewPayoutJob creates a payout job with the given tick interval
func NewPayoutJob(interval time.Duration) *PayoutJob {
	return &PayoutJob{interval: interval}
}

// Start launches the job goroutine. Returns false if already running.
func (j *PayoutJob) Start() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return false
	}

	j.stop = make(chan struct{})
	j.done = make(chan struct{})
	j.running = true

	go j.run()

	log.Printf("Payout job started (interval %s)", j.interval)
	return true
}

// Stop signals the job to exit and waits for the current tick to finish.
// Returns false if the job was not running.
func (j *PayoutJob) Stop() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return false
	}

	close(j.stop)
	<-j.done
	j.running = false

	log.Println("Payout job stopped")
	return true
}

// IsRunning reports whether the job goroutine is active
func (j *PayoutJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *PayoutJob) run() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stop:
			return
		case <-ticker.C:
			j.safeTick()
		}
	}
}

func (j *PayoutJob) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Payout job tick panic recovered: %v", r)
		}
	}()
	j.Tick()
}

// Tick processes one batch of pending payouts. Exported so a tick can be
// driven directly in tests without the ticker.
func (j *PayoutJob) Tick() {
	db := config.GetDB()
	payments := GetPaymentService()
	if db == nil || payments == nil {
		return
	}

	var pending []models.Payout
	if err := db.Where("status = ?", models.PayoutPending).
		Order("created_at ASC").
		Limit(payoutBatchSize).
		Find(&pending).Error; err != nil {
		log.Printf("Payout job: failed to list pending payouts: %v", err)
		return
	}

	for _, payout := range pending {
		// Claim the payout; if another worker got there first, skip it
		claim := db.Model(&models.Payout{}).
			Where("id = ? AND status = ?", payout.ID, models.PayoutPending).
			Update("status", models.PayoutProcessing)
		if claim.Error != nil {
			log.Printf("Payout job: failed to claim payout %d: %v", payout.ID, claim.Error)
			continue
		}
		if claim.RowsAffected == 0 {
			continue
		}

		providerID, err := payments.ProcessPayout(payout.Reference, payout.AmountCents())
		now := time.Now()
		if err != nil {
			reason := err.Error()
			log.Printf("Payout job: payout %d failed: %v", payout.ID, err)
			if updateErr := db.Model(&models.Payout{}).Where("id = ?", payout.ID).Updates(map[string]interface{}{
				"status":         models.PayoutFailed,
				"failure_reason": &reason,
				"processed_at":   &now,
			}).Error; updateErr != nil {
				log.Printf("Payout job: failed to record failure for payout %d: %v", payout.ID, updateErr)
			}
			continue
		}

		if err := db.Model(&models.Payout{}).Where("id = ?", payout.ID).Updates(map[string]interface{}{
			"status":       models.PayoutCompleted,
			"provider_id":  &providerID,
			"processed_at": &now,
		}).Error; err != nil {
			log.Printf("Payout job: failed to record completion for payout %d: %v", payout.ID, err)
		}
	}
}
