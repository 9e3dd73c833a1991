package services

import (
	"errors"
	"fmt"

	"github.com/coachline-hq/coachline-api/models"
	"github.com/coachline-hq/coachline-api/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ProvisionResult holds what approval provisioning produced. PlainPassword
// is only set when a new account was created on this call; it is handed to
// the welcome mail and never stored in the clear.
type ProvisionResult struct {
	Trainer       *models.Trainer
	User          *models.User
	PlainPassword string
	Reused        bool
}

// ProvisionTrainer creates (or reuses) the account and trainer profile for an
// approved application. It is idempotent keyed on the application id: a
// trainer that already exists for the application is returned unchanged and
// no second record is ever created. Run it inside the same transaction as
// the application status transition so a failure leaves no partial state.
func ProvisionTrainer(tx *gorm.DB, app *models.Application, defaultRate float64) (*ProvisionResult, error) {
	// Idempotency guard: one trainer per application
	var existing models.Trainer
	err := tx.Where("application_id = ?", app.ID).First(&existing).Error
	if err == nil {
		return &ProvisionResult{Trainer: &existing, Reused: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing trainer: %w", err)
	}

	user, plainPassword, err := findOrCreateUser(tx, app)
	if err != nil {
		return nil, err
	}

	slug, err := uniqueSlug(tx, utils.Slugify(app.FirstName, app.LastName))
	if err != nil {
		return nil, err
	}

	trainer := models.Trainer{
		UserID:        user.ID,
		ApplicationID: app.ID,
		Slug:          slug,
		DisplayName:   app.FirstName + " " + app.LastName,
		Email:         app.Email,
		Phone:         app.Phone,
		Specialties:   app.Specialties,
		Bio:           app.Bio,
		HourlyRate:    defaultRate,
		Status:        models.TrainerApproved,
	}
	if err := tx.Create(&trainer).Error; err != nil {
		return nil, fmt.Errorf("failed to create trainer profile: %w", err)
	}

	return &ProvisionResult{
		Trainer:       &trainer,
		User:          user,
		PlainPassword: plainPassword,
	}, nil
}

// findOrCreateUser fetches the account for the applicant's email or creates
// one with a generated password and the trainer role
func findOrCreateUser(tx *gorm.DB, app *models.Application) (*models.User, string, error) {
	var user models.User
	err := tx.Where("email = ?", app.Email).First(&user).Error
	if err == nil {
		// Existing account keeps its credentials; make sure it carries the role
		if user.Role != "trainer" && user.Role != "admin" {
			if err := tx.Model(&user).Update("role", "trainer").Error; err != nil {
				return nil, "", fmt.Errorf("failed to assign trainer role: %w", err)
			}
			user.Role = "trainer"
		}
		return &user, "", nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	plainPassword, err := utils.RandomPassword(14)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate credentials: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash credentials: %w", err)
	}
	hashStr := string(hash)

	user = models.User{
		// Placeholder identity until the trainer links a login through Auth0
		Auth0ID:      "provisioned|" + uuid.NewString(),
		Name:         app.FirstName + " " + app.LastName,
		Email:        app.Email,
		Role:         "trainer",
		PasswordHash: &hashStr,
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create user account: %w", err)
	}

	return &user, plainPassword, nil
}

// uniqueSlug appends a numeric suffix until the slug is free. The name-based
// slug is a best-effort uniqueness heuristic, so collisions are expected and
// resolved rather than treated as errors.
func uniqueSlug(tx *gorm.DB, base string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(&models.Trainer{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check slug availability: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
