package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/launchkit/launchkit/app/models"
	"github.com/launchkit/launchkit/app/repository"
	"github.com/launchkit/launchkit/internal/pkg/session"
)

// HandleOAuthBegin starts the provider flow
func HandleOAuthBegin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the provider flow and logs the user in
func HandleOAuthCallback(c *fiber.Ctx) error {
	// Complete OAuth with provider and obtain unified user
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(fmt.Sprintf("OAuth failed: %v", err))
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()

	appUser, err := userRepo.GetByOAuth(u.Provider, u.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Optional email match if provided
		if u.Email != "" {
			if existing, lookupErr := userRepo.GetByEmail(u.Email); lookupErr == nil {
				appUser = existing
			}
		}
		if appUser == nil {
			// Create new user; the password is a random placeholder since
			// validation requires one (it is never usable for login)
			placeholder := fmt.Sprintf("oauth_%d", time.Now().UnixNano())
			hash, _ := models.HashPassword(placeholder)
			email := u.Email
			if email == "" {
				// Ensure unique, non-empty email to satisfy unique index semantics in MySQL
				email = fmt.Sprintf("%s_%s@%s.oauth.local", u.Provider, u.UserID, u.Provider)
			}
			appUser = &models.User{
				Name:      firstNonEmpty(u.Name, u.NickName, u.Email, "User"),
				Email:     email,
				Password:  hash,
				Role:      models.ROLE_USER,
				Status:    models.STATUS_ACTIVE,
				AvatarURL: u.AvatarURL,
			}
			if err := userRepo.Create(appUser); err != nil {
				return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprintf("create user failed: %v", err))
			}
			// The very first account becomes the super admin
			if total, countErr := userRepo.Count(); countErr == nil {
				if role := models.SignupRole(total); role != appUser.Role {
					appUser.Role = role
					_ = userRepo.Update(appUser)
				}
			}
		}
		// Link the provider identity to the account
		appUser.OAuthProvider = u.Provider
		appUser.OAuthUserID = u.UserID
		if err := userRepo.Update(appUser); err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprintf("link provider failed: %v", err))
		}
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprintf("db error: %v", err))
	}

	if !appUser.IsActive() {
		return c.Status(fiber.StatusForbidden).SendString("account disabled")
	}

	// Create app session
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("session init failed")
	}
	sess.Set(AUTH_KEY, true)
	sess.Set(USER_ID, appUser.ID)
	sess.Set(USER_NAME, appUser.Name)
	sess.Set(USER_ROLE, appUser.Role)
	sess.Set(USER_IS_ADMIN, appUser.IsSuperAdmin())
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("session save failed")
	}

	now := time.Now()
	appUser.LastLoginAt = &now
	_ = userRepo.Update(appUser)

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleOAuthLogout clears the provider session alongside the app session
func HandleOAuthLogout(c *fiber.Ctx) error {
	_ = gothfiber.Logout(c)
	return HandleAuthLogout(c)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
