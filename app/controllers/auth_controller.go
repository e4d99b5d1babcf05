package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/launchkit/launchkit/app/models"
	"github.com/launchkit/launchkit/app/repository"
	"github.com/launchkit/launchkit/internal/pkg/cache"
	"github.com/launchkit/launchkit/internal/pkg/database"
	"github.com/launchkit/launchkit/internal/pkg/session"
)

const (
	FROM_PROTECTED string = "from_protected"

	AUTH_KEY      string = "authenticated"
	USER_ID       string = "user_id"
	USER_NAME     string = "username"
	USER_ROLE     string = "user_role"
	USER_IS_ADMIN string = "isAdmin"
)

const (
	maxFailedLogins  = 5
	loginLockoutTime = 15 * time.Minute
)

func failedLoginKey(email string) string {
	return fmt.Sprintf("login:failed:%s", email)
}

func HandleAuthLogin(c *fiber.Ctx) error {
	var user models.User
	fm := fiber.Map{
		"type": "error",
	}

	email := c.FormValue("email")

	// Too many failed attempts locks the account for a while
	if count, err := cache.GetInt(failedLoginKey(email)); err == nil && count >= maxFailedLogins {
		fm["message"] = "Too many failed login attempts. Please try again later."

		return flash.WithError(c, fm).Redirect("/login")
	}

	// notice: in production you should not inform the user
	// with detailed messages about login failures
	result := database.GetDB().Where("email = ?", email).First(&user)
	if result.Error != nil {
		fm["message"] = "There is a problem with the login process"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if !models.CheckPasswordHash(c.FormValue("password"), user.Password) {
		count, _ := cache.GetInt(failedLoginKey(email))
		_ = cache.Set(failedLoginKey(email), count+1, loginLockoutTime)

		fm["message"] = "There is a problem with the login process"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if !user.IsActive() {
		fm["message"] = "This account is disabled"

		return flash.WithError(c, fm).Redirect("/login")
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	sess.Set(AUTH_KEY, true)
	sess.Set(USER_ID, user.ID)
	sess.Set(USER_NAME, user.Name)
	sess.Set(USER_ROLE, user.Role)
	sess.Set(USER_IS_ADMIN, user.IsSuperAdmin())

	err = sess.Save()
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	_ = cache.Delete(failedLoginKey(email))
	database.GetDB().Model(&user).Update("last_login_at", time.Now())

	fm = fiber.Map{
		"type":    "success",
		"message": "Welcome back!",
	}

	return flash.WithSuccess(c, fm).Redirect("/")
}

func HandleAuthLogout(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = "logged out (no sess)"

		return flash.WithError(c, fm).Redirect("/login")
	}

	err = sess.Destroy()
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "See you soon!",
	}

	c.Locals(FROM_PROTECTED, false)

	return flash.WithSuccess(c, fm).Redirect("/login")
}

func HandleAuthRegister(c *fiber.Ctx) error {
	user, err := models.CreateUser(c.FormValue("username"), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}

		return flash.WithError(c, fm).Redirect("/register")
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()

	err = userRepo.Create(user)
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}

		return flash.WithError(c, fm).Redirect("/register")
	}

	// The very first account becomes the super admin
	if total, err := userRepo.Count(); err == nil {
		if role := models.SignupRole(total); role != user.Role {
			user.Role = role
			_ = userRepo.Update(user)
		}
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Your account has been created. You can log in now!",
	}

	return flash.WithSuccess(c, fm).Redirect("/login")
}
