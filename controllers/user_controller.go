package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/services"
)

type UserController struct {
	users    *services.UserService
	sessions *services.SessionService
	exports  *services.ExportService
}

func NewUserController(users *services.UserService, sessions *services.SessionService, exports *services.ExportService) *UserController {
	return &UserController{users: users, sessions: sessions, exports: exports}
}

func (uc *UserController) CreateUser(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req models.CreateUserRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.users.CreateUser(ctx, actor, req)
	if err != nil {
		return fail(c, err, "Could not create user")
	}
	return respond(c, http.StatusCreated, "User created", user)
}

// ListUsers returns every user to admin and the team to a sales-manager.
func (uc *UserController) ListUsers(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := uc.users.ListUsers(ctx, actor)
	if err != nil {
		return fail(c, err, "Could not load users")
	}
	return respond(c, http.StatusOK, "Users retrieved", users)
}

func (uc *UserController) GetUser(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.users.GetUser(ctx, actor, c.Param("uid"))
	if err != nil {
		return fail(c, err, "Could not load user")
	}
	return respond(c, http.StatusOK, "User retrieved", user)
}

func (uc *UserController) UpdateUser(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req models.UpdateUserRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.users.UpdateUser(ctx, actor, c.Param("uid"), req)
	if err != nil {
		return fail(c, err, "Could not update user")
	}
	return respond(c, http.StatusOK, "User updated", user)
}

func (uc *UserController) AssignManager(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req models.AssignManagerRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.users.AssignManager(ctx, actor, c.Param("uid"), req.ManagerUID)
	if err != nil {
		return fail(c, err, "Could not assign manager")
	}
	return respond(c, http.StatusOK, "Manager assigned", user)
}

func (uc *UserController) SetMaterialLock(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req struct {
		Locked bool `json:"locked"`
	}
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.users.SetMaterialLock(ctx, actor, c.Param("uid"), req.Locked)
	if err != nil {
		return fail(c, err, "Could not update material lock")
	}
	return respond(c, http.StatusOK, "Material lock updated", user)
}

func (uc *UserController) DeleteUser(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := uc.users.DeleteUser(ctx, actor, c.Param("uid")); err != nil {
		return fail(c, err, "Could not delete user")
	}
	return respond(c, http.StatusOK, "User deleted", nil)
}

// GetProfile returns the caller's own document with the fields still missing.
func (uc *UserController) GetProfile(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.sessions.LoadUser(ctx, actor.UID)
	if err != nil {
		return fail(c, err, "Could not load profile")
	}
	return respond(c, http.StatusOK, "Profile retrieved", map[string]interface{}{
		"user":          user,
		"missingFields": nonNil(user.MissingProfileFields()),
	})
}

func (uc *UserController) UpdateProfile(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	var req models.UpdateProfileRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.users.UpdateProfile(ctx, actor, req)
	if err != nil {
		return fail(c, err, "Could not save profile")
	}
	return respond(c, http.StatusOK, "Profile updated", map[string]interface{}{
		"user":          user,
		"missingFields": nonNil(user.MissingProfileFields()),
	})
}

// ExportUsers downloads the visible users as a spreadsheet.
func (uc *UserController) ExportUsers(c echo.Context) error {
	actor, ok := actorOf(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := uc.users.ListUsers(ctx, actor)
	if err != nil {
		return fail(c, err, "Could not load users")
	}
	data, err := uc.exports.Users(users)
	if err != nil {
		return fail(c, err, "Could not build export")
	}
	return attachment(c, "anvandare.xlsx", data)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
