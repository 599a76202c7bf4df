package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/utils"
)

// profileGateHold bounds the profile-gate suppression of a user-creation flow.
const profileGateHold = 2 * time.Minute

type UserService struct {
	users    UserStore
	identity IdentityProvider
	cache    SessionCache
	loc      *time.Location
}

func NewUserService(users UserStore, identity IdentityProvider, cache SessionCache, loc *time.Location) *UserService {
	return &UserService{users: users, identity: identity, cache: cache, loc: loc}
}

// CreateUser registers an auth account and writes its users document. A
// sales-manager may only create sellers, who are placed on their own team.
func (s *UserService) CreateUser(ctx context.Context, actor Actor, req models.CreateUserRequest) (*models.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, invalid("unknown role %q", req.Role)
	}
	if !actor.Role.CanCreate(req.Role) {
		return nil, forbidden("%s may not create %s accounts", actor.Role, req.Role)
	}

	managerUID := strings.TrimSpace(req.ManagerUID)
	if actor.Role == models.RoleSalesManager {
		managerUID = actor.UID
	} else if managerUID != "" {
		if err := s.requireManager(ctx, managerUID); err != nil {
			return nil, err
		}
	}

	// The creator's other requests made while the account is being
	// provisioned (session refresh, navigation, dashboard refetch) skip the
	// profile gate. This request already passed it.
	s.cache.SuppressProfileGate(ctx, actor.UID, profileGateHold)
	defer s.cache.ReleaseProfileGate(ctx, actor.UID)

	email := strings.TrimSpace(strings.ToLower(req.Email))
	uid, err := s.identity.CreateAccount(ctx, email, req.Password, req.Name)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:         uid,
		Name:       strings.TrimSpace(req.Name),
		Email:      email,
		Role:       req.Role,
		ManagerUID: managerUID,
		SalesID:    strings.TrimSpace(req.SalesID),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if derr := s.identity.DisableAccount(ctx, uid); derr != nil {
			logger.Get("app").WithError(derr).WithField("uid", uid).Error("failed to disable orphaned auth account")
		}
		return nil, err
	}

	logger.Get("audit").WithFields(logrus.Fields{
		"uid": uid, "role": user.Role, "createdBy": actor.UID, "managerUid": managerUID,
	}).Info("user created")
	return user, nil
}

func (s *UserService) requireManager(ctx context.Context, uid string) error {
	m, err := s.users.Get(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		return invalid("manager %s does not exist", uid)
	}
	if err != nil {
		return err
	}
	if m.Role != models.RoleSalesManager {
		return invalid("user %s is not a sales-manager", uid)
	}
	return nil
}

// ListUsers returns every user for admin and the own team for a sales-manager.
func (s *UserService) ListUsers(ctx context.Context, actor Actor) ([]models.User, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return s.users.List(ctx)
	case models.RoleSalesManager:
		return s.users.ListByManager(ctx, actor.UID)
	}
	return nil, forbidden("%s may not list users", actor.Role)
}

// GetUser returns a user the actor may see: anyone for admin, team members
// for their sales-manager, otherwise only oneself.
func (s *UserService) GetUser(ctx context.Context, actor Actor, uid string) (*models.User, error) {
	u, err := s.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || actor.UID == uid ||
		(actor.Role == models.RoleSalesManager && u.ManagerUID == actor.UID) {
		return u, nil
	}
	return nil, forbidden("not your user")
}

// UpdateUser applies the admin-editable fields.
func (s *UserService) UpdateUser(ctx context.Context, actor Actor, uid string, req models.UpdateUserRequest) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("only admin may edit users")
	}
	patch := models.UserPatch{
		Name:           req.Name,
		Role:           req.Role,
		SalesID:        req.SalesID,
		SistaArbetsdag: req.SistaArbetsdag,
		MenuComponents: req.MenuComponents,
		MaterialLocked: req.MaterialLocked,
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, invalid("unknown role %q", *patch.Role)
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, invalid("name is required")
	}
	if d := patch.SistaArbetsdag; d != nil && *d != "" {
		if _, err := utils.ParseDate(*d, s.loc); err != nil {
			return nil, invalid("sistaArbetsdag must be YYYY-MM-DD")
		}
	}
	if patch.Empty() {
		return nil, invalid("nothing to update")
	}
	return s.patch(ctx, actor, uid, patch)
}

func (s *UserService) patch(ctx context.Context, actor Actor, uid string, patch models.UserPatch) (*models.User, error) {
	if err := s.users.Patch(ctx, uid, patch); err != nil {
		return nil, err
	}
	s.cache.EvictUser(ctx, uid)
	logger.Get("audit").WithFields(logrus.Fields{"uid": uid, "by": actor.UID}).Info("user updated")
	return s.users.Get(ctx, uid)
}

// AssignManager moves uid to the team of managerUID. An empty managerUID
// takes the user off any team.
func (s *UserService) AssignManager(ctx context.Context, actor Actor, uid, managerUID string) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("only admin may reassign users")
	}
	managerUID = strings.TrimSpace(managerUID)
	if managerUID != "" {
		if managerUID == uid {
			return nil, invalid("a user cannot manage themselves")
		}
		if err := s.requireManager(ctx, managerUID); err != nil {
			return nil, err
		}
	}
	return s.patch(ctx, actor, uid, models.UserPatch{ManagerUID: &managerUID})
}

// SetMaterialLock locks or unlocks a sales-manager's material list.
func (s *UserService) SetMaterialLock(ctx context.Context, actor Actor, uid string, locked bool) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("only admin may lock material")
	}
	if err := s.requireManager(ctx, uid); err != nil {
		return nil, err
	}
	return s.patch(ctx, actor, uid, models.UserPatch{MaterialLocked: &locked})
}

// UpdateProfile saves the actor's own profile form.
func (s *UserService) UpdateProfile(ctx context.Context, actor Actor, req models.UpdateProfileRequest) (*models.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, actor.UID, strings.TrimSpace(req.Name), req.Profile); err != nil {
		return nil, err
	}
	s.cache.EvictUser(ctx, actor.UID)
	return s.users.Get(ctx, actor.UID)
}

// DeleteUser disables the auth account and removes the users document.
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, uid string) error {
	if !actor.IsAdmin() {
		return forbidden("only admin may delete users")
	}
	if uid == actor.UID {
		return invalid("you cannot delete your own account")
	}
	if _, err := s.users.Get(ctx, uid); err != nil {
		return err
	}
	if err := s.identity.DisableAccount(ctx, uid); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, uid); err != nil {
		return err
	}
	s.cache.EvictUser(ctx, uid)
	logger.Get("audit").WithFields(logrus.Fields{"uid": uid, "by": actor.UID}).Info("user deleted")
	return nil
}
