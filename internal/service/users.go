package service

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/validate"
)

type UserService struct {
	Repo    *repo.GormRepo
	Hasher  PasswordHasher
	Ratings *RatingAggregator
	Events  Emitter
}

func (s *UserService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.register")

	req.Email = NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		l.Warn("register_failed", "status", 400, "reason", "invalid body", "error", err)
		return nil, invalid("invalid registration data", err)
	}

	pwHash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, wrapInternal("hash password", err)
	}

	user := &models.User{
		Email:      req.Email,
		Password:   pwHash,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		IsCustomer: true,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("register_failed", "status", 409, "reason", "email already exists")
			return nil, conflict("email already exists", err)
		}
		l.Error("register_failed", "status", 500, "error", err)
		return nil, wrapInternal("create user", err)
	}

	l.Info("register_successful", "user_id", user.ID)
	emitterOrNop(s.Events).Emit(events.TopicUsers, key(user.ID), "user_registered", map[string]any{
		"userID": user.ID,
		"email":  user.Email,
	})
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return nil, wrapInternal("list users", err)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user")
		}
		return nil, wrapInternal("get user", err)
	}
	return user, nil
}

// UpdateProfile lets a user change their own first and last name.
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.User, id uint, req transport.UpdateProfileRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.update_profile", "user_id", id)

	if err := validate.Struct(req); err != nil {
		return nil, invalid("invalid profile data", err)
	}
	target, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !RequireOwnership(actor, target) {
		l.Warn("update_profile_failed", "status", 403, "reason", "not profile owner", "actor_id", actorID(actor))
		return nil, forbidden("not profile owner")
	}

	target.FirstName = req.FirstName
	target.LastName = req.LastName
	if err := s.Repo.UpdateUserProfile(ctx, target); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user")
		}
		return nil, wrapInternal("update profile", err)
	}
	return target, nil
}

// SetRoles overwrites the three role flags of a user. Admin only.
func (s *UserService) SetRoles(ctx context.Context, actor *models.User, id uint, req transport.UserStatusRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.set_roles", "user_id", id)

	if _, err := RequireRole(actor, models.RoleAdmin); err != nil {
		l.Warn("set_roles_failed", "status", 403, "reason", "not admin")
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		l.Warn("set_roles_failed", "status", 400, "reason", "invalid body", "error", err)
		return nil, invalid("invalid user status", err)
	}

	var updated *models.User
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.UpdateUserRoles(ctx, id, *req.IsAdmin, *req.IsSupplier, *req.IsCustomer); err != nil {
			return err
		}
		u, err := tx.GetUserByID(ctx, id)
		updated = u
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user")
		}
		return nil, wrapInternal("set roles", err)
	}

	l.Info("set_roles_successful", "is_admin", updated.IsAdmin, "is_supplier", updated.IsSupplier, "is_customer", updated.IsCustomer)
	emitterOrNop(s.Events).Emit(events.TopicUsers, key(id), "user_roles_changed", map[string]any{
		"userID":     id,
		"isAdmin":    updated.IsAdmin,
		"isSupplier": updated.IsSupplier,
		"isCustomer": updated.IsCustomer,
	})
	return updated, nil
}

// DeleteUser removes the user together with their products and reviews, then
// recomputes the rating of every other product they had reviewed.
func (s *UserService) DeleteUser(ctx context.Context, actor *models.User, id uint) error {
	l := logging.FromContext(ctx).With("svc", "users.delete", "user_id", id)

	if _, err := RequireRole(actor, models.RoleAdmin); err != nil {
		l.Warn("delete_user_failed", "status", 403, "reason", "not admin")
		return err
	}

	var touched []uint
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.GetUserByID(ctx, id); err != nil {
			return err
		}
		ids, err := tx.ReviewedProductIDs(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteUserCascade(ctx, id); err != nil {
			return err
		}
		for _, pid := range ids {
			if err := s.Ratings.Recompute(ctx, tx, pid); err != nil {
				return err
			}
		}
		touched = ids
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("delete_user_failed", "status", 404, "reason", "user not found")
			return notFound("user")
		}
		l.Error("delete_user_failed", "status", 500, "error", err)
		return wrapInternal("delete user", err)
	}

	l.Info("delete_user_successful", "recomputed_products", len(touched))
	emitterOrNop(s.Events).Emit(events.TopicUsers, key(id), "user_deleted", map[string]any{
		"userID":    id,
		"deletedBy": actor.ID,
	})
	return nil
}

// BootstrapAdmin makes sure an admin with this email exists. An existing user
// is promoted and keeps their password; otherwise a new admin is registered
// with the given password. created reports which of the two happened.
func (s *UserService) BootstrapAdmin(ctx context.Context, email, password string) (user *models.User, created bool, err error) {
	l := logging.FromContext(ctx).With("svc", "users.bootstrap_admin")

	existing, err := s.Repo.GetUserByEmail(ctx, NormalizeEmail(email))
	switch {
	case err == nil:
		if err := s.Repo.UpdateUserRoles(ctx, existing.ID, true, existing.IsSupplier, existing.IsCustomer); err != nil {
			return nil, false, wrapInternal("promote user", err)
		}
		existing.IsAdmin = true
		l.Info("bootstrap_admin_promoted", "user_id", existing.ID)
		return existing, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, wrapInternal("load user", err)
	}

	user, err = s.Register(ctx, transport.RegisterRequest{Email: email, Password: password})
	if err != nil {
		return nil, false, err
	}
	if err := s.Repo.UpdateUserRoles(ctx, user.ID, true, user.IsSupplier, user.IsCustomer); err != nil {
		return nil, false, wrapInternal("promote user", err)
	}
	user.IsAdmin = true
	l.Info("bootstrap_admin_created", "user_id", user.ID)
	return user, true, nil
}

func actorID(u *models.User) uint {
	if u == nil {
		return 0
	}
	return u.ID
}

func key(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
