package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/baharkarakas/hbnb-api/internal/models"
	"github.com/baharkarakas/hbnb-api/internal/policy"
	repo "github.com/baharkarakas/hbnb-api/internal/repository"
	"github.com/baharkarakas/hbnb-api/internal/validate"
)

// Register creates an account without a policy gate. It backs the admin
// bootstrap and CreateUser.
func (c *Catalog) Register(ctx context.Context, in models.NewUser) (models.User, error) {
	return c.register(ctx, policy.Actor{}, in)
}

// CreateUser is the admin-only registration path.
func (c *Catalog) CreateUser(ctx context.Context, actor policy.Actor, in models.NewUser) (models.User, error) {
	if !policy.CanRegisterUser(actor) {
		err := denied("only administrators can create users")
		c.observe("user.create", err)
		return models.User{}, err
	}
	return c.register(ctx, actor, in)
}

func (c *Catalog) register(ctx context.Context, actor policy.Actor, in models.NewUser) (u models.User, err error) {
	defer func() { c.observe("user.create", err) }()

	u = models.User{
		Email:     models.NormalizeEmail(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		IsAdmin:   in.IsAdmin,
	}
	errs := u.FieldErrs()
	errs.Add(models.ValidatePassword(in.Password))
	if verr := errs.Err(); verr != nil {
		return models.User{}, validationErr(verr)
	}

	u.PasswordHash, err = c.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, c.fail("user.create", "user", fmt.Errorf("hash password: %w", err))
	}

	err = c.store.WithTx(ctx, func(r repo.Repositories) error {
		if _, err := r.Users.GetByEmail(ctx, u.Email); err == nil {
			return duplicate(conflictMessages["user"])
		} else if !isNotFound(err) {
			return err
		}
		created, err := r.Users.Create(ctx, u)
		if err != nil {
			return err
		}
		u = created
		return c.audit(ctx, r, actor, "user", u.ID, "create", map[string]any{"email": u.Email, "is_admin": u.IsAdmin})
	})
	if err != nil {
		return models.User{}, c.fail("user.create", "user", err)
	}
	c.log.Info("user registered", "user_id", u.ID, "is_admin", u.IsAdmin, "actor_id", actor.ID)
	return u, nil
}

// EnsureAdmin makes sure an administrator with email exists. An existing
// non-admin account with that email is promoted; its password is kept.
func (c *Catalog) EnsureAdmin(ctx context.Context, email, password string) (models.User, error) {
	email = models.NormalizeEmail(email)
	existing, err := c.store.Repos().Users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.IsAdmin:
		return existing, nil
	case err == nil:
		var promoted models.User
		err = c.store.WithTx(ctx, func(r repo.Repositories) error {
			existing.IsAdmin = true
			var err error
			if promoted, err = r.Users.Update(ctx, existing); err != nil {
				return err
			}
			return c.audit(ctx, r, policy.Actor{}, "user", promoted.ID, "promote", nil)
		})
		if err != nil {
			return models.User{}, c.fail("user.ensure_admin", "user", err)
		}
		c.log.Info("user promoted to admin", "user_id", promoted.ID)
		return promoted, nil
	case !isNotFound(err):
		return models.User{}, c.fail("user.ensure_admin", "user", err)
	}

	return c.Register(ctx, models.NewUser{
		Email:     email,
		Password:  password,
		FirstName: "Admin",
		LastName:  "User",
		IsAdmin:   true,
	})
}

// Authenticate returns nil (and no error) for an unknown email or a wrong
// password; callers must not tell the two apart.
func (c *Catalog) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := c.store.Repos().Users.GetByEmail(ctx, models.NormalizeEmail(email))
	if isNotFound(err) {
		c.hasher.Verify(c.dummyHash(), password)
		return nil, nil
	}
	if err != nil {
		return nil, c.fail("user.authenticate", "user", err)
	}
	if !c.hasher.Verify(u.PasswordHash, password) {
		return nil, nil
	}
	return &u, nil
}

func (c *Catalog) UpdateUser(ctx context.Context, actor policy.Actor, targetID string, patch models.UserPatch) (u models.User, err error) {
	defer func() { c.observe("user.update", err) }()

	if _, err := c.store.Repos().Users.GetByID(ctx, targetID); err != nil {
		return models.User{}, c.fail("user.update", "user", err)
	}
	switch policy.ManageUser(actor, targetID) {
	case policy.AccessNone:
		return models.User{}, denied("you can only update your own profile")
	case policy.AccessSelf:
		if patch.TouchesCredentials() {
			return models.User{}, denied("only administrators can change email, password or admin status")
		}
	}

	var hash string
	if patch.Password != nil {
		if ef := models.ValidatePassword(*patch.Password); ef != nil {
			return models.User{}, validationErr(validate.Errs{*ef})
		}
		if hash, err = c.hasher.Hash(*patch.Password); err != nil {
			return models.User{}, c.fail("user.update", "user", fmt.Errorf("hash password: %w", err))
		}
	}

	changed := []string{}
	err = c.store.WithTx(ctx, func(r repo.Repositories) error {
		cur, err := r.Users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if patch.FirstName != nil {
			cur.FirstName = strings.TrimSpace(*patch.FirstName)
			changed = append(changed, "first_name")
		}
		if patch.LastName != nil {
			cur.LastName = strings.TrimSpace(*patch.LastName)
			changed = append(changed, "last_name")
		}
		if patch.Email != nil {
			cur.Email = models.NormalizeEmail(*patch.Email)
			changed = append(changed, "email")
		}
		if patch.IsAdmin != nil {
			cur.IsAdmin = *patch.IsAdmin
			changed = append(changed, "is_admin")
		}
		if hash != "" {
			cur.PasswordHash = hash
			changed = append(changed, "password")
		}
		if err := cur.Validate(); err != nil {
			return validationErr(err)
		}
		if patch.Email != nil {
			other, err := r.Users.GetByEmail(ctx, cur.Email)
			if err == nil && other.ID != cur.ID {
				return duplicate(conflictMessages["user"])
			} else if err != nil && !isNotFound(err) {
				return err
			}
		}
		if u, err = r.Users.Update(ctx, cur); err != nil {
			return err
		}
		return c.audit(ctx, r, actor, "user", u.ID, "update", map[string]any{"fields": changed})
	})
	if err != nil {
		return models.User{}, c.fail("user.update", "user", err)
	}
	c.log.Info("user updated", "user_id", u.ID, "actor_id", actor.ID, "fields", changed)
	return u, nil
}

func (c *Catalog) GetUser(ctx context.Context, id string) (models.User, error) {
	u, err := c.store.Repos().Users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, c.fail("user.get", "user", err)
	}
	return u, nil
}

func (c *Catalog) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := c.store.Repos().Users.List(ctx)
	if err != nil {
		return nil, c.fail("user.list", "user", err)
	}
	return users, nil
}
