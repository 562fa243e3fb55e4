package services

import (
	"context"
	"strings"

	"github.com/baharkarakas/hbnb-api/internal/models"
	"github.com/baharkarakas/hbnb-api/internal/policy"
	repo "github.com/baharkarakas/hbnb-api/internal/repository"
)

// CreateReview forces the author to the caller unless the caller is an
// admin. Owners may not review their own place; one review per user and place.
func (c *Catalog) CreateReview(ctx context.Context, actor policy.Actor, in models.NewReview) (rv models.Review, err error) {
	defer func() { c.observe("review.create", err) }()

	if !actor.Authenticated() {
		return models.Review{}, denied("authentication required")
	}
	in.PlaceID = strings.TrimSpace(in.PlaceID)
	if in.PlaceID == "" {
		return models.Review{}, invalidField("place_id", "required")
	}
	explicitUser := actor.IsAdmin && strings.TrimSpace(in.UserID) != ""
	if explicitUser {
		in.UserID = strings.TrimSpace(in.UserID)
	} else {
		in.UserID = actor.ID
	}
	rv = in.Build()

	err = c.store.WithTx(ctx, func(r repo.Repositories) error {
		place, err := r.Places.GetByID(ctx, in.PlaceID)
		if isNotFound(err) {
			return notFound("place")
		} else if err != nil {
			return err
		}
		if explicitUser {
			if _, err := r.Users.GetByID(ctx, in.UserID); isNotFound(err) {
				return invalidField("user_id", "user does not exist")
			} else if err != nil {
				return err
			}
		}
		if !policy.CanCreateReview(actor, place.OwnerID) {
			return denied("you cannot review your own place")
		}
		if _, err := r.Reviews.GetByUserAndPlace(ctx, rv.UserID, rv.PlaceID); err == nil {
			return duplicate(conflictMessages["review"])
		} else if !isNotFound(err) {
			return err
		}
		if err := rv.Validate(); err != nil {
			return validationErr(err)
		}
		if rv, err = r.Reviews.Create(ctx, rv); err != nil {
			return err
		}
		return c.audit(ctx, r, actor, "review", rv.ID, "create", map[string]any{"place_id": rv.PlaceID, "rating": rv.Rating})
	})
	if err != nil {
		return models.Review{}, c.fail("review.create", "review", err)
	}
	c.log.Info("review created", "review_id", rv.ID, "place_id", rv.PlaceID, "user_id", rv.UserID)
	return rv, nil
}

func (c *Catalog) UpdateReview(ctx context.Context, actor policy.Actor, id string, patch models.ReviewPatch) (rv models.Review, err error) {
	defer func() { c.observe("review.update", err) }()

	err = c.store.WithTx(ctx, func(r repo.Repositories) error {
		cur, err := r.Reviews.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !policy.CanModifyReview(actor, cur.UserID) {
			return denied("only the author or an administrator can modify this review")
		}
		next, err := patch.Apply(cur)
		if err != nil {
			return validationErr(err)
		}
		if rv, err = r.Reviews.Update(ctx, next); err != nil {
			return err
		}
		return c.audit(ctx, r, actor, "review", id, "update", map[string]any{"rating": rv.Rating})
	})
	if err != nil {
		return models.Review{}, c.fail("review.update", "review", err)
	}
	c.log.Info("review updated", "review_id", id, "actor_id", actor.ID)
	return rv, nil
}

func (c *Catalog) DeleteReview(ctx context.Context, actor policy.Actor, id string) (err error) {
	defer func() { c.observe("review.delete", err) }()

	err = c.store.WithTx(ctx, func(r repo.Repositories) error {
		cur, err := r.Reviews.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !policy.CanModifyReview(actor, cur.UserID) {
			return denied("only the author or an administrator can delete this review")
		}
		if err := r.Reviews.Delete(ctx, id); err != nil {
			return err
		}
		return c.audit(ctx, r, actor, "review", id, "delete", map[string]any{"place_id": cur.PlaceID})
	})
	if err != nil {
		return c.fail("review.delete", "review", err)
	}
	c.log.Info("review deleted", "review_id", id, "actor_id", actor.ID)
	return nil
}

func (c *Catalog) GetReview(ctx context.Context, id string) (models.Review, error) {
	rv, err := c.store.Repos().Reviews.GetByID(ctx, id)
	if err != nil {
		return models.Review{}, c.fail("review.get", "review", err)
	}
	return rv, nil
}

func (c *Catalog) ListReviews(ctx context.Context) ([]models.Review, error) {
	reviews, err := c.store.Repos().Reviews.List(ctx)
	if err != nil {
		return nil, c.fail("review.list", "review", err)
	}
	return reviews, nil
}
