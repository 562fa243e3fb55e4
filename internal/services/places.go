package services

import (
	"context"
	"strings"

	"github.com/baharkarakas/hbnb-api/internal/models"
	"github.com/baharkarakas/hbnb-api/internal/policy"
	repo "github.com/baharkarakas/hbnb-api/internal/repository"
)

// resolveAmenities keeps only the ids that exist; unknown ids are dropped.
func resolveAmenities(ctx context.Context, r repo.Repositories, ids []string) ([]models.Amenity, []string, error) {
	found, err := r.Amenities.ListByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	out := make([]string, 0, len(found))
	for _, a := range found {
		out = append(out, a.ID)
	}
	return found, out, nil
}

func loadDetail(ctx context.Context, r repo.Repositories, p models.Place) (models.PlaceDetail, error) {
	owner, err := r.Users.GetByID(ctx, p.OwnerID)
	if err != nil {
		return models.PlaceDetail{}, err
	}
	amenities, err := r.Places.ListAmenities(ctx, p.ID)
	if err != nil {
		return models.PlaceDetail{}, err
	}
	reviews, err := r.Reviews.ListByPlace(ctx, p.ID)
	if err != nil {
		return models.PlaceDetail{}, err
	}
	return models.NewPlaceDetail(p, owner, amenities, reviews), nil
}

// CreatePlace forces the owner to the caller unless the caller is an admin,
// who may name any existing user (and defaults to self).
func (c *Catalog) CreatePlace(ctx context.Context, actor policy.Actor, in models.NewPlace) (d models.PlaceDetail, err error) {
	defer func() { c.observe("place.create", err) }()

	if !actor.Authenticated() {
		return models.PlaceDetail{}, denied("authentication required")
	}
	ownerID := actor.ID
	if actor.IsAdmin && strings.TrimSpace(in.OwnerID) != "" {
		ownerID = strings.TrimSpace(in.OwnerID)
	}
	in.OwnerID = ownerID
	if !policy.CanCreateListing(actor, ownerID) {
		return models.PlaceDetail{}, denied("you can only create places for yourself")
	}
	p, err := in.Build()
	if err != nil {
		return models.PlaceDetail{}, validationErr(err)
	}

	err = c.store.WithTx(ctx, func(r repo.Repositories) error {
		owner, err := r.Users.GetByID(ctx, ownerID)
		if isNotFound(err) {
			return invalidField("owner_id", "user does not exist")
		} else if err != nil {
			return err
		}
		created, err := r.Places.Create(ctx, p)
		if err != nil {
			return err
		}
		amenities, ids, err := resolveAmenities(ctx, r, in.AmenityIDs)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := r.Places.SetAmenities(ctx, created.ID, ids); err != nil {
				return err
			}
		}
		d = models.NewPlaceDetail(created, owner, amenities, nil)
		return c.audit(ctx, r, actor, "place", created.ID, "create", map[string]any{"owner_id": ownerID, "amenities": ids})
	})
	if err != nil {
		return models.PlaceDetail{}, c.fail("place.create", "place", err)
	}
	c.log.Info("place created", "place_id", d.ID, "owner_id", d.OwnerID, "actor_id", actor.ID)
	return d, nil
}

func (c *Catalog) UpdatePlace(ctx context.Context, actor policy.Actor, id string, patch models.PlacePatch) (d models.PlaceDetail, err error) {
	defer func() { c.observe("place.update", err) }()

	err = c.store.WithTx(ctx, func(r repo.Repositories) error {
		cur, err := r.Places.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !policy.CanModifyListing(actor, cur.OwnerID) {
			return denied("only the owner or an administrator can modify this place")
		}
		next, err := patch.Apply(cur)
		if err != nil {
			return validationErr(err)
		}
		updated, err := r.Places.Update(ctx, next)
		if err != nil {
			return err
		}
		details := map[string]any{}
		if patch.AmenityIDs != nil {
			_, ids, err := resolveAmenities(ctx, r, *patch.AmenityIDs)
			if err != nil {
				return err
			}
			if err := r.Places.SetAmenities(ctx, id, ids); err != nil {
				return err
			}
			details["amenities"] = ids
		}
		if d, err = loadDetail(ctx, r, updated); err != nil {
			return err
		}
		return c.audit(ctx, r, actor, "place", id, "update", details)
	})
	if err != nil {
		return models.PlaceDetail{}, c.fail("place.update", "place", err)
	}
	c.log.Info("place updated", "place_id", id, "actor_id", actor.ID)
	return d, nil
}

// DeletePlace removes the place with its reviews and amenity links.
func (c *Catalog) DeletePlace(ctx context.Context, actor policy.Actor, id string) (err error) {
	defer func() { c.observe("place.delete", err) }()

	var removed int64
	err = c.store.WithTx(ctx, func(r repo.Repositories) error {
		cur, err := r.Places.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !policy.CanModifyListing(actor, cur.OwnerID) {
			return denied("only the owner or an administrator can delete this place")
		}
		if removed, err = r.Reviews.DeleteByPlace(ctx, id); err != nil {
			return err
		}
		if err := r.Places.SetAmenities(ctx, id, nil); err != nil {
			return err
		}
		if err := r.Places.Delete(ctx, id); err != nil {
			return err
		}
		return c.audit(ctx, r, actor, "place", id, "delete", map[string]any{"reviews_deleted": removed})
	})
	if err != nil {
		return c.fail("place.delete", "place", err)
	}
	c.log.Info("place deleted", "place_id", id, "reviews_deleted", removed, "actor_id", actor.ID)
	return nil
}

// ListPlaces returns the summaries of the places matching f.
func (c *Catalog) ListPlaces(ctx context.Context, f models.PlaceFilter) ([]models.PlaceSummary, error) {
	if err := f.Validate(); err != nil {
		return nil, validationErr(err)
	}
	places, err := c.store.Repos().Places.List(ctx)
	if err != nil {
		return nil, c.fail("place.list", "place", err)
	}
	out := make([]models.PlaceSummary, 0, len(places))
	for _, p := range places {
		if f.Match(p) {
			out = append(out, p.Summary())
		}
	}
	return out, nil
}

func (c *Catalog) GetPlace(ctx context.Context, id string) (models.PlaceDetail, error) {
	r := c.store.Repos()
	p, err := r.Places.GetByID(ctx, id)
	if err != nil {
		return models.PlaceDetail{}, c.fail("place.get", "place", err)
	}
	d, err := loadDetail(ctx, r, p)
	if err != nil {
		return models.PlaceDetail{}, c.fail("place.get", "place", err)
	}
	return d, nil
}

func (c *Catalog) ListPlaceReviews(ctx context.Context, placeID string) ([]models.Review, error) {
	r := c.store.Repos()
	if _, err := r.Places.GetByID(ctx, placeID); err != nil {
		return nil, c.fail("place.reviews", "place", err)
	}
	reviews, err := r.Reviews.ListByPlace(ctx, placeID)
	if err != nil {
		return nil, c.fail("place.reviews", "review", err)
	}
	return reviews, nil
}
