package services

import (
	"context"

	"github.com/baharkarakas/hbnb-api/internal/models"
	"github.com/baharkarakas/hbnb-api/internal/policy"
	repo "github.com/baharkarakas/hbnb-api/internal/repository"
)

func (c *Catalog) CreateAmenity(ctx context.Context, actor policy.Actor, in models.NewAmenity) (a models.Amenity, err error) {
	defer func() { c.observe("amenity.create", err) }()

	if !policy.CanManageAmenity(actor) {
		return models.Amenity{}, denied("only administrators can manage amenities")
	}
	a, err = in.Build()
	if err != nil {
		return models.Amenity{}, validationErr(err)
	}
	err = c.store.WithTx(ctx, func(r repo.Repositories) error {
		if _, err := r.Amenities.GetByName(ctx, a.Name); err == nil {
			return duplicate(conflictMessages["amenity"])
		} else if !isNotFound(err) {
			return err
		}
		var err error
		if a, err = r.Amenities.Create(ctx, a); err != nil {
			return err
		}
		return c.audit(ctx, r, actor, "amenity", a.ID, "create", map[string]any{"name": a.Name})
	})
	if err != nil {
		return models.Amenity{}, c.fail("amenity.create", "amenity", err)
	}
	c.log.Info("amenity created", "amenity_id", a.ID, "actor_id", actor.ID)
	return a, nil
}

func (c *Catalog) UpdateAmenity(ctx context.Context, actor policy.Actor, id string, patch models.AmenityPatch) (a models.Amenity, err error) {
	defer func() { c.observe("amenity.update", err) }()

	if !policy.CanManageAmenity(actor) {
		return models.Amenity{}, denied("only administrators can manage amenities")
	}
	err = c.store.WithTx(ctx, func(r repo.Repositories) error {
		cur, err := r.Amenities.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next, err := patch.Apply(cur)
		if err != nil {
			return validationErr(err)
		}
		if other, err := r.Amenities.GetByName(ctx, next.Name); err == nil && other.ID != id {
			return duplicate(conflictMessages["amenity"])
		} else if err != nil && !isNotFound(err) {
			return err
		}
		if a, err = r.Amenities.Update(ctx, next); err != nil {
			return err
		}
		return c.audit(ctx, r, actor, "amenity", id, "update", map[string]any{"from": cur.Name, "to": a.Name})
	})
	if err != nil {
		return models.Amenity{}, c.fail("amenity.update", "amenity", err)
	}
	c.log.Info("amenity updated", "amenity_id", id, "actor_id", actor.ID)
	return a, nil
}

func (c *Catalog) ListAmenities(ctx context.Context) ([]models.Amenity, error) {
	out, err := c.store.Repos().Amenities.List(ctx)
	if err != nil {
		return nil, c.fail("amenity.list", "amenity", err)
	}
	return out, nil
}

func (c *Catalog) GetAmenity(ctx context.Context, id string) (models.Amenity, error) {
	a, err := c.store.Repos().Amenities.GetByID(ctx, id)
	if err != nil {
		return models.Amenity{}, c.fail("amenity.get", "amenity", err)
	}
	return a, nil
}
