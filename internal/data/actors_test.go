package data

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestActorLifecycle(t *testing.T) {
	c := qt.New(t)
	models := newTestModels(t)
	ctx := context.Background()

	actor := &Actor{Name: "Jane Doe", Age: 34, Gender: "female"}
	c.Assert(models.Actors.Insert(ctx, actor), qt.IsNil)
	c.Assert(actor.ID > 0, qt.IsTrue)

	got, err := models.Actors.Get(ctx, actor.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, actor)

	found, err := models.Actors.Search(ctx, "JANE")
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.DeepEquals, []*Actor{actor})

	edited := &Actor{ID: actor.ID, Name: "Jane Roe", Age: 35, Gender: "female"}
	c.Assert(models.Actors.Update(ctx, edited), qt.IsNil)

	got, err = models.Actors.Get(ctx, actor.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, edited)

	found, err = models.Actors.Search(ctx, "doe")
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.HasLen, 0)

	c.Assert(models.Actors.Delete(ctx, actor.ID), qt.IsNil)
	c.Assert(models.Actors.Delete(ctx, actor.ID), qt.ErrorIs, ErrRecordNotFound)
}

func TestActorMissing(t *testing.T) {
	c := qt.New(t)
	models := newTestModels(t)
	ctx := context.Background()

	_, err := models.Actors.Get(ctx, 100000)
	c.Assert(err, qt.ErrorIs, ErrRecordNotFound)

	err = models.Actors.Update(ctx, &Actor{ID: 100000, Name: "x", Age: 1, Gender: "y"})
	c.Assert(err, qt.ErrorIs, ErrRecordNotFound)
}
