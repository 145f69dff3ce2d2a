package service

import (
	"context"
	"testing"

	"spacetwo/asset-api/internal/errs"
	"spacetwo/asset-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCollectionTitleIgnoresCase(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p := e.project(t, owner, "Nike Space")
	c := e.collection(t, p, "New Nike Graphic")

	for _, name := range []string{"New Nike Graphic", "new nike graphic", "NEW NIKE GRAPHIC", "nEw NiKe GrApHiC"} {
		res, err := e.resolver.Resolve(ctx, owner, "Nike Space", name)
		require.NoError(t, err, name)

		assert.Equal(t, p.ID, res.Project.ID)
		require.NotNil(t, res.Collection, name)
		assert.Equal(t, c.ID, res.Collection.ID)
	}
}

func TestResolveProjectNameIsExact(t *testing.T) {
	e := newEnv(t)
	e.project(t, owner, "Nike Space")

	_, err := e.resolver.Resolve(context.Background(), owner, "nike space", "anything")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestResolveMissingCollectionIsAllowed(t *testing.T) {
	e := newEnv(t)
	p := e.project(t, owner, "Nike Space")

	res, err := e.resolver.Resolve(context.Background(), owner, "Nike Space", "Does Not Exist")
	require.NoError(t, err)

	assert.Equal(t, p.ID, res.Project.ID)
	assert.Nil(t, res.Collection)
	assert.Nil(t, res.CollectionID())
}

func TestResolveScopesToOwnerAndActiveRows(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p := e.project(t, owner, "Nike Space")
	c := e.collection(t, p, "Shots")

	_, err := e.resolver.Resolve(ctx, stranger, "Nike Space", "Shots")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	n, err := model.SoftDelete(e.db, &model.Collection{}, "id = ?", c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	res, err := e.resolver.Resolve(ctx, owner, "Nike Space", "Shots")
	require.NoError(t, err)
	assert.Nil(t, res.Collection)

	_, err = model.SoftDelete(e.db, &model.Project{}, "id = ?", p.ID)
	require.NoError(t, err)

	_, err = e.resolver.Resolve(ctx, owner, "Nike Space", "Shots")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestResolveSlugs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	username := "jane"
	require.NoError(t, e.db.Create(&model.User{ID: owner, Username: &username}).Error)

	p := e.project(t, owner, "Nike Space")
	c := e.collection(t, p, "New Nike Graphic")

	res, err := e.resolver.ResolveSlugs(ctx, "jane", "nike-space", "new-nike-graphic")
	require.NoError(t, err)

	assert.Equal(t, owner, res.UserID)
	assert.Equal(t, p.ID, res.ProjectID)
	assert.Equal(t, "Nike Space", res.ProjectName)
	require.NotNil(t, res.CollectionID)
	assert.Equal(t, c.ID, *res.CollectionID)
	assert.Equal(t, "New Nike Graphic", *res.CollectionTitle)

	res, err = e.resolver.ResolveSlugs(ctx, "jane", "nike-space", "")
	require.NoError(t, err)
	assert.Nil(t, res.CollectionID)

	_, err = e.resolver.ResolveSlugs(ctx, "jane", "adidas", "")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = e.resolver.ResolveSlugs(ctx, "jane", "nike-space", "posters")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = e.resolver.ResolveSlugs(ctx, "nobody", "nike-space", "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
