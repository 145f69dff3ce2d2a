package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"spacetwo/asset-api/internal/blob"
	"spacetwo/asset-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	owner    = "user-1"
	stranger = "user-2"
)

var testTargets = []Target{
	{Bucket: "project-files"},
	{Bucket: "avatars", Prefix: "uploads"},
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

type env struct {
	db         *gorm.DB
	store      *blob.Memory
	resolver   *Resolver
	negotiator *Negotiator
	recorder   *Recorder
	linker     *Linker
	refresher  *Refresher
	uploads    *Uploads
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := newTestDB(t)
	store := blob.NewMemory("http://blob.test", "project-files", "avatars")

	e := &env{db: db, store: store}
	e.resolver = NewResolver(db)
	e.negotiator = NewNegotiator(store, testTargets, 2*time.Hour, nil)
	e.recorder = NewRecorder(db, nil, nil)
	e.linker = NewLinker(store, testTargets, time.Hour, "/placeholder.svg", nil)
	e.refresher = NewRefresher(db, e.resolver, e.linker)
	e.uploads = NewUploads(e.resolver, e.negotiator, e.recorder, nil)

	return e
}

func (e *env) project(t *testing.T, ownerID, name string) *model.Project {
	t.Helper()

	p := &model.Project{Name: name, Type: model.ProjectTypeText, Bg: "#000", Color: "#fff", OwnerID: ownerID}
	require.NoError(t, e.db.Create(p).Error)

	return p
}

func (e *env) collection(t *testing.T, p *model.Project, title string) *model.Collection {
	t.Helper()

	c := &model.Collection{Title: title, ProjectID: p.ID, OwnerID: p.OwnerID}
	require.NoError(t, e.db.Create(c).Error)

	return c
}

// putObject simulates the client transferring bytes to a negotiated location.
func (e *env) putObject(t *testing.T, d *Descriptor, data string) {
	t.Helper()

	require.NoError(t, e.store.Put(context.Background(), d.Bucket, d.Path, strings.NewReader(data), int64(len(data)), d.MimeType))
}

func (e *env) fileCount(t *testing.T) int64 {
	t.Helper()

	var n int64
	require.NoError(t, e.db.Model(&model.File{}).Count(&n).Error)

	return n
}
