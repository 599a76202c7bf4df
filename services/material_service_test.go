package services

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamsales/salesportal/models"
)

func newMaterialFixture() (*MaterialService, *fakeMaterial) {
	users := newFakeUsers(
		models.User{ID: "mgr-1", Role: models.RoleSalesManager},
		models.User{ID: "mgr-2", Role: models.RoleSalesManager, MaterialLocked: true},
	)
	store := newFakeMaterial()
	return NewMaterialService(store, users), store
}

func phone() models.MaterialItemRequest {
	return models.MaterialItemRequest{Type: models.MaterialImeiSim, IMEI: "356938035643809", PhoneModel: "Galaxy A14"}
}

func TestMaterial_RequiredFieldsByType(t *testing.T) {
	svc, _ := newMaterialFixture()

	for _, req := range []models.MaterialItemRequest{
		{Type: models.MaterialImeiSim},
		{Type: models.MaterialVasterBrickor, TagNumber: "T1"},
		{Type: models.MaterialTankkortBil, FuelCardNumber: "F1"},
		{Type: "bicycle", IMEI: "1"},
	} {
		_, err := svc.Create(context.Background(), manager1, "mgr-1", req)
		assert.True(t, errors.Is(err, ErrValidation), "type %s", req.Type)
	}
}

func TestMaterial_LockedManagerIsReadOnly(t *testing.T) {
	svc, _ := newMaterialFixture()

	_, err := svc.Create(context.Background(), manager2, "mgr-2", phone())
	assert.True(t, errors.Is(err, ErrForbidden))

	item, err := svc.Create(context.Background(), admin, "mgr-2", phone())
	require.NoError(t, err)

	_, err = svc.Report(context.Background(), manager2, "mgr-2", item.ID, models.IncidentReportRequest{Text: "Spräckt skärm"})
	assert.True(t, errors.Is(err, ErrForbidden))

	items, err := svc.List(context.Background(), manager2, "mgr-2")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMaterial_AccessIsPerManager(t *testing.T) {
	svc, _ := newMaterialFixture()

	_, err := svc.List(context.Background(), manager1, "mgr-2")
	assert.True(t, errors.Is(err, ErrForbidden))
	_, err = svc.List(context.Background(), seller1, "mgr-1")
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestMaterial_LifecycleAndIncidentLog(t *testing.T) {
	svc, store := newMaterialFixture()

	item, err := svc.Create(context.Background(), manager1, "mgr-1", phone())
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)

	entry, err := svc.Report(context.Background(), manager1, "mgr-1", item.ID, models.IncidentReportRequest{Text: "  Tappad  "})
	require.NoError(t, err)
	assert.Equal(t, "Tappad", entry.Text)
	assert.Equal(t, "mgr-1", entry.ReportedBy)

	req := phone()
	req.AssignedTo = "u1"
	updated, err := svc.Update(context.Background(), manager1, "mgr-1", item.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "u1", updated.AssignedTo)
	assert.Len(t, store.items[item.ID].Reports, 1, "updates keep the log")

	_, err = svc.Update(context.Background(), manager1, "mgr-1", "missing", req)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, svc.Delete(context.Background(), manager1, "mgr-1", item.ID))
	assert.Empty(t, store.items)
}

func TestMaterial_LabelIsPNG(t *testing.T) {
	svc, _ := newMaterialFixture()
	item, err := svc.Create(context.Background(), manager1, "mgr-1", phone())
	require.NoError(t, err)

	data, err := svc.Label(context.Background(), manager1, "mgr-1", item.ID)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, labelWidth, img.Bounds().Dx())
	assert.Equal(t, labelHeight, img.Bounds().Dy())

	_, err = RenderLabel("")
	assert.True(t, errors.Is(err, ErrValidation))
}
