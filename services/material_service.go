package services

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/models"
)

// Label image size in pixels.
const (
	labelWidth  = 400
	labelHeight = 120
)

// MaterialService manages the equipment each sales-manager hands out.
type MaterialService struct {
	items MaterialStore
	users UserStore
	now   func() time.Time
}

func NewMaterialService(items MaterialStore, users UserStore) *MaterialService {
	return &MaterialService{items: items, users: users, now: time.Now}
}

func (s *MaterialService) canAccess(actor Actor, managerUID string) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role == models.RoleSalesManager && actor.UID == managerUID {
		return nil
	}
	return forbidden("material of %s", managerUID)
}

// canWrite also refuses a locked manager unless the actor is admin.
func (s *MaterialService) canWrite(ctx context.Context, actor Actor, managerUID string) error {
	if err := s.canAccess(actor, managerUID); err != nil {
		return err
	}
	if actor.IsAdmin() {
		return nil
	}
	manager, err := s.users.Get(ctx, managerUID)
	if err != nil {
		return err
	}
	if manager.MaterialLocked {
		return forbidden("material of %s is locked", managerUID)
	}
	return nil
}

func (s *MaterialService) List(ctx context.Context, actor Actor, managerUID string) ([]models.MaterialItem, error) {
	if err := s.canAccess(actor, managerUID); err != nil {
		return nil, err
	}
	return s.items.List(ctx, managerUID)
}

func (s *MaterialService) Get(ctx context.Context, actor Actor, managerUID, itemID string) (*models.MaterialItem, error) {
	if err := s.canAccess(actor, managerUID); err != nil {
		return nil, err
	}
	return s.items.Get(ctx, managerUID, itemID)
}

func checkItem(req models.MaterialItemRequest) error {
	if !req.Type.Valid() {
		return invalid("unknown material type %q", req.Type)
	}
	return validateStruct(req)
}

func itemFrom(req models.MaterialItemRequest) models.MaterialItem {
	return models.MaterialItem{
		Type:               req.Type,
		Label:              strings.TrimSpace(req.Label),
		IMEI:               strings.TrimSpace(req.IMEI),
		SimNumber:          strings.TrimSpace(req.SimNumber),
		PhoneModel:         strings.TrimSpace(req.PhoneModel),
		VestNumber:         strings.TrimSpace(req.VestNumber),
		TagNumber:          strings.TrimSpace(req.TagNumber),
		FuelCardNumber:     strings.TrimSpace(req.FuelCardNumber),
		RegistrationNumber: strings.TrimSpace(req.RegistrationNumber),
		AssignedTo:         req.AssignedTo,
	}
}

func (s *MaterialService) Create(ctx context.Context, actor Actor, managerUID string, req models.MaterialItemRequest) (*models.MaterialItem, error) {
	if err := checkItem(req); err != nil {
		return nil, err
	}
	if err := s.canWrite(ctx, actor, managerUID); err != nil {
		return nil, err
	}
	item := itemFrom(req)
	item.ID = uuid.New().String()
	item.ManagerUID = managerUID
	if err := s.items.Save(ctx, &item); err != nil {
		return nil, err
	}
	logger.Get("app").WithFields(logrus.Fields{"managerUid": managerUID, "itemId": item.ID, "type": item.Type}).Info("material item created")
	return &item, nil
}

// Update replaces the fields of an existing item. The incident log is kept.
func (s *MaterialService) Update(ctx context.Context, actor Actor, managerUID, itemID string, req models.MaterialItemRequest) (*models.MaterialItem, error) {
	if err := checkItem(req); err != nil {
		return nil, err
	}
	if err := s.canWrite(ctx, actor, managerUID); err != nil {
		return nil, err
	}
	if _, err := s.items.Get(ctx, managerUID, itemID); err != nil {
		return nil, err
	}
	item := itemFrom(req)
	item.ID = itemID
	item.ManagerUID = managerUID
	if err := s.items.Save(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *MaterialService) Delete(ctx context.Context, actor Actor, managerUID, itemID string) error {
	if err := s.canWrite(ctx, actor, managerUID); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, managerUID, itemID); err != nil {
		return err
	}
	logger.Get("app").WithFields(logrus.Fields{"managerUid": managerUID, "itemId": itemID, "by": actor.UID}).Info("material item deleted")
	return nil
}

// Report appends an incident to the item's log. Entries are never edited.
func (s *MaterialService) Report(ctx context.Context, actor Actor, managerUID, itemID string, req models.IncidentReportRequest) (*models.IncidentReport, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := s.canWrite(ctx, actor, managerUID); err != nil {
		return nil, err
	}
	entry := models.IncidentReport{
		ID:         uuid.New().String(),
		Text:       strings.TrimSpace(req.Text),
		ReportedBy: actor.UID,
		CreatedAt:  s.now(),
	}
	if err := s.items.AppendReport(ctx, managerUID, itemID, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Label renders a Code128 barcode of the item's identifying number as PNG.
func (s *MaterialService) Label(ctx context.Context, actor Actor, managerUID, itemID string) ([]byte, error) {
	item, err := s.Get(ctx, actor, managerUID, itemID)
	if err != nil {
		return nil, err
	}
	return RenderLabel(item.Identifier())
}

// RenderLabel encodes content as a scaled Code128 PNG.
func RenderLabel(content string) ([]byte, error) {
	if content == "" {
		return nil, invalid("item has no number to encode")
	}
	code, err := code128.Encode(content)
	if err != nil {
		return nil, fmt.Errorf("encode barcode: %w", err)
	}
	scaled, err := barcode.Scale(code, labelWidth, labelHeight)
	if err != nil {
		return nil, fmt.Errorf("scale barcode: %w", err)
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, scaled); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
