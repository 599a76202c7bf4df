package repositories

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/teamsales/salesportal/models"
)

type UserRepository struct {
	client     *firestore.Client
	collection *firestore.CollectionRef
}

func NewUserRepository(db *firestore.Client) *UserRepository {
	return &UserRepository{
		client:     db,
		collection: db.Collection(usersCollection),
	}
}

func decodeUser(snap *firestore.DocumentSnapshot) (models.User, error) {
	var u models.User
	if err := snap.DataTo(&u); err != nil {
		return u, fmt.Errorf("decode user %s: %w", snap.Ref.ID, err)
	}
	u.ID = snap.Ref.ID
	return u, nil
}

func decodeUsers(snaps []*firestore.DocumentSnapshot) ([]models.User, error) {
	users := make([]models.User, 0, len(snaps))
	for _, snap := range snaps {
		u, err := decodeUser(snap)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// Get loads users/{uid}.
func (r *UserRepository) Get(ctx context.Context, uid string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	snap, err := r.collection.Doc(uid).Get(ctx)
	if isNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u, err := decodeUser(snap)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns every user ordered by name.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	snaps, err := r.collection.OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeUsers(snaps)
}

// ListByManager returns the team of a sales-manager.
func (r *UserRepository) ListByManager(ctx context.Context, managerUID string) ([]models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	snaps, err := r.collection.Where("managerUid", "==", managerUID).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeUsers(snaps)
}

// ListByLastWorkingDay returns users whose sistaArbetsdag equals date.
// Documents without the field never match.
func (r *UserRepository) ListByLastWorkingDay(ctx context.Context, date string) ([]models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	snaps, err := r.collection.Where("sistaArbetsdag", "==", date).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeUsers(snaps)
}

// Create writes users/{user.ID}.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	_, err := r.collection.Doc(user.ID).Set(ctx, user)
	return err
}

// UpdateProfile overwrites the name and profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, uid, name string, p models.Profile) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.collection.Doc(uid).Update(ctx, []firestore.Update{
		{Path: "name", Value: name},
		{Path: "personnummer", Value: p.Personnummer},
		{Path: "adress", Value: p.Adress},
		{Path: "postnummerOrt", Value: p.PostnummerOrt},
		{Path: "bank", Value: p.Bank},
		{Path: "clearingnummer", Value: p.Clearingnummer},
		{Path: "kontonummer", Value: p.Kontonummer},
		{Path: "telefon", Value: p.Telefon},
		{Path: "anhorigNamn", Value: p.AnhorigNamn},
		{Path: "anhorigTelefon", Value: p.AnhorigTelefon},
		{Path: "updatedAt", Value: time.Now()},
	})
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

// Patch applies the set fields of patch.
func (r *UserRepository) Patch(ctx context.Context, uid string, patch models.UserPatch) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.collection.Doc(uid).Update(ctx, patchUpdates(patch))
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func patchUpdates(p models.UserPatch) []firestore.Update {
	ups := []firestore.Update{{Path: "updatedAt", Value: time.Now()}}
	set := func(path string, v interface{}) { ups = append(ups, firestore.Update{Path: path, Value: v}) }
	setOrDelete := func(path, v string) {
		if v == "" {
			set(path, firestore.Delete)
			return
		}
		set(path, v)
	}

	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Role != nil {
		set("role", string(*p.Role))
	}
	if p.SalesID != nil {
		setOrDelete("salesId", *p.SalesID)
	}
	if p.ManagerUID != nil {
		setOrDelete("managerUid", *p.ManagerUID)
	}
	if p.SistaArbetsdag != nil {
		setOrDelete("sistaArbetsdag", *p.SistaArbetsdag)
	}
	if p.MenuComponents != nil {
		set("menuComponents", *p.MenuComponents)
	}
	if p.MaterialLocked != nil {
		set("materialLocked", *p.MaterialLocked)
	}
	return ups
}

// ClearManager removes the managerUid field from users/{uid}. Running it on a
// user without a manager is a no-op write.
func (r *UserRepository) ClearManager(ctx context.Context, uid string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.collection.Doc(uid).Update(ctx, []firestore.Update{
		{Path: "managerUid", Value: firestore.Delete},
		{Path: "updatedAt", Value: time.Now()},
	})
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

// Delete removes users/{uid}. Sub-collections are kept as history.
func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.collection.Doc(uid).Delete(ctx)
	return err
}
