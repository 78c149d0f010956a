package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/appregistry/internal/apperr"
	"github.com/iliyamo/appregistry/internal/database"
	"github.com/iliyamo/appregistry/internal/model"
	"github.com/iliyamo/appregistry/internal/query"
	"github.com/iliyamo/appregistry/internal/utils"
)

// Admin seed account written by EnsureAdmin.
const (
	AdminUsername = "admin"
	AdminEmail    = "admin@admin.com"
	AdminRoleID   = 3
)

// NewUser is the input of UserRepo.Create. A zero RoleID means 1.
type NewUser struct {
	Username string
	Email    string
	Password string
	RoleID   int64
}

// UserPatch lists the fields an update touches; nil fields keep their
// stored value.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
	RoleID   *int64
}

type UserRepo struct {
	store query.Store
	cost  int
	Now   func() time.Time
}

// NewUserRepo builds the repo; cost is the bcrypt cost for new hashes.
func NewUserRepo(store query.Store, cost int) *UserRepo {
	return &UserRepo{store: store, cost: cost}
}

func userFromRow(r query.Row) model.User {
	return model.User{
		ID:           r.Int64("id"),
		Username:     r.String("username"),
		Email:        r.String("email"),
		PasswordHash: r.String("password"),
		RoleID:       r.Int64("role_id"),
		CreatedAt:    r.String("created_at"),
		UpdatedAt:    r.String("updated_at"),
	}
}

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := query.Select(r.store).From(database.TableUsers).OrderBy("id").FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, userFromRow(row))
	}
	return out, nil
}

func (r *UserRepo) Get(ctx context.Context, id int64) (model.User, error) {
	u, ok, err := r.findBy(ctx, "id = ?", query.Int(id))
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, apperr.NotFound(MsgUserNotFound)
	}
	return u, nil
}

// GetByUsername looks a user up for login. The bool is false when no user
// has that name.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, bool, error) {
	return r.findBy(ctx, "username = ?", query.Text(username))
}

func (r *UserRepo) findBy(ctx context.Context, cond string, v query.Value) (model.User, bool, error) {
	row, ok, err := query.Select(r.store).From(database.TableUsers).Where(cond, v).Fetch(ctx)
	if err != nil || !ok {
		return model.User{}, false, err
	}
	return userFromRow(row), true, nil
}

// taken reports whether another user than except already uses value in col.
func (r *UserRepo) taken(ctx context.Context, col, value string, except int64) (bool, error) {
	_, ok, err := query.Select(r.store).Columns("id").From(database.TableUsers).
		Where(col+" = ?", query.Text(value)).
		Where("id <> ?", query.Int(except)).
		Fetch(ctx)
	return ok, err
}

func (r *UserRepo) checkUnique(ctx context.Context, username, email *string, except int64) error {
	if username != nil {
		dup, err := r.taken(ctx, "username", *username, except)
		if err != nil {
			return err
		}
		if dup {
			return apperr.Validation(MsgUsernameExists)
		}
	}
	if email != nil {
		dup, err := r.taken(ctx, "email", *email, except)
		if err != nil {
			return err
		}
		if dup {
			return apperr.Validation(MsgEmailExists)
		}
	}
	return nil
}

// Create validates, hashes the password and inserts the user.
func (r *UserRepo) Create(ctx context.Context, in NewUser) (model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return model.User{}, apperr.Validation("Username, email and password are required")
	}
	if in.RoleID == 0 {
		in.RoleID = 1
	}
	if in.RoleID < 1 {
		return model.User{}, apperr.Validation("role_id must be at least 1")
	}
	if err := r.checkUnique(ctx, &in.Username, &in.Email, 0); err != nil {
		return model.User{}, err
	}

	hash, err := utils.HashPassword(in.Password, r.cost)
	if err != nil {
		return model.User{}, apperr.New(apperr.KindInternal, "could not hash password", err)
	}
	now := clock(r.Now).stamp()
	id, err := query.Insert(r.store).Into(database.TableUsers).
		Columns("username", "password", "email", "role_id", "created_at", "updated_at").
		Values(query.Text(in.Username), query.Text(hash), query.Text(in.Email), query.Int(in.RoleID), now, now).
		Execute(ctx)
	if err != nil {
		return model.User{}, asDuplicate(err, MsgUserExists)
	}
	return r.Get(ctx, id)
}

// Update applies p to user id. Only the supplied fields change; a new
// password is re-hashed and updated_at is always refreshed.
func (r *UserRepo) Update(ctx context.Context, id int64, p UserPatch) (model.User, error) {
	upd := query.Update(r.store).Table(database.TableUsers)
	if p.Username != nil {
		v := strings.TrimSpace(*p.Username)
		if v == "" {
			return model.User{}, apperr.Validation("username must not be empty")
		}
		p.Username = &v
		upd.Set("username", query.Text(v))
	}
	if p.Email != nil {
		v := strings.TrimSpace(*p.Email)
		if v == "" {
			return model.User{}, apperr.Validation("email must not be empty")
		}
		p.Email = &v
		upd.Set("email", query.Text(v))
	}
	if p.RoleID != nil {
		if *p.RoleID < 1 {
			return model.User{}, apperr.Validation("role_id must be at least 1")
		}
		upd.Set("role_id", query.Int(*p.RoleID))
	}
	if p.Password != nil {
		if *p.Password == "" {
			return model.User{}, apperr.Validation("password must not be empty")
		}
		hash, err := utils.HashPassword(*p.Password, r.cost)
		if err != nil {
			return model.User{}, apperr.New(apperr.KindInternal, "could not hash password", err)
		}
		upd.Set("password", query.Text(hash))
	}
	if _, err := r.Get(ctx, id); err != nil {
		return model.User{}, err
	}
	if err := r.checkUnique(ctx, p.Username, p.Email, id); err != nil {
		return model.User{}, err
	}
	upd.Set("updated_at", clock(r.Now).stamp()).Where("id = ?", query.Int(id))

	if err := upd.Execute(ctx); err != nil {
		return model.User{}, asMissing(asDuplicate(err, MsgUserExists), MsgUserNotFound)
	}
	return r.Get(ctx, id)
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	n, err := query.Delete(r.store).From(database.TableUsers).Where("id = ?", query.Int(id)).Execute(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(MsgUserNotFound)
	}
	return nil
}

// EnsureAdmin creates the admin account unless a user named admin exists.
// It reports whether a row was inserted.
func (r *UserRepo) EnsureAdmin(ctx context.Context, password string) (bool, error) {
	_, ok, err := r.GetByUsername(ctx, AdminUsername)
	if err != nil || ok {
		return false, err
	}
	_, err = r.Create(ctx, NewUser{
		Username: AdminUsername,
		Email:    AdminEmail,
		Password: password,
		RoleID:   AdminRoleID,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
