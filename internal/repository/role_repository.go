package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/appregistry/internal/apperr"
	"github.com/iliyamo/appregistry/internal/database"
	"github.com/iliyamo/appregistry/internal/model"
	"github.com/iliyamo/appregistry/internal/query"
)

// RoleRepo is plain CRUD over the roles table.
type RoleRepo struct{ store query.Store }

func NewRoleRepo(store query.Store) *RoleRepo { return &RoleRepo{store: store} }

func roleFromRow(r query.Row) model.Role {
	return model.Role{ID: r.Int64("id"), Name: r.String("name")}
}

func (r *RoleRepo) List(ctx context.Context) ([]model.Role, error) {
	rows, err := query.Select(r.store).From(database.TableRoles).OrderBy("id").FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Role, 0, len(rows))
	for _, row := range rows {
		out = append(out, roleFromRow(row))
	}
	return out, nil
}

func (r *RoleRepo) Get(ctx context.Context, id int64) (model.Role, error) {
	row, ok, err := query.Select(r.store).From(database.TableRoles).Where("id = ?", query.Int(id)).Fetch(ctx)
	if err != nil {
		return model.Role{}, err
	}
	if !ok {
		return model.Role{}, apperr.NotFound(MsgRoleNotFound)
	}
	return roleFromRow(row), nil
}

func (r *RoleRepo) exists(ctx context.Context, name string, except int64) (bool, error) {
	_, ok, err := query.Select(r.store).Columns("id").From(database.TableRoles).
		Where("name = ?", query.Text(name)).
		Where("id <> ?", query.Int(except)).
		Fetch(ctx)
	return ok, err
}

// Create inserts a role named name and returns it.
func (r *RoleRepo) Create(ctx context.Context, name string) (model.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Role{}, apperr.Validation("Role name is required")
	}
	dup, err := r.exists(ctx, name, 0)
	if err != nil {
		return model.Role{}, err
	}
	if dup {
		return model.Role{}, apperr.Validation(MsgRoleExists)
	}
	id, err := query.Insert(r.store).Into(database.TableRoles).Columns("name").Values(query.Text(name)).Execute(ctx)
	if err != nil {
		return model.Role{}, asDuplicate(err, MsgRoleExists)
	}
	return model.Role{ID: id, Name: name}, nil
}

// Rename changes the name of role id.
func (r *RoleRepo) Rename(ctx context.Context, id int64, name string) (model.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Role{}, apperr.Validation("Role name is required")
	}
	if _, err := r.Get(ctx, id); err != nil {
		return model.Role{}, err
	}
	dup, err := r.exists(ctx, name, id)
	if err != nil {
		return model.Role{}, err
	}
	if dup {
		return model.Role{}, apperr.Validation(MsgRoleExists)
	}
	err = query.Update(r.store).Table(database.TableRoles).
		Set("name", query.Text(name)).
		Where("id = ?", query.Int(id)).
		Execute(ctx)
	if err != nil {
		return model.Role{}, asMissing(asDuplicate(err, MsgRoleExists), MsgRoleNotFound)
	}
	return model.Role{ID: id, Name: name}, nil
}

func (r *RoleRepo) Delete(ctx context.Context, id int64) error {
	n, err := query.Delete(r.store).From(database.TableRoles).Where("id = ?", query.Int(id)).Execute(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(MsgRoleNotFound)
	}
	return nil
}
