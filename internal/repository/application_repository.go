package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/appregistry/internal/apperr"
	"github.com/iliyamo/appregistry/internal/database"
	"github.com/iliyamo/appregistry/internal/model"
	"github.com/iliyamo/appregistry/internal/query"
)

// AppInput carries the writable fields of an application.
type AppInput struct {
	Name        string
	Version     string
	Type        string
	DownloadURL string
}

func (in *AppInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Version = strings.TrimSpace(in.Version)
	in.Type = strings.TrimSpace(in.Type)
	in.DownloadURL = strings.TrimSpace(in.DownloadURL)
	if in.Name == "" || in.Version == "" || in.Type == "" || in.DownloadURL == "" {
		return apperr.Validation("name, version, type and download_url are required")
	}
	return nil
}

type ApplicationRepo struct {
	store query.Store
	Now   func() time.Time
}

func NewApplicationRepo(store query.Store) *ApplicationRepo {
	return &ApplicationRepo{store: store}
}

func appFromRow(r query.Row) model.Application {
	return model.Application{
		ID:          r.Int64("id"),
		Name:        r.String("name"),
		Version:     r.String("version"),
		Type:        r.String("type"),
		DownloadURL: r.String("download_url"),
		CreatedBy:   r.Int64("created_by"),
		CreatedAt:   r.String("created_at"),
		UpdatedBy:   r.Int64("updated_by"),
		UpdatedAt:   r.String("updated_at"),
	}
}

func (r *ApplicationRepo) List(ctx context.Context) ([]model.Application, error) {
	rows, err := query.Select(r.store).From(database.TableApplications).OrderBy("id").FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Application, 0, len(rows))
	for _, row := range rows {
		out = append(out, appFromRow(row))
	}
	return out, nil
}

func (r *ApplicationRepo) Get(ctx context.Context, id int64) (model.Application, error) {
	row, ok, err := query.Select(r.store).From(database.TableApplications).Where("id = ?", query.Int(id)).Fetch(ctx)
	if err != nil {
		return model.Application{}, err
	}
	if !ok {
		return model.Application{}, apperr.NotFound(MsgAppNotFound)
	}
	return appFromRow(row), nil
}

func (r *ApplicationRepo) nameTaken(ctx context.Context, name string, except int64) (bool, error) {
	_, ok, err := query.Select(r.store).Columns("id").From(database.TableApplications).
		Where("name = ?", query.Text(name)).
		Where("id <> ?", query.Int(except)).
		Fetch(ctx)
	return ok, err
}

// Create inserts an application owned by actor.
func (r *ApplicationRepo) Create(ctx context.Context, in AppInput, actor int64) (model.Application, error) {
	if err := in.validate(); err != nil {
		return model.Application{}, err
	}
	dup, err := r.nameTaken(ctx, in.Name, 0)
	if err != nil {
		return model.Application{}, err
	}
	if dup {
		return model.Application{}, apperr.Validation(MsgApplicationExists)
	}

	now := clock(r.Now).stamp()
	id, err := query.Insert(r.store).Into(database.TableApplications).
		Columns("name", "version", "type", "download_url", "created_by", "created_at", "updated_by", "updated_at").
		Values(query.Text(in.Name), query.Text(in.Version), query.Text(in.Type), query.Text(in.DownloadURL),
			query.Int(actor), now, query.Int(actor), now).
		Execute(ctx)
	if err != nil {
		return model.Application{}, asDuplicate(err, MsgApplicationExists)
	}
	return r.Get(ctx, id)
}

// Update overwrites every writable field of application id and stamps
// actor as its last editor.
func (r *ApplicationRepo) Update(ctx context.Context, id int64, in AppInput, actor int64) (model.Application, error) {
	if err := in.validate(); err != nil {
		return model.Application{}, err
	}
	if _, err := r.Get(ctx, id); err != nil {
		return model.Application{}, err
	}
	dup, err := r.nameTaken(ctx, in.Name, id)
	if err != nil {
		return model.Application{}, err
	}
	if dup {
		return model.Application{}, apperr.Validation(MsgApplicationExists)
	}

	err = query.Update(r.store).Table(database.TableApplications).
		Set("name", query.Text(in.Name)).
		Set("version", query.Text(in.Version)).
		Set("type", query.Text(in.Type)).
		Set("download_url", query.Text(in.DownloadURL)).
		Set("updated_by", query.Int(actor)).
		Set("updated_at", clock(r.Now).stamp()).
		Where("id = ?", query.Int(id)).
		Execute(ctx)
	if err != nil {
		return model.Application{}, asMissing(asDuplicate(err, MsgApplicationExists), MsgAppNotFound)
	}
	return r.Get(ctx, id)
}

func (r *ApplicationRepo) Delete(ctx context.Context, id int64) error {
	n, err := query.Delete(r.store).From(database.TableApplications).Where("id = ?", query.Int(id)).Execute(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(MsgAppNotFound)
	}
	return nil
}
