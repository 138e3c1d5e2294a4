package course

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/course-catalog/api/web"
	"github.com/irsalhamdi/course-catalog/api/weberr"
	"github.com/irsalhamdi/course-catalog/validate"
)

const notFoundMsg = "the course with the given ID does not exist"

func HandleList(repo *Repository) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		q, err := ParseQuery(r.URL.Query())
		if err != nil {
			return requestErr(err)
		}

		cs, err := repo.List(ctx, q)
		if err != nil {
			return err
		}

		if len(q.Fields) == 0 {
			return web.Respond(ctx, w, cs, http.StatusOK)
		}

		views := make([]map[string]any, 0, len(cs))
		for _, c := range cs {
			views = append(views, Project(c, q.Fields))
		}
		return web.Respond(ctx, w, views, http.StatusOK)
	}
}

func HandleShow(repo *Repository) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := validate.ParseID(web.Param(r, "id"))
		if err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		c, err := repo.GetByID(ctx, id)
		if err != nil {
			return requestErr(err)
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleCreate(repo *Repository) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var candidate map[string]any
		if err := web.Decode(w, r, &candidate); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		c, err := repo.Create(ctx, candidate)
		if err != nil {
			return requestErr(err)
		}

		w.Header().Set("Location", fmt.Sprintf("/api/courses/%d", c.ID))
		return web.Respond(ctx, w, c, http.StatusCreated)
	}
}

func HandleUpdate(repo *Repository) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := validate.ParseID(web.Param(r, "id"))
		if err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var candidate map[string]any
		if err := web.Decode(w, r, &candidate); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		c, err := repo.Update(ctx, id, candidate)
		if err != nil {
			return requestErr(err)
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleDelete(repo *Repository) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := validate.ParseID(web.Param(r, "id"))
		if err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		c, err := repo.Delete(ctx, id)
		if err != nil {
			return requestErr(err)
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

// requestErr attaches the client facing response to domain errors. Anything
// else is left for the Errors middleware to report as a 500.
func requestErr(err error) error {
	if fe, ok := validate.AsFieldErrors(err); ok {
		return weberr.Invalid(fe)
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return weberr.NewError(err, notFoundMsg, http.StatusNotFound)
	case errors.Is(err, ErrConflict):
		return weberr.Conflict(err)
	}

	return err
}
