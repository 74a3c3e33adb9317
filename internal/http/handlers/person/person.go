// Package person contains all HTTP handlers related to the Person resource.
//
// Handlers are built by factory functions that accept the service and
// return an http.HandlerFunc closing over it:
//
//	r.Post("/", person.New(svc))
//	//          ^^^^^^^^^^^^^^
//	// New(svc) runs ONCE at startup; the returned func runs per request.
package person

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/people-api/internal/apperror"
	"github.com/aanand-mishra/people-api/internal/types"
	"github.com/aanand-mishra/people-api/internal/utils/response"
	"github.com/go-chi/chi/v5"
)

// Service is what the handlers need from the person service.
type Service interface {
	ListAll(ctx context.Context) ([]types.Person, error)
	FindByID(ctx context.Context, id string) (types.Person, error)
	Create(ctx context.Context, in types.CreatePerson) (types.Person, error)
	Update(ctx context.Context, id string, patch types.UpdatePerson) (types.Person, error)
	Remove(ctx context.Context, id string) error
}

// New handles POST /api/people.
//
// Request body (JSON):
//
//	{ "name": "Camila", "email": "camila@mail.com", "age": 30 }
//
// 201 with the stored person; 400 on an empty/malformed body or failed
// validation; 500 on a store fault.
func New(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a person")

		var in types.CreatePerson
		if err := decode(w, r, &in, false); err != nil {
			response.Error(w, err)
			return
		}

		p, err := svc.Create(r.Context(), in)
		if err != nil {
			fail(w, "error creating person", "", err)
			return
		}

		slog.Info("person created", slog.Int64("id", p.ID))
		response.WriteJSON(w, http.StatusCreated, p)
	}
}

// GetByID handles GET /api/people/{id}.
func GetByID(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		slog.Info("getting a person", slog.String("id", id))

		p, err := svc.FindByID(r.Context(), id)
		if err != nil {
			fail(w, "error getting person", id, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, p)
	}
}

// GetList handles GET /api/people. It returns [] (not null) when empty.
func GetList(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all people")

		people, err := svc.ListAll(r.Context())
		if err != nil {
			fail(w, "error getting people", "", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, people)
	}
}

// Update handles PUT and PATCH /api/people/{id}.
//
// Only the fields present in the body are changed:
//
//	{ "name": "John Smith" }
//
// Unknown fields are rejected with 400.
func Update(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		slog.Info("updating a person", slog.String("id", id))

		var patch types.UpdatePerson
		if err := decode(w, r, &patch, true); err != nil {
			response.Error(w, err)
			return
		}

		p, err := svc.Update(r.Context(), id, patch)
		if err != nil {
			fail(w, "error updating person", id, err)
			return
		}

		slog.Info("person updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, p)
	}
}

// Delete handles DELETE /api/people/{id}: 204 with no body on success.
func Delete(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		slog.Info("deleting a person", slog.String("id", id))

		if err := svc.Remove(r.Context(), id); err != nil {
			fail(w, "error deleting person", id, err)
			return
		}

		slog.Info("person deleted", slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// decode reads exactly one JSON value from the body into v. Decoding
// problems are reported as validation errors so the client gets a 400.
func decode(w http.ResponseWriter, r *http.Request, v any, strict bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if strict {
		dec.DisallowUnknownFields()
	}

	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		// io.EOF means the body was completely empty.
		return apperror.BadPayload(errors.New("request body is empty"))
	}
	if err != nil {
		return apperror.BadPayload(err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperror.BadPayload(errors.New("request body must contain a single JSON object"))
	}
	return nil
}

// fail writes err and logs the ones the client cannot fix.
func fail(w http.ResponseWriter, msg, id string, err error) {
	if apperror.KindOf(err) == apperror.KindInternal {
		slog.Error(msg, slog.String("id", id), slog.String("error", err.Error()))
	}
	response.Error(w, err)
}
